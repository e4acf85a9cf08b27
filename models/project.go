package models

type ProjectStatus string

const (
	ProjectPending   ProjectStatus = "pending"
	ProjectApproved  ProjectStatus = "approved"
	ProjectRejected  ProjectStatus = "rejected"
	ProjectCompleted ProjectStatus = "completed"
)

// BugRewards maps each severity tier to a fixed credit amount.
type BugRewards struct {
	Critical int64 `gorm:"not null;default:0" json:"critical"`
	Major    int64 `gorm:"not null;default:0" json:"major"`
	Minor    int64 `gorm:"not null;default:0" json:"minor"`
}

// For returns the configured reward for a severity, 0 for unknown values.
func (r BugRewards) For(sev Severity) int64 {
	switch sev {
	case SeverityCritical:
		return r.Critical
	case SeverityMajor:
		return r.Major
	case SeverityMinor:
		return r.Minor
	}
	return 0
}

// Project is a developer's bounty posting. RemainingBounty is the undistributed
// part of the pool; it holds 0 <= RemainingBounty <= TotalBounty and is mutated
// only by the settlement and reconciliation transactions, always in the same
// step as the matching tester credit.
type Project struct {
	ID          string `gorm:"primaryKey;type:uuid" json:"id"`
	Name        string `gorm:"not null" json:"name"`
	PostedByID  string `gorm:"type:uuid;not null;index" json:"posted_by_id"`
	Platform    string `json:"platform"`
	Scope       string `gorm:"type:text" json:"scope"`
	Objective   string `gorm:"type:text" json:"objective"`
	AreasToTest string `gorm:"type:text" json:"areas_to_test"`
	ProjectLink string `json:"project_link"`
	Notes       string `gorm:"type:text" json:"notes,omitempty"`

	BugRewards      BugRewards `gorm:"embedded;embeddedPrefix:reward_" json:"bug_rewards"`
	TotalBounty     int64      `gorm:"not null" json:"total_bounty"`
	RemainingBounty int64      `gorm:"not null" json:"remaining_bounty"`

	Status ProjectStatus `gorm:"type:varchar(16);not null;default:'pending';index" json:"status"`

	Timestamps
}
