package models

import "time"

type DisputeCategory string

const (
	DisputeUnfairRejection     DisputeCategory = "unfair_rejection"
	DisputePayment             DisputeCategory = "payment_dispute"
	DisputeBiasDiscrimination  DisputeCategory = "bias_discrimination"
	DisputeCommunicationIssue  DisputeCategory = "communication_issue"
	DisputeProjectRequirements DisputeCategory = "project_requirements"
	DisputeOther               DisputeCategory = "other"
)

func (c DisputeCategory) Valid() bool {
	switch c {
	case DisputeUnfairRejection, DisputePayment, DisputeBiasDiscrimination,
		DisputeCommunicationIssue, DisputeProjectRequirements, DisputeOther:
		return true
	}
	return false
}

type DisputeStatus string

const (
	DisputePending       DisputeStatus = "pending"
	DisputeInvestigating DisputeStatus = "investigating"
	DisputeResolved      DisputeStatus = "resolved"
	DisputeDismissed     DisputeStatus = "dismissed"
)

// Open reports whether the dispute can still be acted on by a moderator.
func (s DisputeStatus) Open() bool {
	return s == DisputePending || s == DisputeInvestigating
}

type DisputePriority string

const (
	PriorityLow    DisputePriority = "low"
	PriorityMedium DisputePriority = "medium"
	PriorityHigh   DisputePriority = "high"
	PriorityUrgent DisputePriority = "urgent"
)

type AdminResponse struct {
	Message       string     `gorm:"type:text" json:"message,omitempty"`
	RespondedByID *string    `gorm:"type:uuid" json:"responded_by_id,omitempty"`
	RespondedAt   *time.Time `json:"responded_at,omitempty"`
}

type DisputeResolution struct {
	Action       string     `json:"action,omitempty"`
	Details      string     `gorm:"type:text" json:"details,omitempty"`
	ResolvedByID *string    `gorm:"type:uuid" json:"resolved_by_id,omitempty"`
	ResolvedAt   *time.Time `json:"resolved_at,omitempty"`
}

// ProjectDispute is a tester complaint about how a project handled their work,
// optionally tied to a specific bug report so a moderator can override its
// earlier settlement.
type ProjectDispute struct {
	ID                 string          `gorm:"primaryKey;type:uuid" json:"id"`
	Category           DisputeCategory `gorm:"type:varchar(32);not null" json:"category"`
	Subject            string          `gorm:"not null" json:"subject"`
	Description        string          `gorm:"type:text;not null" json:"description"`
	Evidence           string          `gorm:"type:text" json:"evidence,omitempty"`
	ExpectedResolution string          `gorm:"type:text" json:"expected_resolution,omitempty"`

	SubmittedByID string  `gorm:"type:uuid;not null;index" json:"submitted_by_id"`
	ProjectID     string  `gorm:"type:uuid;not null;index" json:"project_id"`
	ProjectName   string  `json:"project_name"`
	BugReportID   *string `gorm:"type:uuid;index" json:"bug_report_id,omitempty"`

	Status   DisputeStatus   `gorm:"type:varchar(16);not null;default:'pending';index" json:"status"`
	Priority DisputePriority `gorm:"type:varchar(16);not null;default:'medium';index" json:"priority"`

	AdminResponse AdminResponse     `gorm:"embedded;embeddedPrefix:response_" json:"admin_response"`
	Resolution    DisputeResolution `gorm:"embedded;embeddedPrefix:resolution_" json:"resolution"`

	Timestamps
}
