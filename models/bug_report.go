package models

import "time"

type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityMajor    Severity = "major"
	SeverityMinor    Severity = "minor"
)

func (s Severity) Valid() bool {
	switch s {
	case SeverityCritical, SeverityMajor, SeverityMinor:
		return true
	}
	return false
}

type BugStatus string

const (
	BugPending  BugStatus = "pending"
	BugApproved BugStatus = "approved"
	BugRejected BugStatus = "rejected"
	BugResolved BugStatus = "resolved"
)

func (s BugStatus) Valid() bool {
	switch s {
	case BugPending, BugApproved, BugRejected, BugResolved:
		return true
	}
	return false
}

type BugAction string

const (
	ActionApprove BugAction = "approve"
	ActionReject  BugAction = "reject"
	ActionResolve BugAction = "resolve"
)

func (a BugAction) Valid() bool {
	switch a {
	case ActionApprove, ActionReject, ActionResolve:
		return true
	}
	return false
}

// bugTransitions enumerates every legal (status, action) pair. Approve and
// reject apply only to pending reports; resolve is the post-approval closing
// state used for dispute bookkeeping.
var bugTransitions = map[BugStatus]map[BugAction]BugStatus{
	BugPending: {
		ActionApprove: BugApproved,
		ActionReject:  BugRejected,
	},
	BugApproved: {
		ActionResolve: BugResolved,
	},
}

// NextBugStatus returns the status an action moves a report to, or false when
// the transition is illegal.
func NextBugStatus(current BugStatus, action BugAction) (BugStatus, bool) {
	next, ok := bugTransitions[current][action]
	return next, ok
}

type RewardStatus string

const (
	RewardPending  RewardStatus = "pending"
	RewardApproved RewardStatus = "approved"
	RewardPaid     RewardStatus = "paid"
	RewardRejected RewardStatus = "rejected"
)

// Reward is the payout attached to a bug report. Amount is immutable once the
// status leaves pending, except through moderator reconciliation.
type Reward struct {
	Amount       int64        `gorm:"not null;default:0" json:"amount"`
	Status       RewardStatus `gorm:"type:varchar(16);not null;default:'pending'" json:"status"`
	ApprovedByID *string      `gorm:"type:uuid" json:"approved_by_id,omitempty"`
	ApprovedAt   *time.Time   `json:"approved_at,omitempty"`
}

type DeveloperResponse struct {
	Message       string     `gorm:"type:text" json:"message,omitempty"`
	RespondedByID *string    `gorm:"type:uuid" json:"responded_by_id,omitempty"`
	RespondedAt   *time.Time `json:"responded_at,omitempty"`
}

type DeveloperRating struct {
	Rating    int        `gorm:"default:0" json:"rating,omitempty"` // 1-5, 0 = unrated
	Comment   string     `gorm:"type:text" json:"comment,omitempty"`
	RatedByID *string    `gorm:"type:uuid" json:"rated_by_id,omitempty"`
	RatedAt   *time.Time `json:"rated_at,omitempty"`
}

type BugReport struct {
	ID               string `gorm:"primaryKey;type:uuid" json:"id"`
	Title            string `gorm:"not null" json:"title"`
	Description      string `gorm:"type:text;not null" json:"description"`
	StepsToReproduce string `gorm:"type:text;not null" json:"steps_to_reproduce"`
	ExpectedBehavior string `gorm:"type:text;not null" json:"expected_behavior"`
	ActualBehavior   string `gorm:"type:text;not null" json:"actual_behavior"`

	Severity Severity  `gorm:"type:varchar(16);not null;index" json:"severity"`
	Status   BugStatus `gorm:"type:varchar(16);not null;default:'pending';index" json:"status"`

	SubmittedByID string `gorm:"type:uuid;not null;index" json:"submitted_by_id"`
	ProjectID     string `gorm:"type:uuid;not null;index" json:"project_id"`

	QualityScore int `gorm:"not null;default:0" json:"quality_score"` // 0-10, set at submission

	Reward            Reward            `gorm:"embedded;embeddedPrefix:reward_" json:"reward"`
	DeveloperResponse DeveloperResponse `gorm:"embedded;embeddedPrefix:response_" json:"developer_response"`
	DeveloperRating   DeveloperRating   `gorm:"embedded;embeddedPrefix:rating_" json:"developer_rating"`

	Attachments []Attachment `gorm:"foreignKey:BugReportID" json:"attachments,omitempty"`

	// Listing metadata, computed per request by the blur policy. Never persisted.
	IsBlurred  bool   `gorm:"-" json:"is_blurred"`
	BlurReason string `gorm:"-" json:"blur_reason,omitempty"`

	Timestamps
}

// Attachment is an opaque blob reference: the payload lives in object storage
// and is never interpreted by the service.
type Attachment struct {
	ID           string    `gorm:"primaryKey;type:uuid" json:"id"`
	BugReportID  string    `gorm:"type:uuid;not null;index" json:"bug_report_id"`
	OriginalName string    `json:"original_name"`
	MimeType     string    `json:"mime_type"`
	Size         int64     `json:"size"`
	StorageKey   string    `json:"-"`
	URL          string    `gorm:"type:text" json:"url"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
}
