package models

import "time"

type ModeratorStatus string

const (
	ModeratorActive    ModeratorStatus = "active"
	ModeratorSuspended ModeratorStatus = "suspended"
	ModeratorInactive  ModeratorStatus = "inactive"
)

type ModeratorPermissions struct {
	ViewDisputes    bool `gorm:"default:true" json:"view_disputes"`
	ResolveDisputes bool `gorm:"default:true" json:"resolve_disputes"`
	DeleteDisputes  bool `gorm:"default:false" json:"delete_disputes"`
	BanUsers        bool `gorm:"default:false" json:"ban_users"`
	ViewAnalytics   bool `gorm:"default:true" json:"view_analytics"`
}

type ModeratorStats struct {
	TotalDisputes    int64      `gorm:"not null;default:0" json:"total_disputes"`
	ResolvedDisputes int64      `gorm:"not null;default:0" json:"resolved_disputes"`
	LastActivity     *time.Time `json:"last_activity,omitempty"`
}

// Moderator settles disputes. The balance is a flat per-resolution incentive
// (100 credits each), unrelated to any project's bounty pool.
type Moderator struct {
	ID       string          `gorm:"primaryKey;type:uuid" json:"id"`
	Username string          `gorm:"uniqueIndex;not null" json:"username"`
	Email    string          `gorm:"uniqueIndex;not null" json:"email"`
	Role     string          `gorm:"type:varchar(32);not null;default:'moderator'" json:"role"`
	Status   ModeratorStatus `gorm:"type:varchar(16);not null;default:'active'" json:"status"`
	Balance  int64           `gorm:"not null;default:0" json:"balance"`

	Permissions ModeratorPermissions `gorm:"embedded;embeddedPrefix:perm_" json:"permissions"`
	Stats       ModeratorStats       `gorm:"embedded;embeddedPrefix:stat_" json:"stats"`

	Timestamps
}
