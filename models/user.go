package models

import (
	"time"

	"gorm.io/gorm"
)

type AccountType string

const (
	AccountTester    AccountType = "tester"
	AccountDeveloper AccountType = "developer"
)

// User is a marketplace account: testers submit bug reports and earn credits,
// developers post projects and fund bounty pools.
type User struct {
	ID          string      `gorm:"primaryKey;type:uuid" json:"id"`
	Name        string      `gorm:"not null" json:"name"`
	Email       string      `gorm:"uniqueIndex;not null" json:"email"`
	AccountType AccountType `gorm:"type:varchar(16);not null;index" json:"account_type"`
	Avatar      string      `json:"avatar,omitempty"`

	// Credit counters. Whole credits, never fractional: the pool conservation
	// checks rely on exact arithmetic. TotalCreditsAcquired never decreases.
	Balance              int64 `gorm:"not null;default:0" json:"balance"`
	TotalEarnings        int64 `gorm:"not null;default:0" json:"total_earnings"`
	TotalCreditsAcquired int64 `gorm:"not null;default:0" json:"total_credits_acquired"`

	Badges UserBadges `gorm:"embedded;embeddedPrefix:badge_" json:"badges"`
	Stats  UserStats  `gorm:"embedded;embeddedPrefix:stat_" json:"stats"`

	Timestamps
}

// UserBadges are one-way latches: once set, never cleared.
type UserBadges struct {
	FirstBlood   bool `gorm:"default:false" json:"first_blood"`   // first verified bug
	BugHunter    bool `gorm:"default:false" json:"bug_hunter"`    // 10 verified bugs
	EliteTester  bool `gorm:"default:false" json:"elite_tester"`  // 100 verified bugs
	BugConqueror bool `gorm:"default:false" json:"bug_conqueror"` // reached leaderboard #1
	BugMaster    bool `gorm:"default:false" json:"bug_master"`    // reached leaderboard #2
	BugExpert    bool `gorm:"default:false" json:"bug_expert"`    // reached leaderboard #3
}

// UserStats is denormalized tester history. VerifiedBugs counts reports paid
// exactly once; the reputation score is always recomputed from scratch, never
// adjusted incrementally.
type UserStats struct {
	VerifiedBugs           int64      `gorm:"not null;default:0" json:"verified_bugs"`
	TotalSubmitted         int64      `gorm:"not null;default:0" json:"total_submitted"`
	TotalApproved          int64      `gorm:"not null;default:0" json:"total_approved"`
	TotalRejected          int64      `gorm:"not null;default:0" json:"total_rejected"`
	AverageDeveloperRating float64    `gorm:"not null;default:0" json:"average_developer_rating"`
	TotalDeveloperRatings  int64      `gorm:"not null;default:0" json:"total_developer_ratings"`
	ReputationScore        int        `gorm:"not null;default:0" json:"reputation_score"`
	LastActive             *time.Time `json:"last_active,omitempty"`
}

// Timestamps adds GORM auto-times
type Timestamps struct {
	CreatedAt time.Time      `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time      `json:"updated_at" gorm:"autoUpdateTime"`
	DeletedAt gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}
