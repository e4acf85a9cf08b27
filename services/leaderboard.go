package services

import (
	"log"

	"testquest/models"

	"gorm.io/gorm"
)

const leaderboardSize = 50

// Rank badges follow leaderboard position. Like the milestone badges they
// only latch on; falling off the podium later does not take one back.
var rankBadges = []struct {
	Name string
	Flag func(*models.UserBadges) *bool
}{
	{"Bug Conqueror", func(b *models.UserBadges) *bool { return &b.BugConqueror }},
	{"Bug Master", func(b *models.UserBadges) *bool { return &b.BugMaster }},
	{"Bug Expert", func(b *models.UserBadges) *bool { return &b.BugExpert }},
}

type LeaderboardService struct {
	DB *gorm.DB
}

func NewLeaderboardService(db *gorm.DB) *LeaderboardService {
	return &LeaderboardService{DB: db}
}

type LeaderboardEntry struct {
	Rank                 int     `json:"rank"`
	UserID               string  `json:"user_id"`
	Name                 string  `json:"name"`
	Avatar               string  `json:"avatar,omitempty"`
	TotalCreditsAcquired int64   `json:"total_credits_acquired"`
	VerifiedBugs         int64   `json:"verified_bugs"`
	ReputationScore      int     `json:"reputation_score"`
	AverageRating        float64 `json:"average_rating"`
	Badges               models.UserBadges `json:"badges"`
}

type LeaderboardStats struct {
	TotalActiveTesters int64 `json:"total_active_testers"`
	TotalBugReports    int64 `json:"total_bug_reports"`
	TotalRewardsPaid   int64 `json:"total_rewards_paid"`
}

type Leaderboard struct {
	Entries []LeaderboardEntry `json:"entries"`
	Stats   LeaderboardStats   `json:"stats"`
}

// Generate ranks the top testers by lifetime credits and latches the podium
// badges for the current top three.
func (s *LeaderboardService) Generate() (*Leaderboard, error) {
	var testers []models.User
	if err := s.DB.
		Where("account_type = ? AND stat_total_submitted > 0", models.AccountTester).
		Order("total_credits_acquired DESC, stat_reputation_score DESC, stat_verified_bugs DESC").
		Limit(leaderboardSize).
		Find(&testers).Error; err != nil {
		return nil, err
	}

	board := &Leaderboard{Entries: make([]LeaderboardEntry, 0, len(testers))}
	for i := range testers {
		t := &testers[i]
		if i < len(rankBadges) {
			flag := rankBadges[i].Flag(&t.Badges)
			if !*flag {
				*flag = true
				if err := s.DB.Save(t).Error; err != nil {
					return nil, err
				}
				log.Printf("🏆 Badge awarded: %s → %s", rankBadges[i].Name, t.ID)
			}
		}
		board.Entries = append(board.Entries, LeaderboardEntry{
			Rank:                 i + 1,
			UserID:               t.ID,
			Name:                 t.Name,
			Avatar:               t.Avatar,
			TotalCreditsAcquired: t.TotalCreditsAcquired,
			VerifiedBugs:         t.Stats.VerifiedBugs,
			ReputationScore:      t.Stats.ReputationScore,
			AverageRating:        t.Stats.AverageDeveloperRating,
			Badges:               t.Badges,
		})
	}

	if err := s.DB.Model(&models.User{}).
		Where("account_type = ? AND stat_total_submitted > 0", models.AccountTester).
		Count(&board.Stats.TotalActiveTesters).Error; err != nil {
		return nil, err
	}
	if err := s.DB.Model(&models.BugReport{}).
		Count(&board.Stats.TotalBugReports).Error; err != nil {
		return nil, err
	}
	var paid *int64
	if err := s.DB.Model(&models.BugReport{}).
		Where("reward_status = ?", models.RewardPaid).
		Select("SUM(reward_amount)").
		Scan(&paid).Error; err != nil {
		return nil, err
	}
	if paid != nil {
		board.Stats.TotalRewardsPaid = *paid
	}
	return board, nil
}
