package services

import (
	"math"
	"time"

	"testquest/models"

	"gorm.io/gorm"
)

type ReputationService struct {
	DB *gorm.DB
}

func NewReputationService(db *gorm.DB) *ReputationService {
	return &ReputationService{DB: db}
}

// Recompute recalculates a tester's 0-100 reputation score from scratch and
// persists it. Weights: accuracy 40%, developer ratings 30%, 30-day activity
// 20%, report quality 10%. Always a full recompute, never a delta update, so
// repeated calls over the same stats yield the same value.
//
// Pass the enclosing transaction so the score lands in the same commit as the
// mutation that invalidated it; tx may be nil for standalone recomputes.
func (s *ReputationService) Recompute(tx *gorm.DB, userID string) (int, error) {
	db := tx
	if db == nil {
		db = s.DB
	}

	var user models.User
	if err := db.First(&user, "id = ?", userID).Error; err != nil {
		return 0, err
	}

	accuracy := 0.0
	if user.Stats.TotalSubmitted > 0 {
		accuracy = float64(user.Stats.TotalApproved) / float64(user.Stats.TotalSubmitted)
	}
	accuracyScore := accuracy * 40

	ratingScore := user.Stats.AverageDeveloperRating / 5 * 30

	since := time.Now().AddDate(0, 0, -30)
	var recentReports int64
	if err := db.Model(&models.BugReport{}).
		Where("submitted_by_id = ? AND created_at >= ?", userID, since).
		Count(&recentReports).Error; err != nil {
		return 0, err
	}
	activity := float64(recentReports) / 10
	if activity > 1 {
		activity = 1
	}
	activityScore := activity * 20

	var qualityScores []int
	if err := db.Model(&models.BugReport{}).
		Where("submitted_by_id = ? AND status = ?", userID, models.BugApproved).
		Pluck("quality_score", &qualityScores).Error; err != nil {
		return 0, err
	}
	avgQuality := 5.0 // neutral default until something is approved
	if len(qualityScores) > 0 {
		sum := 0
		for _, q := range qualityScores {
			sum += q
		}
		avgQuality = float64(sum) / float64(len(qualityScores))
	}
	qualityScore := avgQuality / 10 * 10

	score := int(math.Round(accuracyScore + ratingScore + activityScore + qualityScore))

	if err := db.Model(&models.User{}).
		Where("id = ?", userID).
		Update("stat_reputation_score", score).Error; err != nil {
		return 0, err
	}
	return score, nil
}
