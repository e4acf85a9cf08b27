package services

import (
	"errors"
	"log"
	"time"

	"testquest/models"

	"gorm.io/gorm"
)

// SettlementService drives a bug report through its lifecycle and keeps the
// bounty pool conserved: every credit paid to a tester leaves the project's
// remaining bounty in the same transaction.
type SettlementService struct {
	DB         *gorm.DB
	Reputation *ReputationService
}

func NewSettlementService(db *gorm.DB, reputation *ReputationService) *SettlementService {
	return &SettlementService{DB: db, Reputation: reputation}
}

type ProcessRequest struct {
	BugReportID       string           `json:"bugReportId"`
	Action            models.BugAction `json:"action"`
	DeveloperResponse string           `json:"developerResponse,omitempty"`
	Rating            int              `json:"rating,omitempty"`
	RatingComment     string           `json:"ratingComment,omitempty"`
	OverrideSeverity  models.Severity  `json:"overrideSeverity,omitempty"`
}

type ProcessResult struct {
	BugReport       *models.BugReport `json:"bug_report"`
	RemainingBounty int64             `json:"remaining_bounty"`
	BadgesAwarded   []string          `json:"badges_awarded,omitempty"`
}

// ProcessBugReport applies a developer/admin action to a pending report.
// Approve pays the severity reward out of the pool; reject has no monetary
// effect; resolve closes an approved report after dispute bookkeeping.
// All mutations commit together or not at all.
func (s *SettlementService) ProcessBugReport(actor models.Actor, req ProcessRequest) (*ProcessResult, error) {
	if req.BugReportID == "" {
		return nil, &ValidationError{Field: "bugReportId", Reason: "required"}
	}
	if !req.Action.Valid() {
		return nil, &ValidationError{Field: "action", Reason: "must be approve, reject, or resolve"}
	}
	if req.OverrideSeverity != "" && !req.OverrideSeverity.Valid() {
		return nil, &ValidationError{Field: "overrideSeverity", Reason: "must be critical, major, or minor"}
	}
	if req.Rating != 0 && (req.Rating < 1 || req.Rating > 5) {
		return nil, &ValidationError{Field: "rating", Reason: "must be between 1 and 5"}
	}

	result := &ProcessResult{}
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var report models.BugReport
		if err := tx.First(&report, "id = ?", req.BugReportID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return &NotFoundError{Resource: "bug report", ID: req.BugReportID}
			}
			return err
		}

		var project models.Project
		if err := tx.First(&project, "id = ?", report.ProjectID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return &NotFoundError{Resource: "project", ID: report.ProjectID}
			}
			return err
		}

		if !actor.CanProcessBugReport(&project) {
			return &ForbiddenError{Reason: "only the project's developer or an admin can manage its bug reports"}
		}

		if _, ok := models.NextBugStatus(report.Status, req.Action); !ok {
			return invalidTransition(&report)
		}

		// Severity may be corrected before pricing; the reward follows the
		// final severity.
		if req.OverrideSeverity != "" {
			report.Severity = req.OverrideSeverity
		}

		now := time.Now()

		switch req.Action {
		case models.ActionApprove:
			amount := project.BugRewards.For(report.Severity)
			if project.RemainingBounty < amount {
				return &InsufficientBountyError{
					RemainingBounty: project.RemainingBounty,
					Requested:       amount,
					NewTotalReward:  amount,
				}
			}

			// Conditional update on status is the per-report lock: two racing
			// settlements serialize here and the loser gets AlreadyProcessed.
			res := tx.Model(&models.BugReport{}).
				Where("id = ? AND status = ?", report.ID, models.BugPending).
				Updates(map[string]interface{}{
					"status":                models.BugApproved,
					"severity":              report.Severity,
					"reward_amount":         amount,
					"reward_status":         models.RewardPaid,
					"reward_approved_by_id": actor.ID,
					"reward_approved_at":    now,
				})
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return invalidTransition(&report)
			}

			// Guarded deduction: the pool can also be drained by a concurrent
			// reconciliation, so re-check the balance at write time.
			res = tx.Model(&models.Project{}).
				Where("id = ? AND remaining_bounty >= ?", project.ID, amount).
				Update("remaining_bounty", gorm.Expr("remaining_bounty - ?", amount))
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return &InsufficientBountyError{
					RemainingBounty: project.RemainingBounty,
					Requested:       amount,
					NewTotalReward:  amount,
				}
			}
			result.RemainingBounty = project.RemainingBounty - amount

			var tester models.User
			if err := tx.First(&tester, "id = ?", report.SubmittedByID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return &NotFoundError{Resource: "tester", ID: report.SubmittedByID}
				}
				return err
			}
			tester.Balance += amount
			tester.TotalEarnings += amount
			tester.TotalCreditsAcquired += amount
			tester.Stats.VerifiedBugs++
			tester.Stats.TotalApproved++
			tester.Stats.LastActive = &now
			result.BadgesAwarded = latchMilestoneBadges(&tester)
			if err := tx.Save(&tester).Error; err != nil {
				return err
			}
			log.Printf("💰 Reward paid: report=%s tester=%s amount=%d pool=%d",
				report.ID, tester.ID, amount, result.RemainingBounty)

		case models.ActionReject:
			res := tx.Model(&models.BugReport{}).
				Where("id = ? AND status = ?", report.ID, models.BugPending).
				Updates(map[string]interface{}{
					"status":        models.BugRejected,
					"severity":      report.Severity,
					"reward_status": models.RewardRejected,
				})
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return invalidTransition(&report)
			}
			result.RemainingBounty = project.RemainingBounty

			var tester models.User
			if err := tx.First(&tester, "id = ?", report.SubmittedByID).Error; err != nil {
				return err
			}
			tester.Stats.TotalRejected++
			tester.Stats.LastActive = &now
			if err := tx.Save(&tester).Error; err != nil {
				return err
			}

		case models.ActionResolve:
			res := tx.Model(&models.BugReport{}).
				Where("id = ? AND status = ?", report.ID, models.BugApproved).
				Update("status", models.BugResolved)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return invalidTransition(&report)
			}
			result.RemainingBounty = project.RemainingBounty
		}

		if req.DeveloperResponse != "" {
			if err := tx.Model(&models.BugReport{}).
				Where("id = ?", report.ID).
				Updates(map[string]interface{}{
					"response_message":         req.DeveloperResponse,
					"response_responded_by_id": actor.ID,
					"response_responded_at":    now,
				}).Error; err != nil {
				return err
			}
		}

		if req.Rating >= 1 && req.Rating <= 5 {
			if err := s.applyDeveloperRating(tx, &report, actor, req.Rating, req.RatingComment, now); err != nil {
				return err
			}
		}

		// Counts or ratings changed on approve/reject/rating paths; the score
		// must follow in the same commit.
		if req.Action != models.ActionResolve || req.Rating != 0 {
			if _, err := s.Reputation.Recompute(tx, report.SubmittedByID); err != nil {
				return err
			}
		}

		var updated models.BugReport
		if err := tx.Preload("Attachments").First(&updated, "id = ?", report.ID).Error; err != nil {
			return err
		}
		result.BugReport = &updated
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// applyDeveloperRating records a 1-5 rating on the report and folds it into
// the tester's running average.
func (s *SettlementService) applyDeveloperRating(tx *gorm.DB, report *models.BugReport, actor models.Actor, rating int, comment string, now time.Time) error {
	if err := tx.Model(&models.BugReport{}).
		Where("id = ?", report.ID).
		Updates(map[string]interface{}{
			"rating_rating":      rating,
			"rating_comment":     comment,
			"rating_rated_by_id": actor.ID,
			"rating_rated_at":    now,
		}).Error; err != nil {
		return err
	}

	var tester models.User
	if err := tx.First(&tester, "id = ?", report.SubmittedByID).Error; err != nil {
		return err
	}
	oldCount := tester.Stats.TotalDeveloperRatings
	newCount := oldCount + 1
	tester.Stats.AverageDeveloperRating =
		(tester.Stats.AverageDeveloperRating*float64(oldCount) + float64(rating)) / float64(newCount)
	tester.Stats.TotalDeveloperRatings = newCount
	return tx.Save(&tester).Error
}
