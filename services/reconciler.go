package services

import (
	"errors"
	"log"
	"time"

	"testquest/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// moderatorResolveBonus is the flat incentive credited per resolved dispute.
// It is minted, not drawn from any project's bounty pool.
const moderatorResolveBonus = 100

type DisputeAction string

const (
	DisputeActionInvestigate DisputeAction = "investigate"
	DisputeActionResolve     DisputeAction = "resolve"
	DisputeActionDismiss     DisputeAction = "dismiss"
)

func (a DisputeAction) Valid() bool {
	switch a {
	case DisputeActionInvestigate, DisputeActionResolve, DisputeActionDismiss:
		return true
	}
	return false
}

// DisputeService files tester disputes and applies moderator resolutions,
// including reward reconciliation when a settled report's severity or status
// is overridden after the fact.
type DisputeService struct {
	DB         *gorm.DB
	Reputation *ReputationService
}

func NewDisputeService(db *gorm.DB, reputation *ReputationService) *DisputeService {
	return &DisputeService{DB: db, Reputation: reputation}
}

type FileDisputeRequest struct {
	Category           models.DisputeCategory `json:"category"`
	Subject            string                 `json:"subject"`
	Description        string                 `json:"description"`
	Evidence           string                 `json:"evidence,omitempty"`
	ExpectedResolution string                 `json:"expectedResolution,omitempty"`
	ProjectID          string                 `json:"projectId"`
	BugReportID        string                 `json:"bugReportId,omitempty"`
}

// FileDispute opens a project dispute for a tester. A referenced bug report
// must belong to both the caller and the project.
func (s *DisputeService) FileDispute(actor models.Actor, req FileDisputeRequest) (*models.ProjectDispute, error) {
	if !actor.CanFileDisputes() {
		return nil, &ForbiddenError{Reason: "tester account required to submit project disputes"}
	}
	if req.Category == "" || req.Subject == "" || req.Description == "" || req.ProjectID == "" {
		return nil, &ValidationError{Field: "category/subject/description/projectId", Reason: "required"}
	}
	if !req.Category.Valid() {
		return nil, &ValidationError{Field: "category", Reason: "unknown dispute category"}
	}

	var project models.Project
	if err := s.DB.First(&project, "id = ?", req.ProjectID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Resource: "project", ID: req.ProjectID}
		}
		return nil, err
	}

	var bugReportID *string
	if req.BugReportID != "" {
		var report models.BugReport
		if err := s.DB.First(&report, "id = ?", req.BugReportID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, &NotFoundError{Resource: "bug report", ID: req.BugReportID}
			}
			return nil, err
		}
		if report.SubmittedByID != actor.ID {
			return nil, &ForbiddenError{Reason: "bug report does not belong to you"}
		}
		if report.ProjectID != project.ID {
			return nil, &ValidationError{Field: "bugReportId", Reason: "bug report does not belong to this project"}
		}
		bugReportID = &report.ID
	}

	priority := models.PriorityMedium
	if req.Category == models.DisputePayment {
		priority = models.PriorityHigh
	}

	dispute := &models.ProjectDispute{
		ID:                 uuid.NewString(),
		Category:           req.Category,
		Subject:            req.Subject,
		Description:        req.Description,
		Evidence:           req.Evidence,
		ExpectedResolution: req.ExpectedResolution,
		SubmittedByID:      actor.ID,
		ProjectID:          project.ID,
		ProjectName:        project.Name,
		BugReportID:        bugReportID,
		Status:             models.DisputePending,
		Priority:           priority,
	}
	if err := s.DB.Create(dispute).Error; err != nil {
		return nil, err
	}
	return dispute, nil
}

// ListMyDisputes returns the caller's disputes, newest first, optionally
// narrowed to one project.
func (s *DisputeService) ListMyDisputes(actor models.Actor, projectID string) ([]models.ProjectDispute, error) {
	q := s.DB.Where("submitted_by_id = ?", actor.ID)
	if projectID != "" {
		q = q.Where("project_id = ?", projectID)
	}
	var disputes []models.ProjectDispute
	err := q.Order("created_at DESC").Find(&disputes).Error
	return disputes, err
}

type DisputeFilter struct {
	Status   models.DisputeStatus
	Priority models.DisputePriority
	Category models.DisputeCategory
	Page     int
	Limit    int
}

// ListDisputes returns disputes for moderator review, urgent first. The
// caller must hold the view-disputes permission.
func (s *DisputeService) ListDisputes(moderatorID string, filter DisputeFilter) ([]models.ProjectDispute, error) {
	var moderator models.Moderator
	if err := s.DB.First(&moderator, "id = ?", moderatorID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Resource: "moderator", ID: moderatorID}
		}
		return nil, err
	}
	if moderator.Status != models.ModeratorActive || !moderator.Permissions.ViewDisputes {
		return nil, &ForbiddenError{Reason: "insufficient permissions to view disputes"}
	}

	q := s.DB.Model(&models.ProjectDispute{})
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.Priority != "" {
		q = q.Where("priority = ?", filter.Priority)
	}
	if filter.Category != "" {
		q = q.Where("category = ?", filter.Category)
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	limit := filter.Limit
	if limit < 1 || limit > 100 {
		limit = 20
	}

	var disputes []models.ProjectDispute
	err := q.Order("CASE priority WHEN 'urgent' THEN 0 WHEN 'high' THEN 1 WHEN 'medium' THEN 2 ELSE 3 END, created_at ASC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&disputes).Error
	return disputes, err
}

type BugReportOverride struct {
	BugReportID string           `json:"bugReportId"`
	NewSeverity models.Severity  `json:"newSeverity,omitempty"`
	NewStatus   models.BugStatus `json:"newStatus,omitempty"`
	GrantReward bool             `json:"grantReward"`
}

type ResolveDisputeRequest struct {
	DisputeID         string             `json:"disputeId"`
	Action            DisputeAction      `json:"action"`
	Response          string             `json:"response,omitempty"`
	ResolutionAction  string             `json:"resolutionAction,omitempty"`
	ResolutionDetails string             `json:"resolutionDetails,omitempty"`
	Override          *BugReportOverride `json:"bugReportOverride,omitempty"`
}

type ResolveDisputeResult struct {
	Dispute          *models.ProjectDispute `json:"dispute"`
	BugReportUpdated bool                   `json:"bug_report_updated"`
	RewardGranted    bool                   `json:"reward_granted"`
	RewardAmount     int64                  `json:"reward_amount"` // the delta actually credited
	ModeratorBalance int64                  `json:"moderator_balance"`
}

// ResolveDispute applies a moderator action to an open dispute. When an
// override is supplied for the linked bug report, the reward is reconciled
// delta-style: the tester receives only the difference between the new
// severity's reward and what was already paid, and the pool gives up exactly
// that difference. Reductions and no-op corrections are rejected outright.
func (s *DisputeService) ResolveDispute(moderatorID string, req ResolveDisputeRequest) (*ResolveDisputeResult, error) {
	if req.DisputeID == "" {
		return nil, &ValidationError{Field: "disputeId", Reason: "required"}
	}
	if !req.Action.Valid() {
		return nil, &ValidationError{Field: "action", Reason: "must be investigate, resolve, or dismiss"}
	}

	result := &ResolveDisputeResult{}
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var moderator models.Moderator
		if err := tx.First(&moderator, "id = ?", moderatorID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return &NotFoundError{Resource: "moderator", ID: moderatorID}
			}
			return err
		}
		if moderator.Status != models.ModeratorActive {
			return &ForbiddenError{Reason: "moderator account is not active"}
		}
		if !moderator.Permissions.ResolveDisputes {
			return &ForbiddenError{Reason: "insufficient permissions to resolve disputes"}
		}
		result.ModeratorBalance = moderator.Balance

		var dispute models.ProjectDispute
		if err := tx.First(&dispute, "id = ?", req.DisputeID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return &NotFoundError{Resource: "dispute", ID: req.DisputeID}
			}
			return err
		}
		if !dispute.Status.Open() {
			return &AlreadyProcessedError{Resource: "dispute", ID: dispute.ID, Status: string(dispute.Status)}
		}

		// The bug-report override is reconciled first so a failed override
		// rolls the dispute transition back with it.
		if req.Override != nil {
			if dispute.BugReportID == nil {
				return &ValidationError{Field: "bugReportOverride", Reason: "dispute has no linked bug report"}
			}
			if req.Override.BugReportID != *dispute.BugReportID {
				return &ValidationError{Field: "bugReportOverride.bugReportId", Reason: "does not match the dispute's bug report"}
			}
			if err := s.reconcileOverride(tx, &moderator, req.Override, result); err != nil {
				return err
			}
		}

		now := time.Now()
		switch req.Action {
		case DisputeActionInvestigate:
			dispute.Status = models.DisputeInvestigating
		case DisputeActionResolve:
			dispute.Status = models.DisputeResolved
			action := req.ResolutionAction
			if action == "" {
				action = "Issue resolved"
			}
			dispute.Resolution = models.DisputeResolution{
				Action:       action,
				Details:      req.ResolutionDetails,
				ResolvedByID: &moderator.ID,
				ResolvedAt:   &now,
			}
		case DisputeActionDismiss:
			dispute.Status = models.DisputeDismissed
		}
		if req.Response != "" {
			dispute.AdminResponse = models.AdminResponse{
				Message:       req.Response,
				RespondedByID: &moderator.ID,
				RespondedAt:   &now,
			}
		}
		if err := tx.Save(&dispute).Error; err != nil {
			return err
		}

		if req.Action == DisputeActionResolve {
			if err := tx.Model(&models.Moderator{}).
				Where("id = ?", moderator.ID).
				Updates(map[string]interface{}{
					"balance":                gorm.Expr("balance + ?", moderatorResolveBonus),
					"stat_resolved_disputes": gorm.Expr("stat_resolved_disputes + 1"),
					"stat_total_disputes":    gorm.Expr("stat_total_disputes + 1"),
					"stat_last_activity":     now,
				}).Error; err != nil {
				return err
			}
			result.ModeratorBalance = moderator.Balance + moderatorResolveBonus
			log.Printf("💰 Moderator %s credited %d for resolving dispute %s",
				moderator.ID, moderatorResolveBonus, dispute.ID)
		}

		result.Dispute = &dispute
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// reconcileOverride corrects a settled bug report without breaking pool
// conservation or paying the same bug twice.
func (s *DisputeService) reconcileOverride(tx *gorm.DB, moderator *models.Moderator, ov *BugReportOverride, result *ResolveDisputeResult) error {
	var report models.BugReport
	if err := tx.First(&report, "id = ?", ov.BugReportID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &NotFoundError{Resource: "bug report", ID: ov.BugReportID}
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
	var tester models.User
	if err := tx.First(&tester, "id = ?", report.SubmittedByID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &NotFoundError{Resource: "tester", ID: report.SubmittedByID}
		}
		return err
	}

	// Severity and status corrections apply whether or not a reward is
	// granted.
	if ov.NewSeverity != "" {
		if !ov.NewSeverity.Valid() {
			return &ValidationError{Field: "newSeverity", Reason: "must be critical, major, or minor"}
		}
		report.Severity = ov.NewSeverity
		result.BugReportUpdated = true
	}
	if ov.NewStatus != "" {
		if !ov.NewStatus.Valid() || ov.NewStatus == models.BugResolved {
			return &ValidationError{Field: "newStatus", Reason: "must be pending, approved, or rejected"}
		}
		report.Status = ov.NewStatus
		result.BugReportUpdated = true
	}

	if ov.GrantReward {
		newAmount := project.BugRewards.For(report.Severity)
		if newAmount <= 0 {
			return &ValidationError{Field: "newSeverity", Reason: "no reward configured for this severity level"}
		}

		alreadyPaid := int64(0)
		if report.Reward.Status == models.RewardPaid {
			alreadyPaid = report.Reward.Amount
		}
		diff := newAmount - alreadyPaid

		switch {
		case diff > 0:
			if project.RemainingBounty < diff {
				return &InsufficientBountyError{
					RemainingBounty: project.RemainingBounty,
					Requested:       diff,
					AlreadyPaid:     alreadyPaid,
					NewTotalReward:  newAmount,
				}
			}
			res := tx.Model(&models.Project{}).
				Where("id = ? AND remaining_bounty >= ?", project.ID, diff).
				Update("remaining_bounty", gorm.Expr("remaining_bounty - ?", diff))
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return &InsufficientBountyError{
					RemainingBounty: project.RemainingBounty,
					Requested:       diff,
					AlreadyPaid:     alreadyPaid,
					NewTotalReward:  newAmount,
				}
			}

			now := time.Now()
			tester.Balance += diff
			tester.TotalEarnings += diff
			report.Reward = models.Reward{
				Amount:       newAmount,
				Status:       models.RewardPaid,
				ApprovedByID: &moderator.ID,
				ApprovedAt:   &now,
			}

			// A bug counts toward verifiedBugs exactly once: only when
			// nothing had been paid before does this grant verify it.
			if alreadyPaid == 0 {
				tester.Stats.VerifiedBugs++
				tester.Stats.TotalApproved++
				latchMilestoneBadges(&tester)
			}
			if err := tx.Save(&tester).Error; err != nil {
				return err
			}
			if _, err := s.Reputation.Recompute(tx, tester.ID); err != nil {
				return err
			}

			result.RewardGranted = true
			result.RewardAmount = diff
			result.BugReportUpdated = true
			log.Printf("⚖️  Reconciled reward: report=%s paid=%d delta=%d by moderator=%s",
				report.ID, newAmount, diff, moderator.ID)

		case diff < 0:
			return &CannotReduceRewardError{AlreadyPaid: alreadyPaid, NewRewardAmount: newAmount}

		default:
			return &AlreadyCorrectAmountError{AlreadyPaid: alreadyPaid}
		}
	}

	if result.BugReportUpdated {
		return tx.Save(&report).Error
	}
	return nil
}
