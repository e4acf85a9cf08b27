package services

import (
	"errors"
	"testing"

	"testquest/models"

	"gorm.io/gorm"
)

func newSettlement(db *gorm.DB) *SettlementService {
	return NewSettlementService(db, NewReputationService(db))
}

func TestApproveConservesPool(t *testing.T) {
	db := setupTestDB(t)
	svc := newSettlement(db)

	dev := createDeveloper(t, db)
	tester := createTester(t, db)
	project := createProject(t, db, dev.ID, 1000)
	report := createPendingReport(t, db, tester.ID, project.ID, models.SeverityMajor)

	result, err := svc.ProcessBugReport(developerActor(dev.ID), ProcessRequest{
		BugReportID: report.ID,
		Action:      models.ActionApprove,
	})
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	if result.RemainingBounty != 750 {
		t.Errorf("remaining bounty = %d, want 750", result.RemainingBounty)
	}
	if result.BugReport.Status != models.BugApproved {
		t.Errorf("status = %s, want approved", result.BugReport.Status)
	}
	if result.BugReport.Reward.Status != models.RewardPaid {
		t.Errorf("reward status = %s, want paid", result.BugReport.Reward.Status)
	}
	if result.BugReport.Reward.Amount != 250 {
		t.Errorf("reward amount = %d, want 250", result.BugReport.Reward.Amount)
	}

	var gotProject models.Project
	if err := db.First(&gotProject, "id = ?", project.ID).Error; err != nil {
		t.Fatal(err)
	}
	var gotTester models.User
	if err := db.First(&gotTester, "id = ?", tester.ID).Error; err != nil {
		t.Fatal(err)
	}

	// every credit leaving the pool must land on the tester
	paid := project.TotalBounty - gotProject.RemainingBounty
	if paid != gotTester.Balance {
		t.Errorf("pool paid %d but tester balance is %d", paid, gotTester.Balance)
	}
	if gotTester.TotalEarnings != 250 || gotTester.TotalCreditsAcquired != 250 {
		t.Errorf("earnings/credits = %d/%d, want 250/250",
			gotTester.TotalEarnings, gotTester.TotalCreditsAcquired)
	}
	if gotTester.Stats.VerifiedBugs != 1 || gotTester.Stats.TotalApproved != 1 {
		t.Errorf("verified/approved = %d/%d, want 1/1",
			gotTester.Stats.VerifiedBugs, gotTester.Stats.TotalApproved)
	}
	if !gotTester.Badges.FirstBlood {
		t.Error("First Blood badge not latched on first verified bug")
	}
}

func TestApproveInsufficientBounty(t *testing.T) {
	db := setupTestDB(t)
	svc := newSettlement(db)

	dev := createDeveloper(t, db)
	tester := createTester(t, db)
	project := createProject(t, db, dev.ID, 100) // critical costs 500
	report := createPendingReport(t, db, tester.ID, project.ID, models.SeverityCritical)

	_, err := svc.ProcessBugReport(developerActor(dev.ID), ProcessRequest{
		BugReportID: report.ID,
		Action:      models.ActionApprove,
	})
	var insufficient *InsufficientBountyError
	if !errors.As(err, &insufficient) {
		t.Fatalf("err = %v, want InsufficientBountyError", err)
	}
	if insufficient.RemainingBounty != 100 || insufficient.Requested != 500 {
		t.Errorf("error amounts = %d/%d, want 100/500",
			insufficient.RemainingBounty, insufficient.Requested)
	}

	// nothing may have moved
	var gotProject models.Project
	db.First(&gotProject, "id = ?", project.ID)
	if gotProject.RemainingBounty != 100 {
		t.Errorf("pool mutated on failed approve: %d", gotProject.RemainingBounty)
	}
	var gotReport models.BugReport
	db.First(&gotReport, "id = ?", report.ID)
	if gotReport.Status != models.BugPending {
		t.Errorf("report mutated on failed approve: %s", gotReport.Status)
	}
}

func TestDoubleApproveRejected(t *testing.T) {
	db := setupTestDB(t)
	svc := newSettlement(db)

	dev := createDeveloper(t, db)
	tester := createTester(t, db)
	project := createProject(t, db, dev.ID, 1000)
	report := createPendingReport(t, db, tester.ID, project.ID, models.SeverityMinor)

	if _, err := svc.ProcessBugReport(developerActor(dev.ID), ProcessRequest{
		BugReportID: report.ID,
		Action:      models.ActionApprove,
	}); err != nil {
		t.Fatalf("first approve: %v", err)
	}

	_, err := svc.ProcessBugReport(developerActor(dev.ID), ProcessRequest{
		BugReportID: report.ID,
		Action:      models.ActionApprove,
	})
	var processed *AlreadyProcessedError
	if !errors.As(err, &processed) {
		t.Fatalf("second approve err = %v, want AlreadyProcessedError", err)
	}

	// single payment only
	var gotTester models.User
	db.First(&gotTester, "id = ?", tester.ID)
	if gotTester.Balance != 100 {
		t.Errorf("tester balance = %d after double approve, want 100", gotTester.Balance)
	}
}

func TestRejectHasNoMonetaryEffect(t *testing.T) {
	db := setupTestDB(t)
	svc := newSettlement(db)

	dev := createDeveloper(t, db)
	tester := createTester(t, db)
	project := createProject(t, db, dev.ID, 1000)
	report := createPendingReport(t, db, tester.ID, project.ID, models.SeverityMajor)

	result, err := svc.ProcessBugReport(developerActor(dev.ID), ProcessRequest{
		BugReportID:       report.ID,
		Action:            models.ActionReject,
		DeveloperResponse: "Cannot reproduce on current build.",
	})
	if err != nil {
		t.Fatalf("reject: %v", err)
	}
	if result.BugReport.Status != models.BugRejected {
		t.Errorf("status = %s, want rejected", result.BugReport.Status)
	}
	if result.BugReport.DeveloperResponse.Message == "" {
		t.Error("developer response not recorded")
	}

	var gotProject models.Project
	db.First(&gotProject, "id = ?", project.ID)
	if gotProject.RemainingBounty != 1000 {
		t.Errorf("pool changed on reject: %d", gotProject.RemainingBounty)
	}
	var gotTester models.User
	db.First(&gotTester, "id = ?", tester.ID)
	if gotTester.Balance != 0 {
		t.Errorf("tester paid on reject: %d", gotTester.Balance)
	}
	if gotTester.Stats.TotalRejected != 1 {
		t.Errorf("totalRejected = %d, want 1", gotTester.Stats.TotalRejected)
	}
}

func TestResolveRequiresApproved(t *testing.T) {
	db := setupTestDB(t)
	svc := newSettlement(db)

	dev := createDeveloper(t, db)
	tester := createTester(t, db)
	project := createProject(t, db, dev.ID, 1000)
	report := createPendingReport(t, db, tester.ID, project.ID, models.SeverityMinor)

	_, err := svc.ProcessBugReport(developerActor(dev.ID), ProcessRequest{
		BugReportID: report.ID,
		Action:      models.ActionResolve,
	})
	var processed *AlreadyProcessedError
	if !errors.As(err, &processed) {
		t.Fatalf("resolve pending err = %v, want AlreadyProcessedError", err)
	}

	if _, err := svc.ProcessBugReport(developerActor(dev.ID), ProcessRequest{
		BugReportID: report.ID,
		Action:      models.ActionApprove,
	}); err != nil {
		t.Fatalf("approve: %v", err)
	}
	result, err := svc.ProcessBugReport(developerActor(dev.ID), ProcessRequest{
		BugReportID: report.ID,
		Action:      models.ActionResolve,
	})
	if err != nil {
		t.Fatalf("resolve approved: %v", err)
	}
	if result.BugReport.Status != models.BugResolved {
		t.Errorf("status = %s, want resolved", result.BugReport.Status)
	}
}

func TestProcessForbiddenForOtherDeveloper(t *testing.T) {
	db := setupTestDB(t)
	svc := newSettlement(db)

	dev := createDeveloper(t, db)
	other := createDeveloper(t, db)
	tester := createTester(t, db)
	project := createProject(t, db, dev.ID, 1000)
	report := createPendingReport(t, db, tester.ID, project.ID, models.SeverityMinor)

	_, err := svc.ProcessBugReport(developerActor(other.ID), ProcessRequest{
		BugReportID: report.ID,
		Action:      models.ActionApprove,
	})
	var forbidden *ForbiddenError
	if !errors.As(err, &forbidden) {
		t.Fatalf("err = %v, want ForbiddenError", err)
	}

	// an admin may act on any project
	admin := models.Actor{ID: other.ID, Roles: []models.Role{models.RoleAdmin}}
	if _, err := svc.ProcessBugReport(admin, ProcessRequest{
		BugReportID: report.ID,
		Action:      models.ActionApprove,
	}); err != nil {
		t.Fatalf("admin approve: %v", err)
	}
}

func TestSeverityOverridePricesFinalSeverity(t *testing.T) {
	db := setupTestDB(t)
	svc := newSettlement(db)

	dev := createDeveloper(t, db)
	tester := createTester(t, db)
	project := createProject(t, db, dev.ID, 1000)
	report := createPendingReport(t, db, tester.ID, project.ID, models.SeverityCritical)

	result, err := svc.ProcessBugReport(developerActor(dev.ID), ProcessRequest{
		BugReportID:      report.ID,
		Action:           models.ActionApprove,
		OverrideSeverity: models.SeverityMinor,
	})
	if err != nil {
		t.Fatalf("approve with override: %v", err)
	}
	if result.BugReport.Severity != models.SeverityMinor {
		t.Errorf("severity = %s, want minor", result.BugReport.Severity)
	}
	if result.BugReport.Reward.Amount != 100 {
		t.Errorf("reward = %d, want minor price 100", result.BugReport.Reward.Amount)
	}
}

func TestBadgeLatchesAtThreshold(t *testing.T) {
	db := setupTestDB(t)
	svc := newSettlement(db)

	dev := createDeveloper(t, db)
	tester := createTester(t, db)
	// one approval away from Bug Hunter
	db.Model(&models.User{}).Where("id = ?", tester.ID).Updates(map[string]interface{}{
		"stat_verified_bugs":  9,
		"stat_total_approved": 9,
		"badge_first_blood":   true,
	})
	project := createProject(t, db, dev.ID, 1000)
	report := createPendingReport(t, db, tester.ID, project.ID, models.SeverityMinor)

	result, err := svc.ProcessBugReport(developerActor(dev.ID), ProcessRequest{
		BugReportID: report.ID,
		Action:      models.ActionApprove,
	})
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	found := false
	for _, b := range result.BadgesAwarded {
		if b == "Bug Hunter" {
			found = true
		}
		if b == "First Blood" {
			t.Error("First Blood re-awarded after already latched")
		}
	}
	if !found {
		t.Errorf("badges awarded = %v, want Bug Hunter", result.BadgesAwarded)
	}

	var gotTester models.User
	db.First(&gotTester, "id = ?", tester.ID)
	if !gotTester.Badges.BugHunter {
		t.Error("Bug Hunter flag not persisted")
	}
}

func TestRatingFoldsIntoAverage(t *testing.T) {
	db := setupTestDB(t)
	svc := newSettlement(db)

	dev := createDeveloper(t, db)
	tester := createTester(t, db)
	db.Model(&models.User{}).Where("id = ?", tester.ID).Updates(map[string]interface{}{
		"stat_average_developer_rating": 4.0,
		"stat_total_developer_ratings":  2,
	})
	project := createProject(t, db, dev.ID, 1000)
	report := createPendingReport(t, db, tester.ID, project.ID, models.SeverityMinor)

	result, err := svc.ProcessBugReport(developerActor(dev.ID), ProcessRequest{
		BugReportID:   report.ID,
		Action:        models.ActionApprove,
		Rating:        1,
		RatingComment: "Steps were vague.",
	})
	if err != nil {
		t.Fatalf("approve with rating: %v", err)
	}
	if result.BugReport.DeveloperRating.Rating != 1 {
		t.Errorf("recorded rating = %d, want 1", result.BugReport.DeveloperRating.Rating)
	}

	var gotTester models.User
	db.First(&gotTester, "id = ?", tester.ID)
	// (4.0*2 + 1) / 3 = 3.0
	if gotTester.Stats.AverageDeveloperRating != 3.0 {
		t.Errorf("average rating = %v, want 3.0", gotTester.Stats.AverageDeveloperRating)
	}
	if gotTester.Stats.TotalDeveloperRatings != 3 {
		t.Errorf("rating count = %d, want 3", gotTester.Stats.TotalDeveloperRatings)
	}
}

func TestRatingOutOfRangeRejected(t *testing.T) {
	db := setupTestDB(t)
	svc := newSettlement(db)

	dev := createDeveloper(t, db)
	tester := createTester(t, db)
	project := createProject(t, db, dev.ID, 1000)
	report := createPendingReport(t, db, tester.ID, project.ID, models.SeverityMinor)

	_, err := svc.ProcessBugReport(developerActor(dev.ID), ProcessRequest{
		BugReportID: report.ID,
		Action:      models.ActionApprove,
		Rating:      6,
	})
	var validation *ValidationError
	if !errors.As(err, &validation) {
		t.Fatalf("err = %v, want ValidationError", err)
	}
}
