package services

import (
	"fmt"
	"strings"
	"testing"

	"testquest/models"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := db.AutoMigrate(
		&models.User{},
		&models.Project{},
		&models.BugReport{},
		&models.Attachment{},
		&models.ProjectDispute{},
		&models.Moderator{},
	); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	return db
}

func createTester(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	u := &models.User{
		ID:          uuid.NewString(),
		Name:        "Test Tester",
		Email:       uuid.NewString() + "@testers.example",
		AccountType: models.AccountTester,
	}
	if err := db.Create(u).Error; err != nil {
		t.Fatalf("create tester: %v", err)
	}
	return u
}

func createDeveloper(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	u := &models.User{
		ID:          uuid.NewString(),
		Name:        "Test Developer",
		Email:       uuid.NewString() + "@devs.example",
		AccountType: models.AccountDeveloper,
	}
	if err := db.Create(u).Error; err != nil {
		t.Fatalf("create developer: %v", err)
	}
	return u
}

func createProject(t *testing.T, db *gorm.DB, ownerID string, bounty int64) *models.Project {
	t.Helper()
	p := &models.Project{
		ID:         uuid.NewString(),
		Name:       "Checkout Flow Audit",
		PostedByID: ownerID,
		Platform:   "web",
		BugRewards: models.BugRewards{
			Critical: 500,
			Major:    250,
			Minor:    100,
		},
		TotalBounty:     bounty,
		RemainingBounty: bounty,
		Status:          models.ProjectApproved,
	}
	if err := db.Create(p).Error; err != nil {
		t.Fatalf("create project: %v", err)
	}
	return p
}

func createPendingReport(t *testing.T, db *gorm.DB, testerID, projectID string, sev models.Severity) *models.BugReport {
	t.Helper()
	r := &models.BugReport{
		ID:               uuid.NewString(),
		Title:            "Cart total drops discounts",
		Description:      "Applying a discount code and then changing quantity recalculates without it.",
		StepsToReproduce: "Add item, apply code, bump quantity.",
		ExpectedBehavior: "Discount stays applied.",
		ActualBehavior:   "Discount disappears.",
		Severity:         sev,
		Status:           models.BugPending,
		SubmittedByID:    testerID,
		ProjectID:        projectID,
		QualityScore:     7,
	}
	if err := db.Create(r).Error; err != nil {
		t.Fatalf("create bug report: %v", err)
	}
	return r
}

func createModerator(t *testing.T, db *gorm.DB) *models.Moderator {
	t.Helper()
	m := &models.Moderator{
		ID:       uuid.NewString(),
		Username: "mod-" + uuid.NewString()[:8],
		Email:    uuid.NewString() + "@mods.example",
		Role:     "moderator",
		Status:   models.ModeratorActive,
		Permissions: models.ModeratorPermissions{
			ViewDisputes:    true,
			ResolveDisputes: true,
			ViewAnalytics:   true,
		},
	}
	if err := db.Create(m).Error; err != nil {
		t.Fatalf("create moderator: %v", err)
	}
	return m
}

func createDispute(t *testing.T, db *gorm.DB, testerID string, project *models.Project, bugReportID *string) *models.ProjectDispute {
	t.Helper()
	d := &models.ProjectDispute{
		ID:            uuid.NewString(),
		Category:      models.DisputeUnfairRejection,
		Subject:       "Report rejected without review",
		Description:   "My reproduction steps were ignored.",
		SubmittedByID: testerID,
		ProjectID:     project.ID,
		ProjectName:   project.Name,
		BugReportID:   bugReportID,
		Status:        models.DisputePending,
		Priority:      models.PriorityMedium,
	}
	if err := db.Create(d).Error; err != nil {
		t.Fatalf("create dispute: %v", err)
	}
	return d
}

func testerActor(id string) models.Actor {
	return models.Actor{ID: id, Roles: []models.Role{models.RoleTester}}
}

func developerActor(id string) models.Actor {
	return models.Actor{ID: id, Roles: []models.Role{models.RoleDeveloper}}
}

// memStore keeps uploads in memory for submission tests.
type memStore struct {
	objects map[string][]byte
}

func newMemStore() *memStore {
	return &memStore{objects: map[string][]byte{}}
}

func (m *memStore) Put(key string, data []byte, contentType string) (string, error) {
	m.objects[key] = data
	return "https://cdn.test/" + key, nil
}
