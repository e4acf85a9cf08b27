package services

import (
	"encoding/base64"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"testquest/models"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"gorm.io/gorm"
)

// AttachmentStore persists opaque attachment payloads and returns a public
// URL. The service never looks inside the bytes.
type AttachmentStore interface {
	Put(key string, data []byte, contentType string) (string, error)
}

// maxAttachmentSize caps a single decoded attachment payload.
const maxAttachmentSize = 10 * 1024 * 1024 // 10MB

type SubmissionService struct {
	DB          *gorm.DB
	Reputation  *ReputationService
	Attachments AttachmentStore
}

func NewSubmissionService(db *gorm.DB, reputation *ReputationService, store AttachmentStore) *SubmissionService {
	return &SubmissionService{DB: db, Reputation: reputation, Attachments: store}
}

type AttachmentUpload struct {
	OriginalName string `json:"originalName"`
	MimeType     string `json:"mimetype"`
	Data         string `json:"data"` // base64 payload
}

type SubmitRequest struct {
	Title            string             `json:"title"`
	Description      string             `json:"description"`
	StepsToReproduce string             `json:"stepsToReproduce"`
	ExpectedBehavior string             `json:"expectedBehavior"`
	ActualBehavior   string             `json:"actualBehavior"`
	Severity         models.Severity    `json:"severity"`
	ProjectID        string             `json:"projectId"`
	Attachments      []AttachmentUpload `json:"attachments"`
}

// SubmitBugReport files a new pending report against an approved project,
// stores its attachments, scores its completeness and refreshes the tester's
// submission stats.
func (s *SubmissionService) SubmitBugReport(actor models.Actor, req SubmitRequest) (*models.BugReport, error) {
	if !actor.CanSubmitBugReports() {
		return nil, &ForbiddenError{Reason: "tester account required to submit bug reports"}
	}
	for field, value := range map[string]string{
		"title":            req.Title,
		"description":      req.Description,
		"stepsToReproduce": req.StepsToReproduce,
		"expectedBehavior": req.ExpectedBehavior,
		"actualBehavior":   req.ActualBehavior,
		"projectId":        req.ProjectID,
	} {
		if value == "" {
			return nil, &ValidationError{Field: field, Reason: "required"}
		}
	}
	severity := req.Severity
	if severity == "" {
		severity = models.SeverityMinor
	}
	if !severity.Valid() {
		return nil, &ValidationError{Field: "severity", Reason: "must be critical, major, or minor"}
	}

	var project models.Project
	if err := s.DB.First(&project, "id = ?", req.ProjectID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Resource: "project", ID: req.ProjectID}
		}
		return nil, err
	}
	if project.Status != models.ProjectApproved {
		return nil, &ValidationError{Field: "projectId", Reason: "bug reports can only target approved projects"}
	}

	// Decode and store payloads before opening the transaction; object storage
	// is the slow part and a failed upload should not hold a DB transaction.
	attachments, err := s.storeAttachments(&project, req.Attachments)
	if err != nil {
		return nil, err
	}

	report := &models.BugReport{
		ID:               uuid.NewString(),
		Title:            req.Title,
		Description:      req.Description,
		StepsToReproduce: req.StepsToReproduce,
		ExpectedBehavior: req.ExpectedBehavior,
		ActualBehavior:   req.ActualBehavior,
		Severity:         severity,
		Status:           models.BugPending,
		SubmittedByID:    actor.ID,
		ProjectID:        project.ID,
		Attachments:      attachments,
		QualityScore: CalculateQualityScore(QualityInput{
			Description:      req.Description,
			StepsToReproduce: req.StepsToReproduce,
			ExpectedBehavior: req.ExpectedBehavior,
			ActualBehavior:   req.ActualBehavior,
			AttachmentCount:  len(attachments),
		}),
	}

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(report).Error; err != nil {
			return err
		}

		var tester models.User
		if err := tx.First(&tester, "id = ?", actor.ID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return &NotFoundError{Resource: "tester", ID: actor.ID}
			}
			return err
		}
		now := time.Now()
		tester.Stats.TotalSubmitted++
		tester.Stats.LastActive = &now
		if err := tx.Save(&tester).Error; err != nil {
			return err
		}

		_, err := s.Reputation.Recompute(tx, actor.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return report, nil
}

// AttachmentKey builds the object key for an attachment payload. Keys are
// grouped by a slug of the project name so a project's blobs share a prefix.
func AttachmentKey(projectName, originalName string) string {
	ext := strings.ToLower(filepath.Ext(originalName))
	return fmt.Sprintf("attachments/%s/%s%s", slug.Make(projectName), uuid.NewString(), ext)
}

func (s *SubmissionService) storeAttachments(project *models.Project, uploads []AttachmentUpload) ([]models.Attachment, error) {
	if len(uploads) == 0 {
		return nil, nil
	}
	attachments := make([]models.Attachment, 0, len(uploads))
	for _, up := range uploads {
		data, err := base64.StdEncoding.DecodeString(up.Data)
		if err != nil {
			return nil, &ValidationError{Field: "attachments", Reason: "payload is not valid base64"}
		}
		if len(data) == 0 {
			return nil, &ValidationError{Field: "attachments", Reason: "payload is empty"}
		}
		if len(data) > maxAttachmentSize {
			return nil, &ValidationError{Field: "attachments", Reason: "payload exceeds 10MB"}
		}

		key := AttachmentKey(project.Name, up.OriginalName)
		url, err := s.Attachments.Put(key, data, up.MimeType)
		if err != nil {
			return nil, err
		}
		attachments = append(attachments, models.Attachment{
			ID:           uuid.NewString(),
			OriginalName: up.OriginalName,
			MimeType:     up.MimeType,
			Size:         int64(len(data)),
			StorageKey:   key,
			URL:          url,
		})
	}
	return attachments, nil
}
