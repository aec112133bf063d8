// internal/services/document_service.go
package services

import (
	"errors"
	"fmt"
	"mime/multipart"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/plantcert/pvp-backend/internal/models"
)

// DocumentService records uploaded documents against applications and
// renewal terms. An upload whose type matches a pending DOCUMENT task
// completes that task.
type DocumentService struct {
	db             *gorm.DB
	storageService *StorageService
}

type UploadDocumentRequest struct {
	DocType       string     `json:"doc_type" validate:"required,max=100"`
	Title         string     `json:"title,omitempty" validate:"max=255"`
	RenewalTermID *uuid.UUID `json:"renewal_term_id,omitempty"`
}

var ErrDocumentNotFound = errors.New("document not found")

func NewDocumentService(db *gorm.DB, storageService *StorageService) *DocumentService {
	return &DocumentService{
		db:             db,
		storageService: storageService,
	}
}

func (s *DocumentService) Upload(scope Scope, applicationID uuid.UUID, file multipart.File, header *multipart.FileHeader, req *UploadDocumentRequest) (*models.Document, error) {
	var application models.Application
	if err := scope.scoped(s.db).First(&application, "id = ?", applicationID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrApplicationNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if req.RenewalTermID != nil {
		var term models.RenewalTerm
		if err := s.db.Where("id = ? AND application_id = ?", *req.RenewalTermID, application.ID).
			First(&term).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrRenewalTermNotFound
			}
			return nil, fmt.Errorf("database error: %w", err)
		}
	}

	upload, err := s.storageService.UploadFile(file, header, s.storageService.DocumentUploadOptions())
	if err != nil {
		return nil, fmt.Errorf("failed to store document: %w", err)
	}

	title := req.Title
	if title == "" {
		title = header.Filename
	}

	document := &models.Document{
		OrganizationID: application.OrganizationID,
		ApplicationID:  application.ID,
		RenewalTermID:  req.RenewalTermID,
		DocType:        req.DocType,
		Title:          title,
		FileURL:        upload.URL,
		FileHash:       upload.Hash,
		UploadedBy:     scope.UserID,
	}

	if err := s.db.Create(document).Error; err != nil {
		return nil, fmt.Errorf("failed to create document record: %w", err)
	}

	s.completeMatchingTask(scope, &application, req.DocType)

	return document, nil
}

// completeMatchingTask closes the generated "Upload <type>" task when its
// document arrives. Best effort: a miss leaves the task open for manual
// completion.
func (s *DocumentService) completeMatchingTask(scope Scope, application *models.Application, docType string) {
	var task models.Task
	err := s.db.Where(
		"application_id = ? AND task_type = ? AND status = ? AND title = ?",
		application.ID, models.TaskTypeDocument, models.TaskStatusPending, "Upload "+docType,
	).First(&task).Error
	if err != nil {
		return
	}

	now := time.Now()
	s.db.Model(&task).Updates(map[string]interface{}{
		"status":       models.TaskStatusCompleted,
		"completed_at": now,
		"completed_by": scope.UserID,
	})
}

func (s *DocumentService) List(scope Scope, applicationID uuid.UUID) ([]models.Document, error) {
	var application models.Application
	if err := scope.scoped(s.db).First(&application, "id = ?", applicationID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrApplicationNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	var documents []models.Document
	if err := s.db.Where("application_id = ?", application.ID).
		Order("created_at DESC").
		Find(&documents).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch documents: %w", err)
	}

	return documents, nil
}

func (s *DocumentService) Delete(scope Scope, documentID uuid.UUID) error {
	var document models.Document
	if err := scope.scoped(s.db).First(&document, "id = ?", documentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrDocumentNotFound
		}
		return fmt.Errorf("database error: %w", err)
	}

	if err := s.db.Delete(&document).Error; err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}

	return nil
}
