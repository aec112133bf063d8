// internal/services/application_service.go
package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/plantcert/pvp-backend/internal/models"
	"github.com/plantcert/pvp-backend/internal/utils"
)

// ApplicationService owns the case-file lifecycle. Status transitions are
// validated against the lifecycle table and drive rule evaluation at the
// trigger points: filing, publication and grant.
type ApplicationService struct {
	db           *gorm.DB
	rulesService *RulesService
	taskService  *TaskService
	auditService *AuditService
}

type CreateApplicationRequest struct {
	VarietyID      uuid.UUID `json:"variety_id" validate:"required"`
	JurisdictionID uuid.UUID `json:"jurisdiction_id" validate:"required"`
	Reference      string    `json:"reference,omitempty" validate:"max=100"`
}

type FileApplicationRequest struct {
	FilingDate *time.Time `json:"filing_date,omitempty"`
}

type TransitionRequest struct {
	Status          models.ApplicationStatus `json:"status" validate:"required"`
	PublicationDate *time.Time               `json:"publication_date,omitempty"`
	GrantDate       *time.Time               `json:"grant_date,omitempty"`
}

type ApplicationSearchParams struct {
	utils.PaginationParams
	Status         *models.ApplicationStatus `json:"status,omitempty"`
	JurisdictionID *uuid.UUID                `json:"jurisdiction_id,omitempty"`
	VarietyID      *uuid.UUID                `json:"variety_id,omitempty"`
}

var (
	ErrInvalidTransition    = errors.New("invalid status transition")
	ErrGrantDateRequired    = errors.New("grant date is required to issue a certificate")
	ErrJurisdictionNotFound = errors.New("jurisdiction not found")
)

func NewApplicationService(db *gorm.DB, rulesService *RulesService, taskService *TaskService, auditService *AuditService) *ApplicationService {
	return &ApplicationService{
		db:           db,
		rulesService: rulesService,
		taskService:  taskService,
		auditService: auditService,
	}
}

// Create opens a Draft case file for an organisation-owned variety.
func (s *ApplicationService) Create(scope Scope, req *CreateApplicationRequest) (*models.Application, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}
	if scope.Unscoped() {
		return nil, errors.New("applications must be created within an organisation")
	}

	var variety models.Variety
	if err := scope.scoped(s.db).First(&variety, "id = ?", req.VarietyID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrVarietyNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	var jurisdiction models.Jurisdiction
	if err := s.db.First(&jurisdiction, "id = ?", req.JurisdictionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrJurisdictionNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	application := &models.Application{
		OrganizationID: *scope.OrgID,
		VarietyID:      variety.ID,
		JurisdictionID: jurisdiction.ID,
		Reference:      req.Reference,
		Status:         models.ApplicationStatusDraft,
		DUSStatus:      models.DUSStatusNotStarted,
		CreatedBy:      scope.UserID,
	}

	if err := s.db.Create(application).Error; err != nil {
		return nil, fmt.Errorf("failed to create application: %w", err)
	}

	return application, nil
}

// File transitions Draft to Filed, stamps the filing date and triggers
// FILING_DATE rule evaluation.
func (s *ApplicationService) File(scope Scope, applicationID uuid.UUID, req *FileApplicationRequest) (*models.Application, *GenerationResult, error) {
	var application models.Application
	if err := scope.scoped(s.db).First(&application, "id = ?", applicationID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrApplicationNotFound
		}
		return nil, nil, fmt.Errorf("database error: %w", err)
	}

	if !application.Status.CanTransitionTo(models.ApplicationStatusFiled) {
		return nil, nil, ErrInvalidTransition
	}

	filingDate := time.Now()
	if req != nil && req.FilingDate != nil {
		filingDate = *req.FilingDate
	}

	application.Status = models.ApplicationStatusFiled
	application.FilingDate = &filingDate

	if err := s.db.Save(&application).Error; err != nil {
		return nil, nil, fmt.Errorf("failed to update application: %w", err)
	}

	generation, err := s.taskService.GenerateForApplication(scope, application.ID, models.TriggerFilingDate)
	if err != nil {
		// Filing succeeded; the generation failure surfaces on its own.
		logrus.WithError(err).WithField("application_id", application.ID).
			Error("Task generation failed after filing")
		return &application, nil, err
	}

	return &application, generation, nil
}

// TransitionStatus advances the lifecycle. Publication and grant carry their
// own anchor dates and trigger rule evaluation; certificate issue also
// computes the protection term end.
func (s *ApplicationService) TransitionStatus(scope Scope, applicationID uuid.UUID, req *TransitionRequest) (*models.Application, *GenerationResult, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, nil, fmt.Errorf("validation failed: %w", err)
	}

	var application models.Application
	if err := scope.scoped(s.db).First(&application, "id = ?", applicationID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrApplicationNotFound
		}
		return nil, nil, fmt.Errorf("database error: %w", err)
	}

	if !application.Status.CanTransitionTo(req.Status) {
		return nil, nil, ErrInvalidTransition
	}

	var trigger *models.TriggerEvent

	switch req.Status {
	case models.ApplicationStatusPublishedOpp:
		publicationDate := time.Now()
		if req.PublicationDate != nil {
			publicationDate = *req.PublicationDate
		}
		application.PublicationDate = &publicationDate
		t := models.TriggerPublicationDate
		trigger = &t

	case models.ApplicationStatusCertificateIssued:
		if req.GrantDate == nil {
			return nil, nil, ErrGrantDateRequired
		}
		application.GrantDate = req.GrantDate

		expiry, err := s.rulesService.ComputeTermEndDate(application.VarietyID, application.JurisdictionID, *req.GrantDate)
		if err != nil {
			return nil, nil, err
		}
		application.ExpiryDate = expiry

		auditResult := s.auditService.LogExecution(&application.OrganizationID, &scope.UserID,
			RuleTypeTermComputation,
			models.JSONB{
				"application_id":  application.ID.String(),
				"variety_id":      application.VarietyID.String(),
				"jurisdiction_id": application.JurisdictionID.String(),
				"grant_date":      req.GrantDate.Format(time.RFC3339),
			},
			models.JSONB{
				"expiry_date": formatDate(expiry),
			})
		if !auditResult.Logged {
			logrus.WithField("application_id", application.ID).
				Warn("Term computation succeeded but audit entry was lost")
		}

		t := models.TriggerGrantDate
		trigger = &t
	}

	application.Status = req.Status

	if err := s.db.Save(&application).Error; err != nil {
		return nil, nil, fmt.Errorf("failed to update application: %w", err)
	}

	if trigger == nil {
		return &application, nil, nil
	}

	generation, err := s.taskService.GenerateForApplication(scope, application.ID, *trigger)
	if err != nil {
		logrus.WithError(err).WithField("application_id", application.ID).
			Error("Task generation failed after status transition")
		return &application, nil, err
	}

	return &application, generation, nil
}

// UpdateDUSStatus records progress of the DUS examination without moving the
// main lifecycle.
func (s *ApplicationService) UpdateDUSStatus(scope Scope, applicationID uuid.UUID, dusStatus models.DUSStatus) (*models.Application, error) {
	var application models.Application
	if err := scope.scoped(s.db).First(&application, "id = ?", applicationID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrApplicationNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	switch dusStatus {
	case models.DUSStatusNotStarted, models.DUSStatusInProgress, models.DUSStatusPassed, models.DUSStatusFailed:
	default:
		return nil, errors.New("invalid DUS status")
	}

	application.DUSStatus = dusStatus
	if err := s.db.Save(&application).Error; err != nil {
		return nil, fmt.Errorf("failed to update application: %w", err)
	}

	return &application, nil
}

// Get loads one application with its relations, tenant-scoped.
func (s *ApplicationService) Get(scope Scope, applicationID uuid.UUID) (*models.Application, error) {
	var application models.Application
	if err := scope.scoped(s.db).
		Preload("Variety").Preload("Jurisdiction").
		First(&application, "id = ?", applicationID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrApplicationNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &application, nil
}

// Search lists applications with filters and pagination, tenant-scoped.
func (s *ApplicationService) Search(scope Scope, params ApplicationSearchParams) ([]models.Application, int64, error) {
	query := scope.scoped(s.db.Model(&models.Application{})).
		Preload("Variety").Preload("Jurisdiction")

	if params.Status != nil {
		query = query.Where("status = ?", *params.Status)
	}
	if params.JurisdictionID != nil {
		query = query.Where("jurisdiction_id = ?", *params.JurisdictionID)
	}
	if params.VarietyID != nil {
		query = query.Where("variety_id = ?", *params.VarietyID)
	}
	if params.Search != "" {
		query = query.Where("reference ILIKE ?", "%"+params.Search+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count applications: %w", err)
	}

	allowedSortFields := []string{"created_at", "updated_at", "filing_date", "status"}
	query = utils.ApplySort(query, params.PaginationParams, allowedSortFields)
	query = utils.ApplyPagination(query, params.PaginationParams)

	var applications []models.Application
	if err := query.Find(&applications).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch applications: %w", err)
	}

	return applications, total, nil
}

func formatDate(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return t.Format(time.RFC3339)
}
