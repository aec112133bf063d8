// internal/services/maintenance_service.go
package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/plantcert/pvp-backend/internal/models"
)

// ScheduleYears is the fixed length of the renewal schedule: one annuity
// obligation per year following grant.
const ScheduleYears = 25

// MaintenanceService produces and maintains the 25-year renewal schedule for
// an application once a grant date exists, and recomputes it on anchor-date
// change. Generation is lazy: the schedule materialises on first read.
type MaintenanceService struct {
	db                  *gorm.DB
	rulesService        *RulesService
	auditService        *AuditService
	notificationService *NotificationService
}

var (
	ErrScheduleNotGenerated = errors.New("renewal schedule has not been generated")
	ErrRenewalTermNotFound  = errors.New("renewal term not found")
	ErrTermAlreadySettled   = errors.New("renewal term is already settled")
)

func NewMaintenanceService(db *gorm.DB, rulesService *RulesService, auditService *AuditService, notificationService *NotificationService) *MaintenanceService {
	return &MaintenanceService{
		db:                  db,
		rulesService:        rulesService,
		auditService:        auditService,
		notificationService: notificationService,
	}
}

// GetSchedule returns the application's renewal terms ordered by year,
// generating them first if the application has a grant date and no schedule
// yet. Without a grant date the schedule stays empty; that is not an error.
func (s *MaintenanceService) GetSchedule(scope Scope, applicationID uuid.UUID) ([]models.RenewalTerm, error) {
	application, err := s.loadApplication(scope, applicationID)
	if err != nil {
		return nil, err
	}

	var terms []models.RenewalTerm
	if err := s.db.Where("application_id = ?", application.ID).
		Order("year ASC").
		Find(&terms).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch renewal terms: %w", err)
	}

	if len(terms) > 0 || application.GrantDate == nil {
		return terms, nil
	}

	if err := s.generate(scope, application); err != nil {
		return nil, err
	}

	if err := s.db.Where("application_id = ?", application.ID).
		Order("year ASC").
		Find(&terms).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch renewal terms: %w", err)
	}

	return terms, nil
}

// generate inserts the 25 annual rows anchored to the grant date. Due dates
// use calendar-year addition so leap-year day shifts are absorbed naturally.
// The unique (application_id, year) index turns a concurrent first-view race
// into a detectable no-op.
func (s *MaintenanceService) generate(scope Scope, application *models.Application) error {
	grantDate := *application.GrantDate

	fee, err := s.rulesService.RenewalFee(application.JurisdictionID)
	if err != nil {
		return err
	}

	var jurisdiction models.Jurisdiction
	if err := s.db.First(&jurisdiction, "id = ?", application.JurisdictionID).Error; err != nil {
		return fmt.Errorf("failed to fetch jurisdiction: %w", err)
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		var existing int64
		if err := tx.Model(&models.RenewalTerm{}).
			Where("application_id = ?", application.ID).
			Count(&existing).Error; err != nil {
			return fmt.Errorf("failed to check existing schedule: %w", err)
		}
		if existing > 0 {
			return nil
		}

		terms := make([]models.RenewalTerm, 0, ScheduleYears)
		for year := 1; year <= ScheduleYears; year++ {
			terms = append(terms, models.RenewalTerm{
				OrganizationID: application.OrganizationID,
				ApplicationID:  application.ID,
				Year:           year,
				DueDate:        grantDate.AddDate(year, 0, 0),
				Status:         models.RenewalStatusUpcoming,
				Amount:         fee,
				CurrencyCode:   jurisdiction.CurrencyCode,
			})
		}

		if err := tx.Create(&terms).Error; err != nil {
			// A concurrent first view won the race on the unique index.
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return nil
			}
			return fmt.Errorf("failed to create renewal schedule: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	auditResult := s.auditService.LogExecution(&application.OrganizationID, &scope.UserID,
		RuleTypeMaintenanceSchedule,
		models.JSONB{
			"application_id": application.ID.String(),
			"grant_date":     grantDate.Format(time.RFC3339),
		},
		models.JSONB{
			"years": ScheduleYears,
		})
	if !auditResult.Logged {
		logrus.WithField("application_id", application.ID).
			Warn("Renewal schedule generated but audit entry was lost")
	}

	return nil
}

// Reschedule shifts the whole schedule to a new anchor date: year 1 falls on
// the anchor itself, year N on anchor + (N-1) years. Status, payment date
// and document links are untouched; rescheduling changes when a term is due,
// not whether it was paid.
func (s *MaintenanceService) Reschedule(scope Scope, applicationID uuid.UUID, newAnchor time.Time) ([]models.RenewalTerm, error) {
	application, err := s.loadApplication(scope, applicationID)
	if err != nil {
		return nil, err
	}

	var terms []models.RenewalTerm
	if err := s.db.Where("application_id = ?", application.ID).
		Order("year ASC").
		Find(&terms).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch renewal terms: %w", err)
	}
	if len(terms) == 0 {
		return nil, ErrScheduleNotGenerated
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		for i := range terms {
			due := newAnchor.AddDate(terms[i].Year-1, 0, 0)
			if err := tx.Model(&models.RenewalTerm{}).
				Where("id = ?", terms[i].ID).
				Update("due_date", due).Error; err != nil {
				return fmt.Errorf("failed to update renewal term year %d: %w", terms[i].Year, err)
			}
			terms[i].DueDate = due
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	auditResult := s.auditService.LogExecution(&application.OrganizationID, &scope.UserID,
		RuleTypeMaintenanceReschedule,
		models.JSONB{
			"application_id": application.ID.String(),
			"new_anchor":     newAnchor.Format(time.RFC3339),
		},
		models.JSONB{
			"terms_updated": len(terms),
		})
	if !auditResult.Logged {
		logrus.WithField("application_id", application.ID).
			Warn("Renewal schedule rescheduled but audit entry was lost")
	}

	// A shifted schedule can pull the next annuity close; tell the user
	go s.sendUpcomingRenewalReminder(scope.UserID, terms)

	return terms, nil
}

func (s *MaintenanceService) sendUpcomingRenewalReminder(userID uuid.UUID, terms []models.RenewalTerm) {
	if s.notificationService == nil {
		return
	}

	var user models.User
	if err := s.db.First(&user, "id = ?", userID).Error; err != nil {
		return
	}

	cutoff := time.Now().AddDate(0, 0, 60)
	for i := range terms {
		if terms[i].Status != models.RenewalStatusUpcoming || terms[i].DueDate.After(cutoff) {
			continue
		}
		if err := s.notificationService.SendRenewalDueReminder(&user, &terms[i]); err != nil {
			logrus.WithError(err).WithField("renewal_term_id", terms[i].ID).
				Warn("Failed to send renewal due reminder")
		}
		return
	}
}

// MarkPaid records a manual payment against one term.
func (s *MaintenanceService) MarkPaid(scope Scope, applicationID uuid.UUID, year int) (*models.RenewalTerm, error) {
	application, err := s.loadApplication(scope, applicationID)
	if err != nil {
		return nil, err
	}

	var term models.RenewalTerm
	if err := s.db.Where("application_id = ? AND year = ?", application.ID, year).
		First(&term).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRenewalTermNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if term.Status == models.RenewalStatusPaid || term.Status == models.RenewalStatusCompleted {
		return nil, ErrTermAlreadySettled
	}

	now := time.Now()
	term.Status = models.RenewalStatusPaid
	term.PaymentDate = &now

	if err := s.db.Save(&term).Error; err != nil {
		return nil, fmt.Errorf("failed to update renewal term: %w", err)
	}

	return &term, nil
}

// DeleteTerm removes one row for administrative correction. No recomputation
// is triggered; gaps in the year sequence are tolerated.
func (s *MaintenanceService) DeleteTerm(scope Scope, applicationID uuid.UUID, year int) error {
	application, err := s.loadApplication(scope, applicationID)
	if err != nil {
		return err
	}

	result := s.db.Where("application_id = ? AND year = ?", application.ID, year).
		Delete(&models.RenewalTerm{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete renewal term: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrRenewalTermNotFound
	}

	return nil
}

func (s *MaintenanceService) loadApplication(scope Scope, applicationID uuid.UUID) (*models.Application, error) {
	var application models.Application
	if err := scope.scoped(s.db).First(&application, "id = ?", applicationID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrApplicationNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &application, nil
}
