// internal/services/audit_service.go
package services

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/plantcert/pvp-backend/internal/models"
	"github.com/plantcert/pvp-backend/internal/utils"
)

// Rule type tags recorded on audit rows.
const (
	RuleTypeTaskGeneration        = "TASK_GENERATION"
	RuleTypeTermComputation       = "TERM_COMPUTATION"
	RuleTypeMaintenanceSchedule   = "MAINTENANCE_SCHEDULE"
	RuleTypeMaintenanceReschedule = "MAINTENANCE_RESCHEDULE"
)

// AuditService appends rule-engine execution records for compliance review.
// Writes never block or roll back the triggering business operation: a
// failed append is reported in the AuditResult and logged, nothing more.
type AuditService struct {
	db *gorm.DB
}

// AuditResult distinguishes "logged" from "log failed" without turning an
// audit failure into a business failure.
type AuditResult struct {
	Logged bool
	Err    error
}

func NewAuditService(db *gorm.DB) *AuditService {
	return &AuditService{db: db}
}

// LogExecution appends one audit row. Loss of an audit entry is acceptable;
// corruption of the primary transactional data is not, so this never returns
// an error to the caller's control flow.
func (s *AuditService) LogExecution(orgID *uuid.UUID, userID *uuid.UUID, ruleType string, input, output models.JSONB) AuditResult {
	entry := &models.RuleAuditLog{
		OrganizationID: orgID,
		UserID:         userID,
		RuleType:       ruleType,
		Input:          input,
		Output:         output,
	}

	if err := s.db.Create(entry).Error; err != nil {
		logrus.WithError(err).WithField("rule_type", ruleType).
			Error("Failed to append rule audit log")
		return AuditResult{Logged: false, Err: err}
	}

	return AuditResult{Logged: true}
}

// List returns audit rows, newest first, tenant-scoped unless the caller is
// a super-admin.
func (s *AuditService) List(scope Scope, params utils.PaginationParams) ([]models.RuleAuditLog, int64, error) {
	query := scope.scoped(s.db.Model(&models.RuleAuditLog{}))

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count audit logs: %w", err)
	}

	allowedSortFields := []string{"created_at", "rule_type"}
	query = utils.ApplySort(query, params, allowedSortFields)
	query = utils.ApplyPagination(query, params)

	var logs []models.RuleAuditLog
	if err := query.Find(&logs).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch audit logs: %w", err)
	}

	return logs, total, nil
}
