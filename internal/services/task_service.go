// internal/services/task_service.go
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

// TaskService orchestrates the rules engine at lifecycle trigger points and
// persists the resulting tasks exactly once per (application, trigger).
type TaskService struct {
	db                  *gorm.DB
	rulesService        *RulesService
	auditService        *AuditService
	notificationService *NotificationService
}

// GenerationResult reports what one generation call did. AlreadyGenerated is
// the detectable no-op variant for repeated or concurrent triggers.
type GenerationResult struct {
	Tasks            []models.Task `json:"tasks"`
	AlreadyGenerated bool          `json:"already_generated"`
}

type CreateTaskRequest struct {
	TaskType    models.TaskType `json:"task_type" validate:"required,oneof=DEADLINE DOCUMENT"`
	Title       string          `json:"title" validate:"required,max=255"`
	Description string          `json:"description,omitempty"`
	DueDate     time.Time       `json:"due_date" validate:"required"`
}

var (
	ErrTaskNotFound         = errors.New("task not found")
	ErrTaskAlreadyCompleted = errors.New("task is already completed")
	ErrTaskNotCompleted     = errors.New("task is not completed")
)

func NewTaskService(db *gorm.DB, rulesService *RulesService, auditService *AuditService, notificationService *NotificationService) *TaskService {
	return &TaskService{
		db:                  db,
		rulesService:        rulesService,
		auditService:        auditService,
		notificationService: notificationService,
	}
}

// GenerateForApplication derives deadline and document tasks for a trigger
// event and inserts them as one atomic batch. The TaskGeneration marker row,
// inserted in the same transaction under a unique (application, trigger)
// index, makes a second invocation a no-op rather than a duplicate-task bug.
func (s *TaskService) GenerateForApplication(scope Scope, applicationID uuid.UUID, trigger models.TriggerEvent) (*GenerationResult, error) {
	if !trigger.Valid() {
		return nil, ErrInvalidTriggerEvent
	}

	var application models.Application
	if err := scope.scoped(s.db).First(&application, "id = ?", applicationID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrApplicationNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	deadlineDrafts, err := s.rulesService.DeriveDeadlineTasks(&application, trigger)
	if err != nil {
		return nil, err
	}

	documentDrafts, err := s.rulesService.DeriveDocumentTasks(&application, trigger, deadlineDrafts)
	if err != nil {
		return nil, err
	}

	drafts := append(deadlineDrafts, documentDrafts...)

	result := &GenerationResult{}
	err = s.db.Transaction(func(tx *gorm.DB) error {
		var existing int64
		if err := tx.Model(&models.TaskGeneration{}).
			Where("application_id = ? AND trigger_event = ?", application.ID, trigger).
			Count(&existing).Error; err != nil {
			return fmt.Errorf("failed to check generation marker: %w", err)
		}
		if existing > 0 {
			result.AlreadyGenerated = true
			return nil
		}

		marker := &models.TaskGeneration{
			ApplicationID: application.ID,
			TriggerEvent:  trigger,
			TaskCount:     len(drafts),
			GeneratedBy:   scope.UserID,
		}
		if err := tx.Create(marker).Error; err != nil {
			// A concurrent invocation won the race on the unique index.
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				result.AlreadyGenerated = true
				return nil
			}
			return fmt.Errorf("failed to create generation marker: %w", err)
		}

		if len(drafts) == 0 {
			return nil
		}

		triggerCopy := trigger
		tasks := make([]models.Task, 0, len(drafts))
		for _, draft := range drafts {
			tasks = append(tasks, models.Task{
				OrganizationID: application.OrganizationID,
				ApplicationID:  application.ID,
				TaskType:       draft.TaskType,
				TriggerEvent:   &triggerCopy,
				Title:          draft.Title,
				Description:    draft.Description,
				DueDate:        draft.DueDate,
				Status:         models.TaskStatusPending,
			})
		}

		if err := tx.Create(&tasks).Error; err != nil {
			return fmt.Errorf("failed to create tasks: %w", err)
		}

		result.Tasks = tasks
		return nil
	})
	if err != nil {
		return nil, err
	}

	if result.AlreadyGenerated {
		return result, nil
	}

	auditInput := models.JSONB{
		"jurisdiction_id": application.JurisdictionID.String(),
		"trigger_event":   string(trigger),
	}
	if application.FilingDate != nil {
		auditInput["filing_date"] = application.FilingDate.Format(time.RFC3339)
	}
	auditResult := s.auditService.LogExecution(&application.OrganizationID, &scope.UserID,
		RuleTypeTaskGeneration,
		auditInput,
		models.JSONB{
			"application_id": application.ID.String(),
			"task_count":     len(result.Tasks),
		})
	if !auditResult.Logged {
		logrus.WithField("application_id", application.ID).
			Warn("Task generation completed but audit entry was lost")
	}

	// Notify the triggering user about tasks that are already close to due
	go s.sendDeadlineReminders(scope.UserID, result.Tasks)

	return result, nil
}

func (s *TaskService) sendDeadlineReminders(userID uuid.UUID, tasks []models.Task) {
	if s.notificationService == nil {
		return
	}

	var user models.User
	if err := s.db.First(&user, "id = ?", userID).Error; err != nil {
		return
	}

	cutoff := time.Now().AddDate(0, 0, 30)
	for i := range tasks {
		if tasks[i].DueDate.After(cutoff) {
			continue
		}
		if err := s.notificationService.SendTaskDeadlineReminder(&user, &tasks[i]); err != nil {
			logrus.WithError(err).WithField("task_id", tasks[i].ID).
				Warn("Failed to send task deadline reminder")
		}
	}
}

// CreateManualTask adds a user-authored task outside the rules engine.
func (s *TaskService) CreateManualTask(scope Scope, applicationID uuid.UUID, req *CreateTaskRequest) (*models.Task, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	var application models.Application
	if err := scope.scoped(s.db).First(&application, "id = ?", applicationID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrApplicationNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	task := &models.Task{
		OrganizationID: application.OrganizationID,
		ApplicationID:  application.ID,
		TaskType:       req.TaskType,
		Title:          req.Title,
		Description:    req.Description,
		DueDate:        req.DueDate,
		Status:         models.TaskStatusPending,
	}

	if err := s.db.Create(task).Error; err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	return task, nil
}

// CompleteTask marks a pending task completed.
func (s *TaskService) CompleteTask(scope Scope, taskID uuid.UUID) (*models.Task, error) {
	var task models.Task
	if err := scope.scoped(s.db).First(&task, "id = ?", taskID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if task.Status == models.TaskStatusCompleted {
		return nil, ErrTaskAlreadyCompleted
	}

	now := time.Now()
	task.Status = models.TaskStatusCompleted
	task.CompletedAt = &now
	task.CompletedBy = &scope.UserID

	if err := s.db.Save(&task).Error; err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}

	return &task, nil
}

// ReopenTask reverts a completed task to pending, clearing the completion
// record. Used when a document turns out to be wrong after its task closed.
func (s *TaskService) ReopenTask(scope Scope, taskID uuid.UUID) (*models.Task, error) {
	var task models.Task
	if err := scope.scoped(s.db).First(&task, "id = ?", taskID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if task.Status != models.TaskStatusCompleted {
		return nil, ErrTaskNotCompleted
	}

	if err := s.db.Model(&task).Updates(map[string]interface{}{
		"status":       models.TaskStatusPending,
		"completed_at": nil,
		"completed_by": nil,
	}).Error; err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}

	task.Status = models.TaskStatusPending
	task.CompletedAt = nil
	task.CompletedBy = nil

	return &task, nil
}

// ListForApplication returns all tasks on one application, soonest first.
func (s *TaskService) ListForApplication(scope Scope, applicationID uuid.UUID) ([]models.Task, error) {
	var application models.Application
	if err := scope.scoped(s.db).First(&application, "id = ?", applicationID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrApplicationNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	var tasks []models.Task
	if err := s.db.Where("application_id = ?", application.ID).
		Order("due_date ASC").
		Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch tasks: %w", err)
	}

	return tasks, nil
}

// ListUpcoming returns pending tasks due within the horizon, across all of
// the organisation's applications.
func (s *TaskService) ListUpcoming(scope Scope, horizonDays int, params utils.PaginationParams) ([]models.Task, int64, error) {
	if horizonDays <= 0 {
		horizonDays = 30
	}
	cutoff := time.Now().AddDate(0, 0, horizonDays)

	query := scope.scoped(s.db.Model(&models.Task{})).
		Where("status = ? AND due_date <= ?", models.TaskStatusPending, cutoff)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count tasks: %w", err)
	}

	allowedSortFields := []string{"due_date", "created_at", "title"}
	query = utils.ApplySort(query, params, allowedSortFields)
	query = utils.ApplyPagination(query, params)

	var tasks []models.Task
	if err := query.Preload("Application").Find(&tasks).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch tasks: %w", err)
	}

	return tasks, total, nil
}
