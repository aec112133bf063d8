// internal/services/rules_service.go
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

// RulesService is the stateless evaluator at the centre of the system: given
// an application and a trigger event it derives candidate tasks and term-end
// dates from the active rule set. It reads the rule store and mutates nothing.
type RulesService struct {
	db *gorm.DB
}

// TaskDraft is a candidate task produced by rule evaluation. The task
// generator decides whether drafts are persisted.
type TaskDraft struct {
	TaskType     models.TaskType     `json:"task_type"`
	TriggerEvent models.TriggerEvent `json:"trigger_event"`
	Title        string              `json:"title"`
	Description  string              `json:"description"`
	DueDate      time.Time           `json:"due_date"`
}

var (
	ErrInvalidTriggerEvent = errors.New("invalid trigger event")
	ErrVarietyNotFound     = errors.New("variety not found")
	ErrApplicationNotFound = errors.New("application not found")
)

func NewRulesService(db *gorm.DB) *RulesService {
	return &RulesService{db: db}
}

// SelectActiveRuleSet returns the active rule set for a jurisdiction, or nil
// when none exists. A jurisdiction without active rules is a legitimate
// not-configured-yet state, never an error. Should the data ever hold more
// than one active set, the most recently created one wins.
func (s *RulesService) SelectActiveRuleSet(jurisdictionID uuid.UUID) (*models.RuleSet, error) {
	var ruleSet models.RuleSet
	err := s.db.Where("jurisdiction_id = ? AND is_active = ?", jurisdictionID, true).
		Order("created_at DESC").
		First(&ruleSet).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &ruleSet, nil
}

// DeriveDeadlineTasks evaluates all deadline rules of the active rule set
// that match the trigger event. Due date is baseDate(trigger) + offset days.
func (s *RulesService) DeriveDeadlineTasks(application *models.Application, trigger models.TriggerEvent) ([]TaskDraft, error) {
	if !trigger.Valid() {
		return nil, ErrInvalidTriggerEvent
	}

	ruleSet, err := s.SelectActiveRuleSet(application.JurisdictionID)
	if err != nil {
		return nil, err
	}
	if ruleSet == nil {
		return nil, nil
	}

	var rules []models.RuleDeadline
	if err := s.db.Where("rule_set_id = ? AND trigger_event = ?", ruleSet.ID, trigger).
		Order("offset_days ASC").
		Find(&rules).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch deadline rules: %w", err)
	}

	base := s.baseDate(application, trigger)

	drafts := make([]TaskDraft, 0, len(rules))
	for _, rule := range rules {
		title := rule.Title
		if title == "" {
			title = "Deadline"
		}
		drafts = append(drafts, TaskDraft{
			TaskType:     models.TaskTypeDeadline,
			TriggerEvent: trigger,
			Title:        title,
			Description:  rule.Description,
			DueDate:      base.AddDate(0, 0, rule.OffsetDays),
		})
	}

	return drafts, nil
}

// baseDate resolves the anchor date for a trigger event. A missing anchor
// falls back to now; for legal deadlines that is a data-quality problem, so
// it is logged loudly rather than silently absorbed.
func (s *RulesService) baseDate(application *models.Application, trigger models.TriggerEvent) time.Time {
	var anchor *time.Time
	switch trigger {
	case models.TriggerFilingDate:
		anchor = application.FilingDate
	case models.TriggerPublicationDate:
		anchor = application.PublicationDate
	case models.TriggerGrantDate:
		anchor = application.GrantDate
	}

	if anchor == nil {
		logrus.WithFields(logrus.Fields{
			"application_id": application.ID,
			"trigger_event":  trigger,
		}).Warn("Deadline derivation has no anchor date; falling back to current time")
		return time.Now()
	}
	return *anchor
}

// DeriveDocumentTasks produces one DOCUMENT task per required document type.
// Document requirements are only evaluated at filing. The due date defaults
// to the earliest deadline task of the same evaluation, or 30 days out when
// no deadline rules matched.
func (s *RulesService) DeriveDocumentTasks(application *models.Application, trigger models.TriggerEvent, deadlineDrafts []TaskDraft) ([]TaskDraft, error) {
	if trigger != models.TriggerFilingDate {
		return nil, nil
	}

	ruleSet, err := s.SelectActiveRuleSet(application.JurisdictionID)
	if err != nil {
		return nil, err
	}
	if ruleSet == nil {
		return nil, nil
	}

	var requirements []models.RuleDocumentRequirement
	if err := s.db.Where("rule_set_id = ? AND required = ?", ruleSet.ID, true).
		Find(&requirements).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch document requirements: %w", err)
	}

	dueDate := time.Now().AddDate(0, 0, 30)
	for i, draft := range deadlineDrafts {
		if i == 0 || draft.DueDate.Before(dueDate) {
			dueDate = draft.DueDate
		}
	}

	drafts := make([]TaskDraft, 0, len(requirements))
	for _, req := range requirements {
		drafts = append(drafts, TaskDraft{
			TaskType:     models.TaskTypeDocument,
			TriggerEvent: trigger,
			Title:        "Upload " + req.DocType,
			Description:  req.Notes,
			DueDate:      dueDate,
		})
	}

	return drafts, nil
}

// CheckMissingDocuments returns the required document types for which no
// uploaded document exists on the application. Matching is exact string
// equality on the type label. Read-only; used by compliance dashboards.
func (s *RulesService) CheckMissingDocuments(scope Scope, applicationID uuid.UUID) ([]models.RuleDocumentRequirement, error) {
	var application models.Application
	if err := scope.scoped(s.db).First(&application, "id = ?", applicationID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrApplicationNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	ruleSet, err := s.SelectActiveRuleSet(application.JurisdictionID)
	if err != nil {
		return nil, err
	}
	if ruleSet == nil {
		return nil, nil
	}

	var requirements []models.RuleDocumentRequirement
	if err := s.db.Where("rule_set_id = ? AND required = ?", ruleSet.ID, true).
		Find(&requirements).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch document requirements: %w", err)
	}

	var uploadedTypes []string
	if err := s.db.Model(&models.Document{}).
		Where("application_id = ?", applicationID).
		Distinct("doc_type").
		Pluck("doc_type", &uploadedTypes).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch uploaded documents: %w", err)
	}

	uploaded := make(map[string]bool, len(uploadedTypes))
	for _, t := range uploadedTypes {
		uploaded[t] = true
	}

	missing := make([]models.RuleDocumentRequirement, 0)
	for _, req := range requirements {
		if !uploaded[req.DocType] {
			missing = append(missing, req)
		}
	}

	return missing, nil
}

// ComputeTermEndDate resolves the protection term for the variety's type,
// falling back to the Default term row, and returns grantDate + termYears
// using calendar-year arithmetic. Returns nil when no term rule applies.
// A missing variety is a caller bug and fails hard.
func (s *RulesService) ComputeTermEndDate(varietyID, jurisdictionID uuid.UUID, grantDate time.Time) (*time.Time, error) {
	var variety models.Variety
	if err := s.db.First(&variety, "id = ?", varietyID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrVarietyNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	ruleSet, err := s.SelectActiveRuleSet(jurisdictionID)
	if err != nil {
		return nil, err
	}
	if ruleSet == nil {
		return nil, nil
	}

	term, err := s.resolveTerm(ruleSet.ID, variety.VarietyType)
	if err != nil {
		return nil, err
	}
	if term == nil {
		return nil, nil
	}

	end := grantDate.AddDate(term.TermYears, 0, 0)
	return &end, nil
}

func (s *RulesService) resolveTerm(ruleSetID uuid.UUID, varietyType string) (*models.RuleTerm, error) {
	var term models.RuleTerm
	err := s.db.Where("rule_set_id = ? AND variety_type = ?", ruleSetID, varietyType).
		First(&term).Error
	if err == nil {
		return &term, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("database error: %w", err)
	}

	err = s.db.Where("rule_set_id = ? AND variety_type = ?", ruleSetID, models.RuleTermDefaultVariety).
		First(&term).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &term, nil
}

// RenewalFee returns the active rule set's RENEWAL fee amount for a
// jurisdiction, or zero when no fee schedule is configured.
func (s *RulesService) RenewalFee(jurisdictionID uuid.UUID) (float64, error) {
	ruleSet, err := s.SelectActiveRuleSet(jurisdictionID)
	if err != nil {
		return 0, err
	}
	if ruleSet == nil {
		return 0, nil
	}

	var fee models.RuleFee
	err = s.db.Where("rule_set_id = ? AND fee_code = ?", ruleSet.ID, models.FeeCodeRenewal).
		First(&fee).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("database error: %w", err)
	}
	return fee.Amount, nil
}
