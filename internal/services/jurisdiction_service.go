// internal/services/jurisdiction_service.go
package services

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/plantcert/pvp-backend/internal/models"
	"github.com/plantcert/pvp-backend/internal/utils"
)

// JurisdictionService is the rule-authoring surface: jurisdictions, versioned
// rule sets and their rule rows. Super-admin only; the engine itself never
// writes through this service.
type JurisdictionService struct {
	db *gorm.DB
}

type CreateJurisdictionRequest struct {
	Code         string `json:"code" validate:"required,jurisdiction_code"`
	Name         string `json:"name" validate:"required,max=255"`
	CurrencyCode string `json:"currency_code" validate:"required,len=3"`
}

type CreateRuleSetRequest struct {
	Name    string `json:"name" validate:"required,max=255"`
	Version string `json:"version" validate:"required,max=50"`
}

type CreateDeadlineRuleRequest struct {
	TriggerEvent string `json:"trigger_event" validate:"required,trigger_event"`
	OffsetDays   int    `json:"offset_days" validate:"required"`
	Title        string `json:"title,omitempty" validate:"max=255"`
	Description  string `json:"description,omitempty"`
}

type CreateDocumentRuleRequest struct {
	DocType  string `json:"doc_type" validate:"required,max=100"`
	Required *bool  `json:"required,omitempty"`
	Notes    string `json:"notes,omitempty"`
}

type CreateTermRuleRequest struct {
	VarietyType string `json:"variety_type" validate:"required,max=100"`
	TermYears   int    `json:"term_years" validate:"required,min=1,max=50"`
}

type CreateFeeRuleRequest struct {
	FeeCode     string  `json:"fee_code" validate:"required,oneof=FILING EXAM RENEWAL"`
	Description string  `json:"description,omitempty" validate:"max=255"`
	Amount      float64 `json:"amount" validate:"required,min=0"`
}

var (
	ErrRuleSetNotFound    = errors.New("rule set not found")
	ErrJurisdictionExists = errors.New("jurisdiction with this code already exists")
)

func NewJurisdictionService(db *gorm.DB) *JurisdictionService {
	return &JurisdictionService{db: db}
}

func (s *JurisdictionService) CreateJurisdiction(req *CreateJurisdictionRequest) (*models.Jurisdiction, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	var existing models.Jurisdiction
	if err := s.db.Where("code = ?", req.Code).First(&existing).Error; err == nil {
		return nil, ErrJurisdictionExists
	}

	jurisdiction := &models.Jurisdiction{
		Code:         req.Code,
		Name:         req.Name,
		CurrencyCode: req.CurrencyCode,
	}

	if err := s.db.Create(jurisdiction).Error; err != nil {
		return nil, fmt.Errorf("failed to create jurisdiction: %w", err)
	}

	return jurisdiction, nil
}

func (s *JurisdictionService) ListJurisdictions(params utils.PaginationParams) ([]models.Jurisdiction, int64, error) {
	query := s.db.Model(&models.Jurisdiction{})

	if params.Search != "" {
		query = query.Where("name ILIKE ? OR code ILIKE ?", "%"+params.Search+"%", "%"+params.Search+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count jurisdictions: %w", err)
	}

	allowedSortFields := []string{"created_at", "code", "name"}
	query = utils.ApplySort(query, params, allowedSortFields)
	query = utils.ApplyPagination(query, params)

	var jurisdictions []models.Jurisdiction
	if err := query.Find(&jurisdictions).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch jurisdictions: %w", err)
	}

	return jurisdictions, total, nil
}

func (s *JurisdictionService) GetJurisdiction(jurisdictionID uuid.UUID) (*models.Jurisdiction, error) {
	var jurisdiction models.Jurisdiction
	if err := s.db.Preload("RuleSets").First(&jurisdiction, "id = ?", jurisdictionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrJurisdictionNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &jurisdiction, nil
}

// CreateRuleSet adds a new inactive rule-set version to a jurisdiction.
func (s *JurisdictionService) CreateRuleSet(jurisdictionID uuid.UUID, req *CreateRuleSetRequest) (*models.RuleSet, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	var jurisdiction models.Jurisdiction
	if err := s.db.First(&jurisdiction, "id = ?", jurisdictionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrJurisdictionNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	ruleSet := &models.RuleSet{
		JurisdictionID: jurisdiction.ID,
		Name:           req.Name,
		Version:        req.Version,
		IsActive:       false,
	}

	if err := s.db.Create(ruleSet).Error; err != nil {
		return nil, fmt.Errorf("failed to create rule set: %w", err)
	}

	return ruleSet, nil
}

// ActivateRuleSet makes one rule set active and deactivates its siblings in
// the same transaction, keeping the at-most-one-active invariant.
func (s *JurisdictionService) ActivateRuleSet(ruleSetID uuid.UUID) (*models.RuleSet, error) {
	var ruleSet models.RuleSet
	if err := s.db.First(&ruleSet, "id = ?", ruleSetID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRuleSetNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.RuleSet{}).
			Where("jurisdiction_id = ? AND id != ?", ruleSet.JurisdictionID, ruleSet.ID).
			Update("is_active", false).Error; err != nil {
			return fmt.Errorf("failed to deactivate sibling rule sets: %w", err)
		}

		if err := tx.Model(&ruleSet).Update("is_active", true).Error; err != nil {
			return fmt.Errorf("failed to activate rule set: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	ruleSet.IsActive = true
	return &ruleSet, nil
}

func (s *JurisdictionService) GetRuleSet(ruleSetID uuid.UUID) (*models.RuleSet, error) {
	var ruleSet models.RuleSet
	if err := s.db.
		Preload("Deadlines").
		Preload("DocumentRequirements").
		Preload("Terms").
		Preload("Fees").
		First(&ruleSet, "id = ?", ruleSetID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRuleSetNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &ruleSet, nil
}

func (s *JurisdictionService) AddDeadlineRule(ruleSetID uuid.UUID, req *CreateDeadlineRuleRequest) (*models.RuleDeadline, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	if err := s.ensureRuleSet(ruleSetID); err != nil {
		return nil, err
	}

	rule := &models.RuleDeadline{
		RuleSetID:    ruleSetID,
		TriggerEvent: models.TriggerEvent(req.TriggerEvent),
		OffsetDays:   req.OffsetDays,
		Title:        req.Title,
		Description:  req.Description,
	}

	if err := s.db.Create(rule).Error; err != nil {
		return nil, fmt.Errorf("failed to create deadline rule: %w", err)
	}

	return rule, nil
}

func (s *JurisdictionService) AddDocumentRule(ruleSetID uuid.UUID, req *CreateDocumentRuleRequest) (*models.RuleDocumentRequirement, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	if err := s.ensureRuleSet(ruleSetID); err != nil {
		return nil, err
	}

	required := true
	if req.Required != nil {
		required = *req.Required
	}

	rule := &models.RuleDocumentRequirement{
		RuleSetID: ruleSetID,
		DocType:   req.DocType,
		Required:  required,
		Notes:     req.Notes,
	}

	if err := s.db.Create(rule).Error; err != nil {
		return nil, fmt.Errorf("failed to create document rule: %w", err)
	}

	return rule, nil
}

func (s *JurisdictionService) AddTermRule(ruleSetID uuid.UUID, req *CreateTermRuleRequest) (*models.RuleTerm, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	if err := s.ensureRuleSet(ruleSetID); err != nil {
		return nil, err
	}

	rule := &models.RuleTerm{
		RuleSetID:   ruleSetID,
		VarietyType: req.VarietyType,
		TermYears:   req.TermYears,
	}

	if err := s.db.Create(rule).Error; err != nil {
		return nil, fmt.Errorf("failed to create term rule: %w", err)
	}

	return rule, nil
}

func (s *JurisdictionService) AddFeeRule(ruleSetID uuid.UUID, req *CreateFeeRuleRequest) (*models.RuleFee, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	if err := s.ensureRuleSet(ruleSetID); err != nil {
		return nil, err
	}

	rule := &models.RuleFee{
		RuleSetID:   ruleSetID,
		FeeCode:     models.FeeCode(req.FeeCode),
		Description: req.Description,
		Amount:      req.Amount,
	}

	if err := s.db.Create(rule).Error; err != nil {
		return nil, fmt.Errorf("failed to create fee rule: %w", err)
	}

	return rule, nil
}

func (s *JurisdictionService) ensureRuleSet(ruleSetID uuid.UUID) error {
	var ruleSet models.RuleSet
	if err := s.db.First(&ruleSet, "id = ?", ruleSetID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrRuleSetNotFound
		}
		return fmt.Errorf("database error: %w", err)
	}
	return nil
}
