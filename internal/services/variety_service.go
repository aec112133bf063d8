// internal/services/variety_service.go
package services

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/plantcert/pvp-backend/internal/models"
	"github.com/plantcert/pvp-backend/internal/utils"
)

type VarietyService struct {
	db *gorm.DB
}

var ErrVarietyInUse = errors.New("cannot delete a variety with applications")

type CreateVarietyRequest struct {
	Name         string   `json:"name" validate:"required,max=255"`
	Denomination string   `json:"denomination,omitempty" validate:"max=255"`
	Species      string   `json:"species,omitempty" validate:"max=255"`
	VarietyType  string   `json:"variety_type" validate:"required,max=100"`
	BreederRef   string   `json:"breeder_ref,omitempty" validate:"max=100"`
	Synonyms     []string `json:"synonyms,omitempty"`
}

type UpdateVarietyRequest struct {
	Name         *string  `json:"name,omitempty" validate:"omitempty,max=255"`
	Denomination *string  `json:"denomination,omitempty" validate:"omitempty,max=255"`
	Species      *string  `json:"species,omitempty" validate:"omitempty,max=255"`
	VarietyType  *string  `json:"variety_type,omitempty" validate:"omitempty,max=100"`
	BreederRef   *string  `json:"breeder_ref,omitempty" validate:"omitempty,max=100"`
	Synonyms     []string `json:"synonyms,omitempty"`
}

func NewVarietyService(db *gorm.DB) *VarietyService {
	return &VarietyService{db: db}
}

func (s *VarietyService) Create(scope Scope, req *CreateVarietyRequest) (*models.Variety, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}
	if scope.Unscoped() {
		return nil, errors.New("varieties must be created within an organisation")
	}

	variety := &models.Variety{
		OrganizationID: *scope.OrgID,
		Name:           req.Name,
		Denomination:   req.Denomination,
		Species:        req.Species,
		VarietyType:    req.VarietyType,
		BreederRef:     req.BreederRef,
		Synonyms:       pq.StringArray(req.Synonyms),
	}

	if err := s.db.Create(variety).Error; err != nil {
		return nil, fmt.Errorf("failed to create variety: %w", err)
	}

	return variety, nil
}

func (s *VarietyService) Update(scope Scope, varietyID uuid.UUID, req *UpdateVarietyRequest) (*models.Variety, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	var variety models.Variety
	if err := scope.scoped(s.db).First(&variety, "id = ?", varietyID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrVarietyNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if req.Name != nil {
		variety.Name = *req.Name
	}
	if req.Denomination != nil {
		variety.Denomination = *req.Denomination
	}
	if req.Species != nil {
		variety.Species = *req.Species
	}
	if req.VarietyType != nil {
		variety.VarietyType = *req.VarietyType
	}
	if req.BreederRef != nil {
		variety.BreederRef = *req.BreederRef
	}
	if req.Synonyms != nil {
		variety.Synonyms = pq.StringArray(req.Synonyms)
	}

	if err := s.db.Save(&variety).Error; err != nil {
		return nil, fmt.Errorf("failed to update variety: %w", err)
	}

	return &variety, nil
}

func (s *VarietyService) Delete(scope Scope, varietyID uuid.UUID) error {
	var variety models.Variety
	if err := scope.scoped(s.db).First(&variety, "id = ?", varietyID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrVarietyNotFound
		}
		return fmt.Errorf("database error: %w", err)
	}

	var applicationCount int64
	if err := s.db.Model(&models.Application{}).
		Where("variety_id = ?", variety.ID).
		Count(&applicationCount).Error; err != nil {
		return fmt.Errorf("failed to check applications: %w", err)
	}
	if applicationCount > 0 {
		return ErrVarietyInUse
	}

	if err := s.db.Delete(&variety).Error; err != nil {
		return fmt.Errorf("failed to delete variety: %w", err)
	}

	return nil
}

func (s *VarietyService) Get(scope Scope, varietyID uuid.UUID) (*models.Variety, error) {
	var variety models.Variety
	if err := scope.scoped(s.db).First(&variety, "id = ?", varietyID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrVarietyNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &variety, nil
}

func (s *VarietyService) List(scope Scope, params utils.PaginationParams) ([]models.Variety, int64, error) {
	query := scope.scoped(s.db.Model(&models.Variety{}))

	if params.Search != "" {
		query = query.Where("name ILIKE ? OR denomination ILIKE ?", "%"+params.Search+"%", "%"+params.Search+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count varieties: %w", err)
	}

	allowedSortFields := []string{"created_at", "name", "species", "variety_type"}
	query = utils.ApplySort(query, params, allowedSortFields)
	query = utils.ApplyPagination(query, params)

	var varieties []models.Variety
	if err := query.Find(&varieties).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch varieties: %w", err)
	}

	return varieties, total, nil
}
