// internal/handlers/variety_handler.go
package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/plantcert/pvp-backend/internal/i18n"
	"github.com/plantcert/pvp-backend/internal/services"
	"github.com/plantcert/pvp-backend/internal/utils"
)

type VarietyHandler struct {
	varietyService *services.VarietyService
}

func NewVarietyHandler(varietyService *services.VarietyService) *VarietyHandler {
	return &VarietyHandler{varietyService: varietyService}
}

// Create registers a new plant variety for the organization.
// POST /api/v1/varieties
func (h *VarietyHandler) Create(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	scope, ok := scopeFromContext(c)
	if !ok {
		utils.UnauthorizedResponse(c, i18n.T(lang, i18n.KeyAuthRequired))
		return
	}

	var req services.CreateVarietyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationFailed), err.Error())
		return
	}
	if err := utils.ValidateStruct(&req); err != nil {
		utils.ValidationErrorResponse(c, utils.GetValidationErrors(err))
		return
	}

	variety, err := h.varietyService.Create(scope, &req)
	if err != nil {
		utils.InternalErrorResponse(c, i18n.T(lang, i18n.KeyErrorInternal))
		return
	}

	utils.CreatedResponse(c, variety)
}

// List returns the organization's varieties, paginated.
// GET /api/v1/varieties
func (h *VarietyHandler) List(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	scope, ok := scopeFromContext(c)
	if !ok {
		utils.UnauthorizedResponse(c, i18n.T(lang, i18n.KeyAuthRequired))
		return
	}

	params := utils.GetPaginationParams(c)
	varieties, total, err := h.varietyService.List(scope, params)
	if err != nil {
		utils.InternalErrorResponse(c, i18n.T(lang, i18n.KeyErrorInternal))
		return
	}

	utils.PaginatedResponse(c, utils.CreatePaginationResult(varieties, total, params))
}

// Get returns one variety.
// GET /api/v1/varieties/:id
func (h *VarietyHandler) Get(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	scope, ok := scopeFromContext(c)
	if !ok {
		utils.UnauthorizedResponse(c, i18n.T(lang, i18n.KeyAuthRequired))
		return
	}

	varietyID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	variety, err := h.varietyService.Get(scope, varietyID)
	if err != nil {
		if errors.Is(err, services.ErrVarietyNotFound) {
			utils.NotFoundResponse(c, "variety")
			return
		}
		utils.InternalErrorResponse(c, i18n.T(lang, i18n.KeyErrorInternal))
		return
	}

	utils.SuccessResponse(c, variety)
}

// Update edits a variety's descriptive fields.
// PUT /api/v1/varieties/:id
func (h *VarietyHandler) Update(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	scope, ok := scopeFromContext(c)
	if !ok {
		utils.UnauthorizedResponse(c, i18n.T(lang, i18n.KeyAuthRequired))
		return
	}

	varietyID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	var req services.UpdateVarietyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationFailed), err.Error())
		return
	}
	if err := utils.ValidateStruct(&req); err != nil {
		utils.ValidationErrorResponse(c, utils.GetValidationErrors(err))
		return
	}

	variety, err := h.varietyService.Update(scope, varietyID, &req)
	if err != nil {
		if errors.Is(err, services.ErrVarietyNotFound) {
			utils.NotFoundResponse(c, "variety")
			return
		}
		utils.InternalErrorResponse(c, i18n.T(lang, i18n.KeyErrorInternal))
		return
	}

	utils.SuccessResponse(c, variety)
}

// Delete removes a variety that has no applications yet.
// DELETE /api/v1/varieties/:id
func (h *VarietyHandler) Delete(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	scope, ok := scopeFromContext(c)
	if !ok {
		utils.UnauthorizedResponse(c, i18n.T(lang, i18n.KeyAuthRequired))
		return
	}

	varietyID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.varietyService.Delete(scope, varietyID); err != nil {
		switch {
		case errors.Is(err, services.ErrVarietyNotFound):
			utils.NotFoundResponse(c, "variety")
		case errors.Is(err, services.ErrVarietyInUse):
			utils.ConflictResponse(c, err.Error())
		default:
			utils.InternalErrorResponse(c, i18n.T(lang, i18n.KeyErrorInternal))
		}
		return
	}

	utils.SuccessResponse(c, gin.H{"message": i18n.T(lang, i18n.KeyVarietyDeleted)})
}
