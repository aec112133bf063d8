// internal/handlers/application_handler.go
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/plantcert/pvp-backend/internal/i18n"
	"github.com/plantcert/pvp-backend/internal/models"
	"github.com/plantcert/pvp-backend/internal/services"
	"github.com/plantcert/pvp-backend/internal/utils"
)

type ApplicationHandler struct {
	applicationService *services.ApplicationService
	rulesService       *services.RulesService
}

func NewApplicationHandler(applicationService *services.ApplicationService, rulesService *services.RulesService) *ApplicationHandler {
	return &ApplicationHandler{
		applicationService: applicationService,
		rulesService:       rulesService,
	}
}

// Create opens a draft application for a variety in a jurisdiction.
// POST /api/v1/applications
func (h *ApplicationHandler) Create(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	scope, ok := scopeFromContext(c)
	if !ok {
		utils.UnauthorizedResponse(c, i18n.T(lang, i18n.KeyAuthRequired))
		return
	}

	var req services.CreateApplicationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationFailed), err.Error())
		return
	}
	if err := utils.ValidateStruct(&req); err != nil {
		utils.ValidationErrorResponse(c, utils.GetValidationErrors(err))
		return
	}

	application, err := h.applicationService.Create(scope, &req)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrVarietyNotFound):
			utils.NotFoundResponse(c, "variety")
		case errors.Is(err, services.ErrJurisdictionNotFound):
			utils.NotFoundResponse(c, "jurisdiction")
		default:
			utils.InternalErrorResponse(c, i18n.T(lang, i18n.KeyErrorInternal))
		}
		return
	}

	utils.CreatedResponse(c, application)
}

// List searches applications with optional status and relation filters.
// GET /api/v1/applications
func (h *ApplicationHandler) List(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	scope, ok := scopeFromContext(c)
	if !ok {
		utils.UnauthorizedResponse(c, i18n.T(lang, i18n.KeyAuthRequired))
		return
	}

	params := services.ApplicationSearchParams{
		PaginationParams: utils.GetPaginationParams(c),
	}
	if statusStr := c.Query("status"); statusStr != "" {
		status := models.ApplicationStatus(statusStr)
		params.Status = &status
	}
	if jurisdictionStr := c.Query("jurisdiction_id"); jurisdictionStr != "" {
		jurisdictionID, err := uuid.Parse(jurisdictionStr)
		if err != nil {
			utils.BadRequestResponse(c, "Invalid jurisdiction_id", nil)
			return
		}
		params.JurisdictionID = &jurisdictionID
	}
	if varietyStr := c.Query("variety_id"); varietyStr != "" {
		varietyID, err := uuid.Parse(varietyStr)
		if err != nil {
			utils.BadRequestResponse(c, "Invalid variety_id", nil)
			return
		}
		params.VarietyID = &varietyID
	}

	applications, total, err := h.applicationService.Search(scope, params)
	if err != nil {
		utils.InternalErrorResponse(c, i18n.T(lang, i18n.KeyErrorInternal))
		return
	}

	utils.PaginatedResponse(c, utils.CreatePaginationResult(applications, total, params.PaginationParams))
}

// Get returns one application with its relations.
// GET /api/v1/applications/:id
func (h *ApplicationHandler) Get(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	scope, ok := scopeFromContext(c)
	if !ok {
		utils.UnauthorizedResponse(c, i18n.T(lang, i18n.KeyAuthRequired))
		return
	}

	applicationID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	application, err := h.applicationService.Get(scope, applicationID)
	if err != nil {
		if errors.Is(err, services.ErrApplicationNotFound) {
			utils.NotFoundResponse(c, "application")
			return
		}
		utils.InternalErrorResponse(c, i18n.T(lang, i18n.KeyErrorInternal))
		return
	}

	utils.SuccessResponse(c, application)
}

// File submits a draft application and derives its filing tasks.
// POST /api/v1/applications/:id/file
func (h *ApplicationHandler) File(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	scope, ok := scopeFromContext(c)
	if !ok {
		utils.UnauthorizedResponse(c, i18n.T(lang, i18n.KeyAuthRequired))
		return
	}

	applicationID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	// The body is optional: filing without one stamps today's date
	var req services.FileApplicationRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationFailed), err.Error())
			return
		}
	}

	application, generation, err := h.applicationService.File(scope, applicationID, &req)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrApplicationNotFound):
			utils.NotFoundResponse(c, "application")
		case errors.Is(err, services.ErrInvalidTransition):
			utils.ErrorResponse(c, http.StatusConflict, "INVALID_TRANSITION", i18n.T(lang, i18n.KeyApplicationInvalidTransition), nil)
		default:
			utils.InternalErrorResponse(c, i18n.T(lang, i18n.KeyErrorInternal))
		}
		return
	}

	utils.SuccessResponse(c, gin.H{
		"application": application,
		"generation":  generation,
	})
}

// TransitionStatus advances the application through its lifecycle.
// PUT /api/v1/applications/:id/status
func (h *ApplicationHandler) TransitionStatus(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	scope, ok := scopeFromContext(c)
	if !ok {
		utils.UnauthorizedResponse(c, i18n.T(lang, i18n.KeyAuthRequired))
		return
	}

	applicationID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	var req services.TransitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationFailed), err.Error())
		return
	}

	application, generation, err := h.applicationService.TransitionStatus(scope, applicationID, &req)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrApplicationNotFound):
			utils.NotFoundResponse(c, "application")
		case errors.Is(err, services.ErrInvalidTransition):
			utils.ErrorResponse(c, http.StatusConflict, "INVALID_TRANSITION", i18n.T(lang, i18n.KeyApplicationInvalidTransition), nil)
		case errors.Is(err, services.ErrGrantDateRequired):
			utils.BadRequestResponse(c, err.Error(), nil)
		default:
			utils.InternalErrorResponse(c, i18n.T(lang, i18n.KeyErrorInternal))
		}
		return
	}

	utils.SuccessResponse(c, gin.H{
		"application": application,
		"generation":  generation,
	})
}

// UpdateDUSStatus records the outcome of DUS growing trials.
// PUT /api/v1/applications/:id/dus
func (h *ApplicationHandler) UpdateDUSStatus(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	scope, ok := scopeFromContext(c)
	if !ok {
		utils.UnauthorizedResponse(c, i18n.T(lang, i18n.KeyAuthRequired))
		return
	}

	applicationID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	var req struct {
		DUSStatus models.DUSStatus `json:"dus_status" binding:"required,oneof=not_started in_progress passed failed"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationFailed), err.Error())
		return
	}

	application, err := h.applicationService.UpdateDUSStatus(scope, applicationID, req.DUSStatus)
	if err != nil {
		if errors.Is(err, services.ErrApplicationNotFound) {
			utils.NotFoundResponse(c, "application")
			return
		}
		utils.InternalErrorResponse(c, i18n.T(lang, i18n.KeyErrorInternal))
		return
	}

	utils.SuccessResponse(c, application)
}

// MissingDocuments lists required document types not yet uploaded.
// GET /api/v1/applications/:id/missing-documents
func (h *ApplicationHandler) MissingDocuments(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	scope, ok := scopeFromContext(c)
	if !ok {
		utils.UnauthorizedResponse(c, i18n.T(lang, i18n.KeyAuthRequired))
		return
	}

	applicationID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	missing, err := h.rulesService.CheckMissingDocuments(scope, applicationID)
	if err != nil {
		if errors.Is(err, services.ErrApplicationNotFound) {
			utils.NotFoundResponse(c, "application")
			return
		}
		utils.InternalErrorResponse(c, i18n.T(lang, i18n.KeyErrorInternal))
		return
	}

	utils.SuccessResponse(c, gin.H{"missing_documents": missing})
}
