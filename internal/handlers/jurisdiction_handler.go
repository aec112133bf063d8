// internal/handlers/jurisdiction_handler.go
package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/plantcert/pvp-backend/internal/i18n"
	"github.com/plantcert/pvp-backend/internal/services"
	"github.com/plantcert/pvp-backend/internal/utils"
)

// JurisdictionHandler exposes the rule catalogue. Reads are open to any
// authenticated user; writes are restricted to super admins by the router.
type JurisdictionHandler struct {
	jurisdictionService *services.JurisdictionService
}

func NewJurisdictionHandler(jurisdictionService *services.JurisdictionService) *JurisdictionHandler {
	return &JurisdictionHandler{jurisdictionService: jurisdictionService}
}

// Create adds a jurisdiction to the catalogue.
// POST /api/v1/jurisdictions
func (h *JurisdictionHandler) Create(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	var req services.CreateJurisdictionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationFailed), err.Error())
		return
	}
	if err := utils.ValidateStruct(&req); err != nil {
		utils.ValidationErrorResponse(c, utils.GetValidationErrors(err))
		return
	}

	jurisdiction, err := h.jurisdictionService.CreateJurisdiction(&req)
	if err != nil {
		if errors.Is(err, services.ErrJurisdictionExists) {
			utils.ConflictResponse(c, err.Error())
			return
		}
		utils.InternalErrorResponse(c, i18n.T(lang, i18n.KeyErrorInternal))
		return
	}

	utils.CreatedResponse(c, jurisdiction)
}

// List returns all jurisdictions.
// GET /api/v1/jurisdictions
func (h *JurisdictionHandler) List(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	params := utils.GetPaginationParams(c)
	jurisdictions, total, err := h.jurisdictionService.ListJurisdictions(params)
	if err != nil {
		utils.InternalErrorResponse(c, i18n.T(lang, i18n.KeyErrorInternal))
		return
	}

	utils.PaginatedResponse(c, utils.CreatePaginationResult(jurisdictions, total, params))
}

// Get returns one jurisdiction with its rule sets.
// GET /api/v1/jurisdictions/:id
func (h *JurisdictionHandler) Get(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	jurisdictionID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	jurisdiction, err := h.jurisdictionService.GetJurisdiction(jurisdictionID)
	if err != nil {
		if errors.Is(err, services.ErrJurisdictionNotFound) {
			utils.NotFoundResponse(c, "jurisdiction")
			return
		}
		utils.InternalErrorResponse(c, i18n.T(lang, i18n.KeyErrorInternal))
		return
	}

	utils.SuccessResponse(c, jurisdiction)
}

// CreateRuleSet adds an inactive rule set version to a jurisdiction.
// POST /api/v1/jurisdictions/:id/rulesets
func (h *JurisdictionHandler) CreateRuleSet(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	jurisdictionID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	var req services.CreateRuleSetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationFailed), err.Error())
		return
	}
	if err := utils.ValidateStruct(&req); err != nil {
		utils.ValidationErrorResponse(c, utils.GetValidationErrors(err))
		return
	}

	ruleSet, err := h.jurisdictionService.CreateRuleSet(jurisdictionID, &req)
	if err != nil {
		if errors.Is(err, services.ErrJurisdictionNotFound) {
			utils.NotFoundResponse(c, "jurisdiction")
			return
		}
		utils.InternalErrorResponse(c, i18n.T(lang, i18n.KeyErrorInternal))
		return
	}

	utils.CreatedResponse(c, ruleSet)
}

// GetRuleSet returns a rule set with all its rules preloaded.
// GET /api/v1/rulesets/:id
func (h *JurisdictionHandler) GetRuleSet(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	ruleSetID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	ruleSet, err := h.jurisdictionService.GetRuleSet(ruleSetID)
	if err != nil {
		if errors.Is(err, services.ErrRuleSetNotFound) {
			utils.NotFoundResponse(c, "rule_set")
			return
		}
		utils.InternalErrorResponse(c, i18n.T(lang, i18n.KeyErrorInternal))
		return
	}

	utils.SuccessResponse(c, ruleSet)
}

// ActivateRuleSet makes a rule set current, deactivating its siblings.
// PUT /api/v1/rulesets/:id/activate
func (h *JurisdictionHandler) ActivateRuleSet(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	ruleSetID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	ruleSet, err := h.jurisdictionService.ActivateRuleSet(ruleSetID)
	if err != nil {
		if errors.Is(err, services.ErrRuleSetNotFound) {
			utils.NotFoundResponse(c, "rule_set")
			return
		}
		utils.InternalErrorResponse(c, i18n.T(lang, i18n.KeyErrorInternal))
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message":  i18n.T(lang, i18n.KeyRuleSetActivated),
		"rule_set": ruleSet,
	})
}

// AddDeadlineRule attaches a deadline rule to a rule set.
// POST /api/v1/rulesets/:id/deadlines
func (h *JurisdictionHandler) AddDeadlineRule(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	ruleSetID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	var req services.CreateDeadlineRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationFailed), err.Error())
		return
	}
	if err := utils.ValidateStruct(&req); err != nil {
		utils.ValidationErrorResponse(c, utils.GetValidationErrors(err))
		return
	}

	rule, err := h.jurisdictionService.AddDeadlineRule(ruleSetID, &req)
	if err != nil {
		if errors.Is(err, services.ErrRuleSetNotFound) {
			utils.NotFoundResponse(c, "rule_set")
			return
		}
		utils.InternalErrorResponse(c, i18n.T(lang, i18n.KeyErrorInternal))
		return
	}

	utils.CreatedResponse(c, rule)
}

// AddDocumentRule attaches a required-document rule to a rule set.
// POST /api/v1/rulesets/:id/documents
func (h *JurisdictionHandler) AddDocumentRule(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	ruleSetID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	var req services.CreateDocumentRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationFailed), err.Error())
		return
	}
	if err := utils.ValidateStruct(&req); err != nil {
		utils.ValidationErrorResponse(c, utils.GetValidationErrors(err))
		return
	}

	rule, err := h.jurisdictionService.AddDocumentRule(ruleSetID, &req)
	if err != nil {
		if errors.Is(err, services.ErrRuleSetNotFound) {
			utils.NotFoundResponse(c, "rule_set")
			return
		}
		utils.InternalErrorResponse(c, i18n.T(lang, i18n.KeyErrorInternal))
		return
	}

	utils.CreatedResponse(c, rule)
}

// AddTermRule attaches a protection-term rule to a rule set.
// POST /api/v1/rulesets/:id/terms
func (h *JurisdictionHandler) AddTermRule(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	ruleSetID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	var req services.CreateTermRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationFailed), err.Error())
		return
	}
	if err := utils.ValidateStruct(&req); err != nil {
		utils.ValidationErrorResponse(c, utils.GetValidationErrors(err))
		return
	}

	rule, err := h.jurisdictionService.AddTermRule(ruleSetID, &req)
	if err != nil {
		if errors.Is(err, services.ErrRuleSetNotFound) {
			utils.NotFoundResponse(c, "rule_set")
			return
		}
		utils.InternalErrorResponse(c, i18n.T(lang, i18n.KeyErrorInternal))
		return
	}

	utils.CreatedResponse(c, rule)
}

// AddFeeRule attaches a fee rule to a rule set.
// POST /api/v1/rulesets/:id/fees
func (h *JurisdictionHandler) AddFeeRule(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	ruleSetID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	var req services.CreateFeeRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationFailed), err.Error())
		return
	}
	if err := utils.ValidateStruct(&req); err != nil {
		utils.ValidationErrorResponse(c, utils.GetValidationErrors(err))
		return
	}

	rule, err := h.jurisdictionService.AddFeeRule(ruleSetID, &req)
	if err != nil {
		if errors.Is(err, services.ErrRuleSetNotFound) {
			utils.NotFoundResponse(c, "rule_set")
			return
		}
		utils.InternalErrorResponse(c, i18n.T(lang, i18n.KeyErrorInternal))
		return
	}

	utils.CreatedResponse(c, rule)
}
