// internal/handlers/maintenance_handler.go
package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/plantcert/pvp-backend/internal/i18n"
	"github.com/plantcert/pvp-backend/internal/models"
	"github.com/plantcert/pvp-backend/internal/services"
	"github.com/plantcert/pvp-backend/internal/utils"
)

type MaintenanceHandler struct {
	maintenanceService *services.MaintenanceService
}

func NewMaintenanceHandler(maintenanceService *services.MaintenanceService) *MaintenanceHandler {
	return &MaintenanceHandler{maintenanceService: maintenanceService}
}

// renewalTermView augments the stored row with the read-time status, so
// overdue terms show as overdue without a background job touching rows.
type renewalTermView struct {
	models.RenewalTerm
	EffectiveStatus models.RenewalStatus `json:"effective_status"`
}

func presentTerms(terms []models.RenewalTerm, at time.Time) []renewalTermView {
	views := make([]renewalTermView, len(terms))
	for i, term := range terms {
		views[i] = renewalTermView{
			RenewalTerm:     term,
			EffectiveStatus: term.EffectiveStatus(at),
		}
	}
	return views
}

// GetSchedule returns the 25-year renewal schedule, generating it on first
// access once a grant date exists.
// GET /api/v1/applications/:id/maintenance
func (h *MaintenanceHandler) GetSchedule(c *gin.Context) {
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

	// An application without a grant date has an empty schedule, not an error.
	terms, err := h.maintenanceService.GetSchedule(scope, applicationID)
	if err != nil {
		if errors.Is(err, services.ErrApplicationNotFound) {
			utils.NotFoundResponse(c, "application")
			return
		}
		utils.InternalErrorResponse(c, i18n.T(lang, i18n.KeyErrorInternal))
		return
	}

	utils.SuccessResponse(c, presentTerms(terms, time.Now()))
}

// Reschedule shifts the whole schedule onto a new anchor date.
// PUT /api/v1/applications/:id/maintenance/reschedule
func (h *MaintenanceHandler) Reschedule(c *gin.Context) {
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
		NewAnchorDate string `json:"new_anchor_date" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationFailed), err.Error())
		return
	}

	anchor, err := parseDate(req.NewAnchorDate)
	if err != nil {
		utils.BadRequestResponse(c, "Invalid new_anchor_date, expected YYYY-MM-DD", nil)
		return
	}

	terms, err := h.maintenanceService.Reschedule(scope, applicationID, anchor)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrApplicationNotFound):
			utils.NotFoundResponse(c, "application")
		case errors.Is(err, services.ErrScheduleNotGenerated):
			utils.ErrorResponse(c, http.StatusConflict, "NO_SCHEDULE", err.Error(), nil)
		default:
			utils.InternalErrorResponse(c, i18n.T(lang, i18n.KeyErrorInternal))
		}
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyRenewalRescheduled),
		"terms":   presentTerms(terms, time.Now()),
	})
}

// MarkPaid records payment of one renewal year.
// PUT /api/v1/applications/:id/maintenance/:year/pay
func (h *MaintenanceHandler) MarkPaid(c *gin.Context) {
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

	year, err := strconv.Atoi(c.Param("year"))
	if err != nil || year < 1 {
		utils.BadRequestResponse(c, "Invalid year", nil)
		return
	}

	term, err := h.maintenanceService.MarkPaid(scope, applicationID, year)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrApplicationNotFound):
			utils.NotFoundResponse(c, "application")
		case errors.Is(err, services.ErrRenewalTermNotFound):
			utils.NotFoundResponse(c, "renewal")
		case errors.Is(err, services.ErrTermAlreadySettled):
			utils.ErrorResponse(c, http.StatusConflict, "ALREADY_SETTLED", err.Error(), nil)
		default:
			utils.InternalErrorResponse(c, i18n.T(lang, i18n.KeyErrorInternal))
		}
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyRenewalPaid),
		"term":    term,
	})
}

// DeleteTerm removes one schedule row for administrative correction.
// DELETE /api/v1/applications/:id/maintenance/:year
func (h *MaintenanceHandler) DeleteTerm(c *gin.Context) {
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

	year, err := strconv.Atoi(c.Param("year"))
	if err != nil || year < 1 {
		utils.BadRequestResponse(c, "Invalid year", nil)
		return
	}

	if err := h.maintenanceService.DeleteTerm(scope, applicationID, year); err != nil {
		switch {
		case errors.Is(err, services.ErrApplicationNotFound):
			utils.NotFoundResponse(c, "application")
		case errors.Is(err, services.ErrRenewalTermNotFound):
			utils.NotFoundResponse(c, "renewal")
		default:
			utils.InternalErrorResponse(c, i18n.T(lang, i18n.KeyErrorInternal))
		}
		return
	}

	utils.SuccessResponse(c, gin.H{"message": i18n.T(lang, i18n.KeyRenewalDeleted)})
}
