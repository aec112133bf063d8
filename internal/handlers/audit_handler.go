// internal/handlers/audit_handler.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/plantcert/pvp-backend/internal/i18n"
	"github.com/plantcert/pvp-backend/internal/services"
	"github.com/plantcert/pvp-backend/internal/utils"
)

type AuditHandler struct {
	auditService *services.AuditService
}

func NewAuditHandler(auditService *services.AuditService) *AuditHandler {
	return &AuditHandler{auditService: auditService}
}

// List returns rule engine execution logs for the caller's organization.
// GET /api/v1/audit-logs
func (h *AuditHandler) List(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	scope, ok := scopeFromContext(c)
	if !ok {
		utils.UnauthorizedResponse(c, i18n.T(lang, i18n.KeyAuthRequired))
		return
	}

	params := utils.GetPaginationParams(c)
	logs, total, err := h.auditService.List(scope, params)
	if err != nil {
		utils.InternalErrorResponse(c, i18n.T(lang, i18n.KeyErrorInternal))
		return
	}

	utils.PaginatedResponse(c, utils.CreatePaginationResult(logs, total, params))
}
