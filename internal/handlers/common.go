// internal/handlers/common.go
package handlers

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/plantcert/pvp-backend/internal/models"
	"github.com/plantcert/pvp-backend/internal/services"
	"github.com/plantcert/pvp-backend/internal/utils"
)

// scopeFromContext builds the tenancy scope for the authenticated user.
// Super admins operate without an organization filter.
func scopeFromContext(c *gin.Context) (services.Scope, bool) {
	userIDStr, exists := utils.GetUserIDFromContext(c)
	if !exists {
		return services.Scope{}, false
	}
	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		return services.Scope{}, false
	}

	userType, _ := utils.GetUserTypeFromContext(c)
	if userType == string(models.UserTypeSuperAdmin) {
		return services.AdminScope(userID), true
	}

	orgIDStr, exists := utils.GetOrganizationIDFromContext(c)
	if !exists || orgIDStr == "" {
		return services.Scope{}, false
	}
	orgID, err := uuid.Parse(orgIDStr)
	if err != nil {
		return services.Scope{}, false
	}

	return services.OrgScope(orgID, userID), true
}

// parseDate accepts a plain date or a full RFC 3339 timestamp.
func parseDate(value string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", value); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, value)
}

// parseUUIDParam reads a path parameter as a UUID, responding 400 on failure.
func parseUUIDParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid "+name, nil)
		return uuid.Nil, false
	}
	return id, true
}
