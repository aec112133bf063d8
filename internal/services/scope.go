// internal/services/scope.go
package services

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Scope is the explicit tenancy context passed into every scoped service
// operation. A nil OrgID is the super-admin marker: queries run unscoped.
// Services never read tenant identity from ambient state.
type Scope struct {
	OrgID  *uuid.UUID
	UserID uuid.UUID
}

func OrgScope(orgID, userID uuid.UUID) Scope {
	return Scope{OrgID: &orgID, UserID: userID}
}

func AdminScope(userID uuid.UUID) Scope {
	return Scope{UserID: userID}
}

func (s Scope) Unscoped() bool {
	return s.OrgID == nil
}

// scoped applies the tenant-isolation filter. Every query touching
// Application/Task/Document/RenewalTerm/Variety rows goes through here.
func (s Scope) scoped(db *gorm.DB) *gorm.DB {
	if s.OrgID != nil {
		return db.Where("organization_id = ?", *s.OrgID)
	}
	return db
}
