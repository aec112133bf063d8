// internal/models/audit.go
package models

import (
	"github.com/google/uuid"
)

// RuleAuditLog is the append-only record of every rule-engine execution,
// kept for compliance traceability. Rows are never updated or deleted.
type RuleAuditLog struct {
	BaseModel
	OrganizationID *uuid.UUID `json:"organization_id" gorm:"type:uuid;index"`
	UserID         *uuid.UUID `json:"user_id" gorm:"type:uuid;index"`
	RuleType       string     `json:"rule_type" gorm:"size:50;not null;index"`
	Input          JSONB      `json:"input" gorm:"type:jsonb"`
	Output         JSONB      `json:"output" gorm:"type:jsonb"`

	// Relationships
	User *User `json:"user,omitempty" gorm:"foreignKey:UserID"`
}
