// internal/models/jurisdiction.go
package models

import (
	"github.com/google/uuid"
)

// Jurisdiction is immutable reference data: a country or region with its own
// PVP legal regime. Authored by super-admins, read-only to the engine.
type Jurisdiction struct {
	BaseModel
	Code         string `json:"code" gorm:"uniqueIndex;size:10;not null"`
	Name         string `json:"name" gorm:"size:255;not null"`
	CurrencyCode string `json:"currency_code" gorm:"size:3;not null"`

	// Relationships
	RuleSets []RuleSet `json:"rule_sets,omitempty" gorm:"foreignKey:JurisdictionID"`
}

// RuleSet is one versioned bundle of deadline/document/term/fee rules for a
// jurisdiction. At most one set per jurisdiction is active; activation
// deactivates its siblings.
type RuleSet struct {
	BaseModel
	JurisdictionID uuid.UUID `json:"jurisdiction_id" gorm:"type:uuid;not null;index"`
	Name           string    `json:"name" gorm:"size:255;not null"`
	Version        string    `json:"version" gorm:"size:50;not null"`
	IsActive       bool      `json:"is_active" gorm:"default:false;index"`

	// Relationships
	Jurisdiction         Jurisdiction              `json:"jurisdiction,omitempty" gorm:"foreignKey:JurisdictionID"`
	Deadlines            []RuleDeadline            `json:"deadlines,omitempty" gorm:"foreignKey:RuleSetID"`
	DocumentRequirements []RuleDocumentRequirement `json:"document_requirements,omitempty" gorm:"foreignKey:RuleSetID"`
	Terms                []RuleTerm                `json:"terms,omitempty" gorm:"foreignKey:RuleSetID"`
	Fees                 []RuleFee                 `json:"fees,omitempty" gorm:"foreignKey:RuleSetID"`
}

// RuleDeadline derives a concrete due date as baseDate(trigger) + OffsetDays.
type RuleDeadline struct {
	BaseModel
	RuleSetID    uuid.UUID    `json:"rule_set_id" gorm:"type:uuid;not null;index"`
	TriggerEvent TriggerEvent `json:"trigger_event" gorm:"type:varchar(30);not null;index"`
	OffsetDays   int          `json:"offset_days" gorm:"not null"`
	Title        string       `json:"title" gorm:"size:255"`
	Description  string       `json:"description" gorm:"type:text"`

	RuleSet RuleSet `json:"rule_set,omitempty" gorm:"foreignKey:RuleSetID"`
}

// RuleDocumentRequirement derives one DOCUMENT upload task per required row
// at filing time. DocType is matched against uploaded Document.DocType by
// exact string equality.
type RuleDocumentRequirement struct {
	BaseModel
	RuleSetID uuid.UUID `json:"rule_set_id" gorm:"type:uuid;not null;index"`
	DocType   string    `json:"doc_type" gorm:"size:100;not null"`
	Required  bool      `json:"required"`
	Notes     string    `json:"notes" gorm:"type:text"`

	RuleSet RuleSet `json:"rule_set,omitempty" gorm:"foreignKey:RuleSetID"`
}

// RuleTermDefaultVariety is the sentinel VarietyType that matches any variety
// without an exact term row.
const RuleTermDefaultVariety = "Default"

// RuleTerm maps a variety type label to a protection term in years.
type RuleTerm struct {
	BaseModel
	RuleSetID   uuid.UUID `json:"rule_set_id" gorm:"type:uuid;not null;index"`
	VarietyType string    `json:"variety_type" gorm:"size:100;not null"`
	TermYears   int       `json:"term_years" gorm:"not null"`

	RuleSet RuleSet `json:"rule_set,omitempty" gorm:"foreignKey:RuleSetID"`
}

// RuleFee is a fee-schedule row. The maintenance generator stamps the RENEWAL
// fee amount on generated renewal terms; currency comes from the jurisdiction.
type RuleFee struct {
	BaseModel
	RuleSetID   uuid.UUID `json:"rule_set_id" gorm:"type:uuid;not null;index"`
	FeeCode     FeeCode   `json:"fee_code" gorm:"type:varchar(20);not null"`
	Description string    `json:"description" gorm:"size:255"`
	Amount      float64   `json:"amount" gorm:"type:decimal(12,2);not null"`

	RuleSet RuleSet `json:"rule_set,omitempty" gorm:"foreignKey:RuleSetID"`
}
