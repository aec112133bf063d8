// internal/models/application.go
package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Variety is an organisation-owned plant variety. VarietyType is the label
// matched against RuleTerm.VarietyType for protection-term resolution.
type Variety struct {
	BaseModel
	OrganizationID uuid.UUID      `json:"organization_id" gorm:"type:uuid;not null;index"`
	Name           string         `json:"name" gorm:"size:255;not null"`
	Denomination   string         `json:"denomination" gorm:"size:255"`
	Species        string         `json:"species" gorm:"size:255"`
	VarietyType    string         `json:"variety_type" gorm:"size:100;not null"`
	BreederRef     string         `json:"breeder_ref" gorm:"size:100"`
	Synonyms       pq.StringArray `json:"synonyms" gorm:"type:text[]"`

	// Relationships
	Organization Organization  `json:"organization,omitempty" gorm:"foreignKey:OrganizationID"`
	Applications []Application `json:"applications,omitempty" gorm:"foreignKey:VarietyID"`
}

// Application is the case file: one variety seeking protection in one
// jurisdiction. Owned exclusively by its organisation; every read and write
// is tenant-scoped unless the caller is a super-admin.
type Application struct {
	BaseModel
	OrganizationID  uuid.UUID         `json:"organization_id" gorm:"type:uuid;not null;index"`
	VarietyID       uuid.UUID         `json:"variety_id" gorm:"type:uuid;not null;index"`
	JurisdictionID  uuid.UUID         `json:"jurisdiction_id" gorm:"type:uuid;not null;index"`
	Reference       string            `json:"reference" gorm:"size:100"`
	Status          ApplicationStatus `json:"status" gorm:"type:varchar(30);default:'draft';index"`
	DUSStatus       DUSStatus         `json:"dus_status" gorm:"type:varchar(20);default:'not_started'"`
	FilingDate      *time.Time        `json:"filing_date"`
	PublicationDate *time.Time        `json:"publication_date"`
	GrantDate       *time.Time        `json:"grant_date"`
	ExpiryDate      *time.Time        `json:"expiry_date"`
	CreatedBy       uuid.UUID         `json:"created_by" gorm:"type:uuid;not null"`

	// Relationships
	Organization Organization  `json:"organization,omitempty" gorm:"foreignKey:OrganizationID"`
	Variety      Variety       `json:"variety,omitempty" gorm:"foreignKey:VarietyID"`
	Jurisdiction Jurisdiction  `json:"jurisdiction,omitempty" gorm:"foreignKey:JurisdictionID"`
	Tasks        []Task        `json:"tasks,omitempty" gorm:"foreignKey:ApplicationID"`
	Documents    []Document    `json:"documents,omitempty" gorm:"foreignKey:ApplicationID"`
	RenewalTerms []RenewalTerm `json:"renewal_terms,omitempty" gorm:"foreignKey:ApplicationID"`
}

// Document is an uploaded document record. DocType is compared by exact
// string equality against RuleDocumentRequirement.DocType.
type Document struct {
	BaseModel
	OrganizationID uuid.UUID  `json:"organization_id" gorm:"type:uuid;not null;index"`
	ApplicationID  uuid.UUID  `json:"application_id" gorm:"type:uuid;not null;index"`
	RenewalTermID  *uuid.UUID `json:"renewal_term_id" gorm:"type:uuid;index"`
	DocType        string     `json:"doc_type" gorm:"size:100;not null;index"`
	Title          string     `json:"title" gorm:"size:255"`
	FileURL        string     `json:"file_url" gorm:"size:1024"`
	FileHash       string     `json:"file_hash" gorm:"size:64"`
	UploadedBy     uuid.UUID  `json:"uploaded_by" gorm:"type:uuid;not null"`

	// Relationships
	Application Application `json:"application,omitempty" gorm:"foreignKey:ApplicationID"`
}
