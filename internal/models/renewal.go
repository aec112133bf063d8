// internal/models/renewal.go
package models

import (
	"time"

	"github.com/google/uuid"
)

// RenewalTerm is one row of the 25-year annuity schedule that keeps a granted
// certificate in force. Exactly 25 rows exist per application once generated;
// the unique (application_id, year) index guards first-generation races.
type RenewalTerm struct {
	BaseModel
	OrganizationID uuid.UUID     `json:"organization_id" gorm:"type:uuid;not null;index"`
	ApplicationID  uuid.UUID     `json:"application_id" gorm:"type:uuid;not null;uniqueIndex:idx_renewal_app_year"`
	Year           int           `json:"year" gorm:"not null;uniqueIndex:idx_renewal_app_year"`
	DueDate        time.Time     `json:"due_date" gorm:"not null;index"`
	Status         RenewalStatus `json:"status" gorm:"type:varchar(20);default:'upcoming'"`
	Amount         float64       `json:"amount" gorm:"type:decimal(12,2);default:0"`
	CurrencyCode   string        `json:"currency_code" gorm:"size:3"`
	PaymentDate    *time.Time    `json:"payment_date"`

	// Relationships
	Application Application `json:"application,omitempty" gorm:"foreignKey:ApplicationID"`
	Documents   []Document  `json:"documents,omitempty" gorm:"foreignKey:RenewalTermID"`
}

// EffectiveStatus projects Overdue at read time. Overdue is never persisted:
// a term is overdue whenever its due date has passed and it is neither paid
// nor completed.
func (r *RenewalTerm) EffectiveStatus(at time.Time) RenewalStatus {
	if r.Status == RenewalStatusPaid || r.Status == RenewalStatusCompleted {
		return r.Status
	}
	if at.After(r.DueDate) {
		return RenewalStatusOverdue
	}
	return r.Status
}
