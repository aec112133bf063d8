// internal/models/common.go
package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Base model with common fields
type BaseModel struct {
	ID        uuid.UUID      `json:"id" gorm:"type:uuid;primary_key"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}

// BeforeCreate generates the UUID in-process so the models behave the same
// against PostgreSQL and the sqlite driver used in tests.
func (b *BaseModel) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

// JSONB type for PostgreSQL
type JSONB map[string]interface{}

func (j JSONB) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	return json.Marshal(j)
}

func (j *JSONB) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}

	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, j)
	case string:
		return json.Unmarshal([]byte(v), j)
	default:
		return nil
	}
}

// Enums
type UserType string

const (
	UserTypeSuperAdmin UserType = "super_admin"
	UserTypeOrgAdmin   UserType = "org_admin"
	UserTypeMember     UserType = "member"
)

type UserStatus string

const (
	UserStatusActive    UserStatus = "active"
	UserStatusSuspended UserStatus = "suspended"
)

type OrganizationStatus string

const (
	OrganizationStatusActive    OrganizationStatus = "active"
	OrganizationStatusSuspended OrganizationStatus = "suspended"
)

// TriggerEvent is the closed set of lifecycle moments that cause rule
// evaluation. Rule rows referencing anything outside this set are rejected
// at authoring time.
type TriggerEvent string

const (
	TriggerFilingDate      TriggerEvent = "FILING_DATE"
	TriggerPublicationDate TriggerEvent = "PUBLICATION_DATE"
	TriggerGrantDate       TriggerEvent = "GRANT_DATE"
)

func (t TriggerEvent) Valid() bool {
	switch t {
	case TriggerFilingDate, TriggerPublicationDate, TriggerGrantDate:
		return true
	}
	return false
}

type ApplicationStatus string

const (
	ApplicationStatusDraft             ApplicationStatus = "draft"
	ApplicationStatusFiled             ApplicationStatus = "filed"
	ApplicationStatusFormalityCheck    ApplicationStatus = "formality_check"
	ApplicationStatusDUS               ApplicationStatus = "dus"
	ApplicationStatusExam              ApplicationStatus = "exam"
	ApplicationStatusPublishedOpp      ApplicationStatus = "published_opp"
	ApplicationStatusCertificateIssued ApplicationStatus = "certificate_issued"
	ApplicationStatusRefused           ApplicationStatus = "refused"
	ApplicationStatusWithdrawn         ApplicationStatus = "withdrawn"
)

// statusTransitions is the lifecycle table. Refused and Withdrawn are
// terminal; Withdrawn is reachable from any non-terminal status.
var statusTransitions = map[ApplicationStatus][]ApplicationStatus{
	ApplicationStatusDraft:          {ApplicationStatusFiled, ApplicationStatusWithdrawn},
	ApplicationStatusFiled:          {ApplicationStatusFormalityCheck, ApplicationStatusRefused, ApplicationStatusWithdrawn},
	ApplicationStatusFormalityCheck: {ApplicationStatusDUS, ApplicationStatusRefused, ApplicationStatusWithdrawn},
	ApplicationStatusDUS:            {ApplicationStatusExam, ApplicationStatusRefused, ApplicationStatusWithdrawn},
	ApplicationStatusExam:           {ApplicationStatusPublishedOpp, ApplicationStatusRefused, ApplicationStatusWithdrawn},
	ApplicationStatusPublishedOpp:   {ApplicationStatusCertificateIssued, ApplicationStatusRefused, ApplicationStatusWithdrawn},
}

func (s ApplicationStatus) CanTransitionTo(next ApplicationStatus) bool {
	for _, allowed := range statusTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

func (s ApplicationStatus) IsTerminal() bool {
	return s == ApplicationStatusRefused || s == ApplicationStatusWithdrawn
}

type DUSStatus string

const (
	DUSStatusNotStarted DUSStatus = "not_started"
	DUSStatusInProgress DUSStatus = "in_progress"
	DUSStatusPassed     DUSStatus = "passed"
	DUSStatusFailed     DUSStatus = "failed"
)

type TaskType string

const (
	TaskTypeDeadline TaskType = "DEADLINE"
	TaskTypeDocument TaskType = "DOCUMENT"
)

type TaskStatus string

const (
	TaskStatusPending   TaskStatus = "PENDING"
	TaskStatusCompleted TaskStatus = "COMPLETED"
)

type RenewalStatus string

const (
	RenewalStatusUpcoming  RenewalStatus = "upcoming"
	RenewalStatusPaid      RenewalStatus = "paid"
	RenewalStatusOverdue   RenewalStatus = "overdue"
	RenewalStatusCompleted RenewalStatus = "completed"
)

type FeeCode string

const (
	FeeCodeFiling  FeeCode = "FILING"
	FeeCodeExam    FeeCode = "EXAM"
	FeeCodeRenewal FeeCode = "RENEWAL"
)
