// internal/models/task.go
package models

import (
	"time"

	"github.com/google/uuid"
)

// Task is a generated or manually created work item on an application.
// Engine-generated tasks are never regenerated once created.
type Task struct {
	BaseModel
	OrganizationID uuid.UUID     `json:"organization_id" gorm:"type:uuid;not null;index"`
	ApplicationID  uuid.UUID     `json:"application_id" gorm:"type:uuid;not null;index"`
	TaskType       TaskType      `json:"task_type" gorm:"type:varchar(20);not null"`
	TriggerEvent   *TriggerEvent `json:"trigger_event" gorm:"type:varchar(30);index"`
	Title          string        `json:"title" gorm:"size:255;not null"`
	Description    string        `json:"description" gorm:"type:text"`
	DueDate        time.Time     `json:"due_date" gorm:"not null;index"`
	Status         TaskStatus    `json:"status" gorm:"type:varchar(20);default:'PENDING';index"`
	CompletedAt    *time.Time    `json:"completed_at"`
	CompletedBy    *uuid.UUID    `json:"completed_by" gorm:"type:uuid"`

	// Relationships
	Application Application `json:"application,omitempty" gorm:"foreignKey:ApplicationID"`
}

// TaskGeneration is the idempotency marker for engine generation. The unique
// index makes a concurrent double-trigger a detectable no-op instead of a
// silent duplicate-task bug.
type TaskGeneration struct {
	BaseModel
	ApplicationID uuid.UUID    `json:"application_id" gorm:"type:uuid;not null;uniqueIndex:idx_task_gen_app_trigger"`
	TriggerEvent  TriggerEvent `json:"trigger_event" gorm:"type:varchar(30);not null;uniqueIndex:idx_task_gen_app_trigger"`
	TaskCount     int          `json:"task_count" gorm:"not null;default:0"`
	GeneratedBy   uuid.UUID    `json:"generated_by" gorm:"type:uuid;not null"`
}
