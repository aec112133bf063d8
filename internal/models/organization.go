// internal/models/organization.go
package models

import (
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// Organization is the tenant root. Every application, variety, task and
// renewal row is owned by exactly one organization.
type Organization struct {
	BaseModel
	Name    string             `json:"name" gorm:"size:255;not null"`
	Country string             `json:"country" gorm:"size:100"`
	Status  OrganizationStatus `json:"status" gorm:"type:varchar(20);default:'active'"`

	// Relationships
	Users        []User        `json:"users,omitempty" gorm:"foreignKey:OrganizationID"`
	Varieties    []Variety     `json:"varieties,omitempty" gorm:"foreignKey:OrganizationID"`
	Applications []Application `json:"applications,omitempty" gorm:"foreignKey:OrganizationID"`
}

type User struct {
	BaseModel
	OrganizationID *uuid.UUID `json:"organization_id" gorm:"type:uuid;index"`
	Username       string     `json:"username" gorm:"uniqueIndex;size:50;not null"`
	Email          string     `json:"email" gorm:"uniqueIndex;size:255;not null"`
	PasswordHash   string     `json:"-" gorm:"size:255;not null"`
	UserType       UserType   `json:"user_type" gorm:"type:varchar(20);not null"`
	Status         UserStatus `json:"status" gorm:"type:varchar(20);default:'active'"`
	ProfileData    JSONB      `json:"profile_data" gorm:"type:jsonb"`
	LastLoginAt    *time.Time `json:"last_login_at"`

	// Relationships
	Organization *Organization `json:"organization,omitempty" gorm:"foreignKey:OrganizationID"`
}

func (u *User) SetPassword(password string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hashedPassword)
	return nil
}

func (u *User) CheckPassword(password string) error {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password))
}
