// internal/services/testutil_test.go
package services

import (
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/plantcert/pvp-backend/internal/models"
	"github.com/plantcert/pvp-backend/internal/utils"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&models.Organization{},
		&models.User{},
		&models.Jurisdiction{},
		&models.RuleSet{},
		&models.RuleDeadline{},
		&models.RuleDocumentRequirement{},
		&models.RuleTerm{},
		&models.RuleFee{},
		&models.Variety{},
		&models.Application{},
		&models.Document{},
		&models.Task{},
		&models.TaskGeneration{},
		&models.RenewalTerm{},
		&models.RuleAuditLog{},
	)
	require.NoError(t, err)

	return db
}

type fixture struct {
	t  *testing.T
	db *gorm.DB

	Org          *models.Organization
	User         *models.User
	Jurisdiction *models.Jurisdiction
}

func newFixture(t *testing.T, db *gorm.DB) *fixture {
	t.Helper()

	org := &models.Organization{
		Name:    "Verdant Breeding BV",
		Country: "Netherlands",
		Status:  models.OrganizationStatusActive,
	}
	require.NoError(t, db.Create(org).Error)

	user := &models.User{
		OrganizationID: &org.ID,
		Username:       "agent-" + uuid.NewString()[:8],
		Email:          uuid.NewString()[:8] + "@verdant.example",
		PasswordHash:   "x",
		UserType:       models.UserTypeOrgAdmin,
		Status:         models.UserStatusActive,
	}
	require.NoError(t, db.Create(user).Error)

	jurisdiction := &models.Jurisdiction{
		Code:         "EU",
		Name:         "European Union (CPVO)",
		CurrencyCode: "EUR",
	}
	require.NoError(t, db.Create(jurisdiction).Error)

	return &fixture{
		t:            t,
		db:           db,
		Org:          org,
		User:         user,
		Jurisdiction: jurisdiction,
	}
}

func (f *fixture) scope() Scope {
	return OrgScope(f.Org.ID, f.User.ID)
}

func (f *fixture) activeRuleSet() *models.RuleSet {
	f.t.Helper()
	ruleSet := &models.RuleSet{
		JurisdictionID: f.Jurisdiction.ID,
		Name:           "CPVO standard rules",
		Version:        "2024.1",
		IsActive:       true,
	}
	require.NoError(f.t, f.db.Create(ruleSet).Error)
	return ruleSet
}

func (f *fixture) deadlineRule(ruleSetID uuid.UUID, trigger models.TriggerEvent, offsetDays int, title string) *models.RuleDeadline {
	f.t.Helper()
	rule := &models.RuleDeadline{
		RuleSetID:    ruleSetID,
		TriggerEvent: trigger,
		OffsetDays:   offsetDays,
		Title:        title,
	}
	require.NoError(f.t, f.db.Create(rule).Error)
	return rule
}

func (f *fixture) documentRule(ruleSetID uuid.UUID, docType string, required bool) *models.RuleDocumentRequirement {
	f.t.Helper()
	rule := &models.RuleDocumentRequirement{
		RuleSetID: ruleSetID,
		DocType:   docType,
		Required:  required,
	}
	require.NoError(f.t, f.db.Create(rule).Error)
	return rule
}

func (f *fixture) termRule(ruleSetID uuid.UUID, varietyType string, years int) *models.RuleTerm {
	f.t.Helper()
	rule := &models.RuleTerm{
		RuleSetID:   ruleSetID,
		VarietyType: varietyType,
		TermYears:   years,
	}
	require.NoError(f.t, f.db.Create(rule).Error)
	return rule
}

func (f *fixture) feeRule(ruleSetID uuid.UUID, code models.FeeCode, amount float64) *models.RuleFee {
	f.t.Helper()
	rule := &models.RuleFee{
		RuleSetID: ruleSetID,
		FeeCode:   code,
		Amount:    amount,
	}
	require.NoError(f.t, f.db.Create(rule).Error)
	return rule
}

func (f *fixture) variety(varietyType string) *models.Variety {
	f.t.Helper()
	variety := &models.Variety{
		OrganizationID: f.Org.ID,
		Name:           "Test Variety " + uuid.NewString()[:8],
		VarietyType:    varietyType,
	}
	require.NoError(f.t, f.db.Create(variety).Error)
	return variety
}

func (f *fixture) application(variety *models.Variety, status models.ApplicationStatus) *models.Application {
	f.t.Helper()
	application := &models.Application{
		OrganizationID: f.Org.ID,
		VarietyID:      variety.ID,
		JurisdictionID: f.Jurisdiction.ID,
		Status:         status,
		DUSStatus:      models.DUSStatusNotStarted,
		CreatedBy:      f.User.ID,
	}
	require.NoError(f.t, f.db.Create(application).Error)
	return application
}

func newPaginationParams() utils.PaginationParams {
	return utils.PaginationParams{
		Page:  1,
		Limit: 50,
		Sort:  "due_date",
		Order: "asc",
	}
}

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func datePtr(year int, month time.Month, day int) *time.Time {
	d := date(year, month, day)
	return &d
}
