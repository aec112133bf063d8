// internal/services/jurisdiction_service_test.go
package services

import (
	"testing"

	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"

	"github.com/plantcert/pvp-backend/internal/models"
)

type JurisdictionServiceTestSuite struct {
	suite.Suite
	db            *gorm.DB
	fixture       *fixture
	jurisdictions *JurisdictionService
}

func (suite *JurisdictionServiceTestSuite) SetupTest() {
	suite.db = newTestDB(suite.T())
	suite.fixture = newFixture(suite.T(), suite.db)
	suite.jurisdictions = NewJurisdictionService(suite.db)
}

func (suite *JurisdictionServiceTestSuite) TestCreateJurisdictionRejectsDuplicateCode() {
	_, err := suite.jurisdictions.CreateJurisdiction(&CreateJurisdictionRequest{
		Code:         "EU",
		Name:         "Duplicate of the fixture",
		CurrencyCode: "EUR",
	})

	suite.ErrorIs(err, ErrJurisdictionExists)
}

func (suite *JurisdictionServiceTestSuite) TestCreateRuleSetStartsInactive() {
	ruleSet, err := suite.jurisdictions.CreateRuleSet(suite.fixture.Jurisdiction.ID, &CreateRuleSetRequest{
		Name:    "CPVO rules",
		Version: "2024.1",
	})

	suite.Require().NoError(err)
	suite.False(ruleSet.IsActive)
}

func (suite *JurisdictionServiceTestSuite) TestActivateDeactivatesSiblings() {
	first, err := suite.jurisdictions.CreateRuleSet(suite.fixture.Jurisdiction.ID, &CreateRuleSetRequest{
		Name:    "Rules v1",
		Version: "1",
	})
	suite.Require().NoError(err)
	second, err := suite.jurisdictions.CreateRuleSet(suite.fixture.Jurisdiction.ID, &CreateRuleSetRequest{
		Name:    "Rules v2",
		Version: "2",
	})
	suite.Require().NoError(err)

	_, err = suite.jurisdictions.ActivateRuleSet(first.ID)
	suite.Require().NoError(err)
	activated, err := suite.jurisdictions.ActivateRuleSet(second.ID)
	suite.Require().NoError(err)
	suite.True(activated.IsActive)

	var active []models.RuleSet
	suite.Require().NoError(suite.db.
		Where("jurisdiction_id = ? AND is_active = ?", suite.fixture.Jurisdiction.ID, true).
		Find(&active).Error)
	suite.Require().Len(active, 1)
	suite.Equal(second.ID, active[0].ID)
}

func (suite *JurisdictionServiceTestSuite) TestActivationDoesNotCrossJurisdictions() {
	other := &models.Jurisdiction{Code: "US", Name: "United States (PVPO)", CurrencyCode: "USD"}
	suite.Require().NoError(suite.db.Create(other).Error)

	euSet, err := suite.jurisdictions.CreateRuleSet(suite.fixture.Jurisdiction.ID, &CreateRuleSetRequest{
		Name:    "EU rules",
		Version: "1",
	})
	suite.Require().NoError(err)
	usSet, err := suite.jurisdictions.CreateRuleSet(other.ID, &CreateRuleSetRequest{
		Name:    "US rules",
		Version: "1",
	})
	suite.Require().NoError(err)

	_, err = suite.jurisdictions.ActivateRuleSet(euSet.ID)
	suite.Require().NoError(err)
	_, err = suite.jurisdictions.ActivateRuleSet(usSet.ID)
	suite.Require().NoError(err)

	var active int64
	suite.Require().NoError(suite.db.Model(&models.RuleSet{}).
		Where("is_active = ?", true).Count(&active).Error)
	suite.Equal(int64(2), active)
}

func (suite *JurisdictionServiceTestSuite) TestAddRulesAndPreload() {
	ruleSet, err := suite.jurisdictions.CreateRuleSet(suite.fixture.Jurisdiction.ID, &CreateRuleSetRequest{
		Name:    "CPVO rules",
		Version: "2024.1",
	})
	suite.Require().NoError(err)

	_, err = suite.jurisdictions.AddDeadlineRule(ruleSet.ID, &CreateDeadlineRuleRequest{
		TriggerEvent: "FILING_DATE",
		OffsetDays:   120,
		Title:        "Submit DUS samples",
	})
	suite.Require().NoError(err)

	_, err = suite.jurisdictions.AddDocumentRule(ruleSet.ID, &CreateDocumentRuleRequest{
		DocType: "Power of Attorney",
	})
	suite.Require().NoError(err)

	_, err = suite.jurisdictions.AddTermRule(ruleSet.ID, &CreateTermRuleRequest{
		VarietyType: "Tree",
		TermYears:   25,
	})
	suite.Require().NoError(err)

	_, err = suite.jurisdictions.AddFeeRule(ruleSet.ID, &CreateFeeRuleRequest{
		FeeCode: "RENEWAL",
		Amount:  435.50,
	})
	suite.Require().NoError(err)

	loaded, err := suite.jurisdictions.GetRuleSet(ruleSet.ID)
	suite.Require().NoError(err)
	suite.Len(loaded.Deadlines, 1)
	suite.Len(loaded.DocumentRequirements, 1)
	suite.Len(loaded.Terms, 1)
	suite.Len(loaded.Fees, 1)
}

func (suite *JurisdictionServiceTestSuite) TestAddDocumentRuleOptionalStaysOptional() {
	ruleSet, err := suite.jurisdictions.CreateRuleSet(suite.fixture.Jurisdiction.ID, &CreateRuleSetRequest{
		Name:    "CPVO rules",
		Version: "2024.1",
	})
	suite.Require().NoError(err)

	optional := false
	rule, err := suite.jurisdictions.AddDocumentRule(ruleSet.ID, &CreateDocumentRuleRequest{
		DocType:  "Photographs",
		Required: &optional,
	})
	suite.Require().NoError(err)
	suite.False(rule.Required)

	// The false must survive the round trip to the database, not just the
	// in-memory struct.
	var stored models.RuleDocumentRequirement
	suite.Require().NoError(suite.db.First(&stored, "id = ?", rule.ID).Error)
	suite.False(stored.Required)

	omitted, err := suite.jurisdictions.AddDocumentRule(ruleSet.ID, &CreateDocumentRuleRequest{
		DocType: "Power of Attorney",
	})
	suite.Require().NoError(err)
	suite.True(omitted.Required)
}

func (suite *JurisdictionServiceTestSuite) TestAddRuleToUnknownRuleSet() {
	_, err := suite.jurisdictions.AddTermRule(suite.fixture.Jurisdiction.ID, &CreateTermRuleRequest{
		VarietyType: "Tree",
		TermYears:   25,
	})

	suite.ErrorIs(err, ErrRuleSetNotFound)
}

func TestJurisdictionServiceTestSuite(t *testing.T) {
	suite.Run(t, new(JurisdictionServiceTestSuite))
}
