// internal/services/rules_service_test.go
package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"

	"github.com/plantcert/pvp-backend/internal/models"
)

type RulesServiceTestSuite struct {
	suite.Suite
	db      *gorm.DB
	fixture *fixture
	rules   *RulesService
}

func (suite *RulesServiceTestSuite) SetupTest() {
	suite.db = newTestDB(suite.T())
	suite.fixture = newFixture(suite.T(), suite.db)
	suite.rules = NewRulesService(suite.db)
}

func (suite *RulesServiceTestSuite) TestDeriveDeadlineTasksWithoutActiveRuleSet() {
	variety := suite.fixture.variety("Tree")
	application := suite.fixture.application(variety, models.ApplicationStatusFiled)
	application.FilingDate = datePtr(2024, time.January, 15)

	drafts, err := suite.rules.DeriveDeadlineTasks(application, models.TriggerFilingDate)

	suite.NoError(err)
	suite.Empty(drafts)
}

func (suite *RulesServiceTestSuite) TestDeriveDeadlineTasksOffsetArithmetic() {
	ruleSet := suite.fixture.activeRuleSet()
	suite.fixture.deadlineRule(ruleSet.ID, models.TriggerFilingDate, 120, "Submit DUS samples")

	variety := suite.fixture.variety("Tree")
	application := suite.fixture.application(variety, models.ApplicationStatusFiled)
	application.FilingDate = datePtr(2024, time.January, 15)

	drafts, err := suite.rules.DeriveDeadlineTasks(application, models.TriggerFilingDate)

	suite.NoError(err)
	suite.Require().Len(drafts, 1)
	suite.Equal(date(2024, time.May, 14), drafts[0].DueDate)
	suite.Equal("Submit DUS samples", drafts[0].Title)
	suite.Equal(models.TaskTypeDeadline, drafts[0].TaskType)
}

func (suite *RulesServiceTestSuite) TestDeriveDeadlineTasksFiltersByTrigger() {
	ruleSet := suite.fixture.activeRuleSet()
	suite.fixture.deadlineRule(ruleSet.ID, models.TriggerFilingDate, 30, "Formality check")
	suite.fixture.deadlineRule(ruleSet.ID, models.TriggerGrantDate, 365, "First annuity")

	variety := suite.fixture.variety("Tree")
	application := suite.fixture.application(variety, models.ApplicationStatusFiled)
	application.FilingDate = datePtr(2024, time.March, 1)

	drafts, err := suite.rules.DeriveDeadlineTasks(application, models.TriggerFilingDate)

	suite.NoError(err)
	suite.Require().Len(drafts, 1)
	suite.Equal("Formality check", drafts[0].Title)
}

func (suite *RulesServiceTestSuite) TestDeriveDeadlineTasksRejectsUnknownTrigger() {
	variety := suite.fixture.variety("Tree")
	application := suite.fixture.application(variety, models.ApplicationStatusFiled)

	_, err := suite.rules.DeriveDeadlineTasks(application, models.TriggerEvent("RENEWAL_DATE"))

	suite.ErrorIs(err, ErrInvalidTriggerEvent)
}

func (suite *RulesServiceTestSuite) TestDeriveDeadlineTasksMissingAnchorFallsBackToNow() {
	ruleSet := suite.fixture.activeRuleSet()
	suite.fixture.deadlineRule(ruleSet.ID, models.TriggerFilingDate, 10, "Formality check")

	variety := suite.fixture.variety("Tree")
	application := suite.fixture.application(variety, models.ApplicationStatusFiled)
	// No filing date set.

	before := time.Now()
	drafts, err := suite.rules.DeriveDeadlineTasks(application, models.TriggerFilingDate)
	after := time.Now()

	suite.NoError(err)
	suite.Require().Len(drafts, 1)
	suite.True(drafts[0].DueDate.After(before.AddDate(0, 0, 10).Add(-time.Second)))
	suite.True(drafts[0].DueDate.Before(after.AddDate(0, 0, 10).Add(time.Second)))
}

func (suite *RulesServiceTestSuite) TestDeriveDocumentTasksRequiredOnly() {
	ruleSet := suite.fixture.activeRuleSet()
	suite.fixture.documentRule(ruleSet.ID, "Power of Attorney", true)
	suite.fixture.documentRule(ruleSet.ID, "Assignment Deed", true)
	suite.fixture.documentRule(ruleSet.ID, "Photographs", false)

	variety := suite.fixture.variety("Tree")
	application := suite.fixture.application(variety, models.ApplicationStatusFiled)
	application.FilingDate = datePtr(2024, time.January, 15)

	drafts, err := suite.rules.DeriveDocumentTasks(application, models.TriggerFilingDate, nil)

	suite.NoError(err)
	suite.Require().Len(drafts, 2)
	titles := []string{drafts[0].Title, drafts[1].Title}
	suite.Contains(titles, "Upload Power of Attorney")
	suite.Contains(titles, "Upload Assignment Deed")
}

func (suite *RulesServiceTestSuite) TestDeriveDocumentTasksOnlyAtFiling() {
	ruleSet := suite.fixture.activeRuleSet()
	suite.fixture.documentRule(ruleSet.ID, "Power of Attorney", true)

	variety := suite.fixture.variety("Tree")
	application := suite.fixture.application(variety, models.ApplicationStatusCertificateIssued)
	application.GrantDate = datePtr(2024, time.June, 1)

	drafts, err := suite.rules.DeriveDocumentTasks(application, models.TriggerGrantDate, nil)

	suite.NoError(err)
	suite.Empty(drafts)
}

func (suite *RulesServiceTestSuite) TestDeriveDocumentTasksDueAtEarliestDeadline() {
	ruleSet := suite.fixture.activeRuleSet()
	suite.fixture.documentRule(ruleSet.ID, "Power of Attorney", true)

	variety := suite.fixture.variety("Tree")
	application := suite.fixture.application(variety, models.ApplicationStatusFiled)
	application.FilingDate = datePtr(2024, time.January, 15)

	deadlines := []TaskDraft{
		{DueDate: date(2024, time.April, 1)},
		{DueDate: date(2024, time.February, 10)},
	}
	drafts, err := suite.rules.DeriveDocumentTasks(application, models.TriggerFilingDate, deadlines)

	suite.NoError(err)
	suite.Require().Len(drafts, 1)
	suite.Equal(date(2024, time.February, 10), drafts[0].DueDate)
}

func (suite *RulesServiceTestSuite) TestCheckMissingDocumentsSetDifference() {
	ruleSet := suite.fixture.activeRuleSet()
	suite.fixture.documentRule(ruleSet.ID, "Power of Attorney", true)
	suite.fixture.documentRule(ruleSet.ID, "Assignment Deed", true)
	suite.fixture.documentRule(ruleSet.ID, "Technical Questionnaire", true)

	variety := suite.fixture.variety("Tree")
	application := suite.fixture.application(variety, models.ApplicationStatusFiled)

	for _, docType := range []string{"Power of Attorney", "Technical Questionnaire"} {
		doc := &models.Document{
			OrganizationID: suite.fixture.Org.ID,
			ApplicationID:  application.ID,
			DocType:        docType,
			Title:          docType,
			UploadedBy:     suite.fixture.User.ID,
		}
		suite.Require().NoError(suite.db.Create(doc).Error)
	}

	missing, err := suite.rules.CheckMissingDocuments(suite.fixture.scope(), application.ID)

	suite.NoError(err)
	suite.Require().Len(missing, 1)
	suite.Equal("Assignment Deed", missing[0].DocType)
}

func (suite *RulesServiceTestSuite) TestCheckMissingDocumentsExactMatchOnly() {
	ruleSet := suite.fixture.activeRuleSet()
	suite.fixture.documentRule(ruleSet.ID, "Power of Attorney", true)

	variety := suite.fixture.variety("Tree")
	application := suite.fixture.application(variety, models.ApplicationStatusFiled)

	doc := &models.Document{
		OrganizationID: suite.fixture.Org.ID,
		ApplicationID:  application.ID,
		DocType:        "power of attorney",
		Title:          "POA scan",
		UploadedBy:     suite.fixture.User.ID,
	}
	suite.Require().NoError(suite.db.Create(doc).Error)

	missing, err := suite.rules.CheckMissingDocuments(suite.fixture.scope(), application.ID)

	suite.NoError(err)
	suite.Require().Len(missing, 1)
	suite.Equal("Power of Attorney", missing[0].DocType)
}

func (suite *RulesServiceTestSuite) TestComputeTermEndDateExactMatch() {
	ruleSet := suite.fixture.activeRuleSet()
	suite.fixture.termRule(ruleSet.ID, "Tree", 25)
	suite.fixture.termRule(ruleSet.ID, models.RuleTermDefaultVariety, 20)

	variety := suite.fixture.variety("Tree")

	end, err := suite.rules.ComputeTermEndDate(variety.ID, suite.fixture.Jurisdiction.ID, date(2024, time.June, 1))

	suite.NoError(err)
	suite.Require().NotNil(end)
	suite.Equal(date(2049, time.June, 1), *end)
}

func (suite *RulesServiceTestSuite) TestComputeTermEndDateDefaultFallback() {
	ruleSet := suite.fixture.activeRuleSet()
	suite.fixture.termRule(ruleSet.ID, "Tree", 25)
	suite.fixture.termRule(ruleSet.ID, models.RuleTermDefaultVariety, 20)

	variety := suite.fixture.variety("Vine")

	end, err := suite.rules.ComputeTermEndDate(variety.ID, suite.fixture.Jurisdiction.ID, date(2024, time.June, 1))

	suite.NoError(err)
	suite.Require().NotNil(end)
	suite.Equal(date(2044, time.June, 1), *end)
}

func (suite *RulesServiceTestSuite) TestComputeTermEndDateNoTermRules() {
	suite.fixture.activeRuleSet()
	variety := suite.fixture.variety("Vine")

	end, err := suite.rules.ComputeTermEndDate(variety.ID, suite.fixture.Jurisdiction.ID, date(2024, time.June, 1))

	suite.NoError(err)
	suite.Nil(end)
}

func (suite *RulesServiceTestSuite) TestComputeTermEndDateMissingVarietyFailsHard() {
	suite.fixture.activeRuleSet()

	_, err := suite.rules.ComputeTermEndDate(suite.fixture.User.ID, suite.fixture.Jurisdiction.ID, date(2024, time.June, 1))

	suite.ErrorIs(err, ErrVarietyNotFound)
}

func (suite *RulesServiceTestSuite) TestSelectActiveRuleSetLatestWins() {
	older := &models.RuleSet{
		JurisdictionID: suite.fixture.Jurisdiction.ID,
		Name:           "Rules v1",
		Version:        "1",
		IsActive:       true,
	}
	suite.Require().NoError(suite.db.Create(older).Error)
	suite.Require().NoError(suite.db.Model(older).
		Update("created_at", time.Now().Add(-time.Hour)).Error)

	newer := &models.RuleSet{
		JurisdictionID: suite.fixture.Jurisdiction.ID,
		Name:           "Rules v2",
		Version:        "2",
		IsActive:       true,
	}
	suite.Require().NoError(suite.db.Create(newer).Error)

	ruleSet, err := suite.rules.SelectActiveRuleSet(suite.fixture.Jurisdiction.ID)

	suite.NoError(err)
	suite.Require().NotNil(ruleSet)
	suite.Equal(newer.ID, ruleSet.ID)
}

func (suite *RulesServiceTestSuite) TestRenewalFee() {
	ruleSet := suite.fixture.activeRuleSet()
	suite.fixture.feeRule(ruleSet.ID, models.FeeCodeRenewal, 435.50)
	suite.fixture.feeRule(ruleSet.ID, models.FeeCodeFiling, 900)

	fee, err := suite.rules.RenewalFee(suite.fixture.Jurisdiction.ID)

	suite.NoError(err)
	suite.Equal(435.50, fee)
}

func TestRulesServiceTestSuite(t *testing.T) {
	suite.Run(t, new(RulesServiceTestSuite))
}
