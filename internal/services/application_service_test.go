// internal/services/application_service_test.go
package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"

	"github.com/plantcert/pvp-backend/internal/models"
)

type ApplicationServiceTestSuite struct {
	suite.Suite
	db           *gorm.DB
	fixture      *fixture
	applications *ApplicationService
}

func (suite *ApplicationServiceTestSuite) SetupTest() {
	suite.db = newTestDB(suite.T())
	suite.fixture = newFixture(suite.T(), suite.db)
	rules := NewRulesService(suite.db)
	audit := NewAuditService(suite.db)
	tasks := NewTaskService(suite.db, rules, audit, nil)
	suite.applications = NewApplicationService(suite.db, rules, tasks, audit)
}

func (suite *ApplicationServiceTestSuite) TestCreateOpensDraft() {
	variety := suite.fixture.variety("Tree")

	application, err := suite.applications.Create(suite.fixture.scope(), &CreateApplicationRequest{
		VarietyID:      variety.ID,
		JurisdictionID: suite.fixture.Jurisdiction.ID,
		Reference:      "EU-2024-001",
	})

	suite.Require().NoError(err)
	suite.Equal(models.ApplicationStatusDraft, application.Status)
	suite.Equal(models.DUSStatusNotStarted, application.DUSStatus)
	suite.Nil(application.FilingDate)
}

func (suite *ApplicationServiceTestSuite) TestCreateRejectsForeignVariety() {
	otherOrg := &models.Organization{Name: "Rival Seeds", Status: models.OrganizationStatusActive}
	suite.Require().NoError(suite.db.Create(otherOrg).Error)
	foreign := &models.Variety{
		OrganizationID: otherOrg.ID,
		Name:           "Foreign Variety",
		VarietyType:    "Tree",
	}
	suite.Require().NoError(suite.db.Create(foreign).Error)

	_, err := suite.applications.Create(suite.fixture.scope(), &CreateApplicationRequest{
		VarietyID:      foreign.ID,
		JurisdictionID: suite.fixture.Jurisdiction.ID,
	})

	suite.ErrorIs(err, ErrVarietyNotFound)
}

func (suite *ApplicationServiceTestSuite) TestFileStampsDateAndGeneratesTasks() {
	ruleSet := suite.fixture.activeRuleSet()
	suite.fixture.deadlineRule(ruleSet.ID, models.TriggerFilingDate, 120, "Submit DUS samples")
	suite.fixture.documentRule(ruleSet.ID, "Power of Attorney", true)

	variety := suite.fixture.variety("Tree")
	application := suite.fixture.application(variety, models.ApplicationStatusDraft)

	filed, generation, err := suite.applications.File(suite.fixture.scope(), application.ID, &FileApplicationRequest{
		FilingDate: datePtr(2024, time.January, 15),
	})

	suite.Require().NoError(err)
	suite.Equal(models.ApplicationStatusFiled, filed.Status)
	suite.Require().NotNil(filed.FilingDate)
	suite.Equal(date(2024, time.January, 15), *filed.FilingDate)

	suite.Require().NotNil(generation)
	suite.False(generation.AlreadyGenerated)
	suite.Len(generation.Tasks, 2)
}

func (suite *ApplicationServiceTestSuite) TestFileTwiceIsInvalidTransition() {
	variety := suite.fixture.variety("Tree")
	application := suite.fixture.application(variety, models.ApplicationStatusDraft)
	scope := suite.fixture.scope()

	_, _, err := suite.applications.File(scope, application.ID, &FileApplicationRequest{})
	suite.Require().NoError(err)

	_, _, err = suite.applications.File(scope, application.ID, &FileApplicationRequest{})
	suite.ErrorIs(err, ErrInvalidTransition)
}

func (suite *ApplicationServiceTestSuite) TestLifecycleSkippingStagesIsRejected() {
	variety := suite.fixture.variety("Tree")
	application := suite.fixture.application(variety, models.ApplicationStatusDraft)

	_, _, err := suite.applications.TransitionStatus(suite.fixture.scope(), application.ID, &TransitionRequest{
		Status: models.ApplicationStatusCertificateIssued,
		GrantDate: datePtr(2026, time.June, 1),
	})

	suite.ErrorIs(err, ErrInvalidTransition)
}

func (suite *ApplicationServiceTestSuite) TestWithdrawFromAnyNonTerminalState() {
	variety := suite.fixture.variety("Tree")
	application := suite.fixture.application(variety, models.ApplicationStatusExam)

	withdrawn, _, err := suite.applications.TransitionStatus(suite.fixture.scope(), application.ID, &TransitionRequest{
		Status: models.ApplicationStatusWithdrawn,
	})

	suite.Require().NoError(err)
	suite.Equal(models.ApplicationStatusWithdrawn, withdrawn.Status)

	_, _, err = suite.applications.TransitionStatus(suite.fixture.scope(), application.ID, &TransitionRequest{
		Status: models.ApplicationStatusFiled,
	})
	suite.ErrorIs(err, ErrInvalidTransition)
}

func (suite *ApplicationServiceTestSuite) TestPublicationStampsDateAndTriggersRules() {
	ruleSet := suite.fixture.activeRuleSet()
	suite.fixture.deadlineRule(ruleSet.ID, models.TriggerPublicationDate, 90, "Opposition window closes")

	variety := suite.fixture.variety("Tree")
	application := suite.fixture.application(variety, models.ApplicationStatusExam)

	published, generation, err := suite.applications.TransitionStatus(suite.fixture.scope(), application.ID, &TransitionRequest{
		Status:          models.ApplicationStatusPublishedOpp,
		PublicationDate: datePtr(2025, time.March, 1),
	})

	suite.Require().NoError(err)
	suite.Equal(models.ApplicationStatusPublishedOpp, published.Status)
	suite.Require().NotNil(published.PublicationDate)

	suite.Require().NotNil(generation)
	suite.Require().Len(generation.Tasks, 1)
	suite.Equal(date(2025, time.May, 30), generation.Tasks[0].DueDate)
}

func (suite *ApplicationServiceTestSuite) TestCertificateIssueRequiresGrantDate() {
	variety := suite.fixture.variety("Tree")
	application := suite.fixture.application(variety, models.ApplicationStatusPublishedOpp)

	_, _, err := suite.applications.TransitionStatus(suite.fixture.scope(), application.ID, &TransitionRequest{
		Status: models.ApplicationStatusCertificateIssued,
	})

	suite.ErrorIs(err, ErrGrantDateRequired)
}

func (suite *ApplicationServiceTestSuite) TestCertificateIssueComputesExpiry() {
	ruleSet := suite.fixture.activeRuleSet()
	suite.fixture.termRule(ruleSet.ID, "Tree", 25)

	variety := suite.fixture.variety("Tree")
	application := suite.fixture.application(variety, models.ApplicationStatusPublishedOpp)

	granted, _, err := suite.applications.TransitionStatus(suite.fixture.scope(), application.ID, &TransitionRequest{
		Status:    models.ApplicationStatusCertificateIssued,
		GrantDate: datePtr(2026, time.June, 1),
	})

	suite.Require().NoError(err)
	suite.Equal(models.ApplicationStatusCertificateIssued, granted.Status)
	suite.Require().NotNil(granted.ExpiryDate)
	suite.Equal(date(2051, time.June, 1), *granted.ExpiryDate)

	var logs []models.RuleAuditLog
	suite.Require().NoError(suite.db.Where("rule_type = ?", RuleTypeTermComputation).Find(&logs).Error)
	suite.Len(logs, 1)
}

func (suite *ApplicationServiceTestSuite) TestCertificateIssueWithoutTermRulesLeavesExpiryOpen() {
	suite.fixture.activeRuleSet()

	variety := suite.fixture.variety("Tree")
	application := suite.fixture.application(variety, models.ApplicationStatusPublishedOpp)

	granted, _, err := suite.applications.TransitionStatus(suite.fixture.scope(), application.ID, &TransitionRequest{
		Status:    models.ApplicationStatusCertificateIssued,
		GrantDate: datePtr(2026, time.June, 1),
	})

	suite.Require().NoError(err)
	suite.Nil(granted.ExpiryDate)
}

func (suite *ApplicationServiceTestSuite) TestGetScopedToTenant() {
	variety := suite.fixture.variety("Tree")
	application := suite.fixture.application(variety, models.ApplicationStatusDraft)

	otherOrg := &models.Organization{Name: "Rival Seeds", Status: models.OrganizationStatusActive}
	suite.Require().NoError(suite.db.Create(otherOrg).Error)
	otherUser := &models.User{
		OrganizationID: &otherOrg.ID,
		Username:       "rival",
		Email:          "rival@example.com",
		PasswordHash:   "x",
		UserType:       models.UserTypeMember,
		Status:         models.UserStatusActive,
	}
	suite.Require().NoError(suite.db.Create(otherUser).Error)

	_, err := suite.applications.Get(OrgScope(otherOrg.ID, otherUser.ID), application.ID)
	suite.ErrorIs(err, ErrApplicationNotFound)

	// A super admin sees across organisations.
	found, err := suite.applications.Get(AdminScope(otherUser.ID), application.ID)
	suite.Require().NoError(err)
	suite.Equal(application.ID, found.ID)
}

func (suite *ApplicationServiceTestSuite) TestUpdateDUSStatus() {
	variety := suite.fixture.variety("Tree")
	application := suite.fixture.application(variety, models.ApplicationStatusDUS)

	updated, err := suite.applications.UpdateDUSStatus(suite.fixture.scope(), application.ID, models.DUSStatusInProgress)

	suite.Require().NoError(err)
	suite.Equal(models.DUSStatusInProgress, updated.DUSStatus)
	// The main lifecycle does not move.
	suite.Equal(models.ApplicationStatusDUS, updated.Status)
}

func TestApplicationServiceTestSuite(t *testing.T) {
	suite.Run(t, new(ApplicationServiceTestSuite))
}
