// internal/services/variety_service_test.go
package services

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"

	"github.com/plantcert/pvp-backend/internal/models"
)

type VarietyServiceTestSuite struct {
	suite.Suite
	db        *gorm.DB
	fixture   *fixture
	varieties *VarietyService
}

func (suite *VarietyServiceTestSuite) SetupTest() {
	suite.db = newTestDB(suite.T())
	suite.fixture = newFixture(suite.T(), suite.db)
	suite.varieties = NewVarietyService(suite.db)
}

func (suite *VarietyServiceTestSuite) TestCreateStampsOrganization() {
	variety, err := suite.varieties.Create(suite.fixture.scope(), &CreateVarietyRequest{
		Name:        "Sunrise Gala",
		Species:     "Malus domestica",
		VarietyType: "Tree",
		Synonyms:    []string{"Gala Dawn"},
	})

	suite.Require().NoError(err)
	suite.Equal(suite.fixture.Org.ID, variety.OrganizationID)
	suite.NotEqual(uuid.Nil, variety.ID)
}

func (suite *VarietyServiceTestSuite) TestCreateRequiresOrganizationScope() {
	_, err := suite.varieties.Create(AdminScope(suite.fixture.User.ID), &CreateVarietyRequest{
		Name:        "Orphan",
		VarietyType: "Tree",
	})

	suite.Error(err)
}

func (suite *VarietyServiceTestSuite) TestUpdateChangesOnlyProvidedFields() {
	variety := suite.fixture.variety("Tree")
	newName := "Renamed Cultivar"

	updated, err := suite.varieties.Update(suite.fixture.scope(), variety.ID, &UpdateVarietyRequest{
		Name: &newName,
	})

	suite.Require().NoError(err)
	suite.Equal("Renamed Cultivar", updated.Name)
	suite.Equal("Tree", updated.VarietyType)
}

func (suite *VarietyServiceTestSuite) TestDeleteBlockedByExistingApplications() {
	variety := suite.fixture.variety("Tree")
	suite.fixture.application(variety, models.ApplicationStatusDraft)

	err := suite.varieties.Delete(suite.fixture.scope(), variety.ID)

	suite.ErrorIs(err, ErrVarietyInUse)

	var count int64
	suite.db.Model(&models.Variety{}).Where("id = ?", variety.ID).Count(&count)
	suite.Equal(int64(1), count)
}

func (suite *VarietyServiceTestSuite) TestDeleteRemovesUnusedVariety() {
	variety := suite.fixture.variety("Shrub")

	suite.Require().NoError(suite.varieties.Delete(suite.fixture.scope(), variety.ID))

	_, err := suite.varieties.Get(suite.fixture.scope(), variety.ID)
	suite.ErrorIs(err, ErrVarietyNotFound)
}

func (suite *VarietyServiceTestSuite) TestTenantIsolation() {
	variety := suite.fixture.variety("Tree")

	otherOrg := &models.Organization{Name: "Rival Seeds Ltd", Status: models.OrganizationStatusActive}
	suite.Require().NoError(suite.db.Create(otherOrg).Error)
	otherScope := OrgScope(otherOrg.ID, uuid.New())

	_, err := suite.varieties.Get(otherScope, variety.ID)
	suite.ErrorIs(err, ErrVarietyNotFound)

	got, err := suite.varieties.Get(AdminScope(suite.fixture.User.ID), variety.ID)
	suite.Require().NoError(err)
	suite.Equal(variety.ID, got.ID)
}

func (suite *VarietyServiceTestSuite) TestListPaginates() {
	for i := 0; i < 3; i++ {
		suite.fixture.variety("Tree")
	}

	params := newPaginationParams()
	params.Sort = "created_at"
	params.Limit = 2

	varieties, total, err := suite.varieties.List(suite.fixture.scope(), params)

	suite.Require().NoError(err)
	suite.Equal(int64(3), total)
	suite.Len(varieties, 2)
}

func TestVarietyServiceTestSuite(t *testing.T) {
	suite.Run(t, new(VarietyServiceTestSuite))
}
