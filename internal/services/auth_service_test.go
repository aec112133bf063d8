// internal/services/auth_service_test.go
package services

import (
	"testing"

	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"

	"github.com/plantcert/pvp-backend/internal/config"
	"github.com/plantcert/pvp-backend/internal/models"
	"github.com/plantcert/pvp-backend/internal/utils"
)

type AuthServiceTestSuite struct {
	suite.Suite
	db   *gorm.DB
	auth *AuthService
}

func (suite *AuthServiceTestSuite) SetupTest() {
	suite.db = newTestDB(suite.T())

	cfg := &config.Config{
		JWT: config.JWTConfig{
			SecretKey:       "test-secret",
			AccessTokenTTL:  1,
			RefreshTokenTTL: 24,
		},
	}
	utils.SetJWTSecret(cfg.JWT.SecretKey)
	suite.auth = NewAuthService(suite.db, cfg)
}

func (suite *AuthServiceTestSuite) register() *AuthResponse {
	resp, err := suite.auth.Register(&RegisterRequest{
		Username:         "breeder1",
		Email:            "breeder@verdant.example",
		Password:         "Str0ngPass!",
		OrganizationName: "Verdant Breeding BV",
		Country:          "Netherlands",
	})
	suite.Require().NoError(err)
	return resp
}

func (suite *AuthServiceTestSuite) TestRegisterCreatesOrganizationAndAdmin() {
	resp := suite.register()

	suite.NotEmpty(resp.AccessToken)
	suite.NotEmpty(resp.RefreshToken)
	suite.Equal(models.UserTypeOrgAdmin, resp.User.UserType)
	suite.Require().NotNil(resp.User.OrganizationID)

	var org models.Organization
	suite.Require().NoError(suite.db.First(&org, "id = ?", *resp.User.OrganizationID).Error)
	suite.Equal("Verdant Breeding BV", org.Name)
	suite.Equal(models.OrganizationStatusActive, org.Status)
}

func (suite *AuthServiceTestSuite) TestRegisterRejectsDuplicateUsername() {
	suite.register()

	_, err := suite.auth.Register(&RegisterRequest{
		Username:         "breeder1",
		Email:            "other@verdant.example",
		Password:         "Str0ngPass!",
		OrganizationName: "Another Org",
	})

	suite.ErrorIs(err, ErrUserExists)
}

func (suite *AuthServiceTestSuite) TestLoginByUsernameAndEmail() {
	suite.register()

	byUsername, err := suite.auth.Login(&LoginRequest{Username: "breeder1", Password: "Str0ngPass!"})
	suite.Require().NoError(err)
	suite.NotEmpty(byUsername.AccessToken)

	byEmail, err := suite.auth.Login(&LoginRequest{Username: "breeder@verdant.example", Password: "Str0ngPass!"})
	suite.Require().NoError(err)
	suite.NotNil(byEmail.User.LastLoginAt)
}

func (suite *AuthServiceTestSuite) TestLoginWrongPassword() {
	suite.register()

	_, err := suite.auth.Login(&LoginRequest{Username: "breeder1", Password: "WrongPass1!"})

	suite.ErrorIs(err, ErrInvalidCredentials)
}

func (suite *AuthServiceTestSuite) TestLoginSuspendedUser() {
	resp := suite.register()
	suite.Require().NoError(suite.db.Model(&models.User{}).
		Where("id = ?", resp.User.ID).
		Update("status", models.UserStatusSuspended).Error)

	_, err := suite.auth.Login(&LoginRequest{Username: "breeder1", Password: "Str0ngPass!"})

	suite.ErrorIs(err, ErrUserSuspended)
}

func (suite *AuthServiceTestSuite) TestRefreshToken() {
	resp := suite.register()

	refreshed, err := suite.auth.RefreshToken(resp.RefreshToken)

	suite.Require().NoError(err)
	suite.NotEmpty(refreshed.AccessToken)
	suite.Equal(resp.User.ID, refreshed.User.ID)
}

func (suite *AuthServiceTestSuite) TestRefreshTokenRejectsGarbage() {
	_, err := suite.auth.RefreshToken("not-a-token")

	suite.ErrorIs(err, ErrInvalidCredentials)
}

func (suite *AuthServiceTestSuite) TestChangePassword() {
	resp := suite.register()

	err := suite.auth.ChangePassword(resp.User.ID, "Str0ngPass!", "N3wStrong!Pass")
	suite.Require().NoError(err)

	_, err = suite.auth.Login(&LoginRequest{Username: "breeder1", Password: "Str0ngPass!"})
	suite.ErrorIs(err, ErrInvalidCredentials)

	_, err = suite.auth.Login(&LoginRequest{Username: "breeder1", Password: "N3wStrong!Pass"})
	suite.NoError(err)
}

func (suite *AuthServiceTestSuite) TestChangePasswordWrongCurrent() {
	resp := suite.register()

	err := suite.auth.ChangePassword(resp.User.ID, "WrongPass1!", "N3wStrong!Pass")
	suite.ErrorIs(err, ErrInvalidCredentials)

	_, err = suite.auth.Login(&LoginRequest{Username: "breeder1", Password: "Str0ngPass!"})
	suite.NoError(err)
}

func TestAuthServiceTestSuite(t *testing.T) {
	suite.Run(t, new(AuthServiceTestSuite))
}
