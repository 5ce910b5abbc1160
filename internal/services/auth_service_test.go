// internal/services/auth_service_test.go
package services

import (
	"testing"

	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"

	"github.com/lavshop/storefront-backend/internal/apperrors"
	"github.com/lavshop/storefront-backend/internal/config"
	"github.com/lavshop/storefront-backend/internal/utils"
)

type AuthServiceTestSuite struct {
	suite.Suite
	db  *gorm.DB
	svc *AuthService
}

func (suite *AuthServiceTestSuite) SetupTest() {
	suite.db = newTestDB(suite.T())
	utils.SetJWTSecret("test-secret")
	cfg := &config.Config{
		JWT: config.JWTConfig{SecretKey: "test-secret", AccessTokenTTL: 1},
	}
	suite.svc = NewAuthService(suite.db, cfg)
}

func (suite *AuthServiceTestSuite) TestRegisterIssuesToken() {
	resp, err := suite.svc.Register(&RegisterRequest{
		Username: "newuser",
		Email:    "new@example.com",
		Password: "supersecret1",
	})
	suite.NoError(err)
	suite.NotEmpty(resp.Token)
	suite.Equal("newuser", resp.User.Username)

	claims, err := utils.ValidateJWT(resp.Token)
	suite.NoError(err)
	suite.Equal(resp.User.ID.String(), claims.UserID)
}

func (suite *AuthServiceTestSuite) TestRegisterRejectsShortPassword() {
	_, err := suite.svc.Register(&RegisterRequest{
		Username: "newuser",
		Email:    "new@example.com",
		Password: "short",
	})
	suite.Error(err)
	suite.True(apperrors.IsKind(err, apperrors.KindValidation))
}

func (suite *AuthServiceTestSuite) TestRegisterRejectsDuplicateEmail() {
	seedUser(suite.T(), suite.db, "existing", "taken@example.com")

	_, err := suite.svc.Register(&RegisterRequest{
		Username: "someoneelse",
		Email:    "taken@example.com",
		Password: "supersecret1",
	})
	suite.Error(err)
	suite.True(apperrors.IsKind(err, apperrors.KindConflict))
}

func (suite *AuthServiceTestSuite) TestLoginRejectsWrongPassword() {
	seedUser(suite.T(), suite.db, "someone", "someone@example.com")

	_, err := suite.svc.Login(&LoginRequest{
		Email:    "someone@example.com",
		Password: "wrong-password",
	})
	suite.Error(err)
	suite.True(apperrors.IsKind(err, apperrors.KindUnauthorized))
}

func (suite *AuthServiceTestSuite) TestLoginUnknownEmail() {
	_, err := suite.svc.Login(&LoginRequest{
		Email:    "nobody@example.com",
		Password: "whatever123",
	})
	suite.Error(err)
	suite.True(apperrors.IsKind(err, apperrors.KindUnauthorized))
}

func (suite *AuthServiceTestSuite) TestLoginSucceedsWithCorrectPassword() {
	seedUser(suite.T(), suite.db, "someone", "someone@example.com")

	resp, err := suite.svc.Login(&LoginRequest{
		Email:    "someone@example.com",
		Password: "correct-horse-battery",
	})
	suite.NoError(err)
	suite.NotEmpty(resp.Token)
}

func TestAuthServiceTestSuite(t *testing.T) {
	suite.Run(t, new(AuthServiceTestSuite))
}
