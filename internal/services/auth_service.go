// internal/services/auth_service.go
package services

import (
	"errors"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/lavshop/storefront-backend/internal/apperrors"
	"github.com/lavshop/storefront-backend/internal/config"
	"github.com/lavshop/storefront-backend/internal/models"
	"github.com/lavshop/storefront-backend/internal/utils"
)

type AuthService struct {
	db  *gorm.DB
	cfg *config.Config
}

type RegisterRequest struct {
	Username string `json:"username" validate:"required,min=3,max=50"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type AuthResponse struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

func NewAuthService(db *gorm.DB, cfg *config.Config) *AuthService {
	return &AuthService{db: db, cfg: cfg}
}

func (s *AuthService) Register(req *RegisterRequest) (*AuthResponse, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, apperrors.Validation("username, email and password are required")
	}

	var existing models.User
	err := s.db.Where("email = ? OR username = ?", req.Email, req.Username).First(&existing).Error
	if err == nil {
		return nil, apperrors.Conflict("an account with this email or username already exists")
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.Internal("failed to check existing users", err)
	}

	user := &models.User{
		Username: req.Username,
		Email:    req.Email,
	}
	if err := user.SetPassword(req.Password); err != nil {
		return nil, apperrors.Internal("failed to hash password", err)
	}

	if err := s.db.Create(user).Error; err != nil {
		return nil, apperrors.Internal("failed to create user", err)
	}

	token, err := utils.GenerateJWT(user.ID, user.Username, user.IsAdmin, s.cfg.JWT.AccessTokenTTL)
	if err != nil {
		return nil, apperrors.Internal("failed to issue token", err)
	}

	logrus.WithField("user_id", user.ID).Info("User registered")
	return &AuthResponse{Token: token, User: user}, nil
}

func (s *AuthService) Login(req *LoginRequest) (*AuthResponse, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, apperrors.Validation("email and password are required")
	}

	var user models.User
	if err := s.db.Where("email = ?", req.Email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.Unauthorized("invalid email or password")
		}
		return nil, apperrors.Internal("failed to fetch user", err)
	}

	if err := user.CheckPassword(req.Password); err != nil {
		return nil, apperrors.Unauthorized("invalid email or password")
	}

	token, err := utils.GenerateJWT(user.ID, user.Username, user.IsAdmin, s.cfg.JWT.AccessTokenTTL)
	if err != nil {
		return nil, apperrors.Internal("failed to issue token", err)
	}

	return &AuthResponse{Token: token, User: &user}, nil
}
