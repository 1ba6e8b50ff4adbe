// internal/domain/user/service.go
package user

import (
	"errors"
	"fmt"
	"time"

	"github.com/your-org/pos-backend/internal/config"
	"github.com/your-org/pos-backend/internal/pkg/apperrors"
	"github.com/your-org/pos-backend/internal/pkg/auth"
	"gorm.io/gorm"
)

// Service handles user registration and authentication
type Service struct {
	db              *gorm.DB
	jwtManager      *auth.JWTManager
	passwordManager *auth.PasswordManager
	config          *config.Config
}

// NewService creates a new user service
func NewService(db *gorm.DB, jwtManager *auth.JWTManager, passwordManager *auth.PasswordManager, cfg *config.Config) *Service {
	return &Service{
		db:              db,
		jwtManager:      jwtManager,
		passwordManager: passwordManager,
		config:          cfg,
	}
}

// RegisterRequest represents user registration data
type RegisterRequest struct {
	Username  string `json:"username" binding:"required,min=3,max=50"`
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	IsAdmin   bool   `json:"is_admin"`
}

// LoginRequest represents login credentials
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// AuthResponse represents a successful authentication
type AuthResponse struct {
	User         *User  `json:"user"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
}

// Register creates a new user account
func (s *Service) Register(req *RegisterRequest) (*User, error) {
	if err := s.passwordManager.ValidatePassword(req.Password); err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrInvalidInput, err)
	}

	var existing User
	if err := s.db.Where("username = ? OR email = ?", req.Username, req.Email).First(&existing).Error; err == nil {
		return nil, fmt.Errorf("%w: username or email already taken", apperrors.ErrInvalidInput)
	}

	hash, err := s.passwordManager.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to hash password: %v", apperrors.ErrPersistence, err)
	}

	user := &User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: hash,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		IsAdmin:      req.IsAdmin,
		IsActive:     true,
	}
	if err := s.db.Create(user).Error; err != nil {
		return nil, fmt.Errorf("%w: failed to create user: %v", apperrors.ErrPersistence, err)
	}

	return user, nil
}

// Login authenticates a user and issues a token pair
func (s *Service) Login(req *LoginRequest) (*AuthResponse, error) {
	var user User
	err := s.db.Where("username = ? AND is_active = ?", req.Username, true).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: invalid credentials", apperrors.ErrInvalidInput)
		}
		return nil, fmt.Errorf("%w: failed to look up user: %v", apperrors.ErrPersistence, err)
	}

	if err := s.passwordManager.VerifyPassword(req.Password, user.PasswordHash); err != nil {
		return nil, fmt.Errorf("%w: invalid credentials", apperrors.ErrInvalidInput)
	}

	now := time.Now()
	s.db.Model(&user).UpdateColumn("last_login_at", now)
	user.LastLoginAt = &now

	return s.issueTokens(&user)
}

// RefreshToken exchanges a valid refresh token for a new token pair
func (s *Service) RefreshToken(refreshToken string) (*AuthResponse, error) {
	claims, err := s.jwtManager.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid refresh token", apperrors.ErrInvalidInput)
	}

	var user User
	err = s.db.Where("id = ? AND is_active = ?", claims.UserID, true).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: user %d", apperrors.ErrNotFound, claims.UserID)
		}
		return nil, fmt.Errorf("%w: failed to look up user: %v", apperrors.ErrPersistence, err)
	}

	return s.issueTokens(&user)
}

// GetUser retrieves a user by ID
func (s *Service) GetUser(id uint) (*User, error) {
	var user User
	if err := s.db.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: user %d", apperrors.ErrNotFound, id)
		}
		return nil, fmt.Errorf("%w: failed to retrieve user: %v", apperrors.ErrPersistence, err)
	}
	return &user, nil
}

// GetUsers lists all users, active first
func (s *Service) GetUsers() ([]User, error) {
	var users []User
	if err := s.db.Order("is_active DESC, username asc").Find(&users).Error; err != nil {
		return nil, fmt.Errorf("%w: failed to retrieve users: %v", apperrors.ErrPersistence, err)
	}
	return users, nil
}

// DeactivateUser disables a user without removing their sale history
func (s *Service) DeactivateUser(id uint) error {
	result := s.db.Model(&User{}).Where("id = ?", id).UpdateColumn("is_active", false)
	if result.Error != nil {
		return fmt.Errorf("%w: failed to deactivate user: %v", apperrors.ErrPersistence, result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: user %d", apperrors.ErrNotFound, id)
	}
	return nil
}

func (s *Service) issueTokens(user *User) (*AuthResponse, error) {
	accessToken, err := s.jwtManager.GenerateAccessToken(user.ID, user.Username, user.IsAdmin)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to generate access token: %v", apperrors.ErrPersistence, err)
	}
	refreshToken, err := s.jwtManager.GenerateRefreshToken(user.ID, user.Username)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to generate refresh token: %v", apperrors.ErrPersistence, err)
	}

	return &AuthResponse{
		User:         user,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int64(s.config.JWT.AccessTokenExpiry.Seconds()),
	}, nil
}
