package services

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/ahmetcoskunkizilkaya/vtour-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/vtour-backend/internal/metrics"
	"github.com/ahmetcoskunkizilkaya/vtour-backend/internal/models"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type AuthService struct {
	db     *gorm.DB
	tokens *TokenService
	assets *Assets
}

func NewAuthService(db *gorm.DB, tokens *TokenService, assets *Assets) *AuthService {
	return &AuthService{db: db, tokens: tokens, assets: assets}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *AuthService) Register(req *dto.RegisterRequest) (*dto.AuthResponse, error) {
	email := normalizeEmail(req.Email)

	var existing int64
	if err := s.db.Model(&models.User{}).Where("email = ?", email).Count(&existing).Error; err != nil {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}
	if existing > 0 {
		metrics.RecordAuth("register", ErrEmailTaken)
		return nil, ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := models.User{
		Name:         strings.TrimSpace(req.Name),
		Email:        email,
		PasswordHash: string(hash),
		Role:         models.RoleUser,
		IsActive:     true,
	}

	var resp *dto.AuthResponse
	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&user).Error; err != nil {
			return fmt.Errorf("failed to create user: %w", err)
		}
		resp, err = s.generateTokenPair(tx, &user)
		return err
	})
	metrics.RecordAuth("register", err)
	if err != nil {
		return nil, err
	}

	slog.Info("user registered", "user_id", user.ID.String())
	return resp, nil
}

func (s *AuthService) Login(req *dto.LoginRequest) (*dto.AuthResponse, error) {
	resp, err := s.login(req)
	metrics.RecordAuth("login", err)
	return resp, err
}

func (s *AuthService) login(req *dto.LoginRequest) (*dto.AuthResponse, error) {
	var user models.User
	if err := s.db.Where("email = ?", normalizeEmail(req.Email)).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, ErrAccountInactive
	}

	now := time.Now()
	user.LastLogin = &now

	var resp *dto.AuthResponse
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.User{}).Where("id = ?", user.ID).UpdateColumn("last_login", now).Error; err != nil {
			return fmt.Errorf("failed to record login: %w", err)
		}
		var err error
		resp, err = s.generateTokenPair(tx, &user)
		return err
	})
	return resp, err
}

// Refresh rotates a refresh token: the presented token is revoked and a
// new pair is issued.
func (s *AuthService) Refresh(req *dto.RefreshRequest) (*dto.AuthResponse, error) {
	var resp *dto.AuthResponse
	err := s.db.Transaction(func(tx *gorm.DB) error {
		userID, err := s.tokens.ConsumeRefreshToken(tx, req.RefreshToken)
		if err != nil {
			return err
		}

		var user models.User
		if err := tx.First(&user, "id = ?", userID).Error; err != nil {
			return ErrInvalidToken
		}
		if !user.IsActive {
			return ErrAccountInactive
		}

		resp, err = s.generateTokenPair(tx, &user)
		return err
	})
	metrics.RecordAuth("refresh", err)
	if err != nil {
		return nil, err
	}
	return resp, nil
}

func (s *AuthService) Logout(req *dto.LogoutRequest) error {
	return s.tokens.RevokeRefreshToken(s.db, req.RefreshToken)
}

func (s *AuthService) GetUser(userID uuid.UUID) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	return &user, nil
}

// DeleteAccount removes the user with every owned tour after checking the
// password.
func (s *AuthService) DeleteAccount(userID uuid.UUID, password string) error {
	user, err := s.GetUser(userID)
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return ErrInvalidCredentials
	}

	var filenames []string
	var tours int
	err = s.db.Transaction(func(tx *gorm.DB) error {
		var err error
		filenames, tours, err = deleteUserTx(tx, userID)
		return err
	})
	if err != nil {
		return err
	}

	metrics.ToursDeleted.Add(float64(tours))
	s.assets.removeFiles(filenames)
	slog.Info("account deleted", "user_id", userID.String(), "tours", tours)
	return nil
}

// CreateAdmin creates an administrator, or promotes and resets the password
// of an existing user with the same email.
func (s *AuthService) CreateAdmin(name, email, password string) (*models.User, error) {
	if len(password) < 8 {
		return nil, fmt.Errorf("password must be at least 8 characters")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	email = normalizeEmail(email)

	var user models.User
	err = s.db.Where("email = ?", email).First(&user).Error
	switch {
	case err == nil:
		user.Role = models.RoleAdmin
		user.IsActive = true
		user.PasswordHash = string(hash)
		if err := s.db.Save(&user).Error; err != nil {
			return nil, fmt.Errorf("failed to promote user: %w", err)
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		user = models.User{
			Name:         name,
			Email:        email,
			PasswordHash: string(hash),
			Role:         models.RoleAdmin,
			IsActive:     true,
		}
		if err := s.db.Create(&user).Error; err != nil {
			return nil, fmt.Errorf("failed to create admin: %w", err)
		}
	default:
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	return &user, nil
}

// EnsureAdmin creates the configured administrator when no admin exists.
func (s *AuthService) EnsureAdmin(name, email, password string) (bool, error) {
	if email == "" || password == "" {
		return false, nil
	}
	var admins int64
	if err := s.db.Model(&models.User{}).Where("role = ?", models.RoleAdmin).Count(&admins).Error; err != nil {
		return false, fmt.Errorf("failed to count admins: %w", err)
	}
	if admins > 0 {
		return false, nil
	}
	if _, err := s.CreateAdmin(name, email, password); err != nil {
		return false, err
	}
	return true, nil
}

func (s *AuthService) generateTokenPair(tx *gorm.DB, user *models.User) (*dto.AuthResponse, error) {
	accessToken, err := s.tokens.GenerateAccessToken(user)
	if err != nil {
		return nil, err
	}

	refreshToken, err := s.tokens.IssueRefreshToken(tx, user.ID)
	if err != nil {
		return nil, err
	}

	return &dto.AuthResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int64(s.tokens.AccessExpiry().Seconds()),
		User:         dto.NewUserResponse(user),
	}, nil
}
