package services

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/ahmetcoskunkizilkaya/vtour-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/vtour-backend/internal/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TokenService signs access tokens and manages rotating refresh tokens.
// Only the sha256 of a refresh token is stored.
type TokenService struct {
	secret        []byte
	accessExpiry  time.Duration
	refreshExpiry time.Duration
	now           func() time.Time
}

func NewTokenService(cfg config.JWTConfig) *TokenService {
	return &TokenService{
		secret:        []byte(cfg.Secret),
		accessExpiry:  cfg.AccessExpiry,
		refreshExpiry: cfg.RefreshExpiry,
		now:           time.Now,
	}
}

func (s *TokenService) AccessExpiry() time.Duration {
	return s.accessExpiry
}

func (s *TokenService) GenerateAccessToken(user *models.User) (string, error) {
	now := s.now()
	claims := jwt.MapClaims{
		"sub":   user.ID.String(),
		"email": user.Email,
		"role":  user.Role,
		"iat":   now.Unix(),
		"exp":   now.Add(s.accessExpiry).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign access token: %w", err)
	}
	return signed, nil
}

// IssueRefreshToken stores a new refresh token for the user and returns the
// raw value handed to the client.
func (s *TokenService) IssueRefreshToken(db *gorm.DB, userID uuid.UUID) (string, error) {
	rawBytes := make([]byte, 32)
	if _, err := rand.Read(rawBytes); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}
	rawToken := base64.RawURLEncoding.EncodeToString(rawBytes)

	record := models.RefreshToken{
		UserID:    userID,
		TokenHash: hashToken(rawToken),
		ExpiresAt: s.now().Add(s.refreshExpiry),
	}
	if err := db.Create(&record).Error; err != nil {
		return "", fmt.Errorf("failed to store refresh token: %w", err)
	}
	return rawToken, nil
}

// ConsumeRefreshToken revokes a live refresh token and returns its owner.
// Unknown, revoked and expired tokens yield ErrInvalidToken.
func (s *TokenService) ConsumeRefreshToken(tx *gorm.DB, rawToken string) (uuid.UUID, error) {
	var stored models.RefreshToken
	if err := tx.Where("token_hash = ? AND revoked = ?", hashToken(rawToken), false).First(&stored).Error; err != nil {
		return uuid.Nil, ErrInvalidToken
	}

	// The revoked=false guard makes concurrent reuse lose the race.
	res := tx.Model(&models.RefreshToken{}).
		Where("id = ? AND revoked = ?", stored.ID, false).
		Update("revoked", true)
	if res.Error != nil {
		return uuid.Nil, fmt.Errorf("failed to revoke refresh token: %w", res.Error)
	}
	if res.RowsAffected == 0 || s.now().After(stored.ExpiresAt) {
		return uuid.Nil, ErrInvalidToken
	}
	return stored.UserID, nil
}

func (s *TokenService) RevokeRefreshToken(db *gorm.DB, rawToken string) error {
	return db.Model(&models.RefreshToken{}).
		Where("token_hash = ?", hashToken(rawToken)).
		Update("revoked", true).Error
}

func hashToken(token string) string {
	h := sha256.Sum256([]byte(token))
	return fmt.Sprintf("%x", h)
}
