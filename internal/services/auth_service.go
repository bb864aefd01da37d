package services

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/crisisconnect/moderation/internal/config"
	"github.com/crisisconnect/moderation/internal/dto"
	"github.com/crisisconnect/moderation/internal/models"
)

var (
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidToken       = errors.New("invalid or expired refresh token")
)

// AuthService manages moderator accounts and token issuance.
type AuthService struct {
	db  *gorm.DB
	cfg *config.Config
}

func NewAuthService(db *gorm.DB, cfg *config.Config) *AuthService {
	return &AuthService{db: db, cfg: cfg}
}

// Register creates a moderator account. Roles above junior can only be
// granted by an admin caller; handlers enforce that.
func (s *AuthService) Register(req *dto.RegisterModeratorRequest) (*dto.AuthResponse, error) {
	if len(req.Email) == 0 || len(req.Password) < 8 {
		return nil, errors.New("email required and password must be at least 8 characters")
	}
	role := req.Role
	if role == "" {
		role = models.RoleJunior
	}

	var existing models.Moderator
	if err := s.db.Where("email = ?", req.Email).First(&existing).Error; err == nil {
		return nil, ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	mod := models.Moderator{
		ID:              uuid.New(),
		Email:           req.Email,
		Password:        string(hash),
		DisplayName:     req.DisplayName,
		Role:            role,
		Specializations: req.Specializations,
		DailyCap:        100,
	}
	if err := s.db.Create(&mod).Error; err != nil {
		return nil, fmt.Errorf("failed to create moderator: %w", err)
	}

	return s.generateTokenPair(&mod)
}

func (s *AuthService) Login(req *dto.LoginRequest) (*dto.AuthResponse, error) {
	var mod models.Moderator
	if err := s.db.Where("email = ?", req.Email).First(&mod).Error; err != nil {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(mod.Password), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return s.generateTokenPair(&mod)
}

func (s *AuthService) Refresh(req *dto.RefreshRequest) (*dto.AuthResponse, error) {
	tokenHash := hashToken(req.RefreshToken)

	var stored models.RefreshToken
	if err := s.db.Where("token_hash = ? AND revoked = false", tokenHash).First(&stored).Error; err != nil {
		return nil, ErrInvalidToken
	}
	if time.Now().After(stored.ExpiresAt) {
		s.db.Model(&stored).Update("revoked", true)
		return nil, ErrInvalidToken
	}
	s.db.Model(&stored).Update("revoked", true)

	var mod models.Moderator
	if err := s.db.First(&mod, "id = ?", stored.ModeratorID).Error; err != nil {
		return nil, fmt.Errorf("moderator not found: %w", err)
	}
	return s.generateTokenPair(&mod)
}

func (s *AuthService) Logout(req *dto.LogoutRequest) error {
	tokenHash := hashToken(req.RefreshToken)
	return s.db.Model(&models.RefreshToken{}).
		Where("token_hash = ?", tokenHash).
		Update("revoked", true).Error
}

func (s *AuthService) generateTokenPair(mod *models.Moderator) (*dto.AuthResponse, error) {
	accessToken, err := s.generateAccessToken(mod)
	if err != nil {
		return nil, err
	}
	refreshToken, err := s.generateRefreshToken(mod)
	if err != nil {
		return nil, err
	}
	return &dto.AuthResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		Moderator: dto.ModeratorResponse{
			ID:          mod.ID,
			Email:       mod.Email,
			DisplayName: mod.DisplayName,
			Role:        mod.Role,
		},
	}, nil
}

func (s *AuthService) generateAccessToken(mod *models.Moderator) (string, error) {
	claims := jwt.MapClaims{
		"sub":   mod.ID.String(),
		"email": mod.Email,
		"role":  string(mod.Role),
		"iat":   time.Now().Unix(),
		"exp":   time.Now().Add(s.cfg.JWTAccessExpiry).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.JWTSecret))
}

func (s *AuthService) generateRefreshToken(mod *models.Moderator) (string, error) {
	rawBytes := make([]byte, 32)
	if _, err := rand.Read(rawBytes); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}

	rawToken := base64.URLEncoding.EncodeToString(rawBytes)
	record := models.RefreshToken{
		ID:          uuid.New(),
		ModeratorID: mod.ID,
		TokenHash:   hashToken(rawToken),
		ExpiresAt:   time.Now().Add(s.cfg.JWTRefreshExpiry),
	}
	if err := s.db.Create(&record).Error; err != nil {
		return "", fmt.Errorf("failed to store refresh token: %w", err)
	}
	return rawToken, nil
}

func hashToken(token string) string {
	h := sha256.Sum256([]byte(token))
	return fmt.Sprintf("%x", h)
}
