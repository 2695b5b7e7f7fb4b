package services

import (
	"context"
	"errors"

	"susu-collect/internal/adapters/persistence/models"
	"susu-collect/internal/adapters/persistence/repositories"
	"susu-collect/internal/core/domain"
	"susu-collect/internal/pkg/jwt"
	"susu-collect/internal/pkg/password"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// AuthService handles authentication business logic
type AuthService struct {
	userRepo         repositories.UserRepository
	refreshTokenRepo repositories.RefreshTokenRepository
	officerRepo      repositories.OfficerRepository
	jwtSecret        string
	refreshSecret    string
	accessTokenMins  int
	refreshTokenDays int
}

// NewAuthService creates a new auth service
func NewAuthService(
	userRepo repositories.UserRepository,
	refreshTokenRepo repositories.RefreshTokenRepository,
	officerRepo repositories.OfficerRepository,
	jwtSecret, refreshSecret string,
	accessTokenMins, refreshTokenDays int,
) *AuthService {
	return &AuthService{
		userRepo:         userRepo,
		refreshTokenRepo: refreshTokenRepo,
		officerRepo:      officerRepo,
		jwtSecret:        jwtSecret,
		refreshSecret:    refreshSecret,
		accessTokenMins:  accessTokenMins,
		refreshTokenDays: refreshTokenDays,
	}
}

// RegisterInput for user registration
type RegisterInput struct {
	Username string `json:"username" validate:"required,min=3,max=50"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	FullName string `json:"full_name"`
}

// LoginInput for user login
type LoginInput struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// TokenPair contains access and refresh tokens
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// AuthResponse for login/register responses
type AuthResponse struct {
	User      *models.UserResponse `json:"user"`
	OfficerID uint                 `json:"officer_id,omitempty"`
	Tokens    *TokenPair           `json:"tokens"`
}

// Register creates a new officer account. The officer profile itself is
// created separately by an admin through the officer service.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*AuthResponse, error) {
	if !password.ValidatePassword(input.Password) {
		return nil, domain.ErrInvalidInput
	}

	exists, err := s.userRepo.ExistsByUsername(ctx, input.Username)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, domain.ErrUserAlreadyExists
	}

	exists, err = s.userRepo.ExistsByEmail(ctx, input.Email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, domain.ErrUserAlreadyExists
	}

	hashed, err := password.Hash(input.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Username: input.Username,
		Email:    input.Email,
		Password: hashed,
		FullName: input.FullName,
		Role:     string(domain.RoleOfficer),
		IsActive: true,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	tokens, err := s.issueTokens(ctx, user, 0)
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"user_id":  user.ID,
		"username": user.Username,
	}).Info("user registered")

	return &AuthResponse{User: user.ToResponse(), Tokens: tokens}, nil
}

// Login authenticates a user and returns a token pair
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*AuthResponse, error) {
	user, err := s.userRepo.GetByUsername(ctx, input.Username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}

	if !user.IsActive {
		return nil, domain.ErrForbidden
	}

	if !password.Verify(input.Password, user.Password) {
		return nil, domain.ErrInvalidCredentials
	}

	officerID := s.resolveOfficerID(ctx, user)

	tokens, err := s.issueTokens(ctx, user, officerID)
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"user_id":  user.ID,
		"username": user.Username,
		"role":     user.Role,
	}).Info("user logged in")

	return &AuthResponse{User: user.ToResponse(), OfficerID: officerID, Tokens: tokens}, nil
}

// RefreshToken rotates a refresh token: the presented token is revoked and a
// fresh pair is issued. A revoked or expired token is rejected.
func (s *AuthService) RefreshToken(ctx context.Context, refreshToken string) (*TokenPair, error) {
	claims, err := jwt.ValidateRefreshToken(refreshToken, s.refreshSecret)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, domain.ErrTokenExpired
		}
		return nil, domain.ErrTokenInvalid
	}

	tokenHash := password.HashToken(refreshToken)
	stored, err := s.refreshTokenRepo.GetByTokenHash(ctx, tokenHash)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrTokenInvalid
		}
		return nil, err
	}

	if stored.IsRevoked() || stored.IsExpired() {
		return nil, domain.ErrTokenInvalid
	}

	user, err := s.userRepo.GetByID(ctx, claims.UserID)
	if err != nil {
		return nil, domain.ErrUserNotFound
	}
	if !user.IsActive {
		return nil, domain.ErrForbidden
	}

	if err := s.refreshTokenRepo.Revoke(ctx, stored.ID); err != nil {
		return nil, err
	}

	officerID := s.resolveOfficerID(ctx, user)
	return s.issueTokens(ctx, user, officerID)
}

// Logout revokes a single refresh token
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	tokenHash := password.HashToken(refreshToken)
	return s.refreshTokenRepo.RevokeByTokenHash(ctx, tokenHash)
}

// LogoutAll revokes all of a user's refresh tokens
func (s *AuthService) LogoutAll(ctx context.Context, userID uint) error {
	return s.refreshTokenRepo.RevokeAllByUserID(ctx, userID)
}

// GetProfile returns the account plus its officer profile when one exists
func (s *AuthService) GetProfile(ctx context.Context, userID uint) (*models.UserResponse, *models.CollectionOfficer, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, domain.ErrUserNotFound
		}
		return nil, nil, err
	}

	officer, err := s.officerRepo.GetByUserID(ctx, userID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil, err
	}

	return user.ToResponse(), officer, nil
}

// resolveOfficerID looks up the officer profile for a user account; zero when
// the account has none (admins).
func (s *AuthService) resolveOfficerID(ctx context.Context, user *models.User) uint {
	officer, err := s.officerRepo.GetByUserID(ctx, user.ID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			logrus.WithError(err).WithField("user_id", user.ID).Warn("officer lookup failed")
		}
		return 0
	}
	return officer.ID
}

// issueTokens generates and stores a new access/refresh pair
func (s *AuthService) issueTokens(ctx context.Context, user *models.User, officerID uint) (*TokenPair, error) {
	accessToken, err := jwt.GenerateAccessToken(
		user.ID, officerID, user.Username, user.Role, s.jwtSecret, s.accessTokenMins)
	if err != nil {
		return nil, err
	}

	tokenID := uuid.New().String()
	refreshToken, err := jwt.GenerateRefreshToken(user.ID, tokenID, s.refreshSecret, s.refreshTokenDays)
	if err != nil {
		return nil, err
	}

	record := &models.RefreshToken{
		UserID:    user.ID,
		TokenHash: password.HashToken(refreshToken),
		ExpiresAt: jwt.GetExpiryTime(s.refreshTokenDays),
	}
	if err := s.refreshTokenRepo.Create(ctx, record); err != nil {
		return nil, err
	}

	return &TokenPair{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}
