package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"susu-collect/internal/adapters/persistence/models"
	"susu-collect/internal/core/domain"
	"susu-collect/internal/pkg/password"
)

func newTestAuthService() (*AuthService, *mockUserRepo, *mockRefreshTokenRepo, *mockOfficerRepo) {
	users := newMockUserRepo()
	tokens := newMockRefreshTokenRepo()
	officers := newMockOfficerRepo()
	svc := NewAuthService(users, tokens, officers, "access-secret", "refresh-secret", 15, 7)
	return svc, users, tokens, officers
}

func seedUser(t *testing.T, users *mockUserRepo, username, pass, role string) *models.User {
	t.Helper()
	hashed, err := password.Hash(pass)
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}
	u := &models.User{
		Username: username,
		Email:    username + "@example.com",
		Password: hashed,
		Role:     role,
		IsActive: true,
	}
	if err := users.Create(context.Background(), u); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	return u
}

func TestRegisterRejectsDuplicates(t *testing.T) {
	svc, users, _, _ := newTestAuthService()
	seedUser(t, users, "kwame", "password123", string(domain.RoleOfficer))

	_, err := svc.Register(context.Background(), RegisterInput{
		Username: "kwame",
		Email:    "other@example.com",
		Password: "password123",
	})
	if !errors.Is(err, domain.ErrUserAlreadyExists) {
		t.Fatalf("Register() error = %v, want ErrUserAlreadyExists", err)
	}

	_, err = svc.Register(context.Background(), RegisterInput{
		Username: "ama",
		Email:    "kwame@example.com",
		Password: "password123",
	})
	if !errors.Is(err, domain.ErrUserAlreadyExists) {
		t.Fatalf("Register() error = %v, want ErrUserAlreadyExists", err)
	}
}

func TestRegisterRejectsWeakPassword(t *testing.T) {
	svc, _, _, _ := newTestAuthService()

	_, err := svc.Register(context.Background(), RegisterInput{
		Username: "ama",
		Email:    "ama@example.com",
		Password: "short",
	})
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("Register() error = %v, want ErrInvalidInput", err)
	}
}

func TestLoginIssuesTokenPair(t *testing.T) {
	svc, users, tokens, officers := newTestAuthService()
	user := seedUser(t, users, "kwame", "password123", string(domain.RoleOfficer))
	officers.Create(context.Background(), &models.CollectionOfficer{UserID: user.ID})

	result, err := svc.Login(context.Background(), LoginInput{Username: "kwame", Password: "password123"})
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if result.Tokens.AccessToken == "" || result.Tokens.RefreshToken == "" {
		t.Fatal("Login() returned empty tokens")
	}
	if result.OfficerID == 0 {
		t.Fatal("Login() OfficerID = 0, want the officer profile ID")
	}
	if got := tokens.activeCount(user.ID); got != 1 {
		t.Fatalf("active refresh tokens = %d, want 1", got)
	}
}

func TestLoginFailures(t *testing.T) {
	svc, users, _, _ := newTestAuthService()
	user := seedUser(t, users, "kwame", "password123", string(domain.RoleOfficer))

	tests := []struct {
		name    string
		input   LoginInput
		setup   func()
		wantErr error
	}{
		{
			name:    "unknown username",
			input:   LoginInput{Username: "nobody", Password: "password123"},
			wantErr: domain.ErrInvalidCredentials,
		},
		{
			name:    "wrong password",
			input:   LoginInput{Username: "kwame", Password: "wrongpassword"},
			wantErr: domain.ErrInvalidCredentials,
		},
		{
			name:    "deactivated account",
			input:   LoginInput{Username: "kwame", Password: "password123"},
			setup:   func() { user.IsActive = false },
			wantErr: domain.ErrForbidden,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.setup != nil {
				tt.setup()
			}
			_, err := svc.Login(context.Background(), tt.input)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Login() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestRefreshTokenRotation(t *testing.T) {
	svc, users, tokens, _ := newTestAuthService()
	user := seedUser(t, users, "kwame", "password123", string(domain.RoleOfficer))

	result, err := svc.Login(context.Background(), LoginInput{Username: "kwame", Password: "password123"})
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}

	pair, err := svc.RefreshToken(context.Background(), result.Tokens.RefreshToken)
	if err != nil {
		t.Fatalf("RefreshToken() error = %v", err)
	}
	if pair.RefreshToken == result.Tokens.RefreshToken {
		t.Fatal("RefreshToken() returned the same refresh token, want a rotated one")
	}
	if got := tokens.activeCount(user.ID); got != 1 {
		t.Fatalf("active refresh tokens after rotation = %d, want 1", got)
	}

	// The presented token is revoked on rotation and cannot be replayed.
	if _, err := svc.RefreshToken(context.Background(), result.Tokens.RefreshToken); !errors.Is(err, domain.ErrTokenInvalid) {
		t.Fatalf("RefreshToken() replay error = %v, want ErrTokenInvalid", err)
	}
}

func TestRefreshTokenRejectsGarbage(t *testing.T) {
	svc, _, _, _ := newTestAuthService()

	if _, err := svc.RefreshToken(context.Background(), "not-a-jwt"); !errors.Is(err, domain.ErrTokenInvalid) {
		t.Fatalf("RefreshToken() error = %v, want ErrTokenInvalid", err)
	}
}

func TestLogoutAllRevokesEverySession(t *testing.T) {
	svc, users, tokens, _ := newTestAuthService()
	user := seedUser(t, users, "kwame", "password123", string(domain.RoleOfficer))

	for i := 0; i < 3; i++ {
		if _, err := svc.Login(context.Background(), LoginInput{Username: "kwame", Password: "password123"}); err != nil {
			t.Fatalf("Login() error = %v", err)
		}
	}
	if got := tokens.activeCount(user.ID); got != 3 {
		t.Fatalf("active refresh tokens = %d, want 3", got)
	}

	if err := svc.LogoutAll(context.Background(), user.ID); err != nil {
		t.Fatalf("LogoutAll() error = %v", err)
	}
	if got := tokens.activeCount(user.ID); got != 0 {
		t.Fatalf("active refresh tokens after LogoutAll = %d, want 0", got)
	}
}

func TestRefreshTokenRejectsExpiredRecord(t *testing.T) {
	svc, users, tokens, _ := newTestAuthService()
	seedUser(t, users, "kwame", "password123", string(domain.RoleOfficer))

	result, err := svc.Login(context.Background(), LoginInput{Username: "kwame", Password: "password123"})
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}

	for _, stored := range tokens.tokens {
		stored.ExpiresAt = time.Now().Add(-time.Hour)
	}

	if _, err := svc.RefreshToken(context.Background(), result.Tokens.RefreshToken); !errors.Is(err, domain.ErrTokenInvalid) {
		t.Fatalf("RefreshToken() error = %v, want ErrTokenInvalid", err)
	}
}
