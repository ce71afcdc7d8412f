package usecase

import (
	"context"

	"firebase.google.com/go/v4/auth"

	authdomain "leadbook-backend/internal/auth/domain"
	authdto "leadbook-backend/internal/auth/dto"
)

// AuthUsecase defines the interface for the authentication gate
type AuthUsecase interface {
	Login(req *authdto.LoginRequest) (*authdto.TokenResponse, error)
	FirebaseSignIn(ctx context.Context, idToken string) (*authdto.TokenResponse, error)
	RefreshToken(refreshToken string) (*authdto.TokenResponse, error)
	Logout(refreshToken string) error
	ValidateToken(tokenString string) (*authdomain.User, error)

	// EnsureAdmin creates the single email/password account if it does not exist yet
	EnsureAdmin(email, password string) error

	RegisterFCMToken(userID string, req *authdto.RegisterFCMTokenRequest) error
	UnregisterFCMToken(userID, token string) error
}

// TokenVerifier checks Firebase ID tokens. *auth.Client satisfies it.
type TokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*auth.Token, error)
}
