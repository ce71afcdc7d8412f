package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	authdomain "leadbook-backend/internal/auth/domain"
	authdto "leadbook-backend/internal/auth/dto"
	"leadbook-backend/internal/auth/repository"
	"leadbook-backend/pkg/config"
	"leadbook-backend/pkg/logger"
)

// ErrFirebaseDisabled is returned by FirebaseSignIn when no verifier is configured
var ErrFirebaseDisabled = errors.New("firebase sign-in is not configured")

// authUsecase implements AuthUsecase interface
type authUsecase struct {
	userRepo     repository.UserRepository
	fcmTokenRepo repository.FCMTokenRepository
	verifier     TokenVerifier
	config       *config.Config
	log          *logrus.Entry
}

// NewAuthUsecase creates a new instance of authUsecase. verifier may be nil.
func NewAuthUsecase(userRepo repository.UserRepository, fcmTokenRepo repository.FCMTokenRepository, verifier TokenVerifier, cfg *config.Config) AuthUsecase {
	return &authUsecase{
		userRepo:     userRepo,
		fcmTokenRepo: fcmTokenRepo,
		verifier:     verifier,
		config:       cfg,
		log:          logger.For("auth"),
	}
}

func (u *authUsecase) Login(req *authdto.LoginRequest) (*authdto.TokenResponse, error) {
	user, err := u.userRepo.FindByEmail(req.Email)
	if err != nil {
		return nil, err
	}

	if user == nil {
		return nil, authdomain.ErrInvalidCredentials
	}

	if user.Provider != authdomain.ProviderEmail {
		return nil, authdomain.ErrWrongProvider
	}

	if !repository.CheckPasswordHash(req.Password, user.Password) {
		return nil, authdomain.ErrInvalidCredentials
	}

	return u.generateTokens(user)
}

func (u *authUsecase) FirebaseSignIn(ctx context.Context, idToken string) (*authdto.TokenResponse, error) {
	if u.verifier == nil {
		return nil, ErrFirebaseDisabled
	}

	token, err := u.verifier.VerifyIDToken(ctx, idToken)
	if err != nil {
		u.log.WithError(err).Warn("[AuthUsecase] Firebase ID token rejected")
		return nil, authdomain.ErrInvalidToken
	}

	email, _ := token.Claims["email"].(string)
	if email == "" {
		return nil, fmt.Errorf("%w: token has no email", authdomain.ErrInvalidToken)
	}
	if verified, _ := token.Claims["email_verified"].(bool); !verified {
		return nil, authdomain.ErrEmailNotVerified
	}
	name, _ := token.Claims["name"].(string)
	picture, _ := token.Claims["picture"].(string)

	// Find or create user
	user, err := u.userRepo.FindByEmail(email)
	if err != nil {
		return nil, err
	}

	if user == nil {
		user = &authdomain.User{
			Email:     email,
			Name:      name,
			AvatarURL: picture,
			Provider:  authdomain.ProviderFirebase,
		}
		if err := u.userRepo.Create(user); err != nil {
			return nil, err
		}
		u.log.Infof("[AuthUsecase] Created user %s from Firebase sign-in", user.ID)
	} else {
		if name != "" {
			user.Name = name
		}
		user.AvatarURL = picture
		if err := u.userRepo.Update(user); err != nil {
			return nil, err
		}
	}

	return u.generateTokens(user)
}

func (u *authUsecase) RefreshToken(refreshToken string) (*authdto.TokenResponse, error) {
	userID, err := u.parseUserID(refreshToken)
	if err != nil {
		return nil, err
	}

	stored, err := u.userRepo.FindRefreshToken(refreshToken)
	if err != nil {
		return nil, err
	}

	if stored == nil || stored.ExpiresAt.Before(time.Now()) {
		return nil, authdomain.ErrInvalidToken
	}

	user, err := u.userRepo.FindByID(userID)
	if err != nil {
		return nil, err
	}

	if user == nil {
		return nil, authdomain.ErrUserNotFound
	}

	// rotate: the presented token is single-use
	if err := u.userRepo.DeleteRefreshToken(refreshToken); err != nil {
		return nil, err
	}

	return u.generateTokens(user)
}

func (u *authUsecase) Logout(refreshToken string) error {
	return u.userRepo.DeleteRefreshToken(refreshToken)
}

func (u *authUsecase) ValidateToken(tokenString string) (*authdomain.User, error) {
	userID, err := u.parseUserID(tokenString)
	if err != nil {
		return nil, err
	}

	user, err := u.userRepo.FindByID(userID)
	if err != nil {
		return nil, err
	}

	if user == nil {
		return nil, authdomain.ErrUserNotFound
	}

	return user, nil
}

func (u *authUsecase) EnsureAdmin(email, password string) error {
	if email == "" || password == "" {
		u.log.Warn("[AuthUsecase] ADMIN_EMAIL/ADMIN_PASSWORD not set, skipping admin account")
		return nil
	}

	existing, err := u.userRepo.FindByEmail(email)
	if err != nil {
		return err
	}
	if existing != nil {
		return nil
	}

	hashedPassword, err := repository.HashPassword(password)
	if err != nil {
		return err
	}

	user := &authdomain.User{
		Email:    email,
		Password: hashedPassword,
		Name:     strings.SplitN(email, "@", 2)[0],
		Provider: authdomain.ProviderEmail,
	}
	if err := u.userRepo.Create(user); err != nil {
		return fmt.Errorf("create admin account: %w", err)
	}

	u.log.Infof("[AuthUsecase] Admin account %s created", user.Email)
	return nil
}

func (u *authUsecase) RegisterFCMToken(userID string, req *authdto.RegisterFCMTokenRequest) error {
	return u.fcmTokenRepo.SaveToken(userID, req.Token, req.DeviceInfo)
}

func (u *authUsecase) UnregisterFCMToken(userID, token string) error {
	return u.fcmTokenRepo.DeleteUserToken(userID, token)
}

func (u *authUsecase) generateTokens(user *authdomain.User) (*authdto.TokenResponse, error) {
	accessToken, err := u.signToken(jwt.MapClaims{
		"user_id": user.ID,
		"email":   user.Email,
	}, u.config.JWTAccessExpiry)
	if err != nil {
		return nil, err
	}

	refreshToken, err := u.signToken(jwt.MapClaims{
		"user_id":  user.ID,
		"token_id": uuid.New().String(),
	}, u.config.JWTRefreshExpiry)
	if err != nil {
		return nil, err
	}

	if err := u.userRepo.SaveRefreshToken(&authdomain.RefreshToken{
		Token:     refreshToken,
		UserID:    user.ID,
		ExpiresAt: time.Now().Add(u.config.JWTRefreshExpiry),
	}); err != nil {
		return nil, err
	}

	return &authdto.TokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User:         user,
	}, nil
}

func (u *authUsecase) signToken(claims jwt.MapClaims, ttl time.Duration) (string, error) {
	now := time.Now()
	claims["exp"] = now.Add(ttl).Unix()
	claims["iat"] = now.Unix()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(u.config.JWTSecret))
}

func (u *authUsecase) parseUserID(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		return []byte(u.config.JWTSecret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))

	if err != nil || !token.Valid {
		return "", authdomain.ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", authdomain.ErrInvalidToken
	}

	userID, ok := claims["user_id"].(string)
	if !ok || userID == "" {
		return "", authdomain.ErrInvalidToken
	}
	return userID, nil
}
