package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"firebase.google.com/go/v4/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	authdomain "leadbook-backend/internal/auth/domain"
	authdto "leadbook-backend/internal/auth/dto"
	"leadbook-backend/internal/auth/repository"
	"leadbook-backend/pkg/config"
)

type memUsers struct {
	byID   map[string]*authdomain.User
	tokens map[string]*authdomain.RefreshToken
	seq    int
}

func newMemUsers() *memUsers {
	return &memUsers{byID: map[string]*authdomain.User{}, tokens: map[string]*authdomain.RefreshToken{}}
}

func (m *memUsers) Create(user *authdomain.User) error {
	m.seq++
	user.ID = "user-" + string(rune('0'+m.seq))
	m.byID[user.ID] = user
	return nil
}

func (m *memUsers) FindByEmail(email string) (*authdomain.User, error) {
	for _, u := range m.byID {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, nil
}

func (m *memUsers) FindByID(id string) (*authdomain.User, error) { return m.byID[id], nil }

func (m *memUsers) Update(user *authdomain.User) error {
	m.byID[user.ID] = user
	return nil
}

func (m *memUsers) SaveRefreshToken(token *authdomain.RefreshToken) error {
	m.tokens[token.Token] = token
	return nil
}

func (m *memUsers) FindRefreshToken(token string) (*authdomain.RefreshToken, error) {
	return m.tokens[token], nil
}

func (m *memUsers) DeleteRefreshToken(token string) error {
	delete(m.tokens, token)
	return nil
}

type memDevices struct {
	owners map[string]string
}

func (m *memDevices) SaveToken(userID, token, deviceInfo string) error {
	m.owners[token] = userID
	return nil
}

func (m *memDevices) GetAllTokens() ([]authdomain.FCMToken, error) { return nil, nil }

func (m *memDevices) DeleteToken(token string) error {
	delete(m.owners, token)
	return nil
}

func (m *memDevices) DeleteUserToken(userID, token string) error {
	if m.owners[token] == userID {
		delete(m.owners, token)
	}
	return nil
}

type fakeVerifier struct {
	claims map[string]interface{}
	err    error
}

func (f fakeVerifier) VerifyIDToken(ctx context.Context, idToken string) (*auth.Token, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &auth.Token{UID: "fb-uid", Claims: f.claims}, nil
}

func testConfig() *config.Config {
	return &config.Config{
		JWTSecret:        "test-secret",
		JWTAccessExpiry:  15 * time.Minute,
		JWTRefreshExpiry: time.Hour,
	}
}

func newTestUsecase(verifier TokenVerifier) (AuthUsecase, *memUsers, *memDevices) {
	users := newMemUsers()
	devices := &memDevices{owners: map[string]string{}}
	return NewAuthUsecase(users, devices, verifier, testConfig()), users, devices
}

func TestEnsureAdminAndLogin(t *testing.T) {
	uc, users, _ := newTestUsecase(nil)

	require.NoError(t, uc.EnsureAdmin("owner@example.com", "hunter22"))
	require.NoError(t, uc.EnsureAdmin("owner@example.com", "ignored"))
	assert.Len(t, users.byID, 1)

	resp, err := uc.Login(&authdto.LoginRequest{Email: "owner@example.com", Password: "hunter22"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.Equal(t, "owner", resp.User.Name)
	assert.Contains(t, users.tokens, resp.RefreshToken)

	user, err := uc.ValidateToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, user.ID)
}

func TestEnsureAdminSkipsWhenUnset(t *testing.T) {
	uc, users, _ := newTestUsecase(nil)
	require.NoError(t, uc.EnsureAdmin("", ""))
	assert.Empty(t, users.byID)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	uc, _, _ := newTestUsecase(nil)
	require.NoError(t, uc.EnsureAdmin("owner@example.com", "hunter22"))

	_, err := uc.Login(&authdto.LoginRequest{Email: "owner@example.com", Password: "wrong-password"})
	assert.ErrorIs(t, err, authdomain.ErrInvalidCredentials)

	_, err = uc.Login(&authdto.LoginRequest{Email: "nobody@example.com", Password: "hunter22"})
	assert.ErrorIs(t, err, authdomain.ErrInvalidCredentials)
}

func TestRefreshTokenRotates(t *testing.T) {
	uc, users, _ := newTestUsecase(nil)
	require.NoError(t, uc.EnsureAdmin("owner@example.com", "hunter22"))
	first, err := uc.Login(&authdto.LoginRequest{Email: "owner@example.com", Password: "hunter22"})
	require.NoError(t, err)

	second, err := uc.RefreshToken(first.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, first.RefreshToken, second.RefreshToken)
	assert.NotContains(t, users.tokens, first.RefreshToken)

	_, err = uc.RefreshToken(first.RefreshToken)
	assert.ErrorIs(t, err, authdomain.ErrInvalidToken)

	require.NoError(t, uc.Logout(second.RefreshToken))
	_, err = uc.RefreshToken(second.RefreshToken)
	assert.ErrorIs(t, err, authdomain.ErrInvalidToken)
}

func TestValidateTokenRejectsGarbageAndForeignSecret(t *testing.T) {
	uc, _, _ := newTestUsecase(nil)
	_, err := uc.ValidateToken("not-a-jwt")
	assert.ErrorIs(t, err, authdomain.ErrInvalidToken)

	other := NewAuthUsecase(newMemUsers(), nil, nil, &config.Config{JWTSecret: "other", JWTAccessExpiry: time.Minute, JWTRefreshExpiry: time.Minute})
	require.NoError(t, other.EnsureAdmin("owner@example.com", "hunter22"))
	resp, err := other.Login(&authdto.LoginRequest{Email: "owner@example.com", Password: "hunter22"})
	require.NoError(t, err)

	_, err = uc.ValidateToken(resp.AccessToken)
	assert.ErrorIs(t, err, authdomain.ErrInvalidToken)
}

func TestFirebaseSignIn(t *testing.T) {
	ctx := context.Background()

	uc, _, _ := newTestUsecase(nil)
	_, err := uc.FirebaseSignIn(ctx, "id-token")
	assert.ErrorIs(t, err, ErrFirebaseDisabled)

	uc, users, _ := newTestUsecase(fakeVerifier{claims: map[string]interface{}{
		"email": "sales@example.com", "email_verified": true, "name": "Sales", "picture": "https://img/1",
	}})
	resp, err := uc.FirebaseSignIn(ctx, "id-token")
	require.NoError(t, err)
	assert.Equal(t, authdomain.ProviderFirebase, resp.User.Provider)
	assert.Equal(t, "Sales", resp.User.Name)

	// second sign-in reuses the account
	_, err = uc.FirebaseSignIn(ctx, "id-token")
	require.NoError(t, err)
	assert.Len(t, users.byID, 1)

	// firebase accounts cannot use the password form
	_, err = uc.Login(&authdto.LoginRequest{Email: "sales@example.com", Password: "whatever"})
	assert.ErrorIs(t, err, authdomain.ErrWrongProvider)
}

func TestFirebaseSignInRejects(t *testing.T) {
	ctx := context.Background()

	uc, _, _ := newTestUsecase(fakeVerifier{err: errors.New("expired")})
	_, err := uc.FirebaseSignIn(ctx, "id-token")
	assert.ErrorIs(t, err, authdomain.ErrInvalidToken)

	uc, _, _ = newTestUsecase(fakeVerifier{claims: map[string]interface{}{"email": "x@example.com", "email_verified": false}})
	_, err = uc.FirebaseSignIn(ctx, "id-token")
	assert.ErrorIs(t, err, authdomain.ErrEmailNotVerified)

	uc, _, _ = newTestUsecase(fakeVerifier{claims: map[string]interface{}{}})
	_, err = uc.FirebaseSignIn(ctx, "id-token")
	assert.ErrorIs(t, err, authdomain.ErrInvalidToken)
}

func TestFCMTokens(t *testing.T) {
	uc, _, devices := newTestUsecase(nil)

	require.NoError(t, uc.RegisterFCMToken("u1", &authdto.RegisterFCMTokenRequest{Token: "tok-a"}))
	require.NoError(t, uc.UnregisterFCMToken("u2", "tok-a"))
	assert.Equal(t, "u1", devices.owners["tok-a"], "only the owner can unregister")

	require.NoError(t, uc.UnregisterFCMToken("u1", "tok-a"))
	assert.Empty(t, devices.owners)
}

func TestPasswordHash(t *testing.T) {
	hash, err := repository.HashPassword("hunter22")
	require.NoError(t, err)
	assert.True(t, repository.CheckPasswordHash("hunter22", hash))
	assert.False(t, repository.CheckPasswordHash("hunter23", hash))
}
