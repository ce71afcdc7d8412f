package delivery

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	authdomain "leadbook-backend/internal/auth/domain"
	authdto "leadbook-backend/internal/auth/dto"
	"leadbook-backend/internal/auth/usecase"
	"leadbook-backend/pkg/httperr"
)

// AuthHandler handles sign-in, session and device registration requests
type AuthHandler struct {
	authUsecase usecase.AuthUsecase
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(authUsecase usecase.AuthUsecase) *AuthHandler {
	return &AuthHandler{authUsecase: authUsecase}
}

// Login signs in with email and password
// POST /api/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req authdto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid email or password"})
		return
	}

	resp, err := h.authUsecase.Login(&req)
	if err != nil {
		h.respondAuthError(c, err, "sign in")
		return
	}

	c.JSON(http.StatusOK, resp)
}

// FirebaseSignIn exchanges a Firebase ID token for a session
// POST /api/auth/firebase
func (h *AuthHandler) FirebaseSignIn(c *gin.Context) {
	var req authdto.FirebaseSignInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "id_token is required")
		return
	}

	resp, err := h.authUsecase.FirebaseSignIn(c.Request.Context(), req.IDToken)
	if err != nil {
		if errors.Is(err, usecase.ErrFirebaseDisabled) {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
			return
		}
		h.respondAuthError(c, err, "sign in")
		return
	}

	c.JSON(http.StatusOK, resp)
}

// RefreshToken issues a new token pair
// POST /api/auth/refresh
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	var req authdto.RefreshTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "refresh_token is required")
		return
	}

	resp, err := h.authUsecase.RefreshToken(req.RefreshToken)
	if err != nil {
		h.respondAuthError(c, err, "refresh session")
		return
	}

	c.JSON(http.StatusOK, resp)
}

// Logout revokes a refresh token
// POST /api/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	var req authdto.RefreshTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "refresh_token is required")
		return
	}

	if err := h.authUsecase.Logout(req.RefreshToken); err != nil {
		httperr.Respond(c, err, "sign out")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
}

// Me returns the signed-in user
// GET /api/auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	user, ok := c.Get("user")
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not signed in"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

// RegisterFCMToken registers a device for push notifications
// POST /api/fcm/register
func (h *AuthHandler) RegisterFCMToken(c *gin.Context) {
	var req authdto.RegisterFCMTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "token is required")
		return
	}

	if err := h.authUsecase.RegisterFCMToken(c.GetString("userID"), &req); err != nil {
		httperr.Respond(c, err, "register device")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Device registered"})
}

// UnregisterFCMToken removes a device
// DELETE /api/fcm/:token
func (h *AuthHandler) UnregisterFCMToken(c *gin.Context) {
	if err := h.authUsecase.UnregisterFCMToken(c.GetString("userID"), c.Param("token")); err != nil {
		httperr.Respond(c, err, "unregister device")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Device unregistered"})
}

func (h *AuthHandler) respondAuthError(c *gin.Context, err error, action string) {
	switch {
	case errors.Is(err, authdomain.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
	case errors.Is(err, authdomain.ErrInvalidToken),
		errors.Is(err, authdomain.ErrUserNotFound),
		errors.Is(err, authdomain.ErrWrongProvider),
		errors.Is(err, authdomain.ErrEmailNotVerified):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	default:
		httperr.Respond(c, err, action)
	}
}
