package handlers

import (
	"errors"
	"net/http"
	"strings"

	"laundrybook/services/session"

	"github.com/gin-gonic/gin"
)

// AuthHandler exposes the phone/OTP authentication flow.
type AuthHandler struct {
	Service session.SessionService
}

func NewAuthHandler(svc session.SessionService) *AuthHandler {
	return &AuthHandler{Service: svc}
}

// SendCodeHandler starts a verification flow for a phone number.
func (h *AuthHandler) SendCodeHandler(c *gin.Context) {
	var input struct {
		Phone string `json:"phone" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "kind": "validation-error"})
		return
	}

	challenge, err := h.Service.SendCode(c.Request.Context(), input.Phone)
	if err != nil {
		status, kind := authErrorStatus(err)
		c.JSON(status, gin.H{"error": err.Error(), "kind": kind})
		return
	}

	c.JSON(http.StatusOK, gin.H{"challenge": challenge})
}

// ResendCodeHandler re-issues the code for a pending flow.
func (h *AuthHandler) ResendCodeHandler(c *gin.Context) {
	var input struct {
		Challenge string `json:"challenge" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "kind": "validation-error"})
		return
	}

	if err := h.Service.ResendCode(c.Request.Context(), input.Challenge); err != nil {
		status, kind := authErrorStatus(err)
		c.JSON(status, gin.H{"error": err.Error(), "kind": kind})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "code resent"})
}

// ChangeNumberHandler abandons a pending flow.
func (h *AuthHandler) ChangeNumberHandler(c *gin.Context) {
	var input struct {
		Challenge string `json:"challenge" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "kind": "validation-error"})
		return
	}

	if err := h.Service.ChangeNumber(c.Request.Context(), input.Challenge); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error(), "kind": "transport-error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "flow abandoned"})
}

// VerifyCodeHandler completes a flow and returns the session identity.
func (h *AuthHandler) VerifyCodeHandler(c *gin.Context) {
	var input struct {
		Challenge string `json:"challenge" binding:"required"`
		Code      string `json:"code" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "kind": "validation-error"})
		return
	}

	identity, err := h.Service.VerifyCode(c.Request.Context(), input.Challenge, input.Code)
	if err != nil {
		status, kind := authErrorStatus(err)
		c.JSON(status, gin.H{"error": err.Error(), "kind": kind})
		return
	}

	c.JSON(http.StatusOK, identity)
}

// LogoutHandler revokes the caller's session token.
func (h *AuthHandler) LogoutHandler(c *gin.Context) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Missing or invalid Authorization header"})
		return
	}
	token := strings.TrimPrefix(authHeader, "Bearer ")

	if err := h.Service.Logout(c.Request.Context(), token); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error(), "kind": "transport-error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "logged out"})
}

// authErrorStatus maps the session error taxonomy onto HTTP responses.
func authErrorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, session.ErrInvalidPhone), errors.Is(err, session.ErrMalformedCode):
		return http.StatusBadRequest, "validation-error"
	case errors.Is(err, session.ErrInvalidCode):
		return http.StatusUnauthorized, "invalid-code"
	case errors.Is(err, session.ErrCodeExpired):
		return http.StatusUnauthorized, "code-expired"
	case errors.Is(err, session.ErrProfileMissing):
		return http.StatusForbidden, "profile-missing"
	case errors.Is(err, session.ErrRateLimited):
		return http.StatusTooManyRequests, "rate-limited"
	default:
		return http.StatusBadGateway, "transport-error"
	}
}
