package handler

import (
	"time"

	"vending-machine-api/internal/adapter/http/dto"
	"vending-machine-api/internal/adapter/http/middleware"
	"vending-machine-api/internal/core/ports"
	"vending-machine-api/pkg/response"

	"github.com/gin-gonic/gin"
)

const tokenTypeBearer = "bearer"

// AuthHandler handles token endpoints.
type AuthHandler struct {
	authSvc ports.AuthService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authSvc ports.AuthService) *AuthHandler {
	return &AuthHandler{authSvc: authSvc}
}

// Token handles POST /token (OAuth2 password grant).
func (h *AuthHandler) Token(c *gin.Context) {
	var req dto.TokenRequest
	if err := c.ShouldBind(&req); err != nil {
		response.Error(c, bindError(err))
		return
	}
	dto.SanitizeStruct(&req)

	pair, err := h.authSvc.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Set(middleware.CtxUsername, req.Username)
	response.OK(c, dto.TokenResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		TokenType:    tokenTypeBearer,
		ExpiresIn:    secondsUntil(pair.AccessExpiresAt),
	})
}

// Refresh handles POST /token/refresh.
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req dto.RefreshRequest
	if err := c.ShouldBind(&req); err != nil {
		response.Error(c, bindError(err))
		return
	}

	token, expiresAt, err := h.authSvc.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.TokenResponse{
		AccessToken: token,
		TokenType:   tokenTypeBearer,
		ExpiresIn:   secondsUntil(expiresAt),
	})
}

func secondsUntil(t time.Time) int64 {
	d := time.Until(t).Round(time.Second)
	if d < 0 {
		return 0
	}
	return int64(d / time.Second)
}
