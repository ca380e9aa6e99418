package handler

import (
    "net/http" // HTTP status codes and primitives
    "strings"  // string manipulation utilities
    "time"     // token expiry in responses

    "github.com/labstack/echo/v4" // Echo framework for HTTP routing

    "github.com/iliyamo/exam-seat-allocation/internal/config"     // app configuration
    "github.com/iliyamo/exam-seat-allocation/internal/middleware" // admin role name
    "github.com/iliyamo/exam-seat-allocation/internal/utils"      // hashing and token issuing
)

// AuthHandler issues admin access tokens.  There is a single admin account
// whose name and bcrypt hash come from configuration.
type AuthHandler struct {
	Cfg config.Config
}

func NewAuthHandler(cfg config.Config) *AuthHandler {
	return &AuthHandler{Cfg: cfg}
}

// ----- DTOs -----

type loginReq struct {
	Username string `json:"username" validate:"required,max=64"`
	Password string `json:"password" validate:"required,max=128"`
}

type tokenPart struct {
	Token   string    `json:"token"`
	Expires time.Time `json:"expires"`
}

type authResp struct {
	User   string    `json:"user"`
	Role   string    `json:"role"`
	Access tokenPart `json:"access"`
}

// Login verifies the admin credentials and returns a short-lived access token.
func (h *AuthHandler) Login(c echo.Context) error {
	if h.Cfg.JWTSecret == "" || h.Cfg.AdminPasswordHash == "" {
		return c.JSON(http.StatusServiceUnavailable, messageResp{Message: "admin login is not configured"})
	}
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, messageResp{Message: "invalid request body"})
	}
	req.Username = strings.TrimSpace(req.Username)
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, messageResp{Message: "username/password required"})
	}
	if !utils.VerifyAdmin(req.Username, h.Cfg.AdminUser, req.Password, h.Cfg.AdminPasswordHash) {
		return c.JSON(http.StatusUnauthorized, messageResp{Message: "invalid credentials"})
	}

	access, err := utils.NewAccessToken(h.Cfg.JWTSecret, req.Username, middleware.RoleAdmin, h.Cfg.AccessTTLMin)
	if err != nil {
		c.Logger().Errorf("issue admin token: %v", err)
		return c.JSON(http.StatusInternalServerError, messageResp{Message: "issue access failed"})
	}
	return c.JSON(http.StatusOK, authResp{
		User:   req.Username,
		Role:   middleware.RoleAdmin,
		Access: tokenPart{Token: access.Token, Expires: access.Exp},
	})
}

// Me: simple protected endpoint.
func (h *AuthHandler) Me(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{
		"user_id": c.Get("user_id"),
		"role":    c.Get("role"),
	})
}
