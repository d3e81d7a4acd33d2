package handlers

import (
	"errors"
	"time"

	"red-reserve/internal/config"
	"red-reserve/internal/core/services"
	"red-reserve/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// subjectID reads the authenticated donor/hospital ID set by the auth
// middleware
func subjectID(c *fiber.Ctx) uint {
	id, _ := c.Locals("subjectID").(uint)
	return id
}

// RefreshRequest represents a refresh request body
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// setAuthCookies stores the token pair in HTTP-only cookies
func setAuthCookies(c *fiber.Ctx, cfg *config.Config, tokens *services.TokenPair) {
	c.Cookie(&fiber.Cookie{
		Name:     "access_token",
		Value:    tokens.AccessToken,
		Expires:  time.Now().Add(time.Duration(cfg.JWT.AccessTokenMins) * time.Minute),
		HTTPOnly: true,
		Secure:   cfg.Cookie.Secure,
		SameSite: cfg.Cookie.SameSite,
		Domain:   cfg.Cookie.Domain,
	})
	c.Cookie(&fiber.Cookie{
		Name:     "refresh_token",
		Value:    tokens.RefreshToken,
		Expires:  time.Now().Add(time.Duration(cfg.JWT.RefreshTokenDays) * 24 * time.Hour),
		HTTPOnly: true,
		Secure:   cfg.Cookie.Secure,
		SameSite: cfg.Cookie.SameSite,
		Domain:   cfg.Cookie.Domain,
	})
}

// clearAuthCookies removes the auth cookies
func clearAuthCookies(c *fiber.Ctx, cfg *config.Config) {
	for _, name := range []string{"access_token", "refresh_token"} {
		c.Cookie(&fiber.Cookie{
			Name:     name,
			Value:    "",
			Expires:  time.Now().Add(-time.Hour),
			HTTPOnly: true,
			Secure:   cfg.Cookie.Secure,
			SameSite: cfg.Cookie.SameSite,
			Domain:   cfg.Cookie.Domain,
		})
	}
}

// refreshToken pulls the refresh token from cookie or body
func refreshTokenFrom(c *fiber.Ctx) string {
	if token := c.Cookies("refresh_token"); token != "" {
		return token
	}
	var req RefreshRequest
	if err := c.BodyParser(&req); err == nil {
		return req.RefreshToken
	}
	return ""
}

// refreshTokens rotates the presented refresh token
func refreshTokens(c *fiber.Ctx, authService *services.AuthService, cfg *config.Config) error {
	token := refreshTokenFrom(c)
	if token == "" {
		return response.BadRequest(c, "Refresh token is required")
	}

	tokens, err := authService.RefreshToken(c.Context(), token)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrTokenExpired):
			return response.Unauthorized(c, "Refresh token expired")
		case errors.Is(err, services.ErrTokenRevoked):
			return response.Unauthorized(c, "Refresh token revoked")
		case errors.Is(err, services.ErrInvalidToken):
			return response.Unauthorized(c, "Invalid refresh token")
		default:
			return response.InternalServerError(c, "Failed to refresh token")
		}
	}

	setAuthCookies(c, cfg, tokens)
	return response.Success(c, "Token refreshed", fiber.Map{
		"access_token":  tokens.AccessToken,
		"refresh_token": tokens.RefreshToken,
	})
}

// logout revokes the presented refresh token and clears cookies
func logout(c *fiber.Ctx, authService *services.AuthService, cfg *config.Config) error {
	if token := refreshTokenFrom(c); token != "" {
		if err := authService.Logout(c.Context(), token); err != nil {
			return response.InternalServerError(c, "Failed to logout")
		}
	}
	clearAuthCookies(c, cfg)
	return response.Success(c, "Logged out", nil)
}
