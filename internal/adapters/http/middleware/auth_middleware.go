package middleware

import (
	"strings"

	"red-reserve/internal/config"
	"red-reserve/internal/pkg/jwt"
	"red-reserve/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// AuthMiddleware creates authentication middleware. A missing token is
// 403 and an invalid or expired token is 401, matching the API's
// status-code contract.
func AuthMiddleware(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		accessToken := c.Cookies("access_token")

		if accessToken == "" {
			authHeader := c.Get("Authorization")
			if authHeader != "" && strings.HasPrefix(authHeader, "Bearer ") {
				accessToken = strings.TrimPrefix(authHeader, "Bearer ")
			}
		}

		if accessToken == "" {
			return response.Forbidden(c, "Token required")
		}

		claims, err := jwt.ValidateAccessToken(accessToken, cfg.JWT.Secret)
		if err != nil {
			if err == jwt.ErrTokenExpired {
				return response.Unauthorized(c, "Access token expired")
			}
			return response.Unauthorized(c, "Invalid access token")
		}

		c.Locals("subjectID", claims.SubjectID)
		c.Locals("email", claims.Email)
		c.Locals("role", claims.Role)
		c.Locals("hospitalName", claims.HospitalName)

		return c.Next()
	}
}

// RoleMiddleware creates role-based authorization middleware
func RoleMiddleware(allowedRoles ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		role, ok := c.Locals("role").(string)
		if !ok {
			return response.Unauthorized(c, "Unauthorized")
		}

		for _, allowedRole := range allowedRoles {
			if role == allowedRole {
				return c.Next()
			}
		}

		return response.Forbidden(c, "You don't have permission to access this resource")
	}
}

// DonorOnly middleware allows only donor tokens
func DonorOnly() fiber.Handler {
	return RoleMiddleware(jwt.RoleDonor)
}

// HospitalOnly middleware allows only hospital tokens
func HospitalOnly() fiber.Handler {
	return RoleMiddleware(jwt.RoleHospital)
}
