package middleware

import (
	"strings"

	"zawawiya-store/internal/apperror"
	"zawawiya-store/internal/model"
	"zawawiya-store/internal/token"

	"github.com/labstack/echo/v4"
)

const (
	userIDKey = "user_id"
	roleKey   = "role"
)

// Auth accepts "Authorization: Bearer <jwt>" and stores the caller on the
// echo context.
func Auth(issuer *token.Issuer) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get(echo.HeaderAuthorization)
			raw, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || strings.TrimSpace(raw) == "" {
				return apperror.Unauthorized("missing bearer token")
			}

			claims, err := issuer.Parse(strings.TrimSpace(raw))
			if err != nil {
				return apperror.Unauthorized("invalid or expired token")
			}

			c.Set(userIDKey, claims.UserID)
			c.Set(roleKey, claims.Role)
			return next(c)
		}
	}
}

// AdminOnly must run after Auth.
func AdminOnly() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, _ := c.Get(roleKey).(model.Role)
			if role != model.RoleAdmin {
				return apperror.Forbidden("admin access required")
			}
			return next(c)
		}
	}
}

func UserID(c echo.Context) uint {
	id, _ := c.Get(userIDKey).(uint)
	return id
}
