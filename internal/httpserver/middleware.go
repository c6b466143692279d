package httpserver

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/supplysathi/marketplace/internal/tokens"
)

// AuthMiddleware validates bearer tokens and scopes routes by role.
type AuthMiddleware struct {
	JWTSecret []byte
}

func (m *AuthMiddleware) RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return m.requireRole(next, "")
}

func (m *AuthMiddleware) RequireVendor(next echo.HandlerFunc) echo.HandlerFunc {
	return m.requireRole(next, "vendor")
}

func (m *AuthMiddleware) RequireSupplier(next echo.HandlerFunc) echo.HandlerFunc {
	return m.requireRole(next, "supplier")
}

func (m *AuthMiddleware) requireRole(next echo.HandlerFunc, role string) echo.HandlerFunc {
	return func(c echo.Context) error {
		header := c.Request().Header.Get(echo.HeaderAuthorization)
		tokenStr := strings.TrimPrefix(header, "Bearer ")
		if tokenStr == "" || tokenStr == header {
			return echo.NewHTTPError(http.StatusUnauthorized, "missing access token")
		}

		claims, err := tokens.AccessClaimsFromToken(tokenStr, m.JWTSecret)
		if err != nil || claims == nil {
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid access token")
		}
		if role != "" && claims.Role != role {
			return echo.NewHTTPError(http.StatusForbidden, role+" access required")
		}

		c.Set("user_id", claims.Subject)
		c.Set("role", claims.Role)
		return next(c)
	}
}
