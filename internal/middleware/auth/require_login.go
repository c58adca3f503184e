package auth

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/motoexpress/pedidos_api/internal/tokens"
)

// RequireLogin guards routes that mutate the catalog. It expects a Bearer
// token issued by the login endpoint and puts the parsed claims on the
// echo context under "userID" and "userEmail".
func RequireLogin(secret []byte) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get(echo.HeaderAuthorization)
			raw, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || raw == "" {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
			}

			claims, err := tokens.AccessClaimsFromToken(raw, secret)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid or expired token"})
			}

			c.Set("userID", claims.Subject)
			c.Set("userEmail", claims.Email)
			return next(c)
		}
	}
}
