package middleware

import (
    "crypto/subtle"
    "net/http"

    "github.com/labstack/echo/v4"
)

// AdminKeyHeader carries the static admin API key.
const AdminKeyHeader = "X-Admin-Key"

// AdminAuth guards the administrative seat endpoints.  A request passes when
// it carries X-Admin-Key equal to apiKey, or a Bearer token signed with
// jwtSecret whose role claim is ADMIN.  With neither credential configured
// the endpoints answer 503 rather than staying open.
func AdminAuth(apiKey, jwtSecret string) echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            if apiKey == "" && jwtSecret == "" {
                return c.JSON(http.StatusServiceUnavailable, echo.Map{"message": "admin authentication is not configured"})
            }
            if key := c.Request().Header.Get(AdminKeyHeader); key != "" {
                if apiKey == "" || subtle.ConstantTimeCompare([]byte(key), []byte(apiKey)) != 1 {
                    return c.JSON(http.StatusUnauthorized, echo.Map{"message": "invalid admin key"})
                }
                c.Set("user_id", "api-key")
                c.Set("role", RoleAdmin)
                return next(c)
            }
            raw, ok := bearerToken(c)
            if !ok {
                return c.JSON(http.StatusUnauthorized, echo.Map{"message": "admin credentials required"})
            }
            claims, err := parseClaims(jwtSecret, raw)
            if err != nil {
                return c.JSON(http.StatusUnauthorized, echo.Map{"message": "invalid token"})
            }
            if role, _ := claims["role"].(string); role != RoleAdmin {
                return c.JSON(http.StatusForbidden, echo.Map{"message": "forbidden"})
            }
            c.Set("user_id", claims["sub"])
            c.Set("role", RoleAdmin)
            return next(c)
        }
    }
}
