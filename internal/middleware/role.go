package middleware // middleware provides shared request processing for handlers

import (
    "net/http" // http package defines standard HTTP status codes

    "github.com/labstack/echo/v4" // echo provides middleware chaining and context
)

// RoleAdmin is the role claim carried by administrator tokens.
const RoleAdmin = "ADMIN"

// RequireRole returns a middleware function that enforces that the
// authenticated caller has one of the specified roles.  It assumes a
// previous middleware (JWTAuth or AdminAuth) stored the role in the context
// under the key "role".  Other callers are rejected with 403 Forbidden.
func RequireRole(roles ...string) echo.MiddlewareFunc {
    allowed := make(map[string]bool, len(roles))
    for _, r := range roles {
        allowed[r] = true
    }
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            role, ok := c.Get("role").(string)
            if !ok || !allowed[role] {
                return c.JSON(http.StatusForbidden, echo.Map{"message": "forbidden"})
            }
            return next(c)
        }
    }
}
