package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4" // import the Echo web framework to handle routing

	"github.com/iliyamo/exam-seat-allocation/internal/handler"    // import the handlers that implement business logic
	"github.com/iliyamo/exam-seat-allocation/internal/middleware" // import middleware for auth, caching and rate limiting
)

// RegisterRoutes registers routes that do not require authentication on the
// provided Echo instance.  Currently it exposes only a health check.
func RegisterRoutes(e *echo.Echo) {
	// Load balancers and monitoring poll this to verify the process is up.
	e.GET("/healthz", handler.Health)
}

// SeatGuards are the middleware placed in front of the seat endpoints.
// Lookup guards wrap the public search; Admin guards the mutating routes.
type SeatGuards struct {
	RateLimit echo.MiddlewareFunc
	Cache     echo.MiddlewareFunc
	Admin     echo.MiddlewareFunc
}

// RegisterSeats registers the seat allocation endpoints under /api/seats.
// Search runs behind the rate limiter first so cache hits still count
// against the caller's budget.  Nil guards are skipped.
func RegisterSeats(e *echo.Echo, h *handler.SeatHandler, guards SeatGuards) {
	g := e.Group("/api/seats")

	g.GET("/search", h.Search, compact(guards.RateLimit, guards.Cache)...)
	g.GET("/status", h.Status)

	admin := compact(guards.Admin)
	g.POST("/add-range", h.AddRange, admin...)
	g.POST("/clear", h.Clear, admin...)
}

// RegisterAdmin registers the admin login and the token introspection
// endpoint.  Login is public; /api/admin/me needs an ADMIN access token.
func RegisterAdmin(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	g := e.Group("/api/admin")
	g.POST("/login", a.Login)

	g.GET("/me", a.Me,
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(middleware.RoleAdmin),
	)
}

func compact(mws ...echo.MiddlewareFunc) []echo.MiddlewareFunc {
	out := make([]echo.MiddlewareFunc, 0, len(mws))
	for _, m := range mws {
		if m != nil {
			out = append(out, m)
		}
	}
	return out
}
