// Package router wires HTTP routes to their handlers. Routes are
// grouped by who may call them: public, authenticated members, and
// admins. JWT and role middleware are applied per group.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/gym-membership-api/internal/handler"
	"github.com/iliyamo/gym-membership-api/internal/middleware"
)

// RegisterRoutes registers routes that require no authentication at
// all. Currently that is only the health check used by load balancers.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterPublic registers the unauthenticated browse endpoints.
// Prospective members can read the plan catalogue before signing up,
// so the listing sits outside the JWT group and behind the response
// cache when one is configured.
func RegisterPublic(e *echo.Echo, p *handler.PlanHandler, cache echo.MiddlewareFunc) {
	if cache != nil {
		e.GET("/v1/plans", p.List, cache)
		return
	}
	e.GET("/v1/plans", p.List)
}

// RegisterAuth registers registration, login and token lifecycle
// routes. /v1/auth/* endpoints create or exchange tokens and are
// unauthenticated; /v1/me requires a valid access token.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	g := e.Group("/v1/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	// Refresh rotates the refresh token: the presented token is
	// revoked and a new pair is issued.
	g.POST("/refresh", a.Refresh)
	// Logout accepts either a bearer token (revokes every session of
	// that user) or a refresh_token body (revokes that one session).
	g.POST("/logout", a.Logout)

	auth := e.Group("/v1")
	auth.Use(middleware.JWTAuth(jwtSecret))
	auth.GET("/me", a.Me)
}
