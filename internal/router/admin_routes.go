package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/bookit/internal/handler"
	"github.com/iliyamo/bookit/internal/middleware"
	"github.com/iliyamo/bookit/internal/utils"
)

// RegisterAdmin registers the operator endpoints. Login is rate limited;
// everything else requires an ADMIN token.
func RegisterAdmin(e *echo.Echo, a *handler.AdminHandler, limit echo.MiddlewareFunc) {
	e.POST("/api/admin/login", a.Login, limit)

	g := e.Group("/api/admin",
		middleware.JWTAuth(a.JWTSecret),
		middleware.RequireRole(utils.RoleAdmin),
	)
	g.GET("/bookings", a.ListBookings)
}
