// Package router wires handlers and middleware onto an Echo instance.
package router

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/iliyamo/bookit/internal/handler"
	"github.com/iliyamo/bookit/internal/middleware"
)

// NewEcho returns an Echo instance with the middleware every route shares:
// panic recovery, request IDs, CORS for the SPA origin and access logs.
func NewEcho(frontendURL string) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = middleware.NewRequestValidator()

	e.Use(echomw.Recover())
	e.Use(echomw.RequestIDWithConfig(echomw.RequestIDConfig{Generator: uuid.NewString}))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins:     []string{frontendURL},
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
		AllowCredentials: true,
	}))
	e.Use(echomw.LoggerWithConfig(echomw.LoggerConfig{
		Format: `{"time":"${time_rfc3339}","id":"${id}","method":"${method}","uri":"${uri}",` +
			`"status":${status},"latency":"${latency_human}","remote_ip":"${remote_ip}"}` + "\n",
	}))
	e.Use(echomw.BodyLimit("64K"))

	e.RouteNotFound("/*", func(c echo.Context) error {
		return c.JSON(http.StatusNotFound, echo.Map{"success": false, "error": "Route not found"})
	})
	return e
}

// RegisterRoutes registers the health check.
func RegisterRoutes(e *echo.Echo, health echo.HandlerFunc) {
	e.GET("/health", health)
}

// RegisterPublic registers the catalog. Experience reads go through the
// response cache; slot lists carry live capacity and bypass it.
func RegisterPublic(e *echo.Echo, h *handler.CatalogHandler, cache echo.MiddlewareFunc) {
	g := e.Group("/api/experiences")
	g.GET("", h.ListExperiences, cache)
	g.GET("/:id", h.GetExperience, cache)
	g.GET("/:id/slots", h.ListSlots)
}
