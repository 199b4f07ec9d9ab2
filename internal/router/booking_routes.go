package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/bookit/internal/handler"
)

// RegisterBookings registers the checkout endpoints. Writes are rate
// limited per client.
func RegisterBookings(e *echo.Echo, b *handler.BookingHandler, p *handler.PromoHandler, limit echo.MiddlewareFunc) {
	e.POST("/api/bookings", b.Create, limit)
	e.GET("/api/bookings/:id", b.Get)
	e.POST("/api/promo/validate", p.Validate, limit)
}
