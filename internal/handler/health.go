package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// Pinger is satisfied by *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Health returns a liveness handler for load balancers and uptime checks.
// When db is non-nil the database is pinged as well and an unreachable
// store yields 503.
func Health(db Pinger) echo.HandlerFunc {
	return func(c echo.Context) error {
		body := echo.Map{
			"status":    "OK",
			"message":   "BookIt API is running",
			"timestamp": time.Now().UTC().Format(time.RFC3339Nano),
		}
		if db != nil {
			ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
			defer cancel()
			if err := db.PingContext(ctx); err != nil {
				c.Logger().Errorf("health: database ping failed: %v", err)
				body["status"] = "DEGRADED"
				body["database"] = "down"
				return c.JSON(http.StatusServiceUnavailable, body)
			}
			body["database"] = "up"
		}
		return c.JSON(http.StatusOK, body)
	}
}
