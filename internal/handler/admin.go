package handler

import (
	"crypto/subtle"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"

	"github.com/iliyamo/bookit/internal/repository"
	"github.com/iliyamo/bookit/internal/utils"
)

// AdminHandler serves the operator endpoints: a login that issues a JWT and
// the booking list.
type AdminHandler struct {
	Bookings     *repository.BookingRepo
	Username     string
	PasswordHash string // bcrypt
	JWTSecret    string
	TokenTTL     time.Duration
}

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// Login handles POST /api/admin/login.
func (h *AdminHandler) Login(c echo.Context) error {
	var body loginRequest
	if err := c.Bind(&body); err != nil {
		return fail(c, http.StatusBadRequest, "Invalid request body")
	}
	if err := c.Validate(&body); err != nil {
		return fail(c, http.StatusBadRequest, "username and password are required")
	}

	userOK := subtle.ConstantTimeCompare([]byte(strings.TrimSpace(body.Username)), []byte(h.Username)) == 1
	// always run bcrypt so a wrong username costs the same as a wrong password
	passOK := utils.VerifyPassword(h.PasswordHash, body.Password)
	if !userOK || !passOK {
		c.Logger().Warnj(log.JSON{"event": "admin_login_failed", "ip": c.RealIP()})
		return fail(c, http.StatusUnauthorized, "Invalid credentials")
	}

	tok, err := utils.NewAccessToken(h.JWTSecret, h.Username, utils.RoleAdmin, h.TokenTTL)
	if err != nil {
		return serverError(c, "Failed to issue token", err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"success":     true,
		"accessToken": tok.Token,
		"expiresAt":   tok.Exp.Format(time.RFC3339),
	})
}

// ListBookings handles GET /api/admin/bookings?email=.
func (h *AdminHandler) ListBookings(c echo.Context) error {
	items, err := h.Bookings.List(c.Request().Context(), strings.TrimSpace(c.QueryParam("email")))
	if err != nil {
		return serverError(c, "Failed to fetch bookings", err)
	}
	out := make([]BookingResponse, 0, len(items))
	for _, d := range items {
		out = append(out, toBookingResponse(d))
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "bookings": out})
}
