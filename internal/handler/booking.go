package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"

	"github.com/iliyamo/bookit/internal/repository"
	"github.com/iliyamo/bookit/internal/service"
)

// Reserver runs the reservation transaction. *service.ReservationService
// implements it.
type Reserver interface {
	Reserve(ctx context.Context, req service.ReserveRequest) (string, error)
}

// BookingHandler serves booking creation and lookup.
type BookingHandler struct {
	Reservations Reserver
	Bookings     *repository.BookingRepo
}

// NewBookingHandler constructs a BookingHandler.
func NewBookingHandler(r Reserver, bookings *repository.BookingRepo) *BookingHandler {
	if r == nil || bookings == nil {
		panic("nil dependency passed to NewBookingHandler")
	}
	return &BookingHandler{Reservations: r, Bookings: bookings}
}

// createBookingRequest is the checkout form as posted by the SPA.
type createBookingRequest struct {
	ExperienceID string   `json:"experienceId" validate:"required"`
	SlotID       string   `json:"slotId" validate:"required"`
	FirstName    string   `json:"firstName" validate:"required,max=100"`
	LastName     string   `json:"lastName" validate:"required,max=100"`
	Email        string   `json:"email" validate:"required,email,max=255"`
	Phone        string   `json:"phone" validate:"phone10"`
	Guests       int      `json:"guests" validate:"gte=1"`
	PromoCode    string   `json:"promoCode" validate:"max=32"`
	TotalPrice   *float64 `json:"totalPrice" validate:"required,gte=0"`
}

func (r *createBookingRequest) normalize() {
	r.ExperienceID = strings.TrimSpace(r.ExperienceID)
	r.SlotID = strings.TrimSpace(r.SlotID)
	r.FirstName = strings.TrimSpace(r.FirstName)
	r.LastName = strings.TrimSpace(r.LastName)
	r.Email = strings.TrimSpace(r.Email)
	r.Phone = strings.TrimSpace(r.Phone)
	r.PromoCode = strings.TrimSpace(r.PromoCode)
}

var fieldMessages = map[string]string{
	"ExperienceID": "Experience ID is required",
	"SlotID":       "Slot ID is required",
	"FirstName":    "First name is required",
	"LastName":     "Last name is required",
	"Email":        "Valid email is required",
	"Phone":        "Valid 10-digit phone number is required",
	"Guests":       "At least 1 guest required",
	"PromoCode":    "Promo code is too long",
	"TotalPrice":   "Valid total price is required",
}

// validationErrors renders validator errors as [{field, message}].
func validationErrors(err error) []echo.Map {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return []echo.Map{{"message": err.Error()}}
	}
	out := make([]echo.Map, 0, len(ve))
	for _, fe := range ve {
		msg, ok := fieldMessages[fe.StructField()]
		if !ok {
			msg = fmt.Sprintf("%s is invalid", fe.Field())
		}
		out = append(out, echo.Map{"field": fe.Field(), "message": msg})
	}
	return out
}

// Create handles POST /api/bookings.
func (h *BookingHandler) Create(c echo.Context) error {
	var body createBookingRequest
	if err := c.Bind(&body); err != nil {
		return fail(c, http.StatusBadRequest, "Invalid request body")
	}
	body.normalize()
	if err := c.Validate(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"success": false,
			"message": "Validation failed",
			"errors":  validationErrors(err),
		})
	}

	id, err := h.Reservations.Reserve(c.Request().Context(), service.ReserveRequest{
		ExperienceID: body.ExperienceID,
		SlotID:       body.SlotID,
		Guests:       body.Guests,
		FirstName:    body.FirstName,
		LastName:     body.LastName,
		Email:        body.Email,
		Phone:        body.Phone,
		PromoCode:    body.PromoCode,
		TotalPrice:   *body.TotalPrice,
	})
	if err != nil {
		return h.reserveError(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"success":   true,
		"bookingId": id,
		"message":   "Booking created successfully",
	})
}

func (h *BookingHandler) reserveError(c echo.Context, err error) error {
	var (
		capErr   *service.InsufficientCapacityError
		priceErr *service.PriceMismatchError
	)
	switch {
	case errors.Is(err, service.ErrSlotNotFound):
		return fail(c, http.StatusNotFound, "Slot not found")
	case errors.As(err, &capErr):
		return c.JSON(http.StatusBadRequest, echo.Map{
			"success":   false,
			"message":   fmt.Sprintf("Not enough spots available. Only %d spots left.", capErr.Remaining),
			"remaining": capErr.Remaining,
		})
	case errors.As(err, &priceErr):
		return c.JSON(http.StatusConflict, echo.Map{
			"success":       false,
			"message":       "Price has changed. Please review your booking.",
			"expectedTotal": priceErr.Expected,
		})
	case errors.Is(err, service.ErrInvalidPromoCode):
		return fail(c, http.StatusBadRequest, "Invalid or expired promo code")
	case errors.Is(err, service.ErrInvalidRequest):
		return fail(c, http.StatusBadRequest, "Invalid booking request")
	}
	c.Logger().Errorj(log.JSON{"event": "booking_failed", "error": err.Error()})
	return c.JSON(http.StatusInternalServerError, echo.Map{
		"success": false,
		"message": "Failed to create booking. Please try again.",
	})
}

// Get handles GET /api/bookings/:id.
func (h *BookingHandler) Get(c echo.Context) error {
	id := strings.ToUpper(strings.TrimSpace(c.Param("id")))
	d, err := h.Bookings.GetDetail(c.Request().Context(), id)
	if errors.Is(err, repository.ErrNotFound) {
		return fail(c, http.StatusNotFound, "Booking not found")
	}
	if err != nil {
		return serverError(c, "Failed to fetch booking", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "booking": toBookingResponse(*d)})
}
