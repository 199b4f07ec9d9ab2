package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/bookit/internal/model"
)

// ExperienceResponse is the public JSON form of an experience.
type ExperienceResponse struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	Location     string    `json:"location"`
	Price        float64   `json:"price"`
	Duration     string    `json:"duration"`
	Category     string    `json:"category"`
	Rating       float64   `json:"rating"`
	Reviews      int       `json:"reviews"`
	MaxGroupSize int       `json:"max_group_size"`
	Images       []string  `json:"images"`
	Highlights   []string  `json:"highlights"`
	Included     []string  `json:"included"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// SlotResponse is the public JSON form of a slot. Date is YYYY-MM-DD.
type SlotResponse struct {
	ID             string    `json:"id"`
	ExperienceID   string    `json:"experience_id"`
	Date           string    `json:"date"`
	StartTime      string    `json:"start_time"`
	EndTime        string    `json:"end_time"`
	TotalSpots     int       `json:"total_spots"`
	AvailableSpots int       `json:"available_spots"`
	Price          float64   `json:"price"`
	CreatedAt      time.Time `json:"created_at"`
}

// BookingResponse is a booking with the experience and slot details shown
// on the confirmation page.
type BookingResponse struct {
	ID                 string    `json:"id"`
	ExperienceID       string    `json:"experience_id"`
	SlotID             string    `json:"slot_id"`
	FirstName          string    `json:"first_name"`
	LastName           string    `json:"last_name"`
	Email              string    `json:"email"`
	Phone              string    `json:"phone"`
	Guests             int       `json:"guests"`
	PromoCode          *string   `json:"promo_code"`
	TotalPrice         float64   `json:"total_price"`
	Status             string    `json:"status"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
	ExperienceTitle    string    `json:"experience_title"`
	ExperienceLocation string    `json:"experience_location"`
	ExperienceImages   []string  `json:"experience_images"`
	Date               string    `json:"date"`
	StartTime          string    `json:"start_time"`
	EndTime            string    `json:"end_time"`
}

func toExperienceResponse(e model.Experience) ExperienceResponse {
	return ExperienceResponse{
		ID: e.ID, Title: e.Title, Description: e.Description, Location: e.Location,
		Price: e.Price, Duration: e.Duration, Category: e.Category, Rating: e.Rating,
		Reviews: e.Reviews, MaxGroupSize: e.MaxGroupSize,
		Images: e.Images, Highlights: e.Highlights, Included: e.Included,
		CreatedAt: e.CreatedAt, UpdatedAt: e.UpdatedAt,
	}
}

func toSlotResponse(s model.Slot) SlotResponse {
	return SlotResponse{
		ID: s.ID, ExperienceID: s.ExperienceID, Date: s.Date.Format(time.DateOnly),
		StartTime: s.StartTime, EndTime: s.EndTime,
		TotalSpots: s.TotalSpots, AvailableSpots: s.AvailableSpots,
		Price: s.Price, CreatedAt: s.CreatedAt,
	}
}

func toBookingResponse(d model.BookingDetail) BookingResponse {
	return BookingResponse{
		ID: d.ID, ExperienceID: d.ExperienceID, SlotID: d.SlotID,
		FirstName: d.FirstName, LastName: d.LastName, Email: d.Email, Phone: d.Phone,
		Guests: d.Guests, PromoCode: d.PromoCode, TotalPrice: d.TotalPrice, Status: d.Status,
		CreatedAt: d.CreatedAt, UpdatedAt: d.UpdatedAt,
		ExperienceTitle: d.ExperienceTitle, ExperienceLocation: d.ExperienceLocation,
		ExperienceImages: d.ExperienceImages,
		Date:             d.SlotDate.Format(time.DateOnly),
		StartTime:        d.SlotStartTime,
		EndTime:          d.SlotEndTime,
	}
}

// fail writes the error envelope used by the booking and admin endpoints.
func fail(c echo.Context, status int, msg string) error {
	return c.JSON(status, echo.Map{"success": false, "message": msg})
}

// serverError logs err and answers 500 with a generic message.
func serverError(c echo.Context, msg string, err error) error {
	c.Logger().Errorf("%s: %v", msg, err)
	return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "message": msg})
}
