package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/bookit/internal/repository"
)

// slotWindowDays is how far ahead the slot list reaches when no date is
// requested.
const slotWindowDays = 30

// CatalogHandler serves the read-only experience catalog.
type CatalogHandler struct {
	Experiences *repository.ExperienceRepo
	Slots       *repository.SlotRepo
	Now         func() time.Time
}

// NewCatalogHandler constructs a CatalogHandler.
func NewCatalogHandler(exp *repository.ExperienceRepo, slots *repository.SlotRepo) *CatalogHandler {
	if exp == nil || slots == nil {
		panic("nil repository passed to NewCatalogHandler")
	}
	return &CatalogHandler{Experiences: exp, Slots: slots, Now: time.Now}
}

// ListExperiences handles GET /api/experiences. Optional query parameters:
// category ("all" disables the filter), search, minPrice and maxPrice.
func (h *CatalogHandler) ListExperiences(c echo.Context) error {
	f := repository.ExperienceFilter{
		Category: strings.TrimSpace(c.QueryParam("category")),
		Search:   c.QueryParam("search"),
	}
	var err error
	if f.MinPrice, err = optionalFloat(c.QueryParam("minPrice")); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "minPrice must be a number"})
	}
	if f.MaxPrice, err = optionalFloat(c.QueryParam("maxPrice")); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "maxPrice must be a number"})
	}

	items, err := h.Experiences.List(c.Request().Context(), f)
	if err != nil {
		c.Logger().Errorf("list experiences: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to fetch experiences"})
	}
	out := make([]ExperienceResponse, 0, len(items))
	for _, e := range items {
		out = append(out, toExperienceResponse(e))
	}
	return c.JSON(http.StatusOK, out)
}

// GetExperience handles GET /api/experiences/:id.
func (h *CatalogHandler) GetExperience(c echo.Context) error {
	e, err := h.Experiences.GetByID(c.Request().Context(), c.Param("id"))
	if errors.Is(err, repository.ErrNotFound) {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Experience not found"})
	}
	if err != nil {
		c.Logger().Errorf("get experience %s: %v", c.Param("id"), err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to fetch experience"})
	}
	return c.JSON(http.StatusOK, toExperienceResponse(*e))
}

// ListSlots handles GET /api/experiences/:id/slots. With ?date=YYYY-MM-DD
// only that day is returned, otherwise today and the following 30 days.
// Capacity changes with every booking, so this endpoint is never cached.
func (h *CatalogHandler) ListSlots(c echo.Context) error {
	today := h.Now().UTC().Truncate(24 * time.Hour)
	from, to := today, today.AddDate(0, 0, slotWindowDays)
	if raw := strings.TrimSpace(c.QueryParam("date")); raw != "" {
		d, err := time.Parse(time.DateOnly, raw)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "date must be YYYY-MM-DD"})
		}
		from, to = d, d
	}

	slots, err := h.Slots.ListByExperience(c.Request().Context(), c.Param("id"), from, to)
	if err != nil {
		c.Logger().Errorf("list slots of %s: %v", c.Param("id"), err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to fetch slots"})
	}
	out := make([]SlotResponse, 0, len(slots))
	for _, s := range slots {
		out = append(out, toSlotResponse(s))
	}
	return c.JSON(http.StatusOK, out)
}

func optionalFloat(raw string) (*float64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, err
	}
	return &v, nil
}
