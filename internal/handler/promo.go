package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/bookit/internal/repository"
	"github.com/iliyamo/bookit/internal/service"
)

// PromoHandler validates promo codes for the checkout page.
type PromoHandler struct {
	Promos *repository.PromoRepo
}

type validatePromoRequest struct {
	Code string `json:"code"`
	// Subtotal is optional; when positive the response includes the
	// discount amount it would receive.
	Subtotal float64 `json:"subtotal"`
}

// Validate handles POST /api/promo/validate. Unknown and inactive codes are
// reported with valid=false and status 200.
func (h *PromoHandler) Validate(c echo.Context) error {
	var body validatePromoRequest
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"valid": false, "error": "Invalid request body"})
	}
	code := repository.NormalizePromoCode(body.Code)
	if code == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"valid": false, "error": "Promo code is required"})
	}

	p, err := h.Promos.GetActive(c.Request().Context(), code)
	if errors.Is(err, repository.ErrNotFound) {
		return c.JSON(http.StatusOK, echo.Map{"valid": false, "message": "Invalid or expired promo code"})
	}
	if err != nil {
		c.Logger().Errorf("validate promo %s: %v", code, err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"valid": false, "error": "Failed to validate promo code"})
	}

	resp := echo.Map{
		"valid":    true,
		"code":     p.Code,
		"type":     p.Type,
		"discount": p.Value,
		"message":  "Promo code applied successfully",
	}
	if body.Subtotal > 0 {
		// taxes do not change the discount, only the subtotal does
		resp["discountAmount"] = service.QuotePrice(body.Subtotal, 1, p).Discount
	}
	return c.JSON(http.StatusOK, resp)
}
