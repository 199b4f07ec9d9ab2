package model

// Promo code discount types.
const (
	PromoPercentage = "PERCENTAGE"
	PromoFlat       = "FLAT"
)

// PromoCode is a discount rule. Value is a percentage for PERCENTAGE codes
// and an absolute amount for FLAT codes.
type PromoCode struct {
	Code   string
	Type   string
	Value  float64
	Active bool
}

// DiscountOn returns the discount the code grants on subtotal. The
// discount never exceeds the subtotal.
func (p *PromoCode) DiscountOn(subtotal float64) float64 {
	var d float64
	switch p.Type {
	case PromoPercentage:
		d = subtotal * p.Value / 100
	case PromoFlat:
		d = p.Value
	}
	if d < 0 {
		return 0
	}
	if d > subtotal {
		return subtotal
	}
	return d
}
