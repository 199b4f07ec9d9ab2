package service

import (
	"math"

	"github.com/iliyamo/bookit/internal/model"
)

// TaxRate is the taxes-and-fees share added on top of the subtotal at
// checkout.
const TaxRate = 0.18

// priceTolerance absorbs rounding differences between the checkout page
// and the server.
const priceTolerance = 0.01

// PriceQuote breaks down what a booking costs.
type PriceQuote struct {
	Subtotal float64
	Taxes    float64
	Discount float64
	Total    float64
}

// QuotePrice computes the price of guests seats at unitPrice with an
// optional promo code. All amounts are rounded to two decimals.
func QuotePrice(unitPrice float64, guests int, promo *model.PromoCode) PriceQuote {
	q := PriceQuote{Subtotal: round2(unitPrice * float64(guests))}
	q.Taxes = round2(q.Subtotal * TaxRate)
	if promo != nil {
		q.Discount = round2(promo.DiscountOn(q.Subtotal))
	}
	q.Total = round2(q.Subtotal + q.Taxes - q.Discount)
	if q.Total < 0 {
		q.Total = 0
	}
	return q
}

// Matches reports whether a client supplied total agrees with the quote.
func (q PriceQuote) Matches(total float64) bool {
	return math.Abs(round2(total)-q.Total) <= priceTolerance+1e-9
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
