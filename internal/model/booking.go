package model

import "time"

// BookingStatusConfirmed is the only status a booking is ever written with.
const BookingStatusConfirmed = "confirmed"

// Booking is a confirmed reservation of Guests seats in one slot. Rows are
// created inside the reservation transaction and never updated afterwards.
//
// Fields:
//
//	ID         – 8 character code from A-Z0-9.
//	PromoCode  – applied promo code, nil when none.
//	TotalPrice – final price including taxes and discount.
type Booking struct {
	ID           string
	ExperienceID string
	SlotID       string
	FirstName    string
	LastName     string
	Email        string
	Phone        string
	Guests       int
	PromoCode    *string
	TotalPrice   float64
	Status       string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// BookingDetail is a booking joined with the experience and slot it
// belongs to, as shown on the confirmation page.
type BookingDetail struct {
	Booking
	ExperienceTitle    string
	ExperienceLocation string
	ExperienceImages   []string
	SlotDate           time.Time
	SlotStartTime      string
	SlotEndTime        string
}
