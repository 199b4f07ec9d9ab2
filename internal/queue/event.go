// Package queue defines the booking events exchanged over RabbitMQ along
// with the publisher used by the API and the background consumer.
package queue

// BookingConfirmedQueue is the durable queue booking events are routed to.
const BookingConfirmedQueue = "booking.confirmed"

// BookingConfirmedEvent is published after a reservation commits. It holds
// enough for downstream consumers to log or notify without reading the
// primary database.
type BookingConfirmedEvent struct {
	EventID      string  `json:"event_id"`
	BookingID    string  `json:"booking_id"`
	ExperienceID string  `json:"experience_id"`
	SlotID       string  `json:"slot_id"`
	SlotDate     string  `json:"slot_date"`
	StartTime    string  `json:"start_time"`
	EndTime      string  `json:"end_time"`
	Guests       int     `json:"guests"`
	CustomerName string  `json:"customer_name"`
	Email        string  `json:"email"`
	PromoCode    string  `json:"promo_code,omitempty"`
	TotalPrice   float64 `json:"total_price"`
	ConfirmedAt  string  `json:"confirmed_at"`
}
