package model

import "time"

// Slot is one bookable time window of an experience. AvailableSpots starts
// at (or below) TotalSpots and only the reservation transaction lowers it.
//
// Fields:
//
//	Date           – calendar day, midnight UTC.
//	StartTime      – time of day as HH:MM:SS.
//	EndTime        – time of day as HH:MM:SS.
//	TotalSpots     – capacity fixed at creation.
//	AvailableSpots – seats left, 0 ≤ AvailableSpots ≤ TotalSpots.
//	Price          – price per guest for this slot.
type Slot struct {
	ID             string
	ExperienceID   string
	Date           time.Time
	StartTime      string
	EndTime        string
	TotalSpots     int
	AvailableSpots int
	Price          float64
	CreatedAt      time.Time
}

// HasRoomFor reports whether guests fit into the remaining capacity.
func (s *Slot) HasRoomFor(guests int) bool {
	return guests >= 1 && s.AvailableSpots >= guests
}
