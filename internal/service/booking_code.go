package service

import (
	"crypto/rand"
	"fmt"
)

const (
	bookingCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	bookingCodeLength   = 8
)

// NewBookingCode returns an 8 character code drawn uniformly from A-Z0-9.
// Uniqueness is enforced by the bookings primary key, not here.
func NewBookingCode() (string, error) {
	// bytes >= 252 are rejected so every symbol keeps the same probability
	const limit = 256 - 256%len(bookingCodeAlphabet)
	out := make([]byte, 0, bookingCodeLength)
	buf := make([]byte, bookingCodeLength*2)
	for len(out) < bookingCodeLength {
		if _, err := rand.Read(buf); err != nil {
			return "", fmt.Errorf("read random: %w", err)
		}
		for _, b := range buf {
			if int(b) >= limit {
				continue
			}
			out = append(out, bookingCodeAlphabet[int(b)%len(bookingCodeAlphabet)])
			if len(out) == bookingCodeLength {
				break
			}
		}
	}
	return string(out), nil
}
