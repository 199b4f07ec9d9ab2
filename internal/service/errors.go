package service

import (
	"errors"
	"fmt"
)

// Business rejections. They are expected outcomes of a reservation, never
// faults, and are returned before anything is written.
var (
	// ErrSlotNotFound means the slot does not exist or belongs to another experience.
	ErrSlotNotFound = errors.New("slot not found")
	// ErrInvalidPromoCode means the promo code is unknown or inactive.
	ErrInvalidPromoCode = errors.New("invalid or expired promo code")
	// ErrInvalidRequest flags input the HTTP layer should have rejected.
	ErrInvalidRequest = errors.New("invalid reservation request")
)

// ErrTransactionFailed wraps every infrastructure fault: lock timeouts,
// deadlocks, lost connections, constraint violations. The transaction has
// been rolled back and the whole call may be retried.
var ErrTransactionFailed = errors.New("reservation transaction failed")

// InsufficientCapacityError reports that the slot has fewer seats left than
// requested. Remaining is the live count read under the row lock.
type InsufficientCapacityError struct {
	Requested int
	Remaining int
}

func (e *InsufficientCapacityError) Error() string {
	return fmt.Sprintf("not enough spots available: requested %d, only %d left", e.Requested, e.Remaining)
}

// PriceMismatchError reports that the submitted total disagrees with the
// price recomputed on the server.
type PriceMismatchError struct {
	Submitted float64
	Expected  float64
}

func (e *PriceMismatchError) Error() string {
	return fmt.Sprintf("price mismatch: submitted %.2f, expected %.2f", e.Submitted, e.Expected)
}

func fault(step string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrTransactionFailed, step, err)
}
