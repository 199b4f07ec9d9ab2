// Package service implements the seat reservation transaction and the
// pricing rules it enforces.
package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/labstack/gommon/log"

	"github.com/iliyamo/bookit/internal/database"
	"github.com/iliyamo/bookit/internal/model"
	"github.com/iliyamo/bookit/internal/queue"
	"github.com/iliyamo/bookit/internal/repository"
)

// BookingPublisher announces committed bookings. *queue.Publisher satisfies it.
type BookingPublisher interface {
	PublishBookingConfirmed(ctx context.Context, ev queue.BookingConfirmedEvent) error
}

// ReserveRequest carries everything the checkout page submits.
type ReserveRequest struct {
	ExperienceID string
	SlotID       string
	Guests       int
	FirstName    string
	LastName     string
	Email        string
	Phone        string
	PromoCode    string
	TotalPrice   float64
}

// ReservationConfig tunes Reserve.
type ReservationConfig struct {
	// VerifyPrice recomputes the total under the row lock and rejects
	// requests that disagree with it.
	VerifyPrice bool
	// IDAttempts bounds how often a colliding booking code is regenerated.
	IDAttempts int
}

// ReservationService runs the reservation transaction.
type ReservationService struct {
	db        *sql.DB
	slots     *repository.SlotRepo
	bookings  *repository.BookingRepo
	promos    *repository.PromoRepo
	publisher BookingPublisher
	logger    *log.Logger
	cfg       ReservationConfig

	newID func() (string, error)
	now   func() time.Time

	inflight sync.WaitGroup // background publishes
}

// NewReservationService wires the repositories sharing db. publisher may be
// nil, in which case no events are sent.
func NewReservationService(db *sql.DB, d database.Dialect, publisher BookingPublisher, logger *log.Logger, cfg ReservationConfig) *ReservationService {
	if cfg.IDAttempts < 1 {
		cfg.IDAttempts = 1
	}
	if logger == nil {
		logger = log.New("reservation")
	}
	return &ReservationService{
		db:        db,
		slots:     repository.NewSlotRepo(db, d),
		bookings:  repository.NewBookingRepo(db, d),
		promos:    repository.NewPromoRepo(db, d),
		publisher: publisher,
		logger:    logger,
		cfg:       cfg,
		newID:     NewBookingCode,
		now:       time.Now,
	}
}

// Reserve books req.Guests seats in req.SlotID and returns the booking code.
//
// The slot row is locked for the duration of the transaction, so concurrent
// reservations of the same slot run one after another while reservations of
// different slots proceed in parallel. Rejections (ErrSlotNotFound,
// *InsufficientCapacityError, *PriceMismatchError, ErrInvalidPromoCode)
// leave the database untouched. Any other failure rolls the transaction back
// and is returned wrapped in ErrTransactionFailed.
func (s *ReservationService) Reserve(ctx context.Context, req ReserveRequest) (string, error) {
	if req.Guests < 1 || req.SlotID == "" || req.ExperienceID == "" {
		return "", ErrInvalidRequest
	}
	var lastErr error
	for attempt := 1; attempt <= s.cfg.IDAttempts; attempt++ {
		b, slot, err := s.reserveOnce(ctx, req)
		if err == nil {
			s.afterCommit(ctx, b, slot)
			return b.ID, nil
		}
		if !errors.Is(err, repository.ErrDuplicateKey) {
			return "", err
		}
		s.logger.Warnf("reservation: booking code collision on attempt %d: %v", attempt, err)
		lastErr = err
	}
	return "", fault("generate unique booking id", lastErr)
}

// reserveOnce runs a single transaction. A booking code collision is
// returned unwrapped as repository.ErrDuplicateKey so Reserve can retry.
func (s *ReservationService) reserveOnce(ctx context.Context, req ReserveRequest) (*model.Booking, *model.Slot, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, nil, fault("begin", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	slot, err := s.slots.GetForUpdateTx(ctx, tx, req.SlotID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil, ErrSlotNotFound
	}
	if err != nil {
		if database.IsLockFailure(err) {
			return nil, nil, fault("lock slot (lock wait)", err)
		}
		return nil, nil, fault("lock slot", err)
	}
	if slot.ExperienceID != req.ExperienceID {
		return nil, nil, ErrSlotNotFound
	}
	if !slot.HasRoomFor(req.Guests) {
		return nil, nil, &InsufficientCapacityError{Requested: req.Guests, Remaining: slot.AvailableSpots}
	}

	var promoCode *string
	if code := repository.NormalizePromoCode(req.PromoCode); code != "" {
		promoCode = &code
	}
	if s.cfg.VerifyPrice {
		var promo *model.PromoCode
		if promoCode != nil {
			promo, err = s.promos.GetActiveTx(ctx, tx, *promoCode)
			if errors.Is(err, repository.ErrNotFound) {
				return nil, nil, ErrInvalidPromoCode
			}
			if err != nil {
				return nil, nil, fault("read promo code", err)
			}
		}
		quote := QuotePrice(slot.Price, req.Guests, promo)
		if !quote.Matches(req.TotalPrice) {
			return nil, nil, &PriceMismatchError{Submitted: req.TotalPrice, Expected: quote.Total}
		}
	}

	id, err := s.newID()
	if err != nil {
		return nil, nil, fault("generate booking id", err)
	}
	b := &model.Booking{
		ID:           id,
		ExperienceID: req.ExperienceID,
		SlotID:       req.SlotID,
		FirstName:    strings.TrimSpace(req.FirstName),
		LastName:     strings.TrimSpace(req.LastName),
		Email:        strings.TrimSpace(req.Email),
		Phone:        strings.TrimSpace(req.Phone),
		Guests:       req.Guests,
		PromoCode:    promoCode,
		TotalPrice:   round2(req.TotalPrice),
		Status:       model.BookingStatusConfirmed,
	}
	if err := s.bookings.CreateTx(ctx, tx, b); err != nil {
		if errors.Is(err, repository.ErrDuplicateKey) {
			return nil, nil, err
		}
		return nil, nil, fault("insert booking", err)
	}
	if err := s.slots.DecrementTx(ctx, tx, slot.ID, req.Guests); err != nil {
		return nil, nil, fault("decrement capacity", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, nil, fault("commit", err)
	}
	committed = true
	return b, slot, nil
}

// afterCommit logs the booking and publishes the confirmation event in the
// background. Neither step can affect the committed reservation.
func (s *ReservationService) afterCommit(ctx context.Context, b *model.Booking, slot *model.Slot) {
	s.logger.Infoj(log.JSON{
		"event":         "booking_confirmed",
		"booking_id":    b.ID,
		"experience_id": b.ExperienceID,
		"slot_id":       b.SlotID,
		"guests":        b.Guests,
		"remaining":     slot.AvailableSpots - b.Guests,
	})
	if s.publisher == nil {
		return
	}
	ev := queue.BookingConfirmedEvent{
		BookingID:    b.ID,
		ExperienceID: b.ExperienceID,
		SlotID:       b.SlotID,
		SlotDate:     slot.Date.Format(time.DateOnly),
		StartTime:    slot.StartTime,
		EndTime:      slot.EndTime,
		Guests:       b.Guests,
		CustomerName: strings.TrimSpace(b.FirstName + " " + b.LastName),
		Email:        b.Email,
		TotalPrice:   b.TotalPrice,
		ConfirmedAt:  s.now().UTC().Format(time.RFC3339),
	}
	if b.PromoCode != nil {
		ev.PromoCode = *b.PromoCode
	}
	s.inflight.Add(1)
	go func(ctx context.Context) {
		defer s.inflight.Done()
		ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := s.publisher.PublishBookingConfirmed(ctx, ev); err != nil {
			s.logger.Errorj(log.JSON{"event": "booking_publish_failed", "booking_id": ev.BookingID, "error": err.Error()})
		}
	}(context.WithoutCancel(ctx))
}

// WaitForEvents blocks until background event publishes have finished or
// ctx is done. Call it after the HTTP server has stopped accepting requests.
func (s *ReservationService) WaitForEvents(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.inflight.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
