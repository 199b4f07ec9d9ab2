package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/iliyamo/bookit/internal/database"
	"github.com/iliyamo/bookit/internal/model"
)

// BookingRepo persists bookings. Bookings are append-only: the repository
// offers no update or delete.
type BookingRepo struct {
	db      *sql.DB
	dialect database.Dialect
}

// NewBookingRepo returns a new BookingRepo bound to the given database.
func NewBookingRepo(db *sql.DB, d database.Dialect) *BookingRepo {
	return &BookingRepo{db: db, dialect: d}
}

// CreateTx inserts b within the scope of an existing transaction. A
// duplicate booking code is reported as ErrDuplicateKey; the transaction is
// unusable afterwards on PostgreSQL, so callers must roll back and start
// over.
func (r *BookingRepo) CreateTx(ctx context.Context, tx *sql.Tx, b *model.Booking) error {
	const q = `INSERT INTO bookings (
	               id, experience_id, slot_id, first_name, last_name,
	               email, phone, guests, promo_code, total_price, status
	           ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	var promo sql.NullString
	if b.PromoCode != nil {
		promo = sql.NullString{String: *b.PromoCode, Valid: true}
	}
	_, err := tx.ExecContext(ctx, r.dialect.Rebind(q),
		b.ID, b.ExperienceID, b.SlotID, b.FirstName, b.LastName,
		b.Email, b.Phone, b.Guests, promo, b.TotalPrice, b.Status,
	)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return fmt.Errorf("%w: booking id %s already taken", ErrDuplicateKey, b.ID)
		}
		return err
	}
	return nil
}

const bookingDetailSelect = `SELECT b.id, b.experience_id, b.slot_id, b.first_name, b.last_name,
       b.email, b.phone, b.guests, b.promo_code, b.total_price, b.status,
       b.created_at, b.updated_at,
       e.title, e.location, e.images,
       s.date, s.start_time, s.end_time
  FROM bookings b
  JOIN experiences e ON e.id = b.experience_id
  JOIN slots s ON s.id = b.slot_id`

// GetDetail returns a booking with its experience and slot information, or
// ErrNotFound.
func (r *BookingRepo) GetDetail(ctx context.Context, id string) (*model.BookingDetail, error) {
	q := bookingDetailSelect + ` WHERE b.id = ?`
	d, err := scanBookingDetail(r.db.QueryRowContext(ctx, r.dialect.Rebind(q), id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return d, err
}

// List returns bookings newest first. A non-empty email restricts the
// result to that customer.
func (r *BookingRepo) List(ctx context.Context, email string) ([]model.BookingDetail, error) {
	q := bookingDetailSelect
	var args []any
	if email != "" {
		q += ` WHERE b.email = ?`
		args = append(args, email)
	}
	q += ` ORDER BY b.created_at DESC, b.id`
	rows, err := r.db.QueryContext(ctx, r.dialect.Rebind(q), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.BookingDetail, 0)
	for rows.Next() {
		d, err := scanBookingDetail(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *d)
	}
	return out, rows.Err()
}

// SumGuestsBySlot returns the number of seats booked in a slot.
func (r *BookingRepo) SumGuestsBySlot(ctx context.Context, slotID string) (int, error) {
	const q = `SELECT COALESCE(SUM(guests), 0) FROM bookings WHERE slot_id = ?`
	var n int
	err := r.db.QueryRowContext(ctx, r.dialect.Rebind(q), slotID).Scan(&n)
	return n, err
}

func scanBookingDetail(s rowScanner) (*model.BookingDetail, error) {
	var (
		d      model.BookingDetail
		promo  sql.NullString
		images []byte
	)
	if err := s.Scan(
		&d.ID, &d.ExperienceID, &d.SlotID, &d.FirstName, &d.LastName,
		&d.Email, &d.Phone, &d.Guests, &promo, &d.TotalPrice, &d.Status,
		&d.CreatedAt, &d.UpdatedAt,
		&d.ExperienceTitle, &d.ExperienceLocation, &images,
		&d.SlotDate, clock{&d.SlotStartTime}, clock{&d.SlotEndTime},
	); err != nil {
		return nil, err
	}
	if promo.Valid {
		p := promo.String
		d.PromoCode = &p
	}
	imgs, err := decodeList(images)
	if err != nil {
		return nil, fmt.Errorf("booking %s images: %w", d.ID, err)
	}
	d.ExperienceImages = imgs
	return &d, nil
}
