package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/iliyamo/bookit/internal/database"
	"github.com/iliyamo/bookit/internal/model"
)

// SlotRepo encapsulates database operations on slots. The *Tx methods run
// inside a caller owned transaction; the caller commits or rolls back.
type SlotRepo struct {
	db      *sql.DB
	dialect database.Dialect
}

// NewSlotRepo constructs a SlotRepo given a DB handle.
func NewSlotRepo(db *sql.DB, d database.Dialect) *SlotRepo {
	return &SlotRepo{db: db, dialect: d}
}

const slotColumns = `id, experience_id, date, start_time, end_time, total_spots, available_spots, price, created_at`

// ListByExperience returns the slots of an experience whose date falls in
// [from, to], ordered by date and start time.
func (r *SlotRepo) ListByExperience(ctx context.Context, experienceID string, from, to time.Time) ([]model.Slot, error) {
	q := `SELECT ` + slotColumns + ` FROM slots
	      WHERE experience_id = ? AND date >= ? AND date <= ?
	      ORDER BY date, start_time`
	rows, err := r.db.QueryContext(ctx, r.dialect.Rebind(q), experienceID, dateOnly(from), dateOnly(to))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Slot, 0)
	for rows.Next() {
		var s model.Slot
		if err := scanSlot(rows, &s); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// GetByID returns a slot without locking it.
func (r *SlotRepo) GetByID(ctx context.Context, id string) (*model.Slot, error) {
	return r.get(ctx, r.db, `SELECT `+slotColumns+` FROM slots WHERE id = ?`, id)
}

// GetForUpdateTx reads a slot with an exclusive row lock held until tx
// ends. Concurrent callers for the same slot block here; callers for other
// slots do not. Returns ErrNotFound when the slot does not exist.
func (r *SlotRepo) GetForUpdateTx(ctx context.Context, tx *sql.Tx, id string) (*model.Slot, error) {
	return r.get(ctx, tx, `SELECT `+slotColumns+` FROM slots WHERE id = ? FOR UPDATE`, id)
}

func (r *SlotRepo) get(ctx context.Context, q queryer, query, id string) (*model.Slot, error) {
	var s model.Slot
	if err := scanSlot(q.QueryRowContext(ctx, r.dialect.Rebind(query), id), &s); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &s, nil
}

// DecrementTx lowers available_spots by guests. The guard on the remaining
// capacity makes the statement a no-op when it would go negative, which is
// reported as ErrConflict.
func (r *SlotRepo) DecrementTx(ctx context.Context, tx *sql.Tx, id string, guests int) error {
	const q = `UPDATE slots SET available_spots = available_spots - ? WHERE id = ? AND available_spots >= ?`
	res, err := tx.ExecContext(ctx, r.dialect.Rebind(q), guests, id, guests)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n != 1 {
		return ErrConflict
	}
	return nil
}

func scanSlot(s rowScanner, slot *model.Slot) error {
	return s.Scan(
		&slot.ID, &slot.ExperienceID, &slot.Date, clock{&slot.StartTime}, clock{&slot.EndTime},
		&slot.TotalSpots, &slot.AvailableSpots, &slot.Price, &slot.CreatedAt,
	)
}

// clock scans a TIME column as HH:MM:SS. The MySQL driver returns the
// value as text; lib/pq returns a time.Time on 0000-01-01.
type clock struct{ dst *string }

func (c clock) Scan(src any) error {
	switch v := src.(type) {
	case time.Time:
		*c.dst = v.Format(time.TimeOnly)
	case []byte:
		*c.dst = string(v)
	case string:
		*c.dst = v
	case nil:
		*c.dst = ""
	default:
		return fmt.Errorf("scan TIME: unsupported type %T", src)
	}
	return nil
}

// dateOnly formats t as YYYY-MM-DD, the literal both stores accept for DATE.
func dateOnly(t time.Time) string {
	return t.Format(time.DateOnly)
}
