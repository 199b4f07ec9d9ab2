package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/iliyamo/bookit/internal/database"
	"github.com/iliyamo/bookit/internal/model"
)

// PromoRepo looks up promo codes. Codes are stored upper-case.
type PromoRepo struct {
	db      *sql.DB
	dialect database.Dialect
}

func NewPromoRepo(db *sql.DB, d database.Dialect) *PromoRepo {
	return &PromoRepo{db: db, dialect: d}
}

// GetActive returns the active promo code matching code, ignoring case.
func (r *PromoRepo) GetActive(ctx context.Context, code string) (*model.PromoCode, error) {
	return r.getActive(ctx, r.db, code)
}

// GetActiveTx is GetActive inside a transaction, so the discount applied
// to a booking is read in the same snapshot the booking is written in.
func (r *PromoRepo) GetActiveTx(ctx context.Context, tx *sql.Tx, code string) (*model.PromoCode, error) {
	return r.getActive(ctx, tx, code)
}

func (r *PromoRepo) getActive(ctx context.Context, q queryer, code string) (*model.PromoCode, error) {
	const query = `SELECT code, type, value, active FROM promo_codes WHERE code = ? AND active = TRUE`
	var p model.PromoCode
	err := q.QueryRowContext(ctx, r.dialect.Rebind(query), NormalizePromoCode(code)).
		Scan(&p.Code, &p.Type, &p.Value, &p.Active)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// NormalizePromoCode trims and upper-cases a user supplied code.
func NormalizePromoCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
