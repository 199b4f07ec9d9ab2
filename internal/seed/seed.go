// Package seed resets the catalog to the sample experiences, slots and promo
// codes used in development and demos.
package seed

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"math/rand"
	"strings"
	"time"

	"github.com/labstack/gommon/log"

	"github.com/iliyamo/bookit/internal/database"
	"github.com/iliyamo/bookit/internal/model"
	"github.com/iliyamo/bookit/internal/repository"
)

// Days is how many days of slots are generated, starting today.
const Days = 30

// eveningPremium is applied to the price of evening slots.
const eveningPremium = 1.2

// Summary counts the rows written by Run.
type Summary struct {
	Experiences int
	Slots       int
	PromoCodes  int
}

// GenerateSlots builds the slot calendar for exps: a morning and an
// afternoon slot every day, plus an evening slot for experiences short
// enough to fit one. Available spots are drawn from rnd.
func GenerateSlots(exps []model.Experience, today time.Time, rnd *rand.Rand) []model.Slot {
	today = time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)
	var out []model.Slot
	for _, e := range exps {
		size := e.MaxGroupSize
		if size < 1 {
			size = 1
		}
		for day := 0; day < Days; day++ {
			date := today.AddDate(0, 0, day)
			prefix := fmt.Sprintf("slot_%s_%s", e.ID, date.Format(time.DateOnly))
			out = append(out,
				model.Slot{
					ID: prefix + "_morning", ExperienceID: e.ID, Date: date,
					StartTime: "07:00:00", EndTime: "10:00:00",
					TotalSpots: size, AvailableSpots: rnd.Intn(size) + 1, Price: e.Price,
				},
				model.Slot{
					ID: prefix + "_afternoon", ExperienceID: e.ID, Date: date,
					StartTime: "14:00:00", EndTime: "17:00:00",
					TotalSpots: size, AvailableSpots: rnd.Intn(size) + 1, Price: e.Price,
				},
			)
			if strings.ContainsAny(e.Duration, "23") {
				// evening slots may already be sold out
				out = append(out, model.Slot{
					ID: prefix + "_evening", ExperienceID: e.ID, Date: date,
					StartTime: "17:30:00", EndTime: "19:30:00",
					TotalSpots: size, AvailableSpots: rnd.Intn(size),
					Price: math.Round(e.Price*eveningPremium*100) / 100,
				})
			}
		}
	}
	return out
}

// Run deletes all bookings, slots, experiences and promo codes and inserts
// the sample catalog in a single transaction.
func Run(ctx context.Context, db *sql.DB, d database.Dialect, today time.Time, logger *log.Logger) (Summary, error) {
	var sum Summary
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return sum, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	for _, table := range []string{"bookings", "slots", "experiences", "promo_codes"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return sum, fmt.Errorf("clear %s: %w", table, err)
		}
	}

	const insExp = `INSERT INTO experiences (
	    id, title, description, location, price, duration, category,
	    rating, reviews, max_group_size, images, highlights, included
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	for _, e := range Experiences {
		if _, err := tx.ExecContext(ctx, d.Rebind(insExp),
			e.ID, e.Title, e.Description, e.Location, e.Price, e.Duration, e.Category,
			e.Rating, e.Reviews, e.MaxGroupSize,
			repository.EncodeList(e.Images), repository.EncodeList(e.Highlights), repository.EncodeList(e.Included),
		); err != nil {
			return sum, fmt.Errorf("insert experience %s: %w", e.ID, err)
		}
		sum.Experiences++
	}
	logger.Infof("seed: inserted %d experiences", sum.Experiences)

	const insSlot = `INSERT INTO slots (
	    id, experience_id, date, start_time, end_time, total_spots, available_spots, price
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	stmt, err := tx.PrepareContext(ctx, d.Rebind(insSlot))
	if err != nil {
		return sum, err
	}
	defer stmt.Close()
	rnd := rand.New(rand.NewSource(today.UnixNano()))
	for _, s := range GenerateSlots(Experiences, today, rnd) {
		if _, err := stmt.ExecContext(ctx,
			s.ID, s.ExperienceID, s.Date.Format(time.DateOnly), s.StartTime, s.EndTime,
			s.TotalSpots, s.AvailableSpots, s.Price,
		); err != nil {
			return sum, fmt.Errorf("insert slot %s: %w", s.ID, err)
		}
		sum.Slots++
	}
	logger.Infof("seed: inserted %d slots", sum.Slots)

	const insPromo = `INSERT INTO promo_codes (code, type, value, active) VALUES (?, ?, ?, ?)`
	for _, p := range PromoCodes {
		if _, err := tx.ExecContext(ctx, d.Rebind(insPromo), p.Code, p.Type, p.Value, p.Active); err != nil {
			return sum, fmt.Errorf("insert promo %s: %w", p.Code, err)
		}
		sum.PromoCodes++
	}
	logger.Infof("seed: inserted %d promo codes", sum.PromoCodes)

	if err := tx.Commit(); err != nil {
		return sum, err
	}
	committed = true
	return sum, nil
}
