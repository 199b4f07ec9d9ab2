package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/bookit/internal/database"
	"github.com/iliyamo/bookit/internal/repository"
)

// openIntegrationDB connects to the store named by BOOKIT_TEST_DSN. The
// tests in this file are skipped when it is unset.
func openIntegrationDB(t *testing.T) (*sql.DB, database.Dialect) {
	t.Helper()
	dsn := os.Getenv("BOOKIT_TEST_DSN")
	if dsn == "" {
		t.Skip("BOOKIT_TEST_DSN not set")
	}
	d := database.ParseDialect(os.Getenv("BOOKIT_TEST_DRIVER"))
	db, err := sql.Open(d.DriverName(), dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	db.SetMaxOpenConns(40)

	ctx := context.Background()
	_, err = database.Migrate(ctx, db, d)
	require.NoError(t, err)
	return db, d
}

func seedSlot(t *testing.T, db *sql.DB, d database.Dialect, expID, slotID string, spots int) {
	t.Helper()
	ctx := context.Background()
	exec := func(q string, args ...any) {
		_, err := db.ExecContext(ctx, d.Rebind(q), args...)
		require.NoError(t, err)
	}
	exec(`DELETE FROM bookings WHERE slot_id = ?`, slotID)
	exec(`DELETE FROM slots WHERE id = ?`, slotID)
	exec(`DELETE FROM experiences WHERE id = ?`, expID)
	exec(`INSERT INTO experiences (id, title, description, location, price, duration, category,
	          rating, reviews, max_group_size, images, highlights, included)
	      VALUES (?, 'Test', 'Test', 'Test', 100, '2 hours', 'Test', 5, 0, ?, '[]', '[]', '[]')`, expID, spots)
	exec(`INSERT INTO slots (id, experience_id, date, start_time, end_time, total_spots, available_spots, price)
	      VALUES (?, ?, ?, '07:00:00', '10:00:00', ?, ?, 100)`,
		slotID, expID, time.Now().UTC().AddDate(0, 0, 1).Format(time.DateOnly), spots, spots)
}

func TestReserveConcurrent_NeverOverbooks(t *testing.T) {
	db, d := openIntegrationDB(t)
	const spots, workers = 5, 20
	seedSlot(t, db, d, "exp_it_race", "slot_it_race", spots)

	svc := NewReservationService(db, d, nil, nil, ReservationConfig{IDAttempts: 3})
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
		rejected  int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			req := ReserveRequest{
				ExperienceID: "exp_it_race", SlotID: "slot_it_race", Guests: 1,
				FirstName: "Guest", LastName: fmt.Sprint(i), Email: "race@example.com",
				Phone: "9999999999", TotalPrice: 118,
			}
			_, err := svc.Reserve(context.Background(), req)
			mu.Lock()
			defer mu.Unlock()
			var capErr *InsufficientCapacityError
			switch {
			case err == nil:
				succeeded++
			case errors.As(err, &capErr):
				assert.Equal(t, 0, capErr.Remaining)
				rejected++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, spots, succeeded)
	assert.Equal(t, workers-spots, rejected)

	slot, err := repository.NewSlotRepo(db, d).GetByID(context.Background(), "slot_it_race")
	require.NoError(t, err)
	booked, err := repository.NewBookingRepo(db, d).SumGuestsBySlot(context.Background(), "slot_it_race")
	require.NoError(t, err)
	assert.Equal(t, 0, slot.AvailableSpots)
	assert.Equal(t, slot.TotalSpots, slot.AvailableSpots+booked)
}

func TestReserveConcurrent_LastSeat(t *testing.T) {
	db, d := openIntegrationDB(t)
	seedSlot(t, db, d, "exp_it_last", "slot_it_last", 1)

	svc := NewReservationService(db, d, nil, nil, ReservationConfig{IDAttempts: 3})
	errs := make(chan error, 2)
	for i := 0; i < 2; i++ {
		go func() {
			_, err := svc.Reserve(context.Background(), ReserveRequest{
				ExperienceID: "exp_it_last", SlotID: "slot_it_last", Guests: 1,
				FirstName: "A", LastName: "B", Email: "last@example.com", Phone: "9999999999", TotalPrice: 118,
			})
			errs <- err
		}()
	}
	var ok, full int
	for i := 0; i < 2; i++ {
		err := <-errs
		var capErr *InsufficientCapacityError
		switch {
		case err == nil:
			ok++
		case errors.As(err, &capErr):
			assert.Equal(t, 0, capErr.Remaining)
			full++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, 1, full)
}
