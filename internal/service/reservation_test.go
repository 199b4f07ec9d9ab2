package service

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/bookit/internal/database"
	"github.com/iliyamo/bookit/internal/queue"
)

var (
	lockSlotSQL  = regexp.QuoteMeta("FROM slots WHERE id = ? FOR UPDATE")
	promoSQL     = regexp.QuoteMeta("FROM promo_codes WHERE code = ? AND active = TRUE")
	insertSQL    = regexp.QuoteMeta("INSERT INTO bookings")
	decrementSQL = regexp.QuoteMeta("UPDATE slots SET available_spots = available_spots - ? WHERE id = ? AND available_spots >= ?")
)

type recordingPublisher struct {
	events chan queue.BookingConfirmedEvent
	err    error
}

func newRecordingPublisher() *recordingPublisher {
	return &recordingPublisher{events: make(chan queue.BookingConfirmedEvent, 4)}
}

func (p *recordingPublisher) PublishBookingConfirmed(_ context.Context, ev queue.BookingConfirmedEvent) error {
	p.events <- ev
	return p.err
}

func newTestService(t *testing.T, d database.Dialect, cfg ReservationConfig, ids ...string) (*ReservationService, sqlmock.Sqlmock, *recordingPublisher) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	pub := newRecordingPublisher()
	svc := NewReservationService(db, d, pub, nil, cfg)
	next := 0
	svc.newID = func() (string, error) {
		if next >= len(ids) {
			return "", errors.New("out of ids")
		}
		id := ids[next]
		next++
		return id, nil
	}
	svc.now = func() time.Time { return time.Date(2025, 6, 1, 9, 30, 0, 0, time.UTC) }
	return svc, mock, pub
}

func slotRows(experienceID string, available int, price float64) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "experience_id", "date", "start_time", "end_time",
		"total_spots", "available_spots", "price", "created_at",
	}).AddRow("S1", experienceID, time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC), "07:00:00", "10:00:00",
		8, available, price, time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC))
}

func baseRequest() ReserveRequest {
	return ReserveRequest{
		ExperienceID: "E1",
		SlotID:       "S1",
		Guests:       2,
		FirstName:    "Asha",
		LastName:     "Rao",
		Email:        "asha@example.com",
		Phone:        "9876543210",
		TotalPrice:   236, // 2 x 100 + 18% taxes
	}
}

func TestReserve_Success(t *testing.T) {
	svc, mock, pub := newTestService(t, database.MySQL, ReservationConfig{VerifyPrice: true, IDAttempts: 3}, "ABCD1234")

	mock.ExpectBegin()
	mock.ExpectQuery(lockSlotSQL).WithArgs("S1").WillReturnRows(slotRows("E1", 5, 100))
	mock.ExpectExec(insertSQL).
		WithArgs("ABCD1234", "E1", "S1", "Asha", "Rao", "asha@example.com", "9876543210", 2, nil, 236.0, "confirmed").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(decrementSQL).WithArgs(2, "S1", 2).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	id, err := svc.Reserve(context.Background(), baseRequest())
	require.NoError(t, err)
	assert.Equal(t, "ABCD1234", id)
	require.NoError(t, mock.ExpectationsWereMet())

	select {
	case ev := <-pub.events:
		assert.Equal(t, "ABCD1234", ev.BookingID)
		assert.Equal(t, "2025-06-10", ev.SlotDate)
		assert.Equal(t, "Asha Rao", ev.CustomerName)
		assert.Equal(t, 2, ev.Guests)
	case <-time.After(2 * time.Second):
		t.Fatal("booking event was not published")
	}
}

func TestReserve_WithPromoCode(t *testing.T) {
	svc, mock, _ := newTestService(t, database.MySQL, ReservationConfig{VerifyPrice: true, IDAttempts: 1}, "PROMO001")
	req := baseRequest()
	req.PromoCode = " welcome20 "
	req.TotalPrice = 196 // 200 + 36 - 40

	mock.ExpectBegin()
	mock.ExpectQuery(lockSlotSQL).WithArgs("S1").WillReturnRows(slotRows("E1", 5, 100))
	mock.ExpectQuery(promoSQL).WithArgs("WELCOME20").
		WillReturnRows(sqlmock.NewRows([]string{"code", "type", "value", "active"}).AddRow("WELCOME20", "PERCENTAGE", 20.0, true))
	mock.ExpectExec(insertSQL).
		WithArgs("PROMO001", "E1", "S1", "Asha", "Rao", "asha@example.com", "9876543210", 2, "WELCOME20", 196.0, "confirmed").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(decrementSQL).WithArgs(2, "S1", 2).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	id, err := svc.Reserve(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "PROMO001", id)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestReserve_InsufficientCapacity(t *testing.T) {
	svc, mock, pub := newTestService(t, database.MySQL, ReservationConfig{VerifyPrice: true, IDAttempts: 1}, "UNUSED00")
	req := baseRequest()
	req.Guests = 3

	mock.ExpectBegin()
	mock.ExpectQuery(lockSlotSQL).WithArgs("S1").WillReturnRows(slotRows("E1", 2, 100))
	mock.ExpectRollback()

	_, err := svc.Reserve(context.Background(), req)
	var capErr *InsufficientCapacityError
	require.ErrorAs(t, err, &capErr)
	assert.Equal(t, 2, capErr.Remaining)
	assert.Equal(t, 3, capErr.Requested)
	require.NoError(t, mock.ExpectationsWereMet())
	assert.Empty(t, pub.events)
}

func TestReserve_ExactRemainingCapacity(t *testing.T) {
	svc, mock, _ := newTestService(t, database.MySQL, ReservationConfig{IDAttempts: 1}, "LAST0001")
	req := baseRequest()
	req.Guests = 1
	req.TotalPrice = 118

	mock.ExpectBegin()
	mock.ExpectQuery(lockSlotSQL).WithArgs("S1").WillReturnRows(slotRows("E1", 1, 100))
	mock.ExpectExec(insertSQL).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(decrementSQL).WithArgs(1, "S1", 1).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	id, err := svc.Reserve(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "LAST0001", id)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestReserve_SlotNotFound(t *testing.T) {
	svc, mock, _ := newTestService(t, database.MySQL, ReservationConfig{IDAttempts: 1})

	mock.ExpectBegin()
	mock.ExpectQuery(lockSlotSQL).WithArgs("S1").WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	_, err := svc.Reserve(context.Background(), baseRequest())
	require.ErrorIs(t, err, ErrSlotNotFound)
	assert.NotErrorIs(t, err, ErrTransactionFailed)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestReserve_SlotOfOtherExperience(t *testing.T) {
	svc, mock, _ := newTestService(t, database.MySQL, ReservationConfig{IDAttempts: 1})

	mock.ExpectBegin()
	mock.ExpectQuery(lockSlotSQL).WithArgs("S1").WillReturnRows(slotRows("E2", 5, 100))
	mock.ExpectRollback()

	_, err := svc.Reserve(context.Background(), baseRequest())
	require.ErrorIs(t, err, ErrSlotNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestReserve_PriceMismatch(t *testing.T) {
	svc, mock, _ := newTestService(t, database.MySQL, ReservationConfig{VerifyPrice: true, IDAttempts: 1})
	req := baseRequest()
	req.TotalPrice = 1

	mock.ExpectBegin()
	mock.ExpectQuery(lockSlotSQL).WithArgs("S1").WillReturnRows(slotRows("E1", 5, 100))
	mock.ExpectRollback()

	_, err := svc.Reserve(context.Background(), req)
	var pm *PriceMismatchError
	require.ErrorAs(t, err, &pm)
	assert.Equal(t, 236.0, pm.Expected)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestReserve_PriceTrustedWhenVerificationOff(t *testing.T) {
	svc, mock, _ := newTestService(t, database.MySQL, ReservationConfig{VerifyPrice: false, IDAttempts: 1}, "TRUST001")
	req := baseRequest()
	req.TotalPrice = 1
	req.PromoCode = "whatever"

	mock.ExpectBegin()
	mock.ExpectQuery(lockSlotSQL).WithArgs("S1").WillReturnRows(slotRows("E1", 5, 100))
	mock.ExpectExec(insertSQL).
		WithArgs("TRUST001", "E1", "S1", "Asha", "Rao", "asha@example.com", "9876543210", 2, "WHATEVER", 1.0, "confirmed").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(decrementSQL).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	_, err := svc.Reserve(context.Background(), req)
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestReserve_InvalidPromoCode(t *testing.T) {
	svc, mock, _ := newTestService(t, database.MySQL, ReservationConfig{VerifyPrice: true, IDAttempts: 1})
	req := baseRequest()
	req.PromoCode = "NOPE"

	mock.ExpectBegin()
	mock.ExpectQuery(lockSlotSQL).WithArgs("S1").WillReturnRows(slotRows("E1", 5, 100))
	mock.ExpectQuery(promoSQL).WithArgs("NOPE").WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	_, err := svc.Reserve(context.Background(), req)
	require.ErrorIs(t, err, ErrInvalidPromoCode)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestReserve_RetriesOnDuplicateBookingCode(t *testing.T) {
	svc, mock, _ := newTestService(t, database.MySQL, ReservationConfig{IDAttempts: 3}, "TAKEN000", "FRESH000")

	mock.ExpectBegin()
	mock.ExpectQuery(lockSlotSQL).WithArgs("S1").WillReturnRows(slotRows("E1", 5, 100))
	mock.ExpectExec(insertSQL).WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry"})
	mock.ExpectRollback()

	mock.ExpectBegin()
	mock.ExpectQuery(lockSlotSQL).WithArgs("S1").WillReturnRows(slotRows("E1", 5, 100))
	mock.ExpectExec(insertSQL).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(decrementSQL).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	id, err := svc.Reserve(context.Background(), baseRequest())
	require.NoError(t, err)
	assert.Equal(t, "FRESH000", id)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestReserve_DuplicateBookingCodeExhausted(t *testing.T) {
	svc, mock, _ := newTestService(t, database.Postgres, ReservationConfig{IDAttempts: 2}, "DUP00001", "DUP00002")
	pgLock := regexp.QuoteMeta("FROM slots WHERE id = $1 FOR UPDATE")

	for i := 0; i < 2; i++ {
		mock.ExpectBegin()
		mock.ExpectQuery(pgLock).WithArgs("S1").WillReturnRows(slotRows("E1", 5, 100))
		mock.ExpectExec(insertSQL).WillReturnError(&pq.Error{Code: "23505"})
		mock.ExpectRollback()
	}

	_, err := svc.Reserve(context.Background(), baseRequest())
	require.ErrorIs(t, err, ErrTransactionFailed)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestReserve_RollsBackWhenDecrementMatchesNoRow(t *testing.T) {
	svc, mock, pub := newTestService(t, database.MySQL, ReservationConfig{IDAttempts: 1}, "ROLLBK01")

	mock.ExpectBegin()
	mock.ExpectQuery(lockSlotSQL).WithArgs("S1").WillReturnRows(slotRows("E1", 5, 100))
	mock.ExpectExec(insertSQL).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(decrementSQL).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	_, err := svc.Reserve(context.Background(), baseRequest())
	require.ErrorIs(t, err, ErrTransactionFailed)
	require.NoError(t, mock.ExpectationsWereMet())
	assert.Empty(t, pub.events)
}

func TestReserve_InsertFailureRollsBack(t *testing.T) {
	svc, mock, _ := newTestService(t, database.MySQL, ReservationConfig{IDAttempts: 3}, "FAIL0001")

	mock.ExpectBegin()
	mock.ExpectQuery(lockSlotSQL).WithArgs("S1").WillReturnRows(slotRows("E1", 5, 100))
	mock.ExpectExec(insertSQL).WillReturnError(errors.New("connection reset"))
	mock.ExpectRollback()

	_, err := svc.Reserve(context.Background(), baseRequest())
	require.ErrorIs(t, err, ErrTransactionFailed)
	assert.Contains(t, err.Error(), "insert booking")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestReserve_LockWaitTimeout(t *testing.T) {
	svc, mock, _ := newTestService(t, database.MySQL, ReservationConfig{IDAttempts: 1})
	lockErr := &mysql.MySQLError{Number: 1205, Message: "Lock wait timeout exceeded"}

	mock.ExpectBegin()
	mock.ExpectQuery(lockSlotSQL).WithArgs("S1").WillReturnError(lockErr)
	mock.ExpectRollback()

	_, err := svc.Reserve(context.Background(), baseRequest())
	require.ErrorIs(t, err, ErrTransactionFailed)
	var me *mysql.MySQLError
	require.ErrorAs(t, err, &me)
	assert.EqualValues(t, 1205, me.Number)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestReserve_CommitFailure(t *testing.T) {
	svc, mock, pub := newTestService(t, database.MySQL, ReservationConfig{IDAttempts: 1}, "COMMIT01")

	mock.ExpectBegin()
	mock.ExpectQuery(lockSlotSQL).WithArgs("S1").WillReturnRows(slotRows("E1", 5, 100))
	mock.ExpectExec(insertSQL).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(decrementSQL).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit().WillReturnError(errors.New("server gone"))

	_, err := svc.Reserve(context.Background(), baseRequest())
	require.ErrorIs(t, err, ErrTransactionFailed)
	require.NoError(t, mock.ExpectationsWereMet())
	assert.Empty(t, pub.events)
}

func TestReserve_PublishFailureDoesNotFailBooking(t *testing.T) {
	svc, mock, pub := newTestService(t, database.MySQL, ReservationConfig{IDAttempts: 1}, "PUBFAIL1")
	pub.err = errors.New("broker down")

	mock.ExpectBegin()
	mock.ExpectQuery(lockSlotSQL).WithArgs("S1").WillReturnRows(slotRows("E1", 5, 100))
	mock.ExpectExec(insertSQL).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(decrementSQL).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	id, err := svc.Reserve(context.Background(), baseRequest())
	require.NoError(t, err)
	assert.Equal(t, "PUBFAIL1", id)
	select {
	case <-pub.events:
	case <-time.After(2 * time.Second):
		t.Fatal("publisher was not called")
	}
}

func TestReserve_RejectsInvalidRequest(t *testing.T) {
	svc, mock, _ := newTestService(t, database.MySQL, ReservationConfig{IDAttempts: 1})
	req := baseRequest()
	req.Guests = 0

	_, err := svc.Reserve(context.Background(), req)
	require.ErrorIs(t, err, ErrInvalidRequest)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestReserve_PostgresEventCarriesClockTimes(t *testing.T) {
	svc, mock, pub := newTestService(t, database.Postgres, ReservationConfig{IDAttempts: 1}, "PGTIME01")
	day := time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("FROM slots WHERE id = $1 FOR UPDATE")).WithArgs("S1").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "experience_id", "date", "start_time", "end_time",
			"total_spots", "available_spots", "price", "created_at",
		}).AddRow("S1", "E1", day, time.Date(0, 1, 1, 7, 0, 0, 0, time.UTC), time.Date(0, 1, 1, 10, 0, 0, 0, time.UTC),
			8, 5, 100.0, day))
	mock.ExpectExec(insertSQL).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE slots SET available_spots = available_spots - $1")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	_, err := svc.Reserve(context.Background(), baseRequest())
	require.NoError(t, err)
	require.NoError(t, svc.WaitForEvents(context.Background()))

	ev := <-pub.events
	assert.Equal(t, "07:00:00", ev.StartTime)
	assert.Equal(t, "10:00:00", ev.EndTime)
}

type gatedPublisher struct {
	release chan struct{}
	done    chan string
}

func (p *gatedPublisher) PublishBookingConfirmed(ctx context.Context, ev queue.BookingConfirmedEvent) error {
	select {
	case <-p.release:
	case <-ctx.Done():
		return ctx.Err()
	}
	p.done <- ev.BookingID
	return nil
}

func TestWaitForEvents_DrainsInFlightPublishes(t *testing.T) {
	svc, mock, _ := newTestService(t, database.MySQL, ReservationConfig{IDAttempts: 1}, "DRAIN001")
	pub := &gatedPublisher{release: make(chan struct{}), done: make(chan string, 1)}
	svc.publisher = pub

	mock.ExpectBegin()
	mock.ExpectQuery(lockSlotSQL).WithArgs("S1").WillReturnRows(slotRows("E1", 5, 100))
	mock.ExpectExec(insertSQL).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(decrementSQL).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	_, err := svc.Reserve(context.Background(), baseRequest())
	require.NoError(t, err)

	short, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	require.ErrorIs(t, svc.WaitForEvents(short), context.DeadlineExceeded)

	close(pub.release)
	require.NoError(t, svc.WaitForEvents(context.Background()))
	assert.Equal(t, "DRAIN001", <-pub.done)
}

func TestWaitForEvents_NothingInFlight(t *testing.T) {
	svc, _, _ := newTestService(t, database.MySQL, ReservationConfig{IDAttempts: 1})
	assert.NoError(t, svc.WaitForEvents(context.Background()))
}
