package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/require"

	"github.com/abhinaba-ghosh/sarodwala/internal/models"
)

func newBookingRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func bookingRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "teacher_id", "student_name", "phone_number", "date", "time_slot",
		"whatsapp_opt_in", "calendar_sync", "gmail_id", "status",
		"whatsapp_message_sent", "whatsapp_message_sid", "whatsapp_message_at", "created_at",
	})
}

func TestBookingRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newBookingRepoMock(t)
	defer cleanup()

	repo := NewBookingRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO bookings")).
		WillReturnResult(sqlmock.NewResult(1, 1))

	booking := &models.Booking{
		TeacherID:   "rajeeb",
		StudentName: "Asha Rao",
		PhoneNumber: "9876543210",
		Date:        time.Date(2025, time.May, 21, 13, 30, 0, 0, time.UTC),
		BookingDay:  "2025-05-21",
		TimeSlot:    "7:00 PM",
		Status:      models.BookingStatusConfirmed,
	}
	require.NoError(t, repo.Create(context.Background(), booking))
	require.NotEmpty(t, booking.ID)
	require.False(t, booking.CreatedAt.IsZero())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingRepositoryCreateSlotTaken(t *testing.T) {
	db, mock, cleanup := newBookingRepoMock(t)
	defer cleanup()

	repo := NewBookingRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO bookings")).
		WillReturnError(&pq.Error{Code: "23505", Constraint: "bookings_slot_unique"})

	booking := &models.Booking{
		TeacherID:  "rajeeb",
		BookingDay: "2025-05-21",
		TimeSlot:   "7:00 PM",
	}
	err := repo.Create(context.Background(), booking)
	require.ErrorIs(t, err, ErrSlotTaken)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingRepositoryListByTeacher(t *testing.T) {
	db, mock, cleanup := newBookingRepoMock(t)
	defer cleanup()

	repo := NewBookingRepository(db)
	rows := bookingRows().
		AddRow("bk-1", "rajeeb", "Asha Rao", "9876543210", time.Now(), "7:00 PM",
			true, false, nil, "confirmed", false, nil, nil, time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, teacher_id, student_name")).
		WithArgs("rajeeb").
		WillReturnRows(rows)

	bookings, err := repo.ListByTeacher(context.Background(), "rajeeb")
	require.NoError(t, err)
	require.Len(t, bookings, 1)
	require.Equal(t, "bk-1", bookings[0].ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingRepositoryFindBySlot(t *testing.T) {
	db, mock, cleanup := newBookingRepoMock(t)
	defer cleanup()

	repo := NewBookingRepository(db)
	start := time.Date(2025, time.May, 21, 0, 0, 0, 0, time.UTC)
	end := start.Add(24*time.Hour - time.Millisecond)
	rows := bookingRows().
		AddRow("bk-1", "rajeeb", "Asha Rao", "9876543210", start.Add(19*time.Hour), "7:00 PM",
			true, false, nil, "confirmed", false, nil, nil, time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("AND time_slot = $4")).
		WithArgs("rajeeb", start, end, "7:00 PM").
		WillReturnRows(rows)

	bookings, err := repo.FindBySlot(context.Background(), "rajeeb", start, end, "7:00 PM")
	require.NoError(t, err)
	require.Len(t, bookings, 1)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingRepositoryFindMissing(t *testing.T) {
	db, mock, cleanup := newBookingRepoMock(t)
	defer cleanup()

	repo := NewBookingRepository(db)
	mock.ExpectQuery(regexp.QuoteMeta("FROM bookings WHERE id = $1")).
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.Find(context.Background(), "missing")
	require.True(t, errors.Is(err, sql.ErrNoRows))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingRepositoryDelete(t *testing.T) {
	db, mock, cleanup := newBookingRepoMock(t)
	defer cleanup()

	repo := NewBookingRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM bookings WHERE id = $1")).
		WithArgs("bk-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Delete(context.Background(), "bk-1"))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingRepositoryDeleteMissing(t *testing.T) {
	db, mock, cleanup := newBookingRepoMock(t)
	defer cleanup()

	repo := NewBookingRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM bookings WHERE id = $1")).
		WithArgs("missing").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Delete(context.Background(), "missing")
	require.True(t, errors.Is(err, sql.ErrNoRows))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingRepositoryStampNotification(t *testing.T) {
	db, mock, cleanup := newBookingRepoMock(t)
	defer cleanup()

	repo := NewBookingRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("UPDATE bookings SET whatsapp_message_sent = TRUE")).
		WithArgs("bk-1", "wamid.123", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.StampNotification(context.Background(), "bk-1", "wamid.123"))
	require.NoError(t, mock.ExpectationsWereMet())
}
