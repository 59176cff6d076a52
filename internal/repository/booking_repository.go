package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/abhinaba-ghosh/sarodwala/internal/models"
)

// ErrSlotTaken reports that the unique (teacher, day, slot) index rejected an
// insert. It is the losing side of a concurrent admission race.
var ErrSlotTaken = errors.New("slot already taken")

const uniqueViolation = "23505"

const bookingColumns = `id, teacher_id, student_name, phone_number, date, time_slot, whatsapp_opt_in, calendar_sync, gmail_id, status, whatsapp_message_sent, whatsapp_message_sid, whatsapp_message_at, created_at`

// BookingRepository persists bookings.
type BookingRepository struct {
	db *sqlx.DB
}

// NewBookingRepository constructs the repository.
func NewBookingRepository(db *sqlx.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

// Create inserts a booking, assigning its id and creation time. A conflict on
// the slot index surfaces as ErrSlotTaken.
func (r *BookingRepository) Create(ctx context.Context, booking *models.Booking) error {
	if booking.ID == "" {
		booking.ID = uuid.NewString()
	}
	if booking.CreatedAt.IsZero() {
		booking.CreatedAt = time.Now().UTC()
	}

	const query = `INSERT INTO bookings (id, teacher_id, student_name, phone_number, date, booking_day, time_slot, whatsapp_opt_in, calendar_sync, gmail_id, status, whatsapp_message_sent, whatsapp_message_sid, whatsapp_message_at, created_at)
		VALUES (:id, :teacher_id, :student_name, :phone_number, :date, :booking_day, :time_slot, :whatsapp_opt_in, :calendar_sync, :gmail_id, :status, :whatsapp_message_sent, :whatsapp_message_sid, :whatsapp_message_at, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, booking); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return ErrSlotTaken
		}
		return fmt.Errorf("insert booking: %w", err)
	}
	return nil
}

// ListByTeacher returns every booking for the teacher, oldest class first.
func (r *BookingRepository) ListByTeacher(ctx context.Context, teacherID string) ([]models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE teacher_id = $1 ORDER BY date ASC`
	bookings := []models.Booking{}
	if err := r.db.SelectContext(ctx, &bookings, query, teacherID); err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}
	return bookings, nil
}

// ListByDay returns the teacher's bookings whose date falls inside the
// [start, end] window.
func (r *BookingRepository) ListByDay(ctx context.Context, teacherID string, start, end time.Time) ([]models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE teacher_id = $1 AND date >= $2 AND date <= $3 ORDER BY date ASC`
	bookings := []models.Booking{}
	if err := r.db.SelectContext(ctx, &bookings, query, teacherID, start, end); err != nil {
		return nil, fmt.Errorf("list bookings by day: %w", err)
	}
	return bookings, nil
}

// FindBySlot returns bookings in the window holding the exact slot label.
func (r *BookingRepository) FindBySlot(ctx context.Context, teacherID string, start, end time.Time, label string) ([]models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE teacher_id = $1 AND date >= $2 AND date <= $3 AND time_slot = $4`
	bookings := []models.Booking{}
	if err := r.db.SelectContext(ctx, &bookings, query, teacherID, start, end, label); err != nil {
		return nil, fmt.Errorf("find bookings by slot: %w", err)
	}
	return bookings, nil
}

// Find returns a booking by id, sql.ErrNoRows when absent.
func (r *BookingRepository) Find(ctx context.Context, id string) (*models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1`
	var booking models.Booking
	if err := r.db.GetContext(ctx, &booking, query, id); err != nil {
		return nil, err
	}
	return &booking, nil
}

// Delete removes a booking permanently. sql.ErrNoRows when nothing matched.
func (r *BookingRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM bookings WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete booking: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete booking: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// StampNotification marks the WhatsApp confirmation as delivered.
func (r *BookingRepository) StampNotification(ctx context.Context, id, messageSid string) error {
	const query = `UPDATE bookings SET whatsapp_message_sent = TRUE, whatsapp_message_sid = $2, whatsapp_message_at = $3 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, messageSid, time.Now().UTC()); err != nil {
		return fmt.Errorf("stamp notification: %w", err)
	}
	return nil
}
