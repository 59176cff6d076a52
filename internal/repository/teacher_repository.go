package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/abhinaba-ghosh/sarodwala/internal/models"
)

// TeacherRepository persists the teacher profile and availability settings.
type TeacherRepository struct {
	db *sqlx.DB
}

// NewTeacherRepository constructs the repository.
func NewTeacherRepository(db *sqlx.DB) *TeacherRepository {
	return &TeacherRepository{db: db}
}

// Find returns the teacher record, sql.ErrNoRows when absent.
func (r *TeacherRepository) Find(ctx context.Context, id string) (*models.Teacher, error) {
	const query = `SELECT id, name, instrument, bio, profile_picture, available_dates, time_slots, created_at, updated_at FROM teachers WHERE id = $1`
	var teacher models.Teacher
	if err := r.db.GetContext(ctx, &teacher, query, id); err != nil {
		return nil, err
	}
	return &teacher, nil
}

// EnsureDefault inserts the teacher row if it does not exist yet. Existing
// rows are left untouched.
func (r *TeacherRepository) EnsureDefault(ctx context.Context, teacher *models.Teacher) error {
	now := time.Now().UTC()
	if teacher.CreatedAt.IsZero() {
		teacher.CreatedAt = now
	}
	teacher.UpdatedAt = now
	if len(teacher.AvailableDates) == 0 {
		teacher.AvailableDates = []byte("[]")
	}
	if len(teacher.TimeSlots) == 0 {
		teacher.TimeSlots = []byte("{}")
	}

	const query = `INSERT INTO teachers (id, name, instrument, bio, profile_picture, available_dates, time_slots, created_at, updated_at)
		VALUES (:id, :name, :instrument, :bio, :profile_picture, :available_dates, :time_slots, :created_at, :updated_at)
		ON CONFLICT (id) DO NOTHING`
	if _, err := r.db.NamedExecContext(ctx, query, teacher); err != nil {
		return fmt.Errorf("ensure default teacher: %w", err)
	}
	return nil
}

// ReplaceAvailability overwrites the availability fields of an existing
// teacher. Reports sql.ErrNoRows when the teacher row does not exist; use
// UpsertAvailability for the create-or-update path.
func (r *TeacherRepository) ReplaceAvailability(ctx context.Context, id string, availability models.TeacherAvailability) error {
	dates, slotMap, err := marshalAvailability(availability)
	if err != nil {
		return err
	}

	const query = `UPDATE teachers SET available_dates = $2, time_slots = $3, updated_at = $4 WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id, dates, slotMap, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("replace availability: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("replace availability: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// UpsertAvailability replaces the availability fields, creating the teacher
// row from the provided record when it does not exist.
func (r *TeacherRepository) UpsertAvailability(ctx context.Context, teacher *models.Teacher, availability models.TeacherAvailability) error {
	dates, slotMap, err := marshalAvailability(availability)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	teacher.AvailableDates = dates
	teacher.TimeSlots = slotMap
	if teacher.CreatedAt.IsZero() {
		teacher.CreatedAt = now
	}
	teacher.UpdatedAt = now

	const query = `INSERT INTO teachers (id, name, instrument, bio, profile_picture, available_dates, time_slots, created_at, updated_at)
		VALUES (:id, :name, :instrument, :bio, :profile_picture, :available_dates, :time_slots, :created_at, :updated_at)
		ON CONFLICT (id) DO UPDATE
		SET available_dates = EXCLUDED.available_dates,
		    time_slots = EXCLUDED.time_slots,
		    updated_at = EXCLUDED.updated_at`
	if _, err := r.db.NamedExecContext(ctx, query, teacher); err != nil {
		return fmt.Errorf("upsert availability: %w", err)
	}
	return nil
}

func marshalAvailability(availability models.TeacherAvailability) ([]byte, []byte, error) {
	if availability.AvailableDates == nil {
		availability.AvailableDates = []string{}
	}
	if availability.TimeSlots == nil {
		availability.TimeSlots = map[string]map[string]bool{}
	}
	dates, err := json.Marshal(availability.AvailableDates)
	if err != nil {
		return nil, nil, fmt.Errorf("marshal available dates: %w", err)
	}
	slotMap, err := json.Marshal(availability.TimeSlots)
	if err != nil {
		return nil, nil, fmt.Errorf("marshal time slots: %w", err)
	}
	return dates, slotMap, nil
}
