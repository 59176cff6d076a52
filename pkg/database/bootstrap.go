package database

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// bootstrapStatements holds the idempotent schema for the service. The unique
// index on (teacher_id, booking_day, time_slot) is what makes concurrent
// admission of the same slot collapse to a single winner; booking_day is
// written by the repository in teacher-local time.
var bootstrapStatements = []string{
	`CREATE TABLE IF NOT EXISTS teachers (
		id              TEXT PRIMARY KEY,
		name            TEXT NOT NULL,
		instrument      TEXT NOT NULL DEFAULT '',
		bio             TEXT NOT NULL DEFAULT '',
		profile_picture TEXT NOT NULL DEFAULT '',
		available_dates JSONB NOT NULL DEFAULT '[]',
		time_slots      JSONB NOT NULL DEFAULT '{}',
		created_at      TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at      TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS bookings (
		id                    TEXT PRIMARY KEY,
		teacher_id            TEXT NOT NULL REFERENCES teachers(id),
		student_name          TEXT NOT NULL,
		phone_number          TEXT NOT NULL,
		date                  TIMESTAMPTZ NOT NULL,
		booking_day           DATE NOT NULL,
		time_slot             TEXT NOT NULL,
		whatsapp_opt_in       BOOLEAN NOT NULL DEFAULT FALSE,
		calendar_sync         BOOLEAN NOT NULL DEFAULT FALSE,
		gmail_id              TEXT,
		status                TEXT NOT NULL DEFAULT 'confirmed',
		whatsapp_message_sent BOOLEAN NOT NULL DEFAULT FALSE,
		whatsapp_message_sid  TEXT,
		whatsapp_message_at   TIMESTAMPTZ,
		created_at            TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS bookings_slot_unique
		ON bookings (teacher_id, booking_day, time_slot)`,
	`CREATE INDEX IF NOT EXISTS bookings_teacher_date_idx
		ON bookings (teacher_id, date)`,
}

// Bootstrap applies the schema. Safe to run on every start.
func Bootstrap(ctx context.Context, db *sqlx.DB) error {
	for _, stmt := range bootstrapStatements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("bootstrap schema: %w", err)
		}
	}
	return nil
}
