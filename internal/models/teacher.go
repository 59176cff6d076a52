package models

import (
	"time"

	"github.com/jmoiron/sqlx/types"
)

// Teacher is the single tenant record. AvailableDates and TimeSlots are stored
// as JSONB because the settings page replaces them wholesale.
type Teacher struct {
	ID             string         `db:"id" json:"id"`
	Name           string         `db:"name" json:"name"`
	Instrument     string         `db:"instrument" json:"instrument"`
	Bio            string         `db:"bio" json:"bio"`
	ProfilePicture string         `db:"profile_picture" json:"profilePicture"`
	AvailableDates types.JSONText `db:"available_dates" json:"-"`
	TimeSlots      types.JSONText `db:"time_slots" json:"-"`
	CreatedAt      time.Time      `db:"created_at" json:"-"`
	UpdatedAt      time.Time      `db:"updated_at" json:"-"`
}

// TeacherAvailability is the API projection of the teacher's configured
// calendar. TimeSlots maps YYYY-MM-DD to per-label enabled flags; a date
// absent from the map means every canonical slot is enabled.
type TeacherAvailability struct {
	AvailableDates []string                   `json:"availableDates"`
	TimeSlots      map[string]map[string]bool `json:"timeSlots"`
}
