package models

import "time"

// BookingStatus enumerates booking states. Only confirmed is ever written;
// cancellation deletes the row.
type BookingStatus string

const (
	BookingStatusConfirmed BookingStatus = "confirmed"
)

// Booking is one committed class reservation. BookingDay is the teacher-local
// calendar day of Date and backs the unique (teacher, day, slot) index.
type Booking struct {
	ID                  string        `db:"id" json:"id"`
	TeacherID           string        `db:"teacher_id" json:"teacherId"`
	StudentName         string        `db:"student_name" json:"studentName"`
	PhoneNumber         string        `db:"phone_number" json:"phoneNumber"`
	Date                time.Time     `db:"date" json:"date"`
	BookingDay          string        `db:"booking_day" json:"-"`
	TimeSlot            string        `db:"time_slot" json:"timeSlot"`
	WhatsAppOptIn       bool          `db:"whatsapp_opt_in" json:"whatsAppOptIn"`
	CalendarSync        bool          `db:"calendar_sync" json:"calendarSync"`
	GmailID             *string       `db:"gmail_id" json:"gmailId,omitempty"`
	Status              BookingStatus `db:"status" json:"status"`
	WhatsAppMessageSent bool          `db:"whatsapp_message_sent" json:"whatsAppMessageSent"`
	WhatsAppMessageSid  *string       `db:"whatsapp_message_sid" json:"whatsAppMessageSid,omitempty"`
	WhatsAppMessageAt   *time.Time    `db:"whatsapp_message_at" json:"whatsAppMessageAt,omitempty"`
	CreatedAt           time.Time     `db:"created_at" json:"createdAt"`
}
