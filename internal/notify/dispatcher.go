package notify

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/abhinaba-ghosh/sarodwala/internal/models"
)

type messageSender interface {
	SendTemplate(ctx context.Context, phone string, params []string) (string, error)
	SendText(ctx context.Context, phone, message string) (string, error)
}

// Dispatcher formats and sends booking confirmations.
type Dispatcher struct {
	sender      messageSender
	teacherName string
	instrument  string
	loc         *time.Location
	logger      *zap.Logger
}

// NewDispatcher builds the dispatcher.
func NewDispatcher(sender messageSender, teacherName, instrument string, loc *time.Location, logger *zap.Logger) *Dispatcher {
	if loc == nil {
		loc = time.UTC
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{
		sender:      sender,
		teacherName: teacherName,
		instrument:  instrument,
		loc:         loc,
		logger:      logger,
	}
}

// ConfirmationMessage renders the student-facing confirmation text.
func (d *Dispatcher) ConfirmationMessage(booking *models.Booking) string {
	return fmt.Sprintf(
		"Hello %s, your %s class with %s is confirmed for %s at %s. Please be ready 5 minutes before the class starts.",
		booking.StudentName,
		d.instrument,
		d.teacherName,
		d.formatDate(booking.Date),
		booking.TimeSlot,
	)
}

// SendBookingConfirmation sends the confirmation template for a committed
// booking and returns the provider message id.
func (d *Dispatcher) SendBookingConfirmation(ctx context.Context, booking *models.Booking) (string, error) {
	sid, err := d.sender.SendTemplate(ctx, booking.PhoneNumber, []string{
		booking.StudentName,
		d.formatDate(booking.Date),
		booking.TimeSlot,
	})
	if err != nil {
		return "", err
	}

	d.logger.Info("whatsapp confirmation sent",
		zap.String("booking_id", booking.ID),
		zap.String("message_sid", sid),
	)
	return sid, nil
}

// SendMessage sends an arbitrary text message, backing the generic
// notification endpoint.
func (d *Dispatcher) SendMessage(ctx context.Context, phone, message string) (string, error) {
	return d.sender.SendText(ctx, phone, message)
}

func (d *Dispatcher) formatDate(t time.Time) string {
	return t.In(d.loc).Format("Monday, January 2, 2006")
}
