package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/abhinaba-ghosh/sarodwala/internal/models"
	"github.com/abhinaba-ghosh/sarodwala/internal/repository"
	"github.com/abhinaba-ghosh/sarodwala/internal/slots"
	appErrors "github.com/abhinaba-ghosh/sarodwala/pkg/errors"
)

type bookingRepository interface {
	Create(ctx context.Context, booking *models.Booking) error
	ListByTeacher(ctx context.Context, teacherID string) ([]models.Booking, error)
	ListByDay(ctx context.Context, teacherID string, start, end time.Time) ([]models.Booking, error)
	FindBySlot(ctx context.Context, teacherID string, start, end time.Time, label string) ([]models.Booking, error)
	Find(ctx context.Context, id string) (*models.Booking, error)
	Delete(ctx context.Context, id string) error
	StampNotification(ctx context.Context, id, messageSid string) error
}

type confirmationSender interface {
	SendBookingConfirmation(ctx context.Context, booking *models.Booking) (string, error)
}

type slotInvalidator interface {
	InvalidateDay(ctx context.Context, day time.Time)
}

type bookingMetrics interface {
	RecordBookingAdmitted()
	RecordBookingConflict()
	RecordWhatsAppSent()
	RecordWhatsAppFailure()
}

// SubmitBookingRequest carries a student's booking submission. Date accepts
// YYYY-MM-DD or RFC3339; the slot label fixes the class start time.
type SubmitBookingRequest struct {
	StudentName   string  `json:"studentName" validate:"required"`
	PhoneNumber   string  `json:"phoneNumber" validate:"required"`
	Date          string  `json:"date" validate:"required"`
	TimeSlot      string  `json:"timeSlot" validate:"required"`
	WhatsAppOptIn bool    `json:"whatsAppOptIn"`
	CalendarSync  bool    `json:"calendarSync"`
	GmailID       *string `json:"gmailId"`
}

// BookingService admits, lists and cancels bookings for the configured
// teacher.
type BookingService struct {
	repo      bookingRepository
	notifier  confirmationSender
	cache     slotInvalidator
	metrics   bookingMetrics
	validator *validator.Validate
	teacherID string
	loc       *time.Location
	logger    *zap.Logger
}

// NewBookingService builds the service. notifier, cache and metrics may be
// nil.
func NewBookingService(repo bookingRepository, notifier confirmationSender, cache slotInvalidator, metrics bookingMetrics, validate *validator.Validate, teacherID string, loc *time.Location, logger *zap.Logger) *BookingService {
	if validate == nil {
		validate = validator.New()
	}
	if loc == nil {
		loc = time.UTC
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BookingService{
		repo:      repo,
		notifier:  notifier,
		cache:     cache,
		metrics:   metrics,
		validator: validate,
		teacherID: teacherID,
		loc:       loc,
		logger:    logger,
	}
}

// Submit runs the admission sequence: validate, re-check the slot against the
// day's committed bookings, insert, then attempt the WhatsApp confirmation.
// The confirmation attempt never fails the booking.
func (s *BookingService) Submit(ctx context.Context, req SubmitBookingRequest) (*models.Booking, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, missingFieldMessage(err))
	}
	if !slots.IsCanonical(req.TimeSlot) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "Unknown time slot")
	}
	day, err := slots.ParseDay(req.Date, s.loc)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "Invalid date")
	}

	start, end := slots.DayWindow(day, s.loc)

	// Two conflict paths on purpose: the store-side compound filter and an
	// in-process scan over the whole day. They encode one rule; the second
	// guards against the first missing rows.
	conflicts, err := s.repo.FindBySlot(ctx, s.teacherID, start, end, req.TimeSlot)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check slot")
	}
	if len(conflicts) == 0 {
		dayBookings, err := s.repo.ListByDay(ctx, s.teacherID, start, end)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check slot")
		}
		for _, b := range dayBookings {
			if b.TimeSlot == req.TimeSlot {
				conflicts = append(conflicts, b)
				break
			}
		}
	}
	if len(conflicts) > 0 {
		s.recordConflict()
		return nil, appErrors.Clone(appErrors.ErrConflict, "slot already booked")
	}

	classStart, err := slots.StartTime(day, req.TimeSlot, s.loc)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "Unknown time slot")
	}

	booking := &models.Booking{
		TeacherID:     s.teacherID,
		StudentName:   req.StudentName,
		PhoneNumber:   req.PhoneNumber,
		Date:          classStart,
		BookingDay:    slots.DayKey(classStart, s.loc),
		TimeSlot:      req.TimeSlot,
		WhatsAppOptIn: req.WhatsAppOptIn,
		CalendarSync:  req.CalendarSync,
		Status:        models.BookingStatusConfirmed,
	}
	if req.CalendarSync {
		booking.GmailID = req.GmailID
	}

	if err := s.repo.Create(ctx, booking); err != nil {
		if errors.Is(err, repository.ErrSlotTaken) {
			// Lost a concurrent race after the pre-check; same outcome as a
			// detected conflict.
			s.recordConflict()
			return nil, appErrors.Clone(appErrors.ErrConflict, "slot already booked")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create booking")
	}
	if s.metrics != nil {
		s.metrics.RecordBookingAdmitted()
	}
	if s.cache != nil {
		s.cache.InvalidateDay(ctx, classStart)
	}

	if booking.WhatsAppOptIn {
		s.sendConfirmation(ctx, booking)
	}

	return booking, nil
}

// sendConfirmation attempts the WhatsApp message and stamps the outcome on
// the booking. All failures are logged only; the booking is already
// committed.
func (s *BookingService) sendConfirmation(ctx context.Context, booking *models.Booking) {
	if s.notifier == nil {
		return
	}

	sid, err := s.notifier.SendBookingConfirmation(ctx, booking)
	if err != nil {
		if s.metrics != nil {
			s.metrics.RecordWhatsAppFailure()
		}
		s.logger.Warn("whatsapp confirmation failed",
			zap.String("booking_id", booking.ID),
			zap.Error(err),
		)
		return
	}

	if s.metrics != nil {
		s.metrics.RecordWhatsAppSent()
	}
	now := time.Now().UTC()
	booking.WhatsAppMessageSent = true
	booking.WhatsAppMessageSid = &sid
	booking.WhatsAppMessageAt = &now

	if err := s.repo.StampNotification(ctx, booking.ID, sid); err != nil {
		s.logger.Warn("failed to stamp whatsapp delivery",
			zap.String("booking_id", booking.ID),
			zap.Error(err),
		)
	}
}

func missingFieldMessage(err error) string {
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		switch fieldErrs[0].Field() {
		case "StudentName":
			return "Student name is required"
		case "PhoneNumber":
			return "Phone number is required"
		case "Date":
			return "Date is required"
		case "TimeSlot":
			return "Time slot is required"
		}
	}
	return "Invalid booking payload"
}

func (s *BookingService) recordConflict() {
	if s.metrics != nil {
		s.metrics.RecordBookingConflict()
	}
}

// ListAll returns every booking for the teacher.
func (s *BookingService) ListAll(ctx context.Context) ([]models.Booking, error) {
	bookings, err := s.repo.ListByTeacher(ctx, s.teacherID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list bookings")
	}
	return bookings, nil
}

// ListByDate returns the bookings inside the day's local window.
func (s *BookingService) ListByDate(ctx context.Context, day time.Time) ([]models.Booking, error) {
	start, end := slots.DayWindow(day, s.loc)
	bookings, err := s.repo.ListByDay(ctx, s.teacherID, start, end)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list bookings")
	}
	return bookings, nil
}

// Cancel hard-deletes a booking, immediately freeing its slot.
func (s *BookingService) Cancel(ctx context.Context, id string) error {
	booking, err := s.repo.Find(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "Booking not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load booking")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "Booking not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete booking")
	}

	if s.cache != nil {
		s.cache.InvalidateDay(ctx, booking.Date)
	}
	return nil
}
