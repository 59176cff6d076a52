package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/abhinaba-ghosh/sarodwala/internal/models"
	"github.com/abhinaba-ghosh/sarodwala/internal/slots"
	appErrors "github.com/abhinaba-ghosh/sarodwala/pkg/errors"
)

type availabilityProvider interface {
	Availability(ctx context.Context) (models.TeacherAvailability, error)
}

type bookingReader interface {
	ListByTeacher(ctx context.Context, teacherID string) ([]models.Booking, error)
	ListByDay(ctx context.Context, teacherID string, start, end time.Time) ([]models.Booking, error)
}

type slotCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string)
}

// SlotStatus is one entry of the bookable grid for a day. ID is the DOM-
// friendly form of the label.
type SlotStatus struct {
	ID        string `json:"id"`
	Label     string `json:"time"`
	Available bool   `json:"available"`
}

// AvailabilityService resolves which slots a student may pick for a day by
// overlaying the teacher's per-date settings and the committed bookings on the
// canonical slot list.
type AvailabilityService struct {
	teacher   availabilityProvider
	bookings  bookingReader
	cache     slotCache
	teacherID string
	loc       *time.Location
	cacheTTL  time.Duration
	logger    *zap.Logger
}

// NewAvailabilityService builds the service. cache may be nil.
func NewAvailabilityService(teacher availabilityProvider, bookings bookingReader, cache slotCache, teacherID string, loc *time.Location, cacheTTL time.Duration, logger *zap.Logger) *AvailabilityService {
	if loc == nil {
		loc = time.UTC
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AvailabilityService{
		teacher:   teacher,
		bookings:  bookings,
		cache:     cache,
		teacherID: teacherID,
		loc:       loc,
		cacheTTL:  cacheTTL,
		logger:    logger,
	}
}

func (s *AvailabilityService) slotCacheKey(dayKey string) string {
	return fmt.Sprintf("slots:%s:%s", s.teacherID, dayKey)
}

// ResolveSlots computes the slot grid for the given calendar day. Order is
// always the canonical one so the client renders a stable grid.
func (s *AvailabilityService) ResolveSlots(ctx context.Context, day time.Time) ([]SlotStatus, error) {
	dayKey := slots.DayKey(day, s.loc)

	if s.cache != nil {
		var cached []SlotStatus
		if err := s.cache.Get(ctx, s.slotCacheKey(dayKey), &cached); err == nil {
			return cached, nil
		} else if !errors.Is(err, appErrors.ErrCacheMiss) {
			s.logger.Warn("slot cache read failed", zap.String("day", dayKey), zap.Error(err))
		}
	}

	availability, err := s.teacher.Availability(ctx)
	if err != nil {
		return nil, err
	}
	override := availability.TimeSlots[dayKey]

	start, end := slots.DayWindow(day, s.loc)
	booked, err := s.bookedLabels(ctx, start, end)
	if err != nil {
		return nil, err
	}

	grid := make([]SlotStatus, 0, len(slots.Canonical()))
	for _, label := range slots.Canonical() {
		enabled := true
		if override != nil {
			// Absence from the override map means enabled, not disabled.
			if flag, ok := override[label]; ok {
				enabled = flag
			}
		}
		if booked[label] {
			enabled = false
		}
		grid = append(grid, SlotStatus{
			ID:        slots.SlotID(label),
			Label:     label,
			Available: enabled,
		})
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, s.slotCacheKey(dayKey), grid, s.cacheTTL); err != nil {
			s.logger.Warn("slot cache write failed", zap.String("day", dayKey), zap.Error(err))
		}
	}
	return grid, nil
}

// BookedSlots buckets every committed booking's slot label by teacher-local
// day, restricted to the configured available dates.
func (s *AvailabilityService) BookedSlots(ctx context.Context, availability models.TeacherAvailability) (map[string][]string, error) {
	all, err := s.bookings.ListByTeacher(ctx, s.teacherID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load bookings")
	}

	dates := make(map[string]struct{}, len(availability.AvailableDates))
	for _, d := range availability.AvailableDates {
		dates[d] = struct{}{}
	}

	booked := make(map[string][]string)
	for _, b := range all {
		key := slots.DayKey(b.Date, s.loc)
		if _, ok := dates[key]; !ok {
			continue
		}
		booked[key] = append(booked[key], b.TimeSlot)
	}
	return booked, nil
}

// InvalidateDay drops the cached grid for a day after a booking or settings
// change touches it.
func (s *AvailabilityService) InvalidateDay(ctx context.Context, day time.Time) {
	if s.cache == nil {
		return
	}
	s.cache.Delete(ctx, s.slotCacheKey(slots.DayKey(day, s.loc)))
}

// InvalidateDates drops cached grids for the given YYYY-MM-DD keys.
func (s *AvailabilityService) InvalidateDates(ctx context.Context, dayKeys []string) {
	if s.cache == nil || len(dayKeys) == 0 {
		return
	}
	keys := make([]string, 0, len(dayKeys))
	for _, k := range dayKeys {
		keys = append(keys, s.slotCacheKey(k))
	}
	s.cache.Delete(ctx, keys...)
}

func (s *AvailabilityService) bookedLabels(ctx context.Context, start, end time.Time) (map[string]bool, error) {
	dayBookings, err := s.bookings.ListByDay(ctx, s.teacherID, start, end)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load bookings")
	}
	booked := make(map[string]bool, len(dayBookings))
	for _, b := range dayBookings {
		booked[b.TimeSlot] = true
	}
	return booked, nil
}
