package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/abhinaba-ghosh/sarodwala/internal/models"
	"github.com/abhinaba-ghosh/sarodwala/internal/slots"
	"github.com/abhinaba-ghosh/sarodwala/pkg/config"
	appErrors "github.com/abhinaba-ghosh/sarodwala/pkg/errors"
)

const defaultAvailabilityWeeks = 4

type teacherRepository interface {
	Find(ctx context.Context, id string) (*models.Teacher, error)
	EnsureDefault(ctx context.Context, teacher *models.Teacher) error
	ReplaceAvailability(ctx context.Context, id string, availability models.TeacherAvailability) error
	UpsertAvailability(ctx context.Context, teacher *models.Teacher, availability models.TeacherAvailability) error
}

// TeacherService exposes the teacher profile and availability settings. The
// teacher identity comes from configuration; nothing in the request path picks
// a tenant.
type TeacherService struct {
	repo   teacherRepository
	cfg    config.TeacherConfig
	loc    *time.Location
	logger *zap.Logger
}

// NewTeacherService builds the service.
func NewTeacherService(repo teacherRepository, cfg config.TeacherConfig, loc *time.Location, logger *zap.Logger) *TeacherService {
	if loc == nil {
		loc = time.UTC
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TeacherService{repo: repo, cfg: cfg, loc: loc, logger: logger}
}

// TeacherID returns the configured tenant id.
func (s *TeacherService) TeacherID() string {
	return s.cfg.ID
}

func (s *TeacherService) defaultTeacher() *models.Teacher {
	return &models.Teacher{
		ID:             s.cfg.ID,
		Name:           s.cfg.DefaultName,
		Instrument:     s.cfg.DefaultInstrument,
		Bio:            s.cfg.DefaultBio,
		ProfilePicture: s.cfg.DefaultProfilePicture,
	}
}

// DefaultAvailability synthesises the out-of-the-box calendar: the next four
// Wednesdays with every canonical slot enabled (an empty override map means
// all enabled).
func (s *TeacherService) DefaultAvailability(now time.Time) models.TeacherAvailability {
	wednesdays := slots.NextWednesdays(now, defaultAvailabilityWeeks, s.loc)
	dates := make([]string, 0, len(wednesdays))
	for _, d := range wednesdays {
		dates = append(dates, slots.DayKey(d, s.loc))
	}
	return models.TeacherAvailability{
		AvailableDates: dates,
		TimeSlots:      map[string]map[string]bool{},
	}
}

// EnsureDefaults seeds the teacher row on startup when no record exists.
func (s *TeacherService) EnsureDefaults(ctx context.Context) error {
	teacher := s.defaultTeacher()
	availability := s.DefaultAvailability(time.Now())

	dates, err := json.Marshal(availability.AvailableDates)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to seed teacher")
	}
	teacher.AvailableDates = dates
	teacher.TimeSlots = []byte("{}")

	if err := s.repo.EnsureDefault(ctx, teacher); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to seed teacher")
	}
	return nil
}

// Profile returns the stored teacher, or the configured default when no row
// exists yet. The default is not persisted here; EnsureDefaults owns seeding.
func (s *TeacherService) Profile(ctx context.Context) (*models.Teacher, error) {
	teacher, err := s.repo.Find(ctx, s.cfg.ID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return s.defaultTeacher(), nil
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load teacher")
	}
	return teacher, nil
}

// Availability returns the configured calendar. A missing teacher document
// synthesises and persists the default rather than failing.
func (s *TeacherService) Availability(ctx context.Context) (models.TeacherAvailability, error) {
	teacher, err := s.repo.Find(ctx, s.cfg.ID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			availability := s.DefaultAvailability(time.Now())
			if upsertErr := s.repo.UpsertAvailability(ctx, s.defaultTeacher(), availability); upsertErr != nil {
				return models.TeacherAvailability{}, appErrors.Wrap(upsertErr, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to initialise availability")
			}
			return availability, nil
		}
		return models.TeacherAvailability{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load availability")
	}

	availability := models.TeacherAvailability{
		AvailableDates: []string{},
		TimeSlots:      map[string]map[string]bool{},
	}
	if len(teacher.AvailableDates) > 0 {
		if err := json.Unmarshal(teacher.AvailableDates, &availability.AvailableDates); err != nil {
			return models.TeacherAvailability{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "corrupt availability record")
		}
	}
	if len(teacher.TimeSlots) > 0 {
		if err := json.Unmarshal(teacher.TimeSlots, &availability.TimeSlots); err != nil {
			return models.TeacherAvailability{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "corrupt availability record")
		}
	}
	if availability.AvailableDates == nil {
		availability.AvailableDates = []string{}
	}
	if availability.TimeSlots == nil {
		availability.TimeSlots = map[string]map[string]bool{}
	}
	return availability, nil
}

// ReplaceAvailability overwrites the calendar wholesale. The update-only path
// runs first; a missing row falls through to the create-or-update path so the
// operation never reports not-found.
func (s *TeacherService) ReplaceAvailability(ctx context.Context, availability models.TeacherAvailability) error {
	err := s.repo.ReplaceAvailability(ctx, s.cfg.ID, availability)
	if err == nil {
		return nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update availability")
	}

	s.logger.Info("teacher record missing on availability update, creating", zap.String("teacher_id", s.cfg.ID))
	if err := s.repo.UpsertAvailability(ctx, s.defaultTeacher(), availability); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update availability")
	}
	return nil
}
