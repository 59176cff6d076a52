package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/abhinaba-ghosh/sarodwala/internal/models"
	"github.com/abhinaba-ghosh/sarodwala/internal/service"
	"github.com/abhinaba-ghosh/sarodwala/internal/slots"
	appErrors "github.com/abhinaba-ghosh/sarodwala/pkg/errors"
	"github.com/abhinaba-ghosh/sarodwala/pkg/response"
)

type teacherService interface {
	Profile(ctx context.Context) (*models.Teacher, error)
	Availability(ctx context.Context) (models.TeacherAvailability, error)
	ReplaceAvailability(ctx context.Context, availability models.TeacherAvailability) error
}

type slotResolver interface {
	ResolveSlots(ctx context.Context, day time.Time) ([]service.SlotStatus, error)
	BookedSlots(ctx context.Context, availability models.TeacherAvailability) (map[string][]string, error)
	InvalidateDates(ctx context.Context, dayKeys []string)
}

// TeacherHandler wires the teacher profile and availability settings to HTTP.
type TeacherHandler struct {
	teacher  teacherService
	resolver slotResolver
	loc      *time.Location
}

// NewTeacherHandler constructs the handler.
func NewTeacherHandler(teacher teacherService, resolver slotResolver, loc *time.Location) *TeacherHandler {
	if loc == nil {
		loc = time.UTC
	}
	return &TeacherHandler{teacher: teacher, resolver: resolver, loc: loc}
}

// Profile handles GET /teacher.
func (h *TeacherHandler) Profile(c *gin.Context) {
	teacher, err := h.teacher.Profile(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, teacher)
}

// availabilityResponse is the settings payload plus the already-taken slots,
// and the resolved grid when a specific day was requested.
type availabilityResponse struct {
	AvailableDates []string                   `json:"availableDates"`
	TimeSlots      map[string]map[string]bool `json:"timeSlots"`
	BookedSlots    map[string][]string        `json:"bookedSlots"`
	Slots          []service.SlotStatus       `json:"slots,omitempty"`
}

// Availability handles GET /teacher/availability.
func (h *TeacherHandler) Availability(c *gin.Context) {
	ctx := c.Request.Context()

	availability, err := h.teacher.Availability(ctx)
	if err != nil {
		response.Error(c, err)
		return
	}

	booked, err := h.resolver.BookedSlots(ctx, availability)
	if err != nil {
		response.Error(c, err)
		return
	}

	resp := availabilityResponse{
		AvailableDates: availability.AvailableDates,
		TimeSlots:      availability.TimeSlots,
		BookedSlots:    booked,
	}

	if raw := c.Query("date"); raw != "" {
		day, err := slots.ParseDay(raw, h.loc)
		if err != nil {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "Invalid date parameter"))
			return
		}
		grid, err := h.resolver.ResolveSlots(ctx, day)
		if err != nil {
			response.Error(c, err)
			return
		}
		resp.Slots = grid
	}

	response.JSON(c, http.StatusOK, resp)
}

type replaceAvailabilityRequest struct {
	AvailableDates []string                   `json:"availableDates"`
	TimeSlots      map[string]map[string]bool `json:"timeSlots"`
}

// ReplaceAvailability handles PUT /teacher/availability.
func (h *TeacherHandler) ReplaceAvailability(c *gin.Context) {
	var req replaceAvailabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "Invalid availability payload"))
		return
	}

	availability := models.TeacherAvailability{
		AvailableDates: req.AvailableDates,
		TimeSlots:      req.TimeSlots,
	}
	if availability.AvailableDates == nil {
		availability.AvailableDates = []string{}
	}
	if availability.TimeSlots == nil {
		availability.TimeSlots = map[string]map[string]bool{}
	}

	if err := h.teacher.ReplaceAvailability(c.Request.Context(), availability); err != nil {
		response.Error(c, err)
		return
	}

	// New settings may change any day's grid; drop the cached ones.
	stale := availability.AvailableDates
	for key := range availability.TimeSlots {
		stale = append(stale, key)
	}
	h.resolver.InvalidateDates(c.Request.Context(), stale)

	response.Success(c)
}
