package handler

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/abhinaba-ghosh/sarodwala/internal/models"
	"github.com/abhinaba-ghosh/sarodwala/internal/service"
	"github.com/abhinaba-ghosh/sarodwala/internal/slots"
	appErrors "github.com/abhinaba-ghosh/sarodwala/pkg/errors"
	"github.com/abhinaba-ghosh/sarodwala/pkg/response"
)

type bookingService interface {
	Submit(ctx context.Context, req service.SubmitBookingRequest) (*models.Booking, error)
	ListAll(ctx context.Context) ([]models.Booking, error)
	ListByDate(ctx context.Context, day time.Time) ([]models.Booking, error)
	Cancel(ctx context.Context, id string) error
}

type bookingExporter interface {
	Bookings(ctx context.Context, format service.ExportFormat) ([]byte, string, string, error)
}

// BookingHandler wires the booking flow to HTTP.
type BookingHandler struct {
	bookings bookingService
	exports  bookingExporter
	loc      *time.Location
}

// NewBookingHandler constructs the handler.
func NewBookingHandler(bookings bookingService, exports bookingExporter, loc *time.Location) *BookingHandler {
	if loc == nil {
		loc = time.UTC
	}
	return &BookingHandler{bookings: bookings, exports: exports, loc: loc}
}

// Create handles POST /bookings.
func (h *BookingHandler) Create(c *gin.Context) {
	var req service.SubmitBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "Invalid booking payload"))
		return
	}

	booking, err := h.bookings.Submit(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, booking)
}

// ListAll handles GET /bookings/all.
func (h *BookingHandler) ListAll(c *gin.Context) {
	bookings, err := h.bookings.ListAll(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, bookings)
}

// ListByDate handles GET /bookings/date.
func (h *BookingHandler) ListByDate(c *gin.Context) {
	raw := c.Query("date")
	if raw == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "Date parameter is required"))
		return
	}
	day, err := slots.ParseDay(raw, h.loc)
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "Invalid date parameter"))
		return
	}

	bookings, err := h.bookings.ListByDate(c.Request.Context(), day)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, bookings)
}

// Export handles GET /bookings/export.
func (h *BookingHandler) Export(c *gin.Context) {
	format := service.ExportFormat(c.DefaultQuery("format", string(service.ExportFormatCSV)))

	payload, contentType, filename, err := h.exports.Bookings(c.Request.Context(), format)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, contentType, payload)
}

// Delete handles DELETE /bookings/:id.
func (h *BookingHandler) Delete(c *gin.Context) {
	if err := h.bookings.Cancel(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c)
}
