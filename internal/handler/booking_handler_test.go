package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/abhinaba-ghosh/sarodwala/internal/models"
	"github.com/abhinaba-ghosh/sarodwala/internal/service"
	appErrors "github.com/abhinaba-ghosh/sarodwala/pkg/errors"
)

func performRequest(router *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	return resp
}

type bookingServiceStub struct {
	booking   *models.Booking
	bookings  []models.Booking
	submitErr error
	listErr   error
	cancelErr error
	cancelled string
	listedDay time.Time
}

func (s *bookingServiceStub) Submit(_ context.Context, _ service.SubmitBookingRequest) (*models.Booking, error) {
	if s.submitErr != nil {
		return nil, s.submitErr
	}
	return s.booking, nil
}

func (s *bookingServiceStub) ListAll(_ context.Context) ([]models.Booking, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	return s.bookings, nil
}

func (s *bookingServiceStub) ListByDate(_ context.Context, day time.Time) ([]models.Booking, error) {
	s.listedDay = day
	if s.listErr != nil {
		return nil, s.listErr
	}
	return s.bookings, nil
}

func (s *bookingServiceStub) Cancel(_ context.Context, id string) error {
	s.cancelled = id
	return s.cancelErr
}

type exporterStub struct {
	payload     []byte
	contentType string
	filename    string
	err         error
	gotFormat   service.ExportFormat
}

func (s *exporterStub) Bookings(_ context.Context, format service.ExportFormat) ([]byte, string, string, error) {
	s.gotFormat = format
	if s.err != nil {
		return nil, "", "", s.err
	}
	return s.payload, s.contentType, s.filename, nil
}

func buildBookingRouter(svc *bookingServiceStub, exporter *exporterStub) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewBookingHandler(svc, exporter, time.UTC)
	router := gin.New()
	router.POST("/bookings", h.Create)
	router.GET("/bookings/all", h.ListAll)
	router.GET("/bookings/date", h.ListByDate)
	router.GET("/bookings/export", h.Export)
	router.DELETE("/bookings/:id", h.Delete)
	return router
}

const validBookingPayload = `{"studentName":"Asha Rao","phoneNumber":"9876543210","date":"2025-05-21","timeSlot":"7:00 PM","whatsAppOptIn":true}`

func TestBookingHandlerCreate(t *testing.T) {
	svc := &bookingServiceStub{booking: &models.Booking{ID: "bk-1", StudentName: "Asha Rao", TimeSlot: "7:00 PM"}}
	router := buildBookingRouter(svc, &exporterStub{})

	req, _ := http.NewRequest(http.MethodPost, "/bookings", bytes.NewBufferString(validBookingPayload))
	req.Header.Set("Content-Type", "application/json")
	resp := performRequest(router, req)

	require.Equal(t, http.StatusCreated, resp.Code)
	require.Contains(t, resp.Body.String(), `"id":"bk-1"`)
}

func TestBookingHandlerCreateBadPayload(t *testing.T) {
	router := buildBookingRouter(&bookingServiceStub{}, &exporterStub{})

	req, _ := http.NewRequest(http.MethodPost, "/bookings", bytes.NewBufferString(`{not json`))
	req.Header.Set("Content-Type", "application/json")
	resp := performRequest(router, req)

	require.Equal(t, http.StatusBadRequest, resp.Code)
	require.Contains(t, resp.Body.String(), `"error":"Invalid booking payload"`)
}

func TestBookingHandlerCreateConflict(t *testing.T) {
	svc := &bookingServiceStub{submitErr: appErrors.Clone(appErrors.ErrConflict, "slot already booked")}
	router := buildBookingRouter(svc, &exporterStub{})

	req, _ := http.NewRequest(http.MethodPost, "/bookings", bytes.NewBufferString(validBookingPayload))
	req.Header.Set("Content-Type", "application/json")
	resp := performRequest(router, req)

	require.Equal(t, http.StatusConflict, resp.Code)
	require.Contains(t, resp.Body.String(), `"error":"slot already booked"`)
}

func TestBookingHandlerListAll(t *testing.T) {
	svc := &bookingServiceStub{bookings: []models.Booking{{ID: "bk-1"}, {ID: "bk-2"}}}
	router := buildBookingRouter(svc, &exporterStub{})

	req, _ := http.NewRequest(http.MethodGet, "/bookings/all", nil)
	resp := performRequest(router, req)

	require.Equal(t, http.StatusOK, resp.Code)
	var got []models.Booking
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &got))
	require.Len(t, got, 2)
}

func TestBookingHandlerListByDate(t *testing.T) {
	svc := &bookingServiceStub{bookings: []models.Booking{{ID: "bk-1"}}}
	router := buildBookingRouter(svc, &exporterStub{})

	req, _ := http.NewRequest(http.MethodGet, "/bookings/date?date=2025-05-21", nil)
	resp := performRequest(router, req)

	require.Equal(t, http.StatusOK, resp.Code)
	require.Equal(t, 2025, svc.listedDay.Year())
	require.Equal(t, time.May, svc.listedDay.Month())
	require.Equal(t, 21, svc.listedDay.Day())
}

func TestBookingHandlerListByDateMissingParam(t *testing.T) {
	router := buildBookingRouter(&bookingServiceStub{}, &exporterStub{})

	req, _ := http.NewRequest(http.MethodGet, "/bookings/date", nil)
	resp := performRequest(router, req)

	require.Equal(t, http.StatusBadRequest, resp.Code)
	require.Contains(t, resp.Body.String(), `"error":"Date parameter is required"`)
}

func TestBookingHandlerListByDateBadParam(t *testing.T) {
	router := buildBookingRouter(&bookingServiceStub{}, &exporterStub{})

	req, _ := http.NewRequest(http.MethodGet, "/bookings/date?date=21-05-2025", nil)
	resp := performRequest(router, req)

	require.Equal(t, http.StatusBadRequest, resp.Code)
	require.Contains(t, resp.Body.String(), `"error":"Invalid date parameter"`)
}

func TestBookingHandlerExport(t *testing.T) {
	exporter := &exporterStub{
		payload:     []byte("Date,Time Slot\n"),
		contentType: "text/csv",
		filename:    "bookings-2025-05-21.csv",
	}
	router := buildBookingRouter(&bookingServiceStub{}, exporter)

	req, _ := http.NewRequest(http.MethodGet, "/bookings/export?format=csv", nil)
	resp := performRequest(router, req)

	require.Equal(t, http.StatusOK, resp.Code)
	require.Equal(t, service.ExportFormatCSV, exporter.gotFormat)
	require.Equal(t, "text/csv", resp.Header().Get("Content-Type"))
	require.Equal(t, `attachment; filename="bookings-2025-05-21.csv"`, resp.Header().Get("Content-Disposition"))
	require.Equal(t, "Date,Time Slot\n", resp.Body.String())
}

func TestBookingHandlerExportDefaultsToCSV(t *testing.T) {
	exporter := &exporterStub{payload: []byte("x"), contentType: "text/csv", filename: "bookings.csv"}
	router := buildBookingRouter(&bookingServiceStub{}, exporter)

	req, _ := http.NewRequest(http.MethodGet, "/bookings/export", nil)
	resp := performRequest(router, req)

	require.Equal(t, http.StatusOK, resp.Code)
	require.Equal(t, service.ExportFormatCSV, exporter.gotFormat)
}

func TestBookingHandlerDelete(t *testing.T) {
	svc := &bookingServiceStub{}
	router := buildBookingRouter(svc, &exporterStub{})

	req, _ := http.NewRequest(http.MethodDelete, "/bookings/bk-1", nil)
	resp := performRequest(router, req)

	require.Equal(t, http.StatusOK, resp.Code)
	require.Equal(t, "bk-1", svc.cancelled)
	require.Contains(t, resp.Body.String(), `"success":true`)
}

func TestBookingHandlerDeleteNotFound(t *testing.T) {
	svc := &bookingServiceStub{cancelErr: appErrors.Clone(appErrors.ErrNotFound, "Booking not found")}
	router := buildBookingRouter(svc, &exporterStub{})

	req, _ := http.NewRequest(http.MethodDelete, "/bookings/missing", nil)
	resp := performRequest(router, req)

	require.Equal(t, http.StatusNotFound, resp.Code)
	require.Contains(t, resp.Body.String(), `"error":"Booking not found"`)
}
