package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zapys/internal/config"
	"zapys/internal/models"
)

type stubBookingService struct {
	all    []*models.Booking
	byUser map[string][]*models.Booking
	taken  map[string]bool
}

func (s *stubBookingService) CreateBooking(ctx context.Context, owner, date, time string) (*models.Booking, error) {
	return nil, nil
}
func (s *stubBookingService) RescheduleBooking(ctx context.Context, id int64, date, time string) (*models.Booking, error) {
	return nil, nil
}
func (s *stubBookingService) CancelBooking(ctx context.Context, id int64) error { return nil }
func (s *stubBookingService) GetBookingForOwner(ctx context.Context, id int64, owner string) (*models.Booking, error) {
	return nil, nil
}
func (s *stubBookingService) GetUserBookings(ctx context.Context, owner string) ([]*models.Booking, error) {
	return s.byUser[owner], nil
}
func (s *stubBookingService) ListBookings(ctx context.Context) ([]*models.Booking, error) {
	return s.all, nil
}
func (s *stubBookingService) IsSlotTaken(ctx context.Context, date, time string) (bool, error) {
	return s.taken[date+" "+time], nil
}
func (s *stubBookingService) CountBookings(ctx context.Context) (int64, error) {
	return int64(len(s.all)), nil
}
func (s *stubBookingService) RequestExport(ctx context.Context, requestedBy, chatID int64) error {
	return nil
}

func newTestServer(cfg config.APIConfig, svc *stubBookingService) *HTTPServer {
	logger := zerolog.Nop()
	if svc == nil {
		svc = &stubBookingService{}
	}
	return NewHTTPServer(cfg, svc, &logger)
}

func authedConfig() config.APIConfig {
	return config.APIConfig{
		Enabled: true,
		HTTP:    config.APIHTTPConfig{Enabled: true, Port: 8080},
		Auth: config.APIAuthConfig{
			Enabled:      true,
			HeaderAPIKey: "x-api-key",
			HeaderExtra:  "x-api-extra",
			APIKeys: []config.APIClientKey{
				{Key: "key-1", Extra: "extra-1", Name: "full"},
				{Key: "key-2", Extra: "extra-2", Name: "slots-only", Permissions: []string{"read:slots"}},
			},
		},
	}
}

func doRequest(t *testing.T, srv *HTTPServer, method, target string, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	return rec
}

func TestHealthWithoutAuthWhenDisabled(t *testing.T) {
	srv := newTestServer(config.APIConfig{}, nil)

	rec := doRequest(t, srv, http.MethodGet, "/api/v1/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAuthRequired(t *testing.T) {
	srv := newTestServer(authedConfig(), nil)

	rec := doRequest(t, srv, http.MethodGet, "/api/v1/bookings", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doRequest(t, srv, http.MethodGet, "/api/v1/bookings", map[string]string{
		"x-api-key":   "key-1",
		"x-api-extra": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doRequest(t, srv, http.MethodGet, "/api/v1/bookings", map[string]string{
		"x-api-key":   "key-1",
		"x-api-extra": "extra-1",
	})
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestPermissionDenied(t *testing.T) {
	srv := newTestServer(authedConfig(), nil)

	headers := map[string]string{"x-api-key": "key-2", "x-api-extra": "extra-2"}

	rec := doRequest(t, srv, http.MethodGet, "/api/v1/bookings", headers)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = doRequest(t, srv, http.MethodGet, "/api/v1/slots/2024-01-05?time=10:00", headers)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRateLimit(t *testing.T) {
	cfg := authedConfig()
	cfg.RateLimit = config.APIRateLimitConfig{RPS: 0.001, Burst: 1}
	srv := newTestServer(cfg, nil)

	headers := map[string]string{"x-api-key": "key-1", "x-api-extra": "extra-1"}

	rec := doRequest(t, srv, http.MethodGet, "/api/v1/health", headers)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(t, srv, http.MethodGet, "/api/v1/health", headers)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
}

func TestBookingsEndpoint(t *testing.T) {
	svc := &stubBookingService{
		all: []*models.Booking{
			{ID: 1, Owner: "alice", Date: "2024-01-05", Time: "10:00"},
			{ID: 2, Owner: "bob", Date: "2024-01-05", Time: "11:00"},
		},
		byUser: map[string][]*models.Booking{
			"alice": {{ID: 1, Owner: "alice", Date: "2024-01-05", Time: "10:00"}},
		},
	}
	srv := newTestServer(config.APIConfig{}, svc)

	rec := doRequest(t, srv, http.MethodGet, "/api/v1/bookings", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Bookings []models.Booking `json:"bookings"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp.Bookings, 2)

	rec = doRequest(t, srv, http.MethodGet, "/api/v1/bookings?owner=alice", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Bookings, 1)
	assert.Equal(t, "alice", resp.Bookings[0].Owner)

	rec = doRequest(t, srv, http.MethodPost, "/api/v1/bookings", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestSlotEndpoint(t *testing.T) {
	svc := &stubBookingService{taken: map[string]bool{"2024-01-05 10:00": true}}
	srv := newTestServer(config.APIConfig{}, svc)

	rec := doRequest(t, srv, http.MethodGet, "/api/v1/slots/2024-01-05?time=10:00", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Date  string `json:"date"`
		Time  string `json:"time"`
		Taken bool   `json:"taken"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Taken)

	rec = doRequest(t, srv, http.MethodGet, "/api/v1/slots/2024-01-05?time=11:00", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Taken)

	rec = doRequest(t, srv, http.MethodGet, "/api/v1/slots/05.01.2024?time=10:00", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doRequest(t, srv, http.MethodGet, "/api/v1/slots/2024-1-5?time=10:00", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// дата проверяется по шаблону, календарная корректность не требуется
	rec = doRequest(t, srv, http.MethodGet, "/api/v1/slots/2024-13-40?time=10:00", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(t, srv, http.MethodGet, "/api/v1/slots/2024-01-05", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doRequest(t, srv, http.MethodGet, "/api/v1/slots/2024-01-05?time=9:00", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
