package router

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/careport/booking-gateway/internal/availability"
	"github.com/careport/booking-gateway/internal/hms"
	"github.com/careport/booking-gateway/internal/http/handlers"
	"github.com/careport/booking-gateway/pkg/logging"
)

type staticDirectory struct{}

func (staticDirectory) ListDepartments(context.Context) ([]hms.Department, error) {
	return []hms.Department{{DepartmentID: 1, Department: "Cardiology"}}, nil
}

func (staticDirectory) ListConsultants(context.Context, int64) ([]hms.Consultant, error) {
	return nil, nil
}

func (staticDirectory) ListSlots(context.Context, int64, string) ([]hms.Slot, error) {
	return nil, nil
}

type staticSearcher struct{}

func (staticSearcher) SearchAppointments(context.Context, hms.AppointmentSearch) ([]hms.Appointment, error) {
	return nil, nil
}

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()

	logger := logging.Default()
	svc := availability.NewService(staticDirectory{}, logger)

	cfg := &Config{
		Logger:              logger,
		AvailabilityHandler: availability.NewHandler(svc, logger),
		AdminAppointments:   handlers.NewAdminAppointmentsHandler(staticSearcher{}, logger),
		AdminJWTSecret:      "test-secret",
		CORSAllowedOrigins:  []string{"https://booking.careport.example"},
	}
	return New(cfg)
}

func TestRouterHealthEndpoint(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rr.Code)
	}
	var resp map[string]string
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode health response: %v", err)
	}
	if resp["status"] != "ok" {
		t.Errorf("expected status 'ok', got %q", resp["status"])
	}
}

func TestRouterAvailabilityMounted(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/availability/departments", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rr.Code)
	}
}

func TestRouterAdminRequiresJWT(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/admin/appointments", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected status %d, got %d", http.StatusUnauthorized, rr.Code)
	}
}

func TestRouterAdminAcceptsSignedToken(t *testing.T) {
	router := newTestRouter(t)

	claims := jwt.RegisteredClaims{
		Subject:   "front-desk",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/admin/appointments", nil)
	req.Header.Set("Authorization", "Bearer "+signed)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rr.Code)
	}
}

func TestRouterCORSPreflight(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/availability/departments", nil)
	req.Header.Set("Origin", "https://booking.careport.example")
	req.Header.Set("Access-Control-Request-Method", "GET")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusNoContent {
		t.Fatalf("expected status %d, got %d", http.StatusNoContent, rr.Code)
	}
	if got := rr.Header().Get("Access-Control-Allow-Origin"); got != "https://booking.careport.example" {
		t.Fatalf("expected allow origin header, got %q", got)
	}
}
