package hms

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientInjectsBearerToken(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		fmt.Fprint(w, `{"departments":[{"DepartmentID":1,"Department":"Cardiology"}]}`)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, StaticTokenSource("svc-token"), nil)
	departments, err := client.ListDepartments(context.Background())
	require.NoError(t, err)
	require.Len(t, departments, 1)
	assert.Equal(t, "Bearer svc-token", gotAuth)
	assert.Equal(t, "Cardiology", departments[0].Department)
}

func TestClientSurfacesServerMessageVerbatim(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		fmt.Fprint(w, `{"message":"Slot is no longer available"}`)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, nil, nil)
	_, err := client.CreateAppointment(context.Background(), AppointmentCreateRequest{})
	require.Error(t, err)

	var rejection *ServerRejection
	require.True(t, errors.As(err, &rejection))
	assert.Equal(t, http.StatusConflict, rejection.StatusCode)
	assert.Equal(t, "Slot is no longer available", rejection.Message)
	assert.Equal(t, "Slot is no longer available", UserMessage(err))
}

func TestClientClassifiesTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // connection refused

	client := NewClient(srv.URL, nil, nil)
	_, err := client.ListSlots(context.Background(), 7, "2026-09-01")
	require.Error(t, err)

	var netErr *NetworkError
	require.True(t, errors.As(err, &netErr))
	assert.Contains(t, UserMessage(err), "check your connection")
}

func TestClientUnauthorizedMatchesSentinelAndFiresHook(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"message":"token expired"}`)
	}))
	defer srv.Close()

	cleared := false
	client := NewClient(srv.URL, StaticTokenSource("stale"), nil).
		WithUnauthorizedHook(func() { cleared = true })

	_, err := client.ListConsultants(context.Background(), 0)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnauthorized))
	assert.True(t, cleared)
}

func TestCreateAppointmentRejectsMissingID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"appointment":{}}`)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, nil, nil)
	_, err := client.CreateAppointment(context.Background(), AppointmentCreateRequest{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "OPDOnlineAppointmentID")
}

func TestSearchAppointmentsBuildsQuery(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		fmt.Fprint(w, `{"appointments":[]}`)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, nil, nil)
	_, err := client.SearchAppointments(context.Background(), AppointmentSearch{
		MobileNo:         "9876543210",
		ConsultationDate: "2026-09-01",
		PendingOnly:      true,
	})
	require.NoError(t, err)
	assert.Contains(t, gotQuery, "mobileNo=9876543210")
	assert.Contains(t, gotQuery, "date=2026-09-01")
	assert.Contains(t, gotQuery, "pending=1")
}
