package availability

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/careport/booking-gateway/internal/hms"
)

func TestSlotsEndpointGroupsAndDecorates(t *testing.T) {
	dir := &fakeDirectory{slots: []hms.Slot{
		{SlotID: 1, SlotTime: "09:00:00", Status: hms.SlotAvailable, AvailableSlots: 2},
		{SlotID: 2, SlotTime: "13:00:00", Status: hms.SlotHold, AvailableSlots: 1},
		{SlotID: 3, SlotTime: "18:00:00", Status: hms.SlotAvailable, AvailableSlots: 0},
	}}
	h := NewHandler(NewService(dir, nil), nil)

	req := httptest.NewRequest(http.MethodGet, "/doctors/7/slots?date=2026-09-01", nil)
	rec := httptest.NewRecorder()
	h.Routes().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var payload struct {
		Slots map[string][]slotView `json:"slots"`
		Total int                   `json:"total"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))

	assert.Equal(t, 3, payload.Total)
	require.Len(t, payload.Slots["morning"], 1)
	require.Len(t, payload.Slots["afternoon"], 1)
	require.Len(t, payload.Slots["evening"], 1)

	assert.True(t, payload.Slots["morning"][0].Selectable)
	assert.Equal(t, "9:00 AM", payload.Slots["morning"][0].DisplayTime)
	assert.Equal(t, "On Hold", payload.Slots["afternoon"][0].DisplayStatus)
	assert.False(t, payload.Slots["afternoon"][0].Selectable)
	assert.Equal(t, hms.SlotBooked, payload.Slots["evening"][0].DisplayStatus)
}

func TestSlotsEndpointEmptyState(t *testing.T) {
	dir := &fakeDirectory{}
	h := NewHandler(NewService(dir, nil), nil)

	req := httptest.NewRequest(http.MethodGet, "/doctors/7/slots?date=2026-09-01", nil)
	rec := httptest.NewRecorder()
	h.Routes().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var payload struct {
		Total int `json:"total"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	assert.Zero(t, payload.Total)
}

func TestSlotsEndpointRequiresDate(t *testing.T) {
	h := NewHandler(NewService(&fakeDirectory{}, nil), nil)

	req := httptest.NewRequest(http.MethodGet, "/doctors/7/slots", nil)
	rec := httptest.NewRecorder()
	h.Routes().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
