package availability

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/careport/booking-gateway/internal/hms"
)

type fakeDirectory struct {
	slots       []hms.Slot
	consultants []hms.Consultant
	listCalls   int
}

func (f *fakeDirectory) ListDepartments(ctx context.Context) ([]hms.Department, error) {
	return []hms.Department{{DepartmentID: 1, Department: "ENT"}}, nil
}

func (f *fakeDirectory) ListConsultants(ctx context.Context, departmentID int64) ([]hms.Consultant, error) {
	return f.consultants, nil
}

func (f *fakeDirectory) ListSlots(ctx context.Context, consultantID int64, date string) ([]hms.Slot, error) {
	f.listCalls++
	return f.slots, nil
}

func TestAvailableSlotsOrdered(t *testing.T) {
	dir := &fakeDirectory{slots: []hms.Slot{
		{SlotID: 2, SlotTime: "14:00:00"},
		{SlotID: 1, SlotTime: "09:00:00"},
	}}
	svc := NewService(dir, nil)

	slots, err := svc.AvailableSlots(context.Background(), 7, "2026-09-01")
	require.NoError(t, err)
	assert.Equal(t, int64(1), slots[0].SlotID)
	assert.Equal(t, int64(2), slots[1].SlotID)
}

func TestValidateSelectableRefetches(t *testing.T) {
	dir := &fakeDirectory{slots: []hms.Slot{
		{SlotID: 5, SlotTime: "09:00:00", Status: hms.SlotAvailable, AvailableSlots: 1, SlotToken: "tok-5"},
		{SlotID: 6, SlotTime: "09:30:00", Status: hms.SlotAvailable, AvailableSlots: 0},
	}}
	svc := NewService(dir, nil)

	slot, err := svc.ValidateSelectable(context.Background(), 7, "2026-09-01", 5)
	require.NoError(t, err)
	assert.Equal(t, "tok-5", slot.SlotToken)
	assert.Equal(t, 1, dir.listCalls)

	_, err = svc.ValidateSelectable(context.Background(), 7, "2026-09-01", 6)
	require.Error(t, err)

	_, err = svc.ValidateSelectable(context.Background(), 7, "2026-09-01", 99)
	require.Error(t, err)
}

func TestDoctorLookup(t *testing.T) {
	dir := &fakeDirectory{consultants: []hms.Consultant{
		{ConsultantID: 3, ConsultantName: "Dr. Rao", Fee: 500},
	}}
	svc := NewService(dir, nil)

	doctor, err := svc.Doctor(context.Background(), 1, 3)
	require.NoError(t, err)
	assert.Equal(t, "Dr. Rao", doctor.ConsultantName)

	_, err = svc.Doctor(context.Background(), 1, 4)
	require.Error(t, err)
}
