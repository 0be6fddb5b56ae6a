package availability

import (
	"context"
	"fmt"
	"sort"

	"github.com/careport/booking-gateway/internal/hms"
	"github.com/careport/booking-gateway/pkg/logging"
)

// Directory is the slice of the HMS client the query layer depends on.
type Directory interface {
	ListDepartments(ctx context.Context) ([]hms.Department, error)
	ListConsultants(ctx context.Context, departmentID int64) ([]hms.Consultant, error)
	ListSlots(ctx context.Context, consultantID int64, date string) ([]hms.Slot, error)
}

// Service exposes filtered and grouped views over HMS reference data.
type Service struct {
	hms    Directory
	logger *logging.Logger
}

// NewService constructs an availability query service.
func NewService(directory Directory, logger *logging.Logger) *Service {
	if directory == nil {
		panic("availability: directory required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{hms: directory, logger: logger}
}

// Departments returns department reference data.
func (s *Service) Departments(ctx context.Context) ([]hms.Department, error) {
	return s.hms.ListDepartments(ctx)
}

// Doctors returns the consultants for a department.
func (s *Service) Doctors(ctx context.Context, departmentID int64) ([]hms.Consultant, error) {
	return s.hms.ListConsultants(ctx, departmentID)
}

// Doctor resolves a single consultant within a department.
func (s *Service) Doctor(ctx context.Context, departmentID, consultantID int64) (*hms.Consultant, error) {
	doctors, err := s.hms.ListConsultants(ctx, departmentID)
	if err != nil {
		return nil, err
	}
	for i := range doctors {
		if doctors[i].ConsultantID == consultantID {
			return &doctors[i], nil
		}
	}
	return nil, fmt.Errorf("availability: consultant %d not found in department %d", consultantID, departmentID)
}

// AvailableSlots returns the ordered slot sequence for a doctor and date.
func (s *Service) AvailableSlots(ctx context.Context, consultantID int64, date string) ([]hms.Slot, error) {
	slots, err := s.hms.ListSlots(ctx, consultantID, date)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(slots, func(i, j int) bool {
		return slots[i].SlotTime < slots[j].SlotTime
	})
	return slots, nil
}

// ValidateSelectable re-checks a slot against fresh availability at
// submission time so a stale render cannot double-book.
func (s *Service) ValidateSelectable(ctx context.Context, consultantID int64, date string, slotID int64) (*hms.Slot, error) {
	slots, err := s.hms.ListSlots(ctx, consultantID, date)
	if err != nil {
		return nil, err
	}
	for i := range slots {
		if slots[i].SlotID != slotID {
			continue
		}
		if !Selectable(slots[i]) {
			return nil, fmt.Errorf("availability: slot %d is %s", slotID, DisplayStatus(slots[i]))
		}
		return &slots[i], nil
	}
	return nil, fmt.Errorf("availability: slot %d not found for consultant %d on %s", slotID, consultantID, date)
}
