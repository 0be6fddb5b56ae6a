package booking

import (
	"time"

	"github.com/careport/booking-gateway/internal/hms"
)

// Step is a wizard stage. Steps are ordered: forward movement happens only
// through operations, back-transitions may target any earlier step.
type Step int

const (
	StepChoosingSlot Step = iota
	StepPatientDetails
	StepPayment
	StepConfirmation
)

func (s Step) String() string {
	switch s {
	case StepChoosingSlot:
		return "choosing_slot"
	case StepPatientDetails:
		return "patient_details"
	case StepPayment:
		return "payment"
	case StepConfirmation:
		return "confirmation"
	}
	return "unknown"
}

// PaymentStatus is the payment sub-state within the Payment step.
type PaymentStatus string

const (
	PaymentIdle       PaymentStatus = "idle"
	PaymentProcessing PaymentStatus = "processing"
	PaymentSuccess    PaymentStatus = "success"
	PaymentFailed     PaymentStatus = "failed"
	PaymentAbandoned  PaymentStatus = "abandoned"
	// PaymentPartial marks a recorded-but-unfinalized payment. It is terminal
	// for self-service retry; reconciliation is manual.
	PaymentPartial PaymentStatus = "partial_confirmation"
)

// PatientData identifies the patient. An empty MRNo means a new patient.
type PatientData struct {
	PatientName string `json:"PatientName"`
	MobileNo    string `json:"MobileNo"`
	MRNo        string `json:"MRNo,omitempty"`
	Email       string `json:"Email,omitempty"`
}

// PaymentState tracks the in-flight payment attempt.
type PaymentState struct {
	Status          PaymentStatus `json:"status"`
	OrderID         string        `json:"order_id,omitempty"`
	TransactionID   string        `json:"transaction_id,omitempty"`
	ProcessingSince *time.Time    `json:"processing_since,omitempty"`
}

// State is the full wizard state. It is persisted under a generated temporary
// key after every transition so an in-flight booking survives page reloads.
type State struct {
	Key  string `json:"key"`
	Step Step   `json:"step"`

	DepartmentID int64           `json:"department_id,omitempty"`
	Doctor       *hms.Consultant `json:"doctor,omitempty"`
	Date         string          `json:"date,omitempty"`
	SlotID       int64           `json:"slot_id,omitempty"`
	SlotToken    string          `json:"slot_token,omitempty"`

	Patient PatientData `json:"patient"`
	Remarks string      `json:"remarks,omitempty"`

	// AppointmentID is the server-assigned OPDOnlineAppointmentID, zero until
	// the create call succeeds.
	AppointmentID int64 `json:"appointment_id,omitempty"`

	Payment PaymentState `json:"payment"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// draftComplete reports whether every field required for appointment creation
// is present.
func (s *State) draftComplete() *ValidationError {
	switch {
	case s.DepartmentID == 0:
		return &ValidationError{Field: "department", Reason: "department is required"}
	case s.Doctor == nil:
		return &ValidationError{Field: "doctor", Reason: "doctor is required"}
	case s.Date == "":
		return &ValidationError{Field: "date", Reason: "consultation date is required"}
	case s.SlotID == 0:
		return &ValidationError{Field: "slot", Reason: "slot is required"}
	case s.Patient.PatientName == "":
		return &ValidationError{Field: "patient_name", Reason: "patient name is required"}
	case s.Patient.MobileNo == "":
		return &ValidationError{Field: "mobile_no", Reason: "mobile number is required"}
	}
	return nil
}
