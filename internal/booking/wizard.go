package booking

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/careport/booking-gateway/internal/hms"
	"github.com/careport/booking-gateway/internal/observability/metrics"
	"github.com/careport/booking-gateway/internal/payments"
	"github.com/careport/booking-gateway/pkg/logging"
)

// Backend is the slice of the HMS client the wizard uses directly.
type Backend interface {
	CreateAppointment(ctx context.Context, req hms.AppointmentCreateRequest) (*hms.Appointment, error)
}

// Availability resolves doctors and re-validates slots at submission time.
type Availability interface {
	Doctor(ctx context.Context, departmentID, consultantID int64) (*hms.Consultant, error)
	ValidateSelectable(ctx context.Context, consultantID int64, date string, slotID int64) (*hms.Slot, error)
}

// PaymentOrchestrator executes the checkout flow for a booked appointment.
type PaymentOrchestrator interface {
	Initiate(ctx context.Context, params payments.InitiateParams) (*payments.CheckoutOptions, error)
	Confirm(ctx context.Context, params payments.ConfirmParams) (*payments.Confirmation, error)
}

// Notifier delivers the booking confirmation. Failures are logged, never
// surfaced: the booking already succeeded.
type Notifier interface {
	BookingConfirmed(ctx context.Context, state *State) error
}

// Wizard drives the booking flow: slot selection, patient details, appointment
// creation and payment. Each operation loads state, applies one transition and
// persists the result, so the flow survives page reloads.
type Wizard struct {
	store        StateStore
	backend      Backend
	availability Availability
	orchestrator PaymentOrchestrator
	notifier     Notifier
	metrics      *metrics.BookingMetrics
	logger       *logging.Logger
	abandonAfter time.Duration
	now          func() time.Time
}

// NewWizard constructs the booking wizard service.
func NewWizard(store StateStore, backend Backend, avail Availability, orchestrator PaymentOrchestrator, logger *logging.Logger) *Wizard {
	if store == nil {
		panic("booking: state store required")
	}
	if backend == nil {
		panic("booking: backend required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Wizard{
		store:        store,
		backend:      backend,
		availability: avail,
		orchestrator: orchestrator,
		logger:       logger,
		abandonAfter: 15 * time.Minute,
		now:          time.Now,
	}
}

// WithMetrics attaches booking metrics.
func (w *Wizard) WithMetrics(m *metrics.BookingMetrics) *Wizard {
	w.metrics = m
	return w
}

// WithNotifier attaches a confirmation notifier.
func (w *Wizard) WithNotifier(n Notifier) *Wizard {
	w.notifier = n
	return w
}

// WithAbandonAfter sets how long an opened checkout may stay unanswered
// before the payment sub-state transitions to Abandoned.
func (w *Wizard) WithAbandonAfter(d time.Duration) *Wizard {
	if d > 0 {
		w.abandonAfter = d
	}
	return w
}

// WithClock injects a clock for tests.
func (w *Wizard) WithClock(now func() time.Time) *Wizard {
	if now != nil {
		w.now = now
	}
	return w
}

// Start creates a fresh wizard under a generated temporary key.
func (w *Wizard) Start(ctx context.Context) (*State, error) {
	state := &State{
		Key:       uuid.NewString(),
		Step:      StepChoosingSlot,
		Payment:   PaymentState{Status: PaymentIdle},
		CreatedAt: w.now().UTC(),
	}
	if err := w.save(ctx, state); err != nil {
		return nil, err
	}
	w.metrics.ObserveWizardStarted()
	return state, nil
}

// Get loads the wizard state, applying the checkout-abandonment policy.
func (w *Wizard) Get(ctx context.Context, key string) (*State, error) {
	return w.load(ctx, key)
}

// SelectDepartment sets the department. Changing it invalidates every
// downstream selection.
func (w *Wizard) SelectDepartment(ctx context.Context, key string, departmentID int64) (*State, error) {
	state, err := w.load(ctx, key)
	if err != nil {
		return nil, err
	}
	if departmentID <= 0 {
		return nil, &ValidationError{Field: "department", Reason: "department is required"}
	}
	if state.DepartmentID != departmentID {
		state.Doctor = nil
		state.Date = ""
		state.SlotID = 0
		state.SlotToken = ""
	}
	state.DepartmentID = departmentID
	state.Step = StepChoosingSlot
	if err := w.save(ctx, state); err != nil {
		return nil, err
	}
	return state, nil
}

// SelectDoctor resolves the consultant and freezes their fee into the state.
// Changing the doctor clears date and slot.
func (w *Wizard) SelectDoctor(ctx context.Context, key string, consultantID int64) (*State, error) {
	state, err := w.load(ctx, key)
	if err != nil {
		return nil, err
	}
	if state.DepartmentID == 0 {
		return nil, &ValidationError{Field: "department", Reason: "select a department first"}
	}
	doctor, err := w.availability.Doctor(ctx, state.DepartmentID, consultantID)
	if err != nil {
		return nil, err
	}
	if state.Doctor == nil || state.Doctor.ConsultantID != doctor.ConsultantID {
		state.Date = ""
		state.SlotID = 0
		state.SlotToken = ""
	}
	state.Doctor = doctor
	state.Step = StepChoosingSlot
	if err := w.save(ctx, state); err != nil {
		return nil, err
	}
	return state, nil
}

// SelectDate sets the consultation date (YYYY-MM-DD) and clears the slot.
func (w *Wizard) SelectDate(ctx context.Context, key string, date string) (*State, error) {
	state, err := w.load(ctx, key)
	if err != nil {
		return nil, err
	}
	if state.Doctor == nil {
		return nil, &ValidationError{Field: "doctor", Reason: "select a doctor first"}
	}
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return nil, &ValidationError{Field: "date", Reason: "date must be YYYY-MM-DD"}
	}
	if state.Date != date {
		state.SlotID = 0
		state.SlotToken = ""
	}
	state.Date = date
	state.Step = StepChoosingSlot
	if err := w.save(ctx, state); err != nil {
		return nil, err
	}
	return state, nil
}

// SelectSlot re-validates the slot against fresh availability before
// accepting it, so a stale render cannot select a filled slot.
func (w *Wizard) SelectSlot(ctx context.Context, key string, slotID int64, slotToken string) (*State, error) {
	state, err := w.load(ctx, key)
	if err != nil {
		return nil, err
	}
	if state.Doctor == nil || state.Date == "" {
		return nil, &ValidationError{Field: "slot", Reason: "select a doctor and date first"}
	}
	slot, err := w.availability.ValidateSelectable(ctx, state.Doctor.ConsultantID, state.Date, slotID)
	if err != nil {
		return nil, &ValidationError{Field: "slot", Reason: err.Error()}
	}
	state.SlotID = slot.SlotID
	state.SlotToken = slot.SlotToken
	if state.SlotToken == "" {
		state.SlotToken = slotToken
	}
	state.Step = StepPatientDetails
	if err := w.save(ctx, state); err != nil {
		return nil, err
	}
	return state, nil
}

// SetPatientData validates patient identity and advances to Payment.
func (w *Wizard) SetPatientData(ctx context.Context, key string, patient PatientData, remarks string) (*State, error) {
	state, err := w.load(ctx, key)
	if err != nil {
		return nil, err
	}
	if patient.PatientName == "" {
		return nil, &ValidationError{Field: "patient_name", Reason: "patient name is required"}
	}
	if patient.MobileNo == "" {
		return nil, &ValidationError{Field: "mobile_no", Reason: "mobile number is required"}
	}
	if state.SlotID == 0 {
		return nil, &ValidationError{Field: "slot", Reason: "select a slot first"}
	}
	state.Patient = patient
	state.Remarks = remarks
	state.Step = StepPayment
	if err := w.save(ctx, state); err != nil {
		return nil, err
	}
	return state, nil
}

// Back moves to an earlier step. Forward movement only happens through
// operations, never through Back.
func (w *Wizard) Back(ctx context.Context, key string, target Step) (*State, error) {
	state, err := w.load(ctx, key)
	if err != nil {
		return nil, err
	}
	if target >= state.Step {
		return nil, &ValidationError{Field: "step", Reason: "can only move to an earlier step"}
	}
	state.Step = target
	if err := w.save(ctx, state); err != nil {
		return nil, err
	}
	return state, nil
}

// BookAppointment creates the pending appointment on the HMS. It is
// idempotent: when an appointment already exists in state the existing id is
// reused and no second create call is issued.
func (w *Wizard) BookAppointment(ctx context.Context, key string) (*State, error) {
	state, err := w.load(ctx, key)
	if err != nil {
		return nil, err
	}
	if state.AppointmentID != 0 {
		return state, nil
	}
	if verr := state.draftComplete(); verr != nil {
		w.metrics.ObserveAppointment("validation_failed")
		return nil, verr
	}
	// Selectability is checked again at submission time, not only at render.
	if w.availability != nil {
		if _, err := w.availability.ValidateSelectable(ctx, state.Doctor.ConsultantID, state.Date, state.SlotID); err != nil {
			w.metrics.ObserveAppointment("slot_unavailable")
			return nil, &ValidationError{Field: "slot", Reason: err.Error()}
		}
	}

	appt, err := w.backend.CreateAppointment(ctx, hms.AppointmentCreateRequest{
		ConsultantID:     state.Doctor.ConsultantID,
		MRNo:             state.Patient.MRNo,
		ConsultationDate: state.Date,
		SlotID:           state.SlotID,
		SlotToken:        state.SlotToken,
		Pending:          1,
		Remarks:          state.Remarks,
		PatientName:      state.Patient.PatientName,
		MobileNo:         state.Patient.MobileNo,
	})
	if err != nil {
		w.metrics.ObserveAppointment("rejected")
		w.logger.Error("appointment create failed", "key", key, "error", err)
		return nil, err
	}

	state.AppointmentID = appt.OPDOnlineAppointmentID
	if err := w.save(ctx, state); err != nil {
		return nil, err
	}
	w.metrics.ObserveAppointment("created")
	w.logger.Info("appointment created", "key", key, "appointment_id", state.AppointmentID)
	return state, nil
}

// ProcessPayment starts a payment attempt and returns the checkout widget
// configuration. A second call while an attempt is outstanding is rejected:
// the in-flight guard is the flow's only mutual exclusion.
func (w *Wizard) ProcessPayment(ctx context.Context, key string) (*payments.CheckoutOptions, *State, error) {
	state, err := w.load(ctx, key)
	if err != nil {
		return nil, nil, err
	}
	if state.AppointmentID == 0 {
		return nil, nil, &ValidationError{Field: "appointment", Reason: "appointment must be created before payment"}
	}
	switch state.Payment.Status {
	case PaymentProcessing:
		return nil, nil, ErrPaymentInFlight
	case PaymentPartial:
		return nil, nil, ErrPaymentNotRetryable
	case PaymentSuccess:
		return nil, nil, &ValidationError{Field: "payment", Reason: "payment already completed"}
	}

	started := w.now().UTC()
	state.Payment.Status = PaymentProcessing
	state.Payment.ProcessingSince = &started
	if err := w.save(ctx, state); err != nil {
		return nil, nil, err
	}

	opts, err := w.orchestrator.Initiate(ctx, payments.InitiateParams{
		AppointmentID: state.AppointmentID,
		Amount:        state.Doctor.Fee,
		PatientName:   state.Patient.PatientName,
		MobileNo:      state.Patient.MobileNo,
	})
	if err != nil {
		state.Payment.Status = PaymentFailed
		state.Payment.ProcessingSince = nil
		if saveErr := w.save(ctx, state); saveErr != nil {
			w.logger.Error("failed to persist payment failure", "key", key, "error", saveErr)
		}
		return nil, nil, err
	}

	state.Payment.OrderID = opts.OrderID
	if err := w.save(ctx, state); err != nil {
		return nil, nil, err
	}
	return opts, state, nil
}

// ConfirmPayment reconciles the checkout widget's completion callback. On full
// success the temporary recovery entry is deleted; on partial confirmation it
// is kept for support diagnosis.
func (w *Wizard) ConfirmPayment(ctx context.Context, key, transactionID string) (*State, error) {
	state, err := w.load(ctx, key)
	if err != nil {
		return nil, err
	}
	if state.AppointmentID == 0 {
		return nil, &ValidationError{Field: "appointment", Reason: "no appointment to confirm"}
	}
	if transactionID == "" {
		return nil, &ValidationError{Field: "transaction_id", Reason: "transaction id is required"}
	}
	if state.Payment.Status == PaymentPartial {
		return nil, ErrPaymentNotRetryable
	}

	conf, err := w.orchestrator.Confirm(ctx, payments.ConfirmParams{
		AppointmentID: state.AppointmentID,
		Amount:        state.Doctor.Fee,
		TransactionID: transactionID,
	})
	if err != nil {
		var partial *payments.PartialConfirmationError
		if errors.As(err, &partial) {
			state.Payment.Status = PaymentPartial
			state.Payment.TransactionID = transactionID
			state.Payment.ProcessingSince = nil
			if saveErr := w.save(ctx, state); saveErr != nil {
				w.logger.Error("failed to persist partial confirmation", "key", key, "error", saveErr)
			}
			return nil, err
		}
		state.Payment.Status = PaymentFailed
		state.Payment.ProcessingSince = nil
		if saveErr := w.save(ctx, state); saveErr != nil {
			w.logger.Error("failed to persist payment failure", "key", key, "error", saveErr)
		}
		return nil, err
	}

	state.Payment.Status = PaymentSuccess
	state.Payment.TransactionID = conf.TransactionID
	state.Payment.ProcessingSince = nil
	state.Step = StepConfirmation
	state.UpdatedAt = w.now().UTC()

	if w.notifier != nil {
		if err := w.notifier.BookingConfirmed(ctx, state); err != nil {
			w.logger.Warn("confirmation notification failed", "key", key, "error", err)
		}
	}

	// Successful payment is the flow's only explicit destruction step: the
	// temporary recovery entry is removed.
	if err := w.store.Delete(ctx, key); err != nil {
		w.logger.Error("failed to delete recovery state", "key", key, "error", err)
	}
	return state, nil
}

func (w *Wizard) load(ctx context.Context, key string) (*State, error) {
	state, err := w.store.Load(ctx, key)
	if err != nil {
		return nil, err
	}
	// No callback within the window: the attempt is treated as abandoned and
	// becomes retryable.
	if state.Payment.Status == PaymentProcessing && state.Payment.ProcessingSince != nil {
		if w.now().Sub(*state.Payment.ProcessingSince) > w.abandonAfter {
			state.Payment.Status = PaymentAbandoned
			state.Payment.ProcessingSince = nil
			w.metrics.ObservePayment("confirm", "abandoned")
			if err := w.save(ctx, state); err != nil {
				w.logger.Error("failed to persist abandoned payment", "key", key, "error", err)
			}
		}
	}
	return state, nil
}

func (w *Wizard) save(ctx context.Context, state *State) error {
	state.UpdatedAt = w.now().UTC()
	return w.store.Save(ctx, state)
}
