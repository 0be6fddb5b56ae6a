package notify

import (
	"context"
	"fmt"

	"github.com/careport/booking-gateway/internal/booking"
	"github.com/careport/booking-gateway/pkg/logging"
)

// ConfirmationNotifier emails the patient once their appointment is paid and
// finalized. Delivery is best-effort; the booking has already succeeded.
type ConfirmationNotifier struct {
	sender EmailSender
	logger *logging.Logger
}

// NewConfirmationNotifier constructs a confirmation notifier.
func NewConfirmationNotifier(sender EmailSender, logger *logging.Logger) *ConfirmationNotifier {
	if logger == nil {
		logger = logging.Default()
	}
	return &ConfirmationNotifier{sender: sender, logger: logger}
}

// BookingConfirmed sends the confirmation email. Patients without an email
// address are skipped.
func (n *ConfirmationNotifier) BookingConfirmed(ctx context.Context, state *booking.State) error {
	if n.sender == nil || state.Patient.Email == "" {
		return nil
	}

	doctorName := ""
	if state.Doctor != nil {
		doctorName = state.Doctor.ConsultantName
	}

	msg := EmailMessage{
		To:      state.Patient.Email,
		ToName:  state.Patient.PatientName,
		Subject: fmt.Sprintf("Appointment confirmed for %s", state.Date),
		Body: fmt.Sprintf(
			"Dear %s,\n\nYour appointment with %s on %s is confirmed.\nAppointment number: %d\nPayment reference: %s\n\nPlease arrive 15 minutes early.",
			state.Patient.PatientName, doctorName, state.Date, state.AppointmentID, state.Payment.TransactionID,
		),
	}
	if err := n.sender.Send(ctx, msg); err != nil {
		return err
	}
	n.logger.Info("booking confirmation sent", "appointment_id", state.AppointmentID, "to", state.Patient.Email)
	return nil
}
