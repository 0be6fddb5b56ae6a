package notify

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/careport/booking-gateway/internal/booking"
	"github.com/careport/booking-gateway/internal/hms"
)

func TestBookingConfirmedSendsEmail(t *testing.T) {
	stub := NewStubEmailSender(nil)
	notifier := NewConfirmationNotifier(stub, nil)

	state := &booking.State{
		Date:          "2026-09-01",
		AppointmentID: 1234,
		Doctor:        &hms.Consultant{ConsultantName: "Dr. Rao"},
		Patient:       booking.PatientData{PatientName: "Asha Verma", MobileNo: "9876543210", Email: "asha@example.com"},
		Payment:       booking.PaymentState{TransactionID: "pay_abc"},
	}
	require.NoError(t, notifier.BookingConfirmed(context.Background(), state))

	require.Len(t, stub.Sent, 1)
	assert.Equal(t, "asha@example.com", stub.Sent[0].To)
	assert.Contains(t, stub.Sent[0].Body, "Dr. Rao")
	assert.Contains(t, stub.Sent[0].Body, "1234")
}

func TestBookingConfirmedSkipsWithoutEmail(t *testing.T) {
	stub := NewStubEmailSender(nil)
	notifier := NewConfirmationNotifier(stub, nil)

	state := &booking.State{Patient: booking.PatientData{PatientName: "Asha"}}
	require.NoError(t, notifier.BookingConfirmed(context.Background(), state))
	assert.Empty(t, stub.Sent)
}
