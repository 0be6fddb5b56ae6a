package payments

import "fmt"

// PaymentInitiationError means the order-create call succeeded in transport
// but the backend omitted the provider order id. The checkout widget must
// never be constructed from such a response.
type PaymentInitiationError struct {
	AppointmentID int64
	Reason        string
}

func (e *PaymentInitiationError) Error() string {
	return fmt.Sprintf("payments: could not start payment for appointment %d: %s", e.AppointmentID, e.Reason)
}

// PartialConfirmationError means the provider callback was recorded but the
// appointment finalize call failed. Retrying would double-submit the callback,
// so this state requires manual reconciliation.
type PartialConfirmationError struct {
	AppointmentID int64
	TransactionID string
	Err           error
}

func (e *PartialConfirmationError) Error() string {
	return fmt.Sprintf("payments: payment processed but appointment %d not confirmed, please contact support (txn %s): %v",
		e.AppointmentID, e.TransactionID, e.Err)
}

func (e *PartialConfirmationError) Unwrap() error { return e.Err }
