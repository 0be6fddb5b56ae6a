package booking

import (
	"errors"
	"fmt"
)

// ErrNotFound means no wizard state exists under the given key (expired or
// never created).
var ErrNotFound = errors.New("booking: wizard not found")

// ErrPaymentInFlight guards against duplicate submission while a payment
// attempt is outstanding. This is the in-flight guard that replaces a
// time-based debounce.
var ErrPaymentInFlight = errors.New("booking: a payment attempt is already in progress")

// ErrPaymentNotRetryable marks a partially-confirmed payment; retrying could
// double-submit the provider callback.
var ErrPaymentNotRetryable = errors.New("booking: payment requires manual reconciliation, please contact support")

// ValidationError reports a missing or invalid booking field. No network call
// is made when validation fails.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("booking: %s", e.Reason)
}
