package payments

import "math"

// CurrencyINR is the only currency the HMS bills in.
const CurrencyINR = "INR"

// MinorUnits converts a fee in currency units to minor units (paise).
// Fees can be fractional (e.g. 1999.5), so round rather than truncate.
func MinorUnits(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

// CheckoutOptions is the configuration handed to the hosted checkout widget.
// Field names follow the widget's constructor contract.
type CheckoutOptions struct {
	KeyID       string          `json:"key"`
	Amount      int64           `json:"amount"`
	Currency    string          `json:"currency"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	OrderID     string          `json:"order_id"`
	Prefill     CheckoutPrefill `json:"prefill"`
	Theme       CheckoutTheme   `json:"theme"`
}

// CheckoutPrefill pre-populates the widget with patient identity.
type CheckoutPrefill struct {
	Name    string `json:"name"`
	Contact string `json:"contact"`
}

// CheckoutTheme carries widget styling.
type CheckoutTheme struct {
	Color string `json:"color"`
}
