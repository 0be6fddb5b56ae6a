package payments

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/careport/booking-gateway/internal/hms"
	"github.com/careport/booking-gateway/internal/observability/metrics"
	"github.com/careport/booking-gateway/pkg/logging"
)

var paymentsTracer = otel.Tracer("careport.internal.payments")

// Payment modes and statuses used on the HMS wire.
const (
	ModeOnline   = "Online"
	ModeRazorpay = "Razorpay"
	StatusPaid   = "Paid"
)

// SagaState names the confirmation saga's intermediate states so partial
// failure is first-class rather than an exception path.
type SagaState string

const (
	SagaStarted          SagaState = "started"
	CallbackRecorded     SagaState = "callback_recorded"
	AppointmentFinalized SagaState = "appointment_finalized"
)

// Gateway is the slice of the HMS client the orchestrator drives.
type Gateway interface {
	CreatePaymentOrder(ctx context.Context, req hms.PaymentOrderRequest) (*hms.PaymentOrder, error)
	RecordPaymentCallback(ctx context.Context, req hms.PaymentCallbackRequest) error
	FinalizeAppointment(ctx context.Context, appointmentID int64, req hms.AppointmentFinalizeRequest) error
}

// Orchestrator bridges the booking flow to the hosted checkout widget and
// reconciles the widget's asynchronous callback with HMS state.
type Orchestrator struct {
	gateway      Gateway
	keyID        string
	merchantName string
	themeColor   string
	logger       *logging.Logger
	metrics      *metrics.BookingMetrics
	now          func() time.Time
}

// NewOrchestrator constructs a payment orchestrator.
func NewOrchestrator(gateway Gateway, keyID, merchantName, themeColor string, logger *logging.Logger) *Orchestrator {
	if gateway == nil {
		panic("payments: gateway required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	if merchantName == "" {
		merchantName = "CarePort Hospital"
	}
	return &Orchestrator{
		gateway:      gateway,
		keyID:        keyID,
		merchantName: merchantName,
		themeColor:   themeColor,
		logger:       logger,
		now:          time.Now,
	}
}

// WithMetrics attaches booking metrics.
func (o *Orchestrator) WithMetrics(m *metrics.BookingMetrics) *Orchestrator {
	o.metrics = m
	return o
}

// InitiateParams describe one payment attempt. Amount is the consultant fee
// frozen at booking time; it is never recomputed from server responses.
type InitiateParams struct {
	AppointmentID int64
	Amount        float64
	PatientName   string
	MobileNo      string
}

// Initiate creates a provider order for the appointment and returns the
// checkout widget configuration. The widget is never constructed when the
// backend omits the order id.
func (o *Orchestrator) Initiate(ctx context.Context, params InitiateParams) (*CheckoutOptions, error) {
	ctx, span := paymentsTracer.Start(ctx, "payments.initiate")
	defer span.End()
	span.SetAttributes(
		attribute.Int64("careport.appointment_id", params.AppointmentID),
		attribute.Float64("careport.amount", params.Amount),
	)

	start := o.now()
	order, err := o.gateway.CreatePaymentOrder(ctx, hms.PaymentOrderRequest{
		OPDOnlineAppointmentID: params.AppointmentID,
		AmountPaid:             params.Amount,
		PaymentMode:            ModeOnline,
	})
	o.metrics.ObservePaymentLatency("initiate", o.now().Sub(start).Seconds())
	if err != nil {
		o.metrics.ObservePayment("initiate", "failed")
		span.RecordError(err)
		return nil, err
	}
	if order.OrderID == "" {
		o.metrics.ObservePayment("initiate", "contract_violation")
		err := &PaymentInitiationError{AppointmentID: params.AppointmentID, Reason: "backend response missing order_id"}
		span.RecordError(err)
		return nil, err
	}

	o.metrics.ObservePayment("initiate", "success")
	o.logger.Info("payment order created",
		"appointment_id", params.AppointmentID,
		"order_id", order.OrderID,
		"amount", params.Amount,
	)

	return &CheckoutOptions{
		KeyID:       o.keyID,
		Amount:      MinorUnits(params.Amount),
		Currency:    CurrencyINR,
		Name:        o.merchantName,
		Description: "OPD appointment consultation fee",
		OrderID:     order.OrderID,
		Prefill:     CheckoutPrefill{Name: params.PatientName, Contact: params.MobileNo},
		Theme:       CheckoutTheme{Color: o.themeColor},
	}, nil
}

// ConfirmParams carry the provider-issued payment id from the widget's
// completion handler.
type ConfirmParams struct {
	AppointmentID int64
	Amount        float64
	TransactionID string
}

// Confirmation reports how far the confirmation saga progressed.
type Confirmation struct {
	AppointmentID int64
	TransactionID string
	State         SagaState
}

// Confirm runs the two-step confirmation saga: record the provider callback,
// then finalize the appointment. The steps are strictly sequential because
// the pending-clear must only be recorded once payment is logged. A failure
// after the callback is recorded is a PartialConfirmationError: it must not
// be auto-retried since that would double-submit the callback.
func (o *Orchestrator) Confirm(ctx context.Context, params ConfirmParams) (*Confirmation, error) {
	ctx, span := paymentsTracer.Start(ctx, "payments.confirm")
	defer span.End()
	span.SetAttributes(
		attribute.Int64("careport.appointment_id", params.AppointmentID),
		attribute.String("careport.transaction_id", params.TransactionID),
	)

	conf := &Confirmation{
		AppointmentID: params.AppointmentID,
		TransactionID: params.TransactionID,
		State:         SagaStarted,
	}

	start := o.now()
	defer func() {
		o.metrics.ObservePaymentLatency("confirm", o.now().Sub(start).Seconds())
	}()

	err := o.gateway.RecordPaymentCallback(ctx, hms.PaymentCallbackRequest{
		OPDOnlineAppointmentID: params.AppointmentID,
		PaymentMode:            ModeRazorpay,
		PaymentStatus:          StatusPaid,
		AmountPaid:             params.Amount,
		TransactionID:          params.TransactionID,
	})
	if err != nil {
		o.metrics.ObservePayment("confirm", "callback_failed")
		span.RecordError(err)
		o.logger.Error("payment callback record failed",
			"appointment_id", params.AppointmentID,
			"transaction_id", params.TransactionID,
			"error", err,
		)
		return conf, err
	}
	conf.State = CallbackRecorded

	err = o.gateway.FinalizeAppointment(ctx, params.AppointmentID, hms.AppointmentFinalizeRequest{
		Pending:       0,
		TransactionID: params.TransactionID,
	})
	if err != nil {
		o.metrics.ObservePayment("confirm", "partial")
		partial := &PartialConfirmationError{
			AppointmentID: params.AppointmentID,
			TransactionID: params.TransactionID,
			Err:           err,
		}
		span.RecordError(partial)
		o.logger.Error("appointment finalize failed after callback recorded",
			"appointment_id", params.AppointmentID,
			"transaction_id", params.TransactionID,
			"error", err,
		)
		return conf, partial
	}
	conf.State = AppointmentFinalized

	o.metrics.ObservePayment("confirm", "success")
	o.logger.Info("payment confirmed",
		"appointment_id", params.AppointmentID,
		"transaction_id", params.TransactionID,
	)
	return conf, nil
}
