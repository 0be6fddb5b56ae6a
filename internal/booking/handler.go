package booking

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/careport/booking-gateway/internal/hms"
	"github.com/careport/booking-gateway/internal/payments"
	"github.com/careport/booking-gateway/pkg/logging"
)

// Handler exposes the booking wizard over HTTP. All orchestration errors are
// caught here and converted to JSON responses; nothing propagates uncaught.
type Handler struct {
	wizard *Wizard
	logger *logging.Logger
}

// NewHandler constructs a booking wizard handler.
func NewHandler(wizard *Wizard, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{wizard: wizard, logger: logger}
}

// Routes mounts the wizard endpoints.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.start)
	r.Route("/{key}", func(r chi.Router) {
		r.Get("/", h.get)
		r.Post("/department", h.selectDepartment)
		r.Post("/doctor", h.selectDoctor)
		r.Post("/date", h.selectDate)
		r.Post("/slot", h.selectSlot)
		r.Post("/patient", h.setPatient)
		r.Post("/back", h.back)
		r.Post("/appointment", h.bookAppointment)
		r.Post("/payment", h.processPayment)
		r.Post("/payment/callback", h.confirmPayment)
	})
	return r
}

func (h *Handler) start(w http.ResponseWriter, r *http.Request) {
	state, err := h.wizard.Start(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeState(w, http.StatusCreated, state)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	state, err := h.wizard.Get(r.Context(), chi.URLParam(r, "key"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeState(w, http.StatusOK, state)
}

func (h *Handler) selectDepartment(w http.ResponseWriter, r *http.Request) {
	var req struct {
		DepartmentID int64 `json:"DepartmentID"`
	}
	if !h.decode(w, r, &req) {
		return
	}
	state, err := h.wizard.SelectDepartment(r.Context(), chi.URLParam(r, "key"), req.DepartmentID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeState(w, http.StatusOK, state)
}

func (h *Handler) selectDoctor(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ConsultantID int64 `json:"ConsultantID"`
	}
	if !h.decode(w, r, &req) {
		return
	}
	state, err := h.wizard.SelectDoctor(r.Context(), chi.URLParam(r, "key"), req.ConsultantID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeState(w, http.StatusOK, state)
}

func (h *Handler) selectDate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Date string `json:"Date"`
	}
	if !h.decode(w, r, &req) {
		return
	}
	state, err := h.wizard.SelectDate(r.Context(), chi.URLParam(r, "key"), req.Date)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeState(w, http.StatusOK, state)
}

func (h *Handler) selectSlot(w http.ResponseWriter, r *http.Request) {
	var req struct {
		SlotID    int64  `json:"SlotID"`
		SlotToken string `json:"SlotToken"`
	}
	if !h.decode(w, r, &req) {
		return
	}
	state, err := h.wizard.SelectSlot(r.Context(), chi.URLParam(r, "key"), req.SlotID, req.SlotToken)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeState(w, http.StatusOK, state)
}

func (h *Handler) setPatient(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PatientData
		Remarks string `json:"Remarks"`
	}
	if !h.decode(w, r, &req) {
		return
	}
	state, err := h.wizard.SetPatientData(r.Context(), chi.URLParam(r, "key"), req.PatientData, req.Remarks)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeState(w, http.StatusOK, state)
}

func (h *Handler) back(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Step int `json:"Step"`
	}
	if !h.decode(w, r, &req) {
		return
	}
	state, err := h.wizard.Back(r.Context(), chi.URLParam(r, "key"), Step(req.Step))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeState(w, http.StatusOK, state)
}

func (h *Handler) bookAppointment(w http.ResponseWriter, r *http.Request) {
	state, err := h.wizard.BookAppointment(r.Context(), chi.URLParam(r, "key"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeState(w, http.StatusOK, state)
}

func (h *Handler) processPayment(w http.ResponseWriter, r *http.Request) {
	opts, state, err := h.wizard.ProcessPayment(r.Context(), chi.URLParam(r, "key"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{
		"checkout": opts,
		"state":    state,
	})
}

func (h *Handler) confirmPayment(w http.ResponseWriter, r *http.Request) {
	var req struct {
		RazorpayPaymentID string `json:"razorpay_payment_id"`
	}
	if !h.decode(w, r, &req) {
		return
	}
	state, err := h.wizard.ConfirmPayment(r.Context(), chi.URLParam(r, "key"), req.RazorpayPaymentID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeState(w, http.StatusOK, state)
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, out any) bool {
	if err := json.NewDecoder(r.Body).Decode(out); err != nil {
		h.writeJSON(w, http.StatusBadRequest, map[string]any{
			"error": "invalid payload",
			"code":  "bad_request",
		})
		return false
	}
	return true
}

func (h *Handler) writeState(w http.ResponseWriter, status int, state *State) {
	h.writeJSON(w, status, map[string]any{"state": state})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// writeError maps domain errors to HTTP responses. Server rejections keep
// their verbatim message; partial confirmation gets its distinct
// contact-support message rather than a generic failure.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		verr    *ValidationError
		partial *payments.PartialConfirmationError
		initErr *payments.PaymentInitiationError
		netErr  *hms.NetworkError
	)

	status := http.StatusInternalServerError
	code := "internal"
	message := "something went wrong"

	switch {
	case errors.As(err, &verr):
		status = http.StatusUnprocessableEntity
		code = "validation_error"
		message = verr.Reason
	case errors.Is(err, ErrNotFound):
		status = http.StatusNotFound
		code = "not_found"
		message = "booking session not found or expired"
	case errors.Is(err, ErrPaymentInFlight):
		status = http.StatusConflict
		code = "payment_in_flight"
		message = "a payment attempt is already in progress"
	case errors.Is(err, ErrPaymentNotRetryable):
		status = http.StatusConflict
		code = "payment_not_retryable"
		message = "payment requires manual reconciliation, please contact support"
	case errors.As(err, &partial):
		status = http.StatusBadGateway
		code = "partial_confirmation"
		message = "payment processed but appointment not confirmed, please contact support"
	case errors.As(err, &initErr):
		status = http.StatusBadGateway
		code = "payment_initiation_failed"
		message = "could not start the payment, please try again"
	case errors.Is(err, hms.ErrUnauthorized):
		status = http.StatusUnauthorized
		code = "unauthorized"
		message = "session expired, please sign in again"
	case errors.As(err, &netErr):
		status = http.StatusServiceUnavailable
		code = "network_error"
		message = hms.UserMessage(err)
	default:
		var rejection *hms.ServerRejection
		if errors.As(err, &rejection) {
			status = http.StatusBadGateway
			code = "server_rejection"
			message = rejection.Message
		}
	}

	h.logger.Error("booking operation failed",
		"path", r.URL.Path,
		"code", code,
		"error", err,
	)
	h.writeJSON(w, status, map[string]any{"error": message, "code": code})
}
