package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/careport/booking-gateway/internal/hms"
	"github.com/careport/booking-gateway/pkg/logging"
)

// AppointmentSearcher lists appointments from the HMS.
type AppointmentSearcher interface {
	SearchAppointments(ctx context.Context, search hms.AppointmentSearch) ([]hms.Appointment, error)
}

// AdminAppointmentsHandler serves the hospital-staff appointment listing.
type AdminAppointmentsHandler struct {
	searcher AppointmentSearcher
	logger   *logging.Logger
}

// NewAdminAppointmentsHandler creates the admin appointments handler.
func NewAdminAppointmentsHandler(searcher AppointmentSearcher, logger *logging.Logger) *AdminAppointmentsHandler {
	if searcher == nil {
		panic("handlers: appointment searcher required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &AdminAppointmentsHandler{searcher: searcher, logger: logger}
}

// AppointmentResponse represents one appointment in API responses.
type AppointmentResponse struct {
	AppointmentID    int64  `json:"appointment_id"`
	ConsultantID     int64  `json:"consultant_id"`
	MRNo             string `json:"mr_no,omitempty"`
	ConsultationDate string `json:"consultation_date"`
	SlotID           int64  `json:"slot_id"`
	Pending          bool   `json:"pending"`
	PatientName      string `json:"patient_name"`
	MobileNo         string `json:"mobile_no"`
	TransactionID    string `json:"transaction_id,omitempty"`
}

// AppointmentsListResponse wraps the listing.
type AppointmentsListResponse struct {
	Appointments []AppointmentResponse `json:"appointments"`
	Total        int                   `json:"total"`
}

// Routes mounts the admin endpoints.
func (h *AdminAppointmentsHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/appointments", h.listAppointments)
	return r
}

func (h *AdminAppointmentsHandler) listAppointments(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	search := hms.AppointmentSearch{
		MobileNo:         q.Get("mobile_no"),
		ConsultationDate: q.Get("date"),
		PendingOnly:      q.Get("pending") == "1" || q.Get("pending") == "true",
	}

	appointments, err := h.searcher.SearchAppointments(r.Context(), search)
	if err != nil {
		h.logger.Error("appointment search failed", "error", err, "date", search.ConsultationDate)
		status := http.StatusBadGateway
		var netErr *hms.NetworkError
		switch {
		case errors.Is(err, hms.ErrUnauthorized):
			status = http.StatusUnauthorized
		case errors.As(err, &netErr):
			status = http.StatusServiceUnavailable
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(map[string]string{"error": hms.UserMessage(err)})
		return
	}

	resp := AppointmentsListResponse{
		Appointments: make([]AppointmentResponse, 0, len(appointments)),
		Total:        len(appointments),
	}
	for _, a := range appointments {
		resp.Appointments = append(resp.Appointments, AppointmentResponse{
			AppointmentID:    a.OPDOnlineAppointmentID,
			ConsultantID:     a.ConsultantID,
			MRNo:             a.MRNo,
			ConsultationDate: a.ConsultationDate,
			SlotID:           a.SlotID,
			Pending:          a.Pending == 1,
			PatientName:      a.PatientName,
			MobileNo:         a.MobileNo,
			TransactionID:    a.TransactionID,
		})
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}
