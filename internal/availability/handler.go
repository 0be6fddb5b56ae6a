package availability

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/careport/booking-gateway/internal/hms"
	"github.com/careport/booking-gateway/pkg/logging"
)

// Handler serves department/doctor/slot reference data to the booking UI.
type Handler struct {
	svc    *Service
	logger *logging.Logger
}

// NewHandler constructs an availability handler.
func NewHandler(svc *Service, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{svc: svc, logger: logger}
}

// Routes mounts the reference-data endpoints.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/departments", h.departments)
	r.Get("/departments/{departmentID}/doctors", h.doctors)
	r.Get("/doctors/{consultantID}/slots", h.slots)
	return r
}

// slotView decorates a slot with its derived display fields. The derived
// label, not the raw status, governs click-ability.
type slotView struct {
	hms.Slot
	DisplayStatus string `json:"DisplayStatus"`
	DisplayTime   string `json:"DisplayTime"`
	Selectable    bool   `json:"Selectable"`
}

func (h *Handler) departments(w http.ResponseWriter, r *http.Request) {
	departments, err := h.svc.Departments(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, map[string]any{"departments": departments})
}

func (h *Handler) doctors(w http.ResponseWriter, r *http.Request) {
	departmentID, err := strconv.ParseInt(chi.URLParam(r, "departmentID"), 10, 64)
	if err != nil {
		http.Error(w, "invalid department id", http.StatusBadRequest)
		return
	}
	doctors, err := h.svc.Doctors(r.Context(), departmentID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, map[string]any{"consultants": doctors})
}

func (h *Handler) slots(w http.ResponseWriter, r *http.Request) {
	consultantID, err := strconv.ParseInt(chi.URLParam(r, "consultantID"), 10, 64)
	if err != nil {
		http.Error(w, "invalid consultant id", http.StatusBadRequest)
		return
	}
	date := r.URL.Query().Get("date")
	if date == "" {
		http.Error(w, "date is required", http.StatusBadRequest)
		return
	}

	slots, err := h.svc.AvailableSlots(r.Context(), consultantID, date)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	grouped := GroupSlots(slots)
	h.writeJSON(w, map[string]any{
		"slots": map[string][]slotView{
			"morning":   decorate(grouped.Morning),
			"afternoon": decorate(grouped.Afternoon),
			"evening":   decorate(grouped.Evening),
		},
		"total": len(slots),
	})
}

func decorate(slots []hms.Slot) []slotView {
	views := make([]slotView, 0, len(slots))
	for _, slot := range slots {
		views = append(views, slotView{
			Slot:          slot,
			DisplayStatus: DisplayStatus(slot),
			DisplayTime:   FormatTime(slot.SlotTime),
			Selectable:    Selectable(slot),
		})
	}
	return views
}

func (h *Handler) writeJSON(w http.ResponseWriter, payload any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(payload)
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	h.logger.Error("availability lookup failed", "path", r.URL.Path, "error", err)

	status := http.StatusBadGateway
	if errors.Is(err, hms.ErrUnauthorized) {
		status = http.StatusUnauthorized
	}
	var netErr *hms.NetworkError
	if errors.As(err, &netErr) {
		status = http.StatusServiceUnavailable
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{"error": hms.UserMessage(err)})
}
