package hms

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/careport/booking-gateway/pkg/logging"
)

const (
	defaultTimeout = 15 * time.Second
	apiPrefix      = "/api/v1"
)

// TokenSource supplies the bearer token injected into every HMS request.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// StaticTokenSource returns a fixed service token.
type StaticTokenSource string

func (s StaticTokenSource) Token(ctx context.Context) (string, error) {
	return string(s), nil
}

// Client wraps REST calls to the hospital management system. Error shapes are
// normalized at this boundary: transport failures become NetworkError, non-2xx
// responses become ServerRejection, and 401 additionally matches
// ErrUnauthorized so sessions can be cleared.
type Client struct {
	httpClient     *http.Client
	baseURL        string
	tokens         TokenSource
	logger         *logging.Logger
	onUnauthorized func()
}

// NewClient constructs an HMS REST client.
func NewClient(baseURL string, tokens TokenSource, logger *logging.Logger) *Client {
	if logger == nil {
		logger = logging.Default()
	}
	return &Client{
		httpClient: &http.Client{Timeout: defaultTimeout},
		baseURL:    strings.TrimRight(baseURL, "/"),
		tokens:     tokens,
		logger:     logger,
	}
}

// WithTimeout overrides the HTTP timeout.
func (c *Client) WithTimeout(d time.Duration) *Client {
	if d > 0 {
		c.httpClient.Timeout = d
	}
	return c
}

// WithUnauthorizedHook registers a callback invoked whenever the HMS answers
// 401, so the caller can drop its session state.
func (c *Client) WithUnauthorizedHook(hook func()) *Client {
	c.onUnauthorized = hook
	return c
}

// ListDepartments returns the department reference data.
func (c *Client) ListDepartments(ctx context.Context) ([]Department, error) {
	var wrapped struct {
		Departments []Department `json:"departments"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/departments", nil, &wrapped); err != nil {
		return nil, fmt.Errorf("list departments: %w", err)
	}
	return wrapped.Departments, nil
}

// ListConsultants returns consultants, optionally filtered by department.
func (c *Client) ListConsultants(ctx context.Context, departmentID int64) ([]Consultant, error) {
	path := "/consultants"
	if departmentID > 0 {
		q := url.Values{}
		q.Set("departmentId", fmt.Sprintf("%d", departmentID))
		path += "?" + q.Encode()
	}
	var wrapped struct {
		Consultants []Consultant `json:"consultants"`
	}
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &wrapped); err != nil {
		return nil, fmt.Errorf("list consultants: %w", err)
	}
	return wrapped.Consultants, nil
}

// ListSlots returns the slots for one consultant on one date (YYYY-MM-DD).
func (c *Client) ListSlots(ctx context.Context, consultantID int64, date string) ([]Slot, error) {
	q := url.Values{}
	q.Set("consultantId", fmt.Sprintf("%d", consultantID))
	q.Set("date", date)
	var wrapped struct {
		Slots []Slot `json:"slots"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/slots?"+q.Encode(), nil, &wrapped); err != nil {
		return nil, fmt.Errorf("list slots: %w", err)
	}
	return wrapped.Slots, nil
}

// CreateAppointment creates a pending appointment and returns the confirmed
// record. The HMS contract requires a non-zero OPDOnlineAppointmentID.
func (c *Client) CreateAppointment(ctx context.Context, req AppointmentCreateRequest) (*Appointment, error) {
	var wrapped struct {
		Appointment Appointment `json:"appointment"`
	}
	if err := c.doJSON(ctx, http.MethodPost, "/appointments", req, &wrapped); err != nil {
		return nil, fmt.Errorf("create appointment: %w", err)
	}
	if wrapped.Appointment.OPDOnlineAppointmentID == 0 {
		return nil, fmt.Errorf("create appointment: response missing OPDOnlineAppointmentID")
	}
	return &wrapped.Appointment, nil
}

// FinalizeAppointment clears the pending flag and attaches the transaction id.
func (c *Client) FinalizeAppointment(ctx context.Context, appointmentID int64, req AppointmentFinalizeRequest) error {
	path := fmt.Sprintf("/appointments/%d", appointmentID)
	if err := c.doJSON(ctx, http.MethodPut, path, req, nil); err != nil {
		return fmt.Errorf("finalize appointment %d: %w", appointmentID, err)
	}
	return nil
}

// SearchAppointments lists appointments for the admin dashboard.
func (c *Client) SearchAppointments(ctx context.Context, search AppointmentSearch) ([]Appointment, error) {
	q := url.Values{}
	if search.MobileNo != "" {
		q.Set("mobileNo", search.MobileNo)
	}
	if search.ConsultationDate != "" {
		q.Set("date", search.ConsultationDate)
	}
	if search.PendingOnly {
		q.Set("pending", "1")
	}
	path := "/appointments"
	if encoded := q.Encode(); encoded != "" {
		path += "?" + encoded
	}
	var wrapped struct {
		Appointments []Appointment `json:"appointments"`
	}
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &wrapped); err != nil {
		return nil, fmt.Errorf("search appointments: %w", err)
	}
	return wrapped.Appointments, nil
}

// CreatePaymentOrder asks the HMS to open a provider order for an appointment.
func (c *Client) CreatePaymentOrder(ctx context.Context, req PaymentOrderRequest) (*PaymentOrder, error) {
	var order PaymentOrder
	if err := c.doJSON(ctx, http.MethodPost, "/payments", req, &order); err != nil {
		return nil, fmt.Errorf("create payment order: %w", err)
	}
	return &order, nil
}

// RecordPaymentCallback posts the provider's success callback.
func (c *Client) RecordPaymentCallback(ctx context.Context, req PaymentCallbackRequest) error {
	if err := c.doJSON(ctx, http.MethodPost, "/payments/callback", req, nil); err != nil {
		return fmt.Errorf("record payment callback: %w", err)
	}
	return nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, body any, out any) error {
	endpoint := c.baseURL + apiPrefix + path
	op := method + " " + path

	var bodyReader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		bodyReader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, bodyReader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.tokens != nil {
		token, err := c.tokens.Token(ctx)
		if err != nil {
			return fmt.Errorf("resolve token: %w", err)
		}
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &NetworkError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return &NetworkError{Op: op, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		rejection := &ServerRejection{
			Op:         op,
			StatusCode: resp.StatusCode,
			Message:    extractMessage(respBody),
		}
		if resp.StatusCode == http.StatusUnauthorized && c.onUnauthorized != nil {
			c.onUnauthorized()
		}
		c.logger.Warn("hms API non-2xx response", "status", resp.StatusCode, "path", path, "message", rejection.Message)
		return rejection
	}

	if len(respBody) == 0 || out == nil {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// extractMessage pulls the server's error message out of a rejection body,
// falling back to the truncated raw body.
func extractMessage(body []byte) string {
	var wrapped struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(body, &wrapped); err == nil {
		if wrapped.Message != "" {
			return wrapped.Message
		}
		if wrapped.Error != "" {
			return wrapped.Error
		}
	}
	msg := strings.TrimSpace(string(body))
	if len(msg) > 300 {
		msg = msg[:300]
	}
	return msg
}
