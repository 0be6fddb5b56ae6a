package hms

// Field names mirror the hospital management system's wire format, which uses
// PascalCase keys throughout except for the Razorpay order handoff.

// Department is immutable reference data fetched per session.
type Department struct {
	DepartmentID int64  `json:"DepartmentID"`
	Department   string `json:"Department"`
}

// Consultant is a doctor attached to a department. Fee is read at selection
// time and frozen into the booking.
type Consultant struct {
	ConsultantID   int64   `json:"ConsultantID"`
	ConsultantName string  `json:"ConsultantName"`
	DepartmentID   int64   `json:"DepartmentID"`
	Fee            float64 `json:"Fee"`
	Degree         string  `json:"Degree"`
	Specialization string  `json:"Specialization"`
}

// Slot statuses as reported by the HMS.
const (
	SlotAvailable = "Available"
	SlotHold      = "Hold"
	SlotBooked    = "Booked"
	SlotCancelled = "Cancelled"
	SlotCompleted = "Completed"
)

// Slot is one bookable time unit for a consultant on a date.
type Slot struct {
	SlotID         int64  `json:"SlotID"`
	ConsultantID   int64  `json:"ConsultantID"`
	SlotDate       string `json:"SlotDate"`
	SlotTime       string `json:"SlotTime"`
	Status         string `json:"Status"`
	MaxCapacity    int    `json:"MaxCapacity"`
	AvailableSlots int    `json:"AvailableSlots"`
	SlotToken      string `json:"SlotToken"`
}

// AppointmentCreateRequest is the POST /appointments body. Pending is 1 until
// payment confirmation clears it.
type AppointmentCreateRequest struct {
	ConsultantID     int64  `json:"ConsultantID"`
	MRNo             string `json:"MRNo,omitempty"`
	ConsultationDate string `json:"ConsultationDate"`
	SlotID           int64  `json:"SlotID"`
	SlotToken        string `json:"SlotToken,omitempty"`
	Pending          int    `json:"Pending"`
	Remarks          string `json:"Remarks,omitempty"`
	PatientName      string `json:"PatientName"`
	MobileNo         string `json:"MobileNo"`
}

// Appointment is the server-confirmed record.
type Appointment struct {
	OPDOnlineAppointmentID int64  `json:"OPDOnlineAppointmentID"`
	ConsultantID           int64  `json:"ConsultantID"`
	MRNo                   string `json:"MRNo"`
	ConsultationDate       string `json:"ConsultationDate"`
	SlotID                 int64  `json:"SlotID"`
	Pending                int    `json:"Pending"`
	PatientName            string `json:"PatientName"`
	MobileNo               string `json:"MobileNo"`
	TransactionID          string `json:"TransactionID"`
}

// AppointmentFinalizeRequest is the PUT /appointments/{id} body that clears
// the pending flag once payment is confirmed.
type AppointmentFinalizeRequest struct {
	Pending       int    `json:"Pending"`
	TransactionID string `json:"TransactionID"`
}

// AppointmentSearch filters the admin-facing GET /appointments listing.
type AppointmentSearch struct {
	MobileNo         string
	ConsultationDate string
	PendingOnly      bool
}

// PaymentOrderRequest is the POST /payments body that asks the HMS to open a
// Razorpay order for an appointment.
type PaymentOrderRequest struct {
	OPDOnlineAppointmentID int64   `json:"OPDOnlineAppointmentID"`
	AmountPaid             float64 `json:"AmountPaid"`
	PaymentMode            string  `json:"PaymentMode"`
}

// PaymentOrder carries the provider order identifier issued by the HMS.
type PaymentOrder struct {
	OrderID string `json:"order_id"`
}

// PaymentCallbackRequest records the provider's success callback against the
// appointment's payment record.
type PaymentCallbackRequest struct {
	OPDOnlineAppointmentID int64   `json:"OPDOnlineAppointmentID"`
	PaymentMode            string  `json:"PaymentMode"`
	PaymentStatus          string  `json:"PaymentStatus"`
	AmountPaid             float64 `json:"AmountPaid"`
	TransactionID          string  `json:"TransactionID"`
}
