package notify

import "time"

// Типы событий уведомлений
const (
	EventBookingCreated   = "booking.created"
	EventBookingApproved  = "booking.approved"
	EventBookingRejected  = "booking.rejected"
	EventBookingCancelled = "booking.cancelled"
	EventStepEscalated    = "approval.step.escalated"
)

// Event событие для нотификационного сервиса
// Поле Payload зависит от типа события
type Event struct {
	ID         string      `json:"id"` // uuid
	Type       string      `json:"type"`
	OccurredAt time.Time   `json:"occurredAt"`
	Payload    interface{} `json:"payload"`
}

// BookingPayload данные событий жизненного цикла бронирования
type BookingPayload struct {
	BookingID  int64  `json:"bookingId"`
	FacilityID int64  `json:"facilityId"`
	ZoneID     int64  `json:"zoneId"`
	UserID     int64  `json:"userId"`
	Status     string `json:"status"`
	TotalPrice int64  `json:"totalPrice,omitempty"`
}

// EscalationPayload данные события эскалации шага согласования
type EscalationPayload struct {
	BookingID    int64     `json:"bookingId"`
	WorkflowID   int64     `json:"workflowId"`
	StepID       string    `json:"stepId"`
	ApproverRole string    `json:"approverRole"`
	Deadline     time.Time `json:"deadline"`
}
