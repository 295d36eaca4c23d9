package events

import "time"

const (
	ShiftLifecycleTopic       = "shifteditor.shift.lifecycle.v1"
	ShiftRequestReviewedTopic = "shifteditor.shift_request.reviewed.v1"
)

const (
	ShiftConfirmed  = "SHIFT_CONFIRMED"
	ShiftUpdated    = "SHIFT_UPDATED"
	ShiftCancelled  = "SHIFT_CANCELLED"
	RequestApproved = "REQUEST_APPROVED"
	RequestRejected = "REQUEST_REJECTED"
)

const (
	AggregateShift        = "shift"
	AggregateShiftRequest = "shift_request"
)

type ShiftLifecycleEvent struct {
	EventType  string    `json:"event_type"`
	ShiftID    string    `json:"shift_id"`
	StoreID    string    `json:"store_id"`
	UserID     string    `json:"user_id"`
	ActorID    string    `json:"actor_id"`
	StartTime  time.Time `json:"start_time"`
	EndTime    time.Time `json:"end_time"`
	OccurredAt time.Time `json:"occurred_at"`
}

type ShiftRequestReviewedEvent struct {
	EventType  string    `json:"event_type"`
	RequestID  string    `json:"request_id"`
	StoreID    string    `json:"store_id"`
	UserID     string    `json:"user_id"`
	ShiftID    string    `json:"shift_id,omitempty"`
	Reason     string    `json:"reason,omitempty"`
	ReviewedBy string    `json:"reviewed_by"`
	StartTime  time.Time `json:"start_time"`
	EndTime    time.Time `json:"end_time"`
	OccurredAt time.Time `json:"occurred_at"`
}
