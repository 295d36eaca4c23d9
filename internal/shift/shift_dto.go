package shift

import (
	"time"

	"github.com/coffeebean-kenobi/shifteditor-sub001/internal/attendance"
)

type ListShiftFilter struct {
	From   string `form:"from"`
	To     string `form:"to"`
	UserID string `form:"user_id" binding:"omitempty,uuid"`
	Status string `form:"status"`
}

// Query is ListShiftFilter after parsing and scoping.
type Query struct {
	From   *time.Time
	To     *time.Time
	UserID string
	Status string
}

type CreateShiftRequest struct {
	UserID    string    `json:"user_id" binding:"required,uuid"`
	StartTime time.Time `json:"start_time" binding:"required"`
	EndTime   time.Time `json:"end_time" binding:"required"`
	Note      string    `json:"note" binding:"max=500"`
}

type UpdateShiftRequest struct {
	UserID    *string    `json:"user_id" binding:"omitempty,uuid"`
	StartTime *time.Time `json:"start_time"`
	EndTime   *time.Time `json:"end_time"`
	Note      *string    `json:"note" binding:"omitempty,max=500"`
}

type ShiftResponse struct {
	ID          string                `json:"id"`
	UserID      string                `json:"user_id"`
	StoreID     string                `json:"store_id"`
	StartTime   string                `json:"start_time"`
	EndTime     string                `json:"end_time"`
	Status      string                `json:"status"`
	Note        string                `json:"note,omitempty"`
	CreatedBy   *string               `json:"created_by,omitempty"`
	ConfirmedBy *string               `json:"confirmed_by,omitempty"`
	ConfirmedAt *string               `json:"confirmed_at,omitempty"`
	WorkStatus  attendance.WorkStatus `json:"work_status"`
}
