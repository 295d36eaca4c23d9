package shiftrequest

import "time"

type CreateShiftRequestRequest struct {
	StartTime time.Time `json:"start_time" binding:"required"`
	EndTime   time.Time `json:"end_time" binding:"required"`
	Note      string    `json:"note" binding:"max=500"`
}

type RejectShiftRequestRequest struct {
	Reason string `json:"reason" binding:"required,max=500"`
}

type ListFilter struct {
	Status string `form:"status"`
	UserID string `form:"user_id" binding:"omitempty,uuid"`
}

type ShiftRequestResponse struct {
	ID              string  `json:"id"`
	UserID          string  `json:"user_id"`
	UserName        string  `json:"user_name,omitempty"`
	StoreID         string  `json:"store_id"`
	StartTime       string  `json:"start_time"`
	EndTime         string  `json:"end_time"`
	Note            string  `json:"note,omitempty"`
	Status          string  `json:"status"`
	ReviewedBy      *string `json:"reviewed_by,omitempty"`
	ReviewedAt      *string `json:"reviewed_at,omitempty"`
	RejectionReason *string `json:"rejection_reason,omitempty"`
	ShiftID         *string `json:"shift_id,omitempty"`
	CreatedAt       string  `json:"created_at"`
}
