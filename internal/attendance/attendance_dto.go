package attendance

import "time"

type ClockRequest struct {
	ShiftID string `json:"shift_id" binding:"required,uuid"`
	Note    string `json:"note" binding:"max=500"`
}

type CorrectAttendanceRequest struct {
	ClockIn  *time.Time `json:"clock_in"`
	ClockOut *time.Time `json:"clock_out"`
	Note     *string    `json:"note" binding:"omitempty,max=500"`
}

type ListFilter struct {
	From   string `form:"from"`
	To     string `form:"to"`
	UserID string `form:"user_id" binding:"omitempty,uuid"`
}

// Query is ListFilter after parsing and scoping.
type Query struct {
	From   *time.Time
	To     *time.Time
	UserID string
}

type SummaryFilter struct {
	Month  string `form:"month" binding:"required"`
	UserID string `form:"user_id" binding:"omitempty,uuid"`
}

type AttendanceResponse struct {
	ID             string  `json:"id"`
	ShiftID        string  `json:"shift_id"`
	UserID         string  `json:"user_id"`
	UserName       string  `json:"user_name,omitempty"`
	StoreID        string  `json:"store_id"`
	ClockIn        string  `json:"clock_in"`
	ClockOut       *string `json:"clock_out,omitempty"`
	WorkingMinutes int     `json:"working_minutes"`
	Status         string  `json:"status"`
	IsLate         bool    `json:"is_late"`
	Note           string  `json:"note,omitempty"`
}

type SummaryItem struct {
	UserID         string `json:"user_id"`
	UserName       string `json:"user_name"`
	Shifts         int    `json:"shifts"`
	Completed      int    `json:"completed"`
	Late           int    `json:"late"`
	WorkingMinutes int    `json:"working_minutes"`
}

type SummaryResponse struct {
	Month string        `json:"month"`
	Items []SummaryItem `json:"items"`
}
