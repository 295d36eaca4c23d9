package store

import "github.com/coffeebean-kenobi/shifteditor-sub001/internal/staff"

type StoreResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Address   string `json:"address"`
	OpenTime  string `json:"open_time"`
	CloseTime string `json:"close_time"`
	CreatedAt string `json:"created_at"`
}

type SettingsBody struct {
	Timezone            string `json:"timezone"`
	LateGraceMinutes    int    `json:"late_grace_minutes"`
	MinShiftMinutes     int    `json:"min_shift_minutes"`
	MaxShiftMinutes     int    `json:"max_shift_minutes"`
	RequestLeadDays     int    `json:"request_lead_days"`
	AllowStaffSelfClock bool   `json:"allow_staff_self_clock"`
}

type SettingsResponse struct {
	Store    StoreResponse `json:"store"`
	Settings SettingsBody  `json:"settings"`
}

type UpdateSettingsRequest struct {
	Name                *string `json:"name" binding:"omitempty,min=1,max=150"`
	Address             *string `json:"address" binding:"omitempty,max=255"`
	OpenTime            *string `json:"open_time"`
	CloseTime           *string `json:"close_time"`
	Timezone            *string `json:"timezone"`
	LateGraceMinutes    *int    `json:"late_grace_minutes" binding:"omitempty,min=0,max=120"`
	MinShiftMinutes     *int    `json:"min_shift_minutes" binding:"omitempty,min=1,max=1440"`
	MaxShiftMinutes     *int    `json:"max_shift_minutes" binding:"omitempty,min=1,max=1440"`
	RequestLeadDays     *int    `json:"request_lead_days" binding:"omitempty,min=0,max=60"`
	AllowStaffSelfClock *bool   `json:"allow_staff_self_clock"`
}

type CreateStoreRequest struct {
	Name          string `json:"name" binding:"required,max=150"`
	Address       string `json:"address" binding:"max=255"`
	OpenTime      string `json:"open_time" binding:"required"`
	CloseTime     string `json:"close_time" binding:"required"`
	Timezone      string `json:"timezone"`
	AdminName     string `json:"admin_name" binding:"required,max=255"`
	AdminEmail    string `json:"admin_email" binding:"required,email"`
	AdminPassword string `json:"admin_password" binding:"required,min=8,max=72"`
}

type CreateStoreResponse struct {
	Store    StoreResponse       `json:"store"`
	Settings SettingsBody        `json:"settings"`
	Admin    staff.StaffResponse `json:"admin"`
}
