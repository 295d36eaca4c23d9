package store

import (
	"time"
	_ "time/tzdata"

	"github.com/google/uuid"
)

const (
	DefaultTimezone            = "Asia/Tokyo"
	DefaultLateGraceMinutes    = 5
	DefaultMinShiftMinutes     = 60
	DefaultMaxShiftMinutes     = 720
	DefaultRequestLeadDays     = 0
	DefaultAllowStaffSelfClock = true
)

type Store struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	Name      string    `gorm:"column:name;type:varchar(150);not null"`
	Address   string    `gorm:"column:address;type:varchar(255)"`
	OpenTime  string    `gorm:"column:open_time;type:varchar(5);not null"`
	CloseTime string    `gorm:"column:close_time;type:varchar(5);not null"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (Store) TableName() string {
	return "stores"
}

// StoreSettings holds the per-store scheduling rules. One row per store.
type StoreSettings struct {
	StoreID             uuid.UUID `gorm:"column:store_id;type:uuid;primaryKey"`
	Timezone            string    `gorm:"column:timezone;type:varchar(64);not null"`
	LateGraceMinutes    int       `gorm:"column:late_grace_minutes;not null"`
	MinShiftMinutes     int       `gorm:"column:min_shift_minutes;not null"`
	MaxShiftMinutes     int       `gorm:"column:max_shift_minutes;not null"`
	RequestLeadDays     int       `gorm:"column:request_lead_days;not null"`
	AllowStaffSelfClock bool      `gorm:"column:allow_staff_self_clock;not null"`
	UpdatedAt           time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (StoreSettings) TableName() string {
	return "store_settings"
}

func DefaultSettings(storeID uuid.UUID) StoreSettings {
	return StoreSettings{
		StoreID:             storeID,
		Timezone:            DefaultTimezone,
		LateGraceMinutes:    DefaultLateGraceMinutes,
		MinShiftMinutes:     DefaultMinShiftMinutes,
		MaxShiftMinutes:     DefaultMaxShiftMinutes,
		RequestLeadDays:     DefaultRequestLeadDays,
		AllowStaffSelfClock: DefaultAllowStaffSelfClock,
	}
}

// Location resolves Timezone, falling back to the default zone.
func (s StoreSettings) Location() *time.Location {
	if loc, err := time.LoadLocation(s.Timezone); err == nil {
		return loc
	}
	if loc, err := time.LoadLocation(DefaultTimezone); err == nil {
		return loc
	}
	return time.UTC
}

func (s StoreSettings) LateGrace() time.Duration {
	return time.Duration(s.LateGraceMinutes) * time.Minute
}
