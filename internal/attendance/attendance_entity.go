package attendance

import (
	"time"

	"github.com/google/uuid"
)

const (
	StatusOnTime    = "ON_TIME"
	StatusLate      = "LATE"
	StatusCompleted = "COMPLETED"
)

type Attendance struct {
	ID             uuid.UUID  `gorm:"column:id;type:uuid;primaryKey"`
	ShiftID        uuid.UUID  `gorm:"column:shift_id;type:uuid;not null;uniqueIndex:uq_attendances_shift"`
	UserID         uuid.UUID  `gorm:"column:user_id;type:uuid;not null;index"`
	StoreID        uuid.UUID  `gorm:"column:store_id;type:uuid;not null;index:idx_attendances_store_clock_in,priority:1"`
	ClockIn        time.Time  `gorm:"column:clock_in;type:timestamptz;not null;index:idx_attendances_store_clock_in,priority:2"`
	ClockOut       *time.Time `gorm:"column:clock_out;type:timestamptz"`
	WorkingMinutes int        `gorm:"column:working_minutes;not null"`
	Status         string     `gorm:"column:status;type:varchar(20);not null"`
	IsLate         bool       `gorm:"column:is_late;not null"`
	Note           string     `gorm:"column:note;type:text"`
	CreatedAt      time.Time  `gorm:"column:created_at"`
	UpdatedAt      time.Time  `gorm:"column:updated_at"`
	User           *UserRef   `gorm:"foreignKey:UserID;references:ID"`
}

func (Attendance) TableName() string {
	return "attendances"
}

type UserRef struct {
	ID   uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name string    `gorm:"column:name"`
}

func (UserRef) TableName() string {
	return "users"
}

// ShiftRef is the slice of a shift row that clocking needs.
type ShiftRef struct {
	ID        uuid.UUID `gorm:"column:id"`
	UserID    uuid.UUID `gorm:"column:user_id"`
	StoreID   uuid.UUID `gorm:"column:store_id"`
	StartTime time.Time `gorm:"column:start_time"`
	EndTime   time.Time `gorm:"column:end_time"`
	Status    string    `gorm:"column:status"`
}

// shiftCancelled mirrors the shift status value; this package does not import shift.
const shiftCancelled = "CANCELLED"

func (s ShiftRef) Window() ShiftWindow {
	return ShiftWindow{Start: s.StartTime, End: s.EndTime, Cancelled: s.Status == shiftCancelled}
}

// SummaryRow is one user's aggregate over a period.
type SummaryRow struct {
	UserID         uuid.UUID `gorm:"column:user_id"`
	UserName       string    `gorm:"column:user_name"`
	Shifts         int       `gorm:"column:shifts"`
	Completed      int       `gorm:"column:completed"`
	Late           int       `gorm:"column:late"`
	WorkingMinutes int       `gorm:"column:working_minutes"`
}
