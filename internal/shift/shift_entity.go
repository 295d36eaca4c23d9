package shift

import (
	"time"

	"github.com/google/uuid"
)

const (
	StatusScheduled = "SCHEDULED"
	StatusConfirmed = "CONFIRMED"
	StatusCancelled = "CANCELLED"
)

func IsValidStatus(s string) bool {
	return s == StatusScheduled || s == StatusConfirmed || s == StatusCancelled
}

type Shift struct {
	ID          uuid.UUID  `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	UserID      uuid.UUID  `gorm:"column:user_id;type:uuid;not null;index:idx_shifts_user_start,priority:1" json:"user_id"`
	StoreID     uuid.UUID  `gorm:"column:store_id;type:uuid;not null;index:idx_shifts_store_start,priority:1" json:"store_id"`
	StartTime   time.Time  `gorm:"column:start_time;type:timestamptz;not null;index:idx_shifts_store_start,priority:2;index:idx_shifts_user_start,priority:2" json:"start_time"`
	EndTime     time.Time  `gorm:"column:end_time;type:timestamptz;not null" json:"end_time"`
	Status      string     `gorm:"column:status;type:varchar(20);not null" json:"status"`
	Note        string     `gorm:"column:note;type:text" json:"note"`
	CreatedBy   *uuid.UUID `gorm:"column:created_by;type:uuid" json:"created_by,omitempty"`
	ConfirmedBy *uuid.UUID `gorm:"column:confirmed_by;type:uuid" json:"confirmed_by,omitempty"`
	ConfirmedAt *time.Time `gorm:"column:confirmed_at;type:timestamptz" json:"confirmed_at,omitempty"`
	CreatedAt   time.Time  `gorm:"column:created_at" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"column:updated_at" json:"updated_at"`
}

func (Shift) TableName() string {
	return "shifts"
}
