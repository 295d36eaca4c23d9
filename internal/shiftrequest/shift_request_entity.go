package shiftrequest

import (
	"time"

	"github.com/google/uuid"
)

const (
	StatusPending  = "PENDING"
	StatusApproved = "APPROVED"
	StatusRejected = "REJECTED"
)

func IsValidStatus(s string) bool {
	return s == StatusPending || s == StatusApproved || s == StatusRejected
}

type ShiftRequest struct {
	ID              uuid.UUID  `gorm:"column:id;type:uuid;primaryKey"`
	UserID          uuid.UUID  `gorm:"column:user_id;type:uuid;not null;index:idx_shift_requests_user_status,priority:1"`
	StoreID         uuid.UUID  `gorm:"column:store_id;type:uuid;not null;index:idx_shift_requests_store_status,priority:1"`
	StartTime       time.Time  `gorm:"column:start_time;type:timestamptz;not null"`
	EndTime         time.Time  `gorm:"column:end_time;type:timestamptz;not null"`
	Note            string     `gorm:"column:note;type:text"`
	Status          string     `gorm:"column:status;type:varchar(20);not null;index:idx_shift_requests_user_status,priority:2;index:idx_shift_requests_store_status,priority:2"`
	ReviewedBy      *uuid.UUID `gorm:"column:reviewed_by;type:uuid"`
	ReviewedAt      *time.Time `gorm:"column:reviewed_at;type:timestamptz"`
	RejectionReason *string    `gorm:"column:rejection_reason;type:text"`
	ShiftID         *uuid.UUID `gorm:"column:shift_id;type:uuid"`
	CreatedAt       time.Time  `gorm:"column:created_at"`
	UpdatedAt       time.Time  `gorm:"column:updated_at"`

	User *UserRef `gorm:"foreignKey:UserID;references:ID"`
}

func (ShiftRequest) TableName() string {
	return "shift_requests"
}

// UserRef is the requester name joined for listings.
type UserRef struct {
	ID   uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	Name string    `gorm:"column:name"`
}

func (UserRef) TableName() string {
	return "users"
}
