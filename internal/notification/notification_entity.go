package notification

import (
	"time"

	"github.com/google/uuid"
)

const (
	TypeShiftConfirmed  = "SHIFT_CONFIRMED"
	TypeShiftUpdated    = "SHIFT_UPDATED"
	TypeShiftCancelled  = "SHIFT_CANCELLED"
	TypeRequestApproved = "REQUEST_APPROVED"
	TypeRequestRejected = "REQUEST_REJECTED"
	TypeStaffInvited    = "STAFF_INVITED"
	TypeSystem          = "SYSTEM"
)

// AllTypes is the order preferences are listed in.
var AllTypes = []string{
	TypeShiftConfirmed,
	TypeShiftUpdated,
	TypeShiftCancelled,
	TypeRequestApproved,
	TypeRequestRejected,
	TypeStaffInvited,
	TypeSystem,
}

func IsValidType(t string) bool {
	for _, v := range AllTypes {
		if v == t {
			return true
		}
	}
	return false
}

type Notification struct {
	ID        uuid.UUID  `gorm:"column:id;type:uuid;primaryKey"`
	UserID    uuid.UUID  `gorm:"column:user_id;type:uuid;not null;index:idx_notifications_user_read,priority:1"`
	StoreID   uuid.UUID  `gorm:"column:store_id;type:uuid;not null;index"`
	Type      string     `gorm:"column:type;type:varchar(30);not null"`
	Title     string     `gorm:"column:title;type:varchar(255);not null"`
	Message   string     `gorm:"column:message;type:text;not null"`
	IsRead    bool       `gorm:"column:is_read;not null;index:idx_notifications_user_read,priority:2"`
	ReadAt    *time.Time `gorm:"column:read_at"`
	CreatedAt time.Time  `gorm:"column:created_at;autoCreateTime"`
}

func (Notification) TableName() string {
	return "notifications"
}

// NotificationPreference toggles delivery channels per user and type.
// Absent rows mean every channel is enabled.
type NotificationPreference struct {
	UserID    uuid.UUID `gorm:"column:user_id;type:uuid;primaryKey"`
	Type      string    `gorm:"column:type;type:varchar(30);primaryKey"`
	Email     bool      `gorm:"column:email;not null"`
	Push      bool      `gorm:"column:push;not null"`
	InApp     bool      `gorm:"column:in_app;not null"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (NotificationPreference) TableName() string {
	return "notification_preferences"
}

func defaultPreference(userID uuid.UUID, notificationType string) NotificationPreference {
	return NotificationPreference{UserID: userID, Type: notificationType, Email: true, Push: true, InApp: true}
}
