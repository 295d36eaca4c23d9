package auditlog

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const (
	ActionLogin            = "LOGIN"
	ActionPasswordChanged  = "PASSWORD_CHANGED"
	ActionInviteAccepted   = "INVITE_ACCEPTED"
	ActionStoreCreated     = "STORE_CREATED"
	ActionSettingsUpdated  = "SETTINGS_UPDATED"
	ActionStaffInvited     = "STAFF_INVITED"
	ActionStaffUpdated     = "STAFF_UPDATED"
	ActionStaffDeleted     = "STAFF_DELETED"
	ActionShiftCreated     = "SHIFT_CREATED"
	ActionShiftUpdated     = "SHIFT_UPDATED"
	ActionShiftConfirmed   = "SHIFT_CONFIRMED"
	ActionShiftCancelled   = "SHIFT_CANCELLED"
	ActionShiftDeleted     = "SHIFT_DELETED"
	ActionRequestCreated   = "SHIFT_REQUEST_CREATED"
	ActionRequestDeleted   = "SHIFT_REQUEST_DELETED"
	ActionRequestApproved  = "SHIFT_REQUEST_APPROVED"
	ActionRequestRejected  = "SHIFT_REQUEST_REJECTED"
	ActionAttendanceEdited = "ATTENDANCE_CORRECTED"
	ActionServerStarted    = "SERVER_STARTED"
	ActionServerShutdown   = "SERVER_SHUTDOWN"
)

type AuditLog struct {
	ID         uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	StoreID    *uuid.UUID     `gorm:"type:uuid;index:idx_audit_store_created,priority:1"`
	ActorID    *uuid.UUID     `gorm:"type:uuid;index"`
	Action     string         `gorm:"type:varchar(64);not null;index"`
	TargetType string         `gorm:"type:varchar(64)"`
	TargetID   string         `gorm:"type:varchar(64)"`
	RequestID  string         `gorm:"type:varchar(64)"`
	Meta       datatypes.JSON `gorm:"type:jsonb"`
	CreatedAt  time.Time      `gorm:"not null;index:idx_audit_store_created,priority:2,sort:desc"`
}

func (AuditLog) TableName() string {
	return "audit_logs"
}
