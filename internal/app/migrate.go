package app

import (
	"gorm.io/gorm"

	"github.com/coffeebean-kenobi/shifteditor-sub001/internal/attendance"
	"github.com/coffeebean-kenobi/shifteditor-sub001/internal/auditlog"
	"github.com/coffeebean-kenobi/shifteditor-sub001/internal/messaging/kafka"
	"github.com/coffeebean-kenobi/shifteditor-sub001/internal/notification"
	"github.com/coffeebean-kenobi/shifteditor-sub001/internal/shared/counter"
	"github.com/coffeebean-kenobi/shifteditor-sub001/internal/shift"
	"github.com/coffeebean-kenobi/shifteditor-sub001/internal/shiftrequest"
	"github.com/coffeebean-kenobi/shifteditor-sub001/internal/staff"
	"github.com/coffeebean-kenobi/shifteditor-sub001/internal/store"
)

// Models lists every table owned by the API, parents before children.
func Models() []any {
	return []any{
		&store.Store{},
		&store.StoreSettings{},
		&staff.User{},
		&counter.StoreCounter{},
		&shift.Shift{},
		&shiftrequest.ShiftRequest{},
		&attendance.Attendance{},
		&notification.Notification{},
		&notification.NotificationPreference{},
		&auditlog.AuditLog{},
		&kafka.OutboxRecord{},
	}
}

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(Models()...)
}
