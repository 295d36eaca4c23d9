package staff

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type User struct {
	ID           uuid.UUID      `gorm:"column:id;type:uuid;primaryKey;default:gen_random_uuid()"`
	StoreID      uuid.UUID      `gorm:"column:store_id;type:uuid;not null;index;uniqueIndex:uq_users_store_staff_number,priority:1"`
	Name         string         `gorm:"column:name;type:varchar(255);not null"`
	Email        string         `gorm:"column:email;type:varchar(255);not null;uniqueIndex:uq_users_email,where:deleted_at IS NULL"`
	PasswordHash string         `gorm:"column:password_hash;type:text;not null"`
	Role         string         `gorm:"column:role;type:varchar(20);not null;default:STAFF"`
	IsSuperAdmin bool           `gorm:"column:is_super_admin;not null;default:false"`
	IsActive     bool           `gorm:"column:is_active;not null;default:true"`
	StaffNumber  string         `gorm:"column:staff_number;type:varchar(20);uniqueIndex:uq_users_store_staff_number,priority:2"`
	LastLoginAt  *time.Time     `gorm:"column:last_login_at"`
	CreatedAt    time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time      `gorm:"column:updated_at;autoUpdateTime"`
	DeletedAt    gorm.DeletedAt `gorm:"column:deleted_at;index"`
}

func (User) TableName() string {
	return "users"
}
