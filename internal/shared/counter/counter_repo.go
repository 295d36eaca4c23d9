package counter

import (
	"context"
	"fmt"

	"gorm.io/gorm"
)

const TypeStaffNumber = "staff_number"

// StoreCounter backs per-store sequences such as staff numbers.
type StoreCounter struct {
	StoreID     string `gorm:"type:uuid;primaryKey"`
	CounterType string `gorm:"type:varchar(50);primaryKey"`
	LastValue   int64  `gorm:"not null;default:0"`
	UpdatedAt   int64  `gorm:"autoUpdateTime"`
}

func (StoreCounter) TableName() string {
	return "store_counters"
}

//go:generate mockgen -destination=mock/counter_repo_mock.go -package=mock . Repository
type Repository interface {
	WithDB(db *gorm.DB) Repository
	GetNextValue(ctx context.Context, storeID string, counterType string) (int64, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

// WithDB binds the counter to another handle, typically one running inside a transaction.
func (r *repository) WithDB(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) GetNextValue(ctx context.Context, storeID string, counterType string) (int64, error) {
	var nextValue int64

	// atomic upsert so concurrent invites never share a number
	err := r.db.WithContext(ctx).Raw(`
		INSERT INTO store_counters (store_id, counter_type, last_value, updated_at)
		VALUES (?, ?, 1, extract(epoch from now())::bigint)
		ON CONFLICT (store_id, counter_type) DO UPDATE
		SET last_value = store_counters.last_value + 1, updated_at = extract(epoch from now())::bigint
		RETURNING last_value
	`, storeID, counterType).Scan(&nextValue).Error

	if err != nil {
		return 0, err
	}

	return nextValue, nil
}

// FormatStaffNumber renders a sequence value as STF-000042.
func FormatStaffNumber(n int64) string {
	return fmt.Sprintf("STF-%06d", n)
}
