package tenant

import "gorm.io/gorm"

// Scope limits a query to the rows of one store.
func Scope(storeID string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("store_id = ?", storeID)
	}
}
