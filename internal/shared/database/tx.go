package database

import (
	"database/sql"

	"gorm.io/gorm"
)

// BindTx returns a gorm handle whose statements run on tx. Services open the
// transaction on *sql.DB so the outbox and gorm repositories share it.
func BindTx(db *gorm.DB, tx *sql.Tx) *gorm.DB {
	if tx == nil {
		return db
	}

	bound := db.Session(&gorm.Session{NewDB: true, SkipDefaultTransaction: true}).Model(nil)
	bound.Statement.ConnPool = tx
	return bound.Session(&gorm.Session{NewDB: true, SkipDefaultTransaction: true})
}
