package tenant

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

type row struct {
	ID      string
	StoreID string
}

func TestScope(t *testing.T) {
	sqlDB, _, err := sqlmock.New()
	assert.NoError(t, err)
	defer sqlDB.Close()

	gdb, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{DryRun: true})
	assert.NoError(t, err)

	var rows []row
	stmt := gdb.Table("rows").Scopes(Scope("store-1")).Find(&rows).Statement

	assert.Contains(t, stmt.SQL.String(), "store_id = $1")
	assert.Equal(t, []any{"store-1"}, stmt.Vars)
}
