package attendance_test

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/coffeebean-kenobi/shifteditor-sub001/internal/attendance"
)

func newGormMock(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	assert.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	gdb, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{})
	assert.NoError(t, err)
	return gdb, mock
}

func TestRepository_FindShift(t *testing.T) {
	storeID := uuid.New()
	shiftID := uuid.New()
	start := time.Now().UTC().Truncate(time.Minute)

	t.Run("reads the shift row under a share lock", func(t *testing.T) {
		gdb, mock := newGormMock(t)
		mock.ExpectQuery(`FROM "shifts" WHERE store_id = \$1 AND id = \$2 .*FOR SHARE`).
			WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "store_id", "start_time", "end_time", "status"}).
				AddRow(shiftID, uuid.New(), storeID, start, start.Add(8*time.Hour), "CONFIRMED"))

		ref, err := attendance.NewRepository(gdb).FindShift(context.Background(), storeID.String(), shiftID.String())

		assert.NoError(t, err)
		assert.Equal(t, shiftID, ref.ID)
		assert.Equal(t, "CONFIRMED", ref.Status)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing shift", func(t *testing.T) {
		gdb, mock := newGormMock(t)
		mock.ExpectQuery(`FROM "shifts" .*FOR SHARE`).
			WillReturnRows(sqlmock.NewRows([]string{"id"}))

		_, err := attendance.NewRepository(gdb).FindShift(context.Background(), storeID.String(), shiftID.String())
		assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	})
}
