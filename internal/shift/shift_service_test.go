package shift_test

import (
	"context"
	"database/sql"
	"encoding/json"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/coffeebean-kenobi/shifteditor-sub001/internal/attendance"
	"github.com/coffeebean-kenobi/shifteditor-sub001/internal/auditlog"
	"github.com/coffeebean-kenobi/shifteditor-sub001/internal/domain"
	"github.com/coffeebean-kenobi/shifteditor-sub001/internal/events"
	"github.com/coffeebean-kenobi/shifteditor-sub001/internal/messaging/kafka"
	kafkaMock "github.com/coffeebean-kenobi/shifteditor-sub001/internal/messaging/kafka/mock"
	"github.com/coffeebean-kenobi/shifteditor-sub001/internal/shared/apperror"
	"github.com/coffeebean-kenobi/shifteditor-sub001/internal/shift"
	shifterrors "github.com/coffeebean-kenobi/shifteditor-sub001/internal/shift/errors"
	shiftMock "github.com/coffeebean-kenobi/shifteditor-sub001/internal/shift/mock"
	"github.com/coffeebean-kenobi/shifteditor-sub001/internal/store"
)

type fakeRecorder struct {
	entries []auditlog.Entry
}

func (f *fakeRecorder) Record(_ context.Context, e auditlog.Entry) {
	f.entries = append(f.entries, e)
}

type serviceDeps struct {
	db         *sql.DB
	sqlMock    sqlmock.Sqlmock
	service    shift.Service
	repo       *shiftMock.MockRepository
	settings   *shiftMock.MockSettingsProvider
	members    *shiftMock.MockMemberChecker
	attendance *shiftMock.MockAttendanceReader
	outbox     *kafkaMock.MockOutboxRepository
	audit      *fakeRecorder
	storeID    uuid.UUID
	admin      domain.Actor
}

func setupServiceTest(t *testing.T) *serviceDeps {
	ctrl := gomock.NewController(t)

	db, sqlMock, err := sqlmock.New()
	assert.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	storeID := uuid.New()
	deps := &serviceDeps{
		db:         db,
		sqlMock:    sqlMock,
		repo:       shiftMock.NewMockRepository(ctrl),
		settings:   shiftMock.NewMockSettingsProvider(ctrl),
		members:    shiftMock.NewMockMemberChecker(ctrl),
		attendance: shiftMock.NewMockAttendanceReader(ctrl),
		outbox:     kafkaMock.NewMockOutboxRepository(ctrl),
		audit:      &fakeRecorder{},
		storeID:    storeID,
		admin:      domain.Actor{UserID: uuid.NewString(), StoreID: storeID.String(), IsAdmin: true},
	}
	deps.settings.EXPECT().Settings(gomock.Any(), storeID.String()).Return(store.DefaultSettings(storeID), nil).AnyTimes()
	deps.service = shift.NewService(db, deps.repo, shift.Deps{
		Settings:   deps.settings,
		Members:    deps.members,
		Attendance: deps.attendance,
		Outbox:     deps.outbox,
		Audit:      deps.audit,
	}, zap.NewNop())
	return deps
}

func futureStart() time.Time {
	return time.Now().UTC().Add(48 * time.Hour).Truncate(time.Hour)
}

func (d *serviceDeps) existing(status string) *shift.Shift {
	start := futureStart()
	return &shift.Shift{
		ID:        uuid.New(),
		UserID:    uuid.New(),
		StoreID:   d.storeID,
		StartTime: start,
		EndTime:   start.Add(8 * time.Hour),
		Status:    status,
	}
}

func TestShiftService_Create(t *testing.T) {
	ctx := context.Background()
	userID := uuid.NewString()
	start := futureStart()

	t.Run("success", func(t *testing.T) {
		deps := setupServiceTest(t)
		deps.members.EXPECT().ExistsActiveInStore(ctx, deps.storeID.String(), userID).Return(true, nil)
		deps.sqlMock.ExpectBegin()
		deps.sqlMock.ExpectCommit()
		deps.repo.EXPECT().WithTx(gomock.Any()).Return(deps.repo)
		deps.repo.EXPECT().LockUserSchedule(ctx, userID).Return(nil)
		deps.repo.EXPECT().HasOverlap(ctx, userID, start, start.Add(4*time.Hour), gomock.Any()).Return(false, nil)
		deps.repo.EXPECT().Create(ctx, gomock.Any()).DoAndReturn(func(_ context.Context, s *shift.Shift) error {
			assert.Equal(t, shift.StatusScheduled, s.Status)
			assert.Equal(t, deps.admin.UserID, s.CreatedBy.String())
			return nil
		})

		resp, err := deps.service.Create(ctx, deps.admin, shift.CreateShiftRequest{
			UserID: userID, StartTime: start, EndTime: start.Add(4 * time.Hour), Note: " opening ",
		})

		assert.NoError(t, err)
		assert.Equal(t, "opening", resp.Note)
		assert.Equal(t, attendance.WorkUpcoming, resp.WorkStatus.Status)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
		if assert.Len(t, deps.audit.entries, 1) {
			assert.Equal(t, auditlog.ActionShiftCreated, deps.audit.entries[0].Action)
		}
	})

	t.Run("overlap is a conflict", func(t *testing.T) {
		deps := setupServiceTest(t)
		deps.members.EXPECT().ExistsActiveInStore(ctx, deps.storeID.String(), userID).Return(true, nil)
		deps.sqlMock.ExpectBegin()
		deps.sqlMock.ExpectRollback()
		deps.repo.EXPECT().WithTx(gomock.Any()).Return(deps.repo)
		deps.repo.EXPECT().LockUserSchedule(ctx, userID).Return(nil)
		deps.repo.EXPECT().HasOverlap(ctx, userID, gomock.Any(), gomock.Any(), gomock.Any()).Return(true, nil)

		_, err := deps.service.Create(ctx, deps.admin, shift.CreateShiftRequest{
			UserID: userID, StartTime: start, EndTime: start.Add(4 * time.Hour),
		})

		assert.ErrorIs(t, err, shifterrors.ErrShiftOverlap)
		assert.Equal(t, 409, apperror.ToHTTP(err).Status)
		assert.Empty(t, deps.audit.entries)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	cases := []struct {
		name string
		end  time.Time
		want error
	}{
		{"end before start", start.Add(-time.Hour), shifterrors.ErrInvalidTimeRange},
		{"shorter than minimum", start.Add(30 * time.Minute), shifterrors.ErrInvalidDuration},
		{"longer than maximum", start.Add(13 * time.Hour), shifterrors.ErrInvalidDuration},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			deps := setupServiceTest(t)
			_, err := deps.service.Create(ctx, deps.admin, shift.CreateShiftRequest{UserID: userID, StartTime: start, EndTime: tc.end})
			assert.ErrorIs(t, err, tc.want)
		})
	}

	t.Run("user outside store", func(t *testing.T) {
		deps := setupServiceTest(t)
		deps.members.EXPECT().ExistsActiveInStore(ctx, deps.storeID.String(), userID).Return(false, nil)

		_, err := deps.service.Create(ctx, deps.admin, shift.CreateShiftRequest{
			UserID: userID, StartTime: start, EndTime: start.Add(4 * time.Hour),
		})
		assert.ErrorIs(t, err, shifterrors.ErrStaffNotInStore)
	})
}

func TestShiftService_Confirm(t *testing.T) {
	ctx := context.Background()

	t.Run("scheduled becomes confirmed with outbox event", func(t *testing.T) {
		deps := setupServiceTest(t)
		sh := deps.existing(shift.StatusScheduled)

		deps.sqlMock.ExpectBegin()
		deps.sqlMock.ExpectCommit()
		deps.repo.EXPECT().WithTx(gomock.Any()).Return(deps.repo)
		deps.repo.EXPECT().FindForUpdate(ctx, deps.storeID.String(), sh.ID.String()).Return(sh, nil)
		deps.attendance.EXPECT().FindByShiftIDs(ctx, []string{sh.ID.String()}).Return(nil, nil)
		deps.repo.EXPECT().Update(ctx, gomock.Any()).DoAndReturn(func(_ context.Context, s *shift.Shift) error {
			assert.Equal(t, shift.StatusConfirmed, s.Status)
			assert.NotNil(t, s.ConfirmedAt)
			return nil
		})
		deps.outbox.EXPECT().WithTx(gomock.Any()).Return(deps.outbox)
		deps.outbox.EXPECT().Create(ctx, gomock.Any()).DoAndReturn(func(_ context.Context, e kafka.OutboxEvent) error {
			assert.Equal(t, events.ShiftLifecycleTopic, e.Topic)
			assert.Equal(t, events.ShiftConfirmed, e.EventType)
			assert.Equal(t, sh.ID.String(), e.AggregateID)

			var payload events.ShiftLifecycleEvent
			assert.NoError(t, json.Unmarshal(e.Payload, &payload))
			assert.Equal(t, sh.UserID.String(), payload.UserID)
			assert.Equal(t, deps.admin.UserID, payload.ActorID)
			return nil
		})

		resp, err := deps.service.Confirm(ctx, deps.admin, sh.ID.String())

		assert.NoError(t, err)
		assert.Equal(t, shift.StatusConfirmed, resp.Status)
		assert.NotNil(t, resp.ConfirmedBy)
		assert.Equal(t, attendance.WorkUpcoming, resp.WorkStatus.Status)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("clocked in shift reports working after confirm", func(t *testing.T) {
		deps := setupServiceTest(t)
		now := time.Now().UTC()
		sh := deps.existing(shift.StatusScheduled)
		sh.StartTime = now.Add(-2 * time.Hour)
		sh.EndTime = now.Add(6 * time.Hour)

		deps.sqlMock.ExpectBegin()
		deps.sqlMock.ExpectCommit()
		deps.repo.EXPECT().WithTx(gomock.Any()).Return(deps.repo)
		deps.repo.EXPECT().FindForUpdate(ctx, deps.storeID.String(), sh.ID.String()).Return(sh, nil)
		deps.attendance.EXPECT().FindByShiftIDs(ctx, []string{sh.ID.String()}).
			Return([]attendance.Attendance{{ShiftID: sh.ID, UserID: sh.UserID, ClockIn: sh.StartTime}}, nil)
		deps.repo.EXPECT().Update(ctx, gomock.Any()).Return(nil)
		deps.outbox.EXPECT().WithTx(gomock.Any()).Return(deps.outbox)
		deps.outbox.EXPECT().Create(ctx, gomock.Any()).Return(nil)

		resp, err := deps.service.Confirm(ctx, deps.admin, sh.ID.String())

		assert.NoError(t, err)
		assert.Equal(t, shift.StatusConfirmed, resp.Status)
		assert.Equal(t, attendance.WorkWorking, resp.WorkStatus.Status)
		assert.GreaterOrEqual(t, resp.WorkStatus.WorkingMinutes, 119)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("only scheduled shifts", func(t *testing.T) {
		deps := setupServiceTest(t)
		sh := deps.existing(shift.StatusCancelled)

		deps.sqlMock.ExpectBegin()
		deps.sqlMock.ExpectRollback()
		deps.repo.EXPECT().WithTx(gomock.Any()).Return(deps.repo)
		deps.repo.EXPECT().FindForUpdate(ctx, deps.storeID.String(), sh.ID.String()).Return(sh, nil)
		deps.attendance.EXPECT().FindByShiftIDs(ctx, []string{sh.ID.String()}).Return(nil, nil)

		_, err := deps.service.Confirm(ctx, deps.admin, sh.ID.String())

		assert.ErrorIs(t, err, shifterrors.ErrInvalidShiftState)
		assert.Equal(t, 400, apperror.ToHTTP(err).Status)
	})

	t.Run("not found", func(t *testing.T) {
		deps := setupServiceTest(t)
		id := uuid.NewString()

		deps.sqlMock.ExpectBegin()
		deps.sqlMock.ExpectRollback()
		deps.repo.EXPECT().WithTx(gomock.Any()).Return(deps.repo)
		deps.repo.EXPECT().FindForUpdate(ctx, deps.storeID.String(), id).Return(nil, gorm.ErrRecordNotFound)

		_, err := deps.service.Confirm(ctx, deps.admin, id)
		assert.ErrorIs(t, err, shifterrors.ErrShiftNotFound)
	})
}

func TestShiftService_Cancel(t *testing.T) {
	ctx := context.Background()

	t.Run("clocked in shift cannot be cancelled", func(t *testing.T) {
		deps := setupServiceTest(t)
		sh := deps.existing(shift.StatusConfirmed)

		deps.sqlMock.ExpectBegin()
		deps.sqlMock.ExpectRollback()
		deps.repo.EXPECT().WithTx(gomock.Any()).Return(deps.repo)
		deps.repo.EXPECT().FindForUpdate(ctx, deps.storeID.String(), sh.ID.String()).Return(sh, nil)
		deps.attendance.EXPECT().FindByShiftIDs(ctx, []string{sh.ID.String()}).
			Return([]attendance.Attendance{{ShiftID: sh.ID, ClockIn: sh.StartTime}}, nil)

		_, err := deps.service.Cancel(ctx, deps.admin, sh.ID.String())
		assert.ErrorIs(t, err, shifterrors.ErrShiftHasAttendance)
	})

	t.Run("success", func(t *testing.T) {
		deps := setupServiceTest(t)
		sh := deps.existing(shift.StatusConfirmed)

		deps.sqlMock.ExpectBegin()
		deps.sqlMock.ExpectCommit()
		deps.repo.EXPECT().WithTx(gomock.Any()).Return(deps.repo)
		deps.repo.EXPECT().FindForUpdate(ctx, deps.storeID.String(), sh.ID.String()).Return(sh, nil)
		deps.attendance.EXPECT().FindByShiftIDs(ctx, []string{sh.ID.String()}).Return(nil, nil)
		deps.repo.EXPECT().Update(ctx, gomock.Any()).Return(nil)
		deps.outbox.EXPECT().WithTx(gomock.Any()).Return(deps.outbox)
		deps.outbox.EXPECT().Create(ctx, gomock.Any()).DoAndReturn(func(_ context.Context, e kafka.OutboxEvent) error {
			assert.Equal(t, events.ShiftCancelled, e.EventType)
			return nil
		})

		resp, err := deps.service.Cancel(ctx, deps.admin, sh.ID.String())

		assert.NoError(t, err)
		assert.Equal(t, shift.StatusCancelled, resp.Status)
		assert.Equal(t, attendance.WorkCancelled, resp.WorkStatus.Status)
	})
}

func TestShiftService_Update(t *testing.T) {
	ctx := context.Background()

	t.Run("editing a confirmed shift reverts it to scheduled", func(t *testing.T) {
		deps := setupServiceTest(t)
		sh := deps.existing(shift.StatusConfirmed)
		newEnd := sh.EndTime.Add(-time.Hour)

		deps.sqlMock.ExpectBegin()
		deps.sqlMock.ExpectCommit()
		deps.repo.EXPECT().WithTx(gomock.Any()).Return(deps.repo)
		deps.repo.EXPECT().FindForUpdate(ctx, deps.storeID.String(), sh.ID.String()).Return(sh, nil)
		deps.attendance.EXPECT().FindByShiftIDs(ctx, []string{sh.ID.String()}).Return(nil, nil)
		deps.repo.EXPECT().LockUserSchedule(ctx, sh.UserID.String()).Return(nil)
		deps.repo.EXPECT().HasOverlap(ctx, sh.UserID.String(), sh.StartTime, newEnd, sh.ID.String()).Return(false, nil)
		deps.repo.EXPECT().Update(ctx, gomock.Any()).DoAndReturn(func(_ context.Context, s *shift.Shift) error {
			assert.Equal(t, shift.StatusScheduled, s.Status)
			assert.Nil(t, s.ConfirmedAt)
			assert.Equal(t, newEnd, s.EndTime)
			return nil
		})
		deps.outbox.EXPECT().WithTx(gomock.Any()).Return(deps.outbox)
		deps.outbox.EXPECT().Create(ctx, gomock.Any()).DoAndReturn(func(_ context.Context, e kafka.OutboxEvent) error {
			assert.Equal(t, events.ShiftUpdated, e.EventType)
			return nil
		})

		resp, err := deps.service.Update(ctx, deps.admin, sh.ID.String(), shift.UpdateShiftRequest{EndTime: &newEnd})

		assert.NoError(t, err)
		assert.Equal(t, shift.StatusScheduled, resp.Status)
		if assert.Len(t, deps.audit.entries, 1) {
			assert.Equal(t, shift.StatusScheduled, deps.audit.entries[0].Meta["status"])
		}
	})

	t.Run("times are frozen once attendance exists", func(t *testing.T) {
		deps := setupServiceTest(t)
		sh := deps.existing(shift.StatusConfirmed)
		newStart := sh.StartTime.Add(time.Hour)

		deps.sqlMock.ExpectBegin()
		deps.sqlMock.ExpectRollback()
		deps.repo.EXPECT().WithTx(gomock.Any()).Return(deps.repo)
		deps.repo.EXPECT().FindForUpdate(ctx, deps.storeID.String(), sh.ID.String()).Return(sh, nil)
		deps.attendance.EXPECT().FindByShiftIDs(ctx, []string{sh.ID.String()}).
			Return([]attendance.Attendance{{ShiftID: sh.ID}}, nil)

		_, err := deps.service.Update(ctx, deps.admin, sh.ID.String(), shift.UpdateShiftRequest{StartTime: &newStart})
		assert.ErrorIs(t, err, shifterrors.ErrShiftHasAttendance)
	})

	t.Run("overlap with another shift", func(t *testing.T) {
		deps := setupServiceTest(t)
		sh := deps.existing(shift.StatusScheduled)
		newStart := sh.StartTime.Add(-time.Hour)

		deps.sqlMock.ExpectBegin()
		deps.sqlMock.ExpectRollback()
		deps.repo.EXPECT().WithTx(gomock.Any()).Return(deps.repo)
		deps.repo.EXPECT().FindForUpdate(ctx, deps.storeID.String(), sh.ID.String()).Return(sh, nil)
		deps.attendance.EXPECT().FindByShiftIDs(ctx, gomock.Any()).Return(nil, nil)
		deps.repo.EXPECT().LockUserSchedule(ctx, sh.UserID.String()).Return(nil)
		deps.repo.EXPECT().HasOverlap(ctx, sh.UserID.String(), newStart, sh.EndTime, sh.ID.String()).Return(true, nil)

		_, err := deps.service.Update(ctx, deps.admin, sh.ID.String(), shift.UpdateShiftRequest{StartTime: &newStart})
		assert.ErrorIs(t, err, shifterrors.ErrShiftOverlap)
	})

	t.Run("note edit on a clocked in shift keeps its work status", func(t *testing.T) {
		deps := setupServiceTest(t)
		now := time.Now().UTC()
		sh := deps.existing(shift.StatusScheduled)
		sh.StartTime = now.Add(-time.Hour)
		sh.EndTime = now.Add(3 * time.Hour)
		note := "covering register"

		deps.sqlMock.ExpectBegin()
		deps.sqlMock.ExpectCommit()
		deps.repo.EXPECT().WithTx(gomock.Any()).Return(deps.repo)
		deps.repo.EXPECT().FindForUpdate(ctx, deps.storeID.String(), sh.ID.String()).Return(sh, nil)
		deps.attendance.EXPECT().FindByShiftIDs(ctx, []string{sh.ID.String()}).
			Return([]attendance.Attendance{{ShiftID: sh.ID, ClockIn: sh.StartTime}}, nil)
		deps.repo.EXPECT().Update(ctx, gomock.Any()).Return(nil)
		deps.outbox.EXPECT().WithTx(gomock.Any()).Return(deps.outbox)
		deps.outbox.EXPECT().Create(ctx, gomock.Any()).Return(nil)

		resp, err := deps.service.Update(ctx, deps.admin, sh.ID.String(), shift.UpdateShiftRequest{Note: &note})

		assert.NoError(t, err)
		assert.Equal(t, note, resp.Note)
		assert.Equal(t, attendance.WorkWorking, resp.WorkStatus.Status)
	})

	t.Run("cancelled shifts are read only", func(t *testing.T) {
		deps := setupServiceTest(t)
		sh := deps.existing(shift.StatusCancelled)
		note := "x"

		deps.sqlMock.ExpectBegin()
		deps.sqlMock.ExpectRollback()
		deps.repo.EXPECT().WithTx(gomock.Any()).Return(deps.repo)
		deps.repo.EXPECT().FindForUpdate(ctx, deps.storeID.String(), sh.ID.String()).Return(sh, nil)

		_, err := deps.service.Update(ctx, deps.admin, sh.ID.String(), shift.UpdateShiftRequest{Note: &note})
		assert.ErrorIs(t, err, shifterrors.ErrInvalidShiftState)
	})
}

func TestShiftService_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("with attendance", func(t *testing.T) {
		deps := setupServiceTest(t)
		sh := deps.existing(shift.StatusConfirmed)
		deps.sqlMock.ExpectBegin()
		deps.sqlMock.ExpectRollback()
		deps.repo.EXPECT().WithTx(gomock.Any()).Return(deps.repo)
		deps.repo.EXPECT().FindForUpdate(ctx, deps.storeID.String(), sh.ID.String()).Return(sh, nil)
		deps.attendance.EXPECT().FindByShiftIDs(ctx, []string{sh.ID.String()}).Return([]attendance.Attendance{{ShiftID: sh.ID}}, nil)

		err := deps.service.Delete(ctx, deps.admin, sh.ID.String())
		assert.ErrorIs(t, err, shifterrors.ErrShiftHasAttendance)
		assert.Empty(t, deps.audit.entries)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("success", func(t *testing.T) {
		deps := setupServiceTest(t)
		sh := deps.existing(shift.StatusScheduled)
		deps.sqlMock.ExpectBegin()
		deps.sqlMock.ExpectCommit()
		deps.repo.EXPECT().WithTx(gomock.Any()).Return(deps.repo)
		deps.repo.EXPECT().FindForUpdate(ctx, deps.storeID.String(), sh.ID.String()).Return(sh, nil)
		deps.attendance.EXPECT().FindByShiftIDs(ctx, []string{sh.ID.String()}).Return(nil, nil)
		deps.repo.EXPECT().Delete(ctx, deps.storeID.String(), sh.ID.String()).Return(nil)

		assert.NoError(t, deps.service.Delete(ctx, deps.admin, sh.ID.String()))
		if assert.Len(t, deps.audit.entries, 1) {
			assert.Equal(t, auditlog.ActionShiftDeleted, deps.audit.entries[0].Action)
		}
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("missing", func(t *testing.T) {
		deps := setupServiceTest(t)
		id := uuid.NewString()
		deps.sqlMock.ExpectBegin()
		deps.sqlMock.ExpectRollback()
		deps.repo.EXPECT().WithTx(gomock.Any()).Return(deps.repo)
		deps.repo.EXPECT().FindForUpdate(ctx, deps.storeID.String(), id).Return(nil, gorm.ErrRecordNotFound)

		assert.ErrorIs(t, deps.service.Delete(ctx, deps.admin, id), shifterrors.ErrShiftNotFound)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})
}

func TestShiftService_Read(t *testing.T) {
	ctx := context.Background()

	t.Run("staff only sees own shift", func(t *testing.T) {
		deps := setupServiceTest(t)
		sh := deps.existing(shift.StatusConfirmed)
		deps.repo.EXPECT().FindByID(ctx, deps.storeID.String(), sh.ID.String()).Return(sh, nil)

		other := domain.Actor{UserID: uuid.NewString(), StoreID: deps.storeID.String()}
		_, err := deps.service.GetByID(ctx, other, sh.ID.String())
		assert.ErrorIs(t, err, apperror.ErrForbidden)
	})

	t.Run("list scopes staff and derives work status", func(t *testing.T) {
		deps := setupServiceTest(t)
		staff := domain.Actor{UserID: uuid.NewString(), StoreID: deps.storeID.String()}
		past := &shift.Shift{
			ID:        uuid.New(),
			UserID:    uuid.MustParse(staff.UserID),
			StoreID:   deps.storeID,
			StartTime: time.Now().UTC().Add(-10 * time.Hour),
			EndTime:   time.Now().UTC().Add(-2 * time.Hour),
			Status:    shift.StatusConfirmed,
		}
		out := past.EndTime
		deps.repo.EXPECT().List(ctx, deps.storeID.String(), gomock.Any(), 0, 20).
			DoAndReturn(func(_ context.Context, _ string, q shift.Query, _, _ int) ([]shift.Shift, int64, error) {
				assert.Equal(t, staff.UserID, q.UserID)
				assert.Equal(t, shift.StatusConfirmed, q.Status)
				return []shift.Shift{*past}, 1, nil
			})
		deps.attendance.EXPECT().FindByShiftIDs(ctx, []string{past.ID.String()}).
			Return([]attendance.Attendance{{ShiftID: past.ID, ClockIn: past.StartTime.Add(10 * time.Minute), ClockOut: &out}}, nil)

		resp, total, err := deps.service.List(ctx, staff, shift.ListShiftFilter{UserID: uuid.NewString(), Status: "confirmed"}, 1, 20)

		assert.NoError(t, err)
		assert.Equal(t, int64(1), total)
		assert.Equal(t, attendance.WorkCompleted, resp[0].WorkStatus.Status)
		assert.Equal(t, attendance.StatusLate, resp[0].WorkStatus.Punctuality)
		assert.Equal(t, 470, resp[0].WorkStatus.WorkingMinutes)
	})

	t.Run("unknown status filter", func(t *testing.T) {
		deps := setupServiceTest(t)
		_, _, err := deps.service.List(ctx, deps.admin, shift.ListShiftFilter{Status: "DONE"}, 1, 20)
		assert.ErrorIs(t, err, shifterrors.ErrInvalidStatusFilter)
	})
}
