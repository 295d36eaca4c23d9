package attendance

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"gorm.io/gorm"

	attendanceerrors "github.com/coffeebean-kenobi/shifteditor-sub001/internal/attendance/errors"
	"github.com/coffeebean-kenobi/shifteditor-sub001/internal/auditlog"
	"github.com/coffeebean-kenobi/shifteditor-sub001/internal/domain"
	"github.com/coffeebean-kenobi/shifteditor-sub001/internal/store"
)

type fakeRepo struct {
	createFn         func(ctx context.Context, a *Attendance) error
	findByIDFn       func(ctx context.Context, storeID, id string) (*Attendance, error)
	findByShiftIDFn  func(ctx context.Context, shiftID string, forUpdate bool) (*Attendance, error)
	findByShiftIDsFn func(ctx context.Context, shiftIDs []string) ([]Attendance, error)
	listFn           func(ctx context.Context, storeID string, q Query, offset, limit int) ([]Attendance, int64, error)
	updateFn         func(ctx context.Context, a *Attendance) error
	findShiftFn      func(ctx context.Context, storeID, shiftID string) (*ShiftRef, error)
	summarizeFn      func(ctx context.Context, storeID, userID string, from, to time.Time) ([]SummaryRow, error)
}

func (f *fakeRepo) WithTx(*sql.Tx) Repository { return f }
func (f *fakeRepo) Create(ctx context.Context, a *Attendance) error {
	return f.createFn(ctx, a)
}
func (f *fakeRepo) FindByID(ctx context.Context, storeID, id string) (*Attendance, error) {
	return f.findByIDFn(ctx, storeID, id)
}
func (f *fakeRepo) FindByShiftID(ctx context.Context, shiftID string, forUpdate bool) (*Attendance, error) {
	return f.findByShiftIDFn(ctx, shiftID, forUpdate)
}
func (f *fakeRepo) FindByShiftIDs(ctx context.Context, shiftIDs []string) ([]Attendance, error) {
	return f.findByShiftIDsFn(ctx, shiftIDs)
}
func (f *fakeRepo) List(ctx context.Context, storeID string, q Query, offset, limit int) ([]Attendance, int64, error) {
	return f.listFn(ctx, storeID, q, offset, limit)
}
func (f *fakeRepo) Update(ctx context.Context, a *Attendance) error {
	return f.updateFn(ctx, a)
}
func (f *fakeRepo) FindShift(ctx context.Context, storeID, shiftID string) (*ShiftRef, error) {
	return f.findShiftFn(ctx, storeID, shiftID)
}
func (f *fakeRepo) Summarize(ctx context.Context, storeID, userID string, from, to time.Time) ([]SummaryRow, error) {
	return f.summarizeFn(ctx, storeID, userID, from, to)
}

type fakeSettings struct {
	settings store.StoreSettings
	err      error
}

func (f fakeSettings) Settings(context.Context, string) (store.StoreSettings, error) {
	return f.settings, f.err
}

type fakeRecorder struct {
	entries []auditlog.Entry
}

func (f *fakeRecorder) Record(_ context.Context, e auditlog.Entry) {
	f.entries = append(f.entries, e)
}

type fixture struct {
	sqlMock sqlmock.Sqlmock
	repo    *fakeRepo
	audit   *fakeRecorder
	svc     *service
	storeID uuid.UUID
	userID  uuid.UUID
	shift   *ShiftRef
	actor   domain.Actor
}

func newFixture(t *testing.T, now time.Time) *fixture {
	db, sqlMock, err := sqlmock.New()
	assert.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	storeID, userID := uuid.New(), uuid.New()
	start := time.Date(2024, 4, 1, 9, 0, 0, 0, time.UTC)
	f := &fixture{
		sqlMock: sqlMock,
		repo:    &fakeRepo{},
		audit:   &fakeRecorder{},
		storeID: storeID,
		userID:  userID,
		shift: &ShiftRef{
			ID:        uuid.New(),
			UserID:    userID,
			StoreID:   storeID,
			StartTime: start,
			EndTime:   start.Add(8 * time.Hour),
			Status:    "CONFIRMED",
		},
		actor: domain.Actor{UserID: userID.String(), StoreID: storeID.String()},
	}
	f.repo.findShiftFn = func(context.Context, string, string) (*ShiftRef, error) { return f.shift, nil }

	svc := NewService(db, f.repo, fakeSettings{settings: store.DefaultSettings(storeID)}, f.audit, zap.NewNop()).(*service)
	svc.now = func() time.Time { return now }
	f.svc = svc
	return f
}

func TestService_ClockIn(t *testing.T) {
	ctx := context.Background()
	start := time.Date(2024, 4, 1, 9, 0, 0, 0, time.UTC)

	cases := []struct {
		name       string
		now        time.Time
		wantStatus string
	}{
		{"early is on time", start.Add(-30 * time.Minute), StatusOnTime},
		{"within grace is on time", start.Add(5 * time.Minute), StatusOnTime},
		{"after grace is late", start.Add(5*time.Minute + time.Second), StatusLate},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t, tc.now)
			f.sqlMock.ExpectBegin()
			f.sqlMock.ExpectCommit()
			f.repo.findByShiftIDFn = func(context.Context, string, bool) (*Attendance, error) {
				return nil, gorm.ErrRecordNotFound
			}
			var saved Attendance
			f.repo.createFn = func(_ context.Context, a *Attendance) error { saved = *a; return nil }

			resp, err := f.svc.ClockIn(ctx, f.actor, ClockRequest{ShiftID: f.shift.ID.String()})

			assert.NoError(t, err)
			assert.Equal(t, tc.wantStatus, resp.Status)
			assert.Equal(t, tc.wantStatus == StatusLate, saved.IsLate)
			assert.Equal(t, f.shift.ID, saved.ShiftID)
			assert.NoError(t, f.sqlMock.ExpectationsWereMet())
		})
	}

	t.Run("too early", func(t *testing.T) {
		f := newFixture(t, start.Add(-61*time.Minute))
		f.sqlMock.ExpectBegin()
		f.sqlMock.ExpectRollback()

		_, err := f.svc.ClockIn(ctx, f.actor, ClockRequest{ShiftID: f.shift.ID.String()})
		assert.ErrorIs(t, err, attendanceerrors.ErrOutsideClockWindow)
	})

	t.Run("after shift end", func(t *testing.T) {
		f := newFixture(t, start.Add(8*time.Hour+time.Minute))
		f.sqlMock.ExpectBegin()
		f.sqlMock.ExpectRollback()

		_, err := f.svc.ClockIn(ctx, f.actor, ClockRequest{ShiftID: f.shift.ID.String()})
		assert.ErrorIs(t, err, attendanceerrors.ErrOutsideClockWindow)
	})

	t.Run("not the owner", func(t *testing.T) {
		f := newFixture(t, start)
		f.sqlMock.ExpectBegin()
		f.sqlMock.ExpectRollback()
		other := f.actor
		other.UserID = uuid.NewString()

		_, err := f.svc.ClockIn(ctx, other, ClockRequest{ShiftID: f.shift.ID.String()})
		assert.ErrorIs(t, err, attendanceerrors.ErrNotShiftOwner)
	})

	t.Run("cancelled shift", func(t *testing.T) {
		f := newFixture(t, start)
		f.shift.Status = "CANCELLED"
		f.sqlMock.ExpectBegin()
		f.sqlMock.ExpectRollback()

		_, err := f.svc.ClockIn(ctx, f.actor, ClockRequest{ShiftID: f.shift.ID.String()})
		assert.ErrorIs(t, err, attendanceerrors.ErrShiftCancelled)
	})

	t.Run("duplicate", func(t *testing.T) {
		f := newFixture(t, start)
		f.sqlMock.ExpectBegin()
		f.sqlMock.ExpectRollback()
		f.repo.findByShiftIDFn = func(context.Context, string, bool) (*Attendance, error) {
			return &Attendance{ID: uuid.New()}, nil
		}

		_, err := f.svc.ClockIn(ctx, f.actor, ClockRequest{ShiftID: f.shift.ID.String()})
		assert.ErrorIs(t, err, attendanceerrors.ErrAlreadyClockedIn)
	})

	t.Run("shift missing", func(t *testing.T) {
		f := newFixture(t, start)
		f.sqlMock.ExpectBegin()
		f.sqlMock.ExpectRollback()
		f.repo.findShiftFn = func(context.Context, string, string) (*ShiftRef, error) {
			return nil, gorm.ErrRecordNotFound
		}

		_, err := f.svc.ClockIn(ctx, f.actor, ClockRequest{ShiftID: uuid.NewString()})
		assert.ErrorIs(t, err, attendanceerrors.ErrShiftNotFound)
	})

	t.Run("self clock disabled", func(t *testing.T) {
		f := newFixture(t, start)
		settings := store.DefaultSettings(f.storeID)
		settings.AllowStaffSelfClock = false
		f.svc.settings = fakeSettings{settings: settings}

		_, err := f.svc.ClockIn(ctx, f.actor, ClockRequest{ShiftID: f.shift.ID.String()})
		assert.ErrorIs(t, err, attendanceerrors.ErrSelfClockDisabled)
	})
}

func TestService_ClockOut(t *testing.T) {
	ctx := context.Background()
	clockIn := time.Date(2024, 4, 1, 9, 2, 0, 0, time.UTC)
	now := clockIn.Add(7*time.Hour + 59*time.Minute + 59*time.Second)

	t.Run("computes floored minutes", func(t *testing.T) {
		f := newFixture(t, now)
		f.sqlMock.ExpectBegin()
		f.sqlMock.ExpectCommit()
		f.repo.findByShiftIDFn = func(_ context.Context, _ string, forUpdate bool) (*Attendance, error) {
			assert.True(t, forUpdate)
			return &Attendance{ID: uuid.New(), ShiftID: f.shift.ID, UserID: f.userID, StoreID: f.storeID, ClockIn: clockIn, Status: StatusOnTime}, nil
		}
		var saved Attendance
		f.repo.updateFn = func(_ context.Context, a *Attendance) error { saved = *a; return nil }

		resp, err := f.svc.ClockOut(ctx, f.actor, ClockRequest{ShiftID: f.shift.ID.String()})

		assert.NoError(t, err)
		assert.Equal(t, StatusCompleted, resp.Status)
		assert.Equal(t, 479, resp.WorkingMinutes)
		assert.Equal(t, 479, saved.WorkingMinutes)
		assert.NotNil(t, resp.ClockOut)
	})

	t.Run("without clock in", func(t *testing.T) {
		f := newFixture(t, now)
		f.sqlMock.ExpectBegin()
		f.sqlMock.ExpectRollback()
		f.repo.findByShiftIDFn = func(context.Context, string, bool) (*Attendance, error) {
			return nil, gorm.ErrRecordNotFound
		}

		_, err := f.svc.ClockOut(ctx, f.actor, ClockRequest{ShiftID: f.shift.ID.String()})
		assert.ErrorIs(t, err, attendanceerrors.ErrNotClockedIn)
	})

	t.Run("twice", func(t *testing.T) {
		f := newFixture(t, now)
		f.sqlMock.ExpectBegin()
		f.sqlMock.ExpectRollback()
		out := now.Add(-time.Minute)
		f.repo.findByShiftIDFn = func(context.Context, string, bool) (*Attendance, error) {
			return &Attendance{UserID: f.userID, StoreID: f.storeID, ClockIn: clockIn, ClockOut: &out}, nil
		}

		_, err := f.svc.ClockOut(ctx, f.actor, ClockRequest{ShiftID: f.shift.ID.String()})
		assert.ErrorIs(t, err, attendanceerrors.ErrAlreadyClockedOut)
	})
}

func TestService_Correct(t *testing.T) {
	ctx := context.Background()
	start := time.Date(2024, 4, 1, 9, 0, 0, 0, time.UTC)

	t.Run("recomputes late and minutes", func(t *testing.T) {
		f := newFixture(t, start.Add(10*time.Hour))
		f.actor.IsAdmin = true
		f.sqlMock.ExpectBegin()
		f.sqlMock.ExpectCommit()
		id := uuid.New()
		f.repo.findByIDFn = func(context.Context, string, string) (*Attendance, error) {
			return &Attendance{ID: id, ShiftID: f.shift.ID, UserID: f.userID, StoreID: f.storeID, ClockIn: start, Status: StatusOnTime}, nil
		}
		f.repo.updateFn = func(context.Context, *Attendance) error { return nil }

		in := start.Add(20 * time.Minute)
		out := start.Add(8 * time.Hour)
		resp, err := f.svc.Correct(ctx, f.actor, id.String(), CorrectAttendanceRequest{ClockIn: &in, ClockOut: &out})

		assert.NoError(t, err)
		assert.True(t, resp.IsLate)
		assert.Equal(t, StatusCompleted, resp.Status)
		assert.Equal(t, 460, resp.WorkingMinutes)
		if assert.Len(t, f.audit.entries, 1) {
			assert.Equal(t, auditlog.ActionAttendanceEdited, f.audit.entries[0].Action)
		}
	})

	t.Run("clock out before clock in", func(t *testing.T) {
		f := newFixture(t, start)
		f.actor.IsAdmin = true
		f.sqlMock.ExpectBegin()
		f.sqlMock.ExpectRollback()
		f.repo.findByIDFn = func(context.Context, string, string) (*Attendance, error) {
			return &Attendance{ID: uuid.New(), ShiftID: f.shift.ID, ClockIn: start}, nil
		}

		out := start.Add(-time.Minute)
		_, err := f.svc.Correct(ctx, f.actor, uuid.NewString(), CorrectAttendanceRequest{ClockOut: &out})
		assert.ErrorIs(t, err, attendanceerrors.ErrInvalidClockRange)
		assert.Empty(t, f.audit.entries)
	})

	t.Run("staff cannot correct", func(t *testing.T) {
		f := newFixture(t, start)
		_, err := f.svc.Correct(ctx, f.actor, uuid.NewString(), CorrectAttendanceRequest{})
		assert.Error(t, err)
	})
}

func TestService_ListScopesStaffToSelf(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, time.Now())
	f.repo.listFn = func(_ context.Context, storeID string, q Query, offset, limit int) ([]Attendance, int64, error) {
		assert.Equal(t, f.storeID.String(), storeID)
		assert.Equal(t, f.userID.String(), q.UserID)
		assert.Equal(t, 20, offset)
		assert.Equal(t, 20, limit)
		if assert.NotNil(t, q.From) {
			tokyo, _ := time.LoadLocation("Asia/Tokyo")
			assert.True(t, q.From.Equal(time.Date(2024, 4, 1, 0, 0, 0, 0, tokyo)))
		}
		return []Attendance{{ID: uuid.New(), User: &UserRef{Name: "Hanako"}}}, 21, nil
	}

	rows, total, err := f.svc.List(ctx, f.actor, ListFilter{From: "2024-04-01", UserID: uuid.NewString()}, 2, 20)

	assert.NoError(t, err)
	assert.Equal(t, int64(21), total)
	assert.Equal(t, "Hanako", rows[0].UserName)

	_, _, err = f.svc.List(ctx, f.actor, ListFilter{From: "soon"}, 1, 20)
	assert.ErrorIs(t, err, attendanceerrors.ErrInvalidDateRange)
}

func TestService_Summary(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, time.Now())
	f.actor.IsAdmin = true
	uid := uuid.New()
	f.repo.summarizeFn = func(_ context.Context, _ string, userID string, from, to time.Time) ([]SummaryRow, error) {
		assert.Equal(t, "", userID)
		assert.Equal(t, time.April, from.Month())
		assert.Equal(t, time.May, to.Month())
		return []SummaryRow{{UserID: uid, UserName: "Hanako", Shifts: 10, Completed: 9, Late: 2, WorkingMinutes: 4300}}, nil
	}

	resp, err := f.svc.Summary(ctx, f.actor, SummaryFilter{Month: "2024-04"})

	assert.NoError(t, err)
	assert.Equal(t, "2024-04", resp.Month)
	assert.Equal(t, SummaryItem{UserID: uid.String(), UserName: "Hanako", Shifts: 10, Completed: 9, Late: 2, WorkingMinutes: 4300}, resp.Items[0])

	_, err = f.svc.Summary(ctx, f.actor, SummaryFilter{Month: "April"})
	assert.ErrorIs(t, err, attendanceerrors.ErrInvalidMonth)

	f.repo.summarizeFn = func(context.Context, string, string, time.Time, time.Time) ([]SummaryRow, error) {
		return nil, errors.New("db down")
	}
	_, err = f.svc.Summary(ctx, f.actor, SummaryFilter{Month: "2024-04"})
	assert.EqualError(t, err, "db down")
}
