package shiftrequest_test

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

	"github.com/coffeebean-kenobi/shifteditor-sub001/internal/auditlog"
	"github.com/coffeebean-kenobi/shifteditor-sub001/internal/domain"
	"github.com/coffeebean-kenobi/shifteditor-sub001/internal/events"
	"github.com/coffeebean-kenobi/shifteditor-sub001/internal/messaging/kafka"
	kafkaMock "github.com/coffeebean-kenobi/shifteditor-sub001/internal/messaging/kafka/mock"
	"github.com/coffeebean-kenobi/shifteditor-sub001/internal/shared/apperror"
	"github.com/coffeebean-kenobi/shifteditor-sub001/internal/shift"
	shifterrors "github.com/coffeebean-kenobi/shifteditor-sub001/internal/shift/errors"
	shiftMock "github.com/coffeebean-kenobi/shifteditor-sub001/internal/shift/mock"
	"github.com/coffeebean-kenobi/shifteditor-sub001/internal/shiftrequest"
	shiftrequesterrors "github.com/coffeebean-kenobi/shifteditor-sub001/internal/shiftrequest/errors"
	"github.com/coffeebean-kenobi/shifteditor-sub001/internal/store"
)

type fakeRequestRepository struct {
	createFn            func(ctx context.Context, r *shiftrequest.ShiftRequest) error
	findByIDFn          func(ctx context.Context, storeID, id string) (*shiftrequest.ShiftRequest, error)
	findForUpdateFn     func(ctx context.Context, storeID, id string) (*shiftrequest.ShiftRequest, error)
	listFn              func(ctx context.Context, storeID string, q shiftrequest.Query, offset, limit int) ([]shiftrequest.ShiftRequest, int64, error)
	updateFn            func(ctx context.Context, r *shiftrequest.ShiftRequest) error
	deleteFn            func(ctx context.Context, storeID, id string) error
	hasPendingOverlapFn func(ctx context.Context, userID string, start, end time.Time) (bool, error)
	locked              []string
}

func (f *fakeRequestRepository) WithTx(*sql.Tx) shiftrequest.Repository { return f }

func (f *fakeRequestRepository) Create(ctx context.Context, r *shiftrequest.ShiftRequest) error {
	if f.createFn != nil {
		return f.createFn(ctx, r)
	}
	return nil
}

func (f *fakeRequestRepository) FindByID(ctx context.Context, storeID, id string) (*shiftrequest.ShiftRequest, error) {
	if f.findByIDFn != nil {
		return f.findByIDFn(ctx, storeID, id)
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRequestRepository) FindForUpdate(ctx context.Context, storeID, id string) (*shiftrequest.ShiftRequest, error) {
	if f.findForUpdateFn != nil {
		return f.findForUpdateFn(ctx, storeID, id)
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRequestRepository) List(ctx context.Context, storeID string, q shiftrequest.Query, offset, limit int) ([]shiftrequest.ShiftRequest, int64, error) {
	if f.listFn != nil {
		return f.listFn(ctx, storeID, q, offset, limit)
	}
	return nil, 0, nil
}

func (f *fakeRequestRepository) Update(ctx context.Context, r *shiftrequest.ShiftRequest) error {
	if f.updateFn != nil {
		return f.updateFn(ctx, r)
	}
	return nil
}

func (f *fakeRequestRepository) Delete(ctx context.Context, storeID, id string) error {
	if f.deleteFn != nil {
		return f.deleteFn(ctx, storeID, id)
	}
	return nil
}

func (f *fakeRequestRepository) LockUserRequests(_ context.Context, userID string) error {
	f.locked = append(f.locked, userID)
	return nil
}

func (f *fakeRequestRepository) HasPendingOverlap(ctx context.Context, userID string, start, end time.Time) (bool, error) {
	if f.hasPendingOverlapFn != nil {
		return f.hasPendingOverlapFn(ctx, userID, start, end)
	}
	return false, nil
}

type fakeRecorder struct {
	entries []auditlog.Entry
}

func (f *fakeRecorder) Record(_ context.Context, e auditlog.Entry) {
	f.entries = append(f.entries, e)
}

type requestServiceDeps struct {
	db       *sql.DB
	sqlMock  sqlmock.Sqlmock
	service  shiftrequest.Service
	repo     *fakeRequestRepository
	settings store.StoreSettings
	members  *shiftMock.MockMemberChecker
	shifts   *shiftMock.MockRepository
	outbox   *kafkaMock.MockOutboxRepository
	audit    *fakeRecorder
	storeID  uuid.UUID
	staff    domain.Actor
	admin    domain.Actor
}

func setupRequestServiceTest(t *testing.T, mutate ...func(*store.StoreSettings)) *requestServiceDeps {
	t.Helper()
	ctrl := gomock.NewController(t)

	db, sqlMock, err := sqlmock.New()
	assert.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	storeID := uuid.New()
	settings := store.DefaultSettings(storeID)
	for _, m := range mutate {
		m(&settings)
	}

	provider := shiftMock.NewMockSettingsProvider(ctrl)
	provider.EXPECT().Settings(gomock.Any(), storeID.String()).Return(settings, nil).AnyTimes()

	deps := &requestServiceDeps{
		db:       db,
		sqlMock:  sqlMock,
		repo:     &fakeRequestRepository{},
		settings: settings,
		members:  shiftMock.NewMockMemberChecker(ctrl),
		shifts:   shiftMock.NewMockRepository(ctrl),
		outbox:   kafkaMock.NewMockOutboxRepository(ctrl),
		audit:    &fakeRecorder{},
		storeID:  storeID,
		staff:    domain.Actor{UserID: uuid.NewString(), StoreID: storeID.String()},
		admin:    domain.Actor{UserID: uuid.NewString(), StoreID: storeID.String(), IsAdmin: true},
	}
	deps.service = shiftrequest.NewService(db, deps.repo, shiftrequest.Deps{
		Settings: provider,
		Members:  deps.members,
		Shifts:   deps.shifts,
		Outbox:   deps.outbox,
		Audit:    deps.audit,
	}, zap.NewNop())
	return deps
}

func (d *requestServiceDeps) pending() *shiftrequest.ShiftRequest {
	start := time.Now().UTC().Add(72 * time.Hour).Truncate(time.Hour)
	return &shiftrequest.ShiftRequest{
		ID:        uuid.New(),
		UserID:    uuid.MustParse(d.staff.UserID),
		StoreID:   d.storeID,
		StartTime: start,
		EndTime:   start.Add(6 * time.Hour),
		Note:      "mornings only",
		Status:    shiftrequest.StatusPending,
	}
}

func TestShiftRequestService_Create(t *testing.T) {
	ctx := context.Background()
	start := time.Now().UTC().Add(48 * time.Hour).Truncate(time.Hour)

	t.Run("success", func(t *testing.T) {
		deps := setupRequestServiceTest(t)
		deps.sqlMock.ExpectBegin()
		deps.sqlMock.ExpectCommit()

		var created *shiftrequest.ShiftRequest
		deps.repo.createFn = func(_ context.Context, r *shiftrequest.ShiftRequest) error {
			created = r
			return nil
		}

		resp, err := deps.service.Create(ctx, deps.staff, shiftrequest.CreateShiftRequestRequest{
			StartTime: start, EndTime: start.Add(4 * time.Hour), Note: " evening ",
		})

		assert.NoError(t, err)
		assert.Equal(t, shiftrequest.StatusPending, resp.Status)
		assert.Equal(t, deps.staff.UserID, created.UserID.String())
		assert.Equal(t, "evening", created.Note)
		assert.Equal(t, []string{deps.staff.UserID}, deps.repo.locked)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
		if assert.Len(t, deps.audit.entries, 1) {
			assert.Equal(t, auditlog.ActionRequestCreated, deps.audit.entries[0].Action)
		}
	})

	t.Run("pending overlap is a conflict", func(t *testing.T) {
		deps := setupRequestServiceTest(t)
		deps.sqlMock.ExpectBegin()
		deps.sqlMock.ExpectRollback()
		deps.repo.hasPendingOverlapFn = func(_ context.Context, userID string, s, e time.Time) (bool, error) {
			assert.Equal(t, deps.staff.UserID, userID)
			assert.Equal(t, start, s)
			return true, nil
		}

		_, err := deps.service.Create(ctx, deps.staff, shiftrequest.CreateShiftRequestRequest{
			StartTime: start, EndTime: start.Add(4 * time.Hour),
		})

		assert.ErrorIs(t, err, shiftrequesterrors.ErrRequestOverlap)
		assert.Equal(t, 409, apperror.ToHTTP(err).Status)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	past := time.Now().UTC().Add(-time.Hour)
	cases := []struct {
		name  string
		start time.Time
		end   time.Time
		want  error
	}{
		{"end before start", start, start.Add(-time.Hour), shiftrequesterrors.ErrInvalidTimeRange},
		{"start in past", past, past.Add(4 * time.Hour), shiftrequesterrors.ErrStartInPast},
		{"too short", start, start.Add(15 * time.Minute), shifterrors.ErrInvalidDuration},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			deps := setupRequestServiceTest(t)
			_, err := deps.service.Create(ctx, deps.staff, shiftrequest.CreateShiftRequestRequest{StartTime: tc.start, EndTime: tc.end})
			assert.ErrorIs(t, err, tc.want)
		})
	}

	t.Run("lead days enforced", func(t *testing.T) {
		deps := setupRequestServiceTest(t, func(s *store.StoreSettings) { s.RequestLeadDays = 7 })
		_, err := deps.service.Create(ctx, deps.staff, shiftrequest.CreateShiftRequestRequest{
			StartTime: start, EndTime: start.Add(4 * time.Hour),
		})
		assert.ErrorIs(t, err, shiftrequesterrors.ErrLeadTimeNotMet)
	})
}

func TestShiftRequestService_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("owner deletes pending", func(t *testing.T) {
		deps := setupRequestServiceTest(t)
		sr := deps.pending()
		deps.repo.findByIDFn = func(context.Context, string, string) (*shiftrequest.ShiftRequest, error) { return sr, nil }
		deleted := false
		deps.repo.deleteFn = func(_ context.Context, storeID, id string) error {
			deleted = storeID == deps.storeID.String() && id == sr.ID.String()
			return nil
		}

		assert.NoError(t, deps.service.Delete(ctx, deps.staff, sr.ID.String()))
		assert.True(t, deleted)
	})

	t.Run("approved request returns 400", func(t *testing.T) {
		deps := setupRequestServiceTest(t)
		sr := deps.pending()
		sr.Status = shiftrequest.StatusApproved
		deps.repo.findByIDFn = func(context.Context, string, string) (*shiftrequest.ShiftRequest, error) { return sr, nil }

		err := deps.service.Delete(ctx, deps.staff, sr.ID.String())

		assert.ErrorIs(t, err, shiftrequesterrors.ErrNotPending)
		assert.Equal(t, 400, apperror.ToHTTP(err).Status)
	})

	t.Run("other staff gets 403", func(t *testing.T) {
		deps := setupRequestServiceTest(t)
		sr := deps.pending()
		deps.repo.findByIDFn = func(context.Context, string, string) (*shiftrequest.ShiftRequest, error) { return sr, nil }

		other := domain.Actor{UserID: uuid.NewString(), StoreID: deps.storeID.String()}
		err := deps.service.Delete(ctx, other, sr.ID.String())
		assert.Equal(t, 403, apperror.ToHTTP(err).Status)
	})

	t.Run("admin may delete any pending", func(t *testing.T) {
		deps := setupRequestServiceTest(t)
		sr := deps.pending()
		deps.repo.findByIDFn = func(context.Context, string, string) (*shiftrequest.ShiftRequest, error) { return sr, nil }

		assert.NoError(t, deps.service.Delete(ctx, deps.admin, sr.ID.String()))
	})

	t.Run("missing", func(t *testing.T) {
		deps := setupRequestServiceTest(t)
		err := deps.service.Delete(ctx, deps.staff, uuid.NewString())
		assert.ErrorIs(t, err, shiftrequesterrors.ErrRequestNotFound)
	})

	t.Run("malformed id", func(t *testing.T) {
		deps := setupRequestServiceTest(t)
		assert.ErrorIs(t, deps.service.Delete(ctx, deps.staff, "abc"), shiftrequesterrors.ErrInvalidRequestID)
	})
}

func TestShiftRequestService_Approve(t *testing.T) {
	ctx := context.Background()

	t.Run("creates scheduled shift and queues event", func(t *testing.T) {
		deps := setupRequestServiceTest(t)
		sr := deps.pending()
		deps.repo.findForUpdateFn = func(context.Context, string, string) (*shiftrequest.ShiftRequest, error) { return sr, nil }
		var updated *shiftrequest.ShiftRequest
		deps.repo.updateFn = func(_ context.Context, r *shiftrequest.ShiftRequest) error {
			updated = r
			return nil
		}

		deps.sqlMock.ExpectBegin()
		deps.sqlMock.ExpectCommit()
		deps.members.EXPECT().ExistsActiveInStore(ctx, deps.storeID.String(), deps.staff.UserID).Return(true, nil)
		deps.shifts.EXPECT().WithTx(gomock.Any()).Return(deps.shifts)
		deps.shifts.EXPECT().LockUserSchedule(ctx, deps.staff.UserID).Return(nil)
		deps.shifts.EXPECT().HasOverlap(ctx, deps.staff.UserID, sr.StartTime, sr.EndTime, gomock.Any()).Return(false, nil)

		var shiftID uuid.UUID
		deps.shifts.EXPECT().Create(ctx, gomock.Any()).DoAndReturn(func(_ context.Context, sh *shift.Shift) error {
			assert.Equal(t, shift.StatusScheduled, sh.Status)
			assert.Equal(t, sr.UserID, sh.UserID)
			assert.Equal(t, deps.admin.UserID, sh.CreatedBy.String())
			shiftID = sh.ID
			return nil
		})
		deps.outbox.EXPECT().WithTx(gomock.Any()).Return(deps.outbox)
		deps.outbox.EXPECT().Create(ctx, gomock.Any()).DoAndReturn(func(_ context.Context, e kafka.OutboxEvent) error {
			assert.Equal(t, events.ShiftRequestReviewedTopic, e.Topic)
			assert.Equal(t, events.RequestApproved, e.EventType)

			var payload events.ShiftRequestReviewedEvent
			assert.NoError(t, json.Unmarshal(e.Payload, &payload))
			assert.Equal(t, shiftID.String(), payload.ShiftID)
			assert.Equal(t, deps.admin.UserID, payload.ReviewedBy)
			return nil
		})

		resp, err := deps.service.Approve(ctx, deps.admin, sr.ID.String())

		assert.NoError(t, err)
		assert.Equal(t, shiftrequest.StatusApproved, resp.Status)
		assert.Equal(t, shiftID.String(), *resp.ShiftID)
		assert.Equal(t, shiftrequest.StatusApproved, updated.Status)
		assert.NotNil(t, updated.ReviewedAt)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
		if assert.Len(t, deps.audit.entries, 1) {
			assert.Equal(t, auditlog.ActionRequestApproved, deps.audit.entries[0].Action)
		}
	})

	t.Run("overlapping shift rolls back", func(t *testing.T) {
		deps := setupRequestServiceTest(t)
		sr := deps.pending()
		deps.repo.findForUpdateFn = func(context.Context, string, string) (*shiftrequest.ShiftRequest, error) { return sr, nil }
		deps.repo.updateFn = func(context.Context, *shiftrequest.ShiftRequest) error {
			t.Fatal("request must not be updated")
			return nil
		}

		deps.sqlMock.ExpectBegin()
		deps.sqlMock.ExpectRollback()
		deps.members.EXPECT().ExistsActiveInStore(ctx, gomock.Any(), gomock.Any()).Return(true, nil)
		deps.shifts.EXPECT().WithTx(gomock.Any()).Return(deps.shifts)
		deps.shifts.EXPECT().LockUserSchedule(ctx, deps.staff.UserID).Return(nil)
		deps.shifts.EXPECT().HasOverlap(ctx, gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(true, nil)

		_, err := deps.service.Approve(ctx, deps.admin, sr.ID.String())

		assert.ErrorIs(t, err, shifterrors.ErrShiftOverlap)
		assert.Empty(t, deps.audit.entries)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("already reviewed", func(t *testing.T) {
		deps := setupRequestServiceTest(t)
		sr := deps.pending()
		sr.Status = shiftrequest.StatusRejected
		deps.repo.findForUpdateFn = func(context.Context, string, string) (*shiftrequest.ShiftRequest, error) { return sr, nil }
		deps.sqlMock.ExpectBegin()
		deps.sqlMock.ExpectRollback()

		_, err := deps.service.Approve(ctx, deps.admin, sr.ID.String())
		assert.ErrorIs(t, err, shiftrequesterrors.ErrNotPending)
	})
}

func TestShiftRequestService_Reject(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		deps := setupRequestServiceTest(t)
		sr := deps.pending()
		deps.repo.findForUpdateFn = func(context.Context, string, string) (*shiftrequest.ShiftRequest, error) { return sr, nil }

		deps.sqlMock.ExpectBegin()
		deps.sqlMock.ExpectCommit()
		deps.outbox.EXPECT().WithTx(gomock.Any()).Return(deps.outbox)
		deps.outbox.EXPECT().Create(ctx, gomock.Any()).DoAndReturn(func(_ context.Context, e kafka.OutboxEvent) error {
			var payload events.ShiftRequestReviewedEvent
			assert.NoError(t, json.Unmarshal(e.Payload, &payload))
			assert.Equal(t, events.RequestRejected, payload.EventType)
			assert.Equal(t, "fully staffed", payload.Reason)
			return nil
		})

		resp, err := deps.service.Reject(ctx, deps.admin, sr.ID.String(), "  fully staffed ")

		assert.NoError(t, err)
		assert.Equal(t, shiftrequest.StatusRejected, resp.Status)
		assert.Equal(t, "fully staffed", *resp.RejectionReason)
		assert.Nil(t, resp.ShiftID)
	})

	t.Run("blank reason", func(t *testing.T) {
		deps := setupRequestServiceTest(t)
		_, err := deps.service.Reject(ctx, deps.admin, uuid.NewString(), "   ")
		assert.ErrorIs(t, err, shiftrequesterrors.ErrRejectionReasonRequired)
	})
}

func TestShiftRequestService_List(t *testing.T) {
	ctx := context.Background()

	t.Run("staff sees own requests", func(t *testing.T) {
		deps := setupRequestServiceTest(t)
		deps.repo.listFn = func(_ context.Context, storeID string, q shiftrequest.Query, offset, limit int) ([]shiftrequest.ShiftRequest, int64, error) {
			assert.Equal(t, deps.storeID.String(), storeID)
			assert.Equal(t, deps.staff.UserID, q.UserID)
			assert.Equal(t, shiftrequest.StatusPending, q.Status)
			assert.Equal(t, 20, offset)
			assert.Equal(t, 20, limit)
			return []shiftrequest.ShiftRequest{*deps.pending()}, 21, nil
		}

		items, total, err := deps.service.List(ctx, deps.staff, shiftrequest.ListFilter{Status: "pending", UserID: uuid.NewString()}, 2, 20)

		assert.NoError(t, err)
		assert.Equal(t, int64(21), total)
		assert.Len(t, items, 1)
	})

	t.Run("admin filters by user", func(t *testing.T) {
		deps := setupRequestServiceTest(t)
		target := uuid.NewString()
		deps.repo.listFn = func(_ context.Context, _ string, q shiftrequest.Query, _, _ int) ([]shiftrequest.ShiftRequest, int64, error) {
			assert.Equal(t, target, q.UserID)
			return nil, 0, nil
		}

		_, _, err := deps.service.List(ctx, deps.admin, shiftrequest.ListFilter{UserID: target}, 1, 20)
		assert.NoError(t, err)
	})

	t.Run("unknown status", func(t *testing.T) {
		deps := setupRequestServiceTest(t)
		_, _, err := deps.service.List(ctx, deps.admin, shiftrequest.ListFilter{Status: "DONE"}, 1, 20)
		assert.ErrorIs(t, err, shiftrequesterrors.ErrInvalidStatusFilter)
	})
}
