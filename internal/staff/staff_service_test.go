package staff_test

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/coffeebean-kenobi/shifteditor-sub001/internal/auditlog"
	"github.com/coffeebean-kenobi/shifteditor-sub001/internal/notification"
	counterMock "github.com/coffeebean-kenobi/shifteditor-sub001/internal/shared/counter/mock"
	"github.com/coffeebean-kenobi/shifteditor-sub001/internal/shared/mailer"
	"github.com/coffeebean-kenobi/shifteditor-sub001/internal/staff"
	stafferrors "github.com/coffeebean-kenobi/shifteditor-sub001/internal/staff/errors"
	staffMock "github.com/coffeebean-kenobi/shifteditor-sub001/internal/staff/mock"
)

type fakeMailer struct {
	mu   sync.Mutex
	sent []mailer.Message
	err  error
}

func (f *fakeMailer) Send(_ context.Context, msg mailer.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, msg)
	return f.err
}

type fakeRecorder struct {
	entries []auditlog.Entry
}

func (f *fakeRecorder) Record(_ context.Context, e auditlog.Entry) {
	f.entries = append(f.entries, e)
}

type serviceDeps struct {
	db       *sql.DB
	sqlMock  sqlmock.Sqlmock
	service  staff.Service
	repo     *staffMock.MockRepository
	invites  *staffMock.MockInviteStore
	notifier *staffMock.MockNotifier
	counter  *counterMock.MockRepository
	mailer   *fakeMailer
	audit    *fakeRecorder
}

func setupServiceTest(t *testing.T) *serviceDeps {
	ctrl := gomock.NewController(t)

	db, sqlMock, err := sqlmock.New()
	assert.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	deps := &serviceDeps{
		db:       db,
		sqlMock:  sqlMock,
		repo:     staffMock.NewMockRepository(ctrl),
		invites:  staffMock.NewMockInviteStore(ctrl),
		notifier: staffMock.NewMockNotifier(ctrl),
		counter:  counterMock.NewMockRepository(ctrl),
		mailer:   &fakeMailer{},
		audit:    &fakeRecorder{},
	}
	deps.service = staff.NewService(db, deps.repo, deps.counter, deps.invites, staff.Options{
		Mailer:    deps.mailer,
		Audit:     deps.audit,
		Notifier:  deps.notifier,
		InviteTTL: 48 * time.Hour,
		BaseURL:   "https://shift.example.com/",
	}, zap.NewNop())
	return deps
}

func expectTx(t *testing.T, mock sqlmock.Sqlmock, commit bool) {
	t.Helper()
	mock.ExpectBegin()
	if commit {
		mock.ExpectCommit()
	} else {
		mock.ExpectRollback()
	}
}

func TestStaffService_Invite(t *testing.T) {
	ctx := context.Background()
	storeID := uuid.NewString()
	actorID := uuid.NewString()

	t.Run("success", func(t *testing.T) {
		deps := setupServiceTest(t)
		req := staff.InviteStaffRequest{Name: " Hanako ", Email: "Hanako@Example.com", Role: "STAFF"}

		deps.repo.EXPECT().FindByEmail(ctx, "hanako@example.com").Return(nil, gorm.ErrRecordNotFound)
		deps.counter.EXPECT().GetNextValue(ctx, storeID, "staff_number").Return(int64(7), nil)

		expectTx(t, deps.sqlMock, true)
		deps.repo.EXPECT().WithTx(gomock.Any()).Return(deps.repo)

		var created *staff.User
		deps.repo.EXPECT().Create(ctx, gomock.Any()).DoAndReturn(func(_ context.Context, u *staff.User) error {
			created = u
			assert.Equal(t, "Hanako", u.Name)
			assert.Equal(t, "hanako@example.com", u.Email)
			assert.Equal(t, "STF-000007", u.StaffNumber)
			assert.False(t, u.IsActive)
			assert.NotEmpty(t, u.PasswordHash)
			return nil
		})

		var savedToken string
		deps.invites.EXPECT().Save(ctx, gomock.Any(), gomock.Any(), 48*time.Hour).
			DoAndReturn(func(_ context.Context, token, userID string, _ time.Duration) error {
				savedToken = token
				assert.Equal(t, created.ID.String(), userID)
				return nil
			})
		deps.notifier.EXPECT().Notify(ctx, gomock.Any()).DoAndReturn(func(_ context.Context, in notification.NotifyInput) error {
			assert.Equal(t, notification.TypeStaffInvited, in.Type)
			assert.Equal(t, created.ID.String(), in.UserID)
			return nil
		})

		resp, err := deps.service.Invite(ctx, storeID, actorID, req)

		assert.NoError(t, err)
		assert.Equal(t, savedToken, resp.InviteToken)
		assert.Len(t, resp.InviteToken, 64)
		assert.Equal(t, "https://shift.example.com/invitations/accept?token="+savedToken, resp.InviteURL)
		assert.Equal(t, "STF-000007", resp.Staff.StaffNumber)
		assert.Equal(t, "STAFF", resp.Staff.Role)

		if assert.Len(t, deps.mailer.sent, 1) {
			assert.Equal(t, "hanako@example.com", deps.mailer.sent[0].To)
			assert.True(t, strings.Contains(deps.mailer.sent[0].Body, resp.InviteURL))
		}
		if assert.Len(t, deps.audit.entries, 1) {
			assert.Equal(t, auditlog.ActionStaffInvited, deps.audit.entries[0].Action)
			assert.Equal(t, actorID, deps.audit.entries[0].ActorID)
		}
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("defaults role to staff", func(t *testing.T) {
		deps := setupServiceTest(t)
		deps.repo.EXPECT().FindByEmail(ctx, "a@example.com").Return(nil, gorm.ErrRecordNotFound)
		deps.counter.EXPECT().GetNextValue(ctx, storeID, "staff_number").Return(int64(1), nil)
		expectTx(t, deps.sqlMock, true)
		deps.repo.EXPECT().WithTx(gomock.Any()).Return(deps.repo)
		deps.repo.EXPECT().Create(ctx, gomock.Any()).Return(nil)
		deps.invites.EXPECT().Save(ctx, gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
		deps.notifier.EXPECT().Notify(ctx, gomock.Any()).Return(errors.New("ignored"))

		resp, err := deps.service.Invite(ctx, storeID, actorID, staff.InviteStaffRequest{Name: "A", Email: "a@example.com"})
		assert.NoError(t, err)
		assert.Equal(t, "STAFF", resp.Staff.Role)
	})

	t.Run("duplicate email found up front", func(t *testing.T) {
		deps := setupServiceTest(t)
		deps.repo.EXPECT().FindByEmail(ctx, "dup@example.com").Return(&staff.User{ID: uuid.New()}, nil)

		_, err := deps.service.Invite(ctx, storeID, actorID, staff.InviteStaffRequest{Name: "Dup", Email: "dup@example.com"})
		assert.ErrorIs(t, err, stafferrors.ErrEmailAlreadyExists)
		assert.Empty(t, deps.mailer.sent)
	})

	t.Run("duplicate email on insert race", func(t *testing.T) {
		deps := setupServiceTest(t)
		deps.repo.EXPECT().FindByEmail(ctx, "race@example.com").Return(nil, gorm.ErrRecordNotFound)
		deps.counter.EXPECT().GetNextValue(ctx, storeID, "staff_number").Return(int64(2), nil)
		expectTx(t, deps.sqlMock, false)
		deps.repo.EXPECT().WithTx(gomock.Any()).Return(deps.repo)
		deps.repo.EXPECT().Create(ctx, gomock.Any()).
			Return(&pgconn.PgError{Code: "23505", ConstraintName: "uq_users_email"})

		_, err := deps.service.Invite(ctx, storeID, actorID, staff.InviteStaffRequest{Name: "R", Email: "race@example.com"})
		assert.ErrorIs(t, err, stafferrors.ErrEmailAlreadyExists)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("token store failure rolls back", func(t *testing.T) {
		deps := setupServiceTest(t)
		deps.repo.EXPECT().FindByEmail(ctx, "b@example.com").Return(nil, gorm.ErrRecordNotFound)
		deps.counter.EXPECT().GetNextValue(ctx, storeID, "staff_number").Return(int64(3), nil)
		expectTx(t, deps.sqlMock, false)
		deps.repo.EXPECT().WithTx(gomock.Any()).Return(deps.repo)
		deps.repo.EXPECT().Create(ctx, gomock.Any()).Return(nil)
		deps.invites.EXPECT().Save(ctx, gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("redis down"))

		_, err := deps.service.Invite(ctx, storeID, actorID, staff.InviteStaffRequest{Name: "B", Email: "b@example.com"})
		assert.EqualError(t, err, "redis down")
		assert.Empty(t, deps.audit.entries)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("invalid store id", func(t *testing.T) {
		deps := setupServiceTest(t)
		_, err := deps.service.Invite(ctx, "bad", actorID, staff.InviteStaffRequest{Name: "B", Email: "b@example.com"})
		assert.ErrorIs(t, err, stafferrors.ErrInvalidStoreID)
	})
}

func TestStaffService_Update(t *testing.T) {
	ctx := context.Background()
	storeID := uuid.NewString()
	actorID := uuid.NewString()

	t.Run("admin cannot demote self", func(t *testing.T) {
		deps := setupServiceTest(t)
		role := "STAFF"
		_, err := deps.service.Update(ctx, storeID, actorID, actorID, staff.UpdateStaffRequest{Role: &role})
		assert.ErrorIs(t, err, stafferrors.ErrCannotModifySelf)
	})

	t.Run("admin cannot deactivate self", func(t *testing.T) {
		deps := setupServiceTest(t)
		inactive := false
		_, err := deps.service.Update(ctx, storeID, actorID, actorID, staff.UpdateStaffRequest{IsActive: &inactive})
		assert.ErrorIs(t, err, stafferrors.ErrCannotModifySelf)
	})

	t.Run("updates fields and audits changes", func(t *testing.T) {
		deps := setupServiceTest(t)
		target := uuid.New()
		name := "Taro Y"
		role := "ADMIN"

		expectTx(t, deps.sqlMock, true)
		deps.repo.EXPECT().WithTx(gomock.Any()).Return(deps.repo)
		deps.repo.EXPECT().FindByID(ctx, storeID, target.String()).
			Return(&staff.User{ID: target, Name: "Taro", Role: "STAFF", IsActive: true}, nil)
		deps.repo.EXPECT().Update(ctx, gomock.Any()).DoAndReturn(func(_ context.Context, u *staff.User) error {
			assert.Equal(t, name, u.Name)
			assert.Equal(t, role, u.Role)
			return nil
		})

		resp, err := deps.service.Update(ctx, storeID, actorID, target.String(), staff.UpdateStaffRequest{Name: &name, Role: &role})
		assert.NoError(t, err)
		assert.Equal(t, "ADMIN", resp.Role)
		if assert.Len(t, deps.audit.entries, 1) {
			assert.Equal(t, map[string]any{"name": name, "role": role}, deps.audit.entries[0].Meta)
		}
	})

	t.Run("not found", func(t *testing.T) {
		deps := setupServiceTest(t)
		target := uuid.NewString()
		expectTx(t, deps.sqlMock, false)
		deps.repo.EXPECT().WithTx(gomock.Any()).Return(deps.repo)
		deps.repo.EXPECT().FindByID(ctx, storeID, target).Return(nil, gorm.ErrRecordNotFound)

		_, err := deps.service.Update(ctx, storeID, actorID, target, staff.UpdateStaffRequest{})
		assert.ErrorIs(t, err, stafferrors.ErrStaffNotFound)
	})
}

func TestStaffService_Delete(t *testing.T) {
	ctx := context.Background()
	storeID := uuid.NewString()
	actorID := uuid.NewString()

	t.Run("cannot delete self", func(t *testing.T) {
		deps := setupServiceTest(t)
		err := deps.service.Delete(ctx, storeID, actorID, actorID)
		assert.ErrorIs(t, err, stafferrors.ErrCannotModifySelf)
	})

	t.Run("not found", func(t *testing.T) {
		deps := setupServiceTest(t)
		target := uuid.NewString()
		deps.repo.EXPECT().SoftDelete(ctx, storeID, target).Return(gorm.ErrRecordNotFound)

		err := deps.service.Delete(ctx, storeID, actorID, target)
		assert.ErrorIs(t, err, stafferrors.ErrStaffNotFound)
	})

	t.Run("success", func(t *testing.T) {
		deps := setupServiceTest(t)
		target := uuid.NewString()
		deps.repo.EXPECT().SoftDelete(ctx, storeID, target).Return(nil)

		assert.NoError(t, deps.service.Delete(ctx, storeID, actorID, target))
		if assert.Len(t, deps.audit.entries, 1) {
			assert.Equal(t, auditlog.ActionStaffDeleted, deps.audit.entries[0].Action)
		}
	})
}

func TestStaffService_ListAndGet(t *testing.T) {
	ctx := context.Background()
	storeID := uuid.NewString()

	t.Run("list paginates", func(t *testing.T) {
		deps := setupServiceTest(t)
		login := time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC)
		deps.repo.EXPECT().FindAllByStore(ctx, storeID, staff.ListStaffFilter{Role: "STAFF"}, 10, 10).
			Return([]staff.User{{ID: uuid.New(), StaffNumber: "STF-000001", LastLoginAt: &login}}, int64(11), nil)

		list, total, err := deps.service.List(ctx, storeID, staff.ListStaffFilter{Role: "STAFF"}, 2, 10)
		assert.NoError(t, err)
		assert.Equal(t, int64(11), total)
		if assert.Len(t, list, 1) && assert.NotNil(t, list[0].LastLoginAt) {
			assert.Equal(t, "2026-05-01T08:00:00Z", *list[0].LastLoginAt)
		}
	})

	t.Run("get invalid id", func(t *testing.T) {
		deps := setupServiceTest(t)
		_, err := deps.service.GetByID(ctx, storeID, "x")
		assert.ErrorIs(t, err, stafferrors.ErrInvalidStaffID)
	})
}

func TestUnusablePasswordIsBcrypt(t *testing.T) {
	deps := setupServiceTest(t)
	ctx := context.Background()
	storeID := uuid.NewString()

	deps.repo.EXPECT().FindByEmail(ctx, "c@example.com").Return(nil, gorm.ErrRecordNotFound)
	deps.counter.EXPECT().GetNextValue(ctx, storeID, "staff_number").Return(int64(4), nil)
	expectTx(t, deps.sqlMock, true)
	deps.repo.EXPECT().WithTx(gomock.Any()).Return(deps.repo)
	deps.repo.EXPECT().Create(ctx, gomock.Any()).DoAndReturn(func(_ context.Context, u *staff.User) error {
		_, err := bcrypt.Cost([]byte(u.PasswordHash))
		assert.NoError(t, err)
		return nil
	})
	deps.invites.EXPECT().Save(ctx, gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
	deps.notifier.EXPECT().Notify(ctx, gomock.Any()).Return(nil)

	_, err := deps.service.Invite(ctx, storeID, "", staff.InviteStaffRequest{Name: "C", Email: "c@example.com"})
	assert.NoError(t, err)
}
