package staff

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/coffeebean-kenobi/shifteditor-sub001/internal/auditlog"
	"github.com/coffeebean-kenobi/shifteditor-sub001/internal/domain"
	"github.com/coffeebean-kenobi/shifteditor-sub001/internal/notification"
	stafferrors "github.com/coffeebean-kenobi/shifteditor-sub001/internal/staff/errors"
	"github.com/coffeebean-kenobi/shifteditor-sub001/internal/shared/contextutil"
	"github.com/coffeebean-kenobi/shifteditor-sub001/internal/shared/counter"
	"github.com/coffeebean-kenobi/shifteditor-sub001/internal/shared/database"
	"github.com/coffeebean-kenobi/shifteditor-sub001/internal/shared/mailer"
)

const defaultInviteTTL = 72 * time.Hour

type Notifier interface {
	Notify(ctx context.Context, in notification.NotifyInput) error
}

// Options carries the collaborators of the invite flow. Nil fields are skipped.
type Options struct {
	Mailer    mailer.Mailer
	Audit     auditlog.Recorder
	Notifier  Notifier
	InviteTTL time.Duration
	BaseURL   string
}

//go:generate mockgen -source=staff_service.go -destination=mock/staff_service_mock.go -package=mock
type Service interface {
	List(ctx context.Context, storeID string, filter ListStaffFilter, page, pageSize int) ([]StaffResponse, int64, error)
	GetByID(ctx context.Context, storeID, id string) (StaffResponse, error)
	Invite(ctx context.Context, storeID, actorID string, req InviteStaffRequest) (InviteResponse, error)
	Update(ctx context.Context, storeID, actorID, id string, req UpdateStaffRequest) (StaffResponse, error)
	Delete(ctx context.Context, storeID, actorID, id string) error
}

type service struct {
	db      *sql.DB
	repo    Repository
	counter counter.Repository
	invites InviteStore
	opts    Options
	now     func() time.Time
	logger  *zap.Logger
}

func NewService(db *sql.DB, repo Repository, counter counter.Repository, invites InviteStore, opts Options, logger ...*zap.Logger) Service {
	l := zap.L().Named("staff.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("staff.service")
	}
	if opts.InviteTTL <= 0 {
		opts.InviteTTL = defaultInviteTTL
	}
	if opts.Audit == nil {
		opts.Audit = auditlog.NopRecorder{}
	}
	return &service{
		db:      db,
		repo:    repo,
		counter: counter,
		invites: invites,
		opts:    opts,
		now:     time.Now,
		logger:  l,
	}
}

func (s *service) List(ctx context.Context, storeID string, filter ListStaffFilter, page, pageSize int) ([]StaffResponse, int64, error) {
	if _, err := uuid.Parse(storeID); err != nil {
		return nil, 0, stafferrors.ErrInvalidStoreID
	}

	users, total, err := s.repo.FindAllByStore(ctx, storeID, filter, (page-1)*pageSize, pageSize)
	if err != nil {
		s.logger.Error("list staff failed", zap.String("store_id", storeID), zap.Error(err))
		return nil, 0, err
	}

	resp := make([]StaffResponse, len(users))
	for i, u := range users {
		resp[i] = MapToResponse(u)
	}
	return resp, total, nil
}

func (s *service) GetByID(ctx context.Context, storeID, id string) (StaffResponse, error) {
	if _, err := uuid.Parse(id); err != nil {
		return StaffResponse{}, stafferrors.ErrInvalidStaffID
	}

	u, err := s.repo.FindByID(ctx, storeID, id)
	if err != nil {
		return StaffResponse{}, mapRepositoryError(err)
	}
	return MapToResponse(*u), nil
}

func (s *service) Invite(ctx context.Context, storeID, actorID string, req InviteStaffRequest) (InviteResponse, error) {
	log := contextutil.GetLogger(ctx, s.logger)

	storeUUID, err := uuid.Parse(storeID)
	if err != nil {
		return InviteResponse{}, stafferrors.ErrInvalidStoreID
	}

	role := req.Role
	if role == "" {
		role = domain.RoleStaff
	}
	if !domain.IsValidRole(role) {
		return InviteResponse{}, stafferrors.ErrInvalidRole
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if existing, err := s.repo.FindByEmail(ctx, email); err == nil && existing != nil {
		log.Warn("invite rejected, email taken", zap.String("email", email))
		return InviteResponse{}, stafferrors.ErrEmailAlreadyExists
	} else if err != nil && !database.IsNotFound(err) {
		log.Error("invite lookup email failed", zap.Error(err))
		return InviteResponse{}, err
	}

	next, err := s.counter.GetNextValue(ctx, storeID, counter.TypeStaffNumber)
	if err != nil {
		log.Error("invite generate staff number failed", zap.Error(err))
		return InviteResponse{}, err
	}

	// the invitee cannot log in until the invite is accepted and a password chosen
	hash, err := unusablePasswordHash()
	if err != nil {
		return InviteResponse{}, err
	}

	token, err := NewInviteToken()
	if err != nil {
		return InviteResponse{}, err
	}

	u := &User{
		ID:           uuid.New(),
		StoreID:      storeUUID,
		Name:         strings.TrimSpace(req.Name),
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		IsActive:     false,
		StaffNumber:  counter.FormatStaffNumber(next),
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		log.Error("invite begin tx failed", zap.Error(err))
		return InviteResponse{}, err
	}
	defer tx.Rollback()

	if err := s.repo.WithTx(tx).Create(ctx, u); err != nil {
		log.Warn("invite persist failed", zap.String("email", email), zap.Error(err))
		return InviteResponse{}, mapRepositoryError(err)
	}

	if err := s.invites.Save(ctx, token, u.ID.String(), s.opts.InviteTTL); err != nil {
		log.Error("invite token store failed", zap.String("user_id", u.ID.String()), zap.Error(err))
		return InviteResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		log.Error("invite commit failed", zap.Error(err))
		return InviteResponse{}, err
	}

	inviteURL := s.inviteURL(token)
	s.sendInviteMail(ctx, u, inviteURL)

	if s.opts.Notifier != nil {
		if err := s.opts.Notifier.Notify(ctx, notification.NotifyInput{
			StoreID: storeID,
			UserID:  u.ID.String(),
			Type:    notification.TypeStaffInvited,
			Title:   "Welcome",
			Message: fmt.Sprintf("You have been invited as %s (%s).", u.StaffNumber, strings.ToLower(role)),
		}); err != nil {
			log.Warn("invite notification failed", zap.String("user_id", u.ID.String()), zap.Error(err))
		}
	}

	s.opts.Audit.Record(ctx, auditlog.Entry{
		StoreID:    storeID,
		ActorID:    actorID,
		Action:     auditlog.ActionStaffInvited,
		TargetType: "user",
		TargetID:   u.ID.String(),
		Meta:       map[string]any{"email": email, "role": role},
	})

	log.Info("staff invited", zap.String("user_id", u.ID.String()), zap.String("staff_number", u.StaffNumber))
	return InviteResponse{
		Staff:       MapToResponse(*u),
		InviteToken: token,
		InviteURL:   inviteURL,
		ExpiresAt:   s.now().Add(s.opts.InviteTTL).UTC().Format(time.RFC3339),
	}, nil
}

func (s *service) Update(ctx context.Context, storeID, actorID, id string, req UpdateStaffRequest) (StaffResponse, error) {
	log := contextutil.GetLogger(ctx, s.logger)

	if _, err := uuid.Parse(id); err != nil {
		return StaffResponse{}, stafferrors.ErrInvalidStaffID
	}
	if req.Role != nil && !domain.IsValidRole(*req.Role) {
		return StaffResponse{}, stafferrors.ErrInvalidRole
	}
	if id == actorID {
		if (req.Role != nil && *req.Role != domain.RoleAdmin) || (req.IsActive != nil && !*req.IsActive) {
			return StaffResponse{}, stafferrors.ErrCannotModifySelf
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		log.Error("update staff begin tx failed", zap.Error(err))
		return StaffResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)
	u, err := qtx.FindByID(ctx, storeID, id)
	if err != nil {
		return StaffResponse{}, mapRepositoryError(err)
	}

	changes := map[string]any{}
	if req.Name != nil && *req.Name != u.Name {
		changes["name"] = *req.Name
		u.Name = *req.Name
	}
	if req.Role != nil && *req.Role != u.Role {
		changes["role"] = *req.Role
		u.Role = *req.Role
	}
	if req.IsActive != nil && *req.IsActive != u.IsActive {
		changes["is_active"] = *req.IsActive
		u.IsActive = *req.IsActive
	}

	if err := qtx.Update(ctx, u); err != nil {
		log.Error("update staff persist failed", zap.String("user_id", id), zap.Error(err))
		return StaffResponse{}, mapRepositoryError(err)
	}

	if err := tx.Commit(); err != nil {
		log.Error("update staff commit failed", zap.Error(err))
		return StaffResponse{}, err
	}

	s.opts.Audit.Record(ctx, auditlog.Entry{
		StoreID:    storeID,
		ActorID:    actorID,
		Action:     auditlog.ActionStaffUpdated,
		TargetType: "user",
		TargetID:   id,
		Meta:       changes,
	})

	return MapToResponse(*u), nil
}

func (s *service) Delete(ctx context.Context, storeID, actorID, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return stafferrors.ErrInvalidStaffID
	}
	if id == actorID {
		return stafferrors.ErrCannotModifySelf
	}

	if err := s.repo.SoftDelete(ctx, storeID, id); err != nil {
		s.logger.Warn("delete staff failed", zap.String("user_id", id), zap.Error(err))
		return mapRepositoryError(err)
	}

	s.opts.Audit.Record(ctx, auditlog.Entry{
		StoreID:    storeID,
		ActorID:    actorID,
		Action:     auditlog.ActionStaffDeleted,
		TargetType: "user",
		TargetID:   id,
	})
	return nil
}

func (s *service) inviteURL(token string) string {
	base := strings.TrimRight(s.opts.BaseURL, "/")
	return base + "/invitations/accept?token=" + token
}

func (s *service) sendInviteMail(ctx context.Context, u *User, link string) {
	if s.opts.Mailer == nil {
		return
	}
	err := s.opts.Mailer.Send(ctx, mailer.Message{
		To:      u.Email,
		Subject: "You're invited to the shift editor",
		Body: fmt.Sprintf("Hello %s,\n\nAn administrator invited you to join the team.\nSet your password here within %s:\n\n%s\n",
			u.Name, s.opts.InviteTTL, link),
	})
	if err != nil {
		s.logger.Warn("invite mail failed", zap.String("user_id", u.ID.String()), zap.Error(err))
	}
}

func unusablePasswordHash() (string, error) {
	buf := make([]byte, 24)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(hex.EncodeToString(buf)), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func mapRepositoryError(err error) error {
	switch {
	case err == nil:
		return nil
	case database.IsNotFound(err):
		return stafferrors.ErrStaffNotFound
	case database.IsUniqueViolation(err, "uq_users_email"):
		return stafferrors.ErrEmailAlreadyExists
	default:
		return err
	}
}

func MapToResponse(u User) StaffResponse {
	resp := StaffResponse{
		ID:           u.ID.String(),
		StoreID:      u.StoreID.String(),
		Name:         u.Name,
		Email:        u.Email,
		Role:         u.Role,
		IsSuperAdmin: u.IsSuperAdmin,
		IsActive:     u.IsActive,
		StaffNumber:  u.StaffNumber,
		CreatedAt:    u.CreatedAt.Format(time.RFC3339),
	}
	if u.LastLoginAt != nil {
		v := u.LastLoginAt.UTC().Format(time.RFC3339)
		resp.LastLoginAt = &v
	}
	return resp
}
