package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	autherrors "github.com/coffeebean-kenobi/shifteditor-sub001/internal/auth/errors"
	"github.com/coffeebean-kenobi/shifteditor-sub001/internal/auditlog"
	"github.com/coffeebean-kenobi/shifteditor-sub001/internal/shared/contextutil"
	"github.com/coffeebean-kenobi/shifteditor-sub001/internal/shared/database"
	"github.com/coffeebean-kenobi/shifteditor-sub001/internal/shared/token"
	"github.com/coffeebean-kenobi/shifteditor-sub001/internal/staff"
)

// TokenManager issues and verifies session tokens. *token.Manager satisfies it.
type TokenManager interface {
	IssuePair(sub token.Subject) (access string, refresh string, err error)
	Parse(tokenString, wantType string) (*token.Claims, error)
}

//go:generate mockgen -source=auth_service.go -destination=mock/auth_service_mock.go -package=mock
type Service interface {
	Login(ctx context.Context, email, password string) (Session, error)
	Refresh(ctx context.Context, refreshToken string) (Session, error)
	Me(ctx context.Context, userID string) (AuthResponse, error)
	ChangePassword(ctx context.Context, userID string, req ChangePasswordRequest) error
	AcceptInvite(ctx context.Context, req AcceptInviteRequest) (Session, error)
}

type service struct {
	repo    Repository
	invites InviteConsumer
	tokens  TokenManager
	audit   auditlog.Recorder
	now     func() time.Time
	logger  *zap.Logger
}

func NewService(repo Repository, invites InviteConsumer, tokens TokenManager, audit auditlog.Recorder, logger ...*zap.Logger) Service {
	l := zap.L().Named("auth.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("auth.service")
	}
	if audit == nil {
		audit = auditlog.NopRecorder{}
	}
	return &service{repo: repo, invites: invites, tokens: tokens, audit: audit, now: time.Now, logger: l}
}

func (s *service) Login(ctx context.Context, email, password string) (Session, error) {
	log := contextutil.GetLogger(ctx, s.logger)
	email = strings.ToLower(strings.TrimSpace(email))

	u, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if !database.IsNotFound(err) {
			log.Error("login lookup failed", zap.Error(err))
			return Session{}, err
		}
		// same answer as a wrong password so emails cannot be probed
		log.Info("login unknown email", zap.String("email", email))
		return Session{}, autherrors.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		log.Info("login wrong password", zap.String("user_id", u.ID.String()))
		return Session{}, autherrors.ErrInvalidCredentials
	}
	if !u.IsActive {
		log.Info("login inactive account", zap.String("user_id", u.ID.String()))
		return Session{}, autherrors.ErrAccountInactive
	}

	sess, err := s.issue(u)
	if err != nil {
		return Session{}, err
	}

	if err := s.repo.TouchLastLogin(ctx, u.ID.String(), s.now().UTC()); err != nil {
		log.Warn("touch last login failed", zap.String("user_id", u.ID.String()), zap.Error(err))
	}

	s.audit.Record(ctx, auditlog.Entry{
		StoreID:    u.StoreID.String(),
		ActorID:    u.ID.String(),
		Action:     auditlog.ActionLogin,
		TargetType: "user",
		TargetID:   u.ID.String(),
	})

	log.Info("login success", zap.String("user_id", u.ID.String()))
	return sess, nil
}

func (s *service) Refresh(ctx context.Context, refreshToken string) (Session, error) {
	claims, err := s.tokens.Parse(refreshToken, token.TypeRefresh)
	if err != nil {
		return Session{}, autherrors.ErrInvalidRefreshToken
	}

	u, err := s.repo.FindByUserID(ctx, claims.UserID)
	if err != nil {
		if database.IsNotFound(err) {
			return Session{}, autherrors.ErrUserNotFound
		}
		return Session{}, err
	}
	if !u.IsActive {
		return Session{}, autherrors.ErrAccountInactive
	}

	// re-read the user so role changes apply on the next refresh
	return s.issue(u)
}

func (s *service) Me(ctx context.Context, userID string) (AuthResponse, error) {
	u, err := s.repo.FindByUserID(ctx, userID)
	if err != nil {
		if database.IsNotFound(err) {
			return AuthResponse{}, autherrors.ErrUserNotFound
		}
		return AuthResponse{}, err
	}
	return mapToResponse(u), nil
}

func (s *service) ChangePassword(ctx context.Context, userID string, req ChangePasswordRequest) error {
	log := contextutil.GetLogger(ctx, s.logger)

	u, err := s.repo.FindByUserID(ctx, userID)
	if err != nil {
		if database.IsNotFound(err) {
			return autherrors.ErrUserNotFound
		}
		return err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.CurrentPassword)); err != nil {
		return autherrors.ErrWrongCurrentPassword
	}
	if req.CurrentPassword == req.NewPassword {
		return autherrors.ErrSamePassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	if err := s.repo.UpdatePassword(ctx, userID, string(hash), false); err != nil {
		log.Error("change password persist failed", zap.String("user_id", userID), zap.Error(err))
		return err
	}

	s.audit.Record(ctx, auditlog.Entry{
		StoreID:    u.StoreID.String(),
		ActorID:    userID,
		Action:     auditlog.ActionPasswordChanged,
		TargetType: "user",
		TargetID:   userID,
	})
	return nil
}

func (s *service) AcceptInvite(ctx context.Context, req AcceptInviteRequest) (Session, error) {
	log := contextutil.GetLogger(ctx, s.logger)

	userID, err := s.invites.Consume(ctx, req.Token)
	if err != nil {
		if errors.Is(err, staff.ErrInviteNotFound) {
			return Session{}, autherrors.ErrInviteInvalid
		}
		log.Error("invite consume failed", zap.Error(err))
		return Session{}, err
	}

	u, err := s.repo.FindByUserID(ctx, userID)
	if err != nil {
		if database.IsNotFound(err) {
			return Session{}, autherrors.ErrInviteInvalid
		}
		return Session{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return Session{}, err
	}
	if err := s.repo.UpdatePassword(ctx, userID, string(hash), true); err != nil {
		log.Error("accept invite persist failed", zap.String("user_id", userID), zap.Error(err))
		return Session{}, err
	}
	u.PasswordHash = string(hash)
	u.IsActive = true

	s.audit.Record(ctx, auditlog.Entry{
		StoreID:    u.StoreID.String(),
		ActorID:    userID,
		Action:     auditlog.ActionInviteAccepted,
		TargetType: "user",
		TargetID:   userID,
	})

	log.Info("invite accepted", zap.String("user_id", userID))
	return s.issue(u)
}

func (s *service) issue(u *staff.User) (Session, error) {
	access, refresh, err := s.tokens.IssuePair(token.Subject{
		UserID:       u.ID.String(),
		StoreID:      u.StoreID.String(),
		Role:         u.Role,
		IsSuperAdmin: u.IsSuperAdmin,
	})
	if err != nil {
		s.logger.Error("issue tokens failed", zap.String("user_id", u.ID.String()), zap.Error(err))
		return Session{}, autherrors.ErrTokenGenerationFailed
	}
	return Session{AccessToken: access, RefreshToken: refresh, User: mapToResponse(u)}, nil
}

func mapToResponse(u *staff.User) AuthResponse {
	return AuthResponse{
		ID:           u.ID.String(),
		StoreID:      u.StoreID.String(),
		Email:        u.Email,
		Name:         u.Name,
		Role:         u.Role,
		IsSuperAdmin: u.IsSuperAdmin,
		StaffNumber:  u.StaffNumber,
	}
}
