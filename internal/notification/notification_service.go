package notification

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	notificationerrors "github.com/coffeebean-kenobi/shifteditor-sub001/internal/notification/errors"
	"github.com/coffeebean-kenobi/shifteditor-sub001/internal/shared/contextutil"
	"github.com/coffeebean-kenobi/shifteditor-sub001/internal/shared/database"
	"github.com/coffeebean-kenobi/shifteditor-sub001/internal/shared/mailer"
)

// RecipientDirectory resolves the email address of a user.
type RecipientDirectory interface {
	EmailOf(ctx context.Context, storeID, userID string) (string, error)
}

// Channels are the optional delivery paths besides the in-app row.
type Channels struct {
	Publisher Publisher
	Mailer    mailer.Mailer
	Directory RecipientDirectory
}

//go:generate mockgen -source=notification_service.go -destination=mock/notification_service_mock.go -package=mock
type Service interface {
	List(ctx context.Context, userID string, filter ListFilter, page, pageSize int) ([]NotificationResponse, int64, error)
	UnreadCount(ctx context.Context, userID string) (int64, error)
	MarkRead(ctx context.Context, userID, id string) error
	MarkAllRead(ctx context.Context, userID string) (int64, error)
	GetPreferences(ctx context.Context, userID string) ([]PreferenceItem, error)
	UpdatePreferences(ctx context.Context, userID string, req UpdatePreferencesRequest) ([]PreferenceItem, error)
	Notify(ctx context.Context, in NotifyInput) error
}

type service struct {
	repo     Repository
	channels Channels
	now      func() time.Time
	logger   *zap.Logger
}

func NewService(repo Repository, channels Channels, logger ...*zap.Logger) Service {
	l := zap.L().Named("notification.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("notification.service")
	}
	return &service{repo: repo, channels: channels, now: time.Now, logger: l}
}

func (s *service) List(ctx context.Context, userID string, filter ListFilter, page, pageSize int) ([]NotificationResponse, int64, error) {
	rows, total, err := s.repo.ListByUser(ctx, userID, filter.Unread, (page-1)*pageSize, pageSize)
	if err != nil {
		s.logger.Error("list notifications failed", zap.String("user_id", userID), zap.Error(err))
		return nil, 0, err
	}

	resp := make([]NotificationResponse, len(rows))
	for i, n := range rows {
		resp[i] = mapToResponse(n)
	}
	return resp, total, nil
}

func (s *service) UnreadCount(ctx context.Context, userID string) (int64, error) {
	return s.repo.CountUnread(ctx, userID)
}

func (s *service) MarkRead(ctx context.Context, userID, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return notificationerrors.ErrInvalidNotificationID
	}

	// other users' notifications look the same as missing ones
	if err := s.repo.MarkRead(ctx, userID, id, s.now().UTC()); err != nil {
		if database.IsNotFound(err) {
			return notificationerrors.ErrNotificationNotFound
		}
		return err
	}
	return nil
}

func (s *service) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	return s.repo.MarkAllRead(ctx, userID, s.now().UTC())
}

func (s *service) GetPreferences(ctx context.Context, userID string) ([]PreferenceItem, error) {
	uid, err := uuid.Parse(userID)
	if err != nil {
		return nil, notificationerrors.ErrInvalidUserID
	}

	stored, err := s.repo.ListPreferences(ctx, userID)
	if err != nil {
		return nil, err
	}

	byType := make(map[string]NotificationPreference, len(stored))
	for _, p := range stored {
		byType[p.Type] = p
	}

	items := make([]PreferenceItem, 0, len(AllTypes))
	for _, t := range AllTypes {
		p, ok := byType[t]
		if !ok {
			p = defaultPreference(uid, t)
		}
		items = append(items, PreferenceItem{Type: t, Email: p.Email, Push: p.Push, InApp: p.InApp})
	}
	return items, nil
}

func (s *service) UpdatePreferences(ctx context.Context, userID string, req UpdatePreferencesRequest) ([]PreferenceItem, error) {
	uid, err := uuid.Parse(userID)
	if err != nil {
		return nil, notificationerrors.ErrInvalidUserID
	}

	seen := make(map[string]struct{}, len(req.Preferences))
	rows := make([]NotificationPreference, 0, len(req.Preferences))
	for _, item := range req.Preferences {
		if !IsValidType(item.Type) {
			return nil, notificationerrors.ErrInvalidNotificationType
		}
		if _, dup := seen[item.Type]; dup {
			return nil, notificationerrors.ErrDuplicatePreference
		}
		seen[item.Type] = struct{}{}
		rows = append(rows, NotificationPreference{
			UserID: uid,
			Type:   item.Type,
			Email:  item.Email,
			Push:   item.Push,
			InApp:  item.InApp,
		})
	}

	if err := s.repo.ReplacePreferences(ctx, userID, rows); err != nil {
		s.logger.Error("replace preferences failed", zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}
	return s.GetPreferences(ctx, userID)
}

// Notify delivers in to every channel the recipient has enabled for its type.
// Only the in-app write can fail the call; push and email are best effort.
func (s *service) Notify(ctx context.Context, in NotifyInput) error {
	log := contextutil.GetLogger(ctx, s.logger)

	uid, err := uuid.Parse(in.UserID)
	if err != nil {
		return notificationerrors.ErrInvalidUserID
	}
	storeID, err := uuid.Parse(in.StoreID)
	if err != nil {
		return notificationerrors.ErrInvalidStoreID
	}
	if !IsValidType(in.Type) {
		return notificationerrors.ErrInvalidNotificationType
	}

	pref, err := s.repo.FindPreference(ctx, in.UserID, in.Type)
	switch {
	case err == nil:
	case database.IsNotFound(err):
		d := defaultPreference(uid, in.Type)
		pref = &d
	default:
		return err
	}

	n := Notification{
		ID:        uuid.New(),
		UserID:    uid,
		StoreID:   storeID,
		Type:      in.Type,
		Title:     in.Title,
		Message:   in.Message,
		CreatedAt: s.now().UTC(),
	}

	if pref.InApp {
		if err := s.repo.Create(ctx, &n); err != nil {
			log.Error("notification persist failed", zap.String("user_id", in.UserID), zap.String("type", in.Type), zap.Error(err))
			return err
		}
	}

	if pref.Push && s.channels.Publisher != nil {
		payload := mapToResponse(n)
		if !pref.InApp {
			payload.ID = ""
		}
		if err := s.channels.Publisher.Publish(ctx, in.UserID, payload); err != nil {
			log.Warn("notification push failed", zap.String("user_id", in.UserID), zap.Error(err))
		}
	}

	if pref.Email && s.channels.Mailer != nil && s.channels.Directory != nil {
		s.sendEmail(ctx, in)
	}

	log.Debug("notification dispatched",
		zap.String("user_id", in.UserID),
		zap.String("type", in.Type),
		zap.Bool("in_app", pref.InApp),
		zap.Bool("push", pref.Push),
		zap.Bool("email", pref.Email),
	)
	return nil
}

func (s *service) sendEmail(ctx context.Context, in NotifyInput) {
	to, err := s.channels.Directory.EmailOf(ctx, in.StoreID, in.UserID)
	if err != nil || to == "" {
		s.logger.Warn("notification recipient lookup failed", zap.String("user_id", in.UserID), zap.Error(err))
		return
	}
	if err := s.channels.Mailer.Send(ctx, mailer.Message{To: to, Subject: in.Title, Body: in.Message}); err != nil {
		s.logger.Warn("notification email failed", zap.String("user_id", in.UserID), zap.Error(err))
	}
}

func mapToResponse(n Notification) NotificationResponse {
	resp := NotificationResponse{
		ID:        n.ID.String(),
		UserID:    n.UserID.String(),
		Type:      n.Type,
		Title:     n.Title,
		Message:   n.Message,
		IsRead:    n.IsRead,
		CreatedAt: n.CreatedAt.Format(time.RFC3339),
	}
	if n.ReadAt != nil {
		v := n.ReadAt.UTC().Format(time.RFC3339)
		resp.ReadAt = &v
	}
	return resp
}
