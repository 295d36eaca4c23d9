package shiftrequest

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/coffeebean-kenobi/shifteditor-sub001/internal/auditlog"
	"github.com/coffeebean-kenobi/shifteditor-sub001/internal/domain"
	"github.com/coffeebean-kenobi/shifteditor-sub001/internal/events"
	"github.com/coffeebean-kenobi/shifteditor-sub001/internal/messaging/kafka"
	"github.com/coffeebean-kenobi/shifteditor-sub001/internal/shared/apperror"
	"github.com/coffeebean-kenobi/shifteditor-sub001/internal/shared/contextutil"
	"github.com/coffeebean-kenobi/shifteditor-sub001/internal/shared/database"
	"github.com/coffeebean-kenobi/shifteditor-sub001/internal/shift"
	shifterrors "github.com/coffeebean-kenobi/shifteditor-sub001/internal/shift/errors"
	shiftrequesterrors "github.com/coffeebean-kenobi/shifteditor-sub001/internal/shiftrequest/errors"
)

// Deps are the collaborators of the request service. Outbox, Cache and Audit may be nil.
type Deps struct {
	Settings shift.SettingsProvider
	Members  shift.MemberChecker
	Shifts   shift.Repository
	Outbox   kafka.OutboxRepository
	Cache    *shift.ListCache
	Audit    auditlog.Recorder
}

//go:generate mockgen -source=shift_request_service.go -destination=mock/shift_request_service_mock.go -package=mock
type Service interface {
	Create(ctx context.Context, actor domain.Actor, req CreateShiftRequestRequest) (ShiftRequestResponse, error)
	List(ctx context.Context, actor domain.Actor, filter ListFilter, page, pageSize int) ([]ShiftRequestResponse, int64, error)
	GetByID(ctx context.Context, actor domain.Actor, id string) (ShiftRequestResponse, error)
	Delete(ctx context.Context, actor domain.Actor, id string) error
	Approve(ctx context.Context, actor domain.Actor, id string) (ShiftRequestResponse, error)
	Reject(ctx context.Context, actor domain.Actor, id, reason string) (ShiftRequestResponse, error)
}

type service struct {
	db     *sql.DB
	repo   Repository
	deps   Deps
	now    func() time.Time
	logger *zap.Logger
}

func NewService(db *sql.DB, repo Repository, deps Deps, logger ...*zap.Logger) Service {
	l := zap.L().Named("shiftrequest.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("shiftrequest.service")
	}
	if deps.Audit == nil {
		deps.Audit = auditlog.NopRecorder{}
	}
	return &service{db: db, repo: repo, deps: deps, now: time.Now, logger: l}
}

func (s *service) Create(ctx context.Context, actor domain.Actor, req CreateShiftRequestRequest) (ShiftRequestResponse, error) {
	log := contextutil.GetLogger(ctx, s.logger)

	storeID, err := uuid.Parse(actor.StoreID)
	if err != nil {
		return ShiftRequestResponse{}, apperror.ErrInvalidInput
	}
	userID, err := uuid.Parse(actor.UserID)
	if err != nil {
		return ShiftRequestResponse{}, apperror.ErrInvalidInput
	}

	settings, err := s.deps.Settings.Settings(ctx, actor.StoreID)
	if err != nil {
		return ShiftRequestResponse{}, err
	}

	start, end := req.StartTime.UTC(), req.EndTime.UTC()
	if !start.Before(end) {
		return ShiftRequestResponse{}, shiftrequesterrors.ErrInvalidTimeRange
	}
	now := s.now()
	if !start.After(now) {
		return ShiftRequestResponse{}, shiftrequesterrors.ErrStartInPast
	}
	if settings.RequestLeadDays > 0 {
		loc := settings.Location()
		local := now.In(loc)
		earliest := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc).AddDate(0, 0, settings.RequestLeadDays)
		if start.Before(earliest) {
			return ShiftRequestResponse{}, shiftrequesterrors.ErrLeadTimeNotMet
		}
	}
	if err := shift.ValidateWindow(start, end, settings); err != nil {
		return ShiftRequestResponse{}, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		log.Error("create shift request begin tx failed", zap.Error(err))
		return ShiftRequestResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)
	if err := qtx.LockUserRequests(ctx, actor.UserID); err != nil {
		log.Error("create shift request lock failed", zap.Error(err))
		return ShiftRequestResponse{}, err
	}
	overlap, err := qtx.HasPendingOverlap(ctx, actor.UserID, start, end)
	if err != nil {
		log.Error("create shift request overlap check failed", zap.Error(err))
		return ShiftRequestResponse{}, err
	}
	if overlap {
		log.Warn("create shift request overlap detected",
			zap.String("user_id", actor.UserID),
			zap.Time("start_time", start),
			zap.Time("end_time", end),
		)
		return ShiftRequestResponse{}, shiftrequesterrors.ErrRequestOverlap
	}

	sr := &ShiftRequest{
		ID:        uuid.New(),
		UserID:    userID,
		StoreID:   storeID,
		StartTime: start,
		EndTime:   end,
		Note:      strings.TrimSpace(req.Note),
		Status:    StatusPending,
	}
	if err := qtx.Create(ctx, sr); err != nil {
		log.Error("create shift request persist failed", zap.Error(err))
		return ShiftRequestResponse{}, err
	}
	if err := tx.Commit(); err != nil {
		log.Error("create shift request commit failed", zap.Error(err))
		return ShiftRequestResponse{}, err
	}

	s.record(ctx, actor, auditlog.ActionRequestCreated, sr, nil)
	log.Info("shift request created", zap.String("request_id", sr.ID.String()))
	return MapToResponse(*sr), nil
}

func (s *service) List(ctx context.Context, actor domain.Actor, filter ListFilter, page, pageSize int) ([]ShiftRequestResponse, int64, error) {
	status := strings.ToUpper(strings.TrimSpace(filter.Status))
	if status != "" && !IsValidStatus(status) {
		return nil, 0, shiftrequesterrors.ErrInvalidStatusFilter
	}

	q := Query{UserID: filter.UserID, Status: status}
	if !actor.IsAdmin {
		q.UserID = actor.UserID
	}

	rows, total, err := s.repo.List(ctx, actor.StoreID, q, (page-1)*pageSize, pageSize)
	if err != nil {
		s.logger.Error("list shift requests failed", zap.String("store_id", actor.StoreID), zap.Error(err))
		return nil, 0, err
	}

	resp := make([]ShiftRequestResponse, len(rows))
	for i, r := range rows {
		resp[i] = MapToResponse(r)
	}
	return resp, total, nil
}

func (s *service) GetByID(ctx context.Context, actor domain.Actor, id string) (ShiftRequestResponse, error) {
	sr, err := s.find(ctx, actor, id)
	if err != nil {
		return ShiftRequestResponse{}, err
	}
	return MapToResponse(*sr), nil
}

func (s *service) Delete(ctx context.Context, actor domain.Actor, id string) error {
	sr, err := s.find(ctx, actor, id)
	if err != nil {
		return err
	}
	if sr.Status != StatusPending {
		return shiftrequesterrors.ErrNotPending
	}

	if err := s.repo.Delete(ctx, actor.StoreID, id); err != nil {
		s.logger.Warn("delete shift request failed", zap.String("request_id", id), zap.Error(err))
		return mapRepositoryError(err)
	}

	s.record(ctx, actor, auditlog.ActionRequestDeleted, sr, nil)
	return nil
}

// find loads a request visible to actor: admins see the store, staff only their own.
func (s *service) find(ctx context.Context, actor domain.Actor, id string) (*ShiftRequest, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, shiftrequesterrors.ErrInvalidRequestID
	}
	sr, err := s.repo.FindByID(ctx, actor.StoreID, id)
	if err != nil {
		return nil, mapRepositoryError(err)
	}
	if !actor.IsAdmin && sr.UserID.String() != actor.UserID {
		return nil, shiftrequesterrors.ErrNotRequestOwner
	}
	return sr, nil
}

func (s *service) Approve(ctx context.Context, actor domain.Actor, id string) (ShiftRequestResponse, error) {
	var createdShift *shift.Shift
	resp, err := s.review(ctx, actor, id, events.RequestApproved, auditlog.ActionRequestApproved, func(tx *sql.Tx, sr *ShiftRequest) error {
		settings, err := s.deps.Settings.Settings(ctx, actor.StoreID)
		if err != nil {
			return err
		}
		if err := shift.ValidateWindow(sr.StartTime, sr.EndTime, settings); err != nil {
			return err
		}
		ok, err := s.deps.Members.ExistsActiveInStore(ctx, actor.StoreID, sr.UserID.String())
		if err != nil {
			return err
		}
		if !ok {
			return shifterrors.ErrStaffNotInStore
		}

		sh := &shift.Shift{
			ID:        uuid.New(),
			UserID:    sr.UserID,
			StoreID:   sr.StoreID,
			StartTime: sr.StartTime,
			EndTime:   sr.EndTime,
			Status:    shift.StatusScheduled,
			Note:      sr.Note,
			CreatedBy: sr.ReviewedBy,
		}
		if err := shift.ScheduleInTx(ctx, s.deps.Shifts.WithTx(tx), sh); err != nil {
			return err
		}
		sr.Status = StatusApproved
		sr.ShiftID = &sh.ID
		sr.RejectionReason = nil
		createdShift = sh
		return nil
	})
	if err != nil {
		return ShiftRequestResponse{}, err
	}

	s.deps.Cache.Invalidate(ctx, actor.StoreID)
	s.logger.Info("shift request approved",
		zap.String("request_id", id),
		zap.String("shift_id", createdShift.ID.String()),
	)
	return resp, nil
}

func (s *service) Reject(ctx context.Context, actor domain.Actor, id, reason string) (ShiftRequestResponse, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return ShiftRequestResponse{}, shiftrequesterrors.ErrRejectionReasonRequired
	}
	return s.review(ctx, actor, id, events.RequestRejected, auditlog.ActionRequestRejected, func(_ *sql.Tx, sr *ShiftRequest) error {
		sr.Status = StatusRejected
		sr.RejectionReason = &reason
		return nil
	})
}

// review moves a PENDING request to its final state under a row lock and queues
// the reviewed event in the same transaction.
func (s *service) review(ctx context.Context, actor domain.Actor, id, eventType, auditAction string, apply func(*sql.Tx, *ShiftRequest) error) (ShiftRequestResponse, error) {
	log := contextutil.GetLogger(ctx, s.logger)

	if _, err := uuid.Parse(id); err != nil {
		return ShiftRequestResponse{}, shiftrequesterrors.ErrInvalidRequestID
	}
	reviewer, err := uuid.Parse(actor.UserID)
	if err != nil {
		return ShiftRequestResponse{}, apperror.ErrInvalidInput
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		log.Error("review shift request begin tx failed", zap.String("event", eventType), zap.Error(err))
		return ShiftRequestResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)
	sr, err := qtx.FindForUpdate(ctx, actor.StoreID, id)
	if err != nil {
		return ShiftRequestResponse{}, mapRepositoryError(err)
	}
	if sr.Status != StatusPending {
		log.Warn("review shift request invalid state",
			zap.String("request_id", id),
			zap.String("status", sr.Status),
		)
		return ShiftRequestResponse{}, shiftrequesterrors.ErrNotPending
	}

	now := s.now().UTC()
	sr.ReviewedBy = &reviewer
	sr.ReviewedAt = &now
	if err := apply(tx, sr); err != nil {
		if !errors.Is(err, shifterrors.ErrShiftOverlap) {
			log.Warn("review shift request rejected", zap.String("request_id", id), zap.Error(err))
		}
		return ShiftRequestResponse{}, err
	}

	if err := qtx.Update(ctx, sr); err != nil {
		log.Error("review shift request persist failed", zap.String("request_id", id), zap.Error(err))
		return ShiftRequestResponse{}, err
	}
	if err := s.enqueue(ctx, tx, eventType, *sr); err != nil {
		return ShiftRequestResponse{}, err
	}
	if err := tx.Commit(); err != nil {
		log.Error("review shift request commit failed", zap.String("request_id", id), zap.Error(err))
		return ShiftRequestResponse{}, err
	}

	meta := map[string]any{"status": sr.Status}
	if sr.ShiftID != nil {
		meta["shift_id"] = sr.ShiftID.String()
	}
	if sr.RejectionReason != nil {
		meta["reason"] = *sr.RejectionReason
	}
	s.record(ctx, actor, auditAction, sr, meta)

	return MapToResponse(*sr), nil
}

func (s *service) enqueue(ctx context.Context, tx *sql.Tx, eventType string, sr ShiftRequest) error {
	if s.deps.Outbox == nil {
		return nil
	}
	event, err := kafka.NewOutboxEvent(ctx, events.ShiftRequestReviewedTopic, eventType, events.AggregateShiftRequest, sr.ID.String(),
		ReviewedEvent(eventType, sr, s.now()))
	if err != nil {
		s.logger.Error("build shift request event failed", zap.String("event", eventType), zap.Error(err))
		return err
	}
	if err := s.deps.Outbox.WithTx(tx).Create(ctx, event); err != nil {
		s.logger.Error("shift request outbox persist failed", zap.String("request_id", sr.ID.String()), zap.Error(err))
		return err
	}
	return nil
}

func (s *service) record(ctx context.Context, actor domain.Actor, action string, sr *ShiftRequest, meta map[string]any) {
	if meta == nil {
		meta = map[string]any{}
	}
	meta["user_id"] = sr.UserID.String()
	meta["start_time"] = sr.StartTime
	meta["end_time"] = sr.EndTime
	s.deps.Audit.Record(ctx, auditlog.Entry{
		StoreID:    actor.StoreID,
		ActorID:    actor.UserID,
		Action:     action,
		TargetType: "shift_request",
		TargetID:   sr.ID.String(),
		Meta:       meta,
	})
}

// ReviewedEvent builds the outbox payload for an approval or rejection.
func ReviewedEvent(eventType string, sr ShiftRequest, at time.Time) events.ShiftRequestReviewedEvent {
	ev := events.ShiftRequestReviewedEvent{
		EventType:  eventType,
		RequestID:  sr.ID.String(),
		StoreID:    sr.StoreID.String(),
		UserID:     sr.UserID.String(),
		StartTime:  sr.StartTime,
		EndTime:    sr.EndTime,
		OccurredAt: at.UTC(),
	}
	if sr.ShiftID != nil {
		ev.ShiftID = sr.ShiftID.String()
	}
	if sr.ReviewedBy != nil {
		ev.ReviewedBy = sr.ReviewedBy.String()
	}
	if sr.RejectionReason != nil {
		ev.Reason = *sr.RejectionReason
	}
	return ev
}

func mapRepositoryError(err error) error {
	if database.IsNotFound(err) {
		return shiftrequesterrors.ErrRequestNotFound
	}
	return err
}

func MapToResponse(sr ShiftRequest) ShiftRequestResponse {
	resp := ShiftRequestResponse{
		ID:              sr.ID.String(),
		UserID:          sr.UserID.String(),
		StoreID:         sr.StoreID.String(),
		StartTime:       sr.StartTime.Format(time.RFC3339),
		EndTime:         sr.EndTime.Format(time.RFC3339),
		Note:            sr.Note,
		Status:          sr.Status,
		RejectionReason: sr.RejectionReason,
		CreatedAt:       sr.CreatedAt.Format(time.RFC3339),
	}
	if sr.User != nil {
		resp.UserName = sr.User.Name
	}
	if sr.ReviewedBy != nil {
		v := sr.ReviewedBy.String()
		resp.ReviewedBy = &v
	}
	if sr.ReviewedAt != nil {
		v := sr.ReviewedAt.Format(time.RFC3339)
		resp.ReviewedAt = &v
	}
	if sr.ShiftID != nil {
		v := sr.ShiftID.String()
		resp.ShiftID = &v
	}
	return resp
}
