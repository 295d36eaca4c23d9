package shift

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/coffeebean-kenobi/shifteditor-sub001/internal/attendance"
	"github.com/coffeebean-kenobi/shifteditor-sub001/internal/auditlog"
	"github.com/coffeebean-kenobi/shifteditor-sub001/internal/domain"
	"github.com/coffeebean-kenobi/shifteditor-sub001/internal/events"
	"github.com/coffeebean-kenobi/shifteditor-sub001/internal/messaging/kafka"
	"github.com/coffeebean-kenobi/shifteditor-sub001/internal/shared/apperror"
	"github.com/coffeebean-kenobi/shifteditor-sub001/internal/shared/contextutil"
	"github.com/coffeebean-kenobi/shifteditor-sub001/internal/shared/database"
	"github.com/coffeebean-kenobi/shifteditor-sub001/internal/shared/daterange"
	shifterrors "github.com/coffeebean-kenobi/shifteditor-sub001/internal/shift/errors"
	"github.com/coffeebean-kenobi/shifteditor-sub001/internal/store"
)

type SettingsProvider interface {
	Settings(ctx context.Context, storeID string) (store.StoreSettings, error)
}

type MemberChecker interface {
	ExistsActiveInStore(ctx context.Context, storeID, userID string) (bool, error)
}

type AttendanceReader interface {
	FindByShiftIDs(ctx context.Context, shiftIDs []string) ([]attendance.Attendance, error)
}

// Deps are the collaborators of the shift service. Outbox, Cache and Audit may be nil.
type Deps struct {
	Settings   SettingsProvider
	Members    MemberChecker
	Attendance AttendanceReader
	Outbox     kafka.OutboxRepository
	Cache      *ListCache
	Audit      auditlog.Recorder
}

//go:generate mockgen -source=shift_service.go -destination=mock/shift_service_mock.go -package=mock
type Service interface {
	List(ctx context.Context, actor domain.Actor, filter ListShiftFilter, page, pageSize int) ([]ShiftResponse, int64, error)
	GetByID(ctx context.Context, actor domain.Actor, id string) (ShiftResponse, error)
	Create(ctx context.Context, actor domain.Actor, req CreateShiftRequest) (ShiftResponse, error)
	Update(ctx context.Context, actor domain.Actor, id string, req UpdateShiftRequest) (ShiftResponse, error)
	Confirm(ctx context.Context, actor domain.Actor, id string) (ShiftResponse, error)
	Cancel(ctx context.Context, actor domain.Actor, id string) (ShiftResponse, error)
	Delete(ctx context.Context, actor domain.Actor, id string) error
}

type service struct {
	db     *sql.DB
	repo   Repository
	deps   Deps
	sf     *singleflight.Group
	now    func() time.Time
	logger *zap.Logger
}

func NewService(db *sql.DB, repo Repository, deps Deps, logger ...*zap.Logger) Service {
	l := zap.L().Named("shift.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("shift.service")
	}
	if deps.Audit == nil {
		deps.Audit = auditlog.NopRecorder{}
	}
	return &service{
		db:     db,
		repo:   repo,
		deps:   deps,
		sf:     &singleflight.Group{},
		now:    time.Now,
		logger: l,
	}
}

func (s *service) List(ctx context.Context, actor domain.Actor, filter ListShiftFilter, page, pageSize int) ([]ShiftResponse, int64, error) {
	status := strings.ToUpper(strings.TrimSpace(filter.Status))
	if status != "" && !IsValidStatus(status) {
		return nil, 0, shifterrors.ErrInvalidStatusFilter
	}

	settings, err := s.deps.Settings.Settings(ctx, actor.StoreID)
	if err != nil {
		return nil, 0, err
	}
	r, err := daterange.Parse(filter.From, filter.To, settings.Location())
	if err != nil {
		return nil, 0, shifterrors.ErrInvalidDateRange
	}

	q := Query{From: r.From, To: r.To, UserID: filter.UserID, Status: status}
	if !actor.IsAdmin {
		q.UserID = actor.UserID
	}

	key := s.deps.Cache.Key(ctx, actor.StoreID, q, page, pageSize)
	rows, total, ok := s.deps.Cache.Get(ctx, key)
	if !ok {
		type result struct {
			rows  []Shift
			total int64
		}
		v, err, _ := s.sf.Do(key, func() (interface{}, error) {
			rows, total, err := s.repo.List(ctx, actor.StoreID, q, (page-1)*pageSize, pageSize)
			if err != nil {
				return nil, err
			}
			s.deps.Cache.Set(ctx, key, rows, total)
			return result{rows: rows, total: total}, nil
		})
		if err != nil {
			s.logger.Error("list shifts failed", zap.String("store_id", actor.StoreID), zap.Error(err))
			return nil, 0, err
		}
		res := v.(result)
		rows, total = res.rows, res.total
	}

	resp, err := s.withWorkStatus(ctx, rows, settings)
	if err != nil {
		return nil, 0, err
	}
	return resp, total, nil
}

func (s *service) GetByID(ctx context.Context, actor domain.Actor, id string) (ShiftResponse, error) {
	if _, err := uuid.Parse(id); err != nil {
		return ShiftResponse{}, shifterrors.ErrInvalidShiftID
	}

	sh, err := s.repo.FindByID(ctx, actor.StoreID, id)
	if err != nil {
		return ShiftResponse{}, mapRepositoryError(err)
	}
	if !actor.IsAdmin && sh.UserID.String() != actor.UserID {
		return ShiftResponse{}, apperror.ErrForbidden
	}

	settings, err := s.deps.Settings.Settings(ctx, actor.StoreID)
	if err != nil {
		return ShiftResponse{}, err
	}
	resp, err := s.withWorkStatus(ctx, []Shift{*sh}, settings)
	if err != nil {
		return ShiftResponse{}, err
	}
	return resp[0], nil
}

func (s *service) Create(ctx context.Context, actor domain.Actor, req CreateShiftRequest) (ShiftResponse, error) {
	log := contextutil.GetLogger(ctx, s.logger)

	storeID, err := uuid.Parse(actor.StoreID)
	if err != nil {
		return ShiftResponse{}, apperror.ErrInvalidInput
	}
	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		return ShiftResponse{}, shifterrors.ErrStaffNotInStore
	}

	settings, err := s.deps.Settings.Settings(ctx, actor.StoreID)
	if err != nil {
		return ShiftResponse{}, err
	}
	start, end := req.StartTime.UTC(), req.EndTime.UTC()
	if err := ValidateWindow(start, end, settings); err != nil {
		return ShiftResponse{}, err
	}
	if err := s.ensureMember(ctx, actor.StoreID, req.UserID); err != nil {
		return ShiftResponse{}, err
	}

	sh := &Shift{
		ID:        uuid.New(),
		UserID:    userID,
		StoreID:   storeID,
		StartTime: start,
		EndTime:   end,
		Status:    StatusScheduled,
		Note:      strings.TrimSpace(req.Note),
		CreatedBy: uuidPtr(actor.UserID),
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		log.Error("create shift begin tx failed", zap.Error(err))
		return ShiftResponse{}, err
	}
	defer tx.Rollback()

	if err := ScheduleInTx(ctx, s.repo.WithTx(tx), sh); err != nil {
		if !errors.Is(err, shifterrors.ErrShiftOverlap) {
			log.Error("create shift persist failed", zap.Error(err))
		}
		return ShiftResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		log.Error("create shift commit failed", zap.Error(err))
		return ShiftResponse{}, err
	}

	s.deps.Cache.Invalidate(ctx, actor.StoreID)
	s.record(ctx, actor, auditlog.ActionShiftCreated, sh, nil)

	log.Info("shift created", zap.String("shift_id", sh.ID.String()), zap.String("user_id", req.UserID))
	return s.single(*sh, nil, settings), nil
}

func (s *service) Update(ctx context.Context, actor domain.Actor, id string, req UpdateShiftRequest) (ShiftResponse, error) {
	log := contextutil.GetLogger(ctx, s.logger)

	if _, err := uuid.Parse(id); err != nil {
		return ShiftResponse{}, shifterrors.ErrInvalidShiftID
	}

	settings, err := s.deps.Settings.Settings(ctx, actor.StoreID)
	if err != nil {
		return ShiftResponse{}, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		log.Error("update shift begin tx failed", zap.Error(err))
		return ShiftResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)
	sh, err := qtx.FindForUpdate(ctx, actor.StoreID, id)
	if err != nil {
		return ShiftResponse{}, mapRepositoryError(err)
	}
	if sh.Status == StatusCancelled {
		return ShiftResponse{}, shifterrors.ErrInvalidShiftState
	}

	att, err := s.attendanceFor(ctx, id)
	if err != nil {
		return ShiftResponse{}, err
	}

	changes := map[string]any{}
	next := *sh
	if req.UserID != nil && *req.UserID != sh.UserID.String() {
		uid, err := uuid.Parse(*req.UserID)
		if err != nil {
			return ShiftResponse{}, shifterrors.ErrStaffNotInStore
		}
		next.UserID = uid
		changes["user_id"] = *req.UserID
	}
	if req.StartTime != nil && !req.StartTime.Equal(sh.StartTime) {
		next.StartTime = req.StartTime.UTC()
		changes["start_time"] = next.StartTime
	}
	if req.EndTime != nil && !req.EndTime.Equal(sh.EndTime) {
		next.EndTime = req.EndTime.UTC()
		changes["end_time"] = next.EndTime
	}
	if req.Note != nil && strings.TrimSpace(*req.Note) != sh.Note {
		next.Note = strings.TrimSpace(*req.Note)
		changes["note"] = next.Note
	}

	_, userChanged := changes["user_id"]
	_, startChanged := changes["start_time"]
	_, endChanged := changes["end_time"]
	if userChanged || startChanged || endChanged {
		if att != nil {
			return ShiftResponse{}, shifterrors.ErrShiftHasAttendance
		}
		if err := ValidateWindow(next.StartTime, next.EndTime, settings); err != nil {
			return ShiftResponse{}, err
		}
		if userChanged {
			if err := s.ensureMember(ctx, actor.StoreID, next.UserID.String()); err != nil {
				return ShiftResponse{}, err
			}
		}
		if err := checkOverlap(ctx, qtx, next); err != nil {
			return ShiftResponse{}, err
		}
	}

	if len(changes) > 0 && next.Status == StatusConfirmed {
		next.Status = StatusScheduled
		next.ConfirmedBy = nil
		next.ConfirmedAt = nil
		changes["status"] = StatusScheduled
	}

	if err := qtx.Update(ctx, &next); err != nil {
		log.Error("update shift persist failed", zap.String("shift_id", id), zap.Error(err))
		return ShiftResponse{}, err
	}
	if len(changes) > 0 {
		if err := s.enqueue(ctx, tx, events.ShiftUpdated, next, actor.UserID); err != nil {
			return ShiftResponse{}, err
		}
	}

	if err := tx.Commit(); err != nil {
		log.Error("update shift commit failed", zap.Error(err))
		return ShiftResponse{}, err
	}

	s.deps.Cache.Invalidate(ctx, actor.StoreID)
	s.record(ctx, actor, auditlog.ActionShiftUpdated, &next, changes)

	return s.single(next, att, settings), nil
}

func (s *service) Confirm(ctx context.Context, actor domain.Actor, id string) (ShiftResponse, error) {
	return s.transition(ctx, actor, id, events.ShiftConfirmed, auditlog.ActionShiftConfirmed, func(sh *Shift, _ *attendance.Attendance) error {
		if sh.Status != StatusScheduled {
			return shifterrors.ErrInvalidShiftState
		}
		now := s.now().UTC()
		sh.Status = StatusConfirmed
		sh.ConfirmedBy = uuidPtr(actor.UserID)
		sh.ConfirmedAt = &now
		return nil
	})
}

func (s *service) Cancel(ctx context.Context, actor domain.Actor, id string) (ShiftResponse, error) {
	return s.transition(ctx, actor, id, events.ShiftCancelled, auditlog.ActionShiftCancelled, func(sh *Shift, att *attendance.Attendance) error {
		if sh.Status == StatusCancelled {
			return shifterrors.ErrInvalidShiftState
		}
		if att != nil {
			return shifterrors.ErrShiftHasAttendance
		}
		sh.Status = StatusCancelled
		return nil
	})
}

func (s *service) Delete(ctx context.Context, actor domain.Actor, id string) error {
	log := contextutil.GetLogger(ctx, s.logger)

	if _, err := uuid.Parse(id); err != nil {
		return shifterrors.ErrInvalidShiftID
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		log.Error("delete shift begin tx failed", zap.Error(err))
		return err
	}
	defer tx.Rollback()

	// The row lock orders this check against a concurrent clock-in, which
	// reads the shift FOR SHARE.
	qtx := s.repo.WithTx(tx)
	sh, err := qtx.FindForUpdate(ctx, actor.StoreID, id)
	if err != nil {
		return mapRepositoryError(err)
	}
	att, err := s.attendanceFor(ctx, id)
	if err != nil {
		return err
	}
	if att != nil {
		return shifterrors.ErrShiftHasAttendance
	}

	if err := qtx.Delete(ctx, actor.StoreID, id); err != nil {
		log.Warn("delete shift failed", zap.String("shift_id", id), zap.Error(err))
		return mapRepositoryError(err)
	}
	if err := tx.Commit(); err != nil {
		log.Error("delete shift commit failed", zap.Error(err))
		return err
	}

	s.deps.Cache.Invalidate(ctx, actor.StoreID)
	s.record(ctx, actor, auditlog.ActionShiftDeleted, sh, nil)
	return nil
}

// transition applies a status change under a row lock and queues the lifecycle event.
// apply sees the shift's attendance as read after the lock is held.
func (s *service) transition(ctx context.Context, actor domain.Actor, id, eventType, auditAction string, apply func(*Shift, *attendance.Attendance) error) (ShiftResponse, error) {
	log := contextutil.GetLogger(ctx, s.logger)

	if _, err := uuid.Parse(id); err != nil {
		return ShiftResponse{}, shifterrors.ErrInvalidShiftID
	}
	settings, err := s.deps.Settings.Settings(ctx, actor.StoreID)
	if err != nil {
		return ShiftResponse{}, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		log.Error("shift transition begin tx failed", zap.String("event", eventType), zap.Error(err))
		return ShiftResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)
	sh, err := qtx.FindForUpdate(ctx, actor.StoreID, id)
	if err != nil {
		return ShiftResponse{}, mapRepositoryError(err)
	}
	att, err := s.attendanceFor(ctx, id)
	if err != nil {
		return ShiftResponse{}, err
	}
	from := sh.Status
	if err := apply(sh, att); err != nil {
		return ShiftResponse{}, err
	}

	if err := qtx.Update(ctx, sh); err != nil {
		log.Error("shift transition persist failed", zap.String("shift_id", id), zap.Error(err))
		return ShiftResponse{}, err
	}
	if err := s.enqueue(ctx, tx, eventType, *sh, actor.UserID); err != nil {
		return ShiftResponse{}, err
	}
	if err := tx.Commit(); err != nil {
		log.Error("shift transition commit failed", zap.Error(err))
		return ShiftResponse{}, err
	}

	s.deps.Cache.Invalidate(ctx, actor.StoreID)
	s.record(ctx, actor, auditAction, sh, map[string]any{"from": from, "to": sh.Status})

	log.Info("shift status changed", zap.String("shift_id", id), zap.String("from", from), zap.String("to", sh.Status))
	return s.single(*sh, att, settings), nil
}

func (s *service) enqueue(ctx context.Context, tx *sql.Tx, eventType string, sh Shift, actorID string) error {
	if s.deps.Outbox == nil {
		return nil
	}
	event, err := kafka.NewOutboxEvent(ctx, events.ShiftLifecycleTopic, eventType, events.AggregateShift, sh.ID.String(),
		LifecycleEvent(eventType, sh, actorID, s.now()))
	if err != nil {
		s.logger.Error("build shift event failed", zap.String("event", eventType), zap.Error(err))
		return err
	}
	if err := s.deps.Outbox.WithTx(tx).Create(ctx, event); err != nil {
		s.logger.Error("shift outbox persist failed", zap.String("shift_id", sh.ID.String()), zap.Error(err))
		return err
	}
	return nil
}

func (s *service) ensureMember(ctx context.Context, storeID, userID string) error {
	ok, err := s.deps.Members.ExistsActiveInStore(ctx, storeID, userID)
	if err != nil {
		return err
	}
	if !ok {
		return shifterrors.ErrStaffNotInStore
	}
	return nil
}

func (s *service) attendanceFor(ctx context.Context, shiftID string) (*attendance.Attendance, error) {
	if s.deps.Attendance == nil {
		return nil, nil
	}
	rows, err := s.deps.Attendance.FindByShiftIDs(ctx, []string{shiftID})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

func (s *service) withWorkStatus(ctx context.Context, rows []Shift, settings store.StoreSettings) ([]ShiftResponse, error) {
	byShift := map[uuid.UUID]*attendance.Attendance{}
	if s.deps.Attendance != nil && len(rows) > 0 {
		ids := make([]string, len(rows))
		for i, r := range rows {
			ids[i] = r.ID.String()
		}
		atts, err := s.deps.Attendance.FindByShiftIDs(ctx, ids)
		if err != nil {
			s.logger.Error("load shift attendance failed", zap.Error(err))
			return nil, err
		}
		for i := range atts {
			byShift[atts[i].ShiftID] = &atts[i]
		}
	}

	resp := make([]ShiftResponse, len(rows))
	for i, r := range rows {
		resp[i] = s.single(r, byShift[r.ID], settings)
	}
	return resp, nil
}

func (s *service) single(sh Shift, att *attendance.Attendance, settings store.StoreSettings) ShiftResponse {
	resp := MapToResponse(sh)
	resp.WorkStatus = attendance.DeriveWorkStatus(
		attendance.ShiftWindow{Start: sh.StartTime, End: sh.EndTime, Cancelled: sh.Status == StatusCancelled},
		att, s.now(), settings.LateGrace(),
	)
	return resp
}

func (s *service) record(ctx context.Context, actor domain.Actor, action string, sh *Shift, meta map[string]any) {
	if meta == nil {
		meta = map[string]any{}
	}
	meta["user_id"] = sh.UserID.String()
	meta["start_time"] = sh.StartTime
	meta["end_time"] = sh.EndTime
	s.deps.Audit.Record(ctx, auditlog.Entry{
		StoreID:    actor.StoreID,
		ActorID:    actor.UserID,
		Action:     action,
		TargetType: "shift",
		TargetID:   sh.ID.String(),
		Meta:       meta,
	})
}

// ValidateWindow checks ordering and the store's length limits.
func ValidateWindow(start, end time.Time, settings store.StoreSettings) error {
	if !start.Before(end) {
		return shifterrors.ErrInvalidTimeRange
	}
	minutes := int(end.Sub(start) / time.Minute)
	if minutes < settings.MinShiftMinutes || minutes > settings.MaxShiftMinutes {
		return shifterrors.ErrInvalidDuration
	}
	return nil
}

// ScheduleInTx inserts sh on a transaction-bound repository, rejecting overlaps
// with the user's other live shifts.
func ScheduleInTx(ctx context.Context, qtx Repository, sh *Shift) error {
	if err := checkOverlap(ctx, qtx, *sh); err != nil {
		return err
	}
	return qtx.Create(ctx, sh)
}

func checkOverlap(ctx context.Context, qtx Repository, sh Shift) error {
	if err := qtx.LockUserSchedule(ctx, sh.UserID.String()); err != nil {
		return err
	}
	overlap, err := qtx.HasOverlap(ctx, sh.UserID.String(), sh.StartTime, sh.EndTime, sh.ID.String())
	if err != nil {
		return err
	}
	if overlap {
		return shifterrors.ErrShiftOverlap
	}
	return nil
}

// LifecycleEvent builds the outbox payload for a shift change.
func LifecycleEvent(eventType string, sh Shift, actorID string, at time.Time) events.ShiftLifecycleEvent {
	return events.ShiftLifecycleEvent{
		EventType:  eventType,
		ShiftID:    sh.ID.String(),
		StoreID:    sh.StoreID.String(),
		UserID:     sh.UserID.String(),
		ActorID:    actorID,
		StartTime:  sh.StartTime,
		EndTime:    sh.EndTime,
		OccurredAt: at.UTC(),
	}
}

func mapRepositoryError(err error) error {
	if database.IsNotFound(err) {
		return shifterrors.ErrShiftNotFound
	}
	return err
}

func uuidPtr(v string) *uuid.UUID {
	id, err := uuid.Parse(v)
	if err != nil {
		return nil
	}
	return &id
}

func MapToResponse(sh Shift) ShiftResponse {
	resp := ShiftResponse{
		ID:        sh.ID.String(),
		UserID:    sh.UserID.String(),
		StoreID:   sh.StoreID.String(),
		StartTime: sh.StartTime.Format(time.RFC3339),
		EndTime:   sh.EndTime.Format(time.RFC3339),
		Status:    sh.Status,
		Note:      sh.Note,
	}
	if sh.CreatedBy != nil {
		v := sh.CreatedBy.String()
		resp.CreatedBy = &v
	}
	if sh.ConfirmedBy != nil {
		v := sh.ConfirmedBy.String()
		resp.ConfirmedBy = &v
	}
	if sh.ConfirmedAt != nil {
		v := sh.ConfirmedAt.Format(time.RFC3339)
		resp.ConfirmedAt = &v
	}
	return resp
}
