package attendance

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	attendanceerrors "github.com/coffeebean-kenobi/shifteditor-sub001/internal/attendance/errors"
	"github.com/coffeebean-kenobi/shifteditor-sub001/internal/auditlog"
	"github.com/coffeebean-kenobi/shifteditor-sub001/internal/domain"
	"github.com/coffeebean-kenobi/shifteditor-sub001/internal/shared/apperror"
	"github.com/coffeebean-kenobi/shifteditor-sub001/internal/shared/contextutil"
	"github.com/coffeebean-kenobi/shifteditor-sub001/internal/shared/database"
	"github.com/coffeebean-kenobi/shifteditor-sub001/internal/shared/daterange"
	"github.com/coffeebean-kenobi/shifteditor-sub001/internal/store"
)

// clockInLead is how early before the shift start clock-in opens.
const clockInLead = time.Hour

type SettingsProvider interface {
	Settings(ctx context.Context, storeID string) (store.StoreSettings, error)
}

//go:generate mockgen -source=attendance_service.go -destination=mock/attendance_service_mock.go -package=mock
type Service interface {
	ClockIn(ctx context.Context, actor domain.Actor, req ClockRequest) (AttendanceResponse, error)
	ClockOut(ctx context.Context, actor domain.Actor, req ClockRequest) (AttendanceResponse, error)
	List(ctx context.Context, actor domain.Actor, filter ListFilter, page, pageSize int) ([]AttendanceResponse, int64, error)
	Correct(ctx context.Context, actor domain.Actor, id string, req CorrectAttendanceRequest) (AttendanceResponse, error)
	Summary(ctx context.Context, actor domain.Actor, filter SummaryFilter) (SummaryResponse, error)
}

type service struct {
	db       *sql.DB
	repo     Repository
	settings SettingsProvider
	audit    auditlog.Recorder
	now      func() time.Time
	logger   *zap.Logger
}

func NewService(db *sql.DB, repo Repository, settings SettingsProvider, audit auditlog.Recorder, logger ...*zap.Logger) Service {
	l := zap.L().Named("attendance.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("attendance.service")
	}
	if audit == nil {
		audit = auditlog.NopRecorder{}
	}
	return &service{
		db:       db,
		repo:     repo,
		settings: settings,
		audit:    audit,
		now:      time.Now,
		logger:   l,
	}
}

func (s *service) ClockIn(ctx context.Context, actor domain.Actor, req ClockRequest) (AttendanceResponse, error) {
	log := contextutil.GetLogger(ctx, s.logger)

	settings, err := s.settings.Settings(ctx, actor.StoreID)
	if err != nil {
		return AttendanceResponse{}, err
	}
	if !settings.AllowStaffSelfClock && !actor.IsAdmin {
		return AttendanceResponse{}, attendanceerrors.ErrSelfClockDisabled
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		log.Error("clock in begin tx failed", zap.Error(err))
		return AttendanceResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)
	shift, err := qtx.FindShift(ctx, actor.StoreID, req.ShiftID)
	if err != nil {
		if database.IsNotFound(err) {
			return AttendanceResponse{}, attendanceerrors.ErrShiftNotFound
		}
		return AttendanceResponse{}, err
	}
	if shift.UserID.String() != actor.UserID {
		return AttendanceResponse{}, attendanceerrors.ErrNotShiftOwner
	}
	win := shift.Window()
	if win.Cancelled {
		return AttendanceResponse{}, attendanceerrors.ErrShiftCancelled
	}

	now := s.now().UTC()
	if now.Before(win.Start.Add(-clockInLead)) || now.After(win.End) {
		return AttendanceResponse{}, attendanceerrors.ErrOutsideClockWindow
	}

	if _, err := qtx.FindByShiftID(ctx, req.ShiftID, false); err == nil {
		return AttendanceResponse{}, attendanceerrors.ErrAlreadyClockedIn
	} else if !database.IsNotFound(err) {
		return AttendanceResponse{}, err
	}

	status := Punctuality(shift.StartTime, now, settings.LateGrace())
	row := &Attendance{
		ID:      uuid.New(),
		ShiftID: shift.ID,
		UserID:  shift.UserID,
		StoreID: shift.StoreID,
		ClockIn: now,
		Status:  status,
		IsLate:  status == StatusLate,
		Note:    strings.TrimSpace(req.Note),
	}
	if err := qtx.Create(ctx, row); err != nil {
		if database.IsUniqueViolation(err, "uq_attendances_shift") {
			return AttendanceResponse{}, attendanceerrors.ErrAlreadyClockedIn
		}
		log.Error("clock in persist failed", zap.String("shift_id", req.ShiftID), zap.Error(err))
		return AttendanceResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		log.Error("clock in commit failed", zap.Error(err))
		return AttendanceResponse{}, err
	}

	log.Info("clocked in", zap.String("shift_id", req.ShiftID), zap.String("status", status))
	return mapToResponse(*row), nil
}

func (s *service) ClockOut(ctx context.Context, actor domain.Actor, req ClockRequest) (AttendanceResponse, error) {
	log := contextutil.GetLogger(ctx, s.logger)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		log.Error("clock out begin tx failed", zap.Error(err))
		return AttendanceResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)
	row, err := qtx.FindByShiftID(ctx, req.ShiftID, true)
	if err != nil {
		if database.IsNotFound(err) {
			return AttendanceResponse{}, attendanceerrors.ErrNotClockedIn
		}
		return AttendanceResponse{}, err
	}
	if row.StoreID.String() != actor.StoreID {
		return AttendanceResponse{}, attendanceerrors.ErrShiftNotFound
	}
	if row.UserID.String() != actor.UserID {
		return AttendanceResponse{}, attendanceerrors.ErrNotShiftOwner
	}
	if row.ClockOut != nil {
		return AttendanceResponse{}, attendanceerrors.ErrAlreadyClockedOut
	}

	now := s.now().UTC()
	row.ClockOut = &now
	row.WorkingMinutes = WorkingMinutes(row.ClockIn, now)
	row.Status = StatusCompleted
	if note := strings.TrimSpace(req.Note); note != "" {
		row.Note = note
	}

	if err := qtx.Update(ctx, row); err != nil {
		log.Error("clock out persist failed", zap.String("shift_id", req.ShiftID), zap.Error(err))
		return AttendanceResponse{}, err
	}
	if err := tx.Commit(); err != nil {
		log.Error("clock out commit failed", zap.Error(err))
		return AttendanceResponse{}, err
	}

	log.Info("clocked out", zap.String("shift_id", req.ShiftID), zap.Int("working_minutes", row.WorkingMinutes))
	return mapToResponse(*row), nil
}

func (s *service) List(ctx context.Context, actor domain.Actor, filter ListFilter, page, pageSize int) ([]AttendanceResponse, int64, error) {
	settings, err := s.settings.Settings(ctx, actor.StoreID)
	if err != nil {
		return nil, 0, err
	}

	r, err := daterange.Parse(filter.From, filter.To, settings.Location())
	if err != nil {
		return nil, 0, attendanceerrors.ErrInvalidDateRange
	}

	q := Query{From: r.From, To: r.To, UserID: filter.UserID}
	if !actor.IsAdmin {
		q.UserID = actor.UserID
	}

	rows, total, err := s.repo.List(ctx, actor.StoreID, q, (page-1)*pageSize, pageSize)
	if err != nil {
		s.logger.Error("list attendance failed", zap.String("store_id", actor.StoreID), zap.Error(err))
		return nil, 0, err
	}

	resp := make([]AttendanceResponse, len(rows))
	for i, row := range rows {
		resp[i] = mapToResponse(row)
	}
	return resp, total, nil
}

func (s *service) Correct(ctx context.Context, actor domain.Actor, id string, req CorrectAttendanceRequest) (AttendanceResponse, error) {
	log := contextutil.GetLogger(ctx, s.logger)

	if !actor.IsAdmin {
		return AttendanceResponse{}, apperror.ErrForbidden
	}
	if _, err := uuid.Parse(id); err != nil {
		return AttendanceResponse{}, attendanceerrors.ErrInvalidAttendanceID
	}

	settings, err := s.settings.Settings(ctx, actor.StoreID)
	if err != nil {
		return AttendanceResponse{}, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		log.Error("correct attendance begin tx failed", zap.Error(err))
		return AttendanceResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)
	row, err := qtx.FindByID(ctx, actor.StoreID, id)
	if err != nil {
		if database.IsNotFound(err) {
			return AttendanceResponse{}, attendanceerrors.ErrAttendanceNotFound
		}
		return AttendanceResponse{}, err
	}
	shift, err := qtx.FindShift(ctx, actor.StoreID, row.ShiftID.String())
	if err != nil {
		if database.IsNotFound(err) {
			return AttendanceResponse{}, attendanceerrors.ErrShiftNotFound
		}
		return AttendanceResponse{}, err
	}

	before := map[string]any{"clock_in": row.ClockIn, "clock_out": row.ClockOut}
	if req.ClockIn != nil {
		row.ClockIn = req.ClockIn.UTC()
	}
	if req.ClockOut != nil {
		out := req.ClockOut.UTC()
		row.ClockOut = &out
	}
	if req.Note != nil {
		row.Note = strings.TrimSpace(*req.Note)
	}
	if row.ClockOut != nil && !row.ClockOut.After(row.ClockIn) {
		return AttendanceResponse{}, attendanceerrors.ErrInvalidClockRange
	}

	recompute(row, shift.StartTime, settings.LateGrace())

	if err := qtx.Update(ctx, row); err != nil {
		log.Error("correct attendance persist failed", zap.String("attendance_id", id), zap.Error(err))
		return AttendanceResponse{}, err
	}
	if err := tx.Commit(); err != nil {
		log.Error("correct attendance commit failed", zap.Error(err))
		return AttendanceResponse{}, err
	}

	s.audit.Record(ctx, auditlog.Entry{
		StoreID:    actor.StoreID,
		ActorID:    actor.UserID,
		Action:     auditlog.ActionAttendanceEdited,
		TargetType: "attendance",
		TargetID:   id,
		Meta: map[string]any{
			"before": before,
			"after":  map[string]any{"clock_in": row.ClockIn, "clock_out": row.ClockOut},
		},
	})

	return mapToResponse(*row), nil
}

func (s *service) Summary(ctx context.Context, actor domain.Actor, filter SummaryFilter) (SummaryResponse, error) {
	settings, err := s.settings.Settings(ctx, actor.StoreID)
	if err != nil {
		return SummaryResponse{}, err
	}

	from, to, err := daterange.Month(filter.Month, settings.Location())
	if err != nil {
		return SummaryResponse{}, attendanceerrors.ErrInvalidMonth
	}

	userID := filter.UserID
	if !actor.IsAdmin {
		userID = actor.UserID
	}

	rows, err := s.repo.Summarize(ctx, actor.StoreID, userID, from, to)
	if err != nil {
		s.logger.Error("attendance summary failed", zap.String("store_id", actor.StoreID), zap.Error(err))
		return SummaryResponse{}, err
	}

	items := make([]SummaryItem, len(rows))
	for i, r := range rows {
		items[i] = SummaryItem{
			UserID:         r.UserID.String(),
			UserName:       r.UserName,
			Shifts:         r.Shifts,
			Completed:      r.Completed,
			Late:           r.Late,
			WorkingMinutes: r.WorkingMinutes,
		}
	}
	return SummaryResponse{Month: from.Format("2006-01"), Items: items}, nil
}

func recompute(a *Attendance, shiftStart time.Time, grace time.Duration) {
	punctuality := Punctuality(shiftStart, a.ClockIn, grace)
	a.IsLate = punctuality == StatusLate
	if a.ClockOut == nil {
		a.Status = punctuality
		a.WorkingMinutes = 0
		return
	}
	a.Status = StatusCompleted
	a.WorkingMinutes = WorkingMinutes(a.ClockIn, *a.ClockOut)
}

func mapToResponse(a Attendance) AttendanceResponse {
	resp := AttendanceResponse{
		ID:             a.ID.String(),
		ShiftID:        a.ShiftID.String(),
		UserID:         a.UserID.String(),
		StoreID:        a.StoreID.String(),
		ClockIn:        a.ClockIn.Format(time.RFC3339),
		WorkingMinutes: a.WorkingMinutes,
		Status:         a.Status,
		IsLate:         a.IsLate,
		Note:           a.Note,
	}
	if a.User != nil {
		resp.UserName = a.User.Name
	}
	if a.ClockOut != nil {
		v := a.ClockOut.Format(time.RFC3339)
		resp.ClockOut = &v
	}
	return resp
}
