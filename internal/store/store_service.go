package store

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/coffeebean-kenobi/shifteditor-sub001/internal/auditlog"
	"github.com/coffeebean-kenobi/shifteditor-sub001/internal/domain"
	"github.com/coffeebean-kenobi/shifteditor-sub001/internal/shared/contextutil"
	"github.com/coffeebean-kenobi/shifteditor-sub001/internal/shared/counter"
	"github.com/coffeebean-kenobi/shifteditor-sub001/internal/shared/database"
	"github.com/coffeebean-kenobi/shifteditor-sub001/internal/staff"
	stafferrors "github.com/coffeebean-kenobi/shifteditor-sub001/internal/staff/errors"
	storeerrors "github.com/coffeebean-kenobi/shifteditor-sub001/internal/store/errors"
)

//go:generate mockgen -source=store_service.go -destination=mock/store_service_mock.go -package=mock
type Service interface {
	GetSettings(ctx context.Context, storeID string) (SettingsResponse, error)
	// Settings returns the raw rules of a store, defaults when no row exists.
	Settings(ctx context.Context, storeID string) (StoreSettings, error)
	UpdateSettings(ctx context.Context, storeID, actorID string, req UpdateSettingsRequest) (SettingsResponse, error)
	CreateStore(ctx context.Context, actorID string, req CreateStoreRequest) (CreateStoreResponse, error)
	ListStores(ctx context.Context, page, pageSize int) ([]StoreResponse, int64, error)
}

type service struct {
	db        *sql.DB
	repo      Repository
	staffRepo staff.Repository
	counter   counter.Repository
	audit     auditlog.Recorder
	logger    *zap.Logger
}

func NewService(db *sql.DB, repo Repository, staffRepo staff.Repository, counter counter.Repository, audit auditlog.Recorder, logger ...*zap.Logger) Service {
	l := zap.L().Named("store.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("store.service")
	}
	if audit == nil {
		audit = auditlog.NopRecorder{}
	}
	return &service{
		db:        db,
		repo:      repo,
		staffRepo: staffRepo,
		counter:   counter,
		audit:     audit,
		logger:    l,
	}
}

func (s *service) GetSettings(ctx context.Context, storeID string) (SettingsResponse, error) {
	if _, err := uuid.Parse(storeID); err != nil {
		return SettingsResponse{}, storeerrors.ErrInvalidStoreID
	}

	st, err := s.repo.FindByID(ctx, storeID)
	if err != nil {
		return SettingsResponse{}, mapRepositoryError(err)
	}

	settings, err := s.loadSettings(ctx, s.repo, st.ID)
	if err != nil {
		return SettingsResponse{}, err
	}
	return SettingsResponse{Store: MapToResponse(*st), Settings: mapSettings(settings)}, nil
}

func (s *service) Settings(ctx context.Context, storeID string) (StoreSettings, error) {
	id, err := uuid.Parse(storeID)
	if err != nil {
		return StoreSettings{}, storeerrors.ErrInvalidStoreID
	}
	return s.loadSettings(ctx, s.repo, id)
}

func (s *service) UpdateSettings(ctx context.Context, storeID, actorID string, req UpdateSettingsRequest) (SettingsResponse, error) {
	log := contextutil.GetLogger(ctx, s.logger)

	if _, err := uuid.Parse(storeID); err != nil {
		return SettingsResponse{}, storeerrors.ErrInvalidStoreID
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		log.Error("update settings begin tx failed", zap.Error(err))
		return SettingsResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)
	st, err := qtx.FindByID(ctx, storeID)
	if err != nil {
		return SettingsResponse{}, mapRepositoryError(err)
	}
	settings, err := s.loadSettings(ctx, qtx, st.ID)
	if err != nil {
		return SettingsResponse{}, err
	}

	changes := applySettingsUpdate(st, &settings, req)
	if err := validateStore(st.OpenTime, st.CloseTime, settings); err != nil {
		return SettingsResponse{}, err
	}

	if err := qtx.Update(ctx, st); err != nil {
		log.Error("update store persist failed", zap.String("store_id", storeID), zap.Error(err))
		return SettingsResponse{}, err
	}
	if err := qtx.SaveSettings(ctx, &settings); err != nil {
		log.Error("update settings persist failed", zap.String("store_id", storeID), zap.Error(err))
		return SettingsResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		log.Error("update settings commit failed", zap.Error(err))
		return SettingsResponse{}, err
	}

	s.audit.Record(ctx, auditlog.Entry{
		StoreID:    storeID,
		ActorID:    actorID,
		Action:     auditlog.ActionSettingsUpdated,
		TargetType: "store",
		TargetID:   storeID,
		Meta:       changes,
	})

	return SettingsResponse{Store: MapToResponse(*st), Settings: mapSettings(settings)}, nil
}

func (s *service) CreateStore(ctx context.Context, actorID string, req CreateStoreRequest) (CreateStoreResponse, error) {
	log := contextutil.GetLogger(ctx, s.logger)

	settings := DefaultSettings(uuid.New())
	if tz := strings.TrimSpace(req.Timezone); tz != "" {
		settings.Timezone = tz
	}
	if err := validateStore(req.OpenTime, req.CloseTime, settings); err != nil {
		return CreateStoreResponse{}, err
	}

	email := strings.ToLower(strings.TrimSpace(req.AdminEmail))
	if existing, err := s.staffRepo.FindByEmail(ctx, email); err == nil && existing != nil {
		return CreateStoreResponse{}, stafferrors.ErrEmailAlreadyExists
	} else if err != nil && !database.IsNotFound(err) {
		log.Error("create store lookup email failed", zap.Error(err))
		return CreateStoreResponse{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.AdminPassword), bcrypt.DefaultCost)
	if err != nil {
		return CreateStoreResponse{}, err
	}

	st := &Store{
		ID:        settings.StoreID,
		Name:      strings.TrimSpace(req.Name),
		Address:   strings.TrimSpace(req.Address),
		OpenTime:  req.OpenTime,
		CloseTime: req.CloseTime,
	}

	next, err := s.counter.GetNextValue(ctx, st.ID.String(), counter.TypeStaffNumber)
	if err != nil {
		log.Error("create store generate staff number failed", zap.Error(err))
		return CreateStoreResponse{}, err
	}

	admin := &staff.User{
		ID:           uuid.New(),
		StoreID:      st.ID,
		Name:         strings.TrimSpace(req.AdminName),
		Email:        email,
		PasswordHash: string(hash),
		Role:         domain.RoleAdmin,
		IsActive:     true,
		StaffNumber:  counter.FormatStaffNumber(next),
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		log.Error("create store begin tx failed", zap.Error(err))
		return CreateStoreResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)
	if err := qtx.Create(ctx, st); err != nil {
		log.Error("create store persist failed", zap.Error(err))
		return CreateStoreResponse{}, err
	}
	if err := qtx.CreateSettings(ctx, &settings); err != nil {
		log.Error("create store settings failed", zap.Error(err))
		return CreateStoreResponse{}, err
	}
	if err := s.staffRepo.WithTx(tx).Create(ctx, admin); err != nil {
		if database.IsUniqueViolation(err, "uq_users_email") {
			return CreateStoreResponse{}, stafferrors.ErrEmailAlreadyExists
		}
		log.Error("create store admin failed", zap.Error(err))
		return CreateStoreResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		log.Error("create store commit failed", zap.Error(err))
		return CreateStoreResponse{}, err
	}

	s.audit.Record(ctx, auditlog.Entry{
		StoreID:    st.ID.String(),
		ActorID:    actorID,
		Action:     auditlog.ActionStoreCreated,
		TargetType: "store",
		TargetID:   st.ID.String(),
		Meta:       map[string]any{"name": st.Name, "admin_email": email},
	})

	log.Info("store created", zap.String("store_id", st.ID.String()), zap.String("admin_id", admin.ID.String()))
	return CreateStoreResponse{
		Store:    MapToResponse(*st),
		Settings: mapSettings(settings),
		Admin:    staff.MapToResponse(*admin),
	}, nil
}

func (s *service) ListStores(ctx context.Context, page, pageSize int) ([]StoreResponse, int64, error) {
	stores, total, err := s.repo.List(ctx, (page-1)*pageSize, pageSize)
	if err != nil {
		s.logger.Error("list stores failed", zap.Error(err))
		return nil, 0, err
	}

	resp := make([]StoreResponse, len(stores))
	for i, st := range stores {
		resp[i] = MapToResponse(st)
	}
	return resp, total, nil
}

func (s *service) loadSettings(ctx context.Context, repo Repository, storeID uuid.UUID) (StoreSettings, error) {
	settings, err := repo.FindSettings(ctx, storeID.String())
	if err != nil {
		if database.IsNotFound(err) {
			return DefaultSettings(storeID), nil
		}
		s.logger.Error("load settings failed", zap.String("store_id", storeID.String()), zap.Error(err))
		return StoreSettings{}, err
	}
	return *settings, nil
}

func applySettingsUpdate(st *Store, settings *StoreSettings, req UpdateSettingsRequest) map[string]any {
	changes := map[string]any{}
	setString := func(key string, dst *string, v *string) {
		if v != nil && strings.TrimSpace(*v) != *dst {
			*dst = strings.TrimSpace(*v)
			changes[key] = *dst
		}
	}
	setInt := func(key string, dst *int, v *int) {
		if v != nil && *v != *dst {
			*dst = *v
			changes[key] = *v
		}
	}

	setString("name", &st.Name, req.Name)
	setString("address", &st.Address, req.Address)
	setString("open_time", &st.OpenTime, req.OpenTime)
	setString("close_time", &st.CloseTime, req.CloseTime)
	setString("timezone", &settings.Timezone, req.Timezone)
	setInt("late_grace_minutes", &settings.LateGraceMinutes, req.LateGraceMinutes)
	setInt("min_shift_minutes", &settings.MinShiftMinutes, req.MinShiftMinutes)
	setInt("max_shift_minutes", &settings.MaxShiftMinutes, req.MaxShiftMinutes)
	setInt("request_lead_days", &settings.RequestLeadDays, req.RequestLeadDays)
	if req.AllowStaffSelfClock != nil && *req.AllowStaffSelfClock != settings.AllowStaffSelfClock {
		settings.AllowStaffSelfClock = *req.AllowStaffSelfClock
		changes["allow_staff_self_clock"] = settings.AllowStaffSelfClock
	}
	return changes
}

func validateStore(openTime, closeTime string, settings StoreSettings) error {
	open, ok := ParseClock(openTime)
	if !ok {
		return storeerrors.ErrInvalidBusinessHours
	}
	closing, ok := ParseClock(closeTime)
	if !ok || open >= closing {
		return storeerrors.ErrInvalidBusinessHours
	}
	if settings.Timezone == "" {
		return storeerrors.ErrInvalidTimezone
	}
	if _, err := time.LoadLocation(settings.Timezone); err != nil {
		return storeerrors.ErrInvalidTimezone
	}
	if settings.MinShiftMinutes < 1 || settings.MaxShiftMinutes > 24*60 || settings.MinShiftMinutes > settings.MaxShiftMinutes {
		return storeerrors.ErrInvalidShiftBounds
	}
	return nil
}

// ParseClock reads "HH:MM" and returns minutes since midnight.
func ParseClock(v string) (int, bool) {
	if len(v) != 5 {
		return 0, false
	}
	t, err := time.Parse("15:04", v)
	if err != nil {
		return 0, false
	}
	return t.Hour()*60 + t.Minute(), true
}

func mapRepositoryError(err error) error {
	if database.IsNotFound(err) {
		return storeerrors.ErrStoreNotFound
	}
	return err
}

func MapToResponse(s Store) StoreResponse {
	return StoreResponse{
		ID:        s.ID.String(),
		Name:      s.Name,
		Address:   s.Address,
		OpenTime:  s.OpenTime,
		CloseTime: s.CloseTime,
		CreatedAt: s.CreatedAt.Format(time.RFC3339),
	}
}

func mapSettings(s StoreSettings) SettingsBody {
	return SettingsBody{
		Timezone:            s.Timezone,
		LateGraceMinutes:    s.LateGraceMinutes,
		MinShiftMinutes:     s.MinShiftMinutes,
		MaxShiftMinutes:     s.MaxShiftMinutes,
		RequestLeadDays:     s.RequestLeadDays,
		AllowStaffSelfClock: s.AllowStaffSelfClock,
	}
}
