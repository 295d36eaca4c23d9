package shiftrequest

import (
	"context"
	"database/sql"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/coffeebean-kenobi/shifteditor-sub001/internal/shared/database"
	"github.com/coffeebean-kenobi/shifteditor-sub001/internal/tenant"
)

// Query is ListFilter after scoping.
type Query struct {
	UserID string
	Status string
}

//go:generate mockgen -source=shift_request_repo.go -destination=mock/shift_request_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, r *ShiftRequest) error
	FindByID(ctx context.Context, storeID, id string) (*ShiftRequest, error)
	FindForUpdate(ctx context.Context, storeID, id string) (*ShiftRequest, error)
	List(ctx context.Context, storeID string, q Query, offset, limit int) ([]ShiftRequest, int64, error)
	Update(ctx context.Context, r *ShiftRequest) error
	Delete(ctx context.Context, storeID, id string) error
	LockUserRequests(ctx context.Context, userID string) error
	HasPendingOverlap(ctx context.Context, userID string, start, end time.Time) (bool, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *sql.Tx) Repository {
	return &repository{db: database.BindTx(r.db, tx)}
}

func (r *repository) Create(ctx context.Context, req *ShiftRequest) error {
	return r.db.WithContext(ctx).Omit("User").Create(req).Error
}

func (r *repository) FindByID(ctx context.Context, storeID, id string) (*ShiftRequest, error) {
	var req ShiftRequest
	err := r.db.WithContext(ctx).
		Preload("User").
		Scopes(tenant.Scope(storeID)).
		First(&req, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *repository) FindForUpdate(ctx context.Context, storeID, id string) (*ShiftRequest, error) {
	var req ShiftRequest
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Scopes(tenant.Scope(storeID)).
		First(&req, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *repository) List(ctx context.Context, storeID string, q Query, offset, limit int) ([]ShiftRequest, int64, error) {
	base := r.db.WithContext(ctx).Model(&ShiftRequest{}).Scopes(tenant.Scope(storeID))
	if q.UserID != "" {
		base = base.Where("user_id = ?", q.UserID)
	}
	if q.Status != "" {
		base = base.Where("status = ?", q.Status)
	}

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []ShiftRequest
	err := base.Preload("User").
		Order("start_time ASC").
		Offset(offset).
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

func (r *repository) Update(ctx context.Context, req *ShiftRequest) error {
	return r.db.WithContext(ctx).Omit("User").Save(req).Error
}

func (r *repository) Delete(ctx context.Context, storeID, id string) error {
	res := r.db.WithContext(ctx).
		Where("store_id = ? AND id = ?", storeID, id).
		Delete(&ShiftRequest{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// LockUserRequests serializes request submission for one user within the
// surrounding transaction.
func (r *repository) LockUserRequests(ctx context.Context, userID string) error {
	return r.db.WithContext(ctx).Exec("SELECT pg_advisory_xact_lock(hashtext(?))", "shift_request:"+userID).Error
}

func (r *repository) HasPendingOverlap(ctx context.Context, userID string, start, end time.Time) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&ShiftRequest{}).
		Where("user_id = ? AND status = ?", userID, StatusPending).
		Where("start_time < ? AND end_time > ?", end, start).
		Limit(1).
		Count(&n).Error
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
