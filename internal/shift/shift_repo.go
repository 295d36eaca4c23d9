package shift

import (
	"context"
	"database/sql"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/coffeebean-kenobi/shifteditor-sub001/internal/shared/database"
	"github.com/coffeebean-kenobi/shifteditor-sub001/internal/tenant"
)

//go:generate mockgen -source=shift_repo.go -destination=mock/shift_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, s *Shift) error
	FindByID(ctx context.Context, storeID, id string) (*Shift, error)
	FindForUpdate(ctx context.Context, storeID, id string) (*Shift, error)
	List(ctx context.Context, storeID string, q Query, offset, limit int) ([]Shift, int64, error)
	Update(ctx context.Context, s *Shift) error
	Delete(ctx context.Context, storeID, id string) error
	LockUserSchedule(ctx context.Context, userID string) error
	HasOverlap(ctx context.Context, userID string, start, end time.Time, excludeID string) (bool, error)
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

func (r *repository) Create(ctx context.Context, s *Shift) error {
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *repository) FindByID(ctx context.Context, storeID, id string) (*Shift, error) {
	var s Shift
	err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(storeID)).
		First(&s, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *repository) FindForUpdate(ctx context.Context, storeID, id string) (*Shift, error) {
	var s Shift
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Scopes(tenant.Scope(storeID)).
		First(&s, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *repository) List(ctx context.Context, storeID string, q Query, offset, limit int) ([]Shift, int64, error) {
	base := r.db.WithContext(ctx).Model(&Shift{}).Scopes(tenant.Scope(storeID))
	if q.UserID != "" {
		base = base.Where("user_id = ?", q.UserID)
	}
	if q.Status != "" {
		base = base.Where("status = ?", q.Status)
	}
	if q.From != nil {
		base = base.Where("end_time > ?", *q.From)
	}
	if q.To != nil {
		base = base.Where("start_time < ?", *q.To)
	}

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []Shift
	err := base.Order("start_time ASC").Offset(offset).Limit(limit).Find(&rows).Error
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

func (r *repository) Update(ctx context.Context, s *Shift) error {
	return r.db.WithContext(ctx).Save(s).Error
}

func (r *repository) Delete(ctx context.Context, storeID, id string) error {
	res := r.db.WithContext(ctx).
		Where("store_id = ? AND id = ?", storeID, id).
		Delete(&Shift{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// LockUserSchedule serializes schedule writes for one user until the
// surrounding transaction ends. Outside a transaction it is a no-op lock.
func (r *repository) LockUserSchedule(ctx context.Context, userID string) error {
	return r.db.WithContext(ctx).Exec("SELECT pg_advisory_xact_lock(hashtext(?))", userID).Error
}

// HasOverlap reports a non-cancelled shift of userID intersecting [start, end).
func (r *repository) HasOverlap(ctx context.Context, userID string, start, end time.Time, excludeID string) (bool, error) {
	q := r.db.WithContext(ctx).Model(&Shift{}).
		Where("user_id = ? AND status <> ?", userID, StatusCancelled).
		Where("start_time < ? AND end_time > ?", end, start)
	if excludeID != "" {
		q = q.Where("id <> ?", excludeID)
	}

	var n int64
	if err := q.Limit(1).Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}
