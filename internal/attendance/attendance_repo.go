package attendance

import (
	"context"
	"database/sql"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/coffeebean-kenobi/shifteditor-sub001/internal/shared/database"
	"github.com/coffeebean-kenobi/shifteditor-sub001/internal/tenant"
)

//go:generate mockgen -source=attendance_repo.go -destination=mock/attendance_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, a *Attendance) error
	FindByID(ctx context.Context, storeID, id string) (*Attendance, error)
	FindByShiftID(ctx context.Context, shiftID string, forUpdate bool) (*Attendance, error)
	FindByShiftIDs(ctx context.Context, shiftIDs []string) ([]Attendance, error)
	List(ctx context.Context, storeID string, q Query, offset, limit int) ([]Attendance, int64, error)
	Update(ctx context.Context, a *Attendance) error
	FindShift(ctx context.Context, storeID, shiftID string) (*ShiftRef, error)
	Summarize(ctx context.Context, storeID, userID string, from, to time.Time) ([]SummaryRow, error)
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

func (r *repository) Create(ctx context.Context, a *Attendance) error {
	return r.db.WithContext(ctx).Omit("User").Create(a).Error
}

func (r *repository) FindByID(ctx context.Context, storeID, id string) (*Attendance, error) {
	var a Attendance
	err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(storeID)).
		First(&a, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *repository) FindByShiftID(ctx context.Context, shiftID string, forUpdate bool) (*Attendance, error) {
	q := r.db.WithContext(ctx)
	if forUpdate {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var a Attendance
	if err := q.First(&a, "shift_id = ?", shiftID).Error; err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *repository) FindByShiftIDs(ctx context.Context, shiftIDs []string) ([]Attendance, error) {
	if len(shiftIDs) == 0 {
		return nil, nil
	}

	var rows []Attendance
	err := r.db.WithContext(ctx).Where("shift_id IN ?", shiftIDs).Find(&rows).Error
	return rows, err
}

func (r *repository) List(ctx context.Context, storeID string, q Query, offset, limit int) ([]Attendance, int64, error) {
	base := r.db.WithContext(ctx).Model(&Attendance{}).Scopes(tenant.Scope(storeID))
	if q.UserID != "" {
		base = base.Where("user_id = ?", q.UserID)
	}
	if q.From != nil {
		base = base.Where("clock_in >= ?", *q.From)
	}
	if q.To != nil {
		base = base.Where("clock_in < ?", *q.To)
	}

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []Attendance
	err := base.Preload("User").
		Order("clock_in DESC").
		Offset(offset).Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

func (r *repository) Update(ctx context.Context, a *Attendance) error {
	return r.db.WithContext(ctx).Omit("User").Save(a).Error
}

// FindShift reads the shift FOR SHARE so a concurrent cancel or delete, which
// locks the row FOR UPDATE, waits for the clock-in to commit.
func (r *repository) FindShift(ctx context.Context, storeID, shiftID string) (*ShiftRef, error) {
	var s ShiftRef
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "SHARE"}).
		Table("shifts").
		Select("id, user_id, store_id, start_time, end_time, status").
		Where("store_id = ? AND id = ?", storeID, shiftID).
		Take(&s).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// Summarize aggregates non-cancelled shifts starting in [from, to) with their attendance.
func (r *repository) Summarize(ctx context.Context, storeID, userID string, from, to time.Time) ([]SummaryRow, error) {
	q := r.db.WithContext(ctx).
		Table("shifts AS s").
		Select(`s.user_id AS user_id,
			u.name AS user_name,
			COUNT(s.id) AS shifts,
			COUNT(a.clock_out) AS completed,
			COALESCE(SUM(CASE WHEN a.is_late THEN 1 ELSE 0 END), 0) AS late,
			COALESCE(SUM(a.working_minutes), 0) AS working_minutes`).
		Joins("JOIN users u ON u.id = s.user_id").
		Joins("LEFT JOIN attendances a ON a.shift_id = s.id").
		Where("s.store_id = ? AND s.status <> ?", storeID, shiftCancelled).
		Where("s.start_time >= ? AND s.start_time < ?", from, to)
	if userID != "" {
		q = q.Where("s.user_id = ?", userID)
	}

	var rows []SummaryRow
	err := q.Group("s.user_id, u.name").Order("u.name ASC").Scan(&rows).Error
	return rows, err
}
