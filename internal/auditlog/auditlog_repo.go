package auditlog

import (
	"context"

	"gorm.io/gorm"

	"github.com/coffeebean-kenobi/shifteditor-sub001/internal/tenant"
)

//go:generate mockgen -source=auditlog_repo.go -destination=mock/auditlog_repo_mock.go -package=mock
type Repository interface {
	Create(ctx context.Context, log *AuditLog) error
	List(ctx context.Context, storeID string, filter ListFilter, offset, limit int) ([]AuditLog, int64, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, log *AuditLog) error {
	return r.db.WithContext(ctx).Create(log).Error
}

func (r *repository) List(ctx context.Context, storeID string, filter ListFilter, offset, limit int) ([]AuditLog, int64, error) {
	q := r.db.WithContext(ctx).Model(&AuditLog{}).Scopes(tenant.Scope(storeID))
	if filter.Action != "" {
		q = q.Where("action = ?", filter.Action)
	}
	if filter.ActorID != "" {
		q = q.Where("actor_id = ?", filter.ActorID)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var logs []AuditLog
	err := q.Order("created_at DESC").Offset(offset).Limit(limit).Find(&logs).Error
	return logs, total, err
}
