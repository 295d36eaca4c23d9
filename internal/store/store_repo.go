package store

import (
	"context"
	"database/sql"

	"gorm.io/gorm"

	"github.com/coffeebean-kenobi/shifteditor-sub001/internal/shared/database"
)

//go:generate mockgen -source=store_repo.go -destination=mock/store_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, s *Store) error
	FindByID(ctx context.Context, id string) (*Store, error)
	List(ctx context.Context, offset, limit int) ([]Store, int64, error)
	Update(ctx context.Context, s *Store) error
	CreateSettings(ctx context.Context, settings *StoreSettings) error
	FindSettings(ctx context.Context, storeID string) (*StoreSettings, error)
	SaveSettings(ctx context.Context, settings *StoreSettings) error
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

func (r *repository) Create(ctx context.Context, s *Store) error {
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *repository) FindByID(ctx context.Context, id string) (*Store, error) {
	var s Store
	if err := r.db.WithContext(ctx).First(&s, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *repository) List(ctx context.Context, offset, limit int) ([]Store, int64, error) {
	var (
		stores []Store
		total  int64
	)

	q := r.db.WithContext(ctx).Model(&Store{})
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := q.Order("created_at ASC").Offset(offset).Limit(limit).Find(&stores).Error
	if err != nil {
		return nil, 0, err
	}
	return stores, total, nil
}

func (r *repository) Update(ctx context.Context, s *Store) error {
	return r.db.WithContext(ctx).Save(s).Error
}

func (r *repository) CreateSettings(ctx context.Context, settings *StoreSettings) error {
	return r.db.WithContext(ctx).Create(settings).Error
}

func (r *repository) FindSettings(ctx context.Context, storeID string) (*StoreSettings, error) {
	var s StoreSettings
	if err := r.db.WithContext(ctx).First(&s, "store_id = ?", storeID).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

// SaveSettings upserts on store_id, so stores created before settings existed still work.
func (r *repository) SaveSettings(ctx context.Context, settings *StoreSettings) error {
	return r.db.WithContext(ctx).Save(settings).Error
}
