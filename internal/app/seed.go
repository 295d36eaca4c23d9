package app

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/coffeebean-kenobi/shifteditor-sub001/internal/shared/config"
	"github.com/coffeebean-kenobi/shifteditor-sub001/internal/shared/database"
	"github.com/coffeebean-kenobi/shifteditor-sub001/internal/staff"
	"github.com/coffeebean-kenobi/shifteditor-sub001/internal/store"
)

// StoreCreator is the part of the store service the seed needs.
type StoreCreator interface {
	CreateStore(ctx context.Context, actorID string, req store.CreateStoreRequest) (store.CreateStoreResponse, error)
}

// SeedSuperAdmin makes sure the configured operator exists and carries the
// super admin flag. The operator is the admin of its own head-office store.
func SeedSuperAdmin(ctx context.Context, staffRepo staff.Repository, stores StoreCreator, cfg config.SuperAdminConfig) error {
	log := zap.L().Named("app.seed")
	email := strings.ToLower(strings.TrimSpace(cfg.Email))

	u, err := staffRepo.FindByEmail(ctx, email)
	if err != nil && !database.IsNotFound(err) {
		return err
	}

	if u == nil || database.IsNotFound(err) {
		if _, err := stores.CreateStore(ctx, "", store.CreateStoreRequest{
			Name:          cfg.StoreName,
			OpenTime:      "09:00",
			CloseTime:     "22:00",
			AdminName:     cfg.Name,
			AdminEmail:    email,
			AdminPassword: cfg.Password,
		}); err != nil {
			return err
		}
		if u, err = staffRepo.FindByEmail(ctx, email); err != nil {
			return err
		}
		log.Info("super admin store created", zap.String("store_id", u.StoreID.String()))
	}

	if u.IsSuperAdmin {
		return nil
	}
	u.IsSuperAdmin = true
	if err := staffRepo.Update(ctx, u); err != nil {
		return err
	}
	log.Info("super admin flag granted", zap.String("user_id", u.ID.String()))
	return nil
}
