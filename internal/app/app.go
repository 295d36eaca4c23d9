package app

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/coffeebean-kenobi/shifteditor-sub001/internal/auditlog"
	"github.com/coffeebean-kenobi/shifteditor-sub001/internal/middleware"
	"github.com/coffeebean-kenobi/shifteditor-sub001/internal/shared/config"
	"github.com/coffeebean-kenobi/shifteditor-sub001/internal/shared/connection"
	"github.com/coffeebean-kenobi/shifteditor-sub001/internal/shared/response"
)

// App holds the long-lived resources of the API process.
type App struct {
	GormDB *gorm.DB
	DB     *sql.DB
	Redis  *redis.Client
	Audit  auditlog.Recorder

	cancel context.CancelFunc
	logger *zap.Logger
}

func BuildApp(router *gin.Engine, cfg config.Config) (*App, error) {
	logger := zap.L().Named("app")

	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	gormDB, err := connection.ConnectGORMWithRetry(cfg.DB, 5)
	if err != nil {
		return nil, err
	}
	sqlDB, err := gormDB.DB()
	if err != nil {
		return nil, err
	}

	if err := Migrate(gormDB); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}

	rdb, err := connection.ConnectRedisWithRetry(cfg.RedisAddr, 5)
	if err != nil {
		_ = sqlDB.Close()
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	a := &App{GormDB: gormDB, DB: sqlDB, Redis: rdb, cancel: cancel, logger: logger}

	router.Use(
		middleware.RequestID(),
		middleware.RequestLogger(logger),
		middleware.CORS(cfg.CORSAllowedOrigins),
	)
	router.GET("/healthz", healthHandler(
		func(ctx context.Context) error { return sqlDB.PingContext(ctx) },
		func(ctx context.Context) error { return rdb.Ping(ctx).Err() },
	))

	m, err := registerModules(ctx, router, cfg, sqlDB, gormDB, rdb, logger)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.Audit = m.audit

	if cfg.SuperAdmin.Enabled() {
		if err := SeedSuperAdmin(ctx, m.staffRepo, m.storeService, cfg.SuperAdmin); err != nil {
			a.Close()
			return nil, fmt.Errorf("seed super admin: %w", err)
		}
	}

	return a, nil
}

// Close stops background work and releases connections.
func (a *App) Close() {
	if a.cancel != nil {
		a.cancel()
	}
	if a.Redis != nil {
		_ = a.Redis.Close()
	}
	if a.DB != nil {
		_ = a.DB.Close()
	}
}

type pingFunc func(ctx context.Context) error

func healthHandler(checks ...pingFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		for _, check := range checks {
			if err := check(ctx); err != nil {
				zap.L().Named("app.health").Warn("health check failed", zap.Error(err))
				response.Error(c, http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "dependency unavailable", nil)
				return
			}
		}
		response.Success(c, http.StatusOK, gin.H{"status": "ok"}, nil)
	}
}
