package app

import (
	"context"
	"database/sql"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/coffeebean-kenobi/shifteditor-sub001/internal/attendance"
	"github.com/coffeebean-kenobi/shifteditor-sub001/internal/auditlog"
	"github.com/coffeebean-kenobi/shifteditor-sub001/internal/auth"
	"github.com/coffeebean-kenobi/shifteditor-sub001/internal/messaging/kafka"
	"github.com/coffeebean-kenobi/shifteditor-sub001/internal/middleware"
	"github.com/coffeebean-kenobi/shifteditor-sub001/internal/notification"
	"github.com/coffeebean-kenobi/shifteditor-sub001/internal/rbac"
	"github.com/coffeebean-kenobi/shifteditor-sub001/internal/shared/config"
	"github.com/coffeebean-kenobi/shifteditor-sub001/internal/shared/counter"
	"github.com/coffeebean-kenobi/shifteditor-sub001/internal/shared/mailer"
	"github.com/coffeebean-kenobi/shifteditor-sub001/internal/shared/token"
	"github.com/coffeebean-kenobi/shifteditor-sub001/internal/shift"
	"github.com/coffeebean-kenobi/shifteditor-sub001/internal/shiftrequest"
	"github.com/coffeebean-kenobi/shifteditor-sub001/internal/staff"
	"github.com/coffeebean-kenobi/shifteditor-sub001/internal/store"
)

type modules struct {
	audit        auditlog.Recorder
	staffRepo    staff.Repository
	storeService store.Service
}

func registerModules(
	ctx context.Context,
	router *gin.Engine,
	cfg config.Config,
	db *sql.DB,
	gormDB *gorm.DB,
	rdb *redis.Client,
	logger *zap.Logger,
) (modules, error) {
	// --- Repositories ---
	attendanceRepo := attendance.NewRepository(gormDB)
	auditRepo := auditlog.NewRepository(gormDB)
	counterRepo := counter.NewRepository(gormDB)
	notificationRepo := notification.NewRepository(gormDB)
	outboxRepo := kafka.NewOutboxRepository(db)
	shiftRepo := shift.NewRepository(gormDB)
	shiftRequestRepo := shiftrequest.NewRepository(gormDB)
	staffRepo := staff.NewRepository(gormDB)
	storeRepo := store.NewRepository(gormDB)
	invites := staff.NewInviteStore(rdb)

	// --- RBAC Core ---
	rbacService, err := rbac.NewDefaultService(logger)
	if err != nil {
		return modules{}, err
	}

	// --- Infrastructure ---
	tokens := token.NewManager(cfg.JWTSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)
	mail := mailer.New(cfg.SMTP, logger)
	hub := notification.NewHub(logger)
	go func() {
		if err := hub.Run(ctx, rdb); err != nil {
			logger.Error("notification hub stopped", zap.Error(err))
		}
	}()
	shiftCache := shift.NewListCache(rdb, shift.DefaultListTTL, logger)

	// --- Services ---
	auditService := auditlog.NewService(auditRepo, logger)
	notificationService := notification.NewService(notificationRepo, notification.Channels{
		Publisher: notification.NewRedisPublisher(rdb),
		Mailer:    mail,
		Directory: staffDirectory{repo: staffRepo},
	}, logger)
	authService := auth.NewService(staffRepo, invites, tokens, auditService, logger)
	storeService := store.NewService(db, storeRepo, staffRepo, counterRepo, auditService, logger)
	staffService := staff.NewService(db, staffRepo, counterRepo, invites, staff.Options{
		Mailer:    mail,
		Audit:     auditService,
		Notifier:  notificationService,
		InviteTTL: cfg.InviteTTL,
		BaseURL:   cfg.AppBaseURL,
	}, logger)
	attendanceService := attendance.NewService(db, attendanceRepo, storeService, auditService, logger)
	shiftService := shift.NewService(db, shiftRepo, shift.Deps{
		Settings:   storeService,
		Members:    staffRepo,
		Attendance: attendanceRepo,
		Outbox:     outboxRepo,
		Cache:      shiftCache,
		Audit:      auditService,
	}, logger)
	shiftRequestService := shiftrequest.NewService(db, shiftRequestRepo, shiftrequest.Deps{
		Settings: storeService,
		Members:  staffRepo,
		Shifts:   shiftRepo,
		Outbox:   outboxRepo,
		Cache:    shiftCache,
		Audit:    auditService,
	}, logger)

	// --- Handlers ---
	attendanceHandler := attendance.NewHandler(attendanceService, logger)
	auditHandler := auditlog.NewHandler(auditService, logger)
	authHandler := auth.NewHandler(authService, auth.CookieConfig{
		Secure:     cfg.IsProduction(),
		AccessTTL:  cfg.AccessTokenTTL,
		RefreshTTL: cfg.RefreshTokenTTL,
	}, logger)
	notificationHandler := notification.NewHandler(notificationService, hub, cfg.CORSAllowedOrigins, logger)
	rbacHandler := rbac.NewHandler(rbacService, logger)
	shiftHandler := shift.NewHandler(shiftService, logger)
	shiftRequestHandler := shiftrequest.NewHandler(shiftRequestService, logger)
	staffHandler := staff.NewHandler(staffService, logger)
	storeHandler := store.NewHandler(storeService, logger)

	// --- Routes Registration ---
	api := router.Group("/api/v1")
	auth.RegisterRoutes(api, authHandler, tokens)

	protected := api.Group("")
	protected.Use(
		middleware.AuthMiddleware(tokens),
		middleware.ContextLogger(logger),
		middleware.CSRF(),
	)
	{
		attendance.RegisterRoutes(protected, attendanceHandler, rbacService)
		auditlog.RegisterRoutes(protected, auditHandler, rbacService)
		notification.RegisterRoutes(protected, notificationHandler, rbacService)
		rbac.RegisterRoutes(protected, rbacHandler)
		shift.RegisterRoutes(protected, shiftHandler, rbacService)
		shiftrequest.RegisterRoutes(protected, shiftRequestHandler, rbacService, rdb)
		staff.RegisterRoutes(protected, staffHandler, rbacService)
		store.RegisterRoutes(protected, storeHandler, rbacService)
	}

	return modules{audit: auditService, staffRepo: staffRepo, storeService: storeService}, nil
}

// staffDirectory resolves notification recipients from the staff table.
type staffDirectory struct {
	repo staff.Repository
}

func (d staffDirectory) EmailOf(ctx context.Context, storeID, userID string) (string, error) {
	u, err := d.repo.FindByID(ctx, storeID, userID)
	if err != nil {
		return "", err
	}
	return u.Email, nil
}
