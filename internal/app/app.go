package app

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/workhivehq/workhive/internal/api"
	"github.com/workhivehq/workhive/internal/app/maintenance"
	"github.com/workhivehq/workhive/internal/auth"
	"github.com/workhivehq/workhive/internal/cache"
	"github.com/workhivehq/workhive/internal/database"
	"github.com/workhivehq/workhive/internal/services"
	"github.com/workhivehq/workhive/pkg/logger"
	"github.com/workhivehq/workhive/pkg/mail"
)

// App wires configuration, storage, services and the HTTP server together.
type App struct {
	cfg     *Config
	server  *http.Server
	cleaner *maintenance.Cleaner
	log     *zap.Logger
}

// New builds the application from configuration: database, cache, mailer,
// services, maintenance and the router.
func New(cfg *Config) (*App, error) {
	gin.SetMode(ginMode(cfg.Server.Mode))

	db, err := database.Open(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("app: open database: %w", err)
	}
	if err := database.AutoMigrateAndSeed(db); err != nil {
		return nil, fmt.Errorf("app: migrate database: %w", err)
	}

	log := logger.WithModule("app")

	var store cache.Store
	if cfg.Redis.Enabled {
		redisStore, err := cache.NewRedisStore(cache.RedisConfig{
			Address:  cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			return nil, fmt.Errorf("app: connect redis: %w", err)
		}
		store = redisStore
		log.Info("cache backend ready", zap.String("backend", "redis"))
	} else {
		store = cache.NewDatabaseStore(db)
		log.Info("cache backend ready", zap.String("backend", "database"))
	}

	var mailer mail.Mailer
	if cfg.SMTP.Enabled {
		mailer, err = mail.NewSMTPMailer(cfg.SMTP)
		if err != nil {
			return nil, fmt.Errorf("app: configure smtp: %w", err)
		}
	}

	jwtService, err := auth.NewJWTService(auth.JWTConfig{
		Secret:         cfg.Auth.JWTSecret,
		Issuer:         cfg.Auth.Issuer,
		AccessTokenTTL: cfg.Auth.AccessTokenTTL,
	})
	if err != nil {
		return nil, fmt.Errorf("app: configure jwt: %w", err)
	}

	auditService, err := services.NewAuditService(db)
	if err != nil {
		return nil, err
	}
	notificationService, err := services.NewNotificationService(db)
	if err != nil {
		return nil, err
	}
	notifier := services.NewNotifier(notificationService, mailer)

	userService, err := services.NewUserService(db, auditService)
	if err != nil {
		return nil, err
	}
	membershipService, err := services.NewMembershipService(db, auditService, notifier)
	if err != nil {
		return nil, err
	}
	invitationService, err := services.NewInvitationService(db, membershipService, notifier, auditService)
	if err != nil {
		return nil, err
	}
	roleService, err := services.NewRoleService(db, auditService, notifier)
	if err != nil {
		return nil, err
	}
	projectService, err := services.NewProjectService(db, auditService)
	if err != nil {
		return nil, err
	}
	taskService, err := services.NewTaskService(db, projectService, auditService)
	if err != nil {
		return nil, err
	}
	meetingService, err := services.NewMeetingService(db, projectService)
	if err != nil {
		return nil, err
	}

	cleaner, err := maintenance.NewCleaner(membershipService, auditService, notificationService, maintenance.Options{
		Schedule:                  cfg.Maintenance.Schedule,
		AuditRetentionDays:        cfg.Maintenance.AuditRetentionDays,
		NotificationRetentionDays: cfg.Maintenance.NotificationRetentionDays,
	})
	if err != nil {
		return nil, err
	}

	router := api.NewRouter(api.Services{
		DB:            db,
		Cache:         store,
		JWT:           jwtService,
		Users:         userService,
		Invitations:   invitationService,
		Memberships:   membershipService,
		Roles:         roleService,
		Projects:      projectService,
		Tasks:         taskService,
		Meetings:      meetingService,
		Notifications: notificationService,
		Audit:         auditService,
	})

	return &App{
		cfg: cfg,
		server: &http.Server{
			Addr:    cfg.Server.Address(),
			Handler: router,
		},
		cleaner: cleaner,
		log:     log,
	}, nil
}

// Run starts the maintenance schedule and HTTP server, then blocks until the
// context is canceled or the server fails, shutting down gracefully.
func (a *App) Run(ctx context.Context) error {
	if err := a.cleaner.Start(); err != nil {
		return err
	}
	defer a.cleaner.Stop()

	errCh := make(chan error, 1)
	go func() {
		a.log.Info("server listening", zap.String("address", a.server.Addr))
		errCh <- a.server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	a.log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancel()
	return a.server.Shutdown(shutdownCtx)
}

func ginMode(mode string) string {
	switch mode {
	case gin.DebugMode, gin.TestMode:
		return mode
	default:
		return gin.ReleaseMode
	}
}
