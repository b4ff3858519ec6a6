package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/iliyamo/classroom-reservation/internal/config"
	"github.com/iliyamo/classroom-reservation/internal/database"
	"github.com/iliyamo/classroom-reservation/internal/handler"
	"github.com/iliyamo/classroom-reservation/internal/middleware"
	"github.com/iliyamo/classroom-reservation/internal/model"
	"github.com/iliyamo/classroom-reservation/internal/queue"
	"github.com/iliyamo/classroom-reservation/internal/repository"
	"github.com/iliyamo/classroom-reservation/internal/router"
	"github.com/iliyamo/classroom-reservation/internal/service"
)

func main() {
	logger := newLogger()
	defer func() { _ = logger.Sync() }()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		logger.Fatal("open database", zap.Error(err))
	}
	defer db.Close()

	rdb := config.NewRedisClient(logger)
	if rdb != nil {
		defer rdb.Close()
	}

	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	buildings := repository.NewBuildingRepo(db)
	classrooms := repository.NewClassroomRepo(db)
	reservations := repository.NewReservationRepo(db)

	if err := ensureAdmin(context.Background(), users, cfg, logger); err != nil {
		logger.Fatal("bootstrap admin", zap.Error(err))
	}

	var events service.EventPublisher
	workerCtx, workerCancel := context.WithCancel(context.Background())
	defer workerCancel()
	if cfg.Events.AMQPURL != "" {
		pub := queue.NewPublisher(cfg.Events.AMQPURL, logger)
		defer pub.Close()
		events = pub
		if cfg.Events.ConsumerEnabled {
			go func() {
				err := queue.StartAuditConsumer(workerCtx, cfg.Events.AMQPURL, cfg.Events.AuditLogPath, logger)
				if err != nil && !errors.Is(err, context.Canceled) {
					logger.Error("audit consumer stopped", zap.Error(err))
				}
			}()
		}
	} else {
		logger.Info("AMQP_URL not set, reservation events disabled")
	}

	reservationSvc := service.NewReservationService(reservations, classrooms, users, events, logger)
	catalogSvc := service.NewCatalogService(buildings, classrooms, reservations, logger)

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(echomw.Recover())
	e.Use(middleware.RequestLogger(logger))
	e.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb, logger))

	router.RegisterRoutes(e, db)
	router.RegisterAuth(e, handler.NewAuthHandler(cfg, users, tokens, logger), cfg.JWTSecret)
	router.RegisterCatalog(e, handler.NewCatalogHandler(catalogSvc, logger), cfg.JWTSecret,
		middleware.NewRedisCache(config.LoadCacheConfig(), rdb, logger))
	router.RegisterReservations(e, handler.NewReservationHandler(reservationSvc, logger), cfg.JWTSecret)
	router.RegisterUsers(e, handler.NewUserHandler(users, cfg.BcryptCost, logger), cfg.JWTSecret)

	addr := ":" + cfg.Port
	go func() {
		logger.Info("listening", zap.String("addr", addr), zap.String("env", cfg.Env))
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	workerCancel()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}
	logger.Info("server stopped")
}

// ensureAdmin creates the configured administrator when no account with
// its email exists.  Self-registration never grants ADMIN, so this is how
// the first administrator comes to be.
func ensureAdmin(ctx context.Context, users *repository.UserRepo, cfg config.Config, logger *zap.Logger) error {
	if cfg.Admin.Email == "" {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	_, err := users.GetByEmail(ctx, cfg.Admin.Email)
	if err == nil {
		return nil
	}
	if !errors.Is(err, repository.ErrUserNotFound) {
		return err
	}
	u := &model.User{ID: uuid.NewString(), Name: cfg.Admin.Name, Email: cfg.Admin.Email, Role: model.RoleAdmin}
	if err := users.Create(ctx, u, cfg.Admin.Password, cfg.BcryptCost); err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return nil
		}
		return err
	}
	logger.Info("bootstrap admin created", zap.String("user_id", u.ID), zap.String("email", u.Email))
	return nil
}

func newLogger() *zap.Logger {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	logger, _ := config.Build()
	return logger
}
