// Command worker runs the reservation audit consumer on its own, for
// deployments that set AUDIT_CONSUMER_ENABLED=false on the API servers.
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/iliyamo/classroom-reservation/internal/queue"
)

func main() {
	_ = godotenv.Load()
	logger := newLogger()
	defer func() { _ = logger.Sync() }()

	url := os.Getenv("AMQP_URL")
	if url == "" {
		logger.Fatal("AMQP_URL is required")
	}
	logPath := os.Getenv("AUDIT_LOG_PATH")
	if logPath == "" {
		logPath = "logs/reservations.log"
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := queue.StartAuditConsumer(ctx, url, logPath, logger); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("audit consumer stopped", zap.Error(err))
		}
	}()
	logger.Info("worker started", zap.String("queue", queue.ReservationQueueName), zap.String("log_path", logPath))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	cancel()
	<-done
	logger.Info("worker stopped")
}

func newLogger() *zap.Logger {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	logger, _ := config.Build()
	return logger
}
