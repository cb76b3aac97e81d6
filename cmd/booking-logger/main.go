// Command booking-logger consumes booking.confirmed events and appends one
// line per booking to a log file.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/iliyamo/moviego/internal/config"
	"github.com/iliyamo/moviego/internal/logger"
	"github.com/iliyamo/moviego/internal/queue"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.LoadWorker()
	if err != nil {
		return err
	}
	log, err := logger.New(cfg.IsProd(), cfg.LogLevel)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	c := queue.NewConsumer(cfg.RabbitURL, cfg.BookingLogPath, log.Named("consumer"))
	log.Info("consuming", zap.String("queue", queue.BookingQueue), zap.String("file", cfg.BookingLogPath))
	if err := c.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	log.Info("stopped")
	return nil
}
