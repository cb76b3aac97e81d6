package main // Entry point package

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/iliyamo/moviego/internal/bootstrap"
	"github.com/iliyamo/moviego/internal/config"
	"github.com/iliyamo/moviego/internal/database"
	"github.com/iliyamo/moviego/internal/handler"
	"github.com/iliyamo/moviego/internal/inventory"
	"github.com/iliyamo/moviego/internal/logger"
	"github.com/iliyamo/moviego/internal/middleware"
	"github.com/iliyamo/moviego/internal/queue"
	"github.com/iliyamo/moviego/internal/repository"
	"github.com/iliyamo/moviego/internal/router"
	"github.com/iliyamo/moviego/internal/service"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log, err := logger.New(cfg.IsProd(), cfg.LogLevel)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	store, err := database.Open(database.Options{
		Driver: database.Dialect(cfg.DB.Driver),
		Path:   cfg.DB.Path,
		User:   cfg.DB.User,
		Pass:   cfg.DB.Pass,
		Host:   cfg.DB.Host,
		Port:   cfg.DB.Port,
		Name:   cfg.DB.Name,
	})
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer store.Close()

	initCtx, cancel := context.WithTimeout(context.Background(), time.Minute)
	opts := bootstrap.Defaults()
	opts.Days = cfg.SeedDays
	rep, err := bootstrap.Run(initCtx, store, opts)
	cancel()
	if err != nil {
		// booking without a schema or catalog is meaningless
		return err
	}
	if rep.Seeded {
		log.Info("catalog seeded",
			zap.Int("movies", rep.Movies),
			zap.Int("showtimes", rep.Showtimes),
			zap.Int("seats", rep.Seats))
	}

	rdb := config.NewRedisClient(cfg.Redis)
	if rdb != nil {
		defer rdb.Close()
	}

	engineOpts := []inventory.Option{
		inventory.WithLogger(log.Named("inventory")),
		inventory.WithMaxSeats(cfg.MaxSeatsPerBooking),
	}
	if cfg.RabbitURL != "" {
		pub := queue.NewPublisher(cfg.RabbitURL, log.Named("queue"))
		defer pub.Close()
		engineOpts = append(engineOpts, inventory.WithNotifier(pub))
	}
	engine := inventory.NewEngine(store, engineOpts...)

	users := repository.NewUserRepo(store)
	tokens := repository.NewTokenRepo(store)
	bookings := repository.NewBookingRepo(store)
	catalog := service.NewCatalogService(
		repository.NewMovieRepo(store),
		repository.NewShowtimeRepo(store),
		repository.NewSeatRepo(store),
		bookings,
	)
	auth := service.NewAuthService(service.AuthConfig{
		JWTSecret:      cfg.JWTSecret,
		AccessTTLMin:   cfg.AccessTTLMin,
		RefreshTTLDays: cfg.RefreshTTLDays,
		BcryptCost:     cfg.BcryptCost,
	}, users, tokens, bookings, log.Named("auth"))

	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.Use(middleware.RequestID(), middleware.RequestLogger(log.Named("http")), echomw.Recover())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins:  []string{"*"},
		AllowHeaders:  []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAuthorization},
		ExposeHeaders: []string{"X-RateLimit-Limit", "X-RateLimit-Remaining", "Retry-After", echo.HeaderXRequestID},
	}))

	router.Register(e, router.Deps{
		Cfg:      cfg,
		Log:      log,
		Redis:    rdb,
		Health:   handler.Health{Store: store},
		Auth:     handler.NewAuthHandler(auth),
		Catalog:  handler.NewCatalogHandler(catalog),
		Bookings: handler.NewBookingHandler(catalog, engine),
	})

	addr := ":" + cfg.Port
	errCh := make(chan error, 1)
	go func() {
		log.Info("listening",
			zap.String("addr", addr),
			zap.String("env", cfg.Env),
			zap.String("db", cfg.DB.Driver),
			zap.Bool("redis", rdb != nil),
			zap.Bool("events", cfg.RabbitURL != ""))
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	select {
	case <-ctx.Done():
	case err, ok := <-errCh:
		if ok {
			return err
		}
	}

	log.Info("shutting down")
	shutCtx, cancelShut := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShut()
	return e.Shutdown(shutCtx)
}
