package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/iliyamo/tourism-portal/internal/booking"
	"github.com/iliyamo/tourism-portal/internal/config"
	"github.com/iliyamo/tourism-portal/internal/database"
	"github.com/iliyamo/tourism-portal/internal/enrollment"
	"github.com/iliyamo/tourism-portal/internal/gateway"
	"github.com/iliyamo/tourism-portal/internal/handler"
	"github.com/iliyamo/tourism-portal/internal/logger"
	"github.com/iliyamo/tourism-portal/internal/middleware"
	"github.com/iliyamo/tourism-portal/internal/payment"
	"github.com/iliyamo/tourism-portal/internal/queue"
	"github.com/iliyamo/tourism-portal/internal/repository"
	"github.com/iliyamo/tourism-portal/internal/router"
	queue_publisher "github.com/iliyamo/tourism-portal/internal/service"
	"github.com/iliyamo/tourism-portal/internal/session"
)

func newServeCmd() *cobra.Command {
	var consume bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			// .env is optional; real deployments set the environment directly
			_ = godotenv.Load()
			cfg := config.Load()
			log := logger.New(cfg.LogLevel)
			slog.SetDefault(log)

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg, log, consume)
		},
	}
	cmd.Flags().BoolVar(&consume, "consume-bookings", false, "also run the booking.confirmed consumer writing to BOOKING_LOG_DIR")
	return cmd
}

func serve(ctx context.Context, cfg config.Config, log *slog.Logger, consume bool) error {
	cacheCfg := config.LoadCacheConfig()
	rlCfg := config.LoadRateLimitConfig()

	var rdb *redis.Client
	if cfg.CredentialStore == config.StoreRedis || cacheCfg.Enabled || rlCfg.Enabled {
		c, err := config.NewRedisClient(config.LoadRedisConfig())
		switch {
		case err == nil:
			rdb = c
			defer func() { _ = rdb.Close() }()
		case cfg.CredentialStore == config.StoreRedis:
			return fmt.Errorf("credential store: %w", err)
		default:
			log.Warn("redis unavailable; cache off, rate limiting per instance", "error", err)
		}
	}

	storage, db, err := openStorage(ctx, cfg, rdb)
	if err != nil {
		return err
	}
	if db != nil {
		defer func() { _ = db.Close() }()
	}

	api := gateway.New(cfg.APIBaseURL, cfg.APITimeout, log)
	mgr := session.NewManager(api.Auth, storage, log, session.WithIdleTTL(cfg.SessionIdleTTL))

	var processor payment.Processor = payment.TestCardProcessor{}
	if cfg.PaymentMode == config.PaymentRemote {
		processor = payment.NewRemoteProcessor(cfg.PaymentURL, cfg.APITimeout)
	}
	opts := []booking.Option{booking.WithLogger(log), booking.WithCurrency(cfg.Currency)}
	if cfg.RabbitURL != "" {
		opts = append(opts, booking.WithEvents(queue_publisher.New(cfg.RabbitURL, log)))
	}
	flow := booking.New(api.Experiences, api.Bookings, processor, booking.NewDrafts(cfg.DraftTTL, nil), opts...)
	enrollments := enrollment.NewService(api.Courses, api.Enrollments, log)

	e := router.New(router.Deps{
		Log: log,
		Sessions: middleware.SessionConfig{
			Secret: cfg.SessionSecret,
			Cookie: cfg.SessionCookie,
			TTL:    cfg.StorageTTL,
			Secure: cfg.CookieSecure || cfg.IsProduction(),
		},
		Manager:   mgr,
		GuardWait: cfg.GuardWait,
		RateLimit: rlCfg,
		Cache:     cacheCfg,
		Redis:     rdb,

		Auth:     handler.NewAuthHandler(log),
		Public:   handler.NewPublicHandler(api, enrollments, log),
		Booking:  handler.NewBookingHandler(flow, log),
		Account:  handler.NewAccountHandler(api, enrollments, log),
		Admin:    handler.NewAdminHandler(api, log),
		Provider: handler.NewProviderHandler(api, log),
	})

	jan, err := newJanitor(cfg, log, mgr, flow, db)
	if err != nil {
		return err
	}
	jan.Start()
	defer jan.Stop()

	if consume {
		if cfg.RabbitURL == "" {
			return errors.New("--consume-bookings needs RABBITMQ_URL")
		}
		c := &queue.BookingConsumer{URL: cfg.RabbitURL, LogDir: cfg.BookingLogDir, Log: log}
		go func() {
			if err := c.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Error("booking consumer stopped", "error", err)
			}
		}()
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           e,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		log.Info("listening", "addr", srv.Addr, "env", cfg.Env, "credential_store", cfg.CredentialStore, "payment_mode", cfg.PaymentMode)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	case <-ctx.Done():
		log.Info("shutting down")
		shutCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutCtx); err != nil {
			return err
		}
	}
	mgr.Wait()
	return nil
}

// openStorage picks the durable per-client storage. The returned *sql.DB is
// non-nil only for the mysql store.
func openStorage(ctx context.Context, cfg config.Config, rdb *redis.Client) (session.Storage, *sql.DB, error) {
	switch cfg.CredentialStore {
	case config.StoreRedis:
		return session.NewRedisStorage(rdb, "tp:client", cfg.StorageTTL), nil, nil
	case config.StoreMySQL:
		db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
		if err != nil {
			return nil, nil, fmt.Errorf("mysql: %w", err)
		}
		if err := database.Migrate(ctx, db); err != nil {
			_ = db.Close()
			return nil, nil, err
		}
		return repository.NewClientStorageRepo(db), db, nil
	}
	return session.NewMemoryStorage(), nil, nil
}
