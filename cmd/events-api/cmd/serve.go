package cmd

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/eventhub/events-api/internal/api"
	"github.com/eventhub/events-api/internal/core/ports"
	"github.com/eventhub/events-api/internal/core/service"
	"github.com/eventhub/events-api/internal/infrastructure/config"
	mongodb "github.com/eventhub/events-api/internal/infrastructure/db/mongo"
	"github.com/eventhub/events-api/internal/infrastructure/db/redis"
	"github.com/eventhub/events-api/internal/infrastructure/http/handlers"
	"github.com/eventhub/events-api/internal/infrastructure/queue"
	"github.com/eventhub/events-api/internal/infrastructure/storage/s3"
	"github.com/eventhub/events-api/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

type serveOptions struct {
	port    string
	noRedis bool
}

func newServeCommand() *cobra.Command {
	var opts serveOptions
	serve := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		Long: `Start the HTTP server and begin accepting API requests.

Configuration comes from environment variables. Redis and S3 are optional:
without Redis events are read straight from MongoDB, without S3_BUCKET
image uploads are rejected.

Examples:
  events-api serve
  events-api serve --port 9090 --log-level debug`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), opts)
		},
	}
	serve.Flags().StringVar(&opts.port, "port", "", "listen port (default: PORT or 8080)")
	serve.Flags().BoolVar(&opts.noRedis, "no-redis", false, "skip the Redis event cache")
	return serve
}

func runServer(ctx context.Context, opts serveOptions) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, log, err := loadConfig(ctx)
	if err != nil {
		return err
	}
	if opts.port != "" {
		cfg.Port = opts.port
	}
	log.Info().Str("env", cfg.Env).Msg("starting events api")

	client, db, err := connectMongo(ctx, cfg.Mongo)
	if err != nil {
		return err
	}
	defer func() {
		if err := client.Disconnect(context.Background()); err != nil {
			log.Error().Err(err).Msg("mongo disconnect")
		}
	}()
	log.Info().Str("database", cfg.Mongo.Database).Bool("transactions", cfg.Mongo.Transactions).Msg("mongo connected")

	users := mongodb.NewUserRepository(db)
	events := mongodb.NewEventRepository(db)
	attendees := mongodb.NewAttendeeRepository(db)
	tx := mongodb.NewTransactor(client, cfg.Mongo.Transactions)

	checks := map[string]handlers.Check{"mongo": handlers.MongoCheck(db)}

	var cache service.EventCache
	if !opts.noRedis {
		rdb, err := redis.Connect(ctx, redis.Config{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		if err != nil {
			log.Warn().Err(err).Msg("redis unavailable, event cache disabled")
		} else {
			defer rdb.Close()
			cache = redis.NewEventCache(rdb, cfg.Redis.CacheTTL)
			checks["redis"] = handlers.RedisCheck(rdb)
			log.Info().Str("addr", cfg.Redis.Addr).Msg("redis connected")
		}
	}

	store, err := openBlobStore(ctx, cfg.S3, log)
	if err != nil {
		return err
	}

	cleaner := queue.NewDispatcher(cfg.Uploads.CleanupWorkers, store, logger.Component("image-cleanup"))
	cleaner.Start(ctx)
	defer cleaner.Stop()

	images := service.NewImageService(store, cleaner, cfg.Uploads.MaxBytes, log)
	authSvc := service.NewAuthService(users, cfg.JWTSecret, cfg.JWTTTL)
	eventSvc := service.NewEventService(events, users, attendees, tx, cache, images, log)
	attendanceSvc := service.NewAttendanceService(attendees, events, users, tx, cache, cfg.OperationTimeout, log)
	userSvc := service.NewUserService(users, events, attendees, log)

	router := api.NewRouter(api.Dependencies{
		Log:                log,
		JWTSecret:          cfg.JWTSecret,
		Users:              users,
		Auth:               authSvc,
		Events:             eventSvc,
		Attendance:         attendanceSvc,
		UserSvc:            userSvc,
		Images:             images,
		Readiness:          handlers.NewReadinessHandler(checks),
		LoginRatePerMinute: cfg.LoginRatePerMinute,
		MaxUploadBytes:     cfg.Uploads.MaxBytes,
	})

	server := &http.Server{
		Addr:              net.JoinHostPort("", cfg.Port),
		Handler:           router,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		MaxHeaderBytes:    1 << 20,
		BaseContext:       func(net.Listener) context.Context { return context.WithoutCancel(ctx) },
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", server.Addr).Msg("listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("shutdown error")
		return err
	}
	log.Info().Msg("server stopped")
	return nil
}

// openBlobStore returns nil when no bucket is configured. The nil is
// returned as the interface so services can compare against it.
func openBlobStore(ctx context.Context, cfg config.S3Config, log zerolog.Logger) (ports.BlobStore, error) {
	if cfg.Bucket == "" {
		log.Warn().Msg("S3_BUCKET not set, image uploads disabled")
		return nil, nil
	}
	store, err := s3.New(ctx, s3.Config{
		Bucket:    cfg.Bucket,
		Region:    cfg.Region,
		Endpoint:  cfg.Endpoint,
		AccessKey: cfg.AccessKey,
		SecretKey: cfg.SecretKey,
		PublicURL: cfg.PublicURL,
	})
	if err != nil {
		return nil, err
	}
	log.Info().Str("bucket", cfg.Bucket).Msg("s3 store ready")
	return store, nil
}
