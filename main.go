package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"darlingdetails/pkg/catalog"
	"darlingdetails/pkg/config"
	"darlingdetails/pkg/events"
	"darlingdetails/pkg/janitor"
	"darlingdetails/pkg/media"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	log := newLogger(cfg)

	// `./server migrate` applies migrations and seeds, then exits.
	if len(os.Args) > 1 && os.Args[1] == "migrate" {
		cfg.AutoMigrate = true
		if _, err := initDB(cfg, log); err != nil {
			log.Fatal().Err(err).Msg("migration failed")
		}
		fmt.Println("migration and seeding completed")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}

func run(ctx context.Context, cfg config.Config, log zerolog.Logger) error {
	db, err := initDB(cfg, log)
	if err != nil {
		return err
	}
	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}
	r, closeRouter, err := newRouter(ctx, cfg, db, log)
	if err != nil {
		return err
	}
	defer closeRouter()

	jan := janitor.New(cfg.Upload.BaseDir, cfg.Upload.JanitorGrace, log.With().Str("component", "janitor").Logger())
	go func() {
		if err := jan.Run(ctx); err != nil {
			log.Error().Err(err).Msg("upload janitor stopped")
		}
	}()

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", cfg.HTTPAddr).Str("storage", cfg.Storage.Driver).Str("format", cfg.Upload.TargetFormat).Msg("server listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}
	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// newRouter wires storage, the derivative pipeline and the catalog behind the
// HTTP routes. The returned func closes the event publisher.
func newRouter(ctx context.Context, cfg config.Config, db *gorm.DB, log zerolog.Logger) (*gin.Engine, func(), error) {
	if err := os.MkdirAll(cfg.Upload.BaseDir, 0o755); err != nil {
		return nil, nil, fmt.Errorf("create upload base dir %s: %w", cfg.Upload.BaseDir, err)
	}
	files, err := newStore(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	enc, err := media.EncoderFor(cfg.Upload.TargetFormat)
	if err != nil {
		return nil, nil, err
	}
	resolver := media.NewResolver("/uploads", enc.Extension())
	generator := media.NewGenerator(files, enc, log.With().Str("component", "media").Logger(),
		media.WithQualities(cfg.Upload.DisplayQuality, cfg.Upload.ThumbnailQuality))

	publisher := newPublisher(cfg, log)
	lifecycle := catalog.NewLifecycle(
		catalog.NewRepository(db),
		media.NewValidator(cfg.Upload.MaxBytes),
		generator,
		files,
		resolver,
		publisher,
		log.With().Str("component", "catalog").Logger(),
	)

	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(log))
	r.MaxMultipartMemory = 32 << 20
	setupRoutes(r, &server{
		db:        db,
		products:  lifecycle,
		files:     files,
		jwtSecret: []byte(cfg.JWTSecret),
		jwtTTL:    cfg.JWTExpiration,
		spoolDir:  cfg.Upload.BaseDir,
		maxUpload: cfg.Upload.MaxBytes,
		log:       log,
		now:       time.Now,
	})
	closeFn := func() {
		if err := publisher.Close(); err != nil {
			log.Warn().Err(err).Msg("failed to close event publisher")
		}
	}
	return r, closeFn, nil
}

func newLogger(cfg config.Config) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	var log zerolog.Logger
	if cfg.IsDevelopment() {
		log = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	} else {
		log = zerolog.New(os.Stderr)
	}
	return log.Level(level).With().Timestamp().Logger()
}

func newStore(ctx context.Context, cfg config.Config) (media.Store, error) {
	return media.OpenStore(ctx, cfg.Storage.Driver, cfg.Upload.BaseDir, cfg.MinIO())
}

func newPublisher(cfg config.Config, log zerolog.Logger) events.Publisher {
	if len(cfg.Kafka.Brokers) == 0 {
		return events.Noop{}
	}
	log.Info().Strs("brokers", cfg.Kafka.Brokers).Str("topic", cfg.Kafka.Topic).Msg("publishing product events")
	return events.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic)
}
