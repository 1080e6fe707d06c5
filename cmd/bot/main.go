package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	catalogapp "github.com/shopbot/backend/internal/application/catalog"
	"github.com/shopbot/backend/internal/application/maintenance"
	orderingapp "github.com/shopbot/backend/internal/application/ordering"
	snapshotapp "github.com/shopbot/backend/internal/application/snapshot"
	"github.com/shopbot/backend/internal/infrastructure/config"
	"github.com/shopbot/backend/internal/infrastructure/logger"
	"github.com/shopbot/backend/internal/infrastructure/migration"
	"github.com/shopbot/backend/internal/infrastructure/persistence"
	"github.com/shopbot/backend/internal/infrastructure/session"
	snapshotpub "github.com/shopbot/backend/internal/infrastructure/snapshot"
	"github.com/shopbot/backend/internal/infrastructure/storage"
	"github.com/shopbot/backend/internal/infrastructure/telegram"
	"github.com/shopbot/backend/internal/infrastructure/telemetry"
	"github.com/shopbot/backend/internal/interfaces/bot"
	"github.com/shopbot/backend/internal/interfaces/http/handler"
	"github.com/shopbot/backend/internal/interfaces/http/middleware"
	"github.com/shopbot/backend/internal/interfaces/http/router"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

const defaultMigrationsPath = "migrations"

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting shop bot",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Initialize tracing
	tp, err := telemetry.NewTracerProvider(context.Background(), telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize tracing", zap.Error(err))
	}
	defer func() {
		if err := tp.Shutdown(context.Background()); err != nil {
			log.Error("Error shutting down tracer provider", zap.Error(err))
		}
	}()

	// Apply pending schema migrations before opening the pool
	if cfg.Database.AutoMigrate {
		if err := runMigrations(&cfg.Database, log); err != nil {
			log.Fatal("Failed to run migrations", zap.Error(err))
		}
	}

	// Initialize database connection with zap-backed GORM logging
	gormLogLevel := logger.MapGormLogLevel(cfg.Log.Level)
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, log, gormLogLevel)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	if err := telemetry.RegisterDBTracing(db.DB, telemetry.DBTracingConfig{
		Enabled: cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled,
		DBName:  cfg.Database.DBName,
	}, log); err != nil {
		log.Fatal("Failed to register database tracing", zap.Error(err))
	}

	// Initialize repositories
	categoryRepo := persistence.NewGormCategoryRepository(db.DB)
	productRepo := persistence.NewGormProductRepository(db.DB)
	orderRepo := persistence.NewGormOrderRepository(db.DB)
	journal := persistence.NewGormDeliveryJournal(db.DB)
	purger := persistence.NewGormPurger(db.DB)

	// Wizard session store (in-memory or redis per config)
	sessionStore, err := session.NewStoreFactory(cfg.Session, cfg.Redis, session.WithLogger(log)).CreateStore()
	if err != nil {
		log.Fatal("Failed to create session store", zap.Error(err))
	}
	defer func() {
		if closer, ok := sessionStore.(interface{ Close() error }); ok {
			if err := closer.Close(); err != nil {
				log.Error("Error closing session store", zap.Error(err))
			}
		}
	}()

	// Messaging transport
	tgClient, err := telegram.NewClient(&cfg.Telegram)
	if err != nil {
		log.Fatal("Failed to create Telegram client", zap.Error(err))
	}

	meCtx, cancelMe := context.WithTimeout(context.Background(), cfg.Telegram.RequestTimeout)
	me, err := tgClient.GetMe(meCtx)
	cancelMe()
	if err != nil {
		log.Fatal("Failed to validate bot token", zap.Error(err))
	}
	log.Info("Bot authenticated",
		zap.String("username", me.Username),
		zap.Int64("bot_id", me.ID),
	)

	// Photo storage: a real bucket, or transport file ids when disabled
	var (
		photoStore catalogapp.PhotoStore
		ingester   catalogapp.PhotoIngester
	)
	if cfg.Storage.Enabled {
		s3Store, err := storage.NewS3PhotoStorage(&cfg.Storage)
		if err != nil {
			log.Fatal("Failed to create photo storage", zap.Error(err))
		}
		bucketCtx, cancelBucket := context.WithTimeout(context.Background(), 30*time.Second)
		err = s3Store.EnsureBucket(bucketCtx)
		cancelBucket()
		if err != nil {
			log.Fatal("Failed to ensure photo bucket", zap.Error(err))
		}
		photoStore = s3Store
		ingester = storage.NewS3PhotoIngester(tgClient, s3Store)
		log.Info("Photo storage enabled", zap.String("bucket", s3Store.GetBucket()))
	} else {
		photoStore = storage.NewDisabledPhotoStore()
		ingester = storage.NewFileIDPhotoIngester()
		log.Info("Photo storage disabled, keeping transport file ids")
	}

	// Storefront snapshot publishing
	publisher, err := snapshotpub.NewFilePublisher(cfg.Snapshot.Dir)
	if err != nil {
		log.Fatal("Failed to create snapshot publisher", zap.Error(err))
	}
	snapshotService := snapshotapp.NewService(categoryRepo, productRepo, photoStore, publisher)

	// Application services
	catalogService := catalogapp.NewService(categoryRepo, productRepo, photoStore, snapshotService)
	renderer := orderingapp.NewNotificationRenderer(cfg.Telegram.Locale)
	notifier := telegram.NewChannelNotifier(tgClient, &cfg.Telegram)
	orderService := orderingapp.NewService(orderRepo, journal, notifier, renderer)
	maintenanceService := maintenance.NewService(categoryRepo, productRepo, orderRepo, journal, purger, snapshotService)

	// Conversational router over the long-polling loop
	botRouter, err := bot.NewRouter(bot.Deps{
		Messenger:     tgClient,
		Poller:        tgClient,
		Authorizer:    bot.NewSingleAdminAuthorizer(cfg.Telegram.AdminID),
		Sessions:      sessionStore,
		Catalog:       catalogService,
		Orders:        orderService,
		Maintenance:   maintenanceService,
		PhotoIngester: ingester,
		PhotoResolver: photoStore,
		WebAppURL:     cfg.Telegram.WebAppURL,
		Locale:        cfg.Telegram.Locale,
	})
	if err != nil {
		log.Fatal("Failed to create bot router", zap.Error(err))
	}

	// HTTP read API
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: cfg.HTTP.CORSAllowOrigins,
		AllowMethods: cfg.HTTP.CORSAllowMethods,
		AllowHeaders: cfg.HTTP.CORSAllowHeaders,
		MaxAge:       12 * time.Hour,
	}))
	engine.Use(middleware.Tracing(middleware.TracingConfig{
		ServiceName: cfg.Telemetry.ServiceName,
		Enabled:     cfg.Telemetry.Enabled,
	}))

	r := router.NewRouter(engine)
	r.Register(handler.NewCatalogHandler(catalogService, photoStore))
	r.RegisterRoot(handler.NewSystemHandler(db))
	r.Setup()

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("HTTP server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start HTTP server", zap.Error(err))
		}
	}()

	// Start polling. The context carries the logger so handlers can log
	// with trace correlation.
	pollCtx, stopPolling := context.WithCancel(logger.WithContext(context.Background(), log))
	pollDone := make(chan struct{})
	go func() {
		defer close(pollDone)
		if err := botRouter.Run(pollCtx); err != nil && !errors.Is(err, context.Canceled) {
			log.Error("Bot update loop terminated", zap.Error(err))
		}
	}()

	// Graceful shutdown: stop polling first so no mutation is in flight
	// when the HTTP server goes down
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down...")

	stopPolling()
	<-pollDone
	log.Info("Bot update loop stopped")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

// runMigrations applies pending schema migrations over a dedicated
// connection, closed before the GORM pool opens
func runMigrations(cfg *config.DatabaseConfig, log *zap.Logger) error {
	path := defaultMigrationsPath
	if _, err := os.Stat(path); err != nil {
		execPath, err := os.Executable()
		if err != nil {
			return fmt.Errorf("migrations directory not found: %w", err)
		}
		path = filepath.Join(filepath.Dir(execPath), defaultMigrationsPath)
		if _, err := os.Stat(path); err != nil {
			return fmt.Errorf("migrations directory not found: %w", err)
		}
	}

	db, err := openMigrationDB(cfg)
	if err != nil {
		return err
	}

	m, err := migration.New(db, cfg.Driver, path, log)
	if err != nil {
		_ = db.Close()
		return err
	}
	defer func() {
		if err := m.Close(); err != nil {
			log.Warn("Error closing migrator", zap.Error(err))
		}
	}()

	return m.Up()
}

// openMigrationDB opens the raw sql.DB connection the migrate driver wraps
func openMigrationDB(cfg *config.DatabaseConfig) (*sql.DB, error) {
	switch cfg.Driver {
	case "sqlite":
		return sql.Open("sqlite3", cfg.DSN())
	case "postgres":
		return sql.Open("postgres", cfg.DSN())
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}
