package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/adrg/xdg"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"golang.org/x/sync/errgroup"

	"suma/internal/cache"
	"suma/internal/config"
	sumalog "suma/internal/log"
	"suma/internal/repository"
	"suma/internal/service"
	"suma/internal/transport/rest"
	"suma/internal/transport/ws"
)

// @title SUMA API
// @version 1.0
// @description AI assignment comments and landing-site analytics
// @host localhost:8080
// @BasePath /v1
func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Failed to load config:", err)
		os.Exit(1)
	}

	logger := sumalog.New(os.Stdout, sumalog.Options{Format: cfg.LogFormat, Level: cfg.LogLevel})
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Redis connection (optional)
	var rdb *redis.Client
	if cfg.RedisAddr != "" {
		rdb = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		defer rdb.Close()

		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		err := rdb.Ping(pingCtx).Err()
		cancel()
		if err != nil {
			return fmt.Errorf("failed to ping Redis: %w", err)
		}
		logger.Info("connected to Redis", "addr", cfg.RedisAddr)
	}

	// MongoDB connection (optional)
	var db *mongo.Database
	if cfg.MongoURI != "" {
		mongoClient, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
		if err != nil {
			return fmt.Errorf("failed to connect to MongoDB: %w", err)
		}
		defer mongoClient.Disconnect(context.Background())

		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		err = mongoClient.Ping(pingCtx, nil)
		cancel()
		if err != nil {
			return fmt.Errorf("failed to ping MongoDB: %w", err)
		}
		db = mongoClient.Database(cfg.MongoDB)
		logger.Info("connected to MongoDB", "database", cfg.MongoDB)
	}

	store, closeStore, err := openStore(cfg, rdb, db)
	if err != nil {
		return err
	}
	defer closeStore()
	logger.Info("client storage ready", "driver", cfg.StoreDriver)

	// Comment cache
	commentCache := cache.NewMemoryCommentCache()
	if rdb != nil {
		commentCache = cache.NewRedisCommentCache(rdb)
	}

	// Batch archive and event counters
	batchRepo := repository.NewMemoryBatchRepo()
	if db != nil {
		batchRepo = repository.NewBatchRepo(db)
	}
	eventCounter := cache.NewMemoryEventCounter()
	if rdb != nil {
		eventCounter = cache.NewRedisEventCounter(rdb)
	}

	// Initialize services
	analysisClient := service.NewAnalysisClient(cfg.Analysis, logger)
	commentSvc := service.NewCommentService(commentCache, analysisClient, service.NewCommentFormatter(cfg.Analysis.Locale), logger)

	collectorClient := &http.Client{Timeout: cfg.Analytics.Timeout}
	beacon := service.NewQueuedBeacon(collectorClient, cfg.Analytics.BeaconQueue, logger)
	buffer := service.NewEventBuffer(repository.NewEventStore(store), cfg.Analytics.MaxBufferSize, logger)
	flusher := service.NewFlusher(cfg.Analytics.Endpoint, buffer, beacon, collectorClient, logger)
	tracker := service.NewTracker(buffer, flusher, service.NewVisitorIDs(store, logger), logger)

	fileSvc, err := service.NewFileService(cfg.FilesDir)
	if err != nil {
		return fmt.Errorf("invalid FILES_DIR: %w", err)
	}

	if !cfg.Analysis.IsEnabled() {
		logger.Warn("ANALYSIS_BASE_URL not set, every comment resolves to the failure label")
	}
	if !cfg.Analytics.Enabled() {
		logger.Warn("ANALYTICS_ENDPOINT not set, events stay buffered")
	}

	// Initialize WebSocket hub
	wsHub := ws.NewHub(logger)

	router := rest.NewRouter(&rest.Container{
		AuthService:      service.NewAuthService(cfg.Auth),
		CommentService:   commentSvc,
		Tracker:          tracker,
		Flusher:          flusher,
		CollectorService: service.NewCollectorService(batchRepo, eventCounter, logger),
		FileService:      fileSvc,
		WSHub:            wsHub,
		Logger:           logger,
		BufferCapacity:   buffer.Cap(),
		RefreshTTL:       cfg.Auth.RefreshTokenTTL,
		SecureCookies:    cfg.CORSOrigins != "*",
		CORSOrigins:      cfg.CORSOrigins,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("server starting", "port", cfg.Port, "username", cfg.Auth.Username)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		wsHub.Stop()
		err := srv.Shutdown(shutdownCtx)

		// shutdown counts as unload: last delivery attempt for buffered events
		if tracker.Unload(shutdownCtx) {
			logger.Info("buffered events delivered on shutdown")
		}
		beacon.Stop(shutdownCtx)
		return err
	})

	if err := g.Wait(); err != nil {
		return err
	}
	logger.Info("server exited")
	return nil
}

// openStore selects the client storage backend named by STORE_DRIVER
func openStore(cfg *config.Config, rdb *redis.Client, db *mongo.Database) (repository.Store, func(), error) {
	noop := func() {}

	switch cfg.StoreDriver {
	case "", "memory":
		return repository.NewMemoryStore(), noop, nil

	case "sqlite":
		path := cfg.SQLitePath
		if path == "" {
			var err error
			path, err = xdg.DataFile("suma/server.db")
			if err != nil {
				return nil, nil, fmt.Errorf("failed to resolve sqlite path: %w", err)
			}
		}
		s, err := repository.OpenSQLiteStore(path)
		if err != nil {
			return nil, nil, err
		}
		return s, func() { s.Close() }, nil

	case "redis":
		if rdb == nil {
			return nil, nil, errors.New("STORE_DRIVER=redis requires REDIS_URI")
		}
		return cache.NewRedisStore(rdb), noop, nil

	case "mongo":
		if db == nil {
			return nil, nil, errors.New("STORE_DRIVER=mongo requires MONGO_URI")
		}
		return repository.NewMongoStore(db), noop, nil
	}
	return nil, nil, fmt.Errorf("unknown STORE_DRIVER %q", cfg.StoreDriver)
}
