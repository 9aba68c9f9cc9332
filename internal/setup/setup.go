package setup

import (
	"context"

	"github.com/redis/rueidis"
	"github.com/stylhelpr/styliq/internal/database"
	"github.com/stylhelpr/styliq/internal/recommend"
	styliqRedis "github.com/stylhelpr/styliq/internal/redis"
	"github.com/stylhelpr/styliq/internal/setup/config"
	"github.com/stylhelpr/styliq/internal/setup/telemetry"
	"go.uber.org/zap"
)

// App bundles all core dependencies needed by the application.
// Each field represents a subsystem that needs initialization and cleanup.
type App struct {
	Config       *config.Config       // Application configuration
	Logger       *zap.Logger          // Main application logger
	DBLogger     *zap.Logger          // Database-specific logger
	DB           database.Client      // Database connection pool
	RedisManager *styliqRedis.Manager // Redis connection manager
	StatusClient rueidis.Client       // Redis client for worker status reporting
	Engine       *recommend.Engine    // Recommendation engine
	LogManager   *telemetry.Manager   // Log management system
}

// InitializeApp bootstraps all application dependencies in the correct order,
// ensuring each component has its required dependencies available.
func InitializeApp(ctx context.Context, serviceType telemetry.ServiceType, logDir string, workerID string) (*App, error) {
	// Load app configuration
	cfg, _, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}

	// Logging system is initialized next to capture setup issues
	logManager := telemetry.NewManager(serviceType, logDir, &cfg.Common.Debug, workerID)

	logger, dbLogger, err := logManager.GetLoggers()
	if err != nil {
		return nil, err
	}

	// Redis manager provides connection pools for various subsystems
	redisManager := styliqRedis.NewManager(&cfg.Common.Redis, logger)

	// Initialize database with automatic migrations
	db, err := database.NewConnection(ctx, &cfg.Common.PostgreSQL, dbLogger, true)
	if err != nil {
		return nil, err
	}

	// Get Redis client for the trending hashtag cache
	cacheClient, err := redisManager.GetClient(styliqRedis.CacheDBIndex)
	if err != nil {
		return nil, err
	}

	// Get Redis client for worker status reporting
	statusClient, err := redisManager.GetClient(styliqRedis.WorkerStatusDBIndex)
	if err != nil {
		return nil, err
	}

	// Build the recommendation engine on top of the database models
	engine, err := recommend.NewEngine(recommend.Dependencies{
		Signals:    db.Model().Signal(),
		Social:     db.Model().Social(),
		Posts:      db.Model().Post(),
		Engagement: db.Model().Engagement(),
		Cache:      cacheClient,
	}, &cfg.Common.Recommendation, logger)
	if err != nil {
		return nil, err
	}

	return &App{
		Config:       cfg,
		Logger:       logger,
		DBLogger:     dbLogger,
		DB:           db,
		RedisManager: redisManager,
		StatusClient: statusClient,
		Engine:       engine,
		LogManager:   logManager,
	}, nil
}

// Cleanup releases all resources during shutdown.
func (a *App) Cleanup() {
	// Stop the engine's background refresher first so in-flight
	// recomputations can finish against a live database connection.
	a.Engine.Close()

	if err := a.DB.Close(); err != nil {
		a.Logger.Error("Failed to close database connection", zap.Error(err))
	}

	a.RedisManager.Close()

	// Sync loggers last
	_ = a.Logger.Sync()
	_ = a.DBLogger.Sync()
}
