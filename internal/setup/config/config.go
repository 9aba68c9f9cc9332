package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/knadh/koanf/parsers/toml/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

var (
	ErrConfigFileNotFound    = errors.New("could not find config file in any config path")
	ErrConfigVersionMismatch = errors.New("config file version mismatch")
	ErrInvalidResultWindow   = errors.New("min_results must not exceed max_results")
	ErrInvalidPoolLimit      = errors.New("pool_limit must be positive")
)

// Current version of the config file.
const (
	CurrentCommonVersion = 1
	CurrentWorkerVersion = 1
)

// Config represents the entire application configuration.
type Config struct {
	Common CommonConfig
	Worker WorkerConfig
}

// CommonConfig contains configuration shared between the request path and workers.
type CommonConfig struct {
	// Version of the common config.
	Version        int            `koanf:"version"`
	Debug          Debug          `koanf:"debug"`
	PostgreSQL     PostgreSQL     `koanf:"postgresql"`
	Redis          Redis          `koanf:"redis"`
	Recommendation Recommendation `koanf:"recommendation"`
}

// WorkerConfig contains worker specific configuration.
type WorkerConfig struct {
	// Version of the worker config.
	Version int `koanf:"version"`
	// Request timeout in milliseconds.
	RequestTimeout int `koanf:"request_timeout"`
	// How many stale signal rows to refresh per sweep.
	SweepBatchSize int `koanf:"sweep_batch_size"`
	// Pause between sweeps in seconds.
	SweepInterval int `koanf:"sweep_interval"`
}

// Debug contains debug-related configuration.
type Debug struct {
	// Log level (debug, info, warn, error).
	LogLevel string `koanf:"log_level"`
	// Maximum log files to keep.
	MaxLogsToKeep int `koanf:"max_logs_to_keep"`
	// Maximum lines per log file.
	MaxLogLines int `koanf:"max_log_lines"`
}

// PostgreSQL contains database connection configuration.
type PostgreSQL struct {
	// Database hostname.
	Host string `koanf:"host"`
	// Database port.
	Port int `koanf:"port"`
	// Database username.
	User string `koanf:"user"`
	// Database password.
	Password string `koanf:"password"`
	// Database name.
	DBName string `koanf:"db_name"`
	// Maximum open connections.
	MaxOpenConns int `koanf:"max_open_conns"`
	// Maximum idle connections.
	MaxIdleConns int `koanf:"max_idle_conns"`
	// Connection lifetime in minutes.
	MaxLifetime int `koanf:"max_lifetime"`
	// Idle timeout in minutes.
	MaxIdleTime int `koanf:"max_idle_time"`
}

// Redis contains Redis connection configuration.
type Redis struct {
	// Redis hostname.
	Host string `koanf:"host"`
	// Redis port.
	Port int `koanf:"port"`
	// Redis username.
	Username string `koanf:"username"`
	// Redis password.
	Password string `koanf:"password"`
}

// Recommendation contains the tunable parameters of the recommendation
// pipeline. The scoring weights are deliberately absent: the formula is a
// locked, auditable contract and lives in code.
type Recommendation struct {
	// Maximum posts fetched per candidate pool.
	PoolLimit int `koanf:"pool_limit"`
	// Result window. MinResults is a product target, not an enforced lower
	// bound; sparse pools may return fewer.
	MinResults int `koanf:"min_results"`
	MaxResults int `koanf:"max_results"`
	// Minutes before cached preferences trigger a background refresh.
	StalenessMinutes int `koanf:"staleness_minutes"`
	// Rolling windows in days.
	VisitWindowDays      int `koanf:"visit_window_days"`
	EngagementWindowDays int `koanf:"engagement_window_days"`
	TrendingWindowDays   int `koanf:"trending_window_days"`
	// List limits.
	FrequentVisitedLimit int `koanf:"frequent_visited_limit"`
	PreferredTermLimit   int `koanf:"preferred_term_limit"`
	TrendingTagLimit     int `koanf:"trending_tag_limit"`
	// Background refresh runner bounds.
	RefreshQueueSize int `koanf:"refresh_queue_size"`
	RefreshWorkers   int `koanf:"refresh_workers"`
	// Seconds to cache the global trending hashtags in Redis.
	TrendingCacheSeconds int `koanf:"trending_cache_seconds"`
}

// DefaultRecommendation returns the production defaults for the
// recommendation pipeline.
func DefaultRecommendation() Recommendation {
	return Recommendation{
		PoolLimit:            50,
		MinResults:           5,
		MaxResults:           10,
		StalenessMinutes:     60,
		VisitWindowDays:      30,
		EngagementWindowDays: 90,
		TrendingWindowDays:   30,
		FrequentVisitedLimit: 20,
		PreferredTermLimit:   30,
		TrendingTagLimit:     20,
		RefreshQueueSize:     256,
		RefreshWorkers:       4,
		TrendingCacheSeconds: 300,
	}
}

// Validate checks the recommendation parameters for consistency.
func (r *Recommendation) Validate() error {
	if r.PoolLimit <= 0 {
		return ErrInvalidPoolLimit
	}

	if r.MinResults > r.MaxResults {
		return ErrInvalidResultWindow
	}

	return nil
}

// StalenessThreshold returns the staleness window as a duration.
func (r *Recommendation) StalenessThreshold() time.Duration {
	return time.Duration(r.StalenessMinutes) * time.Minute
}

// VisitWindow returns the visit aggregation window as a duration.
func (r *Recommendation) VisitWindow() time.Duration {
	return time.Duration(r.VisitWindowDays) * 24 * time.Hour
}

// EngagementWindow returns the engagement aggregation window as a duration.
func (r *Recommendation) EngagementWindow() time.Duration {
	return time.Duration(r.EngagementWindowDays) * 24 * time.Hour
}

// TrendingWindow returns the global trending window as a duration.
func (r *Recommendation) TrendingWindow() time.Duration {
	return time.Duration(r.TrendingWindowDays) * 24 * time.Hour
}

// TrendingCacheTTL returns the trending cache TTL as a duration.
func (r *Recommendation) TrendingCacheTTL() time.Duration {
	return time.Duration(r.TrendingCacheSeconds) * time.Second
}

// LoadConfig loads the configuration from the specified file.
// Returns the config along with the used config directory.
func LoadConfig() (*Config, string, error) {
	k := koanf.New(".")

	// Get user's home directory
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, "", fmt.Errorf("failed to get home directory: %w", err)
	}

	// List search paths
	configPaths := []string{
		".styliq",
		homeDir + "/.styliq/config",
		"/etc/styliq/config",
		"/app/config",
		"config",
		".",
	}

	// Load all config files
	var usedConfigPath string

	configFiles := []string{"common", "worker"}
	for _, configName := range configFiles {
		configLoaded := false

		for _, path := range configPaths {
			configPath := fmt.Sprintf("%s/%s.toml", path, configName)
			if err := k.Load(file.Provider(configPath), toml.Parser()); err == nil {
				configLoaded = true

				if usedConfigPath == "" {
					usedConfigPath = path
				}

				break
			}
		}

		if !configLoaded {
			return nil, "", fmt.Errorf("%w: %s.toml", ErrConfigFileNotFound, configName)
		}
	}

	var config Config
	if err := k.Unmarshal("", &config); err != nil {
		return nil, "", fmt.Errorf("error unmarshaling config: %w", err)
	}

	// Check versions for each config file
	if err := checkConfigVersion("common", config.Common.Version, CurrentCommonVersion); err != nil {
		return nil, "", err
	}

	if err := checkConfigVersion("worker", config.Worker.Version, CurrentWorkerVersion); err != nil {
		return nil, "", err
	}

	if err := config.Common.Recommendation.Validate(); err != nil {
		return nil, "", fmt.Errorf("invalid recommendation config: %w", err)
	}

	return &config, usedConfigPath, nil
}

// checkConfigVersion checks if the config file version is correct.
func checkConfigVersion(name string, current, expected int) error {
	if current != expected {
		return fmt.Errorf("%w: %s.toml has version %d, expected %d",
			ErrConfigVersionMismatch, name, current, expected)
	}

	return nil
}
