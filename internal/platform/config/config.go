package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config is the service configuration assembled from the environment.
type Config struct {
	Server        ServerConfig        `json:"server"`
	Database      DatabaseConfig      `json:"database"`
	JWT           JWTConfig           `json:"jwt"`
	Redis         RedisConfig         `json:"redis"`
	Votes         VotesConfig         `json:"votes"`
	Ranking       RankingConfig       `json:"ranking"`
	Reconcile     ReconcileConfig     `json:"reconcile"`
	Notifications NotificationsConfig `json:"notifications"`
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Host      string `json:"host"`
	Port      int    `json:"port"`
	WebDomain string `json:"webDomain"`
	BodyLimit int    `json:"bodyLimit"`
	LogLevel  string `json:"logLevel"`
	Debug     bool   `json:"debug"`
}

// Address returns host:port for fiber's Listen.
func (s ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// DatabaseConfig holds database-related configuration
type DatabaseConfig struct {
	Type                  string        `json:"type"`
	Mongo                 MongoDBConfig `json:"mongo"`
	ForceNonTransactional bool          `json:"forceNonTransactional"`
}

// MongoDBConfig holds MongoDB-specific configuration
type MongoDBConfig struct {
	URI                    string        `json:"uri"`
	Host                   string        `json:"host"`
	Port                   int           `json:"port"`
	Username               string        `json:"username"`
	Password               string        `json:"password"`
	Database               string        `json:"database"`
	AuthDatabase           string        `json:"authDatabase"`
	ReplicaSet             string        `json:"replicaSet"`
	SSL                    bool          `json:"ssl"`
	MaxPoolSize            int           `json:"maxPoolSize"`
	MinPoolSize            int           `json:"minPoolSize"`
	ConnectTimeout         time.Duration `json:"connectTimeout"`
	ServerSelectionTimeout time.Duration `json:"serverSelectionTimeout"`
}

// JWTConfig holds JWT-related configuration
type JWTConfig struct {
	PublicKey string `json:"publicKey"`
	ClaimKey  string `json:"claimKey"`
}

// RedisConfig holds Redis-specific configuration
type RedisConfig struct {
	Enabled             bool   `json:"enabled"`
	Address             string `json:"address"`
	Password            string `json:"password"`
	Database            int    `json:"database"`
	PoolSize            int    `json:"poolSize"`
	NotificationChannel string `json:"notificationChannel"`
}

// VotesConfig holds per-user limits on the vote endpoint.
type VotesConfig struct {
	RateLimitEnabled bool          `json:"rateLimitEnabled"`
	RateLimitMax     int           `json:"rateLimitMax"`
	RateLimitWindow  time.Duration `json:"rateLimitWindow"`
}

// RankingConfig holds the constants of the hot and best score functions.
type RankingConfig struct {
	HotGravity     float64 `json:"hotGravity"`
	HotOffsetHours float64 `json:"hotOffsetHours"`
	BestZ          float64 `json:"bestZ"`
}

// ReconcileConfig controls the background counter reconciliation job.
type ReconcileConfig struct {
	Enabled   bool          `json:"enabled"`
	Interval  time.Duration `json:"interval"`
	BatchSize int           `json:"batchSize"`
}

// NotificationsConfig controls asynchronous notification delivery.
type NotificationsConfig struct {
	Enabled   bool `json:"enabled"`
	QueueSize int  `json:"queueSize"`
	Workers   int  `json:"workers"`
}

// Database types
const (
	DatabaseTypeMongoDB = "mongodb"
	DatabaseTypeMemory  = "memory"
)

// lookupFunc returns the raw value for key and whether it was set.
type lookupFunc func(key string) (string, bool)

// LoadFromEnv loads configuration from the environment.
// Precedence: explicit environment variables, then values from a .env file, then defaults.
func LoadFromEnv() (*Config, error) {
	envPaths := []string{".env", "../.env", "../../.env"}

	var loadErr error
	for _, envPath := range envPaths {
		// godotenv.Load never overrides variables that are already set.
		loadErr = godotenv.Load(envPath)
		if loadErr == nil {
			break
		}
	}
	if loadErr != nil {
		fmt.Println("INFO: .env file not found, using environment variables and defaults.")
	}

	return load(func(key string) (string, bool) {
		value := os.Getenv(key)
		return value, value != ""
	})
}

// LoadFromMap loads configuration from an in-memory map.
// Tests use it to exercise configuration logic without touching process environment.
func LoadFromMap(envMap map[string]string) (*Config, error) {
	return load(func(key string) (string, bool) {
		value, ok := envMap[key]
		return value, ok
	})
}

func load(lookup lookupFunc) (*Config, error) {
	e := env{lookup: lookup}

	config := &Config{
		Server: ServerConfig{
			Host:      e.str("HOST", "0.0.0.0"),
			Port:      e.int("SERVER_PORT", 8080),
			WebDomain: e.str("WEB_DOMAIN", "http://localhost:3000"),
			BodyLimit: e.int("SERVER_BODY_LIMIT", 1024*1024),
			LogLevel:  e.str("LOG_LEVEL", "info"),
			Debug:     e.bool("DEBUG", false),
		},
		Database: DatabaseConfig{
			Type:                  e.str("DB_TYPE", DatabaseTypeMongoDB),
			ForceNonTransactional: e.bool("DB_FORCE_NON_TRANSACTIONAL", false),
			Mongo: MongoDBConfig{
				URI:                    e.str("MONGODB_URI", ""),
				Host:                   e.str("MONGODB_HOST", "localhost"),
				Port:                   e.int("MONGODB_PORT", 27017),
				Username:               e.str("MONGODB_USERNAME", ""),
				Password:               e.str("MONGODB_PASSWORD", ""),
				Database:               e.str("MONGODB_DATABASE", "forum"),
				AuthDatabase:           e.str("MONGODB_AUTH_DATABASE", ""),
				ReplicaSet:             e.str("MONGODB_REPLICA_SET", ""),
				SSL:                    e.bool("MONGODB_SSL", false),
				MaxPoolSize:            e.int("MONGODB_MAX_POOL_SIZE", 100),
				MinPoolSize:            e.int("MONGODB_MIN_POOL_SIZE", 0),
				ConnectTimeout:         e.duration("MONGODB_CONNECT_TIMEOUT", 10*time.Second),
				ServerSelectionTimeout: e.duration("MONGODB_SERVER_SELECTION_TIMEOUT", 5*time.Second),
			},
		},
		JWT: JWTConfig{
			PublicKey: e.str("JWT_PUBLIC_KEY", ""),
			ClaimKey:  e.str("JWT_CLAIM_KEY", "claim"),
		},
		Redis: RedisConfig{
			Enabled:             e.bool("REDIS_ENABLED", false),
			Address:             e.str("REDIS_ADDRESS", "localhost:6379"),
			Password:            e.str("REDIS_PASSWORD", ""),
			Database:            e.int("REDIS_DATABASE", 0),
			PoolSize:            e.int("REDIS_POOL_SIZE", 10),
			NotificationChannel: e.str("REDIS_NOTIFICATION_CHANNEL", "forum:notifications"),
		},
		Votes: VotesConfig{
			RateLimitEnabled: e.bool("VOTE_RATE_LIMIT_ENABLED", true),
			RateLimitMax:     e.int("VOTE_RATE_LIMIT_MAX", 60),
			RateLimitWindow:  e.duration("VOTE_RATE_LIMIT_WINDOW", time.Minute),
		},
		Ranking: RankingConfig{
			HotGravity:     e.float("RANKING_HOT_GRAVITY", 1.5),
			HotOffsetHours: e.float("RANKING_HOT_OFFSET_HOURS", 2),
			BestZ:          e.float("RANKING_BEST_Z", 1.65),
		},
		Reconcile: ReconcileConfig{
			Enabled:   e.bool("RECONCILE_ENABLED", true),
			Interval:  e.duration("RECONCILE_INTERVAL", 15*time.Minute),
			BatchSize: e.int("RECONCILE_BATCH_SIZE", 500),
		},
		Notifications: NotificationsConfig{
			Enabled:   e.bool("NOTIFICATIONS_ENABLED", true),
			QueueSize: e.int("NOTIFICATIONS_QUEUE_SIZE", 1024),
			Workers:   e.int("NOTIFICATIONS_WORKERS", 2),
		},
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// Validate validates the configuration for required fields
func (c *Config) Validate() error {
	var errors []string

	if strings.TrimSpace(c.JWT.PublicKey) == "" {
		errors = append(errors, "JWT_PUBLIC_KEY is required")
	}

	validDbTypes := []string{DatabaseTypeMongoDB, DatabaseTypeMemory}
	if !contains(validDbTypes, c.Database.Type) {
		errors = append(errors, fmt.Sprintf("DB_TYPE must be one of: %s", strings.Join(validDbTypes, ", ")))
	}

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errors = append(errors, "SERVER_PORT must be between 1 and 65535")
	}
	if c.Ranking.HotGravity <= 0 {
		errors = append(errors, "RANKING_HOT_GRAVITY must be positive")
	}
	if c.Ranking.HotOffsetHours <= 0 {
		errors = append(errors, "RANKING_HOT_OFFSET_HOURS must be positive")
	}
	if c.Ranking.BestZ < 0 {
		errors = append(errors, "RANKING_BEST_Z must not be negative")
	}
	if c.Reconcile.Enabled && c.Reconcile.Interval <= 0 {
		errors = append(errors, "RECONCILE_INTERVAL must be positive when reconciliation is enabled")
	}
	if c.Reconcile.BatchSize <= 0 {
		errors = append(errors, "RECONCILE_BATCH_SIZE must be positive")
	}
	if c.Notifications.Enabled && (c.Notifications.QueueSize <= 0 || c.Notifications.Workers <= 0) {
		errors = append(errors, "NOTIFICATIONS_QUEUE_SIZE and NOTIFICATIONS_WORKERS must be positive")
	}
	if c.Votes.RateLimitEnabled && (c.Votes.RateLimitMax <= 0 || c.Votes.RateLimitWindow <= 0) {
		errors = append(errors, "VOTE_RATE_LIMIT_MAX and VOTE_RATE_LIMIT_WINDOW must be positive")
	}

	if len(errors) > 0 {
		return fmt.Errorf("validation errors: %s", strings.Join(errors, "; "))
	}

	return nil
}

// env wraps a lookup with typed accessors falling back to defaults on missing or malformed values.
type env struct {
	lookup lookupFunc
}

func (e env) str(key, defaultValue string) string {
	if value, ok := e.lookup(key); ok {
		return value
	}
	return defaultValue
}

func (e env) int(key string, defaultValue int) int {
	if value, ok := e.lookup(key); ok {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func (e env) float(key string, defaultValue float64) float64 {
	if value, ok := e.lookup(key); ok {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func (e env) bool(key string, defaultValue bool) bool {
	if value, ok := e.lookup(key); ok {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func (e env) duration(key string, defaultValue time.Duration) time.Duration {
	if value, ok := e.lookup(key); ok {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
