package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
)

// Store drivers accepted in DEFM_STORE.
const (
	StoreMemory = "memory"
	StoreSQLite = "sqlite"
	StoreRedis  = "redis"
	StoreMongo  = "mongo"
)

type Config struct {
	APIURL     string        `env:"DEFM_API_URL, default=http://127.0.0.1:8000"`
	Timeout    time.Duration `env:"DEFM_TIMEOUT, default=30s"`
	LogLevel   string        `env:"LOG_LEVEL,    default=info"`
	LogPretty  bool          `env:"LOG_PRETTY,   default=true"`
	StatusAddr string        `env:"STATUS_ADDR,  default=127.0.0.1:9090"`

	Store StoreConfig
	Redis RedisConfig
	Mongo MongoConfig
	Dev   DevConfig
}

type StoreConfig struct {
	Driver     string `env:"DEFM_STORE,       default=sqlite"`
	SQLitePath string `env:"DEFM_SQLITE_PATH"`
	Profile    string `env:"DEFM_PROFILE,     default=default"`
	// TTL only applies to the redis driver; zero keeps entries until logout.
	TTL time.Duration `env:"DEFM_STORE_TTL, default=0s"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR,     default=localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB,       default=0"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=defm_console"`
}

// DevConfig configures the in-memory development backend.
type DevConfig struct {
	Port          string        `env:"DEV_PORT,           default=8000"`
	JWTSecret     string        `env:"JWT_SECRET,         default=dev-secret-change-me"`
	TokenTTL      time.Duration `env:"DEV_TOKEN_TTL,      default=30m"`
	AdminPassword string        `env:"DEV_ADMIN_PASSWORD, default=admin123"`
}

// Load reads an optional .env file, then the process environment.
func Load(ctx context.Context) (*Config, error) {
	_ = godotenv.Load()
	return LoadFrom(ctx, envconfig.OsLookuper())
}

// LoadFrom reads configuration through l using go-envconfig.
func LoadFrom(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: l}); err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}

	switch cfg.Store.Driver {
	case StoreMemory, StoreSQLite, StoreRedis, StoreMongo:
	default:
		return nil, fmt.Errorf("unknown DEFM_STORE %q", cfg.Store.Driver)
	}
	if cfg.Store.SQLitePath == "" {
		cfg.Store.SQLitePath = defaultSQLitePath()
	}
	return &cfg, nil
}

func defaultSQLitePath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = "."
	}
	return filepath.Join(dir, "defm", "console.db")
}
