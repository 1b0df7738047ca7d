package config

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/sethvargo/go-envconfig"
)

const (
	DriverFile   = "file"
	DriverSQLite = "sqlite"
	DriverMongo  = "mongo"
)

type Config struct {
	Port            string        `env:"PORT,             default=8080"`
	Env             string        `env:"ENV,              default=development"`
	JWTSecret       string        `env:"JWT_SECRET"`
	LogLevel        string        `env:"LOG_LEVEL,        default=info"`
	ManagerPasscode string        `env:"MANAGER_PASSCODE"`
	TokenTTL        time.Duration `env:"TOKEN_TTL,        default=12h"`

	Storage    StorageConfig
	Retention  RetentionConfig
	Attendance AttendanceConfig
	Batch      BatchConfig
	Mongo      MongoConfig
	Redis      RedisConfig
}

type StorageConfig struct {
	Driver      string        `env:"STORAGE_DRIVER,       default=file"`
	DataDir     string        `env:"DATA_DIR,             default=./data"`
	LockTimeout time.Duration `env:"STORAGE_LOCK_TIMEOUT, default=5s"`
	// SQLitePath defaults to <DataDir>/clockin.db.
	SQLitePath string `env:"SQLITE_PATH"`
}

type RetentionConfig struct {
	Months int `env:"RETENTION_MONTHS, default=12"`
}

type AttendanceConfig struct {
	ShiftStartHour int    `env:"SHIFT_START_HOUR,    default=9"`
	GraceMinutes   int    `env:"SHIFT_GRACE_MINUTES, default=15"`
	Timezone       string `env:"ATTENDANCE_TIMEZONE, default=Local"`
}

type BatchConfig struct {
	Workers        int           `env:"BATCH_WORKERS,   default=4"`
	IdempotencyTTL time.Duration `env:"IDEMPOTENCY_TTL, default=24h"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=clockin"`
}

// RedisConfig is optional for the file and sqlite drivers; an empty Addr
// selects the in-memory idempotency store.
type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB, default=0"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load(ctx context.Context) (*Config, error) {
	return LoadFrom(ctx, envconfig.OsLookuper())
}

// LoadFrom reads configuration from an arbitrary lookuper and validates it.
func LoadFrom(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: l}); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks cross-field constraints envconfig cannot express.
func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case DriverFile, DriverSQLite:
	case DriverMongo:
		if c.Redis.Addr == "" {
			return fmt.Errorf("config: REDIS_ADDR is required with STORAGE_DRIVER=mongo")
		}
	default:
		return fmt.Errorf("config: unknown STORAGE_DRIVER %q", c.Storage.Driver)
	}
	if c.Attendance.ShiftStartHour < 0 || c.Attendance.ShiftStartHour > 23 {
		return fmt.Errorf("config: SHIFT_START_HOUR must be between 0 and 23")
	}
	if c.Attendance.GraceMinutes < 0 {
		return fmt.Errorf("config: SHIFT_GRACE_MINUTES must not be negative")
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	if c.ManagerPasscode != "" && c.JWTSecret == "" {
		return fmt.Errorf("config: JWT_SECRET is required when MANAGER_PASSCODE is set")
	}
	return nil
}

// Location resolves ATTENDANCE_TIMEZONE.
func (c *Config) Location() (*time.Location, error) {
	tz := strings.TrimSpace(c.Attendance.Timezone)
	if tz == "" || strings.EqualFold(tz, "local") {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("config: ATTENDANCE_TIMEZONE: %w", err)
	}
	return loc, nil
}

// SQLiteFile returns the database path for the sqlite driver.
func (c *Config) SQLiteFile() string {
	if c.Storage.SQLitePath != "" {
		return c.Storage.SQLitePath
	}
	return filepath.Join(c.Storage.DataDir, "clockin.db")
}

// IsDevelopment reports whether pretty console logging should be used.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}
