package config

import (
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/pkg/errors"
)

type Config struct {
	Server   ServerConfig   `envconfig:"SERVER"`
	Logger   LoggerConfig   `envconfig:"LOGGER"`
	Database DatabaseConfig `envconfig:"DB"`
	JWT      JWTConfig      `envconfig:"JWT"`
	Seed     SeedConfig     `envconfig:"SEED"`
	Forecast ForecastConfig `envconfig:"FORECAST"`
}

type ServerConfig struct {
	AppEnv  string `envconfig:"APP_ENV" default:"development"`
	AppName string `envconfig:"APP_NAME" default:"Warehouse Inventory v1.0"`
	Port    string `envconfig:"PORT" default:"3000"`
}

type LoggerConfig struct {
	Level             string `envconfig:"LEVEL" default:"info"`
	Encoding          string `envconfig:"ENCODING" default:"json"`
	DisableCaller     bool   `envconfig:"DISABLE_CALLER" default:"false"`
	DisableStacktrace bool   `envconfig:"DISABLE_STACKTRACE" default:"true"`
}

type DatabaseConfig struct {
	Driver          string        `envconfig:"DRIVER" default:"postgres"` // postgres | sqlite
	URL             string        `envconfig:"URL"`
	Host            string        `envconfig:"HOST" default:"localhost"`
	Port            string        `envconfig:"PORT" default:"5432"`
	User            string        `envconfig:"USER" default:"postgres"`
	Password        string        `envconfig:"PASSWORD"`
	Name            string        `envconfig:"NAME" default:"inventory"`
	SSLMode         string        `envconfig:"SSLMODE" default:"disable"`
	TimeZone        string        `envconfig:"TIMEZONE" default:"UTC"`
	MaxIdleConns    int           `envconfig:"MAX_IDLE_CONNS" default:"10"`
	MaxOpenConns    int           `envconfig:"MAX_OPEN_CONNS" default:"100"`
	ConnMaxLifetime time.Duration `envconfig:"CONN_MAX_LIFETIME" default:"1h"`
	SlowThreshold   time.Duration `envconfig:"SLOW_THRESHOLD" default:"1s"`
}

type JWTConfig struct {
	Secret string        `envconfig:"SECRET" default:"your-super-secret-key-change-in-production"`
	TTL    time.Duration `envconfig:"TTL" default:"24h"`
	Issuer string        `envconfig:"ISSUER" default:"go-warehouse-inventory"`
}

type SeedConfig struct {
	AdminEmail    string `envconfig:"ADMIN_EMAIL" default:"admin@example.com"`
	AdminPassword string `envconfig:"ADMIN_PASSWORD" default:"admin123"`
}

type ForecastConfig struct {
	WindowDays int `envconfig:"WINDOW_DAYS" default:"90"`
}

// DSN returns DB_URL when set, otherwise a key/value DSN built from the parts.
// For sqlite the database name is used as the file path.
func (c DatabaseConfig) DSN() string {
	if c.URL != "" {
		return c.URL
	}
	if c.Driver == "sqlite" {
		return c.Name + ".db"
	}
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=%s",
		c.Host, c.User, c.Password, c.Name, c.Port, c.SSLMode, c.TimeZone,
	)
}

func (c ServerConfig) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// Load reads .env (when present) and then the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, relying on system env")
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, errors.Wrap(err, "load config")
	}
	return &cfg, nil
}
