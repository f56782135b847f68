package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config aggregates every tunable part of the application.
type Config struct {
	App     AppConfig
	DB      DBConfig
	Log     LogConfig
	Auth    AuthConfig
	Cron    CronConfig
	Swagger SwaggerConfig
}

// AppConfig contains settings related to the HTTP server.
type AppConfig struct {
	Port string
	Env  string

	// DemoMode serves seeded in-memory data instead of Postgres. It is
	// also entered implicitly when no database is configured.
	DemoMode bool
}

// DBConfig represents PostgreSQL connection settings. URL wins when set;
// otherwise the discrete fields are assembled via DSN.
type DBConfig struct {
	URL      string
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string

	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// DSN builds the postgres connection string from the individual fields.
func (db DBConfig) DSN() string {
	if db.URL != "" {
		return db.URL
	}

	host := db.Host
	if host == "" {
		host = "localhost"
	}

	port := db.Port
	if port == "" {
		port = "5432"
	}

	sslMode := db.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}

	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		db.User,
		db.Password,
		host,
		port,
		db.Name,
		sslMode,
	)
}

func (db DBConfig) configured() bool {
	return db.URL != "" || (db.User != "" && db.Name != "")
}

// LogConfig controls logger behavior.
type LogConfig struct {
	Level string
}

// AuthConfig carries session-token settings.
type AuthConfig struct {
	// Secret verifies session JWTs (HS256).
	Secret string
	// OwnerScoping restricts every trial operation to the caller's own
	// records. When false the service runs open, as in demo deployments.
	OwnerScoping bool
}

// CronConfig holds the shared secret the periodic status-refresh trigger
// must present.
type CronConfig struct {
	Secret string
}

// SwaggerConfig configures the generated documentation.
type SwaggerConfig struct {
	Host string
}

// Load reads environment variables and validates the final configuration.
func Load() (Config, error) {
	cfg := Config{
		App: AppConfig{
			Port:     getEnv("APP_PORT", "8080"),
			Env:      getEnv("APP_ENV", "dev"),
			DemoMode: getEnvBool("DEMO_MODE", false),
		},
		DB: DBConfig{
			URL:      getEnv("POSTGRES_URL", ""),
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", ""),
			Password: getEnv("DB_PASSWORD", ""),
			Name:     getEnv("DB_NAME", ""),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),

			MaxOpenConns:    getEnvInt("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns:    getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getEnvDuration("DB_CONN_MAX_LIFETIME", time.Hour),
		},
		Log: LogConfig{
			Level: strings.ToLower(getEnv("LOG_LEVEL", "info")),
		},
		Auth: AuthConfig{
			Secret:       getEnv("AUTH_SECRET", ""),
			OwnerScoping: getEnvBool("OWNER_SCOPING", false),
		},
		Cron: CronConfig{
			Secret: getEnv("CRON_SECRET", ""),
		},
		Swagger: SwaggerConfig{
			Host: getEnv("SWAGGER_HOST", ""),
		},
	}

	// Absent storage credentials degrade to demo mode rather than failing.
	if !cfg.DB.configured() {
		cfg.App.DemoMode = true
	}

	if cfg.Swagger.Host == "" {
		cfg.Swagger.Host = fmt.Sprintf("localhost:%s", cfg.App.Port)
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func (cfg Config) validate() error {
	var missing []string

	if cfg.Auth.OwnerScoping && cfg.Auth.Secret == "" {
		missing = append(missing, "AUTH_SECRET")
	}

	if len(missing) > 0 {
		return fmt.Errorf("missing required configuration: %s", strings.Join(missing, ", "))
	}

	return nil
}

func getEnv(key, fallback string) string {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		return fallback
	}
	return value
}

func getEnvBool(key string, fallback bool) bool {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvInt(key string, fallback int) int {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return parsed
}
