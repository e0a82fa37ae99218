package config

import (
	"fmt"
	"strings"
	"time"
)

// Config is the root configuration, loaded once in cmd/.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Auth     AuthConfig
	Chat     ChatConfig
}

type ServerConfig struct {
	Port        string
	CORSOrigins string
	Version     string
	Debug       bool
}

// DatabaseConfig covers both Postgres and the embedded SQLite driver.
type DatabaseConfig struct {
	Driver          string // postgres | sqlite
	Host            string
	Port            int
	User            string
	Password        string
	Name            string
	SSLMode         string
	Path            string // sqlite file, ":memory:" allowed
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// DSN returns the driver-specific data source name.
func (d DatabaseConfig) DSN() string {
	if d.Driver == "sqlite" {
		return d.Path
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

func (r RedisConfig) Address() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

type AuthConfig struct {
	JWTSecret      string
	JWTIssuer      string
	AccessTokenTTL time.Duration
}

// ChatConfig configures the chat turn pipeline and its collaborators.
type ChatConfig struct {
	Store      string // memory | sql | redis
	PanelStore string // memory | redis
	PanelTTL   time.Duration

	BackendURL      string // empty selects the offline backend
	BackendAPIKey   string
	BackendTimeout  time.Duration
	BackendAttempts int
	BackendBackoff  time.Duration
}

// UsesRedis reports whether any chat collaborator needs a Redis client.
func (c ChatConfig) UsesRedis() bool {
	return c.Store == "redis" || c.PanelStore == "redis"
}

// Load reads the configuration from the environment.
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port:        getEnv("PORT", "8080"),
			CORSOrigins: getEnv("CORS_ORIGINS", "*"),
			Version:     getEnv("APP_VERSION", "1.0.0"),
			Debug:       getEnvBool("DEBUG", false),
		},
		Database: DatabaseConfig{
			Driver:          strings.ToLower(getEnv("DB_DRIVER", "postgres")),
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnvInt("DB_PORT", 5432),
			User:            getEnv("DB_USER", "postgres"),
			Password:        getEnv("DB_PASSWORD", "postgres"),
			Name:            getEnv("DB_NAME", "debelu"),
			SSLMode:         getEnv("DB_SSLMODE", "disable"),
			Path:            getEnv("DB_PATH", "debelu.db"),
			MaxOpenConns:    getEnvInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getEnvDuration("DB_CONN_MAX_LIFETIME", 5*time.Minute),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnvInt("REDIS_PORT", 6379),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		Auth: AuthConfig{
			JWTSecret:      getEnv("JWT_SECRET", ""),
			JWTIssuer:      getEnv("JWT_ISSUER", "debelu"),
			AccessTokenTTL: getEnvDuration("JWT_ACCESS_TTL", 15*time.Minute),
		},
		Chat: ChatConfig{
			Store:           strings.ToLower(getEnv("CHAT_STORE", "memory")),
			PanelStore:      strings.ToLower(getEnv("CHAT_PANEL_STORE", "memory")),
			PanelTTL:        getEnvDuration("CHAT_PANEL_TTL", 24*time.Hour),
			BackendURL:      getEnv("LLM_BACKEND_URL", ""),
			BackendAPIKey:   getEnv("LLM_BACKEND_API_KEY", ""),
			BackendTimeout:  getEnvDuration("LLM_BACKEND_TIMEOUT", 2*time.Minute),
			BackendAttempts: getEnvInt("LLM_BACKEND_ATTEMPTS", 3),
			BackendBackoff:  getEnvDuration("LLM_BACKEND_BACKOFF", 250*time.Millisecond),
		},
	}
}

// Validate rejects combinations the container cannot wire.
func (c *Config) Validate() error {
	switch c.Chat.Store {
	case "memory", "sql", "redis":
	default:
		return fmt.Errorf("unknown CHAT_STORE %q (use memory, sql or redis)", c.Chat.Store)
	}
	switch c.Chat.PanelStore {
	case "memory", "redis":
	default:
		return fmt.Errorf("unknown CHAT_PANEL_STORE %q (use memory or redis)", c.Chat.PanelStore)
	}
	if c.Chat.Store == "sql" && c.Database.Driver != "postgres" && c.Database.Driver != "sqlite" {
		return fmt.Errorf("unknown DB_DRIVER %q (use postgres or sqlite)", c.Database.Driver)
	}
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	return nil
}
