// cmd/container.go
//
// Root composition root. Owns infrastructure (DB, Redis) and composes
// bounded-context containers. This is the only place that knows about ALL modules.
package main

import (
	"context"
	"strings"

	"github.com/Abraxas-365/debelu/pkg/chat/chatcontainer"
	"github.com/Abraxas-365/debelu/pkg/config"
	"github.com/Abraxas-365/debelu/pkg/iam/iamcontainer"
	"github.com/Abraxas-365/debelu/pkg/logx"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
)

// Container holds shared infrastructure and composed module containers.
type Container struct {
	Config *config.Config

	// Infrastructure (shared across all modules)
	DB    *sqlx.DB
	Redis *redis.Client

	// Bounded-context containers
	IAM  *iamcontainer.Container
	Chat *chatcontainer.Container
}

func NewContainer(cfg *config.Config) *Container {
	logx.Info("🔧 Initializing application container...")

	c := &Container{Config: cfg}

	c.initInfrastructure()
	c.initModules()

	logx.Info("✅ Application container initialized")
	return c
}

// ---------------------------------------------------------------------------
// Infrastructure: DB, Redis
// ---------------------------------------------------------------------------

func (c *Container) initInfrastructure() {
	logx.Info("🏗️ Initializing infrastructure...")

	// 1. Database, only when chat history lives in SQL
	if c.Config.Chat.Store == "sql" {
		db, err := sqlx.Connect(c.Config.Database.Driver, c.Config.Database.DSN())
		if err != nil {
			logx.Fatalf("Failed to connect to database: %v", err)
		}
		if c.Config.Database.Driver == "sqlite" {
			// one writer keeps SQLite from reporting SQLITE_BUSY under load
			db.SetMaxOpenConns(1)
		} else {
			db.SetMaxOpenConns(c.Config.Database.MaxOpenConns)
			db.SetMaxIdleConns(c.Config.Database.MaxIdleConns)
		}
		db.SetConnMaxLifetime(c.Config.Database.ConnMaxLifetime)
		c.DB = db
		logx.Infof("  ✅ Database connected (%s)", c.Config.Database.Driver)
	}

	// 2. Redis
	if c.Config.Chat.UsesRedis() {
		c.Redis = redis.NewClient(&redis.Options{
			Addr:     c.Config.Redis.Address(),
			Password: c.Config.Redis.Password,
			DB:       c.Config.Redis.DB,
		})
		if _, err := c.Redis.Ping(context.Background()).Result(); err != nil {
			logx.Fatalf("Failed to connect to Redis: %v (Redis is required)", err)
		}
		logx.Info("  ✅ Redis connected")
	}

	logx.Info("✅ Infrastructure initialized")
}

// ---------------------------------------------------------------------------
// Module composition: each bounded context wires itself
// ---------------------------------------------------------------------------

func (c *Container) initModules() {
	logx.Info("📦 Initializing modules...")

	c.IAM = iamcontainer.New(iamcontainer.Deps{Cfg: c.Config})

	chatModule, err := chatcontainer.New(context.Background(), chatcontainer.Deps{
		DB:    c.DB,
		Redis: c.Redis,
		Cfg:   c.Config,
	})
	if err != nil {
		logx.Fatalf("Failed to initialize chat module: %v", err)
	}
	c.Chat = chatModule
}

// ---------------------------------------------------------------------------
// Lifecycle
// ---------------------------------------------------------------------------

// HealthCheck reports every external dependency by name; nil means healthy.
func (c *Container) HealthCheck(ctx context.Context) map[string]error {
	checks := c.Chat.HealthCheck(ctx)
	if c.DB != nil {
		checks["db"] = c.DB.PingContext(ctx)
	}
	if c.Redis != nil {
		checks["redis"] = c.Redis.Ping(ctx).Err()
	}
	return checks
}

func (c *Container) Cleanup() {
	logx.Info("🧹 Cleaning up resources...")

	if c.DB != nil {
		if err := c.DB.Close(); err != nil {
			logx.Errorf("Error closing database: %v", err)
		} else {
			logx.Info("  ✅ Database connection closed")
		}
	}

	if c.Redis != nil {
		if err := c.Redis.Close(); err != nil {
			logx.Errorf("Error closing Redis: %v", err)
		} else {
			logx.Info("  ✅ Redis connection closed")
		}
	}

	logx.Info("✅ Cleanup complete")
}

func banner() string {
	return strings.Repeat("=", 61)
}
