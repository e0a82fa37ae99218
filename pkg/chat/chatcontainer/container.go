package chatcontainer

import (
	"context"
	"fmt"

	"github.com/Abraxas-365/debelu/pkg/chat"
	"github.com/Abraxas-365/debelu/pkg/chat/chatapi"
	"github.com/Abraxas-365/debelu/pkg/chat/chatinfra"
	"github.com/Abraxas-365/debelu/pkg/chat/panelx"
	"github.com/Abraxas-365/debelu/pkg/chat/panelx/panelxredis"
	"github.com/Abraxas-365/debelu/pkg/config"
	"github.com/Abraxas-365/debelu/pkg/logx"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
)

// ---------------------------------------------------------------------------
// Deps: infrastructure the chat context borrows from cmd/.
// DB is required only for CHAT_STORE=sql, Redis only when a chat
// collaborator is configured for redis.
// ---------------------------------------------------------------------------

type Deps struct {
	DB    *sqlx.DB
	Redis *redis.Client
	Cfg   *config.Config
}

// ---------------------------------------------------------------------------
// Container: the public surface of the chat module.
// ---------------------------------------------------------------------------

type Container struct {
	Service  *chat.Service
	Handlers *chatapi.ChatHandlers

	store chat.Store
	board panelx.Board
}

type pinger interface {
	Ping(ctx context.Context) error
}

// New wires stores → backend → service → handlers.
func New(ctx context.Context, deps Deps) (*Container, error) {
	logx.Info("🔧 Initializing chat container...")

	cfg := deps.Cfg.Chat
	c := &Container{}

	// ── Session store ────────────────────────────────────────────────────

	switch cfg.Store {
	case "sql":
		if deps.DB == nil {
			return nil, fmt.Errorf("chat: CHAT_STORE=sql requires a database")
		}
		store := chatinfra.NewSQLStore(deps.DB)
		if err := store.EnsureSchema(ctx); err != nil {
			return nil, err
		}
		c.store = store
		logx.Infof("  ✅ SQL chat store (%s)", deps.DB.DriverName())
	case "redis":
		if deps.Redis == nil {
			return nil, fmt.Errorf("chat: CHAT_STORE=redis requires redis")
		}
		c.store = chatinfra.NewRedisStore(deps.Redis, 0)
		logx.Info("  ✅ Redis chat store")
	default:
		c.store = chatinfra.NewMemoryStore()
		logx.Warn("  ⚠️  In-memory chat store (history is lost on restart)")
	}

	// ── Panel board ──────────────────────────────────────────────────────

	if cfg.PanelStore == "redis" {
		if deps.Redis == nil {
			return nil, fmt.Errorf("chat: CHAT_PANEL_STORE=redis requires redis")
		}
		c.board = panelxredis.NewBoard(deps.Redis, cfg.PanelTTL)
		logx.Info("  ✅ Redis panel board")
	} else {
		c.board = panelx.NewMemoryBoard()
		logx.Info("  ✅ In-memory panel board")
	}

	// ── LLM backend ──────────────────────────────────────────────────────

	var backend chat.Backend
	if cfg.BackendURL == "" {
		backend = chatinfra.OfflineBackend{}
		logx.Warn("  ⚠️  LLM_BACKEND_URL not set, using offline backend")
	} else {
		backend = chatinfra.NewHTTPBackend(chatinfra.HTTPBackendConfig{
			URL:      cfg.BackendURL,
			APIKey:   cfg.BackendAPIKey,
			Timeout:  cfg.BackendTimeout,
			Attempts: cfg.BackendAttempts,
			Backoff:  cfg.BackendBackoff,
		})
		logx.Infof("  ✅ LLM backend: %s", cfg.BackendURL)
	}

	// ── Service & handlers ───────────────────────────────────────────────

	c.Service = chat.NewService(backend, c.store, c.board)
	c.Handlers = chatapi.NewChatHandlers(c.Service)

	logx.Info("✅ Chat container initialized")
	return c, nil
}

// HealthCheck pings the stores that live outside the process.
func (c *Container) HealthCheck(ctx context.Context) map[string]error {
	checks := map[string]error{}
	if p, ok := c.store.(pinger); ok {
		checks["chat_store"] = p.Ping(ctx)
	}
	return checks
}
