package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Abraxas-365/debelu/pkg/config"
	"github.com/Abraxas-365/debelu/pkg/errx/errxfiber"
	"github.com/Abraxas-365/debelu/pkg/logx"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
)

func main() {
	// 1. Initialize Logger
	logx.SetDefaultLogger(logx.NewLogger(logx.LoadFromEnv()))

	logx.Info("🚀 Starting Debelu Chat API Server...")

	// 2. Load configuration
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logx.Fatalf("Invalid configuration: %v", err)
	}

	// 3. Initialize Dependency Container
	container := NewContainer(cfg)
	defer container.Cleanup()

	// 4. Create Fiber App with Config
	app := newApp(container)

	// 5. Print Route Summary
	printRouteSummary()

	// 6. Start Server with Graceful Shutdown
	startServer(app, cfg.Server.Port)
}

func newApp(container *Container) *fiber.App {
	cfg := container.Config

	app := fiber.New(fiber.Config{
		AppName:               "Debelu Chat API",
		DisableStartupMessage: true,
		ErrorHandler:          errxfiber.NewErrorHandler(errxfiber.Config{Debug: cfg.Server.Debug}),
		BodyLimit:             1 * 1024 * 1024,
		IdleTimeout:           120 * time.Second,
	})

	// Global Middleware
	app.Use(recover.New(recover.Config{
		EnableStackTrace: cfg.Server.Debug,
	}))

	app.Use(requestid.New(requestid.Config{
		Header: "X-Request-ID",
		Generator: func() string {
			return "req-" + uuid.NewString()
		},
	}))

	app.Use(cors.New(cors.Config{
		AllowOrigins:  cfg.Server.CORSOrigins,
		AllowHeaders:  "Origin, Content-Type, Accept, Authorization, X-Request-ID",
		AllowMethods:  "GET, POST, DELETE, HEAD, OPTIONS",
		ExposeHeaders: "X-Request-ID",
	}))

	app.Use(logger.New(logger.Config{
		Format:     "${time} | ${status} | ${latency} | ${method} ${path} | ${ip} | ${reqHeader:X-Request-ID}\n",
		TimeFormat: "2006-01-02 15:04:05",
		TimeZone:   "Local",
	}))

	// Health Check & Info Endpoints
	app.Get("/health", healthCheckHandler(container))
	app.Get("/", infoHandler(cfg))

	// ========================================================================
	// Chat Routes
	// ========================================================================
	// Sessions: /api/v1/chat/sessions/:sessionID/{messages,panel}
	container.Chat.Handlers.RegisterRoutes(app, container.IAM.AuthMiddleware)
	logx.Info("✓ Chat routes registered")

	// 404 Handler
	app.Use(notFoundHandler)

	return app
}

// ============================================================================
// Handler Functions
// ============================================================================

func healthCheckHandler(container *Container) fiber.Handler {
	return func(c *fiber.Ctx) error {
		health := fiber.Map{
			"status":  "healthy",
			"service": "debelu-chat-api",
			"version": container.Config.Server.Version,
		}

		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()

		for name, err := range container.HealthCheck(ctx) {
			if err != nil {
				health[name] = "unhealthy"
				health[name+"_error"] = err.Error()
				health["status"] = "degraded"
			} else {
				health[name] = "healthy"
			}
		}

		status := fiber.StatusOK
		if health["status"] == "degraded" {
			status = fiber.StatusServiceUnavailable
		}

		return c.Status(status).JSON(health)
	}
}

func infoHandler(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"service":     "Debelu Chat API",
			"version":     cfg.Server.Version,
			"description": "Conversational shopping assistant",
			"endpoints": fiber.Map{
				"send_message": "POST /api/v1/chat/sessions/:sessionID/messages",
				"history":      "GET /api/v1/chat/sessions/:sessionID/messages",
				"panel":        "GET /api/v1/chat/sessions/:sessionID/panel",
				"close_panel":  "DELETE /api/v1/chat/sessions/:sessionID/panel",
				"health":       "/health",
			},
		})
	}
}

// notFoundHandler handles 404 errors
func notFoundHandler(c *fiber.Ctx) error {
	return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
		"error":      "Route not found",
		"code":       "NOT_FOUND",
		"path":       c.Path(),
		"method":     c.Method(),
		"message":    "The requested endpoint does not exist",
		"request_id": c.Get("X-Request-ID"),
	})
}

// ============================================================================
// Utility Functions
// ============================================================================

func printRouteSummary() {
	logx.Info("📋 Route Summary:")
	logx.Info("   ├─ Chat: /api/v1/chat/sessions/*")
	logx.Info("   └─ Health: /health")
}

// startServer starts the server with graceful shutdown
func startServer(app *fiber.App, port string) {
	go func() {
		logx.Info(banner())
		logx.Infof("🚀 Server listening on port %s", port)
		logx.Infof("💚 Health Check: http://localhost:%s/health", port)
		logx.Info(banner())

		if err := app.Listen(":" + port); err != nil {
			logx.Fatalf("Server error: %v", err)
		}
	}()

	gracefulShutdown(app)
}

// gracefulShutdown handles graceful server shutdown
func gracefulShutdown(app *fiber.App) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	sig := <-sigChan
	logx.Infof("🛑 Received signal: %v", sig)
	logx.Info("Shutting down gracefully...")

	if err := app.ShutdownWithTimeout(30 * time.Second); err != nil {
		logx.Errorf("Server forced to shutdown: %v", err)
	}

	logx.Info("✅ Server exited successfully")
}
