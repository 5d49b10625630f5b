package main

import (
	"fmt"
	"time"

	"planogram-editor/internal/common/config"
	"planogram-editor/internal/common/middleware"
	"planogram-editor/internal/gateway/handlers"
	"planogram-editor/internal/gateway/proxy"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/log"
	"github.com/gofiber/fiber/v3/middleware/recover"
)

// ============================================================
// API Gateway
// ============================================================

func main() {
	cfg := config.Load()
	editorURL := cfg.Gateway.EditorURL

	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.WriteTimeout) * time.Second,
		AppName:      "Planogram Gateway",
	})

	// ============================================================
	// Global Middleware
	// ============================================================

	app.Use(recover.New())
	app.Use(middleware.Logger())
	app.Use(middleware.CORS())

	// ============================================================
	// Health Check Routes
	// ============================================================

	app.Get("/health/live", handlers.LivenessProbe)
	app.Get("/health/ready", handlers.ReadinessProbe(editorURL))
	app.Get("/health/startup", handlers.StartupProbe)

	// ============================================================
	// Docs
	// ============================================================

	app.Get("/docs", handlers.SwaggerUI("Planogram Editor API", "/docs/openapi.yaml"))
	app.Get("/docs/openapi.yaml", handlers.SwaggerSpec(cfg.Gateway.DocsPath))

	// ============================================================
	// API Routes
	// ============================================================

	api := app.Group("/api/v1")

	api.Get("/", func(c fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message": "Planogram API v1",
			"status":  "ok",
		})
	})

	// Editor Service
	api.All("/*", proxy.Upstream(editorURL))

	// ============================================================
	// Server Start
	// ============================================================

	addr := fmt.Sprintf(":%s", cfg.Port)
	log.Infof("[GATEWAY] listening on %s (env: %s)", addr, cfg.Environment)
	log.Infof("[GATEWAY] proxying /api/v1/* to %s", editorURL)

	if err := app.Listen(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
