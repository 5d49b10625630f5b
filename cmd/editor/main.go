package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"planogram-editor/internal/common/config"
	"planogram-editor/internal/common/middleware"
	"planogram-editor/internal/planogram/catalog"
	"planogram-editor/internal/planogram/handlers"
	"planogram-editor/internal/planogram/persistence"
	"planogram-editor/internal/planogram/session"
	"planogram-editor/internal/planogram/validation"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/log"
	"github.com/gofiber/fiber/v3/middleware/recover"
)

// ============================================================
// Planogram Editor Service
// ============================================================

func main() {
	cfg := config.Load()
	if os.Getenv("PORT") == "" {
		cfg.Port = "3003"
	}
	if cfg.Environment == "development" {
		log.SetLevel(log.LevelDebug)
	}
	ec := cfg.Editor

	cat, err := catalog.Load(ec.CatalogDir)
	if err != nil {
		log.Fatalf("load catalog: %v", err)
	}

	db, err := persistence.OpenSQLite(ec.DraftsDBPath)
	if err != nil {
		log.Fatalf("open db: %v", err)
	}
	defer db.Close()

	drafts := persistence.New(db, persistence.WithTTL(ec.DraftTTL))
	if err := drafts.Init(context.Background(), ec.MigrationsPath); err != nil {
		log.Fatalf("init db: %v", err)
	}

	policy := validation.DefaultPolicy()
	policy.CautionRatio = ec.CautionRatio
	policy.CriticalRatio = ec.CriticalRatio

	sessions := session.NewManager(session.Config{
		Policy:           policy,
		RulesEnabled:     ec.RulesEnabled,
		DragThrottle:     ec.DragThrottle,
		AutosaveDebounce: ec.AutosaveDebounce,
		IdleTimeout:      ec.SessionIdle,
		Saver:            drafts,
	})
	editor := handlers.NewEditorHandler(cat, sessions, drafts, ec.PixelScale)

	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.WriteTimeout) * time.Second,
		AppName:      "Planogram Editor",
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

	app.Get("/health/live", func(c fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "alive"})
	})

	app.Get("/health/ready", func(c fiber.Ctx) error {
		if err := db.Ping(); err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "db unavailable"})
		}
		return c.JSON(fiber.Map{"status": "ready", "sessions": sessions.Len()})
	})

	// ============================================================
	// Editor Routes
	// ============================================================

	editor.Register(app)

	// ============================================================
	// Server Start
	// ============================================================

	go func() {
		stop := make(chan os.Signal, 1)
		signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
		<-stop
		log.Infof("[EDITOR] shutting down")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			log.Errorf("[EDITOR] shutdown: %v", err)
		}
	}()

	addr := fmt.Sprintf(":%s", cfg.Port)
	log.Infof("Starting Planogram Editor on %s (env: %s)", addr, cfg.Environment)

	if err := app.Listen(addr); err != nil {
		log.Errorf("Failed to start server: %v", err)
	}
	sessions.Shutdown()
}
