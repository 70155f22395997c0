package main

import (
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bookscope/bookscope/internal/audit"
	"github.com/bookscope/bookscope/internal/config"
	"github.com/bookscope/bookscope/internal/database"
	"github.com/bookscope/bookscope/internal/handlers"
	"github.com/bookscope/bookscope/internal/repository"
	"github.com/bookscope/bookscope/internal/routes"
	"github.com/bookscope/bookscope/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/stripe/stripe-go/v81"
	"gorm.io/gorm"
)

func main() {
	// JSON structured logging
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	slog.Info("Starting Bookscope", "version", handlers.Version)

	// ─── Config ──────────────────────────────────────────────────────────
	cfg := config.Load()
	if cfg.JWTSecret == "" {
		slog.Error("JWT_SECRET is required")
		os.Exit(1)
	}
	stripe.Key = cfg.StripeSecretKey

	// ─── Database ────────────────────────────────────────────────────────
	if err := database.Connect(cfg); err != nil {
		slog.Error("Database connection failed", "error", err)
		os.Exit(1)
	}

	if err := database.Migrate(); err != nil {
		slog.Error("Database migration failed", "error", err)
		os.Exit(1)
	}

	db := database.DB

	// ─── Mutation observer ───────────────────────────────────────────────
	// Audit entries are written through their own sessions so they can
	// never roll back a business transaction.
	recorder := audit.NewRecorder(func() *gorm.DB {
		return db.Session(&gorm.Session{NewDB: true})
	})
	if err := db.Use(recorder); err != nil {
		slog.Error("Audit recorder registration failed", "error", err)
		os.Exit(1)
	}

	// ─── Services ────────────────────────────────────────────────────────
	bookSearch := services.NewBookSearchService(cfg)
	reports := services.NewReportGenerator(bookSearch, "")
	email := services.NewEmailService(cfg.SendGridAPIKey, cfg.FromEmail, cfg.FromName, cfg.FrontendURL)
	auditService := services.NewAuditService(db)

	// ─── Repositories ────────────────────────────────────────────────────
	users := repository.NewUserRepository(db)
	payments := repository.NewPaymentRepository(db)

	// ─── Handlers ────────────────────────────────────────────────────────
	authHandler := handlers.NewAuthHandler(cfg, users)
	booksHandler := handlers.NewBooksHandler(bookSearch)
	paymentsHandler := handlers.NewPaymentsHandler(payments, users, reports, email)
	adminHandler := handlers.NewAdminHandler(auditService)
	systemHandler := handlers.NewSystemHandler(db)

	// ─── Fiber App ───────────────────────────────────────────────────────
	app := fiber.New(fiber.Config{
		AppName:      "bookscope v" + handlers.Version,
		ServerHeader: "bookscope",
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			message := "Internal server error"
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
				message = e.Message
			}
			return c.Status(code).JSON(fiber.Map{
				"error":   true,
				"message": message,
			})
		},
	})

	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.FrontendURL,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET, POST, PUT, DELETE, PATCH, OPTIONS",
	}))

	app.Use(recover.New(recover.Config{
		EnableStackTrace: false,
	}))

	// Request logger
	app.Use(func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		if c.Path() == "/api/health" {
			return err
		}
		slog.Info("request",
			"method", c.Method(),
			"path", c.Path(),
			"status", c.Response().StatusCode(),
			"duration_ms", time.Since(start).Milliseconds(),
			"ip", c.IP(),
		)
		return err
	})

	// ─── Routes ──────────────────────────────────────────────────────────
	routes.Setup(app, cfg, authHandler, booksHandler, paymentsHandler, adminHandler, systemHandler)

	// ─── Graceful Shutdown ───────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		slog.Info("Shutting down Bookscope...")

		if err := app.Shutdown(); err != nil {
			slog.Error("Fiber shutdown error", "error", err)
		}

		if sqlDB, err := database.DB.DB(); err == nil {
			sqlDB.Close()
		}
	}()

	// ─── Start ───────────────────────────────────────────────────────────
	listenAddr := ":" + cfg.Port
	slog.Info("Bookscope listening", "addr", listenAddr)

	if err := app.Listen(listenAddr); err != nil {
		slog.Error("Server error", "error", err)
		os.Exit(1)
	}
}
