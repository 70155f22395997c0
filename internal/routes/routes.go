package routes

import (
	"github.com/bookscope/bookscope/internal/config"
	"github.com/bookscope/bookscope/internal/handlers"
	"github.com/bookscope/bookscope/internal/middleware"
	"github.com/gofiber/fiber/v2"
)

func Setup(
	app *fiber.App,
	cfg *config.Config,
	authHandler *handlers.AuthHandler,
	booksHandler *handlers.BooksHandler,
	paymentsHandler *handlers.PaymentsHandler,
	adminHandler *handlers.AdminHandler,
	systemHandler *handlers.SystemHandler,
) {
	// ─── Public ──────────────────────────────────────────────────────────
	app.Get("/api/health", systemHandler.Health)

	// ─── Auth ────────────────────────────────────────────────────────────
	app.Post("/api/auth/register", authHandler.Register)
	app.Post("/api/auth/login", authHandler.Login)
	app.Post("/api/auth/refresh", authHandler.Refresh)

	// ─── Protected routes ────────────────────────────────────────────────
	api := app.Group("/api", middleware.JWTProtected(cfg.JWTSecret))

	api.Get("/auth/me", authHandler.Me)

	// Books
	api.Post("/books/search", booksHandler.Search)

	// Payments
	api.Get("/payments/plans", paymentsHandler.Plans)
	api.Post("/payments/create-payment-intent", paymentsHandler.CreatePaymentIntent)
	api.Post("/payments/confirm-payment/:id", paymentsHandler.ConfirmPayment)
	api.Get("/payments/history", paymentsHandler.History)

	// Admin: audit trail first so the static segments win over :entity.
	admin := api.Group("/admin")
	admin.Get("/audit/recent", adminHandler.RecentLogs)
	admin.Get("/audit/users/:id", adminHandler.UserHistory)

	admin.Get("/:entity/deleted", adminHandler.ListDeleted)
	admin.Get("/:entity/counts", adminHandler.Counts)
	admin.Get("/:entity/:id/history", adminHandler.EntityHistory)
	admin.Get("/:entity/:id", adminHandler.GetActive)
	admin.Get("/:entity", adminHandler.ListActive)
	admin.Delete("/:entity/:id", adminHandler.SoftDelete)
	admin.Post("/:entity/:id/restore", adminHandler.Restore)
}
