// Package router assembles the fiber application: middleware, engines and
// every route of the API.
package router

import (
	"strings"
	"time"

	"buffet-backend/internal/apperror"
	"buffet-backend/internal/audit"
	"buffet-backend/internal/auth"
	"buffet-backend/internal/cashflow"
	"buffet-backend/internal/clients"
	"buffet-backend/internal/config"
	"buffet-backend/internal/dashboard"
	"buffet-backend/internal/database"
	"buffet-backend/internal/expense"
	"buffet-backend/internal/inventory"
	"buffet-backend/internal/logging"
	"buffet-backend/internal/metrics"
	"buffet-backend/internal/models"
	"buffet-backend/internal/payment"
	"buffet-backend/internal/stats"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
)

func New(cfg *config.Config, store *database.Store, m *metrics.Metrics) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "buffet-backend",
		ErrorHandler: apperror.FiberErrorHandler,
	})

	corsOrigins := strings.Split(cfg.CORSOrigins, ",")
	for i := range corsOrigins {
		corsOrigins[i] = strings.TrimSpace(corsOrigins[i])
	}

	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(m.Middleware())
	app.Use(logging.RequestLogger(apperror.FiberErrorHandler))
	app.Use(cors.New(cors.Config{
		AllowOrigins: strings.Join(corsOrigins, ","),
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
	}))

	loc := cfg.Location
	auditWriter := audit.NewWriter(store)
	recorder := cashflow.NewRecorder(m)

	inv := inventory.NewEngine(store, auditWriter, m)
	st := stats.NewEngine(store, loc)
	cash := cashflow.NewService(store, recorder)
	expenses := expense.NewService(store, recorder)
	payments := payment.NewService(store, recorder)
	registry := clients.NewService(store).WithClock(func() time.Time { return time.Now().In(loc) })
	chart := dashboard.NewChart(store, loc)

	app.Get("/health", healthHandler(store))
	app.Get("/metrics", m.Handler())

	api := app.Group("/api")

	// Public auth
	api.Post("/auth/register", auth.RegisterHandler(store))
	api.Post("/auth/login", auth.LoginHandler(store, cfg))

	// Protected
	protected := api.Group("")
	protected.Use(auth.JWTMiddleware(cfg))

	protected.Get("/auth/me", auth.MeHandler(store))

	// Statistics
	protected.Get("/stats", stats.MonthlyStatsHandler(st))
	protected.Get("/stats/financial", stats.FinancialSummaryHandler(st))
	protected.Get("/dashboard/cash-chart", dashboard.CashChartHandler(chart))

	// Cash flow
	protected.Get("/cashflow", stats.CashFlowHandler(st))
	protected.Post("/cashflow", cashflow.CreateEntryHandler(cash, loc))
	protected.Delete("/cashflow/:id", cashflow.DeleteEntryHandler(cash))

	// Inventory; fixed paths before /:id
	protected.Get("/inventory/low-stock", stats.LowStockHandler(st))
	protected.Post("/inventory/movements", inventory.CreateMovementHandler(inv, loc))
	protected.Get("/inventory/movements", inventory.ListMovementsHandler(inv))
	protected.Post("/inventory", inventory.CreateItemHandler(inv, loc))
	protected.Get("/inventory", inventory.ListItemsHandler(inv))
	protected.Get("/inventory/:id", inventory.GetItemHandler(inv))
	protected.Put("/inventory/:id", inventory.UpdateItemHandler(inv, loc))
	protected.Delete("/inventory/:id", inventory.DeleteItemHandler(inv))

	// Expenses
	protected.Get("/expenses/categories", stats.ExpensesByCategoryHandler(st))
	protected.Post("/expenses", expense.CreateExpenseHandler(expenses, loc))
	protected.Get("/expenses", expense.ListExpensesHandler(expenses, loc))
	protected.Get("/expenses/:id", expense.GetExpenseHandler(expenses))
	protected.Put("/expenses/:id", expense.UpdateExpenseHandler(expenses, loc))
	protected.Delete("/expenses/:id", expense.DeleteExpenseHandler(expenses))

	// Payments
	protected.Post("/payments", payment.CreatePaymentHandler(payments, loc))
	protected.Get("/payments", payment.ListPaymentsHandler(payments))
	protected.Get("/payments/recent", payment.RecentPaymentsHandler(payments))
	protected.Get("/payments/:id", payment.GetPaymentHandler(payments))
	protected.Put("/payments/:id", payment.UpdatePaymentHandler(payments, loc))
	protected.Delete("/payments/:id", payment.DeletePaymentHandler(payments))

	// Clients & events
	protected.Post("/clients", clients.CreateClientHandler(registry))
	protected.Get("/clients", clients.ListClientsHandler(registry))
	protected.Get("/clients/:id", clients.GetClientHandler(registry))
	protected.Put("/clients/:id", clients.UpdateClientHandler(registry))
	protected.Delete("/clients/:id", clients.DeleteClientHandler(registry))

	protected.Post("/events", clients.CreateEventHandler(registry, loc))
	protected.Get("/events", clients.ListEventsHandler(registry, loc))
	protected.Get("/events/upcoming", clients.UpcomingEventsHandler(registry))
	protected.Get("/events/:id", clients.GetEventHandler(registry))
	protected.Put("/events/:id", clients.UpdateEventHandler(registry, loc))
	protected.Delete("/events/:id", clients.DeleteEventHandler(registry))

	// Audit trail
	protected.Get("/audit-logs", auth.RequireRole(models.RoleAdmin), audit.ListAuditLogsHandler(auditWriter))

	return app
}

// GET /health
func healthHandler(store *database.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := store.Ping(c.UserContext()); err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"status":   "unavailable",
				"database": "down",
			})
		}
		return c.JSON(fiber.Map{"status": "ok", "database": "up"})
	}
}
