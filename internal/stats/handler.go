package stats

import (
	"time"

	"buffet-backend/internal/httpx"

	"github.com/gofiber/fiber/v2"
)

// GET /api/stats
func MonthlyStatsHandler(e *Engine) fiber.Handler {
	return func(c *fiber.Ctx) error {
		s, err := e.MonthlyStats(c.UserContext())
		if err != nil {
			return err
		}
		return c.JSON(s)
	}
}

// -------------------------------------------------
// GET /api/stats/financial?startDate=2024-01-01&endDate=2024-03-31
// Defaults: Jan 1 of the current year through today.
// -------------------------------------------------
func FinancialSummaryHandler(e *Engine) fiber.Handler {
	return func(c *fiber.Ctx) error {
		now := e.Now()
		start := time.Date(now.Year(), 1, 1, 0, 0, 0, 0, e.Location())
		end := now

		if d, err := httpx.QueryDate(c, "startDate", e.Location()); err != nil {
			return err
		} else if d != nil {
			start = *d
		}
		if d, err := httpx.QueryDate(c, "endDate", e.Location()); err != nil {
			return err
		} else if d != nil {
			end = *d
		}

		summary, err := e.FinancialSummary(c.UserContext(), start, end)
		if err != nil {
			return err
		}
		return c.JSON(summary)
	}
}

// GET /api/expenses/categories
func ExpensesByCategoryHandler(e *Engine) fiber.Handler {
	return func(c *fiber.Ctx) error {
		rows, err := e.ExpensesByCategory(c.UserContext())
		if err != nil {
			return err
		}
		return c.JSON(rows)
	}
}

// GET /api/inventory/low-stock
func LowStockHandler(e *Engine) fiber.Handler {
	return func(c *fiber.Ctx) error {
		items, err := e.LowStockItems(c.UserContext())
		if err != nil {
			return err
		}
		return c.JSON(items)
	}
}

// GET /api/cashflow?startDate=&endDate=
func CashFlowHandler(e *Engine) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start, err := httpx.QueryDate(c, "startDate", e.Location())
		if err != nil {
			return err
		}
		end, err := httpx.QueryDate(c, "endDate", e.Location())
		if err != nil {
			return err
		}

		entries, err := e.CashFlow(c.UserContext(), start, end)
		if err != nil {
			return err
		}
		return c.JSON(entries)
	}
}
