// Package stats computes the dashboard and financial aggregates. Every call
// reads the ledger live; nothing is cached.
package stats

import (
	"context"
	"sort"
	"time"

	"buffet-backend/internal/apperror"
	"buffet-backend/internal/database"
	"buffet-backend/internal/models"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

type MonthlyStats struct {
	MonthlyRevenue      decimal.Decimal `json:"monthlyRevenue"`
	MonthlyExpenses     decimal.Decimal `json:"monthlyExpenses"`
	MonthlyProfit       decimal.Decimal `json:"monthlyProfit"`
	EventsCount         int64           `json:"eventsCount"`
	ActiveClients       int64           `json:"activeClients"`
	PendingPayments     decimal.Decimal `json:"pendingPayments"`
	LowStockItemsCount  int64           `json:"lowStockItemsCount"`
	TotalInventoryValue decimal.Decimal `json:"totalInventoryValue"`
}

type CategoryTotal struct {
	Category string          `json:"category"`
	Total    decimal.Decimal `json:"total"`
}

type MonthRevenue struct {
	Month   string          `json:"month"` // YYYY-MM
	Revenue decimal.Decimal `json:"revenue"`
}

type FinancialSummary struct {
	TotalRevenue       decimal.Decimal `json:"totalRevenue"`
	TotalExpenses      decimal.Decimal `json:"totalExpenses"`
	NetProfit          decimal.Decimal `json:"netProfit"`
	ProfitMargin       decimal.Decimal `json:"profitMargin"`
	ExpensesByCategory []CategoryTotal `json:"expensesByCategory"`
	RevenueByMonth     []MonthRevenue  `json:"revenueByMonth"`
}

type Engine struct {
	store *database.Store
	loc   *time.Location
	now   func() time.Time
}

// NewEngine builds an engine whose calendar boundaries (month, year, day)
// are computed in loc.
func NewEngine(store *database.Store, loc *time.Location) *Engine {
	if loc == nil {
		loc = time.Local
	}
	return &Engine{store: store, loc: loc, now: time.Now}
}

func (e *Engine) WithClock(now func() time.Time) *Engine {
	e.now = now
	return e
}

// Now is the current time in the engine's location.
func (e *Engine) Now() time.Time { return e.now().In(e.loc) }

func (e *Engine) Location() *time.Location { return e.loc }

func (e *Engine) startOfDay(t time.Time) time.Time {
	t = t.In(e.loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, e.loc)
}

type sumRow struct {
	Total decimal.Decimal
}

// sum evaluates COALESCE(SUM(expr), 0) over q, rounded to cents.
func sum(q *gorm.DB, expr string) (decimal.Decimal, error) {
	var row sumRow
	if err := q.Select("COALESCE(SUM(" + expr + "), 0) AS total").Scan(&row).Error; err != nil {
		return decimal.Zero, err
	}
	return row.Total.Round(2), nil
}

// MonthlyStats reports the current calendar month. pendingPayments is a
// running total over all time.
func (e *Engine) MonthlyStats(ctx context.Context) (*MonthlyStats, error) {
	now := e.Now()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, e.loc)
	monthEnd := monthStart.AddDate(0, 1, 0)
	yearStart := time.Date(now.Year(), 1, 1, 0, 0, 0, 0, e.loc)
	yearEnd := yearStart.AddDate(1, 0, 0)

	var out MonthlyStats
	g, gctx := errgroup.WithContext(ctx)

	query := func(fn func(db *gorm.DB) error) {
		g.Go(func() error {
			db, cancel := e.store.Conn(gctx)
			defer cancel()
			return fn(db)
		})
	}

	query(func(db *gorm.DB) (err error) {
		out.MonthlyRevenue, err = sum(db.Model(&models.Payment{}).
			Where("status = ? AND payment_date >= ? AND payment_date < ?", models.PaymentStatusCompleted, monthStart, monthEnd),
			"amount")
		return err
	})
	query(func(db *gorm.DB) (err error) {
		out.MonthlyExpenses, err = sum(db.Model(&models.Expense{}).
			Where("status = ? AND expense_date >= ? AND expense_date < ?", models.ExpenseStatusPaid, monthStart, monthEnd),
			"amount")
		return err
	})
	query(func(db *gorm.DB) error {
		return db.Model(&models.Event{}).
			Where("event_date >= ? AND event_date < ?", monthStart, monthEnd).
			Count(&out.EventsCount).Error
	})
	query(func(db *gorm.DB) error {
		return db.Model(&models.Event{}).
			Where("event_date >= ? AND event_date < ?", yearStart, yearEnd).
			Distinct("client_id").
			Count(&out.ActiveClients).Error
	})
	query(func(db *gorm.DB) (err error) {
		out.PendingPayments, err = sum(db.Model(&models.Payment{}).
			Where("status = ?", models.PaymentStatusPending),
			"amount")
		return err
	})
	query(func(db *gorm.DB) error {
		return db.Model(&models.InventoryItem{}).
			Where("current_stock <= minimum_stock").
			Count(&out.LowStockItemsCount).Error
	})
	query(func(db *gorm.DB) (err error) {
		out.TotalInventoryValue, err = sum(db.Model(&models.InventoryItem{}),
			"current_stock * COALESCE(unit_cost, 0)")
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, apperror.FromDB(err, "")
	}
	out.MonthlyProfit = out.MonthlyRevenue.Sub(out.MonthlyExpenses)
	return &out, nil
}

// FinancialSummary covers both calendar days start and end in full.
func (e *Engine) FinancialSummary(ctx context.Context, start, end time.Time) (*FinancialSummary, error) {
	from := e.startOfDay(start)
	to := e.startOfDay(end).AddDate(0, 0, 1)
	if !from.Before(to) {
		return nil, apperror.Validation("startDate must not be after endDate")
	}

	out := FinancialSummary{
		ExpensesByCategory: []CategoryTotal{},
		RevenueByMonth:     []MonthRevenue{},
	}
	g, gctx := errgroup.WithContext(ctx)

	payments := func(db *gorm.DB) *gorm.DB {
		return db.Model(&models.Payment{}).
			Where("status = ? AND payment_date >= ? AND payment_date < ?", models.PaymentStatusCompleted, from, to)
	}
	expenses := func(db *gorm.DB) *gorm.DB {
		return db.Model(&models.Expense{}).
			Where("status = ? AND expense_date >= ? AND expense_date < ?", models.ExpenseStatusPaid, from, to)
	}
	query := func(fn func(db *gorm.DB) error) {
		g.Go(func() error {
			db, cancel := e.store.Conn(gctx)
			defer cancel()
			return fn(db)
		})
	}

	query(func(db *gorm.DB) (err error) {
		out.TotalRevenue, err = sum(payments(db), "amount")
		return err
	})
	query(func(db *gorm.DB) (err error) {
		out.TotalExpenses, err = sum(expenses(db), "amount")
		return err
	})
	query(func(db *gorm.DB) (err error) {
		out.ExpensesByCategory, err = categoryTotals(expenses(db))
		return err
	})
	query(func(db *gorm.DB) (err error) {
		out.RevenueByMonth, err = e.revenueByMonth(payments(db))
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, apperror.FromDB(err, "")
	}

	out.NetProfit = out.TotalRevenue.Sub(out.TotalExpenses)
	out.ProfitMargin = decimal.Zero
	if !out.TotalRevenue.IsZero() {
		out.ProfitMargin = out.NetProfit.Div(out.TotalRevenue).Mul(decimal.NewFromInt(100)).Round(2)
	}
	return &out, nil
}

func categoryTotals(q *gorm.DB) ([]CategoryTotal, error) {
	rows := []CategoryTotal{}
	err := q.Select("category, COALESCE(SUM(amount), 0) AS total").
		Group("category").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for i := range rows {
		rows[i].Total = rows[i].Total.Round(2)
	}
	sort.SliceStable(rows, func(i, j int) bool {
		if c := rows[i].Total.Cmp(rows[j].Total); c != 0 {
			return c > 0
		}
		return rows[i].Category < rows[j].Category
	})
	return rows, nil
}

type paymentRow struct {
	PaymentDate time.Time
	Amount      decimal.Decimal
}

// revenueByMonth buckets payments by calendar month in the engine's
// location, oldest month first.
func (e *Engine) revenueByMonth(q *gorm.DB) ([]MonthRevenue, error) {
	var rows []paymentRow
	if err := q.Select("payment_date, amount").Scan(&rows).Error; err != nil {
		return nil, err
	}

	totals := map[string]decimal.Decimal{}
	for _, r := range rows {
		key := r.PaymentDate.In(e.loc).Format("2006-01")
		totals[key] = totals[key].Add(r.Amount)
	}

	out := make([]MonthRevenue, 0, len(totals))
	for month, total := range totals {
		out = append(out, MonthRevenue{Month: month, Revenue: total.Round(2)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Month < out[j].Month })
	return out, nil
}

// ExpensesByCategory sums paid expenses per category over all time.
func (e *Engine) ExpensesByCategory(ctx context.Context) ([]CategoryTotal, error) {
	db, cancel := e.store.Conn(ctx)
	defer cancel()

	rows, err := categoryTotals(db.Model(&models.Expense{}).Where("status = ?", models.ExpenseStatusPaid))
	if err != nil {
		return nil, apperror.FromDB(err, "")
	}
	return rows, nil
}

func (e *Engine) LowStockItems(ctx context.Context) ([]models.InventoryItem, error) {
	db, cancel := e.store.Conn(ctx)
	defer cancel()

	items := []models.InventoryItem{}
	err := db.Where("current_stock <= minimum_stock").
		Order("name ASC").
		Find(&items).Error
	if err != nil {
		return nil, apperror.FromDB(err, "")
	}
	return items, nil
}

// CashFlow lists ledger entries newest first. Either bound may be nil; end
// includes its whole calendar day.
func (e *Engine) CashFlow(ctx context.Context, start, end *time.Time) ([]models.CashFlowEntry, error) {
	if start != nil && end != nil && e.startOfDay(*start).After(e.startOfDay(*end)) {
		return nil, apperror.Validation("startDate must not be after endDate")
	}

	db, cancel := e.store.Conn(ctx)
	defer cancel()

	q := db.Model(&models.CashFlowEntry{})
	if start != nil {
		q = q.Where("transaction_date >= ?", e.startOfDay(*start))
	}
	if end != nil {
		q = q.Where("transaction_date < ?", e.startOfDay(*end).AddDate(0, 0, 1))
	}

	entries := []models.CashFlowEntry{}
	if err := q.Order("transaction_date DESC").Find(&entries).Error; err != nil {
		return nil, apperror.FromDB(err, "")
	}
	return entries, nil
}
