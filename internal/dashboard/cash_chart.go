package dashboard

import (
	"context"
	"time"

	"buffet-backend/internal/apperror"
	"buffet-backend/internal/database"
	"buffet-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

type Period string

const (
	PeriodDaily   Period = "daily"
	PeriodWeekly  Period = "weekly"
	PeriodMonthly Period = "monthly"
)

const maxCount = 366

// DefaultCount is the number of buckets shown when none is requested.
func (p Period) DefaultCount() int {
	switch p {
	case PeriodWeekly:
		return 8
	case PeriodMonthly:
		return 12
	}
	return 7
}

type CashChartPoint struct {
	Label   string          `json:"label"` // first day of the bucket
	Income  decimal.Decimal `json:"income"`
	Expense decimal.Decimal `json:"expense"`
	Net     decimal.Decimal `json:"net"`
}

type CashChartTotals struct {
	Income  decimal.Decimal `json:"income"`
	Expense decimal.Decimal `json:"expense"`
	Net     decimal.Decimal `json:"net"`
}

type CashChartResponse struct {
	Period      Period           `json:"period"`
	From        string           `json:"from"`
	To          string           `json:"to"` // last day included
	Points      []CashChartPoint `json:"points"`
	GrandTotals CashChartTotals  `json:"grandTotals"`
}

type Chart struct {
	store *database.Store
	loc   *time.Location
	now   func() time.Time
}

func NewChart(store *database.Store, loc *time.Location) *Chart {
	if loc == nil {
		loc = time.Local
	}
	return &Chart{store: store, loc: loc, now: time.Now}
}

func (ch *Chart) WithClock(now func() time.Time) *Chart {
	ch.now = now
	return ch
}

// bucketStart truncates t to the start of its day, ISO week (Monday) or
// month.
func (ch *Chart) bucketStart(p Period, t time.Time) time.Time {
	t = t.In(ch.loc)
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, ch.loc)
	switch p {
	case PeriodWeekly:
		offset := (int(day.Weekday()) + 6) % 7
		return day.AddDate(0, 0, -offset)
	case PeriodMonthly:
		return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, ch.loc)
	}
	return day
}

func step(p Period, t time.Time, n int) time.Time {
	switch p {
	case PeriodWeekly:
		return t.AddDate(0, 0, 7*n)
	case PeriodMonthly:
		return t.AddDate(0, n, 0)
	}
	return t.AddDate(0, 0, n)
}

// CashChart buckets the cash-flow ledger into count periods ending with the
// current one. Empty buckets are included with zero totals.
func (ch *Chart) CashChart(ctx context.Context, p Period, count int) (*CashChartResponse, error) {
	switch p {
	case PeriodDaily, PeriodWeekly, PeriodMonthly:
	default:
		return nil, apperror.Validation("period must be one of daily, weekly, monthly")
	}
	if count == 0 {
		count = p.DefaultCount()
	}
	if count < 0 || count > maxCount {
		return nil, apperror.Validation("count must be between 1 and %d", maxCount)
	}

	current := ch.bucketStart(p, ch.now())
	start := step(p, current, -(count - 1))
	end := step(p, current, 1)

	db, cancel := ch.store.Conn(ctx)
	defer cancel()

	var entries []models.CashFlowEntry
	err := db.Select("type", "amount", "transaction_date").
		Where("transaction_date >= ? AND transaction_date < ?", start, end).
		Find(&entries).Error
	if err != nil {
		return nil, apperror.FromDB(err, "")
	}

	points := make([]CashChartPoint, count)
	index := make(map[time.Time]int, count)
	for i, b := 0, start; i < count; i, b = i+1, step(p, b, 1) {
		points[i] = CashChartPoint{Label: b.Format("2006-01-02")}
		index[b] = i
	}

	var grand CashChartTotals
	for _, e := range entries {
		i, ok := index[ch.bucketStart(p, e.TransactionDate)]
		if !ok {
			continue
		}
		switch e.Type {
		case models.CashFlowIncome:
			points[i].Income = points[i].Income.Add(e.Amount)
			grand.Income = grand.Income.Add(e.Amount)
		case models.CashFlowExpense:
			points[i].Expense = points[i].Expense.Add(e.Amount)
			grand.Expense = grand.Expense.Add(e.Amount)
		}
	}
	for i := range points {
		points[i].Income = points[i].Income.Round(2)
		points[i].Expense = points[i].Expense.Round(2)
		points[i].Net = points[i].Income.Sub(points[i].Expense)
	}
	grand.Income = grand.Income.Round(2)
	grand.Expense = grand.Expense.Round(2)
	grand.Net = grand.Income.Sub(grand.Expense)

	return &CashChartResponse{
		Period:      p,
		From:        start.Format("2006-01-02"),
		To:          end.AddDate(0, 0, -1).Format("2006-01-02"),
		Points:      points,
		GrandTotals: grand,
	}, nil
}

// GET /api/dashboard/cash-chart?period=daily&count=7
func CashChartHandler(ch *Chart) fiber.Handler {
	return func(c *fiber.Ctx) error {
		period := Period(c.Query("period", string(PeriodDaily)))
		count := c.QueryInt("count", 0)
		if c.Query("count") != "" && count <= 0 {
			return apperror.Validation("count must be a positive integer")
		}

		resp, err := ch.CashChart(c.UserContext(), period, count)
		if err != nil {
			return err
		}
		return c.JSON(resp)
	}
}
