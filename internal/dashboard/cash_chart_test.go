package dashboard

import (
	"context"
	"testing"
	"time"

	"buffet-backend/internal/apperror"
	"buffet-backend/internal/database/dbtest"
	"buffet-backend/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Wednesday
var now = time.Date(2024, 3, 13, 15, 0, 0, 0, time.UTC)

func TestCashChartDailyBuckets(t *testing.T) {
	store := dbtest.New(t)
	add := func(typ models.CashFlowType, amount string, at time.Time) {
		require.NoError(t, store.DB().Create(&models.CashFlowEntry{
			Type: typ, Description: "x", Amount: decimal.RequireFromString(amount),
			Category: "c", PaymentMethod: "cash", TransactionDate: at,
		}).Error)
	}
	add(models.CashFlowIncome, "100.00", time.Date(2024, 3, 13, 9, 0, 0, 0, time.UTC))
	add(models.CashFlowExpense, "30.50", time.Date(2024, 3, 13, 10, 0, 0, 0, time.UTC))
	add(models.CashFlowIncome, "20.00", time.Date(2024, 3, 7, 23, 59, 0, 0, time.UTC))
	add(models.CashFlowIncome, "999.00", time.Date(2024, 3, 6, 12, 0, 0, 0, time.UTC)) // outside

	ch := NewChart(store, time.UTC).WithClock(func() time.Time { return now })
	resp, err := ch.CashChart(context.Background(), PeriodDaily, 0)
	require.NoError(t, err)

	require.Len(t, resp.Points, 7)
	assert.Equal(t, "2024-03-07", resp.From)
	assert.Equal(t, "2024-03-13", resp.To)
	assert.Equal(t, "2024-03-07", resp.Points[0].Label)
	assert.True(t, resp.Points[0].Income.Equal(decimal.NewFromInt(20)))
	assert.True(t, resp.Points[3].Income.IsZero())

	last := resp.Points[6]
	assert.True(t, last.Income.Equal(decimal.NewFromInt(100)))
	assert.True(t, last.Expense.Equal(decimal.RequireFromString("30.50")))
	assert.True(t, last.Net.Equal(decimal.RequireFromString("69.50")))
	assert.True(t, resp.GrandTotals.Net.Equal(decimal.RequireFromString("89.50")))
}

func TestCashChartWeeklyAndMonthlyRanges(t *testing.T) {
	ch := NewChart(dbtest.New(t), time.UTC).WithClock(func() time.Time { return now })

	resp, err := ch.CashChart(context.Background(), PeriodWeekly, 2)
	require.NoError(t, err)
	assert.Equal(t, "2024-03-04", resp.From) // Monday of the previous week
	assert.Equal(t, "2024-03-17", resp.To)
	assert.Len(t, resp.Points, 2)

	resp, err = ch.CashChart(context.Background(), PeriodMonthly, 0)
	require.NoError(t, err)
	assert.Len(t, resp.Points, 12)
	assert.Equal(t, "2023-04-01", resp.From)
	assert.Equal(t, "2024-03-31", resp.To)

	_, err = ch.CashChart(context.Background(), "yearly", 1)
	assert.True(t, apperror.Is(err, apperror.KindValidation))
}
