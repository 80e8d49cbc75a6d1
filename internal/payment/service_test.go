package payment_test

import (
	"context"
	"testing"
	"time"

	"buffet-backend/internal/apperror"
	"buffet-backend/internal/audit"
	"buffet-backend/internal/cashflow"
	"buffet-backend/internal/database"
	"buffet-backend/internal/database/dbtest"
	"buffet-backend/internal/metrics"
	"buffet-backend/internal/models"
	"buffet-backend/internal/payment"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedEvent(t *testing.T, store *database.Store) string {
	t.Helper()
	client := models.Client{Name: "Joana"}
	require.NoError(t, store.DB().Create(&client).Error)
	ev := models.Event{
		ChildName: "Pedro", Age: 5, ClientID: client.ID,
		EventDate: time.Date(2024, 2, 10, 0, 0, 0, 0, time.UTC),
		StartTime: "16:00", EndTime: "20:00", GuestCount: 40,
		TotalValue: decimal.NewFromInt(2500), Status: models.EventStatusConfirmed,
	}
	require.NoError(t, store.DB().Create(&ev).Error)
	return ev.ID
}

func incomeFor(t *testing.T, store *database.Store, id string) []models.CashFlowEntry {
	t.Helper()
	var entries []models.CashFlowEntry
	require.NoError(t, store.DB().
		Where("reference_type = ? AND reference_id = ?", models.ReferencePayment, id).
		Find(&entries).Error)
	return entries
}

func TestCompletedPaymentBooksIncome(t *testing.T) {
	store := dbtest.New(t)
	svc := payment.NewService(store, cashflow.NewRecorder(metrics.New()))
	eventID := seedEvent(t, store)
	ctx := audit.WithActor(context.Background(), audit.Actor{UserID: "u-9", UserName: "Admin"})
	paid := time.Date(2024, 1, 15, 14, 0, 0, 0, time.UTC)

	p, err := svc.Create(ctx, payment.Input{
		EventID: eventID, Amount: decimal.RequireFromString("500.00"),
		PaymentMethod: models.PaymentMethodTransfer, PaymentDate: &paid,
	})
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusCompleted, p.Status)

	entries := incomeFor(t, store, p.ID)
	require.Len(t, entries, 1)
	assert.Equal(t, models.CashFlowIncome, entries[0].Type)
	assert.Equal(t, cashflow.CategoryEventPayment, entries[0].Category)
	assert.Equal(t, "transfer", entries[0].PaymentMethod)

	_, err = svc.Update(ctx, p.ID, payment.Input{
		EventID: eventID, Amount: decimal.RequireFromString("500.00"),
		PaymentMethod: models.PaymentMethodTransfer, Status: models.PaymentStatusFailed,
	})
	require.NoError(t, err)
	assert.Empty(t, incomeFor(t, store, p.ID))

	require.NoError(t, svc.Delete(ctx, p.ID))

	var logs []models.AuditLog
	require.NoError(t, store.DB().Where("entity_type = ? AND entity_id = ?", "payment", p.ID).Find(&logs).Error)
	require.Len(t, logs, 1)
	assert.Equal(t, "u-9", logs[0].UserID)
}

func TestPendingPaymentBooksNothing(t *testing.T) {
	store := dbtest.New(t)
	svc := payment.NewService(store, cashflow.NewRecorder(nil))
	eventID := seedEvent(t, store)

	p, err := svc.Create(context.Background(), payment.Input{
		EventID: eventID, Amount: decimal.NewFromInt(300),
		PaymentMethod: models.PaymentMethodInstallment, Status: models.PaymentStatusPending,
	})
	require.NoError(t, err)
	assert.Empty(t, incomeFor(t, store, p.ID))

	list, err := svc.List(context.Background(), eventID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.NotNil(t, list[0].Event)
	require.NotNil(t, list[0].Event.Client)
	assert.Equal(t, "Joana", list[0].Event.Client.Name)
}

func TestPaymentValidation(t *testing.T) {
	store := dbtest.New(t)
	svc := payment.NewService(store, cashflow.NewRecorder(nil))
	eventID := seedEvent(t, store)
	ctx := context.Background()

	_, err := svc.Create(ctx, payment.Input{EventID: "missing", Amount: decimal.NewFromInt(1), PaymentMethod: models.PaymentMethodCash})
	assert.True(t, apperror.Is(err, apperror.KindNotFound))

	_, err = svc.Create(ctx, payment.Input{EventID: eventID, Amount: decimal.NewFromInt(-5), PaymentMethod: models.PaymentMethodCash})
	assert.True(t, apperror.Is(err, apperror.KindValidation))

	_, err = svc.Create(ctx, payment.Input{EventID: eventID, Amount: decimal.NewFromInt(5), PaymentMethod: "crypto"})
	assert.True(t, apperror.Is(err, apperror.KindValidation))

	err = svc.Delete(ctx, "missing")
	assert.True(t, apperror.Is(err, apperror.KindNotFound))
}

func TestPaymentAmountMustFitCents(t *testing.T) {
	store := dbtest.New(t)
	svc := payment.NewService(store, cashflow.NewRecorder(nil))
	eventID := seedEvent(t, store)
	ctx := context.Background()

	for _, amount := range []string{"0.004", "10.005"} {
		_, err := svc.Create(ctx, payment.Input{
			EventID: eventID, Amount: decimal.RequireFromString(amount), PaymentMethod: models.PaymentMethodCash,
		})
		assert.True(t, apperror.Is(err, apperror.KindValidation), amount)
	}
	var n int64
	require.NoError(t, store.DB().Model(&models.Payment{}).Count(&n).Error)
	assert.Zero(t, n)

	p, err := svc.Create(ctx, payment.Input{
		EventID: eventID, Amount: decimal.RequireFromString("10.50"), PaymentMethod: models.PaymentMethodCash,
	})
	require.NoError(t, err)

	_, err = svc.Update(ctx, p.ID, payment.Input{
		EventID: eventID, Amount: decimal.RequireFromString("10.555"), PaymentMethod: models.PaymentMethodCash,
	})
	assert.True(t, apperror.Is(err, apperror.KindValidation))
}

func TestRecentPayments(t *testing.T) {
	store := dbtest.New(t)
	svc := payment.NewService(store, cashflow.NewRecorder(nil))
	eventID := seedEvent(t, store)
	ctx := context.Background()

	for day := 1; day <= 3; day++ {
		paid := time.Date(2024, 1, day, 10, 0, 0, 0, time.UTC)
		_, err := svc.Create(ctx, payment.Input{
			EventID: eventID, Amount: decimal.NewFromInt(int64(100 * day)),
			PaymentMethod: models.PaymentMethodCash, PaymentDate: &paid,
		})
		require.NoError(t, err)
	}

	recent, err := svc.Recent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, 3, recent[0].PaymentDate.UTC().Day())
	assert.Equal(t, 2, recent[1].PaymentDate.UTC().Day())
	require.NotNil(t, recent[0].Event)
	require.NotNil(t, recent[0].Event.Client)
	assert.Equal(t, "Joana", recent[0].Event.Client.Name)

	all, err := svc.Recent(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	_, err = svc.Recent(ctx, 101)
	assert.True(t, apperror.Is(err, apperror.KindValidation))
}
