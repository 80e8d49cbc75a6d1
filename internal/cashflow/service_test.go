package cashflow_test

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"buffet-backend/internal/apperror"
	"buffet-backend/internal/audit"
	"buffet-backend/internal/cashflow"
	"buffet-backend/internal/database"
	"buffet-backend/internal/database/dbtest"
	"buffet-backend/internal/metrics"
	"buffet-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newService(t *testing.T) (*cashflow.Service, *cashflow.Recorder, *database.Store) {
	t.Helper()
	store := dbtest.New(t)
	r := cashflow.NewRecorder(metrics.New())
	return cashflow.NewService(store, r), r, store
}

func manualInput(amount string) cashflow.ManualEntryInput {
	date := time.Date(2024, 3, 4, 10, 0, 0, 0, time.UTC)
	return cashflow.ManualEntryInput{
		Type:            models.CashFlowIncome,
		Description:     "Opening float",
		Amount:          decimal.RequireFromString(amount),
		Category:        "float",
		PaymentMethod:   "cash",
		TransactionDate: &date,
	}
}

func TestManualEntryIsAnAuditedAdjustment(t *testing.T) {
	svc, _, store := newService(t)
	ctx := audit.WithActor(context.Background(), audit.Actor{UserID: "u-1", UserName: "Admin"})

	entry, err := svc.CreateManual(ctx, manualInput("200.00"))
	require.NoError(t, err)
	require.NotNil(t, entry.ReferenceType)
	assert.Equal(t, models.ReferenceAdjustment, *entry.ReferenceType)
	assert.Nil(t, entry.ReferenceID)

	var stored models.CashFlowEntry
	require.NoError(t, store.DB().First(&stored, "id = ?", entry.ID).Error)
	assert.True(t, stored.Amount.Equal(decimal.NewFromInt(200)))

	var logs []models.AuditLog
	require.NoError(t, store.DB().Where("entity_type = ? AND entity_id = ?", "cash_flow", entry.ID).Find(&logs).Error)
	require.Len(t, logs, 1)
	assert.Equal(t, models.AuditActionCreate, logs[0].Action)
	assert.Equal(t, "u-1", logs[0].UserID)

	require.NoError(t, svc.DeleteManual(ctx, entry.ID))
	var n int64
	require.NoError(t, store.DB().Model(&models.CashFlowEntry{}).Count(&n).Error)
	assert.Zero(t, n)
}

func TestDeleteManualKeepsReferencedEntries(t *testing.T) {
	svc, r, store := newService(t)

	p := &models.Payment{
		ID:            "pay-1",
		Amount:        decimal.RequireFromString("350.00"),
		PaymentMethod: models.PaymentMethodCard,
		Status:        models.PaymentStatusCompleted,
		PaymentDate:   time.Date(2024, 3, 5, 12, 0, 0, 0, time.UTC),
	}
	entry, err := r.RecordPayment(store.DB(), p)
	require.NoError(t, err)
	require.NotNil(t, entry)

	err = svc.DeleteManual(context.Background(), entry.ID)
	assert.True(t, apperror.Is(err, apperror.KindValidation))

	var n int64
	require.NoError(t, store.DB().Model(&models.CashFlowEntry{}).Where("id = ?", entry.ID).Count(&n).Error)
	assert.EqualValues(t, 1, n)
}

func TestDeleteManualUnknownEntry(t *testing.T) {
	svc, _, _ := newService(t)

	err := svc.DeleteManual(context.Background(), "missing")
	assert.True(t, apperror.Is(err, apperror.KindNotFound))
}

func TestRecordRejectsFractionalCents(t *testing.T) {
	svc, _, store := newService(t)
	ctx := context.Background()

	for _, amount := range []string{"0.004", "10.005"} {
		_, err := svc.CreateManual(ctx, manualInput(amount))
		assert.True(t, apperror.Is(err, apperror.KindValidation), amount)
	}

	var n int64
	require.NoError(t, store.DB().Model(&models.CashFlowEntry{}).Count(&n).Error)
	assert.Zero(t, n)

	_, err := svc.CreateManual(ctx, manualInput("10.500"))
	assert.NoError(t, err)
}

func TestManualEntryEndpoints(t *testing.T) {
	svc, _, _ := newService(t)
	app := fiber.New(fiber.Config{ErrorHandler: apperror.FiberErrorHandler})
	app.Post("/api/cashflow", cashflow.CreateEntryHandler(svc, time.UTC))
	app.Delete("/api/cashflow/:id", cashflow.DeleteEntryHandler(svc))

	post := func(body string) (int, models.CashFlowEntry) {
		req := httptest.NewRequest("POST", "/api/cashflow", strings.NewReader(body))
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		defer resp.Body.Close()
		var entry models.CashFlowEntry
		if resp.StatusCode == fiber.StatusCreated {
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&entry))
		}
		return resp.StatusCode, entry
	}

	status, entry := post(`{"type":"expense","description":"Till shortfall","amount":"12.50","category":"adjustment","paymentMethod":"cash","transactionDate":"2024-03-06"}`)
	require.Equal(t, fiber.StatusCreated, status)
	assert.Equal(t, models.CashFlowExpense, entry.Type)
	assert.Equal(t, "2024-03-06", entry.TransactionDate.Format("2006-01-02"))

	status, _ = post(`{"type":"expense","description":"Till shortfall","amount":"12.505","category":"adjustment","paymentMethod":"cash"}`)
	assert.Equal(t, fiber.StatusBadRequest, status)

	status, _ = post(`{"type":"transfer","description":"x","amount":"1","category":"x","paymentMethod":"cash"}`)
	assert.Equal(t, fiber.StatusBadRequest, status)

	resp, err := app.Test(httptest.NewRequest("DELETE", "/api/cashflow/"+entry.ID, nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest("DELETE", "/api/cashflow/"+entry.ID, nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}
