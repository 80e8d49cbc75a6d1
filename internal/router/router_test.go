package router_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"buffet-backend/internal/apperror"
	"buffet-backend/internal/config"
	"buffet-backend/internal/database/dbtest"
	"buffet-backend/internal/metrics"
	"buffet-backend/internal/router"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type client struct {
	t     *testing.T
	app   *fiber.App
	token string
}

func newClient(t *testing.T) *client {
	t.Helper()
	cfg := &config.Config{
		JWTSecret:   "0123456789abcdef0123456789abcdef",
		CORSOrigins: "http://localhost:5173",
		Location:    time.UTC,
	}
	return &client{t: t, app: router.New(cfg, dbtest.New(t), metrics.New())}
}

func (c *client) do(method, path, body string, out any) int {
	c.t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	if c.token != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+c.token)
	}
	resp, err := c.app.Test(req, -1)
	require.NoError(c.t, err)
	if out != nil {
		require.NoError(c.t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func (c *client) login() {
	c.t.Helper()
	require.Equal(c.t, fiber.StatusCreated,
		c.do(http.MethodPost, "/api/auth/register", `{"username":"admin","password":"party-time-1","name":"Admin"}`, nil))

	var resp struct {
		Token string `json:"token"`
	}
	require.Equal(c.t, fiber.StatusOK,
		c.do(http.MethodPost, "/api/auth/login", `{"username":"admin","password":"party-time-1"}`, &resp))
	c.token = resp.Token
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	c := newClient(t)

	for _, path := range []string{"/api/stats", "/api/stats/financial", "/api/expenses/categories", "/api/inventory/low-stock", "/api/cashflow", "/api/inventory/movements"} {
		var body apperror.Response
		assert.Equal(t, fiber.StatusUnauthorized, c.do(http.MethodGet, path, "", &body), path)
		assert.Equal(t, "UNAUTHORIZED", body.Code)
		assert.NotEmpty(t, body.RequestID)
	}
	assert.Equal(t, fiber.StatusUnauthorized,
		c.do(http.MethodPost, "/api/inventory/movements", `{"inventoryId":"x","movementType":"in","quantity":1}`, nil))
}

func TestHealthAndMetricsArePublic(t *testing.T) {
	c := newClient(t)

	var health map[string]string
	require.Equal(t, fiber.StatusOK, c.do(http.MethodGet, "/health", "", &health))
	assert.Equal(t, "ok", health["status"])

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	resp, err := c.app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestLedgerFlowsIntoReports(t *testing.T) {
	c := newClient(t)
	c.login()

	var created struct {
		ID string `json:"id"`
	}
	require.Equal(t, fiber.StatusCreated, c.do(http.MethodPost, "/api/clients", `{"name":"Rita","email":"rita@example.com"}`, &created))
	clientID := created.ID

	require.Equal(t, fiber.StatusCreated, c.do(http.MethodPost, "/api/events",
		`{"childName":"Tom","age":8,"clientId":"`+clientID+`","eventDate":"2024-05-18","startTime":"14:00","endTime":"18:00","guestCount":35,"totalValue":2400}`, &created))
	eventID := created.ID

	require.Equal(t, fiber.StatusCreated, c.do(http.MethodPost, "/api/payments",
		`{"eventId":"`+eventID+`","amount":"1200.00","paymentMethod":"card","paymentDate":"2024-05-02"}`, nil))
	require.Equal(t, fiber.StatusCreated, c.do(http.MethodPost, "/api/expenses",
		`{"description":"Balloons","amount":"300.00","category":"Decoration","paymentMethod":"cash","expenseDate":"2024-05-03"}`, nil))
	require.Equal(t, fiber.StatusCreated, c.do(http.MethodPost, "/api/expenses",
		`{"description":"Cake deposit","amount":"100.00","category":"food","paymentMethod":"cash","expenseDate":"2024-05-04","status":"pending"}`, nil))

	var summary struct {
		ExpensesByCategory []struct {
			Category string `json:"category"`
		} `json:"expensesByCategory"`
	}
	require.Equal(t, fiber.StatusOK, c.do(http.MethodGet, "/api/stats/financial?startDate=2024-05-01&endDate=2024-05-31", "", &summary))
	require.Len(t, summary.ExpensesByCategory, 1)
	assert.Equal(t, "decoration", summary.ExpensesByCategory[0].Category)

	var entries []struct {
		Type          string `json:"type"`
		ReferenceType string `json:"referenceType"`
	}
	require.Equal(t, fiber.StatusOK, c.do(http.MethodGet, "/api/cashflow?startDate=2024-05-01&endDate=2024-05-31", "", &entries))
	require.Len(t, entries, 2)
	assert.Equal(t, "expense", entries[0].Type)
	assert.Equal(t, "income", entries[1].Type)
	assert.Equal(t, "payment", entries[1].ReferenceType)

	require.Equal(t, fiber.StatusCreated, c.do(http.MethodPost, "/api/inventory",
		`{"name":"Party hats","category":"decoration","unit":"pcs","minimumStock":20,"initialStock":10}`, &created))
	itemID := created.ID

	var low []struct {
		ID string `json:"id"`
	}
	require.Equal(t, fiber.StatusOK, c.do(http.MethodGet, "/api/inventory/low-stock", "", &low))
	require.Len(t, low, 1)
	assert.Equal(t, itemID, low[0].ID)

	require.Equal(t, fiber.StatusCreated, c.do(http.MethodPost, "/api/inventory/movements",
		`{"inventoryId":"`+itemID+`","movementType":"out","quantity":4,"eventId":"`+eventID+`","reason":"party"}`, nil))
	require.Equal(t, fiber.StatusConflict, c.do(http.MethodPost, "/api/inventory/movements",
		`{"inventoryId":"`+itemID+`","movementType":"out","quantity":7}`, nil))

	var item struct {
		CurrentStock int `json:"currentStock"`
	}
	require.Equal(t, fiber.StatusOK, c.do(http.MethodGet, "/api/inventory/"+itemID, "", &item))
	assert.Equal(t, 6, item.CurrentStock)

	var logs []struct {
		EntityType string `json:"entityType"`
		UserName   string `json:"userName"`
	}
	require.Equal(t, fiber.StatusOK, c.do(http.MethodGet, "/api/audit-logs?entityType=inventory_movement", "", &logs))
	require.Len(t, logs, 1)
	assert.Equal(t, "Admin", logs[0].UserName)
}

func TestDashboardListsAndManualEntries(t *testing.T) {
	c := newClient(t)
	c.login()

	var created struct {
		ID string `json:"id"`
	}
	require.Equal(t, fiber.StatusCreated, c.do(http.MethodPost, "/api/clients", `{"name":"Lia"}`, &created))
	clientID := created.ID

	for _, date := range []string{"2020-02-01", "2099-06-01"} {
		require.Equal(t, fiber.StatusCreated, c.do(http.MethodPost, "/api/events",
			`{"childName":"Noah","age":6,"clientId":"`+clientID+`","eventDate":"`+date+`","startTime":"10:00","endTime":"13:00","guestCount":20,"totalValue":900}`, &created))
	}
	futureID := created.ID

	var upcoming []struct {
		ID     string `json:"id"`
		Client struct {
			Name string `json:"name"`
		} `json:"client"`
	}
	require.Equal(t, fiber.StatusOK, c.do(http.MethodGet, "/api/events/upcoming", "", &upcoming))
	require.Len(t, upcoming, 1)
	assert.Equal(t, futureID, upcoming[0].ID)
	assert.Equal(t, "Lia", upcoming[0].Client.Name)
	assert.Equal(t, fiber.StatusBadRequest, c.do(http.MethodGet, "/api/events/upcoming?limit=abc", "", nil))

	require.Equal(t, fiber.StatusCreated, c.do(http.MethodPost, "/api/payments",
		`{"eventId":"`+futureID+`","amount":"450.00","paymentMethod":"cash","paymentDate":"2024-05-02"}`, nil))
	assert.Equal(t, fiber.StatusBadRequest, c.do(http.MethodPost, "/api/payments",
		`{"eventId":"`+futureID+`","amount":"0.004","paymentMethod":"cash"}`, nil))

	var recent []struct {
		Event struct {
			Client struct {
				Name string `json:"name"`
			} `json:"client"`
		} `json:"event"`
	}
	require.Equal(t, fiber.StatusOK, c.do(http.MethodGet, "/api/payments/recent?limit=5", "", &recent))
	require.Len(t, recent, 1)
	assert.Equal(t, "Lia", recent[0].Event.Client.Name)
	assert.Equal(t, fiber.StatusBadRequest, c.do(http.MethodGet, "/api/payments/recent?limit=500", "", nil))

	require.Equal(t, fiber.StatusCreated, c.do(http.MethodPost, "/api/cashflow",
		`{"type":"income","description":"Tip jar","amount":"35.00","category":"tips","paymentMethod":"cash","transactionDate":"2024-05-03"}`, &created))
	assert.Equal(t, fiber.StatusNoContent, c.do(http.MethodDelete, "/api/cashflow/"+created.ID, "", nil))
	assert.Equal(t, fiber.StatusNotFound, c.do(http.MethodDelete, "/api/cashflow/"+created.ID, "", nil))
}
