package httpx

import (
	"net/http/httptest"
	"testing"
	"time"

	"buffet-backend/internal/apperror"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Name   string          `json:"name" validate:"required"`
	Amount decimal.Decimal `json:"amount" validate:"gt=0"`
	Kind   string          `json:"kind" validate:"oneof=in out"`
}

func TestValidateReportsJSONFieldNames(t *testing.T) {
	err := Validate(&sample{Amount: decimal.Zero, Kind: "sideways"})
	require.Error(t, err)
	assert.True(t, apperror.Is(err, apperror.KindValidation))
	assert.Contains(t, err.Error(), "name is required")
	assert.Contains(t, err.Error(), "amount must be greater than 0")
	assert.Contains(t, err.Error(), "kind must be one of [in out]")
}

func TestValidateAcceptsDecimal(t *testing.T) {
	err := Validate(&sample{Name: "x", Amount: decimal.RequireFromString("0.01"), Kind: "in"})
	assert.NoError(t, err)
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2024-03-05", time.UTC)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC), d)

	d, err = ParseDate("2024-03-05T10:30:00Z", time.UTC)
	require.NoError(t, err)
	assert.Equal(t, 10, d.Hour())

	_, err = ParseDate("05/03/2024", time.UTC)
	assert.True(t, apperror.Is(err, apperror.KindValidation))
}

func TestQueryLimit(t *testing.T) {
	app := fiber.New(fiber.Config{ErrorHandler: apperror.FiberErrorHandler})
	app.Get("/", func(c *fiber.Ctx) error {
		n, err := QueryLimit(c)
		if err != nil {
			return err
		}
		return c.JSON(n)
	})

	cases := map[string]int{"/": 200, "/?limit=5": 200, "/?limit=0": 400, "/?limit=-2": 400, "/?limit=ten": 400}
	for path, status := range cases {
		resp, err := app.Test(httptest.NewRequest("GET", path, nil))
		require.NoError(t, err)
		assert.Equal(t, status, resp.StatusCode, path)
	}
}
