package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func captureLog(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := log.Logger
	log.Logger = zerolog.New(&buf)
	t.Cleanup(func() { log.Logger = prev })
	return &buf
}

func TestRequestLoggerUsesHandledStatus(t *testing.T) {
	buf := captureLog(t)

	app := fiber.New()
	app.Use(requestid.New())
	app.Use(RequestLogger(func(c *fiber.Ctx, err error) error {
		return c.Status(fiber.StatusConflict).SendString(err.Error())
	}))
	app.Get("/boom", func(c *fiber.Ctx) error { return errors.New("not enough stock") })

	resp, err := app.Test(httptest.NewRequest("GET", "/boom", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "warn", line["level"])
	assert.Equal(t, "GET", line["method"])
	assert.Equal(t, "/boom", line["path"])
	assert.EqualValues(t, 409, line["status"])
	assert.NotEmpty(t, line["request_id"])
}

func TestInitFallsBackToInfo(t *testing.T) {
	prevLevel, prevLogger := zerolog.GlobalLevel(), log.Logger
	t.Cleanup(func() {
		zerolog.SetGlobalLevel(prevLevel)
		log.Logger = prevLogger
	})

	Init("development", "nonsense")
	assert.Equal(t, zerolog.InfoLevel, zerolog.GlobalLevel())

	Init("development", "debug")
	assert.Equal(t, zerolog.DebugLevel, zerolog.GlobalLevel())
}
