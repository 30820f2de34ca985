package middleware

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type MockMetrics struct {
	mock.Mock
}

func (m *MockMetrics) RecordHTTPRequest(method, endpoint string, status int, d time.Duration) {
	m.Called(method, endpoint, status, d)
}

func TestRequestLogger(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	metrics := new(MockMetrics)
	metrics.On("RecordHTTPRequest", "GET", "/items/:id", fiber.StatusOK, mock.Anything).Return()
	metrics.On("RecordHTTPRequest", "GET", "/missing", fiber.StatusNotFound, mock.Anything).Return()
	metrics.On("RecordHTTPRequest", "POST", "/items/:id", fiber.StatusCreated, mock.Anything).Return()

	app := fiber.New()
	app.Use(RequestLogger(zap.New(core), metrics))
	app.Get("/items/:id", func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})
	app.Get("/missing", func(c *fiber.Ctx) error {
		return fiber.ErrNotFound
	})
	app.Post("/items/:id", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusCreated)
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/items/42", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest("GET", "/missing", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest("POST", "/items/1234567", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)

	// Values captured from earlier requests must survive buffer reuse.
	entries := logs.All()
	require.Len(t, entries, 3)
	assert.Equal(t, "request", entries[0].Message)
	assert.Equal(t, "/items/42", entries[0].ContextMap()["path"])
	assert.Equal(t, "GET", entries[0].ContextMap()["method"])
	assert.Equal(t, "request rejected", entries[1].Message)
	assert.Equal(t, "/missing", entries[1].ContextMap()["path"])
	assert.Equal(t, "POST", entries[2].ContextMap()["method"])

	require.Len(t, metrics.Calls, 3)
	assert.Equal(t, "GET", metrics.Calls[0].Arguments.String(0))
	assert.Equal(t, "GET", metrics.Calls[1].Arguments.String(0))
	metrics.AssertExpectations(t)
}
