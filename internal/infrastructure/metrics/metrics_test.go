package metrics

import (
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMiddleware_CuentaPorRuta(t *testing.T) {
	m := New()
	app := fiber.New()
	app.Use(m.Middleware())
	app.Get("/orders/:id", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusNoContent) })
	app.Get("/metrics", m.Handler())

	for _, id := range []string{"a", "b"} {
		resp, err := app.Test(httptest.NewRequest("GET", "/orders/"+id, nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)
	}
	assert.Equal(t, 2.0, testutil.ToFloat64(m.httpRequests.WithLabelValues("GET", "/orders/:id", "204")))

	resp, err := app.Test(httptest.NewRequest("GET", "/metrics", nil))
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	assert.True(t, strings.Contains(string(body), "mayorista_http_requests_total"))
}

func TestContadores(t *testing.T) {
	m := New()
	m.GenerationRecorded("generated")
	m.WebhookHandled("duplicate")
	m.EmailSent(false)
	m.JobRun("standing", errors.New("x"))
	m.Reconnected()

	assert.Equal(t, 1.0, testutil.ToFloat64(m.generations.WithLabelValues("generated")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.webhooks.WithLabelValues("duplicate")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.emails.WithLabelValues("failed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.jobs.WithLabelValues("standing", "error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.reconnects))
}
