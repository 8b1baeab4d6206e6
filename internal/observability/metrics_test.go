package observability

import (
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetricsIntegrationAndDispatchCollectors(t *testing.T) {
	t.Parallel()

	metrics := NewMetrics()

	metrics.ObserveIntegrationProbe("GitHub", "reachable", 120*time.Millisecond)
	metrics.IncDispatchRecipient("sent")
	metrics.AddDispatchRecipients("skipped", 3)
	metrics.ObserveDispatchSendDuration("sent", 40*time.Millisecond)
	metrics.IncDispatchInFlight()
	metrics.DecDispatchInFlight()
	metrics.IncSlugConflict("posts")

	if got := testutil.ToFloat64(metrics.integrationProbesTotal.WithLabelValues("github", "reachable")); got != 1 {
		t.Fatalf("integration_probes_total = %v, want 1", got)
	}
	if got := testutil.ToFloat64(metrics.dispatchRecipientsTotal.WithLabelValues("sent")); got != 1 {
		t.Fatalf("dispatch_recipients_total{sent} = %v, want 1", got)
	}
	if got := testutil.ToFloat64(metrics.dispatchRecipientsTotal.WithLabelValues("skipped")); got != 3 {
		t.Fatalf("dispatch_recipients_total{skipped} = %v, want 3", got)
	}
	if got := testutil.ToFloat64(metrics.dispatchInflight); got != 0 {
		t.Fatalf("dispatch_inflight = %v, want 0", got)
	}
	if got := testutil.ToFloat64(metrics.slugConflictsTotal.WithLabelValues("posts")); got != 1 {
		t.Fatalf("slug_conflicts_total = %v, want 1", got)
	}
}

func TestMetricsNilReceiverIsNoop(t *testing.T) {
	t.Parallel()

	var metrics *Metrics
	metrics.ObserveIntegrationProbe("github", "reachable", time.Second)
	metrics.IncDispatchRecipient("sent")
	metrics.IncDispatchInFlight()
	metrics.DecDispatchInFlight()
	metrics.IncSlugConflict("projects")
}

func TestMetricsHTTPMiddlewareRecordsRequest(t *testing.T) {
	t.Parallel()

	metrics := NewMetrics()
	app := fiber.New()
	app.Use(metrics.HTTPMiddleware())
	app.Get("/livez", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	req := httptest.NewRequest("GET", "/livez", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test() error = %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	if got := testutil.ToFloat64(metrics.httpRequestsTotal.WithLabelValues("GET", "/livez", "200")); got != 1 {
		t.Fatalf("http_requests_total = %v, want 1", got)
	}
}

func TestMetricsHTTPMiddlewareRecordsErrorStatus(t *testing.T) {
	t.Parallel()

	metrics := NewMetrics()
	app := fiber.New()
	app.Use(metrics.HTTPMiddleware())
	app.Get("/boom", func(c *fiber.Ctx) error {
		return errors.New("boom")
	})

	req := httptest.NewRequest("GET", "/boom", nil)
	_, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test() error = %v", err)
	}

	if got := testutil.ToFloat64(metrics.httpRequestsTotal.WithLabelValues("GET", "/boom", "500")); got != 1 {
		t.Fatalf("http_requests_total = %v, want 1", got)
	}
}
