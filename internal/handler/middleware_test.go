package handler

import (
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/kursadbilgin/folio-engine/internal/observability"
)

func TestAdminAuth(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		header     string
		wantStatus int
	}{
		{name: "missing header", header: "", wantStatus: fiber.StatusUnauthorized},
		{name: "wrong scheme", header: "Basic " + testAdminToken, wantStatus: fiber.StatusUnauthorized},
		{name: "wrong token", header: "Bearer nope", wantStatus: fiber.StatusUnauthorized},
		{name: "empty token", header: "Bearer   ", wantStatus: fiber.StatusUnauthorized},
		{name: "valid token", header: "Bearer " + testAdminToken, wantStatus: fiber.StatusOK},
		{name: "case-insensitive scheme", header: "bearer " + testAdminToken, wantStatus: fiber.StatusOK},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			r := newTestApp(t)
			r.admin.Get("/ping", func(c *fiber.Ctx) error { return c.SendString("pong") })

			headers := map[string]string{}
			if tt.header != "" {
				headers[fiber.HeaderAuthorization] = tt.header
			}
			resp, body := performRequestWithHeaders(t, r.app, http.MethodGet, "/v1/admin/ping", "", headers)
			if resp.StatusCode != tt.wantStatus {
				t.Fatalf("status = %d, want %d, body=%s", resp.StatusCode, tt.wantStatus, body)
			}
		})
	}
}

func TestAdminAuthRejectsEverythingWithoutConfiguredToken(t *testing.T) {
	t.Parallel()

	app := fiber.New()
	app.Get("/admin", AdminAuth("  "), func(c *fiber.Ctx) error { return c.SendString("ok") })

	resp, _ := performRequestWithHeaders(t, app, http.MethodGet, "/admin", "", map[string]string{
		fiber.HeaderAuthorization: "Bearer ",
	})
	if resp.StatusCode != fiber.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", resp.StatusCode)
	}
}

func TestRequestContextPropagatesRequestID(t *testing.T) {
	t.Parallel()

	r := newTestApp(t)
	r.public.Get("/whoami", func(c *fiber.Ctx) error {
		id, ok := observability.RequestIDFromContext(c.UserContext())
		if !ok {
			return c.SendStatus(fiber.StatusNoContent)
		}
		return c.SendString(id)
	})

	resp, body := performRequestWithHeaders(t, r.app, http.MethodGet, "/v1/whoami", "", map[string]string{
		fiber.HeaderXRequestID: "req-123",
	})
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if string(body) != "req-123" {
		t.Fatalf("request id = %q, want req-123", body)
	}
}
