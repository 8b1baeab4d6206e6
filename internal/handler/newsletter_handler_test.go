package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/kursadbilgin/folio-engine/internal/domain"
)

type stubNewsletterService struct {
	sendFn func(ctx context.Context, msg domain.DispatchMessage) (*domain.DispatchResult, error)
}

func (s *stubNewsletterService) Send(ctx context.Context, msg domain.DispatchMessage) (*domain.DispatchResult, error) {
	return s.sendFn(ctx, msg)
}

func TestNewsletterHandler_Send(t *testing.T) {
	t.Parallel()

	var got domain.DispatchMessage
	svc := &stubNewsletterService{
		sendFn: func(ctx context.Context, msg domain.DispatchMessage) (*domain.DispatchResult, error) {
			got = msg
			return &domain.DispatchResult{
				SuccessCount: 4,
				FailureCount: 1,
				Failures:     []domain.RecipientError{{Recipient: "c@example.com", Reason: "mailbox full"}},
			}, nil
		},
	}

	r := newTestApp(t)
	if err := RegisterNewsletterRoutes(r.admin, svc); err != nil {
		t.Fatalf("RegisterNewsletterRoutes() error = %v", err)
	}

	resp, body := performAdminRequest(t, r.app, http.MethodPost, "/v1/admin/newsletter/send",
		`{"subject":"Hello","content":"Body","tags":["go"]}`)
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("status = %d, want 200, body=%s", resp.StatusCode, body)
	}
	if got.Subject != "Hello" || got.Content != "Body" || len(got.Tags) != 1 || got.Tags[0] != "go" {
		t.Fatalf("message = %+v", got)
	}

	var payload sendNewsletterResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		t.Fatalf("json unmarshal error = %v", err)
	}
	if payload.SuccessCount != 4 || payload.FailureCount != 1 || payload.Canceled {
		t.Fatalf("payload = %+v", payload)
	}
	if payload.Errors["c@example.com"] != "mailbox full" {
		t.Fatalf("errors = %v", payload.Errors)
	}
	if payload.Message != "Newsletter sent to 4 subscribers, 1 failed" {
		t.Fatalf("message = %q", payload.Message)
	}
}

func TestNewsletterHandler_SendErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		body       string
		token      bool
		err        error
		wantStatus int
	}{
		{name: "missing token", body: `{"subject":"a","content":"b"}`, wantStatus: fiber.StatusUnauthorized},
		{name: "malformed body", body: `{`, token: true, wantStatus: fiber.StatusBadRequest},
		{name: "validation", body: `{"subject":"","content":"b"}`, token: true, err: fmt.Errorf("%w: subject is required", domain.ErrValidation), wantStatus: fiber.StatusBadRequest},
		{name: "mailing list not configured", body: `{"subject":"a","content":"b"}`, token: true, err: fmt.Errorf("%w: mailing list", domain.ErrNotConfigured), wantStatus: fiber.StatusServiceUnavailable},
		{name: "enumeration failed", body: `{"subject":"a","content":"b"}`, token: true, err: fmt.Errorf("%w: list subscribers", domain.ErrUpstreamUnavailable), wantStatus: fiber.StatusBadGateway},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			called := false
			svc := &stubNewsletterService{
				sendFn: func(ctx context.Context, msg domain.DispatchMessage) (*domain.DispatchResult, error) {
					called = true
					if tt.err != nil {
						return nil, tt.err
					}
					return &domain.DispatchResult{}, nil
				},
			}

			r := newTestApp(t)
			if err := RegisterNewsletterRoutes(r.admin, svc); err != nil {
				t.Fatalf("RegisterNewsletterRoutes() error = %v", err)
			}

			var resp *http.Response
			if tt.token {
				resp, _ = performAdminRequest(t, r.app, http.MethodPost, "/v1/admin/newsletter/send", tt.body)
			} else {
				resp, _ = performRequest(t, r.app, http.MethodPost, "/v1/admin/newsletter/send", tt.body)
			}
			if resp.StatusCode != tt.wantStatus {
				t.Fatalf("status = %d, want %d", resp.StatusCode, tt.wantStatus)
			}
			if !tt.token && called {
				t.Fatal("service must not be called without a valid token")
			}
		})
	}
}
