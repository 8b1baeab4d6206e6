package provider

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/kursadbilgin/folio-engine/internal/domain"
)

const (
	defaultHTTPTimeout = 10 * time.Second
	maxErrorBodyLength = 256
)

func newRestyClient() *resty.Client {
	client := resty.New()
	client.SetTimeout(defaultHTTPTimeout)
	client.SetRetryCount(0)
	return client
}

func prepareClient(client *resty.Client) *resty.Client {
	if client == nil {
		return newRestyClient()
	}
	if client.GetClient().Timeout == 0 {
		client.SetTimeout(defaultHTTPTimeout)
	}
	client.SetRetryCount(0)
	return client
}

// checkResponse converts a resty round trip into nil or a ProviderError.
func checkResponse(provider string, response *resty.Response, err error) error {
	if err != nil {
		return upstreamError(provider, 0, "request failed", !errors.Is(err, context.Canceled), err)
	}
	if response == nil {
		return upstreamError(provider, 0, "empty response", true, nil)
	}

	statusCode := response.StatusCode()
	if statusCode >= http.StatusOK && statusCode < http.StatusMultipleChoices {
		return nil
	}

	return upstreamError(
		provider,
		statusCode,
		upstreamErrorMessage(statusCode, strings.TrimSpace(response.String())),
		isTransientHTTPStatus(statusCode),
		nil,
	)
}

// probeStatus classifies a connectivity probe. Any failure is unreachable.
func probeStatus(response *resty.Response, err error) domain.IntegrationStatus {
	if err != nil || response == nil {
		return domain.IntegrationUnreachable
	}
	statusCode := response.StatusCode()
	if statusCode >= http.StatusOK && statusCode < http.StatusMultipleChoices {
		return domain.IntegrationReachable
	}
	return domain.IntegrationUnreachable
}

func isTransientHTTPStatus(statusCode int) bool {
	return statusCode == http.StatusTooManyRequests || (statusCode >= http.StatusInternalServerError && statusCode <= 599)
}

func upstreamErrorMessage(statusCode int, body string) string {
	base := fmt.Sprintf("upstream returned status %d", statusCode)
	if body == "" {
		return base
	}
	if len(body) > maxErrorBodyLength {
		body = body[:maxErrorBodyLength] + "..."
	}
	return fmt.Sprintf("%s: %s", base, body)
}

func normalizeLimit(limit int, fallback int, max int) int {
	if limit <= 0 {
		return fallback
	}
	if limit > max {
		return max
	}
	return limit
}
