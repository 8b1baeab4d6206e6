package provider

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/kursadbilgin/folio-engine/internal/domain"
)

// ProviderError carries the failing provider, an upstream-derived message and
// a transient/permanent classification. It unwraps to its domain kind
// (ErrNotConfigured or ErrUpstreamUnavailable) and to the underlying cause.
type ProviderError struct {
	Provider   string
	StatusCode int
	Message    string
	Transient  bool
	Kind       error
	Cause      error
}

func (e *ProviderError) Error() string {
	if e == nil {
		return "<nil>"
	}

	parts := make([]string, 0, 5)
	if name := strings.TrimSpace(e.Provider); name != "" {
		parts = append(parts, name)
	}
	parts = append(parts, "provider error")

	if e.StatusCode > 0 {
		parts = append(parts, fmt.Sprintf("status=%d", e.StatusCode))
	}
	if msg := strings.TrimSpace(e.Message); msg != "" {
		parts = append(parts, msg)
	}
	if e.Cause != nil {
		parts = append(parts, e.Cause.Error())
	}

	return strings.Join(parts, ": ")
}

func (e *ProviderError) Unwrap() []error {
	if e == nil {
		return nil
	}

	errs := make([]error, 0, 2)
	if e.Kind != nil {
		errs = append(errs, e.Kind)
	}
	if e.Cause != nil {
		errs = append(errs, e.Cause)
	}
	return errs
}

func notConfiguredError(provider string) error {
	return &ProviderError{
		Provider: provider,
		Message:  "required configuration is missing",
		Kind:     domain.ErrNotConfigured,
	}
}

func upstreamError(provider string, statusCode int, message string, transient bool, cause error) error {
	return &ProviderError{
		Provider:   provider,
		StatusCode: statusCode,
		Message:    message,
		Transient:  transient,
		Kind:       domain.ErrUpstreamUnavailable,
		Cause:      cause,
	}
}

// IsTransient reports whether retrying the call later could succeed.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	if errors.Is(err, context.Canceled) {
		return false
	}

	var providerErr *ProviderError
	if errors.As(err, &providerErr) {
		return providerErr.Transient
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return netErr.Timeout()
	}

	return false
}
