package handler

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/kursadbilgin/folio-engine/internal/domain"
	"github.com/kursadbilgin/folio-engine/internal/provider"
)

// toHTTPError maps domain sentinels onto HTTP status codes. Unknown errors
// are classified as domain.ErrInternal and end up as a masked 500 in the
// transport error handler.
func toHTTPError(err error) error {
	var fiberErr *fiber.Error
	switch {
	case errors.As(err, &fiberErr):
		return err
	case errors.Is(err, domain.ErrValidation):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrConflict):
		return fiber.NewError(fiber.StatusConflict, err.Error())
	case errors.Is(err, domain.ErrUnauthorized):
		return fiber.NewError(fiber.StatusUnauthorized, "invalid or missing credentials")
	case errors.Is(err, domain.ErrNotConfigured):
		return fiber.NewError(fiber.StatusServiceUnavailable, err.Error())
	case errors.Is(err, domain.ErrUpstreamUnavailable):
		return &maskedError{
			public: fiber.NewError(fiber.StatusBadGateway, upstreamMessage(err)),
			cause:  err,
		}
	case errors.Is(err, domain.ErrInternal):
		return err
	default:
		return fmt.Errorf("%w: %w", domain.ErrInternal, err)
	}
}

func badRequest(message string) error {
	return fiber.NewError(fiber.StatusBadRequest, message)
}

// maskedError answers with public while Error() keeps the cause for the log.
type maskedError struct {
	public *fiber.Error
	cause  error
}

func (e *maskedError) Error() string { return e.cause.Error() }

func (e *maskedError) Unwrap() []error { return []error{e.public, e.cause} }

// upstreamMessage never carries upstream response bodies or transport causes.
func upstreamMessage(err error) string {
	var providerErr *provider.ProviderError
	if errors.As(err, &providerErr) {
		if name := strings.TrimSpace(providerErr.Provider); name != "" {
			return name + " is unavailable"
		}
	}
	return "upstream service is unavailable"
}
