package handler

import (
	"context"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/kursadbilgin/folio-engine/internal/domain"
)

type NewsletterService interface {
	Send(ctx context.Context, msg domain.DispatchMessage) (*domain.DispatchResult, error)
}

type NewsletterHandler struct {
	service NewsletterService
}

func NewNewsletterHandler(service NewsletterService) (*NewsletterHandler, error) {
	if service == nil {
		return nil, fmt.Errorf("newsletter service is required")
	}
	return &NewsletterHandler{service: service}, nil
}

func RegisterNewsletterRoutes(admin fiber.Router, service NewsletterService) error {
	h, err := NewNewsletterHandler(service)
	if err != nil {
		return err
	}

	admin.Post("/newsletter/send", h.Send)
	return nil
}

type sendNewsletterRequest struct {
	Subject string   `json:"subject"`
	Content string   `json:"content"`
	Tags    []string `json:"tags"`
}

type sendNewsletterResponse struct {
	SuccessCount int               `json:"successCount"`
	FailureCount int               `json:"failureCount"`
	SkippedCount int               `json:"skippedCount"`
	Canceled     bool              `json:"canceled"`
	Errors       map[string]string `json:"errors"`
	Message      string            `json:"message"`
}

func (h *NewsletterHandler) Send(c *fiber.Ctx) error {
	var req sendNewsletterRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest("invalid request body")
	}

	result, err := h.service.Send(c.UserContext(), domain.DispatchMessage{
		Subject: req.Subject,
		Content: req.Content,
		Tags:    req.Tags,
	})
	if err != nil {
		return toHTTPError(err)
	}

	return c.Status(fiber.StatusOK).JSON(sendNewsletterResponse{
		SuccessCount: result.SuccessCount,
		FailureCount: result.FailureCount,
		SkippedCount: result.SkippedCount,
		Canceled:     result.Canceled,
		Errors:       result.Errors(),
		Message:      result.Summary(),
	})
}
