package handler

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/kursadbilgin/folio-engine/internal/domain"
)

type SubscriberService interface {
	Subscribe(ctx context.Context, subscriber *domain.Subscriber) (*domain.Subscriber, error)
	Unsubscribe(ctx context.Context, email string) error
}

type SubscriberHandler struct {
	service SubscriberService
}

func NewSubscriberHandler(service SubscriberService) (*SubscriberHandler, error) {
	if service == nil {
		return nil, fmt.Errorf("subscriber service is required")
	}
	return &SubscriberHandler{service: service}, nil
}

func RegisterSubscriberRoutes(public fiber.Router, service SubscriberService) error {
	h, err := NewSubscriberHandler(service)
	if err != nil {
		return err
	}

	public.Post("/subscribers", h.Subscribe)
	public.Delete("/subscribers/:email", h.Unsubscribe)
	return nil
}

type subscribeRequest struct {
	Email  string   `json:"email"`
	Name   string   `json:"name"`
	Tags   []string `json:"tags"`
	Source string   `json:"source"`
}

type subscriberResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name,omitempty"`
	Tags      []string  `json:"tags"`
	Source    string    `json:"source"`
	CreatedAt time.Time `json:"createdAt"`
}

func (h *SubscriberHandler) Subscribe(c *fiber.Ctx) error {
	var req subscribeRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest("invalid request body")
	}

	created, err := h.service.Subscribe(c.UserContext(), &domain.Subscriber{
		Email:  req.Email,
		Name:   req.Name,
		Tags:   req.Tags,
		Source: req.Source,
	})
	if err != nil {
		return toHTTPError(err)
	}

	return c.Status(fiber.StatusCreated).JSON(subscriberResponse{
		ID:        created.ID,
		Email:     created.Email,
		Name:      created.Name,
		Tags:      nonNil(created.Tags),
		Source:    created.Source,
		CreatedAt: created.CreatedAt,
	})
}

func (h *SubscriberHandler) Unsubscribe(c *fiber.Ctx) error {
	email, err := url.PathUnescape(c.Params("email"))
	if err != nil {
		return badRequest("invalid email parameter")
	}

	if err := h.service.Unsubscribe(c.UserContext(), email); err != nil {
		return toHTTPError(err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}
