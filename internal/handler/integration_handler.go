package handler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/kursadbilgin/folio-engine/internal/domain"
	infraredis "github.com/kursadbilgin/folio-engine/internal/infra/redis"
	"github.com/kursadbilgin/folio-engine/internal/integration"
	"github.com/kursadbilgin/folio-engine/internal/provider"
	"go.uber.org/zap"
)

const (
	defaultRepositoryLimit = 6
	defaultActivityLimit   = 10
	maxFetchLimit          = 100
)

type IntegrationRegistry interface {
	Get(name string) (provider.Provider, bool)
	AggregateStatus() []integration.ProviderStatus
	Validate() []domain.IntegrationDescriptor
	TestAll(ctx context.Context) []integration.ProviderStatus
}

// ResponseCache is satisfied by the Redis response cache. A nil cache
// disables caching.
type ResponseCache interface {
	Get(ctx context.Context, key string, dest any) error
	Set(ctx context.Context, key string, value any) error
}

type IntegrationHandler struct {
	registry IntegrationRegistry
	cache    ResponseCache
	logger   *zap.Logger
	now      func() time.Time
}

func NewIntegrationHandler(registry IntegrationRegistry, cache ResponseCache, logger *zap.Logger) (*IntegrationHandler, error) {
	if registry == nil {
		return nil, fmt.Errorf("integration registry is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &IntegrationHandler{registry: registry, cache: cache, logger: logger, now: time.Now}, nil
}

// RegisterIntegrationRoutes mounts the console endpoints on admin and the
// cached profile endpoints on public. Both routers are already under /v1.
func RegisterIntegrationRoutes(public fiber.Router, admin fiber.Router, registry IntegrationRegistry, cache ResponseCache, logger *zap.Logger) error {
	h, err := NewIntegrationHandler(registry, cache, logger)
	if err != nil {
		return err
	}

	admin.Get("/integrations/status", h.Status)
	admin.Get("/integrations/validate", h.Validate)
	admin.Post("/integrations/test", h.Test)

	public.Get("/integrations/github/profile", h.GitHubProfile)
	public.Get("/integrations/github/repositories", h.GitHubRepositories)
	public.Get("/integrations/github/activity", h.GitHubActivity)
	public.Get("/integrations/linkedin/profile", h.LinkedInProfile)
	public.Get("/integrations/linkedin/links", h.LinkedInLinks)

	return nil
}

type providerStatusResponse struct {
	Name   string `json:"name"`
	Status string `json:"status"`
}

type statusResponse struct {
	Integrations []providerStatusResponse `json:"integrations"`
	Statuses     map[string]string        `json:"statuses"`
	TestedAt     *time.Time               `json:"testedAt,omitempty"`
}

type keyPresenceResponse struct {
	Key     string `json:"key"`
	Present bool   `json:"present"`
}

type descriptorResponse struct {
	Name         string                `json:"name"`
	Configured   bool                  `json:"configured"`
	RequiredKeys []keyPresenceResponse `json:"requiredKeys"`
	OptionalKeys []keyPresenceResponse `json:"optionalKeys"`
	MissingKeys  []string              `json:"missingKeys"`
}

type validateResponse struct {
	Integrations []descriptorResponse `json:"integrations"`
}

func (h *IntegrationHandler) Status(c *fiber.Ctx) error {
	return c.JSON(toStatusResponse(h.registry.AggregateStatus(), nil))
}

func (h *IntegrationHandler) Validate(c *fiber.Ctx) error {
	descriptors := h.registry.Validate()
	out := validateResponse{Integrations: make([]descriptorResponse, 0, len(descriptors))}
	for _, d := range descriptors {
		out.Integrations = append(out.Integrations, descriptorResponse{
			Name:         d.Name,
			Configured:   d.Configured(),
			RequiredKeys: toKeyPresenceResponses(d.RequiredKeys),
			OptionalKeys: toKeyPresenceResponses(d.OptionalKeys),
			MissingKeys:  d.MissingKeys(),
		})
	}
	return c.JSON(out)
}

func (h *IntegrationHandler) Test(c *fiber.Ctx) error {
	statuses := h.registry.TestAll(c.UserContext())
	testedAt := h.now().UTC()
	return c.JSON(toStatusResponse(statuses, &testedAt))
}

func (h *IntegrationHandler) GitHubProfile(c *fiber.Ctx) error {
	fetcher, err := h.repositoryFetcher()
	if err != nil {
		return toHTTPError(err)
	}
	return serveCached(c, h, "github:profile", func(ctx context.Context) (*domain.GitHubProfile, error) {
		return fetcher.FetchProfile(ctx)
	})
}

func (h *IntegrationHandler) GitHubRepositories(c *fiber.Ctx) error {
	limit, err := parseLimit(c, defaultRepositoryLimit)
	if err != nil {
		return toHTTPError(err)
	}
	fetcher, err := h.repositoryFetcher()
	if err != nil {
		return toHTTPError(err)
	}
	key := fmt.Sprintf("github:repositories:%d", limit)
	return serveCached(c, h, key, func(ctx context.Context) ([]domain.GitHubRepository, error) {
		return fetcher.FetchRepositories(ctx, limit)
	})
}

func (h *IntegrationHandler) GitHubActivity(c *fiber.Ctx) error {
	limit, err := parseLimit(c, defaultActivityLimit)
	if err != nil {
		return toHTTPError(err)
	}
	fetcher, err := h.repositoryFetcher()
	if err != nil {
		return toHTTPError(err)
	}
	key := fmt.Sprintf("github:activity:%d", limit)
	return serveCached(c, h, key, func(ctx context.Context) ([]domain.GitHubEvent, error) {
		return fetcher.FetchActivity(ctx, limit)
	})
}

func (h *IntegrationHandler) LinkedInProfile(c *fiber.Ctx) error {
	fetcher, err := h.socialFetcher()
	if err != nil {
		return toHTTPError(err)
	}
	return serveCached(c, h, "linkedin:profile", func(ctx context.Context) (*domain.SocialProfile, error) {
		return fetcher.FetchSocialProfile(ctx)
	})
}

func (h *IntegrationHandler) LinkedInLinks(c *fiber.Ctx) error {
	fetcher, err := h.socialFetcher()
	if err != nil {
		return toHTTPError(err)
	}
	return serveCached(c, h, "linkedin:links", func(ctx context.Context) ([]domain.SocialLink, error) {
		return fetcher.FetchSocialLinks(ctx)
	})
}

func (h *IntegrationHandler) repositoryFetcher() (provider.RepositoryFetcher, error) {
	p, ok := h.registry.Get(provider.NameGitHub)
	if !ok {
		return nil, fmt.Errorf("%w: %s integration is not registered", domain.ErrNotConfigured, provider.NameGitHub)
	}
	fetcher, ok := p.(provider.RepositoryFetcher)
	if !ok {
		return nil, fmt.Errorf("%w: %s does not serve repositories", domain.ErrNotConfigured, provider.NameGitHub)
	}
	return fetcher, nil
}

func (h *IntegrationHandler) socialFetcher() (provider.SocialProfileFetcher, error) {
	p, ok := h.registry.Get(provider.NameLinkedIn)
	if !ok {
		return nil, fmt.Errorf("%w: %s integration is not registered", domain.ErrNotConfigured, provider.NameLinkedIn)
	}
	fetcher, ok := p.(provider.SocialProfileFetcher)
	if !ok {
		return nil, fmt.Errorf("%w: %s does not serve profiles", domain.ErrNotConfigured, provider.NameLinkedIn)
	}
	return fetcher, nil
}

// serveCached answers from the response cache when possible and otherwise
// loads from the provider and stores the result. Cache failures only cost a
// provider round trip.
func serveCached[T any](c *fiber.Ctx, h *IntegrationHandler, key string, load func(ctx context.Context) (T, error)) error {
	ctx := c.UserContext()

	if h.cache != nil {
		var cached T
		err := h.cache.Get(ctx, key, &cached)
		if err == nil {
			c.Set("X-Cache", "HIT")
			return c.JSON(cached)
		}
		if !errors.Is(err, infraredis.ErrCacheMiss) {
			h.logger.Warn("response cache read failed", zap.String("key", key), zap.Error(err))
		}
	}

	value, err := load(ctx)
	if err != nil {
		return toHTTPError(err)
	}

	if h.cache != nil {
		if err := h.cache.Set(ctx, key, value); err != nil {
			h.logger.Warn("response cache write failed", zap.String("key", key), zap.Error(err))
		}
	}

	c.Set("X-Cache", "MISS")
	return c.JSON(value)
}

func parseLimit(c *fiber.Ctx, fallback int) (int, error) {
	limit := c.QueryInt("limit", fallback)
	if limit < 1 || limit > maxFetchLimit {
		return 0, fmt.Errorf("%w: limit must be between 1 and %d", domain.ErrValidation, maxFetchLimit)
	}
	return limit, nil
}

func toStatusResponse(statuses []integration.ProviderStatus, testedAt *time.Time) statusResponse {
	out := statusResponse{
		Integrations: make([]providerStatusResponse, 0, len(statuses)),
		Statuses:     make(map[string]string, len(statuses)),
		TestedAt:     testedAt,
	}
	for _, s := range statuses {
		out.Integrations = append(out.Integrations, providerStatusResponse{Name: s.Name, Status: s.Status.String()})
		out.Statuses[s.Name] = s.Status.String()
	}
	return out
}

func toKeyPresenceResponses(keys []domain.KeyPresence) []keyPresenceResponse {
	out := make([]keyPresenceResponse, 0, len(keys))
	for _, k := range keys {
		out = append(out, keyPresenceResponse{Key: k.Key, Present: k.Present})
	}
	return out
}
