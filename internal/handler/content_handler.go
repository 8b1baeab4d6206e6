package handler

import (
	"context"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/kursadbilgin/folio-engine/internal/domain"
	"github.com/kursadbilgin/folio-engine/internal/repository"
)

const (
	defaultPage     = 1
	defaultPageSize = 20
	maxPageSize     = 100
)

type ContentService interface {
	CreatePost(ctx context.Context, post *domain.Post) (*domain.Post, error)
	UpdatePost(ctx context.Context, slug string, changes *domain.Post) (*domain.Post, error)
	GetPostBySlug(ctx context.Context, slug string) (*domain.Post, error)
	ListPosts(ctx context.Context, params repository.ListParams, publishedOnly bool) ([]domain.Post, int64, error)
	CreateProject(ctx context.Context, project *domain.Project) (*domain.Project, error)
	GetProjectBySlug(ctx context.Context, slug string) (*domain.Project, error)
	ListProjects(ctx context.Context, params repository.ListParams) ([]domain.Project, int64, error)
}

type ContentHandler struct {
	service ContentService
}

func NewContentHandler(service ContentService) (*ContentHandler, error) {
	if service == nil {
		return nil, fmt.Errorf("content service is required")
	}
	return &ContentHandler{service: service}, nil
}

func RegisterContentRoutes(public fiber.Router, admin fiber.Router, service ContentService) error {
	h, err := NewContentHandler(service)
	if err != nil {
		return err
	}

	admin.Post("/posts", h.CreatePost)
	admin.Put("/posts/:slug", h.UpdatePost)
	admin.Post("/projects", h.CreateProject)

	public.Get("/posts", h.ListPosts)
	public.Get("/posts/:slug", h.GetPost)
	public.Get("/projects", h.ListProjects)
	public.Get("/projects/:slug", h.GetProject)

	return nil
}

type postRequest struct {
	Title     string   `json:"title"`
	Slug      string   `json:"slug"`
	Excerpt   string   `json:"excerpt"`
	Body      string   `json:"body"`
	Tags      []string `json:"tags"`
	Published bool     `json:"published"`
}

type projectRequest struct {
	Title    string   `json:"title"`
	Slug     string   `json:"slug"`
	Summary  string   `json:"summary"`
	Body     string   `json:"body"`
	RepoURL  string   `json:"repoUrl"`
	LiveURL  string   `json:"liveUrl"`
	Tags     []string `json:"tags"`
	Featured bool     `json:"featured"`
}

type postResponse struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Slug        string     `json:"slug"`
	Excerpt     string     `json:"excerpt,omitempty"`
	Body        string     `json:"body"`
	Tags        []string   `json:"tags"`
	Published   bool       `json:"published"`
	PublishedAt *time.Time `json:"publishedAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

type projectResponse struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Slug      string    `json:"slug"`
	Summary   string    `json:"summary"`
	Body      string    `json:"body,omitempty"`
	RepoURL   string    `json:"repoUrl,omitempty"`
	LiveURL   string    `json:"liveUrl,omitempty"`
	Tags      []string  `json:"tags"`
	Featured  bool      `json:"featured"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type listMeta struct {
	Page     int   `json:"page"`
	PageSize int   `json:"pageSize"`
	Total    int64 `json:"total"`
}

type listPostsResponse struct {
	Data []postResponse `json:"data"`
	Meta listMeta       `json:"meta"`
}

type listProjectsResponse struct {
	Data []projectResponse `json:"data"`
	Meta listMeta          `json:"meta"`
}

func (h *ContentHandler) CreatePost(c *fiber.Ctx) error {
	var req postRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest("invalid request body")
	}

	created, err := h.service.CreatePost(c.UserContext(), req.toDomain())
	if err != nil {
		return toHTTPError(err)
	}
	return c.Status(fiber.StatusCreated).JSON(toPostResponse(created))
}

func (h *ContentHandler) UpdatePost(c *fiber.Ctx) error {
	var req postRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest("invalid request body")
	}

	updated, err := h.service.UpdatePost(c.UserContext(), c.Params("slug"), req.toDomain())
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(toPostResponse(updated))
}

// GetPost hides drafts from the public site.
func (h *ContentHandler) GetPost(c *fiber.Ctx) error {
	post, err := h.service.GetPostBySlug(c.UserContext(), c.Params("slug"))
	if err != nil {
		return toHTTPError(err)
	}
	if !post.Published {
		return toHTTPError(fmt.Errorf("%w: post %q", domain.ErrNotFound, c.Params("slug")))
	}
	return c.JSON(toPostResponse(post))
}

func (h *ContentHandler) ListPosts(c *fiber.Ctx) error {
	params, err := parseListParams(c)
	if err != nil {
		return toHTTPError(err)
	}

	posts, total, err := h.service.ListPosts(c.UserContext(), params, true)
	if err != nil {
		return toHTTPError(err)
	}

	data := make([]postResponse, 0, len(posts))
	for i := range posts {
		data = append(data, toPostResponse(&posts[i]))
	}
	return c.JSON(listPostsResponse{
		Data: data,
		Meta: listMeta{Page: params.Page, PageSize: params.PageSize, Total: total},
	})
}

func (h *ContentHandler) CreateProject(c *fiber.Ctx) error {
	var req projectRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest("invalid request body")
	}

	created, err := h.service.CreateProject(c.UserContext(), &domain.Project{
		Title:    req.Title,
		Slug:     req.Slug,
		Summary:  req.Summary,
		Body:     req.Body,
		RepoURL:  req.RepoURL,
		LiveURL:  req.LiveURL,
		Tags:     req.Tags,
		Featured: req.Featured,
	})
	if err != nil {
		return toHTTPError(err)
	}
	return c.Status(fiber.StatusCreated).JSON(toProjectResponse(created))
}

func (h *ContentHandler) GetProject(c *fiber.Ctx) error {
	project, err := h.service.GetProjectBySlug(c.UserContext(), c.Params("slug"))
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(toProjectResponse(project))
}

func (h *ContentHandler) ListProjects(c *fiber.Ctx) error {
	params, err := parseListParams(c)
	if err != nil {
		return toHTTPError(err)
	}

	projects, total, err := h.service.ListProjects(c.UserContext(), params)
	if err != nil {
		return toHTTPError(err)
	}

	data := make([]projectResponse, 0, len(projects))
	for i := range projects {
		data = append(data, toProjectResponse(&projects[i]))
	}
	return c.JSON(listProjectsResponse{
		Data: data,
		Meta: listMeta{Page: params.Page, PageSize: params.PageSize, Total: total},
	})
}

func parseListParams(c *fiber.Ctx) (repository.ListParams, error) {
	params := repository.ListParams{
		Page:     c.QueryInt("page", defaultPage),
		PageSize: c.QueryInt("pageSize", defaultPageSize),
	}

	if params.Page < 1 {
		return repository.ListParams{}, fmt.Errorf("%w: page must be >= 1", domain.ErrValidation)
	}
	if params.PageSize < 1 || params.PageSize > maxPageSize {
		return repository.ListParams{}, fmt.Errorf("%w: pageSize must be between 1 and %d", domain.ErrValidation, maxPageSize)
	}
	return params, nil
}

func (r postRequest) toDomain() *domain.Post {
	return &domain.Post{
		Title:     r.Title,
		Slug:      r.Slug,
		Excerpt:   r.Excerpt,
		Body:      r.Body,
		Tags:      r.Tags,
		Published: r.Published,
	}
}

func toPostResponse(p *domain.Post) postResponse {
	if p == nil {
		return postResponse{}
	}
	return postResponse{
		ID:          p.ID,
		Title:       p.Title,
		Slug:        p.Slug,
		Excerpt:     p.Excerpt,
		Body:        p.Body,
		Tags:        nonNil(p.Tags),
		Published:   p.Published,
		PublishedAt: p.PublishedAt,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

func toProjectResponse(p *domain.Project) projectResponse {
	if p == nil {
		return projectResponse{}
	}
	return projectResponse{
		ID:        p.ID,
		Title:     p.Title,
		Slug:      p.Slug,
		Summary:   p.Summary,
		Body:      p.Body,
		RepoURL:   p.RepoURL,
		LiveURL:   p.LiveURL,
		Tags:      nonNil(p.Tags),
		Featured:  p.Featured,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

func nonNil(tags []string) []string {
	if tags == nil {
		return []string{}
	}
	return tags
}
