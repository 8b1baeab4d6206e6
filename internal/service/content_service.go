package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/kursadbilgin/folio-engine/internal/domain"
	"github.com/kursadbilgin/folio-engine/internal/observability"
	"github.com/kursadbilgin/folio-engine/internal/repository"
	"github.com/kursadbilgin/folio-engine/internal/slug"
	"go.uber.org/zap"
)

// maxSlugAttempts bounds how often a create re-resolves its slug after the
// unique index rejected the previous candidate.
const maxSlugAttempts = 3

type ContentService struct {
	posts    repository.PostRepository
	projects repository.ProjectRepository
	logger   *zap.Logger
	metrics  *observability.Metrics
	now      func() time.Time
	newID    func() string
}

func NewContentService(
	posts repository.PostRepository,
	projects repository.ProjectRepository,
	logger *zap.Logger,
) (*ContentService, error) {
	if posts == nil || projects == nil {
		return nil, fmt.Errorf("post and project repositories are required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &ContentService{
		posts:    posts,
		projects: projects,
		logger:   logger,
		now:      time.Now,
		newID:    uuid.NewString,
	}, nil
}

func (s *ContentService) SetMetrics(metrics *observability.Metrics) {
	if s == nil {
		return
	}
	s.metrics = metrics
}

// CreatePost stores a post under a slug derived from post.Slug when given,
// otherwise from the title, suffixed with -1, -2, ... when already taken.
func (s *ContentService) CreatePost(ctx context.Context, post *domain.Post) (*domain.Post, error) {
	if post == nil {
		return nil, fmt.Errorf("%w: post is required", domain.ErrValidation)
	}
	trimPost(post)
	if err := post.Validate(); err != nil {
		return nil, err
	}

	base, err := slugBase(post.Slug, post.Title)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	post.ID = s.newID()
	post.Tags = domain.NormalizeTags(post.Tags)
	post.CreatedAt = now
	post.UpdatedAt = now
	if post.Published && post.PublishedAt == nil {
		post.PublishedAt = &now
	}

	err = s.withUniqueSlug(ctx, "posts", base, s.posts.ListSlugsWithPrefix, nil, func(candidate string) error {
		post.Slug = candidate
		return s.posts.Create(ctx, post)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("post created", zap.String("postId", post.ID), zap.String("slug", post.Slug))
	return post, nil
}

// UpdatePost replaces the editable fields of the post stored under slugValue.
// The slug is recomputed only when the title or requested slug changes, and
// the post's own slug never counts as taken.
func (s *ContentService) UpdatePost(ctx context.Context, slugValue string, changes *domain.Post) (*domain.Post, error) {
	if changes == nil {
		return nil, fmt.Errorf("%w: post is required", domain.ErrValidation)
	}

	current, err := s.posts.GetBySlug(ctx, strings.TrimSpace(slugValue))
	if err != nil {
		return nil, err
	}

	trimPost(changes)
	if err := changes.Validate(); err != nil {
		return nil, err
	}

	updated := *current
	updated.Title = changes.Title
	updated.Excerpt = changes.Excerpt
	updated.Body = changes.Body
	updated.Tags = domain.NormalizeTags(changes.Tags)
	updated.Published = changes.Published
	updated.UpdatedAt = s.now().UTC()
	switch {
	case updated.Published && updated.PublishedAt == nil:
		publishedAt := updated.UpdatedAt
		updated.PublishedAt = &publishedAt
	case !updated.Published:
		updated.PublishedAt = nil
	}

	reslug := changes.Slug != "" && slug.ToSlug(changes.Slug) != current.Slug
	if changes.Slug == "" && changes.Title != current.Title {
		reslug = true
	}

	if !reslug {
		if err := s.posts.Update(ctx, &updated); err != nil {
			return nil, err
		}
		return &updated, nil
	}

	base, err := slugBase(changes.Slug, changes.Title)
	if err != nil {
		return nil, err
	}

	err = s.withUniqueSlug(ctx, "posts", base, s.posts.ListSlugsWithPrefix, &current.Slug, func(candidate string) error {
		updated.Slug = candidate
		return s.posts.Update(ctx, &updated)
	})
	if err != nil {
		return nil, err
	}

	if updated.Slug != current.Slug {
		s.logger.Info("post slug changed",
			zap.String("postId", updated.ID),
			zap.String("from", current.Slug),
			zap.String("to", updated.Slug),
		)
	}
	return &updated, nil
}

func (s *ContentService) GetPostBySlug(ctx context.Context, slugValue string) (*domain.Post, error) {
	return s.posts.GetBySlug(ctx, strings.TrimSpace(slugValue))
}

func (s *ContentService) ListPosts(ctx context.Context, params repository.ListParams, publishedOnly bool) ([]domain.Post, int64, error) {
	return s.posts.List(ctx, params, publishedOnly)
}

func (s *ContentService) CreateProject(ctx context.Context, project *domain.Project) (*domain.Project, error) {
	if project == nil {
		return nil, fmt.Errorf("%w: project is required", domain.ErrValidation)
	}
	project.Title = strings.TrimSpace(project.Title)
	project.Slug = strings.TrimSpace(project.Slug)
	project.Summary = strings.TrimSpace(project.Summary)
	project.RepoURL = strings.TrimSpace(project.RepoURL)
	project.LiveURL = strings.TrimSpace(project.LiveURL)
	if err := project.Validate(); err != nil {
		return nil, err
	}

	base, err := slugBase(project.Slug, project.Title)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	project.ID = s.newID()
	project.Tags = domain.NormalizeTags(project.Tags)
	project.CreatedAt = now
	project.UpdatedAt = now

	err = s.withUniqueSlug(ctx, "projects", base, s.projects.ListSlugsWithPrefix, nil, func(candidate string) error {
		project.Slug = candidate
		return s.projects.Create(ctx, project)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("project created", zap.String("projectId", project.ID), zap.String("slug", project.Slug))
	return project, nil
}

func (s *ContentService) GetProjectBySlug(ctx context.Context, slugValue string) (*domain.Project, error) {
	return s.projects.GetBySlug(ctx, strings.TrimSpace(slugValue))
}

func (s *ContentService) ListProjects(ctx context.Context, params repository.ListParams) ([]domain.Project, int64, error) {
	return s.projects.List(ctx, params)
}

// withUniqueSlug resolves a free slug for base and hands it to write. When
// the store reports a conflict (a concurrent writer took the same slug) the
// candidate is re-resolved against fresh data.
func (s *ContentService) withUniqueSlug(
	ctx context.Context,
	collection string,
	base string,
	listSlugs func(ctx context.Context, base string) ([]string, error),
	ownSlug *string,
	write func(candidate string) error,
) error {
	for attempt := 1; attempt <= maxSlugAttempts; attempt++ {
		stored, err := listSlugs(ctx, base)
		if err != nil {
			return fmt.Errorf("failed to load existing %s slugs: %w", collection, err)
		}

		existing := slug.SetOf(stored)
		if ownSlug != nil {
			delete(existing, *ownSlug)
		}

		candidate := slug.ResolveUnique(base, existing)
		err = write(candidate)
		if err == nil {
			return nil
		}
		if !errors.Is(err, domain.ErrConflict) {
			return err
		}

		s.metrics.IncSlugConflict(collection)
		s.logger.Warn("slug taken concurrently, re-resolving",
			zap.String("collection", collection),
			zap.String("slug", candidate),
			zap.Int("attempt", attempt),
		)
	}

	return fmt.Errorf("%w: could not allocate a unique slug for %q", domain.ErrConflict, base)
}

func slugBase(explicit string, title string) (string, error) {
	source := explicit
	if strings.TrimSpace(source) == "" {
		source = title
	}

	base := slug.ToSlug(source)
	if base == "" {
		return "", fmt.Errorf("%w: slug source %q contains no letters or digits", domain.ErrValidation, source)
	}
	return base, nil
}

func trimPost(p *domain.Post) {
	p.Title = strings.TrimSpace(p.Title)
	p.Slug = strings.TrimSpace(p.Slug)
	p.Excerpt = strings.TrimSpace(p.Excerpt)
}
