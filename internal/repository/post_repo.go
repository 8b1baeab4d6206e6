package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/kursadbilgin/folio-engine/internal/domain"
	"gorm.io/gorm"
)

type PostRepository interface {
	Create(ctx context.Context, p *domain.Post) error
	Update(ctx context.Context, p *domain.Post) error
	GetBySlug(ctx context.Context, slug string) (*domain.Post, error)
	List(ctx context.Context, params ListParams, publishedOnly bool) ([]domain.Post, int64, error)
	// ListSlugsWithPrefix returns base itself and every stored "base-*" slug.
	ListSlugsWithPrefix(ctx context.Context, base string) ([]string, error)
}

type GormPostRepo struct {
	db *gorm.DB
}

func NewGormPostRepo(db *gorm.DB) *GormPostRepo {
	return &GormPostRepo{db: db}
}

func (r *GormPostRepo) Create(ctx context.Context, p *domain.Post) error {
	model := postModelFromDomain(p)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		if IsUniqueViolation(err) {
			return fmt.Errorf("%w: post slug %q already exists", domain.ErrConflict, model.Slug)
		}
		return err
	}
	if p != nil {
		*p = *postModelToDomain(model)
	}
	return nil
}

func (r *GormPostRepo) Update(ctx context.Context, p *domain.Post) error {
	model := postModelFromDomain(p)
	if model == nil {
		return fmt.Errorf("%w: post is required", domain.ErrValidation)
	}

	// Select forces zero values (unpublish, empty excerpt) to be written.
	result := r.db.WithContext(ctx).
		Model(&PostModel{ID: model.ID}).
		Select("title", "slug", "excerpt", "body", "tags", "published", "published_at", "updated_at").
		Updates(model)
	if result.Error != nil {
		if IsUniqueViolation(result.Error) {
			return fmt.Errorf("%w: post slug %q already exists", domain.ErrConflict, model.Slug)
		}
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *GormPostRepo) GetBySlug(ctx context.Context, slug string) (*domain.Post, error) {
	var model PostModel
	err := r.db.WithContext(ctx).First(&model, "slug = ?", slug).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return postModelToDomain(&model), nil
}

func (r *GormPostRepo) List(ctx context.Context, params ListParams, publishedOnly bool) ([]domain.Post, int64, error) {
	query := r.db.WithContext(ctx).Model(&PostModel{})
	if publishedOnly {
		query = query.Where("published = ?", true)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset, limit := params.normalize()

	var models []PostModel
	err := query.
		Order("COALESCE(published_at, created_at) DESC").
		Offset(offset).
		Limit(limit).
		Find(&models).Error
	if err != nil {
		return nil, 0, err
	}

	posts := make([]domain.Post, 0, len(models))
	for i := range models {
		posts = append(posts, *postModelToDomain(&models[i]))
	}

	return posts, total, nil
}

func (r *GormPostRepo) ListSlugsWithPrefix(ctx context.Context, base string) ([]string, error) {
	var slugs []string
	err := r.db.WithContext(ctx).
		Model(&PostModel{}).
		Where("slug = ? OR slug LIKE ?", base, slugPrefixPattern(base)).
		Pluck("slug", &slugs).Error
	if err != nil {
		return nil, err
	}
	return slugs, nil
}
