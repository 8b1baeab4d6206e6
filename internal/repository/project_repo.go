package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/kursadbilgin/folio-engine/internal/domain"
	"gorm.io/gorm"
)

type ProjectRepository interface {
	Create(ctx context.Context, p *domain.Project) error
	GetBySlug(ctx context.Context, slug string) (*domain.Project, error)
	List(ctx context.Context, params ListParams) ([]domain.Project, int64, error)
	ListSlugsWithPrefix(ctx context.Context, base string) ([]string, error)
}

type GormProjectRepo struct {
	db *gorm.DB
}

func NewGormProjectRepo(db *gorm.DB) *GormProjectRepo {
	return &GormProjectRepo{db: db}
}

func (r *GormProjectRepo) Create(ctx context.Context, p *domain.Project) error {
	model := projectModelFromDomain(p)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		if IsUniqueViolation(err) {
			return fmt.Errorf("%w: project slug %q already exists", domain.ErrConflict, model.Slug)
		}
		return err
	}
	if p != nil {
		*p = *projectModelToDomain(model)
	}
	return nil
}

func (r *GormProjectRepo) GetBySlug(ctx context.Context, slug string) (*domain.Project, error) {
	var model ProjectModel
	err := r.db.WithContext(ctx).First(&model, "slug = ?", slug).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return projectModelToDomain(&model), nil
}

// List returns featured projects first, then newest.
func (r *GormProjectRepo) List(ctx context.Context, params ListParams) ([]domain.Project, int64, error) {
	query := r.db.WithContext(ctx).Model(&ProjectModel{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset, limit := params.normalize()

	var models []ProjectModel
	err := query.
		Order("featured DESC").
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&models).Error
	if err != nil {
		return nil, 0, err
	}

	projects := make([]domain.Project, 0, len(models))
	for i := range models {
		projects = append(projects, *projectModelToDomain(&models[i]))
	}

	return projects, total, nil
}

func (r *GormProjectRepo) ListSlugsWithPrefix(ctx context.Context, base string) ([]string, error) {
	var slugs []string
	err := r.db.WithContext(ctx).
		Model(&ProjectModel{}).
		Where("slug = ? OR slug LIKE ?", base, slugPrefixPattern(base)).
		Pluck("slug", &slugs).Error
	if err != nil {
		return nil, err
	}
	return slugs, nil
}
