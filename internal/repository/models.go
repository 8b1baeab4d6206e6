package repository

import (
	"time"

	"github.com/kursadbilgin/folio-engine/internal/domain"
)

// PostModel is the persistence model for the posts table.
type PostModel struct {
	ID          string     `gorm:"type:uuid;primaryKey"`
	Title       string     `gorm:"type:varchar(200);not null"`
	Slug        string     `gorm:"type:varchar(255);not null;uniqueIndex:idx_posts_slug"`
	Excerpt     string     `gorm:"type:varchar(500)"`
	Body        string     `gorm:"type:text;not null"`
	Tags        []string   `gorm:"serializer:json;type:jsonb;not null;default:'[]'"`
	Published   bool       `gorm:"not null;default:false"`
	PublishedAt *time.Time `gorm:"type:timestamptz"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (PostModel) TableName() string {
	return "posts"
}

// ProjectModel is the persistence model for the projects table.
type ProjectModel struct {
	ID        string   `gorm:"type:uuid;primaryKey"`
	Title     string   `gorm:"type:varchar(200);not null"`
	Slug      string   `gorm:"type:varchar(255);not null;uniqueIndex:idx_projects_slug"`
	Summary   string   `gorm:"type:text;not null"`
	Body      string   `gorm:"type:text"`
	RepoURL   string   `gorm:"type:varchar(500)"`
	LiveURL   string   `gorm:"type:varchar(500)"`
	Tags      []string `gorm:"serializer:json;type:jsonb;not null;default:'[]'"`
	Featured  bool     `gorm:"not null;default:false"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (ProjectModel) TableName() string {
	return "projects"
}

// SubscriberModel is the persistence model for the subscribers table.
type SubscriberModel struct {
	ID        string   `gorm:"type:uuid;primaryKey"`
	Email     string   `gorm:"type:varchar(320);not null;uniqueIndex:idx_subscribers_email"`
	Name      string   `gorm:"type:varchar(200)"`
	Tags      []string `gorm:"serializer:json;type:jsonb;not null;default:'[]'"`
	Source    string   `gorm:"type:varchar(50)"`
	CreatedAt time.Time
}

func (SubscriberModel) TableName() string {
	return "subscribers"
}

func postModelFromDomain(p *domain.Post) *PostModel {
	if p == nil {
		return nil
	}

	return &PostModel{
		ID:          p.ID,
		Title:       p.Title,
		Slug:        p.Slug,
		Excerpt:     p.Excerpt,
		Body:        p.Body,
		Tags:        nonNilTags(p.Tags),
		Published:   p.Published,
		PublishedAt: p.PublishedAt,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

func postModelToDomain(m *PostModel) *domain.Post {
	if m == nil {
		return nil
	}

	return &domain.Post{
		ID:          m.ID,
		Title:       m.Title,
		Slug:        m.Slug,
		Excerpt:     m.Excerpt,
		Body:        m.Body,
		Tags:        nonNilTags(m.Tags),
		Published:   m.Published,
		PublishedAt: m.PublishedAt,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

func projectModelFromDomain(p *domain.Project) *ProjectModel {
	if p == nil {
		return nil
	}

	return &ProjectModel{
		ID:        p.ID,
		Title:     p.Title,
		Slug:      p.Slug,
		Summary:   p.Summary,
		Body:      p.Body,
		RepoURL:   p.RepoURL,
		LiveURL:   p.LiveURL,
		Tags:      nonNilTags(p.Tags),
		Featured:  p.Featured,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

func projectModelToDomain(m *ProjectModel) *domain.Project {
	if m == nil {
		return nil
	}

	return &domain.Project{
		ID:        m.ID,
		Title:     m.Title,
		Slug:      m.Slug,
		Summary:   m.Summary,
		Body:      m.Body,
		RepoURL:   m.RepoURL,
		LiveURL:   m.LiveURL,
		Tags:      nonNilTags(m.Tags),
		Featured:  m.Featured,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

func subscriberModelFromDomain(s *domain.Subscriber) *SubscriberModel {
	if s == nil {
		return nil
	}

	return &SubscriberModel{
		ID:        s.ID,
		Email:     s.Email,
		Name:      s.Name,
		Tags:      nonNilTags(s.Tags),
		Source:    s.Source,
		CreatedAt: s.CreatedAt,
	}
}

func subscriberModelToDomain(m *SubscriberModel) *domain.Subscriber {
	if m == nil {
		return nil
	}

	return &domain.Subscriber{
		ID:        m.ID,
		Email:     m.Email,
		Name:      m.Name,
		Tags:      nonNilTags(m.Tags),
		Source:    m.Source,
		CreatedAt: m.CreatedAt,
	}
}

// nonNilTags keeps jsonb columns as [] rather than null.
func nonNilTags(tags []string) []string {
	if tags == nil {
		return []string{}
	}
	return tags
}
