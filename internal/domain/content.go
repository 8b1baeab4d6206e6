package domain

import (
	"fmt"
	"strings"
	"time"
)

// Content limits (in characters).
const (
	MaxTitleLength   = 200
	MaxExcerptLength = 500
)

// Post is a blog post addressed publicly by its slug.
type Post struct {
	ID          string
	Title       string
	Slug        string
	Excerpt     string
	Body        string
	Tags        []string
	Published   bool
	PublishedAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (p *Post) Validate() error {
	if err := validateTitle(p.Title); err != nil {
		return err
	}
	if strings.TrimSpace(p.Body) == "" {
		return fmt.Errorf("%w: body is required", ErrValidation)
	}
	if n := len([]rune(p.Excerpt)); n > MaxExcerptLength {
		return fmt.Errorf("%w: excerpt exceeds %d characters (got %d)", ErrValidation, MaxExcerptLength, n)
	}
	return nil
}

// Project is a portfolio entry addressed publicly by its slug.
type Project struct {
	ID        string
	Title     string
	Slug      string
	Summary   string
	Body      string
	RepoURL   string
	LiveURL   string
	Tags      []string
	Featured  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (p *Project) Validate() error {
	if err := validateTitle(p.Title); err != nil {
		return err
	}
	if strings.TrimSpace(p.Summary) == "" {
		return fmt.Errorf("%w: summary is required", ErrValidation)
	}
	return nil
}

func validateTitle(title string) error {
	if strings.TrimSpace(title) == "" {
		return fmt.Errorf("%w: title is required", ErrValidation)
	}
	if n := len([]rune(title)); n > MaxTitleLength {
		return fmt.Errorf("%w: title exceeds %d characters (got %d)", ErrValidation, MaxTitleLength, n)
	}
	return nil
}
