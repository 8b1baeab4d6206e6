package provider

import (
	"context"

	"github.com/kursadbilgin/folio-engine/internal/domain"
)

// Provider names as exposed to the admin console.
const (
	NameGitHub      = "github"
	NameLinkedIn    = "linkedin"
	NameMailingList = "mailing-list"
)

// Provider is the capability set every external integration exposes.
//
// Describe and Status are local-only and never fail. Test performs a live
// round trip and folds any transport or auth failure into
// domain.IntegrationUnreachable instead of returning it.
type Provider interface {
	Name() string
	Describe() domain.IntegrationDescriptor
	Status() domain.IntegrationStatus
	Test(ctx context.Context) domain.IntegrationStatus
}

// RepositoryFetcher is the source-hosting data capability.
type RepositoryFetcher interface {
	FetchProfile(ctx context.Context) (*domain.GitHubProfile, error)
	FetchRepositories(ctx context.Context, limit int) ([]domain.GitHubRepository, error)
	FetchActivity(ctx context.Context, limit int) ([]domain.GitHubEvent, error)
}

// SocialProfileFetcher is the social-network data capability.
type SocialProfileFetcher interface {
	FetchSocialProfile(ctx context.Context) (*domain.SocialProfile, error)
	FetchSocialLinks(ctx context.Context) ([]domain.SocialLink, error)
}

// MailingList enumerates subscribers and delivers single messages to them.
type MailingList interface {
	ListSubscribers(ctx context.Context, tags []string) ([]domain.Subscriber, error)
	Send(ctx context.Context, recipient string, subject string, content string) error
	Subscribe(ctx context.Context, subscriber *domain.Subscriber) error
	Unsubscribe(ctx context.Context, email string) error
}

// statusFromDescriptor maps key presence onto the local status.
func statusFromDescriptor(d domain.IntegrationDescriptor) domain.IntegrationStatus {
	if !d.Configured() {
		return domain.IntegrationUnconfigured
	}
	return domain.IntegrationConfigured
}
