package provider

import (
	"context"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/kursadbilgin/folio-engine/internal/domain"
)

const (
	DefaultGitHubAPIURL = "https://api.github.com"

	githubAPIVersion     = "2022-11-28"
	defaultRepoLimit     = 6
	maxRepoLimit         = 100
	defaultActivityLimit = 10
	maxActivityLimit     = 100
)

// GitHubConfig holds the source-hosting settings read from the environment.
type GitHubConfig struct {
	APIURL   string
	Username string
	Token    string
}

type githubUser struct {
	Login       string    `json:"login"`
	Name        string    `json:"name"`
	Bio         string    `json:"bio"`
	AvatarURL   string    `json:"avatar_url"`
	HTMLURL     string    `json:"html_url"`
	PublicRepos int       `json:"public_repos"`
	Followers   int       `json:"followers"`
	Following   int       `json:"following"`
	CreatedAt   time.Time `json:"created_at"`
}

type githubRepo struct {
	Name            string    `json:"name"`
	FullName        string    `json:"full_name"`
	Description     string    `json:"description"`
	HTMLURL         string    `json:"html_url"`
	Language        string    `json:"language"`
	StargazersCount int       `json:"stargazers_count"`
	ForksCount      int       `json:"forks_count"`
	Topics          []string  `json:"topics"`
	Fork            bool      `json:"fork"`
	UpdatedAt       time.Time `json:"updated_at"`
}

type githubEvent struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Repo struct {
		Name string `json:"name"`
	} `json:"repo"`
	CreatedAt time.Time `json:"created_at"`
}

// GitHubProvider reads the site owner's profile, repositories and activity.
type GitHubProvider struct {
	client *resty.Client
	cfg    GitHubConfig
}

var (
	_ Provider          = (*GitHubProvider)(nil)
	_ RepositoryFetcher = (*GitHubProvider)(nil)
)

func NewGitHubProvider(cfg GitHubConfig) *GitHubProvider {
	return NewGitHubProviderWithClient(cfg, nil)
}

func NewGitHubProviderWithClient(cfg GitHubConfig, client *resty.Client) *GitHubProvider {
	cfg.APIURL = strings.TrimRight(strings.TrimSpace(cfg.APIURL), "/")
	if cfg.APIURL == "" {
		cfg.APIURL = DefaultGitHubAPIURL
	}
	cfg.Username = strings.TrimSpace(cfg.Username)
	cfg.Token = strings.TrimSpace(cfg.Token)

	return &GitHubProvider{
		client: prepareClient(client),
		cfg:    cfg,
	}
}

func (p *GitHubProvider) Name() string { return NameGitHub }

func (p *GitHubProvider) Describe() domain.IntegrationDescriptor {
	return domain.IntegrationDescriptor{
		Name: NameGitHub,
		RequiredKeys: []domain.KeyPresence{
			domain.NewKeyPresence("GITHUB_USERNAME", p.cfg.Username),
			domain.NewKeyPresence("GITHUB_TOKEN", p.cfg.Token),
		},
		OptionalKeys: []domain.KeyPresence{
			domain.NewKeyPresence("GITHUB_API_URL", p.cfg.APIURL),
		},
	}
}

func (p *GitHubProvider) Status() domain.IntegrationStatus {
	return statusFromDescriptor(p.Describe())
}

func (p *GitHubProvider) Test(ctx context.Context) domain.IntegrationStatus {
	if p.Status() == domain.IntegrationUnconfigured {
		return domain.IntegrationUnconfigured
	}

	response, err := p.request(ctx).Get(p.cfg.APIURL + "/user")
	return probeStatus(response, err)
}

func (p *GitHubProvider) FetchProfile(ctx context.Context) (*domain.GitHubProfile, error) {
	if p.Status() == domain.IntegrationUnconfigured {
		return nil, notConfiguredError(NameGitHub)
	}

	var user githubUser
	response, err := p.request(ctx).
		SetResult(&user).
		Get(p.cfg.APIURL + "/users/" + url.PathEscape(p.cfg.Username))
	if err := checkResponse(NameGitHub, response, err); err != nil {
		return nil, err
	}

	return &domain.GitHubProfile{
		Login:       user.Login,
		Name:        user.Name,
		Bio:         user.Bio,
		AvatarURL:   user.AvatarURL,
		HTMLURL:     user.HTMLURL,
		PublicRepos: user.PublicRepos,
		Followers:   user.Followers,
		Following:   user.Following,
		CreatedAt:   user.CreatedAt,
	}, nil
}

// FetchRepositories returns the most recently updated non-fork repositories.
func (p *GitHubProvider) FetchRepositories(ctx context.Context, limit int) ([]domain.GitHubRepository, error) {
	if p.Status() == domain.IntegrationUnconfigured {
		return nil, notConfiguredError(NameGitHub)
	}
	limit = normalizeLimit(limit, defaultRepoLimit, maxRepoLimit)

	var repos []githubRepo
	response, err := p.request(ctx).
		SetQueryParams(map[string]string{
			"type":     "owner",
			"sort":     "updated",
			"per_page": strconv.Itoa(maxRepoLimit),
		}).
		SetResult(&repos).
		Get(p.cfg.APIURL + "/users/" + url.PathEscape(p.cfg.Username) + "/repos")
	if err := checkResponse(NameGitHub, response, err); err != nil {
		return nil, err
	}

	out := make([]domain.GitHubRepository, 0, limit)
	for _, r := range repos {
		if r.Fork {
			continue
		}
		out = append(out, domain.GitHubRepository{
			Name:        r.Name,
			FullName:    r.FullName,
			Description: r.Description,
			HTMLURL:     r.HTMLURL,
			Language:    r.Language,
			Stars:       r.StargazersCount,
			Forks:       r.ForksCount,
			Topics:      r.Topics,
			Fork:        r.Fork,
			UpdatedAt:   r.UpdatedAt,
		})
		if len(out) == limit {
			break
		}
	}

	return out, nil
}

func (p *GitHubProvider) FetchActivity(ctx context.Context, limit int) ([]domain.GitHubEvent, error) {
	if p.Status() == domain.IntegrationUnconfigured {
		return nil, notConfiguredError(NameGitHub)
	}
	limit = normalizeLimit(limit, defaultActivityLimit, maxActivityLimit)

	var events []githubEvent
	response, err := p.request(ctx).
		SetQueryParam("per_page", strconv.Itoa(limit)).
		SetResult(&events).
		Get(p.cfg.APIURL + "/users/" + url.PathEscape(p.cfg.Username) + "/events/public")
	if err := checkResponse(NameGitHub, response, err); err != nil {
		return nil, err
	}

	out := make([]domain.GitHubEvent, 0, len(events))
	for _, e := range events {
		out = append(out, domain.GitHubEvent{
			ID:        e.ID,
			Type:      e.Type,
			Repo:      e.Repo.Name,
			CreatedAt: e.CreatedAt,
		})
	}
	return out, nil
}

func (p *GitHubProvider) request(ctx context.Context) *resty.Request {
	return p.client.R().
		SetContext(ctx).
		SetHeader("Accept", "application/vnd.github+json").
		SetHeader("X-GitHub-Api-Version", githubAPIVersion).
		SetAuthToken(p.cfg.Token)
}
