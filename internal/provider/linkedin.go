package provider

import (
	"context"
	"strings"

	"github.com/go-resty/resty/v2"
	"github.com/kursadbilgin/folio-engine/internal/domain"
	"github.com/tidwall/gjson"
)

const (
	DefaultLinkedInAPIURL = "https://api.linkedin.com"

	linkedInProfileBaseURL = "https://www.linkedin.com/in/"
	linkedInMeProjection   = "(id,vanityName,localizedFirstName,localizedLastName,localizedHeadline,profilePicture(displayImage~:playableStreams))"
)

// LinkedInConfig holds the social-profile settings read from the environment.
type LinkedInConfig struct {
	APIURL      string
	AccessToken string
	ProfileURL  string
}

// LinkedInProvider reads the site owner's social profile.
type LinkedInProvider struct {
	client *resty.Client
	cfg    LinkedInConfig
}

var (
	_ Provider             = (*LinkedInProvider)(nil)
	_ SocialProfileFetcher = (*LinkedInProvider)(nil)
)

func NewLinkedInProvider(cfg LinkedInConfig) *LinkedInProvider {
	return NewLinkedInProviderWithClient(cfg, nil)
}

func NewLinkedInProviderWithClient(cfg LinkedInConfig, client *resty.Client) *LinkedInProvider {
	cfg.APIURL = strings.TrimRight(strings.TrimSpace(cfg.APIURL), "/")
	if cfg.APIURL == "" {
		cfg.APIURL = DefaultLinkedInAPIURL
	}
	cfg.AccessToken = strings.TrimSpace(cfg.AccessToken)
	cfg.ProfileURL = strings.TrimSpace(cfg.ProfileURL)

	return &LinkedInProvider{
		client: prepareClient(client),
		cfg:    cfg,
	}
}

func (p *LinkedInProvider) Name() string { return NameLinkedIn }

func (p *LinkedInProvider) Describe() domain.IntegrationDescriptor {
	return domain.IntegrationDescriptor{
		Name: NameLinkedIn,
		RequiredKeys: []domain.KeyPresence{
			domain.NewKeyPresence("LINKEDIN_ACCESS_TOKEN", p.cfg.AccessToken),
		},
		OptionalKeys: []domain.KeyPresence{
			domain.NewKeyPresence("LINKEDIN_PROFILE_URL", p.cfg.ProfileURL),
			domain.NewKeyPresence("LINKEDIN_API_URL", p.cfg.APIURL),
		},
	}
}

func (p *LinkedInProvider) Status() domain.IntegrationStatus {
	return statusFromDescriptor(p.Describe())
}

func (p *LinkedInProvider) Test(ctx context.Context) domain.IntegrationStatus {
	if p.Status() == domain.IntegrationUnconfigured {
		return domain.IntegrationUnconfigured
	}

	response, err := p.request(ctx).
		SetQueryParam("projection", "(id)").
		Get(p.cfg.APIURL + "/v2/me")
	return probeStatus(response, err)
}

func (p *LinkedInProvider) FetchSocialProfile(ctx context.Context) (*domain.SocialProfile, error) {
	if p.Status() == domain.IntegrationUnconfigured {
		return nil, notConfiguredError(NameLinkedIn)
	}

	response, err := p.request(ctx).
		SetQueryParam("projection", linkedInMeProjection).
		Get(p.cfg.APIURL + "/v2/me")
	if err := checkResponse(NameLinkedIn, response, err); err != nil {
		return nil, err
	}

	body := response.Body()
	if !gjson.ValidBytes(body) {
		return nil, upstreamError(NameLinkedIn, response.StatusCode(), "malformed profile response", false, nil)
	}
	doc := gjson.ParseBytes(body)

	profile := &domain.SocialProfile{
		ID:         doc.Get("id").String(),
		FirstName:  doc.Get("localizedFirstName").String(),
		LastName:   doc.Get("localizedLastName").String(),
		Headline:   doc.Get("localizedHeadline").String(),
		PictureURL: largestPicture(doc),
		ProfileURL: p.cfg.ProfileURL,
	}
	if profile.ProfileURL == "" {
		if vanity := doc.Get("vanityName").String(); vanity != "" {
			profile.ProfileURL = linkedInProfileBaseURL + vanity
		}
	}

	return profile, nil
}

// FetchSocialLinks returns the outbound links derived from the live profile.
func (p *LinkedInProvider) FetchSocialLinks(ctx context.Context) ([]domain.SocialLink, error) {
	profile, err := p.FetchSocialProfile(ctx)
	if err != nil {
		return nil, err
	}

	links := make([]domain.SocialLink, 0, 1)
	if profile.ProfileURL != "" {
		label := strings.TrimSpace(profile.FirstName + " " + profile.LastName)
		if label == "" {
			label = "LinkedIn"
		}
		links = append(links, domain.SocialLink{
			Network: NameLinkedIn,
			Label:   label,
			URL:     profile.ProfileURL,
		})
	}
	return links, nil
}

func (p *LinkedInProvider) request(ctx context.Context) *resty.Request {
	return p.client.R().
		SetContext(ctx).
		SetHeader("Accept", "application/json").
		SetHeader("X-Restli-Protocol-Version", "2.0.0").
		SetAuthToken(p.cfg.AccessToken)
}

// largestPicture picks the last display image rendition, which LinkedIn
// orders from smallest to largest.
func largestPicture(doc gjson.Result) string {
	elements := doc.Get(`profilePicture.displayImage\~.elements`).Array()
	for i := len(elements) - 1; i >= 0; i-- {
		if id := elements[i].Get("identifiers.0.identifier").String(); id != "" {
			return id
		}
	}
	return ""
}
