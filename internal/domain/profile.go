package domain

import "time"

// GitHubProfile is the public profile of the configured source-hosting account.
type GitHubProfile struct {
	Login       string    `json:"login"`
	Name        string    `json:"name"`
	Bio         string    `json:"bio"`
	AvatarURL   string    `json:"avatarUrl"`
	HTMLURL     string    `json:"htmlUrl"`
	PublicRepos int       `json:"publicRepos"`
	Followers   int       `json:"followers"`
	Following   int       `json:"following"`
	CreatedAt   time.Time `json:"createdAt"`
}

// GitHubRepository is one public repository shown on the portfolio.
type GitHubRepository struct {
	Name        string    `json:"name"`
	FullName    string    `json:"fullName"`
	Description string    `json:"description"`
	HTMLURL     string    `json:"htmlUrl"`
	Language    string    `json:"language"`
	Stars       int       `json:"stars"`
	Forks       int       `json:"forks"`
	Topics      []string  `json:"topics"`
	Fork        bool      `json:"fork"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// GitHubEvent is one entry of the account's recent public activity.
type GitHubEvent struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	Repo      string    `json:"repo"`
	CreatedAt time.Time `json:"createdAt"`
}

// SocialProfile is the social-network profile of the site owner.
type SocialProfile struct {
	ID         string `json:"id"`
	FirstName  string `json:"firstName"`
	LastName   string `json:"lastName"`
	Headline   string `json:"headline"`
	PictureURL string `json:"pictureUrl"`
	ProfileURL string `json:"profileUrl"`
}

// SocialLink is a labelled outbound link rendered in the site footer.
type SocialLink struct {
	Network string `json:"network"`
	Label   string `json:"label"`
	URL     string `json:"url"`
}
