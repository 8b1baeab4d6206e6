package config

import (
	"fmt"
	"time"

	"github.com/Netflix/go-env"
)

type Config struct {
	DatabaseDSN   string `env:"DATABASE_DSN,required=true"`
	RedisURL      string `env:"REDIS_URL,required=true"`
	AdminAPIToken string `env:"ADMIN_API_TOKEN,required=true"`
	// RabbitMQURL is optional; dispatch events are not published when empty.
	RabbitMQURL string `env:"RABBITMQ_URL"`
	APIPort     int    `env:"API_PORT,default=8080"`
	LogLevel    string `env:"LOG_LEVEL,default=info"`

	GitHubAPIURL   string `env:"GITHUB_API_URL,default=https://api.github.com"`
	GitHubUsername string `env:"GITHUB_USERNAME"`
	GitHubToken    string `env:"GITHUB_TOKEN"`

	LinkedInAPIURL      string `env:"LINKEDIN_API_URL,default=https://api.linkedin.com"`
	LinkedInAccessToken string `env:"LINKEDIN_ACCESS_TOKEN"`
	LinkedInProfileURL  string `env:"LINKEDIN_PROFILE_URL"`

	MailAPIURL string `env:"MAIL_API_URL"`
	MailAPIKey string `env:"MAIL_API_KEY"`
	MailFrom   string `env:"MAIL_FROM"`

	DispatchConcurrency    int           `env:"DISPATCH_CONCURRENCY,default=4"`
	DispatchRateLimit      int           `env:"DISPATCH_RATE_LIMIT_PER_SEC,default=10"`
	DispatchSendTimeout    time.Duration `env:"DISPATCH_SEND_TIMEOUT,default=10s"`
	IntegrationTestTimeout time.Duration `env:"INTEGRATION_TEST_TIMEOUT,default=5s"`
	ProfileCacheTTL        time.Duration `env:"PROFILE_CACHE_TTL,default=10m"`
}

func Load() (*Config, error) {
	var cfg Config
	_, err := env.UnmarshalFromEnviron(&cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.DispatchConcurrency < 1 {
		return fmt.Errorf("DISPATCH_CONCURRENCY must be >= 1 (got %d)", c.DispatchConcurrency)
	}
	if c.DispatchRateLimit < 0 {
		return fmt.Errorf("DISPATCH_RATE_LIMIT_PER_SEC must be >= 0 (got %d)", c.DispatchRateLimit)
	}
	if c.DispatchSendTimeout <= 0 {
		return fmt.Errorf("DISPATCH_SEND_TIMEOUT must be positive")
	}
	if c.IntegrationTestTimeout <= 0 {
		return fmt.Errorf("INTEGRATION_TEST_TIMEOUT must be positive")
	}
	if c.ProfileCacheTTL <= 0 {
		return fmt.Errorf("PROFILE_CACHE_TTL must be positive")
	}
	return nil
}
