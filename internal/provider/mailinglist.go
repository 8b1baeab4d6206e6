package provider

import (
	"context"
	"fmt"
	"strings"

	"github.com/kursadbilgin/folio-engine/internal/domain"
	"go.uber.org/zap"
)

// SubscriberStore is the persistence port owned by the mailing-list provider.
type SubscriberStore interface {
	List(ctx context.Context) ([]domain.Subscriber, error)
	Create(ctx context.Context, s *domain.Subscriber) error
	DeleteByEmail(ctx context.Context, email string) error
}

// MailingListConfig holds the mail transport settings read from the environment.
type MailingListConfig struct {
	APIURL string
	APIKey string
	From   string
}

// MailingListProvider owns the subscriber list and delivers single messages
// through the mail transport.
type MailingListProvider struct {
	cfg    MailingListConfig
	store  SubscriberStore
	mailer Mailer
	logger *zap.Logger
}

var (
	_ Provider    = (*MailingListProvider)(nil)
	_ MailingList = (*MailingListProvider)(nil)
)

// NewMailingListProvider builds the provider. When mailer is nil and the
// transport keys are present, an HTTPMailer is created from cfg.
func NewMailingListProvider(cfg MailingListConfig, store SubscriberStore, mailer Mailer) (*MailingListProvider, error) {
	cfg.APIURL = strings.TrimSpace(cfg.APIURL)
	cfg.APIKey = strings.TrimSpace(cfg.APIKey)
	cfg.From = strings.TrimSpace(cfg.From)

	p := &MailingListProvider{cfg: cfg, store: store, mailer: mailer, logger: zap.NewNop()}
	if p.mailer == nil && p.Describe().Configured() {
		httpMailer, err := NewHTTPMailer(cfg.APIURL, cfg.APIKey)
		if err != nil {
			return nil, fmt.Errorf("mailing-list provider: %w", err)
		}
		p.mailer = httpMailer
	}

	return p, nil
}

func (p *MailingListProvider) SetLogger(logger *zap.Logger) {
	if p == nil || logger == nil {
		return
	}
	p.logger = logger
}

func (p *MailingListProvider) Name() string { return NameMailingList }

func (p *MailingListProvider) Describe() domain.IntegrationDescriptor {
	return domain.IntegrationDescriptor{
		Name: NameMailingList,
		RequiredKeys: []domain.KeyPresence{
			domain.NewKeyPresence("MAIL_API_URL", p.cfg.APIURL),
			domain.NewKeyPresence("MAIL_API_KEY", p.cfg.APIKey),
			domain.NewKeyPresence("MAIL_FROM", p.cfg.From),
		},
	}
}

func (p *MailingListProvider) Status() domain.IntegrationStatus {
	if p.store == nil || p.mailer == nil {
		return domain.IntegrationUnconfigured
	}
	return statusFromDescriptor(p.Describe())
}

func (p *MailingListProvider) Test(ctx context.Context) domain.IntegrationStatus {
	if p.Status() == domain.IntegrationUnconfigured {
		return domain.IntegrationUnconfigured
	}
	if err := p.mailer.Probe(ctx); err != nil {
		return domain.IntegrationUnreachable
	}
	return domain.IntegrationReachable
}

// ListSubscribers returns subscribers in store order, keeping those whose
// tags intersect tags. An empty filter returns everyone.
func (p *MailingListProvider) ListSubscribers(ctx context.Context, tags []string) ([]domain.Subscriber, error) {
	if p.store == nil {
		return nil, notConfiguredError(NameMailingList)
	}

	all, err := p.store.List(ctx)
	if err != nil {
		return nil, upstreamError(NameMailingList, 0, "failed to list subscribers", false, err)
	}

	filter := domain.NormalizeTags(tags)
	if len(filter) == 0 {
		return all, nil
	}

	out := make([]domain.Subscriber, 0, len(all))
	for _, s := range all {
		if s.HasAnyTag(filter) {
			out = append(out, s)
		}
	}
	return out, nil
}

func (p *MailingListProvider) Send(ctx context.Context, recipient string, subject string, content string) error {
	if p.Status() == domain.IntegrationUnconfigured {
		return notConfiguredError(NameMailingList)
	}

	receipt, err := p.mailer.SendMail(ctx, Mail{
		From:    p.cfg.From,
		To:      recipient,
		Subject: subject,
		HTML:    content,
	})
	if err != nil {
		return err
	}

	if receipt != nil {
		p.logger.Debug("mail accepted by transport",
			zap.String("recipient", recipient),
			zap.Int("status", receipt.StatusCode),
			zap.String("messageId", receipt.MessageID),
		)
	}
	return nil
}

func (p *MailingListProvider) Subscribe(ctx context.Context, subscriber *domain.Subscriber) error {
	if p.store == nil {
		return notConfiguredError(NameMailingList)
	}
	return p.store.Create(ctx, subscriber)
}

func (p *MailingListProvider) Unsubscribe(ctx context.Context, email string) error {
	if p.store == nil {
		return notConfiguredError(NameMailingList)
	}
	return p.store.DeleteByEmail(ctx, domain.NormalizeEmail(email))
}
