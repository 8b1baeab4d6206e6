package provider

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-resty/resty/v2"
)

// Mail is one outbound message handed to the mail transport.
type Mail struct {
	From    string
	To      string
	Subject string
	HTML    string
}

// MailReceipt stores transport call metadata for logging.
type MailReceipt struct {
	StatusCode int
	MessageID  string
}

// Mailer is the outbound mail transport port.
type Mailer interface {
	SendMail(ctx context.Context, mail Mail) (*MailReceipt, error)
	Probe(ctx context.Context) error
}

type mailRequest struct {
	From    string `json:"from"`
	To      string `json:"to"`
	Subject string `json:"subject"`
	HTML    string `json:"html"`
}

type mailResponse struct {
	ID string `json:"id"`
}

// HTTPMailer posts messages to a JSON mail API using bearer authentication.
type HTTPMailer struct {
	client   *resty.Client
	endpoint string
	apiKey   string
}

var _ Mailer = (*HTTPMailer)(nil)

func NewHTTPMailer(endpoint string, apiKey string) (*HTTPMailer, error) {
	return NewHTTPMailerWithClient(endpoint, apiKey, nil)
}

func NewHTTPMailerWithClient(endpoint string, apiKey string, client *resty.Client) (*HTTPMailer, error) {
	trimmedEndpoint := strings.TrimSpace(endpoint)
	if trimmedEndpoint == "" {
		return nil, fmt.Errorf("mail endpoint is required")
	}
	if _, err := url.ParseRequestURI(trimmedEndpoint); err != nil {
		return nil, fmt.Errorf("invalid mail endpoint: %w", err)
	}

	return &HTTPMailer{
		client:   prepareClient(client),
		endpoint: trimmedEndpoint,
		apiKey:   strings.TrimSpace(apiKey),
	}, nil
}

func (m *HTTPMailer) SendMail(ctx context.Context, mail Mail) (*MailReceipt, error) {
	if m == nil || m.client == nil {
		return nil, fmt.Errorf("mailer is not initialized")
	}
	if strings.TrimSpace(mail.To) == "" {
		return nil, fmt.Errorf("mail recipient is required")
	}

	var result mailResponse
	response, err := m.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetAuthToken(m.apiKey).
		SetBody(mailRequest{
			From:    mail.From,
			To:      mail.To,
			Subject: mail.Subject,
			HTML:    mail.HTML,
		}).
		SetResult(&result).
		Post(m.endpoint)
	if err := checkResponse(NameMailingList, response, err); err != nil {
		return nil, err
	}

	return &MailReceipt{
		StatusCode: response.StatusCode(),
		MessageID:  messageID(response, result.ID),
	}, nil
}

// Probe checks that the transport answers and accepts the API key. Any
// non-auth, non-5xx answer counts as reachable since send endpoints rarely
// implement GET.
func (m *HTTPMailer) Probe(ctx context.Context) error {
	if m == nil || m.client == nil {
		return fmt.Errorf("mailer is not initialized")
	}

	response, err := m.client.R().
		SetContext(ctx).
		SetAuthToken(m.apiKey).
		Get(m.endpoint)
	if err != nil {
		return upstreamError(NameMailingList, 0, "probe failed", !errors.Is(err, context.Canceled), err)
	}

	statusCode := response.StatusCode()
	switch {
	case statusCode == http.StatusUnauthorized || statusCode == http.StatusForbidden:
		return upstreamError(NameMailingList, statusCode, "mail api rejected credentials", false, nil)
	case statusCode >= http.StatusInternalServerError:
		return upstreamError(NameMailingList, statusCode, upstreamErrorMessage(statusCode, ""), true, nil)
	}
	return nil
}

func messageID(response *resty.Response, bodyID string) string {
	if id := strings.TrimSpace(bodyID); id != "" {
		return id
	}
	if response == nil {
		return ""
	}

	for _, key := range []string{"X-Message-ID", "X-Request-ID", "X-Request-Id"} {
		if value := strings.TrimSpace(response.Header().Get(key)); value != "" {
			return value
		}
	}
	return ""
}
