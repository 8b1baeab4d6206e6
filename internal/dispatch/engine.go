package dispatch

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/kursadbilgin/folio-engine/internal/domain"
	"github.com/kursadbilgin/folio-engine/internal/observability"
	"github.com/kursadbilgin/folio-engine/internal/provider"
	"github.com/kursadbilgin/folio-engine/internal/ratelimit"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultConcurrency = 4
	DefaultSendTimeout = 10 * time.Second

	// RateLimitScope is the limiter key shared by every newsletter send.
	RateLimitScope = "newsletter"
)

const (
	outcomeSkipped = iota
	outcomeSent
	outcomeFailed
)

// RecipientSource enumerates subscribers whose tags intersect the filter.
type RecipientSource interface {
	ListSubscribers(ctx context.Context, tags []string) ([]domain.Subscriber, error)
}

// Sender delivers one message to one recipient.
type Sender interface {
	Send(ctx context.Context, recipient string, subject string, content string) error
}

type Option func(*Engine)

func WithConcurrency(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.concurrency = n
		}
	}
}

func WithSendTimeout(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.sendTimeout = d
		}
	}
}

// WithRateLimiter throttles sends through a shared limiter. Limiter errors
// other than caller cancellation are logged and the send proceeds.
func WithRateLimiter(limiter ratelimit.RateLimiter) Option {
	return func(e *Engine) {
		e.rateLimiter = limiter
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

func WithMetrics(metrics *observability.Metrics) Option {
	return func(e *Engine) {
		e.metrics = metrics
	}
}

// Engine fans one newsletter out to every matching subscriber with bounded
// concurrency. A failed recipient never aborts the others.
type Engine struct {
	source      RecipientSource
	sender      Sender
	rateLimiter ratelimit.RateLimiter
	concurrency int
	sendTimeout time.Duration
	logger      *zap.Logger
	metrics     *observability.Metrics
	now         func() time.Time
}

func NewEngine(source RecipientSource, sender Sender, opts ...Option) (*Engine, error) {
	if source == nil {
		return nil, fmt.Errorf("recipient source is required")
	}
	if sender == nil {
		return nil, fmt.Errorf("sender is required")
	}

	e := &Engine{
		source:      source,
		sender:      sender,
		concurrency: DefaultConcurrency,
		sendTimeout: DefaultSendTimeout,
		logger:      zap.NewNop(),
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}

	return e, nil
}

type recipientOutcome struct {
	state  int
	reason string
}

// SendBulk sends msg to every subscriber matching msg.Tags. The returned error
// is non-nil only for invalid input or when recipients cannot be enumerated;
// per-recipient failures are reported in the result.
func (e *Engine) SendBulk(ctx context.Context, msg domain.DispatchMessage) (*domain.DispatchResult, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if err := msg.Validate(); err != nil {
		return nil, err
	}

	recipients, err := e.source.ListSubscribers(ctx, msg.Tags)
	if err != nil {
		if errors.Is(err, domain.ErrNotConfigured) || errors.Is(err, domain.ErrUpstreamUnavailable) {
			return nil, fmt.Errorf("failed to list recipients: %w", err)
		}
		return nil, fmt.Errorf("%w: failed to list recipients: %w", domain.ErrUpstreamUnavailable, err)
	}

	result := &domain.DispatchResult{}
	if len(recipients) == 0 {
		e.logger.Info("newsletter matched no subscribers", zap.Strings("tags", msg.Tags))
		return result, nil
	}

	outcomes := make([]recipientOutcome, len(recipients))

	g := new(errgroup.Group)
	g.SetLimit(e.concurrency)

	for i, recipient := range recipients {
		if ctx.Err() != nil {
			break
		}
		if !e.waitForCapacity(ctx) {
			break
		}

		g.Go(func() error {
			// The caller may have gone away while this slot waited for a worker.
			if ctx.Err() != nil {
				return nil
			}
			outcomes[i] = e.sendOne(ctx, recipient.Email, msg)
			return nil
		})
	}
	_ = g.Wait()

	for i, outcome := range outcomes {
		switch outcome.state {
		case outcomeSent:
			result.SuccessCount++
		case outcomeFailed:
			result.FailureCount++
			result.Failures = append(result.Failures, domain.RecipientError{
				Recipient: recipients[i].Email,
				Reason:    outcome.reason,
			})
		default:
			result.SkippedCount++
		}
	}
	result.Canceled = result.SkippedCount > 0

	e.metrics.AddDispatchRecipients("skipped", result.SkippedCount)

	fields := []zap.Field{
		zap.Int("recipients", len(recipients)),
		zap.Int("sent", result.SuccessCount),
		zap.Int("failed", result.FailureCount),
		zap.Int("skipped", result.SkippedCount),
	}
	if result.Canceled {
		e.logger.Warn("newsletter dispatch canceled before all recipients were attempted", fields...)
	} else {
		e.logger.Info("newsletter dispatch finished", fields...)
	}

	return result, nil
}

func (e *Engine) waitForCapacity(ctx context.Context) bool {
	if e.rateLimiter == nil {
		return true
	}

	if err := e.rateLimiter.Wait(ctx, RateLimitScope); err != nil {
		if ctx.Err() != nil {
			return false
		}
		e.logger.Warn("rate limiter unavailable, sending without throttle", zap.Error(err))
	}
	return true
}

// sendOne runs under its own timeout detached from the caller, so a send that
// has started is allowed to finish after cancellation.
func (e *Engine) sendOne(ctx context.Context, recipient string, msg domain.DispatchMessage) (outcome recipientOutcome) {
	sendCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), e.sendTimeout)
	defer cancel()

	e.metrics.IncDispatchInFlight()
	defer e.metrics.DecDispatchInFlight()

	start := e.now()
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("newsletter send panicked",
				zap.String("recipient", recipient),
				zap.Any("panic", r),
			)
			outcome = recipientOutcome{state: outcomeFailed, reason: fmt.Sprintf("send panicked: %v", r)}
		}

		label := "sent"
		if outcome.state == outcomeFailed {
			label = "failed"
		}
		e.metrics.IncDispatchRecipient(label)
		e.metrics.ObserveDispatchSendDuration(label, e.now().Sub(start))
	}()

	err := e.sender.Send(sendCtx, recipient, msg.Subject, msg.Content)
	if err == nil {
		return recipientOutcome{state: outcomeSent}
	}

	reason := strings.TrimSpace(err.Error())
	if errors.Is(err, context.DeadlineExceeded) {
		reason = fmt.Sprintf("send timed out after %s", e.sendTimeout)
	}

	e.logger.Warn("newsletter send failed",
		zap.String("recipient", recipient),
		zap.Bool("transient", provider.IsTransient(err)),
		zap.Error(err),
	)
	return recipientOutcome{state: outcomeFailed, reason: reason}
}
