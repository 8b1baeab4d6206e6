package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/kursadbilgin/folio-engine/internal/domain"
	"github.com/kursadbilgin/folio-engine/internal/observability"
	"github.com/kursadbilgin/folio-engine/internal/queue"
	"go.uber.org/zap"
)

const publishTimeout = 5 * time.Second

// BulkSender is satisfied by dispatch.Engine.
type BulkSender interface {
	SendBulk(ctx context.Context, msg domain.DispatchMessage) (*domain.DispatchResult, error)
}

type NewsletterService struct {
	sender    BulkSender
	publisher queue.Publisher
	logger    *zap.Logger
	now       func() time.Time
	newID     func() string
}

// NewNewsletterService wires the bulk sender. publisher may be nil, in which
// case no dispatch events are emitted.
func NewNewsletterService(sender BulkSender, publisher queue.Publisher, logger *zap.Logger) (*NewsletterService, error) {
	if sender == nil {
		return nil, fmt.Errorf("bulk sender is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &NewsletterService{
		sender:    sender,
		publisher: publisher,
		logger:    logger,
		now:       time.Now,
		newID:     uuid.NewString,
	}, nil
}

// Send delivers one newsletter to every subscriber matching msg.Tags.
func (s *NewsletterService) Send(ctx context.Context, msg domain.DispatchMessage) (*domain.DispatchResult, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	msg.Subject = strings.TrimSpace(msg.Subject)
	msg.Content = strings.TrimSpace(msg.Content)
	msg.Tags = domain.NormalizeTags(msg.Tags)
	if err := msg.Validate(); err != nil {
		return nil, err
	}

	logger := observability.WithContextLogger(s.logger, ctx)

	result, err := s.sender.SendBulk(ctx, msg)
	if err != nil {
		logger.Error("newsletter dispatch failed",
			zap.String("subject", msg.Subject),
			zap.Strings("tags", msg.Tags),
			zap.Error(err),
		)
		return nil, err
	}

	logger.Info("newsletter dispatched",
		zap.String("subject", msg.Subject),
		zap.Strings("tags", msg.Tags),
		zap.Int("sent", result.SuccessCount),
		zap.Int("failed", result.FailureCount),
		zap.Int("skipped", result.SkippedCount),
	)

	s.publishDispatched(ctx, logger, msg, result)

	return result, nil
}

// publishDispatched never fails the request; the newsletter has already gone out.
func (s *NewsletterService) publishDispatched(ctx context.Context, logger *zap.Logger, msg domain.DispatchMessage, result *domain.DispatchResult) {
	if s.publisher == nil || result.Total() == 0 {
		return
	}

	event := queue.NewDispatchEvent(s.newID(), msg, result, s.now())
	if requestID, ok := observability.RequestIDFromContext(ctx); ok {
		event.RequestID = requestID
	}

	publishCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	if err := s.publisher.Publish(publishCtx, queue.NewsletterDispatchedQueue, event); err != nil {
		logger.Error("failed to publish newsletter dispatched event",
			zap.String("eventId", event.EventID),
			zap.Error(err),
		)
	}
}
