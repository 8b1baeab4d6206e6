package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/asaskevich/govalidator"
	"github.com/google/uuid"
	"github.com/kursadbilgin/folio-engine/internal/domain"
	"github.com/kursadbilgin/folio-engine/internal/provider"
	"go.uber.org/zap"
)

const (
	maxSubscriberNameLength = 200
	defaultSubscriberSource = "website"
)

type SubscriberService struct {
	list   provider.MailingList
	logger *zap.Logger
	now    func() time.Time
	newID  func() string
}

func NewSubscriberService(list provider.MailingList, logger *zap.Logger) (*SubscriberService, error) {
	if list == nil {
		return nil, fmt.Errorf("mailing list is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &SubscriberService{
		list:   list,
		logger: logger,
		now:    time.Now,
		newID:  uuid.NewString,
	}, nil
}

func (s *SubscriberService) Subscribe(ctx context.Context, subscriber *domain.Subscriber) (*domain.Subscriber, error) {
	if subscriber == nil {
		return nil, fmt.Errorf("%w: subscriber is required", domain.ErrValidation)
	}

	subscriber.Email = domain.NormalizeEmail(subscriber.Email)
	if err := validateEmail(subscriber.Email); err != nil {
		return nil, err
	}

	subscriber.Name = strings.TrimSpace(subscriber.Name)
	if n := len([]rune(subscriber.Name)); n > maxSubscriberNameLength {
		return nil, fmt.Errorf("%w: name exceeds %d characters (got %d)", domain.ErrValidation, maxSubscriberNameLength, n)
	}

	subscriber.Tags = domain.NormalizeTags(subscriber.Tags)
	subscriber.Source = strings.ToLower(strings.TrimSpace(subscriber.Source))
	if subscriber.Source == "" {
		subscriber.Source = defaultSubscriberSource
	}
	subscriber.ID = s.newID()
	subscriber.CreatedAt = s.now().UTC()

	if err := s.list.Subscribe(ctx, subscriber); err != nil {
		return nil, err
	}

	s.logger.Info("subscriber added",
		zap.String("subscriberId", subscriber.ID),
		zap.Strings("tags", subscriber.Tags),
	)
	return subscriber, nil
}

func (s *SubscriberService) Unsubscribe(ctx context.Context, email string) error {
	email = domain.NormalizeEmail(email)
	if err := validateEmail(email); err != nil {
		return err
	}

	if err := s.list.Unsubscribe(ctx, email); err != nil {
		return err
	}

	s.logger.Info("subscriber removed")
	return nil
}

func validateEmail(email string) error {
	if email == "" {
		return fmt.Errorf("%w: email is required", domain.ErrValidation)
	}
	if !govalidator.IsEmail(email) {
		return fmt.Errorf("%w: %q is not a valid email address", domain.ErrValidation, email)
	}
	return nil
}
