package repository

import (
	"context"
	"fmt"

	"github.com/kursadbilgin/folio-engine/internal/domain"
	"gorm.io/gorm"
)

// GormSubscriberRepo backs the mailing-list provider's subscriber store.
type GormSubscriberRepo struct {
	db *gorm.DB
}

func NewGormSubscriberRepo(db *gorm.DB) *GormSubscriberRepo {
	return &GormSubscriberRepo{db: db}
}

// List returns every subscriber in signup order.
func (r *GormSubscriberRepo) List(ctx context.Context) ([]domain.Subscriber, error) {
	var models []SubscriberModel
	err := r.db.WithContext(ctx).
		Order("created_at ASC").
		Order("id ASC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}

	subscribers := make([]domain.Subscriber, 0, len(models))
	for i := range models {
		subscribers = append(subscribers, *subscriberModelToDomain(&models[i]))
	}
	return subscribers, nil
}

func (r *GormSubscriberRepo) Create(ctx context.Context, s *domain.Subscriber) error {
	model := subscriberModelFromDomain(s)
	if model == nil {
		return fmt.Errorf("%w: subscriber is required", domain.ErrValidation)
	}
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		if IsUniqueViolation(err) {
			return fmt.Errorf("%w: %s is already subscribed", domain.ErrConflict, model.Email)
		}
		return err
	}
	*s = *subscriberModelToDomain(model)
	return nil
}

func (r *GormSubscriberRepo) DeleteByEmail(ctx context.Context, email string) error {
	result := r.db.WithContext(ctx).
		Where("email = ?", email).
		Delete(&SubscriberModel{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}
