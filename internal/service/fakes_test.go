package service

import (
	"context"
	"sync"

	"github.com/kursadbilgin/folio-engine/internal/domain"
	"github.com/kursadbilgin/folio-engine/internal/queue"
	"github.com/kursadbilgin/folio-engine/internal/repository"
)

type fakePostRepo struct {
	createFn    func(ctx context.Context, p *domain.Post) error
	updateFn    func(ctx context.Context, p *domain.Post) error
	getBySlugFn func(ctx context.Context, slug string) (*domain.Post, error)
	listFn      func(ctx context.Context, params repository.ListParams, publishedOnly bool) ([]domain.Post, int64, error)
	listSlugsFn func(ctx context.Context, base string) ([]string, error)
}

func (f *fakePostRepo) Create(ctx context.Context, p *domain.Post) error {
	if f.createFn != nil {
		return f.createFn(ctx, p)
	}
	return nil
}

func (f *fakePostRepo) Update(ctx context.Context, p *domain.Post) error {
	if f.updateFn != nil {
		return f.updateFn(ctx, p)
	}
	return nil
}

func (f *fakePostRepo) GetBySlug(ctx context.Context, slug string) (*domain.Post, error) {
	if f.getBySlugFn != nil {
		return f.getBySlugFn(ctx, slug)
	}
	return nil, domain.ErrNotFound
}

func (f *fakePostRepo) List(ctx context.Context, params repository.ListParams, publishedOnly bool) ([]domain.Post, int64, error) {
	if f.listFn != nil {
		return f.listFn(ctx, params, publishedOnly)
	}
	return nil, 0, nil
}

func (f *fakePostRepo) ListSlugsWithPrefix(ctx context.Context, base string) ([]string, error) {
	if f.listSlugsFn != nil {
		return f.listSlugsFn(ctx, base)
	}
	return nil, nil
}

type fakeProjectRepo struct {
	createFn    func(ctx context.Context, p *domain.Project) error
	getBySlugFn func(ctx context.Context, slug string) (*domain.Project, error)
	listFn      func(ctx context.Context, params repository.ListParams) ([]domain.Project, int64, error)
	listSlugsFn func(ctx context.Context, base string) ([]string, error)
}

func (f *fakeProjectRepo) Create(ctx context.Context, p *domain.Project) error {
	if f.createFn != nil {
		return f.createFn(ctx, p)
	}
	return nil
}

func (f *fakeProjectRepo) GetBySlug(ctx context.Context, slug string) (*domain.Project, error) {
	if f.getBySlugFn != nil {
		return f.getBySlugFn(ctx, slug)
	}
	return nil, domain.ErrNotFound
}

func (f *fakeProjectRepo) List(ctx context.Context, params repository.ListParams) ([]domain.Project, int64, error) {
	if f.listFn != nil {
		return f.listFn(ctx, params)
	}
	return nil, 0, nil
}

func (f *fakeProjectRepo) ListSlugsWithPrefix(ctx context.Context, base string) ([]string, error) {
	if f.listSlugsFn != nil {
		return f.listSlugsFn(ctx, base)
	}
	return nil, nil
}

type fakeBulkSender struct {
	sendBulkFn func(ctx context.Context, msg domain.DispatchMessage) (*domain.DispatchResult, error)
}

func (f *fakeBulkSender) SendBulk(ctx context.Context, msg domain.DispatchMessage) (*domain.DispatchResult, error) {
	if f.sendBulkFn != nil {
		return f.sendBulkFn(ctx, msg)
	}
	return &domain.DispatchResult{}, nil
}

type fakePublisher struct {
	publishFn func(ctx context.Context, queueName string, event queue.DispatchEvent) error

	mu     sync.Mutex
	events []queue.DispatchEvent
}

func (f *fakePublisher) Publish(ctx context.Context, queueName string, event queue.DispatchEvent) error {
	f.mu.Lock()
	f.events = append(f.events, event)
	f.mu.Unlock()

	if f.publishFn != nil {
		return f.publishFn(ctx, queueName, event)
	}
	return nil
}

func (f *fakePublisher) Close() error {
	return nil
}

func (f *fakePublisher) Events() []queue.DispatchEvent {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]queue.DispatchEvent(nil), f.events...)
}

type fakeMailingList struct {
	listSubscribersFn func(ctx context.Context, tags []string) ([]domain.Subscriber, error)
	sendFn            func(ctx context.Context, recipient string, subject string, content string) error
	subscribeFn       func(ctx context.Context, subscriber *domain.Subscriber) error
	unsubscribeFn     func(ctx context.Context, email string) error
}

func (f *fakeMailingList) ListSubscribers(ctx context.Context, tags []string) ([]domain.Subscriber, error) {
	if f.listSubscribersFn != nil {
		return f.listSubscribersFn(ctx, tags)
	}
	return nil, nil
}

func (f *fakeMailingList) Send(ctx context.Context, recipient string, subject string, content string) error {
	if f.sendFn != nil {
		return f.sendFn(ctx, recipient, subject, content)
	}
	return nil
}

func (f *fakeMailingList) Subscribe(ctx context.Context, subscriber *domain.Subscriber) error {
	if f.subscribeFn != nil {
		return f.subscribeFn(ctx, subscriber)
	}
	return nil
}

func (f *fakeMailingList) Unsubscribe(ctx context.Context, email string) error {
	if f.unsubscribeFn != nil {
		return f.unsubscribeFn(ctx, email)
	}
	return nil
}
