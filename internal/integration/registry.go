// Package integration holds the fixed set of configured providers and runs
// the aggregate status, validate and test operations used by the admin console.
package integration

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/kursadbilgin/folio-engine/internal/domain"
	"github.com/kursadbilgin/folio-engine/internal/observability"
	"github.com/kursadbilgin/folio-engine/internal/provider"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	defaultProbeTimeout     = 5 * time.Second
	defaultProbeConcurrency = 4
)

// ProviderStatus is one entry of an aggregate status or test result.
type ProviderStatus struct {
	Name   string
	Status domain.IntegrationStatus
}

// Registry is built once at startup and is read-only afterwards.
type Registry struct {
	providers    []provider.Provider
	byName       map[string]provider.Provider
	probeTimeout time.Duration
	concurrency  int
	logger       *zap.Logger
	metrics      *observability.Metrics
	now          func() time.Time
}

type Option func(*Registry)

func WithProbeTimeout(d time.Duration) Option {
	return func(r *Registry) {
		if d > 0 {
			r.probeTimeout = d
		}
	}
}

func WithConcurrency(n int) Option {
	return func(r *Registry) {
		if n > 0 {
			r.concurrency = n
		}
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(r *Registry) {
		if logger != nil {
			r.logger = logger
		}
	}
}

func WithMetrics(metrics *observability.Metrics) Option {
	return func(r *Registry) {
		r.metrics = metrics
	}
}

// NewRegistry registers providers in the given order. Names must be unique.
func NewRegistry(providers []provider.Provider, opts ...Option) (*Registry, error) {
	r := &Registry{
		providers:    make([]provider.Provider, 0, len(providers)),
		byName:       make(map[string]provider.Provider, len(providers)),
		probeTimeout: defaultProbeTimeout,
		concurrency:  defaultProbeConcurrency,
		logger:       zap.NewNop(),
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}

	for _, p := range providers {
		if p == nil {
			return nil, fmt.Errorf("provider is required")
		}
		name := strings.TrimSpace(p.Name())
		if name == "" {
			return nil, fmt.Errorf("provider name is required")
		}
		if _, exists := r.byName[name]; exists {
			return nil, fmt.Errorf("duplicate provider %q", name)
		}
		r.byName[name] = p
		r.providers = append(r.providers, p)
	}

	return r, nil
}

// Names returns provider names in registration order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.providers))
	for _, p := range r.providers {
		names = append(names, p.Name())
	}
	return names
}

func (r *Registry) Get(name string) (provider.Provider, bool) {
	p, ok := r.byName[strings.TrimSpace(name)]
	return p, ok
}

// AggregateStatus calls Status on every provider. Status is local-only so
// providers are visited sequentially.
func (r *Registry) AggregateStatus() []ProviderStatus {
	out := make([]ProviderStatus, len(r.providers))
	for i, p := range r.providers {
		out[i] = ProviderStatus{Name: p.Name(), Status: safeStatus(p)}
	}
	return out
}

// Validate returns every provider's descriptor in registration order.
func (r *Registry) Validate() []domain.IntegrationDescriptor {
	out := make([]domain.IntegrationDescriptor, len(r.providers))
	for i, p := range r.providers {
		out[i] = p.Describe()
	}
	return out
}

// TestAll probes every configured provider concurrently. Each probe gets its
// own timeout; a timeout, panic or failure only marks that provider unreachable.
// Unconfigured providers are reported without being probed.
func (r *Registry) TestAll(ctx context.Context) []ProviderStatus {
	if ctx == nil {
		ctx = context.Background()
	}

	out := make([]ProviderStatus, len(r.providers))

	g := new(errgroup.Group)
	g.SetLimit(r.concurrency)
	for i, p := range r.providers {
		out[i] = ProviderStatus{Name: p.Name(), Status: domain.IntegrationUnreachable}

		if safeStatus(p) == domain.IntegrationUnconfigured {
			out[i].Status = domain.IntegrationUnconfigured
			continue
		}

		g.Go(func() error {
			out[i].Status = r.probe(ctx, p)
			return nil
		})
	}
	_ = g.Wait()

	return out
}

func (r *Registry) probe(ctx context.Context, p provider.Provider) (status domain.IntegrationStatus) {
	probeCtx, cancel := context.WithTimeout(ctx, r.probeTimeout)
	defer cancel()

	start := r.now()
	defer func() {
		r.metrics.ObserveIntegrationProbe(p.Name(), status.String(), r.now().Sub(start))
	}()

	done := make(chan domain.IntegrationStatus, 1)
	go func() {
		defer func() {
			if recovered := recover(); recovered != nil {
				r.logger.Error("integration probe panicked",
					zap.String("provider", p.Name()),
					zap.Any("panic", recovered),
				)
				done <- domain.IntegrationUnreachable
			}
		}()
		done <- p.Test(probeCtx)
	}()

	select {
	case status = <-done:
	case <-probeCtx.Done():
		status = domain.IntegrationUnreachable
		r.logger.Warn("integration probe timed out",
			zap.String("provider", p.Name()),
			zap.Duration("timeout", r.probeTimeout),
		)
	}

	if !status.IsValid() {
		status = domain.IntegrationUnreachable
	}
	if status == domain.IntegrationUnreachable {
		r.logger.Info("integration unreachable", zap.String("provider", p.Name()))
	}
	return status
}

// StatusMap flattens an ordered result into a name→status map.
func StatusMap(statuses []ProviderStatus) map[string]domain.IntegrationStatus {
	out := make(map[string]domain.IntegrationStatus, len(statuses))
	for _, s := range statuses {
		out[s.Name] = s.Status
	}
	return out
}

func safeStatus(p provider.Provider) (status domain.IntegrationStatus) {
	defer func() {
		if recover() != nil {
			status = domain.IntegrationUnconfigured
		}
	}()
	return p.Status()
}
