package persistence

import (
	"context"
	"sync"

	"github.com/bryanwahyu/text-analyzer/internal/config"
	domain "github.com/bryanwahyu/text-analyzer/internal/domain/analysis"
)

// OpenFunc builds a handle from validated settings.
type OpenFunc func(ctx context.Context, cfg config.Persistence) (*Handle, error)

// Provider owns the single document-store handle of the process.
// The first caller builds it under the lock; later callers reuse it.
// A failed build is not kept, so the next caller tries again.
type Provider struct {
	cfg  config.Persistence
	open OpenFunc

	mu     sync.Mutex
	handle *Handle
}

func NewProvider(cfg config.Persistence) *Provider {
	return &Provider{cfg: cfg, open: Open}
}

// NewProviderWith is NewProvider with a custom opener.
func NewProviderWith(cfg config.Persistence, open OpenFunc) *Provider {
	return &Provider{cfg: cfg, open: open}
}

// Repository returns the shared handle. Missing settings fail with
// *domain.ConfigurationError before any connection is attempted.
func (p *Provider) Repository(ctx context.Context) (domain.Repository, error) {
	h, err := p.get(ctx)
	if err != nil {
		return nil, err
	}
	return h, nil
}

// Warm builds the handle now instead of on the first request.
func (p *Provider) Warm(ctx context.Context) error {
	_, err := p.get(ctx)
	return err
}

// Check implements middleware.HealthChecker.
func (p *Provider) Check(ctx context.Context) error {
	h, err := p.get(ctx)
	if err != nil {
		return err
	}
	return h.Ping(ctx)
}

func (p *Provider) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.handle == nil {
		return nil
	}
	err := p.handle.Close()
	p.handle = nil
	return err
}

func (p *Provider) get(ctx context.Context) (*Handle, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.handle != nil {
		return p.handle, nil
	}
	if err := p.cfg.Validate(); err != nil {
		return nil, err
	}
	h, err := p.open(ctx, p.cfg)
	if err != nil {
		return nil, err
	}
	p.handle = h
	return h, nil
}
