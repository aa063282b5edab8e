package analysis

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/bryanwahyu/text-analyzer/internal/application"
	domain "github.com/bryanwahyu/text-analyzer/internal/domain/analysis"
)

// RepositoryProvider hands out the shared repository handle, building it on first use.
type RepositoryProvider interface {
	Repository(ctx context.Context) (domain.Repository, error)
}

// Service implements the analyze and history use-cases.
// Service is safe for concurrent use; the only shared state is the provider's handle.
type Service struct {
	Repos RepositoryProvider
	Clock application.Clock
	NewID func() string
}

func NewService(repos RepositoryProvider) *Service {
	return &Service{
		Repos: repos,
		Clock: application.SystemClock{},
		NewID: uuid.NewString,
	}
}

// Submit validates text, analyzes it and appends the record.
// Blank text fails with *domain.ValidationError before any other work.
func (s *Service) Submit(ctx context.Context, text string) (*domain.Record, error) {
	if domain.IsBlank(text) {
		return nil, domain.ErrNoText()
	}
	return s.Append(ctx, text, domain.Analyze(text))
}

// Append builds a fresh record for originalText and writes it once, no retry.
func (s *Service) Append(ctx context.Context, originalText string, result domain.Result) (*domain.Record, error) {
	repo, err := s.repository(ctx, "open store for append")
	if err != nil {
		return nil, err
	}

	rec := &domain.Record{
		ID:           domain.RecordID(s.newID()),
		PartitionKey: domain.PartitionKey,
		Analysis:     result,
		Metadata: domain.Metadata{
			AnalyzedAt:  s.now(),
			TextPreview: domain.Preview(originalText),
		},
		OriginalText: originalText,
	}

	if err := repo.Upsert(ctx, rec); err != nil {
		return nil, &domain.PersistenceError{Op: "upsert analysis " + string(rec.ID), Err: err}
	}
	zerolog.Ctx(ctx).Debug().Str("id", string(rec.ID)).Msg("analysis stored")
	return rec, nil
}

// Recent returns the latest projections from the analysis partition,
// with limit clamped to [1, 100].
func (s *Service) Recent(ctx context.Context, limit int) ([]*domain.Record, error) {
	repo, err := s.repository(ctx, "open store for history")
	if err != nil {
		return nil, err
	}

	limit = domain.ClampLimit(limit)
	list, err := repo.Recent(ctx, domain.PartitionKey, limit)
	if err != nil {
		return nil, &domain.PersistenceError{Op: "query recent analyses", Err: err}
	}
	if list == nil {
		list = []*domain.Record{}
	}
	// repositories are trusted for ordering, not for the cap
	if len(list) > limit {
		list = list[:limit]
	}
	return list, nil
}

// repository resolves the handle; configuration failures pass through untouched.
func (s *Service) repository(ctx context.Context, op string) (domain.Repository, error) {
	repo, err := s.Repos.Repository(ctx)
	if err != nil {
		if domain.IsConfiguration(err) {
			return nil, err
		}
		return nil, &domain.PersistenceError{Op: op, Err: err}
	}
	return repo, nil
}

func (s *Service) now() time.Time {
	var t time.Time
	if s.Clock != nil {
		t = s.Clock.Now()
	} else {
		t = time.Now()
	}
	// microseconds keep the stored value identical across every backend
	return t.UTC().Truncate(time.Microsecond)
}

func (s *Service) newID() string {
	if s.NewID != nil {
		return s.NewID()
	}
	return uuid.NewString()
}
