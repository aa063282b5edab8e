package analysis

import "context"

// Repository port for the document store holding analysis records
type Repository interface {
	// Upsert writes the full record within its partition. SQL stores key it by
	// ID; the object store keys it by analyzedAt and ID.
	Upsert(ctx context.Context, r *Record) error
	// Recent returns at most limit projections from one partition,
	// newest analyzedAt first. No data is an empty result, not an error.
	Recent(ctx context.Context, partition string, limit int) ([]*Record, error)
}
