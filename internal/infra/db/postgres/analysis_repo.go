package postgres

import (
    "context"
    "database/sql"
    "fmt"

    "github.com/lib/pq"

    domain "github.com/bryanwahyu/text-analyzer/internal/domain/analysis"
    "github.com/bryanwahyu/text-analyzer/internal/infra/db/document"
)

type AnalysisRepository struct {
    db    *sql.DB
    table string
}

func NewAnalysisRepository(db *sql.DB, table string) *AnalysisRepository {
    return &AnalysisRepository{db: db, table: pq.QuoteIdentifier(table)}
}

// EnsureSchema creates the documents table and its sort index when absent
func (r *AnalysisRepository) EnsureSchema(ctx context.Context) error {
    q := fmt.Sprintf(`
CREATE TABLE IF NOT EXISTS %[1]s (
  id          TEXT        PRIMARY KEY,
  pk          TEXT        NOT NULL,
  analyzed_at TIMESTAMPTZ NOT NULL,
  document    JSONB       NOT NULL
);
CREATE INDEX IF NOT EXISTS %[2]s ON %[1]s (pk, analyzed_at DESC);`,
        r.table, pq.QuoteIdentifier(indexName(r.table)))
    if _, err := r.db.ExecContext(ctx, q); err != nil {
        return fmt.Errorf("create table %s: %w", r.table, err)
    }
    return nil
}

// Upsert inserts or replaces the document keyed by id
func (r *AnalysisRepository) Upsert(ctx context.Context, rec *domain.Record) error {
    row, err := document.Encode(rec)
    if err != nil {
        return err
    }
    q := fmt.Sprintf(`
INSERT INTO %s (id, pk, analyzed_at, document)
VALUES ($1,$2,$3,$4)
ON CONFLICT (id) DO UPDATE SET
  pk=EXCLUDED.pk,
  analyzed_at=EXCLUDED.analyzed_at,
  document=EXCLUDED.document;`, r.table)

    _, err = r.db.ExecContext(ctx, q, row.ID, row.Partition, row.AnalyzedAt, string(row.Body))
    return err
}

// Recent returns projections of one partition ordered by analyzed_at desc
func (r *AnalysisRepository) Recent(ctx context.Context, partition string, limit int) ([]*domain.Record, error) {
    q := fmt.Sprintf(`
SELECT id, document->'analysis', document->'metadata'
FROM %s
WHERE pk=$1
ORDER BY analyzed_at DESC
LIMIT $2;`, r.table)

    rows, err := r.db.QueryContext(ctx, q, partition, limit)
    if err != nil {
        return nil, fmt.Errorf("querying analyses: %w", err)
    }
    defer rows.Close()
    return document.ScanProjections(rows)
}
