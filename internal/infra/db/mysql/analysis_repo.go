package mysql

import (
	"context"
	"database/sql"
	"fmt"

	domain "github.com/bryanwahyu/text-analyzer/internal/domain/analysis"
	"github.com/bryanwahyu/text-analyzer/internal/infra/db/document"
)

// AnalysisRepository stores analysis documents in a JSON column.
type AnalysisRepository struct {
	db    *sql.DB
	table string
}

func NewAnalysisRepository(db *sql.DB, table string) *AnalysisRepository {
	return &AnalysisRepository{db: db, table: quoteIdent(table)}
}

// EnsureSchema creates the documents table when absent
func (r *AnalysisRepository) EnsureSchema(ctx context.Context) error {
	q := fmt.Sprintf(`
CREATE TABLE IF NOT EXISTS %s (
  id          VARCHAR(64) NOT NULL PRIMARY KEY,
  pk          VARCHAR(64) NOT NULL,
  analyzed_at DATETIME(6) NOT NULL,
  document    JSON        NOT NULL,
  KEY idx_pk_analyzed_at (pk, analyzed_at)
);`, r.table)
	if _, err := r.db.ExecContext(ctx, q); err != nil {
		return fmt.Errorf("create table %s: %w", r.table, err)
	}
	return nil
}

// Upsert insert/update the document keyed by id
func (r *AnalysisRepository) Upsert(ctx context.Context, rec *domain.Record) error {
	row, err := document.Encode(rec)
	if err != nil {
		return err
	}
	q := fmt.Sprintf(`
INSERT INTO %s (id, pk, analyzed_at, document)
VALUES (?,?,?,?)
ON DUPLICATE KEY UPDATE
  pk=VALUES(pk), analyzed_at=VALUES(analyzed_at), document=VALUES(document);`, r.table)

	_, err = r.db.ExecContext(ctx, q, row.ID, row.Partition, row.AnalyzedAt, string(row.Body))
	return err
}

// Recent returns projections of one partition ordered by analyzed_at desc
func (r *AnalysisRepository) Recent(ctx context.Context, partition string, limit int) ([]*domain.Record, error) {
	q := fmt.Sprintf(`
SELECT id, JSON_EXTRACT(document, '$.analysis'), JSON_EXTRACT(document, '$.metadata')
FROM %s
WHERE pk=?
ORDER BY analyzed_at DESC
LIMIT ?;`, r.table)

	rows, err := r.db.QueryContext(ctx, q, partition, limit)
	if err != nil {
		return nil, fmt.Errorf("querying analyses: %w", err)
	}
	defer rows.Close()
	return document.ScanProjections(rows)
}
