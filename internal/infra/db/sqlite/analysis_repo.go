package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"

	domain "github.com/bryanwahyu/text-analyzer/internal/domain/analysis"
	"github.com/bryanwahyu/text-analyzer/internal/infra/db/document"
)

// sortableTime is fixed width so TEXT ordering matches time ordering.
const sortableTime = "2006-01-02T15:04:05.000000Z"

// Open opens (or creates) a SQLite database. Use ":memory:" for an in-memory database.
func Open(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %q: %w", path, err)
	}
	// SQLite only allows one writer at a time; one connection also keeps :memory: shared
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if path != ":memory:" {
		if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
			db.Close()
			return nil, fmt.Errorf("set WAL mode: %w", err)
		}
	}
	return db, nil
}

type AnalysisRepository struct {
	db    *sql.DB
	table string
}

func NewAnalysisRepository(db *sql.DB, table string) *AnalysisRepository {
	return &AnalysisRepository{db: db, table: `"` + strings.ReplaceAll(table, `"`, `""`) + `"`}
}

func (r *AnalysisRepository) EnsureSchema(ctx context.Context) error {
	q := fmt.Sprintf(`
	CREATE TABLE IF NOT EXISTS %[1]s (
		id          TEXT PRIMARY KEY,
		pk          TEXT NOT NULL,
		analyzed_at TEXT NOT NULL,
		document    TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS "idx_%[2]s_pk_analyzed_at" ON %[1]s (pk, analyzed_at);`,
		r.table, strings.Trim(r.table, `"`))
	if _, err := r.db.ExecContext(ctx, q); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

func (r *AnalysisRepository) Upsert(ctx context.Context, rec *domain.Record) error {
	row, err := document.Encode(rec)
	if err != nil {
		return err
	}
	q := fmt.Sprintf(`
	INSERT INTO %s (id, pk, analyzed_at, document) VALUES (?, ?, ?, ?)
	ON CONFLICT(id) DO UPDATE SET
		pk = excluded.pk,
		analyzed_at = excluded.analyzed_at,
		document = excluded.document`, r.table)

	_, err = r.db.ExecContext(ctx, q, row.ID, row.Partition, row.AnalyzedAt.Format(sortableTime), string(row.Body))
	if err != nil {
		return fmt.Errorf("upsert %s: %w", row.ID, err)
	}
	return nil
}

func (r *AnalysisRepository) Recent(ctx context.Context, partition string, limit int) ([]*domain.Record, error) {
	q := fmt.Sprintf(`
	SELECT id, json_extract(document, '$.analysis'), json_extract(document, '$.metadata')
	FROM %s
	WHERE pk = ?
	ORDER BY analyzed_at DESC
	LIMIT ?`, r.table)

	rows, err := r.db.QueryContext(ctx, q, partition, limit)
	if err != nil {
		return nil, fmt.Errorf("query analyses: %w", err)
	}
	defer rows.Close()
	return document.ScanProjections(rows)
}
