// Package document encodes analysis records for the SQL backends, which keep
// each record as one JSON document next to its id, partition and sort key.
package document

import (
	"encoding/json"
	"fmt"
	"time"

	domain "github.com/bryanwahyu/text-analyzer/internal/domain/analysis"
)

// Row is the column set every SQL backend writes.
type Row struct {
	ID         string
	Partition  string
	AnalyzedAt time.Time
	Body       []byte
}

// Encode turns a record into a Row. The body holds the whole record, originalText included.
func Encode(r *domain.Record) (Row, error) {
	body, err := json.Marshal(r)
	if err != nil {
		return Row{}, fmt.Errorf("marshal analysis document: %w", err)
	}
	return Row{
		ID:         string(r.ID),
		Partition:  r.PartitionKey,
		AnalyzedAt: r.Metadata.AnalyzedAt.UTC(),
		Body:       body,
	}, nil
}

// Decode rebuilds a projection from the id and the extracted analysis and metadata sub-documents.
func Decode(id string, analysisJSON, metadataJSON []byte) (*domain.Record, error) {
	rec := &domain.Record{ID: domain.RecordID(id)}
	if err := json.Unmarshal(analysisJSON, &rec.Analysis); err != nil {
		return nil, fmt.Errorf("decode analysis of %s: %w", id, err)
	}
	if err := json.Unmarshal(metadataJSON, &rec.Metadata); err != nil {
		return nil, fmt.Errorf("decode metadata of %s: %w", id, err)
	}
	return rec, nil
}

// Scanner is implemented by *sql.Rows.
type Scanner interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}

// ScanProjections reads (id, analysis, metadata) rows.
func ScanProjections(rows Scanner) ([]*domain.Record, error) {
	out := []*domain.Record{}
	for rows.Next() {
		var (
			id             string
			analysis, meta []byte
		)
		if err := rows.Scan(&id, &analysis, &meta); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		rec, err := Decode(id, analysis, meta)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating rows: %w", err)
	}
	return out, nil
}
