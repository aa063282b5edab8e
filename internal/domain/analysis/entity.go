package analysis

import "time"

// PartitionKey is the single logical partition every analysis document lives in.
const PartitionKey = "analysis"

// PreviewLength is the number of characters kept in Metadata.TextPreview.
const PreviewLength = 100

// PreviewMarker is appended to a preview when the original text was cut.
const PreviewMarker = "..."

// RecordID identifier type
type RecordID string

// Result holds the statistics computed over one text. It is a value object:
// nothing mutates it after Analyze returns.
type Result struct {
	WordCount              int     `json:"wordCount"`
	CharacterCount         int     `json:"characterCount"`
	CharacterCountNoSpaces int     `json:"characterCountNoSpaces"`
	SentenceCount          int     `json:"sentenceCount"`
	ParagraphCount         int     `json:"paragraphCount"`
	AverageWordLength      float64 `json:"averageWordLength"`
	LongestWord            string  `json:"longestWord"`
	ReadingTimeMinutes     float64 `json:"readingTimeMinutes"`
}

// Metadata describes when and on what an analysis ran.
type Metadata struct {
	AnalyzedAt  time.Time `json:"analyzedAt"`
	TextPreview string    `json:"textPreview"`
}

// Record is the persisted document for one analysis.
// OriginalText is only populated on write; Recent projections leave it empty.
type Record struct {
	ID           RecordID `json:"id"`
	PartitionKey string   `json:"pk,omitempty"`
	Analysis     Result   `json:"analysis"`
	Metadata     Metadata `json:"metadata"`
	OriginalText string   `json:"originalText,omitempty"`
}

// Projection returns the record as returned by history queries: id, analysis and metadata.
func (r *Record) Projection() *Record {
	return &Record{
		ID:       r.ID,
		Analysis: r.Analysis,
		Metadata: r.Metadata,
	}
}
