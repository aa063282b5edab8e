package postgres

import "strings"

// indexName derives the sort index name from an already quoted table name
func indexName(quotedTable string) string {
    return "idx_" + strings.Trim(quotedTable, `"`) + "_pk_analyzed_at"
}
