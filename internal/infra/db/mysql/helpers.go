package mysql

import "strings"

// quoteIdent backticks a table name already checked by config validation
func quoteIdent(s string) string {
	return "`" + strings.ReplaceAll(s, "`", "``") + "`"
}
