package postgres

import (
	"fmt"
	"strings"
)

func joinAnd(conds []string) string {
	return strings.Join(conds, " AND ")
}

func joinComma(parts []string) string {
	return strings.Join(parts, ", ")
}

// placeholder returns the PostgreSQL positional placeholder for a 1-based index.
func placeholder(n int) string {
	return fmt.Sprintf("$%d", n)
}
