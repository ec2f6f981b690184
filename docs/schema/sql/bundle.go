// Package sqldocs exposes record-model SQL bundles directly from the docs tree.
package sqldocs

import (
	_ "embed"
	"strings"
)

// SQLite contains the record-model SQLite DDL bundle.
//
//go:embed sqlite.sql
var SQLite string

// Postgres contains the record-model Postgres DDL bundle.
//
//go:embed postgres.sql
var Postgres string

// SplitStatements breaks a DDL bundle into individual statements. A
// statement ends at a line whose trimmed text ends in ";"; blank lines and
// "--" comments are discarded, and an unterminated tail statement is kept.
func SplitStatements(ddl string) []string {
	var stmts []string
	var pending []string

	emit := func() {
		if stmt := strings.TrimSpace(strings.Join(pending, "\n")); stmt != "" {
			stmts = append(stmts, stmt)
		}
		pending = pending[:0]
	}

	for _, line := range strings.Split(ddl, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "--") {
			continue
		}
		pending = append(pending, line)
		if strings.HasSuffix(trimmed, ";") {
			emit()
		}
	}
	emit()

	return stmts
}
