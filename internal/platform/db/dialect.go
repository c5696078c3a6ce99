package db

import (
	"fmt"
	"strconv"
	"strings"
)

// Dialect selects placeholder style and column types.
type Dialect string

const (
	DialectSQLite   Dialect = "sqlite"
	DialectPostgres Dialect = "postgres"
)

func ParseDialect(s string) (Dialect, error) {
	switch Dialect(s) {
	case DialectSQLite, DialectPostgres:
		return Dialect(s), nil
	default:
		return "", fmt.Errorf("unknown store driver %q", s)
	}
}

// Rebind turns "?" placeholders into "$n" for Postgres.
func (d Dialect) Rebind(q string) string {
	if d != DialectPostgres {
		return q
	}
	var b strings.Builder
	n := 0
	for _, r := range q {
		if r == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// JSONType is the column type used for JSON documents.
func (d Dialect) JSONType() string {
	if d == DialectPostgres {
		return "JSONB"
	}
	return "TEXT"
}
