package postgres

import (
	"strconv"
	"strings"
)

// sqlBuilder accumulates predicates together with their positional
// parameters. Column names never pass through it; only bound values do, so
// every value reaches the database as a parameter and the WHERE clause is
// assembled from fixed fragments.
type sqlBuilder struct {
	predicates []string
	args       []any
}

// bind registers a value and returns its placeholder ($1, $2, ...).
func (b *sqlBuilder) bind(v any) string {
	b.args = append(b.args, v)
	return "$" + strconv.Itoa(len(b.args))
}

// where appends a predicate that will be ANDed into the final clause.
func (b *sqlBuilder) where(pred string) {
	b.predicates = append(b.predicates, pred)
}

// clause renders the accumulated predicates as a WHERE clause, or an empty
// string when no filter was added.
func (b *sqlBuilder) clause() string {
	if len(b.predicates) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(b.predicates, " AND ")
}
