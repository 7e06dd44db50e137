package postgres

import (
	sq "github.com/Masterminds/squirrel"
)

// Builder returns a squirrel statement builder using $n placeholders.
func Builder() sq.StatementBuilderType {
	return sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
}

// CaseByID builds `CASE idCol WHEN id THEN value ... ELSE column END` for a
// batched per-row update of column. ids fixes the WHEN order. A non-empty cast
// is applied to every value.
func CaseByID[V any](idCol, column, cast string, values map[int64]V, ids []int64) sq.CaseBuilder {
	c := sq.Case(idCol)
	for _, id := range ids {
		placeholder := "?"
		if cast != "" {
			placeholder = "?::" + cast
		}
		c = c.When(sq.Expr("?", id), sq.Expr(placeholder, values[id]))
	}
	return c.Else(column)
}
