package structure

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	e "github.com/roach88/chainq/internal/expression"
	"github.com/roach88/chainq/internal/querymodel"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil)) // Suppress logs in tests
}

func newTestParser(t *testing.T) *QueryParser {
	t.Helper()
	p, err := NewQueryParser(WithLogger(discardLogger()))
	require.NoError(t, err)
	return p
}

func mustParse(t *testing.T, root e.Expr) *querymodel.QueryModel {
	t.Helper()
	model, err := newTestParser(t).Parse(root, "Student")
	require.NoError(t, err)
	return model
}

func students() *e.QuerySource {
	return e.Source("students", "Student")
}

// student builds a one-parameter lambda over Student items.
func student(name string, body func(p *e.Parameter) e.Expr) *e.Lambda {
	return e.Lambda1(name, "Student", body)
}

// item builds a one-parameter lambda with no declared type.
func item(name string, body func(p *e.Parameter) e.Expr) *e.Lambda {
	return e.Lambda1(name, "", body)
}

func member(name string, value e.Expr) e.NewMember {
	return e.NewMember{Name: name, Value: value}
}

// bodyFormats formats the body clauses of m, one string per clause.
func bodyFormats(m *querymodel.QueryModel) []string {
	var out []string
	for _, c := range m.BodyClauses.All() {
		switch clause := c.(type) {
		case *querymodel.WhereClause:
			out = append(out, "where "+e.Format(clause.Predicate))
		case *querymodel.AdditionalFromClause:
			out = append(out, "from "+clause.ReferenceName()+" in "+e.Format(clause.FromExpression))
		case *querymodel.OrderByClause:
			s := "orderby"
			for _, o := range clause.Orderings.All() {
				s += " " + e.Format(o.Expression) + " " + string(o.Direction)
			}
			out = append(out, s)
		}
	}
	return out
}

func selectorOf(t *testing.T, m *querymodel.QueryModel) string {
	t.Helper()
	sel, ok := m.SelectOrGroupClause.(*querymodel.SelectClause)
	require.True(t, ok, "terminal is %T", m.SelectOrGroupClause)
	return e.Format(sel.Selector)
}
