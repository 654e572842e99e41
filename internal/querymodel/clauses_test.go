package querymodel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/chainq/internal/expression"
	"github.com/roach88/chainq/internal/qerr"
)

func TestMainFromClause_Construction(t *testing.T) {
	s := expression.Param("s", "Student")
	source := expression.Source("students", "Student")

	main, err := NewMainFromClause(s, source)
	require.NoError(t, err)

	assert.Same(t, s, main.Identifier)
	assert.Equal(t, "s", main.ReferenceName())
	assert.Equal(t, 0, main.JoinClauses.Len())
	assert.Nil(t, main.Previous())
}

func TestConstructors_InvalidArgument(t *testing.T) {
	s := expression.Param("s", "Student")
	main, err := NewMainFromClause(s, expression.Source("students", "Student"))
	require.NoError(t, err)

	tests := []struct {
		name string
		call func() error
		arg  string
	}{
		{"main without identifier", func() error { _, err := NewMainFromClause(nil, expression.Source("x", "X")); return err }, "identifier"},
		{"main with empty identifier", func() error { _, err := NewMainFromClause(expression.Param("", ""), expression.Source("x", "X")); return err }, "identifier"},
		{"main without source", func() error { _, err := NewMainFromClause(s, nil); return err }, "querySource"},
		{"where without predicate", func() error { _, err := NewWhereClause(main, nil); return err }, "predicate"},
		{"where without previous", func() error { _, err := NewWhereClause(nil, expression.Bool(true)); return err }, "previous"},
		{"ordering without expression", func() error { _, err := NewOrdering(nil, Ascending); return err }, "expression"},
		{"ordering with bad direction", func() error { _, err := NewOrdering(expression.Int(1), "sideways"); return err }, "direction"},
		{"select without selector", func() error { _, err := NewSelectClause(main, nil); return err }, "selector"},
		{"group without key", func() error { _, err := NewGroupClause(main, nil, expression.Int(1)); return err }, "keySelector"},
		{"join without inner key", func() error {
			_, err := NewJoinClause(main, expression.Param("e", ""), expression.Source("e", "E"), expression.Int(1), nil)
			return err
		}, "innerKeySelector"},
		{"additional from without expression", func() error {
			_, err := NewAdditionalFromClause(main, expression.Param("c", ""), nil)
			return err
		}, "fromExpression"},
		{"model without terminal", func() error { _, err := NewQueryModel(main, nil); return err }, "selectOrGroupClause"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.call()
			require.Error(t, err)
			assert.True(t, qerr.IsInvalidArgument(err))

			var qe *qerr.Error
			require.ErrorAs(t, err, &qe)
			assert.Equal(t, tt.arg, qe.Details["argument"])
		})
	}
}

func TestPredecessorChain(t *testing.T) {
	fx := newStudentsModel(t)

	assert.Nil(t, fx.main.Previous())
	assert.Same(t, fx.main, fx.join.Previous())
	assert.Same(t, fx.main, fx.where.Previous())
	assert.Same(t, fx.where, fx.orderBy.Previous())
	assert.Same(t, fx.orderBy, fx.sel.Previous())
}

func TestQueryModel_AddBodyClauseNil(t *testing.T) {
	fx := newStudentsModel(t)
	err := fx.model.AddBodyClause(nil)
	assert.True(t, qerr.IsInvalidArgument(err))
	assert.Equal(t, 2, fx.model.BodyClauses.Len())
}

func TestQueryModel_Clauses(t *testing.T) {
	fx := newStudentsModel(t)

	clauses := fx.model.Clauses()
	require.Len(t, clauses, 5)
	assert.Same(t, fx.main, clauses[0])
	assert.Same(t, fx.join, clauses[1])
	assert.Same(t, fx.sel, clauses[4])

	assert.Len(t, fx.model.Referents(), 2)
}

func TestResultModification_Names(t *testing.T) {
	assert.Equal(t, "FirstOrDefault", First{OrDefault: true}.Name())
	assert.Equal(t, "Single", Single{}.Name())
	assert.Equal(t, "Take", Take{Count: expression.Int(2)}.Name())
}
