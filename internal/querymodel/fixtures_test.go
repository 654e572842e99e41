package querymodel

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/chainq/internal/expression"
)

// studentsModel builds:
//
//	from s in students
//	join e in enrollments on [s].Id equals [e].StudentId
//	where ([s].Age > 18)
//	orderby [s].Name asc, [s].Age desc
//	select [s].Name => Distinct() => Take(3)
type studentsModel struct {
	model   *QueryModel
	main    *MainFromClause
	join    *JoinClause
	where   *WhereClause
	orderBy *OrderByClause
	sel     *SelectClause
}

func newStudentsModel(t *testing.T) studentsModel {
	t.Helper()

	s := expression.Param("s", "Student")
	main, err := NewMainFromClause(s, expression.Source("students", "Student"))
	require.NoError(t, err)
	sRef := &expression.SourceReference{Source: main}

	e := expression.Param("e", "Enrollment")
	join, err := NewJoinClause(main, e, expression.Source("enrollments", "Enrollment"),
		expression.Prop(sRef, "Id"), expression.Prop(e, "StudentId"))
	require.NoError(t, err)
	join.InnerKeySelector = expression.Prop(&expression.SourceReference{Source: join}, "StudentId")
	main.JoinClauses.Append(join)

	where, err := NewWhereClause(main, expression.Bin(expression.OpGt, expression.Prop(sRef, "Age"), expression.Int(18)))
	require.NoError(t, err)

	byName, err := NewOrdering(expression.Prop(sRef, "Name"), Ascending)
	require.NoError(t, err)
	byAge, err := NewOrdering(expression.Prop(sRef, "Age"), Descending)
	require.NoError(t, err)
	orderBy, err := NewOrderByClause(where, byName, byAge)
	require.NoError(t, err)

	sel, err := NewSelectClause(orderBy, expression.Prop(sRef, "Name"))
	require.NoError(t, err)
	sel.ResultModifications.Append(Distinct{})
	sel.ResultModifications.Append(Take{Count: expression.Int(3)})

	model, err := NewQueryModel(main, sel)
	require.NoError(t, err)
	require.NoError(t, model.AddBodyClause(where))
	require.NoError(t, model.AddBodyClause(orderBy))

	return studentsModel{model: model, main: main, join: join, where: where, orderBy: orderBy, sel: sel}
}
