package expression

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeReferent string

func (f fakeReferent) ReferenceName() string { return string(f) }

func TestTransform_UnchangedKeepsIdentity(t *testing.T) {
	lam := Lambda1("s", "Student", func(s *Parameter) Expr {
		return Bin(OpGt, Prop(s, "Age"), Int(18))
	})

	out, err := Transform(lam, func(e Expr) (Expr, error) { return e, nil })
	require.NoError(t, err)
	assert.Same(t, lam, out)
}

func TestTransform_RebuildsOnlyChangedSpine(t *testing.T) {
	s := Param("s", "Student")
	left := Prop(s, "Age")
	right := Method(Prop(s, "Name"), "StartsWith", Str("A"))
	body := Bin(OpAnd, Bin(OpGt, left, Int(18)), right)

	out, err := Transform(body, func(e Expr) (Expr, error) {
		if c, ok := e.(*Constant); ok && Equal(c, Int(18)) {
			return Int(21), nil
		}
		return e, nil
	})
	require.NoError(t, err)

	bin := out.(*Binary)
	assert.NotSame(t, body, bin)
	assert.Same(t, right, bin.Right, "untouched subtree keeps identity")
	assert.Equal(t, "((s.Age > 21) && s.Name.StartsWith(\"A\"))", Format(out))
}

func TestTransform_PropagatesError(t *testing.T) {
	boom := errors.New("boom")
	_, err := Transform(Bin(OpAdd, Int(1), Int(2)), func(e Expr) (Expr, error) {
		if _, ok := e.(*Constant); ok {
			return nil, boom
		}
		return e, nil
	})
	assert.ErrorIs(t, err, boom)
}

func TestReplaceParameter(t *testing.T) {
	lam := Lambda1("s", "Student", func(s *Parameter) Expr {
		return Bin(OpGt, Prop(s, "Age"), Int(5))
	})
	ref := &SourceReference{Source: fakeReferent("s")}

	out := ReplaceParameter(lam.Body, lam.Params[0], ref)
	assert.Equal(t, "([s].Age > 5)", Format(out))
	assert.Empty(t, FreeParameters(out))
}

func TestReplaceParameter_SameNameDifferentParameter(t *testing.T) {
	a := Param("x", "")
	b := Param("x", "")
	body := Bin(OpAdd, a, b)

	out := ReplaceParameter(body, a, Int(1))
	assert.Equal(t, "(1 + x)", Format(out))
	assert.Equal(t, []*Parameter{b}, FreeParameters(out))
}

func TestReplaceParameter_ShadowedByNestedLambda(t *testing.T) {
	p := Param("c", "Course")
	inner := &Lambda{Params: []*Parameter{p}, Body: Prop(p, "Title")}
	body := Method(p, "Any", inner)

	out := ReplaceParameter(body, p, Str("x"))
	call := out.(*Call)
	assert.Equal(t, "\"x\"", Format(call.Object))
	assert.Same(t, inner, call.Args[0])
}

func TestSimplifyCompositeMembers(t *testing.T) {
	s := &SourceReference{Source: fakeReferent("s")}
	c := &SourceReference{Source: fakeReferent("c")}
	composite := Composite(NewMember{Name: "s", Value: s}, NewMember{Name: "c", Value: c})

	expr := Bin(OpEq, Prop(composite, "s", "Id"), Prop(composite, "c", "StudentId"))
	out := SimplifyCompositeMembers(expr)

	assert.Equal(t, "([s].Id == [c].StudentId)", Format(out))
	assert.False(t, ContainsComposite(out))
}

func TestSimplifyCompositeMembers_Nested(t *testing.T) {
	x := &SourceReference{Source: fakeReferent("x")}
	inner := Composite(NewMember{Name: "b", Value: x})
	outer := Composite(NewMember{Name: "a", Value: inner})

	out := SimplifyCompositeMembers(Prop(outer, "a", "b", "Name"))
	assert.Equal(t, "[x].Name", Format(out))
}

func TestSimplifyCompositeMembers_UnknownMemberKept(t *testing.T) {
	composite := Composite(NewMember{Name: "a", Value: Int(1)})
	out := SimplifyCompositeMembers(Prop(composite, "missing"))
	assert.True(t, ContainsComposite(out))
}

func TestFreeParameters_LambdaBinds(t *testing.T) {
	s := Param("s", "Student")
	c := Param("c", "Course")
	body := Method(Prop(s, "Courses"), "Any", &Lambda{
		Params: []*Parameter{c},
		Body:   Bin(OpEq, Prop(c, "Owner"), s),
	})

	assert.Equal(t, []*Parameter{s}, FreeParameters(body))
}

func TestReferencesAndRebind(t *testing.T) {
	from := fakeReferent("s")
	to := fakeReferent("t")
	expr := Bin(OpAnd, Prop(&SourceReference{Source: from}, "A"), Prop(&SourceReference{Source: from}, "B"))

	assert.Equal(t, []Referent{from}, References(expr))

	out := Rebind(expr, map[Referent]Referent{from: to})
	assert.Equal(t, []Referent{to}, References(out))
	assert.Equal(t, []Referent{from}, References(expr), "input unchanged")
}

func TestWalk_SkipChildren(t *testing.T) {
	expr := Bin(OpAdd, Bin(OpMul, Int(1), Int(2)), Int(3))
	var visited []string
	Walk(expr, func(e Expr) bool {
		visited = append(visited, Format(e))
		_, isBinary := e.(*Binary)
		return e == Expr(expr) || !isBinary
	})
	assert.Equal(t, []string{"((1 * 2) + 3)", "(1 * 2)", "3"}, visited)
}
