package structure

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	e "github.com/roach88/chainq/internal/expression"
	"github.com/roach88/chainq/internal/qerr"
)

func TestDefaultRegistry_Complete(t *testing.T) {
	r := DefaultRegistry()
	require.NoError(t, r.Check())
	assert.NotEmpty(t, r.Signatures())
}

func TestRegistry_CheckReportsMissingKinds(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(Signature{Method: "Where", Args: []ArgKind{ArgLambda1}}, KindWhere, newWhereNode))

	err := r.Check()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Select")
	assert.NotContains(t, err.Error(), "Where,")
}

func TestRegistry_DuplicateSignature(t *testing.T) {
	r := NewRegistry()
	sig := Signature{Method: "Where", Args: []ArgKind{ArgLambda1}}
	require.NoError(t, r.Register(sig, KindWhere, newWhereNode))

	err := r.Register(sig, KindWhere, newWhereNode)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate signature Where(source, lambda/1)")
}

func TestRegistry_RegisterInvalid(t *testing.T) {
	r := NewRegistry()
	assert.True(t, qerr.IsInvalidArgument(r.Register(Signature{}, KindWhere, newWhereNode)))
	assert.True(t, qerr.IsInvalidArgument(r.Register(Signature{Method: "Where"}, KindWhere, nil)))
}

func TestRegistry_Recognize(t *testing.T) {
	r := DefaultRegistry()
	src := e.Source("students", "Student")
	one := student("s", func(s *e.Parameter) e.Expr { return s })
	two := e.Lambda2("a", "", "b", "", func(a, b *e.Parameter) e.Expr { return a })

	tests := []struct {
		name string
		call *e.Call
		ok   bool
	}{
		{"where", e.Op(src, "Where", one), true},
		{"indexed where", e.Op(src, "Where", two), false},
		{"select many one lambda", e.Op(src, "SelectMany", one), true},
		{"select many two lambdas", e.Op(src, "SelectMany", one, two), true},
		{"select many wrong shape", e.Op(src, "SelectMany", two), false},
		{"join", e.Op(src, "Join", e.Source("x", "X"), one, one, two), true},
		{"join missing result selector", e.Op(src, "Join", e.Source("x", "X"), one, one), false},
		{"take constant", e.Op(src, "Take", e.Int(3)), true},
		{"take lambda", e.Op(src, "Take", one), false},
		{"count", e.Op(src, "Count"), true},
		{"count predicate", e.Op(src, "Count", one), true},
		{"sum selector", e.Op(src, "Sum", one), true},
		{"group by two lambdas", e.Op(src, "GroupBy", one, one), true},
		{"unknown", e.Op(src, "Zip", src), false},
		{"method call", e.Method(src, "Where", one), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			factory, err := r.Recognize(tt.call)
			if tt.ok {
				require.NoError(t, err)
				assert.NotNil(t, factory)
				return
			}
			require.Error(t, err)
			assert.True(t, qerr.IsUnsupportedOperator(err))
		})
	}
}

func TestClassifyArg(t *testing.T) {
	three := &e.Lambda{Params: []*e.Parameter{e.Param("a", ""), e.Param("b", ""), e.Param("c", "")}, Body: e.Int(1)}

	assert.Equal(t, ArgLambda1, classifyArg(student("s", func(s *e.Parameter) e.Expr { return s })))
	assert.Equal(t, ArgUnknown, classifyArg(three))
	assert.Equal(t, ArgValue, classifyArg(e.Int(1)))
	assert.Equal(t, ArgSequence, classifyArg(e.Source("x", "X")))
	assert.Equal(t, ArgUnknown, classifyArg(nil))
	assert.Equal(t, ArgUnknown, classifyArg((*e.Lambda)(nil)))
	assert.Equal(t, ArgUnknown, classifyArg((*e.Constant)(nil)))
}

func TestRegistry_RecognizeRejectsMissingArguments(t *testing.T) {
	r := DefaultRegistry()
	src := e.Source("students", "Student")

	_, err := r.Recognize(nil)
	assert.True(t, qerr.IsInvalidArgument(err), "error: %v", err)

	_, err = r.Recognize(e.Op(src, "Where", &e.Lambda{Params: []*e.Parameter{nil}, Body: e.Bool(true)}))
	assert.True(t, qerr.IsInvalidArgument(err), "error: %v", err)
	assert.Contains(t, err.Error(), "Where")

	_, err = r.Recognize(e.Op(src, "Where", (*e.Lambda)(nil)))
	assert.True(t, qerr.IsUnsupportedOperator(err), "error: %v", err)
	assert.Contains(t, err.Error(), "Where(students, <nil>)")
}
