package structure

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	e "github.com/roach88/chainq/internal/expression"
)

func TestSequentialNameGenerator(t *testing.T) {
	g := &SequentialNameGenerator{}
	assert.Equal(t, "<generated>_0", g.Generate())
	assert.Equal(t, "<generated>_1", g.Generate())
}

func TestUUIDNameGenerator(t *testing.T) {
	g := UUIDNameGenerator{}
	a, b := g.Generate(), g.Generate()

	assert.True(t, strings.HasPrefix(a, GeneratedPrefix))
	assert.Len(t, a, len(GeneratedPrefix)+36)
	assert.NotEqual(t, a, b)
}

func TestParse_UsesConfiguredNameGenerator(t *testing.T) {
	p, err := NewQueryParser(WithLogger(discardLogger()), WithNameGenerator(fixedNames("elem")))
	require.NoError(t, err)
	chain := e.Op(students(), "SelectMany", student("s", func(s *e.Parameter) e.Expr { return e.Prop(s, "Courses") }))

	model, err := p.Parse(chain, "Student")
	require.NoError(t, err)
	assert.Equal(t, "[elem]", selectorOf(t, model))
}

type fixedNames string

func (f fixedNames) Generate() string { return string(f) }
