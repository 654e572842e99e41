package compiler

import (
	"testing"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/chainq/internal/ir"
)

func TestCompileSchemaBasic(t *testing.T) {
	ctx := cuecontext.New()
	v := ctx.CompileString(`
		schema: Student: {
			Name:    string
			Age:     int
			Active:  bool
			Tags:    [...string]
			Address: {City: string}
		}
	`)
	require.NoError(t, v.Err())

	schema, err := CompileSchema(v.LookupPath(cue.ParsePath("schema.Student")))
	require.NoError(t, err)

	assert.Equal(t, "Student", schema.Name)
	assert.Equal(t, []ir.FieldSchema{
		{Name: "Name", Type: "string"},
		{Name: "Age", Type: "int"},
		{Name: "Active", Type: "bool"},
		{Name: "Tags", Type: "array"},
		{Name: "Address", Type: "object"},
	}, schema.Fields)
}

func TestCompileSchemaElemAttribute(t *testing.T) {
	ctx := cuecontext.New()
	v := ctx.CompileString(`
		schema: Student: {
			Courses: [...{...}] @elem(Course)
		}
	`)
	require.NoError(t, v.Err())

	schema, err := CompileSchema(v.LookupPath(cue.ParsePath("schema.Student")))
	require.NoError(t, err)

	f, ok := schema.Field("Courses")
	require.True(t, ok)
	assert.Equal(t, "array", f.Type)
	assert.Equal(t, "Course", f.Elem)
}

func TestCompileSchemaRejectsFloat(t *testing.T) {
	ctx := cuecontext.New()
	v := ctx.CompileString(`
		schema: Student: {
			Gpa: float
		}
	`)
	require.NoError(t, v.Err())

	_, err := CompileSchema(v.LookupPath(cue.ParsePath("schema.Student")))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "float")
}

func TestCompileSchemaRequiresFields(t *testing.T) {
	ctx := cuecontext.New()
	v := ctx.CompileString(`schema: Empty: {}`)
	require.NoError(t, v.Err())

	_, err := CompileSchema(v.LookupPath(cue.ParsePath("schema.Empty")))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "at least one field")
}

func TestCompileSourceBasic(t *testing.T) {
	ctx := cuecontext.New()
	v := ctx.CompileString(`source: students: {type: "Student"}`)
	require.NoError(t, v.Err())

	decl, err := CompileSource(v.LookupPath(cue.ParsePath("source.students")))
	require.NoError(t, err)
	assert.Equal(t, &ir.SourceDecl{Name: "students", ItemType: "Student"}, decl)
}

func TestCompileSourceMissingType(t *testing.T) {
	ctx := cuecontext.New()
	v := ctx.CompileString(`source: students: {}`)
	require.NoError(t, v.Err())

	_, err := CompileSource(v.LookupPath(cue.ParsePath("source.students")))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "source.students.type")
}

func TestCompileErrorFormat(t *testing.T) {
	err := &CompileError{Field: "query.x.from", Message: "from is required"}
	assert.Equal(t, "query.x.from: from is required", err.Error())
}

func TestCompileErrorPosition(t *testing.T) {
	v, err := CompileString("bad.cue", `query: bad: {ops: []}`)
	require.NoError(t, err)

	_, errs := CompileSpec(v, LoadModeFailFast)
	require.Len(t, errs, 1)

	var compileErr *CompileError
	require.ErrorAs(t, errs[0], &compileErr)
	assert.Equal(t, "query.bad.from", compileErr.Field)
	// Position validity depends on the CUE version; the field always names the query
	assert.Contains(t, errs[0].Error(), "from is required")
}

func TestCompileStringSyntaxError(t *testing.T) {
	_, err := CompileString("broken.cue", `schema: {`)
	require.Error(t, err)
}
