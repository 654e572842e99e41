package cli

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/chainq/internal/compiler"
)

func TestLoadSpecs(t *testing.T) {
	result, errs := LoadSpecs(filepath.Join("testdata", "specs"), compiler.LoadModeFailFast)
	require.Empty(t, errs)
	require.NotNil(t, result)

	assert.Equal(t, 1, result.FileCount)
	require.Len(t, result.Spec.Queries, 2)
	assert.Equal(t, "adults", result.Spec.Queries[0].Name)
	assert.Equal(t, "Student", result.Spec.Queries[0].ItemType)
}

func TestLoadSpecs_DirectoryErrors(t *testing.T) {
	file := filepath.Join(t.TempDir(), "spec.cue")
	require.NoError(t, os.WriteFile(file, []byte("package x\n"), 0644))

	tests := []struct {
		name string
		dir  string
		code string
	}{
		{"missing", "/nonexistent/specs", ErrCodeNotFound},
		{"not a directory", file, ErrCodeNotFound},
		{"empty", t.TempDir(), ErrCodeNoFiles},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, errs := LoadSpecs(tt.dir, compiler.LoadModeFailFast)
			assert.Nil(t, result)
			require.Len(t, errs, 1)

			var loadErr *LoadError
			require.True(t, errors.As(errs[0], &loadErr))
			assert.Equal(t, tt.code, loadErr.Code)
		})
	}
}

func TestLoadSpecs_CUESyntaxError(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.cue"), []byte("package x\nquery: {\n"), 0644))

	result, errs := LoadSpecs(dir, compiler.LoadModeFailFast)
	assert.Nil(t, result)
	require.Len(t, errs, 1)

	var loadErr *LoadError
	require.True(t, errors.As(errs[0], &loadErr))
	assert.Equal(t, ErrCodeLoadFailed, loadErr.Code)
}

func TestLoadSpecs_FailFastStopsAtFirstError(t *testing.T) {
	dir := t.TempDir()
	spec := `
package x

source: students: {type: "Student"}
query: a: {ops: []}
query: b: {ops: []}
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "spec.cue"), []byte(spec), 0644))

	_, failFast := LoadSpecs(dir, compiler.LoadModeFailFast)
	require.Len(t, failFast, 1)

	_, all := LoadSpecs(dir, compiler.LoadModeCollectAll)
	require.Len(t, all, 2)

	var loadErr *LoadError
	require.True(t, errors.As(all[1], &loadErr))
	assert.Equal(t, ErrCodeMissingFrom, loadErr.Code)
	assert.Equal(t, "query.b.from", loadErr.Field)
}

func TestMapFieldToErrorCode(t *testing.T) {
	tests := []struct {
		field string
		want  string
	}{
		{"cue", ErrCodeCUE},
		{"query", ErrCodeNoQueries},
		{"type", ErrCodeInvalidType},
		{"query.adults.from", ErrCodeMissingFrom},
		{"query.adults.ops[0].op", ErrCodeMissingOp},
		{"query.adults.ops[0].lambdas[1].body", ErrCodeInvalidLambda},
		{"query.adults.ops[0].lambdas[0].params", ErrCodeInvalidLambda},
		{"query.adults.ops[0].lambdas[0].types", ErrCodeInvalidLambda},
		{"query.adults.ops[3].args[0]", ErrCodeInvalidArg},
		{"source.students.type", ErrCodeInvalidType},
		{"schema.Student", ErrCodeInvalidSchema},
		{"schema.Student.Courses", ErrCodeInvalidSchema},
		{"something.else", ErrCodeGeneric},
	}

	for _, tt := range tests {
		t.Run(tt.field, func(t *testing.T) {
			assert.Equal(t, tt.want, MapFieldToErrorCode(tt.field))
		})
	}
}

func TestLoadError_Error(t *testing.T) {
	err := &LoadError{Code: ErrCodeNoFiles, Message: "no CUE files found in x"}
	assert.Equal(t, "E003: no CUE files found in x", err.Error())
}
