package cli

import (
	"errors"
	"fmt"
	"os"
	"path"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/token"

	"github.com/roach88/chainq/internal/compiler"
)

// LoadResult contains the results of loading specs from a directory.
type LoadResult struct {
	Spec      *compiler.Spec
	CUEValue  cue.Value // The raw CUE value for additional processing
	FileCount int       // Number of CUE files found
}

// LoadError represents an error that occurred during spec loading.
type LoadError struct {
	Code    string
	Field   string
	Message string
	Pos     token.Pos // CUE position if available
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// LoadSpecs loads and compiles the CUE specs in dir.
//
// A nil result means the directory could not be loaded at all. Otherwise
// the result holds whatever compiled and the errors describe the rest: the
// first one only with compiler.LoadModeFailFast, all of them with
// compiler.LoadModeCollectAll.
func LoadSpecs(dir string, mode compiler.LoadMode) (*LoadResult, []error) {
	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		return nil, []error{&LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("specs directory not found: %s", dir)}}
	}
	if err != nil {
		return nil, []error{&LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("error accessing specs directory: %v", err)}}
	}
	if !info.IsDir() {
		return nil, []error{&LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("not a directory: %s", dir)}}
	}

	cueFiles, err := compiler.FindCUEFiles(dir)
	if err != nil {
		return nil, []error{&LoadError{Code: ErrCodeScanError, Message: fmt.Sprintf("error scanning directory: %v", err)}}
	}
	if len(cueFiles) == 0 {
		return nil, []error{&LoadError{Code: ErrCodeNoFiles, Message: fmt.Sprintf("no CUE files found in %s", dir)}}
	}

	value, err := compiler.LoadDir(dir)
	if err != nil {
		loadErr := convertCompileError(err, "load")
		if loadErr.Code == ErrCodeGeneric || loadErr.Code == ErrCodeCUE {
			loadErr.Code = ErrCodeLoadFailed
		}
		return nil, []error{loadErr}
	}

	spec, compileErrs := compiler.CompileSpec(value, mode)
	result := &LoadResult{
		Spec:      spec,
		CUEValue:  value,
		FileCount: len(cueFiles),
	}

	var errs []error
	for _, err := range compileErrs {
		errs = append(errs, convertCompileError(err, "spec"))
	}
	return result, errs
}

// convertCompileError converts a compiler error to a LoadError with position info.
func convertCompileError(err error, context string) *LoadError {
	var loadErr *LoadError
	if errors.As(err, &loadErr) {
		return loadErr
	}
	var compileErr *compiler.CompileError
	if errors.As(err, &compileErr) {
		return &LoadError{
			Code:    MapFieldToErrorCode(compileErr.Field),
			Field:   compileErr.Field,
			Message: compileErr.Message,
			Pos:     compileErr.Pos,
		}
	}
	return &LoadError{
		Code:    ErrCodeGeneric,
		Field:   context,
		Message: err.Error(),
	}
}

// Error code constants - unified across all CLI commands.
const (
	ErrCodeGeneric     = "E001" // Generic/unknown error
	ErrCodeScanError   = "E002" // Directory scan error
	ErrCodeNoFiles     = "E003" // No CUE files found
	ErrCodeLoadFailed  = "E004" // CUE load failed
	ErrCodeNotFound    = "E005" // Path not found
	ErrCodeCUE         = "E006" // CUE evaluation error
	ErrCodeNoQuery     = "E007" // Named query not declared

	// Definition errors
	ErrCodeMissingFrom   = "E101" // Query without from
	ErrCodeMissingOp     = "E102" // Operator entry without op
	ErrCodeInvalidLambda = "E103" // Missing or malformed lambda params/body
	ErrCodeInvalidType   = "E104" // Invalid field type (e.g., float)
	ErrCodeInvalidArg    = "E105" // Unsupported constant argument
	ErrCodeNoQueries     = "E106" // Spec declares no queries
	ErrCodeInvalidSchema = "E107" // Schema or source definition error

	// Model validation, reported by validate --strict
	ErrCodeModelWarning = "W301"
)

// MapFieldToErrorCode maps a compiler error field path to an error code.
//
// Paths look like query.adults.ops[0].lambdas[1].body; the last segment
// decides.
func MapFieldToErrorCode(field string) string {
	switch field {
	case "cue":
		return ErrCodeCUE
	case "query":
		return ErrCodeNoQueries
	case "type":
		return ErrCodeInvalidType
	}

	last := field
	if i := strings.LastIndex(field, "."); i >= 0 {
		last = field[i+1:]
	}

	switch {
	case last == "from":
		return ErrCodeMissingFrom
	case last == "op":
		return ErrCodeMissingOp
	case last == "params", last == "types", last == "body":
		return ErrCodeInvalidLambda
	case strings.HasPrefix(last, "args["):
		return ErrCodeInvalidArg
	case last == "type":
		return ErrCodeInvalidType
	case matchField("schema.*", field), matchField("schema.*.*", field), matchField("source.*", field):
		return ErrCodeInvalidSchema
	default:
		return ErrCodeGeneric
	}
}

func matchField(pattern, field string) bool {
	ok, _ := path.Match(strings.ReplaceAll(pattern, ".", "/"), strings.ReplaceAll(field, ".", "/"))
	return ok
}
