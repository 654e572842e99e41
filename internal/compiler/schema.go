package compiler

import (
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"

	"github.com/roach88/chainq/internal/ir"
)

// CompileSchema parses a CUE struct into a SourceSchema.
//
// The CUE value should be the item type struct itself, e.g.:
//
//	ctx := cuecontext.New()
//	v := ctx.CompileString(`schema: Student: { Name: string, Age: int }`)
//	schema, err := CompileSchema(v.LookupPath(cue.ParsePath("schema.Student")))
//
// Array fields may name their element item type with an attribute:
//
//	Courses: [...{...}] @elem(Course)
func CompileSchema(v cue.Value) (*ir.SourceSchema, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	schema := &ir.SourceSchema{Name: labelOf(v)}

	iter, err := v.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}

	for iter.Next() {
		fieldValue := iter.Value()
		fieldType, err := extractTypeName(fieldValue)
		if err != nil {
			return nil, err
		}

		field := ir.FieldSchema{Name: iter.Label(), Type: fieldType}
		if fieldType == "array" {
			attr := fieldValue.Attribute("elem")
			if attr.Err() == nil {
				elem, err := attr.String(0)
				if err != nil {
					return nil, &CompileError{
						Field:   fmt.Sprintf("schema.%s.%s", schema.Name, field.Name),
						Message: fmt.Sprintf("invalid @elem attribute: %v", err),
						Pos:     fieldValue.Pos(),
					}
				}
				field.Elem = elem
			}
		}
		schema.Fields = append(schema.Fields, field)
	}

	if len(schema.Fields) == 0 {
		return nil, &CompileError{
			Field:   "schema." + schema.Name,
			Message: "at least one field is required",
			Pos:     v.Pos(),
		}
	}

	return schema, nil
}

// CompileSource parses a CUE source declaration:
//
//	source: students: { type: "Student" }
func CompileSource(v cue.Value) (*ir.SourceDecl, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	decl := &ir.SourceDecl{Name: labelOf(v)}

	typeVal := v.LookupPath(cue.ParsePath("type"))
	if !typeVal.Exists() {
		return nil, &CompileError{
			Field:   fmt.Sprintf("source.%s.type", decl.Name),
			Message: "item type is required",
			Pos:     v.Pos(),
		}
	}
	itemType, err := typeVal.String()
	if err != nil {
		return nil, formatCUEError(err)
	}
	decl.ItemType = itemType

	return decl, nil
}

// labelOf returns the last path selector of v, unquoted.
func labelOf(v cue.Value) string {
	labels := v.Path().Selectors()
	if len(labels) == 0 {
		return ""
	}
	sel := labels[len(labels)-1]
	if sel.IsString() {
		return sel.Unquoted()
	}
	return sel.String()
}

// extractTypeName converts a CUE type to an item field type string.
// Floats are forbidden.
func extractTypeName(v cue.Value) (string, error) {
	switch v.IncompleteKind() {
	case cue.StringKind:
		return "string", nil
	case cue.IntKind:
		return "int", nil
	case cue.BoolKind:
		return "bool", nil
	case cue.ListKind:
		return "array", nil
	case cue.StructKind:
		return "object", nil
	case cue.FloatKind, cue.NumberKind:
		return "", &CompileError{
			Field:   "type",
			Message: "float types are forbidden - use int instead",
			Pos:     v.Pos(),
		}
	default:
		return "", &CompileError{
			Field:   "type",
			Message: fmt.Sprintf("unsupported type kind: %v", v.IncompleteKind()),
			Pos:     v.Pos(),
		}
	}
}

// CompileError represents a compilation error with source position.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}

	// CUE errors may contain multiple errors
	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	// Return first error with position info
	firstErr := errs[0]
	positions := errors.Positions(firstErr)
	if len(positions) > 0 {
		return &CompileError{
			Field:   "cue",
			Message: firstErr.Error(),
			Pos:     positions[0],
		}
	}

	return err
}
