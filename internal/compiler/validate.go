package compiler

import (
	"fmt"
	"slices"
	"strings"

	"github.com/roach88/chainq/internal/expression"
	"github.com/roach88/chainq/internal/ir"
	"github.com/roach88/chainq/internal/structure"
)

// Validation error codes (E200-E299)
const (
	ErrUnknownSource    = "E201" // query or join references an undeclared source
	ErrUnknownItemType  = "E202" // source item type has no schema
	ErrUnknownMember    = "E203" // member access on a typed range variable names no field
	ErrQueryNoOps       = "E204" // query applies no operators
	ErrInvalidFieldType = "E205" // schema field type is not a valid item field type
	ErrUnknownOperator  = "E206" // op names no registered operator
	ErrUnknownElemType  = "E207" // @elem names an undeclared schema
)

// ValidationError represents a spec validation error.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

// Validate checks a compiled spec for references that do not resolve.
// Returns all errors found (does not fail-fast).
func Validate(spec *Spec) []ValidationError {
	var errs []ValidationError

	operators := make(map[string]bool)
	for _, sig := range structure.DefaultRegistry().Signatures() {
		operators[sig.Method] = true
	}

	for _, name := range sortedKeys(spec.Schemas) {
		errs = append(errs, validateSchema(spec, spec.Schemas[name])...)
	}

	for _, name := range sortedKeys(spec.Sources) {
		decl := spec.Sources[name]
		if _, ok := spec.Schemas[decl.ItemType]; !ok {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("source.%s.type", name),
				Message: fmt.Sprintf("item type %q has no schema", decl.ItemType),
				Code:    ErrUnknownItemType,
			})
		}
	}

	for _, q := range spec.Queries {
		errs = append(errs, validateQuery(spec, q, operators)...)
	}

	return errs
}

func validateSchema(spec *Spec, schema *ir.SourceSchema) []ValidationError {
	var errs []ValidationError
	for _, f := range schema.Fields {
		field := fmt.Sprintf("schema.%s.%s", schema.Name, f.Name)
		if !ir.ValidFieldTypes[f.Type] {
			errs = append(errs, ValidationError{
				Field:   field,
				Message: fmt.Sprintf("invalid type %q for field %q", f.Type, f.Name),
				Code:    ErrInvalidFieldType,
			})
		}
		if f.Elem != "" {
			if _, ok := spec.Schemas[f.Elem]; !ok {
				errs = append(errs, ValidationError{
					Field:   field,
					Message: fmt.Sprintf("element type %q has no schema", f.Elem),
					Code:    ErrUnknownElemType,
				})
			}
		}
	}
	return errs
}

func validateQuery(spec *Spec, q *QueryDef, operators map[string]bool) []ValidationError {
	var errs []ValidationError
	prefix := "query." + q.Name

	if _, ok := spec.Sources[q.From]; !ok {
		errs = append(errs, ValidationError{
			Field:   prefix + ".from",
			Message: fmt.Sprintf("source %q is not declared", q.From),
			Code:    ErrUnknownSource,
		})
	}

	if len(q.Ops) == 0 {
		errs = append(errs, ValidationError{
			Field:   prefix + ".ops",
			Message: "query applies no operators; a select or group is required",
			Code:    ErrQueryNoOps,
		})
	}

	for i, op := range q.Ops {
		field := fmt.Sprintf("%s.ops[%d]", prefix, i)

		if !operators[op.Op] {
			errs = append(errs, ValidationError{
				Field:   field + ".op",
				Message: fmt.Sprintf("unknown operator %q", op.Op),
				Code:    ErrUnknownOperator,
			})
		}

		if op.Inner != "" {
			if _, ok := spec.Sources[op.Inner]; !ok {
				errs = append(errs, ValidationError{
					Field:   field + ".inner",
					Message: fmt.Sprintf("source %q is not declared", op.Inner),
					Code:    ErrUnknownSource,
				})
			}
		}

		for j, l := range op.Lambdas {
			errs = append(errs, validateMembers(spec, l, fmt.Sprintf("%s.lambdas[%d]", field, j))...)
		}
	}

	return errs
}

// validateMembers reports member accesses on typed parameters that the
// parameter's schema does not declare.
func validateMembers(spec *Spec, l *expression.Lambda, field string) []ValidationError {
	var errs []ValidationError
	expression.Walk(l.Body, func(e expression.Expr) bool {
		m, ok := e.(*expression.Member)
		if !ok {
			return true
		}
		p, ok := m.Target.(*expression.Parameter)
		if !ok || p.Type == "" {
			return true
		}
		schema, ok := spec.Schemas[p.Type]
		if !ok {
			return true
		}
		if _, found := schema.Field(m.Name); !found {
			errs = append(errs, ValidationError{
				Field:   field,
				Message: fmt.Sprintf("%s has no field %q (%s is %s)", p.Type, m.Name, p.Name, describeFields(schema)),
				Code:    ErrUnknownMember,
			})
		}
		return true
	})
	return errs
}

func describeFields(schema *ir.SourceSchema) string {
	names := make([]string, len(schema.Fields))
	for i, f := range schema.Fields {
		names[i] = f.Name
	}
	return "{" + strings.Join(names, ", ") + "}"
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
