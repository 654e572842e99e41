package compiler

import (
	"fmt"

	"cuelang.org/go/cue"

	"github.com/roach88/chainq/internal/ir"
)

// LoadMode controls how errors are handled while compiling a spec.
type LoadMode int

const (
	// LoadModeFailFast stops on the first error encountered.
	LoadModeFailFast LoadMode = iota
	// LoadModeCollectAll collects all errors before returning.
	LoadModeCollectAll
)

// Spec is everything a CUE spec declares: item type schemas, query
// sources, and query definitions.
type Spec struct {
	Schemas map[string]*ir.SourceSchema
	Sources map[string]*ir.SourceDecl
	Queries []*QueryDef
}

// NewSpec creates an empty spec.
func NewSpec() *Spec {
	return &Spec{
		Schemas: make(map[string]*ir.SourceSchema),
		Sources: make(map[string]*ir.SourceDecl),
	}
}

// Source implements Catalog.
func (s *Spec) Source(name string) (*ir.SourceDecl, bool) {
	decl, ok := s.Sources[name]
	return decl, ok
}

// Schema implements Catalog.
func (s *Spec) Schema(name string) (*ir.SourceSchema, bool) {
	schema, ok := s.Schemas[name]
	return schema, ok
}

// Query looks up a query definition by name.
func (s *Spec) Query(name string) (*QueryDef, bool) {
	for _, q := range s.Queries {
		if q.Name == name {
			return q, true
		}
	}
	return nil, false
}

// CompileSpec compiles the schema, source, and query sections of v, in that
// order, so queries can see every declared source and schema.
//
// With LoadModeFailFast the first error is returned alone; with
// LoadModeCollectAll every definition that fails is skipped and its error
// collected. The returned spec holds whatever compiled.
func CompileSpec(v cue.Value, mode LoadMode) (*Spec, []error) {
	spec := NewSpec()
	if err := v.Err(); err != nil {
		return spec, []error{formatCUEError(err)}
	}

	var errs []error
	fail := func(err error) bool {
		errs = append(errs, err)
		return mode == LoadModeFailFast
	}

	sections := []struct {
		name    string
		compile func(v cue.Value) error
	}{
		{"schema", func(v cue.Value) error {
			schema, err := CompileSchema(v)
			if err != nil {
				return err
			}
			spec.Schemas[schema.Name] = schema
			return nil
		}},
		{"source", func(v cue.Value) error {
			decl, err := CompileSource(v)
			if err != nil {
				return err
			}
			spec.Sources[decl.Name] = decl
			return nil
		}},
		{"query", func(v cue.Value) error {
			def, err := CompileQuery(v, spec)
			if err != nil {
				return err
			}
			spec.Queries = append(spec.Queries, def)
			return nil
		}},
	}

	for _, section := range sections {
		sectionVal := v.LookupPath(cue.ParsePath(section.name))
		if !sectionVal.Exists() {
			continue
		}
		iter, err := sectionVal.Fields()
		if err != nil {
			if fail(fmt.Errorf("iterating %s: %w", section.name, formatCUEError(err))) {
				return spec, errs
			}
			continue
		}
		for iter.Next() {
			if err := section.compile(iter.Value()); err != nil {
				if fail(err) {
					return spec, errs
				}
			}
		}
	}

	if len(spec.Queries) == 0 && len(errs) == 0 {
		errs = append(errs, &CompileError{Field: "query", Message: "no queries found in spec"})
	}

	return spec, errs
}
