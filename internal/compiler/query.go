package compiler

import (
	"fmt"
	"strings"

	"cuelang.org/go/cue"

	"github.com/roach88/chainq/internal/expression"
	"github.com/roach88/chainq/internal/exprtext"
	"github.com/roach88/chainq/internal/ir"
)

// QueryDef is a compiled query definition.
//
// Root is the operator chain, outermost operator first, ready for the
// parser: Take(Select(Where(students, ...), ...), 3).
type QueryDef struct {
	Name     string
	From     string
	ItemType string
	Ops      []OpDef
	Root     expression.Expr
}

// OpDef is one operator application of a query.
type OpDef struct {
	Op      string
	Inner   string
	Lambdas []*expression.Lambda
	Args    []ir.IRValue
}

// Catalog resolves names a query refers to.
type Catalog interface {
	Source(name string) (*ir.SourceDecl, bool)
	Schema(name string) (*ir.SourceSchema, bool)
}

// CompileQuery parses a CUE query definition into a QueryDef.
//
//	query: adults: {
//		from: "students"
//		ops: [
//			{op: "Where", lambdas: [{params: ["s"], body: "s.Age > 18"}]},
//			{op: "Select", lambdas: [{params: ["s"], body: "s.Name"}]},
//		]
//	}
//
// Lambda parameters without explicit types are typed from the element type
// flowing through the chain where it is known.
func CompileQuery(v cue.Value, catalog Catalog) (*QueryDef, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	def := &QueryDef{Name: labelOf(v)}
	field := "query." + def.Name

	fromVal := v.LookupPath(cue.ParsePath("from"))
	if !fromVal.Exists() {
		return nil, &CompileError{
			Field:   field + ".from",
			Message: "from is required",
			Pos:     v.Pos(),
		}
	}
	from, err := fromVal.String()
	if err != nil {
		return nil, formatCUEError(err)
	}
	def.From = from
	if decl, ok := catalog.Source(from); ok {
		def.ItemType = decl.ItemType
	}

	var root expression.Expr = expression.Source(def.From, def.ItemType)
	elem := def.ItemType

	opsVal := v.LookupPath(cue.ParsePath("ops"))
	if opsVal.Exists() {
		iter, err := opsVal.List()
		if err != nil {
			return nil, formatCUEError(err)
		}
		for i := 0; iter.Next(); i++ {
			opField := fmt.Sprintf("%s.ops[%d]", field, i)
			op, next, err := compileOp(iter.Value(), opField, elem, catalog)
			if err != nil {
				return nil, err
			}
			def.Ops = append(def.Ops, op)
			root = chainLink(root, op, catalog)
			elem = next
		}
	}

	def.Root = root
	return def, nil
}

// chainLink wraps upstream in the call op describes. Arguments follow the
// upstream chain as: inner sequence, lambdas, constants.
func chainLink(upstream expression.Expr, op OpDef, catalog Catalog) expression.Expr {
	var args []expression.Expr
	if op.Inner != "" {
		inner := expression.Source(op.Inner, "")
		if decl, ok := catalog.Source(op.Inner); ok {
			inner.ItemType = decl.ItemType
		}
		args = append(args, inner)
	}
	for _, l := range op.Lambdas {
		args = append(args, l)
	}
	for _, a := range op.Args {
		args = append(args, &expression.Constant{Value: a})
	}
	return expression.Op(upstream, op.Op, args...)
}

func compileOp(v cue.Value, field, elem string, catalog Catalog) (OpDef, string, error) {
	var op OpDef

	opVal := v.LookupPath(cue.ParsePath("op"))
	if !opVal.Exists() {
		return op, "", &CompileError{Field: field + ".op", Message: "op is required", Pos: v.Pos()}
	}
	name, err := opVal.String()
	if err != nil {
		return op, "", formatCUEError(err)
	}
	op.Op = name

	innerType := ""
	innerVal := v.LookupPath(cue.ParsePath("inner"))
	if innerVal.Exists() {
		inner, err := innerVal.String()
		if err != nil {
			return op, "", formatCUEError(err)
		}
		op.Inner = inner
		if decl, ok := catalog.Source(inner); ok {
			innerType = decl.ItemType
		}
	}

	argsVal := v.LookupPath(cue.ParsePath("args"))
	if argsVal.Exists() {
		iter, err := argsVal.List()
		if err != nil {
			return op, "", formatCUEError(err)
		}
		for i := 0; iter.Next(); i++ {
			arg, err := compileConstant(iter.Value(), fmt.Sprintf("%s.args[%d]", field, i))
			if err != nil {
				return op, "", err
			}
			op.Args = append(op.Args, arg)
		}
	}

	lambdasVal := v.LookupPath(cue.ParsePath("lambdas"))
	if lambdasVal.Exists() {
		iter, err := lambdasVal.List()
		if err != nil {
			return op, "", formatCUEError(err)
		}
		var prev *expression.Lambda
		for i := 0; iter.Next(); i++ {
			defaults := defaultParamTypes(name, i, elem, innerType, prev, catalog)
			lambda, err := compileLambda(iter.Value(), fmt.Sprintf("%s.lambdas[%d]", field, i), defaults)
			if err != nil {
				return op, "", err
			}
			op.Lambdas = append(op.Lambdas, lambda)
			prev = lambda
		}
	}

	return op, nextElemType(op, elem, catalog), nil
}

// compileLambda parses {params: [...], types?: [...], body: "..."}.
func compileLambda(v cue.Value, field string, defaults []string) (*expression.Lambda, error) {
	params, err := stringList(v.LookupPath(cue.ParsePath("params")))
	if err != nil {
		return nil, err
	}
	if len(params) == 0 {
		return nil, &CompileError{Field: field + ".params", Message: "at least one parameter is required", Pos: v.Pos()}
	}

	types, err := stringList(v.LookupPath(cue.ParsePath("types")))
	if err != nil {
		return nil, err
	}
	if len(types) > len(params) {
		return nil, &CompileError{Field: field + ".types", Message: "more types than parameters", Pos: v.Pos()}
	}

	bodyVal := v.LookupPath(cue.ParsePath("body"))
	if !bodyVal.Exists() {
		return nil, &CompileError{Field: field + ".body", Message: "body is required", Pos: v.Pos()}
	}
	body, err := bodyVal.String()
	if err != nil {
		return nil, formatCUEError(err)
	}

	decls := make([]exprtext.ParamDecl, len(params))
	for i, p := range params {
		decls[i] = exprtext.ParamDecl{Name: p}
		switch {
		case i < len(types):
			decls[i].Type = types[i]
		case i < len(defaults):
			decls[i].Type = defaults[i]
		}
	}

	lambda, err := exprtext.ParseLambda(decls, body)
	if err != nil {
		return nil, &CompileError{Field: field + ".body", Message: err.Error(), Pos: bodyVal.Pos()}
	}
	return lambda, nil
}

func compileConstant(v cue.Value, field string) (ir.IRValue, error) {
	switch v.Kind() {
	case cue.IntKind:
		n, err := v.Int64()
		if err != nil {
			return nil, formatCUEError(err)
		}
		return ir.IRInt(n), nil
	case cue.StringKind:
		s, err := v.String()
		if err != nil {
			return nil, formatCUEError(err)
		}
		return ir.IRString(s), nil
	case cue.BoolKind:
		b, err := v.Bool()
		if err != nil {
			return nil, formatCUEError(err)
		}
		return ir.IRBool(b), nil
	case cue.FloatKind:
		return nil, &CompileError{Field: field, Message: "float arguments are forbidden - use int instead", Pos: v.Pos()}
	default:
		return nil, &CompileError{Field: field, Message: fmt.Sprintf("unsupported argument kind: %v", v.Kind()), Pos: v.Pos()}
	}
}

func stringList(v cue.Value) ([]string, error) {
	if !v.Exists() {
		return nil, nil
	}
	iter, err := v.List()
	if err != nil {
		return nil, formatCUEError(err)
	}
	var out []string
	for iter.Next() {
		s, err := iter.Value().String()
		if err != nil {
			return nil, formatCUEError(err)
		}
		out = append(out, s)
	}
	return out, nil
}

// defaultParamTypes returns the item types the parameters of the index-th
// lambda of op bind to, as far as they are known.
func defaultParamTypes(op string, index int, elem, inner string, prev *expression.Lambda, catalog Catalog) []string {
	switch op {
	case "Join":
		switch index {
		case 0:
			return []string{elem}
		case 1:
			return []string{inner}
		default:
			return []string{elem, inner}
		}
	case "SelectMany":
		if index == 0 {
			return []string{elem}
		}
		return []string{elem, collectionElemType(prev, catalog)}
	default:
		return []string{elem}
	}
}

// nextElemType returns the element type flowing out of op.
func nextElemType(op OpDef, elem string, catalog Catalog) string {
	switch {
	case op.Op == "Where", op.Op == "Distinct", op.Op == "Take", op.Op == "Skip",
		strings.HasPrefix(op.Op, "OrderBy"), strings.HasPrefix(op.Op, "ThenBy"):
		return elem
	case op.Op == "SelectMany" && len(op.Lambdas) == 1:
		return collectionElemType(op.Lambdas[0], catalog)
	default:
		return ""
	}
}

// collectionElemType returns the element type of the collection a selector
// such as s => s.Courses reads, when the schema declares it.
func collectionElemType(selector *expression.Lambda, catalog Catalog) string {
	if selector == nil || selector.Arity() != 1 {
		return ""
	}
	m, ok := selector.Body.(*expression.Member)
	if !ok || m.Target != selector.Params[0] {
		return ""
	}
	schema, ok := catalog.Schema(selector.Params[0].Type)
	if !ok {
		return ""
	}
	f, ok := schema.Field(m.Name)
	if !ok {
		return ""
	}
	return f.Elem
}
