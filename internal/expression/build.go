package expression

import "github.com/roach88/chainq/internal/ir"

// Builders for terse tree construction in callers and tests.

// Param creates a lambda parameter.
func Param(name, typ string) *Parameter {
	return &Parameter{Name: name, Type: typ}
}

// Int creates an integer constant.
func Int(v int64) *Constant {
	return &Constant{Value: ir.IRInt(v)}
}

// Str creates a string constant.
func Str(v string) *Constant {
	return &Constant{Value: ir.IRString(v)}
}

// Bool creates a boolean constant.
func Bool(v bool) *Constant {
	return &Constant{Value: ir.IRBool(v)}
}

// Null creates a null constant.
func Null() *Constant {
	return &Constant{Value: ir.IRNull{}}
}

// Source creates a query source.
func Source(name, itemType string) *QuerySource {
	return &QuerySource{Name: name, ItemType: itemType}
}

// Prop builds a member access chain: Prop(s, "Address", "City") is
// s.Address.City.
func Prop(target Expr, path ...string) Expr {
	out := target
	for _, name := range path {
		out = &Member{Target: out, Name: name}
	}
	return out
}

// Bin creates a binary operation.
func Bin(op BinaryOp, left, right Expr) *Binary {
	return &Binary{Op: op, Left: left, Right: right}
}

// Not negates a boolean expression.
func Not(operand Expr) *Unary {
	return &Unary{Op: OpNot, Operand: operand}
}

// Method creates a method call on object.
func Method(object Expr, name string, args ...Expr) *Call {
	return &Call{Object: object, Method: name, Args: args}
}

// Composite creates an anonymous composite from named members.
func Composite(members ...NewMember) *New {
	return &New{Members: members}
}

// Lambda1 creates a one-parameter lambda. body receives the parameter.
func Lambda1(name, typ string, body func(p *Parameter) Expr) *Lambda {
	p := Param(name, typ)
	return &Lambda{Params: []*Parameter{p}, Body: body(p)}
}

// Lambda2 creates a two-parameter lambda. body receives both parameters.
func Lambda2(name1, typ1, name2, typ2 string, body func(a, b *Parameter) Expr) *Lambda {
	a, b := Param(name1, typ1), Param(name2, typ2)
	return &Lambda{Params: []*Parameter{a, b}, Body: body(a, b)}
}

// Op creates one operator-chain link: a free call whose first argument is
// the upstream chain.
//
//	Op(Op(Source("students", "Student"), "Where", pred), "Select", sel)
func Op(upstream Expr, operator string, args ...Expr) *Call {
	all := make([]Expr, 0, len(args)+1)
	all = append(all, upstream)
	all = append(all, args...)
	return &Call{Method: operator, Args: all}
}
