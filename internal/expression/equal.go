package expression

import "github.com/roach88/chainq/internal/ir"

// Equal reports whether a and b are structurally equal.
//
// Parameters compare by identity, not name. Source references compare by
// referent identity. Constants compare by value.
func Equal(a, b Expr) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}

	switch x := a.(type) {
	case *Parameter:
		y, ok := b.(*Parameter)
		return ok && x == y
	case *Constant:
		y, ok := b.(*Constant)
		return ok && ir.EqualValues(x.Value, y.Value)
	case *QuerySource:
		y, ok := b.(*QuerySource)
		return ok && x.Name == y.Name && x.ItemType == y.ItemType
	case *Member:
		y, ok := b.(*Member)
		return ok && x.Name == y.Name && Equal(x.Target, y.Target)
	case *Binary:
		y, ok := b.(*Binary)
		return ok && x.Op == y.Op && Equal(x.Left, y.Left) && Equal(x.Right, y.Right)
	case *Unary:
		y, ok := b.(*Unary)
		return ok && x.Op == y.Op && Equal(x.Operand, y.Operand)
	case *Call:
		y, ok := b.(*Call)
		return ok && x.Method == y.Method && Equal(x.Object, y.Object) && equalList(x.Args, y.Args)
	case *New:
		y, ok := b.(*New)
		if !ok || len(x.Members) != len(y.Members) {
			return false
		}
		for i := range x.Members {
			if x.Members[i].Name != y.Members[i].Name || !Equal(x.Members[i].Value, y.Members[i].Value) {
				return false
			}
		}
		return true
	case *Conditional:
		y, ok := b.(*Conditional)
		return ok && Equal(x.Test, y.Test) && Equal(x.IfTrue, y.IfTrue) && Equal(x.IfFalse, y.IfFalse)
	case *Lambda:
		y, ok := b.(*Lambda)
		if !ok || len(x.Params) != len(y.Params) {
			return false
		}
		for i := range x.Params {
			if x.Params[i] != y.Params[i] {
				return false
			}
		}
		return Equal(x.Body, y.Body)
	case *SourceReference:
		y, ok := b.(*SourceReference)
		return ok && x.Source == y.Source
	}
	return false
}

func equalList(a, b []Expr) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !Equal(a[i], b[i]) {
			return false
		}
	}
	return true
}
