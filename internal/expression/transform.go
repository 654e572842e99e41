package expression

import (
	"fmt"
	"slices"
)

// TransformFunc rewrites one node. It receives the node after its children
// have been transformed and returns the replacement (or the node itself).
type TransformFunc func(Expr) (Expr, error)

// Transform rewrites e bottom-up.
//
// Children are transformed first; a node is rebuilt only if at least one
// child changed, so untouched subtrees keep their identity. fn is then
// applied to the (possibly rebuilt) node. The first error aborts the walk.
func Transform(e Expr, fn TransformFunc) (Expr, error) {
	return transform(e, fn, nil)
}

// transform is Transform with an optional skip predicate: subtrees for which
// skip returns true are returned as-is and fn is not applied to them.
func transform(e Expr, fn TransformFunc, skip func(Expr) bool) (Expr, error) {
	if e == nil {
		return nil, nil
	}
	if skip != nil && skip(e) {
		return e, nil
	}

	switch n := e.(type) {
	case *Parameter, *Constant, *QuerySource, *SourceReference:
		return fn(n)

	case *Member:
		target, err := transform(n.Target, fn, skip)
		if err != nil {
			return nil, err
		}
		if target != n.Target {
			return fn(&Member{Target: target, Name: n.Name})
		}
		return fn(n)

	case *Binary:
		left, err := transform(n.Left, fn, skip)
		if err != nil {
			return nil, err
		}
		right, err := transform(n.Right, fn, skip)
		if err != nil {
			return nil, err
		}
		if left != n.Left || right != n.Right {
			return fn(&Binary{Op: n.Op, Left: left, Right: right})
		}
		return fn(n)

	case *Unary:
		operand, err := transform(n.Operand, fn, skip)
		if err != nil {
			return nil, err
		}
		if operand != n.Operand {
			return fn(&Unary{Op: n.Op, Operand: operand})
		}
		return fn(n)

	case *Call:
		object, err := transform(n.Object, fn, skip)
		if err != nil {
			return nil, err
		}
		args, changed, err := transformList(n.Args, fn, skip)
		if err != nil {
			return nil, err
		}
		if changed || object != n.Object {
			return fn(&Call{Object: object, Method: n.Method, Args: args})
		}
		return fn(n)

	case *New:
		var members []NewMember
		for i, m := range n.Members {
			value, err := transform(m.Value, fn, skip)
			if err != nil {
				return nil, err
			}
			if value != m.Value && members == nil {
				members = make([]NewMember, len(n.Members))
				copy(members, n.Members[:i])
			}
			if members != nil {
				members[i] = NewMember{Name: m.Name, Value: value}
			}
		}
		if members != nil {
			return fn(&New{Members: members})
		}
		return fn(n)

	case *Conditional:
		test, err := transform(n.Test, fn, skip)
		if err != nil {
			return nil, err
		}
		ifTrue, err := transform(n.IfTrue, fn, skip)
		if err != nil {
			return nil, err
		}
		ifFalse, err := transform(n.IfFalse, fn, skip)
		if err != nil {
			return nil, err
		}
		if test != n.Test || ifTrue != n.IfTrue || ifFalse != n.IfFalse {
			return fn(&Conditional{Test: test, IfTrue: ifTrue, IfFalse: ifFalse})
		}
		return fn(n)

	case *Lambda:
		body, err := transform(n.Body, fn, skip)
		if err != nil {
			return nil, err
		}
		if body != n.Body {
			return fn(&Lambda{Params: n.Params, Body: body})
		}
		return fn(n)

	default:
		return nil, fmt.Errorf("unsupported expression type: %T", e)
	}
}

// transformList transforms each element and reports whether any changed.
func transformList(list []Expr, fn TransformFunc, skip func(Expr) bool) ([]Expr, bool, error) {
	var out []Expr
	for i, elem := range list {
		t, err := transform(elem, fn, skip)
		if err != nil {
			return nil, false, err
		}
		if t != elem && out == nil {
			out = make([]Expr, len(list))
			copy(out, list[:i])
		}
		if out != nil {
			out[i] = t
		}
	}
	if out == nil {
		return list, false, nil
	}
	return out, true, nil
}

// Walk calls fn for every node of e in pre-order. If fn returns false the
// node's children are skipped.
func Walk(e Expr, fn func(Expr) bool) {
	if e == nil || !fn(e) {
		return
	}

	switch n := e.(type) {
	case *Member:
		Walk(n.Target, fn)
	case *Binary:
		Walk(n.Left, fn)
		Walk(n.Right, fn)
	case *Unary:
		Walk(n.Operand, fn)
	case *Call:
		Walk(n.Object, fn)
		for _, arg := range n.Args {
			Walk(arg, fn)
		}
	case *New:
		for _, m := range n.Members {
			Walk(m.Value, fn)
		}
	case *Conditional:
		Walk(n.Test, fn)
		Walk(n.IfTrue, fn)
		Walk(n.IfFalse, fn)
	case *Lambda:
		Walk(n.Body, fn)
	}
}

// ReplaceParameter returns body with every occurrence of p replaced by
// replacement. Parameters are matched by identity; a nested lambda that
// redeclares p shadows it and is left untouched.
func ReplaceParameter(body Expr, p *Parameter, replacement Expr) Expr {
	shadows := func(e Expr) bool {
		l, ok := e.(*Lambda)
		return ok && slices.Contains(l.Params, p)
	}
	out, _ := transform(body, func(e Expr) (Expr, error) {
		if e == p {
			return replacement, nil
		}
		return e, nil
	}, shadows)
	return out
}

// SimplifyCompositeMembers replaces member accesses on composites with the
// accessed member's value: new { a = X, b = Y }.a becomes X.
//
// Accesses to members the composite does not declare are left in place.
func SimplifyCompositeMembers(e Expr) Expr {
	out, _ := Transform(e, func(n Expr) (Expr, error) {
		m, ok := n.(*Member)
		if !ok {
			return n, nil
		}
		composite, ok := m.Target.(*New)
		if !ok {
			return n, nil
		}
		if value, found := composite.Member(m.Name); found {
			return value, nil
		}
		return n, nil
	})
	return out
}

// FreeParameters returns the parameters occurring in e that no enclosing
// lambda inside e binds, in first-occurrence order without duplicates.
func FreeParameters(e Expr) []*Parameter {
	var free []*Parameter
	seen := make(map[*Parameter]bool)
	collectFree(e, map[*Parameter]bool{}, seen, &free)
	return free
}

func collectFree(e Expr, bound, seen map[*Parameter]bool, free *[]*Parameter) {
	Walk(e, func(n Expr) bool {
		switch node := n.(type) {
		case *Parameter:
			if !bound[node] && !seen[node] {
				seen[node] = true
				*free = append(*free, node)
			}
		case *Lambda:
			inner := make(map[*Parameter]bool, len(bound)+len(node.Params))
			for p := range bound {
				inner[p] = true
			}
			for _, p := range node.Params {
				inner[p] = true
			}
			collectFree(node.Body, inner, seen, free)
			return false
		}
		return true
	})
}

// ContainsComposite reports whether e contains a New anywhere.
func ContainsComposite(e Expr) bool {
	found := false
	Walk(e, func(n Expr) bool {
		if _, ok := n.(*New); ok {
			found = true
		}
		return !found
	})
	return found
}

// AccessesComposite reports whether e reads a member of a composite, the
// shape a transparent identifier leaves behind until simplified.
func AccessesComposite(e Expr) bool {
	found := false
	Walk(e, func(n Expr) bool {
		if m, ok := n.(*Member); ok {
			if _, isNew := m.Target.(*New); isNew {
				found = true
			}
		}
		return !found
	})
	return found
}

// References returns the referents of every SourceReference in e, in
// first-occurrence order without duplicates.
func References(e Expr) []Referent {
	var refs []Referent
	seen := make(map[Referent]bool)
	Walk(e, func(n Expr) bool {
		if ref, ok := n.(*SourceReference); ok && !seen[ref.Source] {
			seen[ref.Source] = true
			refs = append(refs, ref.Source)
		}
		return true
	})
	return refs
}

// Rebind replaces the referent of every SourceReference found in mapping.
// References to referents absent from mapping are kept.
func Rebind(e Expr, mapping map[Referent]Referent) Expr {
	out, _ := Transform(e, func(n Expr) (Expr, error) {
		ref, ok := n.(*SourceReference)
		if !ok {
			return n, nil
		}
		if target, found := mapping[ref.Source]; found && target != ref.Source {
			return &SourceReference{Source: target}, nil
		}
		return n, nil
	})
	return out
}
