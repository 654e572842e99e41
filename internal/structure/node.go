package structure

import (
	"github.com/roach88/chainq/internal/expression"
	"github.com/roach88/chainq/internal/qerr"
)

// Node is one recognized link of an operator chain.
//
// Nodes form a source-linked list: each node except the main source points
// at the node producing its input. Resolve rewrites a lambda body so that a
// parameter standing for this node's output items is replaced by explicit
// references to the nodes (later: clauses) that produce the values.
//
// The set of node types is closed; apply is unexported.
type Node interface {
	expression.Referent

	// Source returns the upstream node, or nil for the main source.
	Source() Node

	// Operator returns the operator name this node was recognized as.
	Operator() string

	// Call returns the chain link the node was built from (nil for the main source).
	Call() *expression.Call

	// Resolve rewrites body, in which p stands for one item flowing out of
	// this node. Results are memoized per (p, body): repeated calls return
	// the identical expression.
	Resolve(p *expression.Parameter, body expression.Expr) (expression.Expr, error)

	// apply contributes the node's clauses to the query model being assembled.
	apply(a *assembler) error
}

// memoKey identifies one resolution request. Both halves compare by identity.
type memoKey struct {
	param *expression.Parameter
	body  expression.Expr
}

// nodeBase carries the state every node shares.
type nodeBase struct {
	source   Node
	operator string
	call     *expression.Call
	memo     map[memoKey]expression.Expr
}

func newNodeBase(source Node, operator string, call *expression.Call) nodeBase {
	return nodeBase{
		source:   source,
		operator: operator,
		call:     call,
		memo:     make(map[memoKey]expression.Expr),
	}
}

func (n *nodeBase) Source() Node { return n.source }
func (n *nodeBase) Operator() string { return n.operator }
func (n *nodeBase) Call() *expression.Call { return n.call }

// memoized returns the cached resolution for (p, body) or computes and
// caches it. Failures are not cached.
func (n *nodeBase) memoized(p *expression.Parameter, body expression.Expr, compute func() (expression.Expr, error)) (expression.Expr, error) {
	key := memoKey{param: p, body: body}
	if cached, ok := n.memo[key]; ok {
		return cached, nil
	}
	out, err := compute()
	if err != nil {
		return nil, err
	}
	n.memo[key] = out
	return out, nil
}

// resolveThroughSource resolves lambda's body against the node's source,
// binding the lambda's first parameter to the source's output items.
func (n *nodeBase) resolveThroughSource(lambda *expression.Lambda) (expression.Expr, error) {
	if n.source == nil {
		return nil, qerr.MalformedChain("%s has no source to resolve against", n.operator)
	}
	return n.source.Resolve(lambda.Params[0], lambda.Body)
}

// cachedExpr is a lazily computed, cached resolution result.
type cachedExpr struct {
	value expression.Expr
	done  bool
}

// get returns the cached value, computing it on first use. Failures are
// not cached, so a later call retries and fails the same way.
func (c *cachedExpr) get(compute func() (expression.Expr, error)) (expression.Expr, error) {
	if c.done {
		return c.value, nil
	}
	v, err := compute()
	if err != nil {
		return nil, err
	}
	c.value, c.done = v, true
	return v, nil
}

// requireResolved fails when resolution left a lambda parameter behind, or
// a member access on a transparent identifier that names no member of it.
func requireResolved(e expression.Expr, n Node) (expression.Expr, error) {
	if e == nil {
		return nil, qerr.MalformedChain("%s: required selector is absent", describe(n))
	}
	if free := expression.FreeParameters(e); len(free) > 0 {
		err := qerr.UnresolvableReference(free[0].Name, expression.Format(e))
		err.Operator = describe(n)
		return nil, err
	}
	if expression.AccessesComposite(e) {
		err := qerr.UnresolvableReference(compositeMember(e), expression.Format(e))
		err.Operator = describe(n)
		return nil, err
	}
	return e, nil
}

// compositeMember names the first member accessed on a composite in e.
func compositeMember(e expression.Expr) string {
	name := ""
	expression.Walk(e, func(x expression.Expr) bool {
		if m, ok := x.(*expression.Member); ok && name == "" {
			if _, isNew := m.Target.(*expression.New); isNew {
				name = m.Name
			}
		}
		return name == ""
	})
	return name
}

// requireSelectors fails when one of n's lambdas has no body.
func requireSelectors(n Node) error {
	call := n.Call()
	if call == nil {
		return nil
	}
	for _, arg := range call.Args {
		if l, ok := arg.(*expression.Lambda); ok && l != nil && l.Body == nil {
			return qerr.MalformedChain("%s: required selector is absent", call.Method)
		}
	}
	return nil
}

// describe formats the call a node was built from, for diagnostics.
func describe(n Node) string {
	if n.Call() == nil {
		return n.Operator()
	}
	return expression.Format(n.Call())
}

// reference builds a source reference to n.
func reference(n Node) *expression.SourceReference {
	return &expression.SourceReference{Source: n}
}

// lambdaArg returns call argument i (counting the upstream chain as 0) as
// a lambda. Recognition guarantees the shape.
func lambdaArg(call *expression.Call, i int) *expression.Lambda {
	return call.Args[i].(*expression.Lambda)
}
