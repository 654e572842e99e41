package structure

import (
	"github.com/roach88/chainq/internal/expression"
	"github.com/roach88/chainq/internal/qerr"
	"github.com/roach88/chainq/internal/querymodel"
)

// MainSourceNode is the start of every chain: the query source itself.
// Parameters standing for its items resolve to a reference to this node.
type MainSourceNode struct {
	nodeBase
	QuerySource *expression.QuerySource
	ItemName    string
	ItemType    string
}

// NewMainSourceNode creates the main source node.
func NewMainSourceNode(source *expression.QuerySource) *MainSourceNode {
	return &MainSourceNode{
		nodeBase:    newNodeBase(nil, "MainSource", nil),
		QuerySource: source,
		ItemType:    source.ItemType,
	}
}

func (n *MainSourceNode) ReferenceName() string { return n.ItemName }

func (n *MainSourceNode) Resolve(p *expression.Parameter, body expression.Expr) (expression.Expr, error) {
	return n.memoized(p, body, func() (expression.Expr, error) {
		return expression.ReplaceParameter(body, p, reference(n)), nil
	})
}

func (n *MainSourceNode) apply(a *assembler) error { return a.applyMainSource(n) }

// WhereNode filters items. Its output items are its input items.
type WhereNode struct {
	nodeBase
	Predicate *expression.Lambda

	resolvedPredicate cachedExpr
}

func newWhereNode(source Node, call *expression.Call) (Node, error) {
	return &WhereNode{
		nodeBase:  newNodeBase(source, call.Method, call),
		Predicate: lambdaArg(call, 1),
	}, nil
}

func (n *WhereNode) ReferenceName() string { return n.source.ReferenceName() }

func (n *WhereNode) Resolve(p *expression.Parameter, body expression.Expr) (expression.Expr, error) {
	return n.memoized(p, body, func() (expression.Expr, error) {
		return n.source.Resolve(p, body)
	})
}

// GetResolvedPredicate returns the predicate with its parameter resolved.
// The result is computed once.
func (n *WhereNode) GetResolvedPredicate() (expression.Expr, error) {
	return n.resolvedPredicate.get(func() (expression.Expr, error) {
		e, err := n.resolveThroughSource(n.Predicate)
		if err != nil {
			return nil, err
		}
		return requireResolved(e, n)
	})
}

func (n *WhereNode) apply(a *assembler) error { return a.applyWhere(n) }

// SelectNode projects items. When it is not the chain's terminal
// projection it contributes no clause; downstream lambdas see through it.
type SelectNode struct {
	nodeBase
	Selector *expression.Lambda

	resolvedSelector cachedExpr
}

func newSelectNode(source Node, call *expression.Call) (Node, error) {
	return &SelectNode{
		nodeBase: newNodeBase(source, call.Method, call),
		Selector: lambdaArg(call, 1),
	}, nil
}

func (n *SelectNode) ReferenceName() string { return n.Selector.Params[0].Name }

// Resolve substitutes the selector body for p and resolves the selector's
// own parameter upstream.
func (n *SelectNode) Resolve(p *expression.Parameter, body expression.Expr) (expression.Expr, error) {
	return n.memoized(p, body, func() (expression.Expr, error) {
		inlined := expression.ReplaceParameter(body, p, n.Selector.Body)
		out, err := n.source.Resolve(n.Selector.Params[0], inlined)
		if err != nil {
			return nil, err
		}
		return expression.SimplifyCompositeMembers(out), nil
	})
}

// GetResolvedSelector returns the selector with its parameter resolved.
func (n *SelectNode) GetResolvedSelector() (expression.Expr, error) {
	return n.resolvedSelector.get(func() (expression.Expr, error) {
		e, err := n.resolveThroughSource(n.Selector)
		if err != nil {
			return nil, err
		}
		return requireResolved(expression.SimplifyCompositeMembers(e), n)
	})
}

func (n *SelectNode) apply(a *assembler) error { return a.applySelect(n) }

// SelectManyNode draws a second range variable from a collection selector.
//
// With a result selector, the node's output items are the result
// selector's values; a composite result (new { s, c }) makes downstream
// parameters transparent identifiers. Without one, the output items are the
// collection elements themselves.
type SelectManyNode struct {
	nodeBase
	CollectionSelector *expression.Lambda
	ResultSelector     *expression.Lambda // nil for the one-lambda overload
	ItemName           string
	ItemType           string

	resolvedCollection cachedExpr
	resolvedResult     cachedExpr
}

func newSelectManyNode(source Node, call *expression.Call) (Node, error) {
	n := &SelectManyNode{
		nodeBase:           newNodeBase(source, call.Method, call),
		CollectionSelector: lambdaArg(call, 1),
	}
	if len(call.Args) > 2 {
		n.ResultSelector = lambdaArg(call, 2)
		n.ItemName = n.ResultSelector.Params[1].Name
		n.ItemType = n.ResultSelector.Params[1].Type
	}
	return n, nil
}

func (n *SelectManyNode) ReferenceName() string { return n.ItemName }

func (n *SelectManyNode) Resolve(p *expression.Parameter, body expression.Expr) (expression.Expr, error) {
	return n.memoized(p, body, func() (expression.Expr, error) {
		result, err := n.GetResolvedResultSelector()
		if err != nil {
			return nil, err
		}
		return expression.SimplifyCompositeMembers(expression.ReplaceParameter(body, p, result)), nil
	})
}

// GetResolvedCollectionSelector returns the collection selector resolved
// against the source.
func (n *SelectManyNode) GetResolvedCollectionSelector() (expression.Expr, error) {
	return n.resolvedCollection.get(func() (expression.Expr, error) {
		e, err := n.resolveThroughSource(n.CollectionSelector)
		if err != nil {
			return nil, err
		}
		return requireResolved(expression.SimplifyCompositeMembers(e), n)
	})
}

// GetResolvedResultSelector returns the result selector with its second
// parameter replaced by a reference to this node and its first resolved
// against the source. Without a result selector it is a reference to this
// node. The source is asked to resolve it only once.
func (n *SelectManyNode) GetResolvedResultSelector() (expression.Expr, error) {
	return n.resolvedResult.get(func() (expression.Expr, error) {
		if n.ResultSelector == nil {
			return reference(n), nil
		}
		return resolveResultSelector(n, n.ResultSelector)
	})
}

func (n *SelectManyNode) apply(a *assembler) error { return a.applySelectMany(n) }

// JoinNode is an inner equi-join. Like SelectManyNode, its result selector
// combines the outer and inner items.
type JoinNode struct {
	nodeBase
	InnerSequence    expression.Expr
	OuterKeySelector *expression.Lambda
	InnerKeySelector *expression.Lambda
	ResultSelector   *expression.Lambda

	resolvedOuterKey cachedExpr
	resolvedInnerKey cachedExpr
	resolvedResult   cachedExpr
}

func newJoinNode(source Node, call *expression.Call) (Node, error) {
	return &JoinNode{
		nodeBase:         newNodeBase(source, call.Method, call),
		InnerSequence:    call.Args[1],
		OuterKeySelector: lambdaArg(call, 2),
		InnerKeySelector: lambdaArg(call, 3),
		ResultSelector:   lambdaArg(call, 4),
	}, nil
}

func (n *JoinNode) ReferenceName() string { return n.InnerKeySelector.Params[0].Name }

// ItemType is the declared type of the inner range variable, falling back
// to the inner source's item type.
func (n *JoinNode) ItemType() string {
	if t := n.InnerKeySelector.Params[0].Type; t != "" {
		return t
	}
	if src, ok := n.InnerSequence.(*expression.QuerySource); ok {
		return src.ItemType
	}
	return ""
}

func (n *JoinNode) Resolve(p *expression.Parameter, body expression.Expr) (expression.Expr, error) {
	return n.memoized(p, body, func() (expression.Expr, error) {
		result, err := n.GetResolvedResultSelector()
		if err != nil {
			return nil, err
		}
		return expression.SimplifyCompositeMembers(expression.ReplaceParameter(body, p, result)), nil
	})
}

// GetResolvedOuterKeySelector returns the outer key resolved against the source.
func (n *JoinNode) GetResolvedOuterKeySelector() (expression.Expr, error) {
	return n.resolvedOuterKey.get(func() (expression.Expr, error) {
		e, err := n.resolveThroughSource(n.OuterKeySelector)
		if err != nil {
			return nil, err
		}
		return requireResolved(expression.SimplifyCompositeMembers(e), n)
	})
}

// GetResolvedInnerKeySelector returns the inner key with its parameter
// replaced by a reference to this node.
func (n *JoinNode) GetResolvedInnerKeySelector() (expression.Expr, error) {
	return n.resolvedInnerKey.get(func() (expression.Expr, error) {
		p := n.InnerKeySelector.Params[0]
		return requireResolved(expression.ReplaceParameter(n.InnerKeySelector.Body, p, reference(n)), n)
	})
}

// GetResolvedResultSelector returns the resolved result selector.
func (n *JoinNode) GetResolvedResultSelector() (expression.Expr, error) {
	return n.resolvedResult.get(func() (expression.Expr, error) {
		return resolveResultSelector(n, n.ResultSelector)
	})
}

func (n *JoinNode) apply(a *assembler) error { return a.applyJoin(n) }

// resolveResultSelector resolves a two-parameter result selector of n: the
// second parameter is n's own item, the first is resolved upstream.
func resolveResultSelector(n Node, selector *expression.Lambda) (expression.Expr, error) {
	outer, inner := selector.Params[0], selector.Params[1]
	body := expression.ReplaceParameter(selector.Body, inner, reference(n))
	resolved, err := n.Source().Resolve(outer, body)
	if err != nil {
		return nil, err
	}
	return requireResolved(expression.SimplifyCompositeMembers(resolved), n)
}

// OrderByNode starts a new ordering. Its output items are its input items.
type OrderByNode struct {
	nodeBase
	KeySelector *expression.Lambda
	Direction   querymodel.Direction

	resolvedKey cachedExpr
}

func newOrderByNode(direction querymodel.Direction) NodeFactory {
	return func(source Node, call *expression.Call) (Node, error) {
		return &OrderByNode{
			nodeBase:    newNodeBase(source, call.Method, call),
			KeySelector: lambdaArg(call, 1),
			Direction:   direction,
		}, nil
	}
}

func (n *OrderByNode) ReferenceName() string { return n.source.ReferenceName() }

func (n *OrderByNode) Resolve(p *expression.Parameter, body expression.Expr) (expression.Expr, error) {
	return n.memoized(p, body, func() (expression.Expr, error) {
		return n.source.Resolve(p, body)
	})
}

// GetResolvedKeySelector returns the sort key resolved against the source.
func (n *OrderByNode) GetResolvedKeySelector() (expression.Expr, error) {
	return n.resolvedKey.get(func() (expression.Expr, error) {
		e, err := n.resolveThroughSource(n.KeySelector)
		if err != nil {
			return nil, err
		}
		return requireResolved(e, n)
	})
}

func (n *OrderByNode) apply(a *assembler) error { return a.applyOrderBy(n) }

// ThenByNode adds a subordinate ordering to the preceding OrderBy.
type ThenByNode struct {
	nodeBase
	KeySelector *expression.Lambda
	Direction   querymodel.Direction

	resolvedKey cachedExpr
}

func newThenByNode(direction querymodel.Direction) NodeFactory {
	return func(source Node, call *expression.Call) (Node, error) {
		return &ThenByNode{
			nodeBase:    newNodeBase(source, call.Method, call),
			KeySelector: lambdaArg(call, 1),
			Direction:   direction,
		}, nil
	}
}

func (n *ThenByNode) ReferenceName() string { return n.source.ReferenceName() }

func (n *ThenByNode) Resolve(p *expression.Parameter, body expression.Expr) (expression.Expr, error) {
	return n.memoized(p, body, func() (expression.Expr, error) {
		return n.source.Resolve(p, body)
	})
}

// GetResolvedKeySelector returns the sort key resolved against the source.
func (n *ThenByNode) GetResolvedKeySelector() (expression.Expr, error) {
	return n.resolvedKey.get(func() (expression.Expr, error) {
		e, err := n.resolveThroughSource(n.KeySelector)
		if err != nil {
			return nil, err
		}
		return requireResolved(e, n)
	})
}

func (n *ThenByNode) apply(a *assembler) error { return a.applyThenBy(n) }

// GroupByNode groups items by key. It must be the chain's terminal
// operator; nothing can be resolved through it.
type GroupByNode struct {
	nodeBase
	KeySelector     *expression.Lambda
	ElementSelector *expression.Lambda // nil: the items themselves

	resolvedKey     cachedExpr
	resolvedElement cachedExpr
}

func newGroupByNode(source Node, call *expression.Call) (Node, error) {
	n := &GroupByNode{
		nodeBase:    newNodeBase(source, call.Method, call),
		KeySelector: lambdaArg(call, 1),
	}
	if len(call.Args) > 2 {
		n.ElementSelector = lambdaArg(call, 2)
	}
	return n, nil
}

func (n *GroupByNode) ReferenceName() string { return n.source.ReferenceName() }

func (n *GroupByNode) Resolve(p *expression.Parameter, body expression.Expr) (expression.Expr, error) {
	return nil, qerr.MalformedChain("cannot refer to the groups produced by %s; grouping must be the final operator", describe(n))
}

// GetResolvedKeySelector returns the grouping key resolved against the source.
func (n *GroupByNode) GetResolvedKeySelector() (expression.Expr, error) {
	return n.resolvedKey.get(func() (expression.Expr, error) {
		e, err := n.resolveThroughSource(n.KeySelector)
		if err != nil {
			return nil, err
		}
		return requireResolved(e, n)
	})
}

// GetResolvedElementSelector returns the element selector resolved against
// the source, or the source items themselves when there is none.
func (n *GroupByNode) GetResolvedElementSelector() (expression.Expr, error) {
	return n.resolvedElement.get(func() (expression.Expr, error) {
		var e expression.Expr
		var err error
		if n.ElementSelector != nil {
			e, err = n.resolveThroughSource(n.ElementSelector)
		} else {
			item := n.KeySelector.Params[0]
			e, err = n.source.Resolve(item, item)
		}
		if err != nil {
			return nil, err
		}
		return requireResolved(expression.SimplifyCompositeMembers(e), n)
	})
}

func (n *GroupByNode) apply(a *assembler) error { return a.applyGroupBy(n) }

// ResultModifierNode is a post-projection operator (Distinct, Take, First,
// Count, Sum, ...). Its output items are its input items.
//
// Predicate overloads (First(p), Count(p)) contribute a where clause.
// Selector overloads (Sum(f), Max(f)) replace the terminal projection.
type ResultModifierNode struct {
	nodeBase
	Predicate *expression.Lambda
	Selector  *expression.Lambda
	Count     expression.Expr // Take/Skip

	resolvedPredicate cachedExpr
	resolvedSelector  cachedExpr
}

// modifierLambdaRole says what a one-lambda overload's lambda means.
type modifierLambdaRole int

const (
	rolePredicate modifierLambdaRole = iota
	roleSelector
)

func newResultModifierNode(role modifierLambdaRole) NodeFactory {
	return func(source Node, call *expression.Call) (Node, error) {
		n := &ResultModifierNode{nodeBase: newNodeBase(source, call.Method, call)}
		if len(call.Args) > 1 {
			switch arg := call.Args[1].(type) {
			case *expression.Lambda:
				if role == roleSelector {
					n.Selector = arg
				} else {
					n.Predicate = arg
				}
			default:
				n.Count = arg
			}
		}
		return n, nil
	}
}

func (n *ResultModifierNode) ReferenceName() string { return n.source.ReferenceName() }

func (n *ResultModifierNode) Resolve(p *expression.Parameter, body expression.Expr) (expression.Expr, error) {
	return n.memoized(p, body, func() (expression.Expr, error) {
		return n.source.Resolve(p, body)
	})
}

// GetResolvedPredicate returns the predicate overload's predicate resolved
// against the source, or nil when there is none.
func (n *ResultModifierNode) GetResolvedPredicate() (expression.Expr, error) {
	return n.resolvedPredicate.get(func() (expression.Expr, error) {
		if n.Predicate == nil {
			return nil, nil
		}
		e, err := n.resolveThroughSource(n.Predicate)
		if err != nil {
			return nil, err
		}
		return requireResolved(e, n)
	})
}

// GetResolvedSelector returns the selector overload's selector resolved
// against the source, or nil when there is none.
func (n *ResultModifierNode) GetResolvedSelector() (expression.Expr, error) {
	return n.resolvedSelector.get(func() (expression.Expr, error) {
		if n.Selector == nil {
			return nil, nil
		}
		e, err := n.resolveThroughSource(n.Selector)
		if err != nil {
			return nil, err
		}
		return requireResolved(expression.SimplifyCompositeMembers(e), n)
	})
}

// Modification returns the query-model result modification for this operator.
func (n *ResultModifierNode) Modification() (querymodel.ResultModification, error) {
	switch n.operator {
	case "Distinct":
		return querymodel.Distinct{}, nil
	case "Take":
		return querymodel.Take{Count: n.Count}, nil
	case "Skip":
		return querymodel.Skip{Count: n.Count}, nil
	case "First":
		return querymodel.First{}, nil
	case "FirstOrDefault":
		return querymodel.First{OrDefault: true}, nil
	case "Last":
		return querymodel.Last{}, nil
	case "LastOrDefault":
		return querymodel.Last{OrDefault: true}, nil
	case "Single":
		return querymodel.Single{}, nil
	case "SingleOrDefault":
		return querymodel.Single{OrDefault: true}, nil
	case "Count":
		return querymodel.Count{}, nil
	case "Min":
		return querymodel.Min{}, nil
	case "Max":
		return querymodel.Max{}, nil
	case "Sum":
		return querymodel.Sum{}, nil
	case "Average":
		return querymodel.Average{}, nil
	default:
		return nil, qerr.UnsupportedOperator(describe(n), "no result modification for operator "+n.operator)
	}
}

func (n *ResultModifierNode) apply(a *assembler) error { return a.applyResultModifier(n) }
