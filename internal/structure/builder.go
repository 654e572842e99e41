package structure

import (
	"log/slog"

	"github.com/roach88/chainq/internal/expression"
	"github.com/roach88/chainq/internal/qerr"
)

// ChainBuilder turns a right-nested operator chain into a list of nodes.
type ChainBuilder struct {
	registry *Registry
	names    NameGenerator
	logger   *slog.Logger
}

// NewChainBuilder creates a builder over registry.
func NewChainBuilder(registry *Registry, names NameGenerator, logger *slog.Logger) *ChainBuilder {
	if names == nil {
		names = &SequentialNameGenerator{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ChainBuilder{registry: registry, names: names, logger: logger}
}

// Build recognizes every link of the chain rooted at root.
//
// Recursion runs outside-in: the outermost call recurses into its upstream
// argument first, so the returned slice is ordered source-first and
// nodes[0] is always the *MainSourceNode. Range-variable names no lambda
// declares are filled in from the nearest downstream lambda, or generated.
func (b *ChainBuilder) Build(root expression.Expr, itemType string) ([]Node, error) {
	nodes, err := b.build(root)
	if err != nil {
		return nil, err
	}

	main := nodes[0].(*MainSourceNode)
	main.ItemType = itemType
	main.ItemName = b.downstreamName(nodes, 0)

	for i, n := range nodes {
		if sm, ok := n.(*SelectManyNode); ok && sm.ResultSelector == nil {
			sm.ItemName = b.downstreamName(nodes, i)
		}
	}
	return nodes, nil
}

func (b *ChainBuilder) build(e expression.Expr) ([]Node, error) {
	switch n := e.(type) {
	case *expression.QuerySource:
		b.logger.Debug("chain source", "source", n.Name)
		return []Node{NewMainSourceNode(n)}, nil

	case *expression.Call:
		factory, err := b.registry.Recognize(n)
		if err != nil {
			return nil, err
		}
		upstream, err := b.build(n.Args[0])
		if err != nil {
			return nil, err
		}
		node, err := factory(upstream[len(upstream)-1], n)
		if err != nil {
			return nil, err
		}
		b.logger.Debug("chain link", "operator", node.Operator(), "position", len(upstream))
		return append(upstream, node), nil

	case nil:
		return nil, qerr.MalformedChain("chain ends without a query source")

	default:
		return nil, qerr.MalformedChain("chain must start at a query source, found %s", expression.Format(e))
	}
}

// downstreamName names the items produced by nodes[i]: the first parameter
// of the first lambda a consumer declares for them. Item-preserving
// operators without lambdas (Distinct, Take, Skip) are looked through.
func (b *ChainBuilder) downstreamName(nodes []Node, i int) string {
	for _, n := range nodes[i+1:] {
		if lambda := firstLambda(n); lambda != nil && len(lambda.Params) > 0 && lambda.Params[0] != nil {
			return lambda.Params[0].Name
		}
		if _, ok := n.(*ResultModifierNode); !ok {
			break
		}
	}
	return b.names.Generate()
}

// firstLambda returns the lambda whose first parameter stands for the
// node's input items.
func firstLambda(n Node) *expression.Lambda {
	switch node := n.(type) {
	case *WhereNode:
		return node.Predicate
	case *SelectNode:
		return node.Selector
	case *SelectManyNode:
		return node.CollectionSelector
	case *JoinNode:
		return node.OuterKeySelector
	case *OrderByNode:
		return node.KeySelector
	case *ThenByNode:
		return node.KeySelector
	case *GroupByNode:
		return node.KeySelector
	case *ResultModifierNode:
		if node.Predicate != nil {
			return node.Predicate
		}
		return node.Selector
	}
	return nil
}
