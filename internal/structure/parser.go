package structure

import (
	"log/slog"

	"github.com/roach88/chainq/internal/expression"
	"github.com/roach88/chainq/internal/qerr"
	"github.com/roach88/chainq/internal/querymodel"
)

// QueryParser turns operator chains into query models.
//
// A parser holds only its registry and configuration; every Parse call
// builds fresh nodes and clauses, so one parser may serve concurrent
// callers as long as its NameGenerator is safe for concurrent use (both
// provided generators are).
type QueryParser struct {
	registry *Registry
	names    NameGenerator
	logger   *slog.Logger
}

// ParserOption configures a QueryParser.
type ParserOption func(*QueryParser)

// WithRegistry replaces the default operator registry.
func WithRegistry(r *Registry) ParserOption {
	return func(p *QueryParser) {
		p.registry = r
	}
}

// WithNameGenerator sets the generator for unnamed range variables.
func WithNameGenerator(g NameGenerator) ParserOption {
	return func(p *QueryParser) {
		p.names = g
	}
}

// WithLogger sets the logger for debug tracing of chain building and
// assembly.
func WithLogger(l *slog.Logger) ParserOption {
	return func(p *QueryParser) {
		p.logger = l
	}
}

// NewQueryParser creates a parser. The registry is checked for
// completeness before the parser is returned.
func NewQueryParser(opts ...ParserOption) (*QueryParser, error) {
	p := &QueryParser{}
	for _, opt := range opts {
		opt(p)
	}
	if p.registry == nil {
		p.registry = DefaultRegistry()
	}
	if p.names == nil {
		p.names = &SequentialNameGenerator{}
	}
	if p.logger == nil {
		p.logger = slog.Default()
	}
	if err := p.registry.Check(); err != nil {
		return nil, err
	}
	return p, nil
}

// Parse builds the query model for the chain rooted at root, whose main
// source yields items of itemType.
//
// Errors are *qerr.Error values:
//   - InvalidArgument: root is nil or itemType is empty
//   - UnsupportedOperator: a link matches no registered signature
//   - UnresolvableReference: a lambda parameter cannot be traced to a node
//   - MalformedChain: no terminal projection/grouping, or operators in an
//     order the model cannot express
func (p *QueryParser) Parse(root expression.Expr, itemType string) (*querymodel.QueryModel, error) {
	if root == nil {
		return nil, qerr.InvalidArgument("root", "Parse")
	}
	if itemType == "" {
		return nil, qerr.InvalidArgument("itemType", "Parse")
	}

	nodes, err := NewChainBuilder(p.registry, p.names, p.logger).Build(root, itemType)
	if err != nil {
		p.logger.Debug("chain build failed", "error", err)
		return nil, err
	}

	model, err := assemble(nodes, p.logger)
	if err != nil {
		p.logger.Debug("assembly failed", "error", err)
		return nil, err
	}

	p.logger.Debug("query model assembled",
		"body_clauses", model.BodyClauses.Len(),
		"nodes", len(nodes),
	)
	return model, nil
}

// Parse builds a query model with a default parser.
func Parse(root expression.Expr, itemType string) (*querymodel.QueryModel, error) {
	p, err := NewQueryParser()
	if err != nil {
		return nil, err
	}
	return p.Parse(root, itemType)
}
