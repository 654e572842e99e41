package exprtext

import (
	"fmt"

	"github.com/expr-lang/expr/ast"
	"github.com/expr-lang/expr/parser"

	"github.com/roach88/chainq/internal/expression"
	"github.com/roach88/chainq/internal/ir"
	"github.com/roach88/chainq/internal/qerr"
)

// binaryOps maps expr-lang operator spellings to expression operators.
var binaryOps = map[string]expression.BinaryOp{
	"+":          expression.OpAdd,
	"-":          expression.OpSub,
	"*":          expression.OpMul,
	"/":          expression.OpDiv,
	"%":          expression.OpMod,
	"**":         expression.OpPow,
	"^":          expression.OpPow,
	"==":         expression.OpEq,
	"!=":         expression.OpNe,
	"<":          expression.OpLt,
	"<=":         expression.OpLe,
	">":          expression.OpGt,
	">=":         expression.OpGe,
	"&&":         expression.OpAnd,
	"and":        expression.OpAnd,
	"||":         expression.OpOr,
	"or":         expression.OpOr,
	"??":         expression.OpCoalesce,
	"in":         expression.OpIn,
	"contains":   expression.OpContains,
	"startsWith": expression.OpStartsWith,
	"endsWith":   expression.OpEndsWith,
	"matches":    expression.OpMatches,
}

var unaryOps = map[string]expression.UnaryOp{
	"!":   expression.OpNot,
	"not": expression.OpNot,
	"-":   expression.OpNegate,
	"+":   expression.OpPlus,
}

// ParseExpr parses an expression written in expr-lang syntax. Identifiers
// must name a parameter in scope.
func ParseExpr(body string, scope map[string]*expression.Parameter) (expression.Expr, error) {
	tree, err := parser.Parse(body)
	if err != nil {
		return nil, fmt.Errorf("parse %q: %w", body, err)
	}
	c := &converter{source: body, scope: scope}
	return c.convert(tree.Node)
}

// converter translates an expr-lang AST into an expression tree.
type converter struct {
	source string
	scope  map[string]*expression.Parameter
}

func (c *converter) unsupported(what string) error {
	return fmt.Errorf("%s: %s not supported in lambda bodies", c.source, what)
}

func (c *converter) convert(node ast.Node) (expression.Expr, error) {
	switch n := node.(type) {
	case *ast.NilNode:
		return expression.Null(), nil

	case *ast.BoolNode:
		return expression.Bool(n.Value), nil

	case *ast.IntegerNode:
		return expression.Int(int64(n.Value)), nil

	case *ast.StringNode:
		return expression.Str(n.Value), nil

	case *ast.FloatNode:
		return nil, fmt.Errorf("%s: float literal %v is forbidden; use integers", c.source, n.Value)

	case *ast.IdentifierNode:
		p, ok := c.scope[n.Value]
		if !ok {
			return nil, qerr.UnresolvableReference(n.Value, c.source)
		}
		return p, nil

	case *ast.MemberNode:
		if n.Optional {
			return nil, c.unsupported("optional member access (?.)")
		}
		target, err := c.convert(n.Node)
		if err != nil {
			return nil, err
		}
		prop, ok := n.Property.(*ast.StringNode)
		if !ok {
			return nil, c.unsupported("computed member access")
		}
		return &expression.Member{Target: target, Name: prop.Value}, nil

	case *ast.ChainNode:
		return c.convert(n.Node)

	case *ast.UnaryNode:
		op, ok := unaryOps[n.Operator]
		if !ok {
			return nil, c.unsupported("unary operator "+n.Operator)
		}
		operand, err := c.convert(n.Node)
		if err != nil {
			return nil, err
		}
		return &expression.Unary{Op: op, Operand: operand}, nil

	case *ast.BinaryNode:
		op, ok := binaryOps[n.Operator]
		if !ok {
			return nil, c.unsupported("binary operator "+n.Operator)
		}
		left, err := c.convert(n.Left)
		if err != nil {
			return nil, err
		}
		right, err := c.convert(n.Right)
		if err != nil {
			return nil, err
		}
		return &expression.Binary{Op: op, Left: left, Right: right}, nil

	case *ast.ConditionalNode:
		test, err := c.convert(n.Cond)
		if err != nil {
			return nil, err
		}
		ifTrue, err := c.convert(n.Exp1)
		if err != nil {
			return nil, err
		}
		ifFalse, err := c.convert(n.Exp2)
		if err != nil {
			return nil, err
		}
		return &expression.Conditional{Test: test, IfTrue: ifTrue, IfFalse: ifFalse}, nil

	case *ast.CallNode:
		args, err := c.convertList(n.Arguments)
		if err != nil {
			return nil, err
		}
		switch callee := n.Callee.(type) {
		case *ast.MemberNode:
			object, err := c.convert(callee.Node)
			if err != nil {
				return nil, err
			}
			prop, ok := callee.Property.(*ast.StringNode)
			if !ok {
				return nil, c.unsupported("computed method name")
			}
			return &expression.Call{Object: object, Method: prop.Value, Args: args}, nil
		case *ast.IdentifierNode:
			return &expression.Call{Method: callee.Value, Args: args}, nil
		default:
			return nil, c.unsupported(fmt.Sprintf("call of %T", n.Callee))
		}

	case *ast.BuiltinNode:
		args, err := c.convertList(n.Arguments)
		if err != nil {
			return nil, err
		}
		return &expression.Call{Method: n.Name, Args: args}, nil

	case *ast.MapNode:
		members := make([]expression.NewMember, 0, len(n.Pairs))
		for _, p := range n.Pairs {
			pair, ok := p.(*ast.PairNode)
			if !ok {
				return nil, c.unsupported(fmt.Sprintf("map entry %T", p))
			}
			key, ok := pair.Key.(*ast.StringNode)
			if !ok {
				return nil, c.unsupported("computed map key")
			}
			value, err := c.convert(pair.Value)
			if err != nil {
				return nil, err
			}
			members = append(members, expression.NewMember{Name: key.Value, Value: value})
		}
		return &expression.New{Members: members}, nil

	case *ast.ArrayNode:
		values := make(ir.IRArray, 0, len(n.Nodes))
		for _, elem := range n.Nodes {
			converted, err := c.convert(elem)
			if err != nil {
				return nil, err
			}
			constant, ok := converted.(*expression.Constant)
			if !ok {
				return nil, c.unsupported("non-literal array element")
			}
			values = append(values, constant.Value)
		}
		return &expression.Constant{Value: values}, nil

	default:
		return nil, c.unsupported(fmt.Sprintf("%T", node))
	}
}

func (c *converter) convertList(nodes []ast.Node) ([]expression.Expr, error) {
	out := make([]expression.Expr, len(nodes))
	for i, n := range nodes {
		converted, err := c.convert(n)
		if err != nil {
			return nil, err
		}
		out[i] = converted
	}
	return out, nil
}
