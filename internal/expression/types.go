package expression

import "github.com/roach88/chainq/internal/ir"

// Expr represents a node of an expression tree.
//
// This is a sealed interface - only types in this package implement it.
// The marker method pattern prevents external implementations and enables
// exhaustive type switches in rewriters and formatters.
//
// Expression types:
//   - Parameter: a lambda parameter (identity is pointer identity)
//   - Constant: a literal value (ir.IRValue)
//   - QuerySource: the enumerable data source a chain starts from
//   - Member: field/property access
//   - Binary, Unary, Conditional: operators
//   - Call: method or function call; also every link of an operator chain
//   - New: anonymous composite construction (transparent identifiers)
//   - Lambda: parameter list plus body
//   - SourceReference: resolved placeholder for "the value produced by X"
type Expr interface {
	exprNode() // Marker method - seals interface to this package
}

// Parameter is a lambda parameter.
//
// Two parameters are the same parameter only if they are the same pointer;
// equal names in different lambdas denote different variables.
type Parameter struct {
	Name string // Identifier as written (e.g. "s")
	Type string // Item type name (e.g. "Student"); empty when unknown
}

func (*Parameter) exprNode() {}

// Constant is a literal value.
type Constant struct {
	Value ir.IRValue
}

func (*Constant) exprNode() {}

// QuerySource is the enumerable data source an operator chain starts from.
//
// Semantics:
//
//	from <item> in <Name>
//
// ItemType names the element type bound by the primary range variable.
type QuerySource struct {
	Name     string // Source name (e.g. "students")
	ItemType string // Element type name (e.g. "Student")
}

func (*QuerySource) exprNode() {}

// Member is a field or property access: Target.Name.
type Member struct {
	Target Expr
	Name   string
}

func (*Member) exprNode() {}

// BinaryOp identifies a binary operator.
type BinaryOp string

// Binary operators.
const (
	OpAdd        BinaryOp = "+"
	OpSub        BinaryOp = "-"
	OpMul        BinaryOp = "*"
	OpDiv        BinaryOp = "/"
	OpMod        BinaryOp = "%"
	OpPow        BinaryOp = "**"
	OpEq         BinaryOp = "=="
	OpNe         BinaryOp = "!="
	OpLt         BinaryOp = "<"
	OpLe         BinaryOp = "<="
	OpGt         BinaryOp = ">"
	OpGe         BinaryOp = ">="
	OpAnd        BinaryOp = "&&"
	OpOr         BinaryOp = "||"
	OpCoalesce   BinaryOp = "??"
	OpIn         BinaryOp = "in"
	OpContains   BinaryOp = "contains"
	OpStartsWith BinaryOp = "startsWith"
	OpEndsWith   BinaryOp = "endsWith"
	OpMatches    BinaryOp = "matches"
)

// Binary is a binary operation: Left Op Right.
type Binary struct {
	Op    BinaryOp
	Left  Expr
	Right Expr
}

func (*Binary) exprNode() {}

// UnaryOp identifies a unary operator.
type UnaryOp string

// Unary operators.
const (
	OpNot    UnaryOp = "!"
	OpNegate UnaryOp = "-"
	OpPlus   UnaryOp = "+"
)

// Unary is a unary operation: Op Operand.
type Unary struct {
	Op      UnaryOp
	Operand Expr
}

func (*Unary) exprNode() {}

// Call is a method or function call.
//
// Object is the receiver for method calls (s.Name.StartsWith("A")) and nil
// for free functions. Operator chain links are free calls whose first
// argument is the upstream chain:
//
//	Where(Select(students, s => s.Name), n => n != "")
type Call struct {
	Object Expr
	Method string
	Args   []Expr
}

func (*Call) exprNode() {}

// NewMember is one named member of a composite.
type NewMember struct {
	Name  string
	Value Expr
}

// New constructs an anonymous composite value.
//
// Result selectors that combine two range variables (new { s, c }) produce
// a New; the downstream lambda parameter bound to it is a transparent
// identifier.
type New struct {
	Members []NewMember
}

func (*New) exprNode() {}

// Member returns the value of the named member, if present.
func (n *New) Member(name string) (Expr, bool) {
	for _, m := range n.Members {
		if m.Name == name {
			return m.Value, true
		}
	}
	return nil, false
}

// Conditional is a ternary: Test ? IfTrue : IfFalse.
type Conditional struct {
	Test    Expr
	IfTrue  Expr
	IfFalse Expr
}

func (*Conditional) exprNode() {}

// Lambda is an anonymous function: (Params) => Body.
type Lambda struct {
	Params []*Parameter
	Body   Expr
}

func (*Lambda) exprNode() {}

// Arity returns the number of parameters.
func (l *Lambda) Arity() int {
	return len(l.Params)
}

// Referent is anything a SourceReference can point at: intermediate nodes
// while parsing, from/join clauses once the query model is assembled.
type Referent interface {
	// ReferenceName is the range-variable name the referent introduces.
	ReferenceName() string
}

// SourceReference denotes "the value produced by Source".
//
// It replaces lambda parameters once resolution has traced them to their
// producer. The back-reference is non-owning: it is a lookup only.
type SourceReference struct {
	Source Referent
}

func (*SourceReference) exprNode() {}
