package structure

import (
	"fmt"
	"slices"
	"strings"

	"github.com/roach88/chainq/internal/expression"
	"github.com/roach88/chainq/internal/qerr"
	"github.com/roach88/chainq/internal/querymodel"
)

// ArgKind classifies one argument of a chain link for signature matching.
type ArgKind int

const (
	ArgUnknown  ArgKind = iota
	ArgLambda1          // one-parameter lambda
	ArgLambda2          // two-parameter lambda
	ArgSequence         // a sequence expression (inner join source)
	ArgValue            // a constant (Take/Skip count)
)

func (k ArgKind) String() string {
	switch k {
	case ArgLambda1:
		return "lambda/1"
	case ArgLambda2:
		return "lambda/2"
	case ArgSequence:
		return "sequence"
	case ArgValue:
		return "value"
	default:
		return "unknown"
	}
}

// classifyArg determines the kind of a call argument structurally.
func classifyArg(e expression.Expr) ArgKind {
	switch arg := e.(type) {
	case *expression.Lambda:
		if arg == nil {
			return ArgUnknown
		}
		switch arg.Arity() {
		case 1:
			return ArgLambda1
		case 2:
			return ArgLambda2
		}
		return ArgUnknown
	case *expression.Constant:
		if arg == nil {
			return ArgUnknown
		}
		return ArgValue
	case nil:
		return ArgUnknown
	default:
		return ArgSequence
	}
}

// Signature is the structural shape of an operator overload: the method
// name and the kinds of its arguments after the upstream chain.
type Signature struct {
	Method string
	Args   []ArgKind
}

func (s Signature) String() string {
	parts := make([]string, len(s.Args))
	for i, a := range s.Args {
		parts[i] = a.String()
	}
	return fmt.Sprintf("%s(source%s)", s.Method, prefixed(parts))
}

func prefixed(parts []string) string {
	if len(parts) == 0 {
		return ""
	}
	return ", " + strings.Join(parts, ", ")
}

func (s Signature) matches(method string, kinds []ArgKind) bool {
	if s.Method != method || len(s.Args) != len(kinds) {
		return false
	}
	for i := range s.Args {
		if s.Args[i] != kinds[i] {
			return false
		}
	}
	return true
}

// NodeKind names a family of node types, for completeness checking.
type NodeKind string

const (
	KindWhere          NodeKind = "Where"
	KindSelect         NodeKind = "Select"
	KindSelectMany     NodeKind = "SelectMany"
	KindJoin           NodeKind = "Join"
	KindOrderBy        NodeKind = "OrderBy"
	KindThenBy         NodeKind = "ThenBy"
	KindGroupBy        NodeKind = "GroupBy"
	KindResultModifier NodeKind = "ResultModifier"
)

// AllNodeKinds lists every node kind a complete registry must cover.
var AllNodeKinds = []NodeKind{
	KindWhere, KindSelect, KindSelectMany, KindJoin,
	KindOrderBy, KindThenBy, KindGroupBy, KindResultModifier,
}

// NodeFactory builds a node for a recognized chain link.
type NodeFactory func(source Node, call *expression.Call) (Node, error)

type registryEntry struct {
	sig     Signature
	kind    NodeKind
	factory NodeFactory
}

// Registry maps operator signatures to node factories.
//
// Registration happens once at startup; Recognize is read-only afterwards
// and safe for concurrent use.
type Registry struct {
	entries []registryEntry
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Register adds a signature. Registering the same signature twice is an error.
func (r *Registry) Register(sig Signature, kind NodeKind, factory NodeFactory) error {
	if sig.Method == "" {
		return qerr.InvalidArgument("method", "Register")
	}
	if factory == nil {
		return qerr.InvalidArgument("factory", "Register")
	}
	for _, e := range r.entries {
		if e.sig.matches(sig.Method, sig.Args) {
			return fmt.Errorf("duplicate signature %s", sig)
		}
	}
	r.entries = append(r.entries, registryEntry{sig: sig, kind: kind, factory: factory})
	return nil
}

// mustRegister is Register for the static default table.
func (r *Registry) mustRegister(sig Signature, kind NodeKind, factory NodeFactory) {
	if err := r.Register(sig, kind, factory); err != nil {
		panic(err)
	}
}

// Signatures returns the registered signatures in registration order.
func (r *Registry) Signatures() []Signature {
	out := make([]Signature, len(r.entries))
	for i, e := range r.entries {
		out[i] = e.sig
	}
	return out
}

// Check verifies every node kind has at least one registered signature.
func (r *Registry) Check() error {
	covered := make(map[NodeKind]bool)
	for _, e := range r.entries {
		covered[e.kind] = true
	}
	var missing []string
	for _, k := range AllNodeKinds {
		if !covered[k] {
			missing = append(missing, string(k))
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("registry incomplete: no signature for %s", strings.Join(missing, ", "))
	}
	return nil
}

// Recognize finds the factory for a chain link.
//
// A link is a free call (no receiver) whose first argument is the upstream
// chain. Matching is structural: method name plus argument kinds. Calls
// that match nothing fail with an unsupported-operator error naming the call.
func (r *Registry) Recognize(call *expression.Call) (NodeFactory, error) {
	if call == nil {
		return nil, qerr.InvalidArgument("call", "Recognize")
	}
	for _, arg := range call.Args {
		if l, ok := arg.(*expression.Lambda); ok && l != nil && slices.Contains(l.Params, nil) {
			return nil, qerr.InvalidArgument("lambda parameter", call.Method)
		}
	}
	if call.Object != nil || len(call.Args) == 0 {
		return nil, qerr.UnsupportedOperator(expression.Format(call), "not an operator chain link")
	}
	kinds := make([]ArgKind, len(call.Args)-1)
	for i, arg := range call.Args[1:] {
		kinds[i] = classifyArg(arg)
	}
	for _, e := range r.entries {
		if e.sig.matches(call.Method, kinds) {
			return e.factory, nil
		}
	}

	got := Signature{Method: call.Method, Args: kinds}
	return nil, qerr.UnsupportedOperator(expression.Format(call), "no registered operator matches "+got.String())
}

// DefaultRegistry returns a registry with every supported operator.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	l1 := []ArgKind{ArgLambda1}

	r.mustRegister(Signature{"Where", l1}, KindWhere, newWhereNode)
	r.mustRegister(Signature{"Select", l1}, KindSelect, newSelectNode)

	r.mustRegister(Signature{"SelectMany", l1}, KindSelectMany, newSelectManyNode)
	r.mustRegister(Signature{"SelectMany", []ArgKind{ArgLambda1, ArgLambda2}}, KindSelectMany, newSelectManyNode)

	r.mustRegister(Signature{"Join", []ArgKind{ArgSequence, ArgLambda1, ArgLambda1, ArgLambda2}}, KindJoin, newJoinNode)

	r.mustRegister(Signature{"OrderBy", l1}, KindOrderBy, newOrderByNode(querymodel.Ascending))
	r.mustRegister(Signature{"OrderByDescending", l1}, KindOrderBy, newOrderByNode(querymodel.Descending))
	r.mustRegister(Signature{"ThenBy", l1}, KindThenBy, newThenByNode(querymodel.Ascending))
	r.mustRegister(Signature{"ThenByDescending", l1}, KindThenBy, newThenByNode(querymodel.Descending))

	r.mustRegister(Signature{"GroupBy", l1}, KindGroupBy, newGroupByNode)
	r.mustRegister(Signature{"GroupBy", []ArgKind{ArgLambda1, ArgLambda1}}, KindGroupBy, newGroupByNode)

	r.mustRegister(Signature{"Distinct", nil}, KindResultModifier, newResultModifierNode(rolePredicate))
	r.mustRegister(Signature{"Take", []ArgKind{ArgValue}}, KindResultModifier, newResultModifierNode(rolePredicate))
	r.mustRegister(Signature{"Skip", []ArgKind{ArgValue}}, KindResultModifier, newResultModifierNode(rolePredicate))

	for _, op := range []string{"First", "FirstOrDefault", "Last", "LastOrDefault", "Single", "SingleOrDefault", "Count"} {
		r.mustRegister(Signature{op, nil}, KindResultModifier, newResultModifierNode(rolePredicate))
		r.mustRegister(Signature{op, l1}, KindResultModifier, newResultModifierNode(rolePredicate))
	}
	for _, op := range []string{"Min", "Max", "Sum", "Average"} {
		r.mustRegister(Signature{op, nil}, KindResultModifier, newResultModifierNode(roleSelector))
		r.mustRegister(Signature{op, l1}, KindResultModifier, newResultModifierNode(roleSelector))
	}

	return r
}
