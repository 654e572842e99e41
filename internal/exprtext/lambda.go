package exprtext

import (
	"fmt"
	"strings"

	"github.com/roach88/chainq/internal/expression"
	"github.com/roach88/chainq/internal/qerr"
)

// ParseLambda parses body with params in scope and returns the lambda.
//
// Each call creates the lambda's parameters anew, so two lambdas parsed
// from the same text never share a parameter.
func ParseLambda(params []ParamDecl, body string) (*expression.Lambda, error) {
	if len(params) == 0 {
		return nil, qerr.InvalidArgument("params", "ParseLambda")
	}
	scope := make(map[string]*expression.Parameter, len(params))
	lambda := &expression.Lambda{Params: make([]*expression.Parameter, len(params))}
	for i, d := range params {
		if d.Name == "" {
			return nil, qerr.InvalidArgument("params", "ParseLambda")
		}
		if _, dup := scope[d.Name]; dup {
			return nil, fmt.Errorf("duplicate lambda parameter %q", d.Name)
		}
		p := expression.Param(d.Name, d.Type)
		scope[d.Name] = p
		lambda.Params[i] = p
	}

	converted, err := ParseExpr(body, scope)
	if err != nil {
		return nil, err
	}
	lambda.Body = converted
	return lambda, nil
}

// ParamDecl declares one lambda parameter.
type ParamDecl struct {
	Name string
	Type string
}

// Params declares untyped parameters by name.
func Params(names ...string) []ParamDecl {
	out := make([]ParamDecl, len(names))
	for i, n := range names {
		out[i] = ParamDecl{Name: n}
	}
	return out
}

// ParseArrow parses arrow syntax: "s => s.Age > 18" or "(s, c) => {s: s, c: c}".
// types, when given, assign item types to the parameters positionally.
func ParseArrow(src string, types ...string) (*expression.Lambda, error) {
	head, body, ok := strings.Cut(src, "=>")
	if !ok {
		return nil, fmt.Errorf("%q: expected params => body", src)
	}
	head = strings.TrimSpace(head)
	head = strings.TrimSuffix(strings.TrimPrefix(head, "("), ")")

	var decls []ParamDecl
	for i, name := range strings.Split(head, ",") {
		d := ParamDecl{Name: strings.TrimSpace(name)}
		if i < len(types) {
			d.Type = types[i]
		}
		decls = append(decls, d)
	}
	return ParseLambda(decls, strings.TrimSpace(body))
}
