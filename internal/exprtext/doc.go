// Package exprtext parses lambda bodies written as text into expression
// trees.
//
// Bodies use expr-lang syntax (github.com/expr-lang/expr): member access,
// arithmetic and comparison operators, and/or/not, ternaries, method and
// builtin calls, and map literals. A map literal builds an anonymous
// composite, so a result selector is written
//
//	(s, c) => {s: s, c: c}
//
// Float literals are rejected; query constants are integers, strings,
// booleans, null, or arrays of those.
package exprtext
