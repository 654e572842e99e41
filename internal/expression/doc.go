// Package expression defines the expression trees an operator chain is made
// of, and the rewriting primitives the parser resolves them with.
//
// A query arrives as nested free calls whose first argument is the upstream
// chain and whose remaining arguments are lambdas or constants:
//
//	Select(Where(students, s => s.Age > 18), s => s.Name)
//
// Resolution replaces each lambda parameter with a SourceReference to the
// clause producing its value. Composites (New) built by result selectors are
// flattened by SimplifyCompositeMembers, so a resolved tree never mentions a
// transparent identifier.
//
// Trees are treated as immutable: Transform rebuilds only the spine above a
// change and keeps untouched subtrees by identity.
package expression
