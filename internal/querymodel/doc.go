// Package querymodel defines the Query Model: the clause structure a parsed
// operator chain is turned into, and the visitor that walks it.
//
// A model has one MainFromClause, an ordered list of body clauses
// (AdditionalFromClause, WhereClause, OrderByClause), and exactly one
// terminal SelectClause or GroupClause. Join clauses belong to the from
// clause they were attached to. Every clause but the main from clause links
// to its predecessor.
//
// Expressions inside clauses are resolved: lambda parameters have been
// replaced by expression.SourceReference values whose referent is a from or
// join clause of the same model. Validate checks that property.
//
// Models are mutable. All collections (body clauses, orderings, join clauses,
// result modifications) support mutation during iteration; see Collection.
package querymodel
