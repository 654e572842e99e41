// Package structure recognizes operator chains and assembles query models
// from them.
//
// Parsing runs in three phases:
//
//  1. Recognition. Each link of the chain (a free Call whose first argument
//     is the upstream chain) is matched structurally against the Registry:
//     method name plus argument shape. Unmatched links fail with
//     qerr.CodeUnsupportedOperator.
//  2. Resolution. Each node resolves its lambdas against its source. A
//     parameter standing for the main source's items becomes a
//     SourceReference to the main source; a parameter standing for the
//     output of a SelectMany or Join is replaced by that node's resolved
//     result selector and composite member accesses are simplified away,
//     which is how transparent identifiers disappear. Results are memoized
//     per node.
//  3. Assembly. Nodes are applied source-first, each contributing clauses
//     to the query model and rebinding node references to clause
//     references.
//
// Parse is the entry point.
package structure
