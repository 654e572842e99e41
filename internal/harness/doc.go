// Package harness provides conformance testing for query parsing.
//
// The harness compiles CUE specs, parses one named query per scenario, and
// checks the resulting query model (or the error parsing raised) against
// the scenario's assertions.
//
// # Scenario Format
//
// Scenarios are defined in YAML files with the following structure:
//
//	name: scenario_name
//	description: "What this scenario validates"
//	specs:
//	  - ../specs/students.cue
//	query: adults
//	names: [item]            # optional: pin made-up identifier names
//	assertions:
//	  - type: body_clause_count
//	    count: 2
//	  - type: body_clause_kinds
//	    kinds: [where, order_by]
//	  - type: terminal_kind
//	    kind: select
//	  - type: orderings
//	    clause: body[1]
//	    orderings: ["[s].Name asc"]
//	  - type: contains_reference
//	    clause: terminal
//	    referent: s
//	  - type: rendered
//	    text: from s in students where ([s].Age > 18) ...
//	  - type: resolved
//
// A scenario that expects parsing to fail asserts the error code instead:
//
//	assertions:
//	  - type: error_code
//	    code: MALFORMED_CHAIN
//
// Instead of (or besides) spec files, a scenario may carry its CUE spec
// inline under spec.
//
// # Golden Files
//
// RunWithGolden serializes the rendered model and its structural snapshot
// with canonical JSON and compares them with testdata/golden/<name>.golden
// using goldie. Regenerate with -update.
package harness
