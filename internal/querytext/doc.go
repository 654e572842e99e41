// Package querytext renders query models for people and for golden files.
//
// Render walks a model with a querymodel.VisitorBase-driven visitor and
// prints one comprehension clause per model clause. Snapshot produces the
// same information as IR values, and MarshalSnapshot encodes it with the
// canonical JSON encoder so snapshots are byte-stable.
package querytext
