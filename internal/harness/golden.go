package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/chainq/internal/ir"
)

// ModelSnapshot captures what a scenario produced.
// All fields use canonical JSON serialization for deterministic comparison.
type ModelSnapshot struct {
	ScenarioName string
	Query        string
	Rendered     string
	Model        ir.IRObject
	ErrorCode    string
}

// toCanonical converts a ModelSnapshot to an IR object for canonical JSON
// serialization. The error message is left out: only the code is stable.
func (s *ModelSnapshot) toCanonical() ir.IRObject {
	obj := ir.IRObject{
		"scenario_name": ir.IRString(s.ScenarioName),
		"query":         ir.IRString(s.Query),
	}
	if s.ErrorCode != "" {
		obj["error_code"] = ir.IRString(s.ErrorCode)
		return obj
	}
	obj["rendered"] = ir.IRString(s.Rendered)
	obj["model"] = s.Model
	return obj
}

// MarshalSnapshot encodes the snapshot of result as canonical JSON.
func MarshalSnapshot(scenarioName string, result *Result) ([]byte, error) {
	snapshot := ModelSnapshot{
		ScenarioName: scenarioName,
		Query:        result.Query,
		Rendered:     result.Rendered,
		Model:        result.Snapshot,
		ErrorCode:    string(result.ErrorCode),
	}
	return ir.MarshalCanonical(snapshot.toCanonical())
}

// RunWithGolden executes a scenario and compares the model snapshot against
// a golden file stored in testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns error if scenario execution fails.
// Test failure (via goldie) occurs if the snapshot doesn't match the golden file.
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}
	if err := AssertGolden(t, scenario.Name, result); err != nil {
		return nil, err
	}
	return result, nil
}

// AssertGolden compares an existing result against its golden file
// without re-running the scenario.
func AssertGolden(t *testing.T, scenarioName string, result *Result) error {
	t.Helper()

	data, err := MarshalSnapshot(scenarioName, result)
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenarioName, data)

	return nil
}
