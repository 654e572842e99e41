package harness

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"cuelang.org/go/cue"

	"github.com/roach88/chainq/internal/compiler"
	"github.com/roach88/chainq/internal/qerr"
	"github.com/roach88/chainq/internal/querymodel"
	"github.com/roach88/chainq/internal/querytext"
	"github.com/roach88/chainq/internal/structure"
	"github.com/roach88/chainq/internal/testutil"
)

// Run executes a test scenario and returns the result.
//
// Execution flow:
// 1. Load and compile the scenario's CUE specs
// 2. Look up the query definition
// 3. Parse it with a fresh parser (pinned names when the scenario lists any)
// 4. Render, snapshot, and validate the model
// 5. Evaluate assertions
//
// A parse failure is part of the result, not an error: scenarios assert on
// error codes. Errors are returned only when the scenario itself cannot run.
func Run(scenario *Scenario) (*Result, error) {
	return RunWithLogger(scenario, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

// RunWithLogger is Run with parser logging sent to logger.
func RunWithLogger(scenario *Scenario, logger *slog.Logger) (*Result, error) {
	specs, err := LoadSpecs(scenario)
	if err != nil {
		return nil, err
	}

	def, err := findQuery(specs, scenario.Query)
	if err != nil {
		return nil, err
	}

	opts := []structure.ParserOption{structure.WithLogger(logger)}
	if len(scenario.Names) > 0 {
		opts = append(opts, structure.WithNameGenerator(testutil.NewFixedNameGenerator("", scenario.Names...)))
	}
	parser, err := structure.NewQueryParser(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create parser: %w", err)
	}

	result := NewResult(def.Name)
	model, err := parser.Parse(def.Root, def.ItemType)
	if err != nil {
		result.ErrorCode = qerr.CodeOf(err)
		result.ParseError = err.Error()
		logger.Debug("scenario query failed to parse", "scenario", scenario.Name, "error", err)
	} else {
		result.Model = model
		result.Rendered = querytext.Render(model)
		result.Snapshot = querytext.Snapshot(model)
		result.Warnings = querymodel.Validate(model).Warnings
	}

	for _, msg := range EvaluateAssertions(result, scenario.Assertions) {
		result.AddError(msg)
	}

	return result, nil
}

// LoadSpecs compiles every spec the scenario names. Each spec is compiled
// on its own, so a query sees only the sources and schemas of its own spec.
func LoadSpecs(scenario *Scenario) ([]*compiler.Spec, error) {
	var values []cue.Value

	for _, path := range scenario.Specs {
		v, err := loadSpecPath(path)
		if err != nil {
			return nil, fmt.Errorf("failed to load spec %s: %w", path, err)
		}
		values = append(values, v)
	}

	if scenario.Spec != "" {
		v, err := compiler.CompileString(scenario.Name+".cue", scenario.Spec)
		if err != nil {
			return nil, fmt.Errorf("failed to compile inline spec: %w", err)
		}
		values = append(values, v)
	}

	specs := make([]*compiler.Spec, 0, len(values))
	for _, v := range values {
		spec, errs := compiler.CompileSpec(v, compiler.LoadModeFailFast)
		if len(errs) > 0 {
			return nil, fmt.Errorf("failed to compile spec: %w", errs[0])
		}
		specs = append(specs, spec)
	}
	return specs, nil
}

func loadSpecPath(path string) (cue.Value, error) {
	info, err := os.Stat(path)
	if err != nil {
		return cue.Value{}, err
	}
	if info.IsDir() {
		return compiler.LoadDir(path)
	}
	src, err := os.ReadFile(path)
	if err != nil {
		return cue.Value{}, err
	}
	return compiler.CompileString(path, string(src))
}

func findQuery(specs []*compiler.Spec, name string) (*compiler.QueryDef, error) {
	for _, spec := range specs {
		if def, ok := spec.Query(name); ok {
			return def, nil
		}
	}
	return nil, fmt.Errorf("query %q not found in specs", name)
}
