package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Scenario defines a conformance test scenario.
// A scenario parses one query from its specs and asserts on the resulting
// query model, or on the error parsing it raised.
type Scenario struct {
	// Name uniquely identifies this scenario.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Specs lists CUE spec files or directories to compile.
	// Paths are relative to the scenario file location.
	Specs []string `yaml:"specs,omitempty"`

	// Spec is an inline CUE spec, used instead of or alongside Specs.
	Spec string `yaml:"spec,omitempty"`

	// Query names the query definition to parse.
	Query string `yaml:"query"`

	// Names pins the identifier names the parser makes up, in order.
	Names []string `yaml:"names,omitempty"`

	// Assertions validate the parsed model.
	Assertions []Assertion `yaml:"assertions"`
}

// Assertion validates the query model or the parse error.
type Assertion struct {
	// Type specifies the assertion type; see the Assert* constants.
	Type string `yaml:"type"`

	// Count is the expected number of body clauses (body_clause_count).
	Count *int `yaml:"count,omitempty"`

	// Kinds are the expected body clause kinds in order (body_clause_kinds).
	Kinds []string `yaml:"kinds,omitempty"`

	// Kind is the expected terminal clause kind (terminal_kind).
	Kind string `yaml:"kind,omitempty"`

	// Orderings are the expected orderings of the order-by clause at Clause,
	// formatted "<expr> <asc|desc>" (orderings).
	Orderings []string `yaml:"orderings,omitempty"`

	// Clause selects a clause: "main", "terminal", or "body[N]"
	// (orderings, contains_reference).
	Clause string `yaml:"clause,omitempty"`

	// Referent is the range variable name a source reference must point
	// at (contains_reference).
	Referent string `yaml:"referent,omitempty"`

	// Code is the expected error code (error_code).
	Code string `yaml:"code,omitempty"`

	// Text is the expected rendering (rendered).
	Text string `yaml:"text,omitempty"`
}

// Assertion type constants.
const (
	AssertBodyClauseCount   = "body_clause_count"
	AssertBodyClauseKinds   = "body_clause_kinds"
	AssertTerminalKind      = "terminal_kind"
	AssertOrderings         = "orderings"
	AssertContainsReference = "contains_reference"
	AssertErrorCode         = "error_code"
	AssertRendered          = "rendered"
	AssertResolved          = "resolved"
)

// LoadScenario reads and parses a scenario YAML file, resolving spec paths
// relative to the scenario file's directory.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	return LoadScenarioWithBasePath(path, filepath.Dir(path))
}

// LoadScenarioWithBasePath reads and parses a scenario YAML file,
// resolving spec paths relative to the provided base path.
func LoadScenarioWithBasePath(path, basePath string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	// Parse YAML with strict field validation (catches typos like "assertion:" vs "assertions:")
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Reject unknown fields
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	// Resolve spec paths relative to base path BEFORE validation
	for i, specPath := range scenario.Specs {
		if !filepath.IsAbs(specPath) && basePath != "" {
			scenario.Specs[i] = filepath.Join(basePath, specPath)
		}
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if len(s.Specs) == 0 && s.Spec == "" {
		return fmt.Errorf("specs list or inline spec is required")
	}

	if s.Query == "" {
		return fmt.Errorf("query is required")
	}

	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}

	// Validate spec paths exist
	for _, specPath := range s.Specs {
		if _, err := os.Stat(specPath); os.IsNotExist(err) {
			return fmt.Errorf("spec path not found: %s", specPath)
		}
	}

	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion); err != nil {
			return err
		}
	}

	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertBodyClauseCount:
		if a.Count == nil || *a.Count < 0 {
			return fmt.Errorf("assertions[%d]: non-negative count is required for body_clause_count", index)
		}
	case AssertBodyClauseKinds:
		if a.Kinds == nil {
			return fmt.Errorf("assertions[%d]: kinds list is required for body_clause_kinds", index)
		}
	case AssertTerminalKind:
		if a.Kind == "" {
			return fmt.Errorf("assertions[%d]: kind is required for terminal_kind", index)
		}
	case AssertOrderings:
		if a.Clause == "" || len(a.Orderings) == 0 {
			return fmt.Errorf("assertions[%d]: clause and orderings are required for orderings", index)
		}
	case AssertContainsReference:
		if a.Clause == "" || a.Referent == "" {
			return fmt.Errorf("assertions[%d]: clause and referent are required for contains_reference", index)
		}
	case AssertErrorCode:
		if a.Code == "" {
			return fmt.Errorf("assertions[%d]: code is required for error_code", index)
		}
	case AssertRendered:
		if a.Text == "" {
			return fmt.Errorf("assertions[%d]: text is required for rendered", index)
		}
	case AssertResolved:
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	return nil
}
