package harness

import (
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/roach88/chainq/internal/expression"
	"github.com/roach88/chainq/internal/querymodel"
	"github.com/roach88/chainq/internal/querytext"
)

// bodyIndex matches clause selectors of the form body[N].
var bodyIndex = regexp.MustCompile(`^body\[(\d+)\]$`)

// AssertionError is returned when an assertion fails.
// It includes the rendered model to help debug the failure.
type AssertionError struct {
	Type     string // Assertion type for categorization
	Expected string // Human-readable expected outcome
	Actual   string // Human-readable actual outcome
	Rendered string // Rendered model, or the parse error
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	if e.Rendered != "" {
		fmt.Fprintf(&buf, "\nModel:\n  %s\n", e.Rendered)
	}

	return buf.String()
}

// EvaluateAssertions checks every assertion against result and returns the
// failure messages. Model assertions fail when parsing failed.
func EvaluateAssertions(result *Result, assertions []Assertion) []string {
	var errors []string

	for i, assertion := range assertions {
		var err error

		switch {
		case assertion.Type == AssertErrorCode:
			err = assertErrorCode(result, assertion)
		case result.Model == nil:
			err = &AssertionError{
				Type:     assertion.Type,
				Expected: "a parsed query model",
				Actual:   fmt.Sprintf("parse failed with %s", result.ErrorCode),
				Rendered: result.ParseError,
			}
		default:
			err = evaluateModelAssertion(result, assertion)
		}

		if err != nil {
			errors = append(errors, fmt.Sprintf("assertion[%d]: %v", i, err))
		}
	}

	return errors
}

func evaluateModelAssertion(result *Result, assertion Assertion) error {
	switch assertion.Type {
	case AssertBodyClauseCount:
		return assertBodyClauseCount(result, assertion)
	case AssertBodyClauseKinds:
		return assertBodyClauseKinds(result, assertion)
	case AssertTerminalKind:
		return assertTerminalKind(result, assertion)
	case AssertOrderings:
		return assertOrderings(result, assertion)
	case AssertContainsReference:
		return assertContainsReference(result, assertion)
	case AssertRendered:
		return assertRendered(result, assertion)
	case AssertResolved:
		return assertResolved(result)
	default:
		return fmt.Errorf("unknown assertion type %q", assertion.Type)
	}
}

func assertErrorCode(result *Result, assertion Assertion) error {
	if string(result.ErrorCode) == assertion.Code {
		return nil
	}
	actual := "parse succeeded"
	if result.ErrorCode != "" {
		actual = string(result.ErrorCode)
	}
	return &AssertionError{
		Type:     AssertErrorCode,
		Expected: assertion.Code,
		Actual:   actual,
		Rendered: result.Rendered + result.ParseError,
	}
}

func assertBodyClauseCount(result *Result, assertion Assertion) error {
	got := result.Model.BodyClauses.Len()
	if got == *assertion.Count {
		return nil
	}
	return &AssertionError{
		Type:     AssertBodyClauseCount,
		Expected: strconv.Itoa(*assertion.Count),
		Actual:   strconv.Itoa(got),
		Rendered: result.Rendered,
	}
}

func assertBodyClauseKinds(result *Result, assertion Assertion) error {
	var got []string
	for _, c := range result.Model.BodyClauses.All() {
		got = append(got, querytext.ClauseKind(c))
	}
	if slices.Equal(got, assertion.Kinds) {
		return nil
	}
	return &AssertionError{
		Type:     AssertBodyClauseKinds,
		Expected: fmt.Sprintf("%v", assertion.Kinds),
		Actual:   fmt.Sprintf("%v", got),
		Rendered: result.Rendered,
	}
}

func assertTerminalKind(result *Result, assertion Assertion) error {
	got := querytext.ClauseKind(result.Model.SelectOrGroupClause)
	if got == assertion.Kind {
		return nil
	}
	return &AssertionError{
		Type:     AssertTerminalKind,
		Expected: assertion.Kind,
		Actual:   got,
		Rendered: result.Rendered,
	}
}

func assertOrderings(result *Result, assertion Assertion) error {
	clause, err := selectClause(result.Model, assertion.Clause)
	if err != nil {
		return err
	}
	orderBy, ok := clause.(*querymodel.OrderByClause)
	if !ok {
		return &AssertionError{
			Type:     AssertOrderings,
			Expected: assertion.Clause + " is an order_by clause",
			Actual:   querytext.ClauseKind(clause),
			Rendered: result.Rendered,
		}
	}

	var got []string
	for _, o := range orderBy.Orderings.All() {
		got = append(got, expression.Format(o.Expression)+" "+string(o.Direction))
	}
	if slices.Equal(got, assertion.Orderings) {
		return nil
	}
	return &AssertionError{
		Type:     AssertOrderings,
		Expected: fmt.Sprintf("%q", assertion.Orderings),
		Actual:   fmt.Sprintf("%q", got),
		Rendered: result.Rendered,
	}
}

func assertContainsReference(result *Result, assertion Assertion) error {
	clause, err := selectClause(result.Model, assertion.Clause)
	if err != nil {
		return err
	}

	var names []string
	for _, e := range querymodel.ClauseExpressions(clause) {
		for _, ref := range expression.References(e) {
			if ref.ReferenceName() == assertion.Referent && slices.Contains(result.Model.Referents(), ref) {
				return nil
			}
			names = append(names, ref.ReferenceName())
		}
	}
	return &AssertionError{
		Type:     AssertContainsReference,
		Expected: fmt.Sprintf("%s references clause [%s]", assertion.Clause, assertion.Referent),
		Actual:   fmt.Sprintf("references %v", names),
		Rendered: result.Rendered,
	}
}

func assertRendered(result *Result, assertion Assertion) error {
	want := strings.TrimSpace(assertion.Text)
	if result.Rendered == want {
		return nil
	}
	return &AssertionError{
		Type:     AssertRendered,
		Expected: want,
		Actual:   result.Rendered,
	}
}

func assertResolved(result *Result) error {
	if len(result.Warnings) == 0 {
		return nil
	}
	return &AssertionError{
		Type:     AssertResolved,
		Expected: "no unresolved parameters or dangling references",
		Actual:   strings.Join(result.Warnings, "; "),
		Rendered: result.Rendered,
	}
}

// selectClause resolves "main", "terminal", or "body[N]".
func selectClause(m *querymodel.QueryModel, selector string) (querymodel.Clause, error) {
	switch selector {
	case "main":
		return m.MainFromClause, nil
	case "terminal":
		return m.SelectOrGroupClause, nil
	}

	match := bodyIndex.FindStringSubmatch(selector)
	if match == nil {
		return nil, fmt.Errorf("invalid clause selector %q, expected main, terminal, or body[N]", selector)
	}
	i, _ := strconv.Atoi(match[1])
	if i >= m.BodyClauses.Len() {
		return nil, fmt.Errorf("clause %s out of range: model has %d body clauses", selector, m.BodyClauses.Len())
	}
	return m.BodyClauses.At(i), nil
}
