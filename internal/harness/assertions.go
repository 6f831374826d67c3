package harness

import (
	"fmt"
	"slices"
	"sort"
	"strings"

	"github.com/mackim-3768/Aegis-AI-DAS/internal/catalog"
	"github.com/mackim-3768/Aegis-AI-DAS/internal/payload"
	"github.com/mackim-3768/Aegis-AI-DAS/internal/state"
)

// Expectation names used in AssertionError.Check.
const (
	CheckSeverity      = "severity"
	CheckSummary       = "summary"
	CheckSummaryPrefix = "summary_prefix"
	CheckActions       = "actions"
	CheckAbsent        = "absent"
	CheckContext       = "context"
)

// AssertionError is returned when an expectation does not hold.
type AssertionError struct {
	Check    string // Expectation that failed
	Tool     string // Tool the check inspected, if any
	Expected string
	Actual   string
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "Assertion failed: %s", e.Check)
	if e.Tool != "" {
		fmt.Fprintf(&buf, " (%s)", e.Tool)
	}
	fmt.Fprintf(&buf, "\n  Expected: %s\n  Actual: %s", e.Expected, e.Actual)
	return buf.String()
}

// Check evaluates every expectation in e against s and returns one error
// per failure, in a stable order.
func Check(e Expect, s state.AppState) []error {
	var errs []error
	last := s.LastInference

	if e.Severity != nil && *e.Severity != last.Severity {
		errs = append(errs, &AssertionError{
			Check:    CheckSeverity,
			Expected: fmt.Sprint(*e.Severity),
			Actual:   fmt.Sprint(last.Severity),
		})
	}
	if e.Summary != "" && e.Summary != last.Summary {
		errs = append(errs, &AssertionError{
			Check:    CheckSummary,
			Expected: fmt.Sprintf("%q", e.Summary),
			Actual:   fmt.Sprintf("%q", last.Summary),
		})
	}
	if e.SummaryPrefix != "" && !strings.HasPrefix(last.Summary, e.SummaryPrefix) {
		errs = append(errs, &AssertionError{
			Check:    CheckSummaryPrefix,
			Expected: fmt.Sprintf("prefix %q", e.SummaryPrefix),
			Actual:   fmt.Sprintf("%q", last.Summary),
		})
	}

	errs = append(errs, checkFields(CheckActions, e.Actions, s)...)

	for _, name := range e.Absent {
		if slices.Contains(last.ActionToolNames, name) {
			errs = append(errs, &AssertionError{
				Check:    CheckAbsent,
				Tool:     name,
				Expected: "not among inferred actions",
				Actual:   fmt.Sprintf("present in %v", last.ActionToolNames),
			})
		}
	}

	errs = append(errs, checkFields(CheckContext, e.Context, s)...)
	return errs
}

// checkFields performs a subset match of each tool's expected fields
// against its payload in s. Tools are visited in name order.
func checkFields(check string, want map[string]map[string]any, s state.AppState) []error {
	names := make([]string, 0, len(want))
	for name := range want {
		names = append(names, name)
	}
	sort.Strings(names)

	var errs []error
	for _, name := range names {
		id, ok := catalog.Resolve(name)
		if !ok {
			errs = append(errs, &AssertionError{Check: check, Tool: name, Expected: "known tool", Actual: "unknown tool"})
			continue
		}
		expected, err := payload.MapFromAny(want[name])
		if err != nil {
			errs = append(errs, &AssertionError{Check: check, Tool: name, Expected: "valid payload", Actual: err.Error()})
			continue
		}
		if err := matchFields(check, name, expected, s.Payload(id)); err != nil {
			errs = append(errs, err)
		}
	}
	return errs
}

// matchFields reports the first field of expected, in key order, that is
// missing from actual or differs.
func matchFields(check, tool string, expected, actual payload.Map) error {
	for _, key := range expected.SortedKeys() {
		got, ok := actual[key]
		if !ok {
			return &AssertionError{
				Check:    check,
				Tool:     tool,
				Expected: fmt.Sprintf("%s=%s", key, render(expected[key])),
				Actual:   fmt.Sprintf("%s missing", key),
			}
		}
		if !payload.Equal(expected[key], got) {
			return &AssertionError{
				Check:    check,
				Tool:     tool,
				Expected: fmt.Sprintf("%s=%s", key, render(expected[key])),
				Actual:   fmt.Sprintf("%s=%s", key, render(got)),
			}
		}
	}
	return nil
}

func render(v payload.Value) string {
	data, err := payload.MarshalValue(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(data)
}
