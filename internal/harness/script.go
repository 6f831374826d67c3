package harness

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/mackim-3768/Aegis-AI-DAS/internal/catalog"
	"github.com/mackim-3768/Aegis-AI-DAS/internal/payload"
	"github.com/mackim-3768/Aegis-AI-DAS/internal/state"
)

// Script is one conformance script.
type Script struct {
	// Name identifies the script and names its golden file.
	Name string `yaml:"name"`

	// Description explains what the script validates.
	Description string `yaml:"description"`

	// Steps are applied in order to a fresh store.
	Steps []Step `yaml:"steps"`

	// Expect is checked against the final state.
	Expect Expect `yaml:"expect"`
}

// Step is a single edit. Exactly one field is set.
type Step struct {
	Scenario  string    `yaml:"scenario,omitempty"`
	Context   *ToolEdit `yaml:"context,omitempty"`
	Action    *ToolEdit `yaml:"action,omitempty"`
	Infer     bool      `yaml:"infer,omitempty"`
	Debug     *bool     `yaml:"debug,omitempty"`
	Processor string    `yaml:"processor,omitempty"`
}

// ToolEdit names a tool and the fields to merge into it.
type ToolEdit struct {
	Tool    string         `yaml:"tool"`
	Payload map[string]any `yaml:"payload"`
}

// Expect holds the checks run after the last step.
type Expect struct {
	// Severity is the expected severity of the last inference.
	Severity *int `yaml:"severity,omitempty"`

	// Summary must equal the last inference's summary.
	Summary string `yaml:"summary,omitempty"`

	// SummaryPrefix must prefix the last inference's summary.
	SummaryPrefix string `yaml:"summary_prefix,omitempty"`

	// Actions maps ACTION tool names to expected payload fields.
	Actions map[string]map[string]any `yaml:"actions,omitempty"`

	// Absent lists tools that must not be among the last inference's
	// action tools.
	Absent []string `yaml:"absent,omitempty"`

	// Context maps CONTEXT tool names to expected payload fields.
	Context map[string]map[string]any `yaml:"context,omitempty"`
}

// Step kinds, as reported in errors and logs.
const (
	StepScenario  = "scenario"
	StepContext   = "context"
	StepAction    = "action"
	StepInfer     = "infer"
	StepDebug     = "debug"
	StepProcessor = "processor"
)

// Kind reports which field of s is set. It returns "" when none is and
// the first set field when several are; validate rejects both.
func (s Step) Kind() string {
	if kinds := s.kinds(); len(kinds) > 0 {
		return kinds[0]
	}
	return ""
}

func (s Step) kinds() []string {
	var out []string
	if s.Scenario != "" {
		out = append(out, StepScenario)
	}
	if s.Context != nil {
		out = append(out, StepContext)
	}
	if s.Action != nil {
		out = append(out, StepAction)
	}
	if s.Infer {
		out = append(out, StepInfer)
	}
	if s.Debug != nil {
		out = append(out, StepDebug)
	}
	if s.Processor != "" {
		out = append(out, StepProcessor)
	}
	return out
}

// LoadScript reads and validates a script file. Unknown fields are
// rejected so typos surface as errors instead of silently passing checks.
func LoadScript(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read script file: %w", err)
	}
	return ParseScript(data)
}

// ParseScript decodes and validates a script.
func ParseScript(data []byte) (*Script, error) {
	var s Script
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&s); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("invalid script: %w", err)
	}
	return &s, nil
}

// Validate checks required fields and that every tool name resolves to a
// tool of the kind its position requires. Scenario ids are checked when
// the script runs, against the presets it runs with.
func (s *Script) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}

	for i, step := range s.Steps {
		if err := validateStep(step); err != nil {
			return fmt.Errorf("steps[%d]: %w", i, err)
		}
	}

	if err := validateFields("expect.actions", catalog.Action, s.Expect.Actions); err != nil {
		return err
	}
	if err := validateFields("expect.context", catalog.Context, s.Expect.Context); err != nil {
		return err
	}
	for i, name := range s.Expect.Absent {
		if _, err := resolveKind(name, catalog.Action); err != nil {
			return fmt.Errorf("expect.absent[%d]: %w", i, err)
		}
	}
	if sev := s.Expect.Severity; sev != nil && (*sev < 0 || *sev > 3) {
		return fmt.Errorf("expect.severity: %d out of range 0..3", *sev)
	}
	return nil
}

func validateStep(step Step) error {
	kinds := step.kinds()
	switch len(kinds) {
	case 0:
		return fmt.Errorf("one of scenario, context, action, infer, debug or processor is required")
	case 1:
	default:
		return fmt.Errorf("only one step kind may be set, got %v", kinds)
	}

	switch kinds[0] {
	case StepContext:
		return validateEdit(step.Context, catalog.Context)
	case StepAction:
		return validateEdit(step.Action, catalog.Action)
	case StepProcessor:
		if _, err := state.ParseProcessor(step.Processor); err != nil {
			return err
		}
	}
	return nil
}

func validateEdit(edit *ToolEdit, want catalog.Kind) error {
	if edit.Tool == "" {
		return fmt.Errorf("tool is required")
	}
	if _, err := resolveKind(edit.Tool, want); err != nil {
		return err
	}
	if _, err := payload.MapFromAny(edit.Payload); err != nil {
		return fmt.Errorf("payload: %w", err)
	}
	return nil
}

func validateFields(field string, want catalog.Kind, m map[string]map[string]any) error {
	for name, fields := range m {
		if _, err := resolveKind(name, want); err != nil {
			return fmt.Errorf("%s: %w", field, err)
		}
		if _, err := payload.MapFromAny(fields); err != nil {
			return fmt.Errorf("%s.%s: %w", field, name, err)
		}
	}
	return nil
}

func resolveKind(name string, want catalog.Kind) (catalog.ToolID, error) {
	id, ok := catalog.Resolve(name)
	if !ok {
		return 0, fmt.Errorf("unknown tool %q", name)
	}
	if id.Kind() != want {
		return 0, fmt.Errorf("%s is not a %s tool", name, want)
	}
	return id, nil
}
