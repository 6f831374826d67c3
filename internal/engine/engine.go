package engine

import (
	"sort"
	"strings"

	"github.com/mackim-3768/Aegis-AI-DAS/internal/catalog"
	"github.com/mackim-3768/Aegis-AI-DAS/internal/payload"
	"github.com/mackim-3768/Aegis-AI-DAS/internal/state"
)

const (
	// NoEventsSummary is reported when no rule fires.
	NoEventsSummary = "No critical events detected"

	triggeredPrefix = "Triggered: "
	safetyEventType = "mock_inference"
)

// Severity bounds.
const (
	SeverityNone = 0
	SeverityLow  = 1
	SeverityMid  = 2
	SeverityHigh = 3
)

// ActionCall is a candidate actuator command produced by one inference.
type ActionCall struct {
	Tool     catalog.ToolID `json:"tool"`
	Payload  payload.Map    `json:"payload"`
	Priority int            `json:"priority"`
}

// Result is the outcome of one inference.
type Result struct {
	Thought     string       `json:"thought"`
	Summary     string       `json:"summary"`
	Severity    int          `json:"severity"`
	ActionCalls []ActionCall `json:"action_calls"`

	// RawInput and RawOutput are kept for diagnostics.
	RawInput  payload.Map `json:"raw_input"`
	RawOutput payload.Map `json:"raw_output"`
}

// ActionToolNames returns the external names of ActionCalls in output order.
func (r Result) ActionToolNames() []string {
	names := make([]string, 0, len(r.ActionCalls))
	for _, c := range r.ActionCalls {
		names = append(names, c.Tool.Name())
	}
	return names
}

// Call returns the surviving call for id, if any.
func (r Result) Call(id catalog.ToolID) (ActionCall, bool) {
	for _, c := range r.ActionCalls {
		if c.Tool == id {
			return c, true
		}
	}
	return ActionCall{}, false
}

// Snapshot reduces r to the part stored in application state.
func (r Result) Snapshot() state.InferenceSnapshot {
	return state.InferenceSnapshot{
		Thought:         r.Thought,
		Summary:         r.Summary,
		Severity:        r.Severity,
		ActionToolNames: r.ActionToolNames(),
	}
}

// Inferencer maps a snapshot to an inference result. Implementations must
// be deterministic and side-effect free.
type Inferencer interface {
	Infer(s state.AppState) Result
}

// RuleEngine evaluates a fixed rule table.
type RuleEngine struct {
	rules []Rule
}

// New returns an engine over the built-in rule table.
func New() *RuleEngine {
	return &RuleEngine{rules: builtinRules}
}

// NewWithRules returns an engine over rules, evaluated in the given order.
func NewWithRules(rules ...Rule) *RuleEngine {
	return &RuleEngine{rules: append([]Rule(nil), rules...)}
}

// Rules returns the engine's rule table in evaluation order.
func (e *RuleEngine) Rules() []Rule {
	return append([]Rule(nil), e.rules...)
}

// Infer evaluates every rule against s.
func (e *RuleEngine) Infer(s state.AppState) Result {
	ctx := contextView{s.Context}
	acc := newAccumulator()
	var events []string
	severity := SeverityNone

	for _, r := range e.rules {
		sev, calls := r.eval(ctx)
		if sev <= SeverityNone {
			continue
		}
		events = append(events, r.Event)
		severity = max(severity, sev)
		for _, c := range calls {
			acc.add(c.Tool, c.Payload, sev)
		}
	}

	if len(events) > 0 {
		acc.add(catalog.LogSafetyEvent, payload.Map{
			"event_type": payload.String(safetyEventType),
			"message":    payload.String(strings.Join(events, " | ")),
			"level":      payload.String(logLevel(severity)),
		}, severity)
	}
	if severity > SeverityNone {
		acc.add(catalog.EscalateWarningLevel, payload.Map{
			"level": payload.String(EscalationLevel(severity)),
		}, severity)
	}

	summary := NoEventsSummary
	if len(events) > 0 {
		summary = triggeredPrefix + strings.Join(events, ", ")
	}

	inserted := acc.calls()
	names := make(payload.List, 0, len(inserted))
	for _, c := range inserted {
		names = append(names, payload.String(c.Tool.Name()))
	}

	return Result{
		Thought:     summary,
		Summary:     summary,
		Severity:    severity,
		ActionCalls: byPriority(inserted),
		RawInput: payload.Map{
			"context":   s.ContextPayloads(),
			"processor": payload.String(s.Processor.String()),
			"debug":     payload.Bool(s.Debug),
		},
		RawOutput: payload.Map{
			"severity": payload.Number(severity),
			"actions":  names,
		},
	}
}

// EscalationLevel maps an overall severity to the escalation level name.
func EscalationLevel(severity int) string {
	switch severity {
	case SeverityLow:
		return "mid"
	case SeverityMid:
		return "high"
	case SeverityHigh:
		return "critical"
	default:
		return "low"
	}
}

func logLevel(severity int) string {
	switch {
	case severity >= SeverityHigh:
		return "danger"
	case severity >= SeverityMid:
		return "warning"
	default:
		return "info"
	}
}

// byPriority returns a copy of calls sorted by descending priority. The
// sort is stable, so equal priorities keep insertion order.
func byPriority(calls []ActionCall) []ActionCall {
	out := append([]ActionCall(nil), calls...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Priority > out[j].Priority
	})
	return out
}
