package state

import (
	"fmt"
	"strings"
	"time"

	"github.com/mackim-3768/Aegis-AI-DAS/internal/catalog"
	"github.com/mackim-3768/Aegis-AI-DAS/internal/payload"
)

// Processor selects the (simulated) inference backend.
type Processor int

const (
	CPU Processor = iota
	GPU
	NPU
)

func (p Processor) String() string {
	switch p {
	case CPU:
		return "CPU"
	case GPU:
		return "GPU"
	case NPU:
		return "NPU"
	default:
		return fmt.Sprintf("Processor(%d)", int(p))
	}
}

// ParseProcessor accepts CPU, GPU or NPU in any case.
func ParseProcessor(s string) (Processor, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "CPU":
		return CPU, nil
	case "GPU":
		return GPU, nil
	case "NPU":
		return NPU, nil
	}
	return 0, fmt.Errorf("unknown processor %q (want CPU, GPU or NPU)", s)
}

func (p Processor) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

func (p *Processor) UnmarshalText(text []byte) error {
	parsed, err := ParseProcessor(string(text))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// ToolState is the current value of one tool.
type ToolState struct {
	ID        catalog.ToolID `json:"id"`
	Payload   payload.Map    `json:"payload"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// InferenceSnapshot is the part of the last inference result kept in state.
type InferenceSnapshot struct {
	Thought         string    `json:"thought"`
	Summary         string    `json:"summary"`
	Severity        int       `json:"severity"`
	ActionToolNames []string  `json:"action_tool_names"`
	Timestamp       time.Time `json:"timestamp"`
}

// LogKind classifies a log entry for timeline display.
type LogKind int

const (
	LogThought LogKind = iota + 1
	LogSystem
	LogAction
	LogContext
)

func (k LogKind) String() string {
	switch k {
	case LogThought:
		return "THOUGHT"
	case LogSystem:
		return "SYSTEM"
	case LogAction:
		return "ACTION"
	case LogContext:
		return "CONTEXT"
	default:
		return fmt.Sprintf("LogKind(%d)", int(k))
	}
}

// ParseLogKind is the inverse of LogKind.String.
func ParseLogKind(s string) (LogKind, bool) {
	for _, k := range []LogKind{LogThought, LogSystem, LogAction, LogContext} {
		if k.String() == s {
			return k, true
		}
	}
	return 0, false
}

func (k LogKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *LogKind) UnmarshalText(text []byte) error {
	parsed, ok := ParseLogKind(string(text))
	if !ok {
		return fmt.Errorf("unknown log kind %q", string(text))
	}
	*k = parsed
	return nil
}

// LogEntry is one append-only timeline record. Message and Payload are optional.
type LogEntry struct {
	ID        int         `json:"id"`
	Kind      LogKind     `json:"kind"`
	Timestamp time.Time   `json:"timestamp"`
	Message   string      `json:"message,omitempty"`
	Payload   payload.Map `json:"payload,omitempty"`
}

// AppState is the root snapshot.
//
// Context holds exactly the CONTEXT tools and Actions exactly the ACTION
// tools. Treat every field as read-only; use the With* helpers to derive a
// new snapshot.
type AppState struct {
	Debug         bool                         `json:"debug"`
	Processor     Processor                    `json:"processor"`
	Context       map[catalog.ToolID]ToolState `json:"context"`
	Actions       map[catalog.ToolID]ToolState `json:"actions"`
	LastInference InferenceSnapshot            `json:"last_inference"`
	Log           []LogEntry                   `json:"log"`
	Version       int64                        `json:"version"`
}

// New builds the initial snapshot from catalog defaults, stamping every
// tool with now.
func New(now time.Time) AppState {
	return AppState{
		Processor: CPU,
		Context:   defaultsFor(catalog.ContextTools(), now),
		Actions:   defaultsFor(catalog.ActionTools(), now),
	}
}

func defaultsFor(ids []catalog.ToolID, now time.Time) map[catalog.ToolID]ToolState {
	m := make(map[catalog.ToolID]ToolState, len(ids))
	for _, id := range ids {
		m[id] = ToolState{ID: id, Payload: catalog.DefaultPayload(id), UpdatedAt: now}
	}
	return m
}

// Tool returns the state of id from whichever map holds it.
func (s AppState) Tool(id catalog.ToolID) (ToolState, bool) {
	switch catalog.KindOf(id) {
	case catalog.Context:
		ts, ok := s.Context[id]
		return ts, ok
	case catalog.Action:
		ts, ok := s.Actions[id]
		return ts, ok
	}
	return ToolState{}, false
}

// Payload returns the payload of id, or nil for an undeclared id.
func (s AppState) Payload(id catalog.ToolID) payload.Map {
	ts, _ := s.Tool(id)
	return ts.Payload
}

// WithTool returns a snapshot with ts stored under its kind's map.
// Undeclared ids leave the snapshot unchanged.
func (s AppState) WithTool(ts ToolState) AppState {
	switch catalog.KindOf(ts.ID) {
	case catalog.Context:
		s.Context = withEntry(s.Context, ts)
	case catalog.Action:
		s.Actions = withEntry(s.Actions, ts)
	}
	return s
}

func withEntry(m map[catalog.ToolID]ToolState, ts ToolState) map[catalog.ToolID]ToolState {
	out := make(map[catalog.ToolID]ToolState, len(m)+1)
	for k, v := range m {
		out[k] = v
	}
	out[ts.ID] = ts
	return out
}

// WithDebug returns a snapshot with the debug flag set.
func (s AppState) WithDebug(on bool) AppState {
	s.Debug = on
	return s
}

// WithProcessor returns a snapshot with the processor mode set.
func (s AppState) WithProcessor(p Processor) AppState {
	s.Processor = p
	return s
}

// WithInference returns a snapshot carrying snap as the last inference.
func (s AppState) WithInference(snap InferenceSnapshot) AppState {
	snap.ActionToolNames = append([]string(nil), snap.ActionToolNames...)
	s.LastInference = snap
	return s
}

// AppendLog returns a snapshot with one more log entry. The entry ID is the
// new log length, so it depends only on the snapshot.
func (s AppState) AppendLog(kind LogKind, at time.Time, message string, p payload.Map) AppState {
	entry := LogEntry{
		ID:        len(s.Log) + 1,
		Kind:      kind,
		Timestamp: at,
		Message:   message,
	}
	if p != nil {
		entry.Payload = p.Clone()
	}
	log := make([]LogEntry, len(s.Log), len(s.Log)+1)
	copy(log, s.Log)
	s.Log = append(log, entry)
	return s
}

// ContextPayloads returns every context payload keyed by external tool name.
func (s AppState) ContextPayloads() payload.Map {
	return payloadsByName(s.Context)
}

// ActionPayloads returns every action payload keyed by external tool name.
func (s AppState) ActionPayloads() payload.Map {
	return payloadsByName(s.Actions)
}

func payloadsByName(m map[catalog.ToolID]ToolState) payload.Map {
	out := make(payload.Map, len(m))
	for id, ts := range m {
		out[id.Name()] = ts.Payload.Clone()
	}
	return out
}

// Digest identifies content-equal snapshots. It covers the debug flag, the
// processor and both tool maps; timestamps, the log and the version are
// excluded.
func (s AppState) Digest() (string, error) {
	content := payload.Map{
		"debug":     payload.Bool(s.Debug),
		"processor": payload.String(s.Processor.String()),
		"context":   s.ContextPayloads(),
		"actions":   s.ActionPayloads(),
	}
	digest, err := payload.Digest(payload.DomainSnapshot, content)
	if err != nil {
		return "", fmt.Errorf("digest snapshot v%d: %w", s.Version, err)
	}
	return digest, nil
}
