// Package reconcile applies external edits, scenario presets and rule
// engine output to the state store.
//
// Every operation is a pure Transform over AppState (this file) so it can
// be composed and tested without a store. Reconciler binds the transforms
// to a store, an engine, a wall clock and a logger.
//
// None of the edit operations fail. Unknown tool names, tools of the wrong
// kind and payloads that sanitize to nothing are ignored without touching
// state.
package reconcile

import (
	"fmt"
	"time"

	"github.com/mackim-3768/Aegis-AI-DAS/internal/catalog"
	"github.com/mackim-3768/Aegis-AI-DAS/internal/engine"
	"github.com/mackim-3768/Aegis-AI-DAS/internal/payload"
	"github.com/mackim-3768/Aegis-AI-DAS/internal/scenario"
	"github.com/mackim-3768/Aegis-AI-DAS/internal/state"
)

// merge sanitizes p for id and merges it into the tool's payload, stamping
// now. It reports false, with s unchanged, when id is not of kind want or
// nothing survives sanitization.
func merge(s state.AppState, want catalog.Kind, id catalog.ToolID, p payload.Map, now time.Time) (state.AppState, payload.Map, bool) {
	if catalog.KindOf(id) != want {
		return s, nil, false
	}
	sanitized := catalog.Sanitize(id, p)
	if len(sanitized) == 0 {
		return s, nil, false
	}
	ts, ok := s.Tool(id)
	if !ok {
		ts = state.ToolState{ID: id, Payload: catalog.DefaultPayload(id)}
	}
	ts.Payload = ts.Payload.Merge(sanitized)
	ts.UpdatedAt = now
	return s.WithTool(ts), sanitized, true
}

// accepts reports whether an edit of id with p would change state. It
// depends only on its arguments, never on a snapshot.
func accepts(want catalog.Kind, id catalog.ToolID, p payload.Map) bool {
	return catalog.KindOf(id) == want && len(catalog.Sanitize(id, p)) > 0
}

// SetDebug sets the debug flag.
func SetDebug(on bool, now time.Time) state.Transform {
	return func(s state.AppState) state.AppState {
		msg := "debug mode disabled"
		if on {
			msg = "debug mode enabled"
		}
		return s.WithDebug(on).AppendLog(state.LogSystem, now, msg, nil)
	}
}

// SetProcessor selects the processor mode.
func SetProcessor(p state.Processor, now time.Time) state.Transform {
	return func(s state.AppState) state.AppState {
		return s.WithProcessor(p).AppendLog(state.LogSystem, now, "processor set to "+p.String(), nil)
	}
}

// SetContextField merges the allowed fields of p into a CONTEXT tool.
func SetContextField(id catalog.ToolID, p payload.Map, now time.Time) state.Transform {
	return func(s state.AppState) state.AppState {
		next, sanitized, ok := merge(s, catalog.Context, id, p, now)
		if !ok {
			return s
		}
		return next.AppendLog(state.LogContext, now, id.Name(), sanitized)
	}
}

// ApplyActionCall merges the allowed fields of p into an ACTION tool.
func ApplyActionCall(id catalog.ToolID, p payload.Map, now time.Time) state.Transform {
	return func(s state.AppState) state.AppState {
		next, sanitized, ok := merge(s, catalog.Action, id, p, now)
		if !ok {
			return s
		}
		return next.AppendLog(state.LogAction, now, id.Name(), sanitized)
	}
}

// ApplyScenario folds every override of preset into context as a single
// transition. Overrides that sanitize to nothing are skipped.
func ApplyScenario(preset scenario.Preset, now time.Time) state.Transform {
	return func(s state.AppState) state.AppState {
		applied := payload.List{}
		for _, ov := range preset.Overrides {
			next, _, ok := merge(s, catalog.Context, ov.Tool, ov.Payload, now)
			if !ok {
				continue
			}
			s = next
			applied = append(applied, payload.String(ov.Tool.Name()))
		}
		return s.AppendLog(state.LogSystem, now, fmt.Sprintf("scenario applied: %s", preset.Label), payload.Map{
			"scenario": payload.String(string(preset.ID)),
			"tools":    applied,
		})
	}
}

// ApplyInference merges the action calls of r into action state and
// records r as the last inference.
func ApplyInference(r engine.Result, now time.Time) state.Transform {
	return func(s state.AppState) state.AppState {
		for _, c := range r.ActionCalls {
			next, sanitized, ok := merge(s, catalog.Action, c.Tool, c.Payload, now)
			if !ok {
				continue
			}
			s = next.AppendLog(state.LogAction, now, c.Tool.Name(), sanitized)
		}

		snap := r.Snapshot()
		snap.Timestamp = now
		return s.WithInference(snap).AppendLog(state.LogThought, now, r.Thought, r.RawOutput)
	}
}

// RunInference evaluates e against the snapshot it receives and applies
// the result to that same snapshot. The result is also written to out
// when out is non-nil.
func RunInference(e engine.Inferencer, now time.Time, out *engine.Result) state.Transform {
	return func(s state.AppState) state.AppState {
		r := e.Infer(s)
		if out != nil {
			*out = r
		}
		return ApplyInference(r, now)(s)
	}
}
