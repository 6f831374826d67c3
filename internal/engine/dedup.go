package engine

import (
	"github.com/mackim-3768/Aegis-AI-DAS/internal/catalog"
	"github.com/mackim-3768/Aegis-AI-DAS/internal/payload"
)

// accumulator collects at most one call per tool.
type accumulator struct {
	order []catalog.ToolID
	byID  map[catalog.ToolID]ActionCall
}

func newAccumulator() *accumulator {
	return &accumulator{byID: make(map[catalog.ToolID]ActionCall)}
}

// add records a call. An existing call for the same tool is replaced only
// by a strictly higher priority, and the tool keeps its original position.
func (a *accumulator) add(id catalog.ToolID, p payload.Map, priority int) {
	existing, ok := a.byID[id]
	if !ok {
		a.order = append(a.order, id)
	} else if priority <= existing.Priority {
		return
	}
	a.byID[id] = ActionCall{Tool: id, Payload: p, Priority: priority}
}

// calls returns the surviving calls in first-insertion order.
func (a *accumulator) calls() []ActionCall {
	out := make([]ActionCall, 0, len(a.order))
	for _, id := range a.order {
		out = append(out, a.byID[id])
	}
	return out
}
