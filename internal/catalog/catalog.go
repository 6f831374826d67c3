package catalog

import (
	"github.com/mackim-3768/Aegis-AI-DAS/internal/payload"
)

// Derived indices. Computed once from table and treated as immutable.
var (
	byID        = indexByID()
	byName      = indexByName()
	allowedKeys = indexAllowedKeys()
	contextIDs  = idsOfKind(Context)
	actionIDs   = idsOfKind(Action)
)

func indexByID() map[ToolID]int {
	idx := make(map[ToolID]int, len(table))
	for i, e := range table {
		idx[e.id] = i
	}
	return idx
}

func indexByName() map[string]ToolID {
	idx := make(map[string]ToolID, len(table))
	for _, e := range table {
		idx[e.name] = e.id
	}
	return idx
}

func indexAllowedKeys() map[ToolID]map[string]struct{} {
	idx := make(map[ToolID]map[string]struct{}, len(table))
	for _, e := range table {
		keys := make(map[string]struct{}, len(e.defaults))
		for k := range e.defaults {
			keys[k] = struct{}{}
		}
		idx[e.id] = keys
	}
	return idx
}

func idsOfKind(k Kind) []ToolID {
	var ids []ToolID
	for _, e := range table {
		if e.kind == k {
			ids = append(ids, e.id)
		}
	}
	return ids
}

func entryFor(id ToolID) (entry, bool) {
	i, ok := byID[id]
	if !ok {
		return entry{}, false
	}
	return table[i], true
}

// Resolve looks a tool up by its external name.
func Resolve(name string) (ToolID, bool) {
	id, ok := byName[name]
	return id, ok
}

// KindOf returns the tool's kind, or 0 for an undeclared id.
func KindOf(id ToolID) Kind {
	e, ok := entryFor(id)
	if !ok {
		return 0
	}
	return e.kind
}

// DefaultPayload returns a fresh copy of the tool's catalog defaults.
// Undeclared ids yield an empty map.
func DefaultPayload(id ToolID) payload.Map {
	e, ok := entryFor(id)
	if !ok {
		return payload.Map{}
	}
	return e.defaults.Clone()
}

// AllowedKeys returns the tool's allowed key set in canonical order.
func AllowedKeys(id ToolID) []string {
	e, ok := entryFor(id)
	if !ok {
		return nil
	}
	return e.defaults.SortedKeys()
}

// IsAllowed reports whether key may be stored for id.
func IsAllowed(id ToolID, key string) bool {
	_, ok := allowedKeys[id][key]
	return ok
}

// Sanitize filters p down to id's allowed keys. The result never aliases p;
// unknown keys are dropped silently.
func Sanitize(id ToolID, p payload.Map) payload.Map {
	out := make(payload.Map, len(p))
	for k, v := range p {
		if IsAllowed(id, k) {
			out[k] = payload.CloneValue(v)
		}
	}
	return out
}

// ContextTools returns all CONTEXT ids in declaration order.
func ContextTools() []ToolID {
	return append([]ToolID(nil), contextIDs...)
}

// ActionTools returns all ACTION ids in declaration order.
func ActionTools() []ToolID {
	return append([]ToolID(nil), actionIDs...)
}

// Tools returns every declared id in declaration order.
func Tools() []ToolID {
	ids := make([]ToolID, 0, len(table))
	for _, e := range table {
		ids = append(ids, e.id)
	}
	return ids
}

// IDs returns the ids of kind k in declaration order.
func IDs(k Kind) []ToolID {
	switch k {
	case Context:
		return ContextTools()
	case Action:
		return ActionTools()
	}
	return nil
}

// Names returns every external name in declaration order.
func Names() []string {
	names := make([]string, 0, len(table))
	for _, e := range table {
		names = append(names, e.name)
	}
	return names
}
