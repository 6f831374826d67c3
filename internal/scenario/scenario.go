// Package scenario defines named bundles of context overrides.
//
// Six presets are built in. More can be loaded from YAML or CUE files;
// see LoadFile.
package scenario

import (
	"strings"

	"github.com/mackim-3768/Aegis-AI-DAS/internal/catalog"
	"github.com/mackim-3768/Aegis-AI-DAS/internal/payload"
)

// ID names a preset, e.g. "driver-fatigue".
type ID string

// Built-in preset IDs.
const (
	DriverFatigue    ID = "driver-fatigue"
	ForwardCollision ID = "forward-collision"
	SystemIntrusion  ID = "system-intrusion"
	LowVisibility    ID = "low-visibility"
	LowFriction      ID = "low-friction"
	EmergencyVehicle ID = "emergency-vehicle"
)

// Normalize folds case and treats '_' and ' ' like '-', so
// "DRIVER_FATIGUE" and "Driver Fatigue" both become "driver-fatigue".
func Normalize(s string) ID {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.NewReplacer("_", "-", " ", "-").Replace(s)
	return ID(s)
}

// Override replaces fields of one context tool.
type Override struct {
	Tool    catalog.ToolID
	Payload payload.Map
}

// Preset is an ordered list of overrides applied as one transition.
type Preset struct {
	ID        ID
	Label     string
	Overrides []Override
}

func o(id catalog.ToolID, pairs ...payload.Pair) Override {
	return Override{Tool: id, Payload: payload.Of(pairs...)}
}

func bv(k string, v bool) payload.Pair { return payload.F(k, payload.Bool(v)) }

func nv(k string, v float64) payload.Pair { return payload.F(k, payload.Number(v)) }

func sv(k, v string) payload.Pair { return payload.F(k, payload.String(v)) }

var builtin = []Preset{
	{DriverFatigue, "Driver Fatigue", []Override{
		o(catalog.GetDriverDrowsinessStatus, bv("value", true), nv("confidence", 0.88)),
		o(catalog.GetDrivingDurationStatus, nv("value", 5400), sv("level", "high")),
		o(catalog.GetDriverGazeDirection, sv("direction", "down"), nv("confidence", 0.7)),
		o(catalog.GetCabinCO2Concentration, nv("value", 1500), sv("level", "high")),
	}},
	{ForwardCollision, "Forward Collision", []Override{
		o(catalog.GetForwardCollisionRisk, nv("score", 0.92), sv("level", "high"), nv("confidence", 0.9)),
		o(catalog.GetVehicleSpeed, nv("value", 85)),
	}},
	{SystemIntrusion, "System Intrusion", []Override{
		o(catalog.GetVehicleSystemIntrusionStatus, bv("value", true), sv("level", "critical"), nv("confidence", 0.95)),
	}},
	{LowVisibility, "Low Visibility", []Override{
		o(catalog.GetDrivingEnvironment, sv("weather", "fog"), sv("road_condition", "wet"), sv("visibility_level", "poor")),
	}},
	{LowFriction, "Low Friction", []Override{
		o(catalog.GetRoadSurfaceFriction, nv("value", 0.2), sv("level", "low")),
		o(catalog.GetDrivingEnvironment, sv("weather", "snow"), sv("road_condition", "icy"), sv("visibility_level", "moderate")),
	}},
	{EmergencyVehicle, "Emergency Vehicle", []Override{
		o(catalog.GetV2XEmergencyVehicleProximity, bv("value", true), nv("distance", 120), sv("direction", "rear"), nv("confidence", 0.9)),
	}},
}

// Builtin returns copies of the built-in presets in declaration order.
func Builtin() []Preset {
	out := make([]Preset, 0, len(builtin))
	for _, p := range builtin {
		out = append(out, p.clone())
	}
	return out
}

// Lookup finds a built-in preset by (normalized) id.
func Lookup(id string) (Preset, bool) {
	return defaultSet.Lookup(id)
}

func (p Preset) clone() Preset {
	out := Preset{ID: p.ID, Label: p.Label, Overrides: make([]Override, 0, len(p.Overrides))}
	for _, ov := range p.Overrides {
		out.Overrides = append(out.Overrides, Override{Tool: ov.Tool, Payload: ov.Payload.Clone()})
	}
	return out
}

// Set is an ordered, id-indexed collection of presets. The zero value is
// empty and ready to use.
type Set struct {
	order []ID
	byID  map[ID]Preset
}

var defaultSet = NewSet(builtin...)

// NewSet builds a set from presets. Later presets replace earlier ones with
// the same id but keep the earlier position.
func NewSet(presets ...Preset) *Set {
	s := &Set{}
	s.Add(presets...)
	return s
}

// Default returns a fresh set holding the built-in presets.
func Default() *Set {
	return NewSet(Builtin()...)
}

// Add inserts or replaces presets.
func (s *Set) Add(presets ...Preset) {
	if s.byID == nil {
		s.byID = make(map[ID]Preset)
	}
	for _, p := range presets {
		p.ID = Normalize(string(p.ID))
		if _, ok := s.byID[p.ID]; !ok {
			s.order = append(s.order, p.ID)
		}
		s.byID[p.ID] = p.clone()
	}
}

// Lookup finds a preset by id after normalization.
func (s *Set) Lookup(id string) (Preset, bool) {
	p, ok := s.byID[Normalize(id)]
	if !ok {
		return Preset{}, false
	}
	return p.clone(), true
}

// IDs returns preset ids in insertion order.
func (s *Set) IDs() []ID {
	return append([]ID(nil), s.order...)
}

// List returns the presets in insertion order.
func (s *Set) List() []Preset {
	out := make([]Preset, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.byID[id].clone())
	}
	return out
}
