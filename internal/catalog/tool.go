// Package catalog is the static registry of every sensor ("context") and
// actuator ("action") tool: its external name, kind and default payload.
//
// The catalog is built once at package load from a table literal and is
// never mutated afterwards. Lookups are total over all declared ids.
package catalog

import "fmt"

// Kind distinguishes sensor inputs from actuator outputs.
type Kind int

const (
	// Context tools are read-only inputs supplied from outside.
	Context Kind = iota + 1
	// Action tools are outputs set by the rule engine or manual overrides.
	Action
)

func (k Kind) String() string {
	switch k {
	case Context:
		return "CONTEXT"
	case Action:
		return "ACTION"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// ParseKind accepts "context"/"action" in any case.
func ParseKind(s string) (Kind, bool) {
	switch s {
	case "context", "CONTEXT", "Context":
		return Context, true
	case "action", "ACTION", "Action":
		return Action, true
	}
	return 0, false
}

// ToolID identifies one tool. The zero value is not a valid tool.
type ToolID int

// Context tools.
const (
	GetDriverDrowsinessStatus ToolID = iota + 1
	GetSteeringGripStatus
	GetDriverVitalSigns
	GetDriverGazeDirection
	GetDriverStressIndex
	GetVehicleSpeed
	GetLKAStatus
	GetDrivingDurationStatus
	GetRecentWarningHistory
	GetSensorHealthStatus
	GetLaneDepartureStatus
	GetForwardCollisionRisk
	GetDrivingEnvironment
	GetRoadSurfaceFriction
	GetBlindSpotCollisionRisk
	GetExternalEnvironmentalHazards
	GetV2XTrafficInfo
	GetV2XEmergencyVehicleProximity
	GetRearOccupantStatus
	GetPassengerSeatOccupancy
	GetCabinAirQuality
	GetCabinCO2Concentration
	GetEVBatteryThermalStatus
	GetTrailerSwayStatus
	GetVehicleSystemIntrusionStatus

	// Action tools.
	TriggerSteeringVibration
	TriggerDrowsinessAlertSound
	TriggerClusterVisualWarning
	TriggerHUDWarning
	TriggerVoicePrompt
	UpdateAmbientMoodLighting
	ReleaseRefreshingScent
	EscalateWarningLevel
	RequestSafeMode
	LogSafetyEvent
	TriggerNavigationNotification
	TriggerRestRecommendation
	PreTensionSafetyBelts
	ActivateHazardWarningSignals
	ExecuteEmergencyStopPullOver
	AdjustSeatBolsterFirmness
	ControlWindowAndSunroof
	TriggerEmergencyCall
	TriggerGroundProjectionWarning
	EmitExternalPedestrianAlert
	DeployActivePedestrianProtection
	ActivateCabinPurification
	SwitchCabinAirCirculation
	ActivateWellnessMassage
	SetValetModeLimitations

	endOfTools
)

// Name returns the tool's external name used for lookup and serialization,
// e.g. "get_vehicle_speed". Unknown ids render as "tool(N)".
func (id ToolID) Name() string {
	if e, ok := entryFor(id); ok {
		return e.name
	}
	return fmt.Sprintf("tool(%d)", int(id))
}

func (id ToolID) String() string {
	return id.Name()
}

// Valid reports whether id is a declared tool.
func (id ToolID) Valid() bool {
	return id > 0 && id < endOfTools
}

// Kind returns the tool's kind, or 0 for an undeclared id.
func (id ToolID) Kind() Kind {
	return KindOf(id)
}

// MarshalText renders the external name so ToolIDs serialize as strings
// and work as JSON map keys.
func (id ToolID) MarshalText() ([]byte, error) {
	if !id.Valid() {
		return nil, fmt.Errorf("invalid tool id %d", int(id))
	}
	return []byte(id.Name()), nil
}

// UnmarshalText resolves an external name.
func (id *ToolID) UnmarshalText(text []byte) error {
	resolved, ok := Resolve(string(text))
	if !ok {
		return fmt.Errorf("unknown tool %q", string(text))
	}
	*id = resolved
	return nil
}
