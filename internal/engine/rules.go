package engine

import (
	"github.com/mackim-3768/Aegis-AI-DAS/internal/catalog"
	"github.com/mackim-3768/Aegis-AI-DAS/internal/payload"
	"github.com/mackim-3768/Aegis-AI-DAS/internal/state"
)

// Rule is one entry of the rule table.
type Rule struct {
	// Name is a stable identifier, e.g. "fatigue".
	Name string
	// Event is appended to the summary when the rule fires.
	Event string
	// Reads lists the context tools the rule inspects.
	Reads []catalog.ToolID

	eval func(contextView) (severity int, calls []ActionCall)
}

// Rules returns the built-in rule table in evaluation order.
func Rules() []Rule {
	return append([]Rule(nil), builtinRules...)
}

// contextView reads context fields with fallbacks.
type contextView struct {
	tools map[catalog.ToolID]state.ToolState
}

func (v contextView) boolean(id catalog.ToolID, key string, def bool) bool {
	return v.tools[id].Payload.GetBool(key, def)
}

func (v contextView) text(id catalog.ToolID, key, def string) string {
	return v.tools[id].Payload.GetString(key, def)
}

func (v contextView) number(id catalog.ToolID, key string, def float64) float64 {
	return v.tools[id].Payload.GetNumber(key, def)
}

func call(id catalog.ToolID, pairs ...payload.Pair) ActionCall {
	return ActionCall{Tool: id, Payload: payload.Of(pairs...)}
}

func str(key, v string) payload.Pair { return payload.F(key, payload.String(v)) }

func flag(key string, v bool) payload.Pair { return payload.F(key, payload.Bool(v)) }

func num(key string, v float64) payload.Pair { return payload.F(key, payload.Number(v)) }

// pick returns hi when cond holds, else lo.
func pick[T any](cond bool, hi, lo T) T {
	if cond {
		return hi
	}
	return lo
}

var builtinRules = []Rule{
	{
		Name:  "fatigue",
		Event: "Driver fatigue detected",
		Reads: []catalog.ToolID{
			catalog.GetDriverDrowsinessStatus,
			catalog.GetDrivingDurationStatus,
			catalog.GetDriverGazeDirection,
			catalog.GetCabinCO2Concentration,
		},
		eval: fatigue,
	},
	{
		Name:  "forward_collision",
		Event: "Forward collision risk",
		Reads: []catalog.ToolID{catalog.GetForwardCollisionRisk},
		eval:  forwardCollision,
	},
	{
		Name:  "system_intrusion",
		Event: "System intrusion",
		Reads: []catalog.ToolID{catalog.GetVehicleSystemIntrusionStatus},
		eval:  systemIntrusion,
	},
	{
		Name:  "low_visibility",
		Event: "Low visibility",
		Reads: []catalog.ToolID{catalog.GetDrivingEnvironment},
		eval:  lowVisibility,
	},
	{
		Name:  "low_friction",
		Event: "Low friction",
		Reads: []catalog.ToolID{catalog.GetRoadSurfaceFriction},
		eval:  lowFriction,
	},
	{
		Name:  "emergency_vehicle",
		Event: "Emergency vehicle nearby",
		Reads: []catalog.ToolID{catalog.GetV2XEmergencyVehicleProximity},
		eval:  emergencyVehicle,
	},
}

func fatigue(v contextView) (int, []ActionCall) {
	drowsy := v.boolean(catalog.GetDriverDrowsinessStatus, "value", false)
	duration := v.text(catalog.GetDrivingDurationStatus, "level", "low")
	gaze := v.text(catalog.GetDriverGazeDirection, "direction", "forward")
	co2 := v.text(catalog.GetCabinCO2Concentration, "level", "normal")

	if !drowsy && !(duration == "high" && gaze == "down") {
		return SeverityNone, nil
	}

	sev := pick(drowsy && (duration == "high" || co2 == "high"), SeverityHigh, SeverityMid)
	high := sev >= SeverityHigh
	return sev, []ActionCall{
		call(catalog.TriggerDrowsinessAlertSound, flag("enabled", true), str("level", "high")),
		call(catalog.TriggerVoicePrompt,
			str("message", "졸음이 감지되었습니다. 가까운 휴게소에서 휴식을 권장합니다."),
			str("level", pick(high, "danger", "warning"))),
		call(catalog.TriggerRestRecommendation, str("reason", "fatigue"), str("level", pick(high, "high", "mid"))),
		call(catalog.ReleaseRefreshingScent, flag("enabled", true), num("duration_ms", 120000)),
		call(catalog.UpdateAmbientMoodLighting, str("level", pick(high, "danger", "warning")), flag("pulse", true)),
	}
}

func forwardCollision(v contextView) (int, []ActionCall) {
	level := v.text(catalog.GetForwardCollisionRisk, "level", "low")
	if level != "mid" && level != "high" {
		return SeverityNone, nil
	}

	sev := pick(level == "high", SeverityHigh, SeverityMid)
	calls := []ActionCall{
		call(catalog.TriggerHUDWarning, str("message", "전방 충돌 위험"), str("level", "danger")),
		call(catalog.TriggerClusterVisualWarning, str("message", "BRAKE NOW"), str("level", "danger")),
		call(catalog.PreTensionSafetyBelts, flag("enabled", true), str("level", "high")),
		call(catalog.ActivateHazardWarningSignals, flag("enabled", true), num("duration_ms", 5000)),
	}
	if sev >= SeverityHigh {
		calls = append(calls, call(catalog.ExecuteEmergencyStopPullOver,
			flag("enabled", true), str("reason", "forward_collision")))
	}
	return sev, calls
}

func systemIntrusion(v contextView) (int, []ActionCall) {
	level := v.text(catalog.GetVehicleSystemIntrusionStatus, "level", "low")
	if level != "high" && level != "critical" {
		return SeverityNone, nil
	}

	return pick(level == "critical", SeverityHigh, SeverityMid), []ActionCall{
		call(catalog.RequestSafeMode, flag("enabled", true), str("reason", "system_intrusion")),
		call(catalog.TriggerNavigationNotification, str("message", "시스템 위협 감지. 안전 모드 전환"), str("level", "danger")),
	}
}

func lowVisibility(v contextView) (int, []ActionCall) {
	weather := v.text(catalog.GetDrivingEnvironment, "weather", "clear")
	visibility := v.text(catalog.GetDrivingEnvironment, "visibility_level", "good")
	road := v.text(catalog.GetDrivingEnvironment, "road_condition", "dry")

	badWeather := weather == "rain" || weather == "fog" || weather == "snow"
	if !badWeather && visibility != "moderate" && visibility != "poor" {
		return SeverityNone, nil
	}

	sev := pick(visibility == "poor" || (weather == "snow" && road == "icy"), SeverityMid, SeverityLow)
	return sev, []ActionCall{
		call(catalog.TriggerNavigationNotification, str("message", "가시거리 저하. 속도를 줄이세요"), str("level", "warning")),
		call(catalog.TriggerVoicePrompt, str("message", "가시거리가 낮습니다. 안전 운전 모드로 전환합니다."), str("level", "warning")),
		call(catalog.UpdateAmbientMoodLighting, str("level", "warning"), flag("pulse", false)),
		call(catalog.ControlWindowAndSunroof, str("target", "all"), str("action", "close")),
	}
}

func lowFriction(v contextView) (int, []ActionCall) {
	level := v.text(catalog.GetRoadSurfaceFriction, "level", "high")
	if level != "low" && level != "mid" {
		return SeverityNone, nil
	}

	return pick(level == "low", SeverityMid, SeverityLow), []ActionCall{
		call(catalog.TriggerClusterVisualWarning, str("message", "미끄러운 노면"), str("level", "warning")),
		call(catalog.TriggerHUDWarning, str("message", "LOW TRACTION"), str("level", "warning")),
		call(catalog.ActivateHazardWarningSignals, flag("enabled", true), num("duration_ms", 4000)),
		call(catalog.AdjustSeatBolsterFirmness, str("level", "mid")),
	}
}

func emergencyVehicle(v contextView) (int, []ActionCall) {
	if !v.boolean(catalog.GetV2XEmergencyVehicleProximity, "value", false) {
		return SeverityNone, nil
	}
	distance := v.number(catalog.GetV2XEmergencyVehicleProximity, "distance", 0)
	direction := v.text(catalog.GetV2XEmergencyVehicleProximity, "direction", "unknown")

	return pick(distance <= 200 || direction != "unknown", SeverityMid, SeverityLow), []ActionCall{
		call(catalog.TriggerNavigationNotification, str("message", "긴급 차량 접근. 양보하세요"), str("level", "warning")),
		call(catalog.TriggerVoicePrompt, str("message", "긴급 차량이 접근 중입니다."), str("level", "warning")),
		call(catalog.UpdateAmbientMoodLighting, str("level", "warning"), flag("pulse", true)),
	}
}
