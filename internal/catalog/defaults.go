package catalog

import "github.com/mackim-3768/Aegis-AI-DAS/internal/payload"

// entry is one row of the catalog table.
type entry struct {
	id       ToolID
	kind     Kind
	name     string
	defaults payload.Map
}

// table lists every tool in declaration order. It is the single source of
// truth for names, kinds and allowed keys.
var table = []entry{
	{GetDriverDrowsinessStatus, Context, "get_driver_drowsiness_status",
		obj(b("value", false), n("confidence", 0.0))},
	{GetSteeringGripStatus, Context, "get_steering_grip_status",
		obj(b("value", true), n("confidence", 1.0))},
	{GetDriverVitalSigns, Context, "get_driver_vital_signs",
		obj(n("heart_rate", 72), n("body_temperature", 36.5), n("confidence", 1.0))},
	{GetDriverGazeDirection, Context, "get_driver_gaze_direction",
		obj(s("direction", "forward"), n("confidence", 1.0))},
	{GetDriverStressIndex, Context, "get_driver_stress_index",
		obj(n("value", 0.1), s("level", "low"))},
	{GetVehicleSpeed, Context, "get_vehicle_speed",
		obj(n("value", 0.0))},
	{GetLKAStatus, Context, "get_lka_status",
		obj(b("value", true))},
	{GetDrivingDurationStatus, Context, "get_driving_duration_status",
		obj(n("value", 0.0), s("level", "low"))},
	{GetRecentWarningHistory, Context, "get_recent_warning_history",
		obj(l("warnings"))},
	{GetSensorHealthStatus, Context, "get_sensor_health_status",
		obj(b("overall_ok", true), b("camera_ok", true), b("model_ok", true))},
	{GetLaneDepartureStatus, Context, "get_lane_departure_status",
		obj(b("value", false), n("confidence", 1.0))},
	{GetForwardCollisionRisk, Context, "get_forward_collision_risk",
		obj(n("score", 0.0), s("level", "low"), n("confidence", 1.0))},
	{GetDrivingEnvironment, Context, "get_driving_environment",
		obj(s("weather", "clear"), s("road_condition", "dry"), s("visibility_level", "good"))},
	{GetRoadSurfaceFriction, Context, "get_road_surface_friction",
		obj(n("value", 0.9), s("level", "high"))},
	{GetBlindSpotCollisionRisk, Context, "get_blind_spot_collision_risk",
		obj(b("value", false), s("level", "low"), n("confidence", 1.0))},
	{GetExternalEnvironmentalHazards, Context, "get_external_environmental_hazards",
		obj(l("hazards"), n("confidence", 1.0))},
	{GetV2XTrafficInfo, Context, "get_v2x_traffic_info",
		obj(s("signal_state", "unknown"), n("time_to_change", 0), s("incident_level", "none"))},
	{GetV2XEmergencyVehicleProximity, Context, "get_v2x_emergency_vehicle_proximity",
		obj(b("value", false), n("distance", 0.0), s("direction", "unknown"), n("confidence", 1.0))},
	{GetRearOccupantStatus, Context, "get_rear_occupant_status",
		obj(b("value", false), n("confidence", 1.0))},
	{GetPassengerSeatOccupancy, Context, "get_passenger_seat_occupancy",
		obj(l("seats",
			seat("driver", true, 70.0),
			seat("front_passenger", false, 0.0),
			seat("rear_left", false, 0.0),
			seat("rear_center", false, 0.0),
			seat("rear_right", false, 0.0),
		), n("confidence", 1.0))},
	{GetCabinAirQuality, Context, "get_cabin_air_quality",
		obj(n("value", 0.0), s("level", "good"))},
	{GetCabinCO2Concentration, Context, "get_cabin_co2_concentration",
		obj(n("value", 400.0), s("level", "normal"))},
	{GetEVBatteryThermalStatus, Context, "get_ev_battery_thermal_status",
		obj(n("temperature", 25.0), s("level", "normal"), b("cooling_active", false))},
	{GetTrailerSwayStatus, Context, "get_trailer_sway_status",
		obj(b("value", false), s("level", "low"), n("confidence", 1.0))},
	{GetVehicleSystemIntrusionStatus, Context, "get_vehicle_system_intrusion_status",
		obj(b("value", false), s("level", "low"), n("confidence", 1.0))},

	{TriggerSteeringVibration, Action, "trigger_steering_vibration",
		obj(s("level", "low"), n("duration_ms", 0))},
	{TriggerDrowsinessAlertSound, Action, "trigger_drowsiness_alert_sound",
		obj(b("enabled", false), s("level", "low"))},
	{TriggerClusterVisualWarning, Action, "trigger_cluster_visual_warning",
		obj(s("message", ""), s("level", "info"))},
	{TriggerHUDWarning, Action, "trigger_hud_warning",
		obj(s("message", ""), s("level", "info"))},
	{TriggerVoicePrompt, Action, "trigger_voice_prompt",
		obj(s("message", ""), s("level", "normal"))},
	{UpdateAmbientMoodLighting, Action, "update_ambient_mood_lighting",
		obj(s("level", "safe"), b("pulse", false))},
	{ReleaseRefreshingScent, Action, "release_refreshing_scent",
		obj(b("enabled", false), n("duration_ms", 0))},
	{EscalateWarningLevel, Action, "escalate_warning_level",
		obj(s("level", "low"))},
	{RequestSafeMode, Action, "request_safe_mode",
		obj(b("enabled", false), s("reason", ""))},
	{LogSafetyEvent, Action, "log_safety_event",
		obj(s("event_type", ""), s("message", ""), s("level", "info"))},
	{TriggerNavigationNotification, Action, "trigger_navigation_notification",
		obj(s("message", ""), s("level", "info"))},
	{TriggerRestRecommendation, Action, "trigger_rest_recommendation",
		obj(s("reason", ""), s("level", "low"))},
	{PreTensionSafetyBelts, Action, "pre_tension_safety_belts",
		obj(b("enabled", false), s("level", "low"))},
	{ActivateHazardWarningSignals, Action, "activate_hazard_warning_signals",
		obj(b("enabled", false), n("duration_ms", 0))},
	{ExecuteEmergencyStopPullOver, Action, "execute_emergency_stop_pull_over",
		obj(b("enabled", false), s("reason", ""))},
	{AdjustSeatBolsterFirmness, Action, "adjust_seat_bolster_firmness",
		obj(s("level", "low"))},
	{ControlWindowAndSunroof, Action, "control_window_and_sunroof",
		obj(s("target", "window"), s("action", "close"))},
	{TriggerEmergencyCall, Action, "trigger_emergency_call",
		obj(b("enabled", false), s("level", "high"))},
	{TriggerGroundProjectionWarning, Action, "trigger_ground_projection_warning",
		obj(s("message", ""), s("level", "warning"))},
	{EmitExternalPedestrianAlert, Action, "emit_external_pedestrian_alert",
		obj(b("enabled", false), s("level", "low"))},
	{DeployActivePedestrianProtection, Action, "deploy_active_pedestrian_protection",
		obj(b("enabled", false))},
	{ActivateCabinPurification, Action, "activate_cabin_purification",
		obj(b("enabled", false), s("level", "low"))},
	{SwitchCabinAirCirculation, Action, "switch_cabin_air_circulation",
		obj(s("mode", "fresh_air"))},
	{ActivateWellnessMassage, Action, "activate_wellness_massage",
		obj(b("enabled", false), n("duration_ms", 0))},
	{SetValetModeLimitations, Action, "set_valet_mode_limitations",
		obj(b("enabled", false), s("level", "low"))},
}

func obj(pairs ...payload.Pair) payload.Map { return payload.Of(pairs...) }

func b(key string, v bool) payload.Pair { return payload.F(key, payload.Bool(v)) }

func n(key string, v float64) payload.Pair { return payload.F(key, payload.Number(v)) }

func s(key, v string) payload.Pair { return payload.F(key, payload.String(v)) }

func l(key string, items ...payload.Value) payload.Pair {
	return payload.F(key, payload.List(append([]payload.Value{}, items...)))
}

func seat(name string, occupied bool, weight float64) payload.Map {
	return obj(s("seat", name), b("occupied", occupied), n("weight", weight))
}
