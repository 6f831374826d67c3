// Package harness runs conformance scripts against the decision core.
//
// A script is a YAML file naming a sequence of edits and an expectation on
// the resulting state:
//
//	name: night-fog
//	description: "Fog with poor visibility raises a mid severity warning"
//	steps:
//	  - scenario: low-visibility
//	  - context:
//	      tool: get_vehicle_speed
//	      payload: {value: 40}
//	  - action:
//	      tool: trigger_hud_warning
//	      payload: {message: "check", level: info}
//	  - debug: true
//	  - processor: NPU
//	  - infer: true
//	expect:
//	  severity: 2
//	  summary_prefix: "Triggered: "
//	  actions:
//	    escalate_warning_level: {level: high}
//	  absent:
//	    - execute_emergency_stop_pull_over
//	  context:
//	    get_driving_environment: {weather: fog}
//
// # Steps
//
// Each step sets exactly one of:
//
//   - scenario: apply a preset by id, then run inference
//   - context: merge a payload into a CONTEXT tool
//   - action: merge a payload into an ACTION tool
//   - infer: run inference on the current state
//   - debug: set the debug flag
//   - processor: select CPU, GPU or NPU
//
// # Expectations
//
// severity, summary and summary_prefix check the last inference. actions
// and context are subset matches on tool payloads: only the listed fields
// are compared. absent lists tools that must not appear among the last
// inference's action tools.
//
// # Determinism
//
// Every script runs on a fresh store with a stepping wall clock starting
// at testutil.Epoch, so repeated runs produce identical state and golden
// snapshots.
package harness
