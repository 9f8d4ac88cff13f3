package control

import (
	"encoding/json"
	"fmt"
	"os"
)

// Scenario defines a complete match run
type Scenario struct {
	Meta     ScenarioMeta      `json:"meta"`
	Timing   ScenarioTiming    `json:"timing"`
	Tuning   *Config           `json:"tuning,omitempty"` // overlays DefaultConfig
	Segments []ScenarioSegment `json:"segments"`
}

// ScenarioMeta contains scenario metadata
type ScenarioMeta struct {
	Name           string `json:"name"`
	Version        int    `json:"version"`
	Description    string `json:"description"`
	Mode           string `json:"mode"`            // "disabled", "autonomous" or "teleop"
	OperatorSource string `json:"operator_source"` // "can" or "script"
	SideShotPreset bool   `json:"side_shot_preset,omitempty"`
}

// ScenarioTiming defines timing parameters
type ScenarioTiming struct {
	CycleMS   int     `json:"cycle_ms"`
	DurationS float64 `json:"duration_s"`
}

// ScenarioSegment is a scripted operator request over [T0, T1). T1 < 0 runs
// to the end of the scenario. The claw fields only drive the bench plant.
type ScenarioSegment struct {
	T0          float64  `json:"t0"`
	T1          float64  `json:"t1"`
	DriveLeft   float64  `json:"drive_left,omitempty"`
	DriveRight  float64  `json:"drive_right,omitempty"`
	Fire        bool     `json:"fire,omitempty"`
	BeginClimb  bool     `json:"begin_climb,omitempty"`
	AutoAimDone bool     `json:"auto_aim_done,omitempty"`
	AngleTarget *float64 `json:"angle_target,omitempty"`
	Claw1       bool     `json:"claw_1,omitempty"`
	Claw2       bool     `json:"claw_2,omitempty"`
	Comment     string   `json:"comment,omitempty"`
}

// ParseMode maps a scenario mode name to a Mode
func ParseMode(s string) (Mode, error) {
	switch s {
	case "", "disabled":
		return ModeDisabled, nil
	case "autonomous", "auto":
		return ModeAutonomous, nil
	case "teleop":
		return ModeTeleop, nil
	default:
		return ModeDisabled, fmt.Errorf("unknown mode %q", s)
	}
}

// LoadScenario loads a scenario from JSON file
func LoadScenario(path string) (Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Scenario{}, fmt.Errorf("read file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario decodes and validates a scenario document.
func ParseScenario(data []byte) (Scenario, error) {
	cfg := DefaultConfig()
	scen := Scenario{Tuning: &cfg}
	if err := json.Unmarshal(data, &scen); err != nil {
		return Scenario{}, fmt.Errorf("unmarshal: %w", err)
	}
	if scen.Tuning == nil {
		// explicit "tuning": null
		scen.Tuning = &cfg
	}

	// Validate
	if scen.Timing.DurationS <= 0 {
		return Scenario{}, fmt.Errorf("invalid duration_s: %f", scen.Timing.DurationS)
	}
	if scen.Timing.CycleMS == 0 {
		scen.Timing.CycleMS = 20
	}
	if scen.Timing.CycleMS < 0 {
		return Scenario{}, fmt.Errorf("invalid cycle_ms: %d", scen.Timing.CycleMS)
	}
	if _, err := ParseMode(scen.Meta.Mode); err != nil {
		return Scenario{}, err
	}
	switch scen.Meta.OperatorSource {
	case "":
		scen.Meta.OperatorSource = "script"
	case "can", "script":
	default:
		return Scenario{}, fmt.Errorf("unknown operator_source %q", scen.Meta.OperatorSource)
	}
	for i, seg := range scen.Segments {
		if seg.T1 >= 0 && seg.T1 < seg.T0 {
			return Scenario{}, fmt.Errorf("segment %d ends before it starts (%.2f < %.2f)", i, seg.T1, seg.T0)
		}
	}
	if err := scen.Tuning.Validate(); err != nil {
		return Scenario{}, fmt.Errorf("tuning: %w", err)
	}

	return scen, nil
}

// ActiveSegment returns the first segment covering t.
func (scen *Scenario) ActiveSegment(t float64) (ScenarioSegment, bool) {
	for _, seg := range scen.Segments {
		t1 := seg.T1
		if t1 < 0 {
			t1 = scen.Timing.DurationS
		}
		if t >= seg.T0 && t < t1 {
			return seg, true
		}
	}
	return ScenarioSegment{}, false
}

// EvalOperator evaluates the scripted operator at time t
func EvalOperator(scen *Scenario, t float64) OperatorInput {
	mode, _ := ParseMode(scen.Meta.Mode)
	in := OperatorInput{Mode: mode}

	seg, ok := scen.ActiveSegment(t)
	if !ok {
		return in
	}
	in.Drive = Tank(seg.DriveLeft, seg.DriveRight)
	in.Fire = seg.Fire
	in.BeginClimb = seg.BeginClimb
	in.AutoAimDone = seg.AutoAimDone
	if seg.AngleTarget != nil {
		in.AngleTarget = *seg.AngleTarget
		in.HasTarget = true
	}
	return in
}
