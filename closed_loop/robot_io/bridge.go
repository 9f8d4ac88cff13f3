package robotio

import (
	"fmt"
	"math"

	"go.einride.tech/can"

	control "spike-control-core/closed_loop/robot_control"
	"spike-control-core/utils"
)

const (
	FrameSensor     = "SENSOR_STATE_1"
	FrameOperator   = "OPERATOR_CMD_1"
	FrameDrive      = "DRIVE_CMD_1"
	FrameMech       = "MECH_CMD_1"
	FrameTrigger    = "MECH_CMD_2"
	FrameTelemetry1 = "TELEMETRY_1"
	FrameTelemetry2 = "TELEMETRY_2"
)

var limitSignals = []string{
	"angle_limit_upper", "angle_limit_lower", "claw_limit_1", "claw_limit_2",
	"trigger_limit", "front_limit", "auto_select_switch",
}

// Bridge translates between CAN frames and the control core's types.
type Bridge struct {
	cmap           *utils.CANMap
	sensorID       uint32
	operatorID     uint32
	telemetryEvery uint64
}

// NewBridge checks that the map carries every frame and signal the robot
// uses. Telemetry frames go out at their own cycle, rounded to whole ticks
// of cycleMS.
func NewBridge(cmap *utils.CANMap, cycleMS int) (*Bridge, error) {
	if cycleMS <= 0 {
		return nil, fmt.Errorf("invalid cycle_ms %d", cycleMS)
	}
	sensor, err := cmap.Require(utils.DirRX, FrameSensor,
		append([]string{"shooter_raw_count", "angle_raw_count"}, limitSignals...)...)
	if err != nil {
		return nil, err
	}
	operator, err := cmap.Require(utils.DirRX, FrameOperator,
		"drive_left", "drive_right", "fire_request", "climb_begin", "auto_aim_done",
		"robot_mode", "angle_target_valid", "angle_target")
	if err != nil {
		return nil, err
	}
	required := []struct {
		frame   string
		signals []string
	}{
		{FrameDrive, []string{"left_front", "left_rear", "right_front", "right_rear"}},
		{FrameMech, []string{"shooter_primary", "shooter_secondary", "angle_leadscrew", "winch"}},
		{FrameTrigger, []string{"trigger_relay"}},
		{FrameTelemetry1, []string{"shooter_rpm", "shooter_pwm", "angle_distance", "rpm_locked",
			"climb_phase", "auto_phase", "homing_state", "drive_owner"}},
		{FrameTelemetry2, append([]string{"match_timer_s"}, limitSignals...)},
	}
	var telemetryMS int
	for _, req := range required {
		fd, err := cmap.Require(utils.DirTX, req.frame, req.signals...)
		if err != nil {
			return nil, err
		}
		if req.frame == FrameTelemetry1 {
			telemetryMS = fd.CycleMS
		}
	}

	every := uint64(1)
	if telemetryMS > cycleMS {
		every = uint64(telemetryMS / cycleMS)
	}
	return &Bridge{
		cmap:           cmap,
		sensorID:       sensor.ID,
		operatorID:     operator.ID,
		telemetryEvery: every,
	}, nil
}

// Decode names a received frame and returns its signal values.
func (b *Bridge) Decode(f can.Frame) (string, map[string]float64, error) {
	if f.ID != b.sensorID && f.ID != b.operatorID {
		return "", nil, fmt.Errorf("frame 0x%X is not a robot input", f.ID)
	}
	return b.cmap.DecodeEinrideFrame(f)
}

func bit(values map[string]float64, name string) bool {
	return values[name] >= 0.5
}

// SensorSnapshot builds the per-tick sensor view from SENSOR_STATE_1 values.
func SensorSnapshot(values map[string]float64, now float64) control.SensorSnapshot {
	return control.SensorSnapshot{
		Now:        now,
		ShooterRaw: int64(math.Round(values["shooter_raw_count"])),
		AngleRaw:   int64(math.Round(values["angle_raw_count"])),
		Limits: control.LimitSwitches{
			AngleUpper: bit(values, "angle_limit_upper"),
			AngleLower: bit(values, "angle_limit_lower"),
			Claw1:      bit(values, "claw_limit_1"),
			Claw2:      bit(values, "claw_limit_2"),
			Trigger:    bit(values, "trigger_limit"),
			Front:      bit(values, "front_limit"),
		},
		SideShotPreset: bit(values, "auto_select_switch"),
	}
}

// OperatorInput decodes OPERATOR_CMD_1 values. Unknown mode codes disable
// the robot.
func OperatorInput(values map[string]float64) control.OperatorInput {
	in := control.OperatorInput{
		Drive:       control.Tank(values["drive_left"], values["drive_right"]),
		Fire:        bit(values, "fire_request"),
		BeginClimb:  bit(values, "climb_begin"),
		AutoAimDone: bit(values, "auto_aim_done"),
		HasTarget:   bit(values, "angle_target_valid"),
	}
	switch int(math.Round(values["robot_mode"])) {
	case 1:
		in.Mode = control.ModeAutonomous
	case 2:
		in.Mode = control.ModeTeleop
	default:
		in.Mode = control.ModeDisabled
	}
	if in.HasTarget {
		in.AngleTarget = values["angle_target"]
	}
	return in
}

// Encode returns the actuator frames for one tick, followed by the
// telemetry frames on ticks that fall on the telemetry cycle.
func (b *Bridge) Encode(tick uint64, out control.Outputs, tel control.Telemetry) ([]can.Frame, error) {
	type frameValues struct {
		name   string
		values map[string]float64
	}
	batch := []frameValues{
		{FrameDrive, map[string]float64{
			"left_front":  out.Drive.Left,
			"left_rear":   out.Drive.Left,
			"right_front": out.Drive.Right,
			"right_rear":  out.Drive.Right,
		}},
		{FrameMech, map[string]float64{
			"shooter_primary":   out.ShooterPrimary,
			"shooter_secondary": out.ShooterSecondary,
			"angle_leadscrew":   out.AngleLeadScrew,
			"winch":             out.Winch,
		}},
		{FrameTrigger, map[string]float64{
			"trigger_relay": float64(out.TriggerRelay),
		}},
	}
	if tick%b.telemetryEvery == 0 {
		climbPhase := 0.0
		if tel.Climbing {
			climbPhase = float64(tel.ClimbPhaseID) + 1
		}
		batch = append(batch,
			frameValues{FrameTelemetry1, map[string]float64{
				"shooter_rpm":    tel.ShooterRPM,
				"shooter_pwm":    tel.ShooterPWM,
				"angle_distance": tel.AngleDistance,
				"rpm_locked":     control.BoolToFloat(tel.RPMLocked),
				"climb_phase":    climbPhase,
				"auto_phase":     float64(tel.AutoPhaseID),
				"homing_state":   float64(tel.HomingState),
				"drive_owner":    float64(tel.OwnerID),
			}},
			frameValues{FrameTelemetry2, map[string]float64{
				"match_timer_s":      tel.Timer,
				"angle_limit_upper":  control.BoolToFloat(tel.Limits.AngleUpper),
				"angle_limit_lower":  control.BoolToFloat(tel.Limits.AngleLower),
				"claw_limit_1":       control.BoolToFloat(tel.Limits.Claw1),
				"claw_limit_2":       control.BoolToFloat(tel.Limits.Claw2),
				"trigger_limit":      control.BoolToFloat(tel.Limits.Trigger),
				"front_limit":        control.BoolToFloat(tel.Limits.Front),
				"auto_select_switch": control.BoolToFloat(tel.AutoSelection),
			}},
		)
	}

	frames := make([]can.Frame, 0, len(batch))
	for _, fv := range batch {
		f, err := b.cmap.EncodeEinrideFrame(fv.name, fv.values)
		if err != nil {
			return nil, fmt.Errorf("encode %s: %w", fv.name, err)
		}
		frames = append(frames, f)
	}
	return frames, nil
}
