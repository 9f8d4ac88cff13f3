package robotio

import (
	"testing"
	"time"

	"go.einride.tech/can"
	"go.viam.com/test"

	control "spike-control-core/closed_loop/robot_control"
	"spike-control-core/utils"
)

func newTestBridge(t *testing.T) (*Bridge, *utils.CANMap) {
	t.Helper()
	cmap, err := utils.LoadCANMap("../../config/can/can_map.csv")
	test.That(t, err, test.ShouldBeNil)
	b, err := NewBridge(cmap, 20)
	test.That(t, err, test.ShouldBeNil)
	return b, cmap
}

func TestBridgeDecodesSensorFrame(t *testing.T) {
	b, cmap := newTestBridge(t)
	f, err := cmap.EncodeEinrideFrame(FrameSensor, map[string]float64{
		"shooter_raw_count":  -4410,
		"angle_raw_count":    574,
		"angle_limit_upper":  1,
		"trigger_limit":      1,
		"claw_limit_2":       1,
		"auto_select_switch": 1,
	})
	test.That(t, err, test.ShouldBeNil)

	name, values, err := b.Decode(f)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, name, test.ShouldEqual, FrameSensor)

	snap := SensorSnapshot(values, 1.5)
	test.That(t, snap.Now, test.ShouldEqual, 1.5)
	test.That(t, snap.ShooterRaw, test.ShouldEqual, int64(-4410))
	test.That(t, snap.AngleRaw, test.ShouldEqual, int64(574))
	test.That(t, snap.Limits, test.ShouldResemble, control.LimitSwitches{AngleUpper: true, Claw2: true, Trigger: true})
	test.That(t, snap.SideShotPreset, test.ShouldBeTrue)
}

func TestBridgeDecodesOperatorFrame(t *testing.T) {
	b, cmap := newTestBridge(t)
	f, err := cmap.EncodeEinrideFrame(FrameOperator, map[string]float64{
		"drive_left":         0.25,
		"drive_right":        -0.5,
		"fire_request":       1,
		"robot_mode":         2,
		"angle_target_valid": 1,
		"angle_target":       8.214,
	})
	test.That(t, err, test.ShouldBeNil)

	_, values, err := b.Decode(f)
	test.That(t, err, test.ShouldBeNil)
	in := OperatorInput(values)
	test.That(t, in.Mode, test.ShouldEqual, control.ModeTeleop)
	test.That(t, in.Drive.Left, test.ShouldAlmostEqual, 0.25, 1e-3)
	test.That(t, in.Drive.Right, test.ShouldAlmostEqual, -0.5, 1e-3)
	test.That(t, in.Fire, test.ShouldBeTrue)
	test.That(t, in.BeginClimb, test.ShouldBeFalse)
	test.That(t, in.HasTarget, test.ShouldBeTrue)
	test.That(t, in.AngleTarget, test.ShouldAlmostEqual, 8.214, 1e-3)

	// a target without the valid bit is ignored
	values["angle_target_valid"] = 0
	values["robot_mode"] = 3
	in = OperatorInput(values)
	test.That(t, in.HasTarget, test.ShouldBeFalse)
	test.That(t, in.AngleTarget, test.ShouldEqual, 0.0)
	test.That(t, in.Mode, test.ShouldEqual, control.ModeDisabled)
}

func TestBridgeRejectsOutputFrames(t *testing.T) {
	b, _ := newTestBridge(t)
	_, _, err := b.Decode(can.Frame{ID: 0x200, Length: 8})
	test.That(t, err, test.ShouldNotBeNil)
}

func TestBridgeEncodesOutputs(t *testing.T) {
	b, cmap := newTestBridge(t)
	out := control.Outputs{
		Drive:            control.DriveCommand{Left: 0.54, Right: -0.5},
		ShooterPrimary:   0.91,
		ShooterSecondary: -0.9,
		AngleLeadScrew:   -0.224,
		Winch:            0.48,
		TriggerRelay:     control.RelayForward,
		Owner:            control.OwnerAutonomous,
	}
	tel := control.Telemetry{
		ShooterRPM:   2551,
		RPMLocked:    true,
		Timer:        8.25,
		Climbing:     true,
		ClimbPhaseID: control.ClimbRecovering,
		AutoPhaseID:  control.AutoAdvanceShort,
		HomingState:  control.HomingDone,
		OwnerID:      control.OwnerAutonomous,
		Limits:       control.LimitSwitches{Trigger: true},
	}

	// 100 ms telemetry at a 20 ms tick goes out every fifth tick
	frames, err := b.Encode(3, out, tel)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, len(frames), test.ShouldEqual, 3)

	frames, err = b.Encode(5, out, tel)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, len(frames), test.ShouldEqual, 5)

	decoded := map[string]map[string]float64{}
	for _, f := range frames {
		name, values, err := cmap.DecodeEinrideFrame(f)
		test.That(t, err, test.ShouldBeNil)
		decoded[name] = values
	}
	test.That(t, decoded[FrameDrive]["left_rear"], test.ShouldAlmostEqual, 0.54, 1e-4)
	test.That(t, decoded[FrameDrive]["right_front"], test.ShouldAlmostEqual, -0.5, 1e-4)
	test.That(t, decoded[FrameMech]["angle_leadscrew"], test.ShouldAlmostEqual, -0.224, 1e-4)
	test.That(t, decoded[FrameTrigger]["trigger_relay"], test.ShouldEqual, 1.0)
	test.That(t, decoded[FrameTelemetry1]["shooter_rpm"], test.ShouldEqual, 2551.0)
	test.That(t, decoded[FrameTelemetry1]["climb_phase"], test.ShouldEqual, 3.0)
	test.That(t, decoded[FrameTelemetry1]["auto_phase"], test.ShouldEqual, 1.0)
	test.That(t, decoded[FrameTelemetry1]["homing_state"], test.ShouldEqual, 1.0)
	test.That(t, decoded[FrameTelemetry1]["drive_owner"], test.ShouldEqual, 2.0)
	test.That(t, decoded[FrameTelemetry2]["match_timer_s"], test.ShouldAlmostEqual, 8.25, 1e-2)
	test.That(t, decoded[FrameTelemetry2]["trigger_limit"], test.ShouldEqual, 1.0)
}

func TestNewBridgeRequiresFrames(t *testing.T) {
	cmap, err := utils.LoadCANMap("../../config/can/can_map.csv")
	test.That(t, err, test.ShouldBeNil)
	delete(cmap.ByName, FrameTrigger)
	_, err = NewBridge(cmap, 20)
	test.That(t, err, test.ShouldNotBeNil)

	_, err = NewBridge(cmap, 0)
	test.That(t, err, test.ShouldNotBeNil)
}

func TestInputsAge(t *testing.T) {
	in := NewInputs()
	base := time.Unix(100, 0)
	_, _, ok := in.Latest(FrameSensor, base)
	test.That(t, ok, test.ShouldBeFalse)

	in.Store(FrameSensor, map[string]float64{"trigger_limit": 1}, base)
	values, age, ok := in.Latest(FrameSensor, base.Add(120*time.Millisecond))
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, age, test.ShouldEqual, 120*time.Millisecond)
	test.That(t, values["trigger_limit"], test.ShouldEqual, 1.0)
}
