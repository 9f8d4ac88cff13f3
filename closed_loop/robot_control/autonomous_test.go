package control

import (
	"testing"

	"go.viam.com/test"
)

func newTestAuto() *AutonomousSequencer {
	cfg := DefaultConfig()
	return NewAutonomousSequencer(cfg.Autonomous, NewAngleController(cfg.Angle))
}

func TestAutonomousPhases(t *testing.T) {
	a := newTestAuto()
	for _, tc := range []struct {
		t    float64
		want AutoPhase
	}{
		{0, AutoAim},
		{3, AutoAim},
		{7.99, AutoAim},
		{8.0, AutoAdvanceShort},
		{8.2, AutoAdvanceShort},
		{8.5, AutoRotate},
		{9.0, AutoRotate},
		{10.5, AutoHold},
		{12, AutoHold},
		{15, AutoHold},
	} {
		test.That(t, a.PhaseAt(tc.t), test.ShouldEqual, tc.want)
	}
}

func TestAutonomousAimSelectsPreset(t *testing.T) {
	a := newTestAuto()
	a.Reset(100)

	// center preset 7.35 from distance 0 means travel toward the lower limit
	cmd := a.Tick(SensorSnapshot{Now: 103}, 0, false)
	test.That(t, cmd.Phase, test.ShouldEqual, AutoAim)
	test.That(t, cmd.Drive, test.ShouldResemble, Stopped)
	test.That(t, cmd.Angle.LeadScrew, test.ShouldAlmostEqual, 0.56)
	test.That(t, cmd.Fire, test.ShouldBeFalse)

	// at the center preset, the side preset still needs travel
	cmd = a.Tick(SensorSnapshot{Now: 103.02}, 7.35, true)
	test.That(t, cmd.Angle, test.ShouldResemble, AngleCommand{})
	test.That(t, cmd.Fire, test.ShouldBeTrue)

	cmd = a.Tick(SensorSnapshot{Now: 103.04, SideShotPreset: true}, 7.35, true)
	test.That(t, cmd.Angle.LeadScrew, test.ShouldAlmostEqual, 0.56)

	test.That(t, a.Preset(true), test.ShouldEqual, 8.214)
	test.That(t, a.Preset(false), test.ShouldEqual, 7.35)
}

func TestAutonomousDriveBranches(t *testing.T) {
	a := newTestAuto()
	a.Reset(0)

	cmd := a.Tick(SensorSnapshot{Now: 8.2}, 7.35, true)
	test.That(t, cmd.Phase, test.ShouldEqual, AutoAdvanceShort)
	test.That(t, cmd.Drive, test.ShouldResemble, DriveCommand{Left: 0.54, Right: 0.54})
	test.That(t, cmd.Fire, test.ShouldBeFalse)
	test.That(t, cmd.Angle, test.ShouldResemble, AngleCommand{})

	cmd = a.Tick(SensorSnapshot{Now: 9.0}, 0, true)
	test.That(t, cmd.Phase, test.ShouldEqual, AutoRotate)
	test.That(t, cmd.Drive, test.ShouldResemble, DriveCommand{Left: 0.5, Right: -0.5})

	cmd = a.Tick(SensorSnapshot{Now: 12}, 0, true)
	test.That(t, cmd.Phase, test.ShouldEqual, AutoHold)
	test.That(t, cmd.Drive, test.ShouldResemble, Stopped)
}

func TestAutonomousWrapsBeforeBranching(t *testing.T) {
	a := newTestAuto()
	a.Reset(0)

	cmd := a.Tick(SensorSnapshot{Now: 15.0}, 0, false)
	test.That(t, cmd.Phase, test.ShouldEqual, AutoHold)

	cmd = a.Tick(SensorSnapshot{Now: 16.0}, 0, false)
	test.That(t, cmd.Phase, test.ShouldEqual, AutoAim)
	test.That(t, cmd.T, test.ShouldEqual, 0.0)

	cmd = a.Tick(SensorSnapshot{Now: 24.1}, 0, false)
	test.That(t, cmd.T, test.ShouldAlmostEqual, 8.1)
	test.That(t, cmd.Phase, test.ShouldEqual, AutoAdvanceShort)
}

func TestAutonomousStartsTimerOnFirstTick(t *testing.T) {
	a := newTestAuto()
	test.That(t, a.Elapsed(50), test.ShouldEqual, 0.0)

	cmd := a.Tick(SensorSnapshot{Now: 50}, 0, false)
	test.That(t, cmd.T, test.ShouldEqual, 0.0)
	test.That(t, cmd.Phase, test.ShouldEqual, AutoAim)
}
