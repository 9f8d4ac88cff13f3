package control

import (
	"testing"

	"go.viam.com/test"
)

func newTestAngle() *AngleController {
	return NewAngleController(DefaultConfig().Angle)
}

func TestAngleDirection(t *testing.T) {
	a := newTestAngle()
	for _, tc := range []struct {
		distance, target float64
		want             AngleDirection
	}{
		{0.5, 0, AngleUp},
		{7.35, 7.35, AngleHold},
		{7.59, 7.35, AngleHold},
		{7.11, 7.35, AngleHold},
		{7.61, 7.35, AngleUp},
		{7.09, 7.35, AngleDown},
		{0, 8.214, AngleDown},
	} {
		test.That(t, a.Direction(tc.distance, tc.target), test.ShouldEqual, tc.want)
	}
}

func TestAngleSetAngleSpeeds(t *testing.T) {
	a := newTestAngle()
	free := LimitSwitches{}

	// close to the upper end the approach is tapered
	test.That(t, a.SetAngle(0, 0.5, free).LeadScrew, test.ShouldAlmostEqual, -0.56/2.5)
	test.That(t, a.SetAngle(5, 11.5, free).LeadScrew, test.ShouldAlmostEqual, -0.56)
	test.That(t, a.SetAngle(7.35, 3, free).LeadScrew, test.ShouldAlmostEqual, 0.56)
	test.That(t, a.SetAngle(12, 11.2, free).LeadScrew, test.ShouldAlmostEqual, 0.56/3)
	test.That(t, a.SetAngle(7.35, 7.4, free), test.ShouldResemble, AngleCommand{})
}

func TestAngleHardStops(t *testing.T) {
	a := newTestAngle()

	cmd := a.SetAngle(0, 3, LimitSwitches{AngleUpper: true})
	test.That(t, cmd, test.ShouldResemble, AngleCommand{})

	cmd = a.SetAngle(10, 3, LimitSwitches{AngleLower: true})
	test.That(t, cmd, test.ShouldResemble, AngleCommand{})

	// the opposite switch does not block
	cmd = a.SetAngle(0, 3, LimitSwitches{AngleLower: true})
	test.That(t, cmd.LeadScrew, test.ShouldAlmostEqual, -0.56)
}

func TestAngleSetAngleIsPure(t *testing.T) {
	a := newTestAngle()
	first := a.SetAngle(7.35, 2.0, LimitSwitches{})
	for i := 0; i < 50; i++ {
		test.That(t, a.SetAngle(7.35, 2.0, LimitSwitches{}), test.ShouldResemble, first)
	}
}

func TestAngleEncoderZero(t *testing.T) {
	enc := NewAngleEncoder(0.0128)
	enc.Update(1000)
	test.That(t, enc.Distance(), test.ShouldAlmostEqual, 12.8)

	enc.Zero()
	test.That(t, enc.Distance(), test.ShouldEqual, 0.0)

	enc.Update(1500)
	test.That(t, enc.Distance(), test.ShouldAlmostEqual, 6.4)
}

func TestHomingSeeksThenZeroes(t *testing.T) {
	enc := NewAngleEncoder(0.0128)
	h := NewHoming(DefaultConfig().Homing, enc)

	enc.Update(-400)
	cmd := h.Tick(SensorSnapshot{Now: 0})
	test.That(t, cmd.Angle.LeadScrew, test.ShouldAlmostEqual, -0.4)
	test.That(t, cmd.Angle.Winch, test.ShouldAlmostEqual, 0.48)
	test.That(t, cmd.Relay, test.ShouldEqual, RelayForward)
	test.That(t, h.State(), test.ShouldEqual, HomingSeeking)

	// trigger already home, lead screw still travelling
	cmd = h.Tick(SensorSnapshot{Now: 0.02, Limits: LimitSwitches{Trigger: true}})
	test.That(t, cmd.Relay, test.ShouldEqual, RelayOff)
	test.That(t, cmd.Angle.LeadScrew, test.ShouldAlmostEqual, -0.4)

	enc.Update(-900)
	cmd = h.Tick(SensorSnapshot{Now: 0.04, Limits: LimitSwitches{Trigger: true, AngleUpper: true}})
	test.That(t, cmd, test.ShouldResemble, HomingCommand{})
	test.That(t, h.State(), test.ShouldEqual, HomingDone)
	test.That(t, enc.Distance(), test.ShouldEqual, 0.0)
}

func TestHomingRunsOnlyOnce(t *testing.T) {
	enc := NewAngleEncoder(0.0128)
	h := NewHoming(DefaultConfig().Homing, enc)
	h.Tick(SensorSnapshot{Limits: LimitSwitches{Trigger: true, AngleUpper: true}})
	test.That(t, h.Finished(), test.ShouldBeTrue)

	enc.Update(300)
	cmd := h.Tick(SensorSnapshot{Now: 1})
	test.That(t, cmd, test.ShouldResemble, HomingCommand{})
	test.That(t, h.State(), test.ShouldEqual, HomingDone)
	test.That(t, enc.Distance(), test.ShouldAlmostEqual, 300*0.0128)
}

func TestHomingTimesOut(t *testing.T) {
	h := NewHoming(DefaultConfig().Homing, NewAngleEncoder(0.0128))

	now := 10.0
	for ; now < 14.9; now += 0.02 {
		h.Tick(SensorSnapshot{Now: now})
		test.That(t, h.State(), test.ShouldEqual, HomingSeeking)
	}
	cmd := h.Tick(SensorSnapshot{Now: 15.1})
	test.That(t, cmd, test.ShouldResemble, HomingCommand{})
	test.That(t, h.State(), test.ShouldEqual, HomingFaulted)

	// a late switch does not revive it
	h.Tick(SensorSnapshot{Now: 15.12, Limits: LimitSwitches{Trigger: true, AngleUpper: true}})
	test.That(t, h.State(), test.ShouldEqual, HomingFaulted)
}

func TestHomingPauseStopsTheClock(t *testing.T) {
	h := NewHoming(DefaultConfig().Homing, NewAngleEncoder(0.0128))

	h.Tick(SensorSnapshot{Now: 0})
	h.Tick(SensorSnapshot{Now: 4})
	test.That(t, h.Elapsed(), test.ShouldAlmostEqual, 4.0)

	h.Pause()
	cmd := h.Tick(SensorSnapshot{Now: 60})
	test.That(t, h.Elapsed(), test.ShouldAlmostEqual, 4.0)
	test.That(t, h.State(), test.ShouldEqual, HomingSeeking)
	test.That(t, cmd.Relay, test.ShouldEqual, RelayForward)

	h.Tick(SensorSnapshot{Now: 61})
	test.That(t, h.State(), test.ShouldEqual, HomingFaulted)
}
