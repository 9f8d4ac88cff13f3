package control

import (
	"testing"

	"go.viam.com/test"
)

var fullGrip = LimitSwitches{Claw1: true, Claw2: true}

func newTestClimb() *ClimbSequencer {
	cfg := DefaultConfig()
	return NewClimbSequencer(cfg.Climb, NewAngleController(cfg.Angle))
}

func TestClimbLoweringWaitsForLeadScrew(t *testing.T) {
	c := newTestClimb()

	cmd := c.Tick(3.0, fullGrip)
	test.That(t, c.Phase(), test.ShouldEqual, ClimbLowering)
	test.That(t, cmd.Angle.LeadScrew, test.ShouldAlmostEqual, -0.56)
	test.That(t, cmd.Angle.Winch, test.ShouldEqual, 0.0)
	test.That(t, cmd.Drive, test.ShouldResemble, Stopped)

	cmd = c.Tick(0.1, fullGrip)
	test.That(t, c.Phase(), test.ShouldEqual, ClimbRetracting)
	test.That(t, cmd.Angle.LeadScrew, test.ShouldAlmostEqual, 0.65)
	test.That(t, cmd.Angle.Winch, test.ShouldAlmostEqual, -0.81)
}

func TestClimbLoweringEndsAtUpperLimit(t *testing.T) {
	c := newTestClimb()
	c.Tick(2.0, LimitSwitches{AngleUpper: true, Claw1: true, Claw2: true})
	test.That(t, c.Phase(), test.ShouldEqual, ClimbRetracting)
}

func TestClimbRetractingRespectsCeiling(t *testing.T) {
	c := newTestClimb()
	const gain = 0.08 // distance per tick per unit command

	distance := 0.0
	maxStep := gain * 0.65
	for i := 0; i < 1000; i++ {
		cmd := c.Tick(distance, fullGrip)
		if c.Phase() == ClimbHolding {
			test.That(t, cmd, test.ShouldResemble, ClimbCommand{})
			break
		}
		test.That(t, c.Phase(), test.ShouldEqual, ClimbRetracting)
		distance += cmd.Angle.LeadScrew * gain
		test.That(t, distance, test.ShouldBeLessThanOrEqualTo, 10.7+maxStep)
	}
	test.That(t, c.Phase(), test.ShouldEqual, ClimbHolding)
	test.That(t, distance, test.ShouldBeGreaterThanOrEqualTo, 10.7)
}

func TestClimbSingleClawRamp(t *testing.T) {
	c := newTestClimb()
	c.Tick(0, fullGrip) // lowering done

	cmd := c.Tick(4, LimitSwitches{Claw1: true})
	test.That(t, c.Phase(), test.ShouldEqual, ClimbRecovering)
	test.That(t, cmd.Drive.Left, test.ShouldAlmostEqual, 0.4)
	test.That(t, cmd.Drive.Right, test.ShouldEqual, 0.0)
	test.That(t, cmd.Angle, test.ShouldResemble, AngleCommand{})

	cmd = c.Tick(4, LimitSwitches{Claw2: true})
	test.That(t, cmd.Drive.Left, test.ShouldEqual, 0.0)
	test.That(t, cmd.Drive.Right, test.ShouldAlmostEqual, 0.41)

	for i := 0; i < 200; i++ {
		cmd = c.Tick(4, LimitSwitches{Claw1: true})
		test.That(t, cmd.Drive.Left, test.ShouldBeLessThanOrEqualTo, 1.0)
	}
	test.That(t, c.HangDriveSpeed(), test.ShouldEqual, 1.0)
}

func TestClimbFallResetsRamp(t *testing.T) {
	c := newTestClimb()
	c.Tick(0, fullGrip)
	for i := 0; i < 20; i++ {
		c.Tick(4, LimitSwitches{Claw2: true})
	}
	test.That(t, c.HangDriveSpeed(), test.ShouldBeGreaterThan, 0.5)

	cmd := c.Tick(4, LimitSwitches{})
	test.That(t, c.Phase(), test.ShouldEqual, ClimbRecovering)
	test.That(t, cmd.Angle.LeadScrew, test.ShouldAlmostEqual, -0.4)
	test.That(t, cmd.Angle.Winch, test.ShouldAlmostEqual, 0.48)
	test.That(t, cmd.Drive, test.ShouldResemble, Stopped)
	test.That(t, c.HangDriveSpeed(), test.ShouldEqual, 0.4)

	// fully backed out: nothing left to do
	cmd = c.Tick(0, LimitSwitches{})
	test.That(t, cmd, test.ShouldResemble, ClimbCommand{})
}

func TestClimbHoldingRecoversOnGripLoss(t *testing.T) {
	c := newTestClimb()
	c.Tick(0, fullGrip)
	c.Tick(10.8, fullGrip)
	test.That(t, c.Phase(), test.ShouldEqual, ClimbHolding)

	c.Tick(10.8, LimitSwitches{Claw1: true})
	test.That(t, c.Phase(), test.ShouldEqual, ClimbRecovering)

	c.Tick(10.0, fullGrip)
	test.That(t, c.Phase(), test.ShouldEqual, ClimbRetracting)
}
