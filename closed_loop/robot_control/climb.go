package control

// ClimbPhase is the climb sequencer state
type ClimbPhase int

const (
	ClimbLowering ClimbPhase = iota
	ClimbRetracting
	ClimbRecovering
	ClimbHolding
)

func (p ClimbPhase) String() string {
	switch p {
	case ClimbRetracting:
		return "retracting"
	case ClimbRecovering:
		return "recovering"
	case ClimbHolding:
		return "holding"
	default:
		return "lowering"
	}
}

// ClimbCommand is the output of one climb tick
type ClimbCommand struct {
	Angle AngleCommand
	Drive DriveCommand
}

// ClimbSequencer pulls the robot up with the winch and lead screw together
// while both claws hold, re-seats a single slipping claw with the drivetrain,
// and lets the mechanism back out after a fall. Once started it runs without
// operator steering.
type ClimbSequencer struct {
	cfg   ClimbConfig
	angle *AngleController

	phase     ClimbPhase
	hangSpeed float64
}

// NewClimbSequencer creates a sequencer in the Lowering phase.
func NewClimbSequencer(cfg ClimbConfig, angle *AngleController) *ClimbSequencer {
	return &ClimbSequencer{
		cfg:       cfg,
		angle:     angle,
		hangSpeed: cfg.HangDriveFloor,
	}
}

// Phase returns the current phase
func (c *ClimbSequencer) Phase() ClimbPhase {
	return c.phase
}

// HangDriveSpeed returns the single-claw correction speed used next tick
func (c *ClimbSequencer) HangDriveSpeed() float64 {
	return c.hangSpeed
}

// Tick advances the sequencer one period.
func (c *ClimbSequencer) Tick(distance float64, limits LimitSwitches) ClimbCommand {
	if c.phase == ClimbLowering {
		cmd := c.angle.SetAngle(0, distance, limits)
		if cmd.LeadScrew != 0 {
			return ClimbCommand{Angle: cmd}
		}
		// settled; winch is already commanded to zero by the stop
		c.phase = ClimbRetracting
	}

	if limits.Claw1 && limits.Claw2 {
		if distance < c.cfg.CeilingDistance {
			c.phase = ClimbRetracting
			return ClimbCommand{Angle: AngleCommand{
				LeadScrew: clampCommand(c.cfg.RetractAngle),
				Winch:     clampCommand(c.cfg.RetractWinch),
			}}
		}
		c.phase = ClimbHolding
		return ClimbCommand{}
	}

	c.phase = ClimbRecovering
	switch {
	case limits.Claw1:
		drive := Tank(c.hangSpeed, 0)
		c.rampHangSpeed()
		return ClimbCommand{Drive: drive}
	case limits.Claw2:
		drive := Tank(0, c.hangSpeed)
		c.rampHangSpeed()
		return ClimbCommand{Drive: drive}
	case distance > 0:
		// neither claw holds: the robot has fallen
		c.hangSpeed = c.cfg.HangDriveFloor
		return ClimbCommand{Angle: AngleCommand{
			LeadScrew: clampCommand(c.cfg.RecoverAngle),
			Winch:     clampCommand(c.cfg.RecoverWinch),
		}}
	default:
		return ClimbCommand{}
	}
}

func (c *ClimbSequencer) rampHangSpeed() {
	c.hangSpeed += c.cfg.HangDriveStep
	if c.hangSpeed > c.cfg.HangDriveMax {
		c.hangSpeed = c.cfg.HangDriveMax
	}
}
