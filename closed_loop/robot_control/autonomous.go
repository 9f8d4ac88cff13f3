package control

// AutoPhase is the autonomous choreography step
type AutoPhase int

const (
	AutoAim AutoPhase = iota
	AutoAdvanceShort
	AutoRotate
	AutoHold
)

func (p AutoPhase) String() string {
	switch p {
	case AutoAdvanceShort:
		return "advance"
	case AutoRotate:
		return "rotate"
	case AutoHold:
		return "hold"
	default:
		return "aim"
	}
}

// AutoCommand is the output of one autonomous tick
type AutoCommand struct {
	Phase AutoPhase
	Drive DriveCommand
	Angle AngleCommand
	Fire  bool
	T     float64 // seconds since the cycle timer was last reset
}

// AutonomousSequencer runs the timed opening: aim and shoot, a short blind
// advance, a rotation, then hold. The timer re-arms every cycle. Nothing is
// measured, so a stall or clock drift goes unnoticed.
type AutonomousSequencer struct {
	cfg   AutonomousConfig
	angle *AngleController

	started bool
	resetAt float64
	phase   AutoPhase
}

// NewAutonomousSequencer creates a sequencer whose timer starts on the first
// tick.
func NewAutonomousSequencer(cfg AutonomousConfig, angle *AngleController) *AutonomousSequencer {
	return &AutonomousSequencer{cfg: cfg, angle: angle}
}

// Reset restarts the cycle timer at now.
func (a *AutonomousSequencer) Reset(now float64) {
	a.started = true
	a.resetAt = now
	a.phase = AutoAim
}

// Phase returns the phase chosen on the last tick
func (a *AutonomousSequencer) Phase() AutoPhase {
	return a.phase
}

// Elapsed returns the cycle time at now, without wrapping.
func (a *AutonomousSequencer) Elapsed(now float64) float64 {
	if !a.started {
		return 0
	}
	return now - a.resetAt
}

// PhaseAt maps cycle time to a phase.
func (a *AutonomousSequencer) PhaseAt(t float64) AutoPhase {
	switch {
	case t < a.cfg.AimUntilS:
		return AutoAim
	case t < a.cfg.AdvanceUntilS:
		return AutoAdvanceShort
	case t < a.cfg.RotateUntilS:
		return AutoRotate
	default:
		return AutoHold
	}
}

// Preset returns the shot distance for the selector switch position. The
// switch is re-read every tick.
func (a *AutonomousSequencer) Preset(side bool) float64 {
	if side {
		return a.cfg.SideShotDist
	}
	return a.cfg.CenterShotDist
}

// Tick advances the choreography. The cycle timer wraps before the phase is
// chosen.
func (a *AutonomousSequencer) Tick(snap SensorSnapshot, distance float64, autoAimDone bool) AutoCommand {
	if !a.started {
		a.Reset(snap.Now)
	}
	t := a.Elapsed(snap.Now)
	if t > a.cfg.CycleS {
		a.Reset(snap.Now)
		t = 0
	}

	a.phase = a.PhaseAt(t)
	cmd := AutoCommand{Phase: a.phase, T: t}
	switch a.phase {
	case AutoAim:
		cmd.Drive = Stopped
		cmd.Angle = a.angle.SetAngle(a.Preset(snap.SideShotPreset), distance, snap.Limits)
		cmd.Fire = autoAimDone
	case AutoAdvanceShort:
		cmd.Drive = Tank(a.cfg.AdvanceSpeed, a.cfg.AdvanceSpeed)
	case AutoRotate:
		cmd.Drive = RotateInPlace(a.cfg.RotateSpeed)
	default:
		cmd.Drive = Stopped
	}
	return cmd
}
