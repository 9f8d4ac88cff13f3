package control

import "math"

// RPMGovernor holds the shooter wheel at a target speed with an integrating
// step law: full spin-up command far below target, fixed small steps near
// it, and no correction inside the tolerance band.
type RPMGovernor struct {
	cfg GovernorConfig

	// Encoder bookkeeping, read before written once per tick
	lastRaw  int64
	lastTime float64
	primed   bool

	rpm     float64
	command float64 // integrated drive fraction
}

// NewRPMGovernor creates a governor starting at the configured idle command.
func NewRPMGovernor(cfg GovernorConfig) *RPMGovernor {
	return &RPMGovernor{
		cfg:     cfg,
		command: cfg.InitialCommand,
	}
}

// Reset clears the estimator and returns the command to its initial value.
func (g *RPMGovernor) Reset() {
	g.lastRaw = 0
	g.lastTime = 0
	g.primed = false
	g.rpm = 0
	g.command = g.cfg.InitialCommand
}

// Sample folds one encoder reading into the RPM estimate. The direction of
// rotation is ignored. A non-positive time delta keeps the previous estimate.
func (g *RPMGovernor) Sample(rawCount int64, now float64) float64 {
	raw := rawCount
	if raw < 0 {
		raw = -raw
	}

	if g.primed {
		deltaCounts := float64(raw - g.lastRaw)
		deltaTime := now - g.lastTime
		if deltaTime > 0 {
			g.rpm = deltaCounts * (60 / g.cfg.CountsPerRev) / deltaTime
		}
	}

	g.lastRaw = raw
	g.lastTime = now
	g.primed = true
	return g.rpm
}

// Step advances the drive command from an RPM estimate and returns it.
func (g *RPMGovernor) Step(rpm float64) float64 {
	target := g.cfg.TargetRPM
	switch {
	case rpm < target-g.cfg.SpinUpTolerance:
		g.command = g.cfg.SpinUpCommand
	case rpm > target+g.cfg.Tolerance:
		g.command -= g.cfg.StepPerTick
	case rpm < target-g.cfg.Tolerance:
		g.command += g.cfg.StepPerTick
	}
	g.command = ClampFloat(g.command, 0, MaxCommand)
	return g.command
}

// Run steps the governor from its latest estimate and returns the two wheel
// motor commands. The motors face each other, so the secondary is negated;
// the primary carries the friction offset.
func (g *RPMGovernor) Run() (primary, secondary float64) {
	g.Step(g.rpm)
	return g.Outputs()
}

// Outputs returns the wheel motor commands for the current drive command.
func (g *RPMGovernor) Outputs() (primary, secondary float64) {
	return clampCommand(g.command + g.cfg.FrictionRatio), clampCommand(-g.command)
}

// ShooterStatus reports whether the wheel is locked at speed.
func (g *RPMGovernor) ShooterStatus() bool {
	return math.Abs(g.rpm-g.cfg.TargetRPM) < g.cfg.Tolerance
}

// RPM returns the latest estimate
func (g *RPMGovernor) RPM() float64 {
	return g.rpm
}

// Command returns the integrated drive fraction
func (g *RPMGovernor) Command() float64 {
	return g.command
}

// SetTargetRPM updates the setpoint (useful for tuning runs)
func (g *RPMGovernor) SetTargetRPM(target float64) {
	g.cfg.TargetRPM = target
}

// GovernorDiagnostics contains governor state for monitoring
type GovernorDiagnostics struct {
	RPM     float64
	Error   float64
	Command float64
	Locked  bool
}

// GetDiagnostics returns current governor state for logging/debugging
func (g *RPMGovernor) GetDiagnostics() GovernorDiagnostics {
	return GovernorDiagnostics{
		RPM:     g.rpm,
		Error:   g.cfg.TargetRPM - g.rpm,
		Command: g.command,
		Locked:  g.ShooterStatus(),
	}
}
