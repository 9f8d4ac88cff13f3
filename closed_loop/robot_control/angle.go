package control

// AngleEncoder scales the lead-screw quadrature count into travel distance.
// Distance is zero at the upper limit once homing has run and grows toward
// the lower limit.
type AngleEncoder struct {
	distancePerPulse float64
	offset           int64
	raw              int64
}

// NewAngleEncoder creates an encoder with the given scale.
func NewAngleEncoder(distancePerPulse float64) *AngleEncoder {
	return &AngleEncoder{distancePerPulse: distancePerPulse}
}

// Update records this tick's raw count.
func (e *AngleEncoder) Update(raw int64) {
	e.raw = raw
}

// Zero makes the current position the reference.
func (e *AngleEncoder) Zero() {
	e.offset = e.raw
}

// Distance returns the scaled travel from the reference.
func (e *AngleEncoder) Distance() float64 {
	return float64(e.raw-e.offset) * e.distancePerPulse
}

// AngleDirection is the three-way lead-screw decision
type AngleDirection int

const (
	AngleHold AngleDirection = iota
	AngleUp                  // toward the upper limit
	AngleDown                // toward the lower limit
)

func (d AngleDirection) String() string {
	switch d {
	case AngleUp:
		return "up"
	case AngleDown:
		return "down"
	default:
		return "hold"
	}
}

// AngleCommand is what the angle mechanism channels receive in one tick
type AngleCommand struct {
	LeadScrew float64
	Winch     float64
}

// AngleController positions the shooter angle lead screw within an error
// band of a target distance.
type AngleController struct {
	cfg AngleConfig
}

// NewAngleController creates a controller with the given tuning.
func NewAngleController(cfg AngleConfig) *AngleController {
	return &AngleController{cfg: cfg}
}

// Direction classifies the error between distance and target. Travel toward
// the upper limit reduces distance.
func (a *AngleController) Direction(distance, target float64) AngleDirection {
	switch {
	case distance > target+a.cfg.ErrorBand:
		return AngleUp
	case distance < target-a.cfg.ErrorBand:
		return AngleDown
	default:
		return AngleHold
	}
}

// SetAngle returns the command that moves the mechanism toward target. It is
// a pure function of its arguments.
func (a *AngleController) SetAngle(target, distance float64, limits LimitSwitches) AngleCommand {
	switch a.Direction(distance, target) {
	case AngleUp:
		return a.Up(distance, limits)
	case AngleDown:
		return a.Down(distance, limits)
	default:
		return a.Stop()
	}
}

// Up drives toward the upper limit, slowing down close to it.
func (a *AngleController) Up(distance float64, limits LimitSwitches) AngleCommand {
	if limits.AngleUpper {
		return a.Stop()
	}
	speed := a.cfg.UpSpeed
	if distance < a.cfg.UpTaperBelow {
		speed /= a.cfg.UpTaperDivisor
	}
	return AngleCommand{LeadScrew: clampCommand(speed)}
}

// Down drives toward the lower limit, slowing down close to it.
func (a *AngleController) Down(distance float64, limits LimitSwitches) AngleCommand {
	if limits.AngleLower {
		return a.Stop()
	}
	speed := a.cfg.DownSpeed
	if distance > a.cfg.DownTaperAbove {
		speed /= a.cfg.DownTaperDivisor
	}
	return AngleCommand{LeadScrew: clampCommand(speed)}
}

// Stop stops both the lead screw and the winch.
func (a *AngleController) Stop() AngleCommand {
	return AngleCommand{}
}
