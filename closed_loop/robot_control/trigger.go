package control

// TriggerState is the feed trigger latch state
type TriggerState int

const (
	TriggerReleased TriggerState = iota
	TriggerEngaged
)

func (s TriggerState) String() string {
	if s == TriggerEngaged {
		return "engaged"
	}
	return "released"
}

// TriggerInput is everything the trigger latch looks at in one tick
type TriggerInput struct {
	Fire          bool
	ShooterLocked bool
	AtHome        bool
	AngleDistance float64
}

// NextTriggerState is the latch transition. A stroke, once started, runs
// until the home switch closes regardless of the fire request. New strokes
// need a fire request with the wheel at speed, and never start inside the
// angle interference zone.
func NextTriggerState(cur TriggerState, in TriggerInput, cfg TriggerConfig) TriggerState {
	canStart := in.AngleDistance < cfg.MaxFireDistance
	if cur == TriggerEngaged && !in.AtHome {
		return TriggerEngaged
	}
	if canStart && ((in.Fire && in.ShooterLocked) || !in.AtHome) {
		return TriggerEngaged
	}
	return TriggerReleased
}

// Trigger owns the feed relay.
type Trigger struct {
	cfg   TriggerConfig
	state TriggerState
}

// NewTrigger creates a released trigger.
func NewTrigger(cfg TriggerConfig) *Trigger {
	return &Trigger{cfg: cfg}
}

// Fire evaluates the latch for this tick and returns the relay output.
func (t *Trigger) Fire(in TriggerInput) RelayState {
	t.state = NextTriggerState(t.state, in, t.cfg)
	return t.Relay()
}

// Relay returns the relay output for the current state
func (t *Trigger) Relay() RelayState {
	if t.state == TriggerEngaged {
		return RelayForward
	}
	return RelayOff
}

// State returns the latch state
func (t *Trigger) State() TriggerState {
	return t.state
}
