package control

// HomingState tracks the startup calibration
type HomingState int

const (
	HomingSeeking HomingState = iota
	HomingDone
	HomingFaulted
)

func (h HomingState) String() string {
	switch h {
	case HomingDone:
		return "homed"
	case HomingFaulted:
		return "faulted"
	default:
		return "seeking"
	}
}

// HomingCommand is the output of one homing tick
type HomingCommand struct {
	Angle AngleCommand
	Relay RelayState
}

// Homing drives the lead screw to its upper limit and the trigger arm to its
// home switch, then zeroes the angle encoder. It gives up after a bounded
// time and reports a fault instead of waiting forever. Only ticked time
// counts toward that bound; Pause stops the clock.
type Homing struct {
	cfg     HomingConfig
	encoder *AngleEncoder

	state   HomingState
	running bool
	lastAt  float64
	elapsed float64
}

// NewHoming creates a homing sequence that zeroes enc on success.
func NewHoming(cfg HomingConfig, enc *AngleEncoder) *Homing {
	return &Homing{cfg: cfg, encoder: enc}
}

// State returns the current homing state
func (h *Homing) State() HomingState {
	return h.state
}

// Finished reports whether homing has left the seeking state.
func (h *Homing) Finished() bool {
	return h.state != HomingSeeking
}

// Pause stops the timeout clock until the next Tick. The gap between the
// last Tick and the next one is not counted.
func (h *Homing) Pause() {
	h.running = false
}

// Elapsed is the seeking time counted toward the timeout.
func (h *Homing) Elapsed() float64 {
	return h.elapsed
}

// Tick advances homing by one period. Once finished it only ever returns a
// stop command.
func (h *Homing) Tick(snap SensorSnapshot) HomingCommand {
	if h.state != HomingSeeking {
		return HomingCommand{}
	}
	if h.running {
		if dt := snap.Now - h.lastAt; dt > 0 {
			h.elapsed += dt
		}
	}
	h.running = true
	h.lastAt = snap.Now

	if snap.Limits.AngleUpper && snap.Limits.Trigger {
		h.encoder.Zero()
		h.state = HomingDone
		return HomingCommand{}
	}
	if h.elapsed >= h.cfg.MaxDurationS {
		h.state = HomingFaulted
		return HomingCommand{}
	}

	var cmd HomingCommand
	if !snap.Limits.AngleUpper {
		cmd.Angle = AngleCommand{
			LeadScrew: clampCommand(h.cfg.AngleSpeed),
			Winch:     clampCommand(h.cfg.WinchRelease), // release
		}
	}
	if !snap.Limits.Trigger {
		cmd.Relay = RelayForward
	}
	return cmd
}
