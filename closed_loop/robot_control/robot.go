package control

// Robot composes every controller behind one per-tick entry point and
// decides which subsystem owns the drivetrain and the angle mechanism.
type Robot struct {
	cfg Config

	governor *RPMGovernor
	encoder  *AngleEncoder
	angle    *AngleController
	homing   *Homing
	trigger  *Trigger
	climb    *ClimbSequencer
	auto     *AutonomousSequencer

	mode     Mode
	climbing bool // latched, never cleared
	autoT    float64
	snap     SensorSnapshot
	out      Outputs
	ticks    uint64
}

// NewRobot builds the controller set from cfg. Homing runs on the first
// enabled ticks.
func NewRobot(cfg Config) *Robot {
	enc := NewAngleEncoder(cfg.Angle.DistancePerPulse)
	angle := NewAngleController(cfg.Angle)
	return &Robot{
		cfg:      cfg,
		governor: NewRPMGovernor(cfg.Governor),
		encoder:  enc,
		angle:    angle,
		homing:   NewHoming(cfg.Homing, enc),
		trigger:  NewTrigger(cfg.Trigger),
		climb:    NewClimbSequencer(cfg.Climb, angle),
		auto:     NewAutonomousSequencer(cfg.Autonomous, angle),
	}
}

// Tick runs one control period. Sensor bookkeeping happens before any
// controller computes a command, and every output channel is written.
func (r *Robot) Tick(snap SensorSnapshot, in OperatorInput) Outputs {
	r.ticks++
	r.snap = snap
	r.encoder.Update(snap.AngleRaw)
	r.governor.Sample(snap.ShooterRaw, snap.Now)

	if in.Mode != r.mode {
		if in.Mode == ModeAutonomous {
			r.auto.Reset(snap.Now)
		}
		r.mode = in.Mode
	}

	var out Outputs
	switch {
	case r.mode == ModeDisabled:
		// nothing moves while disabled, and homing waits for enable
		r.homing.Pause()
		out = Outputs{}
	case r.homing.State() == HomingSeeking:
		out = r.tickHoming(snap)
	case r.homing.State() == HomingFaulted:
		out = Outputs{}
	case r.mode == ModeAutonomous:
		out = r.tickAutonomous(snap, in)
	case r.mode == ModeTeleop:
		out = r.tickTeleop(snap, in)
	default:
		out = Outputs{}
	}

	r.out = out
	return out
}

func (r *Robot) tickHoming(snap SensorSnapshot) Outputs {
	h := r.homing.Tick(snap)
	return Outputs{
		AngleLeadScrew: h.Angle.LeadScrew,
		Winch:          h.Angle.Winch,
		TriggerRelay:   h.Relay,
		Owner:          OwnerHoming,
	}
}

func (r *Robot) tickAutonomous(snap SensorSnapshot, in OperatorInput) Outputs {
	distance := r.encoder.Distance()
	ac := r.auto.Tick(snap, distance, in.AutoAimDone)
	r.autoT = ac.T

	primary, secondary := r.governor.Run()
	relay := r.trigger.Fire(TriggerInput{
		Fire:          ac.Fire,
		ShooterLocked: r.governor.ShooterStatus(),
		AtHome:        snap.Limits.Trigger,
		AngleDistance: distance,
	})
	return Outputs{
		Drive:            ac.Drive,
		ShooterPrimary:   primary,
		ShooterSecondary: secondary,
		AngleLeadScrew:   ac.Angle.LeadScrew,
		Winch:            ac.Angle.Winch,
		TriggerRelay:     relay,
		Owner:            OwnerAutonomous,
	}
}

func (r *Robot) tickTeleop(snap SensorSnapshot, in OperatorInput) Outputs {
	distance := r.encoder.Distance()
	if in.BeginClimb {
		r.climbing = true
	}

	if r.climbing {
		cc := r.climb.Tick(distance, snap.Limits)
		// a stroke in progress still runs home
		relay := r.trigger.Fire(TriggerInput{
			AtHome:        snap.Limits.Trigger,
			AngleDistance: distance,
		})
		return Outputs{
			Drive:          cc.Drive,
			AngleLeadScrew: cc.Angle.LeadScrew,
			Winch:          cc.Angle.Winch,
			TriggerRelay:   relay,
			Owner:          OwnerClimb,
		}
	}

	primary, secondary := r.governor.Run()
	angle := r.angle.Stop()
	if in.HasTarget {
		angle = r.angle.SetAngle(in.AngleTarget, distance, snap.Limits)
	}
	relay := r.trigger.Fire(TriggerInput{
		Fire:          in.Fire,
		ShooterLocked: r.governor.ShooterStatus(),
		AtHome:        snap.Limits.Trigger,
		AngleDistance: distance,
	})
	return Outputs{
		Drive:            Tank(in.Drive.Left, in.Drive.Right),
		ShooterPrimary:   primary,
		ShooterSecondary: secondary,
		AngleLeadScrew:   angle.LeadScrew,
		Winch:            angle.Winch,
		TriggerRelay:     relay,
		Owner:            OwnerOperator,
	}
}

// Climbing reports whether the climb latch has been set
func (r *Robot) Climbing() bool {
	return r.climbing
}

// Governor exposes the shooter governor (read-only use)
func (r *Robot) Governor() *RPMGovernor {
	return r.governor
}

// Telemetry is the observational state published every tick
type Telemetry struct {
	Tick          uint64  `json:"tick"`
	Mode          string  `json:"mode"`
	Owner         string  `json:"owner"`
	ShooterRPM    float64 `json:"shooter_rpm"`
	RPMLocked     bool    `json:"rpm_locked"`
	ShooterPWM    float64 `json:"shooter_pwm"`
	AngleDistance float64 `json:"angle_distance"`
	Timer         float64 `json:"timer_s"`
	Homing        string  `json:"homing"`
	Trigger       string  `json:"trigger"`
	Climbing      bool    `json:"climbing"`
	ClimbPhase    string  `json:"climb_phase"`
	HangDrive     float64 `json:"hang_drive_speed"`
	AutoPhase     string  `json:"auto_phase"`

	HomingState   HomingState   `json:"-"`
	ClimbPhaseID  ClimbPhase    `json:"-"`
	AutoPhaseID   AutoPhase     `json:"-"`
	OwnerID       Owner         `json:"-"`
	Limits        LimitSwitches `json:"limits"`
	AutoSelection bool          `json:"auto_side_preset"`
}

// Telemetry returns the state computed on the last tick.
func (r *Robot) Telemetry() Telemetry {
	return Telemetry{
		Tick:          r.ticks,
		Mode:          r.mode.String(),
		Owner:         r.out.Owner.String(),
		ShooterRPM:    r.governor.RPM(),
		RPMLocked:     r.governor.ShooterStatus(),
		ShooterPWM:    r.out.ShooterPrimary,
		AngleDistance: r.encoder.Distance(),
		Timer:         r.autoT,
		Homing:        r.homing.State().String(),
		Trigger:       r.trigger.State().String(),
		Climbing:      r.climbing,
		ClimbPhase:    r.climb.Phase().String(),
		HangDrive:     r.climb.HangDriveSpeed(),
		AutoPhase:     r.auto.Phase().String(),
		HomingState:   r.homing.State(),
		ClimbPhaseID:  r.climb.Phase(),
		AutoPhaseID:   r.auto.Phase(),
		OwnerID:       r.out.Owner,
		Limits:        r.snap.Limits,
		AutoSelection: r.snap.SideShotPreset,
	}
}
