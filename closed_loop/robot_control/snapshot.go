package control

// LimitSwitches holds the limit-switch states sampled in one tick. true means
// triggered (at home / in contact).
type LimitSwitches struct {
	AngleUpper bool `json:"angle_upper"`
	AngleLower bool `json:"angle_lower"`
	Claw1      bool `json:"claw_1"` // closest to the shooter
	Claw2      bool `json:"claw_2"`
	Trigger    bool `json:"trigger_home"`
	Front      bool `json:"front"`
}

// SensorSnapshot is the read-only input of a single tick. It must be fully
// captured before any controller runs.
type SensorSnapshot struct {
	Now            float64 // monotonic seconds
	ShooterRaw     int64
	AngleRaw       int64
	Limits         LimitSwitches
	SideShotPreset bool // autonomous selector switch; false selects the center preset
}

// Mode is the match period reported by the field
type Mode int

const (
	ModeDisabled Mode = iota
	ModeAutonomous
	ModeTeleop
)

func (m Mode) String() string {
	switch m {
	case ModeAutonomous:
		return "autonomous"
	case ModeTeleop:
		return "teleop"
	default:
		return "disabled"
	}
}

// OperatorInput is what the input-mapping collaborator hands the core each
// tick.
type OperatorInput struct {
	Mode        Mode
	Drive       DriveCommand
	Fire        bool
	BeginClimb  bool
	AutoAimDone bool
	AngleTarget float64
	HasTarget   bool // false holds the angle where it is
}

// Owner identifies which subsystem wrote the drivetrain this tick
type Owner int

const (
	OwnerNone Owner = iota
	OwnerHoming
	OwnerAutonomous
	OwnerClimb
	OwnerOperator
)

func (o Owner) String() string {
	switch o {
	case OwnerHoming:
		return "homing"
	case OwnerAutonomous:
		return "autonomous"
	case OwnerClimb:
		return "climb"
	case OwnerOperator:
		return "operator"
	default:
		return "none"
	}
}

// Outputs is the complete set of actuator commands for one tick. Every field
// is written every tick.
type Outputs struct {
	Drive            DriveCommand
	ShooterPrimary   float64
	ShooterSecondary float64
	AngleLeadScrew   float64
	Winch            float64
	TriggerRelay     RelayState
	Owner            Owner
}
