package control

import "fmt"

// GovernorConfig holds shooter RPM governor parameters
type GovernorConfig struct {
	TargetRPM       float64 `json:"target_rpm"`
	CountsPerRev    float64 `json:"counts_per_rev"`
	Tolerance       float64 `json:"tolerance_rpm"`
	SpinUpTolerance float64 `json:"spin_up_tolerance_rpm"`
	SpinUpCommand   float64 `json:"spin_up_command"`
	StepPerTick     float64 `json:"step_per_tick"`
	FrictionRatio   float64 `json:"friction_ratio"` // extra drive on the primary wheel motor
	InitialCommand  float64 `json:"initial_command"`
}

// AngleConfig holds lead-screw angle controller parameters
type AngleConfig struct {
	DistancePerPulse float64 `json:"distance_per_pulse"`
	ErrorBand        float64 `json:"error_band"`
	UpSpeed          float64 `json:"up_speed"`   // toward the upper limit, distance decreasing
	DownSpeed        float64 `json:"down_speed"` // toward the lower limit, distance increasing
	UpTaperBelow     float64 `json:"up_taper_below"`
	UpTaperDivisor   float64 `json:"up_taper_divisor"`
	DownTaperAbove   float64 `json:"down_taper_above"`
	DownTaperDivisor float64 `json:"down_taper_divisor"`
}

// HomingConfig holds the startup homing parameters
type HomingConfig struct {
	AngleSpeed   float64 `json:"angle_speed"`
	WinchRelease float64 `json:"winch_release"`
	MaxDurationS float64 `json:"max_duration_s"`
}

// TriggerConfig holds the feed trigger parameters
type TriggerConfig struct {
	MaxFireDistance float64 `json:"max_fire_distance"` // interference zone starts here
}

// ClimbConfig holds the climb sequencer parameters. Winch and lead-screw
// speeds must be matched so both ends of the mechanism move at the same pace.
type ClimbConfig struct {
	RetractWinch    float64 `json:"retract_winch"`
	RetractAngle    float64 `json:"retract_angle"`
	RecoverWinch    float64 `json:"recover_winch"`
	RecoverAngle    float64 `json:"recover_angle"`
	CeilingDistance float64 `json:"ceiling_distance"`
	HangDriveFloor  float64 `json:"hang_drive_floor"`
	HangDriveStep   float64 `json:"hang_drive_step"`
	HangDriveMax    float64 `json:"hang_drive_max"`
}

// AutonomousConfig holds the timed autonomous choreography
type AutonomousConfig struct {
	AimUntilS      float64 `json:"aim_until_s"`
	AdvanceUntilS  float64 `json:"advance_until_s"`
	RotateUntilS   float64 `json:"rotate_until_s"`
	CycleS         float64 `json:"cycle_s"`
	AdvanceSpeed   float64 `json:"advance_speed"`
	RotateSpeed    float64 `json:"rotate_speed"`
	CenterShotDist float64 `json:"center_shot_distance"`
	SideShotDist   float64 `json:"side_shot_distance"`
}

// Config aggregates the tuning of every controller
type Config struct {
	Governor   GovernorConfig   `json:"governor"`
	Angle      AngleConfig      `json:"angle"`
	Homing     HomingConfig     `json:"homing"`
	Trigger    TriggerConfig    `json:"trigger"`
	Climb      ClimbConfig      `json:"climb"`
	Autonomous AutonomousConfig `json:"autonomous"`
}

// DefaultConfig returns the tuning measured on the competition robot.
func DefaultConfig() Config {
	return Config{
		Governor: GovernorConfig{
			TargetRPM:       2550,
			CountsPerRev:    256,
			Tolerance:       45,
			SpinUpTolerance: 350,
			SpinUpCommand:   0.9,
			StepPerTick:     0.0015,
			FrictionRatio:   0.01,
			InitialCommand:  0.85,
		},
		Angle: AngleConfig{
			DistancePerPulse: 0.0128,
			ErrorBand:        0.25,
			UpSpeed:          -0.56,
			DownSpeed:        0.56,
			UpTaperBelow:     1.25,
			UpTaperDivisor:   2.5,
			DownTaperAbove:   11,
			DownTaperDivisor: 3,
		},
		Homing: HomingConfig{
			AngleSpeed:   -0.4,
			WinchRelease: 0.48,
			MaxDurationS: 5,
		},
		Trigger: TriggerConfig{
			MaxFireDistance: 11.7,
		},
		Climb: ClimbConfig{
			RetractWinch:    -0.81,
			RetractAngle:    0.65,
			RecoverWinch:    0.48,
			RecoverAngle:    -0.4,
			CeilingDistance: 10.7,
			HangDriveFloor:  0.4,
			HangDriveStep:   0.01,
			HangDriveMax:    1.0,
		},
		Autonomous: AutonomousConfig{
			AimUntilS:      8.0,
			AdvanceUntilS:  8.5,
			RotateUntilS:   10.5,
			CycleS:         15.0,
			AdvanceSpeed:   0.54,
			RotateSpeed:    0.5,
			CenterShotDist: 7.35,
			SideShotDist:   8.214,
		},
	}
}

// Validate rejects tuning that would break a controller invariant.
func (c Config) Validate() error {
	g := c.Governor
	if g.TargetRPM <= 0 {
		return fmt.Errorf("invalid target_rpm: %f", g.TargetRPM)
	}
	if g.CountsPerRev <= 0 {
		return fmt.Errorf("invalid counts_per_rev: %f", g.CountsPerRev)
	}
	if g.Tolerance <= 0 || g.SpinUpTolerance < g.Tolerance {
		return fmt.Errorf("invalid tolerance band: tolerance=%f spin_up=%f", g.Tolerance, g.SpinUpTolerance)
	}
	if g.StepPerTick <= 0 || g.StepPerTick > 0.1 {
		return fmt.Errorf("invalid step_per_tick: %f", g.StepPerTick)
	}
	for name, v := range map[string]float64{
		"spin_up_command":  g.SpinUpCommand,
		"initial_command":  g.InitialCommand,
		"angle.up_speed":   c.Angle.UpSpeed,
		"angle.down_speed": c.Angle.DownSpeed,
		"homing.angle":     c.Homing.AngleSpeed,
		"homing.winch":     c.Homing.WinchRelease,
		"climb.retract":    c.Climb.RetractWinch,
		"climb.recover":    c.Climb.RecoverWinch,
		"auto.advance":     c.Autonomous.AdvanceSpeed,
		"auto.rotate":      c.Autonomous.RotateSpeed,
	} {
		if v < MinCommand || v > MaxCommand {
			return fmt.Errorf("%s out of [-1, 1]: %f", name, v)
		}
	}
	if c.Angle.DistancePerPulse <= 0 {
		return fmt.Errorf("invalid distance_per_pulse: %f", c.Angle.DistancePerPulse)
	}
	if c.Angle.ErrorBand <= 0 {
		return fmt.Errorf("invalid error_band: %f", c.Angle.ErrorBand)
	}
	if c.Angle.UpTaperDivisor < 1 || c.Angle.DownTaperDivisor < 1 {
		return fmt.Errorf("taper divisors must be >= 1")
	}
	if c.Homing.MaxDurationS <= 0 {
		return fmt.Errorf("invalid homing max_duration_s: %f", c.Homing.MaxDurationS)
	}
	if c.Climb.HangDriveFloor > c.Climb.HangDriveMax || c.Climb.HangDriveMax > MaxCommand {
		return fmt.Errorf("invalid hang drive range: floor=%f max=%f", c.Climb.HangDriveFloor, c.Climb.HangDriveMax)
	}
	a := c.Autonomous
	if !(0 < a.AimUntilS && a.AimUntilS <= a.AdvanceUntilS && a.AdvanceUntilS <= a.RotateUntilS && a.RotateUntilS <= a.CycleS) {
		return fmt.Errorf("autonomous thresholds out of order: %v/%v/%v/%v", a.AimUntilS, a.AdvanceUntilS, a.RotateUntilS, a.CycleS)
	}
	return nil
}
