package control

// Command bounds for every motor channel
const (
	MinCommand = -1.0
	MaxCommand = 1.0
)

// DriveCommand is a left/right drivetrain request. Each side feeds a pair of
// motor channels.
type DriveCommand struct {
	Left  float64
	Right float64
}

// Stopped is the explicit zero drive request
var Stopped = DriveCommand{}

// Tank builds a drive request from independent side speeds.
func Tank(left, right float64) DriveCommand {
	return DriveCommand{
		Left:  ClampFloat(left, MinCommand, MaxCommand),
		Right: ClampFloat(right, MinCommand, MaxCommand),
	}
}

// RotateInPlace spins the robot about its center; positive turns clockwise.
func RotateInPlace(speed float64) DriveCommand {
	return Tank(speed, -speed)
}

// RelayState is the trigger relay output
type RelayState int

const (
	RelayOff RelayState = iota
	RelayForward
)

func (r RelayState) String() string {
	if r == RelayForward {
		return "forward"
	}
	return "off"
}

// ClampFloat clamps value between min and max
func ClampFloat(value, min, max float64) float64 {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}

// clampCommand bounds a motor drive fraction to [-1, 1]
func clampCommand(v float64) float64 {
	return ClampFloat(v, MinCommand, MaxCommand)
}

// BoolToFloat converts bool to float64 (for CAN encoding)
func BoolToFloat(b bool) float64 {
	if b {
		return 1.0
	}
	return 0.0
}

// BoolToInt converts bool to int (for CSV logging)
func BoolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
