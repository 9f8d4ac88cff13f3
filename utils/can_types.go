package utils

import (
	"fmt"
	"sort"
)

// Frame directions as seen from the robot controller
const (
	DirRX = "rx"
	DirTX = "tx"
)

type SignalDef struct {
	Name       string
	StartBit   int
	BitLength  int
	Signed     bool
	Factor     float64
	Offset     float64
	Min        float64
	Max        float64
	Default    float64
	Unit       string
	Comment    string
	Endianness string // only "little" supported
}

type FrameDef struct {
	ID        uint32
	Name      string
	DLC       int
	Direction string
	CycleMS   int
	Signals   []SignalDef
}

// Signal looks up a signal by name
func (fd *FrameDef) Signal(name string) (SignalDef, bool) {
	for _, s := range fd.Signals {
		if s.Name == name {
			return s, true
		}
	}
	return SignalDef{}, false
}

type CANMap struct {
	ByID   map[uint32]*FrameDef
	ByName map[string]*FrameDef
}

func (m *CANMap) FrameNames() []string {
	out := make([]string, 0, len(m.ByName))
	for k := range m.ByName {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Require checks that every named frame exists with the given direction and
// carries the listed signals.
func (m *CANMap) Require(direction, frameName string, signals ...string) (*FrameDef, error) {
	fd, err := m.FrameByName(frameName)
	if err != nil {
		return nil, err
	}
	if fd.Direction != direction {
		return nil, fmt.Errorf("frame %s is %q, want %q", fd.Name, fd.Direction, direction)
	}
	for _, s := range signals {
		if _, ok := fd.Signal(s); !ok {
			return nil, fmt.Errorf("frame %s has no signal %q", fd.Name, s)
		}
	}
	return fd, nil
}
