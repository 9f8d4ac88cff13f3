package utils

import (
	"fmt"
	"math"

	"go.einride.tech/can"
)

func (m *CANMap) EncodeFrame(frameName string, values map[string]float64) ([]byte, uint32, error) {
	fd, err := m.FrameByName(frameName)
	if err != nil {
		return nil, 0, err
	}
	if fd.DLC <= 0 || fd.DLC > 8 {
		return nil, 0, fmt.Errorf("frame %s has invalid DLC %d", fd.Name, fd.DLC)
	}

	var payload uint64
	for _, s := range fd.Signals {
		v, ok := values[s.Name]
		if !ok {
			v = s.Default
		}
		payload = s.pack(payload, v)
	}

	out := make([]byte, fd.DLC)
	for i := range out {
		out[i] = byte(payload >> (8 * i))
	}
	return out, fd.ID, nil
}

// EncodeEinrideFrame produces a can.Frame ready to transmit.
func (m *CANMap) EncodeEinrideFrame(frameName string, values map[string]float64) (can.Frame, error) {
	payload, id, err := m.EncodeFrame(frameName, values)
	if err != nil {
		return can.Frame{}, err
	}

	var f can.Frame
	f.ID = id
	f.Length = uint8(len(payload))
	copy(f.Data[:], payload)
	return f, nil
}

func (m *CANMap) DecodeFrame(frameID uint32, data []byte) (map[string]float64, error) {
	fd, err := m.FrameByID(frameID)
	if err != nil {
		return nil, err
	}
	if len(data) < fd.DLC {
		return nil, fmt.Errorf("frame 0x%X expects DLC %d, got %d", frameID, fd.DLC, len(data))
	}

	var payload uint64
	for i := 0; i < fd.DLC && i < 8; i++ {
		payload |= uint64(data[i]) << (8 * i)
	}

	out := make(map[string]float64, len(fd.Signals))
	for _, s := range fd.Signals {
		out[s.Name] = s.unpack(payload)
	}
	return out, nil
}

// DecodeEinrideFrame decodes a received frame and reports its name.
func (m *CANMap) DecodeEinrideFrame(f can.Frame) (string, map[string]float64, error) {
	values, err := m.DecodeFrame(f.ID, f.Data[:f.Length])
	if err != nil {
		return "", nil, err
	}
	return m.ByID[f.ID].Name, values, nil
}

func (s SignalDef) mask() uint64 {
	if s.BitLength >= 64 {
		return math.MaxUint64
	}
	return (uint64(1) << s.BitLength) - 1
}

// pack scales v into raw units, saturating at the signal range, and writes
// it into payload.
func (s SignalDef) pack(payload uint64, v float64) uint64 {
	if s.Max > s.Min {
		v = clamp(v, s.Min, s.Max)
	}
	raw := s.saturate(int64(math.Round((v - s.Offset) / s.Factor)))

	u := uint64(raw) & s.mask() // two's complement for negative raw
	payload &^= s.mask() << s.StartBit
	return payload | u<<s.StartBit
}

func (s SignalDef) unpack(payload uint64) float64 {
	u := (payload >> s.StartBit) & s.mask()
	raw := int64(u)
	if s.Signed && s.BitLength < 64 && u&(uint64(1)<<(s.BitLength-1)) != 0 {
		raw -= int64(1) << s.BitLength
	}
	return float64(raw)*s.Factor + s.Offset
}

func (s SignalDef) saturate(raw int64) int64 {
	if s.BitLength <= 0 || s.BitLength > 63 {
		return raw
	}
	lo, hi := int64(0), int64(1)<<s.BitLength-1
	if s.Signed {
		lo, hi = -(int64(1) << (s.BitLength - 1)), int64(1)<<(s.BitLength-1)-1
	}
	if raw < lo {
		return lo
	}
	if raw > hi {
		return hi
	}
	return raw
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
