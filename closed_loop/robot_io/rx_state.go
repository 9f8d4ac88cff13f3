package robotio

import (
	"sync"
	"time"
)

// Inputs keeps the latest decoded value set per received frame. The RX
// goroutine stores, the control loop reads.
type Inputs struct {
	mu     sync.Mutex
	latest map[string]rxSample
}

type rxSample struct {
	values map[string]float64
	at     time.Time
}

func NewInputs() *Inputs {
	return &Inputs{latest: map[string]rxSample{}}
}

func (in *Inputs) Store(frame string, values map[string]float64, at time.Time) {
	in.mu.Lock()
	defer in.mu.Unlock()
	in.latest[frame] = rxSample{values: values, at: at}
}

// Latest returns the newest values for frame and their age at now. ok is
// false until the frame has been seen once.
func (in *Inputs) Latest(frame string, now time.Time) (values map[string]float64, age time.Duration, ok bool) {
	in.mu.Lock()
	defer in.mu.Unlock()
	s, ok := in.latest[frame]
	if !ok {
		return nil, 0, false
	}
	return s.values, now.Sub(s.at), true
}
