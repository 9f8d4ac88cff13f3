package robotio

import (
	control "spike-control-core/closed_loop/robot_control"
	"spike-control-core/utils"
)

// Watcher logs state changes between consecutive telemetry snapshots.
type Watcher struct {
	log  *utils.Logger
	prev control.Telemetry
	seen bool
}

func NewWatcher(log *utils.Logger) *Watcher {
	return &Watcher{log: log}
}

// Observe compares tel with the previous tick and returns how many
// transitions it logged.
func (w *Watcher) Observe(t float64, tel control.Telemetry) int {
	prev := w.prev
	first := !w.seen
	w.prev = tel
	w.seen = true
	if first {
		w.log.Info("t=%.3f start: mode=%s owner=%s homing=%s", t, tel.Mode, tel.Owner, tel.Homing)
		return 1
	}

	n := 0
	if tel.Mode != prev.Mode {
		w.log.Info("t=%.3f mode %s -> %s", t, prev.Mode, tel.Mode)
		n++
	}
	if tel.Owner != prev.Owner {
		w.log.Info("t=%.3f drive owner %s -> %s", t, prev.Owner, tel.Owner)
		n++
	}
	if tel.HomingState != prev.HomingState {
		if tel.HomingState == control.HomingFaulted {
			w.log.Error("t=%.3f homing faulted: switches never reached, outputs held at zero", t)
		} else {
			w.log.Info("t=%.3f homing %s -> %s", t, prev.Homing, tel.Homing)
		}
		n++
	}
	if tel.Climbing && !prev.Climbing {
		w.log.Info("t=%.3f climb latched", t)
		n++
	}
	if tel.Climbing && prev.Climbing && tel.ClimbPhaseID != prev.ClimbPhaseID {
		w.log.Info("t=%.3f climb %s -> %s (distance %.3f, hang %.2f)",
			t, prev.ClimbPhase, tel.ClimbPhase, tel.AngleDistance, tel.HangDrive)
		n++
	}
	if tel.Mode == prev.Mode && tel.AutoPhaseID != prev.AutoPhaseID {
		w.log.Info("t=%.3f autonomous %s -> %s", t, prev.AutoPhase, tel.AutoPhase)
		n++
	}
	if tel.RPMLocked != prev.RPMLocked {
		w.log.Debug("t=%.3f shooter locked=%v rpm=%.0f", t, tel.RPMLocked, tel.ShooterRPM)
		n++
	}
	if tel.Trigger != prev.Trigger {
		w.log.Debug("t=%.3f trigger %s -> %s", t, prev.Trigger, tel.Trigger)
		n++
	}
	return n
}
