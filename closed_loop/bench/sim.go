package main

import (
	"context"
	"fmt"
	"math"

	control "spike-control-core/closed_loop/robot_control"
	robotio "spike-control-core/closed_loop/robot_io"
	"spike-control-core/utils"
)

// Sample is one row of the bench trace.
type Sample struct {
	T          float64
	RPM        float64
	Locked     bool
	Shooter    float64
	Distance   float64
	LeadScrew  float64
	Winch      float64
	DriveLeft  float64
	DriveRight float64
	Relay      control.RelayState
	Owner      control.Owner
}

type Result struct {
	Samples     []Sample
	Strokes     int
	LockedTicks int
	Frames      int
	Final       control.Telemetry
}

// Bench ticks a Robot against a Plant on simulated time.
type Bench struct {
	scen    control.Scenario
	plant   *Plant
	robot   *control.Robot
	watcher *robotio.Watcher
	log     *utils.Logger

	// optional frame output, both nil or both set
	bridge *robotio.Bridge
	writer utils.CANWriter
}

func NewBench(scen control.Scenario, plant *Plant, log *utils.Logger) *Bench {
	return &Bench{
		scen:    scen,
		plant:   plant,
		robot:   control.NewRobot(*scen.Tuning),
		watcher: robotio.NewWatcher(log.Named("robot")),
		log:     log,
	}
}

// WithFrames encodes every tick's outputs through bridge onto w.
func (b *Bench) WithFrames(bridge *robotio.Bridge, w utils.CANWriter) *Bench {
	b.bridge = bridge
	b.writer = w
	return b
}

// Run simulates the whole scenario. The operator is always the script;
// claws follow the scripted segments.
func (b *Bench) Run(ctx context.Context) (Result, error) {
	dt := float64(b.scen.Timing.CycleMS) / 1000
	ticks := int(math.Round(b.scen.Timing.DurationS / dt))
	if b.scen.Meta.OperatorSource == "can" {
		b.log.Warn("scenario expects CAN operator input; the bench replays its segments instead")
	}

	res := Result{Samples: make([]Sample, 0, ticks)}
	for i := 0; i < ticks; i++ {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		t := float64(i) * dt

		seg, _ := b.scen.ActiveSegment(t)
		b.plant.SetClaws(seg.Claw1, seg.Claw2)

		snap := b.plant.Sensors(t, b.scen.Meta.SideShotPreset)
		out := b.robot.Tick(snap, control.EvalOperator(&b.scen, t))
		tel := b.robot.Telemetry()
		b.watcher.Observe(t, tel)

		if b.bridge != nil {
			frames, err := b.bridge.Encode(tel.Tick, out, tel)
			if err != nil {
				return res, fmt.Errorf("t=%.3f: %w", t, err)
			}
			for _, f := range frames {
				if err := b.writer.WriteFrame(ctx, f); err != nil {
					return res, fmt.Errorf("t=%.3f write 0x%X: %w", t, f.ID, err)
				}
			}
			res.Frames += len(frames)
		}

		if tel.RPMLocked {
			res.LockedTicks++
		}
		res.Samples = append(res.Samples, Sample{
			T:          t,
			RPM:        tel.ShooterRPM,
			Locked:     tel.RPMLocked,
			Shooter:    out.ShooterPrimary,
			Distance:   tel.AngleDistance,
			LeadScrew:  out.AngleLeadScrew,
			Winch:      out.Winch,
			DriveLeft:  out.Drive.Left,
			DriveRight: out.Drive.Right,
			Relay:      out.TriggerRelay,
			Owner:      out.Owner,
		})
		b.log.Trace("t=%.3f rpm=%.0f dist=%.3f owner=%s relay=%s", t, tel.ShooterRPM, tel.AngleDistance, out.Owner, out.TriggerRelay)

		b.plant.Apply(out, dt)
	}

	res.Strokes = b.plant.Strokes
	res.Final = b.robot.Telemetry()
	return res, nil
}
