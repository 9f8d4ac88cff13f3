package main

import (
	"context"
	"fmt"
	"time"

	"go.einride.tech/can"

	control "spike-control-core/closed_loop/robot_control"
	robotio "spike-control-core/closed_loop/robot_io"
	"spike-control-core/utils"
)

const (
	sensorStaleAfter   = 100 * time.Millisecond
	operatorStaleAfter = 500 * time.Millisecond
)

type RunnerConfig struct {
	Interface     string
	MapPath       string
	ScenarioPath  string
	TelemetryAddr string
}

type Runner struct {
	cfg     RunnerConfig
	log     *utils.Logger
	rxLog   *utils.Logger
	scen    control.Scenario
	bridge  *robotio.Bridge
	writer  utils.CANWriter
	reader  utils.CANReader
	inputs  *robotio.Inputs
	robot   *control.Robot
	watcher *robotio.Watcher
	telem   *robotio.TelemetryServer

	sensorStale   bool
	operatorStale bool
	lastTel       control.Telemetry
	ticks         uint64
	sent          uint64
}

func NewRunner(ctx context.Context, cfg RunnerConfig, log *utils.Logger) (*Runner, error) {
	cmap, err := utils.LoadCANMap(cfg.MapPath)
	if err != nil {
		return nil, fmt.Errorf("load can map: %w", err)
	}

	scen, err := control.LoadScenario(cfg.ScenarioPath)
	if err != nil {
		return nil, fmt.Errorf("load scenario: %w", err)
	}

	writer, err := utils.NewSocketCANWriter(ctx, cfg.Interface)
	if err != nil {
		return nil, err
	}

	reader, err := utils.NewSocketCANReader(ctx, cfg.Interface)
	if err != nil {
		writer.Close()
		return nil, err
	}

	r, err := newRunner(cfg, log, cmap, scen, writer, reader)
	if err != nil {
		reader.Close()
		writer.Close()
		return nil, err
	}
	return r, nil
}

// newRunner wires an already opened transport to a fresh robot.
func newRunner(cfg RunnerConfig, log *utils.Logger, cmap *utils.CANMap, scen control.Scenario,
	writer utils.CANWriter, reader utils.CANReader) (*Runner, error) {
	bridge, err := robotio.NewBridge(cmap, scen.Timing.CycleMS)
	if err != nil {
		return nil, fmt.Errorf("can map: %w", err)
	}

	r := &Runner{
		cfg:     cfg,
		log:     log,
		rxLog:   log.Named("rx"),
		scen:    scen,
		bridge:  bridge,
		writer:  writer,
		reader:  reader,
		inputs:  robotio.NewInputs(),
		robot:   control.NewRobot(*scen.Tuning),
		watcher: robotio.NewWatcher(log.Named("robot")),
	}
	if cfg.TelemetryAddr != "" {
		r.telem = robotio.NewTelemetryServer(log.Named("telemetry"), 100*time.Millisecond)
	}
	return r, nil
}

func (r *Runner) Close() {
	if r.reader != nil {
		_ = r.reader.Close()
	}
	if r.writer != nil {
		_ = r.writer.Close()
	}
}

func (r *Runner) Run(ctx context.Context) error {
	r.log.Info("Starting control loop: iface=%s scenario=%s mode=%s operator=%s cycle_ms=%d duration=%.2fs",
		r.cfg.Interface, r.scen.Meta.Name, r.scen.Meta.Mode, r.scen.Meta.OperatorSource,
		r.scen.Timing.CycleMS, r.scen.Timing.DurationS)

	if r.reader != nil {
		go r.receiveLoop(ctx)
	}
	if r.telem != nil {
		go func() {
			if err := r.telem.ListenAndServe(ctx, r.cfg.TelemetryAddr); err != nil {
				r.log.Error("telemetry server: %v", err)
			}
		}()
	}
	defer r.safeStop()

	start := time.Now()
	ticker := time.NewTicker(time.Duration(r.scen.Timing.CycleMS) * time.Millisecond)
	defer ticker.Stop()

	endAfter := time.Duration(r.scen.Timing.DurationS * float64(time.Second))

	for {
		select {
		case <-ctx.Done():
			r.log.Warn("Context canceled; stopping control loop")
			r.log.Info("Completed. frames_sent=%d", r.sent)
			return ctx.Err()

		case now := <-ticker.C:
			elapsed := now.Sub(start)
			if elapsed > endAfter {
				r.log.Info("Completed. frames_sent=%d", r.sent)
				return nil
			}

			frames, err := r.step(now, elapsed.Seconds())
			if err != nil {
				r.log.Error("Encode failed at t=%.3f: %v", elapsed.Seconds(), err)
				return err
			}
			for _, f := range frames {
				if err := r.writer.WriteFrame(ctx, f); err != nil {
					r.log.Critical("Transmit failed at t=%.3f id=0x%X: %v", elapsed.Seconds(), f.ID, err)
					return err
				}
				r.sent++
			}
		}
	}
}

// step runs one control period at wall time now, t seconds into the run,
// and returns the frames to transmit.
func (r *Runner) step(now time.Time, t float64) ([]can.Frame, error) {
	r.ticks++
	snap, ok := r.sensorSnapshot(now, t)
	if !ok {
		// no sensor data at all yet: hold everything still and leave the
		// robot untouched so homing starts from real switch readings
		return r.bridge.Encode(r.ticks, control.Outputs{}, r.robot.Telemetry())
	}
	in := r.operatorInput(now, t)

	out := r.robot.Tick(snap, in)
	tel := r.robot.Telemetry()
	r.lastTel = tel
	r.watcher.Observe(t, tel)
	if r.telem != nil {
		r.telem.Publish(tel)
	}

	r.log.Trace("t=%.3f owner=%s drive=(%.3f,%.3f) shooter=%.4f rpm=%.0f angle=%.3f lead=%.3f winch=%.3f relay=%s",
		t, out.Owner, out.Drive.Left, out.Drive.Right, out.ShooterPrimary, tel.ShooterRPM,
		tel.AngleDistance, out.AngleLeadScrew, out.Winch, out.TriggerRelay)

	return r.bridge.Encode(r.ticks, out, tel)
}

// sensorSnapshot builds the robot's view of the sensor frame. ok is false
// until the first frame has been received.
func (r *Runner) sensorSnapshot(now time.Time, t float64) (control.SensorSnapshot, bool) {
	values, age, ok := r.inputs.Latest(robotio.FrameSensor, now)
	stale := !ok || age > sensorStaleAfter
	if stale && !r.sensorStale {
		if ok {
			r.rxLog.Warn("sensor frame stale: %.0fms old", float64(age)/float64(time.Millisecond))
		} else {
			r.rxLog.Warn("no sensor frame received yet")
		}
	} else if !stale && r.sensorStale {
		r.rxLog.Info("sensor frames resumed")
	}
	r.sensorStale = stale

	snap := robotio.SensorSnapshot(values, t)
	snap.SideShotPreset = snap.SideShotPreset || r.scen.Meta.SideShotPreset
	return snap, ok
}

func (r *Runner) operatorInput(now time.Time, t float64) control.OperatorInput {
	if r.scen.Meta.OperatorSource == "script" {
		return control.EvalOperator(&r.scen, t)
	}

	values, age, ok := r.inputs.Latest(robotio.FrameOperator, now)
	if !ok {
		return control.OperatorInput{}
	}
	in := robotio.OperatorInput(values)
	stale := age > operatorStaleAfter
	if stale {
		in.Drive = control.Stopped
		in.Fire = false
		if !r.operatorStale {
			r.rxLog.Warn("operator frame stale: %.0fms old, drive and fire zeroed", float64(age)/float64(time.Millisecond))
		}
	} else if r.operatorStale {
		r.rxLog.Info("operator frames resumed")
	}
	r.operatorStale = stale
	return in
}

// receiveLoop keeps the latest sensor and operator frames
func (r *Runner) receiveLoop(ctx context.Context) {
	r.rxLog.Debug("RX loop started")
	defer r.rxLog.Debug("RX loop stopped")

	for {
		frame, err := r.reader.ReadFrame(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			r.rxLog.Error("RX error: %v", err)
			return
		}

		name, values, err := r.bridge.Decode(frame)
		if err != nil {
			r.rxLog.Trace("RX skip id=0x%X: %v", frame.ID, err)
			continue
		}
		r.inputs.Store(name, values, time.Now())
		r.rxLog.Trace("RX %s id=0x%X data=% X", name, frame.ID, frame.Data[:frame.Length])
	}
}

// safeStop writes one all-zero actuator set on the way out.
func (r *Runner) safeStop() {
	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	frames, err := r.bridge.Encode(1, control.Outputs{}, r.lastTel)
	if err != nil {
		r.log.Error("safe stop encode: %v", err)
		return
	}
	for _, f := range frames {
		if err := r.writer.WriteFrame(ctx, f); err != nil {
			r.log.Error("safe stop transmit id=0x%X: %v", f.ID, err)
			return
		}
	}
	r.log.Info("Actuators zeroed")
}
