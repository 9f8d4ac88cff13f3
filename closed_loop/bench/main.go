package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/urfave/cli"

	control "spike-control-core/closed_loop/robot_control"
	robotio "spike-control-core/closed_loop/robot_io"
	"spike-control-core/utils"
)

func main() {
	app := cli.NewApp()
	app.Name = "bench"
	app.Usage = "run a match scenario against a simulated robot"
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:  "scenario",
			Value: "config/scenarios/autonomous.json",
			Usage: "scenario JSON file",
		},
		cli.StringFlag{
			Name:  "out",
			Value: "bench_out",
			Usage: "directory for the trace CSV and plots",
		},
		cli.StringFlag{
			Name:  "map",
			Value: "config/can/can_map.csv",
			Usage: "CAN map used to encode outputs, empty to skip encoding",
		},
		cli.StringFlag{
			Name:  "iface",
			Usage: "SocketCAN interface to mirror encoded frames onto",
		},
		cli.Float64Flag{
			Name:  "start-distance",
			Value: DefaultPlantConfig().StartDistance,
			Usage: "lead screw position below the upper stop at power on",
		},
		cli.BoolFlag{
			Name:  "no-plots",
			Usage: "skip PNG plots",
		},
		cli.StringFlag{
			Name:  "log",
			Value: "info",
			Usage: "trace|debug|info|warn|error|critical",
		},
	}
	app.Action = run
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "bench:", err)
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	log, err := utils.NewFileLogger("bench.log", utils.ParseLevel(c.GlobalString("log")), true)
	if err != nil {
		return fmt.Errorf("open bench.log: %w", err)
	}
	defer log.Close()

	scen, err := control.LoadScenario(c.GlobalString("scenario"))
	if err != nil {
		log.Critical("Load scenario failed: %v", err)
		return fmt.Errorf("load scenario: %w", err)
	}

	plantCfg := DefaultPlantConfig()
	plantCfg.StartDistance = c.GlobalFloat64("start-distance")
	plantCfg.DistancePerPulse = scen.Tuning.Angle.DistancePerPulse
	plantCfg.CountsPerRev = scen.Tuning.Governor.CountsPerRev

	bench := NewBench(scen, NewPlant(plantCfg), log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if mapPath := c.GlobalString("map"); mapPath != "" {
		cmap, err := utils.LoadCANMap(mapPath)
		if err != nil {
			return fmt.Errorf("load can map: %w", err)
		}
		bridge, err := robotio.NewBridge(cmap, scen.Timing.CycleMS)
		if err != nil {
			return fmt.Errorf("can map: %w", err)
		}
		var w utils.CANWriter = &utils.FrameSink{}
		if iface := c.GlobalString("iface"); iface != "" {
			sw, err := utils.NewSocketCANWriter(ctx, iface)
			if err != nil {
				return err
			}
			defer sw.Close()
			w = sw
		}
		bench.WithFrames(bridge, w)
	}

	log.Info("Bench start: scenario=%s mode=%s duration=%.2fs cycle_ms=%d",
		scen.Meta.Name, scen.Meta.Mode, scen.Timing.DurationS, scen.Timing.CycleMS)

	res, err := bench.Run(ctx)
	if err != nil {
		log.Critical("Bench run failed: %v", err)
		return err
	}

	outDir := c.GlobalString("out")
	tracePath := filepath.Join(outDir, "trace.csv")
	if err := writeTraceCSV(tracePath, res.Samples); err != nil {
		return err
	}
	if !c.GlobalBool("no-plots") {
		if err := savePlots(outDir, res.Samples, scen.Tuning.Governor.TargetRPM); err != nil {
			return fmt.Errorf("plots: %w", err)
		}
	}

	log.Info("Bench done: ticks=%d locked_ticks=%d strokes=%d frames=%d homing=%s climb=%s auto=%s trace=%s",
		len(res.Samples), res.LockedTicks, res.Strokes, res.Frames,
		res.Final.Homing, res.Final.ClimbPhase, res.Final.AutoPhase, tracePath)
	return nil
}
