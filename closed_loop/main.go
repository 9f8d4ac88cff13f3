package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"spike-control-core/utils"
)

func main() {
	var (
		iface     = flag.String("iface", "vcan0", "SocketCAN interface name")
		mapPath   = flag.String("map", "config/can/can_map.csv", "Path to can_map.csv")
		scenPath  = flag.String("scenario", "config/scenarios/teleop_climb.json", "Scenario JSON file")
		telemAddr = flag.String("telemetry", ":5805", "Telemetry HTTP listen address, empty to disable")
		logLevel  = flag.String("log", "info", "trace|debug|info|warn|error|critical")
	)
	flag.Parse()

	log, err := utils.NewFileLogger("closed_loop.log", utils.ParseLevel(*logLevel), true)
	if err != nil {
		_, _ = os.Stderr.WriteString("ERROR: cannot open closed_loop.log: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer log.Close()

	cfg := RunnerConfig{
		Interface:     *iface,
		MapPath:       *mapPath,
		ScenarioPath:  *scenPath,
		TelemetryAddr: *telemAddr,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	runner, err := NewRunner(ctx, cfg, log)
	if err != nil {
		log.Critical("Startup failed: %v", err)
		os.Exit(1)
	}
	defer runner.Close()

	if err := runner.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Critical("Run failed: %v", err)
		os.Exit(1)
	}
}
