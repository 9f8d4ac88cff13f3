package main

import (
	"math"

	control "spike-control-core/closed_loop/robot_control"
)

// PlantConfig describes the simulated mechanism.
type PlantConfig struct {
	FlywheelFreeRPM  float64 // wheel speed at full command
	FlywheelTauS     float64
	CountsPerRev     float64
	LeadScrewRate    float64 // distance per second at full command
	DistancePerPulse float64
	TravelMax        float64 // lower stop, measured from the upper stop
	StartDistance    float64
	AngleCountOffset int64 // raw count at the upper stop
	TriggerStrokeS   float64
	TriggerStartAway bool
}

func DefaultPlantConfig() PlantConfig {
	return PlantConfig{
		FlywheelFreeRPM:  3000,
		FlywheelTauS:     0.25,
		CountsPerRev:     256,
		LeadScrewRate:    5,
		DistancePerPulse: 0.0128,
		TravelMax:        13,
		StartDistance:    2,
		AngleCountOffset: 1000,
		TriggerStrokeS:   0.3,
		TriggerStartAway: true,
	}
}

// Plant integrates robot outputs into the sensor readings of the next tick:
// a first-order flywheel, a lead screw between two stops, a trigger cam that
// turns while the relay is forward, and claw switches set by the script.
type Plant struct {
	cfg PlantConfig

	wheelRPM    float64
	wheelCounts float64
	position    float64 // distance below the upper stop

	camAway bool
	camT    float64

	claw1, claw2 bool

	// Strokes counts completed trigger cycles
	Strokes int
}

func NewPlant(cfg PlantConfig) *Plant {
	p := &Plant{
		cfg:      cfg,
		position: control.ClampFloat(cfg.StartDistance, 0, cfg.TravelMax),
		camAway:  cfg.TriggerStartAway,
	}
	if p.camAway {
		p.camT = cfg.TriggerStrokeS / 3
	}
	return p
}

func (p *Plant) SetClaws(claw1, claw2 bool) {
	p.claw1, p.claw2 = claw1, claw2
}

// Position returns the true lead screw position below the upper stop.
func (p *Plant) Position() float64 {
	return p.position
}

func (p *Plant) WheelRPM() float64 {
	return p.wheelRPM
}

// Sensors samples the plant at time now.
func (p *Plant) Sensors(now float64, sidePreset bool) control.SensorSnapshot {
	return control.SensorSnapshot{
		Now:        now,
		ShooterRaw: int64(p.wheelCounts),
		AngleRaw:   p.cfg.AngleCountOffset + int64(math.Round(p.position/p.cfg.DistancePerPulse)),
		Limits: control.LimitSwitches{
			AngleUpper: p.position <= 0,
			AngleLower: p.position >= p.cfg.TravelMax,
			Claw1:      p.claw1,
			Claw2:      p.claw2,
			Trigger:    !p.camAway,
		},
		SideShotPreset: sidePreset,
	}
}

// Apply advances the plant by dt under the given outputs.
func (p *Plant) Apply(out control.Outputs, dt float64) {
	target := math.Abs(out.ShooterPrimary) * p.cfg.FlywheelFreeRPM
	p.wheelRPM += (target - p.wheelRPM) * (1 - math.Exp(-dt/p.cfg.FlywheelTauS))
	p.wheelCounts += p.wheelRPM / 60 * p.cfg.CountsPerRev * dt

	p.position = control.ClampFloat(p.position+out.AngleLeadScrew*p.cfg.LeadScrewRate*dt, 0, p.cfg.TravelMax)

	if out.TriggerRelay == control.RelayForward {
		if !p.camAway {
			p.camAway = true
			p.camT = 0
		}
		p.camT += dt
		if p.camT >= p.cfg.TriggerStrokeS {
			p.camAway = false
			p.camT = 0
			p.Strokes++
		}
	}
}
