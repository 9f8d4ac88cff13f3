package main

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"strconv"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	control "spike-control-core/closed_loop/robot_control"
)

var traceHeader = []string{
	"t_s", "rpm", "locked", "shooter_cmd", "angle_distance", "leadscrew_cmd",
	"winch_cmd", "drive_left", "drive_right", "trigger_relay", "owner",
}

func writeTraceCSV(filename string, samples []Sample) error {
	if len(samples) == 0 {
		return errors.New("CSV: no samples")
	}
	if err := os.MkdirAll(filepath.Dir(filename), 0o755); err != nil {
		return fmt.Errorf("CSV: cannot create directory: %w", err)
	}

	f, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("CSV: cannot open %s: %w", filename, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(traceHeader); err != nil {
		return fmt.Errorf("CSV: cannot write header: %w", err)
	}
	num := func(v float64) string { return strconv.FormatFloat(v, 'g', 8, 64) }
	for _, s := range samples {
		row := []string{
			num(s.T), num(s.RPM), strconv.Itoa(control.BoolToInt(s.Locked)), num(s.Shooter),
			num(s.Distance), num(s.LeadScrew), num(s.Winch), num(s.DriveLeft), num(s.DriveRight),
			s.Relay.String(), s.Owner.String(),
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("CSV: cannot write row: %w", err)
		}
	}
	w.Flush()
	return w.Error()
}

func stylePlot(p *plot.Plot) {
	p.Title.TextStyle.Font.Size = vg.Points(18)
	p.Title.Padding = vg.Points(10)
	p.X.Label.TextStyle.Font.Size = vg.Points(14)
	p.Y.Label.TextStyle.Font.Size = vg.Points(14)
	p.X.Tick.Label.Font.Size = vg.Points(12)
	p.Y.Tick.Label.Font.Size = vg.Points(12)
	p.Add(plotter.NewGrid())
}

func savePlotPNG(p *plot.Plot, widthIn, heightIn float64, filename string) error {
	if err := os.MkdirAll(filepath.Dir(filename), 0o755); err != nil {
		return fmt.Errorf("cannot create directory: %w", err)
	}
	c := vgimg.NewWith(
		vgimg.UseWH(vg.Length(widthIn)*vg.Inch, vg.Length(heightIn)*vg.Inch),
		vgimg.UseDPI(150),
	)
	p.Draw(draw.New(c))

	f, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("cannot create png: %w", err)
	}
	defer f.Close()

	bw := bufio.NewWriter(f)
	if _, err := (vgimg.PngCanvas{Canvas: c}).WriteTo(bw); err != nil {
		return fmt.Errorf("cannot write png: %w", err)
	}
	return bw.Flush()
}

type series struct {
	name  string
	ys    []float64
	color color.Color
}

// saveSeriesPlot draws one line per series against ts.
func saveSeriesPlot(filename, title, ylabel string, ts []float64, lines ...series) error {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "time (s)"
	p.Y.Label.Text = ylabel
	stylePlot(p)

	for _, s := range lines {
		if len(s.ys) != len(ts) || len(ts) == 0 {
			return fmt.Errorf("plot %s: data invalid", s.name)
		}
		pts := make(plotter.XYs, len(ts))
		for i := range ts {
			pts[i].X = ts[i]
			pts[i].Y = s.ys[i]
		}
		line, err := plotter.NewLine(pts)
		if err != nil {
			return err
		}
		line.LineStyle.Width = vg.Points(1.5)
		line.LineStyle.Color = s.color
		p.Add(line)
		if len(lines) > 1 {
			p.Legend.Add(s.name, line)
		}
	}
	p.Legend.Top = true
	return savePlotPNG(p, 8.0, 4.5, filename)
}

func savePlots(outDir string, samples []Sample, targetRPM float64) error {
	n := len(samples)
	ts := make([]float64, n)
	rpm := make([]float64, n)
	target := make([]float64, n)
	dist := make([]float64, n)
	left := make([]float64, n)
	right := make([]float64, n)
	for i, s := range samples {
		ts[i] = s.T
		rpm[i] = s.RPM
		target[i] = targetRPM
		dist[i] = s.Distance
		left[i] = s.DriveLeft
		right[i] = s.DriveRight
	}

	blue := color.RGBA{B: 200, A: 255}
	red := color.RGBA{R: 200, A: 255}
	gray := color.Gray{Y: 128}

	if err := saveSeriesPlot(filepath.Join(outDir, "shooter_rpm.png"), "Shooter speed", "rpm",
		ts, series{"measured", rpm, blue}, series{"target", target, gray}); err != nil {
		return err
	}
	if err := saveSeriesPlot(filepath.Join(outDir, "angle_distance.png"), "Angle mechanism", "distance",
		ts, series{"distance", dist, blue}); err != nil {
		return err
	}
	return saveSeriesPlot(filepath.Join(outDir, "drive.png"), "Drivetrain commands", "command",
		ts, series{"left", left, blue}, series{"right", right, red})
}
