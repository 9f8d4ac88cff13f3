package control

import (
	"os"
	"path/filepath"
	"testing"

	"go.viam.com/test"
)

const teleopScenario = `{
  "meta": {"name": "practice", "version": 1, "mode": "teleop"},
  "timing": {"duration_s": 20},
  "tuning": {"governor": {"target_rpm": 3000}},
  "segments": [
    {"t0": 0, "t1": 2, "drive_left": 0.5, "drive_right": 0.5},
    {"t0": 2, "t1": 4, "fire": true, "angle_target": 7.35},
    {"t0": 10, "t1": -1, "begin_climb": true, "claw_1": true, "claw_2": true}
  ]
}`

func TestParseScenarioOverlaysTuning(t *testing.T) {
	scen, err := ParseScenario([]byte(teleopScenario))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, scen.Timing.CycleMS, test.ShouldEqual, 20)
	test.That(t, scen.Meta.OperatorSource, test.ShouldEqual, "script")
	test.That(t, scen.Tuning.Governor.TargetRPM, test.ShouldEqual, 3000.0)

	def := DefaultConfig()
	test.That(t, scen.Tuning.Governor.Tolerance, test.ShouldEqual, def.Governor.Tolerance)
	test.That(t, scen.Tuning.Angle, test.ShouldResemble, def.Angle)
}

func TestParseScenarioRejects(t *testing.T) {
	for _, tc := range []struct {
		doc, msg string
	}{
		{`{"timing": {"duration_s": 0}}`, "duration_s"},
		{`{"timing": {"duration_s": 5}, "meta": {"mode": "test"}}`, "unknown mode"},
		{`{"timing": {"duration_s": 5}, "meta": {"operator_source": "joystick"}}`, "operator_source"},
		{`{"timing": {"duration_s": 5}, "segments": [{"t0": 3, "t1": 1}]}`, "ends before"},
		{`{"timing": {"duration_s": 5}, "tuning": {"governor": {"step_per_tick": 0}}}`, "step_per_tick"},
		{`{"timing": {"duration_s": 5}, "tuning": {"autonomous": {"aim_until_s": 9}}}`, "out of order"},
		{`{"timing": `, "unmarshal"},
	} {
		_, err := ParseScenario([]byte(tc.doc))
		test.That(t, err, test.ShouldNotBeNil)
		test.That(t, err.Error(), test.ShouldContainSubstring, tc.msg)
	}
}

func TestLoadScenarioFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "match.json")
	test.That(t, os.WriteFile(path, []byte(teleopScenario), 0o644), test.ShouldBeNil)

	scen, err := LoadScenario(path)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, scen.Meta.Name, test.ShouldEqual, "practice")

	_, err = LoadScenario(filepath.Join(t.TempDir(), "missing.json"))
	test.That(t, err, test.ShouldNotBeNil)
}

func TestEvalOperator(t *testing.T) {
	scen, err := ParseScenario([]byte(teleopScenario))
	test.That(t, err, test.ShouldBeNil)

	in := EvalOperator(&scen, 1)
	test.That(t, in.Mode, test.ShouldEqual, ModeTeleop)
	test.That(t, in.Drive, test.ShouldResemble, DriveCommand{Left: 0.5, Right: 0.5})
	test.That(t, in.HasTarget, test.ShouldBeFalse)

	in = EvalOperator(&scen, 3)
	test.That(t, in.Fire, test.ShouldBeTrue)
	test.That(t, in.HasTarget, test.ShouldBeTrue)
	test.That(t, in.AngleTarget, test.ShouldEqual, 7.35)
	test.That(t, in.Drive, test.ShouldResemble, Stopped)

	in = EvalOperator(&scen, 6)
	test.That(t, in, test.ShouldResemble, OperatorInput{Mode: ModeTeleop})

	in = EvalOperator(&scen, 19.9)
	test.That(t, in.BeginClimb, test.ShouldBeTrue)
}

func TestDefaultConfigIsValid(t *testing.T) {
	test.That(t, DefaultConfig().Validate(), test.ShouldBeNil)
}
