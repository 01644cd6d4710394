package tui

import (
	"errors"
	"image"
	"math"
	"strings"
	"testing"

	ui "github.com/gizak/termui/v3"
	"github.com/google/go-cmp/cmp"
	"github.com/lin71008/RollerCoasters/curve"
	"github.com/lin71008/RollerCoasters/profile"
	"github.com/lin71008/RollerCoasters/session"
	"github.com/lin71008/RollerCoasters/track"
	"github.com/lin71008/RollerCoasters/train"
	"gonum.org/v1/gonum/spatial/r3"
)

func snapshot() session.Snapshot {
	return session.Snapshot{
		Track:    *track.New(),
		Mode:     curve.CardinalCubic,
		Speed:    2,
		CarCount: 1,
		Selected: session.NoSelection,
		Extent:   100,
	}
}

func TestKeyCommand(t *testing.T) {
	snap := snapshot()
	last := snapshot()
	last.Selected = 3
	running := snapshot()
	running.Running = true
	bspline := snapshot()
	bspline.Mode = curve.BSpline

	cases := []struct {
		name string
		id   string
		snap session.Snapshot
		want session.Command
	}{
		{"start", "<Space>", snap, session.SetRunning{On: true}},
		{"stop", "<Space>", running, session.SetRunning{On: false}},
		{"next from none", "]", snap, session.Select{Index: 0}},
		{"next wraps", "]", last, session.Select{Index: 0}},
		{"previous from none", "[", snap, session.Select{Index: 3}},
		{"previous", "[", last, session.Select{Index: 2}},
		{"deselect", "<Escape>", last, session.Select{Index: session.NoSelection}},
		{"mode", "m", snap, session.SetMode{Mode: curve.BSpline}},
		{"mode wraps", "m", bspline, session.SetMode{Mode: curve.Linear}},
		{"faster", "+", snap, session.SetSpeed{Speed: 3}},
		{"slower", "-", snap, session.SetSpeed{Speed: 1}},
		{"arc length", "l", snap, session.SetArcLength{On: true}},
		{"physics", "p", snap, session.SetPhysics{On: true}},
		{"step", "<Left>", snap, session.Step{Direction: -1}},
		{"lower", "<Down>", snap, session.MovePoint{Axis: track.AxisY, Delta: -moveStep}},
		{"roll", "O", snap, session.RotatePoint{Axis: track.AxisZ, Degrees: -rotateStep}},
		{"save", "s", snap, session.SaveTrack{}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got, ok := keyCommand(c.id, c.snap)
			if !ok {
				t.Fatalf("%q not mapped", c.id)
			}
			if diff := cmp.Diff(c.want, got); diff != "" {
				t.Fatalf("(-want +got)\n%s", diff)
			}
		})
	}
	if _, ok := keyCommand("<F12>", snap); ok {
		t.Fatalf("unbound key mapped")
	}
	empty := snapshot()
	empty.Track.Points = nil
	if _, ok := keyCommand("]", empty); ok {
		t.Fatalf("select mapped on an empty track")
	}
}

func TestProject(t *testing.T) {
	v := newView(image.Rect(1, 1, 11, 6), 10)
	if diff := cmp.Diff(image.Rect(2, 4, 22, 24), v.dots); diff != "" {
		t.Fatalf("dots (-want +got)\n%s", diff)
	}
	cases := []struct {
		p    r3.Vec
		want image.Point
		in   bool
	}{
		{r3.Vec{X: -10, Z: -10}, image.Pt(2, 4), true},
		{r3.Vec{X: 10, Z: 10}, image.Pt(21, 23), true},
		{r3.Vec{X: 0, Y: 50, Z: 0}, image.Pt(12, 14), true},
		{r3.Vec{X: 20}, image.Pt(31, 14), false},
	}
	for _, c := range cases {
		got, in := v.project(c.p)
		if got != c.want || in != c.in {
			t.Errorf("project(%v) = %v, %t; want %v, %t", c.p, got, in, c.want, c.in)
		}
	}
}

func TestExtentFor(t *testing.T) {
	snap := snapshot()
	if got := extentFor(snap); math.Abs(got-105) > 1e-9 {
		t.Fatalf("extent %g", got)
	}
	snap.Track.Points[2].Pos = r3.Vec{X: -200, Z: 10}
	if got := extentFor(snap); math.Abs(got-210) > 1e-9 {
		t.Fatalf("extent %g", got)
	}
}

func TestStatusText(t *testing.T) {
	snap := snapshot()
	got := statusText(snap, nil)
	if !strings.Contains(got, "stopped") || !strings.Contains(got, "none selected") {
		t.Fatalf("status:\n%s", got)
	}
	snap.Running = true
	snap.Selected = 1
	got = statusText(snap, errors.New("boom"))
	for _, want := range []string{"running", "point 1/4", "error: boom"} {
		if !strings.Contains(got, want) {
			t.Errorf("status lacks %q:\n%s", want, got)
		}
	}
}

func TestImageView(t *testing.T) {
	samples, err := profile.Lap(*track.New(), train.Params{Mode: curve.CardinalCubic, Direction: 1, Speed: 2}, 30)
	if err != nil {
		t.Fatalf("Lap: %s", err)
	}
	img, err := profile.Image(samples)
	if err != nil {
		t.Fatalf("Image: %s", err)
	}
	v := newImageView("lap", img, 80, 24)
	if v.GetRect() != image.Rect(0, 0, 80, 24) {
		t.Fatalf("rect %v", v.GetRect())
	}
	if !strings.HasPrefix(v.Title, "lap") {
		t.Fatalf("title %q", v.Title)
	}
	buf := ui.NewBuffer(v.GetRect())
	v.Draw(buf)
	if got := buf.GetCell(v.Inner.Min).Style.Bg; got != ui.ColorBlack {
		t.Fatalf("image not drawn: background %v", got)
	}
}
