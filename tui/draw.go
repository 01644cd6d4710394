package tui

import (
	"fmt"
	"image"
	"math"
	"strings"

	ui "github.com/gizak/termui/v3"
	"github.com/gizak/termui/v3/drawille"
	"github.com/lin71008/RollerCoasters/curve"
	"github.com/lin71008/RollerCoasters/scenery"
	"github.com/lin71008/RollerCoasters/session"
	"gonum.org/v1/gonum/spatial/r3"
)

const samplesPerSegment = 20

// view maps the x/z ground plane onto braille dots inside a cell rectangle.
// Canvas points are in dots: two per cell horizontally, four vertically.
type view struct {
	dots   image.Rectangle
	extent float64
}

func newView(inner image.Rectangle, extent float64) view {
	return view{
		dots:   image.Rect(2*inner.Min.X, 4*inner.Min.Y, 2*inner.Max.X, 4*inner.Max.Y),
		extent: extent,
	}
}

// project returns the dot for v and whether it lies inside the view.
func (v view) project(p r3.Vec) (image.Point, bool) {
	w := float64(v.dots.Dx() - 1)
	h := float64(v.dots.Dy() - 1)
	fx := (p.X + v.extent) / (2 * v.extent)
	fz := (p.Z + v.extent) / (2 * v.extent)
	pt := image.Pt(v.dots.Min.X+int(math.Round(fx*w)), v.dots.Min.Y+int(math.Round(fz*h)))
	return pt, pt.In(v.dots)
}

// extentFor is the half-width of ground that shows the whole track and scenery.
func extentFor(snap session.Snapshot) float64 {
	e := snap.Extent
	for _, cp := range snap.Track.Points {
		e = math.Max(e, math.Max(math.Abs(cp.Pos.X), math.Abs(cp.Pos.Z)))
	}
	return e * 1.05
}

func drawScene(c *ui.Canvas, snap session.Snapshot, scene scenery.Scene) {
	c.Canvas = *drawille.NewCanvas()
	v := newView(c.Inner, extentFor(snap))
	point := func(p r3.Vec, color ui.Color) {
		if pt, ok := v.project(p); ok {
			c.SetPoint(pt, color)
		}
	}

	for _, st := range scene.Stones {
		point(st.Pos, ui.ColorWhite)
	}
	for _, tr := range scene.Trees {
		point(tr.Pos, ui.ColorGreen)
	}

	samples, err := curve.Sample(snap.Track.Points, snap.Mode, samplesPerSegment)
	if err == nil {
		for i := range samples {
			a, okA := v.project(samples[i])
			b, okB := v.project(samples[(i+1)%len(samples)])
			if okA && okB {
				c.SetLine(a, b, ui.ColorYellow)
			}
		}
	}
	for i, cp := range snap.Track.Points {
		color := ui.ColorCyan
		if i == snap.Selected {
			color = ui.ColorRed
		}
		point(cp.Pos, color)
	}
	for _, car := range snap.Cars {
		pos, err := curve.Position(snap.Track.Points, snap.Mode, car)
		if err != nil {
			continue
		}
		point(pos, ui.ColorMagenta)
	}
}

func statusText(snap session.Snapshot, lastErr error) string {
	b := new(strings.Builder)
	state := "stopped"
	if snap.Running {
		state = "running"
	}
	fmt.Fprintf(b, "%s  tick %d  mode %s  speed %g  arc %t  physics %t  cars %d\n",
		state, snap.Ticks, snap.Mode, snap.Speed, snap.ArcLength, snap.Physics, snap.CarCount)
	fmt.Fprintf(b, "train %.3f  head (%.1f %.1f %.1f)  applied %.4f (base %.4f physics %.4f)\n",
		snap.Track.TrainParam, snap.Head.Pos.X, snap.Head.Pos.Y, snap.Head.Pos.Z,
		snap.Last.Speed, snap.Last.Base, snap.Last.Physics)
	if snap.Selected >= 0 && snap.Selected < len(snap.Track.Points) {
		fmt.Fprintf(b, "point %d/%d %s", snap.Selected, len(snap.Track.Points), snap.Track.Points[snap.Selected])
	} else {
		fmt.Fprintf(b, "%d points, none selected", len(snap.Track.Points))
	}
	if lastErr != nil {
		fmt.Fprintf(b, "  [error: %s](fg:red)", lastErr)
	}
	return b.String()
}
