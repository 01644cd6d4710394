// Package profile simulates a train around a track and charts how its
// elevation and speed change over a run.
package profile

import (
	"errors"
	"fmt"
	"image"
	"io"
	"math"

	"github.com/lin71008/RollerCoasters/curve"
	"github.com/lin71008/RollerCoasters/track"
	"github.com/lin71008/RollerCoasters/train"
	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/spatial/r3"
)

type Sample struct {
	Tick int `json:"tick"`
	// Param is the train parameter after the tick.
	Param     float64 `json:"param"`
	Elevation float64 `json:"elevation"`
	// Speed is the clamped speed applied during the tick.
	Speed   float64 `json:"speed"`
	Physics float64 `json:"physics"`
	// Distance is the straight-line distance the head moved during the tick.
	Distance float64 `json:"distance"`
}

// Lap runs ticks train advances on a copy of tr. Cars are re-placed after
// every tick, keeping the number of cars in p.Cars (at least one).
func Lap(tr track.Track, p train.Params, ticks int) ([]Sample, error) {
	if ticks < 1 {
		return nil, fmt.Errorf("ticks must be positive, got %d", ticks)
	}
	sim := tr.Clone()
	if err := sim.Check(); err != nil {
		return nil, err
	}
	count := train.ClampCars(len(p.Cars))
	cars, err := train.PlaceCars(sim.Points, p.Mode, sim.TrainParam, count)
	if err != nil {
		return nil, err
	}
	prev, err := curve.Position(sim.Points, p.Mode, sim.TrainParam)
	if err != nil {
		return nil, err
	}
	samples := make([]Sample, 0, ticks)
	for i := 0; i < ticks; i++ {
		p.Cars = cars
		res, err := train.Advance(&sim, p)
		if err != nil {
			return nil, fmt.Errorf("tick %d: %w", i, err)
		}
		pos, err := curve.Position(sim.Points, p.Mode, sim.TrainParam)
		if err != nil {
			return nil, err
		}
		samples = append(samples, Sample{
			Tick:      i,
			Param:     sim.TrainParam,
			Elevation: pos.Y,
			Speed:     res.Speed,
			Physics:   res.Physics,
			Distance:  r3.Norm(r3.Sub(pos, prev)),
		})
		prev = pos
		cars, err = train.PlaceCars(sim.Points, p.Mode, sim.TrainParam, count)
		if err != nil {
			return nil, err
		}
	}
	zap.S().Debugf("profile: simulated %d ticks, ended at %g", ticks, sim.TrainParam)
	return samples, nil
}

func build(samples []Sample) (chart.Chart, error) {
	if len(samples) < 2 {
		return chart.Chart{}, errors.New("need at least two samples to chart")
	}
	ticks := make([]float64, len(samples))
	elevation := make([]float64, len(samples))
	distance := make([]float64, len(samples))
	for i, s := range samples {
		ticks[i] = float64(s.Tick)
		elevation[i] = s.Elevation
		distance[i] = s.Distance
	}
	degree := 3
	if len(samples) <= degree {
		degree = len(samples) - 1
	}
	byElevation := func(xr, yr chart.Range, index int, x, y float64) drawing.Color {
		return chart.Viridis(y, yr.GetMin(), yr.GetMax())
	}
	speed := chart.ContinuousSeries{
		Name: "distance per tick",
		Style: chart.Style{
			StrokeColor: drawing.ColorFromHex("1f77b4"),
		},
		YAxis:   chart.YAxisSecondary,
		XValues: ticks,
		YValues: distance,
	}
	graph := chart.Chart{
		Title:  "lap profile",
		Height: 400,
		Width:  1000,
		XAxis:  chart.XAxis{Name: "tick"},
		YAxis: chart.YAxis{
			Name:  "elevation",
			Range: padded(elevation),
		},
		YAxisSecondary: chart.YAxis{
			Name:  "distance",
			Range: padded(distance),
		},
		Series: []chart.Series{
			chart.ContinuousSeries{
				Name: "elevation",
				Style: chart.Style{
					StrokeWidth:      chart.Disabled,
					DotWidth:         3,
					DotColorProvider: byElevation,
				},
				XValues: ticks,
				YValues: elevation,
			},
			speed,
			&chart.PolynomialRegressionSeries{
				Name: "distance trend",
				Style: chart.Style{
					StrokeColor:     drawing.ColorFromHex("d62728"),
					StrokeDashArray: []float64{5, 5},
				},
				YAxis:       chart.YAxisSecondary,
				Degree:      degree,
				InnerSeries: speed,
			},
		},
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}
	return graph, nil
}

// padded returns a fixed range around (nearly) constant values, which the
// chart cannot scale on its own, and nil otherwise.
func padded(values []float64) chart.Range {
	lo, hi := values[0], values[0]
	for _, v := range values {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	if hi-lo > 1e-6*math.Max(1, math.Abs(hi)) {
		return nil
	}
	return &chart.ContinuousRange{Min: lo - 1, Max: hi + 1}
}

// Render writes a PNG chart of samples to w.
func Render(samples []Sample, w io.Writer) error {
	graph, err := build(samples)
	if err != nil {
		return err
	}
	return graph.Render(chart.PNG, w)
}

// Image renders the same chart as Render into an image.
func Image(samples []Sample) (image.Image, error) {
	graph, err := build(samples)
	if err != nil {
		return nil, err
	}
	collector := &chart.ImageWriter{}
	if err := graph.Render(chart.PNG, collector); err != nil {
		return nil, err
	}
	return collector.Image()
}
