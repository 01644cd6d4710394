// Package train moves a train along a track's curve one tick at a time.
package train

import (
	"errors"
	"fmt"
	"math"

	"github.com/lin71008/RollerCoasters/curve"
	"github.com/lin71008/RollerCoasters/track"
	"gonum.org/v1/gonum/spatial/r3"
)

const (
	// SpeedScale converts the user speed setting (0 to 10) into parameter units per tick.
	SpeedScale = 0.1
	// CarWeight scales the gravity contribution of each car.
	CarWeight = 0.01
	Gravity   = -9.8

	MinSpeed = 0.001
	MaxSpeed = 0.300

	// ArcScale converts a per-tick speed into a world-unit distance in arc length mode.
	ArcScale = 75
	// SubSteps is how many samples one unit of parameter is split into when measuring arc length.
	SubSteps = 100

	CarLength = 7.0
	CarGap    = 2.0

	MinCars = 1
	MaxCars = 20
)

var ErrInvalidParams = errors.New("invalid train parameters")

type Params struct {
	Mode curve.Mode
	// Direction is +1 (forward), -1 (backward) or 0 (idle; treated as forward when clamping).
	Direction float64
	// Speed is the user speed setting.
	Speed     float64
	ArcLength bool
	Physics   bool
	// Cars holds the parameter of each car, as returned by PlaceCars.
	Cars []float64
}

type Result struct {
	// Base is the speed from the user setting alone.
	Base float64 `json:"base"`
	// Physics is the averaged gravity term.
	Physics float64 `json:"physics"`
	// Speed is the clamped speed actually applied.
	Speed float64 `json:"speed"`
	// Steps is the number of arc length sub-steps taken.
	Steps int `json:"steps"`
	// Distance is the chord distance covered in arc length mode.
	Distance float64 `json:"distance"`
}

// Advance moves tr.TrainParam by one tick.
func Advance(tr *track.Track, p Params) (Result, error) {
	if err := tr.Check(); err != nil {
		return Result{}, err
	}
	if !finite(p.Speed) || !finite(p.Direction) {
		return Result{}, fmt.Errorf("%w: speed %g, direction %g", ErrInvalidParams, p.Speed, p.Direction)
	}
	if !finite(tr.TrainParam) {
		return Result{}, fmt.Errorf("%w: train parameter %g", track.ErrInvalidTrackState, tr.TrainParam)
	}
	n := tr.Len()
	var res Result
	res.Base = p.Direction * p.Speed * SpeedScale

	if p.Physics && len(p.Cars) > 0 {
		for _, c := range p.Cars {
			f, err := curve.Evaluate(tr.Points, p.Mode, c, curve.WantTangent|curve.WantUp)
			if err != nil {
				return Result{}, err
			}
			res.Physics += CarWeight * f.Tangent.Y * f.Up.Y * Gravity
		}
		res.Physics /= float64(len(p.Cars))
	}

	res.Speed = clamp(math.Mod(res.Base+res.Physics, float64(n)), p.Direction)

	if p.ArcLength {
		t, steps, dist, err := walk(tr.Points, p.Mode, tr.TrainParam, res.Speed)
		if err != nil {
			return Result{}, err
		}
		tr.TrainParam = t
		res.Steps = steps
		res.Distance = dist
	} else {
		tr.TrainParam += res.Speed
	}
	tr.TrainParam = track.Wrap(tr.TrainParam, n)
	return res, nil
}

func finite(x float64) bool { return !math.IsNaN(x) && !math.IsInf(x, 0) }

func clamp(s, direction float64) float64 {
	sign := 1.0
	if direction < 0 {
		sign = -1
	}
	switch a := math.Abs(s); {
	case a < MinSpeed:
		return MinSpeed * sign
	case a > MaxSpeed:
		return MaxSpeed * sign
	default:
		return s
	}
}

// walk steps from t in the direction of s until the covered chord distance
// exceeds |s|*ArcScale, or the whole loop has been traversed.
func walk(points []track.ControlPoint, mode curve.Mode, t, s float64) (float64, int, float64, error) {
	step := 1.0 / SubSteps
	if s < 0 {
		step = -step
	}
	target := math.Abs(s) * ArcScale
	limit := len(points) * SubSteps
	prev, err := curve.Position(points, mode, t)
	if err != nil {
		return 0, 0, 0, err
	}
	var l float64
	steps := 0
	for ; l <= target && steps < limit; steps++ {
		t += step
		cur, err := curve.Position(points, mode, t)
		if err != nil {
			return 0, 0, 0, err
		}
		l += r3.Norm(r3.Sub(cur, prev))
		prev = cur
	}
	return t, steps, l, nil
}
