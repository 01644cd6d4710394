package train

import (
	"fmt"

	"github.com/lin71008/RollerCoasters/curve"
	"github.com/lin71008/RollerCoasters/track"
	"gonum.org/v1/gonum/spatial/r3"
)

// ClampCars bounds a car count to [MinCars, MaxCars].
func ClampCars(count int) int {
	switch {
	case count < MinCars:
		return MinCars
	case count > MaxCars:
		return MaxCars
	default:
		return count
	}
}

// PlaceCars returns the parameter of each car, the first one at head and
// the rest behind it spaced CarLength+CarGap apart along the curve.
// Fewer than count cars are returned if the loop is too short to fit them.
func PlaceCars(points []track.ControlPoint, mode curve.Mode, head float64, count int) ([]float64, error) {
	if count < MinCars || count > MaxCars {
		return nil, fmt.Errorf("car count %d out of range [%d, %d]", count, MinCars, MaxCars)
	}
	if err := track.CheckPoints(points); err != nil {
		return nil, err
	}
	n := len(points)
	cars := make([]float64, 0, count)
	t := head
	pos, err := curve.Position(points, mode, t)
	if err != nil {
		return nil, err
	}
	var l float64
	for step := 0; len(cars) < count && step < n*SubSteps; step++ {
		if l >= 0 {
			cars = append(cars, track.Wrap(t, n))
			l -= CarLength + CarGap
		}
		t -= 1.0 / SubSteps
		next, err := curve.Position(points, mode, t)
		if err != nil {
			return nil, err
		}
		l += r3.Norm(r3.Sub(next, pos))
		pos = next
	}
	return cars, nil
}
