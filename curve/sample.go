package curve

import (
	"fmt"

	"github.com/lin71008/RollerCoasters/track"
	"gonum.org/v1/gonum/spatial/r3"
)

// SegmentLength approximates the arc length between t0 and t1 by summing
// the chords of steps equal parameter steps. t1 may be less than t0.
func SegmentLength(points []track.ControlPoint, mode Mode, t0, t1 float64, steps int) (float64, error) {
	if steps < 1 {
		return 0, fmt.Errorf("steps must be positive, got %d", steps)
	}
	prev, err := Position(points, mode, t0)
	if err != nil {
		return 0, err
	}
	var l float64
	dt := (t1 - t0) / float64(steps)
	for k := 1; k <= steps; k++ {
		cur, err := Position(points, mode, t0+dt*float64(k))
		if err != nil {
			return 0, err
		}
		l += r3.Norm(r3.Sub(cur, prev))
		prev = cur
	}
	return l, nil
}

// Sample tessellates the whole loop into perSegment positions per segment.
// The first position is not repeated at the end.
func Sample(points []track.ControlPoint, mode Mode, perSegment int) ([]r3.Vec, error) {
	if perSegment < 1 {
		return nil, fmt.Errorf("perSegment must be positive, got %d", perSegment)
	}
	if err := track.CheckPoints(points); err != nil {
		return nil, err
	}
	total := len(points) * perSegment
	res := make([]r3.Vec, total)
	for k := range res {
		pos, err := Position(points, mode, float64(k)/float64(perSegment))
		if err != nil {
			return nil, err
		}
		res[k] = pos
	}
	return res, nil
}
