package track

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// MinPoints is the smallest number of points a track can be evaluated with.
// Cubic bases look at four neighbouring points.
const MinPoints = 4

var ErrInvalidTrackState = errors.New("invalid track state")

var ErrIndexOutOfRange = errors.New("point index out of range")

// Up is the orientation given to points that are created without one.
var Up = r3.Vec{Y: 1}

type ControlPoint struct {
	Pos r3.Vec `json:"pos"`
	// Orient is the "up" direction at this point.
	// It is interpolated like a position, so it does not have to be a unit vector.
	Orient r3.Vec `json:"orient"`
}

func NewControlPoint(pos r3.Vec) ControlPoint {
	return ControlPoint{Pos: pos, Orient: Up}
}

func (cp ControlPoint) String() string {
	return fmt.Sprintf("(%g %g %g) (%g %g %g)", cp.Pos.X, cp.Pos.Y, cp.Pos.Z, cp.Orient.X, cp.Orient.Y, cp.Orient.Z)
}

// Track is a closed loop of control points plus the train on it.
type Track struct {
	// Points is circular: the point after the last one is Points[0].
	Points []ControlPoint `json:"points"`
	// TrainParam is the train's position as pointIndex + fraction.
	// It is kept in [0, len(Points)) after every mutation.
	TrainParam float64 `json:"train-param"`
}

// New returns a track with the default ring of points.
func New() *Track {
	t := new(Track)
	t.Reset()
	return t
}

// DefaultPoints returns the ring every new (or reset) track starts with.
func DefaultPoints() []ControlPoint {
	return []ControlPoint{
		NewControlPoint(r3.Vec{X: 50, Y: 5, Z: 0}),
		NewControlPoint(r3.Vec{X: 0, Y: 5, Z: 50}),
		NewControlPoint(r3.Vec{X: -50, Y: 5, Z: 0}),
		NewControlPoint(r3.Vec{X: 0, Y: 5, Z: -50}),
	}
}

func (t *Track) Reset() {
	t.Points = DefaultPoints()
	t.TrainParam = 0
}

func (t *Track) Len() int { return len(t.Points) }

// Check returns ErrInvalidTrackState if the track is too short to evaluate.
func (t *Track) Check() error {
	return CheckPoints(t.Points)
}

func CheckPoints(points []ControlPoint) error {
	if len(points) < MinPoints {
		return fmt.Errorf("%w: %d points (need at least %d)", ErrInvalidTrackState, len(points), MinPoints)
	}
	return nil
}

// Replace swaps in a whole new point sequence (e.g. a loaded track).
func (t *Track) Replace(points []ControlPoint) error {
	if err := CheckPoints(points); err != nil {
		return err
	}
	t.Points = append([]ControlPoint(nil), points...)
	t.normalize()
	return nil
}

func (t *Track) Clone() Track {
	return Track{
		Points:     append([]ControlPoint(nil), t.Points...),
		TrainParam: t.TrainParam,
	}
}

// Wrap reduces x into [0, n).
func Wrap(x float64, n int) float64 {
	if n <= 0 {
		return 0
	}
	fn := float64(n)
	r := math.Mod(x, fn)
	if r < 0 {
		r += fn
	}
	// -1e-18 + n rounds to n
	if r >= fn {
		r = 0
	}
	return r
}

func (t *Track) normalize() {
	t.TrainParam = Wrap(t.TrainParam, len(t.Points))
}

func (t *Track) checkIndex(idx int) error {
	if idx < 0 || idx >= len(t.Points) {
		return fmt.Errorf("%w: %d (have %d points)", ErrIndexOutOfRange, idx, len(t.Points))
	}
	return nil
}
