// Package curve evaluates closed curves through a track's control points.
//
// The parameter t runs over [0, n) for n points; segment i spans [i, i+1)
// and the curve wraps from the last point back to the first.
package curve

import (
	"fmt"
	"math"
	"strings"

	"github.com/lin71008/RollerCoasters/track"
	"gonum.org/v1/gonum/spatial/r3"
)

type Mode int

const (
	Linear Mode = iota
	CardinalCubic
	BSpline
)

var modeNames = [...]string{
	Linear:        "linear",
	CardinalCubic: "cardinal",
	BSpline:       "bspline",
}

func (m Mode) String() string {
	if m < 0 || int(m) >= len(modeNames) {
		return fmt.Sprintf("Mode(%d)", int(m))
	}
	return modeNames[m]
}

func (m Mode) Valid() bool { return m >= Linear && m <= BSpline }

// Next cycles through the modes in declaration order.
func (m Mode) Next() Mode { return (m + 1) % Mode(len(modeNames)) }

func ParseMode(s string) (Mode, error) {
	for i, name := range modeNames {
		if strings.EqualFold(s, name) {
			return Mode(i), nil
		}
	}
	return 0, fmt.Errorf("unknown curve mode %q", s)
}

func (m Mode) MarshalText() ([]byte, error) {
	if !m.Valid() {
		return nil, fmt.Errorf("unknown curve mode %d", int(m))
	}
	return []byte(m.String()), nil
}

func (m *Mode) UnmarshalText(b []byte) error {
	parsed, err := ParseMode(string(b))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// Want selects which parts of a Frame Evaluate computes.
type Want uint8

const (
	WantPosition Want = 1 << iota
	WantTangent
	WantUp
	WantAll = WantPosition | WantTangent | WantUp
)

type Frame struct {
	Pos r3.Vec `json:"pos"`
	// Tangent is unit length, or zero where the curve does not move.
	Tangent r3.Vec `json:"tangent"`
	// Up is unit length, or zero where the orientations cancel out.
	Up r3.Vec `json:"up"`
}

// Evaluate returns the parts of the curve's frame at t selected by want.
// t may be any finite number; it is reduced modulo len(points).
func Evaluate(points []track.ControlPoint, mode Mode, t float64, want Want) (Frame, error) {
	if err := track.CheckPoints(points); err != nil {
		return Frame{}, err
	}
	if !mode.Valid() {
		return Frame{}, fmt.Errorf("unknown curve mode %d", int(mode))
	}
	if math.IsNaN(t) || math.IsInf(t, 0) {
		return Frame{}, fmt.Errorf("%w: parameter %g", track.ErrInvalidTrackState, t)
	}
	n := len(points)
	t = track.Wrap(t, n)
	i := int(math.Floor(t))
	p := t - float64(i)
	var g [4]track.ControlPoint
	for k := range g {
		g[k] = points[(i-1+k+n)%n]
	}

	var f Frame
	if mode == Linear {
		if want&WantPosition != 0 {
			f.Pos = lerp(g[1].Pos, g[2].Pos, p)
		}
		if want&WantTangent != 0 {
			f.Tangent = normalize(r3.Sub(g[2].Pos, g[1].Pos))
		}
		if want&WantUp != 0 {
			f.Up = normalize(lerp(g[1].Orient, g[2].Orient, p))
		}
		return f, nil
	}

	if want&(WantPosition|WantUp) != 0 {
		w := weights(mode, powers(p))
		if want&WantPosition != 0 {
			f.Pos = combine(w, g, func(cp track.ControlPoint) r3.Vec { return cp.Pos })
		}
		if want&WantUp != 0 {
			f.Up = normalize(combine(w, g, func(cp track.ControlPoint) r3.Vec { return cp.Orient }))
		}
	}
	if want&WantTangent != 0 {
		w := weights(mode, dpowers(p))
		f.Tangent = normalize(combine(w, g, func(cp track.ControlPoint) r3.Vec { return cp.Pos }))
	}
	return f, nil
}

// Position is shorthand for the position part of Evaluate.
func Position(points []track.ControlPoint, mode Mode, t float64) (r3.Vec, error) {
	f, err := Evaluate(points, mode, t, WantPosition)
	return f.Pos, err
}

func combine(w [4]float64, g [4]track.ControlPoint, field func(track.ControlPoint) r3.Vec) r3.Vec {
	var v r3.Vec
	for k := range g {
		v = r3.Add(v, r3.Scale(w[k], field(g[k])))
	}
	return v
}

func lerp(a, b r3.Vec, p float64) r3.Vec {
	return r3.Add(r3.Scale(1-p, a), r3.Scale(p, b))
}

func normalize(v r3.Vec) r3.Vec {
	l := r3.Norm(v)
	if l == 0 {
		return r3.Vec{}
	}
	return r3.Scale(1/l, v)
}
