package track

import (
	"fmt"
	"math"
	"strings"

	"golang.org/x/exp/slices"
	"gonum.org/v1/gonum/spatial/r3"
)

type Axis int

const (
	AxisX Axis = iota
	AxisY
	AxisZ
)

func (a Axis) String() string {
	switch a {
	case AxisX:
		return "x"
	case AxisY:
		return "y"
	case AxisZ:
		return "z"
	default:
		return fmt.Sprintf("Axis(%d)", int(a))
	}
}

func (a Axis) Unit() r3.Vec {
	switch a {
	case AxisX:
		return r3.Vec{X: 1}
	case AxisY:
		return r3.Vec{Y: 1}
	case AxisZ:
		return r3.Vec{Z: 1}
	default:
		panic(fmt.Sprintf("unknown axis %d", int(a)))
	}
}

func ParseAxis(s string) (Axis, error) {
	switch strings.ToLower(s) {
	case "x":
		return AxisX, nil
	case "y":
		return AxisY, nil
	case "z":
		return AxisZ, nil
	}
	return 0, fmt.Errorf("unknown axis %q", s)
}

func (a Axis) MarshalText() ([]byte, error) {
	if a < AxisX || a > AxisZ {
		return nil, fmt.Errorf("unknown axis %d", int(a))
	}
	return []byte(a.String()), nil
}

func (a *Axis) UnmarshalText(b []byte) error {
	parsed, err := ParseAxis(string(b))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// Insert adds a point at idx (0 <= idx <= len), halfway between the point
// before idx (circularly) and the point currently at idx.
// A train on or after idx is shifted by one so it stays on the same segment.
func (t *Track) Insert(idx int) error {
	n := len(t.Points)
	if n == 0 {
		return fmt.Errorf("%w: insert into empty track", ErrInvalidTrackState)
	}
	if idx < 0 || idx > n {
		return fmt.Errorf("%w: insert at %d (have %d points)", ErrIndexOutOfRange, idx, n)
	}
	prev := t.Points[(idx-1+n)%n]
	next := t.Points[idx%n]
	cp := NewControlPoint(r3.Scale(0.5, r3.Add(prev.Pos, next.Pos)))
	t.Points = slices.Insert(t.Points, idx, cp)
	if int(math.Floor(t.TrainParam)) >= idx {
		t.TrainParam += 1
	}
	t.normalize()
	return nil
}

// Delete removes the point at idx, or the last point if idx is negative.
// Tracks at MinPoints are left alone and Delete reports false.
//
// TrainParam is only wrapped back into range: a train past the removed point
// ends up one segment further along. Insert compensates for this, Delete
// does not.
func (t *Track) Delete(idx int) (deleted bool, err error) {
	n := len(t.Points)
	if idx >= n {
		return false, fmt.Errorf("%w: delete %d (have %d points)", ErrIndexOutOfRange, idx, n)
	}
	if n <= MinPoints {
		return false, nil
	}
	if idx < 0 {
		idx = n - 1
	}
	t.Points = slices.Delete(t.Points, idx, idx+1)
	t.normalize()
	return true, nil
}

// Move translates the position of point idx along axis.
func (t *Track) Move(idx int, axis Axis, delta float64) error {
	if err := t.checkIndex(idx); err != nil {
		return err
	}
	t.Points[idx].Pos = r3.Add(t.Points[idx].Pos, r3.Scale(delta, axis.Unit()))
	return nil
}

// Rotate turns the orientation of point idx about axis (right-handed).
func (t *Track) Rotate(idx int, axis Axis, degrees float64) error {
	if err := t.checkIndex(idx); err != nil {
		return err
	}
	t.Points[idx].Orient = r3.Rotate(t.Points[idx].Orient, degrees*math.Pi/180, axis.Unit())
	return nil
}
