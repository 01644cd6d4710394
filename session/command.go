package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/lin71008/RollerCoasters/config"
	"github.com/lin71008/RollerCoasters/curve"
	"github.com/lin71008/RollerCoasters/track"
	"github.com/lin71008/RollerCoasters/train"
	"go.uber.org/zap"
)

var ErrUnknownCommand = errors.New("unknown command")

// Command is one edit or control action on a session.
type Command interface {
	fmt.Stringer
	apply(s *Session) error
}

// AddPoint inserts a point before the selected one, or at the start if none is selected.
type AddPoint struct{}

func (AddPoint) String() string { return "add-point" }

func (AddPoint) apply(s *Session) error {
	idx := 0
	if s.Selected >= 0 {
		idx = s.Selected
	}
	return s.Track.Insert(idx)
}

// DeletePoint removes the selected point, or the last one if none is selected.
// It does nothing on a track with track.MinPoints points.
type DeletePoint struct{}

func (DeletePoint) String() string { return "delete-point" }

func (DeletePoint) apply(s *Session) error {
	idx := -1
	if s.Selected >= 0 {
		idx = s.Selected
	}
	deleted, err := s.Track.Delete(idx)
	if err != nil {
		return err
	}
	if !deleted {
		zap.S().Infof("session %s: not deleting below %d points", s.ID, track.MinPoints)
	}
	return nil
}

// Select selects a point; NoSelection clears the selection.
type Select struct {
	Index int `json:"index"`
}

func (c Select) String() string { return fmt.Sprintf("select %d", c.Index) }

func (c Select) apply(s *Session) error {
	if c.Index != NoSelection && (c.Index < 0 || c.Index >= s.Track.Len()) {
		return fmt.Errorf("%w: select %d (have %d points)", track.ErrIndexOutOfRange, c.Index, s.Track.Len())
	}
	s.Selected = c.Index
	return nil
}

type MovePoint struct {
	Axis  track.Axis `json:"axis"`
	Delta float64    `json:"delta"`
}

func (c MovePoint) String() string { return fmt.Sprintf("move-point %s %+g", c.Axis, c.Delta) }

func (c MovePoint) apply(s *Session) error {
	if s.Selected < 0 {
		return ErrNoSelection
	}
	return s.Track.Move(s.Selected, c.Axis, c.Delta)
}

type RotatePoint struct {
	Axis    track.Axis `json:"axis"`
	Degrees float64    `json:"degrees"`
}

func (c RotatePoint) String() string { return fmt.Sprintf("rotate-point %s %+g", c.Axis, c.Degrees) }

func (c RotatePoint) apply(s *Session) error {
	if s.Selected < 0 {
		return ErrNoSelection
	}
	return s.Track.Rotate(s.Selected, c.Axis, c.Degrees)
}

type SetMode struct {
	Mode curve.Mode `json:"mode"`
}

func (c SetMode) String() string { return fmt.Sprintf("set-mode %s", c.Mode) }

func (c SetMode) apply(s *Session) error {
	if !c.Mode.Valid() {
		return fmt.Errorf("unknown curve mode %d", int(c.Mode))
	}
	s.Mode = c.Mode
	return nil
}

// SetSpeed sets the speed setting, clamped to [0, config.MaxSpeed].
type SetSpeed struct {
	Speed float64 `json:"speed"`
}

func (c SetSpeed) String() string { return fmt.Sprintf("set-speed %g", c.Speed) }

func (c SetSpeed) apply(s *Session) error {
	if math.IsNaN(c.Speed) {
		return errors.New("speed is NaN")
	}
	s.Speed = math.Max(0, math.Min(config.MaxSpeed, c.Speed))
	return nil
}

type SetArcLength struct {
	On bool `json:"on"`
}

func (c SetArcLength) String() string { return fmt.Sprintf("set-arc-length %t", c.On) }

func (c SetArcLength) apply(s *Session) error {
	s.ArcLength = c.On
	return nil
}

type SetPhysics struct {
	On bool `json:"on"`
}

func (c SetPhysics) String() string { return fmt.Sprintf("set-physics %t", c.On) }

func (c SetPhysics) apply(s *Session) error {
	s.Physics = c.On
	return nil
}

type SetRunning struct {
	On bool `json:"on"`
}

func (c SetRunning) String() string { return fmt.Sprintf("set-running %t", c.On) }

func (c SetRunning) apply(s *Session) error {
	s.Running = c.On
	return nil
}

// Step advances the train once, whether or not the session is running.
type Step struct {
	// Direction is 1 (forward), -1 (backward) or 0.
	Direction float64 `json:"direction"`
}

func (c Step) String() string { return fmt.Sprintf("step %+g", c.Direction) }

func (c Step) apply(s *Session) error {
	switch c.Direction {
	case -1, 0, 1:
	default:
		return fmt.Errorf("step direction must be -1, 0 or 1, got %g", c.Direction)
	}
	return s.advance(c.Direction)
}

type AddCar struct{}

func (AddCar) String() string { return "add-car" }

func (AddCar) apply(s *Session) error {
	s.CarCount = train.ClampCars(s.CarCount + 1)
	return nil
}

type RemoveCar struct{}

func (RemoveCar) String() string { return "remove-car" }

func (RemoveCar) apply(s *Session) error {
	s.CarCount = train.ClampCars(s.CarCount - 1)
	return nil
}

// Reset restores the default track and clears the selection.
type Reset struct{}

func (Reset) String() string { return "reset" }

func (Reset) apply(s *Session) error {
	s.Track.Reset()
	s.Selected = NoSelection
	return nil
}

// Reseed changes the scenery seed. A zero Seed picks one from the clock.
type Reseed struct {
	Seed int64 `json:"seed"`
}

func (c Reseed) String() string { return fmt.Sprintf("reseed %d", c.Seed) }

func (c Reseed) apply(s *Session) error {
	seed := c.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	s.Seed = seed
	return nil
}

// SaveTrack stores the current track under ID, or under the session ID if ID is nil.
type SaveTrack struct {
	ID uuid.UUID `json:"id"`
}

func (c SaveTrack) String() string { return fmt.Sprintf("save-track %s", c.ID) }

func (c SaveTrack) apply(s *Session) error {
	if s.store == nil {
		return ErrNoStore
	}
	id := c.ID
	if id == uuid.Nil {
		id = s.ID
	}
	return s.store.Save(id, s.Track.Clone())
}

// LoadTrack replaces the whole track with a stored one.
type LoadTrack struct {
	ID uuid.UUID `json:"id"`
}

func (c LoadTrack) String() string { return fmt.Sprintf("load-track %s", c.ID) }

func (c LoadTrack) apply(s *Session) error {
	if s.store == nil {
		return ErrNoStore
	}
	tr, err := s.store.Load(c.ID)
	if err != nil {
		return err
	}
	if err := s.Track.Replace(tr.Points); err != nil {
		return err
	}
	s.Track.TrainParam = track.Wrap(tr.TrainParam, s.Track.Len())
	s.Selected = NoSelection
	return nil
}

var commandTypes = map[string]func() Command{
	"add-point":      func() Command { return new(AddPoint) },
	"delete-point":   func() Command { return new(DeletePoint) },
	"select":         func() Command { return new(Select) },
	"move-point":     func() Command { return new(MovePoint) },
	"rotate-point":   func() Command { return new(RotatePoint) },
	"set-mode":       func() Command { return new(SetMode) },
	"set-speed":      func() Command { return new(SetSpeed) },
	"set-arc-length": func() Command { return new(SetArcLength) },
	"set-physics":    func() Command { return new(SetPhysics) },
	"set-running":    func() Command { return new(SetRunning) },
	"step":           func() Command { return new(Step) },
	"add-car":        func() Command { return new(AddCar) },
	"remove-car":     func() Command { return new(RemoveCar) },
	"reset":          func() Command { return new(Reset) },
	"reseed":         func() Command { return new(Reseed) },
	"save-track":     func() Command { return new(SaveTrack) },
	"load-track":     func() Command { return new(LoadTrack) },
}

// ParseCommand decodes a JSON command such as {"type": "move-point", "axis": "y", "delta": 1}.
func ParseCommand(data []byte) (Command, error) {
	var envelope struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, fmt.Errorf("parse command: %w", err)
	}
	newCmd, ok := commandTypes[envelope.Type]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCommand, envelope.Type)
	}
	cmd := newCmd()
	if err := json.Unmarshal(data, cmd); err != nil {
		return nil, fmt.Errorf("parse %s command: %w", envelope.Type, err)
	}
	return cmd, nil
}
