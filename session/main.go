// Package session owns one editable track and the train running on it.
//
// A Session is not safe for concurrent use. Run drives it from a single
// goroutine; other goroutines send Requests and read published Snapshots.
package session

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/lin71008/RollerCoasters/config"
	"github.com/lin71008/RollerCoasters/curve"
	"github.com/lin71008/RollerCoasters/notify"
	"github.com/lin71008/RollerCoasters/store"
	"github.com/lin71008/RollerCoasters/track"
	"github.com/lin71008/RollerCoasters/train"
	"go.uber.org/zap"
)

var (
	ErrNoSelection = errors.New("no point selected")
	ErrNoStore     = errors.New("no track store configured")
)

// NoSelection is the Selected value when no point is selected.
const NoSelection = -1

type Session struct {
	ID        uuid.UUID
	Track     track.Track
	Mode      curve.Mode
	Speed     float64
	ArcLength bool
	Physics   bool
	CarCount  int
	Running   bool
	Selected  int
	Seed      int64
	Ticks     uint64

	cars []float64
	last train.Result

	conf  config.Config
	store *store.Store
	snaps *notify.Multiplexer[Snapshot]
}

// New creates a session with the default track and the settings in conf.
// st and snaps may be nil.
func New(conf config.Config, st *store.Store, snaps *notify.Multiplexer[Snapshot]) *Session {
	s := &Session{
		ID:        uuid.New(),
		Track:     *track.New(),
		Mode:      conf.Mode,
		Speed:     conf.Speed,
		ArcLength: conf.ArcLength,
		Physics:   conf.Physics,
		CarCount:  train.ClampCars(conf.Cars),
		Selected:  NoSelection,
		Seed:      conf.Seed,
		conf:      conf,
		store:     st,
		snaps:     snaps,
	}
	s.placeCars()
	return s
}

// Apply runs one command against the session and publishes the result.
// A failed command leaves the session unchanged.
func (s *Session) Apply(cmd Command) error {
	zap.S().Debugf("session %s: %s", s.ID, cmd)
	if err := cmd.apply(s); err != nil {
		return err
	}
	if s.Selected >= s.Track.Len() {
		s.Selected = 0
	}
	s.placeCars()
	s.publish()
	return nil
}

// Tick advances the train by one step if the session is running.
func (s *Session) Tick() error {
	if !s.Running {
		return nil
	}
	if err := s.advance(1); err != nil {
		return err
	}
	s.publish()
	return nil
}

func (s *Session) advance(direction float64) error {
	res, err := train.Advance(&s.Track, s.params(direction))
	if err != nil {
		return err
	}
	s.last = res
	s.Ticks++
	s.placeCars()
	return nil
}

func (s *Session) params(direction float64) train.Params {
	return train.Params{
		Mode:      s.Mode,
		Direction: direction,
		Speed:     s.Speed,
		ArcLength: s.ArcLength,
		Physics:   s.Physics,
		Cars:      s.cars,
	}
}

func (s *Session) placeCars() {
	cars, err := train.PlaceCars(s.Track.Points, s.Mode, s.Track.TrainParam, s.CarCount)
	if err != nil {
		zap.S().Warnf("session %s: place cars: %s", s.ID, err)
		s.cars = nil
		return
	}
	s.cars = cars
}

func (s *Session) publish() {
	if s.snaps == nil {
		return
	}
	s.snaps.Send(s.Snapshot())
}

// Request is a command sent to a running session.
// Reply, if not nil, receives the result of applying Command and should be buffered.
type Request struct {
	Command Command
	Reply   chan<- error
}

// Run applies requests and ticks the train until ctx is done.
func (s *Session) Run(ctx context.Context, requests <-chan Request) error {
	ticker := time.NewTicker(s.conf.TickInterval())
	defer ticker.Stop()
	zap.S().Infof("session %s: running at %d ticks/s", s.ID, s.conf.TickRate)
	s.publish()
	for {
		select {
		case <-ctx.Done():
			zap.S().Infof("session %s: stopped after %d ticks", s.ID, s.Ticks)
			return nil
		case req, ok := <-requests:
			if !ok {
				requests = nil
				continue
			}
			err := s.Apply(req.Command)
			if err != nil {
				zap.S().Warnf("session %s: %s: %s", s.ID, req.Command, err)
			}
			if req.Reply != nil {
				req.Reply <- err
			}
		case <-ticker.C:
			if err := s.Tick(); err != nil {
				zap.S().Warnf("session %s: tick: %s", s.ID, err)
			}
		}
	}
}

// Send is a helper for other goroutines: it sends cmd and waits for the result.
func Send(ctx context.Context, requests chan<- Request, cmd Command) error {
	reply := make(chan error, 1)
	select {
	case requests <- Request{Command: cmd, Reply: reply}:
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case err := <-reply:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}
