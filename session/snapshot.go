package session

import (
	"github.com/google/uuid"
	"github.com/lin71008/RollerCoasters/curve"
	"github.com/lin71008/RollerCoasters/track"
	"github.com/lin71008/RollerCoasters/train"
	"go.uber.org/zap"
)

// Snapshot is a copy of a session's state that is safe to hand to other goroutines.
type Snapshot struct {
	ID        uuid.UUID   `json:"id"`
	Ticks     uint64      `json:"ticks"`
	Track     track.Track `json:"track"`
	Mode      curve.Mode  `json:"mode"`
	Speed     float64     `json:"speed"`
	ArcLength bool        `json:"arc-length"`
	Physics   bool        `json:"physics"`
	CarCount  int         `json:"car-count"`
	Running   bool        `json:"running"`
	Selected  int         `json:"selected"`
	Seed      int64       `json:"seed"`
	Extent    float64     `json:"extent"`

	// Head is the curve frame at the front of the train.
	Head curve.Frame `json:"head"`
	// Cars holds the parameter of each car, front first.
	Cars []float64 `json:"cars"`
	// Last is the result of the last train advance.
	Last train.Result `json:"last"`
}

func (s *Session) Snapshot() Snapshot {
	snap := Snapshot{
		ID:        s.ID,
		Ticks:     s.Ticks,
		Track:     s.Track.Clone(),
		Mode:      s.Mode,
		Speed:     s.Speed,
		ArcLength: s.ArcLength,
		Physics:   s.Physics,
		CarCount:  s.CarCount,
		Running:   s.Running,
		Selected:  s.Selected,
		Seed:      s.Seed,
		Extent:    s.conf.SceneryExtent,
		Cars:      append([]float64(nil), s.cars...),
		Last:      s.last,
	}
	head, err := curve.Evaluate(s.Track.Points, s.Mode, s.Track.TrainParam, curve.WantAll)
	if err != nil {
		zap.S().Warnf("session %s: evaluate head: %s", s.ID, err)
	}
	snap.Head = head
	return snap
}
