// Package scenery places decorative stones and trees around the track.
//
// Placement depends only on the seed, so a scene can be rebuilt at any time
// and looks the same across restarts.
package scenery

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/spatial/r3"
)

type Stone struct {
	Pos    r3.Vec  `json:"pos"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	// Rotation about the vertical axis, in radians.
	Rotation float64 `json:"rotation"`
}

type Layer struct {
	Bottom float64 `json:"bottom"`
	Top    float64 `json:"top"`
	Width  float64 `json:"width"`
	// Taper is how much the top of the layer is narrowed, from 1 (not at all) towards 0.
	Taper float64 `json:"taper"`
}

type Tree struct {
	Pos         r3.Vec  `json:"pos"`
	TrunkWidth  float64 `json:"trunk-width"`
	TrunkHeight float64 `json:"trunk-height"`
	Rotation    float64 `json:"rotation"`
	Foliage     []Layer `json:"foliage"`
}

// Height is the height of the top of the highest foliage layer.
func (t Tree) Height() float64 {
	if len(t.Foliage) == 0 {
		return t.TrunkHeight
	}
	return t.Foliage[len(t.Foliage)-1].Top
}

type Scene struct {
	Seed   int64   `json:"seed"`
	Extent float64 `json:"extent"`
	Stones []Stone `json:"stones"`
	Trees  []Tree  `json:"trees"`
}

const (
	MinStones = 16
	MaxStones = MinStones + 31
	MinTrees  = 4
	MaxTrees  = MinTrees + 7
)

// Place generates a scene within [-extent, extent] on the ground plane.
func Place(seed int64, extent float64) Scene {
	ext := int(math.Max(1, math.Round(extent)))
	r := rand.New(rand.NewSource(seed))
	s := Scene{Seed: seed, Extent: float64(ext)}

	ground := func() r3.Vec {
		x := float64(ext-r.Intn(2*ext)) + 0.01*float64(r.Intn(100))
		z := float64(ext-r.Intn(2*ext)) + 0.01*float64(r.Intn(100))
		return r3.Vec{X: x, Z: z}
	}
	rotation := func() float64 {
		return float64(r.Intn(360)) * math.Pi / 180
	}

	stones := MinStones + r.Intn(MaxStones-MinStones+1)
	s.Stones = make([]Stone, stones)
	for i := range s.Stones {
		st := Stone{Pos: ground()}
		st.Width = 1 + 0.1*float64(r.Intn(50))
		st.Height = 0.5 + 0.1*float64(r.Intn(30))
		st.Rotation = rotation()
		s.Stones[i] = st
	}

	trees := MinTrees + r.Intn(MaxTrees-MinTrees+1)
	s.Trees = make([]Tree, trees)
	for i := range s.Trees {
		tr := Tree{Pos: ground()}
		tr.TrunkWidth = 2 + 0.1*float64(r.Intn(20))
		tr.TrunkHeight = 4 + 0.2*float64(r.Intn(40))
		tr.Rotation = rotation()
		n := 2 + r.Intn(5)
		tr.Foliage = make([]Layer, n)
		for j := range tr.Foliage {
			tr.Foliage[j] = Layer{
				Bottom: tr.TrunkHeight * (1 + float64(j)*3/float64(n)),
				Top:    tr.TrunkHeight * (1 + float64(j+1)*3/float64(n)),
				Width:  2 * tr.TrunkWidth,
				Taper:  1 - float64(j)/float64(n),
			}
		}
		s.Trees[i] = tr
	}
	return s
}
