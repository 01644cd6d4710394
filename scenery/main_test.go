package scenery

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestPlaceDeterministic(t *testing.T) {
	a := Place(42, 100)
	b := Place(42, 100)
	if diff := cmp.Diff(a, b); diff != "" {
		t.Fatalf("same seed gave different scenes (-a +b):\n%s", diff)
	}
	c := Place(43, 100)
	if cmp.Equal(a, c) {
		t.Fatalf("different seeds gave the same scene")
	}
}

func TestPlaceRanges(t *testing.T) {
	for seed := int64(0); seed < 50; seed++ {
		s := Place(seed, 100)
		if len(s.Stones) < MinStones || len(s.Stones) > MaxStones {
			t.Fatalf("seed %d: %d stones", seed, len(s.Stones))
		}
		if len(s.Trees) < MinTrees || len(s.Trees) > MaxTrees {
			t.Fatalf("seed %d: %d trees", seed, len(s.Trees))
		}
		for _, st := range s.Stones {
			if math.Abs(st.Pos.X) > 101 || math.Abs(st.Pos.Z) > 101 || st.Pos.Y != 0 {
				t.Fatalf("seed %d: stone at %v", seed, st.Pos)
			}
			if st.Width < 1 || st.Width > 5.9+1e-9 || st.Height < 0.5 || st.Height > 3.4+1e-9 {
				t.Fatalf("seed %d: stone %+v", seed, st)
			}
			if st.Rotation < 0 || st.Rotation >= 2*math.Pi {
				t.Fatalf("seed %d: stone rotation %g", seed, st.Rotation)
			}
		}
		for _, tr := range s.Trees {
			if len(tr.Foliage) < 2 || len(tr.Foliage) > 6 {
				t.Fatalf("seed %d: %d foliage layers", seed, len(tr.Foliage))
			}
			if got, want := tr.Height(), 4*tr.TrunkHeight; math.Abs(got-want) > 1e-9 {
				t.Fatalf("seed %d: tree height %g, want %g", seed, got, want)
			}
			if tr.Foliage[0].Bottom != tr.TrunkHeight || tr.Foliage[0].Taper != 1 {
				t.Fatalf("seed %d: first layer %+v", seed, tr.Foliage[0])
			}
		}
	}
}

func TestPlaceExtent(t *testing.T) {
	s := Place(7, 10)
	for _, st := range s.Stones {
		if math.Abs(st.Pos.X) > 11 || math.Abs(st.Pos.Z) > 11 {
			t.Fatalf("stone at %v outside extent 10", st.Pos)
		}
	}
	if Place(7, 0).Extent != 1 {
		t.Fatalf("extent not clamped")
	}
}
