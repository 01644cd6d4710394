package curve

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Rows are indexed by power (p³, p², p, 1), columns by point (i-1, i, i+1, i+2).
var (
	cardinalBasis = mat.NewDense(4, 4, []float64{
		-1.0 / 2, 3.0 / 2, -3.0 / 2, 1.0 / 2,
		1, -5.0 / 2, 2, -1.0 / 2,
		-1.0 / 2, 0, 1.0 / 2, 0,
		0, 1, 0, 0,
	})
	bsplineBasis = mat.NewDense(4, 4, []float64{
		-1.0 / 6, 1.0 / 2, -1.0 / 2, 1.0 / 6,
		1.0 / 2, -1, 1.0 / 2, 0,
		-1.0 / 2, 0, 1.0 / 2, 0,
		1.0 / 6, 2.0 / 3, 1.0 / 6, 0,
	})
)

func basis(m Mode) *mat.Dense {
	switch m {
	case CardinalCubic:
		return cardinalBasis
	case BSpline:
		return bsplineBasis
	default:
		panic(fmt.Sprintf("no basis matrix for mode %s", m))
	}
}

// weights returns the contribution of each of the four gathered points for
// the power vector pow.
func weights(m Mode, pow [4]float64) [4]float64 {
	var w mat.VecDense
	w.MulVec(basis(m).T(), mat.NewVecDense(4, pow[:]))
	return [4]float64{w.AtVec(0), w.AtVec(1), w.AtVec(2), w.AtVec(3)}
}

func powers(p float64) [4]float64 {
	return [4]float64{p * p * p, p * p, p, 1}
}

func dpowers(p float64) [4]float64 {
	return [4]float64{3 * p * p, 2 * p, 1, 0}
}
