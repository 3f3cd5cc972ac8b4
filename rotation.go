package dumbbell

import (
	"fmt"
	"math"

	"github.com/gonum/matrix/mat64"
)

// RotConvention defines the sign convention of the principal axis rotations.
type RotConvention uint8

const (
	// CoordinateTransform builds the matrix which re-expresses a fixed vector
	// in a frame rotated by the given angle (Schaub and Junkins convention).
	CoordinateTransform RotConvention = iota + 1
	// VectorRotation builds the matrix which rotates a vector by the given
	// angle within a fixed frame. Transpose of CoordinateTransform.
	VectorRotation
)

const (
	// skewε is the tolerance below which a matrix is considered skew symmetric.
	skewε = 1e-10
)

// Rot1 returns the rotation about the 1st axis.
func Rot1(x float64, conv RotConvention) *mat64.Dense {
	s, c := math.Sincos(x)
	if conv == VectorRotation {
		return mat64.NewDense(3, 3, []float64{1, 0, 0, 0, c, -s, 0, s, c})
	}
	return mat64.NewDense(3, 3, []float64{1, 0, 0, 0, c, s, 0, -s, c})
}

// Rot2 returns the rotation about the 2nd axis.
func Rot2(x float64, conv RotConvention) *mat64.Dense {
	s, c := math.Sincos(x)
	if conv == VectorRotation {
		return mat64.NewDense(3, 3, []float64{c, 0, s, 0, 1, 0, -s, 0, c})
	}
	return mat64.NewDense(3, 3, []float64{c, 0, -s, 0, 1, 0, s, 0, c})
}

// Rot3 returns the rotation about the 3rd axis.
func Rot3(x float64, conv RotConvention) *mat64.Dense {
	s, c := math.Sincos(x)
	if conv == VectorRotation {
		return mat64.NewDense(3, 3, []float64{c, -s, 0, s, c, 0, 0, 0, 1})
	}
	return mat64.NewDense(3, 3, []float64{c, s, 0, -s, c, 0, 0, 0, 1})
}

// HatMap returns the skew symmetric matrix of v such that
// HatMap(v)*x is the cross product v × x.
func HatMap(v []float64) *mat64.Dense {
	return mat64.NewDense(3, 3, []float64{
		0, -v[2], v[1],
		v[2], 0, -v[0],
		-v[1], v[0], 0})
}

// VeeMap is the inverse of HatMap. It errors if the input is not skew
// symmetric within tolerance.
func VeeMap(m mat64.Matrix) ([]float64, error) {
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			if math.Abs(m.At(i, j)+m.At(j, i)) > skewε {
				return nil, fmt.Errorf("dumbbell: matrix is not skew symmetric (%d,%d)", i, j)
			}
		}
	}
	return vee(m), nil
}

// vee extracts the vector of a skew symmetric matrix without checking skewness.
func vee(m mat64.Matrix) []float64 {
	return []float64{m.At(2, 1), m.At(0, 2), m.At(1, 0)}
}

// ExpHat returns the matrix exponential of angle*HatMap(axis) via the
// Rodrigues formula. The axis must be a unit vector.
func ExpHat(axis []float64, angle float64) *mat64.Dense {
	s, c := math.Sincos(angle)
	K := HatMap(axis)
	var K2 mat64.Dense
	K2.Mul(K, K)
	R := DenseIdentity(3)
	var sK, cK2 mat64.Dense
	sK.Scale(s, K)
	cK2.Scale(1-c, &K2)
	R.Add(R, &sK)
	R.Add(R, &cK2)
	return R
}

// orthonormalityDrift measures how far R has drifted from SO(3): the largest
// entry of |RᵀR - I| or the departure of the determinant from +1, whichever
// is larger.
func orthonormalityDrift(R *mat64.Dense) float64 {
	var rtr mat64.Dense
	rtr.Mul(R.T(), R)
	drift := math.Abs(mat64.Det(R) - 1)
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			expected := 0.0
			if i == j {
				expected = 1
			}
			if d := math.Abs(rtr.At(i, j) - expected); d > drift {
				drift = d
			}
		}
	}
	return drift
}
