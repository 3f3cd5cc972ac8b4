package dumbbell

import (
	"fmt"
	"math"

	"github.com/gonum/matrix/mat64"
)

const (
	// ItokawaRotationRate is the spin rate of 25143 Itokawa in radians per second.
	ItokawaRotationRate = 2 * math.Pi / (12.132 * 3600)
)

// GravField evaluates the gravitational potential of a small body at a point
// expressed in the body fixed frame. Implementations must be pure: no state
// visible to the caller may change between calls.
//
// The polyhedral potential evaluator consumed in production implements this
// contract; PointMassField is the closed form stand-in used in tests.
type GravField interface {
	// Potential returns the potential U (km²/s²), its gradient (km/s²), the
	// gradient matrix and the Laplacian at pos (km, body frame).
	Potential(pos []float64) (u float64, grad []float64, gradMat *mat64.Dense, laplacian float64, err error)
}

// Asteroid holds the rotation state and gravity model of a small body. The
// body spins at a constant rate about its own +z axis.
type Asteroid struct {
	Name  string
	Omega float64 // spin rate in rad/s about the body z axis
	Field GravField
}

// NewAsteroid returns an asteroid model around the given field.
func NewAsteroid(name string, omega float64, field GravField) *Asteroid {
	return &Asteroid{Name: name, Omega: omega, Field: field}
}

// Attitude returns the rotation from the asteroid body frame to the inertial
// frame at time t, with t=0 aligning both frames.
func (a *Asteroid) Attitude(t float64) *mat64.Dense {
	return Rot3(a.Omega*t, VectorRotation)
}

// AngularVelocity returns the asteroid spin vector in the inertial (and
// asteroid, z being the spin axis) frame.
func (a *Asteroid) AngularVelocity() []float64 {
	return []float64{0, 0, a.Omega}
}

// PointMassField is the Newtonian potential of a point mass, U = μ/r. It
// stands in for the polyhedral evaluator where a closed form field is wanted.
type PointMassField struct {
	Mu float64 // gravitational parameter in km³/s²
}

// Potential implements the GravField interface.
func (f PointMassField) Potential(pos []float64) (float64, []float64, *mat64.Dense, float64, error) {
	r := norm(pos)
	if r == 0 {
		return 0, nil, nil, 0, fmt.Errorf("dumbbell: point mass potential is singular at the origin")
	}
	if f.Mu == 0 {
		return 0, []float64{0, 0, 0}, mat64.NewDense(3, 3, nil), 0, nil
	}
	u := f.Mu / r
	r3 := r * r * r
	r5 := r3 * r * r
	grad := scale3(-f.Mu/r3, pos)
	// ∂²U/∂x∂y = μ(3 x y / r⁵ - δxy / r³)
	gradMat := mat64.NewDense(3, 3, nil)
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			v := 3 * f.Mu * pos[i] * pos[j] / r5
			if i == j {
				v -= f.Mu / r3
			}
			gradMat.Set(i, j, v)
		}
	}
	return u, grad, gradMat, 0, nil
}
