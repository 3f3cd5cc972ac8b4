package dumbbell

import (
	"math"

	"github.com/gonum/matrix/mat64"
)

// The reference trajectories are analytic functions of time only, so a
// tracking run may be restarted at any t.

const (
	// refRate is the angular rate of both reference trajectories in rad/s.
	refRate = 2 * math.Pi / 100
)

// refAxis is the axis of the desired constant rate rotation, body y.
var refAxis = []float64{0, 1, 0}

// DesiredAttitude returns the attitude reference at time t: a constant rate
// rotation about refAxis, its time derivative, and the matching angular
// velocity and acceleration in the body frame.
func DesiredAttitude(t float64) (Rd, RdDot *mat64.Dense, wd, wdDot []float64) {
	Rd = ExpHat(refAxis, refRate*t)
	RdDot = mat64.NewDense(3, 3, nil)
	RdDot.Mul(HatMap(refAxis), Rd)
	RdDot.Scale(refRate, RdDot)
	var tmp mat64.Dense
	tmp.Mul(Rd.T(), RdDot)
	wd = vee(&tmp)
	wdDot = []float64{0, 0, 0} // constant rate
	return
}

// DesiredTranslation returns the translation reference at time t: a fixed
// sinusoidal path in the inertial frame with analytic velocity and
// acceleration.
func DesiredTranslation(t float64) (x, xd, xdd []float64) {
	s, c := math.Sincos(refRate * t)
	x = []float64{1.5, 0.2 * c, 0.5 * s}
	xd = []float64{0, -refRate * 0.2 * s, refRate * 0.5 * c}
	xdd = []float64{0, -refRate * refRate * 0.2 * c, -refRate * refRate * 0.5 * s}
	return
}
