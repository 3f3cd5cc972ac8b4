package dumbbell

import (
	"fmt"

	"github.com/gonum/matrix/mat64"
)

/* Batch frame conversions of full trajectories, used to compare runs of
different EOM variants against each other. The rotation block is conjugated
(Raᵀ R, not a plain product) so the attitude keeps its transform semantics. */

// InertialToAsteroid converts an inertial frame trajectory into the rotating
// asteroid fixed frame.
func InertialToAsteroid(traj *Trajectory, ast *Asteroid) (*Trajectory, error) {
	return convert(traj, func(t float64, st state18) []float64 {
		Ra := ast.Attitude(t)
		pos := MxV33(Ra.T(), st.pos)
		vel := MxV33(Ra.T(), st.vel)
		var R mat64.Dense
		R.Mul(Ra.T(), st.R)
		w := MxV33(&R, st.w)
		return encodeState(pos, vel, &R, w)
	})
}

// AsteroidToInertial converts an asteroid fixed trajectory into the inertial
// frame.
func AsteroidToInertial(traj *Trajectory, ast *Asteroid) (*Trajectory, error) {
	return convert(traj, func(t float64, st state18) []float64 {
		Ra := ast.Attitude(t)
		pos := MxV33(Ra, st.pos)
		vel := MxV33(Ra, st.vel)
		var R mat64.Dense
		R.Mul(Ra, st.R)
		w := MxV33(Ra, st.w)
		return encodeState(pos, vel, &R, w)
	})
}

// BodyToInertial re-expresses the body frame angular velocity block of an
// inertial trajectory in the inertial frame. Position, velocity and attitude
// already live in the inertial frame.
func BodyToInertial(traj *Trajectory, ast *Asteroid) (*Trajectory, error) {
	return convert(traj, func(t float64, st state18) []float64 {
		w := MxV33(st.R, st.w)
		return encodeState(st.pos, st.vel, st.R, w)
	})
}

// BodyToAsteroid converts an inertial trajectory with a body frame angular
// velocity into the asteroid fixed frame, for comparison against the output
// of the relative variants.
func BodyToAsteroid(traj *Trajectory, ast *Asteroid) (*Trajectory, error) {
	return convert(traj, func(t float64, st state18) []float64 {
		Ra := ast.Attitude(t)
		pos := MxV33(Ra.T(), st.pos)
		vel := MxV33(Ra.T(), st.vel)
		var R mat64.Dense
		R.Mul(Ra.T(), st.R)
		w := MxV33(&R, st.w)
		return encodeState(pos, vel, &R, w)
	})
}

func convert(traj *Trajectory, f func(t float64, st state18) []float64) (*Trajectory, error) {
	if traj == nil {
		return nil, fmt.Errorf("dumbbell: cannot convert a nil trajectory")
	}
	out := &Trajectory{Times: make([]float64, traj.Len()), States: make([][]float64, traj.Len())}
	for i, t := range traj.Times {
		s := traj.States[i]
		if len(s) != StateSize {
			return nil, fmt.Errorf("dumbbell: state %d has %d entries, expected %d", i, len(s), StateSize)
		}
		out.Times[i] = t
		out.States[i] = f(t, decodeState(s))
	}
	return out, nil
}
