package dumbbell

import (
	"fmt"

	"github.com/gonum/matrix/mat64"
)

/* Energy diagnostics re-query the gravity field at each recorded state. In an
uncontrolled run the total energy must stay constant to within integrator
tolerance, which is the correctness oracle for the equations of motion. */

// InertialEnergy computes the kinetic and potential energy time series of an
// inertial frame trajectory.
func InertialEnergy(traj *Trajectory, db *Dumbbell, ast *Asteroid) (ke, pe []float64, err error) {
	return energySeries(traj, db, ast, false)
}

// RelativeEnergy computes the kinetic and potential energy time series of an
// asteroid fixed trajectory.
func RelativeEnergy(traj *Trajectory, db *Dumbbell, ast *Asteroid) (ke, pe []float64, err error) {
	return energySeries(traj, db, ast, true)
}

func energySeries(traj *Trajectory, db *Dumbbell, ast *Asteroid, relative bool) (ke, pe []float64, err error) {
	if traj == nil {
		return nil, nil, fmt.Errorf("dumbbell: cannot compute the energy of a nil trajectory")
	}
	m := db.Mass()
	ke = make([]float64, traj.Len())
	pe = make([]float64, traj.Len())
	for i, t := range traj.Times {
		st := decodeState(traj.States[i])

		var z1, z2 []float64
		if relative {
			z1 = add3(st.pos, MxV33(st.R, db.ζ1))
			z2 = add3(st.pos, MxV33(st.R, db.ζ2))
		} else {
			Ra := ast.Attitude(t)
			z1 = MxV33(Ra.T(), add3(st.pos, MxV33(st.R, db.ζ1)))
			z2 = MxV33(Ra.T(), add3(st.pos, MxV33(st.R, db.ζ2)))
		}
		u1, _, _, _, ferr := ast.Field.Potential(z1)
		if ferr != nil {
			return nil, nil, ferr
		}
		u2, _, _, _, ferr := ast.Field.Potential(z2)
		if ferr != nil {
			return nil, nil, ferr
		}
		pe[i] = -db.M1*u1 - db.M2*u2

		jd := db.Jd
		if relative {
			// Distributed inertia as seen in the asteroid frame.
			var rj, jdr mat64.Dense
			rj.Mul(st.R, db.Jd)
			jdr.Mul(&rj, st.R.T())
			jd = &jdr
		}
		hatW := HatMap(st.w)
		var hj, hjh mat64.Dense
		hj.Mul(hatW, jd)
		hjh.Mul(&hj, hatW.T())
		ke[i] = 0.5*m*dot(st.vel, st.vel) + 0.5*mat64.Trace(&hjh)
	}
	return ke, pe, nil
}
