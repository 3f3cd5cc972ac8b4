package dumbbell

import (
	"errors"
	"fmt"

	"github.com/gonum/matrix/mat64"
)

// Frame selects the reference frame (and state encoding) of an EOM variant.
type Frame uint8

const (
	// FrameInertial integrates position/velocity in the inertial frame with
	// the attitude taken from the body to the inertial frame.
	FrameInertial Frame = iota + 1
	// FrameAsteroidFixed integrates the state relative to the rotating
	// asteroid, all vectors expressed in the asteroid fixed frame.
	FrameAsteroidFixed
	// FrameHamiltonian is the canonical momentum form of the asteroid fixed
	// variant: linear and angular momenta replace the velocity terms.
	FrameHamiltonian
)

func (f Frame) String() string {
	switch f {
	case FrameInertial:
		return "inertial"
	case FrameAsteroidFixed:
		return "relative"
	case FrameHamiltonian:
		return "hamiltonian"
	}
	panic("cannot stringify unknown frame")
}

// ErrIntegrity flags a numerical integrity violation: the rotation matrix in
// the state has drifted off SO(3) far enough that the dynamics are no longer
// meaningful. This indicates integrator divergence, not a recoverable input
// error.
var ErrIntegrity = errors.New("dumbbell: rotation matrix drifted off SO(3)")

// StateSize is the length of the flat state vector of every EOM variant.
const StateSize = 18

// state18 is the decoded form of the flat 18-entry state vector. Depending on
// the frame, vel and w hold either velocities or momenta; the field names
// follow the kinematic reading.
type state18 struct {
	pos []float64
	vel []float64
	R   *mat64.Dense
	w   []float64
}

func decodeState(s []float64) state18 {
	rData := make([]float64, 9)
	copy(rData, s[6:15])
	return state18{
		pos: []float64{s[0], s[1], s[2]},
		vel: []float64{s[3], s[4], s[5]},
		R:   mat64.NewDense(3, 3, rData),
		w:   []float64{s[15], s[16], s[17]},
	}
}

func encodeState(pos, vel []float64, R mat64.Matrix, w []float64) []float64 {
	s := make([]float64, StateSize)
	copy(s[0:3], pos)
	copy(s[3:6], vel)
	copy(s[6:15], flatten33(R))
	copy(s[15:18], w)
	return s
}

// EOM is the parameterized right hand side of the coupled dumbbell dynamics:
// one algorithm over a frame and a control toggle rather than six copies.
type EOM struct {
	Vehicle    *Dumbbell
	Asteroid   *Asteroid
	Frame      Frame
	Controlled bool
	Perts      Perturbations
}

// NewEOM returns the right hand side for the requested variant. The feedback
// controller is defined in the inertial frame only.
func NewEOM(v *Dumbbell, ast *Asteroid, frame Frame, controlled bool) (*EOM, error) {
	if v == nil || ast == nil {
		return nil, errors.New("dumbbell: EOM requires a vehicle and an asteroid")
	}
	if frame != FrameInertial && frame != FrameAsteroidFixed && frame != FrameHamiltonian {
		return nil, fmt.Errorf("dumbbell: unknown frame %d", frame)
	}
	if controlled && frame != FrameInertial {
		return nil, fmt.Errorf("dumbbell: control is only defined in the inertial frame, not %s", frame)
	}
	return &EOM{Vehicle: v, Asteroid: ast, Frame: frame, Controlled: controlled}, nil
}

// Derivative is the canonical derivative function: it decodes the state,
// queries the gravity field once per point mass, applies the control and
// perturbation inputs, and returns the 18 entry state derivative.
func (e *EOM) Derivative(t float64, s []float64) ([]float64, error) {
	if len(s) != StateSize {
		return nil, fmt.Errorf("dumbbell: state has %d entries, expected %d", len(s), StateSize)
	}
	st := decodeState(s)
	switch e.Frame {
	case FrameInertial:
		return e.inertialDerivative(t, s, st)
	case FrameAsteroidFixed:
		return e.relativeDerivative(t, st, false)
	default:
		return e.relativeDerivative(t, st, true)
	}
}

func (e *EOM) inertialDerivative(t float64, s []float64, st state18) ([]float64, error) {
	db := e.Vehicle
	Ra := e.Asteroid.Attitude(t) // asteroid body frame to inertial frame

	// Position of each point mass in the asteroid frame.
	z1 := MxV33(Ra.T(), add3(st.pos, MxV33(st.R, db.ζ1)))
	z2 := MxV33(Ra.T(), add3(st.pos, MxV33(st.R, db.ζ2)))

	_, g1, _, _, err := e.Asteroid.Field.Potential(z1)
	if err != nil {
		return nil, err
	}
	_, g2, _, _, err := e.Asteroid.Field.Potential(z2)
	if err != nil {
		return nil, err
	}

	F1 := scale3(db.M1, MxV33(Ra, g1))
	F2 := scale3(db.M2, MxV33(Ra, g2))

	// Gravity gradient torque from each offset mass, in the body frame.
	var rTRa mat64.Dense
	rTRa.Mul(st.R.T(), Ra)
	M1 := scale3(db.M1, MxV33(HatMap(db.ζ1), MxV33(&rTRa, g1)))
	M2 := scale3(db.M2, MxV33(HatMap(db.ζ2), MxV33(&rTRa, g2)))

	F := add3(F1, F2)
	M := add3(M1, M2)
	if !e.Perts.isEmpty() {
		pf, pm := e.Perts.Perturb(t, s)
		F = add3(F, pf)
		M = add3(M, pm)
	}
	if e.Controlled {
		F = add3(F, db.TranslationControl(t, s, add3(F1, F2)))
		M = add3(M, db.AttitudeControl(t, s, add3(M1, M2)))
	}

	posDot := st.vel
	velDot := scale3(1/db.Mass(), F)
	var rDot mat64.Dense
	rDot.Mul(st.R, HatMap(st.w))
	wDot := MxV33(db.Jinv, add3(scale3(-1, cross(st.w, MxV33(db.J, st.w))), M))

	return encodeState(posDot, velDot, &rDot, wDot), nil
}

// relativeDerivative covers both asteroid fixed encodings: the kinematic form
// (velocity and angular velocity in the state) and the Hamiltonian form
// (linear and angular momenta in the state).
func (e *EOM) relativeDerivative(t float64, st state18, hamiltonian bool) ([]float64, error) {
	db := e.Vehicle
	m := db.Mass()
	Wa := e.Asteroid.AngularVelocity()
	hatWa := HatMap(Wa)

	// Inertia seen in the asteroid frame.
	var rj, jr mat64.Dense
	rj.Mul(st.R, db.J)
	jr.Mul(&rj, st.R.T())
	var jrInv mat64.Dense
	if err := jrInv.Inverse(&jr); err != nil {
		return nil, ErrIntegrity
	}

	// Position of each point mass in the asteroid frame.
	z1 := add3(st.pos, MxV33(st.R, db.ζ1))
	z2 := add3(st.pos, MxV33(st.R, db.ζ2))

	_, g1, _, _, err := e.Asteroid.Field.Potential(z1)
	if err != nil {
		return nil, err
	}
	_, g2, _, _, err := e.Asteroid.Field.Potential(z2)
	if err != nil {
		return nil, err
	}

	F := add3(scale3(db.M1, g1), scale3(db.M2, g2))
	M := add3(
		scale3(db.M1, MxV33(HatMap(MxV33(st.R, db.ζ1)), g1)),
		scale3(db.M2, MxV33(HatMap(MxV33(st.R, db.ζ2)), g2)))
	if !e.Perts.isEmpty() {
		pf, pm := e.Perts.Perturb(t, encodeState(st.pos, st.vel, st.R, st.w))
		F = add3(F, pf)
		M = add3(M, pm)
	}

	if hamiltonian {
		linMom, angMom := st.vel, st.w
		vel := scale3(1/m, linMom)
		w := MxV33(&jrInv, angMom)

		posDot := sub3(vel, MxV33(hatWa, st.pos))
		linMomDot := sub3(F, MxV33(hatWa, linMom))
		var rDot, waR mat64.Dense
		rDot.Mul(HatMap(w), st.R)
		waR.Mul(hatWa, st.R)
		rDot.Sub(&rDot, &waR)
		angMomDot := sub3(M, MxV33(hatWa, angMom))
		return encodeState(posDot, linMomDot, &rDot, angMomDot), nil
	}

	posDot := sub3(st.vel, MxV33(hatWa, st.pos))
	velDot := scale3(1/m, sub3(F, scale3(m, MxV33(hatWa, st.vel))))
	var rDot, waR mat64.Dense
	rDot.Mul(HatMap(st.w), st.R)
	waR.Mul(hatWa, st.R)
	rDot.Sub(&rDot, &waR)
	// Euler's equation in the rotating frame: the gyroscopic w × Jr w term
	// stays, plus the frame rotation torque. Consistent with the momentum
	// form below, which propagates π = Jr w directly.
	var jrWa mat64.Dense
	jrWa.Mul(&jr, hatWa)
	gyro := cross(st.w, MxV33(&jr, st.w))
	wDot := MxV33(&jrInv, sub3(M, add3(gyro, MxV33(&jrWa, st.w))))
	return encodeState(posDot, velDot, &rDot, wDot), nil
}

/* The two generic stepper interfaces in use expect different derivative
shapes. These adapters wrap the one canonical Derivative; they carry no
physics of their own. */

// TimeFirst returns the derivative in the time-first shape consumed by the
// RK4 Integrable interface. A derivative error aborts the run via panic, as
// the interface has no error channel; Propagation recovers it.
func (e *EOM) TimeFirst() func(t float64, s []float64) []float64 {
	return func(t float64, s []float64) []float64 {
		f, err := e.Derivative(t, s)
		if err != nil {
			panic(err)
		}
		return f
	}
}

// StateFirst returns the derivative in the state-first argument order used by
// odeint style steppers.
func (e *EOM) StateFirst() func(s []float64, t float64) []float64 {
	tf := e.TimeFirst()
	return func(s []float64, t float64) []float64 {
		return tf(t, s)
	}
}

// InPlace returns the derivative in the in-place shape consumed by the
// Dormand-Prince integrator. The first derivative error is stored in errPtr
// and the output zeroed, since this shape cannot report failures directly.
func (e *EOM) InPlace(errPtr *error) func(x float64, y, f []float64) {
	return func(x float64, y, f []float64) {
		d, err := e.Derivative(x, y)
		if err != nil {
			if *errPtr == nil {
				*errPtr = err
			}
			for i := range f {
				f[i] = 0
			}
			return
		}
		copy(f, d)
	}
}
