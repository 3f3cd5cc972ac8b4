package dumbbell

import (
	"testing"

	"github.com/gonum/matrix/mat64"
)

func testVehicle(t *testing.T) *Dumbbell {
	t.Helper()
	db, err := NewDumbbell(500, 500, 0.003)
	if err != nil {
		t.Fatalf("could not build the vehicle: %s", err)
	}
	return db
}

func testAsteroid(mu float64) *Asteroid {
	return NewAsteroid("itokawa", ItokawaRotationRate, PointMassField{Mu: mu})
}

// landingState is the Itokawa landing scenario initial state in the asteroid
// fixed frame reading: position on the x axis, a slow descent velocity, the
// identity attitude and a small tumble.
func landingState() (pos, vel []float64, R *mat64.Dense, w []float64) {
	pos = []float64{2.55, 0, 0}
	vel = []float64{0, -0.000899607989820, 0}
	R = DenseIdentity(3)
	w = []float64{0.01, 0.01, 0.01}
	return
}

func TestNewEOMValidation(t *testing.T) {
	db := testVehicle(t)
	ast := testAsteroid(2.36e-9)
	if _, err := NewEOM(nil, ast, FrameInertial, false); err == nil {
		t.Fatal("expected an error for a nil vehicle")
	}
	if _, err := NewEOM(db, nil, FrameInertial, false); err == nil {
		t.Fatal("expected an error for a nil asteroid")
	}
	if _, err := NewEOM(db, ast, Frame(42), false); err == nil {
		t.Fatal("expected an error for an unknown frame")
	}
	if _, err := NewEOM(db, ast, FrameAsteroidFixed, true); err == nil {
		t.Fatal("expected an error for control in the asteroid fixed frame")
	}
	if _, err := NewEOM(db, ast, FrameHamiltonian, true); err == nil {
		t.Fatal("expected an error for control in the Hamiltonian variant")
	}
	for _, frame := range []Frame{FrameInertial, FrameAsteroidFixed, FrameHamiltonian} {
		if _, err := NewEOM(db, ast, frame, false); err != nil {
			t.Fatalf("frame %s rejected: %s", frame, err)
		}
	}
}

func TestDerivativeStateLength(t *testing.T) {
	eom, _ := NewEOM(testVehicle(t), testAsteroid(2.36e-9), FrameInertial, false)
	if _, err := eom.Derivative(0, make([]float64, 17)); err == nil {
		t.Fatal("expected an error for a short state vector")
	}
	if _, err := eom.Derivative(0, make([]float64, 19)); err == nil {
		t.Fatal("expected an error for a long state vector")
	}
}

func TestInertialDerivativeFreeMotion(t *testing.T) {
	// With a zero field the translational dynamics are free motion and the
	// rotational dynamics are the free rigid body.
	db := testVehicle(t)
	eom, _ := NewEOM(db, testAsteroid(0), FrameInertial, false)
	pos := []float64{2.55, 0.1, -0.3}
	vel := []float64{1e-4, -2e-4, 3e-4}
	w := []float64{0.01, -0.02, 0.03}
	s := encodeState(pos, vel, DenseIdentity(3), w)
	f, err := eom.Derivative(12.5, s)
	if err != nil {
		t.Fatalf("derivative failed: %s", err)
	}
	vecEqual(t, f[0:3], vel, 0, "posDot")
	vecEqual(t, f[3:6], []float64{0, 0, 0}, 1e-16, "velDot")
	vecEqual(t, f[6:15], flatten33(HatMap(w)), 1e-16, "rDot at identity")
	wDot := MxV33(db.Jinv, scale3(-1, cross(w, MxV33(db.J, w))))
	vecEqual(t, f[15:18], wDot, 1e-16, "wDot")
}

func TestRelativeDerivativeFrameTerms(t *testing.T) {
	// With a zero field and no body rates, only the rotating frame terms
	// remain, and they are linear in the asteroid spin.
	eom, _ := NewEOM(testVehicle(t), testAsteroid(0), FrameAsteroidFixed, false)
	Ω := ItokawaRotationRate
	s := encodeState([]float64{1, 0, 0}, []float64{0, 0, 0}, DenseIdentity(3), []float64{0, 0, 0})
	f, err := eom.Derivative(0, s)
	if err != nil {
		t.Fatalf("derivative failed: %s", err)
	}
	vecEqual(t, f[0:3], []float64{0, -Ω, 0}, 1e-16, "posDot")
	vecEqual(t, f[3:6], []float64{0, 0, 0}, 1e-16, "velDot")
	hatWa := HatMap([]float64{0, 0, Ω})
	hatWa.Scale(-1, hatWa)
	vecEqual(t, f[6:15], flatten33(hatWa), 1e-16, "rDot")
	vecEqual(t, f[15:18], []float64{0, 0, 0}, 1e-16, "wDot")
}

func TestHamiltonianDerivativeFrameTerms(t *testing.T) {
	db := testVehicle(t)
	eom, _ := NewEOM(db, testAsteroid(0), FrameHamiltonian, false)
	Ω := ItokawaRotationRate
	p := []float64{0.1, 0.2, 0.3} // linear momentum
	π := MxV33(db.J, []float64{0.01, 0, 0})
	s := encodeState([]float64{1, 0, 0}, p, DenseIdentity(3), π)
	f, err := eom.Derivative(0, s)
	if err != nil {
		t.Fatalf("derivative failed: %s", err)
	}
	Wa := []float64{0, 0, Ω}
	vecEqual(t, f[0:3], sub3(scale3(1/db.Mass(), p), cross(Wa, []float64{1, 0, 0})), 1e-16, "posDot")
	vecEqual(t, f[3:6], scale3(-1, cross(Wa, p)), 1e-16, "linMomDot")
	vecEqual(t, f[15:18], scale3(-1, cross(Wa, π)), 1e-16, "angMomDot")
}

func TestDerivativeAdapters(t *testing.T) {
	eom, _ := NewEOM(testVehicle(t), testAsteroid(2.36e-9), FrameInertial, false)
	pos, vel, R, w := landingState()
	s := encodeState(pos, vel, R, w)
	want, err := eom.Derivative(3, s)
	if err != nil {
		t.Fatalf("derivative failed: %s", err)
	}
	vecEqual(t, eom.TimeFirst()(3, s), want, 0, "time first adapter")
	vecEqual(t, eom.StateFirst()(s, 3), want, 0, "state first adapter")
	var evalErr error
	got := make([]float64, StateSize)
	eom.InPlace(&evalErr)(3, s, got)
	if evalErr != nil {
		t.Fatalf("in place adapter failed: %s", evalErr)
	}
	vecEqual(t, got, want, 0, "in place adapter")
}

func TestInPlaceAdapterCapturesError(t *testing.T) {
	eom, _ := NewEOM(testVehicle(t), testAsteroid(2.36e-9), FrameInertial, false)
	s := encodeState([]float64{0, 0, 0}, []float64{0, 0, 0}, DenseIdentity(3), []float64{0, 0, 0})
	var evalErr error
	f := make([]float64, StateSize)
	f[0] = 42
	eom.InPlace(&evalErr)(0, s, f)
	if evalErr == nil {
		t.Fatal("expected the singular potential error to be captured")
	}
	for i, v := range f {
		if v != 0 {
			t.Fatalf("output entry %d not zeroed on failure: %f", i, v)
		}
	}
}

// TestHamiltonianKinematicConsistency propagates the same physical state
// through the kinematic and the momentum form of the asteroid fixed dynamics
// and checks that they agree after conversion.
func TestHamiltonianKinematicConsistency(t *testing.T) {
	db := testVehicle(t)
	ast := testAsteroid(2.36e-9)
	pos, vel, R, w := landingState()

	cfg := DefaultSimConfig()
	cfg.Tf = 500
	cfg.Step = 1

	kin, _ := NewEOM(db, ast, FrameAsteroidFixed, false)
	pKin, err := NewPropagation(kin, encodeState(pos, vel, R, w), cfg, ExportConfig{})
	if err != nil {
		t.Fatalf("kinematic setup failed: %s", err)
	}
	kinTraj, err := pKin.Propagate()
	if err != nil {
		t.Fatalf("kinematic run failed: %s", err)
	}

	// π = (R J Rᵀ) w, which at R = I is J w.
	ham, _ := NewEOM(db, ast, FrameHamiltonian, false)
	pHam, err := NewPropagation(ham, encodeState(pos, scale3(db.Mass(), vel), R, MxV33(db.J, w)), cfg, ExportConfig{})
	if err != nil {
		t.Fatalf("hamiltonian setup failed: %s", err)
	}
	hamTraj, err := pHam.Propagate()
	if err != nil {
		t.Fatalf("hamiltonian run failed: %s", err)
	}

	if kinTraj.Len() != hamTraj.Len() {
		t.Fatalf("step counts differ: %d != %d", kinTraj.Len(), hamTraj.Len())
	}
	for i := range kinTraj.Times {
		sk := decodeState(kinTraj.States[i])
		sh := decodeState(hamTraj.States[i])
		vecEqual(t, sh.pos, sk.pos, 1e-7, "position")
		matEqual(t, sh.R, sk.R, 1e-7, "attitude")
		vecEqual(t, scale3(1/db.Mass(), sh.vel), sk.vel, 1e-7, "velocity from momentum")
		var rj, jr, jrInv mat64.Dense
		rj.Mul(sh.R, db.J)
		jr.Mul(&rj, sh.R.T())
		if err := jrInv.Inverse(&jr); err != nil {
			t.Fatalf("inertia inversion failed at step %d: %s", i, err)
		}
		vecEqual(t, MxV33(&jrInv, sh.w), sk.w, 1e-7, "angular velocity from momentum")
	}
}

func TestFrameString(t *testing.T) {
	if FrameInertial.String() != "inertial" || FrameAsteroidFixed.String() != "relative" || FrameHamiltonian.String() != "hamiltonian" {
		t.Fatal("frame names changed")
	}
	assertPanics(t, func() { _ = Frame(0).String() })
}

func assertPanics(t *testing.T, f func()) {
	t.Helper()
	defer func() {
		if recover() == nil {
			t.Fatal("expected a panic")
		}
	}()
	f()
}

func TestControlledDerivativeMatchesLaw(t *testing.T) {
	// On the reference trajectory the attitude law cancels to zero and the
	// translation law reduces to the feed forward acceleration.
	db := testVehicle(t)
	eom, _ := NewEOM(db, testAsteroid(0), FrameInertial, true)
	tt := 7.0
	Rd, _, wd, _ := DesiredAttitude(tt)
	xDes, xdDes, xddDes := DesiredTranslation(tt)
	s := encodeState(xDes, xdDes, Rd, wd)
	f, err := eom.Derivative(tt, s)
	if err != nil {
		t.Fatalf("derivative failed: %s", err)
	}
	vecEqual(t, f[3:6], xddDes, 1e-12, "tracking acceleration")
	// The reference spins about a principal axis, so there is no gyroscopic
	// precession to cancel and the moment law vanishes entirely.
	vecEqual(t, f[15:18], []float64{0, 0, 0}, 1e-14, "wDot on the reference")
}
