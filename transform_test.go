package dumbbell

import (
	"testing"

	"github.com/gonum/matrix/mat64"
)

func syntheticTrajectory() *Trajectory {
	traj := &Trajectory{}
	for _, tt := range []float64{0, 100, 1234.5} {
		pos := []float64{2.5 + tt/1e4, -0.3, 0.7}
		vel := []float64{1e-4, -2e-4, 5e-5}
		R := ExpHat([]float64{0.267261241912424, 0.534522483824849, 0.801783725737273}, 0.1+tt/1e3)
		w := []float64{0.01, -0.005, 0.02}
		traj.append(tt, encodeState(pos, vel, R, w))
	}
	return traj
}

func TestInertialAsteroidRoundTrip(t *testing.T) {
	ast := testAsteroid(0)
	traj := syntheticTrajectory()
	down, err := InertialToAsteroid(traj, ast)
	if err != nil {
		t.Fatalf("inertial to asteroid failed: %s", err)
	}
	back, err := AsteroidToInertial(down, ast)
	if err != nil {
		t.Fatalf("asteroid to inertial failed: %s", err)
	}
	for i := range traj.Times {
		if back.Times[i] != traj.Times[i] {
			t.Fatalf("time %d changed in the round trip", i)
		}
		vecEqual(t, back.States[i][0:15], traj.States[i][0:15], 1e-13, "round trip pos/vel/R")
	}
}

func TestInertialToAsteroidAtEpoch(t *testing.T) {
	// At t=0 both frames coincide, so the conversion only re-expresses the
	// angular velocity through the attitude block.
	ast := testAsteroid(0)
	pos := []float64{2.5, 0, 0}
	vel := []float64{0, 1e-4, 0}
	R := Rot3(0.3, VectorRotation)
	w := []float64{0.01, 0, 0}
	traj := &Trajectory{}
	traj.append(0, encodeState(pos, vel, R, w))
	out, err := InertialToAsteroid(traj, ast)
	if err != nil {
		t.Fatalf("conversion failed: %s", err)
	}
	st := decodeState(out.States[0])
	vecEqual(t, st.pos, pos, 1e-15, "position at epoch")
	vecEqual(t, st.vel, vel, 1e-15, "velocity at epoch")
	matEqual(t, st.R, R, 1e-15, "attitude at epoch")
	vecEqual(t, st.w, MxV33(R, w), 1e-15, "angular velocity re-expression")
}

func TestBodyToInertial(t *testing.T) {
	ast := testAsteroid(0)
	pos := []float64{1, 2, 3}
	vel := []float64{4, 5, 6}
	R := ExpHat([]float64{0, 0, 1}, 0.7)
	w := []float64{0.02, 0, 0.01}
	traj := &Trajectory{}
	traj.append(42, encodeState(pos, vel, R, w))
	out, err := BodyToInertial(traj, ast)
	if err != nil {
		t.Fatalf("conversion failed: %s", err)
	}
	st := decodeState(out.States[0])
	vecEqual(t, st.pos, pos, 0, "position untouched")
	vecEqual(t, st.vel, vel, 0, "velocity untouched")
	matEqual(t, st.R, R, 0, "attitude untouched")
	vecEqual(t, st.w, MxV33(R, w), 0, "angular velocity mapped by R")
}

func TestBodyToAsteroidMatchesRotation(t *testing.T) {
	ast := testAsteroid(2.36e-9)
	traj := syntheticTrajectory()
	out, err := BodyToAsteroid(traj, ast)
	if err != nil {
		t.Fatalf("conversion failed: %s", err)
	}
	for i, tt := range traj.Times {
		in := decodeState(traj.States[i])
		st := decodeState(out.States[i])
		Ra := ast.Attitude(tt)
		vecEqual(t, st.pos, MxV33(Ra.T(), in.pos), 1e-14, "position into the asteroid frame")
		vecEqual(t, st.vel, MxV33(Ra.T(), in.vel), 1e-14, "velocity into the asteroid frame")
		var want mat64.Dense
		want.Mul(Ra.T(), in.R)
		matEqual(t, st.R, &want, 1e-14, "attitude conjugation")
		vecEqual(t, st.w, MxV33(&want, in.w), 1e-14, "angular velocity into the asteroid frame")
	}
}

func TestConvertRejectsBadInput(t *testing.T) {
	ast := testAsteroid(0)
	if _, err := InertialToAsteroid(nil, ast); err == nil {
		t.Fatal("expected an error for a nil trajectory")
	}
	bad := &Trajectory{Times: []float64{0}, States: [][]float64{make([]float64, 5)}}
	if _, err := AsteroidToInertial(bad, ast); err == nil {
		t.Fatal("expected an error for a malformed state")
	}
}
