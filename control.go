package dumbbell

import (
	"github.com/gonum/matrix/mat64"
)

/* Geometric tracking controllers on SO(3) and SE(3), from Lee, Leok and
McClamroch. Both laws exactly cancel the known external disturbance, which the
equations of motion supply from the already computed gravity terms; the
controllers never query the gravity field themselves. */

// AttitudeControl computes the body fixed control moment tracking the desired
// attitude trajectory. extMoment is the known external moment in the body
// frame, which the law cancels.
func (db *Dumbbell) AttitudeControl(t float64, s []float64, extMoment []float64) []float64 {
	st := decodeState(s)
	Rd, _, wd, wdDot := DesiredAttitude(t)

	var rdTr, rTrd mat64.Dense
	rdTr.Mul(Rd.T(), st.R) // Rdᵀ R
	rTrd.Mul(st.R.T(), Rd) // Rᵀ Rd

	var eRm mat64.Dense
	eRm.Sub(&rdTr, &rTrd)
	eRm.Scale(0.5, &eRm)
	eR := vee(&eRm)
	eW := sub3(st.w, MxV33(&rTrd, wd))

	Jw := MxV33(db.J, st.w)
	// Feed forward: J(hat(w) Rᵀ Rd wd - Rᵀ Rd wdDot)
	ff := MxV33(db.J, sub3(MxV33(HatMap(st.w), MxV33(&rTrd, wd)), MxV33(&rTrd, wdDot)))

	uM := make([]float64, 3)
	gyro := cross(st.w, Jw)
	for i := 0; i < 3; i++ {
		uM[i] = -db.KR*eR[i] - db.KW*eW[i] + gyro[i] - ff[i] - extMoment[i]
	}
	return uM
}

// TranslationControl computes the inertial frame control force tracking the
// desired translation trajectory. extForce is the known external force, which
// the law cancels.
func (db *Dumbbell) TranslationControl(t float64, s []float64, extForce []float64) []float64 {
	st := decodeState(s)
	xDes, xdDes, xddDes := DesiredTranslation(t)

	ex := sub3(st.pos, xDes)
	ev := sub3(st.vel, xdDes)

	m := db.Mass()
	uF := make([]float64, 3)
	for i := 0; i < 3; i++ {
		uF[i] = -db.Kx*ex[i] - db.Kv*ev[i] - extForce[i] + m*xddDes[i]
	}
	return uF
}

// AttitudeError returns the attitude and angular velocity tracking errors of
// an inertial state against the reference, for analysis of a controlled run.
func (db *Dumbbell) AttitudeError(t float64, s []float64) (eR, eW []float64) {
	st := decodeState(s)
	Rd, _, wd, _ := DesiredAttitude(t)
	var rdTr, rTrd mat64.Dense
	rdTr.Mul(Rd.T(), st.R)
	rTrd.Mul(st.R.T(), Rd)
	var eRm mat64.Dense
	eRm.Sub(&rdTr, &rTrd)
	eRm.Scale(0.5, &eRm)
	return vee(&eRm), sub3(st.w, MxV33(&rTrd, wd))
}

// TranslationError returns the position and velocity tracking errors of an
// inertial state against the reference.
func (db *Dumbbell) TranslationError(t float64, s []float64) (ex, ev []float64) {
	st := decodeState(s)
	xDes, xdDes, _ := DesiredTranslation(t)
	return sub3(st.pos, xDes), sub3(st.vel, xdDes)
}
