package dumbbell

import (
	"fmt"
	"math"
	"os"

	kitlog "github.com/go-kit/kit/log"
	"github.com/gonum/matrix/mat64"
)

// GainSpec defines the desired closed loop response of one control channel.
type GainSpec struct {
	Overshoot    float64 // overshoot fraction, within (0, 1)
	SettlingTime float64 // settling time in seconds
}

// DampingRatio returns the damping ratio matching the overshoot target.
func (g GainSpec) DampingRatio() float64 {
	lnOS := math.Log(g.Overshoot)
	return -lnOS / math.Sqrt(math.Pi*math.Pi+lnOS*lnOS)
}

// NaturalFrequency returns the natural frequency matching both targets.
func (g GainSpec) NaturalFrequency() float64 {
	return 4 / (g.DampingRatio() * g.SettlingTime)
}

func (g GainSpec) valid() error {
	if g.Overshoot <= 0 || g.Overshoot >= 1 {
		return fmt.Errorf("dumbbell: overshoot fraction %f not in (0,1)", g.Overshoot)
	}
	if g.SettlingTime <= 0 {
		return fmt.Errorf("dumbbell: settling time %f must be positive", g.SettlingTime)
	}
	return nil
}

// Dumbbell models a rigid spacecraft as two spherical point masses joined by
// a rigid massless rod along the body x axis. All distances are in km and
// masses in kg, matching the asteroid potential units.
type Dumbbell struct {
	M1, M2 float64     // point masses (kg)
	L      float64     // separation of the two mass centers (km)
	R1, R2 float64     // radius of each spherical mass (km)
	J      *mat64.Dense // combined inertia about the center of mass
	Jd     *mat64.Dense // distributed inertia used in the energy computation
	Jinv   *mat64.Dense
	// Controller gains from the second order pole placement.
	KR, KW float64 // attitude
	Kx, Kv float64 // translation

	mratio float64
	ζ1, ζ2 []float64 // center of mass offsets of each point mass, body frame
	logger kitlog.Logger
}

// NewDumbbell returns a dumbbell with the reference gain targets: 5%
// overshoot with a 200 s translational and 2 s rotational settling time.
func NewDumbbell(m1, m2, l float64) (*Dumbbell, error) {
	return NewDumbbellWithGains(m1, m2, l, GainSpec{0.05, 200}, GainSpec{0.05, 2})
}

// NewDumbbellWithGains returns a dumbbell with explicit closed loop targets
// for the translation and rotation channels.
func NewDumbbellWithGains(m1, m2, l float64, translation, rotation GainSpec) (*Dumbbell, error) {
	if m1 <= 0 || m2 <= 0 {
		return nil, fmt.Errorf("dumbbell: masses must be positive (m1=%f, m2=%f)", m1, m2)
	}
	if l <= 0 {
		return nil, fmt.Errorf("dumbbell: separation must be positive (l=%f)", l)
	}
	if err := translation.valid(); err != nil {
		return nil, err
	}
	if err := rotation.valid(); err != nil {
		return nil, err
	}
	db := &Dumbbell{M1: m1, M2: m2, L: l, R1: 0.001, R2: 0.001}
	db.mratio = m2 / (m1 + m2)
	lcg1 := db.mratio * l // distance from m1 to the CG along the b1 direction
	db.ζ1 = []float64{-lcg1, 0, 0}
	db.ζ2 = []float64{l - lcg1, 0, 0}

	jm1 := 2.0 / 5 * m1 * db.R1 * db.R1
	jm2 := 2.0 / 5 * m2 * db.R2 * db.R2

	// Spherical inertias plus the parallel axis contribution of each offset.
	db.J = ScaledDenseIdentity(3, jm1+jm2)
	db.Jd = ScaledDenseIdentity(3, (jm1+jm2)/2)
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			par := m1*db.ζ1[i]*db.ζ1[j] + m2*db.ζ2[i]*db.ζ2[j]
			db.Jd.Set(i, j, db.Jd.At(i, j)+par)
			if i == j {
				db.J.Set(i, j, db.J.At(i, j)+m1*dot(db.ζ1, db.ζ1)+m2*dot(db.ζ2, db.ζ2)-par)
			} else {
				db.J.Set(i, j, db.J.At(i, j)-par)
			}
		}
	}
	db.Jinv = mat64.NewDense(3, 3, nil)
	if err := db.Jinv.Inverse(db.J); err != nil {
		return nil, fmt.Errorf("dumbbell: inertia tensor is singular: %s", err)
	}

	ζt := translation.DampingRatio()
	wnt := translation.NaturalFrequency()
	ζr := rotation.DampingRatio()
	wnr := rotation.NaturalFrequency()
	db.KR = wnr * wnr
	db.KW = 2 * ζr * wnr
	db.Kx = (m1 + m2) * wnt * wnt
	db.Kv = (m1 + m2) * 2 * ζt * wnt

	db.logger = kitlog.With(kitlog.NewLogfmtLogger(kitlog.NewSyncWriter(os.Stdout)), "vehicle", "dumbbell")
	return db, nil
}

// Mass returns the total mass of the dumbbell.
func (db *Dumbbell) Mass() float64 {
	return db.M1 + db.M2
}

// SetLogger changes the output logger of this vehicle.
func (db *Dumbbell) SetLogger(l kitlog.Logger) {
	db.logger = l
}

// LogInfo logs the mass properties and gains of this vehicle.
func (db *Dumbbell) LogInfo() {
	db.logger.Log("level", "info", "subsys", "vehicle", "m1(kg)", db.M1, "m2(kg)", db.M2, "l(km)", db.L, "kR", db.KR, "kW", db.KW, "kx", db.Kx, "kv", db.Kv)
}

func (db *Dumbbell) String() string {
	return fmt.Sprintf("Dumbbell{m1=%.1f kg, m2=%.1f kg, l=%.4f km}", db.M1, db.M2, db.L)
}
