package dumbbell

// Perturbations defines additional disturbances summed into the gravitational
// force and moment during the propagation, e.g. solar radiation pressure or an
// unmodeled outgassing torque.
type Perturbations struct {
	// Arbitrary returns an extra force (working frame) and moment (body
	// frame) for the given time and state. May be nil.
	Arbitrary func(t float64, s []float64) (force, moment []float64)
}

func (p Perturbations) isEmpty() bool {
	return p.Arbitrary == nil
}

// Perturb returns the perturbing force and moment at this state.
func (p Perturbations) Perturb(t float64, s []float64) (force, moment []float64) {
	if p.isEmpty() {
		return []float64{0, 0, 0}, []float64{0, 0, 0}
	}
	return p.Arbitrary(t, s)
}
