package dumbbell

import (
	"github.com/gonum/matrix/mat64"
)

// Renderer is the imaging collaborator contract. An implementation renders
// one view of the asteroid from the given vehicle pose and persists it under
// the output name.
//
// Rendering is strictly synchronous; calling it from a per step Observer
// stalls the integration loop for the duration of each render, so drivers
// typically render post hoc from the recorded trajectory instead.
type Renderer interface {
	Render(pos []float64, attitude *mat64.Dense, asteroidAngle float64, lightPos []float64, name string) error
}

// RenderTrajectory renders every decim-th step of a trajectory.
func RenderTrajectory(r Renderer, traj *Trajectory, ast *Asteroid, lightPos []float64, name string, decim int) error {
	if decim < 1 {
		decim = 1
	}
	for i := 0; i < traj.Len(); i += decim {
		t := traj.Times[i]
		st := decodeState(traj.States[i])
		if err := r.Render(st.pos, st.R, -ast.Omega*t, lightPos, name); err != nil {
			return err
		}
	}
	return nil
}
