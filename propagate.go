package dumbbell

import (
	"errors"
	"fmt"
	"math"
	"os"
	"sync"
	"time"

	"github.com/ChristopherRabotin/ode"
	kitlog "github.com/go-kit/kit/log"
	"github.com/ready-steady/ode/dopri"
)

var (
	// ErrMaxSteps is returned when the step count limit is exceeded before
	// the final time is reached.
	ErrMaxSteps = errors.New("dumbbell: maximum step count exceeded")
)

// Trajectory is the ordered (time, state) sequence produced by one
// integration run. It is read only once the run completes; on a failed run it
// holds every step up to the last successful one.
type Trajectory struct {
	Times  []float64
	States [][]float64
}

// Len returns the number of recorded steps.
func (tr *Trajectory) Len() int {
	return len(tr.Times)
}

// Last returns the final recorded time and state.
func (tr *Trajectory) Last() (float64, []float64) {
	n := tr.Len()
	if n == 0 {
		return 0, nil
	}
	return tr.Times[n-1], tr.States[n-1]
}

func (tr *Trajectory) append(t float64, s []float64) {
	c := make([]float64, len(s))
	copy(c, s)
	tr.Times = append(tr.Times, t)
	tr.States = append(tr.States, c)
}

// Observer is notified after every accepted integration step, e.g. to hand a
// state to an imaging collaborator. It runs synchronously: a slow observer
// slows the whole propagation down.
type Observer interface {
	OnStep(t float64, s []float64)
}

// Propagation drives one EOM variant through the fixed step RK4 integrator by
// implementing its Integrable interface. It owns the running state vector and
// accumulates the trajectory.
type Propagation struct {
	EOM      *EOM
	Epoch    time.Time // wall clock time of t0, used for exported timestamps
	DriftTol float64   // rotation matrix orthonormality drift tolerance

	t0, tf, step float64
	maxSteps     uint64
	t            float64
	steps        uint64
	state        []float64
	traj         *Trajectory
	err          error
	observer     Observer
	stopChan     chan bool
	histChan     chan<- PropState
	wg           sync.WaitGroup
	logger       kitlog.Logger
}

// NewPropagation returns a propagation of the given EOM from the initial
// state over [cfg.T0, cfg.Tf] with cfg.Step. The initial state is recorded as
// the first trajectory point. Set conf to record the run to disk.
func NewPropagation(eom *EOM, s0 []float64, cfg SimConfig, conf ExportConfig) (*Propagation, error) {
	if len(s0) != StateSize {
		return nil, fmt.Errorf("dumbbell: initial state has %d entries, expected %d", len(s0), StateSize)
	}
	if cfg.Step <= 0 {
		return nil, fmt.Errorf("dumbbell: step size %f must be positive", cfg.Step)
	}
	if cfg.Tf <= cfg.T0 {
		return nil, fmt.Errorf("dumbbell: tf=%f must be after t0=%f", cfg.Tf, cfg.T0)
	}
	p := &Propagation{
		EOM:      eom,
		Epoch:    time.Now().UTC(),
		DriftTol: cfg.DriftTol,
		t0:       cfg.T0,
		tf:       cfg.Tf,
		step:     cfg.Step,
		maxSteps: cfg.MaxSteps,
		t:        cfg.T0,
		state:    append([]float64{}, s0...),
		traj:     &Trajectory{},
		stopChan: make(chan bool, 1),
		logger:   kitlog.With(kitlog.NewLogfmtLogger(kitlog.NewSyncWriter(os.Stdout)), "subsys", "prop", "frame", eom.Frame.String()),
	}
	if p.DriftTol == 0 {
		p.DriftTol = 1e-6
	}
	if p.maxSteps == 0 {
		p.maxSteps = math.MaxUint64
	}
	if !conf.IsUseless() {
		histChan := make(chan PropState, 1000)
		p.histChan = histChan
		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			StreamStates(cfg.OutputDir, conf, histChan)
		}()
	}
	p.record(p.t0, s0)
	return p, nil
}

// SetObserver registers a per step observer. Must be called before Propagate.
func (p *Propagation) SetObserver(o Observer) {
	p.observer = o
}

// Propagate runs the integration to completion and returns the trajectory.
// On failure the partial trajectory is returned along with the error.
func (p *Propagation) Propagate() (*Trajectory, error) {
	p.logger.Log("level", "info", "status", "starting", "t0(s)", p.t0, "tf(s)", p.tf, "step(s)", p.step)
	ode.NewRK4(p.t0, p.step, p).Solve()
	p.wg.Wait()
	if p.err != nil {
		p.logger.Log("level", "critical", "status", "failed", "t(s)", p.t, "steps", p.steps, "err", p.err)
		return p.traj, p.err
	}
	p.logger.Log("level", "notice", "status", "finished", "t(s)", p.t, "steps", p.steps)
	return p.traj, nil
}

// StopPropagation stops the propagation before it completes.
func (p *Propagation) StopPropagation() {
	p.stopChan <- true
}

// Err returns the error of a failed run, if any.
func (p *Propagation) Err() error {
	return p.err
}

// GetState implements the Integrable interface.
func (p *Propagation) GetState() []float64 {
	return p.state
}

// SetState implements the Integrable interface. It checks the rotation block
// against the drift tolerance before accepting the step.
func (p *Propagation) SetState(t float64, s []float64) {
	if p.err != nil {
		return
	}
	st := decodeState(s)
	if drift := orthonormalityDrift(st.R); drift > p.DriftTol {
		p.err = ErrIntegrity
		p.logger.Log("level", "critical", "t(s)", p.t, "drift", drift, "tol", p.DriftTol)
		return
	}
	p.t += p.step
	p.steps++
	p.state = s
	p.record(p.t, s)
	if p.observer != nil {
		p.observer.OnStep(p.t, s)
	}
	if p.steps >= p.maxSteps && p.t < p.tf-p.step/2 {
		p.err = ErrMaxSteps
	}
}

// Stop implements the Integrable interface.
func (p *Propagation) Stop(t float64) bool {
	select {
	case <-p.stopChan:
		p.closeHist()
		return true
	default:
		if p.err != nil || p.t >= p.tf-p.step/2 {
			p.closeHist()
			return true
		}
	}
	return false
}

// Func implements the Integrable interface. A failing gravity evaluation is
// recorded and zeroes the derivative; Stop then aborts the run with the
// trajectory preserved up to the last accepted step.
func (p *Propagation) Func(t float64, s []float64) []float64 {
	f, err := p.EOM.Derivative(t, s)
	if err != nil {
		if p.err == nil {
			p.err = err
		}
		return make([]float64, len(s))
	}
	return f
}

func (p *Propagation) record(t float64, s []float64) {
	p.traj.append(t, s)
	if p.histChan != nil {
		p.histChan <- PropState{DT: p.Epoch.Add(time.Duration(t-p.t0) * time.Second), T: t, State: append([]float64{}, s...)}
	}
}

func (p *Propagation) closeHist() {
	if p.histChan != nil {
		close(p.histChan)
		p.histChan = nil
	}
}

// PropagateDopri integrates the EOM through the adaptive Dormand-Prince
// stepper at the requested sample times. It is the second stepper interface
// supported; the physics are identical.
func PropagateDopri(eom *EOM, s0 []float64, times []float64) (*Trajectory, error) {
	if len(s0) != StateSize {
		return nil, fmt.Errorf("dumbbell: initial state has %d entries, expected %d", len(s0), StateSize)
	}
	if len(times) < 2 {
		return nil, fmt.Errorf("dumbbell: need at least two sample times")
	}
	integrator, err := dopri.New(dopri.DefaultConfig())
	if err != nil {
		return nil, err
	}
	var evalErr error
	values, _, err := integrator.Compute(eom.InPlace(&evalErr), s0, times)
	traj := &Trajectory{}
	for i := 0; i+1 <= len(values)/StateSize && i < len(times); i++ {
		traj.append(times[i], values[i*StateSize:(i+1)*StateSize])
	}
	if evalErr != nil {
		return traj, evalErr
	}
	if err != nil {
		return traj, err
	}
	return traj, nil
}
