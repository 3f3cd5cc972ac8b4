package dumbbell

import (
	"fmt"
	"os"

	"github.com/spf13/viper"
)

// SimConfig gathers every tunable of a simulation run. It is built once and
// passed explicitly into the propagation entry points.
type SimConfig struct {
	T0, Tf   float64 // integration window in seconds
	Step     float64 // fixed step size in seconds
	RelTol   float64 // relative tolerance of the adaptive path
	AbsTol   float64 // absolute tolerance of the adaptive path
	DriftTol float64 // rotation matrix drift tolerance
	MaxSteps uint64  // 0 means unlimited

	M1, M2 float64 // dumbbell masses in kg
	L      float64 // dumbbell separation in km

	AsteroidName  string
	AsteroidOmega float64 // spin rate in rad/s
	Mu            float64 // gravitational parameter of the stand-in field, km³/s²

	OutputDir string
}

// DefaultSimConfig mirrors the reference Itokawa landing scenario.
func DefaultSimConfig() SimConfig {
	return SimConfig{
		T0:            0,
		Tf:            3600,
		Step:          1,
		RelTol:        1e-6,
		AbsTol:        1e-6,
		DriftTol:      1e-6,
		MaxSteps:      0,
		M1:            500,
		M2:            500,
		L:             0.003,
		AsteroidName:  "itokawa",
		AsteroidOmega: ItokawaRotationRate,
		Mu:            2.36e-9,
		OutputDir:     ".",
	}
}

// LoadSimConfig reads the simulation configuration from the conf.toml file in
// $DUMBBELL_CONFIG (or ~/.dumbbell), falling back to the defaults for any
// value not set. A missing file is not an error.
func LoadSimConfig() (SimConfig, error) {
	cfg := DefaultSimConfig()
	v := viper.New()
	v.SetConfigName("conf")
	confPath := os.Getenv("DUMBBELL_CONFIG")
	if confPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return cfg, fmt.Errorf("dumbbell: could not determine home directory: %s", err)
		}
		confPath = home + "/.dumbbell"
	}
	v.AddConfigPath(confPath)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return cfg, nil
		}
		return cfg, fmt.Errorf("dumbbell: could not read configuration: %s", err)
	}

	setF := func(key string, dst *float64) {
		if v.IsSet(key) {
			*dst = v.GetFloat64(key)
		}
	}
	setF("sim.t0", &cfg.T0)
	setF("sim.tf", &cfg.Tf)
	setF("sim.step", &cfg.Step)
	setF("sim.reltol", &cfg.RelTol)
	setF("sim.abstol", &cfg.AbsTol)
	setF("sim.drifttol", &cfg.DriftTol)
	if v.IsSet("sim.maxsteps") {
		cfg.MaxSteps = uint64(v.GetInt64("sim.maxsteps"))
	}
	setF("vehicle.m1", &cfg.M1)
	setF("vehicle.m2", &cfg.M2)
	setF("vehicle.l", &cfg.L)
	if v.IsSet("asteroid.name") {
		cfg.AsteroidName = v.GetString("asteroid.name")
	}
	setF("asteroid.omega", &cfg.AsteroidOmega)
	setF("asteroid.mu", &cfg.Mu)
	if v.IsSet("general.output_path") {
		cfg.OutputDir = v.GetString("general.output_path")
	}
	return cfg, nil
}
