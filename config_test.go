package dumbbell

import (
	"os"
	"testing"
)

func TestDefaultSimConfig(t *testing.T) {
	cfg := DefaultSimConfig()
	if cfg.T0 != 0 || cfg.Tf != 3600 || cfg.Step != 1 {
		t.Fatalf("integration window defaults changed: %+v", cfg)
	}
	if cfg.M1 != 500 || cfg.M2 != 500 || cfg.L != 0.003 {
		t.Fatalf("vehicle defaults changed: %+v", cfg)
	}
	if cfg.AsteroidName != "itokawa" || cfg.AsteroidOmega != ItokawaRotationRate || cfg.Mu != 2.36e-9 {
		t.Fatalf("asteroid defaults changed: %+v", cfg)
	}
	if cfg.DriftTol != 1e-6 || cfg.MaxSteps != 0 {
		t.Fatalf("tolerance defaults changed: %+v", cfg)
	}
}

func TestLoadSimConfigMissingFile(t *testing.T) {
	dir, err := os.MkdirTemp("", "dumbbell-conf")
	if err != nil {
		t.Fatalf("could not create a scratch directory: %s", err)
	}
	defer os.RemoveAll(dir)
	os.Setenv("DUMBBELL_CONFIG", dir)
	defer os.Unsetenv("DUMBBELL_CONFIG")

	cfg, err := LoadSimConfig()
	if err != nil {
		t.Fatalf("a missing file must not be an error: %s", err)
	}
	if cfg != DefaultSimConfig() {
		t.Fatalf("expected the defaults, got %+v", cfg)
	}
}

func TestLoadSimConfigFromFile(t *testing.T) {
	dir, err := os.MkdirTemp("", "dumbbell-conf")
	if err != nil {
		t.Fatalf("could not create a scratch directory: %s", err)
	}
	defer os.RemoveAll(dir)
	conf := `[sim]
tf = 7200.0
step = 0.5
maxsteps = 100

[vehicle]
m1 = 250.0

[asteroid]
name = "bennu"
mu = 4.9e-9

[general]
output_path = "/tmp/dumbbell-out"
`
	if err := os.WriteFile(dir+"/conf.toml", []byte(conf), 0644); err != nil {
		t.Fatalf("could not write the configuration: %s", err)
	}
	os.Setenv("DUMBBELL_CONFIG", dir)
	defer os.Unsetenv("DUMBBELL_CONFIG")

	cfg, err := LoadSimConfig()
	if err != nil {
		t.Fatalf("load failed: %s", err)
	}
	if cfg.Tf != 7200 || cfg.Step != 0.5 || cfg.MaxSteps != 100 {
		t.Fatalf("sim section not applied: %+v", cfg)
	}
	if cfg.M1 != 250 {
		t.Fatalf("vehicle section not applied: %+v", cfg)
	}
	if cfg.AsteroidName != "bennu" || cfg.Mu != 4.9e-9 {
		t.Fatalf("asteroid section not applied: %+v", cfg)
	}
	if cfg.OutputDir != "/tmp/dumbbell-out" {
		t.Fatalf("output path not applied: %+v", cfg)
	}
	// Untouched keys keep their defaults.
	if cfg.T0 != 0 || cfg.M2 != 500 || cfg.AsteroidOmega != ItokawaRotationRate {
		t.Fatalf("defaults lost: %+v", cfg)
	}
}
