package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, path, body string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestLoadHysteresisThresholds(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ctd_hysteresis.yml")
	writeConfig(t, path, "ctd_hysteresis_test:\n  suspect_threshold: 0.4\n  fail_threshold: 0.8\n")

	got, err := LoadHysteresisThresholds(path)
	if err != nil {
		t.Fatal(err)
	}
	if got.SuspectThreshold != 0.4 || got.FailThreshold != 0.8 {
		t.Errorf("thresholds = %+v, want 0.4/0.8", got)
	}
}

func TestLoadHysteresisThresholdsRejectsInverted(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{
			name: "fail below suspect",
			body: "ctd_hysteresis_test:\n  suspect_threshold: 0.8\n  fail_threshold: 0.4\n",
		},
		{
			name: "equal thresholds",
			body: "ctd_hysteresis_test:\n  suspect_threshold: 0.5\n  fail_threshold: 0.5\n",
		},
		{
			name: "negative suspect",
			body: "ctd_hysteresis_test:\n  suspect_threshold: -0.1\n  fail_threshold: 0.5\n",
		},
		{
			name: "missing section",
			body: "some_other_test:\n  suspect_threshold: 0.2\n  fail_threshold: 0.5\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "ctd_hysteresis.yml")
			writeConfig(t, path, tt.body)
			if _, err := LoadHysteresisThresholds(path); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestFindHysteresisConfig(t *testing.T) {
	root := t.TempDir()
	deploymentLocation := filepath.Join(root, "deployments", "2021", "ru30-20210503T1929")
	qcRoot := filepath.Join(root, "qc", "config")

	deploymentFile := filepath.Join(deploymentLocation, "config", "qc", HysteresisConfigFilename)
	defaultFile := filepath.Join(qcRoot, HysteresisConfigFilename)

	// neither present
	if _, err := FindHysteresisConfig(deploymentLocation, qcRoot); err == nil {
		t.Error("expected error with no config anywhere")
	}

	// default only
	writeConfig(t, defaultFile, "")
	got, err := FindHysteresisConfig(deploymentLocation, qcRoot)
	if err != nil {
		t.Fatal(err)
	}
	if got != defaultFile {
		t.Errorf("got %q, want default %q", got, defaultFile)
	}

	// deployment-specific config wins over the default
	writeConfig(t, deploymentFile, "")
	got, err = FindHysteresisConfig(deploymentLocation, qcRoot)
	if err != nil {
		t.Fatal(err)
	}
	if got != deploymentFile {
		t.Errorf("got %q, want deployment-specific %q", got, deploymentFile)
	}
}

func TestThresholdsString(t *testing.T) {
	s := HysteresisThresholds{SuspectThreshold: 0.2, FailThreshold: 0.5}.String()
	if !strings.Contains(s, "0.2") || !strings.Contains(s, "0.5") {
		t.Errorf("String() = %q, want both threshold values", s)
	}
}

func TestLoadEnv(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("GLIDER_DATA_HOME", dir)

	env, err := LoadEnv()
	if err != nil {
		t.Fatal(err)
	}
	if env.DataHome != dir {
		t.Errorf("DataHome = %q, want %q", env.DataHome, dir)
	}
}

func TestLoadEnvRejectsMissingDir(t *testing.T) {
	t.Setenv("GLIDER_DATA_HOME", filepath.Join(t.TempDir(), "nope"))
	if _, err := LoadEnv(); err == nil {
		t.Error("expected error for nonexistent data home")
	}
}
