package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v2"
)

// HysteresisConfigFilename is the name of the threshold config file, both
// in a deployment's config/qc directory and in the shared QC config root.
const HysteresisConfigFilename = "ctd_hysteresis.yml"

// HysteresisThresholds are the flag decision thresholds for the CTD
// hysteresis test. The area between a profile pair, normalized to the
// pair's pressure range, is compared against the sensor data range scaled
// by each threshold.
type HysteresisThresholds struct {
	SuspectThreshold float64 `yaml:"suspect_threshold"`
	FailThreshold    float64 `yaml:"fail_threshold"`
}

// Validate rejects threshold sets that would flag inconsistently. A config
// with fail_threshold <= suspect_threshold would mark profiles SUSPECT that
// should have failed, so it is refused at load time.
func (t HysteresisThresholds) Validate() error {
	if t.SuspectThreshold < 0 {
		return fmt.Errorf("suspect_threshold must be >= 0, got %v", t.SuspectThreshold)
	}
	if t.FailThreshold <= t.SuspectThreshold {
		return fmt.Errorf("fail_threshold (%v) must be greater than suspect_threshold (%v)",
			t.FailThreshold, t.SuspectThreshold)
	}
	return nil
}

// String renders the thresholds for annotation attributes.
func (t HysteresisThresholds) String() string {
	return fmt.Sprintf("suspect_threshold: %v, fail_threshold: %v", t.SuspectThreshold, t.FailThreshold)
}

type hysteresisConfigFile struct {
	CTDHysteresisTest HysteresisThresholds `yaml:"ctd_hysteresis_test"`
}

// LoadHysteresisThresholds reads and validates a ctd_hysteresis.yml file.
func LoadHysteresisThresholds(filename string) (*HysteresisThresholds, error) {
	raw, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}

	var cfg hysteresisConfigFile
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("error parsing %s: %w", filename, err)
	}

	t := cfg.CTDHysteresisTest
	if err := t.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	return &t, nil
}

// FindHysteresisConfig returns the deployment-specific threshold config
// when one exists, else the shared default under the QC config root. Both
// missing is fatal for the deployment.
func FindHysteresisConfig(deploymentLocation, qcConfigRoot string) (string, error) {
	deploymentFile := filepath.Join(deploymentLocation, "config", "qc", HysteresisConfigFilename)
	if _, err := os.Stat(deploymentFile); err == nil {
		return deploymentFile, nil
	}

	defaultFile := filepath.Join(qcConfigRoot, HysteresisConfigFilename)
	if _, err := os.Stat(defaultFile); err == nil {
		return defaultFile, nil
	}

	return "", fmt.Errorf("no hysteresis config found (checked %s and %s)", deploymentFile, defaultFile)
}
