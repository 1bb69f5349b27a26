// Package config resolves the environment and QC threshold configuration
// for glider deployment processing.
package config

import (
	"fmt"
	"os"

	"github.com/kelseyhightower/envconfig"
)

// Env holds process-level settings resolved from the environment.
type Env struct {
	// DataHome is the root directory holding all deployment data,
	// the shared QC config, and the QC run database.
	DataHome string `envconfig:"GLIDER_DATA_HOME" required:"true"`
}

// LoadEnv resolves and validates the environment configuration.
func LoadEnv() (*Env, error) {
	var e Env
	if err := envconfig.Process("", &e); err != nil {
		return nil, err
	}

	fi, err := os.Stat(e.DataHome)
	if err != nil {
		return nil, fmt.Errorf("invalid GLIDER_DATA_HOME %s: %w", e.DataHome, err)
	}
	if !fi.IsDir() {
		return nil, fmt.Errorf("invalid GLIDER_DATA_HOME %s: not a directory", e.DataHome)
	}

	return &e, nil
}
