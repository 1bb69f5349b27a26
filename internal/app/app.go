// Package app wires the QC tools together and drives them across glider
// deployments.
package app

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/rucool/gliderqc/internal/deployment"
	"github.com/rucool/gliderqc/internal/dupcheck"
	"github.com/rucool/gliderqc/internal/hysteresis"
	"github.com/rucool/gliderqc/internal/log"
	"github.com/rucool/gliderqc/internal/mover"
	"github.com/rucool/gliderqc/internal/report"
	"github.com/rucool/gliderqc/pkg/config"
)

// RunDBFilename is the QC run database, kept next to the shared QC config
// under the data home.
const RunDBFilename = "qc_runs.db"

// Options carries the CLI selections shared by the QC tools.
type Options struct {
	Mode        string // rt or delayed
	DatasetType string // sci or ngdac
	CDMDataType string // profile
	Debug       bool
}

// Validate rejects option values outside the known processing choices.
func (o Options) Validate() error {
	if o.Mode != "rt" && o.Mode != "delayed" {
		return fmt.Errorf("invalid mode %q (want rt or delayed)", o.Mode)
	}
	if o.DatasetType != "sci" && o.DatasetType != "ngdac" {
		return fmt.Errorf("invalid dataset level %q (want sci or ngdac)", o.DatasetType)
	}
	if o.CDMDataType != "profile" {
		return fmt.Errorf("invalid CDM data type %q (want profile)", o.CDMDataType)
	}
	return nil
}

// App runs QC passes over glider deployments. Deployments are processed
// strictly in order with no shared mutable state between them; a failure
// in one never stops the rest.
type App struct {
	env    *config.Env
	opts   Options
	logger *zap.SugaredLogger
}

// New creates a new application instance.
func New(env *config.Env, opts Options, logger *zap.SugaredLogger) *App {
	return &App{
		env:    env,
		opts:   opts,
		logger: logger,
	}
}

// RunHysteresis runs the CTD hysteresis test over each named deployment in
// order. The returned status is nonzero if any deployment or file failed.
func (a *App) RunHysteresis(deployments []string) int {
	store, err := report.Open(filepath.Join(a.env.DataHome, "qc", RunDBFilename))
	if err != nil {
		// run recording is best effort; QC itself still proceeds
		a.logger.Warnf("run database unavailable: %v", err)
		store = nil
	} else {
		defer store.Close()
	}

	status := 0
	for _, name := range deployments {
		if err := a.runHysteresisDeployment(name, store); err != nil {
			a.logger.Errorf("%s: %v", name, err)
			status = 1
		}
	}
	return status
}

func (a *App) runHysteresisDeployment(name string, store *report.Store) error {
	dep, err := deployment.Parse(name)
	if err != nil {
		return err
	}

	dataPath, err := dep.DataPath(a.env.DataHome, a.opts.DatasetType, a.opts.CDMDataType, a.opts.Mode)
	if err != nil {
		return err
	}

	cfgFile, err := config.FindHysteresisConfig(dep.Location(a.env.DataHome), deployment.QCConfigRoot(a.env.DataHome))
	if err != nil {
		return err
	}
	thresholds, err := config.LoadHysteresisThresholds(cfgFile)
	if err != nil {
		return err
	}

	logger := a.deploymentLogger(dep)
	logger.Infof("using config file: %s", cfgFile)

	files, err := deployment.ListQueue(dataPath)
	if err != nil {
		return err
	}

	started := time.Now().UTC()
	summary := hysteresis.New(*thresholds, logger).Run(files)

	if store != nil {
		run := &report.Run{
			Deployment:   dep.Name,
			Test:         "ctd_hysteresis_test",
			Mode:         a.opts.Mode,
			TotalFiles:   summary.TotalFiles,
			SuspectFiles: summary.SuspectFiles,
			FailedFiles:  summary.FailedFiles,
			FileErrors:   summary.Errors,
			StartedAt:    started,
			CompletedAt:  time.Now().UTC(),
		}
		if err := store.Record(run); err != nil {
			logger.Warnf("unable to record run: %v", err)
		}
	}

	if summary.Errors > 0 {
		return fmt.Errorf("%d file errors during hysteresis pass", summary.Errors)
	}
	return nil
}

// RunDuplicateCheck checks each named deployment's queue for files whose
// timestamps duplicate a neighbor.
func (a *App) RunDuplicateCheck(deployments []string) int {
	status := 0
	for _, name := range deployments {
		if err := a.runDeploymentQueue(name, func(dep *deployment.Deployment, files []string, logger *zap.SugaredLogger) error {
			if res := dupcheck.Check(files, logger); res.Errors > 0 {
				return fmt.Errorf("%d file errors during duplicate check", res.Errors)
			}
			return nil
		}); err != nil {
			a.logger.Errorf("%s: %v", name, err)
			status = 1
		}
	}
	return status
}

// RunMove moves each named deployment's queued files into its data
// directory.
func (a *App) RunMove(deployments []string) int {
	status := 0
	for _, name := range deployments {
		if err := a.runDeploymentQueue(name, func(dep *deployment.Deployment, files []string, logger *zap.SugaredLogger) error {
			dataPath, err := dep.DataPath(a.env.DataHome, a.opts.DatasetType, a.opts.CDMDataType, a.opts.Mode)
			if err != nil {
				return err
			}
			if res := mover.Move(files, dataPath, logger); res.Errors > 0 {
				return fmt.Errorf("%d file errors during move", res.Errors)
			}
			return nil
		}); err != nil {
			a.logger.Errorf("%s: %v", name, err)
			status = 1
		}
	}
	return status
}

// runDeploymentQueue resolves one deployment's queue and hands the sorted
// file list to fn with the deployment's own logger.
func (a *App) runDeploymentQueue(name string, fn func(*deployment.Deployment, []string, *zap.SugaredLogger) error) error {
	dep, err := deployment.Parse(name)
	if err != nil {
		return err
	}
	dataPath, err := dep.DataPath(a.env.DataHome, a.opts.DatasetType, a.opts.CDMDataType, a.opts.Mode)
	if err != nil {
		return err
	}
	files, err := deployment.ListQueue(dataPath)
	if err != nil {
		return err
	}
	return fn(dep, files, a.deploymentLogger(dep))
}

// deploymentLogger writes to the deployment's proc-logs directory when it
// exists, else falls back to the process logger.
func (a *App) deploymentLogger(dep *deployment.Deployment) *zap.SugaredLogger {
	dir := dep.ProcLogsDir(a.env.DataHome)
	if !isDir(dir) {
		a.logger.Warnf("%s proc-logs directory not found, logging to console", dep.Name)
		return a.logger
	}
	filename := dep.LogFilename(a.opts.DatasetType, a.opts.CDMDataType, a.opts.Mode)
	return log.NewFileLogger(filepath.Join(dir, filename), a.opts.Debug)
}

func isDir(path string) bool {
	fi, err := os.Stat(path)
	return err == nil && fi.IsDir()
}
