// Package deployment resolves glider deployment names to their on-disk
// data locations.
package deployment

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"
)

// timeLayout matches the trajectory timestamp in a deployment name.
const timeLayout = "20060102T1504"

// A Deployment identifies one glider mission. Deployment names are
// formatted glider-YYYYmmddTHHMM, e.g. ru30-20210503T1929.
type Deployment struct {
	Name     string
	Glider   string
	StartUTC time.Time
}

// Parse splits and validates a deployment name.
func Parse(name string) (*Deployment, error) {
	parts := strings.SplitN(name, "-", 2)
	if len(parts) != 2 || parts[0] == "" {
		return nil, fmt.Errorf("invalid deployment name %s", name)
	}

	start, err := time.ParseInLocation(timeLayout, parts[1], time.UTC)
	if err != nil {
		return nil, fmt.Errorf("error parsing trajectory date %s: %w", parts[1], err)
	}

	return &Deployment{
		Name:     fmt.Sprintf("%s-%s", parts[0], start.Format(timeLayout)),
		Glider:   parts[0],
		StartUTC: start,
	}, nil
}

// Location returns the deployment directory, laid out under the data home
// as deployments/<year>/<name>.
func (d *Deployment) Location(dataHome string) string {
	return filepath.Join(dataHome, "deployments", strconv.Itoa(d.StartUTC.Year()), d.Name)
}

// DataPath returns the per-mode profile file directory for the deployment.
// The dataset level (sci or ngdac), CDM data type (profile) and mode (rt or
// delayed) select the subdirectory, mirroring the upstream processing
// layout. The directory must exist.
func (d *Deployment) DataPath(dataHome, datasetType, cdmDataType, mode string) (string, error) {
	p := filepath.Join(d.Location(dataHome), "data", "out", "nc",
		fmt.Sprintf("%s-%s", datasetType, cdmDataType), mode)

	fi, err := os.Stat(p)
	if err != nil {
		return "", fmt.Errorf("data directory not found: %s", p)
	}
	if !fi.IsDir() {
		return "", fmt.Errorf("data path is not a directory: %s", p)
	}
	return p, nil
}

// ProcLogsDir returns the deployment's processing log directory.
func (d *Deployment) ProcLogsDir(dataHome string) string {
	return filepath.Join(d.Location(dataHome), "proc-logs")
}

// LogFilename builds the per-run log file name for this deployment.
func (d *Deployment) LogFilename(datasetType, cdmDataType, mode string) string {
	return strings.Join([]string{
		time.Now().UTC().Format("20060102") + "_" + d.Name,
		datasetType, cdmDataType, mode, "qc",
	}, "-") + ".log"
}

// QCConfigRoot returns the shared QC configuration directory under the
// data home, used when a deployment has no config of its own.
func QCConfigRoot(dataHome string) string {
	return filepath.Join(dataHome, "qc", "config")
}

// ListQueue returns the profile files waiting in the data path's queue
// directory, sorted lexicographically. File names encode acquisition time,
// so this order is acquisition order; reordering would change pairing
// decisions downstream.
func ListQueue(dataPath string) ([]string, error) {
	files, err := filepath.Glob(filepath.Join(dataPath, "queue", "*.nc"))
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}
