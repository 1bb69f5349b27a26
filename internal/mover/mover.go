// Package mover relocates quality-controlled profile files out of a
// deployment's queue directory.
package mover

import (
	"os"
	"path/filepath"

	"go.uber.org/zap"
)

// Result summarizes one move pass.
type Result struct {
	TotalFiles int
	Moved      int
	Errors     int
}

// Move moves every file into destDir, keeping file names. Per-file
// failures are logged and counted; the rest of the queue still moves.
func Move(files []string, destDir string, logger *zap.SugaredLogger) Result {
	res := Result{TotalFiles: len(files)}

	for _, f := range files {
		dst := filepath.Join(destDir, filepath.Base(f))
		if err := os.Rename(f, dst); err != nil {
			logger.Errorf("error moving file %s (%v)", f, err)
			res.Errors++
			continue
		}
		res.Moved++
	}

	logger.Infof("moved %d of %d valid files to: %s", res.Moved, res.TotalFiles, destDir)
	return res
}
