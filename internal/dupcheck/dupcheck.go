// Package dupcheck finds profile files whose timestamps fully duplicate
// all or part of an adjacent file.
package dupcheck

import (
	"errors"
	"io/fs"
	"os"

	"go.uber.org/zap"

	"github.com/rucool/gliderqc/internal/profile"
)

// Result summarizes one duplicate-check pass over a deployment queue.
type Result struct {
	TotalFiles int
	Duplicates int
	Errors     int
}

// Check compares each file's timestamps against the next file's. A file
// whose timestamps all appear in its neighbor is a full duplicate and is
// renamed <name>.duplicate, dropping it out of the queue glob. Partial
// overlaps are left alone. Files renamed by an earlier comparison are
// skipped without error.
func Check(files []string, logger *zap.SugaredLogger) Result {
	res := Result{TotalFiles: len(files)}

	for i := 0; i+1 < len(files); i++ {
		first, err := openTimes(files[i])
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			logger.Errorf("error reading file %s (%v)", files[i], err)
			res.Errors++
			continue
		}

		second, err := openTimes(files[i+1])
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			logger.Errorf("error reading file %s (%v)", files[i+1], err)
			res.Errors++
			continue
		}

		uniqueFirst, uniqueSecond := uniqueCounts(first, second)

		switch {
		case uniqueSecond == 0:
			// the second file adds no timestamps the first lacks
			if rename(files[i+1], logger, &res) {
				res.Duplicates++
			}
		case uniqueFirst == 0:
			if rename(files[i], logger, &res) {
				res.Duplicates++
			}
		}
	}

	logger.Infof("%d duplicated files found (of %d total files)", res.Duplicates, res.TotalFiles)
	return res
}

// openTimes reads just the timestamp variable of a profile file.
func openTimes(path string) ([]float64, error) {
	ds, err := profile.Open(path)
	if err != nil {
		return nil, err
	}
	v, ok := ds.Variable("time")
	if !ok {
		return nil, errors.New("time variable not found")
	}
	return v.Values, nil
}

// uniqueCounts returns how many timestamps of each side are absent from
// the other.
func uniqueCounts(first, second []float64) (uniqueFirst, uniqueSecond int) {
	inFirst := make(map[float64]struct{}, len(first))
	for _, t := range first {
		inFirst[t] = struct{}{}
	}
	inSecond := make(map[float64]struct{}, len(second))
	for _, t := range second {
		inSecond[t] = struct{}{}
	}

	for t := range inFirst {
		if _, ok := inSecond[t]; !ok {
			uniqueFirst++
		}
	}
	for t := range inSecond {
		if _, ok := inFirst[t]; !ok {
			uniqueSecond++
		}
	}
	return uniqueFirst, uniqueSecond
}

func rename(path string, logger *zap.SugaredLogger, res *Result) bool {
	if err := os.Rename(path, path+".duplicate"); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			// already renamed by an earlier comparison
			return false
		}
		logger.Errorf("error renaming duplicate %s (%v)", path, err)
		res.Errors++
		return false
	}
	logger.Infof("duplicated timestamps found in file: %s", path)
	return true
}
