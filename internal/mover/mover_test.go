package mover

import (
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"
)

func TestMove(t *testing.T) {
	dataPath := t.TempDir()
	queue := filepath.Join(dataPath, "queue")
	if err := os.MkdirAll(queue, 0o755); err != nil {
		t.Fatal(err)
	}

	var files []string
	for _, n := range []string{"p01.nc", "p02.nc"} {
		p := filepath.Join(queue, n)
		if err := os.WriteFile(p, []byte("data"), 0o644); err != nil {
			t.Fatal(err)
		}
		files = append(files, p)
	}

	res := Move(files, dataPath, zap.NewNop().Sugar())

	if res.Moved != 2 || res.Errors != 0 {
		t.Errorf("result = %+v, want 2 moved", res)
	}
	for _, n := range []string{"p01.nc", "p02.nc"} {
		if _, err := os.Stat(filepath.Join(dataPath, n)); err != nil {
			t.Errorf("%s not moved to data path: %v", n, err)
		}
		if _, err := os.Stat(filepath.Join(queue, n)); err == nil {
			t.Errorf("%s still in queue", n)
		}
	}
}

func TestMoveCountsFailures(t *testing.T) {
	dataPath := t.TempDir()
	missing := filepath.Join(dataPath, "queue", "p01.nc")

	res := Move([]string{missing}, dataPath, zap.NewNop().Sugar())

	if res.Moved != 0 || res.Errors != 1 {
		t.Errorf("result = %+v, want 1 error", res)
	}
}
