package deployment

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		glider  string
		start   time.Time
		wantErr bool
	}{
		{
			name:   "valid",
			input:  "ru30-20210503T1929",
			glider: "ru30",
			start:  time.Date(2021, 5, 3, 19, 29, 0, 0, time.UTC),
		},
		{
			name:   "glider name with underscore",
			input:  "maracoos_02-20210716T1814",
			glider: "maracoos_02",
			start:  time.Date(2021, 7, 16, 18, 14, 0, 0, time.UTC),
		},
		{name: "no separator", input: "ru30", wantErr: true},
		{name: "bad date", input: "ru30-2021May03", wantErr: true},
		{name: "empty glider", input: "-20210503T1929", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Errorf("Parse(%q) succeeded, want error", tt.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("Parse(%q): %v", tt.input, err)
			}
			if got.Glider != tt.glider {
				t.Errorf("Glider = %q, want %q", got.Glider, tt.glider)
			}
			if !got.StartUTC.Equal(tt.start) {
				t.Errorf("StartUTC = %v, want %v", got.StartUTC, tt.start)
			}
		})
	}
}

func TestLocationLayout(t *testing.T) {
	dep, err := Parse("ru30-20210503T1929")
	if err != nil {
		t.Fatal(err)
	}
	want := filepath.Join("/data", "deployments", "2021", "ru30-20210503T1929")
	if got := dep.Location("/data"); got != want {
		t.Errorf("Location = %q, want %q", got, want)
	}
}

func TestDataPath(t *testing.T) {
	home := t.TempDir()
	dep, err := Parse("ru30-20210503T1929")
	if err != nil {
		t.Fatal(err)
	}

	if _, err := dep.DataPath(home, "sci", "profile", "rt"); err == nil {
		t.Error("expected error for missing data directory")
	}

	want := filepath.Join(dep.Location(home), "data", "out", "nc", "sci-profile", "rt")
	if err := os.MkdirAll(want, 0o755); err != nil {
		t.Fatal(err)
	}
	got, err := dep.DataPath(home, "sci", "profile", "rt")
	if err != nil {
		t.Fatal(err)
	}
	if got != want {
		t.Errorf("DataPath = %q, want %q", got, want)
	}
}

func TestListQueueSorted(t *testing.T) {
	dataPath := t.TempDir()
	queue := filepath.Join(dataPath, "queue")
	if err := os.MkdirAll(queue, 0o755); err != nil {
		t.Fatal(err)
	}

	names := []string{
		"ru30_20210503T120000Z_sbd.nc",
		"ru30_20210503T020000Z_sbd.nc",
		"ru30_20210503T080000Z_sbd.nc",
	}
	for _, n := range names {
		if err := os.WriteFile(filepath.Join(queue, n), nil, 0o644); err != nil {
			t.Fatal(err)
		}
	}
	// non-matching files stay out of the queue
	if err := os.WriteFile(filepath.Join(queue, "ru30_20210503T050000Z_sbd.nc.duplicate"), nil, 0o644); err != nil {
		t.Fatal(err)
	}

	got, err := ListQueue(dataPath)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{
		filepath.Join(queue, "ru30_20210503T020000Z_sbd.nc"),
		filepath.Join(queue, "ru30_20210503T080000Z_sbd.nc"),
		filepath.Join(queue, "ru30_20210503T120000Z_sbd.nc"),
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ListQueue = %v, want %v", got, want)
	}
}

func TestListQueueEmpty(t *testing.T) {
	got, err := ListQueue(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 0 {
		t.Errorf("ListQueue = %v, want empty", got)
	}
}
