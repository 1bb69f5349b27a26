package profile

import (
	"math"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func testDataset() *Dataset {
	return &Dataset{
		GlobalAttributes: map[string]interface{}{"title": "glider profile"},
		Variables: []Variable{
			{Name: "time", Values: []float64{0, 30, 60}},
			{Name: "pressure", Values: []float64{0, 10, 20}, Attributes: map[string]interface{}{"units": "dbar"}},
			{Name: "conductivity", Values: []float64{3, math.NaN(), 4}, Attributes: map[string]interface{}{
				"ancillary_variables": "instrument_ctd conductivity_qartod_gross_range_test",
			}},
		},
	}
}

func TestRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "p01.nc")
	ds := testDataset()
	if err := ds.SaveTo(path); err != nil {
		t.Fatal(err)
	}

	got, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	if got.Len() != 3 {
		t.Errorf("Len() = %d, want 3", got.Len())
	}
	if got.Path() != path {
		t.Errorf("Path() = %q, want %q", got.Path(), path)
	}

	pressure, ok := got.Variable("pressure")
	if !ok {
		t.Fatal("pressure variable missing after round trip")
	}
	if !reflect.DeepEqual(pressure.Values, []float64{0, 10, 20}) {
		t.Errorf("pressure = %v", pressure.Values)
	}
	if units, _ := pressure.StringAttr("units"); units != "dbar" {
		t.Errorf("units = %q, want dbar", units)
	}

	cond, _ := got.Variable("conductivity")
	if !math.IsNaN(cond.Values[1]) {
		t.Errorf("NaN sample did not survive the round trip: %v", cond.Values)
	}
}

func TestSetVariableReplaces(t *testing.T) {
	ds := testDataset()

	if err := ds.SetVariable(Variable{Name: "flags", Values: []float64{2, 2, 2}}); err != nil {
		t.Fatal(err)
	}
	if err := ds.SetVariable(Variable{Name: "flags", Values: []float64{1, 9, 1}}); err != nil {
		t.Fatal(err)
	}

	if n := len(ds.Variables); n != 4 {
		t.Fatalf("got %d variables, want 4", n)
	}
	v, _ := ds.Variable("flags")
	if !reflect.DeepEqual(v.Values, []float64{1, 9, 1}) {
		t.Errorf("flags = %v, want [1 9 1]", v.Values)
	}
}

func TestSetVariableRejectsLengthMismatch(t *testing.T) {
	ds := testDataset()
	if err := ds.SetVariable(Variable{Name: "flags", Values: []float64{2}}); err == nil {
		t.Error("expected error for mismatched sample count")
	}
}

func TestOpenRejectsMisalignedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.nc")
	ds := &Dataset{Variables: []Variable{
		{Name: "time", Values: []float64{0, 30}},
		{Name: "pressure", Values: []float64{0}},
	}}
	// SaveTo does not validate; Open must
	if err := ds.SaveTo(path); err != nil {
		t.Fatal(err)
	}
	if _, err := Open(path); err == nil {
		t.Error("expected error for misaligned variable lengths")
	}
}

func TestOpenRejectsGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "garbage.nc")
	if err := os.WriteFile(path, []byte("not msgpack"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Open(path); err == nil {
		t.Error("expected decode error")
	}
}

func TestSaveLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "p01.nc")
	if err := testDataset().SaveTo(path); err != nil {
		t.Fatal(err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), ".") {
			t.Errorf("temp file left behind: %s", e.Name())
		}
	}
	if len(entries) != 1 {
		t.Errorf("expected only the saved file, found %d entries", len(entries))
	}
}

func TestSaveOverwritesInPlace(t *testing.T) {
	path := filepath.Join(t.TempDir(), "p01.nc")
	ds := testDataset()
	if err := ds.SaveTo(path); err != nil {
		t.Fatal(err)
	}

	opened, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := opened.SetVariable(Variable{Name: "flags", Values: []float64{2, 2, 2}}); err != nil {
		t.Fatal(err)
	}
	if err := opened.Save(); err != nil {
		t.Fatal(err)
	}

	reread, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := reread.Variable("flags"); !ok {
		t.Error("flags variable missing after in-place save")
	}
}
