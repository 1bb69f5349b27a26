// Package profile reads and writes per-profile dataset files.
//
// A profile file holds the time-ordered samples of a single glider dive or
// climb as named one-dimensional float64 variables sharing one sample
// dimension, with per-variable and global attributes. Missing samples are
// NaN. Files are msgpack-encoded and replaced atomically on save so a
// failure mid-write never leaves a corrupt file behind.
package profile

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/vmihailenco/msgpack/v5"
)

// Variable is one named 1-D array with its attributes.
type Variable struct {
	Name       string                 `msgpack:"name"`
	Values     []float64              `msgpack:"values"`
	Attributes map[string]interface{} `msgpack:"attributes,omitempty"`
}

// StringAttr returns a string-valued attribute of the variable.
func (v *Variable) StringAttr(name string) (string, bool) {
	s, ok := v.Attributes[name].(string)
	return s, ok
}

// Dataset is the in-memory form of one profile file.
type Dataset struct {
	GlobalAttributes map[string]interface{} `msgpack:"global_attributes,omitempty"`
	Variables        []Variable             `msgpack:"variables"`

	path string
}

// Open reads and decodes the profile file at path. All variables of a file
// must share one sample dimension; a file violating that is rejected here
// rather than surfacing as an index panic later.
func Open(path string) (*Dataset, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var ds Dataset
	if err := msgpack.Unmarshal(raw, &ds); err != nil {
		return nil, fmt.Errorf("error decoding %s: %w", path, err)
	}

	for _, v := range ds.Variables {
		if len(v.Values) != ds.Len() {
			return nil, fmt.Errorf("%s: variable %s has %d samples, expected %d",
				path, v.Name, len(v.Values), ds.Len())
		}
	}

	ds.path = path
	return &ds, nil
}

// Path returns the file the dataset was opened from.
func (d *Dataset) Path() string {
	return d.path
}

// Len returns the sample count of the shared dimension.
func (d *Dataset) Len() int {
	if len(d.Variables) == 0 {
		return 0
	}
	return len(d.Variables[0].Values)
}

// Variable returns the named variable, if present.
func (d *Dataset) Variable(name string) (*Variable, bool) {
	for i := range d.Variables {
		if d.Variables[i].Name == name {
			return &d.Variables[i], true
		}
	}
	return nil, false
}

// VariableNames returns the names of all variables in file order.
func (d *Dataset) VariableNames() []string {
	names := make([]string, len(d.Variables))
	for i, v := range d.Variables {
		names[i] = v.Name
	}
	return names
}

// SetVariable adds v to the dataset, replacing any variable with the same
// name. Replacement keeps re-annotation idempotent. The value length must
// match the sample dimension.
func (d *Dataset) SetVariable(v Variable) error {
	if len(d.Variables) > 0 && len(v.Values) != d.Len() {
		return fmt.Errorf("variable %s has %d samples, expected %d", v.Name, len(v.Values), d.Len())
	}
	for i := range d.Variables {
		if d.Variables[i].Name == v.Name {
			d.Variables[i] = v
			return nil
		}
	}
	d.Variables = append(d.Variables, v)
	return nil
}

// Save writes the dataset back to the file it was opened from.
func (d *Dataset) Save() error {
	return d.SaveTo(d.path)
}

// SaveTo encodes the dataset to a temporary file in the target directory
// and renames it over path, so the file on disk is always either the old
// or the new version in full.
func (d *Dataset) SaveTo(path string) error {
	raw, err := msgpack.Marshal(d)
	if err != nil {
		return fmt.Errorf("error encoding %s: %w", path, err)
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}

	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return err
	}

	d.path = path
	return nil
}
