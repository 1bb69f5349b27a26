// Package hysteresis implements the CTD hysteresis QC test.
//
// CTD profile pairs that are severely lagged, usually from pump or
// flow-path issues, show a conductivity offset between the down cast and
// the up cast at the same pressure. The test pairs each down profile with
// the up profile that follows it, measures the area enclosed between the
// paired sensor traces, and writes a single QARTOD flag over every sample
// of both profiles.
package hysteresis

import (
	"fmt"
	"math"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/rucool/gliderqc/internal/profile"
	"github.com/rucool/gliderqc/internal/qc"
	"github.com/rucool/gliderqc/pkg/config"
)

const (
	// PairGapMax is the longest allowed gap between the end of a down
	// profile and the start of its candidate up partner. Anything longer
	// is not the same yo.
	PairGapMax = 5 * time.Minute

	// MinPressureRange is the smallest merged pressure span, in dbar, on
	// which the test is conclusive. A profile hovering at the surface or
	// bottom spans too little depth to show hysteresis.
	MinPressureRange = 5.0

	// DefaultSensor is the variable under test.
	DefaultSensor = "conductivity"

	// instrumentSubstring identifies the CTD instrument entry among a
	// sensor variable's ancillary variables.
	instrumentSubstring = "instrument_ctd"
)

// Summary reports the outcome of one deployment pass.
type Summary struct {
	TotalFiles   int
	SuspectFiles int
	FailedFiles  int
	Errors       int
}

// Processor runs the hysteresis test over one deployment's file queue.
type Processor struct {
	Thresholds config.HysteresisThresholds
	Sensor     string
	Logger     *zap.SugaredLogger
}

// New returns a Processor testing the default sensor variable.
func New(thresholds config.HysteresisThresholds, logger *zap.SugaredLogger) *Processor {
	return &Processor{
		Thresholds: thresholds,
		Sensor:     DefaultSensor,
		Logger:     logger,
	}
}

// Run processes the sorted file list left to right exactly once each: a
// paired down/up yo consumes two files, anything else consumes one.
// Per-file errors are logged, counted in the summary, and do not stop the
// pass.
func (p *Processor) Run(files []string) Summary {
	s := Summary{TotalFiles: len(files)}
	for i := 0; i < len(files); {
		i += p.step(files, i, &s)
	}
	p.Logger.Infof("%d suspect files found (of %d total files)", s.SuspectFiles, s.TotalFiles)
	p.Logger.Infof("%d failed files found (of %d total files)", s.FailedFiles, s.TotalFiles)
	return s
}

// step handles the file at cursor i and returns how many queue entries
// were consumed (1 or 2).
func (p *Processor) step(files []string, i int, s *Summary) int {
	first, err := p.load(files[i])
	if err != nil {
		p.Logger.Errorf("error reading file %s (%v)", files[i], err)
		s.Errors++
		return 1
	}

	if first.pressureFirst() > first.pressureLast() {
		// an up profile with no preceding down partner cannot be paired;
		// its flags stay UNKNOWN
		p.write(first, s)
		return 1
	}

	if i+1 >= len(files) {
		// trailing down profile with nothing left to pair against
		p.write(first, s)
		return 1
	}

	second, err := p.load(files[i+1])
	if err != nil {
		p.Logger.Errorf("error reading file %s (%v)", files[i+1], err)
		s.Errors++
		p.write(first, s)
		// the partner is reprocessed (and its error re-surfaced) on its
		// own pass
		return 1
	}

	if second.pressureFirst() < second.pressureLast() {
		// the partner is another down profile; it becomes the first file
		// of the next iteration
		p.write(first, s)
		return 1
	}

	if gap := second.startTime().Sub(first.endTime()); gap >= PairGapMax {
		// too far apart to be the same down-up yo; both stay UNKNOWN and
		// both are consumed
		p.write(first, s)
		p.write(second, s)
		return 2
	}

	if flag, ok := p.evaluate(first, second); ok {
		first.broadcast(flag)
		second.broadcast(flag)
		switch flag {
		case qc.Suspect:
			s.SuspectFiles += 2
		case qc.Fail:
			s.FailedFiles += 2
		}
	}
	p.write(first, s)
	p.write(second, s)
	return 2
}

// profileState is one opened profile with its working flag array.
type profileState struct {
	ds       *profile.Dataset
	sensor   *profile.Variable
	pressure *profile.Variable
	times    []float64

	flags    []float64 // one qc code per sample
	dataIdx  []int     // samples where the sensor value is present
	pressIdx []int     // samples where pressure is present
	timeIdx  []int     // samples where the timestamp is present

	qcVarName string
	attrs     map[string]interface{}
}

// load opens a profile file and initializes its flag array: UNKNOWN
// everywhere, MISSING where the sensor value is NaN. Any condition that
// prevents the file from being tested is returned as a recoverable error.
func (p *Processor) load(path string) (*profileState, error) {
	ds, err := profile.Open(path)
	if err != nil {
		return nil, err
	}

	sensor, ok := ds.Variable(p.Sensor)
	if !ok {
		return nil, fmt.Errorf("%s variable not found", p.Sensor)
	}
	pressure, ok := ds.Variable("pressure")
	if !ok {
		return nil, fmt.Errorf("pressure variable not found")
	}
	timeVar, ok := ds.Variable("time")
	if !ok {
		return nil, fmt.Errorf("time variable not found")
	}

	instrument, err := findInstrument(sensor)
	if err != nil {
		return nil, err
	}

	st := &profileState{
		ds:        ds,
		sensor:    sensor,
		pressure:  pressure,
		times:     timeVar.Values,
		qcVarName: instrument + "_hysteresis_test",
		attrs:     testAttributes(instrument+"_hysteresis_test", p.Sensor, p.Thresholds),
	}

	st.flags = make([]float64, len(sensor.Values))
	for i, v := range sensor.Values {
		if math.IsNaN(v) {
			st.flags[i] = float64(qc.Missing)
		} else {
			st.flags[i] = float64(qc.Unknown)
			st.dataIdx = append(st.dataIdx, i)
		}
	}
	for i, v := range pressure.Values {
		if !math.IsNaN(v) {
			st.pressIdx = append(st.pressIdx, i)
		}
	}
	for i, v := range st.times {
		if !math.IsNaN(v) {
			st.timeIdx = append(st.timeIdx, i)
		}
	}

	if len(st.dataIdx) == 0 {
		return nil, fmt.Errorf("%s data not found", p.Sensor)
	}
	if len(st.pressIdx) == 0 {
		return nil, fmt.Errorf("no valid pressure data")
	}
	if len(st.timeIdx) == 0 {
		return nil, fmt.Errorf("no valid time data")
	}
	return st, nil
}

// findInstrument locates the CTD instrument identifier among the sensor
// variable's ancillary variables. It names the output flag variable.
func findInstrument(sensor *profile.Variable) (string, error) {
	ancillary, ok := sensor.StringAttr("ancillary_variables")
	if !ok {
		return "", fmt.Errorf("%s has no ancillary_variables attribute", sensor.Name)
	}
	for _, name := range strings.Fields(ancillary) {
		if strings.Contains(name, instrumentSubstring) {
			return name, nil
		}
	}
	return "", fmt.Errorf("no %s entry in %s ancillary variables", instrumentSubstring, sensor.Name)
}

// pressureFirst and pressureLast are the first and last valid-pressure
// samples; their ordering gives the profile direction.
func (st *profileState) pressureFirst() float64 {
	return st.pressure.Values[st.pressIdx[0]]
}

func (st *profileState) pressureLast() float64 {
	return st.pressure.Values[st.pressIdx[len(st.pressIdx)-1]]
}

// startTime and endTime are the first and last valid timestamps; boundary
// samples with NaN times do not get to decide the pairing gap.
func (st *profileState) startTime() time.Time {
	return floatTime(st.times[st.timeIdx[0]])
}

func (st *profileState) endTime() time.Time {
	return floatTime(st.times[st.timeIdx[len(st.timeIdx)-1]])
}

// floatTime converts seconds since the Unix epoch to a time.Time.
func floatTime(sec float64) time.Time {
	s, frac := math.Modf(sec)
	return time.Unix(int64(s), int64(frac*1e9)).UTC()
}

// broadcast applies the pair's flag to every sample that has a sensor
// value. MISSING samples keep their flag.
func (st *profileState) broadcast(flag qc.Flag) {
	for _, i := range st.dataIdx {
		st.flags[i] = float64(flag)
	}
}

// write attaches the flag variable with its attributes and persists the
// file in place. Write failures are recoverable like read failures.
func (p *Processor) write(st *profileState, s *Summary) {
	v := profile.Variable{
		Name:       st.qcVarName,
		Values:     st.flags,
		Attributes: st.attrs,
	}
	if err := st.ds.SetVariable(v); err != nil {
		p.Logger.Errorf("error annotating file %s (%v)", st.ds.Path(), err)
		s.Errors++
		return
	}
	if err := st.ds.Save(); err != nil {
		p.Logger.Errorf("error writing file %s (%v)", st.ds.Path(), err)
		s.Errors++
	}
}
