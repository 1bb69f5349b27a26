package hysteresis

import (
	"math"
	"strings"

	"gonum.org/v1/gonum/floats"

	"github.com/rucool/gliderqc/internal/profile"
	"github.com/rucool/gliderqc/internal/qc"
	"github.com/rucool/gliderqc/pkg/config"
	"github.com/rucool/gliderqc/pkg/geometry"
)

// evaluate runs the area test on a down/up pair that passed the pairing
// checks. ok is false when the test is inconclusive (no data left after
// QARTOD masking, or too little pressure range) and the flags stay
// UNKNOWN; both files are still consumed either way.
func (p *Processor) evaluate(down, up *profileState) (flag qc.Flag, ok bool) {
	maskedDown := maskQARTOD(down.ds, p.Sensor, down.sensor.Values)
	maskedUp := maskQARTOD(up.ds, p.Sensor, up.sensor.Values)

	if countValid(maskedDown) == 0 || countValid(maskedUp) == 0 {
		return 0, false
	}

	// merge the down trace followed by the up trace into one ordered
	// point list, dropping samples missing either coordinate
	points := tracePoints(down, maskedDown)
	points = append(points, tracePoints(up, maskedUp)...)

	// valid sensor samples can still all sit at NaN pressures, leaving
	// nothing to trace
	if len(points) == 0 {
		return 0, false
	}

	pressures := make([]float64, len(points))
	values := make([]float64, len(points))
	for i, pt := range points {
		pressures[i] = pt.X
		values[i] = pt.Y
	}

	pressureRange := floats.Max(pressures) - floats.Min(pressures)
	if pressureRange <= MinPressureRange {
		return 0, false
	}

	area := geometry.EnclosedArea(points)
	normalized := area / pressureRange
	dataRange := floats.Max(values) - floats.Min(values)

	return decideFlag(normalized, dataRange, p.Thresholds), true
}

// decideFlag compares the normalized enclosed area against the sensor data
// range scaled by each threshold.
func decideFlag(normalizedArea, dataRange float64, t config.HysteresisThresholds) qc.Flag {
	switch {
	case normalizedArea > dataRange*t.FailThreshold:
		return qc.Fail
	case normalizedArea > dataRange*t.SuspectThreshold:
		return qc.Suspect
	default:
		return qc.Good
	}
}

// maskQARTOD copies the sensor values and blanks every sample flagged
// SUSPECT or FAIL by any of the sensor's QARTOD variables. The original
// data is never mutated.
func maskQARTOD(ds *profile.Dataset, sensor string, values []float64) []float64 {
	masked := make([]float64, len(values))
	copy(masked, values)

	prefix := sensor + "_qartod"
	for _, v := range ds.Variables {
		if !strings.Contains(v.Name, prefix) {
			continue
		}
		for i, f := range v.Values {
			if i >= len(masked) {
				break
			}
			if f == float64(qc.Suspect) || f == float64(qc.Fail) {
				masked[i] = math.NaN()
			}
		}
	}
	return masked
}

func countValid(values []float64) int {
	n := 0
	for _, v := range values {
		if !math.IsNaN(v) {
			n++
		}
	}
	return n
}

// tracePoints pairs each masked sensor value with its pressure reading,
// dropping samples missing either coordinate and clamping negative
// pressures to zero.
func tracePoints(st *profileState, masked []float64) []geometry.Point {
	points := make([]geometry.Point, 0, len(masked))
	for i, v := range masked {
		pr := st.pressure.Values[i]
		if math.IsNaN(pr) || math.IsNaN(v) {
			continue
		}
		if pr < 0 {
			pr = 0
		}
		points = append(points, geometry.Point{X: pr, Y: v})
	}
	return points
}
