// Package qc defines the QARTOD flag encoding shared by all QC tests.
package qc

// Flag is a QARTOD quality flag code. One flag is assigned per sample.
type Flag byte

const (
	Good    Flag = 1
	Unknown Flag = 2
	Suspect Flag = 3
	Fail    Flag = 4
	Missing Flag = 9
)

// FlagMeanings is the canonical flag_meanings attribute value, ordered to
// match FlagValues.
const FlagMeanings = "GOOD UNKNOWN SUSPECT FAIL MISSING"

// FlagValues lists the flag codes in attribute order.
func FlagValues() []int8 {
	return []int8{1, 2, 3, 4, 9}
}

func (f Flag) String() string {
	switch f {
	case Good:
		return "GOOD"
	case Unknown:
		return "UNKNOWN"
	case Suspect:
		return "SUSPECT"
	case Fail:
		return "FAIL"
	case Missing:
		return "MISSING"
	}
	return "INVALID"
}
