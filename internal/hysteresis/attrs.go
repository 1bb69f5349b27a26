package hysteresis

import (
	"github.com/rucool/gliderqc/internal/qc"
	"github.com/rucool/gliderqc/pkg/config"
)

// testAttributes builds the fixed attribute set written on a hysteresis
// flag variable. Built fresh for every file so re-annotation is
// idempotent.
func testAttributes(testName, sensor string, t config.HysteresisThresholds) map[string]interface{} {
	return map[string]interface{}{
		"comment": "Test for CTD sensor lag, determined by comparing the area between " +
			"profile pairs normalized to pressure range against the data range times " +
			"defined thresholds found in flag_configurations.",
		"standard_name":       testName + "_quality_flag",
		"long_name":           "CTD Hysteresis Test Quality Flag",
		"flag_values":         qc.FlagValues(),
		"flag_meanings":       qc.FlagMeanings,
		"valid_min":           int8(qc.Good),
		"valid_max":           int8(qc.Missing),
		"qc_target":           sensor,
		"flag_configurations": t.String(),
	}
}
