package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/mamadbah2/farmperf/internal/service/metrics"
)

// LoadMetricsTable returns the formula constants. An empty path yields the
// built-in table; otherwise keys present in the YAML file override the
// defaults and maps are merged per code. An explicitly empty map such as
// `hr_std_by_farm: {}` drops the built-in per-code entries instead.
func LoadMetricsTable(path string) (metrics.Table, error) {
	table := metrics.DefaultTable()
	if path == "" {
		return table, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return metrics.Table{}, fmt.Errorf("read metrics table %s: %w", path, err)
	}

	var override metrics.Table
	if err := yaml.Unmarshal(raw, &override); err != nil {
		return metrics.Table{}, fmt.Errorf("parse metrics table %s: %w", path, err)
	}

	merged := mergeTable(table, override)
	if err := merged.Validate(); err != nil {
		return metrics.Table{}, fmt.Errorf("metrics table %s: %w", path, err)
	}
	return merged, nil
}

func mergeTable(base, override metrics.Table) metrics.Table {
	if override.EfficiencyFactor != 0 {
		base.EfficiencyFactor = override.EfficiencyFactor
	}
	if override.DefaultHrStd != 0 {
		base.DefaultHrStd = override.DefaultHrStd
	}
	if override.DefaultCapacityPerMinute != 0 {
		base.DefaultCapacityPerMinute = override.DefaultCapacityPerMinute
	}
	if override.ComparisonWindowDays != 0 {
		base.ComparisonWindowDays = override.ComparisonWindowDays
	}
	if len(override.FarmOrder) > 0 {
		base.FarmOrder = append([]string(nil), override.FarmOrder...)
	}
	base.HrStdByFarm = mergeCodes(base.HrStdByFarm, override.HrStdByFarm)
	base.CapacityPerMinuteBySite = mergeCodes(base.CapacityPerMinuteBySite, override.CapacityPerMinuteBySite)
	return base
}

func mergeCodes(base, override map[string]float64) map[string]float64 {
	if override != nil && len(override) == 0 {
		return map[string]float64{}
	}
	out := make(map[string]float64, len(base)+len(override))
	for code, v := range base {
		out[metrics.NormalizeCode(code)] = v
	}
	for code, v := range override {
		out[metrics.NormalizeCode(code)] = v
	}
	return out
}
