package metrics

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// Table centralizes every formula constant used by the engines. Entry-time
// previews, saves, updates and reports all read the same Table.
type Table struct {
	EfficiencyFactor         float64            `yaml:"efficiency_factor"`
	DefaultHrStd             float64            `yaml:"default_hr_std"`
	HrStdByFarm              map[string]float64 `yaml:"hr_std_by_farm"`
	DefaultCapacityPerMinute float64            `yaml:"default_capacity_per_minute"`
	CapacityPerMinuteBySite  map[string]float64 `yaml:"capacity_per_minute"`
	FarmOrder                []string           `yaml:"farm_order"`
	ComparisonWindowDays     int                `yaml:"comparison_window_days"`
}

// DefaultTable returns the built-in constants.
func DefaultTable() Table {
	return Table{
		EfficiencyFactor: 0.80,
		DefaultHrStd:     24,
		HrStdByFarm: map[string]float64{
			"CHN": 8,
		},
		DefaultCapacityPerMinute: 1000,
		CapacityPerMinuteBySite: map[string]float64{
			"CHN": 2400,
			"BN":  2000,
		},
		FarmOrder:            []string{"SK", "WT", "PTC", "JKR", "RE", "KK", "UD", "SSN", "NP", "CHTBR", "ND", "NK", "CHN"},
		ComparisonWindowDays: 7,
	}
}

// Validate rejects tables that would produce meaningless KPIs.
func (t Table) Validate() error {
	if !positive(t.EfficiencyFactor) || t.EfficiencyFactor > 1 {
		return fmt.Errorf("efficiency_factor must be in (0, 1], got %v", t.EfficiencyFactor)
	}
	if !positive(t.DefaultHrStd) {
		return errors.New("default_hr_std must be positive")
	}
	for farm, hr := range t.HrStdByFarm {
		if !positive(hr) {
			return fmt.Errorf("hr_std_by_farm[%s] must be positive", farm)
		}
	}
	if !positive(t.DefaultCapacityPerMinute) {
		return errors.New("default_capacity_per_minute must be positive")
	}
	for site, capacity := range t.CapacityPerMinuteBySite {
		if !positive(capacity) {
			return fmt.Errorf("capacity_per_minute[%s] must be positive", site)
		}
	}
	if t.ComparisonWindowDays < 1 {
		return errors.New("comparison_window_days must be at least 1")
	}
	return nil
}

// HrStdFor returns the standard running hours of a farm.
func (t Table) HrStdFor(farm string) float64 {
	if hr, ok := lookup(t.HrStdByFarm, farm); ok {
		return hr
	}
	return t.DefaultHrStd
}

// CapacityPerMinute returns the rated grading capacity of a site.
func (t Table) CapacityPerMinute(site string) float64 {
	if capacity, ok := lookup(t.CapacityPerMinuteBySite, site); ok {
		return capacity
	}
	return t.DefaultCapacityPerMinute
}

// FarmRank is the position of farm in the canonical order; unknown farms
// rank after all known ones.
func (t Table) FarmRank(farm string) int {
	code := NormalizeCode(farm)
	for i, known := range t.FarmOrder {
		if strings.EqualFold(known, code) {
			return i
		}
	}
	return len(t.FarmOrder)
}

// NormalizeCode canonicalizes a farm or site code.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

func lookup(table map[string]float64, code string) (float64, bool) {
	if len(table) == 0 {
		return 0, false
	}
	code = NormalizeCode(code)
	if v, ok := table[code]; ok {
		return v, true
	}
	for k, v := range table {
		if NormalizeCode(k) == code {
			return v, true
		}
	}
	return 0, false
}

func positive(v float64) bool {
	return v > 0 && !math.IsInf(v, 0)
}
