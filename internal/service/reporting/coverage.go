package reporting

import (
	"sort"
	"time"

	"github.com/mamadbah2/farmperf/internal/calendar"
	"github.com/mamadbah2/farmperf/internal/domain/models"
	"github.com/mamadbah2/farmperf/internal/service/metrics"
)

// Observation is one raw row reduced to what the coverage grid needs.
type Observation struct {
	Group string
	Date  time.Time
}

// Coverage builds the presence grid of expected groups over observed dates.
// Date columns are the distinct observed days in ascending order; groups seen
// in the data but missing from expected are appended in canonical order. A
// cell is true when at least one row exists for that group on that day.
func Coverage(expected []string, observations []Observation, table metrics.Table) models.CoverageMatrix {
	seen := map[string]map[string]bool{}
	days := map[string]time.Time{}

	for _, obs := range observations {
		if obs.Date.IsZero() {
			continue
		}
		group := metrics.NormalizeCode(obs.Group)
		day := calendar.DayKey(obs.Date)
		days[day] = calendar.StartOfDay(obs.Date)
		if seen[group] == nil {
			seen[group] = map[string]bool{}
		}
		seen[group][day] = true
	}

	dates := make([]string, 0, len(days))
	for day := range days {
		dates = append(dates, day)
	}
	sort.Strings(dates)

	labels := make([]string, len(dates))
	for i, day := range dates {
		labels[i] = calendar.FormatThaiDate(days[day])
	}

	groups := make([]string, 0, len(expected)+len(seen))
	listed := map[string]bool{}
	for _, g := range expected {
		g = metrics.NormalizeCode(g)
		if g == "" || listed[g] {
			continue
		}
		listed[g] = true
		groups = append(groups, g)
	}
	var extra []string
	for g := range seen {
		if !listed[g] {
			extra = append(extra, g)
		}
	}
	SortCodes(extra, table)
	groups = append(groups, extra...)

	rows := make([]models.CoverageRow, 0, len(groups))
	for _, g := range groups {
		present := make([]bool, len(dates))
		for i, day := range dates {
			present[i] = seen[g][day]
		}
		rows = append(rows, models.CoverageRow{Group: g, Present: present})
	}

	return models.CoverageMatrix{Dates: dates, Labels: labels, Rows: rows}
}

// BiogasCoverage checks daily entries against the canonical farm list.
func BiogasCoverage(rows []models.MeterReading, table metrics.Table) models.CoverageMatrix {
	obs := make([]Observation, 0, len(rows))
	for _, row := range rows {
		obs = append(obs, Observation{Group: row.Farm, Date: row.SaveDate})
	}
	return Coverage(table.FarmOrder, obs, table)
}

// GradingCoverage checks daily entries of the sites that reported at least once.
func GradingCoverage(rows []models.GradingSession, table metrics.Table) models.CoverageMatrix {
	obs := make([]Observation, 0, len(rows))
	for _, row := range rows {
		obs = append(obs, Observation{Group: row.ShortArea, Date: row.InputDate})
	}
	return Coverage(nil, obs, table)
}
