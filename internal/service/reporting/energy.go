package reporting

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mamadbah2/farmperf/internal/calendar"
	"github.com/mamadbah2/farmperf/internal/domain/models"
	"github.com/mamadbah2/farmperf/internal/repository"
	"github.com/mamadbah2/farmperf/internal/service/metrics"
)

// WaterParameters lists the measured columns of a water sample.
var WaterParameters = []string{"BOD", "COD", "PH", "TKN", "TSS", "Ammonia", "TP", "ALK", "VFA"}

type energyKey struct {
	period string
	farm   string
}

type energyAcc struct {
	runtime, biogas, standard, solar, grid, price decimal.Decimal
	standardN, priceN                             int64
}

// EnergyMix totals biogas, solar and grid energy per month, and per farm when
// byFarm is set. Each source is summed independently, so a day that only has
// grid data still counts.
func EnergyMix(rows models.EnergyRows, byFarm bool, table metrics.Table) []models.EnergyUsage {
	accs := map[energyKey]*energyAcc{}
	get := func(farm string, month string) *energyAcc {
		key := energyKey{period: month}
		if byFarm {
			key.farm = metrics.NormalizeCode(farm)
		}
		acc, ok := accs[key]
		if !ok {
			acc = &energyAcc{}
			accs[key] = acc
		}
		return acc
	}

	for _, r := range rows.Biogas {
		acc := get(r.Farm, calendar.MonthKey(r.DataDate))
		acc.runtime = acc.runtime.Add(dec(r.Runtime))
		acc.biogas = acc.biogas.Add(dec(r.Production))
		acc.standard = acc.standard.Add(dec(r.Standard))
		acc.standardN++
	}
	for _, r := range rows.Solar {
		acc := get(r.Farm, calendar.MonthKey(r.DataDate))
		acc.solar = acc.solar.Add(dec(r.Production))
	}
	for _, r := range rows.Grid {
		acc := get(r.Farm, calendar.MonthKey(r.DataDate))
		acc.grid = acc.grid.Add(dec(r.EUse))
		acc.price = acc.price.Add(dec(r.AvgPrice))
		acc.priceN++
	}

	out := make([]models.EnergyUsage, 0, len(accs))
	for key, acc := range accs {
		biogas := acc.biogas.InexactFloat64()
		solar := acc.solar.InexactFloat64()
		grid := acc.grid.InexactFloat64()
		total := acc.biogas.Add(acc.solar).Add(acc.grid).InexactFloat64()

		out = append(out, models.EnergyUsage{
			Period:            key.period,
			Farm:              key.farm,
			BiogasRuntime:     acc.runtime.InexactFloat64(),
			BiogasProduction:  biogas,
			BiogasStandardAvg: mean(acc.standard, acc.standardN),
			SolarProduction:   solar,
			GridUse:           grid,
			GridAvgPrice:      mean(acc.price, acc.priceN),
			Total:             total,
			BiogasShare:       metrics.Percent(biogas, total),
			SolarShare:        metrics.Percent(solar, total),
			GridShare:         metrics.Percent(grid, total),
		})
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Period != out[j].Period {
			return out[i].Period < out[j].Period
		}
		return codeLess(table, out[i].Farm, out[j].Farm)
	})
	return out
}

// ParseWaterParameter resolves a parameter name case-insensitively against the
// known columns.
func ParseWaterParameter(name string) (string, error) {
	for _, p := range WaterParameters {
		if strings.EqualFold(p, strings.TrimSpace(name)) {
			return p, nil
		}
	}
	return "", &metrics.ValidationError{Fields: map[string]string{
		"parameter": fmt.Sprintf("parameter must be one of %s", strings.Join(WaterParameters, ", ")),
	}}
}

// WaterSummaries sums one parameter per month and pool.
func WaterSummaries(samples []models.WaterSample, parameter string) ([]models.WaterSummary, error) {
	param, err := ParseWaterParameter(parameter)
	if err != nil {
		return nil, err
	}

	type key struct{ period, farm, pool string }
	sums := map[key]decimal.Decimal{}
	for _, s := range samples {
		k := key{period: calendar.MonthKey(s.DataDate), farm: metrics.NormalizeCode(s.Farm), pool: s.Pool}
		sums[k] = sums[k].Add(dec(waterValue(s, param)))
	}

	out := make([]models.WaterSummary, 0, len(sums))
	for k, v := range sums {
		out = append(out, models.WaterSummary{
			Period:    k.period,
			Label:     calendar.FormatThaiMonth(k.period),
			Farm:      k.farm,
			Pool:      k.pool,
			Parameter: param,
			Value:     v.InexactFloat64(),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Period != out[j].Period {
			return out[i].Period < out[j].Period
		}
		if out[i].Farm != out[j].Farm {
			return out[i].Farm < out[j].Farm
		}
		return out[i].Pool < out[j].Pool
	})
	return out, nil
}

func waterValue(s models.WaterSample, param string) float64 {
	switch param {
	case "BOD":
		return s.BOD
	case "COD":
		return s.COD
	case "PH":
		return s.PH
	case "TKN":
		return s.TKN
	case "TSS":
		return s.TSS
	case "Ammonia":
		return s.Ammonia
	case "TP":
		return s.TP
	case "ALK":
		return s.ALK
	case "VFA":
		return s.VFA
	}
	return 0
}

func mean(sum decimal.Decimal, n int64) float64 {
	if n == 0 {
		return 0
	}
	return metrics.Round2(sum.Div(decimal.NewFromInt(n)).InexactFloat64())
}

// EnergySources lists the sources of the per-farm daily series.
var EnergySources = []string{repository.SourceBiogas, repository.SourceSolar, repository.SourcePEA}

// ParseEnergySource resolves an energy type name case-insensitively.
func ParseEnergySource(name string) (string, error) {
	for _, s := range EnergySources {
		if strings.EqualFold(s, strings.TrimSpace(name)) {
			return s, nil
		}
	}
	return "", &metrics.ValidationError{Fields: map[string]string{
		"energyType": fmt.Sprintf("energyType must be one of %s", strings.Join(EnergySources, ", ")),
	}}
}

// DailyEnergy sums one source per day: production for biogas and solar,
// consumption for PEA.
func DailyEnergy(rows models.EnergyRows, source string) []models.EnergyPoint {
	sums := map[string]decimal.Decimal{}
	add := func(t time.Time, v float64) {
		k := calendar.DayKey(t)
		sums[k] = sums[k].Add(dec(v))
	}

	switch source {
	case repository.SourceBiogas:
		for _, r := range rows.Biogas {
			add(r.DataDate, r.Production)
		}
	case repository.SourceSolar:
		for _, r := range rows.Solar {
			add(r.DataDate, r.Production)
		}
	case repository.SourcePEA:
		for _, r := range rows.Grid {
			add(r.DataDate, r.EUse)
		}
	}

	out := make([]models.EnergyPoint, 0, len(sums))
	for k, v := range sums {
		out = append(out, models.EnergyPoint{Date: k, Label: beLabel(k), Value: v.InexactFloat64()})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out
}

// GHGMonthly totals production and averages the emission factor per month,
// farm and source. An empty source keeps every source.
func GHGMonthly(rows []models.GHGRow, source string) []models.GHGSummary {
	type key struct{ period, farm, source string }
	type acc struct {
		production, ghg decimal.Decimal
		n               int64
	}

	accs := map[key]*acc{}
	for _, r := range rows {
		if source != "" && !strings.EqualFold(r.Source, source) {
			continue
		}
		k := key{period: calendar.MonthKey(r.DataDate), farm: r.Farm, source: r.Source}
		a, ok := accs[k]
		if !ok {
			a = &acc{}
			accs[k] = a
		}
		a.production = a.production.Add(dec(r.Production))
		a.ghg = a.ghg.Add(dec(r.GHG))
		a.n++
	}

	out := make([]models.GHGSummary, 0, len(accs))
	for k, a := range accs {
		out = append(out, models.GHGSummary{
			Period:          k.period,
			Label:           calendar.FormatThaiMonth(k.period),
			Farm:            k.farm,
			Source:          k.source,
			TotalProduction: a.production.InexactFloat64(),
			AvgGHG:          mean(a.ghg, a.n),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Period != out[j].Period {
			return out[i].Period < out[j].Period
		}
		if out[i].Farm != out[j].Farm {
			return out[i].Farm < out[j].Farm
		}
		return out[i].Source < out[j].Source
	})
	return out
}
