package reporting

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mamadbah2/farmperf/internal/calendar"
	"github.com/mamadbah2/farmperf/internal/domain/models"
	"github.com/mamadbah2/farmperf/internal/service/metrics"
)

// Period selects how rows are bucketed in time besides the farm/site key.
type Period int

const (
	// PeriodNone groups by farm or site only.
	PeriodNone Period = iota
	// PeriodMonth adds a YYYY-MM bucket.
	PeriodMonth
	// PeriodDay adds a YYYY-MM-DD bucket.
	PeriodDay
)

func (p Period) key(t time.Time) string {
	switch p {
	case PeriodMonth:
		return calendar.MonthKey(t)
	case PeriodDay:
		return calendar.DayKey(t)
	default:
		return ""
	}
}

// Sums are accumulated in decimal so the result does not depend on row order.
type biogasAcc struct {
	key                           models.BucketKey
	rows                          int
	hr, kw, std, value, breakdown decimal.Decimal
	peaUnit                       float64
	peaDate                       time.Time
	peaID                         uint
}

// AggregateBiogas sums readings per farm and period. Buckets come back in the
// canonical farm order of table, then by period.
func AggregateBiogas(rows []models.MeterReading, period Period, table metrics.Table) []models.BiogasBucket {
	accs := map[models.BucketKey]*biogasAcc{}
	for _, row := range rows {
		key := models.BucketKey{Group: metrics.NormalizeCode(row.Farm), Period: period.key(row.SaveDate)}
		acc, ok := accs[key]
		if !ok {
			acc = &biogasAcc{key: key}
			accs[key] = acc
		}
		acc.rows++
		acc.hr = acc.hr.Add(dec(row.ProductHr))
		acc.kw = acc.kw.Add(dec(row.ProductKw))
		acc.std = acc.std.Add(dec(row.KwSTD))
		acc.value = acc.value.Add(dec(row.ProductValue))
		acc.breakdown = acc.breakdown.Add(dec(row.HrBreakdown))

		// The unit price is carried from the most recent reading.
		if acc.rows == 1 || row.SaveDate.After(acc.peaDate) || (row.SaveDate.Equal(acc.peaDate) && row.InputID > acc.peaID) {
			acc.peaUnit = metrics.Finite(row.PeaUnit)
			acc.peaDate = row.SaveDate
			acc.peaID = row.InputID
		}
	}

	buckets := make([]models.BiogasBucket, 0, len(accs))
	for _, acc := range accs {
		buckets = append(buckets, models.BiogasBucket{
			BucketKey:    acc.key,
			Rows:         acc.rows,
			ProductHr:    acc.hr.InexactFloat64(),
			ProductKw:    acc.kw.InexactFloat64(),
			KwSTD:        acc.std.InexactFloat64(),
			ProductValue: acc.value.InexactFloat64(),
			HrBreakdown:  acc.breakdown.InexactFloat64(),
			PeaUnit:      acc.peaUnit,
		})
	}
	sort.Slice(buckets, func(i, j int) bool {
		return bucketLess(table, buckets[i].BucketKey, buckets[j].BucketKey)
	})
	return buckets
}

// BiogasTotalsOf sums buckets across farms.
func BiogasTotalsOf(buckets []models.BiogasBucket) models.BiogasTotals {
	var hr, kw, std, value, breakdown decimal.Decimal
	for _, b := range buckets {
		hr = hr.Add(dec(b.ProductHr))
		kw = kw.Add(dec(b.ProductKw))
		std = std.Add(dec(b.KwSTD))
		value = value.Add(dec(b.ProductValue))
		breakdown = breakdown.Add(dec(b.HrBreakdown))
	}
	return models.BiogasTotals{
		ProductHr:    hr.InexactFloat64(),
		ProductKw:    kw.InexactFloat64(),
		KwSTD:        std.InexactFloat64(),
		ProductValue: value.InexactFloat64(),
		HrBreakdown:  breakdown.InexactFloat64(),
	}
}

type gradingAcc struct {
	key                           models.BucketKey
	rows                          int
	work, capacity, product, lost decimal.Decimal
}

// AggregateGrading sums grading runs per site and period. Performance is
// recomputed from the summed product and capacity.
func AggregateGrading(rows []models.GradingSession, period Period, table metrics.Table) []models.GradingBucket {
	accs := map[models.BucketKey]*gradingAcc{}
	for _, row := range rows {
		key := models.BucketKey{Group: metrics.NormalizeCode(row.ShortArea), Period: period.key(row.InputDate)}
		acc, ok := accs[key]
		if !ok {
			acc = &gradingAcc{key: key}
			accs[key] = acc
		}
		acc.rows++
		acc.work = acc.work.Add(dec(row.WorkTime))
		acc.capacity = acc.capacity.Add(dec(row.MachineCap))
		acc.product = acc.product.Add(dec(row.Product))
		acc.lost = acc.lost.Add(dec(row.LostTime))
	}

	buckets := make([]models.GradingBucket, 0, len(accs))
	for _, acc := range accs {
		capacity := acc.capacity.InexactFloat64()
		product := acc.product.InexactFloat64()
		buckets = append(buckets, models.GradingBucket{
			BucketKey:          acc.key,
			Rows:               acc.rows,
			WorkTime:           acc.work.InexactFloat64(),
			MachineCap:         capacity,
			Product:            product,
			LostTime:           acc.lost.InexactFloat64(),
			ProductPerformance: metrics.Percent(product, capacity),
		})
	}
	sort.Slice(buckets, func(i, j int) bool {
		return bucketLess(table, buckets[i].BucketKey, buckets[j].BucketKey)
	})
	return buckets
}

// GradingTotalsOf sums buckets across sites.
func GradingTotalsOf(buckets []models.GradingBucket) models.GradingTotals {
	var capacity, product, lost decimal.Decimal
	for _, b := range buckets {
		capacity = capacity.Add(dec(b.MachineCap))
		product = product.Add(dec(b.Product))
		lost = lost.Add(dec(b.LostTime))
	}
	totals := models.GradingTotals{
		MachineCap: capacity.InexactFloat64(),
		Product:    product.InexactFloat64(),
		LostTime:   lost.InexactFloat64(),
	}
	totals.ProductPerformance = metrics.Percent(totals.Product, totals.MachineCap)
	return totals
}

// Summarize builds one side of a comparison.
func Summarize(rows []models.MeterReading, window calendar.Window, table metrics.Table) models.PeriodSummary {
	buckets := AggregateBiogas(rows, PeriodNone, table)
	return models.PeriodSummary{
		From:    calendar.DayKey(window.From),
		To:      calendar.DayKey(window.To),
		Buckets: buckets,
		Totals:  BiogasTotalsOf(buckets),
	}
}

// Compare contrasts the production of two windows. The change is measured on
// total productKw and is zero when the previous window produced nothing.
func Compare(current, previous models.PeriodSummary) models.Comparison {
	return models.Comparison{
		Current:          current,
		Previous:         previous,
		PercentageChange: metrics.PercentageChange(current.Totals.ProductKw, previous.Totals.ProductKw),
	}
}

// SortCodes orders farm or site codes canonically; unknown codes follow in
// alphabetical order.
func SortCodes(codes []string, table metrics.Table) {
	sort.SliceStable(codes, func(i, j int) bool {
		return codeLess(table, codes[i], codes[j])
	})
}

func bucketLess(table metrics.Table, a, b models.BucketKey) bool {
	if a.Group != b.Group {
		return codeLess(table, a.Group, b.Group)
	}
	return a.Period < b.Period
}

func codeLess(table metrics.Table, a, b string) bool {
	ra, rb := table.FarmRank(a), table.FarmRank(b)
	if ra != rb {
		return ra < rb
	}
	return a < b
}

func dec(v float64) decimal.Decimal {
	return decimal.NewFromFloat(metrics.Finite(v))
}
