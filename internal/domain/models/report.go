package models

import "time"

// BucketKey groups aggregated rows by farm/site and optional period.
type BucketKey struct {
	Group  string `json:"group" bson:"group"`
	Period string `json:"period,omitempty" bson:"period,omitempty"`
}

// BiogasBucket accumulates readings of one farm (and period).
type BiogasBucket struct {
	BucketKey    `bson:",inline"`
	Rows         int     `json:"rows" bson:"rows"`
	ProductHr    float64 `json:"productHr" bson:"product_hr"`
	ProductKw    float64 `json:"productKw" bson:"product_kw"`
	KwSTD        float64 `json:"kwSTD" bson:"kw_std"`
	ProductValue float64 `json:"productValue" bson:"product_value"`
	HrBreakdown  float64 `json:"hrBreakdown" bson:"hr_breakdown"`
	// PeaUnit is carried from the last row seen, not summed.
	PeaUnit float64 `json:"peaUnit" bson:"pea_unit"`
}

// BiogasTotals sums buckets across farms.
type BiogasTotals struct {
	ProductHr    float64 `json:"productHr" bson:"product_hr"`
	ProductKw    float64 `json:"productKw" bson:"product_kw"`
	KwSTD        float64 `json:"kwSTD" bson:"kw_std"`
	ProductValue float64 `json:"productValue" bson:"product_value"`
	HrBreakdown  float64 `json:"hrBreakdown" bson:"hr_breakdown"`
}

// GradingBucket accumulates grading runs of one site (and period).
type GradingBucket struct {
	BucketKey  `bson:",inline"`
	Rows       int     `json:"rows" bson:"rows"`
	WorkTime   float64 `json:"workTime" bson:"work_time"`
	MachineCap float64 `json:"machineCap" bson:"machine_cap"`
	Product    float64 `json:"product" bson:"product"`
	LostTime   float64 `json:"lostTime" bson:"lost_time"`
	// ProductPerformance is recomputed from the sums, never averaged.
	ProductPerformance float64 `json:"productPerformance" bson:"product_performance"`
}

// GradingTotals sums buckets across sites.
type GradingTotals struct {
	MachineCap         float64 `json:"machineCap"`
	Product            float64 `json:"product"`
	LostTime           float64 `json:"lostTime"`
	ProductPerformance float64 `json:"productPerformance"`
}

// BiogasReport is the per-farm biogas report for a date range.
type BiogasReport struct {
	From    string         `json:"fromDate"`
	To      string         `json:"toDate"`
	Buckets []BiogasBucket `json:"buckets"`
	Totals  BiogasTotals   `json:"totals"`
}

// GradingReport is the per-site grading report for a date range.
type GradingReport struct {
	From    string          `json:"fromDate"`
	To      string          `json:"toDate"`
	Buckets []GradingBucket `json:"buckets"`
	Totals  GradingTotals   `json:"totals"`
}

// PeriodSummary is one side of a comparison.
type PeriodSummary struct {
	From    string         `json:"fromDate" bson:"from"`
	To      string         `json:"toDate" bson:"to"`
	Buckets []BiogasBucket `json:"buckets" bson:"buckets"`
	Totals  BiogasTotals   `json:"totals" bson:"totals"`
}

// Comparison contrasts a current window with the preceding one.
type Comparison struct {
	Current          PeriodSummary `json:"current" bson:"current"`
	Previous         PeriodSummary `json:"previous" bson:"previous"`
	PercentageChange float64       `json:"percentageChange" bson:"percentage_change"`
}

// CoverageRow flags, per observed date, whether a group has any row.
type CoverageRow struct {
	Group   string `json:"farm"`
	Present []bool `json:"data"`
}

// CoverageMatrix is the data-entry completeness grid of the mapping views.
type CoverageMatrix struct {
	Dates  []string      `json:"dates"`
	Labels []string      `json:"labels"`
	Rows   []CoverageRow `json:"rows"`
}

// Present reports whether group has a row on date; unknown keys are false.
func (m CoverageMatrix) Present(group, date string) bool {
	col := -1
	for i, d := range m.Dates {
		if d == date {
			col = i
			break
		}
	}
	if col < 0 {
		return false
	}
	for _, row := range m.Rows {
		if row.Group == group {
			return row.Present[col]
		}
	}
	return false
}

// SnapshotKindWeeklyBiogas tags archived weekly biogas comparisons.
const SnapshotKindWeeklyBiogas = "weekly_biogas"

// ReportSnapshot archives a generated weekly comparison.
type ReportSnapshot struct {
	ID         string     `bson:"_id" json:"id"`
	Kind       string     `bson:"kind" json:"kind"`
	Comparison Comparison `bson:"comparison" json:"comparison"`
	Summary    string     `bson:"summary" json:"summary"`
	CreatedAt  time.Time  `bson:"created_at" json:"created_at"`
}
