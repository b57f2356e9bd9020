package metrics

import (
	"math"
	"strings"

	"github.com/mamadbah2/farmperf/internal/domain/models"
)

const (
	EngineBiogas  = "biogas"
	EngineGrading = "grading"
)

// Observer is told about every derived field that had to be forced to a
// default (NaN, infinity, negative delta, zero denominator).
type Observer func(engine, field string)

// Engine computes derived KPIs from raw readings. It performs no I/O.
type Engine struct {
	table    Table
	observer Observer
}

// Option customizes an Engine.
type Option func(*Engine)

// WithObserver installs a degeneracy observer.
func WithObserver(observer Observer) Option {
	return func(e *Engine) {
		e.observer = observer
	}
}

// NewEngine builds an engine over the given constant table.
func NewEngine(table Table, opts ...Option) *Engine {
	e := &Engine{table: table}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Table exposes the constants the engine was built with.
func (e *Engine) Table() Table {
	return e.table
}

// ComputeBiogas derives production deltas, value, standard output and
// breakdown hours from one meter reading.
func (e *Engine) ComputeBiogas(in models.RawBiogasInput) models.DerivedBiogasMetrics {
	hrBefore, kwBefore := in.OpeningCounters()

	productHr := e.nonNegative(EngineBiogas, "productHr", in.HrAfter-hrBefore)
	productKw := e.nonNegative(EngineBiogas, "productKw", in.KwAfter-kwBefore)
	productValue := e.nonNegative(EngineBiogas, "productValue", productKw*in.PeaUnit)

	hrStd := Finite(in.HrStd)
	if hrStd <= 0 {
		hrStd = e.table.HrStdFor(in.Farm)
	}

	kwSTD := e.nonNegative(EngineBiogas, "kwSTD", in.MachineType*e.table.EfficiencyFactor*hrStd)
	hrBreakdown := clampZero(e.finite(EngineBiogas, "hrBreakdown", hrStd-productHr))

	return models.DerivedBiogasMetrics{
		ProductHr:    productHr,
		ProductKw:    productKw,
		ProductValue: productValue,
		KwSTD:        kwSTD,
		HrStd:        hrStd,
		HrBreakdown:  hrBreakdown,
	}
}

// ComputeGrading derives the rated capacity and performance of a grading run.
func (e *Engine) ComputeGrading(in models.RawGradingInput) models.DerivedGradingMetrics {
	capacity := e.table.CapacityPerMinute(in.ShortArea)
	machineCap := e.nonNegative(EngineGrading, "machineCap", in.WorkTime*capacity)

	if machineCap == 0 {
		e.observe(EngineGrading, "productPerformance")
	}

	return models.DerivedGradingMetrics{
		CapacityPerMinute:  capacity,
		MachineCap:         machineCap,
		ProductPerformance: Percent(in.Product, machineCap),
	}
}

// NormalizeBreakdown applies the repair sub-record rules: free-text fields
// are nullable, durations default to zero, and everything is cleared when
// the breakdown flag is off.
func NormalizeBreakdown(in models.RawGradingInput) models.BreakdownRecord {
	if !in.Breakdown {
		return models.BreakdownRecord{}
	}
	rec := models.BreakdownRecord{
		Breakdown:     true,
		BreakdownList: nullable(in.BreakdownList),
		FixCourse:     nullable(in.FixCourse),
		FixLocation:   nullable(in.FixLocation),
	}
	if in.FixTime != nil {
		rec.FixTime = clampZero(Finite(*in.FixTime))
	}
	if in.LostTime != nil {
		rec.LostTime = clampZero(Finite(*in.LostTime))
	}
	return rec
}

// ApplyBiogas writes raw and derived values onto a stored reading.
func ApplyBiogas(row *models.MeterReading, in models.RawBiogasInput, d models.DerivedBiogasMetrics) {
	row.Farm = NormalizeCode(in.Farm)
	row.MachineType = in.MachineType
	row.MachineNo = in.MachineNo
	row.HrBefore, row.KwBefore = in.OpeningCounters()
	row.HrAfter = in.HrAfter
	row.KwAfter = in.KwAfter
	row.PeaUnit = in.PeaUnit
	row.HrStd = d.HrStd
	row.ProductHr = d.ProductHr
	row.ProductKw = d.ProductKw
	row.ProductValue = d.ProductValue
	row.KwSTD = d.KwSTD
	row.HrBreakdown = d.HrBreakdown
}

// ApplyGrading overwrites every input and derived field of a stored run.
func ApplyGrading(row *models.GradingSession, in models.RawGradingInput, d models.DerivedGradingMetrics) {
	b := NormalizeBreakdown(in)
	row.ShortArea = NormalizeCode(in.ShortArea)
	row.MachineType = in.MachineType
	row.WorkTime = in.WorkTime
	row.Product = in.Product
	row.MachineCap = d.MachineCap
	row.ProductPerformance = d.ProductPerformance
	row.Breakdown = b.Breakdown
	row.BreakdownList = b.BreakdownList
	row.FixCourse = b.FixCourse
	row.FixTime = b.FixTime
	row.LostTime = b.LostTime
	row.FixLocation = b.FixLocation
}

func (e *Engine) finite(engine, field string, v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		e.observe(engine, field)
		return 0
	}
	return v
}

func (e *Engine) nonNegative(engine, field string, v float64) float64 {
	v = e.finite(engine, field, v)
	if v < 0 {
		e.observe(engine, field)
		return 0
	}
	return v
}

func (e *Engine) observe(engine, field string) {
	if e.observer != nil {
		e.observer(engine, field)
	}
}

func nullable(s string) *string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return &s
}
