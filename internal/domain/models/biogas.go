package models

import (
	"fmt"
	"time"
)

// MeterReading is one stored biogas generator reading: one row per farm,
// machine and day. Derived fields are computed once at save time.
type MeterReading struct {
	InputID     uint      `gorm:"column:inputId;primaryKey;autoIncrement" json:"inputId"`
	SaveDate    time.Time `gorm:"column:saveDate;type:date;not null;index:idx_biogas_counter_key" json:"saveDate"`
	Farm        string    `gorm:"column:farm;size:16;not null;index:idx_biogas_counter_key" json:"farm"`
	MachineType float64   `gorm:"column:machineType;not null;index:idx_biogas_counter_key" json:"machineType"`
	MachineNo   int       `gorm:"column:machineNo;not null;default:1;index:idx_biogas_counter_key" json:"machineNo"`

	HrBefore float64 `gorm:"column:hrBefore" json:"hrBefore"`
	HrAfter  float64 `gorm:"column:hrAfter" json:"hrAfter"`
	KwBefore float64 `gorm:"column:kwBefore" json:"kwBefore"`
	KwAfter  float64 `gorm:"column:kwAfter" json:"kwAfter"`
	PeaUnit  float64 `gorm:"column:peaUnit" json:"peaUnit"`
	HrStd    float64 `gorm:"column:hrStd" json:"hrStd"`

	ProductHr    float64 `gorm:"column:productHr" json:"productHr"`
	ProductKw    float64 `gorm:"column:productKw" json:"productKw"`
	ProductValue float64 `gorm:"column:productValue" json:"productValue"`
	KwSTD        float64 `gorm:"column:kwSTD" json:"kwSTD"`
	HrBreakdown  float64 `gorm:"column:hrBreakdown" json:"hrBreakdown"`
}

// TableName maps to the existing biogasInput table.
func (MeterReading) TableName() string {
	return "biogasInput"
}

// RawBiogasInput is what the entry form submits. HrBefore and KwBefore are
// pointers so an omitted opening counter can be carried forward from the
// previous day; HrStd of zero selects the farm default.
type RawBiogasInput struct {
	SaveDate    string   `json:"saveDate"`
	Farm        string   `json:"farm"`
	MachineType float64  `json:"machineType"`
	MachineNo   int      `json:"machineNo"`
	HrBefore    *float64 `json:"hrBefore"`
	HrAfter     float64  `json:"hrAfter"`
	KwBefore    *float64 `json:"kwBefore"`
	KwAfter     float64  `json:"kwAfter"`
	PeaUnit     float64  `json:"peaUnit"`
	HrStd       float64  `json:"hrStd"`
}

// OpeningCounters returns the before-counters, treating omitted values as zero.
func (in RawBiogasInput) OpeningCounters() (hr, kw float64) {
	if in.HrBefore != nil {
		hr = *in.HrBefore
	}
	if in.KwBefore != nil {
		kw = *in.KwBefore
	}
	return hr, kw
}

// WithOpeningCounters returns a copy whose omitted before-counters are filled from prev.
func (in RawBiogasInput) WithOpeningCounters(prev Counters) RawBiogasInput {
	out := in
	if out.HrBefore == nil {
		hr := prev.HrAfter
		out.HrBefore = &hr
	}
	if out.KwBefore == nil {
		kw := prev.KwAfter
		out.KwBefore = &kw
	}
	return out
}

// DerivedBiogasMetrics holds the read-only KPI fields of a reading.
type DerivedBiogasMetrics struct {
	ProductHr    float64 `json:"productHr"`
	ProductKw    float64 `json:"productKw"`
	ProductValue float64 `json:"productValue"`
	KwSTD        float64 `json:"kwSTD"`
	HrStd        float64 `json:"hrStd"`
	HrBreakdown  float64 `json:"hrBreakdown"`
}

// DisplayValue formats the monetary value for display only.
func (d DerivedBiogasMetrics) DisplayValue() string {
	return fmt.Sprintf("%.2f", d.ProductValue)
}

// Counters are the closing counters of a machine's previous reading.
type Counters struct {
	HrAfter float64 `json:"hrAfter"`
	KwAfter float64 `json:"kwAfter"`
}

// CounterKey identifies the machine whose counters carry forward day to day.
type CounterKey struct {
	Farm        string
	MachineType float64
	MachineNo   int
	Date        time.Time
}

// BiogasFilter narrows stored readings for listing and reports.
type BiogasFilter struct {
	From time.Time
	To   time.Time
	Farm string
}
