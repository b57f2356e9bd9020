package models

import "time"

// BiogasEnergyRow is a daily generator total from the energy tables.
type BiogasEnergyRow struct {
	DataDate   time.Time `gorm:"column:dataDate;type:date"`
	Farm       string    `gorm:"column:farm"`
	Runtime    float64   `gorm:"column:runtime"`
	Production float64   `gorm:"column:production"`
	Standard   float64   `gorm:"column:standard"`
}

func (BiogasEnergyRow) TableName() string { return "biogasDatas" }

// SolarEnergyRow is a daily solar production total.
type SolarEnergyRow struct {
	DataDate   time.Time `gorm:"column:dataDate;type:date"`
	Farm       string    `gorm:"column:farm"`
	Production float64   `gorm:"column:production"`
}

func (SolarEnergyRow) TableName() string { return "solarData" }

// GridEnergyRow is a daily grid (PEA) consumption total.
type GridEnergyRow struct {
	DataDate time.Time `gorm:"column:dataDate;type:date"`
	Farm     string    `gorm:"column:farm"`
	EUse     float64   `gorm:"column:eUse"`
	AvgPrice float64   `gorm:"column:avgPrice"`
}

func (GridEnergyRow) TableName() string { return "peaData" }

// EnergyRows is the raw input of an energy-mix report.
type EnergyRows struct {
	Biogas []BiogasEnergyRow
	Solar  []SolarEnergyRow
	Grid   []GridEnergyRow
}

// EnergyUsage is the monthly energy mix of one farm (or all farms when Farm is empty).
type EnergyUsage struct {
	Period            string  `json:"yearMonth"`
	Farm              string  `json:"farm,omitempty"`
	BiogasRuntime     float64 `json:"totalBiogasRuntime"`
	BiogasProduction  float64 `json:"totalBiogasProduction"`
	BiogasStandardAvg float64 `json:"avgBiogasStandard"`
	SolarProduction   float64 `json:"totalSolarProduction"`
	GridUse           float64 `json:"totalPeaEUse"`
	GridAvgPrice      float64 `json:"avgPeaAvgPrice"`
	Total             float64 `json:"totalEnergyUsage"`
	BiogasShare       float64 `json:"biogasShare"`
	SolarShare        float64 `json:"solarShare"`
	GridShare         float64 `json:"peaShare"`
}

// WaterSample is one water-quality sample of a treatment pool.
type WaterSample struct {
	DataDate time.Time `gorm:"column:dataDate;type:date"`
	Farm     string    `gorm:"column:farm"`
	Pool     string    `gorm:"column:pool"`
	BOD      float64   `gorm:"column:BOD"`
	COD      float64   `gorm:"column:COD"`
	PH       float64   `gorm:"column:PH"`
	TKN      float64   `gorm:"column:TKN"`
	TSS      float64   `gorm:"column:TSS"`
	Ammonia  float64   `gorm:"column:Ammonia"`
	TP       float64   `gorm:"column:TP"`
	ALK      float64   `gorm:"column:ALK"`
	VFA      float64   `gorm:"column:VFA"`
}

func (WaterSample) TableName() string { return "waterData" }

// WaterSummary is the monthly sum of one parameter for a pool.
type WaterSummary struct {
	Period    string  `json:"monthYear"`
	Label     string  `json:"label"`
	Farm      string  `json:"farm"`
	Pool      string  `json:"pool"`
	Parameter string  `json:"parameter"`
	Value     float64 `json:"value"`
}

// EnergyPoint is one day of a farm's energy series for a single source.
type EnergyPoint struct {
	Date  string  `json:"date"`
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

// GHGRow is a daily greenhouse-gas record of one farm and energy source.
type GHGRow struct {
	DataDate   time.Time `gorm:"column:dataDate;type:date"`
	Farm       string    `gorm:"column:farm"`
	Source     string    `gorm:"column:source"`
	Production float64   `gorm:"column:production"`
	GHG        float64   `gorm:"column:GHG"`
}

func (GHGRow) TableName() string { return "ghgData" }

// GHGSummary is the monthly production total and mean emission factor of a
// farm and source.
type GHGSummary struct {
	Period          string  `json:"dataDate"`
	Label           string  `json:"label"`
	Farm            string  `json:"farm"`
	Source          string  `json:"source"`
	TotalProduction float64 `json:"totalProduction"`
	AvgGHG          float64 `json:"avgGHG"`
}
