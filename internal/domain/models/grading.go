package models

import "time"

// GradingSession is one stored egg-grading run.
type GradingSession struct {
	InputID   uint      `gorm:"column:inputId;primaryKey;autoIncrement" json:"inputId"`
	InputDate time.Time `gorm:"column:inputDate;type:date;not null;index" json:"inputDate"`
	ShortArea string    `gorm:"column:shortArea;size:16;not null;index" json:"shortArea"`
	// MachineType maps to the legacy misspelled column.
	MachineType int `gorm:"column:machineTpye;default:0" json:"machineType"`

	WorkTime float64 `gorm:"column:workTime" json:"workTime"`
	Product  float64 `gorm:"column:product" json:"product"`

	MachineCap         float64 `gorm:"column:machineCap" json:"machineCap"`
	ProductPerformance float64 `gorm:"column:productPerformance" json:"productPerformance"`

	Breakdown     bool    `gorm:"column:breakdown;default:false" json:"breakdown"`
	BreakdownList *string `gorm:"column:breakdownList" json:"breakdownList"`
	FixCourse     *string `gorm:"column:fixCourse" json:"fixCourse"`
	FixTime       float64 `gorm:"column:fixTime;default:0" json:"fixTime"`
	LostTime      float64 `gorm:"column:lostTime;default:0" json:"lostTime"`
	FixLocation   *string `gorm:"column:fixLocation" json:"fixLocation"`
}

func (GradingSession) TableName() string {
	return "production"
}

// RawGradingInput is what the grading entry and edit forms submit.
type RawGradingInput struct {
	InputDate   string  `json:"inputDate"`
	ShortArea   string  `json:"shortArea"`
	MachineType int     `json:"machineType"`
	WorkTime    float64 `json:"workTime"`
	Product     float64 `json:"product"`

	Breakdown     bool     `json:"breakdown"`
	BreakdownList string   `json:"breakdownList"`
	FixCourse     string   `json:"fixCourse"`
	FixTime       *float64 `json:"fixTime"`
	LostTime      *float64 `json:"lostTime"`
	FixLocation   string   `json:"fixLocation"`
}

// DerivedGradingMetrics holds the read-only KPI fields of a grading run.
type DerivedGradingMetrics struct {
	CapacityPerMinute  float64 `json:"capacityPerMinute"`
	MachineCap         float64 `json:"machineCap"`
	ProductPerformance float64 `json:"productPerformance"`
}

// BreakdownRecord is the normalized repair sub-record of a grading run.
type BreakdownRecord struct {
	Breakdown     bool
	BreakdownList *string
	FixCourse     *string
	FixTime       float64
	LostTime      float64
	FixLocation   *string
}

// GradingFilter narrows stored grading runs for listing and reports.
type GradingFilter struct {
	From      time.Time
	To        time.Time
	ShortArea string
}
