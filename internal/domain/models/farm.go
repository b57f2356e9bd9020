package models

// Farm is a biogas site code offered in the entry dropdown.
// Lookup tables are shared with the entry UI and keep their existing names.
type Farm struct {
	FarmShort string `gorm:"column:farmShort" json:"farmShort"`
}

func (Farm) TableName() string { return "farm" }

// Machine is a generator nominal rating (kW) offered in the entry dropdown.
type Machine struct {
	MachineType float64 `gorm:"column:machineType" json:"machineType"`
}

func (Machine) TableName() string { return "machine" }

// Area is an egg-grading site code.
type Area struct {
	AreaShort string `gorm:"column:areaShort" json:"shortArea"`
}

func (Area) TableName() string { return "area" }

// Approver signs generated farm documents.
type Approver struct {
	Title    string `gorm:"column:apvTitle" json:"apvTitle"`
	Name     string `gorm:"column:apvName" json:"apvName"`
	Position string `gorm:"column:apvPosition" json:"apvPosition"`
}

func (Approver) TableName() string { return "approver" }

// CompanyFarm is the letterhead data of a farm used on generated documents.
type CompanyFarm struct {
	Type    string `gorm:"column:apfType" json:"apfType"`
	Name    string `gorm:"column:apfName" json:"apfName"`
	Address string `gorm:"column:apfAddress" json:"apfAddress"`
	Tel     string `gorm:"column:apfTel" json:"apfTel"`
}

func (CompanyFarm) TableName() string { return "apFarm" }

// DropdownData bundles the biogas entry form choices.
type DropdownData struct {
	Farms    []Farm    `json:"farms"`
	Machines []Machine `json:"machines"`
}
