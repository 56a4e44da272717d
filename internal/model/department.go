package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// DepartmentType classifies departments (e.g. directorate, section).
type DepartmentType struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Code         string    `gorm:"type:varchar(50);uniqueIndex;not null" json:"code"`
	Name         string    `gorm:"type:varchar(255);not null" json:"name"`
	Observations string    `gorm:"type:text" json:"observations"`
	IsActive     bool      `gorm:"default:true" json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (t *DepartmentType) BeforeCreate(*gorm.DB) error {
	assignID(&t.ID)
	return nil
}

// Department is a node of the organisational tree. ParentID is a
// self-reference; the chain of parents must stay acyclic.
type Department struct {
	ID           uuid.UUID        `gorm:"type:uuid;primaryKey" json:"id"`
	Code         string           `gorm:"type:varchar(50);uniqueIndex;not null" json:"code"`
	Sigla        string           `gorm:"type:varchar(30)" json:"sigla"`
	Name         string           `gorm:"type:varchar(255);uniqueIndex;not null" json:"name"`
	ParentID     *uuid.UUID       `gorm:"type:uuid;index" json:"parent_id"`
	Parent       *Department      `gorm:"foreignKey:ParentID" json:"parent,omitempty"`
	Children     []Department     `gorm:"foreignKey:ParentID" json:"children,omitempty"`
	TypeID       *uuid.UUID       `gorm:"type:uuid;index" json:"type_id"`
	Type         *DepartmentType  `gorm:"foreignKey:TypeID" json:"type,omitempty"`
	Commander    string           `gorm:"type:varchar(255)" json:"commander"`
	Phone        string           `gorm:"type:varchar(50)" json:"phone"`
	Address      string           `gorm:"type:varchar(255)" json:"address"`
	City         string           `gorm:"type:varchar(100)" json:"city"`
	State        string           `gorm:"type:varchar(50)" json:"state"`
	ZipCode      string           `gorm:"type:varchar(20)" json:"zip_code"`
	Country      string           `gorm:"type:varchar(100)" json:"country"`
	AnnualBudget *decimal.Decimal `gorm:"type:numeric(18,2)" json:"annual_budget"`
	IsActive     bool             `gorm:"default:true;index" json:"is_active"`
	CreatedAt    time.Time        `json:"created_at"`
	UpdatedAt    time.Time        `json:"updated_at"`
}

func (d *Department) BeforeCreate(*gorm.DB) error {
	assignID(&d.ID)
	return nil
}

// DepartmentCounts holds the dependents that block a soft delete.
type DepartmentCounts struct {
	Users    int64 `json:"users"`
	Requests int64 `json:"requests"`
	Children int64 `json:"children"`
}
