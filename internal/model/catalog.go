package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ItemType is a top-level classification of catalog items (hardware, software, service...).
type ItemType struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name      string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"name"`
	IsActive  bool      `gorm:"default:true" json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ItemCategory refines an ItemType.
type ItemCategory struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Name       string     `gorm:"type:varchar(255);not null" json:"name"`
	ItemTypeID *uuid.UUID `gorm:"type:uuid;index" json:"item_type_id"`
	IsActive   bool       `gorm:"default:true" json:"is_active"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// Item is a catalog entry users can pick when filling request lines.
type Item struct {
	ID             uuid.UUID     `gorm:"type:uuid;primaryKey" json:"id"`
	Name           string        `gorm:"type:varchar(255);not null;index" json:"name"`
	Description    string        `gorm:"type:text" json:"description"`
	ItemTypeID     *uuid.UUID    `gorm:"type:uuid;index" json:"item_type_id"`
	ItemType       *ItemType     `gorm:"foreignKey:ItemTypeID" json:"item_type,omitempty"`
	ItemCategoryID *uuid.UUID    `gorm:"type:uuid;index" json:"item_category_id"`
	ItemCategory   *ItemCategory `gorm:"foreignKey:ItemCategoryID" json:"item_category,omitempty"`
	IsActive       bool          `gorm:"default:true" json:"is_active"`
	CreatedAt      time.Time     `json:"created_at"`
	UpdatedAt      time.Time     `json:"updated_at"`
}

// ItemExclusion marks catalog entries that are explicitly out of the plan.
// It only produces warnings during item search.
type ItemExclusion struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name      string    `gorm:"type:varchar(255);not null" json:"name"`
	Reason    string    `gorm:"type:text" json:"reason"`
	IsActive  bool      `gorm:"default:true" json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type ContractType struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name      string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"name"`
	IsActive  bool      `gorm:"default:true" json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type AcquisitionTypeMaster struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name      string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"name"`
	IsActive  bool      `gorm:"default:true" json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (m *ItemType) BeforeCreate(*gorm.DB) error              { assignID(&m.ID); return nil }
func (m *ItemCategory) BeforeCreate(*gorm.DB) error          { assignID(&m.ID); return nil }
func (m *Item) BeforeCreate(*gorm.DB) error                  { assignID(&m.ID); return nil }
func (m *ItemExclusion) BeforeCreate(*gorm.DB) error         { assignID(&m.ID); return nil }
func (m *ContractType) BeforeCreate(*gorm.DB) error          { assignID(&m.ID); return nil }
func (m *AcquisitionTypeMaster) BeforeCreate(*gorm.DB) error { assignID(&m.ID); return nil }
