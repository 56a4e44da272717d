package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Acquisition modes of a request line.
const (
	AcquisitionPurchase = "PURCHASE"
	AcquisitionRental   = "RENTAL"
	AcquisitionRenewal  = "RENEWAL"
)

// Request is the aggregate root of the approval workflow. Status,
// ManagerStatus and ApproverStatus are the serialized form of a
// workflow.State and are only written through workflow transitions.
type Request struct {
	ID                     uuid.UUID        `gorm:"type:uuid;primaryKey" json:"id"`
	RequestNumber          string           `gorm:"type:varchar(30);uniqueIndex;not null" json:"request_number"`
	UserID                 uuid.UUID        `gorm:"type:uuid;not null;index" json:"user_id"`
	User                   *User            `gorm:"foreignKey:UserID" json:"user,omitempty"`
	DepartmentID           uuid.UUID        `gorm:"type:uuid;not null;index" json:"department_id"`
	Department             *Department      `gorm:"foreignKey:DepartmentID" json:"department,omitempty"`
	Description            string           `gorm:"type:text;not null" json:"description"`
	Justification          string           `gorm:"type:text" json:"justification"`
	TotalValue             decimal.Decimal  `gorm:"type:numeric(18,2);not null" json:"total_value"`
	Status                 string           `gorm:"type:varchar(30);not null;index" json:"status"`
	ManagerStatus          string           `gorm:"type:varchar(30);not null" json:"manager_status"`
	ApproverStatus         string           `gorm:"type:varchar(30)" json:"approver_status"`
	RequestDate            time.Time        `gorm:"not null;index" json:"request_date"`
	ManagerApprovedAt      *time.Time       `json:"manager_approved_at"`
	ManagerApprovedBy      *uuid.UUID       `gorm:"type:uuid" json:"manager_approved_by"`
	ApprovedAt             *time.Time       `json:"approved_at"`
	ApprovedBy             *uuid.UUID       `gorm:"type:uuid" json:"approved_by"`
	RejectionReason        string           `gorm:"type:text" json:"rejection_reason"`
	ManagerRejectionReason string           `gorm:"type:text" json:"manager_rejection_reason"`
	ReturnReason           string           `gorm:"type:text" json:"return_reason"`
	ReopenedAt             *time.Time       `json:"reopened_at"`
	ReopenedBy             *uuid.UUID       `gorm:"type:uuid" json:"reopened_by"`
	ReopenReason           string           `gorm:"type:text" json:"reopen_reason"`
	Items                  []RequestItem    `gorm:"foreignKey:RequestID;constraint:OnDelete:CASCADE" json:"items"`
	History                []RequestHistory `gorm:"foreignKey:RequestID;constraint:OnDelete:CASCADE" json:"history,omitempty"`
	CreatedAt              time.Time        `json:"created_at"`
	UpdatedAt              time.Time        `json:"updated_at"`
}

func (r *Request) BeforeCreate(*gorm.DB) error {
	assignID(&r.ID)
	return nil
}

// RequestItem is a line of a request. It lives and dies with its request.
type RequestItem struct {
	ID                      uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	RequestID               uuid.UUID       `gorm:"type:uuid;not null;index" json:"request_id"`
	ItemName                string          `gorm:"type:varchar(255);not null" json:"item_name"`
	ItemTypeID              *uuid.UUID      `gorm:"type:uuid" json:"item_type_id"`
	ItemCategoryID          *uuid.UUID      `gorm:"type:uuid" json:"item_category_id"`
	AcquisitionType         string          `gorm:"type:varchar(20);not null" json:"acquisition_type"`
	ContractTypeID          *uuid.UUID      `gorm:"type:uuid;index" json:"contract_type_id"`
	AcquisitionTypeMasterID *uuid.UUID      `gorm:"type:uuid;index" json:"acquisition_type_master_id"`
	Quantity                int             `gorm:"not null" json:"quantity"`
	UnitValue               decimal.Decimal `gorm:"type:numeric(18,2);not null" json:"unit_value"`
	TotalValue              decimal.Decimal `gorm:"type:numeric(18,2);not null" json:"total_value"`
	Specifications          string          `gorm:"type:text" json:"specifications"`
	Brand                   string          `gorm:"type:varchar(255)" json:"brand"`
	Model                   string          `gorm:"type:varchar(255)" json:"model"`
	CreatedAt               time.Time       `json:"created_at"`
	UpdatedAt               time.Time       `json:"updated_at"`
}

func (i *RequestItem) BeforeCreate(*gorm.DB) error {
	assignID(&i.ID)
	return nil
}

// RequestHistory is the append-only trail of a request: one row per transition.
type RequestHistory struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	RequestID   uuid.UUID `gorm:"type:uuid;not null;index" json:"request_id"`
	Action      string    `gorm:"type:varchar(100);not null" json:"action"`
	OldStatus   string    `gorm:"type:varchar(30)" json:"old_status"`
	NewStatus   string    `gorm:"type:varchar(30);not null" json:"new_status"`
	Comments    string    `gorm:"type:text" json:"comments"`
	CreatedByID uuid.UUID `gorm:"type:uuid;not null" json:"created_by_id"`
	CreatedBy   *User     `gorm:"foreignKey:CreatedByID" json:"created_by,omitempty"`
	CreatedAt   time.Time `gorm:"index" json:"created_at"`
}

func (h *RequestHistory) BeforeCreate(*gorm.DB) error {
	assignID(&h.ID)
	return nil
}

// Sequence is a named monotonic counter incremented in place.
type Sequence struct {
	Name      string    `gorm:"type:varchar(50);primaryKey" json:"name"`
	Value     int64     `gorm:"not null" json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}
