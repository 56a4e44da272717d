package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	ActionCreateDepartment     = "CREATE_DEPARTMENT"
	ActionUpdateDepartment     = "UPDATE_DEPARTMENT"
	ActionDeleteDepartment     = "DELETE_DEPARTMENT"
	ActionImportDepartments    = "IMPORT_DEPARTMENTS"
	ActionCreateDepartmentType = "CREATE_DEPARTMENT_TYPE"
	ActionUpdateDepartmentType = "UPDATE_DEPARTMENT_TYPE"
	ActionDeleteDepartmentType = "DELETE_DEPARTMENT_TYPE"
	ActionCreateUser           = "CREATE_USER"
	ActionUpdateUser           = "UPDATE_USER"
	ActionDeactivateUser       = "DEACTIVATE_USER"
	ActionUpdateSetting        = "UPDATE_SETTING"
	ActionDeleteRequest        = "DELETE_REQUEST"
)

// AuditLog tracks who changed reference data and when. Request transitions
// are recorded in RequestHistory instead.
type AuditLog struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID     *uuid.UUID `gorm:"type:uuid;index" json:"user_id"`
	User       *User      `gorm:"foreignKey:UserID" json:"user"`
	Action     string     `gorm:"type:varchar(50);not null;index" json:"action"`
	EntityID   string     `gorm:"type:varchar(50);index" json:"entity_id"`
	EntityName string     `gorm:"type:varchar(255)" json:"entity_name,omitempty"`
	Details    string     `gorm:"type:text" json:"details"` // JSON payload of the action
	CreatedAt  time.Time  `gorm:"index" json:"created_at"`
}

func (a *AuditLog) BeforeCreate(*gorm.DB) error {
	assignID(&a.ID)
	return nil
}
