package repository

import (
	"context"
	"time"

	"acqplan/internal/access"
	"acqplan/internal/model"
	"acqplan/pkg/pagination"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// RequestFilter holds the optional list filters. Visibility is applied
// separately from the caller's access.Filter.
type RequestFilter struct {
	Status             string
	DepartmentID       *uuid.UUID
	ParentDepartmentID *uuid.UUID
	StartDate          *time.Time
	EndDate            *time.Time
	ContractTypeID     *uuid.UUID
	AcquisitionTypeID  *uuid.UUID
	Search             string
}

// workflow columns written by every transition
var stateColumns = []string{
	"status", "manager_status", "approver_status",
	"manager_approved_at", "manager_approved_by",
	"approved_at", "approved_by",
	"rejection_reason", "manager_rejection_reason", "return_reason",
	"reopened_at", "reopened_by", "reopen_reason",
}

type RequestRepository interface {
	Create(ctx context.Context, req *model.Request) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Request, error)
	FindByIDWithRelations(ctx context.Context, id uuid.UUID) (*model.Request, error)
	// FindForUpdate re-reads the row under a lock when called inside a transaction.
	FindForUpdate(ctx context.Context, id uuid.UUID) (*model.Request, error)
	List(ctx context.Context, scope access.Filter, filter RequestFilter, page, limit int) ([]model.Request, int64, error)
	SaveState(ctx context.Context, req *model.Request) error
	SaveContent(ctx context.Context, req *model.Request) error
	ReplaceItems(ctx context.Context, requestID uuid.UUID, items []model.RequestItem) error
	Delete(ctx context.Context, id uuid.UUID) error
	CountByNumberPrefix(ctx context.Context, prefix string) (int64, error)
}

type requestRepository struct {
	db *gorm.DB
}

func NewRequestRepository(db *gorm.DB) RequestRepository {
	return &requestRepository{db: db}
}

func (r *requestRepository) Create(ctx context.Context, req *model.Request) error {
	return GetDB(ctx, r.db).Omit("User", "Department", "History").Create(req).Error
}

func (r *requestRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Request, error) {
	var req model.Request
	if err := GetDB(ctx, r.db).First(&req, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *requestRepository) FindByIDWithRelations(ctx context.Context, id uuid.UUID) (*model.Request, error) {
	var req model.Request
	if err := GetDB(ctx, r.db).
		Preload("User").
		Preload("Department").
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
		First(&req, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *requestRepository) FindForUpdate(ctx context.Context, id uuid.UUID) (*model.Request, error) {
	var req model.Request
	if err := forUpdate(ctx, GetDB(ctx, r.db)).First(&req, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *requestRepository) List(ctx context.Context, scope access.Filter, filter RequestFilter, page, limit int) ([]model.Request, int64, error) {
	var requests []model.Request
	var total int64

	query := scope.Apply(GetDB(ctx, r.db).Model(&model.Request{}))

	if filter.Status != "" {
		query = query.Where("requests.status = ?", filter.Status)
	}
	if filter.DepartmentID != nil {
		query = query.Where("requests.department_id = ?", *filter.DepartmentID)
	}
	// A parent filter widens to the department and its direct children, and
	// only for actors whose scope is not already confined.
	if filter.ParentDepartmentID != nil && scope.ParentFilter {
		query = query.Where("requests.department_id IN (?)",
			GetDB(ctx, r.db).Model(&model.Department{}).Select("id").
				Where("id = ? OR parent_id = ?", *filter.ParentDepartmentID, *filter.ParentDepartmentID))
	}
	if filter.StartDate != nil {
		query = query.Where("requests.request_date >= ?", *filter.StartDate)
	}
	if filter.EndDate != nil {
		query = query.Where("requests.request_date <= ?", *filter.EndDate)
	}
	if filter.ContractTypeID != nil {
		query = query.Where("requests.id IN (?)",
			GetDB(ctx, r.db).Model(&model.RequestItem{}).Select("request_id").
				Where("contract_type_id = ?", *filter.ContractTypeID))
	}
	if filter.AcquisitionTypeID != nil {
		query = query.Where("requests.id IN (?)",
			GetDB(ctx, r.db).Model(&model.RequestItem{}).Select("request_id").
				Where("acquisition_type_master_id = ?", *filter.AcquisitionTypeID))
	}
	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		query = query.Where("LOWER(requests.request_number) LIKE LOWER(?) OR LOWER(requests.description) LIKE LOWER(?)", like, like)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := query.
		Preload("User").
		Preload("Department").
		Preload("Items").
		Order("requests.created_at DESC").
		Scopes(pagination.Scope(page, limit)).
		Find(&requests).Error; err != nil {
		return nil, 0, err
	}

	return requests, total, nil
}

// SaveState writes the workflow tuple and its stamps, including cleared ones.
func (r *requestRepository) SaveState(ctx context.Context, req *model.Request) error {
	return GetDB(ctx, r.db).Model(req).Select(stateColumns).Updates(req).Error
}

func (r *requestRepository) SaveContent(ctx context.Context, req *model.Request) error {
	return GetDB(ctx, r.db).Model(req).
		Select("description", "justification", "total_value", "department_id").
		Updates(req).Error
}

func (r *requestRepository) ReplaceItems(ctx context.Context, requestID uuid.UUID, items []model.RequestItem) error {
	db := GetDB(ctx, r.db)
	if err := db.Where("request_id = ?", requestID).Delete(&model.RequestItem{}).Error; err != nil {
		return err
	}
	if len(items) == 0 {
		return nil
	}
	for i := range items {
		items[i].RequestID = requestID
	}
	return db.Create(&items).Error
}

// Delete removes a request with its items and history. Notifications keep
// their text but lose the link.
func (r *requestRepository) Delete(ctx context.Context, id uuid.UUID) error {
	db := GetDB(ctx, r.db)
	if err := db.Where("request_id = ?", id).Delete(&model.RequestItem{}).Error; err != nil {
		return err
	}
	if err := db.Where("request_id = ?", id).Delete(&model.RequestHistory{}).Error; err != nil {
		return err
	}
	if err := db.Model(&model.Notification{}).Where("request_id = ?", id).Update("request_id", nil).Error; err != nil {
		return err
	}
	return db.Where("id = ?", id).Delete(&model.Request{}).Error
}

func (r *requestRepository) CountByNumberPrefix(ctx context.Context, prefix string) (int64, error) {
	var n int64
	err := GetDB(ctx, r.db).Model(&model.Request{}).Where("request_number LIKE ?", prefix+"%").Count(&n).Error
	return n, err
}
