package repository

import (
	"context"

	"acqplan/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type DepartmentTypeRepository interface {
	Create(ctx context.Context, t *model.DepartmentType) error
	Update(ctx context.Context, t *model.DepartmentType) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.DepartmentType, error)
	FindByCode(ctx context.Context, code string) (*model.DepartmentType, error)
	List(ctx context.Context, activeOnly bool) ([]model.DepartmentType, error)
}

type departmentTypeRepository struct {
	db *gorm.DB
}

func NewDepartmentTypeRepository(db *gorm.DB) DepartmentTypeRepository {
	return &departmentTypeRepository{db: db}
}

func (r *departmentTypeRepository) Create(ctx context.Context, t *model.DepartmentType) error {
	return GetDB(ctx, r.db).Create(t).Error
}

func (r *departmentTypeRepository) Update(ctx context.Context, t *model.DepartmentType) error {
	return GetDB(ctx, r.db).Save(t).Error
}

func (r *departmentTypeRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return GetDB(ctx, r.db).Where("id = ?", id).Delete(&model.DepartmentType{}).Error
}

func (r *departmentTypeRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.DepartmentType, error) {
	var t model.DepartmentType
	if err := GetDB(ctx, r.db).First(&t, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *departmentTypeRepository) FindByCode(ctx context.Context, code string) (*model.DepartmentType, error) {
	var t model.DepartmentType
	if err := GetDB(ctx, r.db).First(&t, "code = ?", code).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *departmentTypeRepository) List(ctx context.Context, activeOnly bool) ([]model.DepartmentType, error) {
	var types []model.DepartmentType
	query := GetDB(ctx, r.db)
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}
	if err := query.Order("name ASC").Find(&types).Error; err != nil {
		return nil, err
	}
	return types, nil
}
