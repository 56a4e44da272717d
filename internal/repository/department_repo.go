package repository

import (
	"context"

	"acqplan/internal/hierarchy"
	"acqplan/internal/model"
	"acqplan/pkg/pagination"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DepartmentFilter narrows a department listing. Zero values are ignored.
type DepartmentFilter struct {
	Search   string
	IsActive *bool
	TypeID   *uuid.UUID
	ParentID *uuid.UUID
}

type DepartmentRepository interface {
	Create(ctx context.Context, dept *model.Department) error
	Update(ctx context.Context, dept *model.Department) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Department, error)
	FindByIDWithRelations(ctx context.Context, id uuid.UUID) (*model.Department, error)
	FindByCode(ctx context.Context, code string) (*model.Department, error)
	FindByName(ctx context.Context, name string) (*model.Department, error)
	List(ctx context.Context, filter DepartmentFilter, page, limit int) ([]model.Department, int64, error)
	Tree(ctx context.Context) (*hierarchy.Tree, error)
	Counts(ctx context.Context, id uuid.UUID) (model.DepartmentCounts, error)
	CountByType(ctx context.Context, typeID uuid.UUID) (int64, error)
	SetParent(ctx context.Context, id uuid.UUID, parentID *uuid.UUID) error
}

type departmentRepository struct {
	db *gorm.DB
}

func NewDepartmentRepository(db *gorm.DB) DepartmentRepository {
	return &departmentRepository{db: db}
}

func (r *departmentRepository) Create(ctx context.Context, dept *model.Department) error {
	return GetDB(ctx, r.db).Omit("Parent", "Children", "Type").Create(dept).Error
}

func (r *departmentRepository) Update(ctx context.Context, dept *model.Department) error {
	return GetDB(ctx, r.db).Omit("Parent", "Children", "Type").Save(dept).Error
}

func (r *departmentRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Department, error) {
	var dept model.Department
	if err := GetDB(ctx, r.db).First(&dept, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &dept, nil
}

func (r *departmentRepository) FindByIDWithRelations(ctx context.Context, id uuid.UUID) (*model.Department, error) {
	var dept model.Department
	if err := GetDB(ctx, r.db).
		Preload("Parent").
		Preload("Type").
		Preload("Children", "is_active = ?", true).
		First(&dept, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &dept, nil
}

func (r *departmentRepository) FindByCode(ctx context.Context, code string) (*model.Department, error) {
	var dept model.Department
	if err := GetDB(ctx, r.db).First(&dept, "code = ?", code).Error; err != nil {
		return nil, err
	}
	return &dept, nil
}

func (r *departmentRepository) FindByName(ctx context.Context, name string) (*model.Department, error) {
	var dept model.Department
	if err := GetDB(ctx, r.db).First(&dept, "name = ?", name).Error; err != nil {
		return nil, err
	}
	return &dept, nil
}

func (r *departmentRepository) List(ctx context.Context, filter DepartmentFilter, page, limit int) ([]model.Department, int64, error) {
	var depts []model.Department
	var total int64

	query := GetDB(ctx, r.db).Model(&model.Department{})
	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		query = query.Where("LOWER(name) LIKE LOWER(?) OR LOWER(code) LIKE LOWER(?) OR LOWER(sigla) LIKE LOWER(?)", like, like, like)
	}
	if filter.IsActive != nil {
		query = query.Where("is_active = ?", *filter.IsActive)
	}
	if filter.TypeID != nil {
		query = query.Where("type_id = ?", *filter.TypeID)
	}
	if filter.ParentID != nil {
		query = query.Where("parent_id = ?", *filter.ParentID)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := query.Preload("Parent").Preload("Type").Order("name ASC").
		Scopes(pagination.Scope(page, limit)).Find(&depts).Error; err != nil {
		return nil, 0, err
	}

	return depts, total, nil
}

// Tree loads every department's parent link into an arena.
func (r *departmentRepository) Tree(ctx context.Context) (*hierarchy.Tree, error) {
	var rows []struct {
		ID       uuid.UUID
		ParentID *uuid.UUID
	}
	if err := GetDB(ctx, r.db).Model(&model.Department{}).Select("id, parent_id").Scan(&rows).Error; err != nil {
		return nil, err
	}

	nodes := make([]hierarchy.Node, len(rows))
	for i, row := range rows {
		nodes[i] = hierarchy.Node{ID: row.ID, ParentID: row.ParentID}
	}
	return hierarchy.Build(nodes), nil
}

// Counts returns the active dependents of a department.
func (r *departmentRepository) Counts(ctx context.Context, id uuid.UUID) (model.DepartmentCounts, error) {
	var c model.DepartmentCounts
	db := GetDB(ctx, r.db)

	if err := db.Model(&model.User{}).Where("department_id = ? AND is_active = ?", id, true).Count(&c.Users).Error; err != nil {
		return c, err
	}
	if err := db.Model(&model.Request{}).Where("department_id = ?", id).Count(&c.Requests).Error; err != nil {
		return c, err
	}
	if err := db.Model(&model.Department{}).Where("parent_id = ? AND is_active = ?", id, true).Count(&c.Children).Error; err != nil {
		return c, err
	}
	return c, nil
}

func (r *departmentRepository) CountByType(ctx context.Context, typeID uuid.UUID) (int64, error) {
	var n int64
	err := GetDB(ctx, r.db).Model(&model.Department{}).Where("type_id = ?", typeID).Count(&n).Error
	return n, err
}

func (r *departmentRepository) SetParent(ctx context.Context, id uuid.UUID, parentID *uuid.UUID) error {
	return GetDB(ctx, r.db).Model(&model.Department{}).Where("id = ?", id).Update("parent_id", parentID).Error
}
