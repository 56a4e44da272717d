package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"acqplan/internal/access"
	"acqplan/internal/apperr"
	"acqplan/internal/model"
	"acqplan/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type DepartmentTypeDTO struct {
	Code         string `json:"code" binding:"required,max=50"`
	Name         string `json:"name" binding:"required,max=255"`
	Observations string `json:"observations"`
	IsActive     *bool  `json:"is_active"`
}

type DepartmentTypeService interface {
	List(ctx context.Context, activeOnly bool) ([]model.DepartmentType, error)
	Create(ctx context.Context, actor access.Actor, dto DepartmentTypeDTO) (*model.DepartmentType, error)
	Update(ctx context.Context, actor access.Actor, id uuid.UUID, dto DepartmentTypeDTO) (*model.DepartmentType, error)
	Delete(ctx context.Context, actor access.Actor, id uuid.UUID) error
}

type departmentTypeService struct {
	types       repository.DepartmentTypeRepository
	departments repository.DepartmentRepository
	audit       AuditService
}

func NewDepartmentTypeService(types repository.DepartmentTypeRepository, departments repository.DepartmentRepository, audit AuditService) DepartmentTypeService {
	return &departmentTypeService{types: types, departments: departments, audit: audit}
}

func (s *departmentTypeService) List(ctx context.Context, activeOnly bool) ([]model.DepartmentType, error) {
	return s.types.List(ctx, activeOnly)
}

func (s *departmentTypeService) checkCode(ctx context.Context, self uuid.UUID, code string) error {
	existing, err := s.types.FindByCode(ctx, code)
	if err == nil && existing.ID != self {
		return apperr.Conflict("department type code %s already exists", code)
	}
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	return nil
}

func (s *departmentTypeService) Create(ctx context.Context, actor access.Actor, dto DepartmentTypeDTO) (*model.DepartmentType, error) {
	code := strings.TrimSpace(dto.Code)
	if code == "" || strings.TrimSpace(dto.Name) == "" {
		return nil, apperr.Validation("code and name are required")
	}
	if err := s.checkCode(ctx, uuid.Nil, code); err != nil {
		return nil, err
	}

	t := &model.DepartmentType{
		Code:         code,
		Name:         strings.TrimSpace(dto.Name),
		Observations: dto.Observations,
		IsActive:     true,
	}
	if err := s.types.Create(ctx, t); err != nil {
		return nil, fmt.Errorf("failed to create department type: %w", err)
	}

	s.audit.Record(ctx, actor.ID, model.ActionCreateDepartmentType, t.ID.String(), t.Name, dto)
	return t, nil
}

func (s *departmentTypeService) Update(ctx context.Context, actor access.Actor, id uuid.UUID, dto DepartmentTypeDTO) (*model.DepartmentType, error) {
	t, err := s.types.FindByID(ctx, id)
	if err != nil {
		return nil, lookupErr(err, "department type")
	}

	code := strings.TrimSpace(dto.Code)
	if code != t.Code {
		if err := s.checkCode(ctx, t.ID, code); err != nil {
			return nil, err
		}
	}
	t.Code = code
	t.Name = strings.TrimSpace(dto.Name)
	t.Observations = dto.Observations
	if dto.IsActive != nil {
		t.IsActive = *dto.IsActive
	}

	if err := s.types.Update(ctx, t); err != nil {
		return nil, fmt.Errorf("failed to update department type: %w", err)
	}

	s.audit.Record(ctx, actor.ID, model.ActionUpdateDepartmentType, t.ID.String(), t.Name, dto)
	return t, nil
}

func (s *departmentTypeService) Delete(ctx context.Context, actor access.Actor, id uuid.UUID) error {
	t, err := s.types.FindByID(ctx, id)
	if err != nil {
		return lookupErr(err, "department type")
	}

	n, err := s.departments.CountByType(ctx, id)
	if err != nil {
		return err
	}
	if n > 0 {
		return apperr.Conflict("department type %s is used by %d departments", t.Code, n)
	}

	if err := s.types.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete department type: %w", err)
	}

	s.audit.Record(ctx, actor.ID, model.ActionDeleteDepartmentType, id.String(), t.Name, nil)
	return nil
}
