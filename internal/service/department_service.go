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
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// --- DTOs ---

type CreateDepartmentDTO struct {
	Code         string           `json:"code" binding:"required,max=50"`
	Sigla        string           `json:"sigla" binding:"max=30"`
	Name         string           `json:"name" binding:"required,max=255"`
	ParentID     *string          `json:"parent_id"`
	TypeID       *string          `json:"type_id"`
	Commander    string           `json:"commander"`
	Phone        string           `json:"phone"`
	Address      string           `json:"address"`
	City         string           `json:"city"`
	State        string           `json:"state"`
	ZipCode      string           `json:"zip_code"`
	Country      string           `json:"country"`
	AnnualBudget *decimal.Decimal `json:"annual_budget"`
}

// UpdateDepartmentDTO is a partial update. A nil field is left unchanged;
// an empty parent_id or type_id clears the link.
type UpdateDepartmentDTO struct {
	Code         *string          `json:"code" binding:"omitempty,max=50"`
	Sigla        *string          `json:"sigla" binding:"omitempty,max=30"`
	Name         *string          `json:"name" binding:"omitempty,max=255"`
	ParentID     *string          `json:"parent_id"`
	TypeID       *string          `json:"type_id"`
	Commander    *string          `json:"commander"`
	Phone        *string          `json:"phone"`
	Address      *string          `json:"address"`
	City         *string          `json:"city"`
	State        *string          `json:"state"`
	ZipCode      *string          `json:"zip_code"`
	Country      *string          `json:"country"`
	AnnualBudget *decimal.Decimal `json:"annual_budget"`
	IsActive     *bool            `json:"is_active"`
}

type DepartmentListQuery struct {
	Search   string `form:"search"`
	IsActive string `form:"isActive"`
	TypeID   string `form:"typeId"`
	ParentID string `form:"parentId"`
}

type DepartmentRef struct {
	ID    string `json:"id"`
	Code  string `json:"code"`
	Sigla string `json:"sigla"`
	Name  string `json:"name"`
}

type DepartmentResponse struct {
	ID           string                  `json:"id"`
	Code         string                  `json:"code"`
	Sigla        string                  `json:"sigla"`
	Name         string                  `json:"name"`
	ParentID     *string                 `json:"parent_id"`
	Parent       *DepartmentRef          `json:"parent,omitempty"`
	Children     []DepartmentRef         `json:"children,omitempty"`
	TypeID       *string                 `json:"type_id"`
	TypeName     string                  `json:"type_name,omitempty"`
	Commander    string                  `json:"commander"`
	Phone        string                  `json:"phone"`
	Address      string                  `json:"address"`
	City         string                  `json:"city"`
	State        string                  `json:"state"`
	ZipCode      string                  `json:"zip_code"`
	Country      string                  `json:"country"`
	AnnualBudget *decimal.Decimal        `json:"annual_budget"`
	IsActive     bool                    `json:"is_active"`
	Count        *model.DepartmentCounts `json:"_count,omitempty"`
	CreatedAt    string                  `json:"created_at"`
	UpdatedAt    string                  `json:"updated_at"`
}

// DepartmentImportRow is one parsed spreadsheet line.
type DepartmentImportRow struct {
	Code       string `json:"code"`
	Sigla      string `json:"sigla"`
	Name       string `json:"name"`
	ParentCode string `json:"parent_code"`
	TypeCode   string `json:"type_code"`
	Commander  string `json:"commander"`
	Phone      string `json:"phone"`
	Address    string `json:"address"`
	City       string `json:"city"`
	State      string `json:"state"`
	ZipCode    string `json:"zip_code"`
	Country    string `json:"country"`
}

type ImportDepartmentsDTO struct {
	Rows []DepartmentImportRow `json:"rows" binding:"required"`
}

type ImportError struct {
	Row   int                 `json:"row"`
	Data  DepartmentImportRow `json:"data"`
	Error string              `json:"error"`
}

type ImportWarning struct {
	Row     int                 `json:"row"`
	Data    DepartmentImportRow `json:"data"`
	Warning string              `json:"warning"`
}

type ImportResult struct {
	Success  bool            `json:"success"`
	Total    int             `json:"total"`
	Imported int             `json:"imported"`
	Skipped  int             `json:"skipped"`
	Errors   []ImportError   `json:"errors"`
	Warnings []ImportWarning `json:"warnings"`
}

// --- Interface ---

type DepartmentService interface {
	Get(ctx context.Context, id uuid.UUID) (*DepartmentResponse, error)
	List(ctx context.Context, q DepartmentListQuery, page, limit int) ([]DepartmentResponse, int64, error)
	Create(ctx context.Context, actor access.Actor, dto CreateDepartmentDTO) (*DepartmentResponse, error)
	Update(ctx context.Context, actor access.Actor, id uuid.UUID, dto UpdateDepartmentDTO) (*DepartmentResponse, error)
	// Delete deactivates a department that nothing depends on anymore.
	Delete(ctx context.Context, actor access.Actor, id uuid.UUID) error
	Import(ctx context.Context, actor access.Actor, rows []DepartmentImportRow) (*ImportResult, error)
}

type departmentService struct {
	tx          repository.TransactionManager
	departments repository.DepartmentRepository
	types       repository.DepartmentTypeRepository
	audit       AuditService
}

func NewDepartmentService(
	tx repository.TransactionManager,
	departments repository.DepartmentRepository,
	types repository.DepartmentTypeRepository,
	audit AuditService,
) DepartmentService {
	return &departmentService{tx: tx, departments: departments, types: types, audit: audit}
}

// --- Implementation ---

func toDepartmentRef(d *model.Department) DepartmentRef {
	return DepartmentRef{ID: d.ID.String(), Code: d.Code, Sigla: d.Sigla, Name: d.Name}
}

func toDepartmentResponse(d *model.Department) DepartmentResponse {
	res := DepartmentResponse{
		ID:           d.ID.String(),
		Code:         d.Code,
		Sigla:        d.Sigla,
		Name:         d.Name,
		ParentID:     idPtrString(d.ParentID),
		TypeID:       idPtrString(d.TypeID),
		Commander:    d.Commander,
		Phone:        d.Phone,
		Address:      d.Address,
		City:         d.City,
		State:        d.State,
		ZipCode:      d.ZipCode,
		Country:      d.Country,
		AnnualBudget: d.AnnualBudget,
		IsActive:     d.IsActive,
		CreatedAt:    formatTime(d.CreatedAt),
		UpdatedAt:    formatTime(d.UpdatedAt),
	}
	if d.Parent != nil {
		ref := toDepartmentRef(d.Parent)
		res.Parent = &ref
	}
	if d.Type != nil {
		res.TypeName = d.Type.Name
	}
	for i := range d.Children {
		res.Children = append(res.Children, toDepartmentRef(&d.Children[i]))
	}
	return res
}

func (s *departmentService) Get(ctx context.Context, id uuid.UUID) (*DepartmentResponse, error) {
	dept, err := s.departments.FindByIDWithRelations(ctx, id)
	if err != nil {
		return nil, lookupErr(err, "department")
	}
	counts, err := s.departments.Counts(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to count department dependents: %w", err)
	}

	res := toDepartmentResponse(dept)
	res.Count = &counts
	return &res, nil
}

func (s *departmentService) List(ctx context.Context, q DepartmentListQuery, page, limit int) ([]DepartmentResponse, int64, error) {
	var (
		filter repository.DepartmentFilter
		err    error
	)
	filter.Search = strings.TrimSpace(q.Search)
	switch q.IsActive {
	case "":
	case "true", "false":
		active := q.IsActive == "true"
		filter.IsActive = &active
	default:
		return nil, 0, apperr.Validation("isActive must be true or false")
	}
	if filter.TypeID, err = parseOptionalID(&q.TypeID, "department type"); err != nil {
		return nil, 0, err
	}
	if filter.ParentID, err = parseOptionalID(&q.ParentID, "parent department"); err != nil {
		return nil, 0, err
	}

	page, limit = normalizePage(page, limit)
	depts, total, err := s.departments.List(ctx, filter, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list departments: %w", err)
	}

	res := make([]DepartmentResponse, 0, len(depts))
	for i := range depts {
		res = append(res, toDepartmentResponse(&depts[i]))
	}
	return res, total, nil
}

// ensureUnique reports a conflict when code or name already belong to
// another department.
func (s *departmentService) ensureUnique(ctx context.Context, self uuid.UUID, code, name string) error {
	if existing, err := s.departments.FindByCode(ctx, code); err == nil && existing.ID != self {
		return apperr.Conflict("department code %s already exists", code)
	} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	if existing, err := s.departments.FindByName(ctx, name); err == nil && existing.ID != self {
		return apperr.Conflict("department name %s already exists", name)
	} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	return nil
}

func (s *departmentService) resolveType(ctx context.Context, raw *string) (*uuid.UUID, error) {
	id, err := parseOptionalID(raw, "department type")
	if err != nil || id == nil {
		return nil, err
	}
	if _, err := s.types.FindByID(ctx, *id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.Validation("department type %s does not exist", id)
		}
		return nil, err
	}
	return id, nil
}

func (s *departmentService) Create(ctx context.Context, actor access.Actor, dto CreateDepartmentDTO) (*DepartmentResponse, error) {
	code := strings.TrimSpace(dto.Code)
	name := strings.TrimSpace(dto.Name)
	if code == "" || name == "" {
		return nil, apperr.Validation("code and name are required")
	}

	var dept *model.Department
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.ensureUnique(txCtx, uuid.Nil, code, name); err != nil {
			return err
		}

		parentID, err := parseOptionalID(dto.ParentID, "parent department")
		if err != nil {
			return err
		}
		if parentID != nil {
			if _, err := s.departments.FindByID(txCtx, *parentID); err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return apperr.Validation("parent department %s does not exist", parentID)
				}
				return err
			}
		}
		typeID, err := s.resolveType(txCtx, dto.TypeID)
		if err != nil {
			return err
		}

		dept = &model.Department{
			Code:         code,
			Sigla:        strings.TrimSpace(dto.Sigla),
			Name:         name,
			ParentID:     parentID,
			TypeID:       typeID,
			Commander:    dto.Commander,
			Phone:        dto.Phone,
			Address:      dto.Address,
			City:         dto.City,
			State:        dto.State,
			ZipCode:      dto.ZipCode,
			Country:      dto.Country,
			AnnualBudget: dto.AnnualBudget,
			IsActive:     true,
		}
		if err := s.departments.Create(txCtx, dept); err != nil {
			return fmt.Errorf("failed to create department: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.audit.Record(ctx, actor.ID, model.ActionCreateDepartment, dept.ID.String(), dept.Name, dto)
	return s.Get(ctx, dept.ID)
}

func (s *departmentService) Update(ctx context.Context, actor access.Actor, id uuid.UUID, dto UpdateDepartmentDTO) (*DepartmentResponse, error) {
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		dept, err := s.departments.FindByID(txCtx, id)
		if err != nil {
			return lookupErr(err, "department")
		}

		code, name := dept.Code, dept.Name
		if dto.Code != nil {
			code = strings.TrimSpace(*dto.Code)
		}
		if dto.Name != nil {
			name = strings.TrimSpace(*dto.Name)
		}
		if code == "" || name == "" {
			return apperr.Validation("code and name cannot be empty")
		}
		if code != dept.Code || name != dept.Name {
			if err := s.ensureUnique(txCtx, dept.ID, code, name); err != nil {
				return err
			}
		}
		dept.Code, dept.Name = code, name

		if dto.ParentID != nil {
			parentID, err := parseOptionalID(dto.ParentID, "parent department")
			if err != nil {
				return err
			}
			if parentID != nil {
				if _, err := s.departments.FindByID(txCtx, *parentID); err != nil {
					if errors.Is(err, gorm.ErrRecordNotFound) {
						return apperr.Validation("parent department %s does not exist", parentID)
					}
					return err
				}
				// Re-read the whole hierarchy on every edit; concurrent edits
				// may have changed it since any earlier check.
				tree, err := s.departments.Tree(txCtx)
				if err != nil {
					return fmt.Errorf("failed to load department hierarchy: %w", err)
				}
				if tree.WouldCycle(dept.ID, *parentID) {
					return apperr.Conflict("cannot set parent: the department hierarchy would form a loop")
				}
			}
			dept.ParentID = parentID
		}
		if dto.TypeID != nil {
			typeID, err := s.resolveType(txCtx, dto.TypeID)
			if err != nil {
				return err
			}
			dept.TypeID = typeID
		}

		if dto.Sigla != nil {
			dept.Sigla = strings.TrimSpace(*dto.Sigla)
		}
		if dto.Commander != nil {
			dept.Commander = *dto.Commander
		}
		if dto.Phone != nil {
			dept.Phone = *dto.Phone
		}
		if dto.Address != nil {
			dept.Address = *dto.Address
		}
		if dto.City != nil {
			dept.City = *dto.City
		}
		if dto.State != nil {
			dept.State = *dto.State
		}
		if dto.ZipCode != nil {
			dept.ZipCode = *dto.ZipCode
		}
		if dto.Country != nil {
			dept.Country = *dto.Country
		}
		if dto.AnnualBudget != nil {
			dept.AnnualBudget = dto.AnnualBudget
		}
		if dto.IsActive != nil {
			if dept.IsActive && !*dto.IsActive {
				if err := s.ensureNoDependents(txCtx, dept); err != nil {
					return err
				}
			}
			dept.IsActive = *dto.IsActive
		}

		if err := s.departments.Update(txCtx, dept); err != nil {
			return fmt.Errorf("failed to update department: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.audit.Record(ctx, actor.ID, model.ActionUpdateDepartment, id.String(), "", dto)
	return s.Get(ctx, id)
}

func (s *departmentService) Delete(ctx context.Context, actor access.Actor, id uuid.UUID) error {
	var name string
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		dept, err := s.departments.FindByID(txCtx, id)
		if err != nil {
			return lookupErr(err, "department")
		}

		if err := s.ensureNoDependents(txCtx, dept); err != nil {
			return err
		}

		name = dept.Name
		dept.IsActive = false
		return s.departments.Update(txCtx, dept)
	})
	if err != nil {
		return err
	}

	s.audit.Record(ctx, actor.ID, model.ActionDeleteDepartment, id.String(), name, nil)
	return nil
}

// ensureNoDependents refuses to deactivate a department that still has
// active users, requests or active children.
func (s *departmentService) ensureNoDependents(ctx context.Context, dept *model.Department) error {
	counts, err := s.departments.Counts(ctx, dept.ID)
	if err != nil {
		return fmt.Errorf("failed to count department dependents: %w", err)
	}
	if counts.Users > 0 || counts.Requests > 0 || counts.Children > 0 {
		return apperr.Conflict(
			"cannot deactivate department %s: it has %d active users, %d requests and %d active sub-departments",
			dept.Code, counts.Users, counts.Requests, counts.Children)
	}
	return nil
}

// Import creates departments in two passes: every valid row is inserted
// without a parent first, then parent codes are resolved against the batch
// and the database. Child rows may therefore precede their parents.
// Row numbers count the header as line 1.
func (s *departmentService) Import(ctx context.Context, actor access.Actor, rows []DepartmentImportRow) (*ImportResult, error) {
	result := &ImportResult{
		Total:    len(rows),
		Errors:   []ImportError{},
		Warnings: []ImportWarning{},
	}

	type pending struct {
		row  int
		data DepartmentImportRow
		id   uuid.UUID
	}
	var created []pending

	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		seenCodes := make(map[string]bool, len(rows))
		seenNames := make(map[string]bool, len(rows))
		typeCache := make(map[string]*uuid.UUID)

		// Pass 1: nodes.
		for i, raw := range rows {
			line := i + 2
			row := trimImportRow(raw)
			fail := func(format string, args ...any) {
				result.Errors = append(result.Errors, ImportError{Row: line, Data: row, Error: fmt.Sprintf(format, args...)})
			}

			if row.Code == "" || row.Name == "" {
				fail("code and name are required")
				continue
			}
			if seenCodes[row.Code] {
				fail("duplicate code %s in file", row.Code)
				continue
			}
			if seenNames[row.Name] {
				fail("duplicate name %s in file", row.Name)
				continue
			}
			seenCodes[row.Code] = true
			seenNames[row.Name] = true

			if err := s.ensureUnique(txCtx, uuid.Nil, row.Code, row.Name); err != nil {
				if apperr.Is(err, apperr.KindConflict) {
					fail("%s", err.Error())
					continue
				}
				return err
			}

			var typeID *uuid.UUID
			if row.TypeCode != "" {
				id, ok := typeCache[row.TypeCode]
				if !ok {
					t, err := s.types.FindByCode(txCtx, row.TypeCode)
					switch {
					case err == nil:
						id = &t.ID
					case errors.Is(err, gorm.ErrRecordNotFound):
						id = nil
					default:
						return err
					}
					typeCache[row.TypeCode] = id
				}
				if id == nil {
					result.Warnings = append(result.Warnings, ImportWarning{Row: line, Data: row,
						Warning: fmt.Sprintf("department type %s not found; imported without type", row.TypeCode)})
				}
				typeID = id
			}

			dept := &model.Department{
				Code:      row.Code,
				Sigla:     row.Sigla,
				Name:      row.Name,
				TypeID:    typeID,
				Commander: row.Commander,
				Phone:     row.Phone,
				Address:   row.Address,
				City:      row.City,
				State:     row.State,
				ZipCode:   row.ZipCode,
				Country:   row.Country,
				IsActive:  true,
			}
			if err := s.departments.Create(txCtx, dept); err != nil {
				return fmt.Errorf("row %d: failed to create department: %w", line, err)
			}
			created = append(created, pending{row: line, data: row, id: dept.ID})
		}

		// Pass 2: parent links.
		tree, err := s.departments.Tree(txCtx)
		if err != nil {
			return fmt.Errorf("failed to load department hierarchy: %w", err)
		}
		byCode := make(map[string]uuid.UUID, len(created))
		for _, p := range created {
			byCode[p.data.Code] = p.id
		}

		for _, p := range created {
			if p.data.ParentCode == "" {
				continue
			}
			warn := func(format string, args ...any) {
				result.Warnings = append(result.Warnings, ImportWarning{Row: p.row, Data: p.data, Warning: fmt.Sprintf(format, args...)})
			}

			parentID, ok := byCode[p.data.ParentCode]
			if !ok {
				parent, err := s.departments.FindByCode(txCtx, p.data.ParentCode)
				if errors.Is(err, gorm.ErrRecordNotFound) {
					warn("parent department %s not found; imported without parent", p.data.ParentCode)
					continue
				}
				if err != nil {
					return err
				}
				parentID = parent.ID
			}

			if tree.WouldCycle(p.id, parentID) {
				warn("parent department %s would form a loop; imported without parent", p.data.ParentCode)
				continue
			}
			if err := s.departments.SetParent(txCtx, p.id, &parentID); err != nil {
				return fmt.Errorf("row %d: failed to link parent: %w", p.row, err)
			}
			tree.SetParent(p.id, &parentID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	result.Imported = len(created)
	result.Skipped = len(result.Errors)
	result.Success = result.Skipped == 0

	s.audit.Record(ctx, actor.ID, model.ActionImportDepartments, "", "", map[string]any{
		"total":    result.Total,
		"imported": result.Imported,
		"skipped":  result.Skipped,
	})
	return result, nil
}

func trimImportRow(r DepartmentImportRow) DepartmentImportRow {
	r.Code = strings.TrimSpace(r.Code)
	r.Sigla = strings.TrimSpace(r.Sigla)
	r.Name = strings.TrimSpace(r.Name)
	r.ParentCode = strings.TrimSpace(r.ParentCode)
	r.TypeCode = strings.TrimSpace(r.TypeCode)
	return r
}
