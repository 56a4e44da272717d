package service

import (
	"context"
	"fmt"
	"strings"

	"acqplan/internal/apperr"
	"acqplan/internal/model"
	"acqplan/internal/repository"

	"github.com/google/uuid"
)

// LookupDTO covers the name-only reference tables.
type LookupDTO struct {
	Name       string  `json:"name" binding:"required,max=255"`
	ItemTypeID *string `json:"item_type_id"` // categories only
	IsActive   *bool   `json:"is_active"`
}

type ItemDTO struct {
	Name           string  `json:"name" binding:"required,max=255"`
	Description    string  `json:"description"`
	ItemTypeID     *string `json:"item_type_id"`
	ItemCategoryID *string `json:"item_category_id"`
	IsActive       *bool   `json:"is_active"`
}

type ItemExclusionDTO struct {
	Name   string `json:"name" binding:"required,max=255"`
	Reason string `json:"reason"`
}

type ItemSearchQuery struct {
	Search         string `form:"search"`
	ItemTypeID     string `form:"itemTypeId"`
	ItemCategoryID string `form:"itemCategoryId"`
	ActiveOnly     bool   `form:"activeOnly"`
}

type ExclusionWarning struct {
	Name   string `json:"name"`
	Reason string `json:"reason"`
}

// ItemSearchResult lists matching items and the exclusions the query hits.
// Warnings are informational; they never remove items from the result.
type ItemSearchResult struct {
	Data     []model.Item       `json:"data"`
	Total    int64              `json:"total"`
	Page     int                `json:"page"`
	Limit    int                `json:"limit"`
	Warnings []ExclusionWarning `json:"warnings"`
}

type CatalogService interface {
	ListItemTypes(ctx context.Context, search string, activeOnly bool) ([]model.ItemType, error)
	CreateItemType(ctx context.Context, dto LookupDTO) (*model.ItemType, error)
	UpdateItemType(ctx context.Context, id uuid.UUID, dto LookupDTO) (*model.ItemType, error)

	ListItemCategories(ctx context.Context, search string, activeOnly bool) ([]model.ItemCategory, error)
	CreateItemCategory(ctx context.Context, dto LookupDTO) (*model.ItemCategory, error)
	UpdateItemCategory(ctx context.Context, id uuid.UUID, dto LookupDTO) (*model.ItemCategory, error)

	ListContractTypes(ctx context.Context, search string, activeOnly bool) ([]model.ContractType, error)
	CreateContractType(ctx context.Context, dto LookupDTO) (*model.ContractType, error)
	UpdateContractType(ctx context.Context, id uuid.UUID, dto LookupDTO) (*model.ContractType, error)

	ListAcquisitionTypes(ctx context.Context, search string, activeOnly bool) ([]model.AcquisitionTypeMaster, error)
	CreateAcquisitionType(ctx context.Context, dto LookupDTO) (*model.AcquisitionTypeMaster, error)
	UpdateAcquisitionType(ctx context.Context, id uuid.UUID, dto LookupDTO) (*model.AcquisitionTypeMaster, error)

	SearchItems(ctx context.Context, q ItemSearchQuery, page, limit int) (*ItemSearchResult, error)
	GetItem(ctx context.Context, id uuid.UUID) (*model.Item, error)
	CreateItem(ctx context.Context, dto ItemDTO) (*model.Item, error)
	UpdateItem(ctx context.Context, id uuid.UUID, dto ItemDTO) (*model.Item, error)

	ListExclusions(ctx context.Context) ([]model.ItemExclusion, error)
	CreateExclusion(ctx context.Context, dto ItemExclusionDTO) (*model.ItemExclusion, error)
}

type catalogService struct {
	itemTypes        repository.LookupRepository[model.ItemType]
	itemCategories   repository.LookupRepository[model.ItemCategory]
	contractTypes    repository.LookupRepository[model.ContractType]
	acquisitionTypes repository.LookupRepository[model.AcquisitionTypeMaster]
	items            repository.ItemRepository
}

func NewCatalogService(
	itemTypes repository.LookupRepository[model.ItemType],
	itemCategories repository.LookupRepository[model.ItemCategory],
	contractTypes repository.LookupRepository[model.ContractType],
	acquisitionTypes repository.LookupRepository[model.AcquisitionTypeMaster],
	items repository.ItemRepository,
) CatalogService {
	return &catalogService{
		itemTypes:        itemTypes,
		itemCategories:   itemCategories,
		contractTypes:    contractTypes,
		acquisitionTypes: acquisitionTypes,
		items:            items,
	}
}

func lookupName(dto LookupDTO) (string, error) {
	name := strings.TrimSpace(dto.Name)
	if name == "" {
		return "", apperr.Validation("name is required")
	}
	return name, nil
}

func activeOr(v *bool, fallback bool) bool {
	if v == nil {
		return fallback
	}
	return *v
}

// --- item types ---

func (s *catalogService) ListItemTypes(ctx context.Context, search string, activeOnly bool) ([]model.ItemType, error) {
	return s.itemTypes.List(ctx, search, activeOnly)
}

func (s *catalogService) CreateItemType(ctx context.Context, dto LookupDTO) (*model.ItemType, error) {
	name, err := lookupName(dto)
	if err != nil {
		return nil, err
	}
	v := &model.ItemType{Name: name, IsActive: true}
	if err := s.itemTypes.Create(ctx, v); err != nil {
		return nil, fmt.Errorf("failed to create item type: %w", err)
	}
	return v, nil
}

func (s *catalogService) UpdateItemType(ctx context.Context, id uuid.UUID, dto LookupDTO) (*model.ItemType, error) {
	name, err := lookupName(dto)
	if err != nil {
		return nil, err
	}
	v, err := s.itemTypes.FindByID(ctx, id)
	if err != nil {
		return nil, lookupErr(err, "item type")
	}
	v.Name = name
	v.IsActive = activeOr(dto.IsActive, v.IsActive)
	if err := s.itemTypes.Update(ctx, v); err != nil {
		return nil, fmt.Errorf("failed to update item type: %w", err)
	}
	return v, nil
}

// --- item categories ---

func (s *catalogService) ListItemCategories(ctx context.Context, search string, activeOnly bool) ([]model.ItemCategory, error) {
	return s.itemCategories.List(ctx, search, activeOnly)
}

func (s *catalogService) resolveItemType(ctx context.Context, raw *string) (*uuid.UUID, error) {
	id, err := parseOptionalID(raw, "item type")
	if err != nil || id == nil {
		return nil, err
	}
	if _, err := s.itemTypes.FindByID(ctx, *id); err != nil {
		return nil, lookupErr(err, "item type")
	}
	return id, nil
}

func (s *catalogService) CreateItemCategory(ctx context.Context, dto LookupDTO) (*model.ItemCategory, error) {
	name, err := lookupName(dto)
	if err != nil {
		return nil, err
	}
	typeID, err := s.resolveItemType(ctx, dto.ItemTypeID)
	if err != nil {
		return nil, err
	}
	v := &model.ItemCategory{Name: name, ItemTypeID: typeID, IsActive: true}
	if err := s.itemCategories.Create(ctx, v); err != nil {
		return nil, fmt.Errorf("failed to create item category: %w", err)
	}
	return v, nil
}

func (s *catalogService) UpdateItemCategory(ctx context.Context, id uuid.UUID, dto LookupDTO) (*model.ItemCategory, error) {
	name, err := lookupName(dto)
	if err != nil {
		return nil, err
	}
	v, err := s.itemCategories.FindByID(ctx, id)
	if err != nil {
		return nil, lookupErr(err, "item category")
	}
	if dto.ItemTypeID != nil {
		if v.ItemTypeID, err = s.resolveItemType(ctx, dto.ItemTypeID); err != nil {
			return nil, err
		}
	}
	v.Name = name
	v.IsActive = activeOr(dto.IsActive, v.IsActive)
	if err := s.itemCategories.Update(ctx, v); err != nil {
		return nil, fmt.Errorf("failed to update item category: %w", err)
	}
	return v, nil
}

// --- contract types ---

func (s *catalogService) ListContractTypes(ctx context.Context, search string, activeOnly bool) ([]model.ContractType, error) {
	return s.contractTypes.List(ctx, search, activeOnly)
}

func (s *catalogService) CreateContractType(ctx context.Context, dto LookupDTO) (*model.ContractType, error) {
	name, err := lookupName(dto)
	if err != nil {
		return nil, err
	}
	v := &model.ContractType{Name: name, IsActive: true}
	if err := s.contractTypes.Create(ctx, v); err != nil {
		return nil, fmt.Errorf("failed to create contract type: %w", err)
	}
	return v, nil
}

func (s *catalogService) UpdateContractType(ctx context.Context, id uuid.UUID, dto LookupDTO) (*model.ContractType, error) {
	name, err := lookupName(dto)
	if err != nil {
		return nil, err
	}
	v, err := s.contractTypes.FindByID(ctx, id)
	if err != nil {
		return nil, lookupErr(err, "contract type")
	}
	v.Name = name
	v.IsActive = activeOr(dto.IsActive, v.IsActive)
	if err := s.contractTypes.Update(ctx, v); err != nil {
		return nil, fmt.Errorf("failed to update contract type: %w", err)
	}
	return v, nil
}

// --- acquisition types ---

func (s *catalogService) ListAcquisitionTypes(ctx context.Context, search string, activeOnly bool) ([]model.AcquisitionTypeMaster, error) {
	return s.acquisitionTypes.List(ctx, search, activeOnly)
}

func (s *catalogService) CreateAcquisitionType(ctx context.Context, dto LookupDTO) (*model.AcquisitionTypeMaster, error) {
	name, err := lookupName(dto)
	if err != nil {
		return nil, err
	}
	v := &model.AcquisitionTypeMaster{Name: name, IsActive: true}
	if err := s.acquisitionTypes.Create(ctx, v); err != nil {
		return nil, fmt.Errorf("failed to create acquisition type: %w", err)
	}
	return v, nil
}

func (s *catalogService) UpdateAcquisitionType(ctx context.Context, id uuid.UUID, dto LookupDTO) (*model.AcquisitionTypeMaster, error) {
	name, err := lookupName(dto)
	if err != nil {
		return nil, err
	}
	v, err := s.acquisitionTypes.FindByID(ctx, id)
	if err != nil {
		return nil, lookupErr(err, "acquisition type")
	}
	v.Name = name
	v.IsActive = activeOr(dto.IsActive, v.IsActive)
	if err := s.acquisitionTypes.Update(ctx, v); err != nil {
		return nil, fmt.Errorf("failed to update acquisition type: %w", err)
	}
	return v, nil
}

// --- items ---

func (s *catalogService) SearchItems(ctx context.Context, q ItemSearchQuery, page, limit int) (*ItemSearchResult, error) {
	var (
		filter repository.ItemFilter
		err    error
	)
	filter.Search = strings.TrimSpace(q.Search)
	filter.ActiveOnly = q.ActiveOnly
	if filter.ItemTypeID, err = parseOptionalID(&q.ItemTypeID, "item type"); err != nil {
		return nil, err
	}
	if filter.ItemCategoryID, err = parseOptionalID(&q.ItemCategoryID, "item category"); err != nil {
		return nil, err
	}

	page, limit = normalizePage(page, limit)
	items, total, err := s.items.Search(ctx, filter, page, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to search items: %w", err)
	}

	exclusions, err := s.items.MatchingExclusions(ctx, filter.Search)
	if err != nil {
		return nil, fmt.Errorf("failed to check item exclusions: %w", err)
	}
	warnings := make([]ExclusionWarning, 0, len(exclusions))
	for _, ex := range exclusions {
		warnings = append(warnings, ExclusionWarning{Name: ex.Name, Reason: ex.Reason})
	}

	return &ItemSearchResult{Data: items, Total: total, Page: page, Limit: limit, Warnings: warnings}, nil
}

func (s *catalogService) GetItem(ctx context.Context, id uuid.UUID) (*model.Item, error) {
	item, err := s.items.FindByID(ctx, id)
	if err != nil {
		return nil, lookupErr(err, "item")
	}
	return item, nil
}

func (s *catalogService) applyItem(ctx context.Context, item *model.Item, dto ItemDTO) error {
	name := strings.TrimSpace(dto.Name)
	if name == "" {
		return apperr.Validation("name is required")
	}
	typeID, err := s.resolveItemType(ctx, dto.ItemTypeID)
	if err != nil {
		return err
	}
	categoryID, err := parseOptionalID(dto.ItemCategoryID, "item category")
	if err != nil {
		return err
	}
	if categoryID != nil {
		if _, err := s.itemCategories.FindByID(ctx, *categoryID); err != nil {
			return lookupErr(err, "item category")
		}
	}

	item.Name = name
	item.Description = dto.Description
	item.ItemTypeID = typeID
	item.ItemCategoryID = categoryID
	item.IsActive = activeOr(dto.IsActive, item.IsActive)
	return nil
}

func (s *catalogService) CreateItem(ctx context.Context, dto ItemDTO) (*model.Item, error) {
	item := &model.Item{IsActive: true}
	if err := s.applyItem(ctx, item, dto); err != nil {
		return nil, err
	}
	if err := s.items.Create(ctx, item); err != nil {
		return nil, fmt.Errorf("failed to create item: %w", err)
	}
	return s.GetItem(ctx, item.ID)
}

func (s *catalogService) UpdateItem(ctx context.Context, id uuid.UUID, dto ItemDTO) (*model.Item, error) {
	item, err := s.items.FindByID(ctx, id)
	if err != nil {
		return nil, lookupErr(err, "item")
	}
	item.ItemType, item.ItemCategory = nil, nil
	if err := s.applyItem(ctx, item, dto); err != nil {
		return nil, err
	}
	if err := s.items.Update(ctx, item); err != nil {
		return nil, fmt.Errorf("failed to update item: %w", err)
	}
	return s.GetItem(ctx, id)
}

func (s *catalogService) ListExclusions(ctx context.Context) ([]model.ItemExclusion, error) {
	return s.items.ListExclusions(ctx)
}

func (s *catalogService) CreateExclusion(ctx context.Context, dto ItemExclusionDTO) (*model.ItemExclusion, error) {
	name := strings.TrimSpace(dto.Name)
	if name == "" {
		return nil, apperr.Validation("name is required")
	}
	ex := &model.ItemExclusion{Name: name, Reason: dto.Reason, IsActive: true}
	if err := s.items.CreateExclusion(ctx, ex); err != nil {
		return nil, fmt.Errorf("failed to create item exclusion: %w", err)
	}
	return ex, nil
}
