package repository

import (
	"context"

	"acqplan/internal/model"
	"acqplan/pkg/pagination"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// LookupRepository serves the small named reference tables (item types,
// categories, contract types, acquisition types).
type LookupRepository[T any] interface {
	Create(ctx context.Context, v *T) error
	Update(ctx context.Context, v *T) error
	FindByID(ctx context.Context, id uuid.UUID) (*T, error)
	List(ctx context.Context, search string, activeOnly bool) ([]T, error)
}

type lookupRepository[T any] struct {
	db *gorm.DB
}

func NewLookupRepository[T any](db *gorm.DB) LookupRepository[T] {
	return &lookupRepository[T]{db: db}
}

func (r *lookupRepository[T]) Create(ctx context.Context, v *T) error {
	return GetDB(ctx, r.db).Create(v).Error
}

func (r *lookupRepository[T]) Update(ctx context.Context, v *T) error {
	return GetDB(ctx, r.db).Save(v).Error
}

func (r *lookupRepository[T]) FindByID(ctx context.Context, id uuid.UUID) (*T, error) {
	var v T
	if err := GetDB(ctx, r.db).First(&v, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &v, nil
}

func (r *lookupRepository[T]) List(ctx context.Context, search string, activeOnly bool) ([]T, error) {
	var out []T
	query := GetDB(ctx, r.db).Model(new(T))
	if search != "" {
		query = query.Where("LOWER(name) LIKE LOWER(?)", "%"+search+"%")
	}
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}
	if err := query.Order("name ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// ItemFilter narrows a catalog item search.
type ItemFilter struct {
	Search         string
	ItemTypeID     *uuid.UUID
	ItemCategoryID *uuid.UUID
	ActiveOnly     bool
}

type ItemRepository interface {
	Create(ctx context.Context, item *model.Item) error
	Update(ctx context.Context, item *model.Item) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Item, error)
	Search(ctx context.Context, filter ItemFilter, page, limit int) ([]model.Item, int64, error)
	// MatchingExclusions returns active exclusions whose name occurs in
	// query or contains it.
	MatchingExclusions(ctx context.Context, query string) ([]model.ItemExclusion, error)
	CreateExclusion(ctx context.Context, ex *model.ItemExclusion) error
	ListExclusions(ctx context.Context) ([]model.ItemExclusion, error)
}

type itemRepository struct {
	db *gorm.DB
}

func NewItemRepository(db *gorm.DB) ItemRepository {
	return &itemRepository{db: db}
}

func (r *itemRepository) Create(ctx context.Context, item *model.Item) error {
	return GetDB(ctx, r.db).Omit("ItemType", "ItemCategory").Create(item).Error
}

func (r *itemRepository) Update(ctx context.Context, item *model.Item) error {
	return GetDB(ctx, r.db).Omit("ItemType", "ItemCategory").Save(item).Error
}

func (r *itemRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Item, error) {
	var item model.Item
	if err := GetDB(ctx, r.db).Preload("ItemType").Preload("ItemCategory").First(&item, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *itemRepository) Search(ctx context.Context, filter ItemFilter, page, limit int) ([]model.Item, int64, error) {
	var items []model.Item
	var total int64

	query := GetDB(ctx, r.db).Model(&model.Item{})
	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		query = query.Where("LOWER(name) LIKE LOWER(?) OR LOWER(description) LIKE LOWER(?)", like, like)
	}
	if filter.ItemTypeID != nil {
		query = query.Where("item_type_id = ?", *filter.ItemTypeID)
	}
	if filter.ItemCategoryID != nil {
		query = query.Where("item_category_id = ?", *filter.ItemCategoryID)
	}
	if filter.ActiveOnly {
		query = query.Where("is_active = ?", true)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if err := query.Preload("ItemType").Preload("ItemCategory").Order("name ASC").
		Scopes(pagination.Scope(page, limit)).Find(&items).Error; err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *itemRepository) MatchingExclusions(ctx context.Context, query string) ([]model.ItemExclusion, error) {
	var out []model.ItemExclusion
	if query == "" {
		return out, nil
	}
	if err := GetDB(ctx, r.db).
		Where("is_active = ?", true).
		Where("LOWER(name) LIKE LOWER(?) OR LOWER(?) LIKE '%' || LOWER(name) || '%'", "%"+query+"%", query).
		Order("name ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *itemRepository) CreateExclusion(ctx context.Context, ex *model.ItemExclusion) error {
	return GetDB(ctx, r.db).Create(ex).Error
}

func (r *itemRepository) ListExclusions(ctx context.Context) ([]model.ItemExclusion, error) {
	var out []model.ItemExclusion
	if err := GetDB(ctx, r.db).Order("name ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
