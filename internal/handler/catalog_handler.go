package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"acqplan/internal/middleware"
	"acqplan/internal/model"
	"acqplan/internal/service"
	"acqplan/internal/workflow"
)

type CatalogHandler struct {
	catalogService service.CatalogService
}

func NewCatalogHandler(catalogService service.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalogService: catalogService}
}

// lookup bundles the list/create/update operations of one reference table.
type lookup[T any] struct {
	entity string
	list   func(ctx context.Context, search string, activeOnly bool) ([]T, error)
	create func(ctx context.Context, dto service.LookupDTO) (*T, error)
	update func(ctx context.Context, id uuid.UUID, dto service.LookupDTO) (*T, error)
}

func registerLookup[T any](group *gin.RouterGroup, path string, l lookup[T]) {
	admin := middleware.RequireRole(workflow.RoleAdmin)
	g := group.Group(path)
	g.GET("", func(c *gin.Context) {
		rows, err := l.list(c.Request.Context(), c.Query("search"), queryBool(c, "activeOnly"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, rows)
	})
	g.POST("", admin, func(c *gin.Context) {
		var dto service.LookupDTO
		if !bindJSON(c, &dto) {
			return
		}
		row, err := l.create(c.Request.Context(), dto)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, row)
	})
	g.PUT("/:id", admin, func(c *gin.Context) {
		id, ok := pathID(c, l.entity)
		if !ok {
			return
		}
		var dto service.LookupDTO
		if !bindJSON(c, &dto) {
			return
		}
		row, err := l.update(c.Request.Context(), id, dto)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, row)
	})
}

func (h *CatalogHandler) RegisterRoutes(router *gin.RouterGroup) {
	s := h.catalogService
	catalog := router.Group("/catalog")

	registerLookup(catalog, "/item-types", lookup[model.ItemType]{
		entity: "item type", list: s.ListItemTypes, create: s.CreateItemType, update: s.UpdateItemType,
	})
	registerLookup(catalog, "/item-categories", lookup[model.ItemCategory]{
		entity: "item category", list: s.ListItemCategories, create: s.CreateItemCategory, update: s.UpdateItemCategory,
	})
	registerLookup(catalog, "/contract-types", lookup[model.ContractType]{
		entity: "contract type", list: s.ListContractTypes, create: s.CreateContractType, update: s.UpdateContractType,
	})
	registerLookup(catalog, "/acquisition-types", lookup[model.AcquisitionTypeMaster]{
		entity: "acquisition type", list: s.ListAcquisitionTypes, create: s.CreateAcquisitionType, update: s.UpdateAcquisitionType,
	})

	admin := middleware.RequireRole(workflow.RoleAdmin)
	items := catalog.Group("/items")
	{
		items.GET("", h.SearchItems)
		items.GET("/:id", h.GetItem)
		items.POST("", admin, h.CreateItem)
		items.PUT("/:id", admin, h.UpdateItem)
	}
	exclusions := catalog.Group("/exclusions")
	{
		exclusions.GET("", h.ListExclusions)
		exclusions.POST("", admin, h.CreateExclusion)
	}
}

// SearchItems
// @Summary      Search catalog items
// @Description  Matching items plus informational warnings for excluded items whose name matches the search.
// @Tags         catalog
// @Produce      json
// @Security     BearerAuth
// @Param        search          query  string  false  "Name fragment"
// @Param        itemTypeId      query  string  false  "Item type id"
// @Param        itemCategoryId  query  string  false  "Item category id"
// @Param        activeOnly      query  bool    false  "Only active items"
// @Param        page            query  int     false  "Page number (default 1)"
// @Param        limit           query  int     false  "Page size (default 20)"
// @Success      200  {object}  service.ItemSearchResult
// @Router       /api/catalog/items [get]
func (h *CatalogHandler) SearchItems(c *gin.Context) {
	var q service.ItemSearchQuery
	if !bindQuery(c, &q) {
		return
	}
	p := page(c)
	result, err := h.catalogService.SearchItems(c.Request.Context(), q, p.Page, p.Limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *CatalogHandler) GetItem(c *gin.Context) {
	id, ok := pathID(c, "item")
	if !ok {
		return
	}
	item, err := h.catalogService.GetItem(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

// @Summary      Create catalog item
// @Tags         catalog
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.ItemDTO  true  "Item"
// @Success      201      {object}  model.Item
// @Failure      400      {object}  response.ErrorBody
// @Router       /api/catalog/items [post]
func (h *CatalogHandler) CreateItem(c *gin.Context) {
	var dto service.ItemDTO
	if !bindJSON(c, &dto) {
		return
	}
	item, err := h.catalogService.CreateItem(c.Request.Context(), dto)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, item)
}

func (h *CatalogHandler) UpdateItem(c *gin.Context) {
	id, ok := pathID(c, "item")
	if !ok {
		return
	}
	var dto service.ItemDTO
	if !bindJSON(c, &dto) {
		return
	}
	item, err := h.catalogService.UpdateItem(c.Request.Context(), id, dto)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

func (h *CatalogHandler) ListExclusions(c *gin.Context) {
	rows, err := h.catalogService.ListExclusions(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rows)
}

// @Summary      Register an excluded item
// @Tags         catalog
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.ItemExclusionDTO  true  "Exclusion"
// @Success      201      {object}  model.ItemExclusion
// @Failure      400      {object}  response.ErrorBody
// @Router       /api/catalog/exclusions [post]
func (h *CatalogHandler) CreateExclusion(c *gin.Context) {
	var dto service.ItemExclusionDTO
	if !bindJSON(c, &dto) {
		return
	}
	row, err := h.catalogService.CreateExclusion(c.Request.Context(), dto)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, row)
}
