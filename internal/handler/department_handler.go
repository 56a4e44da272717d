package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"acqplan/internal/middleware"
	"acqplan/internal/service"
	"acqplan/internal/workflow"
	"acqplan/pkg/response"
)

type DepartmentHandler struct {
	departmentService service.DepartmentService
	typeService       service.DepartmentTypeService
}

func NewDepartmentHandler(departmentService service.DepartmentService, typeService service.DepartmentTypeService) *DepartmentHandler {
	return &DepartmentHandler{departmentService: departmentService, typeService: typeService}
}

func (h *DepartmentHandler) RegisterRoutes(router *gin.RouterGroup) {
	admin := middleware.RequireRole(workflow.RoleAdmin)

	departments := router.Group("/departments")
	{
		departments.GET("", h.List)
		departments.GET("/:id", h.Get)
		departments.POST("", admin, h.Create)
		departments.POST("/import", admin, h.Import)
		departments.PUT("/:id", admin, h.Update)
		departments.DELETE("/:id", admin, h.Delete)
	}

	types := router.Group("/department-types")
	{
		types.GET("", h.ListTypes)
		types.POST("", admin, h.CreateType)
		types.PUT("/:id", admin, h.UpdateType)
		types.DELETE("/:id", admin, h.DeleteType)
	}
}

// @Summary      List departments
// @Tags         departments
// @Produce      json
// @Security     BearerAuth
// @Param        search    query  string  false  "Code, sigla or name"
// @Param        isActive  query  string  false  "true or false"
// @Param        typeId    query  string  false  "Department type id"
// @Param        parentId  query  string  false  "Parent department id"
// @Param        page      query  int     false  "Page number (default 1)"
// @Param        limit     query  int     false  "Page size (default 20)"
// @Success      200  {object}  response.List{data=[]service.DepartmentResponse}
// @Router       /api/departments [get]
func (h *DepartmentHandler) List(c *gin.Context) {
	var q service.DepartmentListQuery
	if !bindQuery(c, &q) {
		return
	}
	p := page(c)
	depts, total, err := h.departmentService.List(c.Request.Context(), q, p.Page, p.Limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Page(depts, total, p.Page, p.Limit))
}

// Get returns the department with its parent, active children and the
// _count of active users, requests and active children.
// @Summary      Get department
// @Tags         departments
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Department ID"
// @Success      200  {object}  service.DepartmentResponse
// @Failure      404  {object}  response.ErrorBody
// @Router       /api/departments/{id} [get]
func (h *DepartmentHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "department")
	if !ok {
		return
	}
	dept, err := h.departmentService.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dept)
}

// @Summary      Create department
// @Tags         departments
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.CreateDepartmentDTO  true  "Department"
// @Success      201      {object}  service.DepartmentResponse
// @Failure      400      {object}  response.ErrorBody
// @Failure      409      {object}  response.ErrorBody
// @Router       /api/departments [post]
func (h *DepartmentHandler) Create(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	var dto service.CreateDepartmentDTO
	if !bindJSON(c, &dto) {
		return
	}
	dept, err := h.departmentService.Create(c.Request.Context(), a, dto)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dept)
}

// @Summary      Update department
// @Description  Partial update. Setting a parent that would close a loop in the hierarchy answers 409.
// @Tags         departments
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                       true  "Department ID"
// @Param        payload  body      service.UpdateDepartmentDTO  true  "Fields to change"
// @Success      200      {object}  service.DepartmentResponse
// @Failure      409      {object}  response.ErrorBody
// @Router       /api/departments/{id} [put]
func (h *DepartmentHandler) Update(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "department")
	if !ok {
		return
	}
	var dto service.UpdateDepartmentDTO
	if !bindJSON(c, &dto) {
		return
	}
	dept, err := h.departmentService.Update(c.Request.Context(), a, id, dto)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dept)
}

// @Summary      Deactivate department
// @Tags         departments
// @Security     BearerAuth
// @Param        id   path      string  true  "Department ID"
// @Success      200  {object}  response.Message
// @Failure      409  {object}  response.ErrorBody  "Department still has users, requests or active children"
// @Router       /api/departments/{id} [delete]
func (h *DepartmentHandler) Delete(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "department")
	if !ok {
		return
	}
	if err := h.departmentService.Delete(c.Request.Context(), a, id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.OK("department deactivated"))
}

// Import
// @Summary      Import departments
// @Description  Two-pass import of parsed spreadsheet rows. Rows may reference parents that appear later in the batch.
// @Tags         departments
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.ImportDepartmentsDTO  true  "Rows"
// @Success      200      {object}  service.ImportResult
// @Router       /api/departments/import [post]
func (h *DepartmentHandler) Import(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	var dto service.ImportDepartmentsDTO
	if !bindJSON(c, &dto) {
		return
	}
	result, err := h.departmentService.Import(c.Request.Context(), a, dto.Rows)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// @Summary      List department types
// @Tags         departments
// @Produce      json
// @Security     BearerAuth
// @Param        activeOnly  query  bool  false  "Only active types"
// @Success      200  {array}  model.DepartmentType
// @Router       /api/department-types [get]
func (h *DepartmentHandler) ListTypes(c *gin.Context) {
	types, err := h.typeService.List(c.Request.Context(), queryBool(c, "activeOnly"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, types)
}

// @Summary      Create department type
// @Tags         departments
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.DepartmentTypeDTO  true  "Type"
// @Success      201      {object}  model.DepartmentType
// @Failure      409      {object}  response.ErrorBody
// @Router       /api/department-types [post]
func (h *DepartmentHandler) CreateType(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	var dto service.DepartmentTypeDTO
	if !bindJSON(c, &dto) {
		return
	}
	t, err := h.typeService.Create(c.Request.Context(), a, dto)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, t)
}

// @Summary      Update department type
// @Tags         departments
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                     true  "Type ID"
// @Param        payload  body      service.DepartmentTypeDTO  true  "Type"
// @Success      200      {object}  model.DepartmentType
// @Router       /api/department-types/{id} [put]
func (h *DepartmentHandler) UpdateType(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "department type")
	if !ok {
		return
	}
	var dto service.DepartmentTypeDTO
	if !bindJSON(c, &dto) {
		return
	}
	t, err := h.typeService.Update(c.Request.Context(), a, id, dto)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, t)
}

// @Summary      Delete department type
// @Tags         departments
// @Security     BearerAuth
// @Param        id   path      string  true  "Type ID"
// @Success      200  {object}  response.Message
// @Failure      409  {object}  response.ErrorBody
// @Router       /api/department-types/{id} [delete]
func (h *DepartmentHandler) DeleteType(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "department type")
	if !ok {
		return
	}
	if err := h.typeService.Delete(c.Request.Context(), a, id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.OK("department type deleted"))
}
