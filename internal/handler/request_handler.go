package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"acqplan/internal/service"
	"acqplan/internal/workflow"
	"acqplan/pkg/response"
)

type RequestHandler struct {
	requestService service.RequestService
}

func NewRequestHandler(requestService service.RequestService) *RequestHandler {
	return &RequestHandler{requestService: requestService}
}

func (h *RequestHandler) RegisterRoutes(router *gin.RouterGroup) {
	group := router.Group("/requests")
	{
		group.GET("", h.List)
		group.POST("", h.Create)
		group.GET("/:id", h.Get)
		group.GET("/:id/history", h.History)
		group.PUT("/:id/edit", h.Edit)
		group.DELETE("/:id/delete", h.Delete)

		group.POST("/:id/submit", h.transition(workflow.ActionSubmit))
		group.POST("/:id/manager-approve", h.transition(workflow.ActionManagerAuthorize))
		group.POST("/:id/manager-reject", h.transition(workflow.ActionManagerReject))
		group.POST("/:id/manager-return", h.transition(workflow.ActionManagerReturn))
		group.POST("/:id/approve", h.transition(workflow.ActionApprove))
		group.POST("/:id/reject", h.transition(workflow.ActionReject))
		group.POST("/:id/return", h.transition(workflow.ActionReturn))
		group.POST("/:id/start", h.transition(workflow.ActionStart))
		group.POST("/:id/complete", h.transition(workflow.ActionComplete))
		group.PUT("/:id/reopen", h.Reopen)
	}
}

// List returns the requests visible to the caller.
// @Summary      List requests
// @Description  USER sees own requests, MANAGER those of their department, APPROVER and ADMIN all. parentDepartmentId is honoured for APPROVER and ADMIN only.
// @Tags         requests
// @Produce      json
// @Security     BearerAuth
// @Param        status              query  string  false  "Request status"
// @Param        departmentId        query  string  false  "Department id"
// @Param        parentDepartmentId  query  string  false  "Department id, including its direct children"
// @Param        startDate           query  string  false  "YYYY-MM-DD"
// @Param        endDate             query  string  false  "YYYY-MM-DD, inclusive"
// @Param        contractTypeId      query  string  false  "Contract type on any item"
// @Param        acquisitionTypeId   query  string  false  "Acquisition type on any item"
// @Param        search              query  string  false  "Request number or description"
// @Param        page                query  int     false  "Page number (default 1)"
// @Param        limit               query  int     false  "Page size (default 20)"
// @Success      200  {object}  response.List{data=[]service.RequestResponse}
// @Failure      400  {object}  response.ErrorBody
// @Router       /api/requests [get]
func (h *RequestHandler) List(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	var q service.RequestListQuery
	if !bindQuery(c, &q) {
		return
	}
	p := page(c)

	requests, total, err := h.requestService.List(c.Request.Context(), a, q, p.Page, p.Limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Page(requests, total, p.Page, p.Limit))
}

// Create
// @Summary      Create a request
// @Description  Every item is validated; one invalid item rejects the whole request. The total is computed server side.
// @Tags         requests
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.CreateRequestDTO  true  "Request"
// @Success      201      {object}  service.RequestResponse
// @Failure      400      {object}  response.ErrorBody
// @Router       /api/requests [post]
func (h *RequestHandler) Create(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	var dto service.CreateRequestDTO
	if !bindJSON(c, &dto) {
		return
	}

	res, err := h.requestService.Create(c.Request.Context(), a, dto)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, res)
}

// @Summary      Get a request
// @Tags         requests
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Request ID"
// @Success      200  {object}  service.RequestResponse
// @Failure      404  {object}  response.ErrorBody
// @Router       /api/requests/{id} [get]
func (h *RequestHandler) Get(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "request")
	if !ok {
		return
	}
	res, err := h.requestService.Get(c.Request.Context(), a, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// @Summary      Request history
// @Tags         requests
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Request ID"
// @Success      200  {array}   service.HistoryResponse
// @Failure      404  {object}  response.ErrorBody
// @Router       /api/requests/{id}/history [get]
func (h *RequestHandler) History(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "request")
	if !ok {
		return
	}
	rows, err := h.requestService.History(c.Request.Context(), a, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rows)
}

// Edit replaces description, justification and the item set.
// @Summary      Edit a request
// @Description  Owner or ADMIN only. Non-admins may edit only while the request is OPEN or PENDING_MANAGER_APPROVAL.
// @Tags         requests
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                  true  "Request ID"
// @Param        payload  body      service.EditRequestDTO  true  "New content"
// @Success      200      {object}  service.RequestResponse
// @Failure      403      {object}  response.ErrorBody
// @Failure      409      {object}  response.ErrorBody
// @Router       /api/requests/{id}/edit [put]
func (h *RequestHandler) Edit(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "request")
	if !ok {
		return
	}
	var dto service.EditRequestDTO
	if !bindJSON(c, &dto) {
		return
	}

	res, err := h.requestService.Edit(c.Request.Context(), a, id, dto)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// @Summary      Delete a request
// @Tags         requests
// @Security     BearerAuth
// @Param        id   path      string  true  "Request ID"
// @Success      200  {object}  response.Message
// @Failure      403  {object}  response.ErrorBody
// @Failure      409  {object}  response.ErrorBody
// @Router       /api/requests/{id}/delete [delete]
func (h *RequestHandler) Delete(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "request")
	if !ok {
		return
	}
	if err := h.requestService.Delete(c.Request.Context(), a, id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.OK("request deleted"))
}

// transition builds the handler of one workflow action. The body is
// optional and only carries the reason.
// @Summary      Apply a workflow action
// @Description  submit, manager-approve, manager-reject, manager-return, approve, reject, return, start, complete. Reject and return need a reason.
// @Tags         requests
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                 true   "Request ID"
// @Param        payload  body      service.TransitionDTO  false  "Reason"
// @Success      200      {object}  service.RequestResponse
// @Failure      400      {object}  response.ErrorBody
// @Failure      403      {object}  response.ErrorBody
// @Failure      409      {object}  response.ErrorBody
// @Router       /api/requests/{id}/approve [post]
func (h *RequestHandler) transition(action workflow.Action) gin.HandlerFunc {
	return func(c *gin.Context) {
		a, ok := actor(c)
		if !ok {
			return
		}
		id, ok := pathID(c, "request")
		if !ok {
			return
		}
		var dto service.TransitionDTO
		if c.Request.ContentLength != 0 && !bindJSON(c, &dto) {
			return
		}

		res, err := h.requestService.Transition(c.Request.Context(), a, id, action, dto.Reason)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, res)
	}
}

// Reopen sends an approved request back to the manager stage.
// @Summary      Reopen a request
// @Tags         requests
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string             true  "Request ID"
// @Param        payload  body      service.ReopenDTO  true  "At least 10 characters"
// @Success      200      {object}  service.RequestResponse
// @Failure      400      {object}  response.ErrorBody
// @Failure      409      {object}  response.ErrorBody
// @Router       /api/requests/{id}/reopen [put]
func (h *RequestHandler) Reopen(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "request")
	if !ok {
		return
	}
	var dto service.ReopenDTO
	if !bindJSON(c, &dto) {
		return
	}

	res, err := h.requestService.Transition(c.Request.Context(), a, id, workflow.ActionReopen, dto.ReopenReason)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}
