package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"acqplan/internal/apperr"
	"acqplan/internal/middleware"
	"acqplan/internal/repository"
	"acqplan/internal/service"
	"acqplan/internal/workflow"
	"acqplan/pkg/response"
)

type AuditHandler struct {
	auditService service.AuditService
}

func NewAuditHandler(auditService service.AuditService) *AuditHandler {
	return &AuditHandler{auditService: auditService}
}

func (h *AuditHandler) RegisterRoutes(router *gin.RouterGroup) {
	group := router.Group("/audit-logs")
	group.Use(middleware.RequireRole(workflow.RoleAdmin))
	{
		group.GET("", h.GetAuditLogs)
	}
}

type auditQuery struct {
	Action   string `form:"action"`
	UserID   string `form:"userId"`
	EntityID string `form:"entityId"`
	From     string `form:"from"`
	To       string `form:"to"`
}

func (q auditQuery) filter() (repository.AuditFilter, error) {
	f := repository.AuditFilter{Action: q.Action, EntityID: q.EntityID}
	if q.UserID != "" {
		id, err := uuid.Parse(q.UserID)
		if err != nil {
			return f, apperr.Validation("invalid userId")
		}
		f.UserID = &id
	}
	var err error
	if f.From, err = parseDate(q.From, "from"); err != nil {
		return f, err
	}
	if f.To, err = parseDate(q.To, "to"); err != nil {
		return f, err
	}
	return f, nil
}

// parseDate accepts RFC 3339 timestamps or plain YYYY-MM-DD dates.
func parseDate(v, field string) (*time.Time, error) {
	if v == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return &t, nil
	}
	t, err := time.Parse(time.DateOnly, v)
	if err != nil {
		return nil, apperr.Validation("invalid %s date", field)
	}
	return &t, nil
}

// GetAuditLogs lists reference-data mutations, newest first.
// @Summary      Get audit logs
// @Tags         audit
// @Security     BearerAuth
// @Produce      json
// @Param        action    query     string  false  "Action name"
// @Param        userId    query     string  false  "Acting user id"
// @Param        entityId  query     string  false  "Entity id"
// @Param        from      query     string  false  "Start date (YYYY-MM-DD or RFC 3339)"
// @Param        to        query     string  false  "End date (YYYY-MM-DD or RFC 3339)"
// @Param        page      query     int     false  "Page number (default 1)"
// @Param        limit     query     int     false  "Number of items per page (default 20)"
// @Success      200       {object}  response.List{data=[]service.AuditLogResponse}
// @Failure      403       {object}  response.ErrorBody
// @Router       /api/audit-logs [get]
func (h *AuditHandler) GetAuditLogs(c *gin.Context) {
	var q auditQuery
	if !bindQuery(c, &q) {
		return
	}
	filter, err := q.filter()
	if err != nil {
		respondError(c, err)
		return
	}
	p := page(c)
	logs, total, err := h.auditService.GetAuditLogs(c.Request.Context(), filter, p.Page, p.Limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Page(logs, total, p.Page, p.Limit))
}
