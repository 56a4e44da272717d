package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"acqplan/internal/service"
	"acqplan/pkg/response"
)

// NotificationHandler serves the polling side channel. Clients refresh the
// unread count periodically; there is no push transport.
type NotificationHandler struct {
	notificationService service.NotificationService
}

func NewNotificationHandler(notificationService service.NotificationService) *NotificationHandler {
	return &NotificationHandler{notificationService: notificationService}
}

func (h *NotificationHandler) RegisterRoutes(router *gin.RouterGroup) {
	group := router.Group("/notifications")
	{
		group.GET("", h.List)
		group.GET("/unread-count", h.UnreadCount)
		group.PUT("/read-all", h.MarkAllRead)
		group.PUT("/:id/read", h.MarkRead)
	}
}

// @Summary      List my notifications
// @Tags         notifications
// @Produce      json
// @Security     BearerAuth
// @Param        unreadOnly  query  bool  false  "Only unread"
// @Param        page        query  int   false  "Page number (default 1)"
// @Param        limit       query  int   false  "Page size (default 20)"
// @Success      200  {object}  response.List{data=[]service.NotificationResponse}
// @Router       /api/notifications [get]
func (h *NotificationHandler) List(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	p := page(c)
	rows, total, err := h.notificationService.List(c.Request.Context(), a.ID, queryBool(c, "unreadOnly"), p.Page, p.Limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Page(rows, total, p.Page, p.Limit))
}

// @Summary      Unread notification count
// @Tags         notifications
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  map[string]int64
// @Router       /api/notifications/unread-count [get]
func (h *NotificationHandler) UnreadCount(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	n, err := h.notificationService.UnreadCount(c.Request.Context(), a.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": n})
}

func (h *NotificationHandler) MarkRead(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "notification")
	if !ok {
		return
	}
	if err := h.notificationService.MarkRead(c.Request.Context(), a.ID, id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.OK("notification marked as read"))
}

func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	n, err := h.notificationService.MarkAllRead(c.Request.Context(), a.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "notifications marked as read", "updated": n})
}
