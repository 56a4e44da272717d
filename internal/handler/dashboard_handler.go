package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"acqplan/internal/service"
)

type DashboardHandler struct {
	dashboardService service.DashboardService
}

func NewDashboardHandler(dashboardService service.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboardService: dashboardService}
}

func (h *DashboardHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/dashboard", h.GetDashboard)
}

// GetDashboard aggregates the requests visible to the caller.
// @Summary      Dashboard
// @Description  Counts by status, total and approved value, what waits on the caller and the five most recent requests.
// @Tags         dashboard
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  service.DashboardResponse
// @Router       /api/dashboard [get]
func (h *DashboardHandler) GetDashboard(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	dash, err := h.dashboardService.GetDashboard(c.Request.Context(), a)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dash)
}
