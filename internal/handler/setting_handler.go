package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"acqplan/internal/middleware"
	"acqplan/internal/service"
	"acqplan/internal/workflow"
)

type SettingHandler struct {
	settingService service.SettingService
}

func NewSettingHandler(settingService service.SettingService) *SettingHandler {
	return &SettingHandler{settingService: settingService}
}

func (h *SettingHandler) RegisterRoutes(router *gin.RouterGroup) {
	group := router.Group("/settings")
	group.Use(middleware.RequireRole(workflow.RoleAdmin))
	{
		group.GET("", h.List)
		group.PUT("", h.Update)
	}
}

// @Summary      List system parameters
// @Tags         settings
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}  model.Setting
// @Router       /api/settings [get]
func (h *SettingHandler) List(c *gin.Context) {
	settings, err := h.settingService.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, settings)
}

// @Summary      Update system parameters
// @Description  Upserts every key in the payload and returns the full list.
// @Tags         settings
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.UpdateSettingsDTO  true  "Settings"
// @Success      200      {array}   model.Setting
// @Failure      400      {object}  response.ErrorBody
// @Router       /api/settings [put]
func (h *SettingHandler) Update(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	var dto service.UpdateSettingsDTO
	if !bindJSON(c, &dto) {
		return
	}
	settings, err := h.settingService.Update(c.Request.Context(), a, dto)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, settings)
}
