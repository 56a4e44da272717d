package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"acqplan/internal/middleware"
	"acqplan/internal/service"
	"acqplan/internal/workflow"
	"acqplan/pkg/response"
)

type UserHandler struct {
	userService  service.UserService
	tokenTTL     time.Duration
	cookieSecure bool
}

// NewUserHandler sets up the routing dependencies for auth and user endpoints
func NewUserHandler(userService service.UserService, tokenTTL time.Duration, cookieSecure bool) *UserHandler {
	return &UserHandler{userService: userService, tokenTTL: tokenTTL, cookieSecure: cookieSecure}
}

// RegisterRoutes binds the endpoints. public carries no authentication.
func (h *UserHandler) RegisterRoutes(public, authed *gin.RouterGroup) {
	public.POST("/auth/login", h.Login)
	public.POST("/auth/logout", h.Logout)

	authed.GET("/me", h.GetMe)

	users := authed.Group("/users")
	{
		users.GET("", middleware.RequireRole(workflow.RoleAdmin, workflow.RoleManager), h.ListUsers)
		users.GET("/:id", middleware.RequireRole(workflow.RoleAdmin, workflow.RoleManager), h.GetUserByID)
		users.POST("", middleware.RequireRole(workflow.RoleAdmin), h.CreateUser)
		users.PUT("/:id", middleware.RequireRole(workflow.RoleAdmin), h.UpdateUser)
		users.DELETE("/:id", middleware.RequireRole(workflow.RoleAdmin), h.DeactivateUser)
	}
}

// Login handles POST /api/auth/login to authenticate and return a JWT token
// @Summary      Login user
// @Description  Authenticates a user by email and password. The token is also set as an HttpOnly cookie.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.LoginUserRequest  true  "Login Credentials"
// @Success      200      {object}  service.LoginResponse
// @Failure      400      {object}  response.ErrorBody
// @Failure      401      {object}  response.ErrorBody
// @Router       /api/auth/login [post]
func (h *UserHandler) Login(c *gin.Context) {
	var req service.LoginUserRequest
	if !bindJSON(c, &req) {
		return
	}

	res, err := h.userService.Login(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}

	middleware.SetTokenCookies(c, res.Token, h.tokenTTL, h.cookieSecure)
	c.JSON(http.StatusOK, res)
}

// Logout handles POST /api/auth/logout to clear auth cookies
// @Summary      Logout
// @Tags         auth
// @Produce      json
// @Success      200  {object}  response.Message
// @Router       /api/auth/logout [post]
func (h *UserHandler) Logout(c *gin.Context) {
	middleware.ClearTokenCookies(c, h.cookieSecure)
	c.JSON(http.StatusOK, response.OK("logged out"))
}

// GetMe handles GET /api/me to return the current session user
// @Summary      Get current user
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  service.UserResponse
// @Failure      401  {object}  response.ErrorBody
// @Router       /api/me [get]
func (h *UserHandler) GetMe(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	user, err := h.userService.GetUserByID(c.Request.Context(), a.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// ListUsers
// @Summary      List users
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        search        query  string  false  "Name or email"
// @Param        role          query  string  false  "USER, MANAGER, APPROVER or ADMIN"
// @Param        departmentId  query  string  false  "Department id"
// @Param        isActive      query  bool    false  "Active flag"
// @Param        page          query  int     false  "Page number (default 1)"
// @Param        limit         query  int     false  "Page size (default 20)"
// @Success      200  {object}  response.List{data=[]service.UserResponse}
// @Router       /api/users [get]
func (h *UserHandler) ListUsers(c *gin.Context) {
	var q service.UserListQuery
	if !bindQuery(c, &q) {
		return
	}
	p := page(c)
	users, total, err := h.userService.ListUsers(c.Request.Context(), q, p.Page, p.Limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Page(users, total, p.Page, p.Limit))
}

// @Summary      Get user
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "User ID"
// @Success      200  {object}  service.UserResponse
// @Failure      404  {object}  response.ErrorBody
// @Router       /api/users/{id} [get]
func (h *UserHandler) GetUserByID(c *gin.Context) {
	id, ok := pathID(c, "user")
	if !ok {
		return
	}
	user, err := h.userService.GetUserByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// CreateUser handles POST /api/users
// @Summary      Create a new user
// @Description  Creates a user, hashing the password. Email must be unique and the department must exist.
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.CreateUserRequest  true  "Create User Payload"
// @Success      201      {object}  service.UserResponse
// @Failure      400      {object}  response.ErrorBody
// @Failure      409      {object}  response.ErrorBody
// @Router       /api/users [post]
func (h *UserHandler) CreateUser(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	var req service.CreateUserRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.userService.CreateUser(c.Request.Context(), a, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, user)
}

// @Summary      Update user
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path  string                     true  "User ID"
// @Param        payload  body  service.UpdateUserRequest  true  "Fields to change"
// @Success      200  {object}  service.UserResponse
// @Router       /api/users/{id} [put]
func (h *UserHandler) UpdateUser(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "user")
	if !ok {
		return
	}
	var req service.UpdateUserRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.userService.UpdateUser(c.Request.Context(), a, id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// DeactivateUser marks the user inactive; nothing is deleted.
// @Summary      Deactivate user
// @Tags         users
// @Security     BearerAuth
// @Param        id   path      string  true  "User ID"
// @Success      200  {object}  response.Message
// @Router       /api/users/{id} [delete]
func (h *UserHandler) DeactivateUser(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "user")
	if !ok {
		return
	}
	if err := h.userService.DeactivateUser(c.Request.Context(), a, id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.OK("user deactivated"))
}
