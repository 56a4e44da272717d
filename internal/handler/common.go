package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"acqplan/internal/access"
	"acqplan/internal/apperr"
	"acqplan/internal/middleware"
	"acqplan/internal/service"
	"acqplan/pkg/pagination"
	"acqplan/pkg/response"
)

// statusOf maps an error kind to its HTTP status.
func statusOf(err error) int {
	switch apperr.KindOf(err) {
	case apperr.KindValidation:
		return http.StatusBadRequest
	case apperr.KindUnauthenticated:
		return http.StatusUnauthorized
	case apperr.KindForbidden:
		return http.StatusForbidden
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindConflict:
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

// respondError writes err as {"error": message}. The message of a
// classified error is its own text; anything else is reported with the
// full wrapped chain and attached to the context for the access log.
func respondError(c *gin.Context, err error) {
	status := statusOf(err)
	message := err.Error()
	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		message = appErr.Error()
	}
	if status == http.StatusInternalServerError {
		_ = c.Error(err)
	}
	c.AbortWithStatusJSON(status, response.Error(message))
}

// bindJSON decodes the body, answering 400 on malformed or invalid input.
func bindJSON(c *gin.Context, v any) bool {
	if err := c.ShouldBindJSON(v); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, response.Error("invalid request payload: "+err.Error()))
		return false
	}
	return true
}

func bindQuery(c *gin.Context, v any) bool {
	if err := c.ShouldBindQuery(v); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, response.Error("invalid query: "+err.Error()))
		return false
	}
	return true
}

func pathID(c *gin.Context, entity string) (uuid.UUID, bool) {
	id, err := service.ParseID(c.Param("id"), entity)
	if err != nil {
		respondError(c, err)
		return uuid.Nil, false
	}
	return id, true
}

// actor returns the authenticated user. Routes are mounted behind
// middleware.Authenticate, so a missing actor is a wiring error.
func actor(c *gin.Context) (access.Actor, bool) {
	a, ok := middleware.CurrentActor(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error("authentication required"))
	}
	return a, ok
}

func queryBool(c *gin.Context, name string) bool {
	v, _ := strconv.ParseBool(c.Query(name))
	return v
}

func page(c *gin.Context) pagination.Params {
	return pagination.Parse(c)
}
