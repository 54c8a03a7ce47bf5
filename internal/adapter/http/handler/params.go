package handler

import (
	"strconv"

	"tukangku/internal/adapter/http/middleware"
	"tukangku/pkg/apperror"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// principalID extracts the authenticated user ID set by the JWT middleware.
func principalID(c *gin.Context) (uuid.UUID, bool) {
	v, ok := c.Get(middleware.CtxUserID)
	if !ok {
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	return id, ok
}

// uuidParam parses a path parameter as a UUID.
func uuidParam(c *gin.Context, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		return uuid.Nil, apperror.Validation("invalid " + name)
	}
	return id, nil
}

// limitOffset parses pagination query parameters with sane bounds.
func limitOffset(c *gin.Context) (int, int) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if limit < 1 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
