package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/zaqqye/gazetrack_backend/internal/services"
)

func errorJSON(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"status": "error", "message": message})
}

// respondError maps service errors onto HTTP responses. notFound is the
// message used for a missing resource.
func respondError(c *gin.Context, log *zap.Logger, err error, notFound string) {
	if errors.Is(err, services.ErrNotFound) {
		errorJSON(c, http.StatusNotFound, notFound)
		return
	}
	if v, ok := services.IsValidation(err); ok {
		errorJSON(c, http.StatusBadRequest, v.Message)
		return
	}
	_ = c.Error(err)
	log.Error("Request failed", zap.String("path", c.Request.URL.Path), zap.Error(err))
	errorJSON(c, http.StatusInternalServerError, "internal server error")
}

// parseID reads a positive integer id.
func parseID(raw string) (uint, bool) {
	v, err := strconv.ParseUint(strings.TrimSpace(raw), 10, 64)
	if err != nil || v == 0 {
		return 0, false
	}
	return uint(v), true
}

// queryID reads the "id" query parameter, answering 400 when it is missing
// or malformed.
func queryID(c *gin.Context) (uint, bool) {
	id, ok := parseID(c.Query("id"))
	if !ok {
		errorJSON(c, http.StatusBadRequest, "a valid id query parameter is required")
	}
	return id, ok
}
