// Package handlers implements the HTTP endpoints over the isometry Client.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/isometry-app/isometry/pkg/server/dto"
	"github.com/isometry-app/isometry/pkg/types"
)

// writeError maps the error taxonomy onto HTTP status codes
func writeError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	code := "internal_error"
	switch {
	case types.IsNotFound(err):
		status = http.StatusNotFound
		code = "not_found"
	case types.IsInvalidData(err):
		status = http.StatusBadRequest
		code = "invalid_data"
	case types.IsConflict(err):
		status = http.StatusConflict
		code = "conflict"
	case types.IsDependencyMissing(err):
		status = http.StatusUnprocessableEntity
		code = "dependency_missing"
	}
	c.JSON(status, dto.ErrorResponse{Error: code, Message: err.Error()})
}
