package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/patrick-ksn/dms/internal/models"
)

// writeError maps service errors onto the structured {status, message} body:
// not-found conditions become 404, everything else (invalid state, validation,
// store failures) becomes 400 with the error's message text.
func writeError(c *gin.Context, err error) {
	var nf *models.NotFoundError
	if errors.As(err, &nf) {
		c.JSON(http.StatusNotFound, models.ErrorResponse{Status: http.StatusNotFound, Message: err.Error()})
		return
	}
	c.JSON(http.StatusBadRequest, models.ErrorResponse{Status: http.StatusBadRequest, Message: err.Error()})
}

// pathID parses the :id path parameter.
func pathID(c *gin.Context) (int, error) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return 0, errors.New("id must be an integer")
	}
	return id, nil
}
