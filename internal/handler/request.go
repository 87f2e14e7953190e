package handler

import (
	"errors"
	"io"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/slot-booking-api/internal/middleware"
	appErrors "github.com/noah-isme/slot-booking-api/pkg/errors"
	"github.com/noah-isme/slot-booking-api/pkg/validation"
)

// bindJSON decodes the request body into dst. An empty body leaves dst zeroed
// so field validation reports what is missing.
func bindJSON(c *gin.Context, dst interface{}) error {
	if err := c.ShouldBindJSON(dst); err != nil && !errors.Is(err, io.EOF) {
		return validation.FromBindError(err)
	}
	return nil
}

func pathID(c *gin.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, appErrors.FieldError("id", "The id field must be a positive integer.")
	}
	return id, nil
}

func callerID(c *gin.Context) string {
	if claims := middleware.Caller(c); claims != nil {
		return claims.Subject
	}
	return ""
}
