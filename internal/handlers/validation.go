package handlers

import (
	"github.com/gin-gonic/gin"

	apperrors "github.com/workhivehq/workhive/pkg/errors"
	"github.com/workhivehq/workhive/pkg/response"
	"github.com/workhivehq/workhive/pkg/validator"
)

// bindAndValidate decodes the JSON body into T and runs struct validation,
// writing a 400 response on failure.
func bindAndValidate[T any](c *gin.Context) (*T, bool) {
	var payload T
	if err := c.ShouldBindJSON(&payload); err != nil {
		response.Error(c, apperrors.NewBadRequest("Invalid request body"))
		return nil, false
	}
	if err := validator.ValidateStruct(&payload); err != nil {
		response.Error(c, apperrors.NewBadRequest(err.Error()))
		return nil, false
	}
	return &payload, true
}
