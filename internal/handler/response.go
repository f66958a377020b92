package handler

import (
	"github.com/gin-gonic/gin"

	apperrors "github.com/jwalitptl/servir-hc/pkg/errors"
	"github.com/jwalitptl/servir-hc/pkg/httputil"
)

type Response struct {
	Status  string      `json:"status"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

func NewSuccessResponse(data interface{}) *Response {
	return &Response{
		Status: "success",
		Data:   data,
	}
}

func NewErrorResponse(message string) *Response {
	return &Response{
		Status:  "error",
		Message: message,
	}
}

// RespondError writes err in the error envelope. The error is attached to the
// context so the access log records it.
func RespondError(c *gin.Context, err error) {
	_ = c.Error(err)
	c.JSON(httputil.StatusOf(err), NewErrorResponse(httputil.MessageOf(err)))
}

// BindJSON decodes the request body into obj, answering 400 on failure.
func BindJSON(c *gin.Context, obj interface{}) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		RespondError(c, apperrors.BadRequest(err.Error(), err))
		return false
	}
	return true
}

// PathID reads a positive integer path parameter, answering 400 on failure.
func PathID(c *gin.Context, param string) (int64, bool) {
	id, err := httputil.ParseID(c, param)
	if err != nil {
		RespondError(c, err)
		return 0, false
	}
	return id, true
}
