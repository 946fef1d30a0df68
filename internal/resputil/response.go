package resputil

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Response is the uniform envelope for every endpoint. Declared
// generic so swagger annotations can name the payload type.
type Response[T any] struct {
	Code ErrorCode `json:"code"`
	Data T         `json:"data"`
	Msg  string    `json:"msg"`
}

func wrapResponse(c *gin.Context, httpCode int, msg string, data interface{}, code ErrorCode) {
	c.JSON(httpCode, gin.H{
		"code": code,
		"data": data,
		"msg":  msg,
	})
}

func Success(c *gin.Context, data interface{}) {
	wrapResponse(c, http.StatusOK, "", data, OK)
}

// HTTPError replies with an explicit status code.
func HTTPError(c *gin.Context, httpCode int, msg string, errorCode ErrorCode) {
	wrapResponse(c, httpCode, msg, nil, errorCode)
}

// Error replies 500 for faults that have no better classification.
func Error(c *gin.Context, msg string, errorCode ErrorCode) {
	wrapResponse(c, http.StatusInternalServerError, msg, nil, errorCode)
}

func BadRequestError(c *gin.Context, msg string) {
	HTTPError(c, http.StatusBadRequest, msg, InvalidRequest)
}

// Forbidden carries an evaluator deny reason to the client. The
// reason strings are stable and asserted by tests.
func Forbidden(c *gin.Context, reason string) {
	HTTPError(c, http.StatusForbidden, reason, UserNotAllowed)
}

func NotFoundError(c *gin.Context, msg string) {
	HTTPError(c, http.StatusNotFound, msg, NotFound)
}

func ConflictError(c *gin.Context, msg string) {
	HTTPError(c, http.StatusConflict, msg, Conflict)
}

func ValidationError(c *gin.Context, msg string) {
	HTTPError(c, http.StatusUnprocessableEntity, msg, ValidationFailed)
}
