package util

import (
	"errors"
	"net/http"

	"team_collab_backend/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Response 统一响应结构
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// PageResponse 分页响应结构
type PageResponse struct {
	List  interface{} `json:"list"`
	Total int64       `json:"total"`
	Page  int         `json:"page"`
	Limit int         `json:"limit"`
}

func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    http.StatusOK,
		Message: "success",
		Data:    data,
	})
}

func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Response{
		Code:    http.StatusCreated,
		Message: "created",
		Data:    data,
	})
}

func NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

func Error(c *gin.Context, code int, message string) {
	c.JSON(code, Response{
		Code:    code,
		Message: message,
	})
}

func Unauthorized(c *gin.Context) {
	Error(c, http.StatusUnauthorized, "Unauthorized")
}

func Forbidden(c *gin.Context) {
	Error(c, http.StatusForbidden, "Forbidden")
}

func BadRequest(c *gin.Context, message string) {
	Error(c, http.StatusBadRequest, message)
}

func NotFound(c *gin.Context) {
	Error(c, http.StatusNotFound, "Resource not found")
}

func InternalServerError(c *gin.Context) {
	Error(c, http.StatusInternalServerError, "Internal server error")
}

func LogInternalError(c *gin.Context, err error) {
	logger.Log.Error("Internal server error", zap.Error(err))
	InternalServerError(c)
}

// FromError 将服务层哨兵错误映射为 HTTP 状态码
// 授权和未找到类错误必须原样透出给调用方，不允许吞掉
func FromError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrConversationNotFound),
		errors.Is(err, ErrMessageNotFound),
		errors.Is(err, ErrFileNotFound),
		errors.Is(err, ErrMeetingNotFound),
		errors.Is(err, ErrReminderNotFound),
		errors.Is(err, ErrUserNotFound):
		Error(c, http.StatusNotFound, err.Error())
	case errors.Is(err, ErrNotParticipant), errors.Is(err, ErrNotSender):
		Error(c, http.StatusForbidden, err.Error())
	case errors.Is(err, ErrDuplicateParticipant),
		errors.Is(err, ErrConversationArchived),
		errors.Is(err, ErrInvalidMeetingTransition),
		errors.Is(err, ErrMeetingCancelled),
		errors.Is(err, ErrReminderAlreadySent),
		errors.Is(err, ErrEmailRegistered):
		Error(c, http.StatusConflict, err.Error())
	case errors.Is(err, ErrVersionLineage), errors.Is(err, ErrInvalidModerationAction):
		Error(c, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, ErrRateLimited):
		Error(c, http.StatusTooManyRequests, err.Error())
	default:
		LogInternalError(c, err)
	}
}
