package httpapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	pkgerr "github.com/multi-agent/spoolgen/pkg/errors"
	"github.com/multi-agent/spoolgen/pkg/logger"
)

// 统一响应辅助 (所有 handler 共用)。

const (
	codeInternal   = "INTERNAL_ERROR"
	codeBadRequest = "INVALID_REQUEST"
	msgInternal    = "internal server error"
)

func success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, gin.H{"success": true, "data": data})
}

func errorBody(c *gin.Context, code, message, detail string) gin.H {
	e := gin.H{"code": code, "message": message, "request_id": c.GetString(ctxRequestID)}
	if detail != "" {
		e["detail"] = detail
	}
	return gin.H{"success": false, "error": e}
}

func badRequest(c *gin.Context, code, message string) {
	c.JSON(http.StatusBadRequest, errorBody(c, code, message, ""))
}

// statusOf 由分类哨兵决定 HTTP 状态码。
func statusOf(err error) int {
	switch {
	case errors.Is(err, pkgerr.ErrInvalidInput), errors.Is(err, pkgerr.ErrReadOnly):
		return http.StatusBadRequest
	case errors.Is(err, pkgerr.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, pkgerr.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, pkgerr.ErrUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, pkgerr.ErrTimeout):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// fail 写出错误响应。500 只返回通用消息，细节只进日志。
func fail(c *gin.Context, err error) {
	status := statusOf(err)
	log := logger.FromContext(c.Request.Context())
	if status == http.StatusInternalServerError {
		log.Error("internal error", logger.FieldError, err)
		c.JSON(status, errorBody(c, codeInternal, msgInternal, ""))
		return
	}

	code := pkgerr.CodeOf(err)
	msg := pkgerr.MessageOf(err)
	if code == "" {
		code = codeBadRequest
		var appErr *pkgerr.AppError
		if errors.As(err, &appErr) {
			msg = appErr.Message
		}
	}
	if msg == "" {
		msg = http.StatusText(status)
	}
	log.Warn("request rejected", logger.FieldStatus, status, logger.FieldCode, code)
	c.JSON(status, errorBody(c, code, msg, pkgerr.DetailOf(err)))
}
