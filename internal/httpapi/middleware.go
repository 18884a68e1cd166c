package httpapi

import (
	"crypto/subtle"
	"net"
	"net/http"
	"regexp"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	pkgerr "github.com/multi-agent/spoolgen/pkg/errors"
	"github.com/multi-agent/spoolgen/pkg/logger"
)

const (
	headerRequestID  = "X-Request-ID"
	headerAdminToken = "X-Admin-Token"
	ctxRequestID     = "request_id"

	codeAdminForbidden = "ADMIN_FORBIDDEN"
)

// 外部传入的请求 ID 只接受保守字符集，否则重新生成 (会写入脚本注释与日志)。
var reRequestID = regexp.MustCompile(`^[A-Za-z0-9._\-]{1,64}$`)

// requestID 透传或生成 X-Request-ID，并把带 request_id 的日志器注入请求 context。
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(headerRequestID)
		if !reRequestID.MatchString(id) {
			id = uuid.NewString()
		}
		c.Set(ctxRequestID, id)
		c.Header(headerRequestID, id)
		ctx := logger.WithContext(c.Request.Context(), logger.With(logger.FieldRequestID, id))
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// accessLog 每个请求一条 request_complete。
func accessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.FromContext(c.Request.Context()).Info("request_complete",
			logger.FieldMethod, c.Request.Method,
			logger.FieldPath, c.Request.URL.Path,
			logger.FieldStatus, c.Writer.Status(),
			logger.FieldClientIP, c.ClientIP(),
			logger.FieldDurationMS, time.Since(start).Milliseconds(),
		)
	}
}

// recovery 捕获 handler panic，返回不含内部细节的 500。
func recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if rv := recover(); rv != nil {
				logger.FromContext(c.Request.Context()).Error("http: handler panicked",
					logger.FieldMethod, c.Request.Method,
					logger.FieldPath, c.Request.URL.Path,
					logger.FieldError, rv,
				)
				if !c.Writer.Written() {
					c.AbortWithStatusJSON(http.StatusInternalServerError, errorBody(c, codeInternal, msgInternal, ""))
					return
				}
				c.Abort()
			}
		}()
		c.Next()
	}
}

// adminGuard 管理接口访问控制。
// 配置了 token 时要求 X-Admin-Token 一致；未配置时只接受回环地址 (取 TCP 对端，不看 X-Forwarded-For)。
func adminGuard(token string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !adminAllowed(c, token) {
			fail(c, pkgerr.Reject(pkgerr.ErrForbidden, "HTTP.admin", codeAdminForbidden,
				"admin endpoints require a valid X-Admin-Token or a loopback client"))
			c.Abort()
			return
		}
		c.Next()
	}
}

func adminAllowed(c *gin.Context, token string) bool {
	if token != "" {
		return subtle.ConstantTimeCompare([]byte(c.GetHeader(headerAdminToken)), []byte(token)) == 1
	}
	ip := net.ParseIP(c.RemoteIP())
	return ip != nil && ip.IsLoopback()
}
