package middleware

import (
	"log"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// RequestIDHeader 请求 ID 头
const RequestIDHeader = "X-Request-ID"

// RequestID 为每个请求分配 ID，已带 ID 的沿用
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("request_id", id)
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}

// levelForStatus 按状态码给访问日志打级别标签
func levelForStatus(status int) string {
	switch {
	case status >= 500:
		return "ERROR"
	case status >= 400:
		return "WARN"
	default:
		return "INFO"
	}
}

// Logger 访问日志，5xx 附带处理过程中记录的错误
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		if raw := c.Request.URL.RawQuery; raw != "" {
			path += "?" + raw
		}

		c.Next()

		status := c.Writer.Status()
		level := levelForStatus(status)
		log.Printf("[HTTP][%s] %s %s %d %v ip=%s rid=%s",
			level, c.Request.Method, path, status, time.Since(start),
			c.ClientIP(), c.GetString("request_id"))

		if level == "ERROR" && len(c.Errors) > 0 {
			log.Printf("[HTTP][ERROR] rid=%s %s", c.GetString("request_id"), c.Errors.String())
		}
	}
}
