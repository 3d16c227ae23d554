package utils

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Response 统一API响应结构
type Response struct {
	Code      int    `json:"code"`
	Message   string `json:"message"`
	Data      any    `json:"data"`
	Success   bool   `json:"success"`
	RequestID string `json:"request_id,omitempty"` // 与响应头 X-Request-ID 一致
}

func respond(c *gin.Context, code int, message string, data any) {
	c.JSON(code, Response{
		Code:      code,
		Message:   message,
		Data:      data,
		Success:   code < http.StatusBadRequest,
		RequestID: c.GetString("request_id"),
	})
}

// Success 返回成功响应
func Success(c *gin.Context, data any) {
	respond(c, http.StatusOK, "success", data)
}

// Error 返回错误响应
func Error(c *gin.Context, code int, message string) {
	respond(c, code, message, nil)
}

// BadRequest 返回400错误
func BadRequest(c *gin.Context, message string) {
	Error(c, http.StatusBadRequest, message)
}

// NotFound 返回404错误
func NotFound(c *gin.Context, message string) {
	if message == "" {
		message = "资源不存在"
	}
	Error(c, http.StatusNotFound, message)
}
