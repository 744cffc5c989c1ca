// Package handler 包含了处理 HTTP 请求的控制器逻辑。
package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"doc-annotator-go/internal/service"
	"doc-annotator-go/pkg/log"
)

func ok(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusOK, gin.H{
		"code":    http.StatusOK,
		"message": message,
		"data":    data,
	})
}

func fail(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{
		"code":    status,
		"message": message,
		"data":    nil,
	})
}

// failWithError 把业务错误映射为对应的 HTTP 状态码。
func failWithError(c *gin.Context, action string, err error) {
	var ve *service.ValidationError
	switch {
	case errors.As(err, &ve):
		fail(c, http.StatusBadRequest, ve.Error())
	case errors.Is(err, service.ErrValidation):
		fail(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrNotFound):
		fail(c, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrConflict):
		fail(c, http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrSearchUnavailable):
		fail(c, http.StatusServiceUnavailable, err.Error())
	default:
		log.Error(action+": failed", err)
		fail(c, http.StatusInternalServerError, action+"失败")
	}
}

// uintParam 解析路径参数中的正整数 ID。
func uintParam(c *gin.Context, name string) (uint, bool) {
	v, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || v == 0 {
		fail(c, http.StatusBadRequest, "无效的 "+name)
		return 0, false
	}
	return uint(v), true
}
