package handler

import (
	"errors"
	"math"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/habitlog/internal/service"
)

// handleServiceError 将 service 层错误映射为 HTTP 响应
func handleServiceError(c *gin.Context, err error) {
	var providerErr *service.ProviderError

	switch {
	case errors.Is(err, service.ErrHabitNotFound):
		respondError(c, http.StatusNotFound, "习惯不存在")
	case errors.Is(err, service.ErrGoalNotFound):
		respondError(c, http.StatusNotFound, "目标不存在")
	case errors.Is(err, service.ErrDailyLogNotFound):
		respondError(c, http.StatusNotFound, "当天没有记录")
	case errors.Is(err, service.ErrNotFound):
		respondError(c, http.StatusNotFound, "资源不存在")
	case errors.Is(err, service.ErrInvalidDateRange):
		respondError(c, http.StatusBadRequest, "开始日期不能晚于结束日期")
	case errors.Is(err, service.ErrInvalidGoalConfig):
		respondError(c, http.StatusBadRequest, "目标配置无效："+err.Error())
	case errors.Is(err, service.ErrValidation):
		respondError(c, http.StatusBadRequest, "参数无效："+err.Error())
	case errors.Is(err, service.ErrDuplicateResource):
		respondError(c, http.StatusConflict, "资源已存在")
	case errors.Is(err, service.ErrBusinessRule):
		respondError(c, http.StatusConflict, "操作违反业务规则")
	case errors.As(err, &providerErr):
		handleProviderError(c, providerErr)
	default:
		_ = c.Error(err)
		respondError(c, http.StatusInternalServerError, "操作失败")
	}
}

func handleProviderError(c *gin.Context, err *service.ProviderError) {
	switch err.Kind {
	case service.ProviderErrorRateLimit:
		payload := gin.H{"error": "数据源请求过于频繁"}
		if err.RetryAfter > 0 {
			seconds := int(math.Ceil(err.RetryAfter.Seconds()))
			c.Header("Retry-After", strconv.Itoa(seconds))
			payload["retry_after"] = seconds
		}
		c.JSON(http.StatusTooManyRequests, payload)
	case service.ProviderErrorAuth:
		respondError(c, http.StatusBadGateway, "数据源认证失败")
	default:
		respondError(c, http.StatusServiceUnavailable, "数据源暂不可用")
	}
}
