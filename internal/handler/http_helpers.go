package handler

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/habitlog/internal/service"
)

const invalidDateMessage = "日期格式无效，应为 YYYY-MM-DD"

func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"error": message})
}

func respondSuccess(c *gin.Context, status int, payload any) {
	c.JSON(status, payload)
}

func bindJSON(c *gin.Context, dst interface{}, message string) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		respondError(c, http.StatusBadRequest, message)
		return false
	}
	return true
}

// parseDateParam 解析路径中的日期，失败时直接返回 400
func parseDateParam(c *gin.Context, key string) (time.Time, bool) {
	date, err := service.ParseDate(c.Param(key))
	if err != nil {
		respondError(c, http.StatusBadRequest, invalidDateMessage)
		return time.Time{}, false
	}
	return date, true
}

// parseOptionalDateQuery 参数缺失时返回 fallback
func parseOptionalDateQuery(c *gin.Context, key string, fallback time.Time) (time.Time, bool) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return fallback, true
	}
	date, err := service.ParseDate(raw)
	if err != nil {
		respondError(c, http.StatusBadRequest, invalidDateMessage)
		return time.Time{}, false
	}
	return date, true
}

func parseRequiredDateQuery(c *gin.Context, key string) (time.Time, bool) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		respondError(c, http.StatusBadRequest, "缺少参数 "+key)
		return time.Time{}, false
	}
	date, err := service.ParseDate(raw)
	if err != nil {
		respondError(c, http.StatusBadRequest, invalidDateMessage)
		return time.Time{}, false
	}
	return date, true
}

// parseRangeQuery 读取 start/end 并校验先后顺序
func parseRangeQuery(c *gin.Context) (time.Time, time.Time, bool) {
	start, ok := parseRequiredDateQuery(c, "start")
	if !ok {
		return time.Time{}, time.Time{}, false
	}
	end, ok := parseRequiredDateQuery(c, "end")
	if !ok {
		return time.Time{}, time.Time{}, false
	}
	if end.Before(start) {
		respondError(c, http.StatusBadRequest, "开始日期不能晚于结束日期")
		return time.Time{}, time.Time{}, false
	}
	return start, end, true
}

func parseIntQuery(c *gin.Context, key string) (int, bool) {
	raw := strings.TrimSpace(c.Query(key))
	value, err := strconv.Atoi(raw)
	if err != nil {
		respondError(c, http.StatusBadRequest, "参数 "+key+" 必须是整数")
		return 0, false
	}
	return value, true
}

func parseFloatQuery(c *gin.Context, key string, fallback float64) (float64, bool) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return fallback, true
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		respondError(c, http.StatusBadRequest, "参数 "+key+" 必须是数字")
		return 0, false
	}
	return value, true
}

func formatOptionalDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	formatted := service.FormatDate(*t)
	return &formatted
}
