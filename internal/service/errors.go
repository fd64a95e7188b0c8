package service

import (
	"errors"
	"fmt"
	"time"
)

// 错误分类，handler 通过 errors.Is 映射为 HTTP 状态码
var (
	ErrNotFound     = errors.New("resource not found")
	ErrValidation   = errors.New("validation failed")
	ErrBusinessRule = errors.New("business rule violation")
	ErrProvider     = errors.New("provider error")
)

var (
	// ErrHabitNotFound 在指定习惯不存在（或不在内置定义中）时返回
	ErrHabitNotFound = fmt.Errorf("habit: %w", ErrNotFound)
	// ErrGoalNotFound 在指定目标不存在时返回
	ErrGoalNotFound = fmt.Errorf("goal: %w", ErrNotFound)
	// ErrDailyLogNotFound 在指定日期没有任何记录时返回
	ErrDailyLogNotFound = fmt.Errorf("daily log: %w", ErrNotFound)

	// ErrInvalidDateRange 表示开始日期晚于结束日期
	ErrInvalidDateRange = fmt.Errorf("%w: start date must be on or before end date", ErrValidation)
	// ErrInvalidGoalConfig 表示目标配置不合法
	ErrInvalidGoalConfig = fmt.Errorf("%w: invalid goal config", ErrValidation)
	// ErrEntryDateMismatch 表示记录日期与所属日志日期不一致
	ErrEntryDateMismatch = fmt.Errorf("%w: entry date does not match log date", ErrValidation)

	// ErrDuplicateResource 表示资源标识已被占用
	ErrDuplicateResource = fmt.Errorf("%w: duplicate resource", ErrBusinessRule)
)

// ProviderErrorKind 区分外部数据源的失败类型
type ProviderErrorKind string

const (
	ProviderErrorAuth        ProviderErrorKind = "auth"
	ProviderErrorRateLimit   ProviderErrorKind = "rate_limit"
	ProviderErrorUnavailable ProviderErrorKind = "unavailable"
)

// ProviderError 描述外部数据源调用失败。
// 自动同步时按习惯单独吞掉，只有直接调用数据源的路径才会向上抛出。
type ProviderError struct {
	Provider   string
	Kind       ProviderErrorKind
	RetryAfter time.Duration
	Err        error
}

func (e *ProviderError) Error() string {
	msg := fmt.Sprintf("%s provider error (%s)", e.Provider, e.Kind)
	if e.Kind == ProviderErrorRateLimit && e.RetryAfter > 0 {
		msg += fmt.Sprintf(", retry after %s", e.RetryAfter)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap 让 errors.Is(err, ErrProvider) 与底层错误同时成立
func (e *ProviderError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrProvider}
	}
	return []error{ErrProvider, e.Err}
}
