package config

import (
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// NewLogger 按级别与格式创建 logrus 日志器，非法级别回落到 info
func NewLogger(level, format string) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stdout)

	parsed, err := logrus.ParseLevel(strings.TrimSpace(level))
	if err != nil {
		parsed = logrus.InfoLevel
	}
	logger.SetLevel(parsed)

	switch strings.ToLower(strings.TrimSpace(format)) {
	case "json":
		logger.SetFormatter(&logrus.JSONFormatter{TimestampFormat: "2006-01-02T15:04:05.000Z07:00"})
	default:
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return logger
}

// Logger 根据配置创建日志器
func (c AppConfig) Logger() *logrus.Logger {
	return NewLogger(c.LogLevel, c.LogFormat)
}
