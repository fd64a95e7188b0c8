package service

import (
	"bytes"
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	goldhtml "github.com/yuin/goldmark/renderer/html"
)

var (
	descriptionEngine = goldmark.New(
		goldmark.WithExtensions(extension.GFM, extension.Linkify),
		goldmark.WithRendererOptions(goldhtml.WithHardWraps(), goldhtml.WithXHTML()),
	)
	descriptionSanitizer = bluemonday.UGCPolicy()
	plainTextPolicy      = bluemonday.StrictPolicy()
)

// sanitizeGoalDescription 去掉描述中的 HTML 标签，只保留纯文本
func sanitizeGoalDescription(raw string) string {
	cleaned := plainTextPolicy.Sanitize(raw)
	// StrictPolicy 会转义实体，这里还原成用户输入的字符
	return strings.TrimSpace(html.UnescapeString(cleaned))
}

// RenderGoalDescription 将目标描述按 Markdown 渲染为安全的 HTML
func RenderGoalDescription(description string) string {
	if strings.TrimSpace(description) == "" {
		return ""
	}

	var buf bytes.Buffer
	if err := descriptionEngine.Convert([]byte(description), &buf); err != nil {
		return html.EscapeString(description)
	}
	return strings.TrimSpace(descriptionSanitizer.Sanitize(buf.String()))
}
