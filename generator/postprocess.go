package generator

import (
	"regexp"
	"strings"
)

// FallbackContent replaces an empty model answer.
const FallbackContent = "無法生成摘要。"

var titleRe = regexp.MustCompile(`(?m)^#\s+(.+)$`)

// PostProcess 把模型输出整理成 Summary。空文本不算错误，使用占位内容。
func PostProcess(c Completion, date string) Summary {
	md := strings.TrimSpace(c.Text)
	if md == "" {
		md = FallbackContent
	}

	sources := make([]Source, 0, len(c.Sources))
	for _, s := range c.Sources {
		if s.URI == "" && s.Title == "" {
			continue
		}
		sources = append(sources, s)
	}

	return Summary{
		Date:    date,
		Title:   extractTitle(md),
		Content: md,
		Sources: sources,
	}
}

func extractTitle(md string) string {
	m := titleRe.FindStringSubmatch(md)
	if len(m) >= 2 {
		return strings.TrimSpace(m[1])
	}
	return ""
}
