package generator

import (
	"context"
	"strings"
)

// MockLLM 一个简单的占位实现，便于本地调试，不调用外部模型。
type MockLLM struct{}

func (m MockLLM) Complete(_ context.Context, prompt Prompt) (Completion, error) {
	var sb strings.Builder
	// 复用提示词里的标题行，保证日期一致。
	for _, line := range strings.Split(prompt.User, "\n") {
		if strings.HasPrefix(line, "# ") {
			sb.WriteString(line)
			sb.WriteString("\n\n")
			break
		}
	}
	for _, s := range Sections {
		sb.WriteString(s)
		sb.WriteString("\n\n- 離線模式示例內容。\n\n")
	}
	sb.WriteString("---\n*由 MockLLM 生成*\n")

	return Completion{
		Text: sb.String(),
		Sources: []Source{
			{Title: "Example Markets", URI: "https://example.com/markets"},
		},
	}, nil
}
