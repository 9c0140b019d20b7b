package generator

import (
	"fmt"
	"strings"
	"time"
)

// Prompt 表示发送给 LLM 的消息集合。
type Prompt struct {
	System string
	User   string
	// WebSearch asks the provider to enable its search-grounding tool.
	WebSearch bool
}

// Sections are the five headings every briefing must contain, in order.
var Sections = []string{
	"## 📉 市場概況",
	"## 🇺🇸 美股焦點",
	"## 🌍 國際與地緣政治新聞",
	"## 🤖 科技與創新",
	"## 💡 關鍵要點",
}

var sectionHints = []string{
	"(指數、債券收益率、加密貨幣摘要)",
	"(漲跌幅排行榜、財報、板塊表現)",
	"(重大全球事件)",
	"(AI 新聞、重大發布)",
	"(3-5 個重點摘要)",
}

var weekdaysZH = [...]string{"星期日", "星期一", "星期二", "星期三", "星期四", "星期五", "星期六"}

// LongDate formats t the way zh-TW long dates read, e.g. 2024年5月1日 星期三.
func LongDate(t time.Time) string {
	return fmt.Sprintf("%d年%d月%d日 %s", t.Year(), int(t.Month()), t.Day(), weekdaysZH[t.Weekday()])
}

// BuildBriefingPrompt 生成每日简报提示词。model 只用于页脚署名。
func BuildBriefingPrompt(now time.Time, model string) Prompt {
	today := LongDate(now)

	var sb strings.Builder
	sb.WriteString("你是一位專業的金融分析師和新聞聚合專家。\n\n")
	sb.WriteString("任務:\n")
	sb.WriteString(fmt.Sprintf("1. 搜尋今天 (%s) 最新的美股市場表現 (S&P 500, Nasdaq, Dow Jones)，漲跌幅較大的股票以及關鍵經濟指標。\n", today))
	sb.WriteString("2. 搜尋影響全球市場的重大國際地緣政治新聞和頭條。\n")
	sb.WriteString("3. 搜尋重要的科技產業更新與新聞。\n\n")
	sb.WriteString("輸出要求:\n")
	sb.WriteString("請生成一份適合 Obsidian 使用的 Markdown 格式綜合每日摘要，並使用**繁體中文**撰寫。\n\n")
	sb.WriteString("結構:\n")
	sb.WriteString(fmt.Sprintf("# 📅 每日簡報: %s\n\n", today))
	for i, s := range Sections {
		sb.WriteString(s)
		sb.WriteString("\n")
		sb.WriteString(sectionHints[i])
		sb.WriteString("\n\n")
	}
	sb.WriteString("---\n")
	if model != "" {
		sb.WriteString(fmt.Sprintf("*由 %s 生成*\n", model))
	}

	return Prompt{
		System:    "直接輸出 Markdown，不要額外說明。",
		User:      sb.String(),
		WebSearch: true,
	}
}
