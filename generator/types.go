package generator

// Source 是一次搜索落地（grounding）返回的引用。
type Source struct {
	Title string `json:"title"`
	URI   string `json:"uri"`
}

// Summary is one generated briefing. It is not modified after creation.
type Summary struct {
	Date    string   `json:"date"`
	Title   string   `json:"title,omitempty"`
	Content string   `json:"content"`
	Sources []Source `json:"sources"`
}

// Completion is the raw model output before post-processing.
type Completion struct {
	Text    string
	Sources []Source
}
