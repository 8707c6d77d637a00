package summarize

import (
	"bytes"
	"encoding/json"
	"fmt"
	"text/template"

	"github.com/pep299/news-briefing/internal/llm"
	"github.com/pep299/news-briefing/internal/search"
)

// DefaultSystemPrompt sets the editor persona
const DefaultSystemPrompt = `你是一位科技主编，负责把当天的新闻素材整理成一份简报。`

// DefaultUserTemplate asks for an HTML fragment. Slots: {{.Count}} and {{.Items}}.
const DefaultUserTemplate = `请根据以下 {{.Count}} 条新闻素材，总结成一份简报。
要求：
1. 使用中文；
2. 语气专业且幽默；
3. 每个条目包含标题、精简总结、原文链接；
4. 只输出 HTML 片段（可使用 <h3>、<p>、<ul>、<li>、<a>、<strong>），不要输出 Markdown，不要使用代码块；
5. 如果素材为空，只输出一句“今日暂无值得关注的科技动态”。

素材如下：
{{.Items}}`

// promptSlots is the closed set of names a user template may reference
type promptSlots struct {
	Count int
	Items string
}

// Prompt turns a ResultSet into chat messages
type Prompt struct {
	system string
	tmpl   *template.Template
}

// NewPrompt parses userTemplate. Referencing a slot other than Count or Items
// is rejected at render time.
func NewPrompt(system, userTemplate string) (*Prompt, error) {
	tmpl, err := template.New("prompt").Option("missingkey=error").Parse(userTemplate)
	if err != nil {
		return nil, fmt.Errorf("parsing prompt template: %w", err)
	}
	return &Prompt{system: system, tmpl: tmpl}, nil
}

// DefaultPrompt returns the built-in prompt
func DefaultPrompt() *Prompt {
	p, err := NewPrompt(DefaultSystemPrompt, DefaultUserTemplate)
	if err != nil {
		panic(err)
	}
	return p
}

// Render serializes items and fills the template
func (p *Prompt) Render(items search.ResultSet) ([]llm.Message, error) {
	if items == nil {
		items = search.ResultSet{}
	}
	serialized, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("serializing items: %w", err)
	}

	var buf bytes.Buffer
	if err := p.tmpl.Execute(&buf, promptSlots{Count: len(items), Items: string(serialized)}); err != nil {
		return nil, fmt.Errorf("rendering prompt: %w", err)
	}

	var messages []llm.Message
	if p.system != "" {
		messages = append(messages, llm.Message{Role: llm.RoleSystem, Content: p.system})
	}
	return append(messages, llm.Message{Role: llm.RoleUser, Content: buf.String()}), nil
}
