package sanitize

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "no fences is only trimmed",
			input: "  <p>plain</p>\n",
			want:  "<p>plain</p>",
		},
		{
			name:  "inline html fence",
			input: "```html<p>Hi</p>```",
			want:  "<p>Hi</p>",
		},
		{
			name:  "fenced block with newlines",
			input: "```html\n<h2>Today</h2>\n<p>News</p>\n```\n",
			want:  "<h2>Today</h2>\n<p>News</p>",
		},
		{
			name:  "word glued to fence is content",
			input: "```Hello```",
			want:  "Hello",
		},
		{
			name:  "sentence glued to fence is content",
			input: "```Today's news: AI```",
			want:  "Today's news: AI",
		},
		{
			name:  "tag before json",
			input: "```json{\"a\":1}```",
			want:  "{\"a\":1}",
		},
		{
			name:  "tag with trailing spaces before newline",
			input: "```html  \n<p>x</p>\n```",
			want:  "<p>x</p>",
		},
		{
			name:  "lone opening fence with tag",
			input: "<p>x</p>\n```html",
			want:  "<p>x</p>",
		},
		{
			name:  "fence without language tag",
			input: "```\n<p>x</p>\n```",
			want:  "<p>x</p>",
		},
		{
			name:  "text around fences is kept",
			input: "Intro\n```json\n{\"a\":1}\n```\nOutro",
			want:  "Intro\n\n{\"a\":1}\n\nOutro",
		},
		{
			name:  "text right after closing fence is kept",
			input: "```html<p>a</p>```World",
			want:  "<p>a</p>World",
		},
		{
			name:  "multiple blocks",
			input: "```html<p>a</p>``` and ```markdown\n**b**\n```",
			want:  "<p>a</p> and \n**b**",
		},
		{
			name:  "unclosed fence",
			input: "```html\n<p>cut off",
			want:  "<p>cut off",
		},
		{
			name:  "longer fences",
			input: "````md\ntext\n````",
			want:  "text",
		},
		{
			name:  "inline code backticks survive",
			input: "use `go test` and ``x``",
			want:  "use `go test` and ``x``",
		},
		{
			name:  "empty",
			input: "",
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Sanitize(tt.input))
		})
	}
}

func TestSanitizeRemovesAllFences(t *testing.T) {
	inputs := []string{
		"```html<p>Hi</p>```",
		"``````",
		"```html```json```",
		"a``" + "```x" + "`b",
		"```go\nfmt.Println(\"```\")\n```",
		"`````` `` ```",
	}
	for _, input := range inputs {
		assert.NotContains(t, Sanitize(input), "```", "input %q", input)
	}
}

func TestSanitizeIdempotent(t *testing.T) {
	inputs := []string{
		"",
		"   ",
		"plain text",
		"```html<p>Hi</p>```",
		"```html\n<p>x</p>\n```\n\n",
		"a``" + "```x" + "`b",
		"```html```json```",
		"``````",
		"` `` ``` ```` `````",
		"  ```\n  padded\n```  ",
		strings.Repeat("```js\nx\n```\n", 5),
	}

	for _, input := range inputs {
		once := Sanitize(input)
		assert.Equal(t, once, Sanitize(once), "input %q", input)
	}
}

func TestSanitizePreservesEnclosedText(t *testing.T) {
	enclosed := "<h2>AI 新闻</h2>\n<ul><li><a href=\"http://x\">A</a>: 摘要</li></ul>"
	assert.Equal(t, enclosed, Sanitize("```html\n"+enclosed+"\n```"))
}
