package report

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"regexp"
	"strings"
	"time"
)

//go:embed templates/report.html.tmpl
var templateFS embed.FS

// TimestampLayout is how the update time is printed on the page
const TimestampLayout = "2006-01-02 15:04:05"

// structuralRe detects block-level markup in model output
var structuralRe = regexp.MustCompile(`(?i)<(p|div|ul|ol|li|h[1-6]|table|br|section|article|blockquote|pre|hr)[\s>/]`)

// Metadata fills the non-content slots. Zero values render as empty strings.
type Metadata struct {
	Title     string
	Locale    string
	Timestamp time.Time
	Location  *time.Location
	Footer    string
}

// slots is the closed set of names the template can reference
type slots struct {
	Title     string
	Locale    string
	Timestamp string
	Content   template.HTML
	Footer    string
}

// RenderError wraps a template execution failure
type RenderError struct {
	Cause error
}

func (e *RenderError) Error() string {
	return "rendering report: " + e.Cause.Error()
}

func (e *RenderError) Unwrap() error {
	return e.Cause
}

// Renderer embeds sanitized content into the page template
type Renderer struct {
	tmpl *template.Template
}

// NewRenderer parses the built-in page template
func NewRenderer() (*Renderer, error) {
	tmpl, err := template.New("report.html.tmpl").Option("missingkey=error").ParseFS(templateFS, "templates/report.html.tmpl")
	if err != nil {
		return nil, fmt.Errorf("parsing report template: %w", err)
	}
	return &Renderer{tmpl: tmpl}, nil
}

// Render produces the full document. Content is trusted HTML from the model,
// everything in meta is escaped.
func (r *Renderer) Render(content string, meta Metadata) (string, error) {
	data := slots{
		Title:   meta.Title,
		Locale:  meta.Locale,
		Content: template.HTML(NormalizeLineBreaks(content)),
		Footer:  meta.Footer,
	}
	if !meta.Timestamp.IsZero() {
		loc := meta.Location
		if loc == nil {
			loc = time.UTC
		}
		data.Timestamp = meta.Timestamp.In(loc).Format(TimestampLayout)
	}

	var buf bytes.Buffer
	if err := r.tmpl.Execute(&buf, data); err != nil {
		return "", &RenderError{Cause: err}
	}
	return buf.String(), nil
}

// NormalizeLineBreaks turns raw newlines into <br> unless the content already
// carries block-level markup, in which case it is returned verbatim.
func NormalizeLineBreaks(content string) string {
	if structuralRe.MatchString(content) {
		return content
	}
	content = strings.ReplaceAll(content, "\r\n", "\n")
	return strings.ReplaceAll(content, "\n", "<br>")
}
