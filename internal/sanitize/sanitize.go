// Package sanitize removes formatting artifacts that models wrap around their answers.
package sanitize

import (
	"regexp"
	"strings"
)

var (
	// fenceRe matches a run of three or more backticks
	fenceRe = regexp.MustCompile("`{3,}")
	// langTagRe matches a language tag directly after an opening fence (```html, ```json)
	langTagRe = regexp.MustCompile(`^[A-Za-z0-9_+#.-]+`)
)

// Sanitize strips every code-fence marker and trims surrounding whitespace.
// Fences are paired in order of appearance; only an opening fence takes a
// language tag with it, so text right after a closing fence is kept. A word
// glued to an opening fence is a tag only when a line break, the end of the
// text, or the start of markup or JSON follows it.
// The result never contains a run of three backticks, which makes
// Sanitize(Sanitize(s)) == Sanitize(s).
func Sanitize(text string) string {
	fences := fenceRe.FindAllStringIndex(text, -1)
	if len(fences) == 0 {
		return strings.TrimSpace(text)
	}

	var sb strings.Builder
	sb.Grow(len(text))

	pos := 0
	for i, fence := range fences {
		start, end := fence[0], fence[1]
		if start < pos {
			continue
		}
		sb.WriteString(text[pos:start])
		pos = end

		if i%2 == 0 {
			next := len(text)
			if i+1 < len(fences) {
				next = fences[i+1][0]
			}
			if tag := langTagRe.FindString(text[pos:next]); tag != "" && isLangTag(text, pos+len(tag)) {
				pos += len(tag)
			}
		}
	}
	sb.WriteString(text[pos:])

	return strings.TrimSpace(sb.String())
}

// isLangTag reports whether a word ending at i is followed by what can only
// come after a language tag
func isLangTag(text string, i int) bool {
	if i < len(text) && strings.IndexByte("<{[", text[i]) >= 0 {
		return true
	}
	rest := strings.TrimLeft(text[i:], " \t")
	return rest == "" || rest[0] == '\n' || rest[0] == '\r'
}
