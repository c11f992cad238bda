// Package markdown converts the constrained markdown subset the analysis
// service emits into HTML fragments: headings levels 1-3, bullet lists,
// horizontal rules, bold/italic emphasis and paragraphs. Anything outside
// the subset degrades to literal text; rendering never fails.
package markdown

import (
	"html"
	"regexp"
	"strings"
)

var (
	boldRe   = regexp.MustCompile(`\*\*([^*]+)\*\*`)
	italicRe = regexp.MustCompile(`\*([^*]+)\*`)
)

// Render converts text to an HTML fragment. Block elements appear one per
// line; consecutive bullet items share a single list container, including
// items separated only by blank lines.
func Render(text string) string {
	var out []string
	inList := false

	closeList := func() {
		if inList {
			out = append(out, "</ul>")
			inList = false
		}
	}

	for _, raw := range strings.Split(text, "\n") {
		line := strings.TrimSuffix(raw, "\r")

		switch {
		case strings.TrimSpace(line) == "":
			// Blank lines emit nothing and do not split a list:
			// back-to-back item runs merge into one container.
			continue
		case strings.HasPrefix(line, "* "):
			if !inList {
				out = append(out, "<ul>")
				inList = true
			}
			out = append(out, "<li>"+inline(line[2:])+"</li>")
		case strings.HasPrefix(line, "### "):
			closeList()
			out = append(out, "<h3>"+inline(line[4:])+"</h3>")
		case strings.HasPrefix(line, "## "):
			closeList()
			out = append(out, "<h2>"+inline(line[3:])+"</h2>")
		case strings.HasPrefix(line, "# "):
			closeList()
			out = append(out, "<h1>"+inline(line[2:])+"</h1>")
		case strings.TrimSpace(line) == "---":
			closeList()
			out = append(out, "<hr>")
		default:
			closeList()
			out = append(out, "<p>"+inline(line)+"</p>")
		}
	}
	closeList()

	return strings.Join(out, "\n")
}

// inline escapes the text and applies bold before italic so that a
// double-asterisk pair is never consumed as two italic markers. Unmatched
// markers fall through as literal asterisks.
func inline(s string) string {
	s = html.EscapeString(s)
	s = boldRe.ReplaceAllString(s, "<strong>$1</strong>")
	s = italicRe.ReplaceAllString(s, "<em>$1</em>")
	return s
}
