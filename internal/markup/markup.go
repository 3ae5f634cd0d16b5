// Package markup renders generated assistant text. Only two constructs are
// recognised, **bold** spans and line breaks; everything else is plain text.
package markup

import (
	"html/template"
	"regexp"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"
)

// Segment is a run of text, or a line break when Break is set.
type Segment struct {
	Text  string
	Bold  bool
	Break bool
}

var ansiEscape = regexp.MustCompile(`\x1b(\[[0-9;?]*[ -/]*[@-~]|\][^\x07\x1b]*(\x07|\x1b\\)|[@-Z\\-_])`)

// sanitize drops escape sequences and control characters other than newlines.
func sanitize(text string) string {
	text = ansiEscape.ReplaceAllString(text, "")
	text = strings.ReplaceAll(text, "\r\n", "\n")
	return strings.Map(func(r rune) rune {
		switch {
		case r == '\n':
			return r
		case r == '\t':
			return ' '
		case r < 0x20 || r == 0x7f || (r >= 0x80 && r < 0xa0):
			return -1
		}
		return r
	}, text)
}

// Segments splits text into plain, bold and break segments. An unmatched
// "**" is kept as literal text.
func Segments(text string) []Segment {
	var segs []Segment
	for i, line := range strings.Split(sanitize(text), "\n") {
		if i > 0 {
			segs = append(segs, Segment{Break: true})
		}
		parts := strings.Split(line, "**")
		if len(parts)%2 == 0 {
			last := len(parts) - 1
			parts[last-1] += "**" + parts[last]
			parts = parts[:last]
		}
		for j, p := range parts {
			if p == "" {
				continue
			}
			segs = append(segs, Segment{Text: p, Bold: j%2 == 1})
		}
	}
	return segs
}

// Terminal renders text for the terminal, applying bold to bold spans and
// wrapping lines to width. A width <= 0 disables wrapping.
func Terminal(text string, bold lipgloss.Style, width int) string {
	var (
		lines []string
		line  strings.Builder
	)
	flush := func() {
		l := line.String()
		if width > 0 {
			l = wordwrap.String(l, width)
		}
		lines = append(lines, l)
		line.Reset()
	}
	for _, s := range Segments(text) {
		switch {
		case s.Break:
			flush()
		case s.Bold:
			line.WriteString(bold.Render(s.Text))
		default:
			line.WriteString(s.Text)
		}
	}
	flush()
	return strings.Join(lines, "\n")
}

// HTML renders text as escaped HTML. The only tags in the output are
// <strong> and <br>.
func HTML(text string) template.HTML {
	var b strings.Builder
	for _, s := range Segments(text) {
		switch {
		case s.Break:
			b.WriteString("<br>")
		case s.Bold:
			b.WriteString("<strong>")
			b.WriteString(template.HTMLEscapeString(s.Text))
			b.WriteString("</strong>")
		default:
			b.WriteString(template.HTMLEscapeString(s.Text))
		}
	}
	return template.HTML(b.String())
}
