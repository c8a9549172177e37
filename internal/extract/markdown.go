package extract

import (
	"os"
	"regexp"
	"strings"
)

// MarkdownFormat implements Format for Markdown files.
type MarkdownFormat struct{}

func init() {
	Register(&MarkdownFormat{})
}

func (f *MarkdownFormat) Name() string         { return "Markdown" }
func (f *MarkdownFormat) Extensions() []string { return []string{".md", ".markdown"} }

var (
	headerRe   = regexp.MustCompile(`^(#{1,6})\s+(.+)$`)
	emphasisRe = regexp.MustCompile(`(\*\*|__|` + "`" + `)`)
)

// Extract reads a Markdown file and downgrades its syntax to plain lines:
// ATX header markers are stripped so the heading text stands alone, and
// emphasis markers are removed. Bullet glyphs are left in place so list
// structure survives into section detection.
func (f *MarkdownFormat) Extract(filename string) (string, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return "", err
	}

	lines := strings.Split(string(data), "\n")
	for i, line := range lines {
		if m := headerRe.FindStringSubmatch(strings.TrimSpace(line)); m != nil {
			line = strings.TrimSpace(strings.TrimRight(m[2], "#"))
		}
		lines[i] = emphasisRe.ReplaceAllString(line, "")
	}
	return strings.Join(lines, "\n"), nil
}
