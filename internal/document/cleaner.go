package document

import (
	"regexp"
	"strings"
)

var (
	pageNumberRe = regexp.MustCompile(`^(\d+|[Pp]age\s+\d+|\d+\s+of\s+\d+)$`)
	referencesRe = regexp.MustCompile(`(?i)^(references|bibliography|works cited|citations)\s*:?$`)
	hspaceRe     = regexp.MustCompile(`[ \t\x{00a0}]+`)
)

// CleanResult is the output of Clean.
type CleanResult struct {
	Content      string
	WordCount    int
	HasStructure bool
}

// Clean strips boilerplate from raw extracted text and normalizes its
// whitespace: line endings become \n, runs of horizontal whitespace collapse
// to one space, and blank-line runs cap at one. Standalone page-number lines
// are dropped, and everything from a references/bibliography marker onward
// is cut. Empty input yields a zero-value result, never an error.
func Clean(raw string) CleanResult {
	if strings.TrimSpace(raw) == "" {
		return CleanResult{}
	}

	raw = strings.ReplaceAll(raw, "\r\n", "\n")
	raw = strings.ReplaceAll(raw, "\r", "\n")

	var kept []string
	blanks := 0
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(hspaceRe.ReplaceAllString(line, " "))

		if referencesRe.MatchString(line) {
			break
		}
		if pageNumberRe.MatchString(line) {
			continue
		}

		if line == "" {
			blanks++
			if blanks > 1 || len(kept) == 0 {
				continue
			}
		} else {
			blanks = 0
		}
		kept = append(kept, line)
	}

	// Drop trailing blank lines left by the cap above.
	for len(kept) > 0 && kept[len(kept)-1] == "" {
		kept = kept[:len(kept)-1]
	}

	content := strings.Join(kept, "\n")
	return CleanResult{
		Content:      content,
		WordCount:    len(strings.Fields(content)),
		HasStructure: hasStructure(kept),
	}
}

// hasStructure reports whether the cleaned lines contain a heading-like
// line, a bullet-like line, or a blank-line-delimited paragraph break.
func hasStructure(lines []string) bool {
	for _, line := range lines {
		if line == "" || isBulletLine(line) || isHeadingLine(line) {
			return true
		}
	}
	return false
}
