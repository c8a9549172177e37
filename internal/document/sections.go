package document

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	maxHeadingWords = 8
	maxHeadingRunes = 60
)

var enumeratorRe = regexp.MustCompile(`^\d+\.(\s|$)`)

// DetectSections walks already-cleaned text line by line, classifying
// contiguous runs into heading, bullet, and normal sections indexed against
// the same word-count axis the tokenizer uses.
//
// The classification is a best-effort heuristic, not a parser: an all-caps
// short sentence that is not actually a heading will be misclassified, and
// that is accepted.
func DetectSections(content string) []Section {
	var (
		sections []Section
		current  *Section
		wordIdx  int
	)

	closeCurrent := func() {
		if current == nil {
			return
		}
		current.EndWordIndex = wordIdx - 1
		if current.EndWordIndex >= current.StartWordIndex {
			sections = append(sections, *current)
		}
		current = nil
	}
	open := func(kind SectionKind, title string) {
		closeCurrent()
		current = &Section{Title: title, StartWordIndex: wordIdx, Kind: kind}
	}

	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		switch {
		case isBulletLine(line):
			// Consecutive bullet lines extend one open Bullet section.
			if current == nil || current.Kind != KindBullet {
				open(KindBullet, "")
			}
		case isHeadingLine(line):
			// A heading section absorbs the prose that follows it,
			// up to the next heading or bullet run.
			open(KindHeading, line)
		default:
			if current == nil || current.Kind == KindBullet {
				open(KindNormal, "")
			}
		}

		wordIdx += len(strings.Fields(line))
	}
	closeCurrent()

	if len(sections) == 0 && wordIdx > 0 {
		sections = []Section{{StartWordIndex: 0, EndWordIndex: wordIdx - 1, Kind: KindNormal}}
	}
	return sections
}

// isBulletLine reports whether the line starts with a bullet glyph followed
// by whitespace.
func isBulletLine(line string) bool {
	r, size := utf8.DecodeRuneInString(line)
	if r != '•' && r != '-' && r != '*' {
		return false
	}
	next, _ := utf8.DecodeRuneInString(line[size:])
	return unicode.IsSpace(next)
}

// isHeadingLine applies the heading heuristics: a short line starting with
// a capital and carrying no terminal sentence punctuation, a substantially
// uppercase line, or an enumerated line such as "3. Results".
func isHeadingLine(line string) bool {
	if line == "" || isBulletLine(line) {
		return false
	}
	if enumeratorRe.MatchString(line) {
		return true
	}
	if mostlyUppercase(line) {
		return true
	}

	if utf8.RuneCountInString(line) > maxHeadingRunes {
		return false
	}
	if len(strings.Fields(line)) > maxHeadingWords {
		return false
	}
	first, _ := utf8.DecodeRuneInString(line)
	if !unicode.IsUpper(first) {
		return false
	}
	last, _ := utf8.DecodeLastRuneInString(line)
	return last != '.' && last != '!' && last != '?'
}

// mostlyUppercase reports whether at least 80% of the line's letters are
// uppercase. Lines without letters do not qualify.
func mostlyUppercase(line string) bool {
	var letters, upper int
	for _, r := range line {
		if unicode.IsLetter(r) {
			letters++
			if unicode.IsUpper(r) {
				upper++
			}
		}
	}
	return letters > 0 && float64(upper)/float64(letters) >= 0.8
}
