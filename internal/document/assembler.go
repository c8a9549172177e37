package document

import (
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/aanujkhurana/backlog-reader/internal/config"
)

// Structure is the structuring entry point: clean, bounds-check, detect
// sections, tokenize, and assemble. Identical input yields identical words
// and sections; only the generated id differs between calls.
func Structure(raw, title string, cfg *config.Config) (*DocumentStructure, error) {
	cleaned := Clean(raw)
	if cleaned.WordCount == 0 {
		return nil, &StructuringError{
			Reason:   ReasonEmpty,
			MinWords: cfg.Structuring.MinWords,
			MaxWords: cfg.Structuring.MaxWords,
		}
	}
	if cleaned.WordCount < cfg.Structuring.MinWords {
		return nil, &StructuringError{
			Reason:    ReasonTooShort,
			WordCount: cleaned.WordCount,
			MinWords:  cfg.Structuring.MinWords,
			MaxWords:  cfg.Structuring.MaxWords,
		}
	}
	if cleaned.WordCount > cfg.Structuring.MaxWords {
		return nil, &StructuringError{
			Reason:    ReasonTooLong,
			WordCount: cleaned.WordCount,
			MinWords:  cfg.Structuring.MinWords,
			MaxWords:  cfg.Structuring.MaxWords,
		}
	}

	sections := DetectSections(cleaned.Content)
	words := Tokenize(cleaned.Content, cfg.Tokenizer)
	return Assemble(sections, words, title), nil
}

// Assemble merges detector and tokenizer output into one structure. The
// detector's index ranges are clamped against the word array rather than
// trusted, so a detector bug cannot produce an out-of-range section.
func Assemble(sections []Section, words []WordUnit, title string) *DocumentStructure {
	title = strings.TrimSpace(title)
	if title == "" {
		title = "Untitled"
	}

	total := len(words)
	clamped := make([]Section, 0, len(sections))
	for _, s := range sections {
		if s.StartWordIndex < 0 {
			s.StartWordIndex = 0
		}
		if s.StartWordIndex >= total {
			continue
		}
		if s.EndWordIndex > total-1 {
			s.EndWordIndex = total - 1
		}
		if s.EndWordIndex < s.StartWordIndex {
			continue
		}
		clamped = append(clamped, s)
	}
	if len(clamped) == 0 && total > 0 {
		clamped = append(clamped, Section{StartWordIndex: 0, EndWordIndex: total - 1, Kind: KindNormal})
	}

	return &DocumentStructure{
		ID:         newDocumentID(title),
		Title:      title,
		TotalWords: total,
		Sections:   clamped,
		Words:      words,
		CreatedAt:  time.Now(),
	}
}

var nonSlug = regexp.MustCompile(`[^a-z0-9-]+`)

func slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = nonSlug.ReplaceAllString(s, "-")
	for strings.Contains(s, "--") {
		s = strings.ReplaceAll(s, "--", "-")
	}
	return strings.Trim(s, "-")
}

// newDocumentID builds a slug-plus-suffix id so two documents sharing a
// title still get distinct identities.
func newDocumentID(title string) string {
	slug := slugify(title)
	if slug == "" {
		slug = "document"
	}
	return slug + "-" + uuid.NewString()[:8]
}
