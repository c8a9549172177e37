package document

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/aanujkhurana/backlog-reader/internal/config"
)

// Tokenize splits cleaned content on runs of whitespace and annotates each
// token with its ORP index, base dwell weight, and punctuation pause.
func Tokenize(content string, tc config.Tokenizer) []WordUnit {
	fields := strings.Fields(content)
	words := make([]WordUnit, 0, len(fields))
	for _, tok := range fields {
		words = append(words, newWordUnit(tok, tc))
	}
	return words
}

func newWordUnit(tok string, tc config.Tokenizer) WordUnit {
	rawLen := utf8.RuneCountInString(tok)
	coreLen := utf8.RuneCountInString(StripPunctuation(tok))
	return WordUnit{
		Text:               tok,
		ORP:                orpIndex(coreLen, tc),
		BaseDelayMs:        baseDelay(rawLen, tc),
		PunctuationPauseMs: punctuationPause(tok, tc),
		IsLongWord:         rawLen > tc.LongWordThreshold,
	}
}

// StripPunctuation trims leading and trailing punctuation and symbols,
// leaving the recognition core of the token.
func StripPunctuation(tok string) string {
	return strings.TrimFunc(tok, func(r rune) bool {
		return unicode.IsPunct(r) || unicode.IsSymbol(r)
	})
}

// orpIndex looks up the fixation index for a punctuation-stripped length.
// The tiers shift the point right as words lengthen, but sub-linearly.
func orpIndex(coreLen int, tc config.Tokenizer) int {
	if coreLen <= 0 {
		return 0
	}
	for _, t := range tc.ORPTiers {
		if coreLen <= t.MaxLen {
			return clampORP(t.Index, coreLen)
		}
	}
	return clampORP(int(float64(coreLen)*tc.ORPLongFactor), coreLen)
}

// clampORP enforces 0 <= orp < coreLen regardless of table contents.
func clampORP(orp, coreLen int) int {
	if orp < 0 {
		return 0
	}
	if orp >= coreLen {
		return coreLen - 1
	}
	return orp
}

func baseDelay(rawLen int, tc config.Tokenizer) int {
	for _, t := range tc.DelayTiers {
		if rawLen <= t.MaxLen {
			return t.DelayMs
		}
	}
	return tc.DefaultDelayMs
}

func punctuationPause(tok string, tc config.Tokenizer) int {
	last, _ := utf8.DecodeLastRuneInString(tok)
	switch last {
	case '.', '!', '?':
		return tc.SentencePauseMs
	case ',', ';', ':':
		return tc.ClausePauseMs
	default:
		return 0
	}
}

// EndsSentence reports whether the token carries terminal sentence
// punctuation.
func EndsSentence(tok string) bool {
	last, _ := utf8.DecodeLastRuneInString(tok)
	return last == '.' || last == '!' || last == '?'
}

// DisplayORP maps a word's core-relative ORP index onto the raw token,
// accounting for leading punctuation, so renderers can highlight the right
// rune.
func DisplayORP(w WordUnit) int {
	if StripPunctuation(w.Text) == "" {
		return 0
	}
	leading := 0
	for _, r := range w.Text {
		if !unicode.IsPunct(r) && !unicode.IsSymbol(r) {
			break
		}
		leading++
	}
	idx := leading + w.ORP
	if n := utf8.RuneCountInString(w.Text); idx >= n {
		idx = n - 1
	}
	if idx < 0 {
		idx = 0
	}
	return idx
}

// SentenceStarts returns the word indices that begin sentences, for
// sentence-level navigation.
func SentenceStarts(words []WordUnit) []int {
	starts := []int{0}
	for i, w := range words {
		if EndsSentence(w.Text) && i+1 < len(words) {
			starts = append(starts, i+1)
		}
	}
	return starts
}
