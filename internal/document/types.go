// Package document turns raw extracted text into a timed, annotated word
// sequence with the document's logical sections located inside it.
package document

import "time"

// SectionKind classifies a contiguous span of the word sequence.
type SectionKind int

const (
	KindNormal SectionKind = iota
	KindHeading
	KindBullet
	KindParagraph
)

func (k SectionKind) String() string {
	switch k {
	case KindHeading:
		return "heading"
	case KindBullet:
		return "bullet"
	case KindParagraph:
		return "paragraph"
	default:
		return "normal"
	}
}

// WordUnit is a single display unit. Immutable once produced.
//
// ORP indexes into the punctuation-stripped core of Text (0 for degenerate
// tokens). BaseDelayMs is a pre-speed-scaling dwell weight; the playback
// engine combines it with the WPM setting.
type WordUnit struct {
	Text               string
	ORP                int
	BaseDelayMs        int
	PunctuationPauseMs int
	IsLongWord         bool
}

// Section is a classified span of the word sequence. Sections are
// contiguous, ordered, and together cover [0, totalWords-1] for any
// non-empty document.
type Section struct {
	Title          string
	StartWordIndex int
	EndWordIndex   int
	Kind           SectionKind
}

// DocumentStructure is the assembled, read-only result of structuring.
// It is safe to share across sessions; nothing mutates it post-assembly.
type DocumentStructure struct {
	ID           string
	Title        string
	TotalWords   int
	Sections     []Section
	Words        []WordUnit
	CreatedAt    time.Time
	LastPosition int
}

// SectionAt returns the index of the section containing word position pos.
func (d *DocumentStructure) SectionAt(pos int) int {
	for i := len(d.Sections) - 1; i >= 0; i-- {
		if pos >= d.Sections[i].StartWordIndex {
			return i
		}
	}
	return 0
}
