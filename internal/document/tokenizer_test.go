package document

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/aanujkhurana/backlog-reader/internal/config"
)

func TestTokenizeORP(t *testing.T) {
	tc := config.Default().Tokenizer

	tests := []struct {
		word string
		want int
	}{
		{"a", 0},
		{"at", 0},
		{"cat", 0},
		{"word", 1},
		{"simple", 1},
		{"reading", 2},
		{"structure", 2},
		{"punctuated", 3},
		{"extraordinary", 3},
		{"comprehensible", 4},
		{"incomprehensibilities", 6}, // 21 letters, falls to the long-word factor
		{"cat,", 0},                  // punctuation stripped before lookup
		{"(word)", 1},
		{"—", 0}, // degenerate, nothing left after stripping
	}

	for _, tt := range tests {
		t.Run(tt.word, func(t *testing.T) {
			units := Tokenize(tt.word, tc)
			if len(units) != 1 {
				t.Fatalf("got %d units, want 1", len(units))
			}
			if units[0].ORP != tt.want {
				t.Errorf("ORP(%q) = %d, want %d", tt.word, units[0].ORP, tt.want)
			}
		})
	}
}

func TestTokenizeORPBounds(t *testing.T) {
	tc := config.Default().Tokenizer
	text := "a bb ccc dddd eeeee ffffff ggggggg hhhhhhhh iiiiiiiii " +
		"extraordinarily incomprehensibilities x.y.z !!! ...word..."

	for _, u := range Tokenize(text, tc) {
		coreLen := utf8.RuneCountInString(StripPunctuation(u.Text))
		limit := max(1, coreLen)
		if u.ORP < 0 || u.ORP >= limit {
			t.Errorf("ORP(%q) = %d, outside [0,%d)", u.Text, u.ORP, limit)
		}
	}
}

func TestTokenizeDelaysAndPauses(t *testing.T) {
	tc := config.Default().Tokenizer

	tests := []struct {
		word      string
		wantDelay int
		wantPause int
		wantLong  bool
	}{
		{"cat", 200, 0, false},
		{"simple", 250, 0, false},
		{"structure", 300, 0, true},
		{"complicated", 350, 0, true},
		{"done.", 250, 300, false},
		{"wait!", 250, 300, false},
		{"really?", 300, 300, false},
		{"first,", 250, 150, false},
		{"second;", 300, 150, false},
		{"third:", 250, 150, false},
		{"wonderful", 300, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.word, func(t *testing.T) {
			u := Tokenize(tt.word, tc)[0]
			if u.BaseDelayMs != tt.wantDelay {
				t.Errorf("BaseDelayMs = %d, want %d", u.BaseDelayMs, tt.wantDelay)
			}
			if u.PunctuationPauseMs != tt.wantPause {
				t.Errorf("PunctuationPauseMs = %d, want %d", u.PunctuationPauseMs, tt.wantPause)
			}
			if u.IsLongWord != tt.wantLong {
				t.Errorf("IsLongWord = %v, want %v", u.IsLongWord, tt.wantLong)
			}
		})
	}
}

func TestTokenizeSplitsOnWhitespace(t *testing.T) {
	tc := config.Default().Tokenizer
	units := Tokenize("Hello\n  world\tagain ", tc)
	if len(units) != 3 {
		t.Fatalf("got %d units, want 3", len(units))
	}
	for i, want := range []string{"Hello", "world", "again"} {
		if units[i].Text != want {
			t.Errorf("unit %d = %q, want %q", i, units[i].Text, want)
		}
	}
}

func TestDisplayORP(t *testing.T) {
	tc := config.Default().Tokenizer
	tests := []struct {
		word string
		want int
	}{
		{"cat", 0},
		{"(cat)", 1}, // leading paren shifts the fixation rune right
		{"\"word\"", 2},
		{"...", 0},
	}
	for _, tt := range tests {
		t.Run(tt.word, func(t *testing.T) {
			u := Tokenize(tt.word, tc)[0]
			if got := DisplayORP(u); got != tt.want {
				t.Errorf("DisplayORP(%q) = %d, want %d", tt.word, got, tt.want)
			}
		})
	}
}

func TestSentenceStarts(t *testing.T) {
	tc := config.Default().Tokenizer
	units := Tokenize("One two. Three four! Five six? Seven", tc)
	got := SentenceStarts(units)
	want := []int{0, 2, 4, 6}
	if len(got) != len(want) {
		t.Fatalf("SentenceStarts = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("SentenceStarts[%d] = %d, want %d", i, got[i], want[i])
		}
	}
}

func BenchmarkTokenize(b *testing.B) {
	tc := config.Default().Tokenizer
	text := strings.Repeat("The quick brown fox jumps over the extraordinarily lazy dog. ", 200)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		Tokenize(text, tc)
	}
}
