package playback

import (
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/aanujkhurana/backlog-reader/internal/config"
	"github.com/aanujkhurana/backlog-reader/internal/document"
)

// slowPlayback keeps frames effectively infinite so control-flow tests are
// not racing the advance loop.
func slowPlayback() config.Playback {
	pb := config.Default().Playback
	pb.ReferenceDelayMs = 1 // weight >> 1, frames run to minutes
	return pb
}

// fastPlayback pins every frame to the 1ms floor so completion tests run
// quickly.
func fastPlayback() config.Playback {
	pb := config.Default().Playback
	pb.ReferenceDelayMs = 250_000
	pb.BulletPauseMs = 0
	pb.ParagraphPauseMs = 0
	return pb
}

func mustDoc(t *testing.T, text string) *document.DocumentStructure {
	t.Helper()
	doc, err := document.Structure(text, "test", config.Default())
	if err != nil {
		t.Fatalf("Structure: %v", err)
	}
	return doc
}

// recorder collects events and closes done on the first SessionEnded.
type recorder struct {
	mu     sync.Mutex
	events []Event
	once   sync.Once
	done   chan struct{}
}

func newRecorder() *recorder {
	return &recorder{done: make(chan struct{})}
}

func (r *recorder) record(ev Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
	if _, ok := ev.(SessionEnded); ok {
		r.once.Do(func() { close(r.done) })
	}
}

func (r *recorder) snapshot() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

func (r *recorder) reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = nil
}

func TestStartReadingRejectsEmptyDocument(t *testing.T) {
	e := NewEngine(slowPlayback(), nil)

	err := e.StartReading(nil, 0)
	if !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("nil doc: err = %v, want ErrInvalidArgument", err)
	}

	err = e.StartReading(&document.DocumentStructure{}, 0)
	if !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("zero-word doc: err = %v, want ErrInvalidArgument", err)
	}
	if e.State() != Idle {
		t.Errorf("state = %v after rejected start, want idle", e.State())
	}
}

func TestStartReadingClampsPosition(t *testing.T) {
	doc := mustDoc(t, "alpha beta gamma delta epsilon")

	tests := []struct {
		start int
		want  int
	}{
		{-3, 0},
		{0, 0},
		{2, 2},
		{100, 4},
	}
	for _, tt := range tests {
		e := NewEngine(slowPlayback(), nil)
		if err := e.StartReading(doc, tt.start); err != nil {
			t.Fatalf("StartReading(%d): %v", tt.start, err)
		}
		if pos, _ := e.CurrentPosition(); pos != tt.want {
			t.Errorf("StartReading(%d): position = %d, want %d", tt.start, pos, tt.want)
		}
		_ = e.StopReading()
	}
}

func TestStartReadingWhileActive(t *testing.T) {
	doc := mustDoc(t, "alpha beta gamma")
	e := NewEngine(slowPlayback(), nil)
	if err := e.StartReading(doc, 0); err != nil {
		t.Fatalf("StartReading: %v", err)
	}
	if err := e.StartReading(doc, 0); !errors.Is(err, ErrInvalidSessionState) {
		t.Errorf("second start: err = %v, want ErrInvalidSessionState", err)
	}
}

func TestPauseResumePreservesPosition(t *testing.T) {
	doc := mustDoc(t, "alpha beta gamma delta epsilon")
	e := NewEngine(slowPlayback(), nil)
	if err := e.StartReading(doc, 2); err != nil {
		t.Fatalf("StartReading: %v", err)
	}

	if err := e.PauseReading(); err != nil {
		t.Fatalf("PauseReading: %v", err)
	}
	if e.State() != Paused {
		t.Errorf("state = %v, want paused", e.State())
	}
	before, _ := e.CurrentPosition()

	if err := e.ResumeReading(); err != nil {
		t.Fatalf("ResumeReading: %v", err)
	}
	if e.State() != Reading {
		t.Errorf("state = %v, want reading", e.State())
	}
	after, _ := e.CurrentPosition()
	if before != after {
		t.Errorf("position changed across pause/resume: %d != %d", before, after)
	}
}

func TestWrongStateOperations(t *testing.T) {
	doc := mustDoc(t, "alpha beta gamma")

	t.Run("idle engine", func(t *testing.T) {
		e := NewEngine(slowPlayback(), nil)
		if err := e.PauseReading(); !errors.Is(err, ErrInvalidSessionState) {
			t.Errorf("pause: %v", err)
		}
		if err := e.ResumeReading(); !errors.Is(err, ErrInvalidSessionState) {
			t.Errorf("resume: %v", err)
		}
		if _, err := e.AdjustSpeed(1); !errors.Is(err, ErrInvalidSessionState) {
			t.Errorf("adjust: %v", err)
		}
		if _, err := e.JumpToPosition(1); !errors.Is(err, ErrInvalidSessionState) {
			t.Errorf("jump: %v", err)
		}
		if err := e.StopReading(); !errors.Is(err, ErrInvalidSessionState) {
			t.Errorf("stop: %v", err)
		}
	})

	t.Run("resume while reading", func(t *testing.T) {
		e := NewEngine(slowPlayback(), nil)
		if err := e.StartReading(doc, 0); err != nil {
			t.Fatal(err)
		}
		if err := e.ResumeReading(); !errors.Is(err, ErrInvalidSessionState) {
			t.Errorf("resume: %v", err)
		}
	})

	t.Run("pause while paused", func(t *testing.T) {
		e := NewEngine(slowPlayback(), nil)
		if err := e.StartReading(doc, 0); err != nil {
			t.Fatal(err)
		}
		if err := e.PauseReading(); err != nil {
			t.Fatal(err)
		}
		if err := e.PauseReading(); !errors.Is(err, ErrInvalidSessionState) {
			t.Errorf("second pause: %v", err)
		}
	})
}

func TestAdjustSpeed(t *testing.T) {
	doc := mustDoc(t, "alpha beta gamma")
	e := NewEngine(slowPlayback(), nil)
	if err := e.StartReading(doc, 0); err != nil {
		t.Fatal(err)
	}

	wpm, err := e.AdjustSpeed(1)
	if err != nil || wpm != 325 {
		t.Errorf("AdjustSpeed(1) = %d, %v, want 325", wpm, err)
	}
	wpm, _ = e.AdjustSpeed(-2)
	if wpm != 275 {
		t.Errorf("AdjustSpeed(-2) = %d, want 275", wpm)
	}

	// Repeated large deltas converge to the bounds, never beyond.
	for i := 0; i < 5; i++ {
		wpm, _ = e.AdjustSpeed(100)
	}
	if wpm != 600 {
		t.Errorf("speed ceiling = %d, want 600", wpm)
	}
	for i := 0; i < 5; i++ {
		wpm, _ = e.AdjustSpeed(-100)
	}
	if wpm != 100 {
		t.Errorf("speed floor = %d, want 100", wpm)
	}
}

func TestAdjustSpeedRejectsNonFinite(t *testing.T) {
	doc := mustDoc(t, "alpha beta gamma")
	e := NewEngine(slowPlayback(), nil)
	if err := e.StartReading(doc, 0); err != nil {
		t.Fatal(err)
	}

	for _, delta := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		if _, err := e.AdjustSpeed(delta); !errors.Is(err, ErrInvalidArgument) {
			t.Errorf("AdjustSpeed(%v): err = %v, want ErrInvalidArgument", delta, err)
		}
	}
	if s, _ := e.Session(); s.BaseSpeedWPM != 300 {
		t.Errorf("speed mutated by rejected call: %d", s.BaseSpeedWPM)
	}
}

func TestJumpToPositionClamps(t *testing.T) {
	words := make([]string, 20)
	for i := range words {
		words[i] = "word"
	}
	doc := mustDoc(t, joinWords(words))

	e := NewEngine(slowPlayback(), nil)
	if err := e.StartReading(doc, 5); err != nil {
		t.Fatal(err)
	}

	if pos, err := e.JumpToPosition(-5); err != nil || pos != 0 {
		t.Errorf("JumpToPosition(-5) = %d, %v, want 0", pos, err)
	}
	if pos, err := e.JumpToPosition(1000); err != nil || pos != 19 {
		t.Errorf("JumpToPosition(1000) = %d, %v, want 19", pos, err)
	}
	if pos, _ := e.CurrentPosition(); pos != 19 {
		t.Errorf("position = %d, want 19", pos)
	}
}

func TestMonotonicPlaybackAndCompletion(t *testing.T) {
	doc := mustDoc(t, "alpha beta gamma delta epsilon zeta")
	e := NewEngine(fastPlayback(), nil)
	rec := newRecorder()
	defer e.Subscribe(rec.record)()

	if err := e.StartReading(doc, 0); err != nil {
		t.Fatal(err)
	}

	select {
	case <-rec.done:
	case <-time.After(5 * time.Second):
		t.Fatal("playback did not complete")
	}

	if e.State() != Completed {
		t.Errorf("state = %v, want completed", e.State())
	}
	if _, ok := e.Session(); ok {
		t.Error("session still present after completion")
	}

	var positions []int
	ended := 0
	for _, ev := range rec.snapshot() {
		switch ev := ev.(type) {
		case PositionChanged:
			positions = append(positions, ev.Index)
		case SessionEnded:
			ended++
		}
	}
	if ended != 1 {
		t.Errorf("session-ended emitted %d times, want exactly 1", ended)
	}
	for i := 1; i < len(positions); i++ {
		if positions[i] != positions[i-1]+1 {
			t.Fatalf("position not strictly monotonic: %v", positions)
		}
	}
	if len(positions) != doc.TotalWords {
		t.Errorf("saw %d positions, want %d", len(positions), doc.TotalWords)
	}
}

func TestSectionBoundaryEventOnAutoAdvance(t *testing.T) {
	doc := mustDoc(t, "Overview\nalpha beta gamma\nSummary Points\ndelta epsilon")
	if len(doc.Sections) != 2 {
		t.Fatalf("test document has %d sections, want 2: %+v", len(doc.Sections), doc.Sections)
	}

	e := NewEngine(fastPlayback(), nil)
	rec := newRecorder()
	defer e.Subscribe(rec.record)()

	if err := e.StartReading(doc, 0); err != nil {
		t.Fatal(err)
	}
	select {
	case <-rec.done:
	case <-time.After(5 * time.Second):
		t.Fatal("playback did not complete")
	}

	var crossings []SectionBoundaryCrossed
	for _, ev := range rec.snapshot() {
		if c, ok := ev.(SectionBoundaryCrossed); ok {
			crossings = append(crossings, c)
		}
	}
	if len(crossings) != 1 {
		t.Fatalf("got %d boundary events, want 1: %+v", len(crossings), crossings)
	}
	if crossings[0].SectionIndex != 0 {
		t.Errorf("completed section = %d, want 0", crossings[0].SectionIndex)
	}
	if want := doc.Sections[1].StartWordIndex; crossings[0].Position != want {
		t.Errorf("boundary position = %d, want %d", crossings[0].Position, want)
	}
}

func TestJumpDoesNotEmitBoundaryEvent(t *testing.T) {
	doc := mustDoc(t, "Overview\nalpha beta gamma\nSummary Points\ndelta epsilon")
	e := NewEngine(slowPlayback(), nil)
	rec := newRecorder()
	defer e.Subscribe(rec.record)()

	if err := e.StartReading(doc, 0); err != nil {
		t.Fatal(err)
	}
	if err := e.PauseReading(); err != nil {
		t.Fatal(err)
	}

	rec.reset()
	if _, err := e.JumpToPosition(doc.TotalWords - 1); err != nil {
		t.Fatal(err)
	}

	for _, ev := range rec.snapshot() {
		if _, ok := ev.(SectionBoundaryCrossed); ok {
			t.Error("explicit jump emitted a section boundary event")
		}
	}
}

func TestStopReadingReleasesSession(t *testing.T) {
	doc := mustDoc(t, "alpha beta gamma")
	e := NewEngine(slowPlayback(), nil)
	if err := e.StartReading(doc, 0); err != nil {
		t.Fatal(err)
	}
	if err := e.StopReading(); err != nil {
		t.Fatalf("StopReading: %v", err)
	}
	if e.State() != Idle {
		t.Errorf("state = %v, want idle", e.State())
	}
	if _, ok := e.Session(); ok {
		t.Error("session still present after stop")
	}

	// The engine is reusable for a fresh session.
	if err := e.StartReading(doc, 0); err != nil {
		t.Errorf("restart after stop: %v", err)
	}
}

func TestRestartAfterCompletion(t *testing.T) {
	doc := mustDoc(t, "alpha beta gamma")
	e := NewEngine(fastPlayback(), nil)
	rec := newRecorder()
	defer e.Subscribe(rec.record)()

	if err := e.StartReading(doc, 0); err != nil {
		t.Fatal(err)
	}
	select {
	case <-rec.done:
	case <-time.After(5 * time.Second):
		t.Fatal("playback did not complete")
	}

	if err := e.PauseReading(); !errors.Is(err, ErrInvalidSessionState) {
		t.Errorf("pause after completion: %v", err)
	}

	if err := e.StartReading(doc, 0); err != nil {
		t.Errorf("restart after completion: %v", err)
	}
}

func TestWordDisplayedTiming(t *testing.T) {
	doc := mustDoc(t, "go extraordinary stop.")
	e := NewEngine(slowPlayback(), nil)
	rec := newRecorder()
	defer e.Subscribe(rec.record)()

	if err := e.StartReading(doc, 0); err != nil {
		t.Fatal(err)
	}

	events := rec.snapshot()
	if len(events) == 0 {
		t.Fatal("no events after start")
	}
	wd, ok := events[0].(WordDisplayed)
	if !ok {
		t.Fatalf("first event = %T, want WordDisplayed", events[0])
	}
	if wd.Word != "go" {
		t.Errorf("word = %q, want go", wd.Word)
	}
	if wd.DurationMs <= 0 {
		t.Errorf("duration = %d, want positive", wd.DurationMs)
	}
	if wd.PauseAfterMs != 0 {
		t.Errorf("pause = %d, want 0", wd.PauseAfterMs)
	}

	// A sentence-ending word carries punctuation and paragraph pause.
	rec.reset()
	if _, err := e.JumpToPosition(2); err != nil {
		t.Fatal(err)
	}
	wd, ok = rec.snapshot()[0].(WordDisplayed)
	if !ok {
		t.Fatal("expected WordDisplayed after jump")
	}
	want := 300 + config.Default().Playback.ParagraphPauseMs
	if wd.PauseAfterMs != want {
		t.Errorf("pause = %d, want %d", wd.PauseAfterMs, want)
	}
}

func joinWords(words []string) string {
	out := ""
	for i, w := range words {
		if i > 0 {
			out += " "
		}
		out += w
	}
	return out
}
