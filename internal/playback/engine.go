// Package playback drives a timed walk over an assembled word sequence.
//
// The engine is a cooperative state machine: a single pending timer
// advances the position, and every tick reads current session state rather
// than closing over values captured at schedule time, so seeks and speed
// changes made between ticks take effect on the next frame.
package playback

import (
	"io"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/aanujkhurana/backlog-reader/internal/config"
	"github.com/aanujkhurana/backlog-reader/internal/document"
)

// State is the engine lifecycle state.
type State int

const (
	Idle State = iota
	Reading
	Paused
	Completed
)

func (s State) String() string {
	switch s {
	case Reading:
		return "reading"
	case Paused:
		return "paused"
	case Completed:
		return "completed"
	default:
		return "idle"
	}
}

// Session holds the mutable per-reading state. It exists only between
// StartReading and StopReading or natural completion, and its position is
// always a valid word index.
type Session struct {
	DocumentID      string
	StartTime       time.Time
	CurrentPosition int
	BaseSpeedWPM    int
	IsPaused        bool
}

// Engine owns playback state for one session at a time. It borrows the
// DocumentStructure for the session's lifetime and never mutates it.
type Engine struct {
	mu  sync.Mutex
	cfg config.Playback
	log *slog.Logger

	state      State
	doc        *document.DocumentStructure
	session    *Session
	sectionIdx int

	timer *time.Timer
	gen   uint64 // bumped to invalidate any pending tick

	subs    map[int]func(Event)
	nextSub int
}

// NewEngine returns an engine with no active session. A nil logger
// discards.
func NewEngine(cfg config.Playback, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Engine{
		cfg:  cfg,
		log:  logger,
		subs: make(map[int]func(Event)),
	}
}

// State returns the current lifecycle state.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Session returns a copy of the active session, if any.
func (e *Engine) Session() (Session, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.session == nil {
		return Session{}, false
	}
	return *e.session, true
}

// CurrentPosition returns the active session's word index.
func (e *Engine) CurrentPosition() (int, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.session == nil {
		return 0, false
	}
	return e.session.CurrentPosition, true
}

// StartReading creates a session over doc at startPos (clamped) and begins
// the advance loop. Valid from Idle or Completed; a zero-word document is
// rejected without a state transition.
func (e *Engine) StartReading(doc *document.DocumentStructure, startPos int) error {
	e.mu.Lock()
	if e.state != Idle && e.state != Completed {
		st := e.state
		e.mu.Unlock()
		return &SessionStateError{Op: "start reading", State: st}
	}
	if doc == nil || doc.TotalWords == 0 {
		e.mu.Unlock()
		return &ValidationError{Op: "start reading", Detail: "document has no words"}
	}

	startPos = clamp(startPos, 0, doc.TotalWords-1)
	e.doc = doc
	e.session = &Session{
		DocumentID:      doc.ID,
		StartTime:       time.Now(),
		CurrentPosition: startPos,
		BaseSpeedWPM:    clamp(e.cfg.DefaultWPM, e.cfg.MinWPM, e.cfg.MaxWPM),
	}
	e.state = Reading
	e.sectionIdx = doc.SectionAt(startPos)
	e.gen++

	e.log.Debug("session started", "doc", doc.ID, "position", startPos, "wpm", e.session.BaseSpeedWPM)

	gen := e.gen
	f := e.frameLocked()
	events := []Event{
		f.wordDisplayed(),
		PositionChanged{Index: startPos, Total: doc.TotalWords},
	}
	fns := e.subscribersLocked()
	e.mu.Unlock()

	deliver(fns, events)
	e.schedule(gen, f.total())
	return nil
}

// PauseReading freezes the session: the pending tick is dropped rather
// than any in-flight wait suspended, so resume re-enters the loop at the
// same word.
func (e *Engine) PauseReading() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state != Reading {
		return &SessionStateError{Op: "pause reading", State: e.state}
	}
	e.state = Paused
	e.session.IsPaused = true
	e.cancelTickLocked()
	e.log.Debug("session paused", "position", e.session.CurrentPosition)
	return nil
}

// ResumeReading restarts the advance loop from the frozen position.
func (e *Engine) ResumeReading() error {
	e.mu.Lock()
	if e.state != Paused {
		st := e.state
		e.mu.Unlock()
		return &SessionStateError{Op: "resume reading", State: st}
	}
	e.state = Reading
	e.session.IsPaused = false
	e.gen++
	gen := e.gen

	f := e.frameLocked()
	e.log.Debug("session resumed", "position", e.session.CurrentPosition)
	events := []Event{f.wordDisplayed()}
	fns := e.subscribersLocked()
	e.mu.Unlock()

	deliver(fns, events)
	e.schedule(gen, f.total())
	return nil
}

// AdjustSpeed shifts the session speed by deltaSteps fixed increments and
// returns the resulting WPM, clamped into the configured range. The change
// is visible to the next scheduled tick; the pending one is not touched.
func (e *Engine) AdjustSpeed(deltaSteps float64) (int, error) {
	if math.IsNaN(deltaSteps) || math.IsInf(deltaSteps, 0) {
		return 0, &ValidationError{Op: "adjust speed", Detail: "non-finite delta"}
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.session == nil {
		return 0, &SessionStateError{Op: "adjust speed", State: e.state}
	}
	wpm := e.session.BaseSpeedWPM + int(deltaSteps*float64(e.cfg.StepWPM))
	wpm = clamp(wpm, e.cfg.MinWPM, e.cfg.MaxWPM)
	e.session.BaseSpeedWPM = wpm
	e.log.Debug("speed adjusted", "wpm", wpm)
	return wpm, nil
}

// JumpToPosition moves the session to index (clamped) and returns the
// landing position. An explicit jump re-resolves the current section
// silently; it never emits a boundary event.
func (e *Engine) JumpToPosition(index int) (int, error) {
	e.mu.Lock()
	if e.session == nil {
		st := e.state
		e.mu.Unlock()
		return 0, &SessionStateError{Op: "jump to position", State: st}
	}
	index = clamp(index, 0, e.doc.TotalWords-1)
	e.session.CurrentPosition = index
	e.sectionIdx = e.doc.SectionAt(index)

	f := e.frameLocked()
	events := []Event{
		f.wordDisplayed(),
		PositionChanged{Index: index, Total: e.doc.TotalWords},
	}
	fns := e.subscribersLocked()
	e.mu.Unlock()

	deliver(fns, events)
	return index, nil
}

// StopReading cancels any pending tick and releases the session.
func (e *Engine) StopReading() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.session == nil {
		return &SessionStateError{Op: "stop reading", State: e.state}
	}
	e.cancelTickLocked()
	e.log.Debug("session stopped", "position", e.session.CurrentPosition)
	e.session = nil
	e.doc = nil
	e.state = Idle
	return nil
}

// tick is the advance loop body. A stale tick (generation mismatch after a
// pause, stop, or restart) returns without touching state. The next tick is
// scheduled only after this frame's events are delivered, so there is never
// more than one pending tick and subscribers see frames in order.
func (e *Engine) tick(gen uint64) {
	e.mu.Lock()
	if gen != e.gen || e.state != Reading || e.session == nil {
		e.mu.Unlock()
		return
	}

	e.session.CurrentPosition++
	pos := e.session.CurrentPosition

	var events []Event
	var next time.Duration
	done := false
	if pos >= e.doc.TotalWords {
		e.state = Completed
		e.session = nil
		e.cancelTickLocked()
		e.log.Debug("session completed", "doc", e.doc.ID)
		events = append(events, SessionEnded{})
		done = true
	} else {
		if e.sectionIdx < len(e.doc.Sections)-1 && pos > e.doc.Sections[e.sectionIdx].EndWordIndex {
			completed := e.sectionIdx
			e.sectionIdx++
			events = append(events, SectionBoundaryCrossed{SectionIndex: completed, Position: pos})
		}
		f := e.frameLocked()
		next = f.total()
		events = append(events,
			f.wordDisplayed(),
			PositionChanged{Index: pos, Total: e.doc.TotalWords},
		)
	}
	fns := e.subscribersLocked()
	e.mu.Unlock()

	deliver(fns, events)
	if !done {
		e.schedule(gen, next)
	}
}

// schedule arms the advance timer unless the session moved on (paused,
// stopped, or restarted) while events were being delivered.
func (e *Engine) schedule(gen uint64, d time.Duration) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if gen != e.gen || e.state != Reading {
		return
	}
	e.timer = time.AfterFunc(d, func() { e.tick(gen) })
}

func (e *Engine) cancelTickLocked() {
	e.gen++
	if e.timer != nil {
		e.timer.Stop()
		e.timer = nil
	}
}

// frame is the computed timing for the word at the current position.
type frame struct {
	word       document.WordUnit
	duration   time.Duration
	pauseAfter time.Duration
	floor      time.Duration
}

func (f frame) total() time.Duration {
	if t := f.duration + f.pauseAfter; t > f.floor {
		return t
	}
	return f.floor
}

func (f frame) wordDisplayed() WordDisplayed {
	return WordDisplayed{
		Word:         f.word.Text,
		ORP:          f.word.ORP,
		DurationMs:   int(f.duration / time.Millisecond),
		PauseAfterMs: int(f.pauseAfter / time.Millisecond),
	}
}

// frameLocked computes the current word's dwell time and post-word pause.
// The WPM setting gives the per-word budget; the tokenizer's base delay
// acts as a weight relative to the mid-tier reference, so long words dwell
// proportionally longer at any speed.
func (e *Engine) frameLocked() frame {
	w := e.doc.Words[e.session.CurrentPosition]

	budget := 60_000.0 / float64(e.session.BaseSpeedWPM)
	weight := float64(w.BaseDelayMs) / float64(e.cfg.ReferenceDelayMs)
	dur := budget * weight
	if w.IsLongWord {
		dur *= e.cfg.LongWordMultiplier
	}

	pause := w.PunctuationPauseMs
	if e.doc.Sections[e.sectionIdx].Kind == document.KindBullet {
		pause += e.cfg.BulletPauseMs
	}
	if document.EndsSentence(w.Text) {
		pause += e.cfg.ParagraphPauseMs
	}

	return frame{
		word:       w,
		duration:   time.Duration(dur * float64(time.Millisecond)),
		pauseAfter: time.Duration(pause) * time.Millisecond,
		floor:      time.Duration(e.cfg.MinFrameMs) * time.Millisecond,
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
