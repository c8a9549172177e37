package playback

// Event is delivered to subscribers as one of WordDisplayed,
// PositionChanged, SectionBoundaryCrossed, or SessionEnded.
type Event any

// WordDisplayed announces the word now on screen and its timing.
type WordDisplayed struct {
	Word         string
	ORP          int
	DurationMs   int
	PauseAfterMs int
}

// PositionChanged announces the current word index.
type PositionChanged struct {
	Index int
	Total int
}

// SectionBoundaryCrossed fires when auto-advance moves past the end of a
// section. It carries the just-completed section's index so an external
// feature (summarization, pause-for-reflection) can hook it without the
// engine knowing that feature exists.
type SectionBoundaryCrossed struct {
	SectionIndex int
	Position     int
}

// SessionEnded fires exactly once when playback reaches the final word.
type SessionEnded struct{}

// Subscribe registers fn for all events and returns its cancel func.
// Callbacks run outside the engine lock, so a subscriber may call back
// into the engine.
func (e *Engine) Subscribe(fn func(Event)) (cancel func()) {
	e.mu.Lock()
	defer e.mu.Unlock()
	id := e.nextSub
	e.nextSub++
	e.subs[id] = fn
	return func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		delete(e.subs, id)
	}
}

// subscribersLocked snapshots the current subscriber list.
func (e *Engine) subscribersLocked() []func(Event) {
	fns := make([]func(Event), 0, len(e.subs))
	for _, fn := range e.subs {
		fns = append(fns, fn)
	}
	return fns
}

func deliver(fns []func(Event), events []Event) {
	for _, ev := range events {
		for _, fn := range fns {
			fn(ev)
		}
	}
}
