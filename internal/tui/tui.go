// Package tui is the terminal frontend: a bubbletea program fed by
// playback engine events.
package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/aanujkhurana/backlog-reader/internal/document"
	"github.com/aanujkhurana/backlog-reader/internal/playback"
)

var (
	orpStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF0000"))

	wordStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFFFF"))

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888")).
			Padding(0, 1)

	controlsStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666")).
			Italic(true)

	pausedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFAA00")).
			Bold(true)

	completeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#00FF00")).
			Bold(true)
)

type keyMap struct {
	Pause     key.Binding
	SpeedUp   key.Binding
	SpeedDown key.Binding
	Prev      key.Binding
	Next      key.Binding
	Quit      key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Pause:     key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "pause/play")),
		SpeedUp:   key.NewBinding(key.WithKeys("+", "=", "up"), key.WithHelp("↑/+", "speed up")),
		SpeedDown: key.NewBinding(key.WithKeys("-", "down"), key.WithHelp("↓/-", "slow down")),
		Prev:      key.NewBinding(key.WithKeys("left"), key.WithHelp("←", "prev sentence")),
		Next:      key.NewBinding(key.WithKeys("right"), key.WithHelp("→", "next sentence")),
		Quit:      key.NewBinding(key.WithKeys("q", "Q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// seekGrace is how quickly repeated arrow presses keep playback running;
// a first press after this interval pauses before jumping.
const seekGrace = 500 * time.Millisecond

type eventMsg struct{ ev playback.Event }
type startErrMsg struct{ err error }

// Result is what the frontend reports back for persistence.
type Result struct {
	LastPosition int
	WPM          int
	Completed    bool
}

// Model is the bubbletea model. Playback state lives in the engine; the
// model mirrors just enough of it to render.
type Model struct {
	engine    *playback.Engine
	doc       *document.DocumentStructure
	startPos  int
	sentences []int

	keys keyMap
	bar  progress.Model

	width     int
	height    int
	pos       int
	wpm       int
	paused    bool
	completed bool
	quitting  bool
	lastSeek  time.Time
	err       error
}

func newModel(engine *playback.Engine, doc *document.DocumentStructure, startPos, wpm int) Model {
	return Model{
		engine:    engine,
		doc:       doc,
		startPos:  startPos,
		sentences: document.SentenceStarts(doc.Words),
		keys:      defaultKeyMap(),
		bar:       progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage()),
		width:     80,
		height:    24,
		pos:       startPos,
		wpm:       wpm,
	}
}

func (m Model) Init() tea.Cmd {
	return func() tea.Msg {
		if err := m.engine.StartReading(m.doc, m.startPos); err != nil {
			return startErrMsg{err}
		}
		return nil
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.bar.Width = min(m.width-8, 60)
		return m, nil

	case startErrMsg:
		m.err = msg.err
		m.quitting = true
		return m, tea.Quit

	case eventMsg:
		switch ev := msg.ev.(type) {
		case playback.PositionChanged:
			m.pos = ev.Index
		case playback.SessionEnded:
			m.completed = true
			m.quitting = true
			return m, tea.Quit
		}
		return m, nil
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Wrong-state errors from the engine are deliberately dropped here:
	// a key pressed after completion has nothing useful to surface.
	switch {
	case key.Matches(msg, m.keys.Pause):
		if m.paused {
			if err := m.engine.ResumeReading(); err == nil {
				m.paused = false
			}
		} else {
			if err := m.engine.PauseReading(); err == nil {
				m.paused = true
			}
		}

	case key.Matches(msg, m.keys.SpeedUp):
		if wpm, err := m.engine.AdjustSpeed(1); err == nil {
			m.wpm = wpm
		}

	case key.Matches(msg, m.keys.SpeedDown):
		if wpm, err := m.engine.AdjustSpeed(-1); err == nil {
			m.wpm = wpm
		}

	case key.Matches(msg, m.keys.Prev):
		m = m.seek(prevStart(m.sentences, m.pos))

	case key.Matches(msg, m.keys.Next):
		m = m.seek(nextStart(m.sentences, m.pos, m.doc.TotalWords))

	case key.Matches(msg, m.keys.Quit):
		if s, ok := m.engine.Session(); ok {
			m.pos = s.CurrentPosition
			m.wpm = s.BaseSpeedWPM
		}
		_ = m.engine.StopReading()
		m.quitting = true
		return m, tea.Quit
	}

	return m, nil
}

// seek jumps to target, pausing first unless arrows are being tapped in
// quick succession.
func (m Model) seek(target int) Model {
	now := time.Now()
	if now.Sub(m.lastSeek) > seekGrace && !m.paused {
		if err := m.engine.PauseReading(); err == nil {
			m.paused = true
		}
	}
	m.lastSeek = now
	if pos, err := m.engine.JumpToPosition(target); err == nil {
		m.pos = pos
	}
	return m
}

func prevStart(starts []int, pos int) int {
	for i := len(starts) - 1; i >= 0; i-- {
		if starts[i] < pos {
			return starts[i]
		}
	}
	return 0
}

func nextStart(starts []int, pos, total int) int {
	for _, s := range starts {
		if s > pos {
			return s
		}
	}
	return total - 1
}

func (m Model) View() string {
	if m.quitting {
		if m.completed {
			return completeStyle.Render("\n  Reading complete!\n")
		}
		return ""
	}

	if m.doc.TotalWords == 0 {
		return "No text to read."
	}

	word := m.doc.Words[m.pos]

	pause := ""
	if m.paused {
		pause = pausedStyle.Render(" [PAUSED]")
	}

	section := m.doc.Sections[m.doc.SectionAt(m.pos)]
	title := section.Title
	if title == "" {
		title = section.Kind.String()
	}

	status := statusStyle.Render(
		fmt.Sprintf("Word %d/%d | %d WPM | %s%s",
			m.pos+1,
			m.doc.TotalWords,
			m.wpm,
			title,
			pause,
		),
	)

	controls := controlsStyle.Render("SPACE: pause/play  ↑/↓: speed  ←/→: sentence  Q: quit")

	bar := m.bar.ViewAs(float64(m.pos+1) / float64(m.doc.TotalWords))

	// Reserve 3 lines: status at top, progress and controls at bottom.
	avail := m.height - 3
	if avail < 1 {
		avail = 1
	}
	vPad := avail / 2

	var sb strings.Builder

	sb.WriteString(status)
	sb.WriteString("\n")

	for i := 0; i < vPad; i++ {
		sb.WriteString("\n")
	}

	sb.WriteString(anchorORP(word, m.width))

	remaining := avail - vPad
	for i := 0; i < remaining; i++ {
		sb.WriteString("\n")
	}

	sb.WriteString(bar)
	sb.WriteString("\n")
	sb.WriteString(controls)

	return sb.String()
}

// formatWord highlights the fixation rune.
func formatWord(w document.WordUnit) string {
	runes := []rune(w.Text)
	orp := document.DisplayORP(w)

	before := string(runes[:orp])
	focus := string(runes[orp])
	after := ""
	if orp+1 < len(runes) {
		after = string(runes[orp+1:])
	}

	return wordStyle.Render(before) +
		orpStyle.Render(focus) +
		wordStyle.Render(after)
}

// anchorORP pads the formatted word so the fixation rune sits at the
// horizontal center of the screen.
func anchorORP(w document.WordUnit, width int) string {
	pad := width/2 - document.DisplayORP(w)
	if pad < 0 {
		pad = 0
	}
	return strings.Repeat(" ", pad) + formatWord(w)
}

// Run drives the program until quit or completion and reports the final
// position for persistence. Engine events are forwarded through a buffered
// channel; if the UI falls behind, stale display refreshes are dropped
// rather than blocking the engine's timer goroutine.
func Run(engine *playback.Engine, doc *document.DocumentStructure, startPos, wpm int) (Result, error) {
	m := newModel(engine, doc, startPos, wpm)
	p := tea.NewProgram(m, tea.WithAltScreen())

	events := make(chan playback.Event, 256)
	done := make(chan struct{})
	cancel := engine.Subscribe(func(ev playback.Event) {
		select {
		case events <- ev:
		default:
		}
	})
	defer cancel()

	go func() {
		for {
			select {
			case <-done:
				return
			case ev := <-events:
				p.Send(eventMsg{ev})
			}
		}
	}()

	out, err := p.Run()
	close(done)
	if err != nil {
		return Result{}, err
	}

	final := out.(Model)
	return Result{
		LastPosition: final.pos,
		WPM:          final.wpm,
		Completed:    final.completed,
	}, final.err
}
