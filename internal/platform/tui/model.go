package tui

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/casim/internal/grid"
	"github.com/vovakirdan/casim/internal/sim"
	"github.com/vovakirdan/casim/internal/trace"
)

const maxFPS = 120

// AnimOptions configure the animation screen.
type AnimOptions struct {
	Title       string
	FPS         int
	Glyphs      string
	MaxSteps    int           // Stop after this many rounds; 0 runs until stable
	Trace       *trace.Writer // Optional per-round CSV
	SnapshotDir string        // Where ctrl+s saves the grid; empty uses ~/.casim/snapshots
	Paused      bool          // Start paused
}

// AnimModel is the Bubble Tea model animating a finalized simulator.
type AnimModel struct {
	sim     *sim.Simulator
	opts    AnimOptions
	theme   Theme
	keys    AnimKeyMap
	help    help.Model
	last    sim.StepResult
	paused  bool
	ticking bool // A tick is in flight
	done    bool
	status  string
	err     error
}

// NewAnimModel creates a new animation model for s.
func NewAnimModel(s *sim.Simulator, opts AnimOptions) AnimModel {
	if opts.FPS <= 0 {
		opts.FPS = 10
	}
	if opts.Glyphs == "" {
		opts.Glyphs = DefaultGlyphs
	}
	m := AnimModel{
		sim:    s,
		opts:   opts,
		theme:  DefaultTheme(),
		keys:   DefaultAnimKeyMap(),
		help:   help.New(),
		paused: opts.Paused,
	}
	m.done = !s.CanRun() || m.limitReached()
	m.ticking = !m.paused && !m.done
	return m
}

// Init starts the tick loop.
func (m AnimModel) Init() tea.Cmd {
	if !m.ticking {
		return nil
	}
	return tickCmd(m.opts.FPS)
}

// Update handles messages and advances the simulation.
func (m AnimModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.help.Width = msg.Width
		return m, nil

	case TickMsg:
		m.ticking = false
		if m.paused || m.done {
			return m, nil
		}
		m.step()
		return m, m.nextTick()
	}

	return m, nil
}

// handleKey processes keyboard input.
func (m AnimModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Pause):
		m.paused = !m.paused
		return m, m.nextTick()

	case key.Matches(msg, m.keys.Step):
		if m.paused && !m.done {
			m.step()
		}
		return m, nil

	case key.Matches(msg, m.keys.Faster):
		m.opts.FPS = min(m.opts.FPS*2, maxFPS)
		return m, nil

	case key.Matches(msg, m.keys.Slower):
		m.opts.FPS = max(m.opts.FPS/2, 1)
		return m, nil

	case key.Matches(msg, m.keys.Snapshot):
		m.saveSnapshot()
		return m, nil

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	}

	return m, nil
}

// nextTick schedules a tick unless one is pending or the animation is idle.
func (m *AnimModel) nextTick() tea.Cmd {
	if m.ticking || m.paused || m.done {
		return nil
	}
	m.ticking = true
	return tickCmd(m.opts.FPS)
}

// step runs one round.
func (m *AnimModel) step() {
	m.last = m.sim.Step()
	if err := m.opts.Trace.Observe(m.sim, m.last); err != nil {
		m.err = err
		m.done = true
		return
	}
	m.done = !m.sim.CanRun() || m.limitReached()
}

func (m AnimModel) limitReached() bool {
	return m.opts.MaxSteps > 0 && m.sim.Round() >= m.opts.MaxSteps
}

// saveSnapshot saves the current grid to a text file.
func (m *AnimModel) saveSnapshot() {
	dir := m.opts.SnapshotDir
	if dir == "" {
		dir = filepath.Join(os.Getenv("HOME"), ".casim", "snapshots")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		m.status = "snapshot failed: " + err.Error()
		return
	}

	timestamp := time.Now().Format("20060102_150405")
	path := filepath.Join(dir, fmt.Sprintf("round%d_%s.txt", m.sim.Round(), timestamp))
	if err := grid.SaveFile(path, m.sim.Grid()); err != nil {
		m.status = "snapshot failed: " + err.Error()
		return
	}
	m.status = "saved " + path
}

// State returns a label for the animation state.
func (m AnimModel) State() string {
	switch {
	case m.err != nil:
		return "error"
	case m.done && !m.sim.CanRun():
		return "stable"
	case m.done:
		return "stopped"
	case m.paused:
		return "paused"
	}
	return "running"
}

// Err returns the error that ended the animation, if any.
func (m AnimModel) Err() error { return m.err }

// Rounds returns the rounds run so far.
func (m AnimModel) Rounds() int { return m.sim.Round() }

// View renders the current state to a string for display.
func (m AnimModel) View() string {
	var b strings.Builder

	title := m.opts.Title
	if title == "" {
		title = "casim"
	}
	b.WriteString(m.theme.Title.Render(title))
	b.WriteString("\n")

	status := fmt.Sprintf("round %d  accepted %d  deferred %d  %d fps  [%s]",
		m.sim.Round(), len(m.last.Accepted), m.last.Deferred, m.opts.FPS, m.State())
	b.WriteString(m.theme.Status.Render(status))
	b.WriteString("\n")

	b.WriteString(m.theme.Frame.Render(RenderGrid(m.sim.Grid(), m.opts.Glyphs, m.theme)))
	b.WriteString("\n")

	if m.err != nil {
		b.WriteString(m.theme.Sentinel.Render(m.err.Error()))
		b.WriteString("\n")
	} else if m.status != "" {
		b.WriteString(m.theme.Status.Render(m.status))
		b.WriteString("\n")
	}
	b.WriteString(m.theme.Help.Render(m.help.View(m.keys)))

	return b.String()
}

// RunAnim animates s until the user quits, then returns the final model.
func RunAnim(s *sim.Simulator, opts AnimOptions) (AnimModel, error) {
	p := tea.NewProgram(
		NewAnimModel(s, opts),
		tea.WithAltScreen(), // Use alternate screen buffer
	)

	finalModel, err := p.Run()
	if err != nil {
		return AnimModel{}, err
	}
	m, ok := finalModel.(AnimModel)
	if !ok {
		return AnimModel{}, fmt.Errorf("tui: unexpected model %T", finalModel)
	}
	return m, m.err
}
