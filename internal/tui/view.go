// Package tui is the live terminal view of a paper's concept graph.
//
// The bubbletea program is the frame clock: every FrameMsg fires one frame
// of the driver's Manual scheduler, and View shows the terminal surface the
// frame drew on.
package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/dineshmc1/rag-based-research-paper-assistant/internal/driver"
	"github.com/dineshmc1/rag-based-research-paper-assistant/internal/render"
)

// chromeRows are the header and footer lines around the graph.
const chromeRows = 2

// FrameMsg asks the model to draw the next frame.
type FrameMsg time.Time

// Model is a bubbletea model over one driver.
type Model struct {
	driver   *driver.Driver
	sched    *driver.Manual
	term     *render.Terminal
	papers   []string
	current  int
	interval time.Duration
	budget   int

	width    int
	height   int
	quitting bool
}

// New returns a view cycling through papers. The driver must draw on term
// and be scheduled by sched.
func New(d *driver.Driver, sched *driver.Manual, term *render.Terminal, papers []string, interval time.Duration, budget int) Model {
	if interval <= 0 {
		interval = driver.DefaultFrameInterval
	}
	return Model{
		driver:   d,
		sched:    sched,
		term:     term,
		papers:   papers,
		interval: interval,
		budget:   budget,
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	if len(m.papers) > 0 {
		m.driver.SetSubject(m.papers[m.current])
	}
	return m.tick()
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(m.interval, func(t time.Time) tea.Msg { return FrameMsg(t) })
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		rows := max(m.height-chromeRows, 1)
		m.driver.Resize(render.TerminalViewport(max(m.width, 1), rows))

	case FrameMsg:
		if m.quitting {
			return m, nil
		}
		m.sched.Fire()
		return m, m.tick()

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "Q", "ctrl+c", "esc":
			m.quitting = true
			m.driver.Close()
			return m, tea.Quit

		case "r", "R":
			m.driver.Reload()

		case "n", "right", "l":
			m.switchPaper(1)

		case "p", "left", "h":
			m.switchPaper(-1)
		}
	}
	return m, nil
}

func (m *Model) switchPaper(delta int) {
	if len(m.papers) < 2 {
		return
	}
	m.current = (m.current + delta + len(m.papers)) % len(m.papers)
	m.driver.SetSubject(m.papers[m.current])
}

// Current returns the paper id being shown.
func (m Model) Current() string {
	if len(m.papers) == 0 {
		return ""
	}
	return m.papers[m.current]
}

// View implements tea.Model.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(m.header())
	b.WriteString("\n")
	b.WriteString(m.body())
	b.WriteString("\n")
	b.WriteString(footerStyle.Render("q quit · r reload · n/p next/prev paper"))
	return b.String()
}

func (m Model) header() string {
	snap := m.driver.Snapshot()
	parts := []string{titleStyle.Render("papergraph")}
	if snap.Subject != "" {
		parts = append(parts, subjectStyle.Render(snap.Subject))
	}
	if len(m.papers) > 1 {
		parts = append(parts, dimStyle.Render(fmt.Sprintf("%d/%d", m.current+1, len(m.papers))))
	}
	if snap.Model != nil && !snap.Model.IsEmpty() {
		stats := snap.Model.GetStats()
		parts = append(parts, dimStyle.Render(fmt.Sprintf("%d concepts, %d connections", stats.Concepts, stats.Connections)))
		if snap.Settled {
			parts = append(parts, settledStyle.Render("settled"))
		} else {
			parts = append(parts, dimStyle.Render(fmt.Sprintf("tick %d/%d", snap.Iterations, m.budget)))
		}
	}
	return strings.Join(parts, dimStyle.Render(" · "))
}

func (m Model) body() string {
	snap := m.driver.Snapshot()
	switch {
	case snap.State == driver.Loading:
		return m.centre(dimStyle.Render("Loading graph..."))
	case snap.Err != nil:
		return m.centre(errorStyle.Render("No graph: " + snap.Err.Error()))
	case snap.Empty:
		return m.centre(dimStyle.Render("No concepts extracted yet"))
	case snap.State == driver.Idle:
		return m.centre(dimStyle.Render("No paper selected"))
	}
	return m.term.String()
}

func (m Model) centre(s string) string {
	if m.width == 0 || m.height == 0 {
		return s
	}
	return lipgloss.Place(m.width, max(m.height-chromeRows, 1), lipgloss.Center, lipgloss.Center, s)
}

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("99"))

	subjectStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("212"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	settledStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	footerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245"))
)
