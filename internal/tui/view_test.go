package tui

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/dineshmc1/rag-based-research-paper-assistant/internal/driver"
	"github.com/dineshmc1/rag-based-research-paper-assistant/internal/graph"
	"github.com/dineshmc1/rag-based-research-paper-assistant/internal/render"
)

type fakeBackend struct {
	mu    sync.Mutex
	calls []string
}

func (f *fakeBackend) Graph(ctx context.Context, id string) (*graph.Model, error) {
	f.mu.Lock()
	f.calls = append(f.calls, id)
	f.mu.Unlock()
	switch id {
	case "broken":
		return nil, errors.New("connection refused")
	case "blank":
		return graph.Empty(id), nil
	}
	return graph.New(id,
		[]graph.Node{
			{ID: "a", Label: "Neural Networks", Size: 5, Type: "concept"},
			{ID: "b", Label: "Gradient Descent", Size: 3, Type: "concept"},
		},
		[]graph.Edge{{Source: "a", Target: "b", Weight: 0.8}})
}

func (f *fakeBackend) fetched() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func newModel(t *testing.T, papers ...string) (Model, *driver.Driver, *fakeBackend) {
	t.Helper()
	lipgloss.SetColorProfile(termenv.Ascii)

	backend := &fakeBackend{}
	sched := &driver.Manual{}
	term := render.NewTerminal()
	d := driver.New(backend, sched, term, render.TerminalViewport(80, 22), driver.Options{})
	t.Cleanup(func() {
		d.Close()
		d.Wait()
	})
	return New(d, sched, term, papers, time.Millisecond, 300), d, backend
}

func update(m Model, msg tea.Msg) Model {
	next, _ := m.Update(msg)
	return next.(Model)
}

func TestViewDrawsGraph(t *testing.T) {
	m, d, _ := newModel(t, "p1")
	m.Init()
	m = update(m, tea.WindowSizeMsg{Width: 60, Height: 21})
	d.Wait()

	m = update(m, FrameMsg(time.Now()))
	view := m.View()
	for _, want := range []string{"papergraph", "p1", "2 concepts, 1 connections", "tick 1/300", "Neural Net...", "Gradient D..."} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q:\n%s", want, view)
		}
	}
	if n := len(strings.Split(view, "\n")); n != 21 {
		t.Errorf("view has %d lines, want 21", n)
	}
}

func TestViewStates(t *testing.T) {
	m, d, _ := newModel(t, "broken", "blank")
	m.Init()
	d.Wait()
	if view := m.View(); !strings.Contains(view, "No graph:") {
		t.Errorf("failed fetch should be reported:\n%s", view)
	}

	m = update(m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("n")})
	d.Wait()
	if view := m.View(); !strings.Contains(view, "No concepts extracted yet") {
		t.Errorf("empty graph should be reported:\n%s", view)
	}
}

func TestPaperCycling(t *testing.T) {
	m, d, backend := newModel(t, "a", "b", "c")
	m.Init()
	d.Wait()

	m = update(m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("p")})
	if m.Current() != "c" {
		t.Errorf("prev from first should wrap to c, got %q", m.Current())
	}
	m = update(m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("n")})
	m = update(m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("n")})
	if m.Current() != "b" {
		t.Errorf("current = %q, want b", m.Current())
	}
	d.Wait()
	if d.Subject() != "b" {
		t.Errorf("driver subject = %q, want b", d.Subject())
	}

	m = update(m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("r")})
	d.Wait()
	got := backend.fetched()
	counts := map[string]int{}
	for _, id := range got {
		counts[id]++
	}
	if len(got) != 5 || counts["a"] != 2 || counts["b"] != 2 || counts["c"] != 1 {
		t.Errorf("fetches = %v, want a twice, b twice, c once", got)
	}
}

func TestQuit(t *testing.T) {
	m, d, _ := newModel(t, "p1")
	m.Init()
	d.Wait()

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	if cmd == nil {
		t.Fatal("quit should return a command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("expected tea.QuitMsg")
	}
	if d.State() != driver.Idle {
		t.Errorf("driver should be torn down, got %v", d.State())
	}
	if _, cmd := next.(Model).Update(FrameMsg(time.Now())); cmd != nil {
		t.Error("no frames after quit")
	}
}
