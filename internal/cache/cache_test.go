package cache

import (
	"archive/tar"
	"compress/gzip"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/dineshmc1/rag-based-research-paper-assistant/internal/graph"
)

type fetchFunc func(ctx context.Context, id string) (*graph.Model, error)

func (f fetchFunc) Graph(ctx context.Context, id string) (*graph.Model, error) { return f(ctx, id) }

func sample(t *testing.T, id string) *graph.Model {
	t.Helper()
	m, err := graph.New(id,
		[]graph.Node{{ID: "a", Label: "Neural Networks", Size: 5, Type: "concept"}, {ID: "b", Label: "Backprop", Size: 2, Type: "concept"}},
		[]graph.Edge{{Source: "a", Target: "b", Weight: 2}})
	if err != nil {
		t.Fatalf("graph.New failed: %v", err)
	}
	return m
}

func TestDir(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "/tmp/test-cache")
	if Dir() != "/tmp/test-cache/papergraph/graphs" {
		t.Errorf("expected /tmp/test-cache/papergraph/graphs, got %q", Dir())
	}

	t.Setenv("XDG_CACHE_HOME", "")
	home, _ := os.UserHomeDir()
	expected := filepath.Join(home, ".cache", "papergraph", "graphs")
	if Dir() != expected {
		t.Errorf("expected %q, got %q", expected, Dir())
	}
}

func TestPutAndGraph(t *testing.T) {
	s := New(t.TempDir())
	if err := s.Put(sample(t, "p1")); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	m, err := s.Graph(context.Background(), "p1")
	if err != nil {
		t.Fatalf("Graph failed: %v", err)
	}
	if m.SubjectID() != "p1" || m.Len() != 2 || m.Edges()[0].Weight != 2 {
		t.Errorf("round trip lost data: %q %d", m.SubjectID(), m.Len())
	}
}

func TestGraphMiss(t *testing.T) {
	s := New(t.TempDir())
	_, err := s.Graph(context.Background(), "nope")
	if !errors.Is(err, ErrMiss) || !errors.Is(err, graph.ErrFetchFailed) {
		t.Errorf("err = %v, want miss and fetch failure", err)
	}
}

func TestThrough(t *testing.T) {
	s := New(t.TempDir())
	calls := 0
	f := s.Through(fetchFunc(func(ctx context.Context, id string) (*graph.Model, error) {
		calls++
		if id == "bad" {
			return nil, graph.ErrFetchFailed
		}
		return sample(t, id), nil
	}), func(err error) { t.Errorf("unexpected cache error: %v", err) })

	if _, err := f.Graph(context.Background(), "p2"); err != nil {
		t.Fatalf("Graph failed: %v", err)
	}
	if _, err := f.Graph(context.Background(), "bad"); !errors.Is(err, graph.ErrFetchFailed) {
		t.Errorf("err = %v", err)
	}

	entries, err := s.List()
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(entries) != 1 || entries[0].PaperID != "p2" || entries[0].Concepts != 2 || entries[0].Connections != 1 {
		t.Errorf("entries = %+v", entries)
	}
	if calls != 2 {
		t.Errorf("calls = %d", calls)
	}
}

func TestSanitize(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"simple", "simple"},
		{"org/paper:v2", "org_paper_v2"},
		{"@scope/p", "_scope_p"},
		{"../etc", "__etc"},
	}

	for _, tt := range tests {
		result := sanitize(tt.input)
		if result != tt.expected {
			t.Errorf("sanitize(%q): expected %q, got %q", tt.input, tt.expected, result)
		}
	}
}

func TestBundle_EmptyCache(t *testing.T) {
	tmpDir := t.TempDir()
	s := New(filepath.Join(tmpDir, "graphs"))

	if err := s.Bundle(filepath.Join(tmpDir, "out.tar.gz")); err == nil {
		t.Error("expected error for empty cache")
	}
}

func TestBundle(t *testing.T) {
	tmpDir := t.TempDir()
	s := New(filepath.Join(tmpDir, "graphs"))
	s.Put(sample(t, "p1"))
	s.Put(sample(t, "p2"))

	out := filepath.Join(tmpDir, "out.tar.gz")
	if err := s.Bundle(out); err != nil {
		t.Fatalf("Bundle failed: %v", err)
	}

	f, err := os.Open(out)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	gr, err := gzip.NewReader(f)
	if err != nil {
		t.Fatalf("not gzip: %v", err)
	}
	tr := tar.NewReader(gr)
	names := map[string]bool{}
	for {
		h, err := tr.Next()
		if err != nil {
			break
		}
		names[h.Name] = true
	}
	if !names["p1.json"] || !names["p2.json"] {
		t.Errorf("bundle entries = %v", names)
	}

	if err := s.Clear(); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	if entries, _ := s.List(); len(entries) != 0 {
		t.Errorf("expected empty cache, got %+v", entries)
	}
}
