package export

import (
	"context"
	"errors"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dineshmc1/rag-based-research-paper-assistant/internal/driver"
	"github.com/dineshmc1/rag-based-research-paper-assistant/internal/graph"
	"github.com/dineshmc1/rag-based-research-paper-assistant/internal/layout"
	"github.com/dineshmc1/rag-based-research-paper-assistant/internal/render"
)

func fetcher(t *testing.T) driver.Fetcher {
	t.Helper()
	return driver.FetcherFunc(func(ctx context.Context, id string) (*graph.Model, error) {
		switch id {
		case "down":
			return nil, errors.New("connection refused")
		case "blank":
			return graph.Empty(id), nil
		case "echo":
			return graph.Empty("other"), nil
		}
		return graph.New(id,
			[]graph.Node{
				{ID: "a", Label: "Neural Networks", Size: 5, Type: "concept"},
				{ID: "b", Label: "Backpropagation", Size: 3, Type: "concept"},
				{ID: "c", Label: "Gradient Descent", Size: 2, Type: "concept"},
			},
			[]graph.Edge{{Source: "a", Target: "b", Weight: 2}, {Source: "b", Target: "c", Weight: 1}})
	})
}

func options(dir, format string) Options {
	return Options{
		Dir:      dir,
		Format:   format,
		Viewport: render.Viewport{Width: 400, Height: 300, PixelRatio: 2},
		Caption:  true,
	}
}

func TestPaperPNG(t *testing.T) {
	dir := t.TempDir()
	res, err := Paper(context.Background(), fetcher(t), "paper-1", options(dir, "png"))
	if err != nil {
		t.Fatalf("Paper failed: %v", err)
	}
	if res.Path != filepath.Join(dir, "paper-1.png") {
		t.Errorf("path = %q", res.Path)
	}
	if res.Concepts != 3 || res.Connections != 2 {
		t.Errorf("stats = %d/%d, want 3/2", res.Concepts, res.Connections)
	}
	if res.Iterations != layout.DefaultParams().MaxIterations {
		t.Errorf("iterations = %d, want the full budget", res.Iterations)
	}

	f, err := os.Open(res.Path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatalf("not a png: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 800 || b.Dy() != 600 {
		t.Errorf("backing store = %dx%d, want 800x600", b.Dx(), b.Dy())
	}
}

func TestPaperSVG(t *testing.T) {
	dir := t.TempDir()
	res, err := Paper(context.Background(), fetcher(t), "org/paper", options(dir, "SVG"))
	if err != nil {
		t.Fatalf("Paper failed: %v", err)
	}
	if filepath.Base(res.Path) != "org_paper.svg" {
		t.Errorf("path = %q", res.Path)
	}
	data, err := os.ReadFile(res.Path)
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"<svg", "Neural Net...", "Backpropag...", "3 concepts, 2 connections"} {
		if !strings.Contains(string(data), want) {
			t.Errorf("svg missing %q", want)
		}
	}
}

func TestPaperEmptyGraph(t *testing.T) {
	res, err := Paper(context.Background(), fetcher(t), "blank", options(t.TempDir(), "png"))
	if err != nil {
		t.Fatalf("Paper failed: %v", err)
	}
	if res.Concepts != 0 {
		t.Errorf("concepts = %d", res.Concepts)
	}
	if _, err := os.Stat(res.Path); err != nil {
		t.Errorf("empty graph should still be written: %v", err)
	}
}

func TestPaperFetchFailure(t *testing.T) {
	dir := t.TempDir()
	_, err := Paper(context.Background(), fetcher(t), "down", options(dir, "png"))
	if !errors.Is(err, graph.ErrFetchFailed) {
		t.Errorf("err = %v, want fetch failure", err)
	}
	if entries, _ := os.ReadDir(dir); len(entries) != 0 {
		t.Errorf("nothing should be written, got %d files", len(entries))
	}
}

func TestPaperMismatchedSubject(t *testing.T) {
	_, err := Paper(context.Background(), fetcher(t), "echo", options(t.TempDir(), "png"))
	if !errors.Is(err, graph.ErrFetchFailed) || !errors.Is(err, graph.ErrStaleResult) {
		t.Errorf("err = %v, want stale fetch failure", err)
	}
	if errors.Is(err, ErrCancelled) {
		t.Error("a wrong answer is not a cancellation")
	}
}

func TestPaperCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Paper(ctx, fetcher(t), "paper-1", options(t.TempDir(), "png"))
	if !errors.Is(err, ErrCancelled) {
		t.Errorf("err = %v, want cancelled", err)
	}
}

func TestPaperBadOptions(t *testing.T) {
	if _, err := Paper(context.Background(), fetcher(t), "p", options(t.TempDir(), "gif")); !errors.Is(err, ErrFormat) {
		t.Errorf("err = %v, want format error", err)
	}
	opts := options(t.TempDir(), "png")
	opts.Viewport = render.Viewport{}
	if _, err := Paper(context.Background(), fetcher(t), "p", opts); err == nil {
		t.Error("expected error for an empty viewport")
	}
}

func TestFileName(t *testing.T) {
	tests := []struct {
		id, format, want string
	}{
		{"paper-1", "png", "paper-1.png"},
		{"a/b:c", "SVG", "a_b_c.svg"},
		{"../x", "png", "__x.png"},
		{"my paper", "png", "my_paper.png"},
	}
	for _, tt := range tests {
		if got := FileName(tt.id, tt.format); got != tt.want {
			t.Errorf("FileName(%q, %q) = %q, want %q", tt.id, tt.format, got, tt.want)
		}
	}
}
