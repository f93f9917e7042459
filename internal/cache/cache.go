// Package cache keeps fetched concept graphs on disk so papers can be
// rendered and inspected without the backend.
package cache

import (
	"archive/tar"
	"compress/gzip"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/dineshmc1/rag-based-research-paper-assistant/internal/graph"
)

// ErrMiss is returned for a paper that is not cached.
var ErrMiss = errors.New("graph not cached")

// Dir returns the cache directory path.
func Dir() string {
	dir := os.Getenv("XDG_CACHE_HOME")
	if dir == "" {
		home, _ := os.UserHomeDir()
		dir = filepath.Join(home, ".cache")
	}
	return filepath.Join(dir, "papergraph", "graphs")
}

// Fetcher acquires the graph of a paper.
type Fetcher interface {
	Graph(ctx context.Context, paperID string) (*graph.Model, error)
}

// Store is a directory of graph JSON files in the backend's wire format,
// one per paper.
type Store struct {
	dir string
}

// Entry describes one cached graph.
type Entry struct {
	PaperID     string
	Concepts    int
	Connections int
	Updated     time.Time
}

// New returns a store over dir.
func New(dir string) *Store {
	return &Store{dir: dir}
}

// Dir returns the store's directory.
func (s *Store) Dir() string { return s.dir }

// Put writes m, replacing any earlier copy.
func (s *Store) Put(m *graph.Model) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return err
	}
	data, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("encode %q: %w", m.SubjectID(), err)
	}
	path := s.path(m.SubjectID())
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// Graph reads a cached graph. It implements the driver's fetcher so a view
// can run offline; a miss wraps both ErrMiss and graph.ErrFetchFailed.
func (s *Store) Graph(_ context.Context, paperID string) (*graph.Model, error) {
	f, err := os.Open(s.path(paperID))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%q: %w: %w", paperID, graph.ErrFetchFailed, ErrMiss)
		}
		return nil, fmt.Errorf("%w: %w", graph.ErrFetchFailed, err)
	}
	defer f.Close()

	m, err := graph.Decode(f, paperID)
	if err != nil {
		return nil, fmt.Errorf("cached %q: %w: %w", paperID, graph.ErrFetchFailed, err)
	}
	return m, nil
}

// List returns every cached graph, sorted by paper id.
func (s *Store) List() ([]Entry, error) {
	files, err := filepath.Glob(filepath.Join(s.dir, "*.json"))
	if err != nil {
		return nil, err
	}
	var entries []Entry
	for _, path := range files {
		info, err := os.Stat(path)
		if err != nil {
			continue
		}
		f, err := os.Open(path)
		if err != nil {
			continue
		}
		m, err := graph.Decode(f, strings.TrimSuffix(filepath.Base(path), ".json"))
		f.Close()
		if err != nil {
			continue
		}
		stats := m.GetStats()
		entries = append(entries, Entry{
			PaperID:     m.SubjectID(),
			Concepts:    stats.Concepts,
			Connections: stats.Connections,
			Updated:     info.ModTime(),
		})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].PaperID < entries[j].PaperID })
	return entries, nil
}

// Clear removes every cached graph.
func (s *Store) Clear() error {
	return os.RemoveAll(s.dir)
}

// Through returns a fetcher that asks f and stores every graph it returns.
// A failed write does not fail the fetch; it is reported to onErr.
func (s *Store) Through(f Fetcher, onErr func(error)) Fetcher {
	return &through{store: s, next: f, onErr: onErr}
}

type through struct {
	store *Store
	next  Fetcher
	onErr func(error)
}

func (t *through) Graph(ctx context.Context, paperID string) (*graph.Model, error) {
	m, err := t.next.Graph(ctx, paperID)
	if err != nil {
		return nil, err
	}
	if err := t.store.Put(m); err != nil && t.onErr != nil {
		t.onErr(fmt.Errorf("cache %q: %w", paperID, err))
	}
	return m, nil
}

// Bundle creates a tar.gz archive of the cache directory.
func (s *Store) Bundle(output string) error {
	if _, err := os.Stat(s.dir); err != nil {
		return fmt.Errorf("cache is empty — run `papergraph cache fetch` first")
	}

	f, err := os.Create(output)
	if err != nil {
		return err
	}
	defer f.Close()

	gw := gzip.NewWriter(f)
	defer gw.Close()

	tw := tar.NewWriter(gw)
	defer tw.Close()

	return filepath.Walk(s.dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		rel, _ := filepath.Rel(s.dir, path)
		header, err := tar.FileInfoHeader(info, "")
		if err != nil {
			return err
		}
		header.Name = filepath.ToSlash(rel)
		if err := tw.WriteHeader(header); err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		file, err := os.Open(path)
		if err != nil {
			return err
		}
		defer file.Close()
		_, err = io.Copy(tw, file)
		return err
	})
}

func (s *Store) path(paperID string) string {
	return filepath.Join(s.dir, sanitize(paperID)+".json")
}

func sanitize(s string) string {
	r := strings.NewReplacer("/", "_", "\\", "_", ":", "_", "@", "_", "..", "_")
	return r.Replace(s)
}
