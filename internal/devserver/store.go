package devserver

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/dineshmc1/rag-based-research-paper-assistant/internal/api"
	"github.com/dineshmc1/rag-based-research-paper-assistant/internal/concepts"
)

// ErrPaperNotFound is returned for an unknown or empty paper.
var ErrPaperNotFound = errors.New("paper not found")

// Extensions are the paper file types read from the directory.
var Extensions = []string{".txt", ".md"}

// Store reads papers from a directory of plain-text files. The file name
// without extension is the paper id.
type Store struct {
	dir string
}

// NewStore returns a store over dir.
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// Dir returns the papers directory.
func (s *Store) Dir() string { return s.dir }

// List returns every paper, sorted by id.
func (s *Store) List() ([]api.Paper, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []api.Paper{}, nil
		}
		return nil, fmt.Errorf("list papers: %w", err)
	}

	papers := []api.Paper{}
	for _, e := range entries {
		if e.IsDir() || !isPaper(e.Name()) {
			continue
		}
		id := strings.TrimSuffix(e.Name(), filepath.Ext(e.Name()))
		chunks, err := s.Chunks(id)
		if err != nil && !errors.Is(err, ErrPaperNotFound) {
			return nil, err
		}
		papers = append(papers, api.Paper{ID: id, Filename: e.Name(), ChunksCount: len(chunks)})
	}
	sort.Slice(papers, func(i, j int) bool { return papers[i].ID < papers[j].ID })
	return papers, nil
}

// Chunks returns the paragraphs of a paper.
func (s *Store) Chunks(id string) ([]string, error) {
	if id == "" || id != filepath.Base(id) || strings.HasPrefix(id, ".") {
		return nil, fmt.Errorf("%q: %w", id, ErrPaperNotFound)
	}
	for _, ext := range Extensions {
		data, err := os.ReadFile(filepath.Join(s.dir, id+ext))
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("read paper %q: %w", id, err)
		}
		chunks := concepts.Chunks(string(data))
		if len(chunks) == 0 {
			return nil, fmt.Errorf("%q has no text: %w", id, ErrPaperNotFound)
		}
		return chunks, nil
	}
	return nil, fmt.Errorf("%q: %w", id, ErrPaperNotFound)
}

func isPaper(name string) bool {
	ext := filepath.Ext(name)
	for _, e := range Extensions {
		if ext == e {
			return true
		}
	}
	return false
}
