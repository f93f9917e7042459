package graph

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// Node is a concept extracted from a paper.
type Node struct {
	ID    string  `json:"id"`
	Label string  `json:"label"`
	Size  float64 `json:"size"`
	Type  string  `json:"type"`
}

// Edge is an undirected co-occurrence link between two concepts.
// Source/Target keep the orientation the backend sent.
type Edge struct {
	Source string  `json:"source"`
	Target string  `json:"target"`
	Weight float64 `json:"weight"`
}

// Model is the node/edge snapshot for one paper. A Model is never mutated
// after New returns; a new subject means a new Model.
type Model struct {
	subjectID string
	nodes     []Node
	edges     []Edge
	index     map[string]int
}

// Stats holds summary counts for display.
type Stats struct {
	Concepts    int
	Connections int
	Drawable    int // edges whose endpoints both exist
}

// wire is the backend's JSON shape.
type wire struct {
	Nodes   []Node `json:"nodes"`
	Edges   []Edge `json:"edges"`
	PaperID string `json:"paper_id"`
}

// New builds a Model, copying nodes and edges. Node ids must be non-empty
// and unique.
func New(subjectID string, nodes []Node, edges []Edge) (*Model, error) {
	m := &Model{
		subjectID: subjectID,
		nodes:     append([]Node(nil), nodes...),
		edges:     append([]Edge(nil), edges...),
		index:     make(map[string]int, len(nodes)),
	}
	for i, n := range m.nodes {
		if strings.TrimSpace(n.ID) == "" {
			return nil, fmt.Errorf("node %d: %w", i, ErrEmptyNodeID)
		}
		if _, dup := m.index[n.ID]; dup {
			return nil, fmt.Errorf("node %q: %w", n.ID, ErrDuplicateNode)
		}
		m.index[n.ID] = i
	}
	return m, nil
}

// Empty returns a model with no nodes for the given subject.
func Empty(subjectID string) *Model {
	return &Model{subjectID: subjectID, index: map[string]int{}}
}

// Decode reads the backend JSON body. The echoed paper_id becomes the
// subject id; when the backend omits it, fallback is used.
func Decode(r io.Reader, fallback string) (*Model, error) {
	var w wire
	if err := json.NewDecoder(r).Decode(&w); err != nil {
		return nil, fmt.Errorf("graph decode: %w", err)
	}
	if w.PaperID == "" {
		w.PaperID = fallback
	}
	return New(w.PaperID, w.Nodes, w.Edges)
}

// MarshalJSON encodes the model in the backend's wire format.
func (m *Model) MarshalJSON() ([]byte, error) {
	w := wire{Nodes: m.nodes, Edges: m.edges, PaperID: m.subjectID}
	if w.Nodes == nil {
		w.Nodes = []Node{}
	}
	if w.Edges == nil {
		w.Edges = []Edge{}
	}
	return json.Marshal(w)
}

// SubjectID returns the paper id this model belongs to.
func (m *Model) SubjectID() string { return m.subjectID }

// Len returns the number of nodes.
func (m *Model) Len() int { return len(m.nodes) }

// IsEmpty reports whether the model has no nodes.
func (m *Model) IsEmpty() bool { return len(m.nodes) == 0 }

// Node returns the i-th node in model order.
func (m *Model) Node(i int) Node { return m.nodes[i] }

// Nodes returns a copy of the nodes in model order.
func (m *Model) Nodes() []Node { return append([]Node(nil), m.nodes...) }

// Edges returns a copy of the edges in model order.
func (m *Model) Edges() []Edge { return append([]Edge(nil), m.edges...) }

// Index resolves a node id to its position in model order.
func (m *Model) Index(id string) (int, bool) {
	i, ok := m.index[id]
	return i, ok
}

// Links resolves every edge to node indices. Edges with a missing endpoint
// are dropped.
func (m *Model) Links() []Link {
	links := make([]Link, 0, len(m.edges))
	for _, e := range m.edges {
		a, okA := m.index[e.Source]
		b, okB := m.index[e.Target]
		if !okA || !okB {
			continue
		}
		links = append(links, Link{A: a, B: b, Weight: e.Weight})
	}
	return links
}

// GetStats returns summary counts.
func (m *Model) GetStats() Stats {
	return Stats{
		Concepts:    len(m.nodes),
		Connections: len(m.edges),
		Drawable:    len(m.Links()),
	}
}

// Link is an edge resolved to node indices.
type Link struct {
	A, B   int
	Weight float64
}
