package concepts

import (
	"fmt"
	"reflect"
	"strings"
	"testing"
)

func TestExtract(t *testing.T) {
	text := "Neural Networks are trained with Gradient Descent. The fine-tuning of LLM and GPU kernels uses self-attention. An API is not kept. Deep Reinforcement Learning Agents Work."
	got := Extract(text)
	want := []string{
		"Neural Networks",
		"Gradient Descent",
		"Deep Reinforcement Learning Agents",
		"fine-tuning",
		"self-attention",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Extract = %q\nwant %q", got, want)
	}
}

func TestExtractAcronyms(t *testing.T) {
	got := Extract("We compare BERT, RoBERTa and the LSTM baseline on GLUE.")
	want := []string{"BERT", "LSTM", "GLUE"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Extract = %q, want %q", got, want)
	}
}

func TestExtractDropsShortTerms(t *testing.T) {
	if got := Extract("An RNN or a CNN is an a-b test."); len(got) != 0 {
		t.Errorf("expected nothing, got %q", got)
	}
}

func TestChunks(t *testing.T) {
	text := "First para\nstill first.\n\n\n  \nSecond para.\r\n\r\nThird."
	got := Chunks(text)
	want := []string{"First para\nstill first.", "Second para.", "Third."}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Chunks = %q, want %q", got, want)
	}
	if len(Chunks("  \n\n ")) != 0 {
		t.Error("blank text should have no chunks")
	}
}

func TestBuild(t *testing.T) {
	chunks := []string{
		"Neural Networks learn with Gradient Descent. Neural Networks are deep.",
		"Gradient Descent and Neural Networks again.",
		"only Attention Heads here.",
	}
	m, err := Build("p1", chunks)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if m.SubjectID() != "p1" {
		t.Errorf("subject = %q", m.SubjectID())
	}

	nodes := m.Nodes()
	if len(nodes) != 3 {
		t.Fatalf("expected 3 nodes, got %d", len(nodes))
	}
	if nodes[0].ID != "Neural Networks" || nodes[0].Size != 3 {
		t.Errorf("node 0 = %+v", nodes[0])
	}
	if nodes[1].ID != "Gradient Descent" || nodes[1].Size != 2 {
		t.Errorf("node 1 = %+v", nodes[1])
	}
	if nodes[2].ID != "Attention Heads" || nodes[2].Type != "concept" || nodes[2].Label != "Attention Heads" {
		t.Errorf("node 2 = %+v", nodes[2])
	}

	edges := m.Edges()
	if len(edges) != 1 {
		t.Fatalf("expected 1 edge, got %+v", edges)
	}
	// chunk 1: NN, GD, NN -> (NN,GD) and (GD,NN); chunk 2: (GD,NN)
	e := edges[0]
	if e.Source != "Neural Networks" || e.Target != "Gradient Descent" || e.Weight != 3 {
		t.Errorf("edge = %+v", e)
	}
}

func TestBuildTopConcepts(t *testing.T) {
	var sb strings.Builder
	for i := 0; i < 25; i++ {
		// concept-a, concept-b, ... each appearing 25-i times
		for j := 0; j < 25-i; j++ {
			fmt.Fprintf(&sb, "term-%c ", 'a'+i)
		}
	}
	m, err := Build("p", []string{sb.String()})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if m.Len() != MaxConcepts {
		t.Fatalf("expected %d nodes, got %d", MaxConcepts, m.Len())
	}
	if m.Node(0).ID != "term-a" || m.Node(0).Size != 25 {
		t.Errorf("first node = %+v", m.Node(0))
	}
	if _, ok := m.Index("term-u"); ok {
		t.Error("21st concept should be dropped")
	}
	for _, e := range m.Edges() {
		if _, ok := m.Index(e.Source); !ok {
			t.Errorf("edge to dropped concept %q", e.Source)
		}
		if _, ok := m.Index(e.Target); !ok {
			t.Errorf("edge to dropped concept %q", e.Target)
		}
	}
}

func TestBuildTiesKeepFirstSeen(t *testing.T) {
	m, err := Build("p", []string{"zero-shot then few-shot", "Machine Learning"})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	var ids []string
	for _, n := range m.Nodes() {
		ids = append(ids, n.ID)
	}
	want := []string{"zero-shot", "few-shot", "Machine Learning"}
	if !reflect.DeepEqual(ids, want) {
		t.Errorf("order = %q, want %q", ids, want)
	}
}

func TestBuildEmpty(t *testing.T) {
	m, err := Build("p", []string{"nothing to see"})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if !m.IsEmpty() || len(m.Edges()) != 0 {
		t.Errorf("expected empty model, got %d nodes", m.Len())
	}
}
