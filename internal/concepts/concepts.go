// Package concepts builds a concept co-occurrence graph from paper text.
package concepts

import (
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/dineshmc1/rag-based-research-paper-assistant/internal/graph"
)

// MaxConcepts is how many of the most frequent concepts become nodes.
const MaxConcepts = 20

const minLength = 4

var (
	phrasePattern  = regexp.MustCompile(`\b([A-Z][a-z]+(?:\s+[A-Z][a-z]+){1,3})\b`)
	hyphenPattern  = regexp.MustCompile(`\b([a-z]+-[a-z]+(?:-[a-z]+)*)\b`)
	acronymPattern = regexp.MustCompile(`\b([A-Z]{2,})\b`)
)

// Extract returns the concepts mentioned in text, in pattern order and with
// repeats: capitalised phrases of two to four words, lower-cased
// hyphenated terms, then acronyms. Terms shorter than four characters are
// dropped.
func Extract(text string) []string {
	var out []string
	add := func(matches [][]string) {
		for _, m := range matches {
			c := strings.TrimSpace(m[1])
			if utf8.RuneCountInString(c) >= minLength {
				out = append(out, c)
			}
		}
	}
	add(phrasePattern.FindAllStringSubmatch(text, -1))
	add(hyphenPattern.FindAllStringSubmatch(strings.ToLower(text), -1))
	add(acronymPattern.FindAllStringSubmatch(text, -1))
	return out
}

// Chunks splits paper text into paragraphs separated by blank lines.
func Chunks(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	var chunks []string
	var cur []string
	flush := func() {
		if p := strings.TrimSpace(strings.Join(cur, "\n")); p != "" {
			chunks = append(chunks, p)
		}
		cur = cur[:0]
	}
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) == "" {
			flush()
			continue
		}
		cur = append(cur, line)
	}
	flush()
	return chunks
}

// Build returns the concept graph of a paper. Nodes are the most frequent
// concepts (ties keep first-seen order) sized by frequency. Two concepts
// mentioned in the same chunk are connected; the edge weight counts every
// co-occurring pair across chunks. Edges are undirected and keep the
// orientation they were first seen in.
func Build(paperID string, chunks []string) (*graph.Model, error) {
	perChunk := make([][]string, len(chunks))
	freq := map[string]int{}
	var order []string
	for i, chunk := range chunks {
		perChunk[i] = Extract(chunk)
		for _, c := range perChunk[i] {
			if freq[c] == 0 {
				order = append(order, c)
			}
			freq[c]++
		}
	}

	top := append([]string(nil), order...)
	sort.SliceStable(top, func(i, j int) bool { return freq[top[i]] > freq[top[j]] })
	if len(top) > MaxConcepts {
		top = top[:MaxConcepts]
	}
	keep := make(map[string]bool, len(top))
	nodes := make([]graph.Node, len(top))
	for i, c := range top {
		keep[c] = true
		nodes[i] = graph.Node{ID: c, Label: c, Size: float64(freq[c]), Type: "concept"}
	}

	type pair struct{ a, b string }
	var edges []graph.Edge
	index := map[pair]int{}
	for _, found := range perChunk {
		var cs []string
		for _, c := range found {
			if keep[c] {
				cs = append(cs, c)
			}
		}
		for i, a := range cs {
			for _, b := range cs[i+1:] {
				if a == b {
					continue
				}
				key := pair{a, b}
				if b < a {
					key = pair{b, a}
				}
				if k, ok := index[key]; ok {
					edges[k].Weight++
					continue
				}
				index[key] = len(edges)
				edges = append(edges, graph.Edge{Source: a, Target: b, Weight: 1})
			}
		}
	}

	return graph.New(paperID, nodes, edges)
}
