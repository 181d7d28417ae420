// Package ontology provides the read-only view of the Human Phenotype
// Ontology consumed by the template engine: term identifiers, labels, and
// hierarchy queries, plus the deterministic term arranger.
package ontology

import (
	"sort"
	"strings"

	"phetools/pkg/verr"
)

// TermID is a CURIE identifying an ontology term, e.g. HP:0001250.
type TermID string

// Well-known hierarchy roots used by the arranger.
const (
	PhenotypicAbnormality TermID = "HP:0000118"
	Neoplasm              TermID = "HP:0002664"
)

// ParseTermID validates the CURIE shape (single colon, non-empty prefix and
// suffix, no whitespace).
func ParseTermID(s string) (TermID, error) {
	if s == "" || strings.ContainsAny(s, " \t") {
		return "", verr.TermIDParse(s)
	}
	idx := strings.Index(s, ":")
	if idx <= 0 || idx == len(s)-1 || strings.Count(s, ":") != 1 {
		return "", verr.TermIDParse(s)
	}
	return TermID(s), nil
}

// Term is a minimal ontology term: identifier plus primary label.
type Term struct {
	ID    TermID
	Label string
}

// Hierarchy is the read-only graph surface needed by the arranger.
type Hierarchy interface {
	// IsEqualOrDescendantOf reports whether t equals ancestor or lies in
	// its subtree.
	IsEqualOrDescendantOf(t, ancestor TermID) bool
	// ChildIDs returns the direct children of t in a stable order.
	ChildIDs(t TermID) []TermID
}

// Ontology adds term lookup to the hierarchy surface.
type Ontology interface {
	Hierarchy
	TermByID(id TermID) (Term, bool)
	Version() string
	Len() int
}

// Memory is an immutable in-memory ontology. Children are sorted when the
// ontology is built so every traversal over the same snapshot yields the
// same order regardless of input ordering.
type Memory struct {
	version  string
	terms    map[TermID]Term
	parents  map[TermID][]TermID
	children map[TermID][]TermID
}

// NewMemory builds an ontology from terms and child->parents edges.
func NewMemory(version string, terms []Term, parents map[TermID][]TermID) *Memory {
	m := &Memory{
		version:  version,
		terms:    make(map[TermID]Term, len(terms)),
		parents:  make(map[TermID][]TermID, len(parents)),
		children: make(map[TermID][]TermID),
	}
	for _, t := range terms {
		m.terms[t.ID] = t
	}
	for child, ps := range parents {
		for _, p := range ps {
			m.parents[child] = append(m.parents[child], p)
			m.children[p] = append(m.children[p], child)
		}
	}
	for id := range m.children {
		sortTermIDs(m.children[id])
	}
	for id := range m.parents {
		sortTermIDs(m.parents[id])
	}
	return m
}

func sortTermIDs(ids []TermID) {
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
}

func (m *Memory) Version() string { return m.version }

func (m *Memory) Len() int { return len(m.terms) }

func (m *Memory) TermByID(id TermID) (Term, bool) {
	t, ok := m.terms[id]
	return t, ok
}

func (m *Memory) ChildIDs(t TermID) []TermID {
	return m.children[t]
}

func (m *Memory) IsEqualOrDescendantOf(t, ancestor TermID) bool {
	if t == ancestor {
		return true
	}
	seen := map[TermID]struct{}{t: {}}
	stack := append([]TermID(nil), m.parents[t]...)
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if cur == ancestor {
			return true
		}
		if _, ok := seen[cur]; ok {
			continue
		}
		seen[cur] = struct{}{}
		stack = append(stack, m.parents[cur]...)
	}
	return false
}
