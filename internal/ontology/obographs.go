package ontology

import (
	"compress/gzip"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
)

// Obographs JSON as published for hp.json. Only the fields the template
// engine needs are decoded.
type obographsFile struct {
	Graphs []struct {
		Meta struct {
			Version string `json:"version"`
		} `json:"meta"`
		Nodes []struct {
			ID   string `json:"id"`
			Lbl  string `json:"lbl"`
			Type string `json:"type"`
			Meta struct {
				Deprecated bool `json:"deprecated"`
			} `json:"meta"`
		} `json:"nodes"`
		Edges []struct {
			Sub  string `json:"sub"`
			Pred string `json:"pred"`
			Obj  string `json:"obj"`
		} `json:"edges"`
	} `json:"graphs"`
}

// LoadObographs decodes an obographs JSON document into a Memory ontology.
// Obsolete terms are dropped; only is_a edges contribute to the hierarchy.
func LoadObographs(r io.Reader) (*Memory, error) {
	var doc obographsFile
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode obographs: %w", err)
	}
	if len(doc.Graphs) == 0 {
		return nil, fmt.Errorf("obographs document contains no graphs")
	}
	graph := doc.Graphs[0]
	var terms []Term
	for _, n := range graph.Nodes {
		if n.Meta.Deprecated {
			continue
		}
		id, ok := termIDFromURI(n.ID)
		if !ok {
			continue
		}
		terms = append(terms, Term{ID: id, Label: n.Lbl})
	}
	parents := make(map[TermID][]TermID)
	for _, e := range graph.Edges {
		if e.Pred != "is_a" {
			continue
		}
		child, okc := termIDFromURI(e.Sub)
		parent, okp := termIDFromURI(e.Obj)
		if !okc || !okp {
			continue
		}
		parents[child] = append(parents[child], parent)
	}
	return NewMemory(graph.Meta.Version, terms, parents), nil
}

// LoadFile reads an obographs file from disk, transparently decompressing a
// .gz suffix.
func LoadFile(path string) (*Memory, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open ontology: %w", err)
	}
	defer func() { _ = f.Close() }()
	var r io.Reader = f
	if strings.HasSuffix(path, ".gz") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("open gzip ontology: %w", err)
		}
		defer func() { _ = gz.Close() }()
		r = gz
	}
	return LoadObographs(r)
}

// termIDFromURI converts an OBO PURL such as
// http://purl.obolibrary.org/obo/HP_0000118 into HP:0000118.
func termIDFromURI(uri string) (TermID, bool) {
	idx := strings.LastIndex(uri, "/")
	frag := uri
	if idx >= 0 {
		frag = uri[idx+1:]
	}
	us := strings.Index(frag, "_")
	if us <= 0 || us == len(frag)-1 {
		return "", false
	}
	return TermID(frag[:us] + ":" + frag[us+1:]), true
}
