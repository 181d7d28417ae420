package ontology

import (
	"reflect"
	"strings"
	"testing"
)

func TestParseTermID(t *testing.T) {
	cases := []struct {
		in   string
		ok   bool
	}{
		{"HP:0000118", true},
		{"MONDO:0007947", true},
		{"", false},
		{"HP0000118", false},
		{":0000118", false},
		{"HP:", false},
		{"HP:0000118 ", false},
		{"HP:0000:118", false},
	}
	for _, tc := range cases {
		got, err := ParseTermID(tc.in)
		if tc.ok && err != nil {
			t.Fatalf("%q: unexpected error %v", tc.in, err)
		}
		if !tc.ok {
			if err == nil {
				t.Fatalf("%q: expected error", tc.in)
			}
			want := "Failed to parse TermId: " + tc.in
			if err.Error() != want {
				t.Fatalf("%q: expected %q, got %q", tc.in, want, err.Error())
			}
			continue
		}
		if string(got) != tc.in {
			t.Fatalf("%q: got %q", tc.in, got)
		}
	}
}

// skeleton builds a small tree under phenotypic abnormality:
//
//	HP:0000118
//	├── HP:0000924 (skeletal)
//	│   └── HP:0001238 (slender finger)
//	├── HP:0001250 (seizure)
//	│   └── HP:0002069 (tonic-clonic)
//	└── HP:0002664 (neoplasm)
//	    └── HP:0012125 (prostate cancer)
func skeleton() *Memory {
	terms := []Term{
		{ID: PhenotypicAbnormality, Label: "Phenotypic abnormality"},
		{ID: Neoplasm, Label: "Neoplasm"},
		{ID: "HP:0000924", Label: "Abnormality of the skeletal system"},
		{ID: "HP:0001238", Label: "Slender finger"},
		{ID: "HP:0001250", Label: "Seizure"},
		{ID: "HP:0002069", Label: "Bilateral tonic-clonic seizure"},
		{ID: "HP:0012125", Label: "Prostate cancer"},
	}
	parents := map[TermID][]TermID{
		"HP:0000924": {PhenotypicAbnormality},
		"HP:0001238": {"HP:0000924"},
		"HP:0001250": {PhenotypicAbnormality},
		"HP:0002069": {"HP:0001250"},
		Neoplasm:     {PhenotypicAbnormality},
		"HP:0012125": {Neoplasm},
	}
	return NewMemory("test", terms, parents)
}

func TestMemoryHierarchy(t *testing.T) {
	m := skeleton()
	if m.Len() != 7 {
		t.Fatalf("expected 7 terms, got %d", m.Len())
	}
	if !m.IsEqualOrDescendantOf("HP:0002069", PhenotypicAbnormality) {
		t.Fatalf("tonic-clonic should descend from phenotypic abnormality")
	}
	if !m.IsEqualOrDescendantOf("HP:0001250", "HP:0001250") {
		t.Fatalf("a term equals itself")
	}
	if m.IsEqualOrDescendantOf("HP:0001250", Neoplasm) {
		t.Fatalf("seizure is not a neoplasm")
	}
	if m.IsEqualOrDescendantOf("HP:9999999", PhenotypicAbnormality) {
		t.Fatalf("unknown term has no ancestors")
	}
	term, ok := m.TermByID("HP:0001238")
	if !ok || term.Label != "Slender finger" {
		t.Fatalf("unexpected term lookup: %v %v", term, ok)
	}
}

func TestMemoryChildOrderIsDeterministic(t *testing.T) {
	m := skeleton()
	want := []TermID{"HP:0000924", "HP:0001250", Neoplasm}
	if got := m.ChildIDs(PhenotypicAbnormality); !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestArrangerOrdersByTraversal(t *testing.T) {
	m := skeleton()
	arr := NewArranger(m)
	selected := []TermID{"HP:0002069", "HP:0001238", "HP:0001250"}
	got := arr.Arrange(selected)
	want := []TermID{"HP:0001238", "HP:0001250", "HP:0002069"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	if len(arr.Errors()) != 0 {
		t.Fatalf("unexpected errors: %v", arr.Errors())
	}
}

func TestArrangerPutsNeoplasmLast(t *testing.T) {
	m := skeleton()
	arr := NewArranger(m)
	got := arr.Arrange([]TermID{"HP:0012125", "HP:0001238"})
	want := []TermID{"HP:0001238", "HP:0012125"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestArrangerReportsForeignTerms(t *testing.T) {
	m := skeleton()
	arr := NewArranger(m)
	got := arr.Arrange([]TermID{"HP:0001250", "HP:7777777"})
	if !reflect.DeepEqual(got, []TermID{"HP:0001250"}) {
		t.Fatalf("unexpected arrangement: %v", got)
	}
	errs := arr.Errors()
	if len(errs) != 1 || errs[0] != "TermId HP:7777777 does not belong to phenotypic abnormality subhierarchy" {
		t.Fatalf("unexpected errors: %v", errs)
	}
}

func TestLoadObographs(t *testing.T) {
	doc := `{
	  "graphs": [{
	    "meta": {"version": "http://purl.obolibrary.org/obo/hp/releases/2025-03-03/hp.json"},
	    "nodes": [
	      {"id": "http://purl.obolibrary.org/obo/HP_0000118", "lbl": "Phenotypic abnormality", "type": "CLASS"},
	      {"id": "http://purl.obolibrary.org/obo/HP_0001250", "lbl": "Seizure", "type": "CLASS"},
	      {"id": "http://purl.obolibrary.org/obo/HP_0000001", "lbl": "Obsolete thing", "type": "CLASS", "meta": {"deprecated": true}},
	      {"id": "http://purl.obolibrary.org/obo/UBERON_0000955", "lbl": "brain", "type": "CLASS"}
	    ],
	    "edges": [
	      {"sub": "http://purl.obolibrary.org/obo/HP_0001250", "pred": "is_a", "obj": "http://purl.obolibrary.org/obo/HP_0000118"},
	      {"sub": "http://purl.obolibrary.org/obo/HP_0001250", "pred": "part_of", "obj": "http://purl.obolibrary.org/obo/HP_0000001"}
	    ]
	  }]
	}`
	m, err := LoadObographs(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if m.Len() != 3 {
		t.Fatalf("expected 3 terms (deprecated skipped), got %d", m.Len())
	}
	if !m.IsEqualOrDescendantOf("HP:0001250", PhenotypicAbnormality) {
		t.Fatalf("is_a edge not loaded")
	}
	if m.IsEqualOrDescendantOf("HP:0001250", "HP:0000001") {
		t.Fatalf("non-is_a edge must be ignored")
	}
}
