package ontology

import "fmt"

// Arranger orders a curator-selected set of phenotype terms by depth-first
// search over the ontology so related terms end up adjacent in the template.
//
// Neoplasm terms get their own pass and are appended after the general
// phenotypic-abnormality pass. Nodes outside the selected set are traversed
// only to discover adjacency, never emitted. The output order depends only
// on the two fixed roots, the ontology's child order, and the selected set.
type Arranger struct {
	hpo      Hierarchy
	selected map[TermID]struct{}
	errs     []string
}

// NewArranger creates an arranger over the given hierarchy.
func NewArranger(hpo Hierarchy) *Arranger {
	return &Arranger{hpo: hpo}
}

// Arrange returns the selected terms in curation order. A selected term that
// is not part of the phenotypic-abnormality subtree is recorded as an error
// and excluded from the result; call Errors to retrieve the reports.
func (a *Arranger) Arrange(selected []TermID) []TermID {
	a.selected = make(map[TermID]struct{}, len(selected))
	a.errs = nil
	for _, id := range selected {
		a.selected[id] = struct{}{}
	}

	visited := make(map[TermID]struct{})
	var neoplasmTerms []TermID
	var ordered []TermID
	// Neoplasm first so all tumor phenotypes stay together; they are
	// appended after the organ-system ordering.
	a.dfs(Neoplasm, visited, &neoplasmTerms)
	a.dfs(PhenotypicAbnormality, visited, &ordered)
	ordered = append(ordered, neoplasmTerms...)

	emitted := make(map[TermID]struct{}, len(ordered))
	for _, id := range ordered {
		emitted[id] = struct{}{}
	}
	for _, id := range selected {
		if _, ok := emitted[id]; !ok {
			a.errs = append(a.errs, fmt.Sprintf("TermId %s does not belong to phenotypic abnormality subhierarchy", id))
		}
	}
	return ordered
}

// Errors reports the terms that could not be placed by the last Arrange call.
func (a *Arranger) Errors() []string { return a.errs }

func (a *Arranger) dfs(start TermID, visited map[TermID]struct{}, ordered *[]TermID) {
	if _, ok := visited[start]; ok {
		return
	}
	visited[start] = struct{}{}
	if !a.hpo.IsEqualOrDescendantOf(start, PhenotypicAbnormality) {
		return
	}
	if _, ok := a.selected[start]; ok {
		*ordered = append(*ordered, start)
	}
	for _, child := range a.hpo.ChildIDs(start) {
		a.dfs(child, visited, ordered)
	}
}
