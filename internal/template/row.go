package template

import (
	"phetools/internal/header"
	"phetools/internal/ontology"
	"phetools/pkg/verr"
)

// CaseRow is the decoded view of one data row: the three bundles plus the
// raw phenotype cells in header order. The header is shared, never owned.
type CaseRow struct {
	header       *header.Row
	Individual   IndividualBundle
	Diseases     []DiseaseBundle
	GeneVariants []GeneVariantBundle
	hpoValues    []string
}

// CaseRowFromCells decodes a full-width row against its header.
func CaseRowFromCells(hdr *header.Row, cells []string) (*CaseRow, error) {
	if len(cells) != hdr.Len() {
		return nil, verr.Template("Row has %d fields but schema has %d columns", len(cells), hdr.Len())
	}
	hpo := make([]string, hdr.HPOCount())
	copy(hpo, cells[header.PrefixLen:])
	return &CaseRow{
		header:       hdr,
		Individual:   individualFromCells(cells),
		Diseases:     []DiseaseBundle{diseaseFromCells(cells)},
		GeneVariants: []GeneVariantBundle{geneVariantFromCells(cells)},
		hpoValues:    hpo,
	}, nil
}

// Cells re-serializes the row. The round trip through CaseRowFromCells is
// byte-exact.
func (r *CaseRow) Cells() []string {
	cells := make([]string, r.header.Len())
	ib := r.Individual
	cells[0], cells[1], cells[2], cells[3] = ib.PMID, ib.Title, ib.IndividualID, ib.Comment
	db := r.Diseases[0]
	cells[diseaseIdx], cells[diseaseIdx+1] = db.DiseaseID, db.DiseaseLabel
	gvb := r.GeneVariants[0]
	cells[geneVariantIdx] = gvb.HgncID
	cells[geneVariantIdx+1] = gvb.GeneSymbol
	cells[geneVariantIdx+2] = gvb.Transcript
	cells[geneVariantIdx+3] = gvb.Allele1
	cells[geneVariantIdx+4] = gvb.Allele2
	cells[geneVariantIdx+5] = gvb.VariantComment
	cells[demographicIdx] = ib.AgeOfOnset
	cells[demographicIdx+1] = ib.AgeAtLastEncounter
	cells[demographicIdx+2] = ib.Deceased
	cells[demographicIdx+3] = ib.Sex
	cells[header.PrefixLen-1] = "na" // separator
	copy(cells[header.PrefixLen:], r.hpoValues)
	return cells
}

// HPOValues returns the phenotype cells in header order. Shared slice.
func (r *CaseRow) HPOValues() []string { return r.hpoValues }

// QC checks every bundle and phenotype cell, collecting all defects.
func (r *CaseRow) QC() error {
	errs := verr.NewErrors()
	errs.Push(r.Individual.QC())
	for _, d := range r.Diseases {
		errs.Push(d.QC())
	}
	for _, g := range r.GeneVariants {
		errs.Push(g.QC())
	}
	for i, d := range r.header.HPODuplets() {
		errs.Push(d.QCCell(r.hpoValues[i]))
	}
	return errs.Err()
}

// ToDTO converts the row to its wire form.
func (r *CaseRow) ToDTO() RowDTO {
	diseases := make([]DiseaseDTO, len(r.Diseases))
	for i, d := range r.Diseases {
		diseases[i] = d.ToDTO()
	}
	gvbs := make([]GeneVariantBundleDTO, len(r.GeneVariants))
	for i, g := range r.GeneVariants {
		gvbs[i] = g.ToDTO()
	}
	hpo := make([]CellDTO, len(r.hpoValues))
	for i, v := range r.hpoValues {
		hpo[i] = CellDTO{Value: v}
	}
	return RowDTO{
		Individual:   r.Individual.ToDTO(),
		Diseases:     diseases,
		GeneVariants: gvbs,
		HPOData:      hpo,
	}
}

// CaseRowFromDTO rebuilds a row from its wire form under the given header.
func CaseRowFromDTO(dto RowDTO, hdr *header.Row) (*CaseRow, error) {
	if len(dto.HPOData) != hdr.HPOCount() {
		return nil, verr.Template("Row has %d HPO cells but schema has %d HPO columns", len(dto.HPOData), hdr.HPOCount())
	}
	diseases := make([]DiseaseBundle, len(dto.Diseases))
	for i, d := range dto.Diseases {
		diseases[i] = d.ToBundle()
	}
	gvbs := make([]GeneVariantBundle, len(dto.GeneVariants))
	for i, g := range dto.GeneVariants {
		gvbs[i] = g.ToBundle()
	}
	hpo := make([]string, len(dto.HPOData))
	for i, c := range dto.HPOData {
		hpo[i] = c.Value
	}
	return &CaseRow{
		header:       hdr,
		Individual:   dto.Individual.ToBundle(),
		Diseases:     diseases,
		GeneVariants: gvbs,
		hpoValues:    hpo,
	}, nil
}

// updateVector maps each term of prev to its index in updated. Every term of
// prev must appear in updated; a missing term indicates header corruption and
// is fatal.
func updateVector(prev, updated []ontology.TermID) ([]int, error) {
	newIndex := make(map[ontology.TermID]int, len(updated))
	for i, id := range updated {
		newIndex[id] = i
	}
	out := make([]int, len(prev))
	for i, id := range prev {
		idx, ok := newIndex[id]
		if !ok {
			return nil, verr.Template("Term %s missing from updated header", id)
		}
		out[i] = idx
	}
	return out, nil
}

// reorderOrFillNA scatters old values to their new positions; positions with
// no prior value, the newly added terms, get "na".
func reorderOrFillNA(oldValues []string, oldToNew []int, newSize int) []string {
	out := make([]string, newSize)
	for i := range out {
		out[i] = "na"
	}
	for oldIdx, newIdx := range oldToNew {
		out[newIdx] = oldValues[oldIdx]
	}
	return out
}

// WithHeader reconciles the row with an updated header: existing phenotype
// values keep their term, new terms are filled with "na". Returns a new row;
// the receiver is unchanged.
func (r *CaseRow) WithHeader(updated *header.Row) (*CaseRow, error) {
	prevIDs, err := r.header.HPOIDList()
	if err != nil {
		return nil, err
	}
	if len(prevIDs) != len(r.hpoValues) {
		return nil, verr.Template("Mismatched lengths between HPO ID list and HPO content")
	}
	updatedIDs, err := updated.HPOIDList()
	if err != nil {
		return nil, err
	}
	vec, err := updateVector(prevIDs, updatedIDs)
	if err != nil {
		return nil, err
	}
	return &CaseRow{
		header:       updated,
		Individual:   r.Individual,
		Diseases:     r.Diseases,
		GeneVariants: r.GeneVariants,
		hpoValues:    reorderOrFillNA(r.hpoValues, vec, len(updatedIDs)),
	}, nil
}
