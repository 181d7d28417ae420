package header

import (
	"phetools/internal/ontology"
	"phetools/pkg/verr"
)

// Row is the full ordered schema of a template: the 17 fixed duplets followed
// by one HPO duplet per curated term. Immutable; template edits that change
// the phenotype block build a new Row.
type Row struct {
	duplets []Duplet
}

// NewMendelian builds the schema for a Mendelian cohort with the given
// arranged HPO terms.
func NewMendelian(terms []ontology.Term) (*Row, error) {
	duplets := Prefix()
	seen := make(map[ontology.TermID]struct{}, len(terms))
	for _, t := range terms {
		if _, dup := seen[t.ID]; dup {
			return nil, verr.Header("Duplicate HPO term id '%s'", t.ID)
		}
		seen[t.ID] = struct{}{}
		duplets = append(duplets, HPOTerm(t.ID, t.Label))
	}
	return &Row{duplets: duplets}, nil
}

// FromMatrix validates the two raw header rows against the fixed prefix and
// parses the remainder as HPO columns. Every mismatch is collected; the
// caller gets all defects in one pass.
func FromMatrix(row1, row2 []string) (*Row, error) {
	errs := verr.NewErrors()
	if len(row1) != len(row2) {
		errs.Push(verr.Header("Header rows differ in length: %d vs %d", len(row1), len(row2)))
		return nil, errs
	}
	if len(row1) < PrefixLen+1 {
		errs.Push(verr.Template("No HPO column found (number of columns: %d)", len(row1)))
		return nil, errs
	}
	duplets := make([]Duplet, 0, len(row1))
	for i := 0; i < PrefixLen; i++ {
		d, err := FromTable(Kind(i), row1[i], row2[i])
		if err != nil {
			errs.Push(err)
			d = Fixed(Kind(i)) // keep positions aligned while accumulating
		}
		duplets = append(duplets, d)
	}
	seen := make(map[ontology.TermID]struct{})
	for i := PrefixLen; i < len(row1); i++ {
		d, err := ParseHPO(row1[i], row2[i])
		if err != nil {
			errs.Push(err)
			continue
		}
		id := ontology.TermID(d.Row2())
		if _, dup := seen[id]; dup {
			errs.Push(verr.Header("Duplicate HPO term id '%s'", id))
			continue
		}
		seen[id] = struct{}{}
		duplets = append(duplets, d)
	}
	if errs.HasError() {
		return nil, errs
	}
	return &Row{duplets: duplets}, nil
}

// Len returns the total number of columns.
func (r *Row) Len() int { return len(r.duplets) }

// HPOCount returns the number of phenotype columns.
func (r *Row) HPOCount() int { return len(r.duplets) - PrefixLen }

// At returns the duplet at column idx.
func (r *Row) At(idx int) (Duplet, error) {
	if idx < 0 || idx >= len(r.duplets) {
		return Duplet{}, verr.ColumnIndex(idx, len(r.duplets))
	}
	return r.duplets[idx], nil
}

// Duplets returns the schema in column order. The returned slice is shared;
// callers must not mutate it.
func (r *Row) Duplets() []Duplet { return r.duplets }

// HPODuplets returns the phenotype block in curation order.
func (r *Row) HPODuplets() []Duplet { return r.duplets[PrefixLen:] }

// HPOIDList returns the term ids of the phenotype block in column order.
func (r *Row) HPOIDList() ([]ontology.TermID, error) {
	out := make([]ontology.TermID, 0, r.HPOCount())
	for _, d := range r.HPODuplets() {
		id, err := d.TermID()
		if err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, nil
}

// HPOContentMap maps each phenotype term id to its cell value in one data
// row. cells must be a full-width row.
func (r *Row) HPOContentMap(cells []string) (map[ontology.TermID]string, error) {
	if len(cells) != len(r.duplets) {
		return nil, verr.Template("Row has %d fields but schema has %d columns", len(cells), len(r.duplets))
	}
	out := make(map[ontology.TermID]string, r.HPOCount())
	for i := PrefixLen; i < len(r.duplets); i++ {
		id, err := r.duplets[i].TermID()
		if err != nil {
			return nil, err
		}
		out[id] = cells[i]
	}
	return out, nil
}

// Row1 and Row2 serialize the header back to its two raw rows.
func (r *Row) Row1() []string {
	out := make([]string, len(r.duplets))
	for i, d := range r.duplets {
		out[i] = d.Row1()
	}
	return out
}

func (r *Row) Row2() []string {
	out := make([]string, len(r.duplets))
	for i, d := range r.duplets {
		out[i] = d.Row2()
	}
	return out
}

// WithHPOTerm replaces the phenotype duplet at column col with one parsed
// from row1 (label) and row2 (term id). Returns a new Row; the receiver is
// unchanged. The edit must not introduce a duplicate term id.
func (r *Row) WithHPOTerm(col int, row1, row2 string) (*Row, error) {
	if col < PrefixLen || col >= len(r.duplets) {
		return nil, verr.Header("Column %d is not an HPO column", col)
	}
	d, err := ParseHPO(row1, row2)
	if err != nil {
		return nil, err
	}
	id := ontology.TermID(d.Row2())
	for i := PrefixLen; i < len(r.duplets); i++ {
		if i == col {
			continue
		}
		if ontology.TermID(r.duplets[i].Row2()) == id {
			return nil, verr.Header("Duplicate HPO term id '%s'", id)
		}
	}
	duplets := append([]Duplet(nil), r.duplets...)
	duplets[col] = d
	return &Row{duplets: duplets}, nil
}

// QCRow checks one full-width data row cell by cell, collecting every defect.
func (r *Row) QCRow(cells []string) error {
	errs := verr.NewErrors()
	if len(cells) != len(r.duplets) {
		errs.Push(verr.Template("Row has %d fields but schema has %d columns", len(cells), len(r.duplets)))
		return errs.Err()
	}
	for i, d := range r.duplets {
		errs.Push(d.QCCell(cells[i]))
	}
	return errs.Err()
}
