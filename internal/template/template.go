package template

import (
	"strings"
	"unicode"

	"phetools/internal/header"
	"phetools/internal/ontology"
	"phetools/pkg/verr"
)

// GeneTranscript is the gene identity of a cohort: the HGNC id, symbol, and
// transcript of reference shared by every row.
type GeneTranscript struct {
	HgncID     string
	GeneSymbol string
	Transcript string
}

// Template is the aggregate: schema plus data rows plus the cohort identity
// derived from the unique-value columns. Data rows are stored exactly as
// loaded; edits re-validate before mutating, so a failed edit never changes
// the serialized form.
type Template struct {
	hpo     ontology.Hierarchy
	header  *header.Row
	data    [][]string
	disease DiseaseBundle
	gene    GeneTranscript
}

// Annotation pairs an ontology term with a cell value for a new case.
type Annotation struct {
	Term  ontology.Term
	Value string
}

// NewMendelian creates an empty template for a new cohort. The selected
// terms are arranged into ontology order; term labels come from hpo.
func NewMendelian(disease DiseaseBundle, gene GeneTranscript, termIDs []ontology.TermID, hpo ontology.Ontology) (*Template, error) {
	if err := disease.QC(); err != nil {
		return nil, err
	}
	arranged, err := arrangeTerms(hpo, termIDs)
	if err != nil {
		return nil, err
	}
	terms := make([]ontology.Term, len(arranged))
	for i, id := range arranged {
		t, ok := hpo.TermByID(id)
		if !ok {
			return nil, verr.Template("Term %s not found in ontology", id)
		}
		terms[i] = t
	}
	hdr, err := header.NewMendelian(terms)
	if err != nil {
		return nil, err
	}
	return &Template{hpo: hpo, header: hdr, disease: disease, gene: gene}, nil
}

// FromMatrix validates and loads a raw string matrix: two header rows plus
// at least one data row, uniform width, at least one HPO column. The cohort
// identity columns must be uniform across all data rows.
func FromMatrix(matrix [][]string, hpo ontology.Hierarchy) (*Template, error) {
	if len(matrix) < 3 {
		return nil, verr.Template("Valid template must have at least three rows (at least one data row) but template has only %d rows", len(matrix))
	}
	width := len(matrix[0])
	for _, row := range matrix {
		if len(row) != width {
			return nil, verr.Template("Not all rows of template have the same number of fields")
		}
	}
	hdr, err := header.FromMatrix(matrix[0], matrix[1])
	if err != nil {
		return nil, err
	}
	data := make([][]string, len(matrix)-2)
	for i, row := range matrix[2:] {
		data[i] = append([]string(nil), row...)
	}
	t := &Template{hpo: hpo, header: hdr, data: data}
	diseaseID, err := t.uniqueValue(diseaseIdx)
	if err != nil {
		return nil, err
	}
	diseaseLabel, err := t.uniqueValue(diseaseIdx + 1)
	if err != nil {
		return nil, err
	}
	hgnc, err := t.uniqueValue(geneVariantIdx)
	if err != nil {
		return nil, err
	}
	symbol, err := t.uniqueValue(geneVariantIdx + 1)
	if err != nil {
		return nil, err
	}
	transcript, err := t.uniqueValue(geneVariantIdx + 2)
	if err != nil {
		return nil, err
	}
	t.disease = DiseaseBundle{DiseaseID: diseaseID, DiseaseLabel: diseaseLabel}
	t.gene = GeneTranscript{HgncID: hgnc, GeneSymbol: symbol, Transcript: transcript}
	return t, nil
}

// Disease returns the cohort disease identity.
func (t *Template) Disease() DiseaseBundle { return t.disease }

// Gene returns the cohort gene identity.
func (t *Template) Gene() GeneTranscript { return t.gene }

// Header returns the schema.
func (t *Template) Header() *header.Row { return t.header }

// NRows returns the total row count in matrix coordinates: two header rows
// plus the data rows.
func (t *Template) NRows() int { return len(t.data) + 2 }

// NCols returns the column count.
func (t *Template) NCols() int { return t.header.Len() }

// CaseCount returns the number of data rows.
func (t *Template) CaseCount() int { return len(t.data) }

// Matrix serializes the template back to its raw form. Loading a matrix and
// serializing it again is byte-exact.
func (t *Template) Matrix() [][]string {
	out := make([][]string, 0, len(t.data)+2)
	out = append(out, t.header.Row1(), t.header.Row2())
	for _, row := range t.data {
		out = append(out, append([]string(nil), row...))
	}
	return out
}

// Value returns the cell at matrix coordinates (row, col); rows 0 and 1
// address the header.
func (t *Template) Value(row, col int) (string, error) {
	if row < 0 || row >= t.NRows() {
		return "", verr.RowIndex(row, t.NRows())
	}
	if col < 0 || col >= t.NCols() {
		return "", verr.ColumnIndex(col, t.NCols())
	}
	switch row {
	case 0:
		return t.header.Row1()[col], nil
	case 1:
		return t.header.Row2()[col], nil
	default:
		return t.data[row-2][col], nil
	}
}

// SetValue validates value against the column grammar and stores it. Header
// rows are editable only in the HPO block: row 0 rewrites the term label,
// row 1 the term id. On error the template is unchanged.
func (t *Template) SetValue(row, col int, value string) error {
	if row < 0 || row >= t.NRows() {
		return verr.RowIndex(row, t.NRows())
	}
	if col < 0 || col >= t.NCols() {
		return verr.ColumnIndex(col, t.NCols())
	}
	if row < 2 {
		return t.setHeaderValue(row, col, value)
	}
	duplet, err := t.header.At(col)
	if err != nil {
		return err
	}
	if err := duplet.QCCell(value); err != nil {
		return err
	}
	t.data[row-2][col] = value
	return nil
}

// setHeaderValue rewrites one half of an HPO header duplet. Fixed prefix
// columns stay frozen.
func (t *Template) setHeaderValue(row, col int, value string) error {
	duplet, err := t.header.At(col)
	if err != nil {
		return err
	}
	if !duplet.IsHPO() {
		return verr.Edit("Cannot edit header row %d", row)
	}
	row1, row2 := duplet.Row1(), duplet.Row2()
	if row == 0 {
		row1 = value
	} else {
		row2 = value
	}
	updated, err := t.header.WithHPOTerm(col, row1, row2)
	if err != nil {
		return err
	}
	t.header = updated
	return nil
}

// DeleteRow removes one data row, addressed in matrix coordinates.
func (t *Template) DeleteRow(row int) error {
	if row < 2 {
		return verr.CannotDeleteHeader(row)
	}
	if row >= t.NRows() {
		return verr.DeleteBeyondMaxRow(row, t.NRows())
	}
	t.data = append(t.data[:row-2], t.data[row-1:]...)
	return nil
}

// Column returns a read-only view over the data cells of one column.
func (t *Template) Column(col int) (Column, error) {
	duplet, err := t.header.At(col)
	if err != nil {
		return Column{}, err
	}
	values := make([]string, len(t.data))
	for i, row := range t.data {
		values[i] = row[col]
	}
	return Column{duplet: duplet, values: values}, nil
}

func (t *Template) uniqueValue(col int) (string, error) {
	c, err := t.Column(col)
	if err != nil {
		return "", err
	}
	return c.Unique()
}

// Row decodes one data row, addressed by data index (0 = first case).
func (t *Template) Row(idx int) (*CaseRow, error) {
	if idx < 0 || idx >= len(t.data) {
		return nil, verr.RowIndex(idx, len(t.data))
	}
	return CaseRowFromCells(t.header, t.data[idx])
}

// Options enumerates the legal interactive edits for a cell in matrix
// coordinates. Header cells are frozen except in the HPO block, where the
// term itself may be edited. Callers may supply additional context actions.
func (t *Template) Options(row, col int, additional []string) ([]string, error) {
	if row < 0 || row >= t.NRows() {
		return nil, verr.RowIndex(row, t.NRows())
	}
	duplet, err := t.header.At(col)
	if err != nil {
		return nil, err
	}
	if row < 2 {
		if duplet.IsHPO() {
			return append([]string{"edit"}, additional...), nil
		}
		return []string{"not editable"}, nil
	}
	return append(duplet.Options(), additional...), nil
}

var sexSubstitutions = map[string]string{
	"male":    "M",
	"female":  "F",
	"other":   "O",
	"unknown": "U",
}

// ExecuteOperation applies a named transform to a data cell and re-validates
// exactly as SetValue does.
func (t *Template) ExecuteOperation(row, col int, op string) error {
	current, err := t.Value(row, col)
	if err != nil {
		return err
	}
	duplet, err := t.header.At(col)
	if err != nil {
		return err
	}
	var value string
	switch op {
	case "trim":
		value = strings.TrimSpace(current)
	case "clear":
		value = ""
	case "remove whitespace":
		value = strings.Map(func(r rune) rune {
			if unicode.IsSpace(r) {
				return -1
			}
			return r
		}, current)
	default:
		if duplet.Kind() == header.KindSex {
			if v, ok := sexSubstitutions[op]; ok {
				value = v
				break
			}
		}
		// Controlled-vocabulary operations set the option verbatim.
		found := false
		for _, candidate := range duplet.Options() {
			if candidate == op && op != "edit" {
				value = op
				found = true
				break
			}
		}
		if !found {
			return verr.Edit("Unknown operation '%s'", op)
		}
	}
	return t.SetValue(row, col, value)
}

// arrangeTerms orders termIDs by ontology traversal and rejects terms
// outside the phenotypic abnormality subhierarchy.
func arrangeTerms(hpo ontology.Hierarchy, termIDs []ontology.TermID) ([]ontology.TermID, error) {
	arr := ontology.NewArranger(hpo)
	arranged := arr.Arrange(termIDs)
	if msgs := arr.Errors(); len(msgs) > 0 {
		errs := verr.NewErrors()
		for _, m := range msgs {
			errs.Push(verr.Template("%s", m))
		}
		return nil, errs
	}
	return arranged, nil
}

// extendSchema builds the header that results from adding terms to the
// phenotype block: the union of existing and new ids, rearranged into
// ontology order. Nothing is committed.
func (t *Template) extendSchema(terms []ontology.Term) (*header.Row, error) {
	labels := make(map[ontology.TermID]string, t.header.HPOCount()+len(terms))
	existing, err := t.header.HPOIDList()
	if err != nil {
		return nil, err
	}
	for _, d := range t.header.HPODuplets() {
		labels[ontology.TermID(d.Row2())] = d.Row1()
	}
	ids := append([]ontology.TermID(nil), existing...)
	for _, term := range terms {
		if _, ok := labels[term.ID]; ok {
			continue
		}
		labels[term.ID] = term.Label
		ids = append(ids, term.ID)
	}
	arranged, err := arrangeTerms(t.hpo, ids)
	if err != nil {
		return nil, err
	}
	arrangedTerms := make([]ontology.Term, len(arranged))
	for i, id := range arranged {
		arrangedTerms[i] = ontology.Term{ID: id, Label: labels[id]}
	}
	return header.NewMendelian(arrangedTerms)
}

// reconcileRows rebuilds every data row against the updated header: values
// follow their term, new terms are filled with "na". The prefix cells are
// carried over verbatim. Nothing is committed; the caller installs the
// result together with the header.
func (t *Template) reconcileRows(updated *header.Row) ([][]string, error) {
	newData := make([][]string, len(t.data))
	for i, row := range t.data {
		cr, err := CaseRowFromCells(t.header, row)
		if err != nil {
			return nil, err
		}
		nr, err := cr.WithHeader(updated)
		if err != nil {
			return nil, err
		}
		cells := nr.Cells()
		copy(cells, row[:header.PrefixLen])
		newData[i] = cells
	}
	return newData, nil
}

// AddHPOTerms extends the phenotype block with new terms. The whole block,
// existing and new, is rearranged into ontology order and every data row is
// reconciled: values follow their term, new terms are filled with "na".
// A failure leaves the template untouched.
func (t *Template) AddHPOTerms(terms []ontology.Term) error {
	updated, err := t.extendSchema(terms)
	if err != nil {
		return err
	}
	newData, err := t.reconcileRows(updated)
	if err != nil {
		return err
	}
	t.header = updated
	t.data = newData
	return nil
}

// AddRow appends a new case. Annotated terms not yet in the schema are added
// first, reconciling all existing rows; every unannotated column of the new
// row gets "na". The row is fully validated before the template is changed.
func (t *Template) AddRow(individual IndividualBundleDTO, geneVariant GeneVariantBundleDTO, annotations []Annotation) error {
	newTerms := make([]ontology.Term, 0, len(annotations))
	for _, a := range annotations {
		newTerms = append(newTerms, a.Term)
	}
	updated, err := t.extendSchema(newTerms)
	if err != nil {
		return err
	}
	newData, err := t.reconcileRows(updated)
	if err != nil {
		return err
	}
	values := make(map[ontology.TermID]string, len(annotations))
	for _, a := range annotations {
		values[a.Term.ID] = a.Value
	}
	ids, err := updated.HPOIDList()
	if err != nil {
		return err
	}
	cells := make([]string, updated.Len())
	ib := individual.ToBundle()
	gvb := geneVariant.ToBundle()
	cells[0], cells[1], cells[2], cells[3] = ib.PMID, ib.Title, ib.IndividualID, ib.Comment
	cells[diseaseIdx], cells[diseaseIdx+1] = t.disease.DiseaseID, t.disease.DiseaseLabel
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
	cells[header.PrefixLen-1] = "na"
	for i, id := range ids {
		v, ok := values[id]
		if !ok || v == "" {
			v = "na"
		}
		cells[header.PrefixLen+i] = v
	}
	if err := updated.QCRow(cells); err != nil {
		return err
	}
	t.header = updated
	t.data = append(newData, cells)
	return nil
}

// QC re-validates the whole template, collecting every defect in reading
// order: cell grammars first, then the uniform-identity columns.
func (t *Template) QC() error {
	errs := verr.NewErrors()
	for _, row := range t.data {
		errs.Push(t.header.QCRow(row))
	}
	for _, col := range []int{diseaseIdx, diseaseIdx + 1, geneVariantIdx, geneVariantIdx + 1, geneVariantIdx + 2} {
		if _, err := t.uniqueValue(col); err != nil {
			errs.Push(err)
		}
	}
	return errs.Err()
}

// ToDTO converts the template to its wire form.
func (t *Template) ToDTO() (TemplateDTO, error) {
	headers := make([]HeaderDupletDTO, 0, t.header.HPOCount())
	for _, d := range t.header.HPODuplets() {
		headers = append(headers, HeaderDupletDTO{H1: d.Row1(), H2: d.Row2()})
	}
	rows := make([]RowDTO, len(t.data))
	for i := range t.data {
		r, err := t.Row(i)
		if err != nil {
			return TemplateDTO{}, err
		}
		rows[i] = r.ToDTO()
	}
	return TemplateDTO{CohortType: CohortMendelian, HPOHeaders: headers, Rows: rows}, nil
}

// FromDTO rebuilds a template from its wire form.
func FromDTO(dto TemplateDTO, hpo ontology.Hierarchy) (*Template, error) {
	if dto.CohortType != CohortMendelian {
		return nil, verr.Template("Unsupported cohort type '%s'", dto.CohortType)
	}
	terms := make([]ontology.Term, len(dto.HPOHeaders))
	for i, h := range dto.HPOHeaders {
		id, err := ontology.ParseTermID(h.H2)
		if err != nil {
			return nil, err
		}
		terms[i] = ontology.Term{ID: id, Label: h.H1}
	}
	hdr, err := header.NewMendelian(terms)
	if err != nil {
		return nil, err
	}
	data := make([][]string, len(dto.Rows))
	for i, rowDTO := range dto.Rows {
		row, err := CaseRowFromDTO(rowDTO, hdr)
		if err != nil {
			return nil, err
		}
		data[i] = row.Cells()
	}
	matrix := append([][]string{hdr.Row1(), hdr.Row2()}, data...)
	return FromMatrix(matrix, hpo)
}
