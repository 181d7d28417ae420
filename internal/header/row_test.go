package header

import (
	"strings"
	"testing"

	"phetools/internal/ontology"
	"phetools/pkg/verr"
)

func validHeaderRows() ([]string, []string) {
	row1 := []string{
		"PMID", "title", "individual_id", "comment", "disease_id", "disease_label",
		"HGNC_id", "gene_symbol", "transcript", "allele_1", "allele_2", "variant.comment",
		"age_of_onset", "age_at_last_encounter", "deceased", "sex", "HPO",
		"Failure to thrive", "Seizure",
	}
	row2 := []string{
		"CURIE", "str", "str", "optional", "CURIE", "str",
		"CURIE", "str", "str", "str", "str", "optional",
		"age", "age", "yes/no/na", "M:F:O:U", "na",
		"HP:0001508", "HP:0001250",
	}
	return row1, row2
}

func TestFromMatrixValid(t *testing.T) {
	row1, row2 := validHeaderRows()
	r, err := FromMatrix(row1, row2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Len() != 19 {
		t.Fatalf("expected 19 columns, got %d", r.Len())
	}
	if r.HPOCount() != 2 {
		t.Fatalf("expected 2 HPO columns, got %d", r.HPOCount())
	}
	ids, err := r.HPOIDList()
	if err != nil {
		t.Fatalf("hpo id list: %v", err)
	}
	if ids[0] != "HP:0001508" || ids[1] != "HP:0001250" {
		t.Fatalf("unexpected term ids: %v", ids)
	}
}

func TestFromMatrixRoundTrip(t *testing.T) {
	row1, row2 := validHeaderRows()
	r, err := FromMatrix(row1, row2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got1, got2 := r.Row1(), r.Row2()
	for i := range row1 {
		if got1[i] != row1[i] || got2[i] != row2[i] {
			t.Fatalf("column %d: expected (%q,%q), got (%q,%q)", i, row1[i], row2[i], got1[i], got2[i])
		}
	}
}

func TestFromMatrixAccumulatesAllMismatches(t *testing.T) {
	row1, row2 := validHeaderRows()
	row1[0] = "PMD"
	row2[14] = "str"
	_, err := FromMatrix(row1, row2)
	if err == nil {
		t.Fatalf("expected error for malformed header")
	}
	errs, ok := err.(*verr.Errors)
	if !ok {
		t.Fatalf("expected collected errors, got %T", err)
	}
	if errs.Len() != 2 {
		t.Fatalf("expected 2 errors, got %d: %v", errs.Len(), errs.Messages())
	}
	msgs := errs.Messages()
	if msgs[0] != "Malformed PMID Header: Expected 'PMID' but got 'PMD'" {
		t.Fatalf("unexpected first message: %q", msgs[0])
	}
	if msgs[1] != "Malformed deceased Header: Expected 'yes/no/na' but got 'str'" {
		t.Fatalf("unexpected second message: %q", msgs[1])
	}
}

func TestFromMatrixRejectsDuplicateTerm(t *testing.T) {
	row1, row2 := validHeaderRows()
	row1 = append(row1, "Seizure")
	row2 = append(row2, "HP:0001250")
	_, err := FromMatrix(row1, row2)
	if err == nil {
		t.Fatalf("expected duplicate term error")
	}
	if !strings.Contains(err.Error(), "Duplicate HPO term id 'HP:0001250'") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestFromMatrixRequiresHPOColumn(t *testing.T) {
	row1, row2 := validHeaderRows()
	_, err := FromMatrix(row1[:17], row2[:17])
	if err == nil {
		t.Fatalf("expected error for header without HPO columns")
	}
	if !strings.Contains(err.Error(), "No HPO column found (number of columns: 17)") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestNewMendelian(t *testing.T) {
	terms := []ontology.Term{
		{ID: "HP:0001508", Label: "Failure to thrive"},
		{ID: "HP:0001250", Label: "Seizure"},
	}
	r, err := NewMendelian(terms)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Len() != PrefixLen+2 {
		t.Fatalf("expected %d columns, got %d", PrefixLen+2, r.Len())
	}
	if _, err := NewMendelian(append(terms, terms[0])); err == nil {
		t.Fatalf("expected duplicate term error")
	}
}

func TestWithHPOTerm(t *testing.T) {
	row1, row2 := validHeaderRows()
	r, err := FromMatrix(row1, row2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	updated, err := r.WithHPOTerm(PrefixLen, "Postnatal growth failure", "HP:0008897")
	if err != nil {
		t.Fatalf("with hpo term: %v", err)
	}
	d, err := updated.At(PrefixLen)
	if err != nil {
		t.Fatalf("at: %v", err)
	}
	if d.Row1() != "Postnatal growth failure" || d.Row2() != "HP:0008897" {
		t.Fatalf("unexpected duplet: (%q,%q)", d.Row1(), d.Row2())
	}
	if got, _ := r.At(PrefixLen); got.Row2() != "HP:0001508" {
		t.Fatalf("receiver must stay unchanged, got %q", got.Row2())
	}

	if _, err := r.WithHPOTerm(0, "PMID", "CURIE"); err == nil {
		t.Fatalf("expected error for fixed prefix column")
	}
	_, err = r.WithHPOTerm(PrefixLen, "Failure to thrive", "HP_0001508")
	if err == nil || !strings.Contains(err.Error(), "is not a term id") {
		t.Fatalf("unexpected error: %v", err)
	}
	_, err = r.WithHPOTerm(PrefixLen, "", "HP:0008897")
	if err == nil || !strings.Contains(err.Error(), "empty label") {
		t.Fatalf("unexpected error: %v", err)
	}
	_, err = r.WithHPOTerm(PrefixLen, "Seizure", "HP:0001250")
	if err == nil || !strings.Contains(err.Error(), "Duplicate HPO term id 'HP:0001250'") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestQCRowCollectsEveryDefect(t *testing.T) {
	row1, row2 := validHeaderRows()
	r, err := FromMatrix(row1, row2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	cells := []string{
		"PMID:29198722", "A recurrent de novo variant", "Subject 1", "",
		"OMIM:617865", "NEDMAGA", "HGNC:29316", "ZSWIM6", "NM_020928.2",
		"c.2737C>T", "na", "", "Infantile onset", "P16Y", "no", "M", "na",
		"observed", "excluded",
	}
	if err := r.QCRow(cells); err != nil {
		t.Fatalf("valid row rejected: %v", err)
	}
	cells[0] = "PMD123"
	cells[15] = "male"
	err = r.QCRow(cells)
	if err == nil {
		t.Fatalf("expected errors for defective row")
	}
	errs := err.(*verr.Errors)
	if errs.Len() != 2 {
		t.Fatalf("expected 2 errors, got %d: %v", errs.Len(), errs.Messages())
	}
}
