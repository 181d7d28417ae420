// Package header models the two-row column schema of a curation template.
// Each column is described by a Duplet: a pair of header literals plus the
// grammar every data cell in that column must satisfy. The first 17 columns
// are fixed; every further column is an HPO-term duplet carrying a real
// ontology term label and identifier.
package header

import (
	"phetools/internal/ontology"
	"phetools/pkg/verr"
)

// Kind enumerates the closed set of column kinds. New kinds are added by
// extending this enum and the switches below, not by open-ended dispatch.
type Kind int

const (
	KindPMID Kind = iota
	KindTitle
	KindIndividualID
	KindComment
	KindDiseaseID
	KindDiseaseLabel
	KindHGNCID
	KindGeneSymbol
	KindTranscript
	KindAllele1
	KindAllele2
	KindVariantComment
	KindAgeOfOnset
	KindAgeAtLastEncounter
	KindDeceased
	KindSex
	KindSeparator
	KindHPOTerm
)

// PrefixLen is the number of fixed columns preceding the HPO block.
const PrefixLen = 17

// Duplet is one immutable column descriptor. For the fixed kinds row1/row2
// are constant literals; for KindHPOTerm row1 is the term label and row2 the
// term id.
type Duplet struct {
	kind Kind
	row1 string
	row2 string
}

func (d Duplet) Kind() Kind   { return d.kind }
func (d Duplet) Row1() string { return d.row1 }
func (d Duplet) Row2() string { return d.row2 }

// IsHPO reports whether this column belongs to the variable phenotype block.
func (d Duplet) IsHPO() bool { return d.kind == KindHPOTerm }

// TermID returns the ontology term identifier of an HPO duplet.
func (d Duplet) TermID() (ontology.TermID, error) {
	if d.kind != KindHPOTerm {
		return "", verr.Template("column '%s' is not an HPO column", d.row1)
	}
	return ontology.ParseTermID(d.row2)
}

// fixedLiterals holds (row1, row2) for each of the 17 fixed kinds, in
// schema order.
var fixedLiterals = [PrefixLen][2]string{
	{"PMID", "CURIE"},
	{"title", "str"},
	{"individual_id", "str"},
	{"comment", "optional"},
	{"disease_id", "CURIE"},
	{"disease_label", "str"},
	{"HGNC_id", "CURIE"},
	{"gene_symbol", "str"},
	{"transcript", "str"},
	{"allele_1", "str"},
	{"allele_2", "str"},
	{"variant.comment", "optional"},
	{"age_of_onset", "age"},
	{"age_at_last_encounter", "age"},
	{"deceased", "yes/no/na"},
	{"sex", "M:F:O:U"},
	{"HPO", "na"},
}

// Fixed returns the duplet for one of the 17 fixed kinds.
func Fixed(kind Kind) Duplet {
	if kind < 0 || int(kind) >= PrefixLen {
		panic("header: Fixed called with non-fixed kind")
	}
	lit := fixedLiterals[kind]
	return Duplet{kind: kind, row1: lit[0], row2: lit[1]}
}

// Prefix returns the 17 fixed duplets in schema order.
func Prefix() []Duplet {
	out := make([]Duplet, PrefixLen)
	for i := 0; i < PrefixLen; i++ {
		out[i] = Fixed(Kind(i))
	}
	return out
}

// HPOTerm builds the duplet for one curated phenotype column.
func HPOTerm(id ontology.TermID, label string) Duplet {
	return Duplet{kind: KindHPOTerm, row1: label, row2: string(id)}
}

// FromTable reconstructs a fixed duplet from observed header text, failing
// with a HeaderError naming the column when either literal mismatches.
func FromTable(kind Kind, row1, row2 string) (Duplet, error) {
	d := Fixed(kind)
	if d.row1 != row1 {
		return Duplet{}, verr.Header("Malformed %s Header: Expected '%s' but got '%s'", d.row1, d.row1, row1)
	}
	if d.row2 != row2 {
		return Duplet{}, verr.Header("Malformed %s Header: Expected '%s' but got '%s'", d.row1, d.row2, row2)
	}
	return d, nil
}

// ParseHPO reconstructs an HPO-term duplet from observed header text; row2
// must be a parseable term CURIE.
func ParseHPO(row1, row2 string) (Duplet, error) {
	id, err := ontology.ParseTermID(row2)
	if err != nil {
		return Duplet{}, verr.Header("Malformed HPO Header: '%s' is not a term id (label '%s')", row2, row1)
	}
	if row1 == "" {
		return Duplet{}, verr.Header("Malformed HPO Header: empty label for term %s", row2)
	}
	return HPOTerm(id, row1), nil
}

// QCCell checks a data cell against this column's grammar. Each kind fails
// with its own typed error; messages are displayed verbatim by front ends.
func (d Duplet) QCCell(value string) error {
	switch d.kind {
	case KindPMID:
		return checkPMID(value)
	case KindTitle, KindIndividualID, KindDiseaseLabel, KindGeneSymbol:
		return checkLabel(value)
	case KindComment, KindVariantComment:
		return checkComment(value)
	case KindDiseaseID:
		return checkDiseaseID(value)
	case KindHGNCID:
		return checkHgncID(value)
	case KindTranscript:
		return checkTranscript(value)
	case KindAllele1:
		return checkAllele1(value)
	case KindAllele2:
		return checkAllele2(value)
	case KindAgeOfOnset, KindAgeAtLastEncounter:
		return checkAge(d.row1, value)
	case KindDeceased:
		return checkDeceased(value)
	case KindSex:
		return checkSex(value)
	case KindSeparator:
		return checkSeparator(value)
	case KindHPOTerm:
		return checkHPOCell(d.row1, d.row2, value)
	default:
		return verr.Template("unknown column kind %d", d.kind)
	}
}

// Options enumerates the legal interactive edits for a data cell of this
// column, in fixed order.
func (d Duplet) Options() []string {
	switch d.kind {
	case KindPMID, KindDiseaseID, KindHGNCID, KindGeneSymbol, KindTranscript, KindAllele1:
		return []string{"edit", "remove whitespace"}
	case KindAllele2:
		return []string{"edit", "remove whitespace", "na"}
	case KindTitle, KindIndividualID, KindDiseaseLabel:
		return []string{"edit", "trim"}
	case KindComment, KindVariantComment:
		return []string{"edit", "trim", "clear"}
	case KindAgeOfOnset, KindAgeAtLastEncounter:
		return []string{"edit", "trim", "na"}
	case KindDeceased:
		return []string{"yes", "no", "na"}
	case KindSex:
		return []string{"M", "F", "O", "U"}
	case KindSeparator:
		return []string{"na"}
	case KindHPOTerm:
		return []string{"observed", "excluded", "na", "edit"}
	default:
		return nil
	}
}
