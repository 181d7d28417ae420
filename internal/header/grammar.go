package header

import (
	"regexp"
	"strings"
	"unicode"

	"phetools/internal/variant"
	"phetools/pkg/verr"
)

// Cell grammars, one per column kind. Error messages are displayed verbatim
// in curation front ends and must stay stable.

var (
	iso8601AgeRE    = regexp.MustCompile(`^P(\d+Y)?(\d+M)?(\d+D)?$`)
	gestationalAgeRE = regexp.MustCompile(`^G\d+w[0-6]d$`)
)

// onsetLabels are the HPO onset-term labels accepted wherever an age string
// is expected.
var onsetLabels = map[string]struct{}{
	"Late onset":                       {},
	"Middle age onset":                 {},
	"Young adult onset":                {},
	"Late young adult onset":           {},
	"Intermediate young adult onset":   {},
	"Early young adult onset":          {},
	"Adult onset":                      {},
	"Juvenile onset":                   {},
	"Childhood onset":                  {},
	"Infantile onset":                  {},
	"Neonatal onset":                   {},
	"Congenital onset":                 {},
	"Antenatal onset":                  {},
	"Embryonal onset":                  {},
	"Fetal onset":                      {},
	"Late first trimester onset":       {},
	"Second trimester onset":           {},
	"Third trimester onset":            {},
}

// IsValidAge reports whether value is an acceptable age string: "na", an HPO
// onset label, an ISO 8601 duration, or a gestational age.
func IsValidAge(value string) bool {
	if value == "" {
		return false
	}
	if value == "na" {
		return true
	}
	if _, ok := onsetLabels[value]; ok {
		return true
	}
	if value != "P" && iso8601AgeRE.MatchString(value) {
		return true
	}
	return gestationalAgeRE.MatchString(value)
}

// checkCurie enforces the CURIE shape: PREFIX:digits, single colon, no
// whitespace anywhere.
func checkCurie(value string) error {
	if value == "" {
		return verr.Curie("Empty CURIE")
	}
	if strings.ContainsFunc(value, unicode.IsSpace) {
		return verr.Curie("Contains stray whitespace: '%s'", value)
	}
	colons := strings.Count(value, ":")
	if colons == 0 {
		return verr.Curie("Invalid CURIE with no colon: '%s'", value)
	}
	if colons > 1 {
		return verr.Curie("Invalid CURIE with more than one colon: '%s'", value)
	}
	prefix, suffix, _ := strings.Cut(value, ":")
	if prefix == "" {
		return verr.Curie("Invalid CURIE with no prefix: '%s'", value)
	}
	if suffix == "" {
		return verr.Curie("Invalid CURIE with no suffix: '%s'", value)
	}
	for _, c := range suffix {
		if c < '0' || c > '9' {
			return verr.Curie("Invalid CURIE with non-digit characters in suffix: '%s'", value)
		}
	}
	return nil
}

func checkPMID(value string) error {
	if err := checkCurie(value); err != nil {
		return err
	}
	if !strings.HasPrefix(value, "PMID:") {
		return verr.New(verr.KindPmid, "Invalid PMID: contains malformed prefix: '%s'", value)
	}
	return nil
}

func checkDiseaseID(value string) error {
	if err := checkCurie(value); err != nil {
		return err
	}
	if !strings.HasPrefix(value, "OMIM:") && !strings.HasPrefix(value, "MONDO:") {
		return verr.New(verr.KindDiseaseID, "Disease id has invalid prefix: '%s'", value)
	}
	if suffix, ok := strings.CutPrefix(value, "OMIM:"); ok && len(suffix) != 6 {
		return verr.New(verr.KindDiseaseID, "OMIM identifiers must have 6 digits: '%s'", value)
	}
	return nil
}

func checkHgncID(value string) error {
	if err := checkCurie(value); err != nil {
		return err
	}
	if !strings.HasPrefix(value, "HGNC:") {
		return verr.New(verr.KindHgnc, "HGNC id has invalid prefix: '%s'", value)
	}
	return nil
}

// checkLabel covers the free-label columns: title, individual_id,
// disease_label, gene_symbol.
func checkLabel(value string) error {
	if value == "" {
		return verr.EmptyValue()
	}
	runes := []rune(value)
	if unicode.IsSpace(runes[0]) {
		return verr.LeadingWS(value)
	}
	if unicode.IsSpace(runes[len(runes)-1]) {
		return verr.TrailingWS(value)
	}
	for i := 1; i < len(runes); i++ {
		if unicode.IsSpace(runes[i]) && unicode.IsSpace(runes[i-1]) {
			return verr.ConsecutiveWS(value)
		}
	}
	for _, c := range runes {
		switch c {
		case '/', '\\', '(', ')':
			return verr.ForbiddenCharacter(c, value)
		}
	}
	return nil
}

// checkComment: comments are free text and may be empty, but a stray tab
// would corrupt the tab-separated serialization.
func checkComment(value string) error {
	if strings.ContainsRune(value, '\t') {
		return verr.New(verr.KindLabel, "Value must not contain a tab character")
	}
	return nil
}

var transcriptPrefixes = []string{"NM_", "NR_", "XM_", "XR_", "ENST"}

func checkTranscript(value string) error {
	if value == "" {
		return verr.EmptyValue()
	}
	recognized := false
	for _, p := range transcriptPrefixes {
		if strings.HasPrefix(value, p) {
			recognized = true
			break
		}
	}
	if !recognized {
		return verr.UnrecognizedTranscriptPrefix(value)
	}
	dot := strings.LastIndexByte(value, '.')
	if dot < 0 || dot == len(value)-1 {
		return verr.LacksTranscriptVersion(value)
	}
	for _, c := range value[dot+1:] {
		if c < '0' || c > '9' {
			return verr.LacksTranscriptVersion(value)
		}
	}
	return nil
}

func checkAllele1(value string) error {
	if value == "" {
		return verr.EmptyValue()
	}
	if !variant.CheckAllele(value) {
		return verr.Hgvs("Malformed allele '%s'", value)
	}
	return nil
}

func checkAllele2(value string) error {
	if value == "" {
		return verr.EmptyValue()
	}
	if value == "na" {
		return nil
	}
	if !variant.CheckAllele(value) {
		return verr.Hgvs("Malformed allele_2 field: '%s'", value)
	}
	return nil
}

func checkAge(fieldName, value string) error {
	if value == "" {
		return verr.EmptyField(fieldName)
	}
	if !IsValidAge(value) {
		return verr.New(verr.KindAge, "Malformed %s '%s'", fieldName, value)
	}
	return nil
}

func checkDeceased(value string) error {
	if value == "" {
		return verr.EmptyField("deceased")
	}
	switch value {
	case "yes", "no", "na":
		return nil
	}
	return verr.New(verr.KindDeceased, "Malformed deceased entry: '%s'", value)
}

func checkSex(value string) error {
	if value == "" {
		return verr.EmptyField("sex")
	}
	switch value {
	case "M", "F", "O", "U":
		return nil
	}
	return verr.New(verr.KindSex, "Malformed entry in sex field: '%s'", value)
}

func checkSeparator(value string) error {
	if value == "" {
		return verr.EmptyField("HPO (separator)")
	}
	if value != "na" {
		return verr.New(verr.KindSeparator, "Malformed HPO (separator) entry: '%s'", value)
	}
	return nil
}

// checkHPOCell accepts the controlled vocabulary plus an age of observation.
// Legacy templates use an empty cell interchangeably with "na", so empty
// stays valid.
func checkHPOCell(label, id, value string) error {
	if value == "" {
		return nil
	}
	switch value {
	case "observed", "excluded", "na":
		return nil
	}
	if IsValidAge(value) {
		return nil
	}
	return verr.New(verr.KindHpoCell, "Malformed entry for %s (%s): '%s'", label, id, value)
}
