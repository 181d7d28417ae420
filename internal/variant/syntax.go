// Package variant covers the two variant notations accepted by curation
// templates: HGVS coding/non-coding expressions for small variants and the
// "PREFIX: free text" convention for structural variants. It also hosts the
// VariantValidator REST client and its read-through cache; the syntax checks
// here are the only part of the package invoked on the validation path, the
// network never is.
package variant

import (
	"regexp"
	"strings"
	"unicode"
)

var (
	substitutionRE = regexp.MustCompile(`^(c|n)\.\d+[ACGT]+>[ACGT]+$`)
	insertionRE    = regexp.MustCompile(`^(c|n)\.\d+_\d+ins[ACGT]+$`)
	delinsRE       = regexp.MustCompile(`^(c|n)\.\d+_\d+delins[A-Za-z0-9]+$`)
	deletionRE     = regexp.MustCompile(`^(c|n)\.\d+(?:_\d+)?del$`)
	duplicationRE  = regexp.MustCompile(`^(c|n)\.\d+(?:_\d+)?dup$`)
)

// structuralPrefixes are the controlled category prefixes for structural
// variant free text (deletion, duplication, inversion, insertion,
// translocation).
var structuralPrefixes = map[string]struct{}{
	"DEL":    {},
	"DUP":    {},
	"INV":    {},
	"INS":    {},
	"TRANSL": {},
}

// IsPlausibleHGVS performs the rough surface screening applied before an
// expression is sent to VariantValidator:
//   - must start with c. or n.
//   - no whitespace, at least one digit
//   - a substitution must have bases on both sides of '>'
//   - an insertion must name the inserted bases
func IsPlausibleHGVS(hgvs string) bool {
	if !strings.HasPrefix(hgvs, "c.") && !strings.HasPrefix(hgvs, "n.") {
		return false
	}
	if strings.IndexFunc(hgvs, unicode.IsSpace) >= 0 {
		return false
	}
	hasDigit := false
	for _, c := range hgvs {
		if c >= '0' && c <= '9' {
			hasDigit = true
			break
		}
	}
	if !hasDigit {
		return false
	}
	if pos := strings.Index(hgvs, ">"); pos >= 0 {
		if !basesOnly(trailingLetters(hgvs[:pos])) || !basesOnly(leadingLetters(hgvs[pos+1:])) {
			return false
		}
	}
	if pos := strings.Index(hgvs, "ins"); pos >= 0 {
		after := hgvs[pos+3:]
		if after == "" || !basesOnly(after) {
			return false
		}
	}
	return true
}

// IsStrictHGVS matches the expression against the exact grammars for
// substitution, insertion, delins, deletion, and duplication.
func IsStrictHGVS(value string) bool {
	return substitutionRE.MatchString(value) ||
		insertionRE.MatchString(value) ||
		delinsRE.MatchString(value) ||
		deletionRE.MatchString(value) ||
		duplicationRE.MatchString(value)
}

// IsStructural reports whether value follows the structural-variant
// convention: a recognized category prefix, a colon, then free text.
func IsStructural(value string) bool {
	prefix, rest, ok := strings.Cut(value, ":")
	if !ok {
		return false
	}
	if _, known := structuralPrefixes[prefix]; !known {
		return false
	}
	return strings.TrimSpace(rest) != ""
}

// CheckAllele reports whether value is acceptable in an allele column:
// either a well-formed HGVS expression or a structural-variant string.
// The looser plausibility screen is reserved for the network path.
func CheckAllele(value string) bool {
	return IsStrictHGVS(value) || IsStructural(value)
}

func trailingLetters(s string) string {
	i := len(s)
	for i > 0 {
		c := s[i-1]
		if (c < 'A' || c > 'Z') && (c < 'a' || c > 'z') {
			break
		}
		i--
	}
	return s[i:]
}

func leadingLetters(s string) string {
	i := 0
	for i < len(s) {
		c := s[i]
		if (c < 'A' || c > 'Z') && (c < 'a' || c > 'z') {
			break
		}
		i++
	}
	return s[:i]
}

func basesOnly(s string) bool {
	for _, c := range s {
		if !strings.ContainsRune("ACGT", c) {
			return false
		}
	}
	return true
}
