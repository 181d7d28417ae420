package template

import (
	"phetools/internal/header"
	"phetools/pkg/verr"
)

// Column is a read-only column view over the data rows of a template,
// paired with the duplet that governs it.
type Column struct {
	duplet header.Duplet
	values []string
}

// Duplet returns the column's schema entry.
func (c Column) Duplet() header.Duplet { return c.duplet }

// Values returns the data cells top to bottom. Shared slice.
func (c Column) Values() []string { return c.values }

// Unique returns the single value common to every data row. Columns that
// carry the cohort identity (disease, gene, transcript) must be uniform; the
// error names the first divergent row in matrix coordinates.
func (c Column) Unique() (string, error) {
	if len(c.values) == 0 {
		return "", verr.Template("Column '%s' has no data rows", c.duplet.Row1())
	}
	first := c.values[0]
	for i, v := range c.values[1:] {
		if v != first {
			return "", verr.Template("Expected unique value for column '%s' but row %d has '%s' instead of '%s'",
				c.duplet.Row1(), i+3, v, first)
		}
	}
	return first, nil
}

// QC checks every data cell against the column grammar, collecting all
// defects.
func (c Column) QC() error {
	errs := verr.NewErrors()
	for _, v := range c.values {
		errs.Push(c.duplet.QCCell(v))
	}
	return errs.Err()
}
