// Package tsv reads and writes cohort templates as tab separated matrices.
// Rows are not required to share a width on read; structural validation is
// the template layer's concern.
package tsv

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
)

// ReadMatrix decodes a tab separated table into a row-major matrix.
func ReadMatrix(r io.Reader) ([][]string, error) {
	cr := csv.NewReader(r)
	cr.Comma = '\t'
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	matrix, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read tsv: %w", err)
	}
	return matrix, nil
}

// WriteMatrix encodes a row-major matrix as a tab separated table.
func WriteMatrix(w io.Writer, matrix [][]string) error {
	cw := csv.NewWriter(w)
	cw.Comma = '\t'
	if err := cw.WriteAll(matrix); err != nil {
		return fmt.Errorf("write tsv: %w", err)
	}
	return nil
}

// ReadFile loads a matrix from a file on disk.
func ReadFile(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	return ReadMatrix(f)
}

// WriteFile stores a matrix to a file on disk, replacing any previous content.
func WriteFile(path string, matrix [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := WriteMatrix(f, matrix); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
