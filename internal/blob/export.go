package blob

import (
	"bytes"
	"context"
	"fmt"
	"strconv"

	"github.com/google/uuid"

	"phetools/internal/template"
	"phetools/internal/tsv"
)

// Exporter writes immutable TSV snapshots of cohort templates to a Store.
// Every export gets a fresh key, so earlier snapshots stay retrievable.
type Exporter struct {
	store Store
}

// NewExporter wraps the given store.
func NewExporter(store Store) *Exporter { return &Exporter{store: store} }

// Export serializes the template and stores it under
// exports/<cohort>/<uuid>.tsv, returning the stored artifact info.
func (e *Exporter) Export(ctx context.Context, cohort string, tpl *template.Template) (Info, error) {
	if cohort == "" {
		return Info{}, fmt.Errorf("cohort name must not be empty")
	}
	var buf bytes.Buffer
	if err := tsv.WriteMatrix(&buf, tpl.Matrix()); err != nil {
		return Info{}, err
	}
	key := fmt.Sprintf("exports/%s/%s.tsv", cohort, uuid.NewString())
	opts := PutOptions{
		ContentType: "text/tab-separated-values",
		Metadata: map[string]string{
			"cohort": cohort,
			"cases":  strconv.Itoa(tpl.CaseCount()),
		},
	}
	return e.store.Put(ctx, key, &buf, opts)
}

// Snapshots lists the stored exports of one cohort, oldest key first.
func (e *Exporter) Snapshots(ctx context.Context, cohort string) ([]Info, error) {
	return e.store.List(ctx, "exports/"+cohort+"/")
}
