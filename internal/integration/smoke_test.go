package integration

import (
	"context"
	"path/filepath"
	"reflect"
	"testing"

	"phetools/internal/blob"
	"phetools/internal/ontology"
	"phetools/internal/store"
	"phetools/internal/template"
)

// TestCurationSmoke exercises a minimal end-to-end curation cycle across
// every repository and artifact backend pair that runs in-process: load a
// cohort matrix, edit it, persist the wire form, reload it and export a TSV
// snapshot. It intentionally keeps scope tiny so it can act as a fast CI
// health check.
func TestCurationSmoke(t *testing.T) {
	ctx := context.Background()

	repoVariants := []struct {
		name string
		open func(t *testing.T) store.Repository
	}{
		{
			name: "memory-store",
			open: func(_ *testing.T) store.Repository { return store.NewMemory() },
		},
		{
			name: "sqlite-store",
			open: func(t *testing.T) store.Repository {
				s, err := store.NewSQLite(filepath.Join(t.TempDir(), "cohorts.db"))
				if err != nil {
					t.Fatalf("new sqlite store: %v", err)
				}
				return s
			},
		},
	}

	blobVariants := []struct {
		name string
		open func(t *testing.T) blob.Store
	}{
		{
			name: "memory-blob",
			open: func(_ *testing.T) blob.Store { return blob.NewMemory() },
		},
		{
			name: "filesystem-blob",
			open: func(t *testing.T) blob.Store {
				s, err := blob.NewFilesystem(t.TempDir())
				if err != nil {
					t.Fatalf("new filesystem blob: %v", err)
				}
				return s
			},
		},
	}

	for _, rv := range repoVariants {
		for _, bv := range blobVariants {
			t.Run(rv.name+"/"+bv.name, func(t *testing.T) {
				hpo := smokeOntology()
				tpl, err := template.FromMatrix(smokeMatrix(), hpo)
				if err != nil {
					t.Fatalf("load template: %v", err)
				}
				if err := tpl.QC(); err != nil {
					t.Fatalf("qc: %v", err)
				}

				// Edit one phenotype cell through the operation path.
				if err := tpl.ExecuteOperation(2, 17, "excluded"); err != nil {
					t.Fatalf("execute operation: %v", err)
				}

				dto, err := tpl.ToDTO()
				if err != nil {
					t.Fatalf("to dto: %v", err)
				}
				repo := rv.open(t)
				defer func() { _ = repo.Close() }()
				if err := repo.Save(ctx, "zswim6", dto); err != nil {
					t.Fatalf("save: %v", err)
				}
				loaded, err := repo.Load(ctx, "zswim6")
				if err != nil {
					t.Fatalf("load: %v", err)
				}
				rebuilt, err := template.FromDTO(loaded, hpo)
				if err != nil {
					t.Fatalf("from dto: %v", err)
				}
				if !reflect.DeepEqual(rebuilt.Matrix(), tpl.Matrix()) {
					t.Fatalf("reloaded matrix differs:\n got %v\nwant %v", rebuilt.Matrix(), tpl.Matrix())
				}

				exporter := blob.NewExporter(bv.open(t))
				info, err := exporter.Export(ctx, "zswim6", rebuilt)
				if err != nil {
					t.Fatalf("export: %v", err)
				}
				if info.Size == 0 {
					t.Fatalf("exported snapshot is empty")
				}
				snaps, err := exporter.Snapshots(ctx, "zswim6")
				if err != nil {
					t.Fatalf("snapshots: %v", err)
				}
				if len(snaps) != 1 {
					t.Fatalf("snapshot count: got %d, want 1", len(snaps))
				}
			})
		}
	}
}

func smokeOntology() *ontology.Memory {
	return ontology.NewMemory("2025-03-03", []ontology.Term{
		{ID: ontology.PhenotypicAbnormality, Label: "Phenotypic abnormality"},
		{ID: "HP:0001250", Label: "Seizure"},
	}, map[ontology.TermID][]ontology.TermID{
		"HP:0001250": {ontology.PhenotypicAbnormality},
	})
}

func smokeMatrix() [][]string {
	return [][]string{
		{"PMID", "title", "individual_id", "comment", "disease_id", "disease_label", "HGNC_id", "gene_symbol", "transcript", "allele_1", "allele_2", "variant.comment", "age_of_onset", "age_at_last_encounter", "deceased", "sex", "HPO", "Seizure"},
		{"CURIE", "str", "str", "optional", "CURIE", "str", "CURIE", "str", "str", "str", "str", "optional", "age", "age", "yes/no/na", "M:F:O:U", "na", "HP:0001250"},
		{"PMID:29198722", "De novo variants in ZSWIM6", "Individual 1", "", "OMIM:617865", "NEDMAGA", "HGNC:29316", "ZSWIM6", "NM_020928.2", "c.2737C>T", "na", "", "na", "na", "na", "M", "na", "observed"},
	}
}
