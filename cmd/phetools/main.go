// Command phetools validates, stores and exports clinical cohort templates.
package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"phetools/internal/blob"
	"phetools/internal/ontology"
	"phetools/internal/store"
	"phetools/internal/template"
	"phetools/internal/tsv"
	"phetools/internal/variant"
	"phetools/pkg/verr"

	_ "modernc.org/sqlite" // pure go sqlite driver
)

var exitFunc = os.Exit

func main() {
	exitFunc(cli(os.Args[1:], os.Stdout, os.Stderr))
}

const usage = `usage: phetools <command> [flags]

commands:
  qc       validate a cohort template and report every defect
  save     validate a template and store it under a cohort name
  export   validate a template and write a TSV snapshot to the blob store
  cohorts  list stored cohort names
  variants check every distinct allele against VariantValidator
`

func cli(args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		fmt.Fprint(stderr, usage)
		return 2
	}
	switch args[0] {
	case "qc":
		return runQC(args[1:], stdout, stderr)
	case "save":
		return runSave(args[1:], stdout, stderr)
	case "export":
		return runExport(args[1:], stdout, stderr)
	case "cohorts":
		return runCohorts(args[1:], stdout, stderr)
	case "variants":
		return runVariants(args[1:], stdout, stderr)
	default:
		fmt.Fprintf(stderr, "unknown command %q\n", args[0])
		fmt.Fprint(stderr, usage)
		return 2
	}
}

// loadTemplate reads the ontology and template files named by the common
// flags and rebuilds the in-memory template.
func loadTemplate(templatePath, hpoPath string) (*template.Template, error) {
	if templatePath == "" {
		return nil, fmt.Errorf("-template is required")
	}
	if hpoPath == "" {
		return nil, fmt.Errorf("-hpo is required")
	}
	hpo, err := ontology.LoadFile(hpoPath)
	if err != nil {
		return nil, err
	}
	matrix, err := tsv.ReadFile(templatePath)
	if err != nil {
		return nil, err
	}
	return template.FromMatrix(matrix, hpo)
}

// reportDefects prints one line per defect and returns how many there were.
func reportDefects(w io.Writer, err error) int {
	if err == nil {
		return 0
	}
	var errs *verr.Errors
	if errors.As(err, &errs) {
		for _, msg := range errs.Messages() {
			fmt.Fprintln(w, msg)
		}
		return errs.Len()
	}
	fmt.Fprintln(w, err.Error())
	return 1
}

func runQC(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("qc", flag.ContinueOnError)
	fs.SetOutput(stderr)
	templatePath := fs.String("template", "", "path to cohort template tsv")
	hpoPath := fs.String("hpo", "", "path to obographs hp.json (optionally .gz)")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	tpl, err := loadTemplate(*templatePath, *hpoPath)
	if err != nil {
		reportDefects(stderr, err)
		return 1
	}
	if n := reportDefects(stdout, tpl.QC()); n > 0 {
		fmt.Fprintf(stdout, "%d defects in %d cases\n", n, tpl.CaseCount())
		return 1
	}
	fmt.Fprintf(stdout, "ok: %d cases, %d phenotype columns\n", tpl.CaseCount(), tpl.Header().HPOCount())
	return 0
}

func runSave(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("save", flag.ContinueOnError)
	fs.SetOutput(stderr)
	templatePath := fs.String("template", "", "path to cohort template tsv")
	hpoPath := fs.String("hpo", "", "path to obographs hp.json (optionally .gz)")
	cohort := fs.String("cohort", "", "cohort name to store under")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if *cohort == "" {
		fmt.Fprintln(stderr, "-cohort is required")
		return 2
	}
	tpl, err := loadTemplate(*templatePath, *hpoPath)
	if err != nil {
		reportDefects(stderr, err)
		return 1
	}
	if n := reportDefects(stderr, tpl.QC()); n > 0 {
		fmt.Fprintf(stderr, "refusing to save: %d defects\n", n)
		return 1
	}
	dto, err := tpl.ToDTO()
	if err != nil {
		fmt.Fprintln(stderr, err.Error())
		return 1
	}
	repo, err := store.Open()
	if err != nil {
		fmt.Fprintln(stderr, err.Error())
		return 1
	}
	defer func() { _ = repo.Close() }()
	if err := repo.Save(context.Background(), *cohort, dto); err != nil {
		fmt.Fprintln(stderr, err.Error())
		return 1
	}
	fmt.Fprintf(stdout, "saved cohort %s (%d cases)\n", *cohort, tpl.CaseCount())
	return 0
}

func runExport(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	fs.SetOutput(stderr)
	templatePath := fs.String("template", "", "path to cohort template tsv")
	hpoPath := fs.String("hpo", "", "path to obographs hp.json (optionally .gz)")
	cohort := fs.String("cohort", "", "cohort name for the snapshot key")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if *cohort == "" {
		fmt.Fprintln(stderr, "-cohort is required")
		return 2
	}
	tpl, err := loadTemplate(*templatePath, *hpoPath)
	if err != nil {
		reportDefects(stderr, err)
		return 1
	}
	if n := reportDefects(stderr, tpl.QC()); n > 0 {
		fmt.Fprintf(stderr, "refusing to export: %d defects\n", n)
		return 1
	}
	ctx := context.Background()
	artifacts, err := blob.Open(ctx)
	if err != nil {
		fmt.Fprintln(stderr, err.Error())
		return 1
	}
	info, err := blob.NewExporter(artifacts).Export(ctx, *cohort, tpl)
	if err != nil {
		fmt.Fprintln(stderr, err.Error())
		return 1
	}
	fmt.Fprintf(stdout, "exported %s (%d bytes)\n", info.Key, info.Size)
	return 0
}

func runVariants(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("variants", flag.ContinueOnError)
	fs.SetOutput(stderr)
	templatePath := fs.String("template", "", "path to cohort template tsv")
	hpoPath := fs.String("hpo", "", "path to obographs hp.json (optionally .gz)")
	assembly := fs.String("assembly", variant.AssemblyHG38, "genome build for VariantValidator")
	endpoint := fs.String("endpoint", "", "override the VariantValidator base URL")
	cachePath := fs.String("cache", "", "optional sqlite file memoizing validator responses")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	tpl, err := loadTemplate(*templatePath, *hpoPath)
	if err != nil {
		reportDefects(stderr, err)
		return 1
	}
	validator, err := variant.NewValidator(*assembly)
	if err != nil {
		fmt.Fprintln(stderr, err.Error())
		return 2
	}
	if *endpoint != "" {
		validator = validator.WithBaseURL(*endpoint)
	}
	var db *sql.DB
	if *cachePath != "" {
		db, err = sql.Open("sqlite", *cachePath)
		if err != nil {
			fmt.Fprintln(stderr, err.Error())
			return 1
		}
		defer func() { _ = db.Close() }()
	}
	cache, err := variant.NewCache(validator, 128, db, variant.NewMetrics(nil))
	if err != nil {
		fmt.Fprintln(stderr, err.Error())
		return 1
	}

	ctx := context.Background()
	failures := 0
	seen := make(map[string]struct{})
	for i := 0; i < tpl.CaseCount(); i++ {
		row, err := tpl.Row(i)
		if err != nil {
			fmt.Fprintln(stderr, err.Error())
			return 1
		}
		for _, gv := range row.GeneVariants {
			for _, allele := range []string{gv.Allele1, gv.Allele2} {
				if allele == "" || allele == "na" || variant.IsStructural(allele) {
					continue
				}
				key := gv.Transcript + ":" + allele
				if _, dup := seen[key]; dup {
					continue
				}
				seen[key] = struct{}{}
				hv, err := cache.Validate(ctx, allele, gv.Transcript)
				if err != nil {
					fmt.Fprintf(stdout, "fail %s: %v\n", key, err)
					failures++
					continue
				}
				fmt.Fprintf(stdout, "ok %s -> %s (%s %d %s>%s)\n", key, hv.GenomicHGVS, hv.VCF.Chrom, hv.VCF.Pos, hv.VCF.Ref, hv.VCF.Alt)
			}
		}
	}
	if failures > 0 {
		fmt.Fprintf(stdout, "%d of %d alleles failed validation\n", failures, len(seen))
		return 1
	}
	fmt.Fprintf(stdout, "ok: %d distinct alleles validated\n", len(seen))
	return 0
}

func runCohorts(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("cohorts", flag.ContinueOnError)
	fs.SetOutput(stderr)
	if err := fs.Parse(args); err != nil {
		return 2
	}
	repo, err := store.Open()
	if err != nil {
		fmt.Fprintln(stderr, err.Error())
		return 1
	}
	defer func() { _ = repo.Close() }()
	names, err := repo.List(context.Background())
	if err != nil {
		fmt.Fprintln(stderr, err.Error())
		return 1
	}
	for _, name := range names {
		fmt.Fprintln(stdout, name)
	}
	return 0
}
