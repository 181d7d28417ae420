// Package template implements the curation template: a validated, editable
// table whose first two rows are the column schema and whose remaining rows
// each describe one published case. The package owns structural edits
// (set/delete/add), per-cell re-validation, and reconciliation of existing
// rows when the phenotype block changes.
package template

import (
	"phetools/internal/header"
	"phetools/pkg/verr"
)

// Column ranges of the fixed prefix occupied by each bundle.
const (
	diseaseIdx     = 4
	geneVariantIdx = 6
	demographicIdx = 12
)

// IndividualBundle is the decoded demographic slice of one case row:
// columns 0-3 plus 12-15. It owns no storage; converting to and from its
// DTO or cell form is lossless.
type IndividualBundle struct {
	PMID               string
	Title              string
	IndividualID       string
	Comment            string
	AgeOfOnset         string
	AgeAtLastEncounter string
	Deceased           string
	Sex                string
}

func individualFromCells(cells []string) IndividualBundle {
	return IndividualBundle{
		PMID:               cells[0],
		Title:              cells[1],
		IndividualID:       cells[2],
		Comment:            cells[3],
		AgeOfOnset:         cells[demographicIdx],
		AgeAtLastEncounter: cells[demographicIdx+1],
		Deceased:           cells[demographicIdx+2],
		Sex:                cells[demographicIdx+3],
	}
}

// QC checks every field against its column grammar, collecting all defects.
func (b IndividualBundle) QC() error {
	errs := verr.NewErrors()
	errs.Push(header.Fixed(header.KindPMID).QCCell(b.PMID))
	errs.Push(header.Fixed(header.KindTitle).QCCell(b.Title))
	errs.Push(header.Fixed(header.KindIndividualID).QCCell(b.IndividualID))
	errs.Push(header.Fixed(header.KindComment).QCCell(b.Comment))
	errs.Push(header.Fixed(header.KindAgeOfOnset).QCCell(b.AgeOfOnset))
	errs.Push(header.Fixed(header.KindAgeAtLastEncounter).QCCell(b.AgeAtLastEncounter))
	errs.Push(header.Fixed(header.KindDeceased).QCCell(b.Deceased))
	errs.Push(header.Fixed(header.KindSex).QCCell(b.Sex))
	return errs.Err()
}

// DiseaseBundle is the disease identity slice: columns 4-5. A Mendelian
// template carries exactly one, identical in every row.
type DiseaseBundle struct {
	DiseaseID    string
	DiseaseLabel string
}

func diseaseFromCells(cells []string) DiseaseBundle {
	return DiseaseBundle{
		DiseaseID:    cells[diseaseIdx],
		DiseaseLabel: cells[diseaseIdx+1],
	}
}

func (b DiseaseBundle) QC() error {
	errs := verr.NewErrors()
	errs.Push(header.Fixed(header.KindDiseaseID).QCCell(b.DiseaseID))
	errs.Push(header.Fixed(header.KindDiseaseLabel).QCCell(b.DiseaseLabel))
	return errs.Err()
}

// GeneVariantBundle is the genotype slice: columns 6-11.
type GeneVariantBundle struct {
	HgncID         string
	GeneSymbol     string
	Transcript     string
	Allele1        string
	Allele2        string
	VariantComment string
}

func geneVariantFromCells(cells []string) GeneVariantBundle {
	return GeneVariantBundle{
		HgncID:         cells[geneVariantIdx],
		GeneSymbol:     cells[geneVariantIdx+1],
		Transcript:     cells[geneVariantIdx+2],
		Allele1:        cells[geneVariantIdx+3],
		Allele2:        cells[geneVariantIdx+4],
		VariantComment: cells[geneVariantIdx+5],
	}
}

func (b GeneVariantBundle) QC() error {
	errs := verr.NewErrors()
	errs.Push(header.Fixed(header.KindHGNCID).QCCell(b.HgncID))
	errs.Push(header.Fixed(header.KindGeneSymbol).QCCell(b.GeneSymbol))
	errs.Push(header.Fixed(header.KindTranscript).QCCell(b.Transcript))
	errs.Push(header.Fixed(header.KindAllele1).QCCell(b.Allele1))
	errs.Push(header.Fixed(header.KindAllele2).QCCell(b.Allele2))
	errs.Push(header.Fixed(header.KindVariantComment).QCCell(b.VariantComment))
	return errs.Err()
}
