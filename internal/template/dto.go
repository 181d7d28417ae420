package template

// Wire DTOs exchanged with curation front ends. Field names are part of the
// JSON contract and use camelCase.

// IndividualBundleDTO mirrors IndividualBundle.
type IndividualBundleDTO struct {
	PMID               string `json:"pmid"`
	Title              string `json:"title"`
	IndividualID       string `json:"individualId"`
	Comment            string `json:"comment"`
	AgeOfOnset         string `json:"ageOfOnset"`
	AgeAtLastEncounter string `json:"ageAtLastEncounter"`
	Deceased           string `json:"deceased"`
	Sex                string `json:"sex"`
}

// DiseaseDTO mirrors DiseaseBundle.
type DiseaseDTO struct {
	DiseaseID    string `json:"diseaseId"`
	DiseaseLabel string `json:"diseaseLabel"`
}

// GeneVariantBundleDTO mirrors GeneVariantBundle.
type GeneVariantBundleDTO struct {
	HgncID         string `json:"hgncId"`
	GeneSymbol     string `json:"geneSymbol"`
	Transcript     string `json:"transcript"`
	Allele1        string `json:"allele1"`
	Allele2        string `json:"allele2"`
	VariantComment string `json:"variantComment"`
}

// CellDTO carries one raw phenotype cell value.
type CellDTO struct {
	Value string `json:"value"`
}

// HeaderDupletDTO carries the two header literals of one column.
type HeaderDupletDTO struct {
	H1 string `json:"h1"`
	H2 string `json:"h2"`
}

// RowDTO is the decoded form of one case row.
type RowDTO struct {
	Individual   IndividualBundleDTO    `json:"individualDto"`
	Diseases     []DiseaseDTO           `json:"diseaseDtoList"`
	GeneVariants []GeneVariantBundleDTO `json:"geneVarDtoList"`
	HPOData      []CellDTO              `json:"hpoData"`
}

// TemplateDTO is the decoded form of a whole cohort template. HPOHeaders
// lists only the phenotype block; the fixed prefix is implied by CohortType.
type TemplateDTO struct {
	CohortType string            `json:"cohortType"`
	HPOHeaders []HeaderDupletDTO `json:"hpoHeaders"`
	Rows       []RowDTO          `json:"rows"`
}

// CohortMendelian is the only cohort type currently constructed.
const CohortMendelian = "mendelian"

func (b IndividualBundle) ToDTO() IndividualBundleDTO {
	return IndividualBundleDTO(b)
}

func (d IndividualBundleDTO) ToBundle() IndividualBundle {
	return IndividualBundle(d)
}

func (b DiseaseBundle) ToDTO() DiseaseDTO { return DiseaseDTO(b) }

func (d DiseaseDTO) ToBundle() DiseaseBundle { return DiseaseBundle(d) }

func (b GeneVariantBundle) ToDTO() GeneVariantBundleDTO {
	return GeneVariantBundleDTO(b)
}

func (d GeneVariantBundleDTO) ToBundle() GeneVariantBundle {
	return GeneVariantBundle(d)
}
