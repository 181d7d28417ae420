package variant

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
)

const (
	defaultBaseURL = "https://rest.variantvalidator.org/VariantValidator/variantvalidator"
	// AssemblyHG38 is the default genome build.
	AssemblyHG38 = "hg38"
)

var acceptableAssemblies = map[string]struct{}{"hg38": {}, "GRCh38": {}}

// VCF is the VCF-style coordinate form of a validated variant.
type VCF struct {
	Chrom string `json:"chrom"`
	Pos   int    `json:"pos"`
	Ref   string `json:"ref"`
	Alt   string `json:"alt"`
}

// HgvsVariant is the structured result of validating one HGVS expression
// against a reference transcript.
type HgvsVariant struct {
	Assembly       string `json:"assembly"`
	VCF            VCF    `json:"vcf"`
	Symbol         string `json:"symbol,omitempty"`
	HgncID         string `json:"hgncId,omitempty"`
	Transcript     string `json:"transcript,omitempty"`
	TranscriptHGVS string `json:"transcriptHgvs,omitempty"`
	GenomicHGVS    string `json:"genomicHgvs,omitempty"`
}

// Validator resolves HGVS expressions through the VariantValidator REST API.
type Validator struct {
	baseURL  string
	assembly string
	client   *http.Client
}

// NewValidator builds a validator for the given genome build.
func NewValidator(assembly string) (*Validator, error) {
	if _, ok := acceptableAssemblies[assembly]; !ok {
		return nil, fmt.Errorf("genome build %q not recognized", assembly)
	}
	return &Validator{
		baseURL:  defaultBaseURL,
		assembly: assembly,
		client:   &http.Client{Timeout: 30 * time.Second},
	}, nil
}

// WithBaseURL overrides the API endpoint; used by tests.
func (v *Validator) WithBaseURL(base string) *Validator {
	v.baseURL = strings.TrimSuffix(base, "/")
	return v
}

// WithHTTPClient overrides the HTTP client.
func (v *Validator) WithHTTPClient(c *http.Client) *Validator {
	v.client = c
	return v
}

// requestURL builds the API URL. The transcript appears twice: once in the
// variant description and once to select the returned transcript record.
func (v *Validator) requestURL(transcript, hgvs string) string {
	return fmt.Sprintf("%s/%s/%s%%3A%s/%s?content-type=application%%2Fjson",
		v.baseURL, v.assembly, transcript, hgvs, transcript)
}

// Validate resolves hgvs against transcript, returning the structured
// variant or the first validation warning reported by the service.
// Expressions that fail the surface screen are rejected without a request.
func (v *Validator) Validate(ctx context.Context, hgvs, transcript string) (*HgvsVariant, error) {
	if !IsPlausibleHGVS(hgvs) {
		return nil, fmt.Errorf("malformed HGVS expression %q", hgvs)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, v.requestURL(transcript, hgvs), nil)
	if err != nil {
		return nil, fmt.Errorf("could not map %s: %w", hgvs, err)
	}
	resp, err := v.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("could not map %s: %w", hgvs, err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("could not map %s: unexpected status %s", hgvs, resp.Status)
	}
	var payload map[string]json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("could not parse JSON for %s: %w", hgvs, err)
	}
	return v.decode(payload, hgvs)
}

func (v *Validator) decode(payload map[string]json.RawMessage, hgvs string) (*HgvsVariant, error) {
	var flag string
	if raw, ok := payload["flag"]; ok {
		_ = json.Unmarshal(raw, &flag)
	}
	if flag == "warning" {
		if warning := firstWarning(payload); warning != "" {
			return nil, fmt.Errorf("%s", warning)
		}
		return nil, fmt.Errorf("invalid HGVS %s", hgvs)
	}
	if flag != "" && flag != "gene_variant" {
		return nil, fmt.Errorf("expecting to get a gene_variant but got %s", flag)
	}
	// The variant record sits under the single key that is neither the
	// flag nor the metadata block.
	var record variantRecord
	found := false
	for key, raw := range payload {
		if key == "flag" || key == "metadata" {
			continue
		}
		if err := json.Unmarshal(raw, &record); err != nil {
			return nil, fmt.Errorf("could not parse JSON for %s: %w", hgvs, err)
		}
		found = true
		break
	}
	if !found {
		return nil, fmt.Errorf("missing variant key for %s", hgvs)
	}
	assembly, ok := record.PrimaryAssemblyLoci[v.assembly]
	if !ok {
		return nil, fmt.Errorf("could not identify %s in response", v.assembly)
	}
	if assembly.VCF == nil {
		return nil, fmt.Errorf("could not identify vcf element for %s", hgvs)
	}
	pos, err := strconv.Atoi(assembly.VCF.Pos)
	if err != nil {
		return nil, fmt.Errorf("malformed pos %q: %w", assembly.VCF.Pos, err)
	}
	transcript := record.ReferenceSequenceRecords.Transcript
	transcript = strings.TrimPrefix(transcript, "https://www.ncbi.nlm.nih.gov/nuccore/")
	return &HgvsVariant{
		Assembly: v.assembly,
		VCF: VCF{
			Chrom: assembly.VCF.Chr,
			Pos:   pos,
			Ref:   assembly.VCF.Ref,
			Alt:   assembly.VCF.Alt,
		},
		Symbol:         record.GeneSymbol,
		HgncID:         record.GeneIDs.HgncID,
		Transcript:     transcript,
		TranscriptHGVS: record.HgvsTranscriptVariant,
		GenomicHGVS:    assembly.HgvsGenomicDescription,
	}, nil
}

type variantRecord struct {
	GeneSymbol string `json:"gene_symbol"`
	GeneIDs    struct {
		HgncID string `json:"hgnc_id"`
	} `json:"gene_ids"`
	HgvsTranscriptVariant    string `json:"hgvs_transcript_variant"`
	ReferenceSequenceRecords struct {
		Transcript string `json:"transcript"`
	} `json:"reference_sequence_records"`
	PrimaryAssemblyLoci map[string]assemblyLocus `json:"primary_assembly_loci"`
}

type assemblyLocus struct {
	HgvsGenomicDescription string `json:"hgvs_genomic_description"`
	VCF                    *struct {
		Chr string `json:"chr"`
		Pos string `json:"pos"`
		Ref string `json:"ref"`
		Alt string `json:"alt"`
	} `json:"vcf"`
}

func firstWarning(payload map[string]json.RawMessage) string {
	raw, ok := payload["validation_warning_1"]
	if !ok {
		return ""
	}
	var block struct {
		ValidationWarnings []string `json:"validation_warnings"`
	}
	if err := json.Unmarshal(raw, &block); err != nil || len(block.ValidationWarnings) == 0 {
		return ""
	}
	return block.ValidationWarnings[0]
}
