package ncbi

import (
	"encoding/json"
	"fmt"

	"github.com/inodb/seqref/internal/transcript"
)

// productResponse is the JSON returned by gene/accession/{acc}?returned_content=PRODUCT.
// Datasets encodes 64-bit integers as strings, so coordinates use json.Number.
type productResponse struct {
	Reports []struct {
		Product productReport `json:"product"`
	} `json:"reports"`
	TotalCount int `json:"total_count"`
}

type productReport struct {
	GeneID      json.Number        `json:"gene_id"`
	Symbol      string             `json:"symbol"`
	Description string             `json:"description"`
	Transcripts []transcriptReport `json:"transcripts"`
}

type transcriptReport struct {
	AccessionVersion string            `json:"accession_version"`
	Type             string            `json:"type"`
	GenomicLocations []genomicLocation `json:"genomic_locations"`
	CDS              *struct {
		Range []rangeReport `json:"range"`
	} `json:"cds"`
	Protein *struct {
		AccessionVersion string `json:"accession_version"`
	} `json:"protein"`
}

type genomicLocation struct {
	GenomicAccessionVersion string        `json:"genomic_accession_version"`
	SequenceName            string        `json:"sequence_name"`
	GenomicRange            rangeReport   `json:"genomic_range"`
	Exons                   []rangeReport `json:"exons"`
}

type rangeReport struct {
	Begin       json.Number `json:"begin"`
	End         json.Number `json:"end"`
	Orientation string      `json:"orientation"`
}

func (r rangeReport) bounds() (begin, end int64, err error) {
	if begin, err = r.Begin.Int64(); err != nil {
		return 0, 0, fmt.Errorf("range begin %q: %w", r.Begin, err)
	}
	if end, err = r.End.Int64(); err != nil {
		return 0, 0, fmt.Errorf("range end %q: %w", r.End, err)
	}
	return begin, end, nil
}

// decodeProductReport converts the first product report into a Gene. It
// returns nil when the payload holds no reports.
func decodeProductReport(payload []byte) (*transcript.Gene, error) {
	var resp productResponse
	if err := json.Unmarshal(payload, &resp); err != nil {
		return nil, err
	}
	if len(resp.Reports) == 0 {
		return nil, nil
	}

	p := resp.Reports[0].Product
	g := &transcript.Gene{
		ID:          p.GeneID.String(),
		Symbol:      p.Symbol,
		Description: p.Description,
	}
	for _, tr := range p.Transcripts {
		t, err := tr.toTranscript()
		if err != nil {
			return nil, fmt.Errorf("transcript %s: %w", tr.AccessionVersion, err)
		}
		g.Transcripts = append(g.Transcripts, t)
	}
	return g, nil
}

func (tr *transcriptReport) toTranscript() (*transcript.Transcript, error) {
	t := &transcript.Transcript{
		Accession: tr.AccessionVersion,
		Type:      tr.Type,
	}
	if tr.Protein != nil {
		t.ProteinAccession = tr.Protein.AccessionVersion
	}
	if tr.CDS != nil && len(tr.CDS.Range) > 0 {
		begin, end, err := tr.CDS.Range[0].bounds()
		if err != nil {
			return nil, fmt.Errorf("cds: %w", err)
		}
		t.CDS = &transcript.CDSRange{Begin: begin, End: end}
	}

	for _, gl := range tr.GenomicLocations {
		loc, err := gl.toLocation()
		if err != nil {
			return nil, fmt.Errorf("location %s: %w", gl.GenomicAccessionVersion, err)
		}
		t.Locations = append(t.Locations, loc)
	}
	return t, nil
}

func (gl *genomicLocation) toLocation() (transcript.Location, error) {
	begin, end, err := gl.GenomicRange.bounds()
	if err != nil {
		return transcript.Location{}, err
	}
	orientation, err := transcript.ParseOrientation(gl.GenomicRange.Orientation)
	if err != nil {
		return transcript.Location{}, err
	}

	loc := transcript.Location{
		SequenceName:     gl.SequenceName,
		GenomicAccession: gl.GenomicAccessionVersion,
		Range:            transcript.Range{Begin: begin, End: end, Orientation: orientation},
		Exons:            make([]transcript.Exon, 0, len(gl.Exons)),
	}
	for _, e := range gl.Exons {
		eb, ee, err := e.bounds()
		if err != nil {
			return transcript.Location{}, fmt.Errorf("exon: %w", err)
		}
		loc.Exons = append(loc.Exons, transcript.Exon{Begin: eb, End: ee})
	}
	return loc, nil
}
