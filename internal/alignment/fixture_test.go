package alignment

import (
	"strings"

	"github.com/inodb/seqref/internal/transcript"
)

// Two-exon plus-strand transcript at 1001-1040 with a 21-base CDS
// (ATG AAA C|TG GTG GCG GGC TAA) whose third codon is split by the intron.
const (
	fixturePad5    = 3
	fixturePad3    = 2
	fixtureProtein = "MKLVAG"
)

var fixtureRaw = "ccc" + "gggg" + "atgaaac" + "gtaaggcag" + "tggtggcgggctaa" + "tttttt" + "aa"

var fixtureNucleotides = "ccc" + "GGGGATGAAAC" + "gtaaggcag" + "TGGTGGCGGGCTAATTTTTT" + "aa"

var fixtureAnnotation = strings.Repeat(" ", 7) + "MMMKKKL" + strings.Repeat(" ", 9) +
	"LLVVVAAAGGG*  " + strings.Repeat(" ", 8)

func fixtureGene(o transcript.Orientation) *transcript.Gene {
	exons := []transcript.Exon{{Begin: 1001, End: 1011}, {Begin: 1021, End: 1040}}
	if o == transcript.Minus {
		// Mirror image of the plus-strand exons inside the same window.
		exons = []transcript.Exon{{Begin: 1001, End: 1020}, {Begin: 1030, End: 1040}}
	}
	return &transcript.Gene{
		ID:          "100",
		Symbol:      "TST",
		Description: "test gene",
		Transcripts: []*transcript.Transcript{{
			Accession:        "NM_000100.1",
			Type:             "PROTEIN_CODING",
			CDS:              &transcript.CDSRange{Begin: 5, End: 25},
			ProteinAccession: "NP_000100.1",
			Locations: []transcript.Location{{
				SequenceName:     "Chromosome 1 Reference GRCh38.p14 Primary Assembly",
				GenomicAccession: "NC_000001.11",
				Range:            transcript.Range{Begin: 1001, End: 1040, Orientation: o},
				Exons:            exons,
			}},
		}},
	}
}

func fixtureInput(o transcript.Orientation) Input {
	g := fixtureGene(o)
	tr := g.Transcripts[0]
	loc := &tr.Locations[0]
	return Input{
		Gene:       g,
		Transcript: tr,
		Location:   loc,
		Chromosome: "1",
		Window:     NewWindow(loc.Range, fixturePad5, fixturePad3),
		Sequence:   fixtureRaw,
		Protein:    fixtureProtein,
	}
}
