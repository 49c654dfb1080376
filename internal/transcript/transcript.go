// Package transcript models RefSeq transcripts as reported by NCBI Datasets.
package transcript

import (
	"fmt"
	"strconv"
	"strings"
)

// Transcript type reported for transcripts without a coding sequence.
const NonCoding = "NON_CODING"

// Orientation is the strand a transcript is read from.
type Orientation string

const (
	Plus  Orientation = "plus"
	Minus Orientation = "minus"
)

// ParseOrientation parses "plus" or "minus".
func ParseOrientation(s string) (Orientation, error) {
	switch Orientation(strings.ToLower(strings.TrimSpace(s))) {
	case Plus:
		return Plus, nil
	case Minus:
		return Minus, nil
	default:
		return "", fmt.Errorf("unknown orientation %q", s)
	}
}

// Transcript represents a specific mRNA product of a gene.
type Transcript struct {
	Accession        string     // Versioned accession (e.g., NM_000546.6)
	Type             string     // PROTEIN_CODING, NON_CODING, ...
	Locations        []Location // Placements on genomic sequences
	CDS              *CDSRange  // Coding range in RNA coordinates, nil if non-coding
	ProteinAccession string     // Versioned protein accession (e.g., NP_000537.3)
}

// CDSRange is a coding range in transcript (RNA) coordinates.
type CDSRange struct {
	Begin int64 // 1-based
	End   int64 // 1-based, inclusive
}

// Len returns the number of bases in the range.
func (c CDSRange) Len() int64 {
	return c.End - c.Begin + 1
}

// IsProteinCoding returns true if the transcript has a coding sequence.
func (t *Transcript) IsProteinCoding() bool {
	return t.Type != NonCoding && t.CDS != nil
}

// PrimaryLocation returns the last location whose sequence name contains
// assembly, or nil when the transcript is not placed on that assembly.
func (t *Transcript) PrimaryLocation(assembly string) *Location {
	var found *Location
	for i := range t.Locations {
		if strings.Contains(t.Locations[i].SequenceName, assembly) {
			found = &t.Locations[i]
		}
	}
	return found
}

// Location is the placement of a transcript on one genomic sequence.
type Location struct {
	SequenceName     string // e.g. "Chromosome 17 Reference GRCh38.p14 Primary Assembly"
	GenomicAccession string // e.g. NC_000017.11
	Range            Range  // Transcript span
	Exons            []Exon // Exons as reported by the source
}

// Range is a genomic span with its orientation.
type Range struct {
	Begin       int64 // 1-based
	End         int64 // 1-based, inclusive
	Orientation Orientation
}

// IsForwardStrand returns true if the range is on the plus strand.
func (r Range) IsForwardStrand() bool {
	return r.Orientation == Plus
}

// IsReverseStrand returns true if the range is on the minus strand.
func (r Range) IsReverseStrand() bool {
	return r.Orientation == Minus
}

// Contains returns true if the given position is within the range.
func (r Range) Contains(pos int64) bool {
	return pos >= r.Begin && pos <= r.End
}

// Exon represents a single exon in plus-strand genomic coordinates.
type Exon struct {
	Begin int64 // Genomic begin (1-based)
	End   int64 // Genomic end (1-based, inclusive)
}

// Len returns the exon length in bases.
func (e Exon) Len() int64 {
	if e.End < e.Begin {
		return e.Begin - e.End + 1
	}
	return e.End - e.Begin + 1
}

// mitochondrialAccession is the RefSeq accession of the human mitochondrial genome.
const mitochondrialAccession = "NC_012920"

// Chromosome derives the chromosome name from a RefSeq genomic accession:
// NC_000017.11 is "17", NC_000023 is "X" and NC_000024 is "Y".
func (l *Location) Chromosome() (string, error) {
	acc, _, _ := strings.Cut(l.GenomicAccession, ".")
	if acc == mitochondrialAccession {
		return "M", nil
	}
	if !strings.HasPrefix(acc, "NC_") || len(acc) < 5 {
		return "", fmt.Errorf("not a chromosome accession: %q", l.GenomicAccession)
	}
	n, err := strconv.Atoi(acc[len(acc)-2:])
	if err != nil {
		return "", fmt.Errorf("parse chromosome from %q: %w", l.GenomicAccession, err)
	}
	switch {
	case n == 23:
		return "X", nil
	case n == 24:
		return "Y", nil
	case n >= 1 && n <= 22:
		return strconv.Itoa(n), nil
	default:
		return "", fmt.Errorf("not a chromosome accession: %q", l.GenomicAccession)
	}
}
