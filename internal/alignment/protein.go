package alignment

import (
	"fmt"
	"strings"
)

// Annotation track characters.
const (
	Blank       = ' '
	Placeholder = '.'
	StopMarker  = '*'
)

// CodonStyle controls how a residue is drawn over its codon.
type CodonStyle int

const (
	// CodonRepeat repeats the residue over all three bases ("MMM").
	CodonRepeat CodonStyle = iota
	// CodonDotted draws the residue on the first base ("M..").
	CodonDotted
)

// ParseCodonStyle parses "repeat" or "dotted".
func ParseCodonStyle(s string) (CodonStyle, error) {
	switch strings.ToLower(s) {
	case "", "repeat":
		return CodonRepeat, nil
	case "dotted":
		return CodonDotted, nil
	default:
		return 0, fmt.Errorf("unknown codon style %q (want repeat or dotted)", s)
	}
}

func (s CodonStyle) String() string {
	if s == CodonDotted {
		return "dotted"
	}
	return "repeat"
}

// AnnotationTrack holds one slot per window base.
type AnnotationTrack struct {
	Slots []byte // Residue, placeholder or blank
	Leads []bool // True where a residue begins
}

// NewAnnotationTrack returns a blank track of n slots.
func NewAnnotationTrack(n int) *AnnotationTrack {
	t := &AnnotationTrack{Slots: make([]byte, n), Leads: make([]bool, n)}
	for i := range t.Slots {
		t.Slots[i] = Blank
	}
	return t
}

// Len returns the number of slots.
func (t *AnnotationTrack) Len() int {
	return len(t.Slots)
}

// String returns the slots as text.
func (t *AnnotationTrack) String() string {
	return string(t.Slots)
}

// Residues counts residues beginning in [from, to).
func (t *AnnotationTrack) Residues(from, to int) int {
	n := 0
	for _, lead := range t.Leads[from:to] {
		if lead {
			n++
		}
	}
	return n
}

// IsBlank reports whether every slot in [from, to) is blank.
func (t *AnnotationTrack) IsBlank(from, to int) bool {
	for _, c := range t.Slots[from:to] {
		if c != Blank {
			return false
		}
	}
	return true
}

// Filled returns the number of non-blank slots.
func (t *AnnotationTrack) Filled() int {
	return t.Len() - strings.Count(string(t.Slots), string(Blank))
}

// stripStop removes a trailing stop marker so it is never drawn twice.
func stripStop(protein string) string {
	return strings.TrimSuffix(strings.TrimSpace(protein), string(StopMarker))
}

// expandResidues lays residues out base by base: three slots per residue and
// a single slot for the terminal stop marker.
func expandResidues(protein string, style CodonStyle) (slots []byte, leads []bool) {
	n := 3*len(protein) + 1
	slots = make([]byte, 0, n)
	leads = make([]bool, 0, n)
	for i := 0; i < len(protein); i++ {
		aa := protein[i]
		switch style {
		case CodonDotted:
			slots = append(slots, aa, Placeholder, Placeholder)
		default:
			slots = append(slots, aa, aa, aa)
		}
		leads = append(leads, true, false, false)
	}
	slots = append(slots, StopMarker)
	leads = append(leads, true)
	return slots, leads
}

// SyncProtein places residues over the CDS bases of a track of the given
// length. Codons split by an intron continue on the next exon. The CDS,
// stop codon included, must be exactly three bases per residue.
func SyncProtein(protein string, span CDSSpan, ivs []Interval, length int, style CodonStyle) (*AnnotationTrack, error) {
	protein = stripStop(protein)
	if protein == "" {
		return nil, fmt.Errorf("%w: empty protein sequence", ErrFrameMismatch)
	}
	if span.StartExon < 0 || span.EndExon >= len(ivs) || span.StartExon > span.EndExon {
		return nil, fmt.Errorf("%w: CDS exons %d-%d of %d", ErrCdsOutOfRange, span.StartExon+1, span.EndExon+1, len(ivs))
	}

	bases := span.Bases(ivs)
	residues := len(protein) + 1
	if bases != 3*residues {
		return nil, fmt.Errorf("%w: CDS has %d bases, protein needs %d (%d residues with stop)",
			ErrFrameMismatch, bases, 3*residues, residues)
	}

	slots, leads := expandResidues(protein, style)
	track := NewAnnotationTrack(length)

	cursor := 0
	for _, seg := range span.Segments(ivs) {
		if seg.Start < 0 || seg.End > length {
			return nil, fmt.Errorf("%w: CDS segment [%d,%d) in track of %d", ErrIndexOutOfRange, seg.Start, seg.End, length)
		}
		for pos := seg.Start; pos < seg.End && cursor < len(slots); pos++ {
			track.Slots[pos] = slots[cursor]
			track.Leads[pos] = leads[cursor]
			cursor++
		}
	}
	if cursor != len(slots) {
		return nil, fmt.Errorf("%w: placed %d of %d residue slots", ErrFrameMismatch, cursor, len(slots))
	}
	return track, nil
}
