// Package alignment builds exon-cased nucleotide and protein tracks for a
// transcript placed in a padded genomic window.
package alignment

import (
	"fmt"
	"sort"

	"github.com/inodb/seqref/internal/transcript"
)

// Window maps genomic positions onto a padded, strand-corrected sequence.
// Offset 0 is the most upstream padded base in transcription direction, so on
// the minus strand offsets grow as genomic positions shrink.
type Window struct {
	Begin       int64 // Transcript start (genomic, 1-based)
	End         int64 // Transcript end (genomic, 1-based, inclusive)
	Orientation transcript.Orientation
	Pad5        int // Bases added upstream of the transcript
	Pad3        int // Bases added downstream of the transcript
}

// NewWindow creates a window around a transcript range.
func NewWindow(r transcript.Range, pad5, pad3 int) Window {
	return Window{Begin: r.Begin, End: r.End, Orientation: r.Orientation, Pad5: pad5, Pad3: pad3}
}

// Len returns the number of bases in the padded window.
func (w Window) Len() int {
	return int(w.End-w.Begin+1) + w.Pad5 + w.Pad3
}

// GenomicBounds returns the plus-strand genomic span (1-based, inclusive) that
// must be fetched to fill the window.
func (w Window) GenomicBounds() (start, end int64) {
	if w.Orientation == transcript.Minus {
		return w.Begin - int64(w.Pad3), w.End + int64(w.Pad5)
	}
	return w.Begin - int64(w.Pad5), w.End + int64(w.Pad3)
}

// Offset returns the 0-based window offset of a genomic position.
func (w Window) Offset(pos int64) int {
	if w.Orientation == transcript.Minus {
		return int(w.End-pos) + w.Pad5
	}
	return int(pos-w.Begin) + w.Pad5
}

// Position is the inverse of Offset.
func (w Window) Position(offset int) int64 {
	if w.Orientation == transcript.Minus {
		return w.End - int64(offset-w.Pad5)
	}
	return w.Begin + int64(offset-w.Pad5)
}

// Interval is a half-open [Start, End) range of window offsets.
type Interval struct {
	Start int
	End   int
}

// Len returns the number of bases in the interval.
func (iv Interval) Len() int {
	return iv.End - iv.Start
}

// Contains reports whether offset lies inside the interval.
func (iv Interval) Contains(offset int) bool {
	return offset >= iv.Start && offset < iv.End
}

// Span maps a closed genomic exon onto a half-open window interval.
func (w Window) Span(e transcript.Exon) Interval {
	a, b := w.Offset(e.Begin), w.Offset(e.End)
	if a > b {
		a, b = b, a
	}
	return Interval{Start: a, End: b + 1}
}

// Normalize converts genomic exons into window intervals in transcription
// order. Input order does not matter. Reversed exons, exons reaching past
// either end of the transcript and overlapping exons are rejected with
// ErrMalformedExonData.
func Normalize(exons []transcript.Exon, w Window) ([]Interval, error) {
	if len(exons) == 0 {
		return nil, fmt.Errorf("%w: no exons", ErrMalformedExonData)
	}

	ivs := make([]Interval, len(exons))
	for i, e := range exons {
		if e.Begin > e.End {
			return nil, fmt.Errorf("%w: exon %d-%d is reversed", ErrMalformedExonData, e.Begin, e.End)
		}
		if e.Begin < w.Begin || e.End > w.End {
			return nil, fmt.Errorf("%w: exon %d-%d lies outside transcript %d-%d",
				ErrMalformedExonData, e.Begin, e.End, w.Begin, w.End)
		}
		ivs[i] = w.Span(e)
	}

	sort.SliceStable(ivs, func(i, j int) bool {
		return ivs[i].Start < ivs[j].Start
	})

	for i := 1; i < len(ivs); i++ {
		if ivs[i].Start < ivs[i-1].End {
			return nil, fmt.Errorf("%w: exon [%d,%d) overlaps [%d,%d)",
				ErrMalformedExonData, ivs[i].Start, ivs[i].End, ivs[i-1].Start, ivs[i-1].End)
		}
	}
	return ivs, nil
}

// Denormalize maps window intervals back to genomic exons, sorted by genomic
// position.
func Denormalize(ivs []Interval, w Window) []transcript.Exon {
	exons := make([]transcript.Exon, len(ivs))
	for i, iv := range ivs {
		a, b := w.Position(iv.Start), w.Position(iv.End-1)
		if a > b {
			a, b = b, a
		}
		exons[i] = transcript.Exon{Begin: a, End: b}
	}
	sort.Slice(exons, func(i, j int) bool {
		return exons[i].Begin < exons[j].Begin
	})
	return exons
}
