package alignment

import "fmt"

// RNARange is a coding range in 0-based transcript coordinates, end exclusive.
type RNARange struct {
	Begin int
	End   int
}

// CDSSpan locates a coding sequence inside the window.
type CDSSpan struct {
	StartExon    int   // Index of the exon holding the first CDS base
	Start        int   // Window offset of the first CDS base
	EndExon      int   // Index of the exon holding the last CDS base
	End          int   // Window offset one past the last CDS base
	GenomicStart int64 // Genomic position of the first CDS base
	GenomicEnd   int64 // Genomic position of the last CDS base
}

// LocateCDS maps a coding range onto exon indices and window offsets. The
// intervals already include the 5' padding, so offsets are not shifted again.
func LocateCDS(cds RNARange, ivs []Interval, w Window) (CDSSpan, error) {
	if cds.Begin < 0 || cds.End <= cds.Begin {
		return CDSSpan{}, fmt.Errorf("%w: empty or negative range [%d,%d)", ErrCdsOutOfRange, cds.Begin, cds.End)
	}

	startExon, start, err := locateRNA(cds.Begin, ivs)
	if err != nil {
		return CDSSpan{}, err
	}
	endExon, last, err := locateRNA(cds.End-1, ivs)
	if err != nil {
		return CDSSpan{}, err
	}

	return CDSSpan{
		StartExon:    startExon,
		Start:        start,
		EndExon:      endExon,
		End:          last + 1,
		GenomicStart: w.Position(start),
		GenomicEnd:   w.Position(last),
	}, nil
}

// locateRNA finds the exon containing a transcript position and its window offset.
func locateRNA(target int, ivs []Interval) (exon, offset int, err error) {
	before := 0
	for i, iv := range ivs {
		if target < before+iv.Len() {
			return i, iv.Start + target - before, nil
		}
		before += iv.Len()
	}
	return 0, 0, fmt.Errorf("%w: position %d beyond exon total %d", ErrCdsOutOfRange, target, before)
}

// Segments returns the window intervals covered by the CDS, one per coding exon.
func (s CDSSpan) Segments(ivs []Interval) []Interval {
	segs := make([]Interval, 0, s.EndExon-s.StartExon+1)
	for i := s.StartExon; i <= s.EndExon; i++ {
		seg := ivs[i]
		if i == s.StartExon {
			seg.Start = s.Start
		}
		if i == s.EndExon {
			seg.End = s.End
		}
		segs = append(segs, seg)
	}
	return segs
}

// Bases returns the CDS length in bases.
func (s CDSSpan) Bases(ivs []Interval) int {
	n := 0
	for _, seg := range s.Segments(ivs) {
		n += seg.Len()
	}
	return n
}
