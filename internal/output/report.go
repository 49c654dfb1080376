// Package output renders transcript alignments as numbered text reports.
package output

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/inodb/seqref/internal/alignment"
)

// Layout of the report body.
const (
	BlockWidth      = 60 // Bases per line
	ChunkWidth      = 10 // Bases per space-separated group
	ExonsPerRow     = 5  // Exon ranges per header row
	timestampLayout = "02/01/2006, 15:04:05"
)

// LineKind tags a body line with the track it belongs to.
type LineKind int

const (
	NucleotideLine LineKind = iota
	AnnotationLine
)

// Line is one numbered row of the report body.
type Line struct {
	Kind    LineKind
	Content string // Unchunked track characters
	Start   int    // First coordinate on the line (1-based)
	End     int    // Last coordinate on the line
}

// Lines splits the tracks into numbered rows. Nucleotide rows are numbered by
// base; annotation rows by residue, counting residues that begin on the row.
// Annotation rows without any residue slot are omitted. Both tracks must have
// the same length.
func Lines(nucleotides string, ann *alignment.AnnotationTrack) ([]Line, error) {
	if ann != nil && ann.Len() != len(nucleotides) {
		return nil, fmt.Errorf("%w: annotation track has %d slots, nucleotide track %d bases",
			alignment.ErrIndexOutOfRange, ann.Len(), len(nucleotides))
	}

	var lines []Line
	nucEnd, resEnd := 0, 0
	for from := 0; from < len(nucleotides); from += BlockWidth {
		to := min(from+BlockWidth, len(nucleotides))
		lines = append(lines, Line{
			Kind:    NucleotideLine,
			Content: nucleotides[from:to],
			Start:   nucEnd + 1,
			End:     nucEnd + to - from,
		})
		nucEnd += to - from

		if ann == nil || ann.IsBlank(from, to) {
			continue
		}
		n := ann.Residues(from, to)
		start := resEnd + 1
		if n == 0 {
			// Only the tail of a residue begun on an earlier line.
			start = resEnd
		}
		lines = append(lines, Line{
			Kind:    AnnotationLine,
			Content: string(ann.Slots[from:to]),
			Start:   start,
			End:     resEnd + n,
		})
		resEnd += n
	}
	return lines, nil
}

// Chunk inserts sep between consecutive groups of size characters.
func Chunk(s string, size int, sep string) string {
	if size <= 0 || len(s) <= size {
		return s
	}
	var b strings.Builder
	b.Grow(len(s) + len(s)/size*len(sep))
	for i := 0; i < len(s); i += size {
		if i > 0 {
			b.WriteString(sep)
		}
		b.WriteString(s[i:min(i+size, len(s))])
	}
	return b.String()
}

// ReportWriter writes alignment reports.
type ReportWriter struct {
	w   *bufio.Writer
	now func() time.Time
}

// NewReportWriter creates a new report writer.
func NewReportWriter(w io.Writer) *ReportWriter {
	return &ReportWriter{
		w:   bufio.NewWriter(w),
		now: time.Now,
	}
}

// SetClock overrides the clock used for the report timestamp.
func (rw *ReportWriter) SetClock(now func() time.Time) {
	rw.now = now
}

// Write writes the header and the numbered body, then flushes.
func (rw *ReportWriter) Write(a *alignment.Alignment) error {
	if err := rw.WriteHeader(a); err != nil {
		return err
	}
	lines, err := Lines(a.Nucleotides, a.Annotation)
	if err != nil {
		return err
	}
	for _, l := range lines {
		if err := rw.WriteLine(l); err != nil {
			return err
		}
	}
	return rw.Flush()
}

// WriteHeader writes the transcript summary.
func (rw *ReportWriter) WriteHeader(a *alignment.Alignment) error {
	var b strings.Builder
	fmt.Fprintf(&b, "\t%s\n", rw.now().Format(timestampLayout))
	fmt.Fprintf(&b, "\tGENE: %s - %s\n", a.Gene.Symbol, a.Gene.Description)
	fmt.Fprintf(&b, "\tCHROMOSOME: %s\n", a.Chromosome)
	fmt.Fprintf(&b, "\tSTRAND: %s\n", a.Window.Orientation)
	fmt.Fprintf(&b, "\tTRANSCRIPT: %s\n", a.Transcript.Accession)
	fmt.Fprintf(&b, "\tEXON COUNT: %d\n", len(a.Exons))
	b.WriteString("\tEXON POSITIONS:\n")
	b.WriteString(exonRows(a.Exons))

	if a.IsCoding() {
		fmt.Fprintf(&b, "\tCODING EXONS: %d to %d\n", a.CDS.StartExon+1, a.CDS.EndExon+1)
		fmt.Fprintf(&b, "\tPROTEIN: %s\n", a.Transcript.ProteinAccession)
		fmt.Fprintf(&b, "\tCDS POSITIONS: %d to %d (stop codon included)\n", a.CDS.Start+1, a.CDS.End)
	}
	b.WriteString("\n\n")

	_, err := rw.w.WriteString(b.String())
	return err
}

// exonRows formats 1-based inclusive exon ranges, ExonsPerRow per row.
func exonRows(ivs []alignment.Interval) string {
	var b strings.Builder
	for i := 0; i < len(ivs); i += ExonsPerRow {
		row := ivs[i:min(i+ExonsPerRow, len(ivs))]
		entries := make([]string, len(row))
		for j, iv := range row {
			entries[j] = fmt.Sprintf("%d-%d", iv.Start+1, iv.End)
		}
		b.WriteString("\t\t")
		b.WriteString(strings.Join(entries, ", "))
		if i+ExonsPerRow < len(ivs) {
			b.WriteByte(',')
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// WriteLine writes one numbered body line followed by a blank line.
func (rw *ReportWriter) WriteLine(l Line) error {
	_, err := fmt.Fprintf(rw.w, "%d\t%s\t%d\n\n", l.Start, Chunk(l.Content, ChunkWidth, " "), l.End)
	return err
}

// Flush flushes any buffered data.
func (rw *ReportWriter) Flush() error {
	return rw.w.Flush()
}
