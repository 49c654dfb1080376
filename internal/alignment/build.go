package alignment

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/inodb/seqref/internal/transcript"
)

// Input holds everything needed to align one transcript.
type Input struct {
	Gene       *transcript.Gene
	Transcript *transcript.Transcript
	Location   *transcript.Location
	Chromosome string
	Window     Window
	Sequence   string // Raw window sequence, already strand-corrected
	Protein    string // Protein residues, empty for non-coding transcripts
}

// Alignment is a fully built, internally consistent transcript rendering.
type Alignment struct {
	Gene        *transcript.Gene
	Transcript  *transcript.Transcript
	Location    *transcript.Location
	Chromosome  string
	Window      Window
	Exons       []Interval       // Exons in transcription order
	Nucleotides string           // Exon-cased window
	CDS         *CDSSpan         // Nil for non-coding transcripts
	Annotation  *AnnotationTrack // Nil for non-coding transcripts
}

// IsCoding returns true if the alignment carries a protein track.
func (a *Alignment) IsCoding() bool {
	return a.Annotation != nil
}

// Builder runs the alignment stages in order.
type Builder struct {
	style  CodonStyle
	logger *zap.Logger
}

// NewBuilder creates a builder using the repeat codon style.
func NewBuilder() *Builder {
	return &Builder{
		style:  CodonRepeat,
		logger: zap.NewNop(),
	}
}

// SetCodonStyle sets how residues are drawn over their codons.
func (b *Builder) SetCodonStyle(s CodonStyle) {
	b.style = s
}

// SetLogger sets the logger for warning and debug messages.
func (b *Builder) SetLogger(l *zap.Logger) {
	b.logger = l
}

// Build normalizes exons, renders the nucleotide track and, for coding
// transcripts, locates the CDS and synchronizes the protein track. It returns
// either a complete alignment or a single error.
func (b *Builder) Build(in Input) (*Alignment, error) {
	w := in.Window
	if len(in.Sequence) != w.Len() {
		return nil, fmt.Errorf("%w: window sequence has %d bases, expected %d",
			ErrIndexOutOfRange, len(in.Sequence), w.Len())
	}

	ivs, err := Normalize(in.Location.Exons, w)
	if err != nil {
		return nil, fmt.Errorf("normalize exons of %s: %w", in.Transcript.Accession, err)
	}

	nucleotides, err := RenderExons(in.Sequence, ivs)
	if err != nil {
		return nil, fmt.Errorf("render exons of %s: %w", in.Transcript.Accession, err)
	}

	a := &Alignment{
		Gene:        in.Gene,
		Transcript:  in.Transcript,
		Location:    in.Location,
		Chromosome:  in.Chromosome,
		Window:      w,
		Exons:       ivs,
		Nucleotides: nucleotides,
	}

	b.logger.Debug("rendered exons",
		zap.String("transcript", in.Transcript.Accession),
		zap.Int("exons", len(ivs)),
		zap.Int("window", w.Len()))

	if !in.Transcript.IsProteinCoding() {
		return a, nil
	}

	// Source CDS ranges are 1-based and inclusive.
	cds := RNARange{Begin: int(in.Transcript.CDS.Begin - 1), End: int(in.Transcript.CDS.End)}
	span, err := LocateCDS(cds, ivs, w)
	if err != nil {
		return nil, fmt.Errorf("locate CDS of %s: %w", in.Transcript.Accession, err)
	}

	track, err := SyncProtein(in.Protein, span, ivs, len(nucleotides), b.style)
	if err != nil {
		return nil, fmt.Errorf("sync protein %s: %w", in.Transcript.ProteinAccession, err)
	}

	if n := VerifyTranslation(nucleotides, span, ivs, in.Protein); n > 0 {
		b.logger.Warn("CDS translation differs from protein",
			zap.String("transcript", in.Transcript.Accession),
			zap.String("protein", in.Transcript.ProteinAccession),
			zap.Int("mismatches", n))
	}

	a.CDS = &span
	a.Annotation = track
	return a, nil
}
