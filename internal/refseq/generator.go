// Package refseq assembles an alignment for one RefSeq transcript from its
// metadata, genomic window and protein sources.
package refseq

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/inodb/seqref/internal/alignment"
	"github.com/inodb/seqref/internal/transcript"
)

// DefaultAssembly matches the GRCh38 primary assembly placement.
const DefaultAssembly = "GRCh38.p14 Primary Assembly"

// MetadataSource returns the gene product report containing a transcript.
type MetadataSource interface {
	FetchGene(ctx context.Context, accession string) (*transcript.Gene, error)
}

// SequenceSource returns genomic bases between start and end (1-based,
// inclusive), reverse-complemented on the minus strand.
type SequenceSource interface {
	FetchWindow(ctx context.Context, chrom string, start, end int64, o transcript.Orientation) (string, error)
}

// ProteinSource returns the residues of a protein accession of a gene.
type ProteinSource interface {
	FetchProtein(ctx context.Context, geneID, proteinAccession string) (string, error)
}

// Generator fetches everything a transcript needs and builds its alignment.
type Generator struct {
	metadata MetadataSource
	sequence SequenceSource
	proteins ProteinSource
	builder  *alignment.Builder
	assembly string
	logger   *zap.Logger
}

// NewGenerator creates a generator for the default assembly.
func NewGenerator(metadata MetadataSource, sequence SequenceSource, proteins ProteinSource) *Generator {
	return &Generator{
		metadata: metadata,
		sequence: sequence,
		proteins: proteins,
		builder:  alignment.NewBuilder(),
		assembly: DefaultAssembly,
		logger:   zap.NewNop(),
	}
}

// SetAssembly sets the sequence-name pattern of the primary assembly.
func (g *Generator) SetAssembly(pattern string) {
	g.assembly = pattern
}

// SetCodonStyle sets how residues are drawn over their codons.
func (g *Generator) SetCodonStyle(s alignment.CodonStyle) {
	g.builder.SetCodonStyle(s)
}

// SetLogger sets the logger for the generator and its builder.
func (g *Generator) SetLogger(l *zap.Logger) {
	g.logger = l
	g.builder.SetLogger(l)
}

// Generate builds the alignment of accession with pad5 bases upstream and
// pad3 bases downstream of the transcript.
func (g *Generator) Generate(ctx context.Context, accession string, pad5, pad3 int) (*alignment.Alignment, error) {
	if pad5 < 0 || pad3 < 0 {
		return nil, fmt.Errorf("%w: negative padding (%d, %d)", alignment.ErrIndexOutOfRange, pad5, pad3)
	}

	gene, err := g.metadata.FetchGene(ctx, accession)
	if err != nil {
		return nil, err
	}
	t, loc, err := alignment.Select(gene, accession, g.assembly)
	if err != nil {
		return nil, err
	}
	chrom, err := loc.Chromosome()
	if err != nil {
		return nil, err
	}

	w := alignment.NewWindow(loc.Range, pad5, pad3)
	start, end := w.GenomicBounds()
	if start < 1 {
		return nil, fmt.Errorf("%w: window starts at %d on chromosome %s", alignment.ErrIndexOutOfRange, start, chrom)
	}

	g.logger.Info("selected transcript",
		zap.String("accession", t.Accession),
		zap.String("gene", gene.Symbol),
		zap.String("chrom", chrom),
		zap.Int64("start", start),
		zap.Int64("end", end),
		zap.String("strand", string(w.Orientation)))

	seq, err := g.sequence.FetchWindow(ctx, chrom, start, end, w.Orientation)
	if err != nil {
		return nil, fmt.Errorf("fetch window %s:%d-%d: %w", chrom, start, end, err)
	}

	var protein string
	if t.IsProteinCoding() {
		if t.ProteinAccession == "" {
			return nil, fmt.Errorf("%w: %s has a CDS but no protein accession", alignment.ErrProteinNotFound, t.Accession)
		}
		protein, err = g.proteins.FetchProtein(ctx, gene.ID, t.ProteinAccession)
		if err != nil {
			return nil, err
		}
	}

	return g.builder.Build(alignment.Input{
		Gene:       gene,
		Transcript: t,
		Location:   loc,
		Chromosome: chrom,
		Window:     w,
		Sequence:   seq,
		Protein:    protein,
	})
}
