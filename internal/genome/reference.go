// Package genome serves sequence windows from a local reference FASTA, as an
// offline alternative to the UCSC REST API.
package genome

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/biogo/biogo/alphabet"
	"github.com/biogo/biogo/io/seqio"
	"github.com/biogo/biogo/io/seqio/fasta"
	"github.com/biogo/biogo/seq/linear"
	"github.com/klauspost/compress/gzip"
	"go.uber.org/zap"

	"github.com/inodb/seqref/internal/alignment"
	"github.com/inodb/seqref/internal/transcript"
)

// Reference reads chromosomes from a (optionally gzipped) FASTA file. Each
// chromosome is loaded on first use and kept in memory.
type Reference struct {
	path   string
	chroms map[string]alphabet.Letters
	logger *zap.Logger
}

// NewReference creates a reference backed by the FASTA file at path.
func NewReference(path string) *Reference {
	return &Reference{
		path:   path,
		chroms: make(map[string]alphabet.Letters),
		logger: zap.NewNop(),
	}
}

// SetLogger sets the logger for load messages.
func (r *Reference) SetLogger(l *zap.Logger) {
	r.logger = l
}

// FetchWindow returns the bases of chrom between start and end (1-based,
// inclusive), reverse-complemented when o is Minus.
func (r *Reference) FetchWindow(ctx context.Context, chrom string, start, end int64, o transcript.Orientation) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	seq, err := r.chromosome(chrom)
	if err != nil {
		return "", err
	}
	if start < 1 || end < start || end > int64(len(seq)) {
		return "", fmt.Errorf("window %s:%d-%d outside chromosome of length %d", chrom, start, end, len(seq))
	}

	b := make([]byte, end-start+1)
	for i, l := range seq[start-1 : end] {
		b[i] = byte(l)
	}
	dna := string(b)
	if o == transcript.Minus {
		dna = alignment.ReverseComplement(dna)
	}
	return dna, nil
}

func (r *Reference) chromosome(chrom string) (alphabet.Letters, error) {
	names := chromAliases(chrom)
	for _, n := range names {
		if s, ok := r.chroms[n]; ok {
			return s, nil
		}
	}

	f, err := os.Open(r.path)
	if err != nil {
		return nil, fmt.Errorf("open reference FASTA: %w", err)
	}
	defer f.Close()

	var reader io.Reader = f
	if strings.HasSuffix(r.path, ".gz") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("open gzip reader: %w", err)
		}
		defer gz.Close()
		reader = gz
	}

	sc := seqio.NewScanner(fasta.NewReader(reader, linear.NewSeq("", nil, alphabet.DNAredundant)))
	for sc.Next() {
		s, ok := sc.Seq().(*linear.Seq)
		if !ok {
			continue
		}
		for _, n := range names {
			if s.ID == n {
				r.chroms[n] = s.Seq
				r.logger.Info("loaded chromosome",
					zap.String("chrom", n),
					zap.Int("length", len(s.Seq)),
					zap.String("path", r.path))
				return s.Seq, nil
			}
		}
	}
	if err := sc.Error(); err != nil {
		return nil, fmt.Errorf("read reference FASTA: %w", err)
	}
	return nil, fmt.Errorf("chromosome %s not found in %s", chrom, r.path)
}

// chromAliases returns the record names a chromosome may be stored under.
func chromAliases(chrom string) []string {
	bare := strings.TrimPrefix(chrom, "chr")
	return []string{bare, "chr" + bare}
}
