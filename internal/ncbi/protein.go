package ncbi

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/biogo/biogo/alphabet"
	"github.com/biogo/biogo/io/seqio"
	"github.com/biogo/biogo/io/seqio/fasta"
	"github.com/biogo/biogo/seq/linear"
	"github.com/klauspost/compress/zip"

	"github.com/inodb/seqref/internal/alignment"
)

// ProteinFile is the protein FASTA inside a Datasets gene package.
const ProteinFile = "ncbi_dataset/data/protein.faa"

// ExtractProtein finds a protein accession in a zipped Datasets gene package.
func ExtractProtein(bundle []byte, accession string) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(bundle), int64(len(bundle)))
	if err != nil {
		return "", fmt.Errorf("open protein package: %w", err)
	}

	for _, zf := range zr.File {
		if zf.Name != ProteinFile {
			continue
		}
		rc, err := zf.Open()
		if err != nil {
			return "", fmt.Errorf("open %s: %w", ProteinFile, err)
		}
		defer rc.Close()
		return FindProtein(rc, accession)
	}
	return "", fmt.Errorf("%w: %s (package has no %s)", alignment.ErrProteinNotFound, accession, ProteinFile)
}

// FindProtein scans protein FASTA records for accession. A record matches when
// its identifier equals accession, or failing that, when its header contains it.
func FindProtein(r io.Reader, accession string) (string, error) {
	sc := seqio.NewScanner(fasta.NewReader(r, linear.NewSeq("", nil, alphabet.Protein)))

	var fallback string
	found := false
	for sc.Next() {
		s, ok := sc.Seq().(*linear.Seq)
		if !ok {
			continue
		}
		if s.ID == accession {
			return residues(s.Seq), nil
		}
		if !found && strings.Contains(s.ID+" "+s.Desc, accession) {
			fallback, found = residues(s.Seq), true
		}
	}
	if err := sc.Error(); err != nil {
		return "", fmt.Errorf("read protein FASTA: %w", err)
	}
	if !found {
		return "", fmt.Errorf("%w: %s", alignment.ErrProteinNotFound, accession)
	}
	return fallback, nil
}

func residues(ls alphabet.Letters) string {
	b := make([]byte, len(ls))
	for i, l := range ls {
		b[i] = byte(l)
	}
	return strings.ToUpper(string(b))
}
