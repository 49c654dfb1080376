package alignment

import (
	"fmt"

	"github.com/inodb/seqref/internal/transcript"
)

// Select picks the transcript with the given accession and its placement on
// the primary assembly.
func Select(gene *transcript.Gene, accession, assembly string) (*transcript.Transcript, *transcript.Location, error) {
	if gene == nil {
		return nil, nil, fmt.Errorf("%w: %s", ErrUnknownTranscript, accession)
	}
	t := gene.FindTranscript(accession)
	if t == nil {
		return nil, nil, fmt.Errorf("%w: %s not reported for gene %s", ErrUnknownTranscript, accession, gene.Symbol)
	}
	loc := t.PrimaryLocation(assembly)
	if loc == nil {
		return nil, nil, fmt.Errorf("%w: %s has no placement on %q", ErrNoPrimaryAssemblyLocus, accession, assembly)
	}
	return t, loc, nil
}
