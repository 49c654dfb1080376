package transcript

// Gene groups the transcripts reported for one gene.
type Gene struct {
	ID          string        // NCBI Gene ID (e.g., 7157)
	Symbol      string        // Gene symbol (e.g., TP53)
	Description string        // Gene description
	Transcripts []*Transcript // Associated transcripts
}

// FindTranscript returns the transcript with the given versioned accession, or nil.
func (g *Gene) FindTranscript(accession string) *Transcript {
	for _, t := range g.Transcripts {
		if t.Accession == accession {
			return t
		}
	}
	return nil
}
