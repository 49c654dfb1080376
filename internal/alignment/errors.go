package alignment

import "errors"

// Failure kinds. Callers match them with errors.Is; every returned error wraps
// exactly one of these.
var (
	ErrUnknownTranscript      = errors.New("unknown transcript")
	ErrNoPrimaryAssemblyLocus = errors.New("no primary assembly locus")
	ErrMalformedExonData      = errors.New("malformed exon data")
	ErrIndexOutOfRange        = errors.New("index out of range")
	ErrCdsOutOfRange          = errors.New("CDS out of range")
	ErrFrameMismatch          = errors.New("frame mismatch")
	ErrProteinNotFound        = errors.New("protein not found")
)
