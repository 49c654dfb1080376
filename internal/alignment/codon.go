package alignment

import "strings"

// Standard genetic code: DNA codon to amino acid (single letter).
var codonTable = map[string]byte{
	"TTT": 'F', "TTC": 'F', "TTA": 'L', "TTG": 'L',
	"TCT": 'S', "TCC": 'S', "TCA": 'S', "TCG": 'S',
	"TAT": 'Y', "TAC": 'Y', "TAA": '*', "TAG": '*',
	"TGT": 'C', "TGC": 'C', "TGA": '*', "TGG": 'W',

	"CTT": 'L', "CTC": 'L', "CTA": 'L', "CTG": 'L',
	"CCT": 'P', "CCC": 'P', "CCA": 'P', "CCG": 'P',
	"CAT": 'H', "CAC": 'H', "CAA": 'Q', "CAG": 'Q',
	"CGT": 'R', "CGC": 'R', "CGA": 'R', "CGG": 'R',

	"ATT": 'I', "ATC": 'I', "ATA": 'I', "ATG": 'M',
	"ACT": 'T', "ACC": 'T', "ACA": 'T', "ACG": 'T',
	"AAT": 'N', "AAC": 'N', "AAA": 'K', "AAG": 'K',
	"AGT": 'S', "AGC": 'S', "AGA": 'R', "AGG": 'R',

	"GTT": 'V', "GTC": 'V', "GTA": 'V', "GTG": 'V',
	"GCT": 'A', "GCC": 'A', "GCA": 'A', "GCG": 'A',
	"GAT": 'D', "GAC": 'D', "GAA": 'E', "GAG": 'E',
	"GGT": 'G', "GGC": 'G', "GGA": 'G', "GGG": 'G',
}

// TranslateCodon translates a DNA codon to its amino acid.
// Returns 'X' for unknown codons and '*' for stop codons.
func TranslateCodon(codon string) byte {
	if len(codon) != 3 {
		return 'X'
	}
	if aa, ok := codonTable[strings.ToUpper(codon)]; ok {
		return aa
	}
	return 'X'
}

// TranslateSequence translates a DNA sequence to amino acids, ignoring a
// trailing partial codon.
func TranslateSequence(seq string) string {
	n := (len(seq) / 3) * 3

	var result strings.Builder
	result.Grow(n / 3)
	for i := 0; i < n; i += 3 {
		result.WriteByte(TranslateCodon(seq[i : i+3]))
	}
	return result.String()
}

// ReverseComplement returns the reverse complement of a DNA sequence,
// preserving case.
func ReverseComplement(seq string) string {
	n := len(seq)
	result := make([]byte, n)
	for i := 0; i < n; i++ {
		result[i] = Complement(seq[n-1-i])
	}
	return string(result)
}

// Complement returns the complement of a single base.
func Complement(base byte) byte {
	switch base {
	case 'A':
		return 'T'
	case 'T':
		return 'A'
	case 'G':
		return 'C'
	case 'C':
		return 'G'
	case 'a':
		return 't'
	case 't':
		return 'a'
	case 'g':
		return 'c'
	case 'c':
		return 'g'
	case 'n':
		return 'n'
	default:
		return 'N'
	}
}

// SpliceCDS concatenates the coding bases of a nucleotide track.
func SpliceCDS(nucleotides string, span CDSSpan, ivs []Interval) string {
	var b strings.Builder
	for _, seg := range span.Segments(ivs) {
		b.WriteString(nucleotides[seg.Start:seg.End])
	}
	return b.String()
}

// VerifyTranslation translates the spliced CDS and counts residues that differ
// from protein, stop codon included. Length differences count as mismatches.
func VerifyTranslation(nucleotides string, span CDSSpan, ivs []Interval, protein string) int {
	want := stripStop(protein) + string(StopMarker)
	got := TranslateSequence(SpliceCDS(nucleotides, span, ivs))

	mismatches := 0
	for i := 0; i < len(want) && i < len(got); i++ {
		if want[i] != got[i] {
			mismatches++
		}
	}
	if d := len(want) - len(got); d > 0 {
		mismatches += d
	} else {
		mismatches -= d
	}
	return mismatches
}
