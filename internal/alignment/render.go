package alignment

import (
	"bytes"
	"fmt"
	"strings"
)

// RenderExons returns the window with exon bases in upper case and intron and
// flanking bases in lower case. Intervals must be in ascending order.
func RenderExons(raw string, ivs []Interval) (string, error) {
	buf := []byte(strings.ToLower(raw))

	prev := 0
	for i, iv := range ivs {
		if iv.Start < prev || iv.End < iv.Start || iv.End > len(buf) {
			return "", fmt.Errorf("%w: exon %d [%d,%d) in window of %d bases",
				ErrIndexOutOfRange, i+1, iv.Start, iv.End, len(buf))
		}
		copy(buf[iv.Start:iv.End], bytes.ToUpper(buf[iv.Start:iv.End]))
		prev = iv.End
	}
	return string(buf), nil
}
