// Package ucsc fetches genomic sequence windows from the UCSC Genome Browser
// REST API.
package ucsc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/inodb/seqref/internal/remote"
	"github.com/inodb/seqref/internal/transcript"
)

const (
	// DefaultBaseURL is the public UCSC REST endpoint.
	DefaultBaseURL = "https://api.genome.ucsc.edu"
	// DefaultGenome is the UCSC assembly name for GRCh38.
	DefaultGenome = "hg38"

	source = "ucsc-sequence"
)

// Client fetches DNA from the UCSC getData/sequence endpoint.
type Client struct {
	baseURL string
	genome  string
	fetcher *remote.Fetcher
	logger  *zap.Logger
}

// NewClient creates a UCSC client. Empty arguments select the defaults.
func NewClient(baseURL, genome string, fetcher *remote.Fetcher) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if genome == "" {
		genome = DefaultGenome
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		genome:  genome,
		fetcher: fetcher,
		logger:  zap.NewNop(),
	}
}

// SetLogger sets the logger for debug messages.
func (c *Client) SetLogger(l *zap.Logger) {
	c.logger = l
}

type sequenceResponse struct {
	DNA   string `json:"dna"`
	Error string `json:"error"`
}

// FetchWindow returns the bases of chrom between start and end (1-based,
// inclusive), reverse-complemented when o is Minus.
func (c *Client) FetchWindow(ctx context.Context, chrom string, start, end int64, o transcript.Orientation) (string, error) {
	if start < 1 || end < start {
		return "", fmt.Errorf("invalid window %s:%d-%d", chrom, start, end)
	}

	revComp := "0"
	if o == transcript.Minus {
		revComp = "1"
	}
	q := url.Values{}
	q.Set("genome", c.genome)
	q.Set("chrom", ChromName(chrom))
	// UCSC takes 0-based, end-exclusive coordinates.
	q.Set("start", strconv.FormatInt(start-1, 10))
	q.Set("end", strconv.FormatInt(end, 10))
	q.Set("revComp", revComp)
	u := c.baseURL + "/getData/sequence?" + q.Encode()

	payload, err := c.fetcher.Do(ctx, source, q.Encode(), func(ctx context.Context) (*http.Request, error) {
		return http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	})
	var nf *remote.NotFoundError
	if errors.As(err, &nf) {
		return "", fmt.Errorf("sequence %s:%d-%d not available from %s", chrom, start, end, c.genome)
	}
	if err != nil {
		return "", err
	}

	var resp sequenceResponse
	if err := json.Unmarshal(payload, &resp); err != nil {
		return "", fmt.Errorf("decode UCSC response: %w", err)
	}
	if resp.Error != "" {
		return "", fmt.Errorf("UCSC %s:%d-%d: %s", chrom, start, end, resp.Error)
	}
	if want := int(end - start + 1); len(resp.DNA) != want {
		return "", fmt.Errorf("UCSC returned %d bases for %s:%d-%d, expected %d", len(resp.DNA), chrom, start, end, want)
	}

	c.logger.Debug("fetched sequence window",
		zap.String("chrom", chrom),
		zap.Int64("start", start),
		zap.Int64("end", end),
		zap.String("strand", string(o)))
	return resp.DNA, nil
}

// ChromName returns the UCSC name for a chromosome ("17" -> "chr17").
func ChromName(chrom string) string {
	if strings.HasPrefix(chrom, "chr") {
		return chrom
	}
	return "chr" + chrom
}
