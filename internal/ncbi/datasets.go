// Package ncbi retrieves transcript metadata and protein sequences from the
// NCBI Datasets v2 REST API.
package ncbi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"go.uber.org/zap"

	"github.com/inodb/seqref/internal/alignment"
	"github.com/inodb/seqref/internal/remote"
	"github.com/inodb/seqref/internal/transcript"
)

// DefaultBaseURL is the NCBI Datasets v2alpha endpoint.
const DefaultBaseURL = "https://api.ncbi.nlm.nih.gov/datasets/v2alpha"

// Cache source names.
const (
	sourceProduct = "ncbi-product"
	sourceProtein = "ncbi-protein"
)

// Client talks to NCBI Datasets.
type Client struct {
	baseURL string
	fetcher *remote.Fetcher
	logger  *zap.Logger
}

// NewClient creates a Datasets client using fetcher for requests.
func NewClient(baseURL string, fetcher *remote.Fetcher) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: baseURL,
		fetcher: fetcher,
		logger:  zap.NewNop(),
	}
}

// SetLogger sets the logger for info and debug messages.
func (c *Client) SetLogger(l *zap.Logger) {
	c.logger = l
}

// FetchGene returns the gene product report for a transcript accession.
// An empty report yields ErrUnknownTranscript.
func (c *Client) FetchGene(ctx context.Context, accession string) (*transcript.Gene, error) {
	u := fmt.Sprintf("%s/gene/accession/%s?returned_content=PRODUCT", c.baseURL, url.PathEscape(accession))

	payload, err := c.fetcher.Do(ctx, sourceProduct, accession, func(ctx context.Context) (*http.Request, error) {
		return http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	})
	var nf *remote.NotFoundError
	if errors.As(err, &nf) {
		return nil, fmt.Errorf("%w: %s", alignment.ErrUnknownTranscript, accession)
	}
	if err != nil {
		return nil, err
	}

	gene, err := decodeProductReport(payload)
	if err != nil {
		return nil, fmt.Errorf("decode product report for %s: %w", accession, err)
	}
	if gene == nil {
		return nil, fmt.Errorf("%w: %s", alignment.ErrUnknownTranscript, accession)
	}

	c.logger.Info("fetched transcript metadata",
		zap.String("accession", accession),
		zap.String("gene", gene.Symbol),
		zap.Int("transcripts", len(gene.Transcripts)))
	return gene, nil
}

// FetchProteinBundle downloads the zipped protein FASTA package for a gene.
func (c *Client) FetchProteinBundle(ctx context.Context, geneID string) ([]byte, error) {
	body, err := json.Marshal(downloadRequest{
		GeneIDs:         []string{geneID},
		AnnotationTypes: []string{"FASTA_PROTEIN"},
	})
	if err != nil {
		return nil, fmt.Errorf("encode download request: %w", err)
	}
	u := fmt.Sprintf("%s/gene/download?filename=%s", c.baseURL, url.QueryEscape(geneID+".zip"))

	return c.fetcher.Do(ctx, sourceProtein, geneID, func(ctx context.Context) (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Accept", "application/zip")
		return req, nil
	})
}

// FetchProtein downloads the protein bundle for a gene and extracts the
// residues of one protein accession.
func (c *Client) FetchProtein(ctx context.Context, geneID, proteinAccession string) (string, error) {
	bundle, err := c.FetchProteinBundle(ctx, geneID)
	if err != nil {
		return "", fmt.Errorf("download proteins for gene %s: %w", geneID, err)
	}
	protein, err := ExtractProtein(bundle, proteinAccession)
	if err != nil {
		return "", err
	}
	c.logger.Info("fetched protein",
		zap.String("protein", proteinAccession),
		zap.Int("residues", len(protein)))
	return protein, nil
}

type downloadRequest struct {
	GeneIDs         []string `json:"gene_ids"`
	AnnotationTypes []string `json:"include_annotation_type"`
}
