package ncbi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/klauspost/compress/zip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inodb/seqref/internal/alignment"
	"github.com/inodb/seqref/internal/remote"
	"github.com/inodb/seqref/internal/transcript"
)

const tp53Report = `{
  "reports": [{
    "product": {
      "gene_id": "7157",
      "symbol": "TP53",
      "description": "tumor protein p53",
      "transcripts": [{
        "accession_version": "NM_000546.6",
        "type": "PROTEIN_CODING",
        "genomic_locations": [{
          "genomic_accession_version": "NC_000017.11",
          "sequence_name": "Chromosome 17 Reference GRCh38.p14 Primary Assembly",
          "genomic_range": {"begin": "7668421", "end": "7687490", "orientation": "minus"},
          "exons": [
            {"begin": "7687377", "end": "7687490", "order": 1},
            {"begin": "7668421", "end": "7669690", "order": 11}
          ]
        }],
        "cds": {"range": [{"begin": "203", "end": "1384"}]},
        "protein": {"accession_version": "NP_000537.3"}
      }, {
        "accession_version": "NR_176326.1",
        "type": "NON_CODING",
        "genomic_locations": [{
          "genomic_accession_version": "NC_000017.11",
          "sequence_name": "Chromosome 17 Reference GRCh38.p14 Primary Assembly",
          "genomic_range": {"begin": 7668421, "end": 7687490, "orientation": "minus"},
          "exons": [{"begin": 7668421, "end": 7687490}]
        }]
      }]
    }
  }],
  "total_count": 1
}`

func TestDecodeProductReport(t *testing.T) {
	g, err := decodeProductReport([]byte(tp53Report))
	require.NoError(t, err)
	require.NotNil(t, g)

	assert.Equal(t, "7157", g.ID)
	assert.Equal(t, "TP53", g.Symbol)
	require.Len(t, g.Transcripts, 2)

	nm := g.Transcripts[0]
	assert.Equal(t, "NM_000546.6", nm.Accession)
	assert.True(t, nm.IsProteinCoding())
	assert.Equal(t, "NP_000537.3", nm.ProteinAccession)
	require.NotNil(t, nm.CDS)
	assert.Equal(t, transcript.CDSRange{Begin: 203, End: 1384}, *nm.CDS)

	require.Len(t, nm.Locations, 1)
	loc := nm.Locations[0]
	assert.Equal(t, "NC_000017.11", loc.GenomicAccession)
	assert.Equal(t, transcript.Range{Begin: 7668421, End: 7687490, Orientation: transcript.Minus}, loc.Range)
	assert.Equal(t, []transcript.Exon{{Begin: 7687377, End: 7687490}, {Begin: 7668421, End: 7669690}}, loc.Exons)

	// Unquoted numbers decode too.
	nr := g.Transcripts[1]
	assert.False(t, nr.IsProteinCoding())
	assert.Nil(t, nr.CDS)
	assert.Equal(t, int64(7668421), nr.Locations[0].Range.Begin)
}

func TestDecodeProductReport_Empty(t *testing.T) {
	g, err := decodeProductReport([]byte(`{"total_count": 0}`))
	require.NoError(t, err)
	assert.Nil(t, g)
}

func TestDecodeProductReport_Malformed(t *testing.T) {
	tests := []struct {
		name    string
		payload string
	}{
		{"not json", `<html>`},
		{"bad orientation", `{"reports":[{"product":{"transcripts":[{"genomic_locations":[{"genomic_range":{"begin":"1","end":"2","orientation":"sideways"}}]}]}}]}`},
		{"bad exon", `{"reports":[{"product":{"transcripts":[{"genomic_locations":[{"genomic_range":{"begin":"1","end":"2","orientation":"plus"},"exons":[{"begin":"x","end":"2"}]}]}]}}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := decodeProductReport([]byte(tt.payload))
			assert.Error(t, err)
		})
	}
}

func TestClient_FetchGene(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "PRODUCT", r.URL.Query().Get("returned_content"))
		switch r.URL.Path {
		case "/gene/accession/NM_000546.6":
			io.WriteString(w, tp53Report)
		case "/gene/accession/NM_EMPTY.1":
			io.WriteString(w, `{}`)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	c := NewClient(srv.URL, remote.NewFetcher(5*time.Second))

	g, err := c.FetchGene(context.Background(), "NM_000546.6")
	require.NoError(t, err)
	assert.Equal(t, "TP53", g.Symbol)

	_, err = c.FetchGene(context.Background(), "NM_EMPTY.1")
	assert.True(t, errors.Is(err, alignment.ErrUnknownTranscript))

	_, err = c.FetchGene(context.Background(), "NM_MISSING.1")
	assert.True(t, errors.Is(err, alignment.ErrUnknownTranscript))
}

func TestNewClient_DefaultBaseURL(t *testing.T) {
	c := NewClient("", remote.NewFetcher(time.Second))
	assert.Equal(t, DefaultBaseURL, c.baseURL)
}

func buildBundle(t *testing.T, files map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, content := range files {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = io.WriteString(w, content)
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

const proteinFASTA = `>NP_000537.3 cellular tumor antigen p53 isoform a [Homo sapiens]
MEEPQSDPSV
EPPLSQETFS
>NP_001119584.1 cellular tumor antigen p53 isoform b [Homo sapiens]
MEEPQSDPSVKK
>XP_999.1 predicted protein, similar to NP_777.1
mkl
`

func TestExtractProtein(t *testing.T) {
	bundle := buildBundle(t, map[string]string{
		"README.md":  "readme",
		ProteinFile:  proteinFASTA,
		"other.json": "{}",
	})

	tests := []struct {
		accession string
		want      string
	}{
		{"NP_000537.3", "MEEPQSDPSVEPPLSQETFS"},
		{"NP_001119584.1", "MEEPQSDPSVKK"},
		{"NP_777.1", "MKL"}, // header match, uppercased
	}
	for _, tt := range tests {
		t.Run(tt.accession, func(t *testing.T) {
			got, err := ExtractProtein(bundle, tt.accession)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExtractProtein_NotFound(t *testing.T) {
	bundle := buildBundle(t, map[string]string{ProteinFile: proteinFASTA})
	_, err := ExtractProtein(bundle, "NP_000000.1")
	assert.True(t, errors.Is(err, alignment.ErrProteinNotFound))

	empty := buildBundle(t, map[string]string{"README.md": "readme"})
	_, err = ExtractProtein(empty, "NP_000537.3")
	assert.True(t, errors.Is(err, alignment.ErrProteinNotFound))

	_, err = ExtractProtein([]byte("not a zip"), "NP_000537.3")
	require.Error(t, err)
	assert.False(t, errors.Is(err, alignment.ErrProteinNotFound))
}

func TestFindProtein_ExactBeatsHeader(t *testing.T) {
	fa := ">XP_1.1 see NP_2.1\nAAA\n>NP_2.1 real\nCCC\n"
	got, err := FindProtein(strings.NewReader(fa), "NP_2.1")
	require.NoError(t, err)
	assert.Equal(t, "CCC", got)
}

func TestClient_FetchProtein(t *testing.T) {
	bundle := buildBundle(t, map[string]string{ProteinFile: proteinFASTA})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/gene/download", r.URL.Path)
		assert.Equal(t, "7157.zip", r.URL.Query().Get("filename"))

		var req downloadRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, []string{"7157"}, req.GeneIDs)
		assert.Equal(t, []string{"FASTA_PROTEIN"}, req.AnnotationTypes)

		w.Header().Set("Content-Type", "application/zip")
		w.Write(bundle)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, remote.NewFetcher(5*time.Second))
	got, err := c.FetchProtein(context.Background(), "7157", "NP_000537.3")
	require.NoError(t, err)
	assert.Equal(t, "MEEPQSDPSVEPPLSQETFS", got)
}
