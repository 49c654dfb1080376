package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/klauspost/compress/zip"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/inodb/seqref/internal/alignment"
)

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"success", nil, ExitSuccess},
		{"usage", usageError{errors.New("accepts 3 arg(s), received 1")}, ExitUsage},
		{"unknown transcript", fmt.Errorf("fetch: %w", alignment.ErrUnknownTranscript), ExitUnknownTranscript},
		{"no primary locus", fmt.Errorf("select: %w", alignment.ErrNoPrimaryAssemblyLocus), ExitNoPrimaryLocus},
		{"frame mismatch", alignment.ErrFrameMismatch, ExitError},
		{"protein not found", alignment.ErrProteinNotFound, ExitError},
		{"network", errors.New("connection refused"), ExitError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, exitCode(tt.err))
		})
	}
}

func TestParsePad(t *testing.T) {
	n, err := parsePad("pad5", "100")
	require.NoError(t, err)
	assert.Equal(t, 100, n)

	for _, s := range []string{"-1", "ten", ""} {
		_, err := parsePad("pad5", s)
		var ue usageError
		assert.True(t, errors.As(err, &ue), s)
	}
}

// isolate gives each test an empty home directory and a fresh viper.
func isolate(t *testing.T) {
	t.Helper()
	viper.Reset()
	t.Cleanup(viper.Reset)
	t.Setenv("HOME", t.TempDir())
}

func TestRun_Usage(t *testing.T) {
	isolate(t)

	tests := []struct {
		name string
		args []string
	}{
		{"no args", nil},
		{"too few", []string{"NM_000546.6", "10"}},
		{"too many", []string{"NM_000546.6", "10", "10", "10"}},
		{"bad pad", []string{"NM_000546.6", "ten", "10"}},
		{"negative pad", []string{"NM_000546.6", "10", "-5"}},
		{"unknown flag", []string{"--nope", "NM_000546.6", "10", "10"}},
		{"bad codon style", []string{"--codon-style", "stacked", "NM_000546.6", "10", "10"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			code := run(tt.args, &stdout, &stderr)
			assert.Equal(t, ExitUsage, code, stderr.String())
			assert.Empty(t, stdout.String())
			assert.Contains(t, stderr.String(), "Error:")
		})
	}
}

const productJSON = `{"reports":[{"product":{
  "gene_id":"100","symbol":"TST","description":"test gene",
  "transcripts":[{
    "accession_version":"NM_000100.1","type":"PROTEIN_CODING",
    "genomic_locations":[{
      "genomic_accession_version":"NC_000007.14",
      "sequence_name":"Chromosome 7 Reference GRCh38.p14 Primary Assembly",
      "genomic_range":{"begin":"1001","end":"1040","orientation":"plus"},
      "exons":[{"begin":"1001","end":"1011"},{"begin":"1021","end":"1040"}]}],
    "cds":{"range":[{"begin":"5","end":"25"}]},
    "protein":{"accession_version":"NP_000100.1"}}]}}]}`

const windowDNA = "ccc" + "gggg" + "atgaaac" + "gtaaggcag" + "tggtggcgggctaa" + "tttttt" + "aa"

func proteinBundle(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("ncbi_dataset/data/protein.faa")
	require.NoError(t, err)
	io.WriteString(w, ">NP_000100.1 test protein\nMKLVAG\n")
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

// fakeServices serves NCBI Datasets and UCSC endpoints and counts requests.
func fakeServices(t *testing.T) (*httptest.Server, *int32) {
	t.Helper()
	bundle := proteinBundle(t)
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		switch {
		case r.URL.Path == "/gene/accession/NM_000100.1":
			io.WriteString(w, productJSON)
		case r.URL.Path == "/gene/download" && r.Method == http.MethodPost:
			w.Write(bundle)
		case r.URL.Path == "/getData/sequence":
			fmt.Fprintf(w, `{"dna":%q}`, windowDNA)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	t.Setenv("SEQREF_NCBI_BASE_URL", srv.URL)
	t.Setenv("SEQREF_UCSC_BASE_URL", srv.URL)
	return srv, &calls
}

func TestRun_Report(t *testing.T) {
	isolate(t)
	fakeServices(t)

	var stdout, stderr bytes.Buffer
	code := run([]string{"NM_000100.1", "3", "2"}, &stdout, &stderr)
	require.Equal(t, ExitSuccess, code, stderr.String())

	out := stdout.String()
	assert.Contains(t, out, "\tGENE: TST - test gene\n")
	assert.Contains(t, out, "\tCHROMOSOME: 7\n")
	assert.Contains(t, out, "\tEXON POSITIONS:\n\t\t4-14, 24-43\n")
	assert.Contains(t, out, "\tCODING EXONS: 1 to 2\n")
	assert.Contains(t, out, "\tPROTEIN: NP_000100.1\n")
	assert.Contains(t, out, "1\tcccGGGGATG AAACgtaagg cagTGGTGGC GGGCTAATTT TTTaa\t45\n\n")
	assert.Contains(t, out, "1\t       MMM KKKL          LLVVVAA AGGG*           \t7\n\n")
}

func TestRun_OutputFile(t *testing.T) {
	isolate(t)
	fakeServices(t)

	path := filepath.Join(t.TempDir(), "report.txt")
	var stdout, stderr bytes.Buffer
	code := run([]string{"-o", path, "NM_000100.1", "3", "2"}, &stdout, &stderr)
	require.Equal(t, ExitSuccess, code, stderr.String())

	assert.Empty(t, stdout.String())
	assert.Contains(t, stderr.String(), "Wrote NM_000100.1 (TST, 45 bases)")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "\t"))
	assert.Contains(t, string(data), "\tTRANSCRIPT: NM_000100.1\n")
}

func TestRun_Failures(t *testing.T) {
	isolate(t)
	fakeServices(t)

	tests := []struct {
		name string
		args []string
		want int
	}{
		{"unknown transcript", []string{"NM_999999.1", "3", "2"}, ExitUnknownTranscript},
		{"no primary locus", []string{"--assembly", "GRCh37.p13 Primary Assembly", "NM_000100.1", "3", "2"}, ExitNoPrimaryLocus},
		{"window before chromosome start", []string{"NM_000100.1", "5000", "2"}, ExitError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "report.txt")
			var stdout, stderr bytes.Buffer
			code := run(append([]string{"-o", path}, tt.args...), &stdout, &stderr)
			assert.Equal(t, tt.want, code, stderr.String())
			assert.Empty(t, stdout.String())
			assert.NoFileExists(t, path)
		})
	}
}

func TestRun_Cache(t *testing.T) {
	isolate(t)
	_, calls := fakeServices(t)
	cachePath := filepath.Join(t.TempDir(), "cache.duckdb")

	var first, second bytes.Buffer
	require.Equal(t, ExitSuccess, run([]string{"--cache", cachePath, "NM_000100.1", "3", "2"}, &first, io.Discard))
	fetched := atomic.LoadInt32(calls)
	assert.Equal(t, int32(3), fetched)

	require.Equal(t, ExitSuccess, run([]string{"--cache", cachePath, "NM_000100.1", "3", "2"}, &second, io.Discard))
	assert.Equal(t, fetched, atomic.LoadInt32(calls))
	assert.Equal(t, len(first.String()), len(second.String()))

	var stats bytes.Buffer
	require.Equal(t, ExitSuccess, run([]string{"cache", "--cache", cachePath}, &stats, io.Discard))
	assert.Contains(t, stats.String(), "ncbi-product")
	assert.Contains(t, stats.String(), "ncbi-protein")
	assert.Contains(t, stats.String(), "ucsc-sequence")

	var cleared bytes.Buffer
	require.Equal(t, ExitSuccess, run([]string{"cache", "clear", "--cache", cachePath}, &cleared, io.Discard))
	assert.Equal(t, "Removed 3 cached responses\n", cleared.String())
}

func TestRun_CacheNotConfigured(t *testing.T) {
	isolate(t)
	var stderr bytes.Buffer
	assert.Equal(t, ExitUsage, run([]string{"cache"}, io.Discard, &stderr))
	assert.Contains(t, stderr.String(), "no cache configured")
}

func TestRun_Config(t *testing.T) {
	isolate(t)

	var out bytes.Buffer
	require.Equal(t, ExitSuccess, run([]string{"config", "set", "codon.style", "dotted"}, &out, io.Discard))
	assert.Contains(t, out.String(), "Set codon.style = dotted")

	home, err := os.UserHomeDir()
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(home, ".seqref.yaml"))

	viper.Reset()
	out.Reset()
	require.Equal(t, ExitSuccess, run([]string{"config", "get", "codon.style"}, &out, io.Discard))
	assert.Equal(t, "dotted\n", out.String())

	assert.Equal(t, ExitUsage, run([]string{"config", "set", "colour", "blue"}, io.Discard, io.Discard))

	out.Reset()
	require.Equal(t, ExitSuccess, run([]string{"config", "keys"}, &out, io.Discard))
	assert.Contains(t, out.String(), "cache.path")
}

func TestRun_ConfigSetWritesOnlyStoredKeys(t *testing.T) {
	isolate(t)

	require.Equal(t, ExitSuccess, run([]string{"config", "set", "codon.style", "dotted"}, io.Discard, io.Discard))
	viper.Reset()
	require.Equal(t, ExitSuccess, run([]string{"config", "set", "-v", "cache.path", "/tmp/seqref.duckdb"}, io.Discard, io.Discard))

	home, err := os.UserHomeDir()
	require.NoError(t, err)
	data, err := os.ReadFile(filepath.Join(home, ".seqref.yaml"))
	require.NoError(t, err)

	var stored map[string]any
	require.NoError(t, yaml.Unmarshal(data, &stored))
	assert.Equal(t, map[string]any{
		"codon": map[string]any{"style": "dotted"},
		"cache": map[string]any{"path": "/tmp/seqref.duckdb"},
	}, stored)
}
