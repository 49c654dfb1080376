// Package main provides the seqref command-line tool.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/inodb/seqref/internal/alignment"
	"github.com/inodb/seqref/internal/duckdb"
	"github.com/inodb/seqref/internal/genome"
	"github.com/inodb/seqref/internal/ncbi"
	"github.com/inodb/seqref/internal/output"
	"github.com/inodb/seqref/internal/refseq"
	"github.com/inodb/seqref/internal/remote"
	"github.com/inodb/seqref/internal/ucsc"
)

// Exit codes
const (
	ExitSuccess           = 0
	ExitUsage             = 1
	ExitUnknownTranscript = 2
	ExitNoPrimaryLocus    = 3
	ExitError             = 4
)

// Version information (set at build time)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// usageError marks errors caused by bad command-line input.
type usageError struct {
	err error
}

func (e usageError) Error() string { return e.err.Error() }
func (e usageError) Unwrap() error { return e.err }

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	root := newRootCmd()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.Execute()
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		var ue usageError
		if errors.As(err, &ue) {
			fmt.Fprintf(stderr, "\n%s", root.UsageString())
		}
	}
	return exitCode(err)
}

// exitCode maps an error to the process exit status.
func exitCode(err error) int {
	var ue usageError
	switch {
	case err == nil:
		return ExitSuccess
	case errors.As(err, &ue):
		return ExitUsage
	case errors.Is(err, alignment.ErrUnknownTranscript):
		return ExitUnknownTranscript
	case errors.Is(err, alignment.ErrNoPrimaryAssemblyLocus):
		return ExitNoPrimaryLocus
	default:
		return ExitError
	}
}

func newRootCmd() *cobra.Command {
	var cfgFile string

	cmd := &cobra.Command{
		Use:   "seqref <accession> <pad5> <pad3>",
		Short: "Render a RefSeq transcript as an exon-cased reference sequence",
		Long: `Fetches a RefSeq transcript's exon structure from NCBI Datasets and its genomic
sequence from UCSC (or a local FASTA), then prints the padded window with exons in
upper case and, for coding transcripts, the protein drawn over its codons.`,
		Example: `  seqref NM_000546.6 100 100                 # TP53 with 100 flanking bases each side
  seqref NM_000546.6 0 0 -o tp53.txt         # write the report to a file
  seqref NR_046018.2 20 20 --codon-style dotted`,
		Version:       fmt.Sprintf("%s (%s) built %s", version, commit, date),
		Args:          usageArgs(cobra.ExactArgs(3)),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initConfig(cfgFile)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			pad5, err := parsePad("pad5", args[1])
			if err != nil {
				return err
			}
			pad3, err := parsePad("pad3", args[2])
			if err != nil {
				return err
			}
			outputFile, _ := cmd.Flags().GetString("output")
			return runReport(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr(), args[0], pad5, pad3, outputFile)
		},
	}
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return usageError{err}
	})

	pf := cmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "Config file (default: ~/.seqref.yaml)")
	pf.BoolP("verbose", "v", false, "Log debug messages to stderr")
	pf.String("cache", "", "DuckDB response cache file (empty disables caching)")

	f := cmd.Flags()
	f.StringP("output", "o", "", "Output file (default: stdout)")
	f.String("assembly", refseq.DefaultAssembly, "Sequence name pattern of the primary assembly")
	f.String("fasta", "", "Local reference FASTA to read sequence from instead of UCSC")
	f.String("codon-style", alignment.CodonRepeat.String(), "Protein track style: repeat or dotted")

	viper.BindPFlag("log.verbose", pf.Lookup("verbose"))
	viper.BindPFlag("cache.path", pf.Lookup("cache"))
	viper.BindPFlag("assembly", f.Lookup("assembly"))
	viper.BindPFlag("genome.fasta", f.Lookup("fasta"))
	viper.BindPFlag("codon.style", f.Lookup("codon-style"))

	cmd.AddCommand(newConfigCmd())
	cmd.AddCommand(newCacheCmd())
	return cmd
}

// usageArgs wraps a positional argument validator so that its failures map
// to the usage exit code.
func usageArgs(validate cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := validate(cmd, args); err != nil {
			return usageError{err}
		}
		return nil
	}
}

func parsePad(name, s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, usageError{fmt.Errorf("%s must be an integer, got %q", name, s)}
	}
	if n < 0 {
		return 0, usageError{fmt.Errorf("%s must not be negative, got %d", name, n)}
	}
	return n, nil
}

// initConfig loads ~/.seqref.yaml (or cfgFile) and SEQREF_* environment variables.
func initConfig(cfgFile string) error {
	viper.SetDefault("assembly", refseq.DefaultAssembly)
	viper.SetDefault("ucsc.genome", ucsc.DefaultGenome)
	viper.SetDefault("ucsc.base_url", ucsc.DefaultBaseURL)
	viper.SetDefault("ncbi.base_url", ncbi.DefaultBaseURL)
	viper.SetDefault("http.timeout", "60s")
	viper.SetDefault("codon.style", alignment.CodonRepeat.String())
	viper.SetDefault("log.level", "warn")

	viper.SetEnvPrefix("SEQREF")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil
		}
		viper.SetConfigFile(filepath.Join(home, ".seqref.yaml"))
	}

	if err := viper.ReadInConfig(); err != nil {
		var nf viper.ConfigFileNotFoundError
		if cfgFile == "" && (errors.Is(err, os.ErrNotExist) || errors.As(err, &nf)) {
			return nil
		}
		return usageError{fmt.Errorf("read config: %w", err)}
	}
	return nil
}

// newLogger builds a stderr logger from log.level, or a development logger
// when verbose output is requested.
func newLogger() (*zap.Logger, error) {
	if viper.GetBool("log.verbose") {
		return zap.NewDevelopment()
	}

	level, err := zapcore.ParseLevel(viper.GetString("log.level"))
	if err != nil {
		return nil, usageError{fmt.Errorf("log.level: %w", err)}
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(level)
	cfg.Encoding = "console"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	return cfg.Build()
}

// openCache opens the response cache configured by cache.path, or returns nil
// when caching is disabled.
func openCache() (*duckdb.Store, error) {
	path := viper.GetString("cache.path")
	if path == "" {
		return nil, nil
	}
	return duckdb.Open(path)
}

func runReport(ctx context.Context, stdout, stderr io.Writer, accession string, pad5, pad3 int, outputFile string) error {
	logger, err := newLogger()
	if err != nil {
		return err
	}
	defer logger.Sync()

	style, err := alignment.ParseCodonStyle(viper.GetString("codon.style"))
	if err != nil {
		return usageError{err}
	}

	fetcher := remote.NewFetcher(viper.GetDuration("http.timeout"))
	fetcher.SetLogger(logger)

	store, err := openCache()
	if err != nil {
		return fmt.Errorf("open cache: %w", err)
	}
	if store != nil {
		defer store.Close()
		fetcher.SetCache(store)
		logger.Debug("using response cache", zap.String("path", store.Path()))
	}

	ncbiClient := ncbi.NewClient(viper.GetString("ncbi.base_url"), fetcher)
	ncbiClient.SetLogger(logger)

	var sequence refseq.SequenceSource
	if fasta := viper.GetString("genome.fasta"); fasta != "" {
		ref := genome.NewReference(fasta)
		ref.SetLogger(logger)
		sequence = ref
	} else {
		uc := ucsc.NewClient(viper.GetString("ucsc.base_url"), viper.GetString("ucsc.genome"), fetcher)
		uc.SetLogger(logger)
		sequence = uc
	}

	gen := refseq.NewGenerator(ncbiClient, sequence, ncbiClient)
	gen.SetAssembly(viper.GetString("assembly"))
	gen.SetCodonStyle(style)
	gen.SetLogger(logger)

	a, err := gen.Generate(ctx, accession, pad5, pad3)
	if err != nil {
		return err
	}

	out := stdout
	if outputFile != "" {
		f, err := os.Create(outputFile)
		if err != nil {
			return fmt.Errorf("create output file: %w", err)
		}
		defer f.Close()
		out = f
	}

	if err := output.NewReportWriter(out).Write(a); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	if outputFile != "" {
		fmt.Fprintf(stderr, "Wrote %s (%s, %d bases) to %s\n",
			a.Transcript.Accession, a.Gene.Symbol, len(a.Nucleotides), outputFile)
	}
	return nil
}
