package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func newCacheCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect or clear the response cache",
		Long:  "Inspect or clear the DuckDB cache of NCBI and UCSC responses configured by cache.path.",
		Example: `  seqref cache --cache cache.duckdb            # per-source summary
  seqref cache clear ucsc-sequence             # drop cached sequence windows
  seqref cache clear                           # drop everything`,
		Args: usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCacheStats(cmd)
		},
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "clear [source]",
		Short: "Remove cached responses, optionally only those of one source",
		Args:  usageArgs(cobra.MaximumNArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			source := ""
			if len(args) == 1 {
				source = args[0]
			}
			return runCacheClear(cmd, source)
		},
	})
	return cmd
}

func runCacheStats(cmd *cobra.Command) error {
	store, err := openCache()
	if err != nil {
		return fmt.Errorf("open cache: %w", err)
	}
	if store == nil {
		return usageError{fmt.Errorf("no cache configured (set cache.path or pass --cache)")}
	}
	defer store.Close()

	stats, err := store.Stats(cmd.Context())
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if len(stats) == 0 {
		fmt.Fprintf(out, "# Cache %s is empty\n", viper.GetString("cache.path"))
		return nil
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SOURCE\tENTRIES\tBYTES\tNEWEST")
	for _, st := range stats {
		fmt.Fprintf(tw, "%s\t%d\t%d\t%s\n", st.Source, st.Entries, st.Bytes, st.Newest.Format("2006-01-02 15:04:05"))
	}
	return tw.Flush()
}

func runCacheClear(cmd *cobra.Command, source string) error {
	store, err := openCache()
	if err != nil {
		return fmt.Errorf("open cache: %w", err)
	}
	if store == nil {
		return usageError{fmt.Errorf("no cache configured (set cache.path or pass --cache)")}
	}
	defer store.Close()

	n, err := store.Clear(cmd.Context(), source)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Removed %d cached responses\n", n)
	return nil
}
