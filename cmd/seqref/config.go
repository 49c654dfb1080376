package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// configKeys lists the settings seqref reads, with a short description.
var configKeys = map[string]string{
	"assembly":      "sequence name pattern of the primary assembly",
	"ucsc.genome":   "UCSC genome name",
	"ucsc.base_url": "UCSC REST API base URL",
	"ncbi.base_url": "NCBI Datasets API base URL",
	"http.timeout":  "HTTP request timeout (e.g. 60s)",
	"cache.path":    "DuckDB response cache file, empty disables caching",
	"genome.fasta":  "local reference FASTA used instead of UCSC",
	"codon.style":   "protein track style: repeat or dotted",
	"log.level":     "log level: debug, info, warn or error",
}

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage seqref configuration",
		Long:  "Show, get, or set configuration values. Config is stored in ~/.seqref.yaml.",
		Example: `  seqref config                                   # show all config
  seqref config set cache.path ~/.seqref/cache.duckdb  # cache API responses
  seqref config get assembly                      # get a value
  seqref config keys                              # list known keys`,
		Args: usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigShow(cmd.OutOrStdout())
		},
	}

	cmd.AddCommand(newConfigSetCmd())
	cmd.AddCommand(newConfigGetCmd())
	cmd.AddCommand(newConfigKeysCmd())

	return cmd
}

func newConfigSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a configuration value",
		Args:  usageArgs(cobra.ExactArgs(2)),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigSet(cmd.OutOrStdout(), args[0], args[1])
		},
	}
}

func newConfigGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <key>",
		Short: "Get a configuration value",
		Args:  usageArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigGet(cmd.OutOrStdout(), args[0])
		},
	}
}

func newConfigKeysCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "keys",
		Short: "List configuration keys",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			keys := make([]string, 0, len(configKeys))
			for k := range configKeys {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				fmt.Fprintf(cmd.OutOrStdout(), "%-14s %s\n", k, configKeys[k])
			}
			return nil
		},
	}
}

func runConfigShow(w io.Writer) error {
	settings := viper.AllSettings()
	if logSettings, ok := settings["log"].(map[string]any); ok {
		delete(logSettings, "verbose")
	}
	if len(settings) == 0 {
		fmt.Fprintln(w, "# No configuration set. Config file: ~/.seqref.yaml")
		return nil
	}

	out, err := yaml.Marshal(settings)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	fmt.Fprint(w, string(out))
	return nil
}

func runConfigSet(w io.Writer, key, value string) error {
	key = strings.ToLower(key)
	if _, ok := configKeys[key]; !ok {
		return usageError{fmt.Errorf("unknown config key %q (see 'seqref config keys')", key)}
	}
	// Ensure config file exists
	cfgFile := viper.ConfigFileUsed()
	if cfgFile == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("cannot determine home directory: %w", err)
		}
		cfgFile = filepath.Join(home, ".seqref.yaml")
	}

	// Only keys stored in the file are written back, never defaults or flags.
	stored := viper.New()
	stored.SetConfigFile(cfgFile)
	if err := stored.ReadInConfig(); err != nil {
		var nf viper.ConfigFileNotFoundError
		if !errors.Is(err, os.ErrNotExist) && !errors.As(err, &nf) {
			return fmt.Errorf("reading config: %w", err)
		}
	}
	stored.Set(key, value)
	if err := stored.WriteConfigAs(cfgFile); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	viper.Set(key, value)

	fmt.Fprintf(w, "Set %s = %s in %s\n", key, value, cfgFile)
	return nil
}

func runConfigGet(w io.Writer, key string) error {
	val := viper.Get(key)
	if val == nil {
		return fmt.Errorf("key %q is not set", key)
	}
	fmt.Fprintln(w, val)
	return nil
}
