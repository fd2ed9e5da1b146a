package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/cashonize/nft-metadata-decoder/decoder/registry"
)

// rootFlags holds global flag values accessible to all subcommands
type rootFlags struct {
	configFile string
	jsonMode   bool
	verbose    bool
}

// newRootCmd creates the top-level command with global flags and all
// subcommands registered
func newRootCmd() *cobra.Command {
	flags := &rootFlags{}
	root := &cobra.Command{
		Use:   "nftmeta",
		Short: "Decode CashToken NFT metadata",
		Long: `nftmeta reads BCMR registries and decodes the NFT commitments they
describe. It can synthesize registries from indexer metadata and resolve
registry extensions against a Bitcoin Cash node.`,
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVar(&flags.configFile, "config", "", "config file (YAML)")
	root.PersistentFlags().BoolVar(&flags.jsonMode, "json", false, "output in JSON format")
	root.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "debug logging")

	root.AddCommand(newLookupCmd(flags))
	root.AddCommand(newSynthesizeCmd(flags))
	root.AddCommand(newDecodeCmd(flags))
	root.AddCommand(newResolveCmd(flags))

	return root
}

// logger returns the logger for a command, writing to stderr
func (f *rootFlags) logger(cmd *cobra.Command) *slog.Logger {
	level := slog.LevelWarn
	if f.verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
}

// writeJSON prints v as indented JSON
func writeJSON(w io.Writer, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

// loadRegistryFile reads a registry document from path
func loadRegistryFile(path string) (*registry.Registry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open registry: %w", err)
	}
	defer f.Close()
	return registry.Load(f)
}
