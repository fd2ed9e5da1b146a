package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/cashonize/nft-metadata-decoder/decoder/registry"
)

func newSynthesizeCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "synthesize <category> <indexer.json>",
		Short: "Build a registry from indexer metadata",
		Long:  `Build a single identity registry from the simplified metadata an indexer serves for a token category.`,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[1])
			if err != nil {
				return fmt.Errorf("read indexer metadata: %w", err)
			}
			reg, ok, err := registry.SynthesizeJSON(args[0], data)
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("no metadata for category %s", args[0])
			}
			flags.logger(cmd).Debug("synthesized registry", "category", args[0])
			return writeJSON(cmd.OutOrStdout(), reg)
		},
	}
}
