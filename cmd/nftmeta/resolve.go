package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cashonize/nft-metadata-decoder/decoder"
	"github.com/cashonize/nft-metadata-decoder/decoder/chain"
	"github.com/cashonize/nft-metadata-decoder/decoder/extension"
	"github.com/cashonize/nft-metadata-decoder/decoder/registry"
)

func newResolveCmd(flags *rootFlags) *cobra.Command {
	var disabled []string
	cmd := &cobra.Command{
		Use:   "resolve <registry.json> <output.json>",
		Short: "Run registry extensions on an output",
		Long: `Run the extensions the registry declares for the output's token category,
querying the configured node, and print the resulting output.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(flags.configFile)
			if err != nil {
				return err
			}
			prefix, err := cfg.Prefix()
			if err != nil {
				return err
			}

			reg, err := loadRegistryFile(args[0])
			if err != nil {
				return err
			}
			output, err := loadOutputFile(args[1])
			if err != nil {
				return err
			}
			if output.Token == nil {
				return fmt.Errorf("output has no token")
			}
			snapshot, ok := registry.LatestSnapshot(reg, output.Token.CategoryHex())
			if !ok {
				return fmt.Errorf("no identity for category %s", output.Token.CategoryHex())
			}

			log := flags.logger(cmd)
			client := chain.NewAdapter(chain.NewRPCProvider(cfg.RPC.URL, cfg.RPC.User, cfg.RPC.Pass))
			pipeline := extension.NewPipeline(extension.DefaultRegistry(), log)
			enabled := extensionSwitches(snapshot, cfg.Extensions, disabled)
			resolved := pipeline.Invoke(cmd.Context(), output, snapshot, client, prefix, enabled)

			return writeJSON(cmd.OutOrStdout(), resolved)
		},
	}
	cmd.Flags().StringSliceVar(&disabled, "disable", nil, "extensions to skip (names matched case-insensitively)")
	return cmd
}

// extensionSwitches keys the configured switches by the snapshot's own
// extension names. Config keys arrive lowercased, so names are compared
// case-insensitively; disabled names always win.
func extensionSwitches(snapshot *registry.IdentitySnapshot, switches map[string]bool, disabled []string) map[string]bool {
	enabled := make(map[string]bool)
	for _, name := range snapshot.Extensions.Keys() {
		for key, on := range switches {
			if strings.EqualFold(key, name) {
				enabled[name] = on
			}
		}
		for _, off := range disabled {
			if strings.EqualFold(off, name) {
				enabled[name] = false
			}
		}
	}
	return enabled
}

// loadOutputFile reads an output in its JSON form from path
func loadOutputFile(path string) (decoder.Output, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return decoder.Output{}, fmt.Errorf("read output: %w", err)
	}
	var output decoder.Output
	if err := json.Unmarshal(data, &output); err != nil {
		return decoder.Output{}, fmt.Errorf("decode output: %w", err)
	}
	return output, nil
}
