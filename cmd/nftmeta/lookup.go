package main

import (
	"encoding/hex"
	"fmt"
	"sort"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/cashonize/nft-metadata-decoder/decoder"
	"github.com/cashonize/nft-metadata-decoder/decoder/nft"
	"github.com/cashonize/nft-metadata-decoder/decoder/registry"
)

// lookupView is the printed form of a category's NFT metadata
type lookupView struct {
	Category    string            `json:"category"`
	Name        string            `json:"name"`
	Description string            `json:"description,omitempty"`
	Symbol      string            `json:"symbol,omitempty"`
	Decimals    int               `json:"decimals"`
	Kind        string            `json:"kind"`
	Bytecode    string            `json:"bytecode,omitempty"`
	Types       []typeView        `json:"types"`
	Match       *nft.ParseResult  `json:"match,omitempty"`
	Extensions  []string          `json:"extensions,omitempty"`
	Fields      map[string]string `json:"fields,omitempty"`
}

type typeView struct {
	Tag    string   `json:"tag"`
	Name   string   `json:"name"`
	Fields []string `json:"fields,omitempty"`
}

func newLookupCmd(flags *rootFlags) *cobra.Command {
	var commitment string
	cmd := &cobra.Command{
		Use:   "lookup <registry.json> <category>",
		Short: "Show the NFT metadata of a token category",
		Long: `Show the latest NFT metadata a registry declares for a token category.
With --commitment, a sequential collection's commitment is matched to its type.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := loadRegistryFile(args[0])
			if err != nil {
				return err
			}
			category := strings.ToLower(args[1])
			meta, ok := registry.Lookup(reg, category)
			if !ok {
				return fmt.Errorf("no NFT metadata for category %s", category)
			}

			view := newLookupView(category, meta)
			if commitment != "" {
				match, err := matchSequential(flags, cmd, reg, category, commitment)
				if err != nil {
					return err
				}
				view.Match = match
			}

			if flags.jsonMode {
				return writeJSON(cmd.OutOrStdout(), view)
			}
			printLookup(cmd, view)
			return nil
		},
	}
	cmd.Flags().StringVar(&commitment, "commitment", "", "commitment hex to match against a sequential collection")
	return cmd
}

func newLookupView(category string, meta *registry.Metadata) *lookupView {
	view := &lookupView{
		Category:    category,
		Name:        meta.Snapshot.Name,
		Description: meta.Snapshot.Description,
		Symbol:      meta.Category.Symbol,
		Decimals:    meta.Category.Decimals,
		Extensions:  meta.Snapshot.Extensions.Keys(),
		Fields:      make(map[string]string),
	}

	types := meta.Types
	if p, ok := meta.NFTs.Parse.(registry.ParsableParse); ok {
		view.Kind = "parsable"
		view.Bytecode = p.Bytecode
	} else {
		view.Kind = "sequential"
		types = meta.SequentialTypes
	}
	tags := make([]string, 0, len(types))
	for tag := range types {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	for _, tag := range tags {
		view.Types = append(view.Types, typeView{Tag: tag, Name: types[tag].Name, Fields: types[tag].Fields})
	}
	for id, f := range meta.NFTs.Fields {
		if f.Encoding != nil {
			view.Fields[id] = string(f.Encoding.Type())
		}
	}
	return view
}

// matchSequential matches a commitment against a sequential collection
func matchSequential(flags *rootFlags, cmd *cobra.Command, reg *registry.Registry, category, commitment string) (*nft.ParseResult, error) {
	raw, err := hex.DecodeString(commitment)
	if err != nil {
		return nil, fmt.Errorf("invalid commitment: %w", err)
	}
	cat, err := decoder.ParseCategory(category)
	if err != nil {
		return nil, err
	}
	output := decoder.Output{Token: &decoder.TokenData{
		Category: cat,
		NFT:      &decoder.NFT{Capability: decoder.CapabilityNone, Commitment: raw},
	}}
	parser := nft.NewNFTParser(decoder.NewConfigWithLogger(nil, flags.logger(cmd)))
	return parser.ParseSequential(output, reg), nil
}

func printLookup(cmd *cobra.Command, view *lookupView) {
	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "Category:    %s\n", view.Category)
	fmt.Fprintf(w, "Name:        %s\n", view.Name)
	if view.Description != "" {
		fmt.Fprintf(w, "Description: %s\n", view.Description)
	}
	fmt.Fprintf(w, "Symbol:      %s (decimals %d)\n", view.Symbol, view.Decimals)
	fmt.Fprintf(w, "Collection:  %s\n", view.Kind)
	if view.Bytecode != "" {
		fmt.Fprintf(w, "Bytecode:    %s\n", view.Bytecode)
	}
	if len(view.Extensions) > 0 {
		fmt.Fprintf(w, "Extensions:  %s\n", strings.Join(view.Extensions, ", "))
	}
	color.New(color.Bold).Fprintln(w, "Types:")
	for _, typ := range view.Types {
		fmt.Fprintf(w, "  %-8s %s", typ.Tag, typ.Name)
		for _, id := range typ.Fields {
			fmt.Fprintf(w, " [%s:%s]", id, view.Fields[id])
		}
		fmt.Fprintln(w)
	}
	if view.Match != nil {
		if view.Match.Matched {
			color.New(color.FgGreen).Fprintf(w, "Match:       %s (%s)\n", view.Match.TypeName, view.Match.Tag)
		} else {
			color.New(color.FgYellow).Fprintf(w, "Match:       none for %s\n", view.Match.Tag)
		}
	}
}
