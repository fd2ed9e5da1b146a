package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cashonize/nft-metadata-decoder/decoder/field"
)

type decodeView struct {
	Type  field.Type `json:"type"`
	Raw   string     `json:"raw"`
	Value string     `json:"value"`
}

func newDecodeCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "decode <encoding> <hex>",
		Short: "Decode one field value",
		Long: `Decode a field's raw bytes with a registry field encoding. The encoding
is either a type name such as "utf8" or a JSON encoding object such as
'{"type":"number","decimals":2,"unit":"PUSD"}'.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			encText := strings.TrimSpace(args[0])
			if !strings.HasPrefix(encText, "{") {
				encText = fmt.Sprintf(`{"type":%q}`, encText)
			}
			enc, err := field.ParseEncoding([]byte(encText))
			if err != nil {
				return err
			}
			value, err := field.DecodeHex(args[1], enc)
			if err != nil {
				return err
			}

			view := decodeView{Type: enc.Type(), Raw: strings.ToLower(args[1]), Value: value.String()}
			if flags.jsonMode {
				return writeJSON(cmd.OutOrStdout(), view)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), view.Value)
			return err
		},
	}
}
