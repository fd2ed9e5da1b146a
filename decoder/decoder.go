// Package decoder resolves metadata for CashToken NFTs.
//
// The root package holds the data model shared by the subpackages. Use each
// stage's package directly:
//
// Field decoding:
//
//	import "github.com/cashonize/nft-metadata-decoder/decoder/field"
//	value, err := field.Decode(raw, enc)
//
// Registry lookup and synthesis:
//
//	import "github.com/cashonize/nft-metadata-decoder/decoder/registry"
//	meta, ok := registry.Lookup(reg, category)
//
// Commitment parsing:
//
//	import "github.com/cashonize/nft-metadata-decoder/decoder/nft"
//	parser := nft.NewNFTParser(decoder.NewConfigWithEvaluator(vm))
//	result := parser.Parse(output, reg, nil)
//
// Extensions run before parsing and may rewrite the output:
//
//	import "github.com/cashonize/nft-metadata-decoder/decoder/extension"
//	output = extension.NewPipeline(extension.DefaultRegistry(), nil).Invoke(ctx, output, snapshot, client, prefix, nil)
//
// For example usage, see examples/main.go
package decoder
