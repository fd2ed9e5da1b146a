package registry

import (
	"encoding/json"
	"fmt"
	"strings"
)

// SynthesizedTimestamp keys the single snapshot of a synthesized registry
const SynthesizedTimestamp = "1970-01-01T00:00:00.000Z"

// IndexerMetadata is the per-category shape returned by BCMR indexers
type IndexerMetadata struct {
	Name        string            `json:"name"`
	Description string            `json:"description"`
	URIs        map[string]string `json:"uris"`
	Extensions  Extensions        `json:"extensions"`
	Token       *IndexerToken     `json:"token"`
}

// IndexerToken is the token section of indexer metadata
type IndexerToken struct {
	Category string       `json:"category"`
	Symbol   string       `json:"symbol"`
	Decimals int          `json:"decimals"`
	NFTs     *NftCategory `json:"nfts"`
}

// Synthesize builds a single identity registry from indexer metadata for
// hosts without the full registry document. It reports false when the
// metadata carries no NFT parse descriptor.
func Synthesize(category string, meta *IndexerMetadata) (*Registry, bool) {
	if meta == nil || meta.Token == nil || meta.Token.NFTs == nil || meta.Token.NFTs.Parse == nil {
		return nil, false
	}
	nfts := &NftCategory{
		Description: strings.TrimSpace(meta.Token.NFTs.Description),
		Fields:      make(map[string]NftCategoryField, len(meta.Token.NFTs.Fields)),
		Parse:       meta.Token.NFTs.Parse,
	}
	for id, f := range meta.Token.NFTs.Fields {
		f.Name = strings.TrimSpace(f.Name)
		f.Description = strings.TrimSpace(f.Description)
		if len(f.URIs) == 0 {
			f.URIs = nil
		}
		nfts.Fields[id] = f
	}
	tokenCategory := meta.Token.Category
	if tokenCategory == "" {
		tokenCategory = category
	}
	snapshot := IdentitySnapshot{
		Name:        meta.Name,
		Description: meta.Description,
		URIs:        nonEmptyURIs(meta.URIs),
		Extensions:  meta.Extensions,
		Token: &TokenCategory{
			Category: tokenCategory,
			Symbol:   meta.Token.Symbol,
			Decimals: meta.Token.Decimals,
			NFTs:     nfts,
		},
	}
	return &Registry{
		Version:        Version{},
		LatestRevision: SynthesizedTimestamp,
		Identities: map[string]IdentityHistory{
			category: {SynthesizedTimestamp: snapshot},
		},
	}, true
}

// SynthesizeJSON decodes indexer metadata and synthesizes a registry
func SynthesizeJSON(category string, data []byte) (*Registry, bool, error) {
	var meta IndexerMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, false, fmt.Errorf("invalid indexer metadata: %w", err)
	}
	reg, ok := Synthesize(category, &meta)
	return reg, ok, nil
}

func nonEmptyURIs(uris map[string]string) map[string]string {
	if len(uris) == 0 {
		return nil
	}
	out := make(map[string]string, len(uris))
	for k, v := range uris {
		if v != "" {
			out[k] = v
		}
	}
	return out
}
