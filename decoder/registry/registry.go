// Package registry models Bitcoin Cash Metadata Registries (BCMR) as far as
// NFT parsing reads them, and looks up the metadata of a token category.
package registry

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/cashonize/nft-metadata-decoder/decoder/field"
)

var ErrInvalidRegistry = errors.New("invalid registry")

// Version is the registry's semantic version
type Version struct {
	Major int `json:"major"`
	Minor int `json:"minor"`
	Patch int `json:"patch"`
}

// Registry is a metadata registry document. Sections this module does not
// interpret are kept raw so a loaded registry re-encodes losslessly.
type Registry struct {
	Schema           string                     `json:"$schema,omitempty"`
	Version          Version                    `json:"version"`
	LatestRevision   string                     `json:"latestRevision"`
	RegistryIdentity json.RawMessage            `json:"registryIdentity,omitempty"`
	Identities       map[string]IdentityHistory `json:"identities,omitempty"`
	Tags             json.RawMessage            `json:"tags,omitempty"`
	DefaultChain     string                     `json:"defaultChain,omitempty"`
	Chains           json.RawMessage            `json:"chains,omitempty"`
	Extensions       Extensions                 `json:"extensions,omitempty"`
	Locales          json.RawMessage            `json:"locales,omitempty"`
}

// IdentityHistory maps ISO-8601 timestamps to identity snapshots
type IdentityHistory map[string]IdentitySnapshot

// IdentitySnapshot is the identity of a category as of one timestamp
type IdentitySnapshot struct {
	Name        string            `json:"name"`
	Description string            `json:"description,omitempty"`
	Tags        []string          `json:"tags,omitempty"`
	Migrated    string            `json:"migrated,omitempty"`
	Token       *TokenCategory    `json:"token,omitempty"`
	Status      string            `json:"status,omitempty"`
	SplitID     string            `json:"splitId,omitempty"`
	URIs        map[string]string `json:"uris,omitempty"`
	Extensions  Extensions        `json:"extensions,omitempty"`
}

// TokenCategory describes the tokens of a category
type TokenCategory struct {
	Category string       `json:"category"`
	Symbol   string       `json:"symbol"`
	Decimals int          `json:"decimals,omitempty"`
	NFTs     *NftCategory `json:"nfts,omitempty"`
}

// NftCategory describes the NFTs of a category
type NftCategory struct {
	Description string                      `json:"description,omitempty"`
	Fields      map[string]NftCategoryField `json:"fields,omitempty"`
	Parse       Parse                       `json:"-"`
}

// NftCategoryField is the display metadata and encoding of one NFT field
type NftCategoryField struct {
	Name        string            `json:"name,omitempty"`
	Description string            `json:"description,omitempty"`
	Encoding    field.Encoding    `json:"-"`
	URIs        map[string]string `json:"uris,omitempty"`
	Extensions  Extensions        `json:"extensions,omitempty"`

	// EncodingErr is set when the encoding is missing or not understood.
	// Encoding is then nil and values of the field stay undecoded.
	EncodingErr error `json:"-"`

	rawEncoding json.RawMessage
}

// NftType describes one type of NFT
type NftType struct {
	Name        string            `json:"name"`
	Description string            `json:"description,omitempty"`
	Fields      []string          `json:"fields,omitempty"`
	URIs        map[string]string `json:"uris,omitempty"`
	Extensions  Extensions        `json:"extensions,omitempty"`
}

// Icon returns the icon URI of the type, if any
func (t NftType) Icon() string {
	return t.URIs["icon"]
}

// Parse tells how the NFT type of a commitment is determined. It is either
// SequentialParse or ParsableParse.
type Parse interface {
	parse()
}

// SequentialParse: the commitment itself, as hex, is the NFT type
type SequentialParse struct {
	Types map[string]NftType `json:"types"`
}

// ParsableParse: a program decomposes the commitment into a type tag and
// field values left on the altstack.
type ParsableParse struct {
	Bytecode string             `json:"bytecode"`
	Types    map[string]NftType `json:"types"`
}

func (SequentialParse) parse() {}
func (ParsableParse) parse()   {}

// ParseRegistry decodes a registry document
func ParseRegistry(data []byte) (*Registry, error) {
	var reg Registry
	if err := json.Unmarshal(data, &reg); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidRegistry, err)
	}
	return &reg, nil
}

// Load reads and decodes a registry document
func Load(r io.Reader) (*Registry, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read registry: %w", err)
	}
	return ParseRegistry(data)
}

type nftCategoryJSON struct {
	Description string                      `json:"description,omitempty"`
	Fields      map[string]NftCategoryField `json:"fields,omitempty"`
	Parse       json.RawMessage             `json:"parse"`
}

// UnmarshalJSON selects the parse variant by the presence of "bytecode"
func (c *NftCategory) UnmarshalJSON(data []byte) error {
	var raw nftCategoryJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	c.Description = raw.Description
	c.Fields = raw.Fields
	c.Parse = nil
	if len(raw.Parse) == 0 || string(raw.Parse) == "null" {
		return nil
	}
	var probe struct {
		Bytecode *string `json:"bytecode"`
	}
	if err := json.Unmarshal(raw.Parse, &probe); err != nil {
		return fmt.Errorf("invalid nft parse: %w", err)
	}
	if probe.Bytecode != nil {
		var p ParsableParse
		if err := json.Unmarshal(raw.Parse, &p); err != nil {
			return fmt.Errorf("invalid nft parse: %w", err)
		}
		c.Parse = p
		return nil
	}
	var s SequentialParse
	if err := json.Unmarshal(raw.Parse, &s); err != nil {
		return fmt.Errorf("invalid nft parse: %w", err)
	}
	c.Parse = s
	return nil
}

// MarshalJSON encodes the parse variant under "parse"
func (c NftCategory) MarshalJSON() ([]byte, error) {
	raw := nftCategoryJSON{Description: c.Description, Fields: c.Fields}
	if c.Parse != nil {
		parse, err := json.Marshal(c.Parse)
		if err != nil {
			return nil, err
		}
		raw.Parse = parse
	}
	return json.Marshal(raw)
}

type nftFieldJSON struct {
	Name        string            `json:"name,omitempty"`
	Description string            `json:"description,omitempty"`
	Encoding    json.RawMessage   `json:"encoding,omitempty"`
	URIs        map[string]string `json:"uris,omitempty"`
	Extensions  Extensions        `json:"extensions,omitempty"`
}

// UnmarshalJSON decodes the field encoding into its variant
func (f *NftCategoryField) UnmarshalJSON(data []byte) error {
	var raw nftFieldJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	f.Name = raw.Name
	f.Description = raw.Description
	f.URIs = raw.URIs
	f.Extensions = raw.Extensions
	f.Encoding, f.EncodingErr, f.rawEncoding = nil, nil, nil

	enc, err := field.ParseEncoding(raw.Encoding)
	if err != nil {
		f.EncodingErr = fmt.Errorf("field %q encoding: %w", raw.Name, err)
		f.rawEncoding = raw.Encoding
		return nil
	}
	f.Encoding = enc
	return nil
}

// MarshalJSON encodes the field encoding in registry form
func (f NftCategoryField) MarshalJSON() ([]byte, error) {
	enc := f.rawEncoding
	if f.Encoding != nil {
		var err error
		if enc, err = field.MarshalEncoding(f.Encoding); err != nil {
			return nil, err
		}
	}
	return json.Marshal(nftFieldJSON{
		Name:        f.Name,
		Description: f.Description,
		Encoding:    enc,
		URIs:        f.URIs,
		Extensions:  f.Extensions,
	})
}
