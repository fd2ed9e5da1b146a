package registry

import (
	"encoding/hex"
	"fmt"
)

// Metadata is what NFT parsing needs from the latest snapshot of a category
type Metadata struct {
	Snapshot *IdentitySnapshot
	Category *TokenCategory
	NFTs     *NftCategory

	// Types is the type table of a parsable collection, nil otherwise
	Types map[string]NftType
	// Program is the decoded parsing bytecode, nil when the collection is
	// sequential or the bytecode is not valid hex
	Program []byte
	// ProgramErr records why a declared bytecode could not be decoded
	ProgramErr error
	// SequentialTypes is the commitment-keyed type table of a sequential
	// collection
	SequentialTypes map[string]NftType
}

// LatestSnapshot returns the authoritative snapshot of a category: the one
// under the greatest timestamp key. ISO-8601 keys sort by time as strings.
func LatestSnapshot(reg *Registry, category string) (*IdentitySnapshot, bool) {
	if reg == nil {
		return nil, false
	}
	history, ok := reg.Identities[category]
	if !ok || len(history) == 0 {
		return nil, false
	}
	latest, first := "", true
	for ts := range history {
		if first || ts > latest {
			latest, first = ts, false
		}
	}
	snapshot := history[latest]
	return &snapshot, true
}

// Lookup returns the NFT metadata of a category. It reports false when the
// registry has no identity for the category or the latest snapshot does
// not describe NFTs.
func Lookup(reg *Registry, category string) (*Metadata, bool) {
	snapshot, ok := LatestSnapshot(reg, category)
	if !ok || snapshot.Token == nil || snapshot.Token.NFTs == nil {
		return nil, false
	}
	meta := &Metadata{
		Snapshot: snapshot,
		Category: snapshot.Token,
		NFTs:     snapshot.Token.NFTs,
	}
	switch p := snapshot.Token.NFTs.Parse.(type) {
	case ParsableParse:
		meta.Types = p.Types
		program, err := hex.DecodeString(p.Bytecode)
		if err != nil {
			meta.ProgramErr = fmt.Errorf("invalid parsing bytecode: %w", err)
		} else {
			meta.Program = program
		}
	case SequentialParse:
		meta.SequentialTypes = p.Types
	}
	return meta, true
}

// Field returns the field definition for id
func (m *Metadata) Field(id string) (NftCategoryField, bool) {
	if m == nil || m.NFTs == nil {
		return NftCategoryField{}, false
	}
	f, ok := m.NFTs.Fields[id]
	return f, ok
}

// Type returns the parsable type registered under a type tag
func (m *Metadata) Type(tag string) (NftType, bool) {
	if m == nil || m.Types == nil {
		return NftType{}, false
	}
	t, ok := m.Types[tag]
	return t, ok
}
