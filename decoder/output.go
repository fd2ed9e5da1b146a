package decoder

import (
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
)

// Capability controls which transformations an NFT may undergo. It is carried
// through unchanged by this module.
type Capability string

const (
	CapabilityNone    Capability = "none"
	CapabilityMutable Capability = "mutable"
	CapabilityMinting Capability = "minting"
)

// Valid reports whether c is one of the three known capabilities.
func (c Capability) Valid() bool {
	switch c {
	case CapabilityNone, CapabilityMutable, CapabilityMinting:
		return true
	}
	return false
}

// NFT is the non-fungible part of a token attachment
type NFT struct {
	Capability Capability `json:"capability"` // none, mutable or minting
	Commitment []byte     `json:"-"`          // Opaque state
}

// TokenData represents a CashToken attachment on an output
type TokenData struct {
	Category chainhash.Hash `json:"-"`             // Category ID in wire byte order
	Amount   uint64         `json:"amount,string"` // Fungible amount, may be zero
	NFT      *NFT           `json:"nft,omitempty"` // Optional NFT payload
}

// CategoryHex returns the category ID in user interface byte order, the form
// used as registry key.
func (t *TokenData) CategoryHex() string {
	return t.Category.String()
}

// Output represents a transaction output as seen by the parsing pipeline.
// Outputs are values: the pipeline never modifies one in place.
type Output struct {
	Value           uint64     `json:"valueSatoshis"`
	LockingBytecode []byte     `json:"-"`
	Token           *TokenData `json:"token,omitempty"`
}

// HasNFT reports whether the output carries an NFT payload
func (o *Output) HasNFT() bool {
	return o != nil && o.Token != nil && o.Token.NFT != nil
}

// Clone returns a deep copy of the output
func (o Output) Clone() Output {
	out := Output{
		Value:           o.Value,
		LockingBytecode: append([]byte(nil), o.LockingBytecode...),
	}
	if o.Token != nil {
		token := *o.Token
		if o.Token.NFT != nil {
			nft := *o.Token.NFT
			nft.Commitment = append([]byte(nil), o.Token.NFT.Commitment...)
			token.NFT = &nft
		}
		out.Token = &token
	}
	return out
}

// ParseCategory parses a category ID given in user interface byte order
func ParseCategory(categoryHex string) (chainhash.Hash, error) {
	h, err := chainhash.NewHashFromStr(categoryHex)
	if err != nil {
		return chainhash.Hash{}, fmt.Errorf("invalid token category %q: %w", categoryHex, err)
	}
	if len(categoryHex) != chainhash.MaxHashStringSize {
		return chainhash.Hash{}, fmt.Errorf("invalid token category %q: expected %d hex characters", categoryHex, chainhash.MaxHashStringSize)
	}
	return *h, nil
}

type nftJSON struct {
	Capability Capability `json:"capability"`
	Commitment string     `json:"commitment"`
}

// MarshalJSON encodes the commitment as hex
func (n NFT) MarshalJSON() ([]byte, error) {
	return json.Marshal(nftJSON{Capability: n.Capability, Commitment: hex.EncodeToString(n.Commitment)})
}

// UnmarshalJSON decodes a hex commitment, defaulting capability to none
func (n *NFT) UnmarshalJSON(data []byte) error {
	var raw nftJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	commitment, err := hex.DecodeString(raw.Commitment)
	if err != nil {
		return fmt.Errorf("invalid commitment: %w", err)
	}
	if raw.Capability == "" {
		raw.Capability = CapabilityNone
	}
	if !raw.Capability.Valid() {
		return fmt.Errorf("invalid capability %q", raw.Capability)
	}
	n.Capability = raw.Capability
	n.Commitment = commitment
	return nil
}

type tokenJSON struct {
	Category string `json:"category"`
	Amount   uint64 `json:"amount,string"`
	NFT      *NFT   `json:"nft,omitempty"`
}

// MarshalJSON encodes the category in user interface byte order
func (t TokenData) MarshalJSON() ([]byte, error) {
	return json.Marshal(tokenJSON{Category: t.CategoryHex(), Amount: t.Amount, NFT: t.NFT})
}

// UnmarshalJSON decodes a token attachment
func (t *TokenData) UnmarshalJSON(data []byte) error {
	var raw tokenJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	category, err := ParseCategory(raw.Category)
	if err != nil {
		return err
	}
	t.Category = category
	t.Amount = raw.Amount
	t.NFT = raw.NFT
	return nil
}

type outputJSON struct {
	Value           uint64     `json:"valueSatoshis"`
	LockingBytecode string     `json:"lockingBytecode"`
	Token           *TokenData `json:"token,omitempty"`
}

// MarshalJSON encodes the locking bytecode as hex
func (o Output) MarshalJSON() ([]byte, error) {
	return json.Marshal(outputJSON{Value: o.Value, LockingBytecode: hex.EncodeToString(o.LockingBytecode), Token: o.Token})
}

// UnmarshalJSON decodes an output written by MarshalJSON
func (o *Output) UnmarshalJSON(data []byte) error {
	var raw outputJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	script, err := hex.DecodeString(raw.LockingBytecode)
	if err != nil {
		return fmt.Errorf("invalid locking bytecode: %w", err)
	}
	o.Value = raw.Value
	o.LockingBytecode = script
	o.Token = raw.Token
	return nil
}
