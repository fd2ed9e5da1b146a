// Package field decodes raw NFT field bytes into typed, displayable values.
package field

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Type is the tag of a field encoding
type Type string

const (
	TypeNumber   Type = "number"
	TypeBoolean  Type = "boolean"
	TypeHex      Type = "hex"
	TypeBinary   Type = "binary"
	TypeUTF8     Type = "utf8"
	TypeHTTPSURL Type = "https-url"
	TypeIPFSCID  Type = "ipfs-cid"
	TypeLocktime Type = "locktime"
)

// MaxDecimals is the largest accepted number of decimal places
const MaxDecimals = 18

// AggregateAdd hints that values of a number field may be summed across NFTs
const AggregateAdd = "add"

var (
	ErrUnknownEncoding  = errors.New("unknown field encoding")
	ErrInvalidDecimals  = errors.New("decimals must be between 0 and 18")
	ErrInvalidAggregate = errors.New("unsupported aggregate")
)

// Encoding describes how the bytes of one field are interpreted.
// The set of implementations is closed; see the Type constants.
type Encoding interface {
	Type() Type
	encoding()
}

// Number is a VM number scaled by 10^-Decimals
type Number struct {
	Decimals  int    `json:"decimals,omitempty"`
	Unit      string `json:"unit,omitempty"`
	Aggregate string `json:"aggregate,omitempty"`
}

type (
	Boolean  struct{}
	Hex      struct{}
	Binary   struct{}
	UTF8     struct{}
	HTTPSURL struct{}
	IPFSCID  struct{}
	Locktime struct{}
)

func (Number) Type() Type   { return TypeNumber }
func (Boolean) Type() Type  { return TypeBoolean }
func (Hex) Type() Type      { return TypeHex }
func (Binary) Type() Type   { return TypeBinary }
func (UTF8) Type() Type     { return TypeUTF8 }
func (HTTPSURL) Type() Type { return TypeHTTPSURL }
func (IPFSCID) Type() Type  { return TypeIPFSCID }
func (Locktime) Type() Type { return TypeLocktime }

func (Number) encoding()   {}
func (Boolean) encoding()  {}
func (Hex) encoding()      {}
func (Binary) encoding()   {}
func (UTF8) encoding()     {}
func (HTTPSURL) encoding() {}
func (IPFSCID) encoding()  {}
func (Locktime) encoding() {}

// Validate checks decimals and aggregate of a number encoding
func (n Number) Validate() error {
	if n.Decimals < 0 || n.Decimals > MaxDecimals {
		return fmt.Errorf("%w: %d", ErrInvalidDecimals, n.Decimals)
	}
	if n.Aggregate != "" && n.Aggregate != AggregateAdd {
		return fmt.Errorf("%w: %q", ErrInvalidAggregate, n.Aggregate)
	}
	return nil
}

type encodingJSON struct {
	Type      Type   `json:"type"`
	Decimals  *int   `json:"decimals,omitempty"`
	Unit      string `json:"unit,omitempty"`
	Aggregate string `json:"aggregate,omitempty"`
}

// ParseEncoding decodes the registry form {"type": "...", ...}
func ParseEncoding(data []byte) (Encoding, error) {
	var raw encodingJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("invalid field encoding: %w", err)
	}
	switch raw.Type {
	case TypeNumber:
		n := Number{Unit: raw.Unit, Aggregate: raw.Aggregate}
		if raw.Decimals != nil {
			n.Decimals = *raw.Decimals
		}
		if err := n.Validate(); err != nil {
			return nil, err
		}
		return n, nil
	case TypeBoolean:
		return Boolean{}, nil
	case TypeHex:
		return Hex{}, nil
	case TypeBinary:
		return Binary{}, nil
	case TypeUTF8:
		return UTF8{}, nil
	case TypeHTTPSURL:
		return HTTPSURL{}, nil
	case TypeIPFSCID:
		return IPFSCID{}, nil
	case TypeLocktime:
		return Locktime{}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownEncoding, raw.Type)
}

// MarshalEncoding encodes enc in the registry form
func MarshalEncoding(enc Encoding) ([]byte, error) {
	if enc == nil {
		return nil, ErrUnknownEncoding
	}
	raw := encodingJSON{Type: enc.Type()}
	if n, ok := enc.(Number); ok {
		if n.Decimals != 0 {
			decimals := n.Decimals
			raw.Decimals = &decimals
		}
		raw.Unit = n.Unit
		raw.Aggregate = n.Aggregate
	}
	return json.Marshal(raw)
}
