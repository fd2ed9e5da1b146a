package field

import (
	"math/big"
	"time"

	"github.com/ipfs/go-cid"
)

// Value is a decoded field value. Every implementation carries the machine
// value and its display text.
type Value interface {
	Type() Type
	String() string
	value()
}

// NumberValue is a decoded number field
type NumberValue struct {
	Int       *big.Int // Unscaled integer
	Decimals  int
	Unit      string
	Formatted string
}

// BooleanValue is a decoded boolean field
type BooleanValue struct {
	Bool bool
}

// HexValue is a field rendered as hex
type HexValue struct {
	Bytes     []byte
	Formatted string
}

// BinaryValue is a field rendered as binary digits
type BinaryValue struct {
	Bytes     []byte
	Formatted string
}

// UTF8Value is a decoded text field
type UTF8Value struct {
	Text string
}

// HTTPSURLValue is a decoded web URL
type HTTPSURLValue struct {
	URL string
}

// IPFSCIDValue is a decoded IPFS content identifier. CID is only set when
// Valid is true.
type IPFSCIDValue struct {
	Raw   string
	CID   cid.Cid
	Valid bool
	URI   string
}

// LocktimeValue is a decoded locktime: a block height below 500,000,000,
// a unix timestamp otherwise.
type LocktimeValue struct {
	Value       int64
	BlockHeight bool
	Time        time.Time // Zero for block heights
	Formatted   string
}

func (NumberValue) Type() Type   { return TypeNumber }
func (BooleanValue) Type() Type  { return TypeBoolean }
func (HexValue) Type() Type      { return TypeHex }
func (BinaryValue) Type() Type   { return TypeBinary }
func (UTF8Value) Type() Type     { return TypeUTF8 }
func (HTTPSURLValue) Type() Type { return TypeHTTPSURL }
func (IPFSCIDValue) Type() Type  { return TypeIPFSCID }
func (LocktimeValue) Type() Type { return TypeLocktime }

func (v NumberValue) String() string { return v.Formatted }
func (v BooleanValue) String() string {
	if v.Bool {
		return "true"
	}
	return "false"
}
func (v HexValue) String() string      { return v.Formatted }
func (v BinaryValue) String() string   { return v.Formatted }
func (v UTF8Value) String() string     { return v.Text }
func (v HTTPSURLValue) String() string { return v.URL }
func (v IPFSCIDValue) String() string  { return v.URI }
func (v LocktimeValue) String() string { return v.Formatted }

func (NumberValue) value()   {}
func (BooleanValue) value()  {}
func (HexValue) value()      {}
func (BinaryValue) value()   {}
func (UTF8Value) value()     {}
func (HTTPSURLValue) value() {}
func (IPFSCIDValue) value()  {}
func (LocktimeValue) value() {}
