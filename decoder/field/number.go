package field

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/shopspring/decimal"
)

// MaxNumberLength bounds the byte length of a VM number, the VM's own stack
// element limit.
const MaxNumberLength = 10000

var (
	ErrNonMinimal    = errors.New("non-minimally encoded VM number")
	ErrNumberTooLong = errors.New("VM number exceeds maximum length")
)

// DecodeNumber decodes a minimally encoded VM number. The empty byte string
// is zero.
func DecodeNumber(b []byte) (*big.Int, error) {
	if len(b) > MaxNumberLength {
		return nil, fmt.Errorf("%w: %d bytes", ErrNumberTooLong, len(b))
	}
	if !isMinimal(b) {
		return nil, ErrNonMinimal
	}
	return decodeLE(b), nil
}

// DecodeNumberLenient decodes a VM number without the minimal encoding
// rule: redundant padding is accepted.
func DecodeNumberLenient(b []byte) (*big.Int, error) {
	if len(b) > MaxNumberLength {
		return nil, fmt.Errorf("%w: %d bytes", ErrNumberTooLong, len(b))
	}
	return decodeLE(b), nil
}

// decodeNumberFallback tries the strict decoding first and falls back to
// the lenient one only for padded input.
func decodeNumberFallback(b []byte) (*big.Int, error) {
	v, err := DecodeNumber(b)
	if errors.Is(err, ErrNonMinimal) {
		return DecodeNumberLenient(b)
	}
	return v, err
}

// isMinimal reports whether the most significant byte is needed
func isMinimal(b []byte) bool {
	if len(b) == 0 {
		return true
	}
	last := b[len(b)-1]
	if last&0x7f != 0 {
		return true
	}
	// last is 0x00 or 0x80: only valid as a sign byte for a set high bit
	return len(b) > 1 && b[len(b)-2]&0x80 != 0
}

func decodeLE(b []byte) *big.Int {
	if len(b) == 0 {
		return new(big.Int)
	}
	be := make([]byte, len(b))
	for i := range b {
		be[len(b)-1-i] = b[i]
	}
	negative := be[0]&0x80 != 0
	be[0] &= 0x7f
	v := new(big.Int).SetBytes(be)
	if negative {
		v.Neg(v)
	}
	return v
}

// EncodeNumber returns the minimal VM encoding of v
func EncodeNumber(v *big.Int) []byte {
	if v == nil || v.Sign() == 0 {
		return []byte{}
	}
	be := new(big.Int).Abs(v).Bytes()
	le := make([]byte, len(be), len(be)+1)
	for i := range be {
		le[len(be)-1-i] = be[i]
	}
	if le[len(le)-1]&0x80 != 0 {
		if v.Sign() < 0 {
			le = append(le, 0x80)
		} else {
			le = append(le, 0x00)
		}
	} else if v.Sign() < 0 {
		le[len(le)-1] |= 0x80
	}
	return le
}

// FormatNumber renders v scaled by 10^-decimals. Trailing fractional zeros
// are dropped and unit, if any, is appended after a space.
func FormatNumber(v *big.Int, decimals int, unit string) string {
	s := decimal.NewFromBigInt(v, int32(-decimals)).String()
	if unit != "" {
		s += " " + unit
	}
	return s
}
