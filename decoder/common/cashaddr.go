package common

import (
	"errors"
	"fmt"
	"strings"

	"github.com/btcsuite/btcd/btcutil/bech32"
)

// AddressType is the CashAddress type nibble
type AddressType byte

const (
	AddressP2PKH           AddressType = 0
	AddressP2SH            AddressType = 1
	AddressTokenAwareP2PKH AddressType = 2
	AddressTokenAwareP2SH  AddressType = 3
)

const cashAddrCharset = "qpzry9x8gf2tvdw0s3jn54khce6mua7l"

var (
	ErrUnsupportedLockingBytecode = errors.New("locking bytecode has no address form")
	ErrInvalidHashLength          = errors.New("invalid address hash length")
	ErrInvalidPrefix              = errors.New("invalid address prefix")
)

// hashSizeCodes maps hash lengths to the size bits of the version byte
var hashSizeCodes = map[int]byte{20: 0, 24: 1, 28: 2, 32: 3, 40: 4, 48: 5, 56: 6, 64: 7}

// EncodeCashAddress encodes a hash as a CashAddress with the given prefix
// Example: bitcoincash:qpm2qsznhks23z7629mms6s4cwef74vcwvy22gdx6a
func EncodeCashAddress(prefix string, typ AddressType, hash []byte) (string, error) {
	if prefix == "" || strings.ToLower(prefix) != prefix {
		return "", fmt.Errorf("%w: %q", ErrInvalidPrefix, prefix)
	}
	sizeCode, ok := hashSizeCodes[len(hash)]
	if !ok {
		return "", fmt.Errorf("%w: %d", ErrInvalidHashLength, len(hash))
	}
	payload := append([]byte{byte(typ)<<3 | sizeCode}, hash...)
	data, err := bech32.ConvertBits(payload, 8, 5, true)
	if err != nil {
		return "", err
	}

	checksumInput := make([]byte, 0, len(prefix)+1+len(data)+8)
	for i := 0; i < len(prefix); i++ {
		checksumInput = append(checksumInput, prefix[i]&0x1f)
	}
	checksumInput = append(checksumInput, 0)
	checksumInput = append(checksumInput, data...)
	checksumInput = append(checksumInput, make([]byte, 8)...)
	mod := cashAddrPolymod(checksumInput)

	var sb strings.Builder
	sb.WriteString(prefix)
	sb.WriteByte(':')
	for _, d := range data {
		sb.WriteByte(cashAddrCharset[d])
	}
	for i := 0; i < 8; i++ {
		sb.WriteByte(cashAddrCharset[(mod>>(5*(7-i)))&0x1f])
	}
	return sb.String(), nil
}

// LockingBytecodeToCashAddress returns the address paying to a standard
// P2PKH, P2SH20 or P2SH32 locking bytecode.
func LockingBytecodeToCashAddress(script []byte, prefix string) (string, error) {
	switch {
	// OP_DUP OP_HASH160 <20> OP_EQUALVERIFY OP_CHECKSIG
	case len(script) == 25 && script[0] == 0x76 && script[1] == 0xa9 && script[2] == 0x14 && script[23] == 0x88 && script[24] == 0xac:
		return EncodeCashAddress(prefix, AddressP2PKH, script[3:23])
	// OP_HASH160 <20> OP_EQUAL
	case len(script) == 23 && script[0] == 0xa9 && script[1] == 0x14 && script[22] == 0x87:
		return EncodeCashAddress(prefix, AddressP2SH, script[2:22])
	// OP_HASH256 <32> OP_EQUAL
	case len(script) == 35 && script[0] == 0xaa && script[1] == 0x20 && script[34] == 0x87:
		return EncodeCashAddress(prefix, AddressP2SH, script[2:34])
	}
	return "", ErrUnsupportedLockingBytecode
}

func cashAddrPolymod(values []byte) uint64 {
	c := uint64(1)
	for _, d := range values {
		c0 := byte(c >> 35)
		c = ((c & 0x07ffffffff) << 5) ^ uint64(d)
		if c0&0x01 != 0 {
			c ^= 0x98f2bc8e61
		}
		if c0&0x02 != 0 {
			c ^= 0x79b76d99e2
		}
		if c0&0x04 != 0 {
			c ^= 0xf33e5fb3c4
		}
		if c0&0x08 != 0 {
			c ^= 0xae2eabe2a8
		}
		if c0&0x10 != 0 {
			c ^= 0x1e4f43e470
		}
	}
	return c ^ 1
}
