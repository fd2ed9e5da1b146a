package common

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/bitcoinsv/bsvd/wire"
	"github.com/btcsuite/btcd/chaincfg/chainhash"

	"github.com/cashonize/nft-metadata-decoder/decoder"
)

// PrefixToken marks a locking bytecode carrying a token prefix
const PrefixToken = 0xef

// MaxCommitmentLength is the largest NFT commitment accepted
const MaxCommitmentLength = 128

// Token prefix bitfield flags
const (
	tokenReserved         = 0x80
	tokenHasCommitmentLen = 0x40
	tokenHasNFT           = 0x20
	tokenHasAmount        = 0x10
	tokenCapabilityMask   = 0x0f
)

var ErrInvalidTokenPrefix = errors.New("invalid token prefix")

var capabilityCodes = []decoder.Capability{decoder.CapabilityNone, decoder.CapabilityMutable, decoder.CapabilityMinting}

// DecodeTokenPrefix splits a wire locking bytecode into its token data and
// the locking bytecode proper. Without a prefix the token is nil and the
// script is returned unchanged.
func DecodeTokenPrefix(script []byte) (*decoder.TokenData, []byte, error) {
	if len(script) == 0 || script[0] != PrefixToken {
		return nil, script, nil
	}
	if len(script) < 1+chainhash.HashSize+1 {
		return nil, nil, fmt.Errorf("%w: truncated", ErrInvalidTokenPrefix)
	}
	token := &decoder.TokenData{}
	copy(token.Category[:], script[1:1+chainhash.HashSize])

	r := bytes.NewReader(script[1+chainhash.HashSize:])
	bitfield, err := r.ReadByte()
	if err != nil {
		return nil, nil, fmt.Errorf("%w: missing bitfield", ErrInvalidTokenPrefix)
	}
	if bitfield&tokenReserved != 0 {
		return nil, nil, fmt.Errorf("%w: reserved bit set", ErrInvalidTokenPrefix)
	}
	capability := bitfield & tokenCapabilityMask
	hasNFT := bitfield&tokenHasNFT != 0
	if !hasNFT && (capability != 0 || bitfield&tokenHasCommitmentLen != 0) {
		return nil, nil, fmt.Errorf("%w: nft flags without nft", ErrInvalidTokenPrefix)
	}
	if !hasNFT && bitfield&tokenHasAmount == 0 {
		return nil, nil, fmt.Errorf("%w: no tokens encoded", ErrInvalidTokenPrefix)
	}

	if hasNFT {
		if int(capability) >= len(capabilityCodes) {
			return nil, nil, fmt.Errorf("%w: unknown capability %d", ErrInvalidTokenPrefix, capability)
		}
		nft := &decoder.NFT{Capability: capabilityCodes[capability], Commitment: []byte{}}
		if bitfield&tokenHasCommitmentLen != 0 {
			length, err := wire.ReadVarInt(r, 0)
			if err != nil {
				return nil, nil, fmt.Errorf("%w: commitment length: %v", ErrInvalidTokenPrefix, err)
			}
			if length == 0 || length > MaxCommitmentLength || length > uint64(r.Len()) {
				return nil, nil, fmt.Errorf("%w: commitment length %d", ErrInvalidTokenPrefix, length)
			}
			nft.Commitment = make([]byte, length)
			if _, err := io.ReadFull(r, nft.Commitment); err != nil {
				return nil, nil, fmt.Errorf("%w: commitment: %v", ErrInvalidTokenPrefix, err)
			}
		}
		token.NFT = nft
	}

	if bitfield&tokenHasAmount != 0 {
		amount, err := wire.ReadVarInt(r, 0)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: amount: %v", ErrInvalidTokenPrefix, err)
		}
		if amount == 0 || amount > math.MaxInt64 {
			return nil, nil, fmt.Errorf("%w: amount %d", ErrInvalidTokenPrefix, amount)
		}
		token.Amount = amount
	}

	rest := script[len(script)-r.Len():]
	return token, rest, nil
}

// EncodeTokenPrefix serializes token data as a locking bytecode prefix
func EncodeTokenPrefix(token *decoder.TokenData) ([]byte, error) {
	if token == nil {
		return nil, nil
	}
	var buf bytes.Buffer
	buf.WriteByte(PrefixToken)
	buf.Write(token.Category[:])

	var bitfield byte
	if token.NFT != nil {
		bitfield |= tokenHasNFT
		code := -1
		for i, c := range capabilityCodes {
			if c == token.NFT.Capability {
				code = i
			}
		}
		if code < 0 {
			return nil, fmt.Errorf("%w: unknown capability %q", ErrInvalidTokenPrefix, token.NFT.Capability)
		}
		bitfield |= byte(code)
		if len(token.NFT.Commitment) > MaxCommitmentLength {
			return nil, fmt.Errorf("%w: commitment length %d", ErrInvalidTokenPrefix, len(token.NFT.Commitment))
		}
		if len(token.NFT.Commitment) > 0 {
			bitfield |= tokenHasCommitmentLen
		}
	}
	if token.Amount > 0 {
		if token.Amount > math.MaxInt64 {
			return nil, fmt.Errorf("%w: amount %d", ErrInvalidTokenPrefix, token.Amount)
		}
		bitfield |= tokenHasAmount
	}
	if bitfield&(tokenHasNFT|tokenHasAmount) == 0 {
		return nil, fmt.Errorf("%w: no tokens encoded", ErrInvalidTokenPrefix)
	}
	buf.WriteByte(bitfield)

	if bitfield&tokenHasCommitmentLen != 0 {
		if err := wire.WriteVarInt(&buf, 0, uint64(len(token.NFT.Commitment))); err != nil {
			return nil, err
		}
		buf.Write(token.NFT.Commitment)
	}
	if bitfield&tokenHasAmount != 0 {
		if err := wire.WriteVarInt(&buf, 0, token.Amount); err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}
