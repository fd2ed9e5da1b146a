package field

import (
	"encoding/hex"
	"errors"
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/ipfs/go-cid"
)

// LocktimeThreshold separates block heights from unix timestamps
const LocktimeThreshold = 500_000_000

// isoMillis matches the ISO-8601 instant form used for timestamps
const isoMillis = "2006-01-02T15:04:05.000Z"

var (
	// ErrInvalidBoolean is fatal to the whole parse: a malformed boolean
	// means the parsing program or the commitment cannot be trusted.
	ErrInvalidBoolean = errors.New("invalid boolean encoding")
	ErrInvalidUTF8    = errors.New("invalid UTF-8")
	ErrInvalidURL     = errors.New("invalid percent-encoded URL")
	ErrLocktimeRange  = errors.New("locktime out of range")
)

// Decode interprets raw according to enc
func Decode(raw []byte, enc Encoding) (Value, error) {
	switch e := enc.(type) {
	case Number:
		return decodeNumberField(raw, e)
	case Boolean:
		return decodeBoolean(raw)
	case Hex:
		if len(raw) == 0 {
			return HexValue{Bytes: raw, Formatted: "0x00"}, nil
		}
		return HexValue{Bytes: raw, Formatted: "0x" + hex.EncodeToString(raw)}, nil
	case Binary:
		return decodeBinary(raw), nil
	case UTF8:
		text, err := decodeText(raw)
		if err != nil {
			return nil, err
		}
		return UTF8Value{Text: text}, nil
	case HTTPSURL:
		return decodeHTTPSURL(raw)
	case IPFSCID:
		return decodeIPFSCID(raw)
	case Locktime:
		return decodeLocktime(raw)
	case nil:
		return nil, ErrUnknownEncoding
	}
	return nil, fmt.Errorf("%w: %T", ErrUnknownEncoding, enc)
}

// DecodeHex decodes a hex encoded field value
func DecodeHex(rawHex string, enc Encoding) (Value, error) {
	raw, err := hex.DecodeString(rawHex)
	if err != nil {
		return nil, fmt.Errorf("invalid field hex: %w", err)
	}
	return Decode(raw, enc)
}

func decodeNumberField(raw []byte, enc Number) (Value, error) {
	if err := enc.Validate(); err != nil {
		return nil, err
	}
	v, err := decodeNumberFallback(raw)
	if err != nil {
		return nil, err
	}
	return NumberValue{
		Int:       v,
		Decimals:  enc.Decimals,
		Unit:      enc.Unit,
		Formatted: FormatNumber(v, enc.Decimals, enc.Unit),
	}, nil
}

func decodeBoolean(raw []byte) (Value, error) {
	if len(raw) != 1 {
		return nil, fmt.Errorf("%w: expected 1 byte, got %d", ErrInvalidBoolean, len(raw))
	}
	switch raw[0] {
	case 0x00:
		return BooleanValue{Bool: false}, nil
	case 0x01:
		return BooleanValue{Bool: true}, nil
	}
	return nil, fmt.Errorf("%w: 0x%02x", ErrInvalidBoolean, raw[0])
}

func decodeBinary(raw []byte) Value {
	if len(raw) == 0 {
		return BinaryValue{Bytes: raw, Formatted: "0b0"}
	}
	var sb strings.Builder
	sb.Grow(2 + 8*len(raw))
	sb.WriteString("0b")
	for _, b := range raw {
		s := strconv.FormatUint(uint64(b), 2)
		sb.WriteString(strings.Repeat("0", 8-len(s)))
		sb.WriteString(s)
	}
	return BinaryValue{Bytes: raw, Formatted: sb.String()}
}

func decodeText(raw []byte) (string, error) {
	if !utf8.Valid(raw) {
		return "", ErrInvalidUTF8
	}
	return string(raw), nil
}

func decodeHTTPSURL(raw []byte) (Value, error) {
	text, err := decodeText(raw)
	if err != nil {
		return nil, err
	}
	// Registries store the URL without scheme and percent-encoded
	unescaped, err := url.PathUnescape(text)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	if !utf8.ValidString(unescaped) {
		return nil, fmt.Errorf("%w: escapes decode to invalid UTF-8", ErrInvalidURL)
	}
	return HTTPSURLValue{URL: "https://" + unescaped}, nil
}

func decodeIPFSCID(raw []byte) (Value, error) {
	text, err := decodeText(raw)
	if err != nil {
		return nil, err
	}
	v := IPFSCIDValue{Raw: text, URI: "ipfs://" + text}
	if c, err := cid.Decode(text); err == nil {
		v.CID = c
		v.Valid = true
	}
	return v, nil
}

func decodeLocktime(raw []byte) (Value, error) {
	n, err := DecodeNumber(raw)
	if err != nil {
		return nil, err
	}
	if n.Sign() < 0 || !n.IsInt64() || n.Int64() > math.MaxUint32 {
		return nil, fmt.Errorf("%w: %s", ErrLocktimeRange, n)
	}
	v := n.Int64()
	if v < LocktimeThreshold {
		return LocktimeValue{Value: v, BlockHeight: true, Formatted: fmt.Sprintf("Block %d", v)}, nil
	}
	t := time.Unix(v, 0).UTC()
	return LocktimeValue{Value: v, Time: t, Formatted: t.Format(isoMillis)}, nil
}
