package field

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeBoolean(t *testing.T) {
	v, err := Decode([]byte{0x00}, Boolean{})
	require.NoError(t, err)
	assert.Equal(t, BooleanValue{Bool: false}, v)
	assert.Equal(t, "false", v.String())

	v, err = Decode([]byte{0x01}, Boolean{})
	require.NoError(t, err)
	assert.Equal(t, BooleanValue{Bool: true}, v)
	assert.Equal(t, "true", v.String())

	for _, input := range [][]byte{{}, {0x02}, {0x81}, {0xff}, {0x00, 0x00}, {0x01, 0x00}} {
		_, err := Decode(input, Boolean{})
		assert.ErrorIs(t, err, ErrInvalidBoolean, "input %x", input)
	}
}

func TestDecodeNumberField(t *testing.T) {
	v, err := DecodeHex("64000000", Number{})
	require.NoError(t, err)
	assert.Equal(t, "100", v.String())

	v, err = DecodeHex("50c300", Number{Decimals: 2, Unit: "PUSD"})
	require.NoError(t, err)
	assert.Equal(t, "500 PUSD", v.String())
	n := v.(NumberValue)
	assert.Equal(t, int64(50000), n.Int.Int64())

	v, err = DecodeHex("", Number{Decimals: 8})
	require.NoError(t, err)
	assert.Equal(t, "0", v.String())

	_, err = Decode([]byte{0x01}, Number{Decimals: 19})
	assert.ErrorIs(t, err, ErrInvalidDecimals)
}

func TestDecodeRendering(t *testing.T) {
	tests := []struct {
		name  string
		input string
		enc   Encoding
		want  string
	}{
		{"hex", "deadbeef", Hex{}, "0xdeadbeef"},
		{"empty hex", "", Hex{}, "0x00"},
		{"binary", "0501", Binary{}, "0b0000010100000001"},
		{"empty binary", "", Binary{}, "0b0"},
		{"utf8", "68656c6c6f", UTF8{}, "hello"},
		{"https url", "6578616d706c652e636f6d2f612532306225324663", HTTPSURL{}, "https://example.com/a b/c"},
		{"ipfs", "516d54657374", IPFSCID{}, "ipfs://QmTest"},
		{"block height", "a08601", Locktime{}, "Block 100000"},
		{"timestamp", "0065cd1d", Locktime{}, "1985-11-05T00:53:20.000Z"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := DecodeHex(tt.input, tt.enc)
			require.NoError(t, err)
			assert.Equal(t, tt.want, v.String())
			assert.Equal(t, tt.enc.Type(), v.Type())
		})
	}
}

func TestDecodeIPFSCID_Valid(t *testing.T) {
	raw := []byte("bafybeigdyrzt5sfp7udm7hu76uh7y26nf3efuylqabf3oclgtqy55fbzdi")
	v, err := Decode(raw, IPFSCID{})
	require.NoError(t, err)
	c := v.(IPFSCIDValue)
	assert.True(t, c.Valid)
	assert.Equal(t, string(raw), c.CID.String())
	assert.Equal(t, "ipfs://"+string(raw), c.URI)
}

func TestDecodeSoftFailures(t *testing.T) {
	_, err := Decode([]byte{0xff, 0xfe}, UTF8{})
	assert.ErrorIs(t, err, ErrInvalidUTF8)

	_, err = Decode([]byte("example.com/%zz"), HTTPSURL{})
	assert.ErrorIs(t, err, ErrInvalidURL)
	_, err = Decode([]byte("example.com%2F%FF"), HTTPSURL{})
	assert.ErrorIs(t, err, ErrInvalidURL)
	_, err = Decode([]byte("example.com/%C3%28"), HTTPSURL{})
	assert.ErrorIs(t, err, ErrInvalidURL)

	// locktime never accepts padding
	_, err = Decode([]byte{0x64, 0x00}, Locktime{})
	assert.ErrorIs(t, err, ErrNonMinimal)

	_, err = Decode([]byte{0x81}, Locktime{})
	assert.ErrorIs(t, err, ErrLocktimeRange)

	_, err = Decode([]byte{0x01}, nil)
	assert.ErrorIs(t, err, ErrUnknownEncoding)
}

func TestParseEncoding(t *testing.T) {
	enc, err := ParseEncoding([]byte(`{"type":"number","decimals":2,"unit":"PUSD","aggregate":"add"}`))
	require.NoError(t, err)
	assert.Equal(t, Number{Decimals: 2, Unit: "PUSD", Aggregate: AggregateAdd}, enc)

	enc, err = ParseEncoding([]byte(`{"type":"ipfs-cid"}`))
	require.NoError(t, err)
	assert.Equal(t, IPFSCID{}, enc)

	_, err = ParseEncoding([]byte(`{"type":"float"}`))
	assert.ErrorIs(t, err, ErrUnknownEncoding)

	_, err = ParseEncoding([]byte(`{"type":"number","decimals":30}`))
	assert.ErrorIs(t, err, ErrInvalidDecimals)

	_, err = ParseEncoding([]byte(`{"type":"number","aggregate":"max"}`))
	assert.ErrorIs(t, err, ErrInvalidAggregate)

	data, err := MarshalEncoding(Number{Decimals: 2, Unit: "PUSD"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"number","decimals":2,"unit":"PUSD"}`, string(data))
}
