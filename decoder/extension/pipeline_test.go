package extension

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cashonize/nft-metadata-decoder/decoder"
	"github.com/cashonize/nft-metadata-decoder/decoder/registry"
)

// fakeClient records calls and serves canned answers
type fakeClient struct {
	utxos     []UTXO
	rawTx     string
	utxoErr   error
	txErr     error
	utxoCalls int
	txCalls   int
	addresses []string
}

func (c *fakeClient) GetUnspentOutputs(_ context.Context, address string) ([]UTXO, error) {
	c.utxoCalls++
	c.addresses = append(c.addresses, address)
	return c.utxos, c.utxoErr
}

func (c *fakeClient) GetRawTransaction(_ context.Context, _ string) (string, error) {
	c.txCalls++
	return c.rawTx, c.txErr
}

func (c *fakeClient) calls() int {
	return c.utxoCalls + c.txCalls
}

func snapshotWith(t *testing.T, extensions string) *registry.IdentitySnapshot {
	t.Helper()
	var exts registry.Extensions
	require.NoError(t, json.Unmarshal([]byte(extensions), &exts))
	return &registry.IdentitySnapshot{Name: "test", Extensions: exts}
}

func plainOutput() decoder.Output {
	return decoder.Output{Value: 1000, LockingBytecode: []byte{0x51}}
}

func TestInvoke_NoExtensions(t *testing.T) {
	p := NewPipeline(NewRegistry(), nil)
	out := plainOutput()

	assert.Equal(t, out, p.Invoke(context.Background(), out, nil, nil, decoder.PrefixMainnet, nil))
	assert.Equal(t, out, p.Invoke(context.Background(), out, &registry.IdentitySnapshot{}, nil, decoder.PrefixMainnet, nil))
}

func TestInvoke_OrderAndChaining(t *testing.T) {
	var order []string
	reg := NewRegistry()
	reg.Register("first", "double", func(_ context.Context, req Request) (decoder.Output, error) {
		order = append(order, "first.double")
		out := req.Output
		out.Value *= 2
		return out, nil
	})
	reg.Register("second", "add", func(_ context.Context, req Request) (decoder.Output, error) {
		order = append(order, "second.add")
		out := req.Output
		out.Value += 1
		return out, nil
	})
	reg.Register("second", "label", func(_ context.Context, req Request) (decoder.Output, error) {
		order = append(order, "second.label")
		v, _ := req.Config.Children.String("value")
		assert.Equal(t, "x", v)
		return req.Output, nil
	})

	snapshot := snapshotWith(t, `{"second": {"label": {"value": "x"}, "add": {}}, "first": {"double": {}}}`)
	out := NewPipeline(reg, nil).Invoke(context.Background(), plainOutput(), snapshot, nil, decoder.PrefixMainnet, nil)

	assert.Equal(t, []string{"second.label", "second.add", "first.double"}, order)
	assert.Equal(t, uint64(2002), out.Value)
}

func TestInvoke_SkipsUnregistered(t *testing.T) {
	called := 0
	reg := NewRegistry()
	reg.Register("known", "run", func(_ context.Context, req Request) (decoder.Output, error) {
		called++
		return req.Output, nil
	})

	snapshot := snapshotWith(t, `{"unknown": {"run": {}}, "known": {"missing": {}, "run": {}}, "attribution": "text"}`)
	out := NewPipeline(reg, nil).Invoke(context.Background(), plainOutput(), snapshot, nil, decoder.PrefixMainnet, nil)

	assert.Equal(t, 1, called)
	assert.Equal(t, plainOutput(), out)
}

func TestInvoke_FailSoft(t *testing.T) {
	reg := NewRegistry()
	reg.Register("ext", "fail", func(_ context.Context, req Request) (decoder.Output, error) {
		return decoder.Output{Value: 1}, errors.New("boom")
	})
	reg.Register("ext", "panic", func(_ context.Context, req Request) (decoder.Output, error) {
		panic("handler bug")
	})
	reg.Register("ext", "mutate", func(_ context.Context, req Request) (decoder.Output, error) {
		req.Output.LockingBytecode[0] = 0x00
		return decoder.Output{}, errors.New("mutated then failed")
	})

	snapshot := snapshotWith(t, `{"ext": {"fail": {}, "panic": {}, "mutate": {}}}`)
	in := plainOutput()
	out := NewPipeline(reg, nil).Invoke(context.Background(), in, snapshot, nil, decoder.PrefixMainnet, nil)

	assert.Equal(t, plainOutput(), out)
	assert.Equal(t, []byte{0x51}, in.LockingBytecode)
}

func TestInvoke_Disabled(t *testing.T) {
	client := &fakeClient{}
	snapshot := snapshotWith(t, `{"parityusd": {"fetchLoanState": {"sidecarLockingBytecode": "`+sidecarHex+`"}}}`)
	out := placeholderOutput(t)

	got := NewPipeline(nil, nil).Invoke(context.Background(), out, snapshot, client, decoder.PrefixMainnet, map[string]bool{ParityUSD: false})

	assert.Equal(t, out, got)
	assert.Zero(t, client.calls())
}

func TestInvoke_Idempotent(t *testing.T) {
	client := &fakeClient{utxoErr: errors.New("unreachable")}
	snapshot := snapshotWith(t, `{"parityusd": {"fetchLoanState": {"sidecarLockingBytecode": "`+sidecarHex+`"}}}`)
	p := NewPipeline(nil, nil)
	out := placeholderOutput(t)

	first := p.Invoke(context.Background(), out, snapshot, client, decoder.PrefixMainnet, nil)
	second := p.Invoke(context.Background(), out, snapshot, client, decoder.PrefixMainnet, nil)

	assert.Equal(t, out, first)
	assert.Equal(t, first, second)
	assert.Equal(t, 2, client.utxoCalls)
}

func TestInvoke_IdempotentWithRewrite(t *testing.T) {
	client := loanClient(t)
	req := loanRequest(t, client)
	p := NewPipeline(nil, nil)

	first := p.Invoke(context.Background(), req.Output, req.Snapshot, client, decoder.PrefixMainnet, nil)
	second := p.Invoke(context.Background(), req.Output, req.Snapshot, client, decoder.PrefixMainnet, nil)

	assert.NotEqual(t, req.Output, first)
	assert.Equal(t, uint64(150000), first.Value)
	assert.Equal(t, first, second)
	assert.Equal(t, 2, client.utxoCalls)
	assert.Equal(t, 2, client.txCalls)
}

func TestDefaultRegistry(t *testing.T) {
	reg := DefaultRegistry()
	assert.True(t, reg.Has(ParityUSD))
	_, ok := reg.Lookup(ParityUSD, FetchLoanState)
	assert.True(t, ok)
	_, ok = reg.Lookup(ParityUSD, "other")
	assert.False(t, ok)
	assert.False(t, reg.Has("other"))
}
