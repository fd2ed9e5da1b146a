package extension

import (
	"bytes"
	"context"
	"encoding/hex"
	"strings"
	"testing"

	"github.com/bitcoinsv/bsvd/wire"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cashonize/nft-metadata-decoder/decoder"
	"github.com/cashonize/nft-metadata-decoder/decoder/common"
	"github.com/cashonize/nft-metadata-decoder/decoder/registry"
)

const (
	loanCategory   = "5b4b3a2ec95c1ae7f7c5ec1c5ceaa8e2fc49bbe2e6a08cbf0174d4c1b13f9a6e"
	sidecarHex     = "aa20000000000000000000000000000000000000000000000000000000000000000087"
	sidecarAddress = "bitcoincash:pvqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqae05xh4w"
)

var loanLockingBytecode = []byte{0x76, 0xa9, 0x14, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x88, 0xac}

func placeholderOutput(t *testing.T) decoder.Output {
	t.Helper()
	category, err := decoder.ParseCategory(loanCategory)
	require.NoError(t, err)
	return decoder.Output{
		Value:           800,
		LockingBytecode: []byte{0x51},
		Token: &decoder.TokenData{
			Category: category,
			NFT:      &decoder.NFT{Capability: decoder.CapabilityMutable},
		},
	}
}

// loanTransaction serializes a transaction whose outputs are the loan
// followed by the sidecar, and returns its hex and txid
func loanTransaction(t *testing.T, outputs ...decoder.Output) (string, string) {
	t.Helper()
	msgTx := wire.NewMsgTx(2)
	msgTx.AddTxIn(&wire.TxIn{PreviousOutPoint: wire.OutPoint{Index: 0}, Sequence: wire.MaxTxInSequenceNum})
	for _, out := range outputs {
		txOut, err := common.EncodeOutput(out)
		require.NoError(t, err)
		msgTx.AddTxOut(txOut)
	}
	var buf bytes.Buffer
	require.NoError(t, msgTx.Serialize(&buf))
	return hex.EncodeToString(buf.Bytes()), msgTx.TxHash().String()
}

func loanOutputs(t *testing.T) (decoder.Output, decoder.Output) {
	t.Helper()
	token := placeholderOutput(t).Token
	loan := decoder.Output{
		Value:           150000,
		LockingBytecode: loanLockingBytecode,
		Token: &decoder.TokenData{
			Category: token.Category,
			NFT:      &decoder.NFT{Capability: decoder.CapabilityMinting, Commitment: []byte{0x64, 0x00, 0x00, 0x00, 0x50, 0xc3, 0x00}},
		},
	}
	sidecarScript, err := hex.DecodeString(sidecarHex)
	require.NoError(t, err)
	sidecar := decoder.Output{
		Value:           1000,
		LockingBytecode: sidecarScript,
		Token: &decoder.TokenData{
			Category: token.Category,
			NFT:      &decoder.NFT{Capability: decoder.CapabilityNone},
		},
	}
	return loan, sidecar
}

func loanRequest(t *testing.T, client ChainClient) Request {
	t.Helper()
	snapshot := snapshotWith(t, `{"parityusd": {"fetchLoanState": {"sidecarLockingBytecode": "`+sidecarHex+`"}}}`)
	ext, _ := snapshot.Extensions.Get(ParityUSD)
	config, _ := ext.Children.Get(FetchLoanState)
	return Request{
		Output:        placeholderOutput(t),
		Snapshot:      snapshot,
		Config:        config,
		Client:        client,
		NetworkPrefix: decoder.PrefixMainnet,
	}
}

func loanClient(t *testing.T) *fakeClient {
	t.Helper()
	loan, sidecar := loanOutputs(t)
	rawTx, txid := loanTransaction(t, loan, sidecar)
	return &fakeClient{
		rawTx: rawTx,
		utxos: []UTXO{
			{TxHash: strings.Repeat("11", 32), TxPos: 0, Value: 1000, TokenData: &UTXOToken{Category: strings.Repeat("22", 32), Amount: "0"}},
			{TxHash: txid, TxPos: 1, Value: 1000, TokenData: &UTXOToken{Category: strings.ToUpper(loanCategory), Amount: "0"}},
		},
	}
}

func TestFetchLoanState(t *testing.T) {
	client := loanClient(t)
	req := loanRequest(t, client)

	out, err := FetchLoanStateHandler(context.Background(), req)
	require.NoError(t, err)

	require.True(t, out.HasNFT())
	assert.Equal(t, uint64(150000), out.Value)
	assert.Equal(t, "6400000050c300", hex.EncodeToString(out.Token.NFT.Commitment))
	assert.Equal(t, decoder.CapabilityMutable, out.Token.NFT.Capability)
	assert.Equal(t, req.Output.LockingBytecode, out.LockingBytecode)
	assert.Equal(t, loanCategory, out.Token.CategoryHex())
	assert.Equal(t, []string{sidecarAddress}, client.addresses)
	assert.Equal(t, 1, client.txCalls)

	// Input untouched
	assert.Equal(t, uint64(800), req.Output.Value)
	assert.Empty(t, req.Output.Token.NFT.Commitment)
}

func TestFetchLoanState_DefaultCapability(t *testing.T) {
	req := loanRequest(t, loanClient(t))
	req.Output.Token.NFT = nil

	out, err := FetchLoanStateHandler(context.Background(), req)
	require.NoError(t, err)
	require.True(t, out.HasNFT())
	assert.Equal(t, decoder.CapabilityNone, out.Token.NFT.Capability)
}

func TestFetchLoanState_ThroughPipeline(t *testing.T) {
	client := loanClient(t)
	req := loanRequest(t, client)

	out := NewPipeline(nil, nil).Invoke(context.Background(), req.Output, req.Snapshot, client, decoder.PrefixMainnet, map[string]bool{ParityUSD: true})

	assert.Equal(t, uint64(150000), out.Value)
	assert.Equal(t, "6400000050c300", hex.EncodeToString(out.Token.NFT.Commitment))
}

func TestFetchLoanState_SoftFailures(t *testing.T) {
	loan, sidecar := loanOutputs(t)
	plainLoan := loan.Clone()
	plainLoan.Token = nil
	noNFTTx, noNFTTxid := loanTransaction(t, plainLoan, sidecar)

	tests := []struct {
		name   string
		modify func(req *Request, client *fakeClient)
	}{
		{"missing config", func(req *Request, _ *fakeClient) {
			req.Config = registry.ExtensionEntry{Key: FetchLoanState, IsObject: true}
		}},
		{"invalid config hex", func(req *Request, _ *fakeClient) {
			req.Config = registry.ExtensionEntry{Key: FetchLoanState, Value: "zz"}
		}},
		{"unsupported sidecar bytecode", func(req *Request, _ *fakeClient) {
			req.Config = registry.ExtensionEntry{Key: FetchLoanState, Value: "51"}
		}},
		{"no token", func(req *Request, _ *fakeClient) {
			req.Output.Token = nil
		}},
		{"no client", func(req *Request, _ *fakeClient) {
			req.Client = nil
		}},
		{"utxo query fails", func(_ *Request, client *fakeClient) {
			client.utxoErr = assert.AnError
		}},
		{"no sidecar of category", func(_ *Request, client *fakeClient) {
			client.utxos = client.utxos[:1]
		}},
		{"sidecar without token", func(_ *Request, client *fakeClient) {
			client.utxos[1].TokenData = nil
		}},
		{"transaction query fails", func(_ *Request, client *fakeClient) {
			client.txErr = assert.AnError
		}},
		{"malformed transaction", func(_ *Request, client *fakeClient) {
			client.rawTx = "0100"
		}},
		{"transaction id mismatch", func(_ *Request, client *fakeClient) {
			client.utxos[1].TxHash = strings.Repeat("33", 32)
		}},
		{"sidecar is first output", func(_ *Request, client *fakeClient) {
			client.utxos[1].TxPos = 0
		}},
		{"sidecar index out of range", func(_ *Request, client *fakeClient) {
			client.utxos[1].TxPos = 5
		}},
		{"loan without nft", func(_ *Request, client *fakeClient) {
			client.rawTx = noNFTTx
			client.utxos[1].TxHash = noNFTTxid
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := loanClient(t)
			req := loanRequest(t, client)
			tt.modify(&req, client)

			out, err := FetchLoanStateHandler(context.Background(), req)
			require.NoError(t, err)
			assert.Equal(t, req.Output, out)
		})
	}
}
