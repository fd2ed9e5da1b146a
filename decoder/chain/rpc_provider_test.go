package chain

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type rpcRequest struct {
	Method string            `json:"method"`
	Params []json.RawMessage `json:"params"`
}

// newNode starts a fake node answering each method with a canned body
func newNode(t *testing.T, responses map[string]string) (*httptest.Server, *[]rpcRequest) {
	t.Helper()
	var seen []rpcRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		if !ok || user != "user" || pass != "pass" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		var rpcReq rpcRequest
		require.NoError(t, json.Unmarshal(body, &rpcReq))
		seen = append(seen, rpcReq)

		resp, ok := responses[rpcReq.Method]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			_, _ = io.WriteString(w, `{"result":null,"error":{"code":-32601,"message":"Method not found"},"id":"x"}`)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, resp)
	}))
	t.Cleanup(server.Close)
	return server, &seen
}

const scanResponse = `{"result":{"success":true,"txouts":10,"height":850000,"unspents":[
  {"txid":"aa","vout":1,"scriptPubKey":"aa2000","desc":"addr(x)","amount":0.00001000,"height":849000,
   "tokenData":{"category":"bb","amount":"0","nft":{"capability":"mutable","commitment":"6400"}}},
  {"txid":"cc","vout":0,"scriptPubKey":"aa2000","desc":"addr(x)","amount":12.5,"height":849001}
],"total_amount":12.50001},"error":null,"id":"scantxoutset"}`

func TestRPCProvider_GetUtxos(t *testing.T) {
	server, seen := newNode(t, map[string]string{"scantxoutset": scanResponse})
	provider := NewRPCProvider(server.URL, "user", "pass")

	utxos, err := provider.GetUtxos(context.Background(), "bitcoincash:pvqq")
	require.NoError(t, err)
	require.Len(t, utxos, 2)

	assert.Equal(t, "aa", utxos[0].Txid)
	assert.Equal(t, uint32(1), utxos[0].Vout)
	assert.Equal(t, uint64(1000), utxos[0].Satoshis)
	require.NotNil(t, utxos[0].Height)
	assert.Equal(t, int64(849000), *utxos[0].Height)
	require.NotNil(t, utxos[0].Token)
	assert.Equal(t, "bb", utxos[0].Token.Category)
	require.NotNil(t, utxos[0].Token.NFT)
	assert.Equal(t, "mutable", utxos[0].Token.NFT.Capability)
	assert.Equal(t, "6400", utxos[0].Token.NFT.Commitment)

	assert.Equal(t, uint64(1250000000), utxos[1].Satoshis)
	assert.Nil(t, utxos[1].Token)

	require.Len(t, *seen, 1)
	assert.JSONEq(t, `"start"`, string((*seen)[0].Params[0]))
	assert.JSONEq(t, `[{"desc":"addr(bitcoincash:pvqq)"}]`, string((*seen)[0].Params[1]))
}

func TestRPCProvider_GetRawTransaction(t *testing.T) {
	server, seen := newNode(t, map[string]string{
		"getrawtransaction": `{"result":"0200000001","error":null,"id":"getrawtransaction"}`,
	})
	provider := NewRPCProvider(server.URL, "user", "pass")

	raw, err := provider.GetRawTransaction(context.Background(), "aa")
	require.NoError(t, err)
	assert.Equal(t, "0200000001", raw)
	require.Len(t, *seen, 1)
	assert.JSONEq(t, `"aa"`, string((*seen)[0].Params[0]))
	assert.JSONEq(t, `false`, string((*seen)[0].Params[1]))
}

func TestRPCProvider_Errors(t *testing.T) {
	server, _ := newNode(t, map[string]string{
		"getrawtransaction": `{"result":null,"error":{"code":-5,"message":"No such mempool or blockchain transaction"},"id":"x"}`,
		"scantxoutset":      `{"result":{"success":false},"error":null,"id":"x"}`,
	})
	provider := NewRPCProvider(server.URL, "user", "pass")

	_, err := provider.GetRawTransaction(context.Background(), "aa")
	assert.ErrorIs(t, err, ErrRPC)
	assert.Contains(t, err.Error(), "No such mempool")

	_, err = provider.GetUtxos(context.Background(), "bitcoincash:pvqq")
	assert.ErrorIs(t, err, ErrRPC)

	_, err = provider.Call(context.Background(), "getblockcount", nil)
	assert.ErrorIs(t, err, ErrRPC)

	unauthorized := NewRPCProvider(server.URL, "user", "wrong")
	_, err = unauthorized.GetRawTransaction(context.Background(), "aa")
	assert.ErrorIs(t, err, ErrInvalidResponse)
}

func TestToSatoshis(t *testing.T) {
	tests := []struct {
		amount   string
		expected uint64
		wantErr  bool
	}{
		{"0", 0, false},
		{"0.00000546", 546, false},
		{"1", 100000000, false},
		{"20999999.97690000", 2099999997690000, false},
		{"1e-8", 1, false},
		{"0.000000001", 0, true},
		{"-1", 0, true},
		{"abc", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.amount, func(t *testing.T) {
			sats, err := ToSatoshis(tt.amount)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidResponse)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, sats)
		})
	}
}
