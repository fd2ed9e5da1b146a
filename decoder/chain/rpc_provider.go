package chain

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/imroc/req"
	"github.com/shopspring/decimal"
	"github.com/tidwall/gjson"
)

const satoshiExponent = 8

var (
	ErrRPC             = errors.New("rpc error")
	ErrInvalidResponse = errors.New("invalid rpc response")
)

// RPCProvider is a DataProvider backed by a Bitcoin Cash node's JSON-RPC
// interface. Unspent outputs are found with scantxoutset, so no wallet or
// address index is required on the node.
type RPCProvider struct {
	url         string
	accessToken string
	client      *req.Req
}

var _ DataProvider = (*RPCProvider)(nil)

// NewRPCProvider creates a provider for the node at url
func NewRPCProvider(url, username, password string) *RPCProvider {
	return &RPCProvider{
		url:         url,
		accessToken: BasicAuth(username, password),
		client:      req.New(),
	}
}

// BasicAuth returns the credentials for an Authorization header
func BasicAuth(username, password string) string {
	return base64.StdEncoding.EncodeToString([]byte(username + ":" + password))
}

// Call performs one JSON-RPC request and returns its result
func (p *RPCProvider) Call(ctx context.Context, method string, params []interface{}) (*gjson.Result, error) {
	if params == nil {
		params = []interface{}{}
	}
	header := req.Header{
		"Content-Type":  "application/json",
		"Authorization": "Basic " + p.accessToken,
	}
	body := map[string]interface{}{
		"jsonrpc": "1.0",
		"id":      method,
		"method":  method,
		"params":  params,
	}

	r, err := p.client.Post(p.url, header, req.BodyJSON(&body), ctx)
	if err != nil {
		return nil, fmt.Errorf("%s request failed: %w", method, err)
	}

	data := r.Bytes()
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("%w: %s returned status %d", ErrInvalidResponse, method, r.Response().StatusCode)
	}
	resp := gjson.ParseBytes(data)
	if rpcErr := resp.Get("error"); rpcErr.Exists() && rpcErr.Type != gjson.Null {
		return nil, fmt.Errorf("%w: %s: [%d] %s", ErrRPC, method, rpcErr.Get("code").Int(), rpcErr.Get("message").String())
	}
	result := resp.Get("result")
	if !result.Exists() {
		return nil, fmt.Errorf("%w: %s returned no result", ErrInvalidResponse, method)
	}
	return &result, nil
}

// GetUtxos implements DataProvider
func (p *RPCProvider) GetUtxos(ctx context.Context, address string) ([]WalletUtxo, error) {
	request := []interface{}{
		"start",
		[]map[string]string{{"desc": "addr(" + address + ")"}},
	}
	result, err := p.Call(ctx, "scantxoutset", request)
	if err != nil {
		return nil, err
	}
	if !result.Get("success").Bool() {
		return nil, fmt.Errorf("%w: scantxoutset did not complete", ErrRPC)
	}

	unspents := result.Get("unspents").Array()
	utxos := make([]WalletUtxo, 0, len(unspents))
	for _, u := range unspents {
		satoshis, err := ToSatoshis(u.Get("amount").Raw)
		if err != nil {
			return nil, fmt.Errorf("utxo %s:%d: %w", u.Get("txid").String(), u.Get("vout").Uint(), err)
		}
		utxo := WalletUtxo{
			Txid:     u.Get("txid").String(),
			Vout:     uint32(u.Get("vout").Uint()),
			Satoshis: satoshis,
		}
		if h := u.Get("height"); h.Exists() {
			height := h.Int()
			utxo.Height = &height
		}
		if td := u.Get("tokenData"); td.IsObject() {
			utxo.Token = &WalletToken{
				Category: td.Get("category").String(),
				Amount:   td.Get("amount").String(),
			}
			if nft := td.Get("nft"); nft.IsObject() {
				utxo.Token.NFT = &WalletNFT{
					Capability: nft.Get("capability").String(),
					Commitment: nft.Get("commitment").String(),
				}
			}
		}
		utxos = append(utxos, utxo)
	}
	return utxos, nil
}

// GetRawTransaction implements DataProvider
func (p *RPCProvider) GetRawTransaction(ctx context.Context, txid string) (string, error) {
	result, err := p.Call(ctx, "getrawtransaction", []interface{}{txid, false})
	if err != nil {
		return "", err
	}
	if result.Type != gjson.String {
		return "", fmt.Errorf("%w: getrawtransaction returned %s", ErrInvalidResponse, result.Type)
	}
	return result.String(), nil
}

// ToSatoshis converts a coin amount literal, as reported by the node, to
// satoshis without going through floating point
func ToSatoshis(amount string) (uint64, error) {
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return 0, fmt.Errorf("%w: amount %q", ErrInvalidResponse, amount)
	}
	sats := d.Shift(satoshiExponent)
	if sats.IsNegative() || !sats.IsInteger() {
		return 0, fmt.Errorf("%w: amount %q", ErrInvalidResponse, amount)
	}
	return sats.BigInt().Uint64(), nil
}
