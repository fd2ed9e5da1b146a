// Package chain adapts wallet and node chain data sources to the chain
// client used by the extension pipeline.
package chain

import (
	"context"

	"github.com/cashonize/nft-metadata-decoder/decoder"
	"github.com/cashonize/nft-metadata-decoder/decoder/extension"
)

// DataProvider is a wallet layer source of chain data
type DataProvider interface {
	// GetUtxos returns the unspent outputs paying to address
	GetUtxos(ctx context.Context, address string) ([]WalletUtxo, error)

	// GetRawTransaction returns the raw transaction hex of txid
	GetRawTransaction(ctx context.Context, txid string) (string, error)
}

// WalletUtxo is an unspent output as reported by a wallet
type WalletUtxo struct {
	Txid     string       `json:"txid"`
	Vout     uint32       `json:"vout"`
	Satoshis uint64       `json:"satoshis"`
	Height   *int64       `json:"height,omitempty"`
	Token    *WalletToken `json:"token,omitempty"`
}

// WalletToken is the token attachment of a wallet UTXO
type WalletToken struct {
	Category string     `json:"tokenId"`
	Amount   string     `json:"amount"`
	NFT      *WalletNFT `json:"nft,omitempty"`
}

// WalletNFT is the NFT of a wallet UTXO. Capability may be empty when the
// wallet only reports the commitment.
type WalletNFT struct {
	Capability string `json:"capability,omitempty"`
	Commitment string `json:"commitment"`
}

// Adapter exposes a DataProvider as an extension.ChainClient
type Adapter struct {
	provider DataProvider
}

var _ extension.ChainClient = (*Adapter)(nil)

// NewAdapter creates an adapter over provider
func NewAdapter(provider DataProvider) *Adapter {
	return &Adapter{provider: provider}
}

// GetUnspentOutputs implements extension.ChainClient
func (a *Adapter) GetUnspentOutputs(ctx context.Context, address string) ([]extension.UTXO, error) {
	utxos, err := a.provider.GetUtxos(ctx, address)
	if err != nil {
		return nil, err
	}
	result := make([]extension.UTXO, 0, len(utxos))
	for _, u := range utxos {
		result = append(result, ToUTXO(u))
	}
	return result, nil
}

// GetRawTransaction implements extension.ChainClient
func (a *Adapter) GetRawTransaction(ctx context.Context, txid string) (string, error) {
	return a.provider.GetRawTransaction(ctx, txid)
}

// ToUTXO maps a wallet UTXO to the pipeline's shape
func ToUTXO(u WalletUtxo) extension.UTXO {
	utxo := extension.UTXO{
		TxHash: u.Txid,
		TxPos:  u.Vout,
		Value:  u.Satoshis,
		Height: u.Height,
	}
	if u.Token != nil {
		utxo.TokenData = &extension.UTXOToken{
			Category: u.Token.Category,
			Amount:   u.Token.Amount,
		}
		if u.Token.NFT != nil {
			capability := u.Token.NFT.Capability
			if capability == "" {
				capability = string(decoder.CapabilityNone)
			}
			utxo.TokenData.NFT = &extension.UTXONFT{
				Capability: capability,
				Commitment: u.Token.NFT.Commitment,
			}
		}
	}
	return utxo
}
