// Package extension runs registry declared extensions that may rewrite an
// output before its commitment is parsed.
package extension

import (
	"context"
	"log/slog"

	"github.com/cashonize/nft-metadata-decoder/decoder"
	"github.com/cashonize/nft-metadata-decoder/decoder/registry"
)

// ChainClient is the minimal chain query interface extensions need
type ChainClient interface {
	// GetUnspentOutputs returns the unspent outputs paying to address
	GetUnspentOutputs(ctx context.Context, address string) ([]UTXO, error)

	// GetRawTransaction returns the raw transaction hex of txid
	GetRawTransaction(ctx context.Context, txid string) (string, error)
}

// UTXO is an unspent output as reported by a chain client
type UTXO struct {
	TxHash    string     `json:"tx_hash"`
	TxPos     uint32     `json:"tx_pos"`
	Value     uint64     `json:"value"`
	Script    string     `json:"script"`
	Height    *int64     `json:"height,omitempty"`
	TokenData *UTXOToken `json:"token_data,omitempty"`
}

// UTXOToken is the token attachment of a UTXO
type UTXOToken struct {
	Category string   `json:"category"`
	Amount   string   `json:"amount"`
	NFT      *UTXONFT `json:"nft,omitempty"`
}

// UTXONFT is the NFT of a UTXO
type UTXONFT struct {
	Capability string `json:"capability"`
	Commitment string `json:"commitment"`
}

// Request is what a handler receives. Config is the entry declared for the
// invoked method under the extension's name in the snapshot.
type Request struct {
	Output        decoder.Output
	Snapshot      *registry.IdentitySnapshot
	Config        registry.ExtensionEntry
	Client        ChainClient
	NetworkPrefix string
	Logger        *slog.Logger
}

// Handler implements one extension method. The returned output replaces the
// current one; a returned error leaves the current output in place.
type Handler func(ctx context.Context, req Request) (decoder.Output, error)

// Registry maps extension names and method names to handlers
type Registry struct {
	extensions map[string]map[string]Handler
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{
		extensions: make(map[string]map[string]Handler),
	}
}

// DefaultRegistry creates a registry with the built-in extensions
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(ParityUSD, FetchLoanState, FetchLoanStateHandler)
	return r
}

// Register adds or replaces the handler of name/method
func (r *Registry) Register(name, method string, h Handler) {
	methods, ok := r.extensions[name]
	if !ok {
		methods = make(map[string]Handler)
		r.extensions[name] = methods
	}
	methods[method] = h
}

// Has reports whether any method is registered under name
func (r *Registry) Has(name string) bool {
	_, ok := r.extensions[name]
	return ok
}

// Lookup returns the handler of name/method
func (r *Registry) Lookup(name, method string) (Handler, bool) {
	h, ok := r.extensions[name][method]
	return h, ok
}
