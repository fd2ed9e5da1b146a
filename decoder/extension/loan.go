package extension

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/cashonize/nft-metadata-decoder/decoder"
	"github.com/cashonize/nft-metadata-decoder/decoder/common"
)

// Loan state extension names and configuration keys
const (
	ParityUSD                 = "parityusd"
	FetchLoanState            = "fetchLoanState"
	SidecarLockingBytecodeKey = "sidecarLockingBytecode"
)

var (
	ErrMissingConfig   = errors.New("missing sidecar locking bytecode")
	ErrNoCategory      = errors.New("output has no token category")
	ErrSidecarNotFound = errors.New("no sidecar output for category")
	ErrNoLoanOutput    = errors.New("no loan output before sidecar")
)

// FetchLoanStateHandler resolves a placeholder NFT, whose state lives in a
// loan output created in the same transaction as a sidecar output, into the
// loan's value and commitment. The sidecar is found among the UTXOs of the
// configured sidecar contract by category; the loan is the output just
// before it. Every failure is logged and returns the input output.
func FetchLoanStateHandler(ctx context.Context, req Request) (decoder.Output, error) {
	out, err := fetchLoanState(ctx, req)
	if err != nil {
		if req.Logger != nil {
			req.Logger.Warn("failed to fetch loan state", "error", err)
		}
		return req.Output, nil
	}
	return out, nil
}

func fetchLoanState(ctx context.Context, req Request) (decoder.Output, error) {
	// 1. Sidecar contract from configuration
	configHex, ok := req.Config.Children.String(SidecarLockingBytecodeKey)
	if !req.Config.IsObject {
		configHex, ok = req.Config.Value, req.Config.Value != ""
	}
	if !ok || configHex == "" {
		return decoder.Output{}, ErrMissingConfig
	}
	sidecarScript, err := hex.DecodeString(configHex)
	if err != nil {
		return decoder.Output{}, fmt.Errorf("invalid sidecar locking bytecode: %w", err)
	}

	// 2. Category of the placeholder
	if req.Output.Token == nil {
		return decoder.Output{}, ErrNoCategory
	}
	category := req.Output.Token.CategoryHex()

	// 3. Sidecar contract address
	address, err := common.LockingBytecodeToCashAddress(sidecarScript, req.NetworkPrefix)
	if err != nil {
		return decoder.Output{}, fmt.Errorf("failed to encode sidecar address: %w", err)
	}
	if req.Client == nil {
		return decoder.Output{}, errors.New("no chain client")
	}

	// 4-5. Sidecar UTXO of the category
	utxos, err := req.Client.GetUnspentOutputs(ctx, address)
	if err != nil {
		return decoder.Output{}, fmt.Errorf("failed to get unspent outputs of %s: %w", address, err)
	}
	var sidecar *UTXO
	for i := range utxos {
		if utxos[i].TokenData != nil && strings.EqualFold(utxos[i].TokenData.Category, category) {
			sidecar = &utxos[i]
			break
		}
	}
	if sidecar == nil {
		return decoder.Output{}, fmt.Errorf("%w %s at %s", ErrSidecarNotFound, category, address)
	}

	// 6. Transaction that created the sidecar
	rawTx, err := req.Client.GetRawTransaction(ctx, sidecar.TxHash)
	if err != nil {
		return decoder.Output{}, fmt.Errorf("failed to get transaction %s: %w", sidecar.TxHash, err)
	}
	txid, outputs, err := common.DecodeTransactionHex(rawTx)
	if err != nil {
		return decoder.Output{}, fmt.Errorf("failed to decode transaction %s: %w", sidecar.TxHash, err)
	}
	if !strings.EqualFold(txid, sidecar.TxHash) {
		return decoder.Output{}, fmt.Errorf("transaction id mismatch: requested %s, got %s", sidecar.TxHash, txid)
	}

	// 7. The loan precedes the sidecar
	if sidecar.TxPos == 0 || int(sidecar.TxPos) >= len(outputs) {
		return decoder.Output{}, fmt.Errorf("%w: sidecar at index %d of %d outputs", ErrNoLoanOutput, sidecar.TxPos, len(outputs))
	}
	loan := outputs[sidecar.TxPos-1]
	if !loan.HasNFT() {
		return decoder.Output{}, fmt.Errorf("%w: output %d has no nft", ErrNoLoanOutput, sidecar.TxPos-1)
	}

	// 8. Adopt value and commitment, keep the placeholder's capability
	out := req.Output.Clone()
	capability := decoder.CapabilityNone
	if out.Token.NFT != nil {
		capability = out.Token.NFT.Capability
	}
	out.Value = loan.Value
	out.Token.NFT = &decoder.NFT{
		Capability: capability,
		Commitment: append([]byte(nil), loan.Token.NFT.Commitment...),
	}
	return out, nil
}
