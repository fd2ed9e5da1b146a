package common

import (
	"bytes"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/bitcoinsv/bsvd/wire"

	"github.com/cashonize/nft-metadata-decoder/decoder"
)

var ErrInvalidTransaction = errors.New("invalid transaction data")

// DecodeTransaction deserializes a raw transaction
func DecodeTransaction(txBytes []byte) (*wire.MsgTx, error) {
	if len(txBytes) == 0 {
		return nil, ErrInvalidTransaction
	}
	msgTx := wire.NewMsgTx(2)
	r := bytes.NewReader(txBytes)
	if err := msgTx.Deserialize(r); err != nil {
		return nil, fmt.Errorf("failed to deserialize transaction: %w", err)
	}
	if r.Len() != 0 {
		return nil, fmt.Errorf("%w: %d trailing bytes", ErrInvalidTransaction, r.Len())
	}
	return msgTx, nil
}

// DecodeOutput converts a wire output, splitting off its token prefix
func DecodeOutput(out *wire.TxOut) (decoder.Output, error) {
	if out.Value < 0 {
		return decoder.Output{}, fmt.Errorf("%w: negative value", ErrInvalidTransaction)
	}
	token, script, err := DecodeTokenPrefix(out.PkScript)
	if err != nil {
		return decoder.Output{}, err
	}
	return decoder.Output{
		Value:           uint64(out.Value),
		LockingBytecode: append([]byte(nil), script...),
		Token:           token,
	}, nil
}

// EncodeOutput converts an output to its wire form
func EncodeOutput(out decoder.Output) (*wire.TxOut, error) {
	prefix, err := EncodeTokenPrefix(out.Token)
	if err != nil {
		return nil, err
	}
	script := append(prefix, out.LockingBytecode...)
	return wire.NewTxOut(int64(out.Value), script), nil
}

// DecodeTransactionOutputs decodes a raw transaction and returns its
// transaction ID and outputs
func DecodeTransactionOutputs(txBytes []byte) (string, []decoder.Output, error) {
	msgTx, err := DecodeTransaction(txBytes)
	if err != nil {
		return "", nil, err
	}
	outputs := make([]decoder.Output, 0, len(msgTx.TxOut))
	for i, out := range msgTx.TxOut {
		output, err := DecodeOutput(out)
		if err != nil {
			return "", nil, fmt.Errorf("output %d: %w", i, err)
		}
		outputs = append(outputs, output)
	}
	return msgTx.TxHash().String(), outputs, nil
}

// DecodeTransactionHex is DecodeTransactionOutputs for hex input
func DecodeTransactionHex(txHex string) (string, []decoder.Output, error) {
	txBytes, err := hex.DecodeString(txHex)
	if err != nil {
		return "", nil, fmt.Errorf("failed to decode transaction hex: %w", err)
	}
	return DecodeTransactionOutputs(txBytes)
}
