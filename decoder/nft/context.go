package nft

import (
	"github.com/bitcoinsv/bsvd/wire"

	"github.com/cashonize/nft-metadata-decoder/decoder"
)

// programInputIndex is the input that unlocks the parsing program
const programInputIndex = 1

// NewVerificationContext builds the smallest transaction the introspection
// opcodes accept: input 0 spends the candidate output, input 1 spends a
// zero-value output locked by the parsing program, and one empty output.
// Only the token data of the candidate is meaningful.
func NewVerificationContext(candidate decoder.Output, program []byte) *decoder.VerificationContext {
	tx := wire.NewMsgTx(2)
	tx.AddTxIn(&wire.TxIn{PreviousOutPoint: wire.OutPoint{Index: 0}})
	tx.AddTxIn(&wire.TxIn{PreviousOutPoint: wire.OutPoint{Index: 1}})
	tx.AddTxOut(wire.NewTxOut(0, []byte{}))

	return &decoder.VerificationContext{
		InputIndex: programInputIndex,
		SourceOutputs: []decoder.Output{
			candidate.Clone(),
			{Value: 0, LockingBytecode: append([]byte(nil), program...)},
		},
		Transaction: tx,
	}
}
