package decoder

import (
	"github.com/bitcoinsv/bsvd/wire"
)

// VerificationContext is the transaction shape handed to the VM evaluator.
// The evaluated input spends SourceOutputs[InputIndex].
type VerificationContext struct {
	InputIndex    int
	SourceOutputs []Output
	Transaction   *wire.MsgTx
}

// ProgramState is the final machine state reported by an evaluator
type ProgramState struct {
	Stack    [][]byte // Main stack, bottom first
	AltStack [][]byte // Alternate stack, bottom first
	Error    string   // Error reported by the VM, empty on success
}

// Evaluator is the interface for virtual machine evaluators.
// External implementations provide the BCH VM. A returned error (or a panic)
// is an evaluation exception; a VM-level failure is reported in
// ProgramState.Error instead.
type Evaluator interface {
	// Evaluate runs the program locked in the evaluated source output
	Evaluate(ctx *VerificationContext) (*ProgramState, error)
}

// EvaluatorFunc adapts a function to the Evaluator interface
type EvaluatorFunc func(ctx *VerificationContext) (*ProgramState, error)

// Evaluate calls f(ctx)
func (f EvaluatorFunc) Evaluate(ctx *VerificationContext) (*ProgramState, error) {
	return f(ctx)
}
