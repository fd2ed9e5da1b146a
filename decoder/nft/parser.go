// Package nft parses CashToken NFT commitments by running a registry
// supplied program and decoding the values it leaves on the altstack.
package nft

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/btcsuite/btcd/txscript"

	"github.com/cashonize/nft-metadata-decoder/decoder"
	"github.com/cashonize/nft-metadata-decoder/decoder/field"
	"github.com/cashonize/nft-metadata-decoder/decoder/registry"
)

// benignStackErrors are VM errors parsing programs cause on purpose: they
// leave residue on the main stack.
var benignStackErrors = []string{
	"unexpected number of items on the stack",
	"unexpected number of items on the main stack",
}

// NFTParser is the commitment parser
type NFTParser struct {
	config *decoder.ParserConfig
}

// NewNFTParser creates a commitment parser
func NewNFTParser(config *decoder.ParserConfig) *NFTParser {
	if config == nil {
		config = decoder.DefaultConfig()
	}
	return &NFTParser{
		config: config,
	}
}

// Parse classifies and decodes the commitment of output. program, when
// non-nil, takes precedence over the parsing bytecode of the registry, which
// may be nil.
func (p *NFTParser) Parse(output decoder.Output, reg *registry.Registry, program []byte) *ParseResult {
	log := p.config.Log()

	// 1. Require an NFT
	if !output.HasNFT() {
		return failure(ErrNoNFT)
	}
	category := output.Token.CategoryHex()
	log = log.With("category", category)

	// 2. Resolve the program
	meta, _ := registry.Lookup(reg, category)
	if program == nil && meta != nil {
		if meta.ProgramErr != nil {
			log.Warn("ignoring registry parsing bytecode", "error", meta.ProgramErr)
		}
		program = meta.Program
	}
	if program == nil {
		return failure(ErrNoProgram)
	}
	if p.config.Evaluator == nil {
		return failure(ErrNoEvaluator)
	}
	if log.Enabled(context.Background(), slog.LevelDebug) {
		asm, _ := txscript.DisasmString(program)
		log.Debug("evaluating parsing program", "asm", asm, "commitment", hex.EncodeToString(output.Token.NFT.Commitment))
	}

	// 3-4. Evaluate
	state, err := p.evaluate(NewVerificationContext(output, program))
	if err != nil {
		return failure(vmFailure(err))
	}

	// 5. Inspect the reported error
	if state.Error != "" && !isBenign(state.Error) {
		return failure(fmt.Errorf("%w: %s", ErrVM, state.Error))
	}

	// 6. Split the altstack
	if len(state.AltStack) == 0 {
		return failure(ErrEmptyAltStack)
	}
	altStack := make([]string, len(state.AltStack))
	for i, item := range state.AltStack {
		altStack[i] = hex.EncodeToString(item)
	}
	tag := altStack[0]
	values := state.AltStack[1:]

	result := &ParseResult{
		Success:   true,
		Tag:       tag,
		TypeName:  tag,
		RawFields: altStack[1:],
		Fields:    make([]NamedField, len(values)),
		AltStack:  altStack,
	}
	for i := range values {
		result.Fields[i] = NamedField{Raw: altStack[i+1]}
	}

	// 7. Match the tag and decode the declared fields
	typ, ok := meta.Type(tag)
	if !ok {
		log.Debug("unknown nft type, returning raw fields", "tag", tag)
		return result
	}
	result.Matched = true
	result.TypeName = typ.Name
	result.Description = typ.Description
	result.Icon = typ.Icon()

	for i, raw := range values {
		if i >= len(typ.Fields) {
			break
		}
		id := typ.Fields[i]
		def, ok := meta.Field(id)
		if !ok {
			log.Warn("nft type references undefined field", "tag", tag, "field", id)
			continue
		}
		f := &result.Fields[i]
		f.ID = id
		f.Name = def.Name
		f.Description = def.Description

		value, err := field.Decode(raw, def.Encoding)
		if err != nil {
			if errors.Is(err, field.ErrInvalidBoolean) {
				return failure(fmt.Errorf("field %q: %w", id, err))
			}
			log.Warn("failed to decode nft field", "field", id, "raw", f.Raw, "error", err)
			continue
		}
		f.Value = value
		f.Display = value.String()
	}

	// 8. Done
	return result
}

// ParseSequential resolves the type of an NFT in a sequential collection,
// where the commitment itself is the type key.
func (p *NFTParser) ParseSequential(output decoder.Output, reg *registry.Registry) *ParseResult {
	if !output.HasNFT() {
		return failure(ErrNoNFT)
	}
	tag := hex.EncodeToString(output.Token.NFT.Commitment)
	result := &ParseResult{Success: true, Tag: tag, TypeName: tag}
	meta, ok := registry.Lookup(reg, output.Token.CategoryHex())
	if !ok {
		return result
	}
	if typ, ok := meta.SequentialTypes[tag]; ok {
		result.Matched = true
		result.TypeName = typ.Name
		result.Description = typ.Description
		result.Icon = typ.Icon()
	}
	return result
}

// evaluate runs the evaluator, turning panics into errors
func (p *NFTParser) evaluate(vc *decoder.VerificationContext) (state *decoder.ProgramState, err error) {
	defer func() {
		if r := recover(); r != nil {
			state, err = nil, fmt.Errorf("evaluator panic: %v", r)
		}
	}()
	state, err = p.config.Evaluator.Evaluate(vc)
	if err == nil && state == nil {
		err = errors.New("evaluator returned no state")
	}
	return state, err
}

// vmFailure wraps an evaluation exception, explaining the one failure mode
// that has a known cause.
func vmFailure(err error) error {
	msg := err.Error()
	lower := strings.ToLower(msg)
	if strings.Contains(lower, "bigint") && (strings.Contains(lower, "mix") || strings.Contains(lower, "convert")) {
		return fmt.Errorf("%w: the program mixes big integer and native number arithmetic, which the evaluator does not support; the VM and the parsing bytecode likely target different VM versions (%s)", ErrVM, msg)
	}
	return fmt.Errorf("%w: %w", ErrVM, err)
}

func isBenign(vmError string) bool {
	lower := strings.ToLower(vmError)
	for _, benign := range benignStackErrors {
		if strings.Contains(lower, benign) {
			return true
		}
	}
	return false
}
