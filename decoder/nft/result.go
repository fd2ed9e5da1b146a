package nft

import (
	"errors"
	"unicode"
	"unicode/utf8"

	"github.com/cashonize/nft-metadata-decoder/decoder/field"
)

var (
	ErrNoNFT          = errors.New("no NFT found on output")
	ErrNoProgram      = errors.New("no parsing bytecode available")
	ErrNoEvaluator    = errors.New("no VM evaluator configured")
	ErrVM             = errors.New("VM error")
	ErrEmptyAltStack  = errors.New("altstack is empty, parsing failed")
	ErrInvalidBoolean = field.ErrInvalidBoolean
)

// NamedField is one field value of a parsed NFT. Name, Description and
// Value are only set when the type and field definitions are known.
type NamedField struct {
	ID          string      `json:"id,omitempty"`
	Name        string      `json:"name,omitempty"`
	Description string      `json:"description,omitempty"`
	Raw         string      `json:"raw"`
	Value       field.Value `json:"-"`
	Display     string      `json:"value,omitempty"`
}

// ParseResult is the outcome of parsing one commitment. Failures are
// values: Success is false and Error describes the cause.
type ParseResult struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
	Err     error  `json:"-"`

	Tag         string       `json:"tag,omitempty"`
	Matched     bool         `json:"matched"` // Tag found in the type table
	TypeName    string       `json:"typeName,omitempty"`
	Description string       `json:"description,omitempty"`
	Icon        string       `json:"icon,omitempty"`
	RawFields   []string     `json:"rawFields,omitempty"`
	Fields      []NamedField `json:"fields,omitempty"`
	AltStack    []string     `json:"altstack,omitempty"`
}

// Field returns the field with the given identifier
func (r *ParseResult) Field(id string) (NamedField, bool) {
	for _, f := range r.Fields {
		if f.ID == id {
			return f, true
		}
	}
	return NamedField{}, false
}

func failure(err error) *ParseResult {
	return &ParseResult{Success: false, Error: capitalize(err.Error()), Err: err}
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
