package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies a serialization failure.
type Kind uint8

const (
	// KindContract reports a graph or document that violates its data contract.
	KindContract Kind = iota
	// KindConversion reports primitive text that cannot be converted to or from a value.
	KindConversion
	// KindStructural reports a reader positioned on an unexpected node.
	KindStructural
	// KindInternal reports a broken engine invariant.
	KindInternal
)

// String returns a stable label for the kind.
func (k Kind) String() string {
	switch k {
	case KindConversion:
		return "conversion"
	case KindStructural:
		return "structural"
	case KindInternal:
		return "internal"
	default:
		return "contract"
	}
}

// ErrorCode identifies a serialization failure condition.
type ErrorCode string

const (
	// ErrConversion indicates a primitive value could not be encoded or decoded.
	ErrConversion ErrorCode = "conversion-failed"

	// ErrRequiredMemberEmit indicates a required member held its default value
	// while EmitDefaultValue was false.
	ErrRequiredMemberEmit ErrorCode = "required-member-emit"
	// ErrRequiredMemberMissing indicates a required member was absent on read.
	ErrRequiredMemberMissing ErrorCode = "required-member-missing"
	// ErrUnknownTypeSerialize indicates a value's contract is outside the known-type closure.
	ErrUnknownTypeSerialize ErrorCode = "unknown-type-serialize"
	// ErrUnknownTypeDeserialize indicates an xsi:type could not be resolved.
	ErrUnknownTypeDeserialize ErrorCode = "unknown-type-deserialize"
	// ErrInvalidEnumValue indicates an enum value could not be written or read.
	ErrInvalidEnumValue ErrorCode = "invalid-enum-value"
	// ErrCycle indicates a cyclic graph was written without reference preservation.
	ErrCycle ErrorCode = "object-graph-cycle"
	// ErrQuotaExceeded indicates the item quota was exhausted.
	ErrQuotaExceeded ErrorCode = "max-items-exceeded"
	// ErrUnresolvedReference indicates a z:Ref with no matching z:Id.
	ErrUnresolvedReference ErrorCode = "unresolved-reference"
	// ErrDuplicateID indicates a z:Id value was registered twice.
	ErrDuplicateID ErrorCode = "duplicate-id"
	// ErrArraySizeMismatch indicates a z:Size hint disagreed with the item count.
	ErrArraySizeMismatch ErrorCode = "array-size-mismatch"
	// ErrGetOnlyCollection indicates a get-only collection member could not be handled.
	ErrGetOnlyCollection ErrorCode = "get-only-collection"
	// ErrContractMissing indicates no contract exists for a value or type.
	ErrContractMissing ErrorCode = "contract-missing"
	// ErrInvalidContract indicates a contract is incomplete or inconsistent.
	ErrInvalidContract ErrorCode = "invalid-contract"
	// ErrRootName indicates the document root did not match the expected name.
	ErrRootName ErrorCode = "root-name-mismatch"
	// ErrMemberAccess indicates a member accessor or collection function failed.
	ErrMemberAccess ErrorCode = "member-access"

	// ErrUnexpectedNode indicates the reader was not on the expected node kind.
	ErrUnexpectedNode ErrorCode = "unexpected-node"
	// ErrXMLSyntax indicates the document could not be tokenized.
	ErrXMLSyntax ErrorCode = "xml-syntax"

	// ErrIdentityTable indicates the object identity table lost its free slot.
	ErrIdentityTable ErrorCode = "identity-table-overflow"
)

// Serialization describes a failed write or read of an object graph.
//
//nolint:errname // public API name uses the serializer domain term.
type Serialization struct {
	Err     error
	Code    ErrorCode
	Message string
	Type    string
	Line    int
	Column  int
	Kind    Kind
}

// Error formats the failure with code, message, type and position.
func (e *Serialization) Error() string {
	if e == nil {
		return "serialization <nil>"
	}
	var b strings.Builder
	b.WriteString(fmt.Sprintf("[%s] %s", e.Code, e.Message))
	if e.Type != "" {
		b.WriteString(fmt.Sprintf(" (type: %s)", e.Type))
	}
	if e.Line > 0 && e.Column > 0 {
		b.WriteString(fmt.Sprintf(" at line %d, column %d", e.Line, e.Column))
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

// Unwrap exposes the underlying cause.
func (e *Serialization) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// WithType returns a copy annotated with the offending type name.
func (e *Serialization) WithType(name string) *Serialization {
	if e == nil {
		return nil
	}
	out := *e
	out.Type = name
	return &out
}

// WithPosition returns a copy annotated with a document position.
func (e *Serialization) WithPosition(line, column int) *Serialization {
	if e == nil {
		return nil
	}
	out := *e
	out.Line = line
	out.Column = column
	return &out
}

// New builds a contract failure with a code and message.
func New(code ErrorCode, msg string) *Serialization {
	return &Serialization{Kind: kindOf(code), Code: code, Message: msg}
}

// Newf formats a message and builds a failure.
func Newf(code ErrorCode, format string, args ...any) *Serialization {
	return New(code, fmt.Sprintf(format, args...))
}

// Wrap builds a failure that carries err as its cause.
func Wrap(code ErrorCode, err error, msg string) *Serialization {
	out := New(code, msg)
	out.Err = err
	return out
}

// As extracts a serialization failure from err.
func As(err error) (*Serialization, bool) {
	if err == nil {
		return nil, false
	}
	var s *Serialization
	if errors.As(err, &s) && s != nil {
		return s, true
	}
	return nil, false
}

// CodeOf reports the failure code carried by err, if any.
func CodeOf(err error) (ErrorCode, bool) {
	s, ok := As(err)
	if !ok {
		return "", false
	}
	return s.Code, true
}

func kindOf(code ErrorCode) Kind {
	switch code {
	case ErrConversion:
		return KindConversion
	case ErrUnexpectedNode, ErrXMLSyntax:
		return KindStructural
	case ErrIdentityTable:
		return KindInternal
	default:
		return KindContract
	}
}
