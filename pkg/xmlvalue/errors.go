package xmlvalue

import (
	dcerrors "github.com/marius-klimantavicius/data-contracts-sub001/errors"
)

// ParseError represents a lexical failure.
type ParseError struct {
	Kind ParseErrKind
}

// Error returns the formatted error message.
func (e *ParseError) Error() string {
	if e == nil {
		return ""
	}
	return e.Kind.String()
}

// ParseErrKind identifies a parse failure category.
type ParseErrKind uint8

const (
	ParseInvalid ParseErrKind = iota
	ParseEmpty
	ParseBadChar
	ParseOverflow
	ParseNoDigits
	ParseBadPrecision
)

// String returns a stable label for the parse error kind.
func (k ParseErrKind) String() string {
	switch k {
	case ParseEmpty:
		return "empty"
	case ParseBadChar:
		return "bad character"
	case ParseOverflow:
		return "value out of range"
	case ParseNoDigits:
		return "no digits"
	case ParseBadPrecision:
		return "too many fractional digits"
	default:
		return "invalid"
	}
}

var (
	errEmpty     = &ParseError{Kind: ParseEmpty}
	errBadChar   = &ParseError{Kind: ParseBadChar}
	errOverflow  = &ParseError{Kind: ParseOverflow}
	errNoDigits  = &ParseError{Kind: ParseNoDigits}
	errPrecision = &ParseError{Kind: ParseBadPrecision}
	errInvalid   = &ParseError{Kind: ParseInvalid}
)

func conversion(text, typeName string, cause error) error {
	return dcerrors.NewConversion(text, typeName, cause)
}
