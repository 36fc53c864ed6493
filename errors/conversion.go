package errors

import "fmt"

// ConversionError reports primitive text that could not be converted to its
// target type, or a value that has no textual form.
type ConversionError struct {
	Err  error
	Text string
	Type string
}

// Error returns the formatted error message.
func (e *ConversionError) Error() string {
	if e == nil {
		return "conversion <nil>"
	}
	if e.Err != nil {
		return fmt.Sprintf("cannot convert %q to %s: %v", e.Text, e.Type, e.Err)
	}
	return fmt.Sprintf("cannot convert %q to %s", e.Text, e.Type)
}

// Unwrap exposes the underlying parse failure.
func (e *ConversionError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// NewConversion builds a conversion error for text and its target type.
func NewConversion(text, typeName string, err error) *ConversionError {
	return &ConversionError{Text: text, Type: typeName, Err: err}
}
