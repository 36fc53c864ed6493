// Package xmlvalue converts primitive values to and from their XML text
// forms. Every Format function produces text that the matching Parse
// function reads back to an identical value.
//
// Parse functions accept surrounding XML whitespace. The Bytes variants
// take a fast path for plain ASCII input and fall back to the general
// decoder for anything outside that grammar. Failures are returned as
// *errors.ConversionError values carrying the offending text and the XSD
// name of the target type.
package xmlvalue
