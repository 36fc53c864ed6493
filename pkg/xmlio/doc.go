// Package xmlio defines the element-level XML cursors consumed by the
// serializer and ships one concrete implementation of each.
//
// Writer emits elements, attributes, namespace declarations and text, and
// tracks namespace scopes so prefixes are declared only when not already in
// scope. Reader walks a document as a sequence of element, end-element and
// text nodes with namespace resolution; comments and processing
// instructions are never surfaced.
package xmlio
